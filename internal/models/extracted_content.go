package models

import "time"

// ExtractedContent is the persisted result of scanning one URL. Owned by
// its scan job and immutable after write; re-scans create new rows.
type ExtractedContent struct {
	ID        string `json:"id"` // content_{uuid}
	ScanJobID string `json:"scan_job_id"`
	URL       string `json:"url"`

	Title       string      `json:"title"`
	Content     string      `json:"content"` // Markdown text of the main content
	ContentType ContentType `json:"content_type"`
	Headings    []Heading   `json:"headings"`

	// Metadata carries page meta tags plus the serialized analysis and
	// business info for downstream consumers.
	Metadata map[string]interface{} `json:"metadata"`

	WordCount int `json:"word_count"`

	// ProcessingQuality is a 0..1 heuristic of how complete the
	// extraction was (title, text volume, metadata, structure).
	ProcessingQuality float64 `json:"processing_quality"`

	Entities []Entity `json:"entities"`

	CreatedAt time.Time `json:"created_at"`
}
