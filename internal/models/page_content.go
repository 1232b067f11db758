package models

import "time"

// ValidationResult is the outcome of probing a single URL. Ephemeral,
// produced per URL during job start; never persisted.
type ValidationResult struct {
	IsValid       bool     `json:"is_valid"`
	NormalizedURL string   `json:"normalized_url"`
	FinalURL      string   `json:"final_url,omitempty"` // After following redirects
	StatusCode    int      `json:"status_code,omitempty"`
	Errors        []string `json:"errors,omitempty"`
	Warnings      []string `json:"warnings,omitempty"`
}

// Heading is one entry in a page's flattened heading outline
type Heading struct {
	Level int    `json:"level"` // 1..6
	Text  string `json:"text"`
}

// TextBlock is a tagged fragment of page text kept for downstream
// heuristics (business-info extraction, classification).
type TextBlock struct {
	Tag   string `json:"tag"`
	Text  string `json:"text"`
	Class string `json:"class,omitempty"`
	ID    string `json:"id,omitempty"`
}

// PageContent is the structured result of extracting one fetched page.
// Ephemeral intermediate between the extractor and the analysis stages.
type PageContent struct {
	URL      string `json:"url"`
	Title    string `json:"title"`
	MainText string `json:"main_text"` // Markdown-ish text of the main content
	RawHTML  string `json:"-"`

	Metadata map[string]interface{} `json:"metadata"`
	Links    []string               `json:"links"`
	Images   []string               `json:"images"`
	Headings []Heading              `json:"headings"`
	Blocks   []TextBlock            `json:"blocks"`

	ExtractedAt time.Time `json:"extracted_at"`
}

// WordCount returns the number of whitespace-separated words in the main text
func (p *PageContent) WordCount() int {
	count := 0
	inWord := false
	for _, r := range p.MainText {
		if r == ' ' || r == '\n' || r == '\t' || r == '\r' {
			inWord = false
		} else if !inWord {
			inWord = true
			count++
		}
	}
	return count
}
