package models

import (
	"encoding/json"
	"time"
)

// ScanJobStatus represents the state of a website scan job
type ScanJobStatus string

const (
	ScanJobStatusPending   ScanJobStatus = "pending"
	ScanJobStatusScanning  ScanJobStatus = "scanning"
	ScanJobStatusPaused    ScanJobStatus = "paused"
	ScanJobStatusCompleted ScanJobStatus = "completed"
	ScanJobStatusFailed    ScanJobStatus = "failed"
)

// IsTerminal reports whether the status is a terminal state.
// Completed and failed jobs never transition again.
func (s ScanJobStatus) IsTerminal() bool {
	return s == ScanJobStatusCompleted || s == ScanJobStatusFailed
}

// ScanJob represents a unit of work crawling one or more URLs to completion.
// Configuration is snapshot at job creation time so jobs are self-contained
// and re-runnable. Only the orchestrator mutates a job after creation.
type ScanJob struct {
	ID      string `json:"id"`
	OwnerID string `json:"owner_id"` // Tenant/user that submitted the job
	Name    string `json:"name"`

	// SeedURLs are the raw input URLs as submitted. Invalid entries are
	// dropped during validation and recorded as per-URL errors.
	SeedURLs []string `json:"seed_urls"`

	Config ScanConfig    `json:"config"` // Snapshot of crawl configuration at creation
	Status ScanJobStatus `json:"status"`

	PagesFound         int     `json:"pages_found"`     // URLs accepted after validation
	PagesProcessed     int     `json:"pages_processed"` // URLs fetched+extracted (success or recorded failure)
	ProgressPercentage float64 `json:"progress_percentage"`

	// URLErrors records per-URL failures (message keyed by URL). These do
	// not fail the job; they are reported through job status.
	URLErrors map[string]string `json:"url_errors,omitempty"`

	// Error is populated only when the job itself fails (no valid URLs,
	// storage failure escaping the batch loop).
	Error string `json:"error,omitempty"`

	CreatedAt   time.Time `json:"created_at"`
	StartedAt   time.Time `json:"started_at,omitempty"`
	CompletedAt time.Time `json:"completed_at,omitempty"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// ScanConfig defines crawl behavior for a scan job
type ScanConfig struct {
	UserAgent         string        `json:"user_agent"`
	RequestTimeout    time.Duration `json:"request_timeout"`
	RequestsPerSecond float64       `json:"requests_per_second"` // Per-domain rate cap
	Concurrency       int           `json:"concurrency"`         // Batch fan-out
	MaxRetries        int           `json:"max_retries"`
	RetryBackoff      time.Duration `json:"retry_backoff"`
	RespectRobotsTxt  bool          `json:"respect_robots_txt"`
}

// RecordURLError stores a per-URL failure message on the job
func (j *ScanJob) RecordURLError(url, message string) {
	if j.URLErrors == nil {
		j.URLErrors = make(map[string]string)
	}
	j.URLErrors[url] = message
}

// UpdateProgress recomputes the progress percentage from processed counts
func (j *ScanJob) UpdateProgress() {
	if j.PagesFound <= 0 {
		j.ProgressPercentage = 0
		return
	}
	j.ProgressPercentage = float64(j.PagesProcessed) / float64(j.PagesFound) * 100
}

// ToJSON serializes ScanConfig for storage snapshots
func (c *ScanConfig) ToJSON() (string, error) {
	data, err := json.Marshal(c)
	if err != nil {
		return "", err
	}
	return string(data), nil
}
