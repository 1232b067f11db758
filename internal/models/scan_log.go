package models

import "time"

// ScanLogLevel is the severity of a scan job log line
type ScanLogLevel string

const (
	ScanLogDebug ScanLogLevel = "debug"
	ScanLogInfo  ScanLogLevel = "info"
	ScanLogWarn  ScanLogLevel = "warn"
	ScanLogError ScanLogLevel = "error"
)

// ScanLog is a leveled log line attached to a scan job, queryable
// alongside job status
type ScanLog struct {
	ID        string       `json:"id"`
	ScanJobID string       `json:"scan_job_id"`
	Level     ScanLogLevel `json:"level"`
	Message   string       `json:"message"`
	URL       string       `json:"url,omitempty"`
	CreatedAt time.Time    `json:"created_at"`
}
