package common

import (
	"github.com/google/uuid"
)

// NewScanJobID generates a unique scan job ID
// Format: job_<uuid>
func NewScanJobID() string {
	return "job_" + uuid.New().String()
}

// NewContentID generates a unique extracted content ID
// Format: content_<uuid>
func NewContentID() string {
	return "content_" + uuid.New().String()
}

// NewKnowledgeID generates a unique knowledge item ID
// Format: kb_<uuid>
func NewKnowledgeID() string {
	return "kb_" + uuid.New().String()
}

// NewCategoryID generates a unique knowledge category ID
// Format: cat_<uuid>
func NewCategoryID() string {
	return "cat_" + uuid.New().String()
}

// NewVersionID generates a unique knowledge version ID
// Format: ver_<uuid>
func NewVersionID() string {
	return "ver_" + uuid.New().String()
}

// NewLogID generates a unique scan log ID
func NewLogID() string {
	return "log_" + uuid.New().String()
}

// NewSearchID generates a unique search history record ID
func NewSearchID() string {
	return "search_" + uuid.New().String()
}
