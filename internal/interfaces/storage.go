package interfaces

import (
	"context"
	"errors"
	"time"

	"github.com/brightreply/scout/internal/models"
)

// ErrNotFound is returned by Get operations when no record matches the key.
var ErrNotFound = errors.New("record not found")

// ScanJobStorage - interface for scan job persistence
type ScanJobStorage interface {
	SaveJob(ctx context.Context, job *models.ScanJob) error
	GetJob(ctx context.Context, id string) (*models.ScanJob, error)
	ListJobs(ctx context.Context, ownerID string, limit int) ([]*models.ScanJob, error)
	DeleteJob(ctx context.Context, id string) error
	CountJobsByStatus(ctx context.Context, status models.ScanJobStatus) (int, error)
}

// ContentStorage - interface for extracted content persistence.
// Rows are immutable after write; re-scans create new rows.
type ContentStorage interface {
	SaveContent(ctx context.Context, content *models.ExtractedContent) error
	GetContent(ctx context.Context, id string) (*models.ExtractedContent, error)
	GetContentByJob(ctx context.Context, scanJobID string) ([]*models.ExtractedContent, error)
	CountContentByJob(ctx context.Context, scanJobID string) (int, error)
	DeleteContentByJob(ctx context.Context, scanJobID string) error
}

// ScanLogStorage - interface for per-job leveled log lines
type ScanLogStorage interface {
	AppendLog(ctx context.Context, log *models.ScanLog) error
	GetLogsByJob(ctx context.Context, scanJobID string, limit int) ([]*models.ScanLog, error)
	DeleteLogsByJob(ctx context.Context, scanJobID string) error
}

// KnowledgeItemStorage - interface for knowledge item persistence
type KnowledgeItemStorage interface {
	SaveItem(ctx context.Context, item *models.KnowledgeItem) error
	GetItem(ctx context.Context, id string) (*models.KnowledgeItem, error)
	ListItems(ctx context.Context, opts *KnowledgeListOptions) ([]*models.KnowledgeItem, error)
	DeleteItem(ctx context.Context, id string) error
	CountItems(ctx context.Context) (int, error)
	CountItemsByCategory(ctx context.Context, categoryID string) (int, error)
}

// KnowledgeListOptions filters knowledge item listings
type KnowledgeListOptions struct {
	CategoryID string
	Status     models.KnowledgeStatus
	SourceType models.KnowledgeSourceType
	Limit      int
	Offset     int
}

// KnowledgeVersionStorage - interface for append-only version snapshots
type KnowledgeVersionStorage interface {
	AppendVersion(ctx context.Context, version *models.KnowledgeVersion) error
	GetVersions(ctx context.Context, itemID string) ([]*models.KnowledgeVersion, error)
	GetVersion(ctx context.Context, itemID string, version int) (*models.KnowledgeVersion, error)
	CountVersions(ctx context.Context, itemID string) (int, error)
	DeleteVersionsByItem(ctx context.Context, itemID string) error
}

// CategoryStorage - interface for the knowledge category forest
type CategoryStorage interface {
	SaveCategory(ctx context.Context, category *models.KnowledgeCategory) error
	GetCategory(ctx context.Context, id string) (*models.KnowledgeCategory, error)
	ListCategories(ctx context.Context) ([]*models.KnowledgeCategory, error)
	GetChildren(ctx context.Context, parentID string) ([]*models.KnowledgeCategory, error)
	DeleteCategory(ctx context.Context, id string) error
}

// SearchHistoryStorage - interface for the knowledge search history log
type SearchHistoryStorage interface {
	RecordSearch(ctx context.Context, record *models.SearchRecord) error
	GetSearchesSince(ctx context.Context, since time.Time) ([]*models.SearchRecord, error)
	PruneBefore(ctx context.Context, cutoff time.Time) (int, error)
}

// StorageManager aggregates all typed storages over one database
type StorageManager interface {
	ScanJobStorage() ScanJobStorage
	ContentStorage() ContentStorage
	ScanLogStorage() ScanLogStorage
	KnowledgeItemStorage() KnowledgeItemStorage
	KnowledgeVersionStorage() KnowledgeVersionStorage
	CategoryStorage() CategoryStorage
	SearchHistoryStorage() SearchHistoryStorage
	Close() error
}
