package badger

import (
	"context"
	"fmt"
	"time"

	"github.com/ternarybob/arbor"
	"github.com/timshannon/badgerhold/v4"

	"github.com/brightreply/scout/internal/interfaces"
	"github.com/brightreply/scout/internal/models"
)

// ScanJobStorage implements the ScanJobStorage interface for Badger
type ScanJobStorage struct {
	db     *BadgerDB
	logger arbor.ILogger
}

// NewScanJobStorage creates a new ScanJobStorage instance
func NewScanJobStorage(db *BadgerDB, logger arbor.ILogger) interfaces.ScanJobStorage {
	return &ScanJobStorage{
		db:     db,
		logger: logger,
	}
}

func (s *ScanJobStorage) SaveJob(ctx context.Context, job *models.ScanJob) error {
	if job.ID == "" {
		return fmt.Errorf("scan job ID is required")
	}

	now := time.Now()
	if job.CreatedAt.IsZero() {
		job.CreatedAt = now
	}
	job.UpdatedAt = now

	if err := s.db.Store().Upsert(job.ID, job); err != nil {
		return fmt.Errorf("failed to save scan job: %w", err)
	}
	return nil
}

func (s *ScanJobStorage) GetJob(ctx context.Context, id string) (*models.ScanJob, error) {
	var job models.ScanJob
	if err := s.db.Store().Get(id, &job); err != nil {
		if err == badgerhold.ErrNotFound {
			return nil, fmt.Errorf("scan job %s: %w", id, interfaces.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get scan job: %w", err)
	}
	return &job, nil
}

func (s *ScanJobStorage) ListJobs(ctx context.Context, ownerID string, limit int) ([]*models.ScanJob, error) {
	query := badgerhold.Where("OwnerID").Eq(ownerID).SortBy("CreatedAt").Reverse()
	if limit > 0 {
		query = query.Limit(limit)
	}

	var jobs []models.ScanJob
	if err := s.db.Store().Find(&jobs, query); err != nil {
		return nil, fmt.Errorf("failed to list scan jobs: %w", err)
	}

	result := make([]*models.ScanJob, len(jobs))
	for i := range jobs {
		result[i] = &jobs[i]
	}
	return result, nil
}

func (s *ScanJobStorage) DeleteJob(ctx context.Context, id string) error {
	if err := s.db.Store().Delete(id, &models.ScanJob{}); err != nil {
		if err == badgerhold.ErrNotFound {
			return nil
		}
		return fmt.Errorf("failed to delete scan job: %w", err)
	}
	return nil
}

func (s *ScanJobStorage) CountJobsByStatus(ctx context.Context, status models.ScanJobStatus) (int, error) {
	count, err := s.db.Store().Count(&models.ScanJob{}, badgerhold.Where("Status").Eq(status))
	if err != nil {
		return 0, fmt.Errorf("failed to count scan jobs: %w", err)
	}
	return int(count), nil
}
