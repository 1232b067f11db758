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

// ScanLogStorage implements the ScanLogStorage interface for Badger
type ScanLogStorage struct {
	db     *BadgerDB
	logger arbor.ILogger
}

// NewScanLogStorage creates a new ScanLogStorage instance
func NewScanLogStorage(db *BadgerDB, logger arbor.ILogger) interfaces.ScanLogStorage {
	return &ScanLogStorage{
		db:     db,
		logger: logger,
	}
}

func (s *ScanLogStorage) AppendLog(ctx context.Context, log *models.ScanLog) error {
	if log.ID == "" {
		return fmt.Errorf("scan log ID is required")
	}
	if log.CreatedAt.IsZero() {
		log.CreatedAt = time.Now()
	}

	if err := s.db.Store().Insert(log.ID, log); err != nil {
		return fmt.Errorf("failed to append scan log: %w", err)
	}
	return nil
}

func (s *ScanLogStorage) GetLogsByJob(ctx context.Context, scanJobID string, limit int) ([]*models.ScanLog, error) {
	query := badgerhold.Where("ScanJobID").Eq(scanJobID).SortBy("CreatedAt")
	if limit > 0 {
		query = query.Limit(limit)
	}

	var logs []models.ScanLog
	if err := s.db.Store().Find(&logs, query); err != nil {
		return nil, fmt.Errorf("failed to get scan logs: %w", err)
	}

	result := make([]*models.ScanLog, len(logs))
	for i := range logs {
		result[i] = &logs[i]
	}
	return result, nil
}

func (s *ScanLogStorage) DeleteLogsByJob(ctx context.Context, scanJobID string) error {
	if err := s.db.Store().DeleteMatching(&models.ScanLog{}, badgerhold.Where("ScanJobID").Eq(scanJobID)); err != nil {
		return fmt.Errorf("failed to delete scan logs: %w", err)
	}
	return nil
}
