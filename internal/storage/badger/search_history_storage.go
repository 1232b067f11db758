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

// SearchHistoryStorage implements the SearchHistoryStorage interface for Badger
type SearchHistoryStorage struct {
	db     *BadgerDB
	logger arbor.ILogger
}

// NewSearchHistoryStorage creates a new SearchHistoryStorage instance
func NewSearchHistoryStorage(db *BadgerDB, logger arbor.ILogger) interfaces.SearchHistoryStorage {
	return &SearchHistoryStorage{
		db:     db,
		logger: logger,
	}
}

func (s *SearchHistoryStorage) RecordSearch(ctx context.Context, record *models.SearchRecord) error {
	if record.ID == "" {
		return fmt.Errorf("search record ID is required")
	}
	if record.SearchedAt.IsZero() {
		record.SearchedAt = time.Now()
	}

	if err := s.db.Store().Insert(record.ID, record); err != nil {
		return fmt.Errorf("failed to record search: %w", err)
	}
	return nil
}

func (s *SearchHistoryStorage) GetSearchesSince(ctx context.Context, since time.Time) ([]*models.SearchRecord, error) {
	var records []models.SearchRecord
	query := badgerhold.Where("SearchedAt").Ge(since).SortBy("SearchedAt").Reverse()
	if err := s.db.Store().Find(&records, query); err != nil {
		return nil, fmt.Errorf("failed to get search history: %w", err)
	}

	result := make([]*models.SearchRecord, len(records))
	for i := range records {
		result[i] = &records[i]
	}
	return result, nil
}

func (s *SearchHistoryStorage) PruneBefore(ctx context.Context, cutoff time.Time) (int, error) {
	count, err := s.db.Store().Count(&models.SearchRecord{}, badgerhold.Where("SearchedAt").Lt(cutoff))
	if err != nil {
		return 0, fmt.Errorf("failed to count stale search records: %w", err)
	}
	if count == 0 {
		return 0, nil
	}

	if err := s.db.Store().DeleteMatching(&models.SearchRecord{}, badgerhold.Where("SearchedAt").Lt(cutoff)); err != nil {
		return 0, fmt.Errorf("failed to prune search history: %w", err)
	}
	return int(count), nil
}
