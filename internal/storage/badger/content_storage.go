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

// ContentStorage implements the ContentStorage interface for Badger.
// Content rows are immutable after write; a re-scan inserts new rows
// rather than updating existing ones.
type ContentStorage struct {
	db     *BadgerDB
	logger arbor.ILogger
}

// NewContentStorage creates a new ContentStorage instance
func NewContentStorage(db *BadgerDB, logger arbor.ILogger) interfaces.ContentStorage {
	return &ContentStorage{
		db:     db,
		logger: logger,
	}
}

func (s *ContentStorage) SaveContent(ctx context.Context, content *models.ExtractedContent) error {
	if content.ID == "" {
		return fmt.Errorf("content ID is required")
	}
	if content.CreatedAt.IsZero() {
		content.CreatedAt = time.Now()
	}

	if err := s.db.Store().Insert(content.ID, content); err != nil {
		if err == badgerhold.ErrKeyExists {
			return fmt.Errorf("content %s already exists: rows are immutable", content.ID)
		}
		return fmt.Errorf("failed to save content: %w", err)
	}
	return nil
}

func (s *ContentStorage) GetContent(ctx context.Context, id string) (*models.ExtractedContent, error) {
	var content models.ExtractedContent
	if err := s.db.Store().Get(id, &content); err != nil {
		if err == badgerhold.ErrNotFound {
			return nil, fmt.Errorf("content %s: %w", id, interfaces.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get content: %w", err)
	}
	return &content, nil
}

func (s *ContentStorage) GetContentByJob(ctx context.Context, scanJobID string) ([]*models.ExtractedContent, error) {
	var contents []models.ExtractedContent
	query := badgerhold.Where("ScanJobID").Eq(scanJobID).SortBy("CreatedAt")
	if err := s.db.Store().Find(&contents, query); err != nil {
		return nil, fmt.Errorf("failed to list content for job %s: %w", scanJobID, err)
	}

	result := make([]*models.ExtractedContent, len(contents))
	for i := range contents {
		result[i] = &contents[i]
	}
	return result, nil
}

func (s *ContentStorage) CountContentByJob(ctx context.Context, scanJobID string) (int, error) {
	count, err := s.db.Store().Count(&models.ExtractedContent{}, badgerhold.Where("ScanJobID").Eq(scanJobID))
	if err != nil {
		return 0, fmt.Errorf("failed to count content: %w", err)
	}
	return int(count), nil
}

func (s *ContentStorage) DeleteContentByJob(ctx context.Context, scanJobID string) error {
	if err := s.db.Store().DeleteMatching(&models.ExtractedContent{}, badgerhold.Where("ScanJobID").Eq(scanJobID)); err != nil {
		return fmt.Errorf("failed to delete content for job %s: %w", scanJobID, err)
	}
	return nil
}
