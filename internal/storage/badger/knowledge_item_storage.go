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

// KnowledgeItemStorage implements the KnowledgeItemStorage interface for Badger
type KnowledgeItemStorage struct {
	db     *BadgerDB
	logger arbor.ILogger
}

// NewKnowledgeItemStorage creates a new KnowledgeItemStorage instance
func NewKnowledgeItemStorage(db *BadgerDB, logger arbor.ILogger) interfaces.KnowledgeItemStorage {
	return &KnowledgeItemStorage{
		db:     db,
		logger: logger,
	}
}

func (s *KnowledgeItemStorage) SaveItem(ctx context.Context, item *models.KnowledgeItem) error {
	if item.ID == "" {
		return fmt.Errorf("knowledge item ID is required")
	}

	now := time.Now()
	if item.CreatedAt.IsZero() {
		item.CreatedAt = now
	}
	item.UpdatedAt = now

	if err := s.db.Store().Upsert(item.ID, item); err != nil {
		return fmt.Errorf("failed to save knowledge item: %w", err)
	}
	return nil
}

func (s *KnowledgeItemStorage) GetItem(ctx context.Context, id string) (*models.KnowledgeItem, error) {
	var item models.KnowledgeItem
	if err := s.db.Store().Get(id, &item); err != nil {
		if err == badgerhold.ErrNotFound {
			return nil, fmt.Errorf("knowledge item %s: %w", id, interfaces.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get knowledge item: %w", err)
	}
	return &item, nil
}

func (s *KnowledgeItemStorage) ListItems(ctx context.Context, opts *interfaces.KnowledgeListOptions) ([]*models.KnowledgeItem, error) {
	if opts == nil {
		opts = &interfaces.KnowledgeListOptions{}
	}

	var query *badgerhold.Query
	addFilter := func(field string, value interface{}) {
		if query == nil {
			query = badgerhold.Where(field).Eq(value)
		} else {
			query = query.And(field).Eq(value)
		}
	}

	if opts.CategoryID != "" {
		addFilter("CategoryID", opts.CategoryID)
	}
	if opts.Status != "" {
		addFilter("Status", opts.Status)
	}
	if opts.SourceType != "" {
		addFilter("SourceType", opts.SourceType)
	}
	if query == nil {
		query = &badgerhold.Query{}
	}

	query = query.SortBy("UpdatedAt").Reverse()
	if opts.Offset > 0 {
		query = query.Skip(opts.Offset)
	}
	if opts.Limit > 0 {
		query = query.Limit(opts.Limit)
	}

	var items []models.KnowledgeItem
	if err := s.db.Store().Find(&items, query); err != nil {
		return nil, fmt.Errorf("failed to list knowledge items: %w", err)
	}

	result := make([]*models.KnowledgeItem, len(items))
	for i := range items {
		result[i] = &items[i]
	}
	return result, nil
}

func (s *KnowledgeItemStorage) DeleteItem(ctx context.Context, id string) error {
	if err := s.db.Store().Delete(id, &models.KnowledgeItem{}); err != nil {
		if err == badgerhold.ErrNotFound {
			return fmt.Errorf("knowledge item %s: %w", id, interfaces.ErrNotFound)
		}
		return fmt.Errorf("failed to delete knowledge item: %w", err)
	}
	return nil
}

func (s *KnowledgeItemStorage) CountItems(ctx context.Context) (int, error) {
	count, err := s.db.Store().Count(&models.KnowledgeItem{}, &badgerhold.Query{})
	if err != nil {
		return 0, fmt.Errorf("failed to count knowledge items: %w", err)
	}
	return int(count), nil
}

func (s *KnowledgeItemStorage) CountItemsByCategory(ctx context.Context, categoryID string) (int, error) {
	count, err := s.db.Store().Count(&models.KnowledgeItem{}, badgerhold.Where("CategoryID").Eq(categoryID))
	if err != nil {
		return 0, fmt.Errorf("failed to count knowledge items by category: %w", err)
	}
	return int(count), nil
}
