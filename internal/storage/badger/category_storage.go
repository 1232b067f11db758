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

// CategoryStorage implements the CategoryStorage interface for Badger
type CategoryStorage struct {
	db     *BadgerDB
	logger arbor.ILogger
}

// NewCategoryStorage creates a new CategoryStorage instance
func NewCategoryStorage(db *BadgerDB, logger arbor.ILogger) interfaces.CategoryStorage {
	return &CategoryStorage{
		db:     db,
		logger: logger,
	}
}

func (s *CategoryStorage) SaveCategory(ctx context.Context, category *models.KnowledgeCategory) error {
	if category.ID == "" {
		return fmt.Errorf("category ID is required")
	}
	if category.Name == "" {
		return fmt.Errorf("category name is required")
	}

	now := time.Now()
	if category.CreatedAt.IsZero() {
		category.CreatedAt = now
	}
	category.UpdatedAt = now

	if err := s.db.Store().Upsert(category.ID, category); err != nil {
		return fmt.Errorf("failed to save category: %w", err)
	}
	return nil
}

func (s *CategoryStorage) GetCategory(ctx context.Context, id string) (*models.KnowledgeCategory, error) {
	var category models.KnowledgeCategory
	if err := s.db.Store().Get(id, &category); err != nil {
		if err == badgerhold.ErrNotFound {
			return nil, fmt.Errorf("category %s: %w", id, interfaces.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get category: %w", err)
	}
	return &category, nil
}

func (s *CategoryStorage) ListCategories(ctx context.Context) ([]*models.KnowledgeCategory, error) {
	var categories []models.KnowledgeCategory
	query := (&badgerhold.Query{}).SortBy("OrderIndex")
	if err := s.db.Store().Find(&categories, query); err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}

	result := make([]*models.KnowledgeCategory, len(categories))
	for i := range categories {
		result[i] = &categories[i]
	}
	return result, nil
}

func (s *CategoryStorage) GetChildren(ctx context.Context, parentID string) ([]*models.KnowledgeCategory, error) {
	var categories []models.KnowledgeCategory
	query := badgerhold.Where("ParentID").Eq(parentID).SortBy("OrderIndex")
	if err := s.db.Store().Find(&categories, query); err != nil {
		return nil, fmt.Errorf("failed to get child categories: %w", err)
	}

	result := make([]*models.KnowledgeCategory, len(categories))
	for i := range categories {
		result[i] = &categories[i]
	}
	return result, nil
}

func (s *CategoryStorage) DeleteCategory(ctx context.Context, id string) error {
	if err := s.db.Store().Delete(id, &models.KnowledgeCategory{}); err != nil {
		if err == badgerhold.ErrNotFound {
			return fmt.Errorf("category %s: %w", id, interfaces.ErrNotFound)
		}
		return fmt.Errorf("failed to delete category: %w", err)
	}
	return nil
}
