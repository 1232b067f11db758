package knowledge

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/brightreply/scout/internal/common"
	"github.com/brightreply/scout/internal/interfaces"
	"github.com/brightreply/scout/internal/models"
)

// CategoryNode is a category with its resolved children
type CategoryNode struct {
	Category *models.KnowledgeCategory `json:"category"`
	Children []*CategoryNode           `json:"children,omitempty"`
}

// CreateCategory adds a node to the category forest. A non-empty parent
// must exist.
func (s *Service) CreateCategory(ctx context.Context, name, parentID string, orderIndex int, color, icon string) (*models.KnowledgeCategory, error) {
	if strings.TrimSpace(name) == "" {
		return nil, fmt.Errorf("category name is required")
	}
	if parentID != "" {
		if _, err := s.storage.CategoryStorage().GetCategory(ctx, parentID); err != nil {
			return nil, fmt.Errorf("parent category: %w", err)
		}
	}

	now := time.Now()
	category := &models.KnowledgeCategory{
		ID:         common.NewCategoryID(),
		Name:       name,
		ParentID:   parentID,
		OrderIndex: orderIndex,
		Color:      color,
		Icon:       icon,
		IsActive:   true,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	if err := s.storage.CategoryStorage().SaveCategory(ctx, category); err != nil {
		return nil, err
	}

	s.logger.Debug().Str("category_id", category.ID).Str("name", name).Msg("Category created")
	return category, nil
}

// UpdateCategory persists changes to an existing category
func (s *Service) UpdateCategory(ctx context.Context, category *models.KnowledgeCategory) error {
	if _, err := s.storage.CategoryStorage().GetCategory(ctx, category.ID); err != nil {
		return err
	}
	return s.storage.CategoryStorage().SaveCategory(ctx, category)
}

// GetCategory returns one category by ID
func (s *Service) GetCategory(ctx context.Context, id string) (*models.KnowledgeCategory, error) {
	return s.storage.CategoryStorage().GetCategory(ctx, id)
}

// CategoryTree builds the category forest ordered by OrderIndex at every
// level. Categories whose parent is missing surface as roots rather than
// disappearing.
func (s *Service) CategoryTree(ctx context.Context) ([]*CategoryNode, error) {
	categories, err := s.storage.CategoryStorage().ListCategories(ctx)
	if err != nil {
		return nil, err
	}

	nodes := make(map[string]*CategoryNode, len(categories))
	for _, category := range categories {
		nodes[category.ID] = &CategoryNode{Category: category}
	}

	var roots []*CategoryNode
	for _, category := range categories {
		node := nodes[category.ID]
		if category.ParentID == "" {
			roots = append(roots, node)
			continue
		}
		parent, ok := nodes[category.ParentID]
		if !ok {
			roots = append(roots, node)
			continue
		}
		parent.Children = append(parent.Children, node)
	}

	var sortLevel func([]*CategoryNode)
	sortLevel = func(level []*CategoryNode) {
		sort.Slice(level, func(i, j int) bool {
			return level[i].Category.OrderIndex < level[j].Category.OrderIndex
		})
		for _, node := range level {
			sortLevel(node.Children)
		}
	}
	sortLevel(roots)

	return roots, nil
}

// DeleteCategory removes a category. Deletion is rejected with
// ErrCategoryHasChildren while child categories exist; children must be
// re-parented first. Items referencing the category are detached, not
// deleted.
func (s *Service) DeleteCategory(ctx context.Context, id string) error {
	if _, err := s.storage.CategoryStorage().GetCategory(ctx, id); err != nil {
		return err
	}

	children, err := s.storage.CategoryStorage().GetChildren(ctx, id)
	if err != nil {
		return err
	}
	if len(children) > 0 {
		return fmt.Errorf("%w: %s has %d children", ErrCategoryHasChildren, id, len(children))
	}

	items, err := s.storage.KnowledgeItemStorage().ListItems(ctx, &interfaces.KnowledgeListOptions{CategoryID: id})
	if err != nil {
		return err
	}
	for _, item := range items {
		item.CategoryID = ""
		if err := s.storage.KnowledgeItemStorage().SaveItem(ctx, item); err != nil {
			return fmt.Errorf("failed to detach item %s: %w", item.ID, err)
		}
	}

	if err := s.storage.CategoryStorage().DeleteCategory(ctx, id); err != nil {
		return err
	}

	s.logger.Info().Str("category_id", id).Int("detached_items", len(items)).Msg("Category deleted")
	return nil
}
