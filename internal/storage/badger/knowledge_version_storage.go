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

// KnowledgeVersionStorage implements the KnowledgeVersionStorage interface
// for Badger. Versions are append-only snapshots; they are never updated.
type KnowledgeVersionStorage struct {
	db     *BadgerDB
	logger arbor.ILogger
}

// NewKnowledgeVersionStorage creates a new KnowledgeVersionStorage instance
func NewKnowledgeVersionStorage(db *BadgerDB, logger arbor.ILogger) interfaces.KnowledgeVersionStorage {
	return &KnowledgeVersionStorage{
		db:     db,
		logger: logger,
	}
}

func (s *KnowledgeVersionStorage) AppendVersion(ctx context.Context, version *models.KnowledgeVersion) error {
	if version.ID == "" {
		return fmt.Errorf("version ID is required")
	}
	if version.ItemID == "" {
		return fmt.Errorf("version item ID is required")
	}
	if version.CreatedAt.IsZero() {
		version.CreatedAt = time.Now()
	}

	if err := s.db.Store().Insert(version.ID, version); err != nil {
		return fmt.Errorf("failed to append version: %w", err)
	}
	return nil
}

func (s *KnowledgeVersionStorage) GetVersions(ctx context.Context, itemID string) ([]*models.KnowledgeVersion, error) {
	var versions []models.KnowledgeVersion
	query := badgerhold.Where("ItemID").Eq(itemID).SortBy("Version").Reverse()
	if err := s.db.Store().Find(&versions, query); err != nil {
		return nil, fmt.Errorf("failed to get versions for item %s: %w", itemID, err)
	}

	result := make([]*models.KnowledgeVersion, len(versions))
	for i := range versions {
		result[i] = &versions[i]
	}
	return result, nil
}

func (s *KnowledgeVersionStorage) GetVersion(ctx context.Context, itemID string, version int) (*models.KnowledgeVersion, error) {
	var versions []models.KnowledgeVersion
	query := badgerhold.Where("ItemID").Eq(itemID).And("Version").Eq(version)
	if err := s.db.Store().Find(&versions, query); err != nil {
		return nil, fmt.Errorf("failed to get version %d for item %s: %w", version, itemID, err)
	}
	if len(versions) == 0 {
		return nil, fmt.Errorf("version %d of item %s: %w", version, itemID, interfaces.ErrNotFound)
	}
	return &versions[0], nil
}

func (s *KnowledgeVersionStorage) CountVersions(ctx context.Context, itemID string) (int, error) {
	count, err := s.db.Store().Count(&models.KnowledgeVersion{}, badgerhold.Where("ItemID").Eq(itemID))
	if err != nil {
		return 0, fmt.Errorf("failed to count versions: %w", err)
	}
	return int(count), nil
}

func (s *KnowledgeVersionStorage) DeleteVersionsByItem(ctx context.Context, itemID string) error {
	if err := s.db.Store().DeleteMatching(&models.KnowledgeVersion{}, badgerhold.Where("ItemID").Eq(itemID)); err != nil {
		return fmt.Errorf("failed to delete versions for item %s: %w", itemID, err)
	}
	return nil
}
