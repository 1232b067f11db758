package badger

import (
	"fmt"

	"github.com/ternarybob/arbor"

	"github.com/brightreply/scout/internal/common"
	"github.com/brightreply/scout/internal/interfaces"
)

// Manager aggregates all typed storages over a single Badger database
type Manager struct {
	db            *BadgerDB
	logger        arbor.ILogger
	scanJobs      interfaces.ScanJobStorage
	content       interfaces.ContentStorage
	scanLogs      interfaces.ScanLogStorage
	items         interfaces.KnowledgeItemStorage
	versions      interfaces.KnowledgeVersionStorage
	categories    interfaces.CategoryStorage
	searchHistory interfaces.SearchHistoryStorage
}

// NewManager opens the database and wires all typed storages
func NewManager(logger arbor.ILogger, config *common.BadgerConfig) (interfaces.StorageManager, error) {
	db, err := NewBadgerDB(logger, config)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize storage: %w", err)
	}

	return &Manager{
		db:            db,
		logger:        logger,
		scanJobs:      NewScanJobStorage(db, logger),
		content:       NewContentStorage(db, logger),
		scanLogs:      NewScanLogStorage(db, logger),
		items:         NewKnowledgeItemStorage(db, logger),
		versions:      NewKnowledgeVersionStorage(db, logger),
		categories:    NewCategoryStorage(db, logger),
		searchHistory: NewSearchHistoryStorage(db, logger),
	}, nil
}

func (m *Manager) ScanJobStorage() interfaces.ScanJobStorage { return m.scanJobs }

func (m *Manager) ContentStorage() interfaces.ContentStorage { return m.content }

func (m *Manager) ScanLogStorage() interfaces.ScanLogStorage { return m.scanLogs }

func (m *Manager) KnowledgeItemStorage() interfaces.KnowledgeItemStorage { return m.items }

func (m *Manager) KnowledgeVersionStorage() interfaces.KnowledgeVersionStorage { return m.versions }

func (m *Manager) CategoryStorage() interfaces.CategoryStorage { return m.categories }

func (m *Manager) SearchHistoryStorage() interfaces.SearchHistoryStorage { return m.searchHistory }

func (m *Manager) Close() error {
	m.logger.Debug().Msg("Closing storage manager")
	return m.db.Close()
}
