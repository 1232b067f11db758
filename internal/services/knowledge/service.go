package knowledge

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/ternarybob/arbor"

	"github.com/brightreply/scout/internal/common"
	"github.com/brightreply/scout/internal/interfaces"
	"github.com/brightreply/scout/internal/models"
)

// effectivenessAlpha weighs new feedback against the running score
const effectivenessAlpha = 0.2

// Service is the knowledge base manager: versioned CRUD over knowledge
// items, the category forest, search, analytics, and import from scan
// results and files. Every content mutation increments the item version
// by exactly one and appends an immutable KnowledgeVersion snapshot.
type Service struct {
	logger    arbor.ILogger
	config    *common.KnowledgeConfig
	storage   interfaces.StorageManager
	generator interfaces.TextGenerator // nil when enrichment is disabled
	threshold float64                  // bulk import duplicate threshold
}

// NewService creates a knowledge base manager. generator may be nil;
// enrichment is then skipped.
func NewService(
	logger arbor.ILogger,
	config *common.KnowledgeConfig,
	storage interfaces.StorageManager,
	generator interfaces.TextGenerator,
	duplicateThreshold float64,
) *Service {
	if duplicateThreshold <= 0 || duplicateThreshold > 1 {
		duplicateThreshold = 0.85
	}

	return &Service{
		logger:    logger,
		config:    config,
		storage:   storage,
		generator: generator,
		threshold: duplicateThreshold,
	}
}

// ItemInput carries the caller-supplied fields for item creation
type ItemInput struct {
	Title      string
	Content    string
	Summary    string
	CategoryID string
	SourceType models.KnowledgeSourceType
	SourceURL  string
	FilePath   string
	Tags       []string
	Status     models.KnowledgeStatus
	Confidence float64
	ChangedBy  string
}

// ItemUpdate carries the mutable fields for an update. Nil pointers mean
// "leave unchanged".
type ItemUpdate struct {
	Title      *string
	Content    *string
	Summary    *string
	CategoryID *string
	Tags       []string
	Status     *models.KnowledgeStatus
	ChangedBy  string
}

// CreateItem persists a new knowledge item at version 1 together with its
// initial version snapshot.
func (s *Service) CreateItem(ctx context.Context, input ItemInput) (*models.KnowledgeItem, error) {
	if strings.TrimSpace(input.Title) == "" {
		return nil, fmt.Errorf("knowledge item title is required")
	}
	if input.Status == "" {
		input.Status = models.KnowledgeStatusActive
	}
	if input.SourceType == "" {
		input.SourceType = models.KnowledgeSourceManual
	}

	now := time.Now()
	item := &models.KnowledgeItem{
		ID:              common.NewKnowledgeID(),
		Title:           input.Title,
		Content:         input.Content,
		Summary:         input.Summary,
		CategoryID:      input.CategoryID,
		SourceType:      input.SourceType,
		SourceURL:       input.SourceURL,
		FilePath:        input.FilePath,
		Tags:            input.Tags,
		Status:          input.Status,
		ConfidenceScore: input.Confidence,
		Version:         1,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	if err := s.storage.KnowledgeItemStorage().SaveItem(ctx, item); err != nil {
		return nil, fmt.Errorf("failed to create knowledge item: %w", err)
	}
	if err := s.appendSnapshot(ctx, item, input.ChangedBy); err != nil {
		// Every stored item must have a matching snapshot row.
		if delErr := s.storage.KnowledgeItemStorage().DeleteItem(ctx, item.ID); delErr != nil {
			s.logger.Warn().Str("item_id", item.ID).Err(delErr).Msg("Failed to remove item after snapshot failure")
		}
		return nil, err
	}

	s.logger.Info().
		Str("item_id", item.ID).
		Str("source_type", string(item.SourceType)).
		Msg("Knowledge item created")

	return item, nil
}

// GetItem returns one knowledge item by ID
func (s *Service) GetItem(ctx context.Context, id string) (*models.KnowledgeItem, error) {
	return s.storage.KnowledgeItemStorage().GetItem(ctx, id)
}

// ListItems returns items matching the filter options
func (s *Service) ListItems(ctx context.Context, opts *interfaces.KnowledgeListOptions) ([]*models.KnowledgeItem, error) {
	return s.storage.KnowledgeItemStorage().ListItems(ctx, opts)
}

// UpdateItem applies an update, bumps the version by one, and appends the
// corresponding version snapshot.
func (s *Service) UpdateItem(ctx context.Context, id string, update ItemUpdate) (*models.KnowledgeItem, error) {
	item, err := s.storage.KnowledgeItemStorage().GetItem(ctx, id)
	if err != nil {
		return nil, err
	}
	previous := *item

	if update.Title != nil {
		item.Title = *update.Title
	}
	if update.Content != nil {
		item.Content = *update.Content
	}
	if update.Summary != nil {
		item.Summary = *update.Summary
	}
	if update.CategoryID != nil {
		item.CategoryID = *update.CategoryID
	}
	if update.Tags != nil {
		item.Tags = update.Tags
	}
	if update.Status != nil {
		item.Status = *update.Status
	}

	item.Version++
	item.UpdatedAt = time.Now()

	if err := s.storage.KnowledgeItemStorage().SaveItem(ctx, item); err != nil {
		return nil, fmt.Errorf("failed to update knowledge item: %w", err)
	}
	if err := s.appendSnapshot(ctx, item, update.ChangedBy); err != nil {
		// Roll back so the stored version never runs ahead of the history.
		if saveErr := s.storage.KnowledgeItemStorage().SaveItem(ctx, &previous); saveErr != nil {
			s.logger.Warn().Str("item_id", item.ID).Err(saveErr).Msg("Failed to restore item after snapshot failure")
		}
		return nil, err
	}

	s.logger.Debug().
		Str("item_id", item.ID).
		Int("version", item.Version).
		Msg("Knowledge item updated")

	return item, nil
}

// DeleteItem removes an item together with its version history
func (s *Service) DeleteItem(ctx context.Context, id string) error {
	if err := s.storage.KnowledgeItemStorage().DeleteItem(ctx, id); err != nil {
		return err
	}
	if err := s.storage.KnowledgeVersionStorage().DeleteVersionsByItem(ctx, id); err != nil {
		return fmt.Errorf("failed to delete version history: %w", err)
	}

	s.logger.Info().Str("item_id", id).Msg("Knowledge item deleted")
	return nil
}

// GetVersions returns an item's version history, newest first
func (s *Service) GetVersions(ctx context.Context, itemID string) ([]*models.KnowledgeVersion, error) {
	return s.storage.KnowledgeVersionStorage().GetVersions(ctx, itemID)
}

// RestoreVersion applies an old version's title, content, and summary as
// a fresh update. Version numbers keep increasing; history is never
// rolled back.
func (s *Service) RestoreVersion(ctx context.Context, itemID string, version int, changedBy string) (*models.KnowledgeItem, error) {
	snapshot, err := s.storage.KnowledgeVersionStorage().GetVersion(ctx, itemID, version)
	if err != nil {
		return nil, err
	}

	return s.UpdateItem(ctx, itemID, ItemUpdate{
		Title:     &snapshot.Title,
		Content:   &snapshot.Content,
		Summary:   &snapshot.Summary,
		ChangedBy: changedBy,
	})
}

// RecordUsage increments an item's usage counter. Usage mutations do not
// touch content and therefore do not create versions.
func (s *Service) RecordUsage(ctx context.Context, itemID string) error {
	item, err := s.storage.KnowledgeItemStorage().GetItem(ctx, itemID)
	if err != nil {
		return err
	}

	item.UsageCount++
	return s.storage.KnowledgeItemStorage().SaveItem(ctx, item)
}

// RecordFeedback folds a helpful/unhelpful signal into the item's
// effectiveness score as an exponential moving average.
func (s *Service) RecordFeedback(ctx context.Context, itemID string, helpful bool) error {
	item, err := s.storage.KnowledgeItemStorage().GetItem(ctx, itemID)
	if err != nil {
		return err
	}

	signal := 0.0
	if helpful {
		signal = 1.0
	}
	if item.UsageCount == 0 && item.EffectivenessScore == 0 {
		item.EffectivenessScore = signal
	} else {
		item.EffectivenessScore = item.EffectivenessScore*(1-effectivenessAlpha) + signal*effectivenessAlpha
	}

	return s.storage.KnowledgeItemStorage().SaveItem(ctx, item)
}

// Enrich asks the AI provider for a summary and suggested tags. Failures
// are logged and leave the item unchanged; enrichment is never required
// for an item to exist.
func (s *Service) Enrich(ctx context.Context, itemID, changedBy string) (*models.KnowledgeItem, error) {
	item, err := s.storage.KnowledgeItemStorage().GetItem(ctx, itemID)
	if err != nil {
		return nil, err
	}
	if s.generator == nil {
		return item, nil
	}

	update := ItemUpdate{ChangedBy: changedBy}
	changed := false

	if item.Summary == "" {
		prompt := fmt.Sprintf("Summarize the following business content in two sentences:\n\n%s", truncate(item.Content, 6000))
		if summary, err := s.generator.Generate(ctx, prompt, 256); err != nil {
			s.logger.Warn().Str("item_id", itemID).Err(err).Msg("Summary enrichment failed")
		} else {
			summary = strings.TrimSpace(summary)
			update.Summary = &summary
			changed = true
		}
	}

	if len(item.Tags) == 0 {
		prompt := fmt.Sprintf("List up to five short lowercase topic tags for the following content, comma separated, nothing else:\n\n%s", truncate(item.Content, 6000))
		if raw, err := s.generator.Generate(ctx, prompt, 64); err != nil {
			s.logger.Warn().Str("item_id", itemID).Err(err).Msg("Tag enrichment failed")
		} else if tags := parseTagList(raw); len(tags) > 0 {
			update.Tags = tags
			changed = true
		}
	}

	if !changed {
		return item, nil
	}
	return s.UpdateItem(ctx, itemID, update)
}

// appendSnapshot writes the version row matching the item's current state
func (s *Service) appendSnapshot(ctx context.Context, item *models.KnowledgeItem, changedBy string) error {
	snapshot := &models.KnowledgeVersion{
		ID:        common.NewVersionID(),
		ItemID:    item.ID,
		Version:   item.Version,
		Title:     item.Title,
		Content:   item.Content,
		Summary:   item.Summary,
		ChangedBy: changedBy,
		CreatedAt: time.Now(),
	}
	if err := s.storage.KnowledgeVersionStorage().AppendVersion(ctx, snapshot); err != nil {
		return fmt.Errorf("failed to append version snapshot: %w", err)
	}
	return nil
}

func truncate(text string, limit int) string {
	if len(text) <= limit {
		return text
	}
	return text[:limit]
}

func parseTagList(raw string) []string {
	var tags []string
	for _, part := range strings.Split(raw, ",") {
		tag := strings.ToLower(strings.TrimSpace(part))
		tag = strings.Trim(tag, ".\"'`")
		if tag != "" && len(tag) <= 40 {
			tags = append(tags, tag)
		}
	}
	if len(tags) > 5 {
		tags = tags[:5]
	}
	return tags
}
