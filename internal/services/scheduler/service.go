package scheduler

import (
	"context"
	"fmt"

	"github.com/robfig/cron/v3"
	"github.com/ternarybob/arbor"

	"github.com/brightreply/scout/internal/common"
	"github.com/brightreply/scout/internal/services/knowledge"
)

// Service runs background maintenance on a cron schedule: refreshing the
// knowledge analytics rollup and pruning expired search history.
type Service struct {
	logger    arbor.ILogger
	config    *common.SchedulerConfig
	knowledge *knowledge.Service
	cron      *cron.Cron
}

// NewService creates the maintenance scheduler
func NewService(logger arbor.ILogger, config *common.SchedulerConfig, knowledgeSvc *knowledge.Service) *Service {
	return &Service{
		logger:    logger,
		config:    config,
		knowledge: knowledgeSvc,
		cron:      cron.New(),
	}
}

// Start registers the maintenance job and begins the cron loop. A no-op
// when the scheduler is disabled.
func (s *Service) Start() error {
	if !s.config.Enabled {
		s.logger.Debug().Msg("Scheduler disabled")
		return nil
	}

	schedule := s.config.AnalyticsSchedule
	if schedule == "" {
		schedule = "0 */6 * * *"
	}

	if _, err := s.cron.AddFunc(schedule, s.runMaintenance); err != nil {
		return fmt.Errorf("failed to register maintenance job: %w", err)
	}

	s.cron.Start()
	s.logger.Info().Str("schedule", schedule).Msg("Scheduler started")
	return nil
}

// Stop halts the cron loop, waiting for a running job to finish
func (s *Service) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	s.logger.Debug().Msg("Scheduler stopped")
}

func (s *Service) runMaintenance() {
	ctx := context.Background()

	if pruned, err := s.knowledge.PruneSearchHistory(ctx); err != nil {
		s.logger.Warn().Err(err).Msg("Search history prune failed")
	} else if pruned > 0 {
		s.logger.Info().Int("pruned", pruned).Msg("Search history pruned")
	}

	analytics, err := s.knowledge.Analytics(ctx)
	if err != nil {
		s.logger.Warn().Err(err).Msg("Analytics refresh failed")
		return
	}

	s.logger.Info().
		Int("total_items", analytics.TotalItems).
		Int("active_items", analytics.ActiveItems).
		Int("knowledge_gaps", len(analytics.KnowledgeGaps)).
		Msg("Knowledge analytics refreshed")
}
