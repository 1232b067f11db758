package app

import (
	"context"

	"github.com/ternarybob/arbor"

	"github.com/brightreply/scout/internal/common"
	"github.com/brightreply/scout/internal/interfaces"
	"github.com/brightreply/scout/internal/services/analysis"
	"github.com/brightreply/scout/internal/services/crawler"
	"github.com/brightreply/scout/internal/services/extractor"
	"github.com/brightreply/scout/internal/services/knowledge"
	"github.com/brightreply/scout/internal/services/llm"
	"github.com/brightreply/scout/internal/services/pdf"
	"github.com/brightreply/scout/internal/services/scanner"
	"github.com/brightreply/scout/internal/services/scheduler"
	badgerstore "github.com/brightreply/scout/internal/storage/badger"
)

// App holds all application components and dependencies. Every service is
// explicitly constructed and injected; nothing reaches for globals.
type App struct {
	Config *common.Config
	Logger arbor.ILogger

	StorageManager interfaces.StorageManager

	Validator         *crawler.URLValidator
	RobotsChecker     *crawler.RobotsChecker
	RateLimiter       *crawler.RateLimiter
	Fetcher           *crawler.Fetcher
	Extractor         *extractor.Service
	Classifier        *analysis.Classifier
	Analyzer          *analysis.Analyzer
	BusinessExtractor *analysis.BusinessExtractor
	DuplicateDetector *analysis.DuplicateDetector

	ScannerService   *scanner.Service
	KnowledgeService *knowledge.Service
	PDFExtractor     *pdf.Extractor
	SchedulerService *scheduler.Service
}

// New wires the full service graph from configuration
func New(ctx context.Context, config *common.Config, logger arbor.ILogger) (*App, error) {
	storageManager, err := badgerstore.NewManager(logger, &config.Storage.Badger)
	if err != nil {
		return nil, err
	}

	validator := crawler.NewURLValidator(
		logger,
		config.Crawler.UserAgent,
		config.Crawler.ProbeTimeout,
		config.Environment == "production",
	)
	robotsChecker := crawler.NewRobotsChecker(
		logger,
		config.Crawler.UserAgent,
		config.Crawler.RobotsTimeout,
		config.Crawler.RobotsCacheTTL,
	)
	rateLimiter := crawler.NewRateLimiter(config.Crawler.MinRequestInterval())
	fetcher := crawler.NewFetcher(logger, &config.Crawler, robotsChecker, rateLimiter)

	extractorSvc := extractor.NewService(logger)
	classifier := analysis.NewClassifier(logger)
	analyzer := analysis.NewAnalyzer(logger, classifier)
	businessExtractor := analysis.NewBusinessExtractor(logger)
	duplicateDetector := analysis.NewDuplicateDetector(
		logger,
		config.Analysis.DuplicateThreshold,
		config.Analysis.DuplicateCacheSize,
	)

	scannerSvc := scanner.NewService(
		logger,
		config,
		validator,
		fetcher,
		extractorSvc,
		analyzer,
		businessExtractor,
		duplicateDetector,
		storageManager,
	)

	// Enrichment is best-effort: a missing API key disables it rather
	// than failing startup.
	var generator interfaces.TextGenerator
	if config.Knowledge.EnrichmentEnabled {
		generator, err = llm.NewTextGenerator(ctx, config, logger)
		if err != nil {
			logger.Warn().Err(err).Msg("Enrichment provider unavailable, continuing without it")
			generator = nil
		}
	}

	knowledgeSvc := knowledge.NewService(
		logger,
		&config.Knowledge,
		storageManager,
		generator,
		config.Analysis.DuplicateThreshold,
	)

	schedulerSvc := scheduler.NewService(logger, &config.Scheduler, knowledgeSvc)

	return &App{
		Config:            config,
		Logger:            logger,
		StorageManager:    storageManager,
		Validator:         validator,
		RobotsChecker:     robotsChecker,
		RateLimiter:       rateLimiter,
		Fetcher:           fetcher,
		Extractor:         extractorSvc,
		Classifier:        classifier,
		Analyzer:          analyzer,
		BusinessExtractor: businessExtractor,
		DuplicateDetector: duplicateDetector,
		ScannerService:    scannerSvc,
		KnowledgeService:  knowledgeSvc,
		PDFExtractor:      pdf.NewExtractor(logger),
		SchedulerService:  schedulerSvc,
	}, nil
}

// Close releases application resources in reverse dependency order
func (a *App) Close() error {
	if a.SchedulerService != nil {
		a.SchedulerService.Stop()
	}
	if a.StorageManager != nil {
		return a.StorageManager.Close()
	}
	return nil
}
