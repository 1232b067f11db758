package scanner

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/ternarybob/arbor"

	"github.com/brightreply/scout/internal/common"
	"github.com/brightreply/scout/internal/interfaces"
	"github.com/brightreply/scout/internal/models"
	"github.com/brightreply/scout/internal/services/analysis"
	"github.com/brightreply/scout/internal/services/crawler"
	"github.com/brightreply/scout/internal/services/extractor"
)

// ErrStorage - a persistence failure escaped the batch loop; the job is
// marked failed.
var ErrStorage = errors.New("storage failure")

// ErrJobNotRunning - a pause/resume/cancel request targeted a job that is
// not in a state accepting it.
var ErrJobNotRunning = errors.New("job is not in a controllable state")

// Service orchestrates scan jobs: it validates seed URLs, drives the
// fetch/extract/analyze pipeline in bounded-concurrency chunks, persists
// progress after each chunk, and owns all job state transitions.
type Service struct {
	logger     arbor.ILogger
	config     *common.Config
	validator  *crawler.URLValidator
	fetcher    *crawler.Fetcher
	extractor  *extractor.Service
	analyzer   *analysis.Analyzer
	business   *analysis.BusinessExtractor
	duplicates *analysis.DuplicateDetector
	storage    interfaces.StorageManager

	mu       sync.Mutex
	controls map[string]*jobControl
}

// jobControl carries the cooperative pause/cancel flags and the unprocessed
// remainder for one in-flight job. Checked at chunk boundaries only, so
// in-flight fetches complete before a pause takes effect.
type jobControl struct {
	mu        sync.Mutex
	paused    bool
	cancelled bool
	remaining []string
}

// NewService creates a scan orchestrator
func NewService(
	logger arbor.ILogger,
	config *common.Config,
	validator *crawler.URLValidator,
	fetcher *crawler.Fetcher,
	extractorSvc *extractor.Service,
	analyzer *analysis.Analyzer,
	business *analysis.BusinessExtractor,
	duplicates *analysis.DuplicateDetector,
	storage interfaces.StorageManager,
) *Service {
	return &Service{
		logger:     logger,
		config:     config,
		validator:  validator,
		fetcher:    fetcher,
		extractor:  extractorSvc,
		analyzer:   analyzer,
		business:   business,
		duplicates: duplicates,
		storage:    storage,
		controls:   make(map[string]*jobControl),
	}
}

// CreateJob persists a new pending scan job with a snapshot of the
// current crawl configuration.
func (s *Service) CreateJob(ctx context.Context, ownerID, name string, seedURLs []string) (*models.ScanJob, error) {
	job := &models.ScanJob{
		ID:       common.NewScanJobID(),
		OwnerID:  ownerID,
		Name:     name,
		SeedURLs: seedURLs,
		Status:   models.ScanJobStatusPending,
		Config: models.ScanConfig{
			UserAgent:         s.config.Crawler.UserAgent,
			RequestTimeout:    s.config.Crawler.RequestTimeout,
			RequestsPerSecond: s.config.Crawler.RequestsPerSecond,
			Concurrency:       s.config.Crawler.Concurrency,
			MaxRetries:        s.config.Crawler.MaxRetries,
			RetryBackoff:      s.config.Crawler.RetryBackoff,
			RespectRobotsTxt:  s.config.Crawler.RespectRobotsTxt,
		},
		CreatedAt: time.Now(),
	}

	if err := s.storage.ScanJobStorage().SaveJob(ctx, job); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStorage, err)
	}

	s.logger.Info().
		Str("job_id", job.ID).
		Int("seed_urls", len(seedURLs)).
		Msg("Scan job created")

	return job, nil
}

// Scan runs a pending job to completion, pause, or failure. Individual
// URL failures are recorded on the job and do not abort siblings; the job
// only fails on a job-level precondition or a persistence error escaping
// the chunk loop.
func (s *Service) Scan(ctx context.Context, jobID string) error {
	job, err := s.storage.ScanJobStorage().GetJob(ctx, jobID)
	if err != nil {
		return err
	}
	if job.Status != models.ScanJobStatusPending {
		return fmt.Errorf("job %s is %s, expected pending", jobID, job.Status)
	}

	validURLs := s.validateSeeds(ctx, job)
	if len(validURLs) == 0 {
		s.failJob(ctx, job, crawler.ErrNoValidURLs.Error())
		return crawler.ErrNoValidURLs
	}

	job.PagesFound = len(validURLs)
	job.Status = models.ScanJobStatusScanning
	job.StartedAt = time.Now()
	if err := s.storage.ScanJobStorage().SaveJob(ctx, job); err != nil {
		return fmt.Errorf("%w: %v", ErrStorage, err)
	}

	s.appendLog(ctx, job.ID, models.ScanLogInfo, fmt.Sprintf("scan started with %d valid urls", len(validURLs)), "")

	control := s.controlFor(job.ID)
	control.setRemaining(validURLs)

	return s.process(ctx, job, control)
}

// Pause requests that a scanning job stop before its next chunk
func (s *Service) Pause(jobID string) error {
	s.mu.Lock()
	control, ok := s.controls[jobID]
	s.mu.Unlock()
	if !ok {
		return fmt.Errorf("%w: %s", ErrJobNotRunning, jobID)
	}

	control.mu.Lock()
	control.paused = true
	control.mu.Unlock()

	s.logger.Info().Str("job_id", jobID).Msg("Pause requested")
	return nil
}

// Resume continues a paused job from its first unprocessed URL. When the
// in-memory remainder is gone (process restart), the seed URLs are
// re-validated and the already-processed prefix is skipped.
func (s *Service) Resume(ctx context.Context, jobID string) error {
	job, err := s.storage.ScanJobStorage().GetJob(ctx, jobID)
	if err != nil {
		return err
	}
	if job.Status != models.ScanJobStatusPaused {
		return fmt.Errorf("job %s is %s, expected paused", jobID, job.Status)
	}

	control := s.controlFor(jobID)
	control.mu.Lock()
	control.paused = false
	remaining := control.remaining
	control.mu.Unlock()

	if len(remaining) == 0 {
		validURLs := s.validateSeeds(ctx, job)
		if job.PagesProcessed < len(validURLs) {
			remaining = validURLs[job.PagesProcessed:]
		}
		control.setRemaining(remaining)
	}

	job.Status = models.ScanJobStatusScanning
	if err := s.storage.ScanJobStorage().SaveJob(ctx, job); err != nil {
		return fmt.Errorf("%w: %v", ErrStorage, err)
	}

	s.appendLog(ctx, job.ID, models.ScanLogInfo, fmt.Sprintf("scan resumed with %d urls remaining", len(remaining)), "")

	return s.process(ctx, job, control)
}

// Cancel stops a job at the next chunk boundary and marks it failed
func (s *Service) Cancel(jobID string) error {
	s.mu.Lock()
	control, ok := s.controls[jobID]
	s.mu.Unlock()
	if !ok {
		return fmt.Errorf("%w: %s", ErrJobNotRunning, jobID)
	}

	control.mu.Lock()
	control.cancelled = true
	control.mu.Unlock()

	s.logger.Info().Str("job_id", jobID).Msg("Cancel requested")
	return nil
}

// Status returns the current job record
func (s *Service) Status(ctx context.Context, jobID string) (*models.ScanJob, error) {
	return s.storage.ScanJobStorage().GetJob(ctx, jobID)
}

// process drives the chunk loop. Each chunk's URLs run in parallel with
// results settled independently; progress is persisted after every chunk.
func (s *Service) process(ctx context.Context, job *models.ScanJob, control *jobControl) error {
	chunkSize := job.Config.Concurrency
	if chunkSize <= 0 {
		chunkSize = 5
	}

	for {
		if cancelled, paused := control.state(); cancelled {
			s.failJob(ctx, job, "cancelled")
			s.dropControl(job.ID)
			return nil
		} else if paused {
			job.Status = models.ScanJobStatusPaused
			if err := s.storage.ScanJobStorage().SaveJob(ctx, job); err != nil {
				return fmt.Errorf("%w: %v", ErrStorage, err)
			}
			s.appendLog(ctx, job.ID, models.ScanLogInfo, fmt.Sprintf("scan paused at %d/%d pages", job.PagesProcessed, job.PagesFound), "")
			return nil
		}

		chunk := control.takeChunk(chunkSize)
		if len(chunk) == 0 {
			break
		}

		s.processChunk(ctx, job, chunk)

		job.UpdateProgress()
		if err := s.storage.ScanJobStorage().SaveJob(ctx, job); err != nil {
			s.failJob(ctx, job, fmt.Sprintf("storage failure: %v", err))
			s.dropControl(job.ID)
			return fmt.Errorf("%w: %v", ErrStorage, err)
		}
	}

	job.Status = models.ScanJobStatusCompleted
	job.CompletedAt = time.Now()
	job.UpdateProgress()
	if err := s.storage.ScanJobStorage().SaveJob(ctx, job); err != nil {
		return fmt.Errorf("%w: %v", ErrStorage, err)
	}

	s.appendLog(ctx, job.ID, models.ScanLogInfo, fmt.Sprintf("scan completed: %d/%d pages, %d errors", job.PagesProcessed, job.PagesFound, len(job.URLErrors)), "")
	s.logger.Info().
		Str("job_id", job.ID).
		Int("pages", job.PagesProcessed).
		Int("errors", len(job.URLErrors)).
		Msg("Scan job completed")

	s.dropControl(job.ID)
	return nil
}

// processChunk fans the chunk's URLs out in parallel. Every URL settles
// to either a stored ExtractedContent or a recorded per-URL error.
func (s *Service) processChunk(ctx context.Context, job *models.ScanJob, chunk []string) {
	type outcome struct {
		url string
		err error
	}

	results := make(chan outcome, len(chunk))
	var wg sync.WaitGroup

	for _, pageURL := range chunk {
		wg.Add(1)
		go func(pageURL string) {
			defer wg.Done()
			results <- outcome{url: pageURL, err: s.processURL(ctx, job, pageURL)}
		}(pageURL)
	}

	wg.Wait()
	close(results)

	for result := range results {
		job.PagesProcessed++
		if result.err != nil {
			job.RecordURLError(result.url, result.err.Error())
			s.appendLog(ctx, job.ID, models.ScanLogError, result.err.Error(), result.url)
		}
	}
}

// processURL runs the full pipeline for one URL: fetch, extract, analyze,
// duplicate-check, persist.
func (s *Service) processURL(ctx context.Context, job *models.ScanJob, pageURL string) error {
	fetched, err := s.fetcher.Fetch(ctx, pageURL)
	if err != nil {
		return err
	}

	page, err := s.extractor.Extract(string(fetched.Body), fetched.FinalURL)
	if err != nil {
		return err
	}
	page.URL = pageURL

	contentAnalysis := s.analyzer.Analyze(page.MainText, pageURL)
	businessInfo := s.business.Extract(page)

	metadata := make(map[string]interface{}, len(page.Metadata)+3)
	for key, value := range page.Metadata {
		metadata[key] = value
	}
	metadata["analysis"] = toJSONMap(contentAnalysis)
	if !businessInfo.IsEmpty() {
		metadata["business_info"] = toJSONMap(businessInfo)
	}
	if duplicateOf, similarity := s.duplicates.Check(pageURL, page.MainText); duplicateOf != "" {
		metadata["duplicate_of"] = duplicateOf
		metadata["duplicate_similarity"] = similarity
		s.appendLog(ctx, job.ID, models.ScanLogWarn, fmt.Sprintf("near-duplicate of %s", duplicateOf), pageURL)
	}

	content := &models.ExtractedContent{
		ID:                common.NewContentID(),
		ScanJobID:         job.ID,
		URL:               pageURL,
		Title:             page.Title,
		Content:           page.MainText,
		ContentType:       contentAnalysis.ContentType,
		Headings:          page.Headings,
		Metadata:          metadata,
		WordCount:         page.WordCount(),
		ProcessingQuality: extractor.Quality(page),
		Entities:          contentAnalysis.Entities,
		CreatedAt:         time.Now(),
	}

	if err := s.storage.ContentStorage().SaveContent(ctx, content); err != nil {
		return fmt.Errorf("%w: %v", ErrStorage, err)
	}

	s.appendLog(ctx, job.ID, models.ScanLogInfo, fmt.Sprintf("extracted %q (%s, %d words)", page.Title, contentAnalysis.ContentType, content.WordCount), pageURL)
	return nil
}

// validateSeeds probes all seed URLs concurrently and returns the valid
// set in seed order. Invalid entries become per-URL errors on the job.
func (s *Service) validateSeeds(ctx context.Context, job *models.ScanJob) []string {
	results := make([]*models.ValidationResult, len(job.SeedURLs))
	var wg sync.WaitGroup

	for i, seed := range job.SeedURLs {
		wg.Add(1)
		go func(i int, seed string) {
			defer wg.Done()
			results[i] = s.validator.Validate(ctx, seed)
		}(i, seed)
	}
	wg.Wait()

	var valid []string
	for i, result := range results {
		if result.IsValid {
			target := result.NormalizedURL
			if result.FinalURL != "" {
				target = result.FinalURL
			}
			valid = append(valid, target)
			continue
		}
		message := "validation failed"
		if len(result.Errors) > 0 {
			message = result.Errors[0]
		}
		job.RecordURLError(job.SeedURLs[i], message)
	}

	return valid
}

func (s *Service) failJob(ctx context.Context, job *models.ScanJob, reason string) {
	job.Status = models.ScanJobStatusFailed
	job.Error = reason
	job.CompletedAt = time.Now()
	if err := s.storage.ScanJobStorage().SaveJob(ctx, job); err != nil {
		s.logger.Error().Str("job_id", job.ID).Err(err).Msg("Failed to persist job failure")
	}
	s.appendLog(ctx, job.ID, models.ScanLogError, "scan failed: "+reason, "")
}

func (s *Service) appendLog(ctx context.Context, jobID string, level models.ScanLogLevel, message, url string) {
	entry := &models.ScanLog{
		ID:        common.NewLogID(),
		ScanJobID: jobID,
		Level:     level,
		Message:   message,
		URL:       url,
		CreatedAt: time.Now(),
	}
	if err := s.storage.ScanLogStorage().AppendLog(ctx, entry); err != nil {
		s.logger.Warn().Str("job_id", jobID).Err(err).Msg("Failed to append scan log")
	}
}

func (s *Service) controlFor(jobID string) *jobControl {
	s.mu.Lock()
	defer s.mu.Unlock()

	control, ok := s.controls[jobID]
	if !ok {
		control = &jobControl{}
		s.controls[jobID] = control
	}
	return control
}

func (s *Service) dropControl(jobID string) {
	s.mu.Lock()
	delete(s.controls, jobID)
	s.mu.Unlock()
}

func (c *jobControl) setRemaining(urls []string) {
	c.mu.Lock()
	c.remaining = urls
	c.mu.Unlock()
}

func (c *jobControl) takeChunk(size int) []string {
	c.mu.Lock()
	defer c.mu.Unlock()

	if len(c.remaining) == 0 {
		return nil
	}
	if size > len(c.remaining) {
		size = len(c.remaining)
	}
	chunk := c.remaining[:size]
	c.remaining = c.remaining[size:]
	return chunk
}

func (c *jobControl) state() (cancelled, paused bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.cancelled, c.paused
}

// toJSONMap round-trips a struct through JSON so metadata maps only hold
// plain JSON-shaped values the storage codec accepts.
func toJSONMap(v interface{}) map[string]interface{} {
	data, err := json.Marshal(v)
	if err != nil {
		return nil
	}
	var out map[string]interface{}
	if err := json.Unmarshal(data, &out); err != nil {
		return nil
	}
	return out
}
