package scanner

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/arbor"

	"github.com/brightreply/scout/internal/common"
	"github.com/brightreply/scout/internal/interfaces"
	"github.com/brightreply/scout/internal/models"
	"github.com/brightreply/scout/internal/services/analysis"
	"github.com/brightreply/scout/internal/services/crawler"
	"github.com/brightreply/scout/internal/services/extractor"
	badgerstore "github.com/brightreply/scout/internal/storage/badger"
)

func newScannerService(t *testing.T) (*Service, interfaces.StorageManager) {
	t.Helper()

	logger := arbor.NewLogger()
	storage, err := badgerstore.NewManager(logger, &common.BadgerConfig{
		Path: filepath.Join(t.TempDir(), "badger"),
	})
	require.NoError(t, err)
	t.Cleanup(func() { storage.Close() })

	config := common.NewDefaultConfig()
	config.Crawler.RequestTimeout = 5 * time.Second
	config.Crawler.ProbeTimeout = 5 * time.Second
	config.Crawler.RobotsTimeout = 2 * time.Second
	config.Crawler.RequestsPerSecond = 1000
	config.Crawler.GlobalRate = 1000
	config.Crawler.RetryBackoff = time.Millisecond

	// Test servers bind loopback, so private hosts must pass validation.
	validator := crawler.NewURLValidator(logger, config.Crawler.UserAgent, config.Crawler.ProbeTimeout, false)
	robots := crawler.NewRobotsChecker(logger, config.Crawler.UserAgent, config.Crawler.RobotsTimeout, config.Crawler.RobotsCacheTTL)
	rateLimiter := crawler.NewRateLimiter(time.Millisecond)
	fetcher := crawler.NewFetcher(logger, &config.Crawler, robots, rateLimiter)

	classifier := analysis.NewClassifier(logger)
	service := NewService(
		logger,
		config,
		validator,
		fetcher,
		extractor.NewService(logger),
		analysis.NewAnalyzer(logger, classifier),
		analysis.NewBusinessExtractor(logger),
		analysis.NewDuplicateDetector(logger, 0.85, 100),
		storage,
	)
	return service, storage
}

func newScanTarget(t *testing.T) *httptest.Server {
	t.Helper()

	mux := http.NewServeMux()
	mux.HandleFunc("/robots.txt", http.NotFound)
	mux.HandleFunc("/pricing", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `<html><head><title>Pricing</title></head><body>
			<main><p>Our pricing is simple: one plan at ten dollars per month,
			billed annually, with a free trial for every new tier. Upgrade or
			cancel any time from the dashboard without talking to sales first.</p></main>
		</body></html>`)
	})
	mux.HandleFunc("/about", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `<html><head><title>About</title></head><body>
			<main><p>Founded in 2015, we are a small team building software
			for independent retailers. Our mission is to keep checkout simple
			and our story started in a garage with two laptops and an idea.</p></main>
		</body></html>`)
	})
	mux.HandleFunc("/broken", func(w http.ResponseWriter, r *http.Request) {
		// Passes the validation probe, then fails every fetch.
		if r.Method == http.MethodHead {
			return
		}
		w.WriteHeader(http.StatusInternalServerError)
	})

	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server
}

func TestScanCompletesAndStoresClassifiedContent(t *testing.T) {
	service, storage := newScannerService(t)
	server := newScanTarget(t)
	ctx := context.Background()

	job, err := service.CreateJob(ctx, "owner_1", "site scan", []string{
		server.URL + "/pricing",
		server.URL + "/about",
	})
	require.NoError(t, err)
	assert.Equal(t, models.ScanJobStatusPending, job.Status)

	require.NoError(t, service.Scan(ctx, job.ID))

	finished, err := service.Status(ctx, job.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ScanJobStatusCompleted, finished.Status)
	assert.Equal(t, 2, finished.PagesFound)
	assert.Equal(t, 2, finished.PagesProcessed)
	assert.Equal(t, 100.0, finished.ProgressPercentage)
	assert.Empty(t, finished.URLErrors)

	contents, err := storage.ContentStorage().GetContentByJob(ctx, job.ID)
	require.NoError(t, err)
	require.Len(t, contents, 2)

	byURL := make(map[string]*models.ExtractedContent)
	for _, content := range contents {
		byURL[content.URL] = content
	}

	pricing := byURL[server.URL+"/pricing"]
	require.NotNil(t, pricing)
	assert.Equal(t, models.ContentTypePricing, pricing.ContentType)
	assert.Equal(t, "Pricing", pricing.Title)
	assert.Greater(t, pricing.ProcessingQuality, 0.0)
	assert.LessOrEqual(t, pricing.ProcessingQuality, 1.0)
	assert.NotNil(t, pricing.Metadata["analysis"])

	about := byURL[server.URL+"/about"]
	require.NotNil(t, about)
	assert.Equal(t, models.ContentTypeAbout, about.ContentType)
}

func TestScanRecordsPerURLErrorsWithoutFailingJob(t *testing.T) {
	service, _ := newScannerService(t)
	server := newScanTarget(t)
	ctx := context.Background()

	job, err := service.CreateJob(ctx, "owner_1", "partial scan", []string{
		server.URL + "/pricing",
		server.URL + "/broken",
	})
	require.NoError(t, err)

	require.NoError(t, service.Scan(ctx, job.ID))

	finished, err := service.Status(ctx, job.ID)
	require.NoError(t, err)

	// /broken probes fine but fails during fetch, so it surfaces as a
	// per-URL error on a completed job.
	assert.Equal(t, models.ScanJobStatusCompleted, finished.Status)
	assert.Equal(t, 2, finished.PagesProcessed)
	require.Len(t, finished.URLErrors, 1)
	assert.Contains(t, finished.URLErrors, server.URL+"/broken")
}

func TestScanFailsFastWithoutValidSeeds(t *testing.T) {
	service, _ := newScannerService(t)
	ctx := context.Background()

	job, err := service.CreateJob(ctx, "owner_1", "bad seeds", []string{
		"not a url",
		"ftp://example.com/file",
	})
	require.NoError(t, err)

	err = service.Scan(ctx, job.ID)
	assert.ErrorIs(t, err, crawler.ErrNoValidURLs)

	failed, statusErr := service.Status(ctx, job.ID)
	require.NoError(t, statusErr)
	assert.Equal(t, models.ScanJobStatusFailed, failed.Status)
	assert.NotEmpty(t, failed.Error)
	assert.Len(t, failed.URLErrors, 2)
}

func TestScanRequiresPendingJob(t *testing.T) {
	service, storage := newScannerService(t)
	ctx := context.Background()

	job, err := service.CreateJob(ctx, "owner_1", "done already", []string{"https://example.com"})
	require.NoError(t, err)

	job.Status = models.ScanJobStatusCompleted
	require.NoError(t, storage.ScanJobStorage().SaveJob(ctx, job))

	assert.Error(t, service.Scan(ctx, job.ID))
}

func TestPauseUnknownJob(t *testing.T) {
	service, _ := newScannerService(t)

	assert.ErrorIs(t, service.Pause("job_unknown"), ErrJobNotRunning)
	assert.ErrorIs(t, service.Cancel("job_unknown"), ErrJobNotRunning)
}

func TestPauseAtChunkBoundaryThenResume(t *testing.T) {
	service, _ := newScannerService(t)
	service.config.Crawler.Concurrency = 2
	ctx := context.Background()

	var mu sync.Mutex
	gets := make(map[string]int)
	started := make(chan string, 6)
	gate := make(chan struct{})

	mux := http.NewServeMux()
	mux.HandleFunc("/robots.txt", http.NotFound)
	mux.HandleFunc("/page/", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodHead {
			return
		}
		mu.Lock()
		gets[r.URL.Path]++
		mu.Unlock()
		started <- r.URL.Path
		<-gate
		fmt.Fprintf(w, `<html><head><title>Page %s</title></head><body>
			<main><p>Each page of this site carries enough body text for the
			extractor to keep it, and each path is fetched exactly once no
			matter how often the job is stopped and started again.</p></main>
		</body></html>`, r.URL.Path)
	})
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)

	urls := make([]string, 6)
	for i := range urls {
		urls[i] = fmt.Sprintf("%s/page/%d", server.URL, i)
	}

	job, err := service.CreateJob(ctx, "owner_1", "pausable scan", urls)
	require.NoError(t, err)
	assert.Equal(t, 2, job.Config.Concurrency)

	scanErr := make(chan error, 1)
	go func() { scanErr <- service.Scan(ctx, job.ID) }()

	// Pause while the first chunk's fetches are in flight, then let them
	// finish. The pause lands on the first chunk boundary.
	<-started
	<-started
	require.NoError(t, service.Pause(job.ID))
	close(gate)

	require.NoError(t, <-scanErr)

	paused, err := service.Status(ctx, job.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ScanJobStatusPaused, paused.Status)
	assert.Equal(t, 6, paused.PagesFound)
	assert.Equal(t, 2, paused.PagesProcessed)

	require.NoError(t, service.Resume(ctx, job.ID))

	finished, err := service.Status(ctx, job.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ScanJobStatusCompleted, finished.Status)
	assert.Equal(t, 6, finished.PagesProcessed)
	assert.Empty(t, finished.URLErrors)

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, gets, 6)
	for path, count := range gets {
		assert.Equal(t, 1, count, "%s must be fetched exactly once", path)
	}
}

func TestResumeRequiresPausedJob(t *testing.T) {
	service, _ := newScannerService(t)
	ctx := context.Background()

	job, err := service.CreateJob(ctx, "owner_1", "never started", []string{"https://example.com"})
	require.NoError(t, err)

	assert.Error(t, service.Resume(ctx, job.ID))
}

func TestScanWritesLogTrail(t *testing.T) {
	service, storage := newScannerService(t)
	server := newScanTarget(t)
	ctx := context.Background()

	job, err := service.CreateJob(ctx, "owner_1", "logged scan", []string{server.URL + "/pricing"})
	require.NoError(t, err)
	require.NoError(t, service.Scan(ctx, job.ID))

	logs, err := storage.ScanLogStorage().GetLogsByJob(ctx, job.ID, 100)
	require.NoError(t, err)
	assert.NotEmpty(t, logs)
}

func TestDuplicatePagesAnnotatedNotDropped(t *testing.T) {
	service, storage := newScannerService(t)
	ctx := context.Background()

	body := `<html><head><title>Mirror</title></head><body>
		<main><p>This exact paragraph appears on two different paths of the
		site so the second occurrence is a near duplicate of the first one
		and should be annotated in its stored metadata for later import.</p></main>
	</body></html>`

	mux := http.NewServeMux()
	mux.HandleFunc("/robots.txt", http.NotFound)
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, body)
	})
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)

	job, err := service.CreateJob(ctx, "owner_1", "mirror scan", []string{
		server.URL + "/one",
		server.URL + "/two",
	})
	require.NoError(t, err)
	require.NoError(t, service.Scan(ctx, job.ID))

	contents, err := storage.ContentStorage().GetContentByJob(ctx, job.ID)
	require.NoError(t, err)
	require.Len(t, contents, 2, "duplicates are stored, not dropped")

	annotated := 0
	for _, content := range contents {
		if _, ok := content.Metadata["duplicate_of"]; ok {
			annotated++
		}
	}
	assert.Equal(t, 1, annotated)
}
