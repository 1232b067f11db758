package knowledge

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/brightreply/scout/internal/common"
	"github.com/brightreply/scout/internal/interfaces"
	"github.com/brightreply/scout/internal/models"
)

func seedContent(t *testing.T, storage interfaces.StorageManager, jobID, url, title, body string) {
	t.Helper()
	require.NoError(t, storage.ContentStorage().SaveContent(context.Background(), &models.ExtractedContent{
		ID:                common.NewContentID(),
		ScanJobID:         jobID,
		URL:               url,
		Title:             title,
		Content:           body,
		ContentType:       models.ContentTypeGeneral,
		ProcessingQuality: 0.7,
		CreatedAt:         time.Now(),
	}))
}

func TestImportFromScanDropsNearDuplicates(t *testing.T) {
	service, storage := newTestService(t)
	ctx := context.Background()

	body := `We sell handmade furniture built from reclaimed oak.
Every piece ships flat-packed with lifetime support included.`

	seedContent(t, storage, "job_import", "https://example.com/a", "Home", body)
	seedContent(t, storage, "job_import", "https://example.com/a-copy", "Home copy", body+" Order now.")
	seedContent(t, storage, "job_import", "https://example.com/terms", "Terms",
		"Liability is limited to the amount paid in the preceding twelve months.")

	stats, err := service.ImportFromScan(ctx, "job_import", "", "importer")
	require.NoError(t, err)

	assert.Equal(t, 3, stats.Submitted)
	assert.Equal(t, 2, stats.Imported)
	assert.Equal(t, 1, stats.Duplicates)
	assert.Len(t, stats.ItemIDs, 2)

	items, err := service.ListItems(ctx, &interfaces.KnowledgeListOptions{})
	require.NoError(t, err)
	assert.Len(t, items, 2)
}

func TestImportFromScanCarriesSourceFields(t *testing.T) {
	service, storage := newTestService(t)
	ctx := context.Background()

	require.NoError(t, storage.ContentStorage().SaveContent(ctx, &models.ExtractedContent{
		ID:                common.NewContentID(),
		ScanJobID:         "job_src",
		URL:               "https://example.com/pricing",
		Title:             "Pricing",
		Content:           "Plans start at ten dollars per month.",
		ContentType:       models.ContentTypePricing,
		ProcessingQuality: 0.9,
		CreatedAt:         time.Now(),
	}))

	stats, err := service.ImportFromScan(ctx, "job_src", "", "importer")
	require.NoError(t, err)
	require.Len(t, stats.ItemIDs, 1)

	item, err := service.GetItem(ctx, stats.ItemIDs[0])
	require.NoError(t, err)

	assert.Equal(t, "Pricing", item.Title)
	assert.Equal(t, models.KnowledgeSourceURL, item.SourceType)
	assert.Equal(t, "https://example.com/pricing", item.SourceURL)
	assert.Contains(t, item.Tags, "pricing")
	assert.InDelta(t, 0.9, item.ConfidenceScore, 0.001)
}

func TestImportFromScanSkipsEmptyPages(t *testing.T) {
	service, storage := newTestService(t)
	ctx := context.Background()

	seedContent(t, storage, "job_empty", "https://example.com/blank", "Blank", "   ")

	stats, err := service.ImportFromScan(ctx, "job_empty", "", "importer")
	require.NoError(t, err)

	assert.Equal(t, 1, stats.Submitted)
	assert.Equal(t, 0, stats.Imported)
	assert.Equal(t, 1, stats.Skipped)
}

func TestImportFileMarkdown(t *testing.T) {
	service, _ := newTestService(t)
	ctx := context.Background()

	path := filepath.Join(t.TempDir(), "onboarding-guide.md")
	require.NoError(t, os.WriteFile(path, []byte("# Onboarding\n\nStart here."), 0644))

	item, err := service.ImportFile(ctx, path, "", "importer", nil)
	require.NoError(t, err)

	assert.Equal(t, "onboarding-guide", item.Title)
	assert.Equal(t, models.KnowledgeSourceFile, item.SourceType)
	assert.Equal(t, path, item.FilePath)
	assert.Contains(t, item.Content, "Start here.")
	assert.Equal(t, 1, item.Version)
}

func TestImportFileUnsupportedExtension(t *testing.T) {
	service, _ := newTestService(t)

	_, err := service.ImportFile(context.Background(), "notes.docx", "", "importer", nil)
	assert.Error(t, err)
}

func TestImportFilePDFWithoutExtractor(t *testing.T) {
	service, _ := newTestService(t)

	_, err := service.ImportFile(context.Background(), "report.pdf", "", "importer", nil)
	assert.Error(t, err)
}
