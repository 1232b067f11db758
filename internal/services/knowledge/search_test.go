package knowledge

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/brightreply/scout/internal/models"
)

func TestSearchTitleOutranksContent(t *testing.T) {
	service, _ := newTestService(t)
	ctx := context.Background()

	titleHit, err := service.CreateItem(ctx, ItemInput{
		Title:   "Pricing overview",
		Content: "Our plans start small and scale with you.",
	})
	require.NoError(t, err)

	contentHit, err := service.CreateItem(ctx, ItemInput{
		Title:   "Getting started",
		Content: "See the pricing page before you sign up.",
	})
	require.NoError(t, err)

	_, err = service.CreateItem(ctx, ItemInput{
		Title:   "Office locations",
		Content: "We have offices in three cities.",
	})
	require.NoError(t, err)

	results, err := service.Search(ctx, "pricing", SearchOptions{})
	require.NoError(t, err)

	require.Len(t, results, 2)
	assert.Equal(t, titleHit.ID, results[0].Item.ID)
	assert.Equal(t, contentHit.ID, results[1].Item.ID)
	assert.Greater(t, results[0].RelevanceScore, results[1].RelevanceScore)
}

func TestSearchMatchesTags(t *testing.T) {
	service, _ := newTestService(t)
	ctx := context.Background()

	tagged, err := service.CreateItem(ctx, ItemInput{
		Title:   "Holiday schedule",
		Content: "Closed on public holidays.",
		Tags:    []string{"support"},
	})
	require.NoError(t, err)

	results, err := service.Search(ctx, "support", SearchOptions{})
	require.NoError(t, err)

	require.Len(t, results, 1)
	assert.Equal(t, tagged.ID, results[0].Item.ID)
}

func TestSearchFilters(t *testing.T) {
	service, _ := newTestService(t)
	ctx := context.Background()

	category, err := service.CreateCategory(ctx, "Billing", "", 0, "", "")
	require.NoError(t, err)

	inCategory, err := service.CreateItem(ctx, ItemInput{
		Title:      "Invoice format",
		Content:    "Invoices are sent monthly.",
		CategoryID: category.ID,
	})
	require.NoError(t, err)

	_, err = service.CreateItem(ctx, ItemInput{
		Title:   "Invoice history",
		Content: "Download past invoices from the dashboard.",
	})
	require.NoError(t, err)

	results, err := service.Search(ctx, "invoice", SearchOptions{CategoryID: category.ID})
	require.NoError(t, err)

	require.Len(t, results, 1)
	assert.Equal(t, inCategory.ID, results[0].Item.ID)
}

func TestSearchLimit(t *testing.T) {
	service, _ := newTestService(t)
	ctx := context.Background()

	for _, title := range []string{"Widget basics", "Widget advanced", "Widget internals"} {
		_, err := service.CreateItem(ctx, ItemInput{Title: title, Content: "widget notes"})
		require.NoError(t, err)
	}

	results, err := service.Search(ctx, "widget", SearchOptions{Limit: 2})
	require.NoError(t, err)
	assert.Len(t, results, 2)
}

func TestSearchEmptyQuery(t *testing.T) {
	service, _ := newTestService(t)

	_, err := service.Search(context.Background(), "   ", SearchOptions{})
	assert.Error(t, err)
}

func TestSearchRecordsHistory(t *testing.T) {
	service, storage := newTestService(t)
	ctx := context.Background()

	_, err := service.Search(ctx, "  Warranty   Terms ", SearchOptions{})
	require.NoError(t, err)

	records, err := storage.SearchHistoryStorage().GetSearchesSince(ctx, time.Now().Add(-time.Minute))
	require.NoError(t, err)

	require.Len(t, records, 1)
	assert.Equal(t, "warranty terms", records[0].Query)
	assert.Equal(t, 0, records[0].ResultCount)
}

func TestAnalyticsKnowledgeGaps(t *testing.T) {
	service, _ := newTestService(t)
	ctx := context.Background()

	_, err := service.CreateItem(ctx, ItemInput{Title: "Pricing", Content: "plans and tiers"})
	require.NoError(t, err)

	// Three zero-result repeats cross the gap threshold.
	for i := 0; i < 3; i++ {
		_, err := service.Search(ctx, "warranty", SearchOptions{})
		require.NoError(t, err)
	}
	// Two repeats stay below it.
	for i := 0; i < 2; i++ {
		_, err := service.Search(ctx, "reseller program", SearchOptions{})
		require.NoError(t, err)
	}
	// Repeats with results are a trend, never a gap.
	for i := 0; i < 3; i++ {
		_, err := service.Search(ctx, "pricing", SearchOptions{})
		require.NoError(t, err)
	}

	analytics, err := service.Analytics(ctx)
	require.NoError(t, err)

	require.Len(t, analytics.KnowledgeGaps, 1)
	assert.Equal(t, "warranty", analytics.KnowledgeGaps[0].Query)
	assert.Equal(t, 3, analytics.KnowledgeGaps[0].Occurrences)
	assert.True(t, analytics.KnowledgeGaps[0].ZeroResults)

	assert.Len(t, analytics.SearchTrends, 3)
}

func TestAnalyticsAggregates(t *testing.T) {
	service, _ := newTestService(t)
	ctx := context.Background()

	category, err := service.CreateCategory(ctx, "Product", "", 0, "", "")
	require.NoError(t, err)

	active, err := service.CreateItem(ctx, ItemInput{
		Title:      "Features",
		Content:    "feature list",
		CategoryID: category.ID,
	})
	require.NoError(t, err)

	draft := models.KnowledgeStatusDraft
	_, err = service.CreateItem(ctx, ItemInput{Title: "Roadmap", Content: "wip", Status: draft})
	require.NoError(t, err)

	require.NoError(t, service.RecordUsage(ctx, active.ID))
	require.NoError(t, service.RecordFeedback(ctx, active.ID, true))

	analytics, err := service.Analytics(ctx)
	require.NoError(t, err)

	assert.Equal(t, 2, analytics.TotalItems)
	assert.Equal(t, 1, analytics.ActiveItems)
	assert.Equal(t, 1, analytics.TotalUsage)
	assert.Greater(t, analytics.AvgEffectiveness, 0.0)

	require.Len(t, analytics.TopCategories, 1)
	assert.Equal(t, category.ID, analytics.TopCategories[0].CategoryID)
	assert.Equal(t, "Product", analytics.TopCategories[0].CategoryName)
	assert.Equal(t, 1, analytics.TopCategories[0].ItemCount)
}

func TestPruneSearchHistory(t *testing.T) {
	service, storage := newTestService(t)
	ctx := context.Background()

	// An old record outside the window and a fresh one inside it.
	require.NoError(t, storage.SearchHistoryStorage().RecordSearch(ctx, &models.SearchRecord{
		ID:         "search_old",
		Query:      "stale",
		SearchedAt: time.Now().AddDate(0, 0, -60),
	}))
	require.NoError(t, storage.SearchHistoryStorage().RecordSearch(ctx, &models.SearchRecord{
		ID:         "search_new",
		Query:      "fresh",
		SearchedAt: time.Now(),
	}))

	pruned, err := service.PruneSearchHistory(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, pruned)

	remaining, err := storage.SearchHistoryStorage().GetSearchesSince(ctx, time.Now().AddDate(0, 0, -90))
	require.NoError(t, err)
	require.Len(t, remaining, 1)
	assert.Equal(t, "fresh", remaining[0].Query)
}
