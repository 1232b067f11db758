package knowledge

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/brightreply/scout/internal/interfaces"
	"github.com/brightreply/scout/internal/models"
)

const topCategoryCount = 5

// Analytics aggregates usage and effectiveness across the knowledge base,
// ranks categories by item count, and mines the recent search history for
// trends. Recurring queries that consistently return nothing surface as
// knowledge gaps.
func (s *Service) Analytics(ctx context.Context) (*models.KnowledgeAnalytics, error) {
	items, err := s.storage.KnowledgeItemStorage().ListItems(ctx, &interfaces.KnowledgeListOptions{})
	if err != nil {
		return nil, fmt.Errorf("failed to load items for analytics: %w", err)
	}

	analytics := &models.KnowledgeAnalytics{
		TotalItems:  len(items),
		GeneratedAt: time.Now(),
	}

	categoryCounts := make(map[string]int)
	effectivenessSum := 0.0
	scored := 0

	for _, item := range items {
		if item.Status == models.KnowledgeStatusActive {
			analytics.ActiveItems++
		}
		analytics.TotalUsage += item.UsageCount
		if item.EffectivenessScore > 0 {
			effectivenessSum += item.EffectivenessScore
			scored++
		}
		if item.CategoryID != "" {
			categoryCounts[item.CategoryID]++
		}
	}

	if scored > 0 {
		analytics.AvgEffectiveness = effectivenessSum / float64(scored)
	}

	analytics.TopCategories = s.topCategories(ctx, categoryCounts)

	trends, gaps, err := s.searchTrends(ctx)
	if err != nil {
		return nil, err
	}
	analytics.SearchTrends = trends
	analytics.KnowledgeGaps = gaps

	return analytics, nil
}

// PruneSearchHistory drops search records older than the configured
// retention window. Returns the number of records removed.
func (s *Service) PruneSearchHistory(ctx context.Context) (int, error) {
	cutoff := time.Now().AddDate(0, 0, -s.config.SearchHistoryDays)
	pruned, err := s.storage.SearchHistoryStorage().PruneBefore(ctx, cutoff)
	if err != nil {
		return 0, err
	}
	if pruned > 0 {
		s.logger.Debug().Int("pruned", pruned).Msg("Search history pruned")
	}
	return pruned, nil
}

func (s *Service) topCategories(ctx context.Context, counts map[string]int) []models.CategoryCount {
	ranked := make([]models.CategoryCount, 0, len(counts))
	for categoryID, count := range counts {
		entry := models.CategoryCount{CategoryID: categoryID, ItemCount: count}
		if category, err := s.storage.CategoryStorage().GetCategory(ctx, categoryID); err == nil {
			entry.CategoryName = category.Name
		}
		ranked = append(ranked, entry)
	}

	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].ItemCount != ranked[j].ItemCount {
			return ranked[i].ItemCount > ranked[j].ItemCount
		}
		return ranked[i].CategoryID < ranked[j].CategoryID
	})

	if len(ranked) > topCategoryCount {
		ranked = ranked[:topCategoryCount]
	}
	return ranked
}

// searchTrends groups the retention window's searches by normalized query.
// A query is a gap when it recurs at least the configured number of times
// and never returned a result.
func (s *Service) searchTrends(ctx context.Context) (trends, gaps []models.SearchTrend, err error) {
	since := time.Now().AddDate(0, 0, -s.config.SearchHistoryDays)
	records, err := s.storage.SearchHistoryStorage().GetSearchesSince(ctx, since)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load search history: %w", err)
	}

	type aggregate struct {
		occurrences int
		anyResults  bool
	}
	byQuery := make(map[string]*aggregate)
	for _, record := range records {
		agg, ok := byQuery[record.Query]
		if !ok {
			agg = &aggregate{}
			byQuery[record.Query] = agg
		}
		agg.occurrences++
		if record.ResultCount > 0 {
			agg.anyResults = true
		}
	}

	for query, agg := range byQuery {
		trend := models.SearchTrend{
			Query:       query,
			Occurrences: agg.occurrences,
			ZeroResults: !agg.anyResults,
		}
		trends = append(trends, trend)
		if trend.ZeroResults && agg.occurrences >= s.config.GapMinOccurrences {
			gaps = append(gaps, trend)
		}
	}

	sort.Slice(trends, func(i, j int) bool {
		if trends[i].Occurrences != trends[j].Occurrences {
			return trends[i].Occurrences > trends[j].Occurrences
		}
		return trends[i].Query < trends[j].Query
	})
	sort.Slice(gaps, func(i, j int) bool {
		if gaps[i].Occurrences != gaps[j].Occurrences {
			return gaps[i].Occurrences > gaps[j].Occurrences
		}
		return gaps[i].Query < gaps[j].Query
	})

	return trends, gaps, nil
}
