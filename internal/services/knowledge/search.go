package knowledge

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/brightreply/scout/internal/common"
	"github.com/brightreply/scout/internal/interfaces"
	"github.com/brightreply/scout/internal/models"
)

// Relevance weights. Title hits dominate, tags beat body text.
const (
	titleWeight   = 3.0
	tagWeight     = 2.0
	contentWeight = 1.0
	phraseBonus   = 2.0
)

// SearchOptions are applied in-memory after the ranked query
type SearchOptions struct {
	CategoryID    string
	Tags          []string
	Status        models.KnowledgeStatus
	CreatedAfter  time.Time
	CreatedBefore time.Time
	Limit         int
}

// Search ranks knowledge items against the query, applies the option
// filters to the ranked set, and records the search in the history log
// for trend analytics.
func (s *Service) Search(ctx context.Context, query string, opts SearchOptions) ([]*models.SearchResult, error) {
	tokens := tokenize(query)
	if len(tokens) == 0 {
		return nil, fmt.Errorf("search query is empty")
	}

	items, err := s.storage.KnowledgeItemStorage().ListItems(ctx, &interfaces.KnowledgeListOptions{})
	if err != nil {
		return nil, err
	}

	var results []*models.SearchResult
	for _, item := range items {
		score := relevance(item, query, tokens)
		if score <= 0 {
			continue
		}
		if !matchesOptions(item, opts) {
			continue
		}
		results = append(results, &models.SearchResult{Item: item, RelevanceScore: score})
	}

	sort.Slice(results, func(i, j int) bool {
		if results[i].RelevanceScore != results[j].RelevanceScore {
			return results[i].RelevanceScore > results[j].RelevanceScore
		}
		return results[i].Item.UpdatedAt.After(results[j].Item.UpdatedAt)
	})

	if opts.Limit > 0 && len(results) > opts.Limit {
		results = results[:opts.Limit]
	}

	s.recordSearch(ctx, query, len(results))

	return results, nil
}

// relevance scores one item against the query tokens. Scores are
// normalized by token count so longer queries do not inflate results.
func relevance(item *models.KnowledgeItem, query string, tokens []string) float64 {
	lowerTitle := strings.ToLower(item.Title)
	lowerContent := strings.ToLower(item.Content + " " + item.Summary)

	lowerTags := make([]string, len(item.Tags))
	for i, tag := range item.Tags {
		lowerTags[i] = strings.ToLower(tag)
	}

	score := 0.0
	for _, token := range tokens {
		if strings.Contains(lowerTitle, token) {
			score += titleWeight
		}
		for _, tag := range lowerTags {
			if strings.Contains(tag, token) {
				score += tagWeight
				break
			}
		}
		if strings.Contains(lowerContent, token) {
			score += contentWeight
		}
	}

	if len(tokens) > 1 && strings.Contains(lowerTitle+" "+lowerContent, strings.ToLower(strings.TrimSpace(query))) {
		score += phraseBonus
	}

	return score / float64(len(tokens))
}

func matchesOptions(item *models.KnowledgeItem, opts SearchOptions) bool {
	if opts.CategoryID != "" && item.CategoryID != opts.CategoryID {
		return false
	}
	if opts.Status != "" && item.Status != opts.Status {
		return false
	}
	if !opts.CreatedAfter.IsZero() && item.CreatedAt.Before(opts.CreatedAfter) {
		return false
	}
	if !opts.CreatedBefore.IsZero() && item.CreatedAt.After(opts.CreatedBefore) {
		return false
	}

	for _, wanted := range opts.Tags {
		found := false
		for _, tag := range item.Tags {
			if strings.EqualFold(tag, wanted) {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}

	return true
}

// recordSearch appends to the search history log. History is advisory;
// failures are logged and swallowed.
func (s *Service) recordSearch(ctx context.Context, query string, resultCount int) {
	record := &models.SearchRecord{
		ID:          common.NewSearchID(),
		Query:       normalizeQuery(query),
		ResultCount: resultCount,
		SearchedAt:  time.Now(),
	}
	if err := s.storage.SearchHistoryStorage().RecordSearch(ctx, record); err != nil {
		s.logger.Warn().Str("query", query).Err(err).Msg("Failed to record search history")
	}
}

func tokenize(query string) []string {
	var tokens []string
	for _, field := range strings.Fields(strings.ToLower(query)) {
		token := strings.Trim(field, ".,!?\"'()")
		if len(token) >= 2 {
			tokens = append(tokens, token)
		}
	}
	return tokens
}

func normalizeQuery(query string) string {
	return strings.Join(strings.Fields(strings.ToLower(query)), " ")
}
