package knowledge

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/brightreply/scout/internal/models"
	"github.com/brightreply/scout/internal/services/analysis"
)

// FileTextExtractor pulls plain text out of a binary document format.
// The PDF service satisfies this.
type FileTextExtractor interface {
	ExtractText(path string) (string, error)
}

// ImportStats summarizes a bulk import
type ImportStats struct {
	Submitted  int      `json:"submitted"`
	Imported   int      `json:"imported"`
	Duplicates int      `json:"duplicates"`
	Skipped    int      `json:"skipped"`
	ItemIDs    []string `json:"item_ids"`
}

// ImportFromScan converts a scan job's extracted content into knowledge
// items. Near-duplicate pages are removed as a post-filter over the batch
// before anything is stored: the first page wins, later pages whose
// similarity to a kept page meets the threshold are dropped.
func (s *Service) ImportFromScan(ctx context.Context, scanJobID, categoryID, changedBy string) (*ImportStats, error) {
	contents, err := s.storage.ContentStorage().GetContentByJob(ctx, scanJobID)
	if err != nil {
		return nil, err
	}

	stats := &ImportStats{Submitted: len(contents)}
	kept := s.dedupeBatch(contents, stats)

	for _, content := range kept {
		if strings.TrimSpace(content.Content) == "" {
			stats.Skipped++
			continue
		}

		item, err := s.CreateItem(ctx, ItemInput{
			Title:      importTitle(content),
			Content:    content.Content,
			CategoryID: categoryID,
			SourceType: models.KnowledgeSourceURL,
			SourceURL:  content.URL,
			Tags:       importTags(content),
			Status:     models.KnowledgeStatusActive,
			Confidence: content.ProcessingQuality,
			ChangedBy:  changedBy,
		})
		if err != nil {
			return stats, fmt.Errorf("failed to import %s: %w", content.URL, err)
		}
		stats.Imported++
		stats.ItemIDs = append(stats.ItemIDs, item.ID)
	}

	s.logger.Info().
		Str("scan_job_id", scanJobID).
		Int("submitted", stats.Submitted).
		Int("imported", stats.Imported).
		Int("duplicates", stats.Duplicates).
		Msg("Scan results imported into knowledge base")

	return stats, nil
}

// ImportFile creates a knowledge item from a local file. PDFs go through
// the binary extractor; markdown and plain text are read directly.
func (s *Service) ImportFile(ctx context.Context, path, categoryID, changedBy string, pdfExtractor FileTextExtractor) (*models.KnowledgeItem, error) {
	var content string

	switch strings.ToLower(filepath.Ext(path)) {
	case ".pdf":
		if pdfExtractor == nil {
			return nil, fmt.Errorf("no pdf extractor available for %s", path)
		}
		text, err := pdfExtractor.ExtractText(path)
		if err != nil {
			return nil, fmt.Errorf("failed to extract pdf text: %w", err)
		}
		content = text
	case ".md", ".markdown", ".txt":
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read file: %w", err)
		}
		content = string(data)
	default:
		return nil, fmt.Errorf("unsupported file type %q", filepath.Ext(path))
	}

	if strings.TrimSpace(content) == "" {
		return nil, fmt.Errorf("file %s contains no text", path)
	}

	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	return s.CreateItem(ctx, ItemInput{
		Title:      name,
		Content:    content,
		CategoryID: categoryID,
		SourceType: models.KnowledgeSourceFile,
		FilePath:   path,
		Status:     models.KnowledgeStatusActive,
		Confidence: 1.0,
		ChangedBy:  changedBy,
	})
}

// dedupeBatch keeps the first of every near-duplicate cluster. The filter
// is batch-local: similarity is only measured inside this import, not
// against previously stored items.
func (s *Service) dedupeBatch(contents []*models.ExtractedContent, stats *ImportStats) []*models.ExtractedContent {
	var kept []*models.ExtractedContent

	for _, candidate := range contents {
		duplicate := false
		for _, existing := range kept {
			if analysis.Similarity(candidate.Content, existing.Content) >= s.threshold {
				duplicate = true
				stats.Duplicates++
				s.logger.Debug().
					Str("url", candidate.URL).
					Str("duplicate_of", existing.URL).
					Msg("Duplicate page dropped from import")
				break
			}
		}
		if !duplicate {
			kept = append(kept, candidate)
		}
	}

	return kept
}

func importTitle(content *models.ExtractedContent) string {
	if content.Title != "" {
		return content.Title
	}
	return content.URL
}

func importTags(content *models.ExtractedContent) []string {
	tags := []string{string(content.ContentType)}
	if industry, ok := content.Metadata["business_info"].(map[string]interface{}); ok {
		if value, ok := industry["industry"].(string); ok && value != "" {
			tags = append(tags, value)
		}
	}
	return tags
}
