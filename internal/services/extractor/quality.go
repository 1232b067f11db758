package extractor

import "github.com/brightreply/scout/internal/models"

// Quality scores how complete an extraction was on a 0..1 scale. The
// score weighs presence of a title, volume of main text, page structure,
// and metadata coverage.
func Quality(content *models.PageContent) float64 {
	score := 0.0

	if content.Title != "" {
		score += 0.2
	}

	switch words := content.WordCount(); {
	case words >= 300:
		score += 0.4
	case words >= 100:
		score += 0.3
	case words >= 25:
		score += 0.15
	}

	if len(content.Headings) > 0 {
		score += 0.15
	}

	if len(content.Metadata) >= 3 {
		score += 0.15
	} else if len(content.Metadata) > 0 {
		score += 0.05
	}

	if len(content.Links) > 0 {
		score += 0.1
	}

	if score > 1.0 {
		score = 1.0
	}
	return score
}
