package analysis

import (
	"strings"

	"github.com/ternarybob/arbor"

	"github.com/brightreply/scout/internal/models"
)

const (
	urlMatchWeight     = 0.4
	keywordMatchWeight = 0.1
)

// categorySignals maps each content type to its URL hints and body
// keyword list. The general category carries no signals; it is the
// deterministic fallback.
var categorySignals = map[models.ContentType]struct {
	urlHints []string
	keywords []string
}{
	models.ContentTypePricing: {
		urlHints: []string{"pricing", "price", "plans", "cost"},
		keywords: []string{"pricing", "price", "plan", "subscription", "per month", "per year", "free trial", "billed", "tier", "upgrade"},
	},
	models.ContentTypeFAQ: {
		urlHints: []string{"faq", "help", "support", "questions"},
		keywords: []string{"faq", "frequently asked", "question", "answer", "how do i", "how can i", "what is", "troubleshoot"},
	},
	models.ContentTypeAbout: {
		urlHints: []string{"about", "team", "company", "story"},
		keywords: []string{"about us", "our story", "our mission", "our team", "founded", "who we are", "our values", "history"},
	},
	models.ContentTypeProduct: {
		urlHints: []string{"product", "features", "solutions", "services"},
		keywords: []string{"product", "feature", "solution", "service", "benefits", "integration", "capabilities", "demo"},
	},
	models.ContentTypePolicy: {
		urlHints: []string{"policy", "privacy", "terms", "legal", "gdpr"},
		keywords: []string{"privacy policy", "terms of service", "terms and conditions", "legal", "cookie", "gdpr", "liability", "agreement"},
	},
	models.ContentTypeContact: {
		urlHints: []string{"contact", "reach-us", "get-in-touch", "locations"},
		keywords: []string{"contact us", "get in touch", "email us", "call us", "phone", "address", "office", "reach out"},
	},
}

// classificationOrder fixes the evaluation order so score comparison is
// deterministic regardless of map iteration.
var classificationOrder = []models.ContentType{
	models.ContentTypePricing,
	models.ContentTypeFAQ,
	models.ContentTypeAbout,
	models.ContentTypeProduct,
	models.ContentTypePolicy,
	models.ContentTypeContact,
}

// Classifier scores page text and URL against the content-type
// categories. Ties, including the all-zero case, resolve to general.
type Classifier struct {
	logger arbor.ILogger
}

// NewClassifier creates a content classifier
func NewClassifier(logger arbor.ILogger) *Classifier {
	return &Classifier{logger: logger}
}

// Classify returns the winning content type and its confidence. A URL
// substring match awards a fixed weight; each keyword found in the
// lowercased text adds a smaller one. The category with the strictly
// highest score wins; anything short of strict wins falls back to
// general.
func (c *Classifier) Classify(text, pageURL string) (models.ContentType, float64) {
	lowerText := strings.ToLower(text)
	lowerURL := strings.ToLower(pageURL)

	best := models.ContentTypeGeneral
	bestScore := 0.0
	tied := false

	for _, contentType := range classificationOrder {
		signals := categorySignals[contentType]
		score := 0.0

		for _, hint := range signals.urlHints {
			if strings.Contains(lowerURL, hint) {
				score += urlMatchWeight
				break
			}
		}
		for _, keyword := range signals.keywords {
			if strings.Contains(lowerText, keyword) {
				score += keywordMatchWeight
			}
		}

		if score > bestScore {
			best = contentType
			bestScore = score
			tied = false
		} else if score == bestScore && score > 0 {
			tied = true
		}
	}

	if tied || bestScore == 0 {
		return models.ContentTypeGeneral, 0
	}

	confidence := bestScore
	if confidence > 1.0 {
		confidence = 1.0
	}

	c.logger.Debug().
		Str("url", pageURL).
		Str("content_type", string(best)).
		Float64("confidence", confidence).
		Msg("Content classified")

	return best, confidence
}
