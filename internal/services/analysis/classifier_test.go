package analysis

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/ternarybob/arbor"

	"github.com/brightreply/scout/internal/models"
)

func newTestClassifier() *Classifier {
	return NewClassifier(arbor.NewLogger())
}

func TestClassifyPricingPage(t *testing.T) {
	text := "Choose a plan that fits. Pricing starts at $10 per month with a free trial on every tier."
	contentType, confidence := newTestClassifier().Classify(text, "https://example.com/pricing")

	assert.Equal(t, models.ContentTypePricing, contentType)
	assert.Greater(t, confidence, 0.4, "url hint plus keywords must outscore a bare url hint")
	assert.LessOrEqual(t, confidence, 1.0)
}

func TestClassifyURLHintAlone(t *testing.T) {
	contentType, confidence := newTestClassifier().Classify("nothing notable here", "https://example.com/faq")

	assert.Equal(t, models.ContentTypeFAQ, contentType)
	assert.InDelta(t, 0.4, confidence, 0.001)
}

func TestClassifyNoSignalsFallsBackToGeneral(t *testing.T) {
	contentType, confidence := newTestClassifier().Classify("the weather was pleasant today", "https://example.com/blog/weather")

	assert.Equal(t, models.ContentTypeGeneral, contentType)
	assert.Equal(t, 0.0, confidence)
}

func TestClassifyTieFallsBackToGeneral(t *testing.T) {
	// One keyword each for pricing and faq, no url hints.
	text := "the subscription answer"
	contentType, confidence := newTestClassifier().Classify(text, "https://example.com/page")

	assert.Equal(t, models.ContentTypeGeneral, contentType)
	assert.Equal(t, 0.0, confidence)
}

func TestClassifyConfidenceCapped(t *testing.T) {
	text := "pricing price plan subscription per month per year free trial billed tier upgrade"
	_, confidence := newTestClassifier().Classify(text, "https://example.com/pricing/plans")

	assert.Equal(t, 1.0, confidence)
}
