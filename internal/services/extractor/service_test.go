package extractor

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/arbor"

	"github.com/brightreply/scout/internal/models"
)

func newTestService() *Service {
	return NewService(arbor.NewLogger())
}

func longParagraph(word string, count int) string {
	return strings.TrimSpace(strings.Repeat(word+" ", count))
}

func TestExtractPrefersMainElement(t *testing.T) {
	body := longParagraph("signal", 60)
	html := `<html><head><title>Our Services</title></head><body>
		<nav>Home About Contact</nav>
		<main><p>` + body + `</p></main>
		<footer>Copyright 2026</footer>
	</body></html>`

	content, err := newTestService().Extract(html, "https://example.com/services")

	require.NoError(t, err)
	assert.Equal(t, "Our Services", content.Title)
	assert.Contains(t, content.MainText, "signal")
	assert.NotContains(t, content.MainText, "Copyright")
	assert.NotContains(t, content.MainText, "Home About Contact")
}

func TestExtractTitleFallsBackToH1(t *testing.T) {
	html := `<html><body><h1>Pricing Plans</h1><p>` + longParagraph("plan", 50) + `</p></body></html>`

	content, err := newTestService().Extract(html, "https://example.com/pricing")

	require.NoError(t, err)
	assert.Equal(t, "Pricing Plans", content.Title)
}

func TestExtractTitleFallsBackToOpenGraph(t *testing.T) {
	html := `<html><head><meta property="og:title" content="Social Title"></head>
		<body><p>` + longParagraph("text", 50) + `</p></body></html>`

	content, err := newTestService().Extract(html, "https://example.com/")

	require.NoError(t, err)
	assert.Equal(t, "Social Title", content.Title)
}

func TestExtractResolvesRelativeLinksAndImages(t *testing.T) {
	html := `<html><body>
		<a href="/about">About</a>
		<a href="https://other.example.org/page">External</a>
		<a href="mailto:hi@example.com">Mail</a>
		<a href="#section">Anchor</a>
		<img src="/logo.png">
		<p>` + longParagraph("word", 50) + `</p>
	</body></html>`

	content, err := newTestService().Extract(html, "https://example.com/team")

	require.NoError(t, err)
	assert.Contains(t, content.Links, "https://example.com/about")
	assert.Contains(t, content.Links, "https://other.example.org/page")
	for _, link := range content.Links {
		assert.NotContains(t, link, "mailto:")
		assert.NotContains(t, link, "#")
	}
	assert.Contains(t, content.Images, "https://example.com/logo.png")
}

func TestExtractHeadings(t *testing.T) {
	html := `<html><body>
		<h1>Top</h1>
		<h2>Section</h2>
		<h3>Detail</h3>
		<p>` + longParagraph("body", 50) + `</p>
	</body></html>`

	content, err := newTestService().Extract(html, "https://example.com/")

	require.NoError(t, err)
	require.Len(t, content.Headings, 3)
	assert.Equal(t, models.Heading{Level: 1, Text: "Top"}, content.Headings[0])
	assert.Equal(t, models.Heading{Level: 2, Text: "Section"}, content.Headings[1])
	assert.Equal(t, models.Heading{Level: 3, Text: "Detail"}, content.Headings[2])
}

func TestExtractMetadata(t *testing.T) {
	html := `<html lang="en"><head>
		<meta name="description" content="A test page">
		<meta property="og:type" content="website">
	</head><body><p>` + longParagraph("meta", 50) + `</p></body></html>`

	content, err := newTestService().Extract(html, "https://example.com/")

	require.NoError(t, err)
	assert.Equal(t, "A test page", content.Metadata["description"])
	assert.Equal(t, "website", content.Metadata["og:type"])
	assert.Equal(t, "en", content.Metadata["lang"])
}

func TestExtractEmptyDocument(t *testing.T) {
	_, err := newTestService().Extract("   ", "https://example.com/")
	assert.ErrorIs(t, err, ErrExtraction)
}

func TestQualityBounds(t *testing.T) {
	empty := &models.PageContent{}
	assert.Equal(t, 0.0, Quality(empty))

	rich := &models.PageContent{
		Title:    "Full Page",
		MainText: longParagraph("content", 400),
		Headings: []models.Heading{{Level: 1, Text: "Full Page"}},
		Metadata: map[string]interface{}{
			"description": "d", "og:title": "t", "og:type": "website",
		},
		Links: []string{"https://example.com/a"},
	}
	score := Quality(rich)
	assert.Greater(t, score, 0.9)
	assert.LessOrEqual(t, score, 1.0)
}

func TestQualityRewardsLength(t *testing.T) {
	short := &models.PageContent{MainText: longParagraph("w", 30)}
	long := &models.PageContent{MainText: longParagraph("w", 350)}
	assert.Greater(t, Quality(long), Quality(short))
}
