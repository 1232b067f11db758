package extractor

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	md "github.com/JohannesKaufmann/html-to-markdown"
	"github.com/PuerkitoBio/goquery"
	readability "github.com/go-shiori/go-readability"
	"github.com/ternarybob/arbor"

	"github.com/brightreply/scout/internal/models"
)

// ErrExtraction - the HTML could not be parsed into page content
var ErrExtraction = errors.New("content extraction failed")

// minMainContentLength is the threshold below which a content candidate
// is rejected and the next selector is tried.
const minMainContentLength = 100

// mainContentSelectors are tried in priority order when locating the
// page's primary content region.
var mainContentSelectors = []string{
	"main",
	"article",
	"[role='main']",
	".main-content",
	"#main-content",
	".content",
	"#content",
	".post-content",
	".entry-content",
	".page-content",
}

// strippedSelectors are removed before any extraction happens
var strippedSelectors = []string{
	"script", "style", "noscript", "iframe",
	"nav", "footer", "aside",
	".advertisement", ".ads", "[class*='advert']", "[id*='advert']",
	".cookie-banner", ".cookie-notice",
}

// Service turns raw HTML into structured page content: title, main text
// as markdown, metadata, links, images, headings, and text blocks.
type Service struct {
	logger arbor.ILogger
}

// NewService creates a content extractor
func NewService(logger arbor.ILogger) *Service {
	return &Service{logger: logger}
}

// Extract parses rawHTML fetched from sourceURL into a PageContent.
// Extraction is all-or-nothing: it either yields a full PageContent or
// fails with ErrExtraction.
func (s *Service) Extract(rawHTML, sourceURL string) (*models.PageContent, error) {
	if strings.TrimSpace(rawHTML) == "" {
		return nil, fmt.Errorf("%w: empty document", ErrExtraction)
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(rawHTML))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrExtraction, err)
	}

	base, err := url.Parse(sourceURL)
	if err != nil {
		return nil, fmt.Errorf("%w: bad source url: %v", ErrExtraction, err)
	}

	// Metadata comes off the intact head before anything is stripped.
	metadata := s.extractMetadata(doc)
	title := s.extractTitle(doc, metadata)

	for _, selector := range strippedSelectors {
		doc.Find(selector).Remove()
	}

	mainText := s.extractMainContent(doc, base)
	if len(strings.TrimSpace(mainText)) < minMainContentLength {
		if fallback := s.readabilityFallback(rawHTML, base); fallback != "" {
			mainText = fallback
		}
	}

	content := &models.PageContent{
		URL:         sourceURL,
		Title:       title,
		MainText:    strings.TrimSpace(mainText),
		RawHTML:     rawHTML,
		Metadata:    metadata,
		Links:       s.extractLinks(doc, base),
		Images:      s.extractImages(doc, base),
		Headings:    s.extractHeadings(doc),
		Blocks:      s.extractBlocks(doc),
		ExtractedAt: time.Now(),
	}

	s.logger.Debug().
		Str("url", sourceURL).
		Str("title", title).
		Int("words", content.WordCount()).
		Int("links", len(content.Links)).
		Msg("Page content extracted")

	return content, nil
}

// extractTitle resolves the page title: <title>, then the first <h1>,
// then og:title, then empty.
func (s *Service) extractTitle(doc *goquery.Document, metadata map[string]interface{}) string {
	if title := strings.TrimSpace(doc.Find("title").First().Text()); title != "" {
		return title
	}
	if h1 := strings.TrimSpace(doc.Find("h1").First().Text()); h1 != "" {
		return h1
	}
	if og, ok := metadata["og:title"].(string); ok {
		return og
	}
	return ""
}

// extractMainContent finds the primary content region and converts it to
// markdown. The first selector whose text exceeds the minimum length
// wins; otherwise the body minus boilerplate is used.
func (s *Service) extractMainContent(doc *goquery.Document, base *url.URL) string {
	converter := md.NewConverter(base.Scheme+"://"+base.Host, true, nil)

	for _, selector := range mainContentSelectors {
		selection := doc.Find(selector).First()
		if selection.Length() == 0 {
			continue
		}
		if len(strings.TrimSpace(selection.Text())) <= minMainContentLength {
			continue
		}

		html, err := selection.Html()
		if err != nil {
			continue
		}
		if markdown, err := converter.ConvertString(html); err == nil {
			return markdown
		}
	}

	body := doc.Find("body").First()
	if body.Length() == 0 {
		return ""
	}
	html, err := body.Html()
	if err != nil {
		return strings.TrimSpace(body.Text())
	}
	markdown, err := converter.ConvertString(html)
	if err != nil {
		return strings.TrimSpace(body.Text())
	}
	return markdown
}

// readabilityFallback runs a readability-style extraction over the whole
// document when selector-based extraction found too little text.
func (s *Service) readabilityFallback(rawHTML string, base *url.URL) string {
	article, err := readability.FromReader(strings.NewReader(rawHTML), base)
	if err != nil {
		s.logger.Debug().Str("url", base.String()).Err(err).Msg("Readability fallback failed")
		return ""
	}
	return strings.TrimSpace(article.TextContent)
}

// extractMetadata collects meta tags (including Open Graph and Twitter
// card properties) and any JSON-LD structured data blocks.
func (s *Service) extractMetadata(doc *goquery.Document) map[string]interface{} {
	metadata := make(map[string]interface{})

	doc.Find("meta").Each(func(_ int, sel *goquery.Selection) {
		content, ok := sel.Attr("content")
		if !ok || content == "" {
			return
		}
		if name, ok := sel.Attr("name"); ok && name != "" {
			metadata[name] = content
		} else if property, ok := sel.Attr("property"); ok && property != "" {
			metadata[property] = content
		}
	})

	var structured []interface{}
	doc.Find("script[type='application/ld+json']").Each(func(_ int, sel *goquery.Selection) {
		var parsed interface{}
		if err := json.Unmarshal([]byte(sel.Text()), &parsed); err == nil {
			structured = append(structured, parsed)
		}
	})
	if len(structured) > 0 {
		metadata["structured_data"] = structured
	}

	if lang, ok := doc.Find("html").Attr("lang"); ok && lang != "" {
		metadata["lang"] = lang
	}

	return metadata
}

func (s *Service) extractLinks(doc *goquery.Document, base *url.URL) []string {
	seen := make(map[string]bool)
	var links []string

	doc.Find("a[href]").Each(func(_ int, sel *goquery.Selection) {
		href, _ := sel.Attr("href")
		absolute := resolveURL(base, href)
		if absolute == "" || seen[absolute] {
			return
		}
		seen[absolute] = true
		links = append(links, absolute)
	})

	return links
}

func (s *Service) extractImages(doc *goquery.Document, base *url.URL) []string {
	seen := make(map[string]bool)
	var images []string

	doc.Find("img[src]").Each(func(_ int, sel *goquery.Selection) {
		src, _ := sel.Attr("src")
		absolute := resolveURL(base, src)
		if absolute == "" || seen[absolute] {
			return
		}
		seen[absolute] = true
		images = append(images, absolute)
	})

	return images
}

// extractHeadings returns the flattened h1..h6 outline in document order
func (s *Service) extractHeadings(doc *goquery.Document) []models.Heading {
	var headings []models.Heading

	doc.Find("h1, h2, h3, h4, h5, h6").Each(func(_ int, sel *goquery.Selection) {
		text := strings.TrimSpace(sel.Text())
		if text == "" {
			return
		}
		level := int(goquery.NodeName(sel)[1] - '0')
		headings = append(headings, models.Heading{Level: level, Text: text})
	})

	return headings
}

// extractBlocks collects tagged text fragments for downstream heuristics
func (s *Service) extractBlocks(doc *goquery.Document) []models.TextBlock {
	var blocks []models.TextBlock

	doc.Find("p, li, blockquote, h1, h2, h3, h4, h5, h6").Each(func(_ int, sel *goquery.Selection) {
		text := strings.TrimSpace(sel.Text())
		if text == "" {
			return
		}
		class, _ := sel.Attr("class")
		id, _ := sel.Attr("id")
		blocks = append(blocks, models.TextBlock{
			Tag:   goquery.NodeName(sel),
			Text:  text,
			Class: class,
			ID:    id,
		})
	})

	return blocks
}

// resolveURL makes href absolute against the page URL. Fragments,
// javascript:, mailto:, and tel: links resolve to empty.
func resolveURL(base *url.URL, href string) string {
	href = strings.TrimSpace(href)
	if href == "" || strings.HasPrefix(href, "#") {
		return ""
	}
	lower := strings.ToLower(href)
	for _, scheme := range []string{"javascript:", "mailto:", "tel:", "data:"} {
		if strings.HasPrefix(lower, scheme) {
			return ""
		}
	}

	parsed, err := url.Parse(href)
	if err != nil {
		return ""
	}
	resolved := base.ResolveReference(parsed)
	if resolved.Scheme != "http" && resolved.Scheme != "https" {
		return ""
	}
	resolved.Fragment = ""
	return resolved.String()
}
