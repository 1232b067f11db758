package analysis

import (
	"net/url"
	"regexp"
	"strings"

	"github.com/ternarybob/arbor"

	"github.com/brightreply/scout/internal/models"
)

var (
	companyPhrasePattern = regexp.MustCompile(`(?i)(?:about|welcome to|we are)\s+([A-Z][A-Za-z0-9&.\- ]{2,40})`)
	addressPattern       = regexp.MustCompile(`\d{1,5}\s+[A-Za-z0-9.\- ]+(?:Street|St|Avenue|Ave|Road|Rd|Boulevard|Blvd|Drive|Dr|Lane|Ln|Way|Court|Ct)\.?,?\s+[A-Za-z.\- ]+,\s*[A-Z]{2}\s+\d{5}`)
	foundedPattern       = regexp.MustCompile(`(?i)(?:founded|established|since)\s+(?:in\s+)?(\d{4})`)
	employeesPattern     = regexp.MustCompile(`(?i)(\d{1,3}(?:,\d{3})*\+?)\s+employees`)
	sentenceEnd          = regexp.MustCompile(`[.!?]`)
)

// socialPlatforms maps platform names to their profile URL pattern
var socialPlatforms = map[string]*regexp.Regexp{
	"twitter":   regexp.MustCompile(`https?://(?:www\.)?(?:twitter|x)\.com/[A-Za-z0-9_]+`),
	"facebook":  regexp.MustCompile(`https?://(?:www\.)?facebook\.com/[A-Za-z0-9.\-_]+`),
	"linkedin":  regexp.MustCompile(`https?://(?:www\.)?linkedin\.com/(?:company|in)/[A-Za-z0-9\-_]+`),
	"instagram": regexp.MustCompile(`https?://(?:www\.)?instagram\.com/[A-Za-z0-9.\-_]+`),
	"youtube":   regexp.MustCompile(`https?://(?:www\.)?youtube\.com/(?:@|channel/|c/|user/)[A-Za-z0-9.\-_]+`),
}

// industryKeywords maps an industry label to the terms that suggest it
var industryKeywords = map[string][]string{
	"software":      {"software", "saas", "platform", "app", "api", "cloud"},
	"ecommerce":     {"shop", "store", "cart", "checkout", "shipping", "retail"},
	"finance":       {"bank", "finance", "investment", "insurance", "loan", "payment"},
	"healthcare":    {"health", "medical", "clinic", "patient", "doctor", "wellness"},
	"education":     {"education", "course", "learning", "training", "school", "university"},
	"marketing":     {"marketing", "advertising", "seo", "branding", "campaign"},
	"real estate":   {"real estate", "property", "listing", "mortgage", "realtor"},
	"hospitality":   {"hotel", "restaurant", "booking", "reservation", "menu", "travel"},
	"manufacturing": {"manufacturing", "factory", "industrial", "supplier", "production"},
	"legal":         {"law", "legal", "attorney", "lawyer", "litigation"},
}

// industryOrder fixes evaluation order for deterministic results
var industryOrder = []string{
	"software", "ecommerce", "finance", "healthcare", "education",
	"marketing", "real estate", "hospitality", "manufacturing", "legal",
}

// BusinessExtractor pulls structured business facts out of page text and
// links. Every field is best-effort; an empty result is not an error.
type BusinessExtractor struct {
	logger arbor.ILogger
}

// NewBusinessExtractor creates a business info extractor
func NewBusinessExtractor(logger arbor.ILogger) *BusinessExtractor {
	return &BusinessExtractor{logger: logger}
}

// Extract derives business facts from page content
func (b *BusinessExtractor) Extract(content *models.PageContent) *models.BusinessInfo {
	text := content.MainText
	info := &models.BusinessInfo{
		CompanyName: b.companyName(text, content.URL),
		Description: b.description(text),
		Address:     addressPattern.FindString(text),
		Industry:    b.industry(text),
	}

	if match := foundedPattern.FindStringSubmatch(text); match != nil {
		info.Founded = match[1]
	}
	if match := employeesPattern.FindStringSubmatch(text); match != nil {
		info.Employees = match[1]
	}

	info.Contact = b.contactInfo(text, content)
	info.SocialMedia = b.socialMedia(text, content.Links)

	return info
}

// companyName prefers the capitalized URL domain, falling back to
// "about/welcome to" phrasing in the text.
func (b *BusinessExtractor) companyName(text, pageURL string) string {
	if parsed, err := url.Parse(pageURL); err == nil && parsed.Hostname() != "" {
		host := strings.TrimPrefix(parsed.Hostname(), "www.")
		if dot := strings.Index(host, "."); dot > 0 {
			name := host[:dot]
			if name != "" {
				return strings.ToUpper(name[:1]) + name[1:]
			}
		}
	}

	if match := companyPhrasePattern.FindStringSubmatch(text); match != nil {
		return strings.TrimSpace(match[1])
	}
	return ""
}

// description takes the first sentence longer than 20 characters
func (b *BusinessExtractor) description(text string) string {
	for _, sentence := range sentenceEnd.Split(text, -1) {
		trimmed := strings.TrimSpace(sentence)
		trimmed = strings.Trim(trimmed, "#*>- ")
		if len(trimmed) > 20 {
			return trimmed
		}
	}
	return ""
}

func (b *BusinessExtractor) contactInfo(text string, content *models.PageContent) models.ContactInfo {
	contact := models.ContactInfo{
		Email: emailPattern.FindString(text),
		Phone: phonePattern.FindString(text),
	}

	if parsed, err := url.Parse(content.URL); err == nil {
		contact.Website = parsed.Scheme + "://" + parsed.Host
	}

	for _, link := range content.Links {
		if strings.Contains(strings.ToLower(link), "contact") {
			contact.ContactForm = link
			break
		}
	}

	return contact
}

func (b *BusinessExtractor) socialMedia(text string, links []string) map[string]string {
	found := make(map[string]string)

	haystack := text + "\n" + strings.Join(links, "\n")
	for platform, pattern := range socialPlatforms {
		if match := pattern.FindString(haystack); match != "" {
			found[platform] = match
		}
	}

	if len(found) == 0 {
		return nil
	}
	return found
}

// industry returns the first industry whose keyword list matches the text
func (b *BusinessExtractor) industry(text string) string {
	lower := strings.ToLower(text)
	for _, industry := range industryOrder {
		for _, keyword := range industryKeywords[industry] {
			if strings.Contains(lower, keyword) {
				return industry
			}
		}
	}
	return ""
}
