package analysis

import (
	"regexp"
	"sort"
	"strings"

	"github.com/ternarybob/arbor"

	"github.com/brightreply/scout/internal/models"
)

// Per-type entity confidence. Regex detection has known false-positive
// rates that differ by pattern; phone and date patterns are the loosest.
const (
	emailConfidence = 0.9
	phoneConfidence = 0.8
	urlConfidence   = 0.9
	dateConfidence  = 0.7
)

const maxKeywords = 20

var (
	emailPattern = regexp.MustCompile(`[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}`)
	phonePattern = regexp.MustCompile(`\+?\d{1,3}[\s.\-]?\(?\d{2,4}\)?[\s.\-]?\d{3,4}[\s.\-]?\d{3,4}`)
	urlPattern   = regexp.MustCompile(`https?://[^\s<>"')]+`)
	datePattern  = regexp.MustCompile(`\b(?:\d{1,2}[/\-]\d{1,2}[/\-]\d{2,4}|(?:January|February|March|April|May|June|July|August|September|October|November|December)\s+\d{1,2},?\s+\d{4})\b`)

	wordPattern   = regexp.MustCompile(`[a-zA-Z']+`)
	sentenceSplit = regexp.MustCompile(`[.!?]+`)
	vowelGroup    = regexp.MustCompile(`[aeiouy]+`)
)

var positiveWords = []string{
	"great", "excellent", "best", "amazing", "love", "easy", "fast",
	"reliable", "trusted", "quality", "perfect", "innovative", "helpful",
	"powerful", "seamless", "free", "improve", "success", "award",
}

var negativeWords = []string{
	"bad", "worst", "problem", "issue", "slow", "difficult", "fail",
	"broken", "error", "complaint", "expensive", "poor", "unfortunately",
	"limited", "risk", "loss", "cancel",
}

// stopWords are excluded from keyword ranking
var stopWords = map[string]bool{
	"this": true, "that": true, "with": true, "from": true, "your": true,
	"have": true, "more": true, "will": true, "about": true, "their": true,
	"what": true, "when": true, "there": true, "which": true, "would": true,
	"these": true, "those": true, "them": true, "then": true, "they": true,
	"been": true, "being": true, "were": true, "into": true, "also": true,
	"such": true, "other": true, "some": true, "only": true, "over": true,
	"most": true, "each": true, "here": true, "than": true, "very": true,
}

// Analyzer derives entities, sentiment, readability, and keyword
// statistics from page text. All methods are heuristic, not ML-based.
type Analyzer struct {
	logger     arbor.ILogger
	classifier *Classifier
}

// NewAnalyzer creates a content analyzer
func NewAnalyzer(logger arbor.ILogger, classifier *Classifier) *Analyzer {
	return &Analyzer{logger: logger, classifier: classifier}
}

// Analyze runs the full heuristic suite over page text
func (a *Analyzer) Analyze(text, pageURL string) *models.ContentAnalysis {
	contentType, confidence := a.classifier.Classify(text, pageURL)

	return &models.ContentAnalysis{
		ContentType: contentType,
		Confidence:  confidence,
		Entities:    ExtractEntities(text),
		Sentiment:   AnalyzeSentiment(text),
		Readability: AnalyzeReadability(text),
		Keywords:    ExtractKeywords(text),
	}
}

// ExtractEntities detects emails, phone numbers, URLs, and dates via
// regex, each with a fixed per-type confidence.
func ExtractEntities(text string) []models.Entity {
	var entities []models.Entity
	seen := make(map[string]bool)

	add := func(matches []string, entityType string, confidence float64) {
		for _, match := range matches {
			key := entityType + ":" + match
			if seen[key] {
				continue
			}
			seen[key] = true
			entities = append(entities, models.Entity{
				Text:       match,
				Type:       entityType,
				Confidence: confidence,
			})
		}
	}

	add(emailPattern.FindAllString(text, -1), "email", emailConfidence)
	add(phonePattern.FindAllString(text, -1), "phone", phoneConfidence)
	add(urlPattern.FindAllString(text, -1), "url", urlConfidence)
	add(datePattern.FindAllString(text, -1), "date", dateConfidence)

	return entities
}

// AnalyzeSentiment counts positive and negative keyword hits and
// normalizes the balance to [-1, 1]. Labels flip at ±0.01.
func AnalyzeSentiment(text string) models.Sentiment {
	lower := strings.ToLower(text)

	positive := 0
	for _, word := range positiveWords {
		positive += strings.Count(lower, word)
	}
	negative := 0
	for _, word := range negativeWords {
		negative += strings.Count(lower, word)
	}

	total := positive + negative
	if total == 0 {
		return models.Sentiment{Score: 0, Label: "neutral", Confidence: 0.5}
	}

	score := float64(positive-negative) / float64(total)

	label := "neutral"
	switch {
	case score > 0.01:
		label = "positive"
	case score < -0.01:
		label = "negative"
	}

	// More hits means a steadier estimate.
	confidence := 0.5 + float64(total)/100.0
	if confidence > 0.9 {
		confidence = 0.9
	}

	return models.Sentiment{Score: score, Label: label, Confidence: confidence}
}

// AnalyzeReadability computes Flesch-Kincaid style grade metrics from
// average sentence length and syllables per word.
func AnalyzeReadability(text string) models.Readability {
	words := wordPattern.FindAllString(text, -1)
	if len(words) == 0 {
		return models.Readability{}
	}

	sentences := 0
	for _, part := range sentenceSplit.Split(text, -1) {
		if strings.TrimSpace(part) != "" {
			sentences++
		}
	}
	if sentences == 0 {
		sentences = 1
	}

	syllables := 0
	for _, word := range words {
		syllables += CountSyllables(word)
	}

	avgWords := float64(len(words)) / float64(sentences)
	avgSyllables := float64(syllables) / float64(len(words))

	return models.Readability{
		FleschKincaidGrade:  0.39*avgWords + 11.8*avgSyllables - 15.59,
		ReadingEase:         206.835 - 1.015*avgWords - 84.6*avgSyllables,
		AvgWordsPerSentence: avgWords,
		AvgSyllablesPerWord: avgSyllables,
	}
}

// CountSyllables estimates syllables by counting vowel groups, with a
// correction for silent trailing e. Every word counts at least one.
func CountSyllables(word string) int {
	lower := strings.ToLower(word)
	groups := vowelGroup.FindAllString(lower, -1)
	count := len(groups)

	if count > 1 && strings.HasSuffix(lower, "e") && !strings.HasSuffix(lower, "le") {
		count--
	}
	if count < 1 {
		count = 1
	}
	return count
}

// ExtractKeywords ranks tokens longer than three characters by frequency
// and returns the top entries. Importance is frequency over total words.
func ExtractKeywords(text string) []models.Keyword {
	words := wordPattern.FindAllString(strings.ToLower(text), -1)
	if len(words) == 0 {
		return nil
	}

	frequency := make(map[string]int)
	for _, word := range words {
		if len(word) <= 3 || stopWords[word] {
			continue
		}
		frequency[word]++
	}

	keywords := make([]models.Keyword, 0, len(frequency))
	for word, count := range frequency {
		keywords = append(keywords, models.Keyword{
			Word:       word,
			Frequency:  count,
			Importance: float64(count) / float64(len(words)),
		})
	}

	sort.Slice(keywords, func(i, j int) bool {
		if keywords[i].Frequency != keywords[j].Frequency {
			return keywords[i].Frequency > keywords[j].Frequency
		}
		return keywords[i].Word < keywords[j].Word
	})

	if len(keywords) > maxKeywords {
		keywords = keywords[:maxKeywords]
	}
	return keywords
}
