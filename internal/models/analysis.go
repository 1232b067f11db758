package models

// ContentType categorizes a page by its business purpose
type ContentType string

const (
	ContentTypePricing ContentType = "pricing"
	ContentTypeFAQ     ContentType = "faq"
	ContentTypeAbout   ContentType = "about"
	ContentTypeProduct ContentType = "product"
	ContentTypePolicy  ContentType = "policy"
	ContentTypeContact ContentType = "contact"
	ContentTypeGeneral ContentType = "general"
)

// Entity is a piece of structured data detected in page text
type Entity struct {
	Text       string  `json:"text"`
	Type       string  `json:"type"` // email, phone, url, date
	Confidence float64 `json:"confidence"`
}

// Sentiment is a heuristic polarity estimate for page text.
// Score is normalized to [-1, 1].
type Sentiment struct {
	Score      float64 `json:"score"`
	Label      string  `json:"label"` // positive, negative, neutral
	Confidence float64 `json:"confidence"`
}

// Readability carries Flesch-Kincaid style grade estimates
type Readability struct {
	FleschKincaidGrade float64 `json:"flesch_kincaid_grade"`
	ReadingEase        float64 `json:"reading_ease"`
	AvgWordsPerSentence float64 `json:"avg_words_per_sentence"`
	AvgSyllablesPerWord float64 `json:"avg_syllables_per_word"`
}

// Keyword is a frequency-ranked token from page text
type Keyword struct {
	Word       string  `json:"word"`
	Frequency  int     `json:"frequency"`
	Importance float64 `json:"importance"` // frequency / total words
}

// ContentAnalysis aggregates the heuristic analysis of one page
type ContentAnalysis struct {
	ContentType ContentType `json:"content_type"`
	Confidence  float64     `json:"confidence"`
	Entities    []Entity    `json:"entities"`
	Sentiment   Sentiment   `json:"sentiment"`
	Readability Readability `json:"readability"`
	Keywords    []Keyword   `json:"keywords"`
}
