package models

import "time"

// KnowledgeSourceType identifies where a knowledge item came from
type KnowledgeSourceType string

const (
	KnowledgeSourceURL    KnowledgeSourceType = "url"
	KnowledgeSourceFile   KnowledgeSourceType = "file"
	KnowledgeSourceManual KnowledgeSourceType = "manual"
)

// KnowledgeStatus is the lifecycle state of a knowledge item
type KnowledgeStatus string

const (
	KnowledgeStatusActive   KnowledgeStatus = "active"
	KnowledgeStatusDraft    KnowledgeStatus = "draft"
	KnowledgeStatusArchived KnowledgeStatus = "archived"
)

// KnowledgeItem is a versioned, searchable unit of business knowledge.
// Every content mutation increments Version by exactly one and appends a
// KnowledgeVersion snapshot.
type KnowledgeItem struct {
	ID         string              `json:"id"` // kb_{uuid}
	Title      string              `json:"title"`
	Content    string              `json:"content"` // Markdown
	Summary    string              `json:"summary,omitempty"`
	CategoryID string              `json:"category_id,omitempty"`
	SourceType KnowledgeSourceType `json:"source_type"`
	SourceURL  string              `json:"source_url,omitempty"`
	FilePath   string              `json:"file_path,omitempty"`
	Tags       []string            `json:"tags,omitempty"`
	Status     KnowledgeStatus     `json:"status"`

	ConfidenceScore    float64 `json:"confidence_score"`
	UsageCount         int     `json:"usage_count"`
	EffectivenessScore float64 `json:"effectiveness_score"`

	Version   int       `json:"version"` // Monotonic, starts at 1
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// KnowledgeVersion is an immutable append-only snapshot of a knowledge
// item at a given version number
type KnowledgeVersion struct {
	ID        string    `json:"id"` // ver_{uuid}
	ItemID    string    `json:"item_id"`
	Version   int       `json:"version"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	Summary   string    `json:"summary,omitempty"`
	ChangedBy string    `json:"changed_by,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// KnowledgeCategory is a node in the category forest. A category with
// children cannot be deleted; children must be re-parented first.
type KnowledgeCategory struct {
	ID         string    `json:"id"` // cat_{uuid}
	Name       string    `json:"name"`
	ParentID   string    `json:"parent_id,omitempty"`
	OrderIndex int       `json:"order_index"`
	Color      string    `json:"color,omitempty"`
	Icon       string    `json:"icon,omitempty"`
	IsActive   bool      `json:"is_active"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// SearchRecord is one entry in the knowledge search history log, used for
// trend analytics and knowledge-gap detection
type SearchRecord struct {
	ID          string    `json:"id"`
	Query       string    `json:"query"`
	ResultCount int       `json:"result_count"`
	SearchedAt  time.Time `json:"searched_at"`
}

// SearchResult pairs a knowledge item with its relevance score
type SearchResult struct {
	Item           *KnowledgeItem `json:"item"`
	RelevanceScore float64        `json:"relevance_score"`
}

// KnowledgeAnalytics is the aggregate rollup over the knowledge base
type KnowledgeAnalytics struct {
	TotalItems       int             `json:"total_items"`
	ActiveItems      int             `json:"active_items"`
	TotalUsage       int             `json:"total_usage"`
	AvgEffectiveness float64         `json:"avg_effectiveness"`
	TopCategories    []CategoryCount `json:"top_categories"`
	SearchTrends     []SearchTrend   `json:"search_trends"`
	KnowledgeGaps    []SearchTrend   `json:"knowledge_gaps"`
	GeneratedAt      time.Time       `json:"generated_at"`
}

// CategoryCount is an item count for one category
type CategoryCount struct {
	CategoryID   string `json:"category_id"`
	CategoryName string `json:"category_name"`
	ItemCount    int    `json:"item_count"`
}

// SearchTrend is a recurring query from the search-history window
type SearchTrend struct {
	Query       string `json:"query"`
	Occurrences int    `json:"occurrences"`
	ZeroResults bool   `json:"zero_results"`
}
