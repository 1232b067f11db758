package interfaces

import "context"

// TextGenerator is the minimal surface the knowledge base needs from an
// AI provider for enrichment (summaries, keywords, FAQ suggestions).
// Implementations live in internal/services/llm.
type TextGenerator interface {
	// Generate produces a completion for the prompt, bounded by maxTokens.
	Generate(ctx context.Context, prompt string, maxTokens int) (string, error)
}
