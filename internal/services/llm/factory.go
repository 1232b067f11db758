package llm

import (
	"context"
	"fmt"

	"github.com/ternarybob/arbor"

	"github.com/brightreply/scout/internal/common"
	"github.com/brightreply/scout/internal/interfaces"
)

// NewTextGenerator creates the configured enrichment provider. An
// unconfigured provider (missing API key) is an error here; callers that
// treat enrichment as optional should skip construction instead.
func NewTextGenerator(ctx context.Context, cfg *common.Config, logger arbor.ILogger) (interfaces.TextGenerator, error) {
	switch cfg.LLM.DefaultProvider {
	case common.LLMProviderClaude:
		return NewClaudeService(&cfg.Claude, logger)
	case common.LLMProviderGemini:
		return NewGeminiService(ctx, &cfg.Gemini, logger)
	default:
		return nil, fmt.Errorf("unknown llm provider %q", cfg.LLM.DefaultProvider)
	}
}
