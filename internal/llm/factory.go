package llm

import (
	"fmt"
	"log/slog"

	"github.com/SAP-F-2025/interview-service/internal/config"
)

// NewProvider builds the configured provider wrapped with logging. It
// returns nil without error when no provider is configured, in which case
// callers use their deterministic fallback.
func NewProvider(cfg config.AIConfig, logger *slog.Logger) (Provider, error) {
	var base Provider
	var err error

	switch cfg.Provider {
	case "", "none":
		return nil, nil
	case "openai":
		if cfg.OpenAIKey == "" {
			logger.Warn("AI_PROVIDER is openai but OPENAI_API_KEY is empty, using fallback feedback")
			return nil, nil
		}
		base, err = NewOpenAIProvider(cfg.OpenAIKey, cfg.OpenAIModel, cfg.OpenAIBaseURL)
	case "anthropic":
		if cfg.AnthropicKey == "" {
			logger.Warn("AI_PROVIDER is anthropic but ANTHROPIC_API_KEY is empty, using fallback feedback")
			return nil, nil
		}
		base, err = NewAnthropicProvider(cfg.AnthropicKey, cfg.AnthropicModel)
	case "mock":
		base = NewMockProvider()
	default:
		return nil, fmt.Errorf("unknown LLM provider: %q", cfg.Provider)
	}
	if err != nil {
		return nil, fmt.Errorf("initializing %s provider: %w", cfg.Provider, err)
	}

	return WithLogging(base, logger), nil
}
