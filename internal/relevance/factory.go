// internal/relevance/factory.go
// Checker construction from pipeline configuration
package relevance

import (
	"strings"

	"github.com/AIDMI-DataHub/heat-news-extraction/internal/config"
	"github.com/AIDMI-DataHub/heat-news-extraction/pkg/logger"
)

func newSingleChecker(providerName string, cfg *config.Config) Checker {
	switch providerName {
	case "gemini":
		if cfg.GeminiAPIKey == "" {
			logger.Warn("GEMINI_API_KEY not set, skipping gemini checker")
			return nil
		}
		return NewGeminiChecker(cfg.GeminiAPIKey)
	case "openai":
		if cfg.OpenAIAPIKey == "" {
			logger.Warn("OPENAI_API_KEY not set, skipping openai checker")
			return nil
		}
		return NewOpenAIChecker(cfg.OpenAIAPIKey)
	case "claude":
		if cfg.AnthropicAPIKey == "" {
			logger.Warn("ANTHROPIC_API_KEY not set, skipping claude checker")
			return nil
		}
		return NewClaudeChecker(cfg.AnthropicAPIKey)
	}
	logger.Warn("unknown llm provider, skipped", "provider", providerName)
	return nil
}

// NewCheckerFromConfig builds the configured relevance checker, or nil when
// the LLM layer is disabled (provider "none") or no usable API key exists.
// Provider names joined with "+" produce a majority-vote consensus checker.
func NewCheckerFromConfig(cfg *config.Config) Checker {
	providerSpec := strings.ToLower(strings.TrimSpace(cfg.LLMProvider))
	if providerSpec == "" || providerSpec == "none" {
		logger.Info("llm relevance check disabled")
		return nil
	}

	if strings.Contains(providerSpec, "+") {
		var names []string
		var checkers []Checker
		for _, name := range strings.Split(providerSpec, "+") {
			name = strings.TrimSpace(name)
			if name == "" {
				continue
			}
			if checker := newSingleChecker(name, cfg); checker != nil {
				names = append(names, name)
				checkers = append(checkers, checker)
			}
		}
		if len(checkers) >= 2 {
			logger.Info("using multi-llm consensus", "providers", strings.Join(names, "+"))
			return NewConsensusChecker(checkers)
		}
		if len(checkers) == 1 {
			logger.Warn("consensus needs 2+ checkers, falling back to single",
				"available", len(checkers))
			return checkers[0]
		}
		logger.Warn("no llm checkers available, skipping relevance check")
		return nil
	}

	checker := newSingleChecker(providerSpec, cfg)
	if checker != nil {
		logger.Info("using llm relevance checker", "provider", providerSpec)
	} else {
		logger.Warn("could not create llm checker, skipping relevance check",
			"provider", providerSpec)
	}
	return checker
}
