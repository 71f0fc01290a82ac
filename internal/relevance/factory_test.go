package relevance

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AIDMI-DataHub/heat-news-extraction/internal/config"
)

func TestFactoryDisabled(t *testing.T) {
	assert.Nil(t, NewCheckerFromConfig(&config.Config{LLMProvider: "none"}))
	assert.Nil(t, NewCheckerFromConfig(&config.Config{LLMProvider: ""}))
}

func TestFactoryMissingKey(t *testing.T) {
	assert.Nil(t, NewCheckerFromConfig(&config.Config{LLMProvider: "openai"}))
	assert.Nil(t, NewCheckerFromConfig(&config.Config{LLMProvider: "gemini"}))
	assert.Nil(t, NewCheckerFromConfig(&config.Config{LLMProvider: "claude"}))
}

func TestFactorySingleProvider(t *testing.T) {
	checker := NewCheckerFromConfig(&config.Config{
		LLMProvider:  "openai",
		OpenAIAPIKey: "sk-test",
	})
	require.NotNil(t, checker)
	defer checker.Close()
	_, isConsensus := checker.(*ConsensusChecker)
	assert.False(t, isConsensus)
}

func TestFactoryConsensus(t *testing.T) {
	checker := NewCheckerFromConfig(&config.Config{
		LLMProvider:     "openai+claude",
		OpenAIAPIKey:    "sk-test",
		AnthropicAPIKey: "sk-ant-test",
	})
	require.NotNil(t, checker)
	defer checker.Close()
	_, isConsensus := checker.(*ConsensusChecker)
	assert.True(t, isConsensus)
}

func TestFactoryConsensusFallsBackToSingle(t *testing.T) {
	// Only one key available: consensus degrades to the single checker
	checker := NewCheckerFromConfig(&config.Config{
		LLMProvider:  "openai+gemini",
		OpenAIAPIKey: "sk-test",
	})
	require.NotNil(t, checker)
	defer checker.Close()
	_, isConsensus := checker.(*ConsensusChecker)
	assert.False(t, isConsensus)
}

func TestFactoryUnknownProvider(t *testing.T) {
	assert.Nil(t, NewCheckerFromConfig(&config.Config{LLMProvider: "llama"}))
}
