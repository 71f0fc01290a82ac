// internal/relevance/providers.go
// Concrete LLM HTTP providers: Claude, Gemini, and OpenAI
package relevance

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

const llmTimeout = 30 * time.Second

// doJSON posts a JSON payload and decodes the JSON response into out
func doJSON(ctx context.Context, client *http.Client, url string, headers map[string]string, payload, out interface{}) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	for key, value := range headers {
		req.Header.Set(key, value)
	}
	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("HTTP %d: %s", resp.StatusCode, clip(string(raw), 200))
	}
	return json.Unmarshal(raw, out)
}

// --- Claude Haiku (paid) ---

type claudeProvider struct {
	apiKey string
	client *http.Client
}

func (p *claudeProvider) name() string { return "claude" }

func (p *claudeProvider) complete(ctx context.Context, system, user string) (string, error) {
	var result struct {
		Content []struct {
			Text string `json:"text"`
		} `json:"content"`
	}
	err := doJSON(ctx, p.client, "https://api.anthropic.com/v1/messages",
		map[string]string{
			"x-api-key":         p.apiKey,
			"anthropic-version": "2023-06-01",
		},
		map[string]interface{}{
			"model":       "claude-haiku-4-5-20251001",
			"max_tokens":  5,
			"temperature": 0.0,
			"system":      system,
			"messages": []map[string]string{
				{"role": "user", "content": user},
			},
		},
		&result,
	)
	if err != nil {
		return "", err
	}
	if len(result.Content) == 0 {
		return "", fmt.Errorf("claude: empty content")
	}
	return result.Content[0].Text, nil
}

func (p *claudeProvider) close() { p.client.CloseIdleConnections() }

// NewClaudeChecker creates a Claude Haiku checker (concurrency 5, 100ms gap)
func NewClaudeChecker(apiKey string) Checker {
	return newGatedChecker(&claudeProvider{
		apiKey: apiKey,
		client: &http.Client{Timeout: llmTimeout},
	}, 5, 100*time.Millisecond)
}

// --- Gemini Flash (free tier) ---

type geminiProvider struct {
	apiKey string
	client *http.Client
}

func (p *geminiProvider) name() string { return "gemini" }

func (p *geminiProvider) complete(ctx context.Context, system, user string) (string, error) {
	var result struct {
		Candidates []struct {
			Content struct {
				Parts []struct {
					Text string `json:"text"`
				} `json:"parts"`
			} `json:"content"`
		} `json:"candidates"`
	}
	url := "https://generativelanguage.googleapis.com/v1beta/models/gemini-2.0-flash:generateContent?key=" + p.apiKey
	err := doJSON(ctx, p.client, url, nil,
		map[string]interface{}{
			"system_instruction": map[string]interface{}{
				"parts": []map[string]string{{"text": system}},
			},
			"contents": []map[string]interface{}{
				{"parts": []map[string]string{{"text": user}}},
			},
			"generationConfig": map[string]interface{}{
				"maxOutputTokens": 5,
				"temperature":     0.0,
			},
		},
		&result,
	)
	if err != nil {
		return "", err
	}
	if len(result.Candidates) == 0 || len(result.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("gemini: empty candidates")
	}
	return result.Candidates[0].Content.Parts[0].Text, nil
}

func (p *geminiProvider) close() { p.client.CloseIdleConnections() }

// NewGeminiChecker creates a Gemini Flash checker. Free tier allows 15
// requests per minute; concurrency 1 with a 4s interval stays inside it.
func NewGeminiChecker(apiKey string) Checker {
	return newGatedChecker(&geminiProvider{
		apiKey: apiKey,
		client: &http.Client{Timeout: llmTimeout},
	}, 1, 4*time.Second)
}

// --- OpenAI GPT-4o-mini (paid) ---

type openaiProvider struct {
	apiKey string
	client *http.Client
}

func (p *openaiProvider) name() string { return "openai" }

func (p *openaiProvider) complete(ctx context.Context, system, user string) (string, error) {
	var result struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	err := doJSON(ctx, p.client, "https://api.openai.com/v1/chat/completions",
		map[string]string{
			"Authorization": "Bearer " + p.apiKey,
		},
		map[string]interface{}{
			"model": "gpt-4o-mini",
			"messages": []map[string]string{
				{"role": "system", "content": system},
				{"role": "user", "content": user},
			},
			"max_tokens":  5,
			"temperature": 0.0,
		},
		&result,
	)
	if err != nil {
		return "", err
	}
	if len(result.Choices) == 0 {
		return "", fmt.Errorf("openai: empty choices")
	}
	return result.Choices[0].Message.Content, nil
}

func (p *openaiProvider) close() { p.client.CloseIdleConnections() }

// NewOpenAIChecker creates an OpenAI checker (concurrency 5, 100ms gap)
func NewOpenAIChecker(apiKey string) Checker {
	return newGatedChecker(&openaiProvider{
		apiKey: apiKey,
		client: &http.Client{Timeout: llmTimeout},
	}, 5, 100*time.Millisecond)
}
