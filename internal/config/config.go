// internal/config/config.go
// Environment-driven configuration for the collection pipeline
package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/AIDMI-DataHub/heat-news-extraction/internal/models"
)

// Config holds all configuration for one pipeline run
type Config struct {
	// Scope
	EnabledRegions   []string // region slugs; empty = all regions
	EnabledDistricts []string // district slugs; empty = all districts
	EnabledSources   []string // source hints; empty = all sources

	// Date window: either a lookback in hours or an explicit range
	LookbackHours int
	DateFrom      time.Time // zero when LookbackHours is used
	DateTo        time.Time

	// Limits
	ExtractionCap          int // max refs sent to extraction
	PipelineTimeoutMinutes int // 0 = no deadline

	// External API keys
	NewsDataAPIKey  string
	GNewsAPIKey     string
	GeminiAPIKey    string
	OpenAIAPIKey    string
	AnthropicAPIKey string

	// LLM relevance layer: "none", one provider, or "a+b[+c]" for consensus
	LLMProvider string

	// Paths
	OutputRoot     string
	CheckpointPath string
}

// Load loads configuration from the environment (and .env when present)
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Printf("Warning: .env file not found or could not be loaded: %v", err)
	}

	cfg := &Config{
		EnabledRegions:   getEnvAsList("ENABLED_REGIONS"),
		EnabledDistricts: getEnvAsList("ENABLED_DISTRICTS"),
		EnabledSources:   getEnvAsList("ENABLED_SOURCES"),

		LookbackHours: getEnvAsInt("LOOKBACK_HOURS", 24),

		ExtractionCap:          getEnvAsInt("EXTRACTION_CAP", 5000),
		PipelineTimeoutMinutes: getEnvAsInt("PIPELINE_TIMEOUT_MINUTES", 0),

		NewsDataAPIKey:  getEnv("NEWSDATA_API_KEY", ""),
		GNewsAPIKey:     getEnv("GNEWS_API_KEY", ""),
		GeminiAPIKey:    getEnv("GEMINI_API_KEY", ""),
		OpenAIAPIKey:    getEnv("OPENAI_API_KEY", ""),
		AnthropicAPIKey: getEnv("ANTHROPIC_API_KEY", ""),

		LLMProvider: getEnv("LLM_PROVIDER", "none"),

		OutputRoot:     getEnv("OUTPUT_ROOT", "output"),
		CheckpointPath: getEnv("CHECKPOINT_PATH", ""),
	}

	// DATE_RANGE=YYYY-MM-DD:YYYY-MM-DD overrides LOOKBACK_HOURS
	if dateRange := getEnv("DATE_RANGE", ""); dateRange != "" {
		from, to, err := parseDateRange(dateRange)
		if err != nil {
			return nil, fmt.Errorf("invalid DATE_RANGE: %w", err)
		}
		cfg.DateFrom = from
		cfg.DateTo = to
		cfg.LookbackHours = 0
	}

	if cfg.NewsDataAPIKey == "" {
		log.Printf("Warning: NEWSDATA_API_KEY not set")
	}
	if cfg.GNewsAPIKey == "" {
		log.Printf("Warning: GNEWS_API_KEY not set")
	}

	return cfg, nil
}

// parseDateRange parses "YYYY-MM-DD:YYYY-MM-DD" into an inclusive IST window
func parseDateRange(raw string) (time.Time, time.Time, error) {
	parts := strings.SplitN(raw, ":", 2)
	if len(parts) != 2 {
		return time.Time{}, time.Time{}, fmt.Errorf("expected YYYY-MM-DD:YYYY-MM-DD, got %q", raw)
	}
	from, err := time.ParseInLocation("2006-01-02", parts[0], models.IST)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	to, err := time.ParseInLocation("2006-01-02", parts[1], models.IST)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	// Make the end date inclusive through end of day
	to = to.Add(24*time.Hour - time.Nanosecond)
	if to.Before(from) {
		return time.Time{}, time.Time{}, fmt.Errorf("end date before start date in %q", raw)
	}
	return from, to, nil
}

// DateWindow returns the article date window for this run in IST
func (c *Config) DateWindow(now time.Time) (time.Time, time.Time) {
	if !c.DateFrom.IsZero() {
		return c.DateFrom, c.DateTo
	}
	hours := c.LookbackHours
	if hours <= 0 {
		hours = 24
	}
	return now.Add(-time.Duration(hours) * time.Hour), now
}

// SourceEnabled reports whether the source hint is in scope for this run
func (c *Config) SourceEnabled(hint string) bool {
	if len(c.EnabledSources) == 0 {
		return true
	}
	for _, enabled := range c.EnabledSources {
		if enabled == hint {
			return true
		}
	}
	return false
}

// RegionEnabled reports whether the region slug is in scope for this run
func (c *Config) RegionEnabled(slug string) bool {
	if len(c.EnabledRegions) == 0 {
		return true
	}
	for _, enabled := range c.EnabledRegions {
		if enabled == slug {
			return true
		}
	}
	return false
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		log.Printf("Warning: %s=%q is not an integer, using %d", key, raw, fallback)
		return fallback
	}
	return value
}

func getEnvAsList(key string) []string {
	raw := os.Getenv(key)
	if raw == "" {
		return nil
	}
	var values []string
	for _, part := range strings.Split(raw, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			values = append(values, trimmed)
		}
	}
	return values
}
