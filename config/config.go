package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all application configuration.
type Config struct {
	Server    ServerConfig
	Discovery DiscoveryConfig
	Search    SearchConfig
	Fetch     FetchConfig
	Compare   CompareConfig
	Auth      AuthConfig
	RateLimit RateLimitConfig
	CORS      CORSConfig
	Log       LogConfig
}

// ServerConfig controls the HTTP server.
type ServerConfig struct {
	Host string // default: "0.0.0.0"
	Port int    // default: 8080
	Mode string // "debug", "release", "test"; default: "release"
}

// DiscoveryConfig controls the generative-language site discoverer.
type DiscoveryConfig struct {
	// APIKeys is the ranked credential list. Keys are tried in order;
	// a rate-limited or unavailable key falls over to the next one.
	APIKeys []string

	// Model is the generative model used for site discovery.
	Model string // default: "gemini-1.5-flash"

	// BaseURL overrides the generative-language API endpoint.
	BaseURL string

	// Timeout is the deadline for a single discovery call.
	Timeout time.Duration // default: 15s
}

// SearchConfig controls the web-search backend.
type SearchConfig struct {
	// APIKey is the single web-search credential.
	APIKey string

	// BaseURL overrides the search API endpoint.
	BaseURL string

	// Timeout is the deadline for a single search call.
	Timeout time.Duration // default: 10s
}

// FetchConfig controls product page retrieval.
type FetchConfig struct {
	// Timeout is the per-page fetch deadline. A hung fetch becomes an
	// absent result, same as any other fetch failure.
	Timeout time.Duration // default: 15s

	// MaxBodyBytes caps how much of a page body is read.
	MaxBodyBytes int64 // default: 10 MB

	// Proxy is an optional http/https proxy URL for page fetches.
	Proxy string
}

// CompareConfig controls the orchestrator's fan-out.
type CompareConfig struct {
	// MaxConcurrentFetches bounds in-flight page fetches per request.
	// Worst case demand is 25 (5 sites x 5 links).
	MaxConcurrentFetches int // default: 25
}

// AuthConfig controls API key authentication.
type AuthConfig struct {
	// Enabled toggles API key authentication.
	Enabled bool // default: false

	// APIKeys is the list of valid inbound API keys.
	APIKeys []string
}

// RateLimitConfig controls per-key rate limiting.
type RateLimitConfig struct {
	// RequestsPerSecond is the sustained rate per API key.
	RequestsPerSecond float64 // default: 2

	// Burst is the maximum burst size per API key.
	Burst int // default: 5
}

// CORSConfig controls cross-origin access for the collaborator UI.
type CORSConfig struct {
	// AllowedOrigins lists permitted origins; empty means allow all.
	AllowedOrigins []string
}

// LogConfig controls structured logging.
type LogConfig struct {
	Level  string // default: "info"
	Format string // "json" or "text"; default: "json"
}

// Load reads configuration from environment variables with sane defaults.
func Load() *Config {
	return &Config{
		Server: ServerConfig{
			Host: envOr("PRICEFETCHER_HOST", "0.0.0.0"),
			Port: envIntOr("PRICEFETCHER_PORT", 8080),
			Mode: envOr("PRICEFETCHER_MODE", "release"),
		},
		Discovery: DiscoveryConfig{
			APIKeys: envSliceOr("PRICEFETCHER_GEMINI_API_KEYS", nil),
			Model:   envOr("PRICEFETCHER_GEMINI_MODEL", "gemini-1.5-flash"),
			BaseURL: envOr("PRICEFETCHER_GEMINI_BASE_URL", "https://generativelanguage.googleapis.com"),
			Timeout: envDurationOr("PRICEFETCHER_DISCOVERY_TIMEOUT", 15*time.Second),
		},
		Search: SearchConfig{
			APIKey:  os.Getenv("PRICEFETCHER_SERP_API_KEY"),
			BaseURL: envOr("PRICEFETCHER_SERP_BASE_URL", "https://serpapi.com"),
			Timeout: envDurationOr("PRICEFETCHER_SEARCH_TIMEOUT", 10*time.Second),
		},
		Fetch: FetchConfig{
			Timeout:      envDurationOr("PRICEFETCHER_FETCH_TIMEOUT", 15*time.Second),
			MaxBodyBytes: int64(envIntOr("PRICEFETCHER_FETCH_MAX_BODY", 10*1024*1024)),
			Proxy:        os.Getenv("PRICEFETCHER_PROXY"),
		},
		Compare: CompareConfig{
			MaxConcurrentFetches: envIntOr("PRICEFETCHER_MAX_CONCURRENT_FETCHES", 25),
		},
		Auth: AuthConfig{
			Enabled: envBoolOr("PRICEFETCHER_AUTH_ENABLED", false),
			APIKeys: envSliceOr("PRICEFETCHER_API_KEYS", nil),
		},
		RateLimit: RateLimitConfig{
			RequestsPerSecond: envFloatOr("PRICEFETCHER_RATE_RPS", 2.0),
			Burst:             envIntOr("PRICEFETCHER_RATE_BURST", 5),
		},
		CORS: CORSConfig{
			AllowedOrigins: envSliceOr("PRICEFETCHER_CORS_ORIGINS", nil),
		},
		Log: LogConfig{
			Level:  envOr("PRICEFETCHER_LOG_LEVEL", "info"),
			Format: envOr("PRICEFETCHER_LOG_FORMAT", "json"),
		},
	}
}

// Validate checks startup-time requirements. Missing outbound credentials are
// a configuration error here, never a runtime error of the pipeline.
func (c *Config) Validate() error {
	if len(c.Discovery.APIKeys) == 0 {
		return fmt.Errorf("config: PRICEFETCHER_GEMINI_API_KEYS must list at least one key")
	}
	if c.Search.APIKey == "" {
		return fmt.Errorf("config: PRICEFETCHER_SERP_API_KEY is required")
	}
	return nil
}

// --- helper functions ---

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envIntOr(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}

func envBoolOr(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func envFloatOr(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}

func envDurationOr(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}

func envSliceOr(key string, fallback []string) []string {
	if v := os.Getenv(key); v != "" {
		parts := strings.Split(v, ",")
		result := make([]string, 0, len(parts))
		for _, p := range parts {
			if trimmed := strings.TrimSpace(p); trimmed != "" {
				result = append(result, trimmed)
			}
		}
		return result
	}
	return fallback
}
