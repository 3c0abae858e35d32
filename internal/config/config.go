// Package config loads VibeTunes configuration from the environment.
package config

import (
	"errors"
	"fmt"
	"net"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// AI interpretation modes.
const (
	AIModeAnalysis = "analysis"
	AIModeTerms    = "terms"
)

// ErrInvalidConfig is returned when a configured value is out of range.
var ErrInvalidConfig = errors.New("invalid configuration")

// Config holds application configuration.
// Missing Spotify or Gemini credentials are allowed: the pipeline degrades
// to demo data or fallback interpretation instead of failing.
type Config struct {
	Host string `envconfig:"HOST" default:"127.0.0.1"`
	Port int    `envconfig:"PORT" default:"5000"`

	SpotifyClientID     string        `envconfig:"SPOTIFY_CLIENT_ID"`
	SpotifyClientSecret string        `envconfig:"SPOTIFY_CLIENT_SECRET"`
	SpotifyRedirectURI  string        `envconfig:"SPOTIFY_REDIRECT_URI" default:"http://127.0.0.1:5000/callback"`
	SpotifyMarket       string        `envconfig:"SPOTIFY_MARKET" default:"US"`
	SearchLimit         int           `envconfig:"SEARCH_LIMIT" default:"10"`
	SpotifyRateLimit    float64       `envconfig:"SPOTIFY_RATE_LIMIT" default:"10"`
	RequestTimeout      time.Duration `envconfig:"REQUEST_TIMEOUT" default:"10s"`

	GeminiAPIKey  string        `envconfig:"GEMINI_API_KEY"`
	GeminiModel   string        `envconfig:"GEMINI_MODEL" default:"gemini-1.5-flash"`
	GeminiBaseURL string        `envconfig:"GEMINI_BASE_URL" default:"https://generativelanguage.googleapis.com"`
	AIMode        string        `envconfig:"AI_MODE" default:"analysis"`
	AITimeout     time.Duration `envconfig:"AI_TIMEOUT" default:"20s"`

	LogLevel    string `envconfig:"LOG_LEVEL" default:"info"`
	Development bool   `envconfig:"DEV" default:"false"`
}

// Load reads an optional .env file and then the process environment.
// Values already present in the environment win over the .env file.
func Load(envFiles ...string) (*Config, error) {
	if err := godotenv.Load(envFiles...); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("loading env file: %w", err)
	}

	cfg := new(Config)
	if err := envconfig.Process("", cfg); err != nil {
		return nil, fmt.Errorf("processing environment: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks value ranges. Credentials are not required.
func (c *Config) Validate() error {
	switch {
	case c.AIMode != AIModeAnalysis && c.AIMode != AIModeTerms:
		return fmt.Errorf("%w: AI_MODE must be %q or %q, got %q", ErrInvalidConfig, AIModeAnalysis, AIModeTerms, c.AIMode)
	case c.SearchLimit < 1 || c.SearchLimit > 50:
		return fmt.Errorf("%w: SEARCH_LIMIT must be between 1 and 50, got %d", ErrInvalidConfig, c.SearchLimit)
	case c.RequestTimeout <= 0 || c.AITimeout <= 0:
		return fmt.Errorf("%w: timeouts must be positive", ErrInvalidConfig)
	case c.SpotifyRateLimit <= 0:
		return fmt.Errorf("%w: SPOTIFY_RATE_LIMIT must be positive", ErrInvalidConfig)
	case c.Port < 1 || c.Port > 65535:
		return fmt.Errorf("%w: PORT out of range: %d", ErrInvalidConfig, c.Port)
	}
	return nil
}

// HasSpotify reports whether catalog client credentials are configured.
func (c *Config) HasSpotify() bool {
	return c.SpotifyClientID != "" && c.SpotifyClientSecret != ""
}

// HasGemini reports whether an AI API key is configured.
func (c *Config) HasGemini() bool {
	return c.GeminiAPIKey != ""
}

// Addr returns the listen address.
func (c *Config) Addr() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}
