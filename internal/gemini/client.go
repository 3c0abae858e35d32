// Package gemini is a small client for the Gemini generateContent API,
// used to turn mood descriptions into music search parameters.
package gemini

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"

	"github.com/ALOK-SINGH-CHAUHAN/VibeTunes/internal/apperr"
)

const (
	DefaultBaseURL = "https://generativelanguage.googleapis.com"
	DefaultModel   = "gemini-1.5-flash"
	defaultTimeout = 20 * time.Second
	userAgent      = "vibetunes/1.0"
)

// Sentinel errors, wrapped in apperr kinds.
var (
	// ErrMissingAPIKey is returned when no API key is configured.
	ErrMissingAPIKey = errors.New("gemini API key not configured")

	// ErrQuotaExceeded is returned on HTTP 429.
	ErrQuotaExceeded = errors.New("gemini quota exceeded")

	// ErrModelNotFound is returned when the configured model does not exist.
	ErrModelNotFound = errors.New("gemini model not found")

	// ErrRegionUnsupported is returned when the API is unavailable in the caller's location.
	ErrRegionUnsupported = errors.New("gemini not available in this region")

	// ErrInvalidAPIKey is returned when the API key is rejected.
	ErrInvalidAPIKey = errors.New("invalid gemini API key")

	// ErrEmptyResponse is returned when the model produced no text.
	ErrEmptyResponse = errors.New("empty response from gemini")
)

const analysisPrompt = `You are a music mood analyst. Analyze the user's mood description and extract musical preferences.
Respond with JSON in this exact format:
{
  "energy": number (0-1, where 0 is very low energy, 1 is very high energy),
  "valence": number (0-1, where 0 is very negative/sad, 1 is very positive/happy),
  "danceability": number (0-1, where 0 is not danceable, 1 is very danceable),
  "genres": array of strings (up to 3 most relevant genres),
  "tempo": string (one of: "slow", "medium", "fast"),
  "mood": string (concise mood description),
  "keywords": array of strings (up to 5 relevant keywords)
}

Examples:
- "upbeat morning vibes": high energy, high valence, medium danceability
- "melancholy rainy day": low energy, low valence, low danceability
- "workout motivation": very high energy, high valence, high danceability`

const termsPrompt = `You are a music recommendation expert. Based on the user's mood description, extract relevant search terms for finding music on Spotify.

Respond with a JSON array of 3-5 search terms that would be most effective for finding songs matching this mood. The terms should be relevant to the mood or activity, common music genres, vibes or themes, optimized for Spotify search, and in English.

Example responses:
- For "I want to workout": ["workout", "gym", "exercise", "high energy", "motivation"]
- For "Feeling sad after breakup": ["sad", "heartbreak", "emotional", "breakup", "melancholy"]
- For "Need focus for studying": ["focus", "study", "concentration", "ambient", "instrumental"]

Respond only with the JSON array, no other text.`

// Client calls the Gemini API. Requests are never retried.
type Client struct {
	apiKey string
	model  string
	http   *resty.Client
	log    *zap.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithBaseURL overrides the API host.
func WithBaseURL(u string) Option {
	return func(c *Client) {
		if u != "" {
			c.http.SetBaseURL(u)
		}
	}
}

// WithModel sets the model name.
func WithModel(m string) Option {
	return func(c *Client) {
		if m != "" {
			c.model = m
		}
	}
}

// WithTimeout bounds each request.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.http.SetTimeout(d)
		}
	}
}

// WithLogger sets the logger.
func WithLogger(log *zap.Logger) Option {
	return func(c *Client) {
		if log != nil {
			c.log = log
		}
	}
}

// NewClient creates a Gemini client. An empty apiKey is allowed; every call
// then fails with a config error so callers can fall back.
func NewClient(apiKey string, opts ...Option) *Client {
	c := &Client{
		apiKey: apiKey,
		model:  DefaultModel,
		http: resty.New().
			SetBaseURL(DefaultBaseURL).
			SetTimeout(defaultTimeout).
			SetRetryCount(0).
			SetHeader("User-Agent", userAgent).
			SetHeader("Content-Type", "application/json"),
		log: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Configured reports whether an API key is set.
func (c *Client) Configured() bool {
	return c.apiKey != ""
}

// Model returns the configured model name.
func (c *Client) Model() string {
	return c.model
}

// AnalyzeMood asks the model for a structured rating of the mood.
func (c *Client) AnalyzeMood(ctx context.Context, mood string) (*MoodRating, error) {
	text, err := c.generate(ctx, analysisPrompt, fmt.Sprintf("Analyze this mood: %q", mood), moodRatingSchema)
	if err != nil {
		return nil, err
	}

	var rating MoodRating
	if err := json.Unmarshal([]byte(extractJSON(text, '{', '}')), &rating); err != nil {
		c.log.Debug("unparseable analysis", zap.String("raw", text))
		return nil, apperr.Parse("gemini.analyze", "analysis response is not valid JSON", err)
	}
	return &rating, nil
}

// SuggestTerms asks the model for a bare list of search terms.
func (c *Client) SuggestTerms(ctx context.Context, mood string) ([]string, error) {
	text, err := c.generate(ctx, termsPrompt, fmt.Sprintf("User's mood: %q", mood), searchTermsSchema)
	if err != nil {
		return nil, err
	}

	var terms []string
	if err := json.Unmarshal([]byte(extractJSON(text, '[', ']')), &terms); err != nil {
		c.log.Debug("unparseable terms", zap.String("raw", text))
		return nil, apperr.Parse("gemini.terms", "terms response is not a JSON array", err)
	}
	if len(terms) == 0 {
		return nil, apperr.Parse("gemini.terms", "terms response is empty", ErrEmptyResponse)
	}
	return terms, nil
}

// generate performs one generateContent call and returns the first
// candidate's text.
func (c *Client) generate(ctx context.Context, system, prompt string, schema map[string]any) (string, error) {
	const op = "gemini.generate"

	if c.apiKey == "" {
		return "", apperr.Config(op, ErrMissingAPIKey.Error())
	}

	body := generateRequest{
		SystemInstruction: &content{Parts: []part{{Text: system}}},
		Contents:          []content{{Role: "user", Parts: []part{{Text: prompt}}}},
		GenerationConfig: generationConfig{
			ResponseMimeType: "application/json",
			ResponseSchema:   schema,
		},
	}

	var out generateResponse
	var apiErr apiError
	resp, err := c.http.R().
		SetContext(ctx).
		SetHeader("x-goog-api-key", c.apiKey).
		SetBody(body).
		SetResult(&out).
		SetError(&apiErr).
		Post("/v1beta/models/" + c.model + ":generateContent")
	if err != nil {
		return "", apperr.UpstreamRequest(op, fmt.Errorf("calling gemini: %w", err))
	}

	if resp.IsError() {
		err := classify(resp.StatusCode(), apiErr)
		c.log.Warn("gemini request failed",
			zap.Int("status", resp.StatusCode()),
			zap.String("model", c.model),
			zap.Error(err))
		return "", apperr.UpstreamRequest(op, err)
	}

	if out.PromptFeedback != nil && out.PromptFeedback.BlockReason != "" {
		return "", apperr.Parse(op, "prompt blocked: "+out.PromptFeedback.BlockReason, ErrEmptyResponse)
	}

	var b strings.Builder
	if len(out.Candidates) > 0 {
		for _, p := range out.Candidates[0].Content.Parts {
			b.WriteString(p.Text)
		}
	}
	text := strings.TrimSpace(b.String())
	if text == "" {
		return "", apperr.Parse(op, "no text in response", ErrEmptyResponse)
	}
	return text, nil
}

// classify maps an error response to a sentinel.
func classify(status int, e apiError) error {
	msg := e.Error.Message
	if msg == "" {
		msg = http.StatusText(status)
	}

	switch {
	case status == http.StatusTooManyRequests || e.Error.Status == "RESOURCE_EXHAUSTED":
		return fmt.Errorf("%w: %s", ErrQuotaExceeded, msg)
	case status == http.StatusNotFound:
		return fmt.Errorf("%w: %s", ErrModelNotFound, msg)
	case strings.Contains(strings.ToLower(msg), "location is not supported"):
		return fmt.Errorf("%w: %s", ErrRegionUnsupported, msg)
	case status == http.StatusUnauthorized || status == http.StatusForbidden ||
		strings.Contains(msg, "API key not valid"):
		return fmt.Errorf("%w: %s", ErrInvalidAPIKey, msg)
	default:
		return fmt.Errorf("gemini returned %d: %s", status, msg)
	}
}

// extractJSON strips markdown code fences and returns the text between the
// first open and last close delimiter, if both exist.
func extractJSON(text string, open, closing byte) string {
	text = strings.TrimSpace(text)
	text = strings.TrimPrefix(text, "```json")
	text = strings.TrimPrefix(text, "```")
	text = strings.TrimSuffix(text, "```")

	start := strings.IndexByte(text, open)
	end := strings.LastIndexByte(text, closing)
	if start >= 0 && end > start {
		return text[start : end+1]
	}
	return strings.TrimSpace(text)
}
