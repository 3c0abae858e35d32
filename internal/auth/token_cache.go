// Package auth provides Spotify credentials: an app-level client-credentials
// token cache and the user-facing OAuth authorization code flow.
package auth

import (
	"context"
	"net/http"
	"sync/atomic"
	"time"

	spotifyauth "github.com/zmb3/spotify/v2/auth"
	"go.uber.org/zap"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"
	"golang.org/x/sync/singleflight"

	"github.com/ALOK-SINGH-CHAUHAN/VibeTunes/internal/apperr"
)

const (
	// SafetyMargin is subtracted from the upstream token lifetime so a
	// cached token is never used right up to its real expiry.
	SafetyMargin = 5 * time.Minute

	defaultLifetime     = time.Hour
	defaultFetchTimeout = 10 * time.Second
)

// Credential is an app-level bearer token with its local expiry.
type Credential struct {
	Token     string
	ExpiresAt time.Time
}

// TokenFetcher performs a client-credentials exchange.
// *clientcredentials.Config satisfies it.
type TokenFetcher interface {
	Token(ctx context.Context) (*oauth2.Token, error)
}

// TokenCache holds a single process-wide app token and refreshes it on demand.
// It is safe for concurrent use.
type TokenCache struct {
	fetcher TokenFetcher
	now     func() time.Time
	margin  time.Duration
	client  *http.Client
	log     *zap.Logger

	current atomic.Pointer[Credential]
	group   singleflight.Group
	fetches atomic.Int64
}

// CacheOption configures a TokenCache.
type CacheOption func(*TokenCache)

// WithClock overrides the time source used for expiry checks.
func WithClock(now func() time.Time) CacheOption {
	return func(c *TokenCache) {
		if now != nil {
			c.now = now
		}
	}
}

// WithFetcher overrides the token exchange.
func WithFetcher(f TokenFetcher) CacheOption {
	return func(c *TokenCache) {
		c.fetcher = f
	}
}

// WithHTTPClient sets the client used for the token exchange.
func WithHTTPClient(hc *http.Client) CacheOption {
	return func(c *TokenCache) {
		if hc != nil {
			c.client = hc
		}
	}
}

// WithCacheLogger sets the logger.
func WithCacheLogger(log *zap.Logger) CacheOption {
	return func(c *TokenCache) {
		if log != nil {
			c.log = log
		}
	}
}

// NewTokenCache creates a cache for the given client credentials.
// Empty credentials are accepted; Token then reports a config error.
func NewTokenCache(clientID, clientSecret string, opts ...CacheOption) *TokenCache {
	c := &TokenCache{
		now:    time.Now,
		margin: SafetyMargin,
		client: &http.Client{Timeout: defaultFetchTimeout},
		log:    zap.NewNop(),
	}
	if clientID != "" && clientSecret != "" {
		c.fetcher = &clientcredentials.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			TokenURL:     spotifyauth.TokenURL,
		}
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Configured reports whether client credentials are available.
func (c *TokenCache) Configured() bool {
	return c.fetcher != nil
}

// Fetches returns how many token exchanges have been performed.
func (c *TokenCache) Fetches() int64 {
	return c.fetches.Load()
}

// Token returns a valid app-level access token, refreshing it if the cached
// one has expired.
func (c *TokenCache) Token(ctx context.Context) (string, error) {
	cred, err := c.Credential(ctx)
	if err != nil {
		return "", err
	}
	return cred.Token, nil
}

// Credential returns the current credential, refreshing it if needed.
func (c *TokenCache) Credential(ctx context.Context) (Credential, error) {
	if c.fetcher == nil {
		return Credential{}, apperr.Config("auth.token", "Spotify credentials not configured")
	}

	if cred := c.current.Load(); cred != nil && c.now().Before(cred.ExpiresAt) {
		return *cred, nil
	}

	ch := c.group.DoChan("token", func() (any, error) {
		// Another caller may have refreshed while we waited.
		if cred := c.current.Load(); cred != nil && c.now().Before(cred.ExpiresAt) {
			return cred, nil
		}
		// The fetch is shared by every waiting caller and is bounded by
		// the HTTP client timeout, not by the first caller's context.
		return c.refresh(context.WithoutCancel(ctx))
	})

	select {
	case <-ctx.Done():
		return Credential{}, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return Credential{}, res.Err
		}
		return *res.Val.(*Credential), nil
	}
}

func (c *TokenCache) refresh(ctx context.Context) (*Credential, error) {
	c.fetches.Add(1)

	ctx = context.WithValue(ctx, oauth2.HTTPClient, c.client)
	tok, err := c.fetcher.Token(ctx)
	if err != nil {
		c.log.Warn("client credentials exchange failed", zap.Error(err))
		return nil, apperr.UpstreamAuth("auth.token", err)
	}
	if tok.AccessToken == "" {
		return nil, apperr.UpstreamAuth("auth.token", errEmptyToken)
	}

	now := c.now()
	lifetime := declaredLifetime(tok, now)
	ttl := lifetime - c.margin
	if ttl <= 0 {
		ttl = lifetime / 2
	}

	cred := &Credential{Token: tok.AccessToken, ExpiresAt: now.Add(ttl)}
	c.current.Store(cred)

	c.log.Debug("refreshed app token", zap.Time("expires_at", cred.ExpiresAt))
	return cred, nil
}

// declaredLifetime prefers the wire expires_in value and falls back to the
// parsed expiry, then to an hour.
func declaredLifetime(tok *oauth2.Token, now time.Time) time.Duration {
	if tok.ExpiresIn > 0 {
		return time.Duration(tok.ExpiresIn) * time.Second
	}
	if !tok.Expiry.IsZero() {
		if d := tok.Expiry.Sub(now); d > 0 {
			return d
		}
	}
	return defaultLifetime
}

// TokenSource adapts the cache to oauth2. Each Token call goes back to the
// cache, so an oauth2.Transport built on it rechecks expiry per request.
func (c *TokenCache) TokenSource(ctx context.Context) oauth2.TokenSource {
	return cacheSource{ctx: ctx, cache: c}
}

type cacheSource struct {
	ctx   context.Context
	cache *TokenCache
}

func (s cacheSource) Token() (*oauth2.Token, error) {
	cred, err := s.cache.Credential(s.ctx)
	if err != nil {
		return nil, err
	}
	return &oauth2.Token{
		AccessToken: cred.Token,
		TokenType:   "Bearer",
		Expiry:      cred.ExpiresAt,
	}, nil
}
