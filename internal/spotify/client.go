// Package spotify provides a wrapper around the Spotify Web API.
package spotify

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/zmb3/spotify/v2"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/ALOK-SINGH-CHAUHAN/VibeTunes/internal/apperr"
)

// Client wraps the Spotify API client with convenience methods.
// Outbound calls share an optional rate limiter.
type Client struct {
	api     *spotify.Client
	limiter *rate.Limiter
	log     *zap.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithLimiter shares an existing limiter, e.g. between app and user clients.
func WithLimiter(l *rate.Limiter) Option {
	return func(c *Client) {
		c.limiter = l
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

// New creates a new Spotify client wrapper.
// The underlying client should already be authenticated.
func New(api *spotify.Client, opts ...Option) *Client {
	c := &Client{api: api, log: zap.NewNop()}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// NewWithHTTP builds the underlying API client from an authorizing HTTP
// client. baseURL may be empty to use the public API.
func NewWithHTTP(hc *http.Client, baseURL string, opts ...Option) *Client {
	var apiOpts []spotify.ClientOption
	if baseURL != "" {
		if !strings.HasSuffix(baseURL, "/") {
			baseURL += "/"
		}
		apiOpts = append(apiOpts, spotify.WithBaseURL(baseURL))
	}
	return New(spotify.New(hc, apiOpts...), opts...)
}

// UserID returns the current user's Spotify ID.
func (c *Client) UserID(ctx context.Context) (string, error) {
	if err := c.wait(ctx); err != nil {
		return "", err
	}
	user, err := c.api.CurrentUser(ctx)
	if err != nil {
		return "", classify("spotify.current_user", fmt.Errorf("getting current user: %w", err))
	}
	return user.ID, nil
}

// wait blocks until the limiter admits one more request.
func (c *Client) wait(ctx context.Context) error {
	if c.limiter == nil {
		return nil
	}
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("waiting for rate limiter: %w", err)
	}
	return nil
}

// classify tags an API error with its pipeline kind. Rejected credentials
// become auth errors; everything else is a request error.
func classify(op string, err error) error {
	var apiErr spotify.Error
	if errors.As(err, &apiErr) {
		switch apiErr.Status {
		case http.StatusUnauthorized, http.StatusForbidden:
			return apperr.UpstreamAuth(op, err)
		}
	}
	if apperr.KindOf(err) != apperr.KindUnknown {
		// Token cache failures surface through the transport already classified.
		return err
	}
	return apperr.UpstreamRequest(op, err)
}
