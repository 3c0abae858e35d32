package auth

import (
	"context"
	"errors"
	"net/http"
	"time"

	spotifyauth "github.com/zmb3/spotify/v2/auth"
	"golang.org/x/oauth2"

	"github.com/ALOK-SINGH-CHAUHAN/VibeTunes/internal/apperr"
)

var (
	// ErrMissingCode is returned when an exchange is attempted without a code.
	ErrMissingCode = errors.New("missing authorization code")

	errEmptyToken = errors.New("token endpoint returned an empty access token")
)

// Scopes requested from users who connect their Spotify account.
var Scopes = []string{
	spotifyauth.ScopePlaylistModifyPublic,
	spotifyauth.ScopePlaylistModifyPrivate,
	spotifyauth.ScopePlaylistReadPrivate,
	spotifyauth.ScopePlaylistReadCollaborative,
	spotifyauth.ScopeUserReadPrivate,
	spotifyauth.ScopeUserReadEmail,
}

// UserToken is the result of a successful authorization code exchange.
type UserToken struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
	ExpiresIn    int64  `json:"expiresIn"`
}

// Authenticator handles the user-scoped OAuth2 authorization code flow.
type Authenticator struct {
	auth CodeExchanger
	now  func() time.Time
}

// AuthenticatorOption configures an Authenticator.
type AuthenticatorOption func(*Authenticator)

// CodeExchanger is the subset of *spotifyauth.Authenticator used here.
type CodeExchanger interface {
	AuthURL(state string, opts ...oauth2.AuthCodeOption) string
	Exchange(ctx context.Context, code string, opts ...oauth2.AuthCodeOption) (*oauth2.Token, error)
}

// WithExchanger replaces the Spotify OAuth client.
func WithExchanger(e CodeExchanger) AuthenticatorOption {
	return func(a *Authenticator) {
		a.auth = e
	}
}

// NewAuthenticator creates an Authenticator. With empty credentials every
// operation reports a config error instead of failing construction.
func NewAuthenticator(clientID, clientSecret, redirectURI string, opts ...AuthenticatorOption) *Authenticator {
	a := &Authenticator{now: time.Now}
	if clientID != "" && clientSecret != "" {
		a.auth = spotifyauth.New(
			spotifyauth.WithClientID(clientID),
			spotifyauth.WithClientSecret(clientSecret),
			spotifyauth.WithRedirectURL(redirectURI),
			spotifyauth.WithScopes(Scopes...),
		)
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Configured reports whether client credentials are available.
func (a *Authenticator) Configured() bool {
	return a.auth != nil
}

// AuthURL returns the URL users visit to grant access.
func (a *Authenticator) AuthURL(state string) (string, error) {
	if a.auth == nil {
		return "", apperr.Config("auth.url", "Spotify credentials not configured")
	}
	return a.auth.AuthURL(state), nil
}

// Exchange trades an authorization code for a user access token.
func (a *Authenticator) Exchange(ctx context.Context, code string) (*UserToken, error) {
	if a.auth == nil {
		return nil, apperr.Config("auth.exchange", "Spotify credentials not configured")
	}
	if code == "" {
		return nil, apperr.Validation("auth.exchange", ErrMissingCode.Error())
	}

	tok, err := a.auth.Exchange(ctx, code)
	if err != nil {
		return nil, apperr.UpstreamAuth("auth.exchange", err)
	}

	expiresIn := tok.ExpiresIn
	if expiresIn == 0 && !tok.Expiry.IsZero() {
		expiresIn = int64(tok.Expiry.Sub(a.now()).Round(time.Second).Seconds())
	}

	return &UserToken{
		AccessToken:  tok.AccessToken,
		RefreshToken: tok.RefreshToken,
		ExpiresIn:    expiresIn,
	}, nil
}

// Client returns an HTTP client that sends the caller-held user token.
// The token is not refreshed; an expired token surfaces as an upstream 401.
func Client(accessToken string, base *http.Client) *http.Client {
	src := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: accessToken, TokenType: "Bearer"})
	if base == nil {
		base = http.DefaultClient
	}
	return &http.Client{
		Timeout:   base.Timeout,
		Transport: &oauth2.Transport{Source: src, Base: base.Transport},
	}
}

// AppClient returns an HTTP client that authorizes every request with the
// cache's current app token.
func AppClient(ctx context.Context, cache *TokenCache, base *http.Client) *http.Client {
	if base == nil {
		base = http.DefaultClient
	}
	return &http.Client{
		Timeout:   base.Timeout,
		Transport: &oauth2.Transport{Source: cache.TokenSource(ctx), Base: base.Transport},
	}
}
