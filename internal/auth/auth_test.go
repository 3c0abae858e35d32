package auth

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"golang.org/x/oauth2"

	"github.com/ALOK-SINGH-CHAUHAN/VibeTunes/internal/apperr"
)

// fakeClock is a manually advanced time source.
type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.t = c.t.Add(d)
	c.mu.Unlock()
}

// mockFetcher implements TokenFetcher for testing.
type mockFetcher struct {
	callCount atomic.Int32
	expiresIn int64
	err       error
	delay     time.Duration
	// release, when set, blocks the fetch until closed or ctx is done.
	release chan struct{}
}

func (m *mockFetcher) Token(ctx context.Context) (*oauth2.Token, error) {
	n := m.callCount.Add(1)
	if m.delay > 0 {
		time.Sleep(m.delay)
	}
	if m.release != nil {
		select {
		case <-m.release:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if m.err != nil {
		return nil, m.err
	}
	return &oauth2.Token{
		AccessToken: "app-token-" + string(rune('0'+n)),
		TokenType:   "Bearer",
		ExpiresIn:   m.expiresIn,
	}, nil
}

func newTestCache(f *mockFetcher, clock *fakeClock) *TokenCache {
	return NewTokenCache("", "", WithFetcher(f), WithClock(clock.Now))
}

func TestTokenCache_ReusesTokenWithinLifetime(t *testing.T) {
	clock := &fakeClock{t: time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)}
	fetcher := &mockFetcher{expiresIn: 3600}
	cache := newTestCache(fetcher, clock)
	ctx := context.Background()

	first, err := cache.Token(ctx)
	if err != nil {
		t.Fatalf("Token() error = %v", err)
	}

	clock.Advance(30 * time.Minute)
	second, err := cache.Token(ctx)
	if err != nil {
		t.Fatalf("Token() error = %v", err)
	}

	if first != second {
		t.Errorf("token changed within lifetime: %q != %q", first, second)
	}
	if got := fetcher.callCount.Load(); got != 1 {
		t.Errorf("fetch count = %d, want 1", got)
	}
}

func TestTokenCache_RefreshesAfterSafetyMargin(t *testing.T) {
	clock := &fakeClock{t: time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)}
	fetcher := &mockFetcher{expiresIn: 3600}
	cache := newTestCache(fetcher, clock)
	ctx := context.Background()

	cred, err := cache.Credential(ctx)
	if err != nil {
		t.Fatalf("Credential() error = %v", err)
	}

	wantExpiry := clock.Now().Add(55 * time.Minute)
	if !cred.ExpiresAt.Equal(wantExpiry) {
		t.Errorf("ExpiresAt = %v, want %v", cred.ExpiresAt, wantExpiry)
	}

	// Just before the margin-adjusted expiry: still cached.
	clock.Advance(55*time.Minute - time.Second)
	if _, err := cache.Token(ctx); err != nil {
		t.Fatal(err)
	}
	if got := fetcher.callCount.Load(); got != 1 {
		t.Errorf("fetch count before expiry = %d, want 1", got)
	}

	// At expiry: exactly one refresh.
	clock.Advance(time.Second)
	tok, err := cache.Token(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if got := fetcher.callCount.Load(); got != 2 {
		t.Errorf("fetch count after expiry = %d, want 2", got)
	}
	if tok != "app-token-2" {
		t.Errorf("Token() = %q, want app-token-2", tok)
	}
}

func TestTokenCache_ShortLifetime(t *testing.T) {
	clock := &fakeClock{t: time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)}
	fetcher := &mockFetcher{expiresIn: 120}
	cache := newTestCache(fetcher, clock)

	cred, err := cache.Credential(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if want := clock.Now().Add(time.Minute); !cred.ExpiresAt.Equal(want) {
		t.Errorf("ExpiresAt = %v, want %v", cred.ExpiresAt, want)
	}
}

func TestTokenCache_Errors(t *testing.T) {
	tests := []struct {
		name    string
		cache   *TokenCache
		wantErr error
	}{
		{
			name:    "missing credentials",
			cache:   NewTokenCache("", ""),
			wantErr: apperr.ErrConfig,
		},
		{
			name:    "rejected exchange",
			cache:   NewTokenCache("id", "secret", WithFetcher(&mockFetcher{err: errors.New("invalid_client")})),
			wantErr: apperr.ErrUpstreamAuth,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.cache.Token(context.Background())
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Token() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestTokenCache_CoalescesConcurrentRefresh(t *testing.T) {
	clock := &fakeClock{t: time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)}
	fetcher := &mockFetcher{expiresIn: 3600, delay: 20 * time.Millisecond}
	cache := newTestCache(fetcher, clock)

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := cache.Token(context.Background()); err != nil {
				t.Errorf("Token() error = %v", err)
			}
		}()
	}
	wg.Wait()

	if got := fetcher.callCount.Load(); got != 1 {
		t.Errorf("fetch count = %d, want 1", got)
	}
}

func TestTokenCache_CancelledCallerDoesNotFailOthers(t *testing.T) {
	clock := &fakeClock{t: time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)}
	fetcher := &mockFetcher{expiresIn: 3600, release: make(chan struct{})}
	cache := newTestCache(fetcher, clock)

	ctxA, cancelA := context.WithCancel(context.Background())
	errA := make(chan error, 1)
	go func() {
		_, err := cache.Token(ctxA)
		errA <- err
	}()

	// Wait until A's refresh is in flight.
	deadline := time.Now().Add(time.Second)
	for fetcher.callCount.Load() == 0 {
		if time.Now().After(deadline) {
			t.Fatal("refresh never started")
		}
		time.Sleep(time.Millisecond)
	}

	type outcome struct {
		token string
		err   error
	}
	resB := make(chan outcome, 1)
	go func() {
		tok, err := cache.Token(context.Background())
		resB <- outcome{tok, err}
	}()
	time.Sleep(10 * time.Millisecond)

	cancelA()
	select {
	case err := <-errA:
		if !errors.Is(err, context.Canceled) {
			t.Errorf("cancelled caller error = %v, want context.Canceled", err)
		}
	case <-time.After(time.Second):
		t.Fatal("cancelled caller did not return")
	}

	close(fetcher.release)
	select {
	case got := <-resB:
		if got.err != nil {
			t.Fatalf("Token() error = %v, want success", got.err)
		}
		if got.token != "app-token-1" {
			t.Errorf("token = %q, want app-token-1", got.token)
		}
	case <-time.After(time.Second):
		t.Fatal("waiting caller did not return")
	}

	if got := fetcher.callCount.Load(); got != 1 {
		t.Errorf("fetch count = %d, want 1", got)
	}
	if got := cache.Fetches(); got != 1 {
		t.Errorf("Fetches() = %d, want 1", got)
	}
}

func TestAppClient_RechecksCachePerRequest(t *testing.T) {
	clock := &fakeClock{t: time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)}
	fetcher := &mockFetcher{expiresIn: 3600}
	cache := newTestCache(fetcher, clock)

	var seen []string
	var mu sync.Mutex
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		seen = append(seen, r.Header.Get("Authorization"))
		mu.Unlock()
		w.WriteHeader(http.StatusNoContent)
	}))
	defer server.Close()

	client := AppClient(context.Background(), cache, &http.Client{Timeout: time.Second})

	get := func() {
		resp, err := client.Get(server.URL)
		if err != nil {
			t.Fatalf("GET error = %v", err)
		}
		resp.Body.Close()
	}

	get()
	clock.Advance(56 * time.Minute)
	get()

	if len(seen) != 2 {
		t.Fatalf("requests = %d, want 2", len(seen))
	}
	if seen[0] != "Bearer app-token-1" || seen[1] != "Bearer app-token-2" {
		t.Errorf("Authorization headers = %v", seen)
	}
}

// mockExchanger implements CodeExchanger for testing.
type mockExchanger struct {
	token *oauth2.Token
	err   error
}

func (m *mockExchanger) AuthURL(state string, _ ...oauth2.AuthCodeOption) string {
	return "https://accounts.example.com/authorize?state=" + state
}

func (m *mockExchanger) Exchange(_ context.Context, _ string, _ ...oauth2.AuthCodeOption) (*oauth2.Token, error) {
	return m.token, m.err
}

func TestAuthenticator(t *testing.T) {
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name      string
		auth      *Authenticator
		code      string
		wantErr   error
		wantToken *UserToken
	}{
		{
			name:    "not configured",
			auth:    NewAuthenticator("", "", ""),
			code:    "abc",
			wantErr: apperr.ErrConfig,
		},
		{
			name:    "missing code",
			auth:    NewAuthenticator("", "", "", WithExchanger(&mockExchanger{})),
			code:    "",
			wantErr: apperr.ErrValidation,
		},
		{
			name:    "rejected code",
			auth:    NewAuthenticator("", "", "", WithExchanger(&mockExchanger{err: errors.New("invalid_grant")})),
			code:    "bad",
			wantErr: apperr.ErrUpstreamAuth,
		},
		{
			name: "success derives expiresIn from expiry",
			auth: func() *Authenticator {
				a := NewAuthenticator("", "", "", WithExchanger(&mockExchanger{token: &oauth2.Token{
					AccessToken:  "user-access",
					RefreshToken: "user-refresh",
					Expiry:       now.Add(time.Hour),
				}}))
				a.now = func() time.Time { return now }
				return a
			}(),
			code:      "good",
			wantToken: &UserToken{AccessToken: "user-access", RefreshToken: "user-refresh", ExpiresIn: 3600},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.auth.Exchange(context.Background(), tt.code)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("Exchange() error = %v, want %v", err, tt.wantErr)
			}
			if tt.wantToken != nil && *got != *tt.wantToken {
				t.Errorf("Exchange() = %+v, want %+v", got, tt.wantToken)
			}
		})
	}
}

func TestAuthenticator_AuthURL(t *testing.T) {
	if _, err := NewAuthenticator("", "", "").AuthURL("s"); !errors.Is(err, apperr.ErrConfig) {
		t.Errorf("AuthURL() error = %v, want config error", err)
	}

	a := NewAuthenticator("client", "secret", "http://127.0.0.1:5000/callback")
	url, err := a.AuthURL("state123")
	if err != nil {
		t.Fatalf("AuthURL() error = %v", err)
	}
	for _, want := range []string{"state=state123", "client_id=client", "playlist-modify-private"} {
		if !strings.Contains(url, want) {
			t.Errorf("AuthURL() = %q, missing %q", url, want)
		}
	}
}
