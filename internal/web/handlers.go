// Package web provides the HTTP API for VibeTunes.
package web

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/ALOK-SINGH-CHAUHAN/VibeTunes/internal/apperr"
	"github.com/ALOK-SINGH-CHAUHAN/VibeTunes/internal/auth"
	"github.com/ALOK-SINGH-CHAUHAN/VibeTunes/internal/mood"
	"github.com/ALOK-SINGH-CHAUHAN/VibeTunes/internal/pipeline"
	"github.com/ALOK-SINGH-CHAUHAN/VibeTunes/internal/playlist"
	"github.com/ALOK-SINGH-CHAUHAN/VibeTunes/internal/result"
)

const maxBodyBytes = 1 << 20

// Service is the pipeline behind the API.
type Service interface {
	Generate(ctx context.Context, mood string) result.Result[pipeline.Generation]
	CreatePlaylist(ctx context.Context, req pipeline.CreateRequest) result.Result[playlist.Playlist]
}

// OAuth handles the user authorization code flow.
type OAuth interface {
	AuthURL(state string) (string, error)
	Exchange(ctx context.Context, code string) (*auth.UserToken, error)
}

// TokenProbe obtains an app-level catalog token.
type TokenProbe interface {
	Token(ctx context.Context) (string, error)
}

// Diagnostics describes which upstreams are configured.
type Diagnostics struct {
	SpotifyConfigured bool
	GeminiConfigured  bool
	GeminiModel       string
	AIMode            string
	// Tokens may be nil when Spotify is not configured.
	Tokens TokenProbe
}

// Handlers contains HTTP handlers for the API.
type Handlers struct {
	svc   Service
	oauth OAuth
	diag  Diagnostics
	log   *zap.Logger
}

// NewHandlers creates a new Handlers instance.
func NewHandlers(svc Service, oauth OAuth, diag Diagnostics, log *zap.Logger) *Handlers {
	if log == nil {
		log = zap.NewNop()
	}
	return &Handlers{
		svc:   svc,
		oauth: oauth,
		diag:  diag,
		log:   log,
	}
}

type generateRequest struct {
	Mood string `json:"mood"`
}

type generateResponse struct {
	Playlist        playlist.Playlist `json:"playlist"`
	UsingFallbackAI bool              `json:"usingFallbackAI"`
	GeminiError     *string           `json:"geminiError"`
	Demo            bool              `json:"demo,omitempty"`
	Message         string            `json:"message,omitempty"`
	SearchTerms     []string          `json:"searchTerms,omitempty"`
	Analysis        *mood.Analysis    `json:"analysis,omitempty"`
}

type createRequest struct {
	Name        string   `json:"name"`
	Description string   `json:"description"`
	TrackIDs    []string `json:"trackIds"`
	AccessToken string   `json:"accessToken,omitempty"`
}

type createResponse struct {
	Playlist       playlist.Playlist `json:"playlist"`
	IsRealPlaylist bool              `json:"isRealPlaylist"`
	Message        string            `json:"message"`
}

type authURLResponse struct {
	AuthURL string `json:"authUrl"`
	Message string `json:"message"`
}

type tokenResponse struct {
	*auth.UserToken
	Message string `json:"message"`
}

type diagnosticsResponse struct {
	Spotify spotifyStatus `json:"spotify"`
	Gemini  geminiStatus  `json:"gemini"`
}

type spotifyStatus struct {
	Configured bool   `json:"configured"`
	TokenOK    bool   `json:"tokenOk"`
	Error      string `json:"error,omitempty"`
}

type geminiStatus struct {
	Configured bool   `json:"configured"`
	Model      string `json:"model,omitempty"`
	Mode       string `json:"mode,omitempty"`
}

type errorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// GeneratePlaylist turns a mood into a playlist (POST /api/generate-playlist).
func (h *Handlers) GeneratePlaylist(w http.ResponseWriter, r *http.Request) {
	var req generateRequest
	if !h.decode(w, r, &req) {
		return
	}

	res := h.svc.Generate(r.Context(), req.Mood)
	if res.IsErr() {
		h.writeError(w, res.Cause(), errorText(res.Cause(), "Failed to generate playlist", pipeline.MsgNoTracks))
		return
	}

	gen := res.Value()
	resp := generateResponse{
		Playlist:        gen.Playlist,
		UsingFallbackAI: gen.Interpretation.UsingFallback,
		Demo:            gen.Demo,
		SearchTerms:     gen.Interpretation.Terms,
		Analysis:        gen.Interpretation.Analysis,
		Message:         pipeline.MsgGenerated,
	}
	if d := gen.Interpretation.Diagnostic; d != "" {
		resp.GeminiError = &d
	}
	switch {
	case gen.Demo:
		resp.Message = res.Reason()
	case gen.Interpretation.UsingFallback:
		resp.Message = pipeline.MsgAIFallback
	}

	writeJSON(w, http.StatusOK, resp)
}

// CreatePlaylist creates a real or demo playlist from track ids
// (POST /api/create-playlist).
func (h *Handlers) CreatePlaylist(w http.ResponseWriter, r *http.Request) {
	var req createRequest
	if !h.decode(w, r, &req) {
		return
	}

	res := h.svc.CreatePlaylist(r.Context(), pipeline.CreateRequest{
		Name:        req.Name,
		Description: req.Description,
		TrackIDs:    req.TrackIDs,
		AccessToken: req.AccessToken,
	})
	if res.IsErr() {
		h.writeError(w, res.Cause(), errorText(res.Cause(), "Failed to create playlist", pipeline.MsgNoValidIDs))
		return
	}

	p := res.Value()
	message := pipeline.MsgCreated
	if res.IsDegraded() {
		message = res.Reason()
	}
	writeJSON(w, http.StatusOK, createResponse{
		Playlist:       p,
		IsRealPlaylist: p.IsRealPlaylist,
		Message:        message,
	})
}

// SpotifyAuth returns the authorization URL, or exchanges a code when one is
// present (GET /api/spotify-auth).
func (h *Handlers) SpotifyAuth(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	if q.Get("code") != "" || q.Get("error") != "" {
		h.exchange(w, r)
		return
	}

	state := newState()
	url, err := h.oauth.AuthURL(state)
	if err != nil {
		h.writeError(w, err, "Spotify credentials not configured")
		return
	}

	setStateCookie(w, state)
	writeJSON(w, http.StatusOK, authURLResponse{
		AuthURL: url,
		Message: "Visit this URL to authorize the application",
	})
}

// Callback handles the OAuth callback from Spotify (GET /callback).
func (h *Handlers) Callback(w http.ResponseWriter, r *http.Request) {
	h.exchange(w, r)
}

func (h *Handlers) exchange(w http.ResponseWriter, r *http.Request) {
	if err := verifyState(r); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "Invalid OAuth state", Details: err.Error()})
		return
	}
	clearStateCookie(w)

	// Check for error from Spotify
	if errMsg := r.URL.Query().Get("error"); errMsg != "" {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "Spotify authorization failed", Details: errMsg})
		return
	}

	token, err := h.oauth.Exchange(r.Context(), r.URL.Query().Get("code"))
	if err != nil {
		h.writeError(w, err, "Failed to exchange authorization code")
		return
	}

	writeJSON(w, http.StatusOK, tokenResponse{
		UserToken: token,
		Message:   "Successfully authenticated with Spotify",
	})
}

// Diagnostics reports upstream configuration (GET /api/diagnostics).
func (h *Handlers) Diagnostics(w http.ResponseWriter, r *http.Request) {
	resp := diagnosticsResponse{
		Spotify: spotifyStatus{Configured: h.diag.SpotifyConfigured},
		Gemini: geminiStatus{
			Configured: h.diag.GeminiConfigured,
			Model:      h.diag.GeminiModel,
			Mode:       h.diag.AIMode,
		},
	}

	if h.diag.Tokens != nil && h.diag.SpotifyConfigured {
		if _, err := h.diag.Tokens.Token(r.Context()); err != nil {
			resp.Spotify.Error = apperr.MessageOf(err)
		} else {
			resp.Spotify.TokenOK = true
		}
	}

	writeJSON(w, http.StatusOK, resp)
}

// Health reports liveness (GET /healthz).
func (h *Handlers) Health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// decode reads a JSON body into v, writing a 400 on failure.
func (h *Handlers) decode(w http.ResponseWriter, r *http.Request, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "Invalid JSON body", Details: err.Error()})
		return false
	}
	return true
}

// writeError maps an error to a status code and writes it.
func (h *Handlers) writeError(w http.ResponseWriter, err error, text string) {
	status := statusFor(err)
	resp := errorResponse{Error: text}
	if status == http.StatusBadRequest {
		resp.Error = "Invalid request"
		resp.Details = apperr.MessageOf(err)
	}

	if status >= http.StatusInternalServerError {
		h.log.Error("request failed", zap.Int("status", status), zap.Error(err))
	} else {
		h.log.Info("request rejected", zap.Int("status", status), zap.Error(err))
	}
	writeJSON(w, status, resp)
}

// statusFor maps an error kind to an HTTP status.
func statusFor(err error) int {
	switch apperr.KindOf(err) {
	case apperr.KindValidation:
		return http.StatusBadRequest
	case apperr.KindNoResults:
		return http.StatusNotFound
	case apperr.KindConfig:
		return http.StatusServiceUnavailable
	case apperr.KindUpstreamAuth, apperr.KindUpstreamRequest, apperr.KindParse:
		return http.StatusBadGateway
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return http.StatusGatewayTimeout
	}
	return http.StatusInternalServerError
}

// errorText picks the message shown for a failed request.
func errorText(err error, generic, noResults string) string {
	if apperr.KindOf(err) == apperr.KindNoResults {
		return noResults
	}
	return generic
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
