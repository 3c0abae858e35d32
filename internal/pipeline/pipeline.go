// Package pipeline runs the mood-to-playlist request flow and the
// create-playlist flow on top of the interpreter, catalog and assembler.
package pipeline

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/ALOK-SINGH-CHAUHAN/VibeTunes/internal/apperr"
	"github.com/ALOK-SINGH-CHAUHAN/VibeTunes/internal/mood"
	"github.com/ALOK-SINGH-CHAUHAN/VibeTunes/internal/playlist"
	"github.com/ALOK-SINGH-CHAUHAN/VibeTunes/internal/result"
	"github.com/ALOK-SINGH-CHAUHAN/VibeTunes/internal/spotify"
)

// Input bounds.
const (
	MinMoodRunes = 3
	MaxMoodRunes = 500
	MaxTrackIDs  = 10000
)

// User-facing messages for degraded results.
const (
	MsgDemo       = "This is a demo playlist. Configure Spotify and Gemini APIs for real tracks."
	MsgConnect    = "This is a demo playlist. Connect your Spotify account to create real playlists."
	MsgCreated    = "Playlist created successfully!"
	MsgAIFallback = "AI interpretation unavailable. Using keyword extraction instead."
	MsgGenerated  = "Playlist generated successfully!"
	MsgNoTracks   = "No tracks found for the given mood"
	MsgNoValidIDs = "No valid tracks found"
)

// State is a step of the generate flow.
type State string

const (
	StateReceived     State = "received"
	StateInterpreting State = "interpreting"
	StateFallback     State = "interpreting_fallback"
	StateSearching    State = "searching"
	StateAssembled    State = "assembled"
	StateDemo         State = "demo"
	StateFailed       State = "failed"
)

// Interpreter turns mood text into search terms.
type Interpreter interface {
	Interpret(ctx context.Context, text string) result.Result[mood.Interpretation]
}

// Catalog searches and resolves tracks with app credentials.
type Catalog interface {
	SearchByTerms(ctx context.Context, terms []string) ([]spotify.Track, error)
	LookupByIDs(ctx context.Context, ids []string) ([]spotify.Track, error)
}

// TokenSource yields the app-level catalog token.
type TokenSource interface {
	Token(ctx context.Context) (string, error)
}

// Generation is the outcome of a generate request.
type Generation struct {
	Playlist       playlist.Playlist   `json:"playlist"`
	Interpretation mood.Interpretation `json:"interpretation"`
	// Demo is set when the catalog could not be used at all.
	Demo   bool    `json:"demo"`
	States []State `json:"states"`
}

// CreateRequest asks for a playlist built from chosen track ids.
type CreateRequest struct {
	Name        string
	Description string
	TrackIDs    []string
	// AccessToken is a user token. Without it the result is a demo playlist.
	AccessToken string
}

// Service wires the pipeline stages together.
type Service struct {
	interp    Interpreter
	catalog   Catalog
	tokens    TokenSource
	assembler *playlist.Assembler
	log       *zap.Logger
}

// Option configures a Service.
type Option func(*Service)

// WithLogger sets the logger.
func WithLogger(log *zap.Logger) Option {
	return func(s *Service) {
		if log != nil {
			s.log = log
		}
	}
}

// NewService creates a Service. tokens may be nil when the catalog is not
// configured, in which case generate always returns demo playlists.
func NewService(interp Interpreter, catalog Catalog, tokens TokenSource, assembler *playlist.Assembler, opts ...Option) *Service {
	s := &Service{
		interp:    interp,
		catalog:   catalog,
		tokens:    tokens,
		assembler: assembler,
		log:       zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Generate turns a mood into a playlist. Missing or rejected catalog
// credentials and AI failures degrade the result; only invalid input and
// an empty search fail it.
func (s *Service) Generate(ctx context.Context, moodText string) result.Result[Generation] {
	gen := Generation{}
	step := func(st State) {
		gen.States = append(gen.States, st)
		s.log.Debug("pipeline state", zap.String("state", string(st)))
	}
	step(StateReceived)

	text, err := ValidateMood(moodText)
	if err != nil {
		step(StateFailed)
		return result.Err[Generation](err)
	}

	if err := s.checkToken(ctx); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			step(StateFailed)
			return result.Err[Generation](ctxErr)
		}
		s.log.Info("catalog unavailable, using demo playlist",
			zap.String("kind", apperr.KindOf(err).String()),
			zap.Error(err))
		step(StateDemo)
		gen.Demo = true
		gen.Playlist = s.assembler.Demo(text)
		return result.Degraded(gen, MsgDemo, err)
	}

	step(StateInterpreting)
	interpRes := s.interp.Interpret(ctx, text)
	gen.Interpretation = interpRes.Value()
	if interpRes.IsDegraded() {
		step(StateFallback)
	}

	step(StateSearching)
	tracks, err := s.catalog.SearchByTerms(ctx, gen.Interpretation.Terms)
	if err != nil {
		step(StateFailed)
		return result.Err[Generation](err)
	}

	gen.Playlist = s.assembler.Assemble(tracks, text, gen.Interpretation)
	step(StateAssembled)

	s.log.Info("generated playlist",
		zap.String("playlist_id", gen.Playlist.ID),
		zap.Int("tracks", len(tracks)),
		zap.Bool("using_fallback", gen.Interpretation.UsingFallback))

	if interpRes.IsDegraded() {
		return result.Degraded(gen, interpRes.Reason(), interpRes.Cause())
	}
	return result.Ok(gen)
}

func (s *Service) checkToken(ctx context.Context) error {
	if s.tokens == nil {
		return apperr.Config("pipeline.token", "Spotify credentials not configured")
	}
	_, err := s.tokens.Token(ctx)
	return err
}

// CreatePlaylist builds a playlist from caller-chosen track ids. With a user
// token it is created on the user's account; otherwise, or when creation
// fails, a demo playlist is returned.
func (s *Service) CreatePlaylist(ctx context.Context, req CreateRequest) result.Result[playlist.Playlist] {
	draft, err := ValidateCreate(req)
	if err != nil {
		return result.Err[playlist.Playlist](err)
	}

	if req.AccessToken != "" {
		return s.assembler.Materialize(ctx, draft, req.AccessToken)
	}

	tracks, err := s.catalog.LookupByIDs(ctx, draft.TrackIDs)
	switch {
	case err != nil:
		if ctxErr := ctx.Err(); ctxErr != nil {
			return result.Err[playlist.Playlist](ctxErr)
		}
		s.log.Warn("demo lookup failed, using stub tracks", zap.Error(err))
		p := s.assembler.DemoFromTracks(draft, playlist.StubTracks(draft.TrackIDs), playlist.SuffixDemoMode)
		return result.Degraded(p, MsgConnect, err)
	case len(tracks) == 0:
		return result.Err[playlist.Playlist](apperr.NoResults("pipeline.create_playlist", MsgNoValidIDs, nil))
	}

	p := s.assembler.DemoFromTracks(draft, tracks, playlist.SuffixDemoMode)
	return result.Degraded(p, MsgConnect, apperr.Config("pipeline.create_playlist", "no user access token"))
}

// ValidateMood trims the mood and checks its length in runes.
func ValidateMood(moodText string) (string, error) {
	text := strings.TrimSpace(moodText)
	n := utf8.RuneCountInString(text)
	switch {
	case n == 0:
		return "", apperr.Validation("pipeline.validate", "mood is required")
	case n < MinMoodRunes:
		return "", apperr.Validation("pipeline.validate",
			fmt.Sprintf("mood must be at least %d characters", MinMoodRunes))
	case n > MaxMoodRunes:
		return "", apperr.Validation("pipeline.validate",
			fmt.Sprintf("mood must be at most %d characters", MaxMoodRunes))
	}
	return text, nil
}

// ValidateCreate checks a create request and converts it to a draft.
func ValidateCreate(req CreateRequest) (playlist.Draft, error) {
	name := strings.TrimSpace(req.Name)
	description := strings.TrimSpace(req.Description)

	switch {
	case name == "" || description == "" || len(req.TrackIDs) == 0:
		return playlist.Draft{}, apperr.Validation("pipeline.validate",
			"Missing required fields: name, description, or trackIds")
	case len(req.TrackIDs) > MaxTrackIDs:
		return playlist.Draft{}, apperr.Validation("pipeline.validate",
			fmt.Sprintf("at most %d trackIds are accepted", MaxTrackIDs))
	}

	ids := make([]string, 0, len(req.TrackIDs))
	for _, id := range req.TrackIDs {
		id = strings.TrimSpace(id)
		if id == "" {
			return playlist.Draft{}, apperr.Validation("pipeline.validate", "trackIds must not contain empty ids")
		}
		ids = append(ids, id)
	}

	return playlist.Draft{Name: name, Description: description, TrackIDs: ids}, nil
}
