// Package playlist assembles playlist records from searched tracks and
// materializes them on a user's account, falling back to demo playlists
// whenever the catalog cannot be used.
package playlist

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"time"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/ALOK-SINGH-CHAUHAN/VibeTunes/internal/mood"
	"github.com/ALOK-SINGH-CHAUHAN/VibeTunes/internal/spotify"
)

// MaxNameRunes is the prompt length kept in generated names.
const MaxNameRunes = 50

const homeURL = "https://open.spotify.com/"

// Playlist is an assembled playlist. Values are not modified after they are
// returned; materializing produces a new Playlist.
type Playlist struct {
	ID             string          `json:"id"`
	Name           string          `json:"name"`
	Description    string          `json:"description"`
	Tracks         []spotify.Track `json:"tracks"`
	OriginPrompt   string          `json:"originPrompt"`
	CreatedAt      time.Time       `json:"createdAt"`
	IsRealPlaylist bool            `json:"isRealPlaylist"`
	ExternalURL    string          `json:"externalUrl"`
}

// TrackIDs returns the ids of the playlist's tracks in order.
func (p Playlist) TrackIDs() []string {
	ids := make([]string, len(p.Tracks))
	for i, t := range p.Tracks {
		ids[i] = t.ID
	}
	return ids
}

// Draft returns the inputs needed to materialize this playlist.
func (p Playlist) Draft() Draft {
	return Draft{
		Name:         p.Name,
		Description:  p.Description,
		TrackIDs:     p.TrackIDs(),
		OriginPrompt: p.OriginPrompt,
	}
}

// TrackLookup resolves track ids with app-level credentials.
type TrackLookup interface {
	LookupByIDs(ctx context.Context, ids []string) ([]spotify.Track, error)
}

// UserCatalog is the user-scoped part of the catalog API.
type UserCatalog interface {
	CreatePlaylist(ctx context.Context, name, description string, public bool) (*spotify.PlaylistRef, error)
	AddTracksToPlaylist(ctx context.Context, playlistID string, trackIDs []string) error
}

// UserCatalogFactory builds a UserCatalog authorized by a user access token.
type UserCatalogFactory func(accessToken string) UserCatalog

// Assembler builds Playlist values.
type Assembler struct {
	now    func() time.Time
	lookup TrackLookup
	users  UserCatalogFactory
	log    *zap.Logger
}

// Option configures an Assembler.
type Option func(*Assembler)

// WithClock sets the time source used for ids and timestamps.
func WithClock(now func() time.Time) Option {
	return func(a *Assembler) {
		if now != nil {
			a.now = now
		}
	}
}

// WithLookup sets the app-level track lookup used by Materialize.
func WithLookup(l TrackLookup) Option {
	return func(a *Assembler) {
		a.lookup = l
	}
}

// WithUserCatalog sets the factory for user-scoped catalog clients.
func WithUserCatalog(f UserCatalogFactory) Option {
	return func(a *Assembler) {
		a.users = f
	}
}

// WithLogger sets the logger.
func WithLogger(log *zap.Logger) Option {
	return func(a *Assembler) {
		if log != nil {
			a.log = log
		}
	}
}

// NewAssembler creates an Assembler.
func NewAssembler(opts ...Option) *Assembler {
	a := &Assembler{
		now: time.Now,
		log: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Assemble builds a playlist from searched tracks. It makes no network calls.
func (a *Assembler) Assemble(tracks []spotify.Track, prompt string, interp mood.Interpretation) Playlist {
	now := a.now()

	p := Playlist{
		ID:           fmt.Sprintf("mood-%d", now.UnixMilli()),
		Tracks:       slices.Clone(tracks),
		OriginPrompt: prompt,
		CreatedAt:    now,
		ExternalURL:  homeURL,
	}
	if len(interp.Terms) > 0 {
		p.ExternalURL = spotify.SearchURL(interp.Terms[0])
	}

	switch {
	case interp.Analysis != nil:
		an := interp.Analysis
		p.Name = an.Mood + " Vibes"
		p.Description = fmt.Sprintf(
			"A personalized playlist for your \"%s\" mood, featuring %s music with %s tempo and %s energy.",
			prompt, genreList(an.Genres), an.Tempo, an.EnergyLevel())
	case interp.UsingFallback:
		p.Name = "Mood: " + Truncate(prompt)
		p.Description = fmt.Sprintf("Generated based on: \"%s\" (Using keyword extraction - AI unavailable)", prompt)
	default:
		p.Name = "Mood: " + Truncate(prompt)
		p.Description = fmt.Sprintf("AI-generated playlist based on: \"%s\"", prompt)
	}

	return p
}

// Truncate shortens s to MaxNameRunes runes, appending "..." when cut.
func Truncate(s string) string {
	if utf8.RuneCountInString(s) <= MaxNameRunes {
		return s
	}
	return string([]rune(s)[:MaxNameRunes]) + "..."
}

func genreList(genres []string) string {
	if len(genres) == 0 {
		return "varied"
	}
	return strings.Join(genres, ", ")
}
