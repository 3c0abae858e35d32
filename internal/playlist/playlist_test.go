package playlist

import (
	"context"
	"errors"
	"reflect"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/ALOK-SINGH-CHAUHAN/VibeTunes/internal/apperr"
	"github.com/ALOK-SINGH-CHAUHAN/VibeTunes/internal/mood"
	"github.com/ALOK-SINGH-CHAUHAN/VibeTunes/internal/spotify"
)

var fixedNow = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

func fixedClock() time.Time { return fixedNow }

func sampleTracks() []spotify.Track {
	return []spotify.Track{
		{ID: "t1", Name: "One", Artist: "A", Album: "X"},
		{ID: "t2", Name: "Two", Artist: "B", Album: "Y"},
	}
}

func TestAssemble(t *testing.T) {
	long := strings.Repeat("é", 60)

	tests := []struct {
		name     string
		prompt   string
		interp   mood.Interpretation
		wantName string
		wantDesc string
		wantURL  string
	}{
		{
			name:   "structured analysis",
			prompt: "sunny morning",
			interp: mood.Interpretation{
				Terms: []string{"sunny", "pop"},
				Analysis: &mood.Analysis{
					Energy: 0.8, Valence: 0.9, Genres: []string{"pop", "indie"},
					Tempo: mood.TempoFast, Mood: "Morning Glow",
				},
			},
			wantName: "Morning Glow Vibes",
			wantDesc: `A personalized playlist for your "sunny morning" mood, featuring pop, indie music with fast tempo and high energy.`,
			wantURL:  "https://open.spotify.com/search/sunny",
		},
		{
			name:     "AI terms",
			prompt:   "late night drive",
			interp:   mood.Interpretation{Terms: []string{"night drive", "synthwave"}},
			wantName: "Mood: late night drive",
			wantDesc: `AI-generated playlist based on: "late night drive"`,
			wantURL:  "https://open.spotify.com/search/night%20drive",
		},
		{
			name:     "fallback",
			prompt:   "happy",
			interp:   mood.Interpretation{Terms: []string{"happy", "upbeat"}, UsingFallback: true},
			wantName: "Mood: happy",
			wantDesc: `Generated based on: "happy" (Using keyword extraction - AI unavailable)`,
			wantURL:  "https://open.spotify.com/search/happy",
		},
		{
			name:     "long prompt truncated by runes",
			prompt:   long,
			interp:   mood.Interpretation{Terms: []string{"x"}, UsingFallback: true},
			wantName: "Mood: " + strings.Repeat("é", 50) + "...",
			wantDesc: `Generated based on: "` + long + `" (Using keyword extraction - AI unavailable)`,
			wantURL:  "https://open.spotify.com/search/x",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := sampleTracks()
			p := NewAssembler(WithClock(fixedClock)).Assemble(in, tt.prompt, tt.interp)

			if p.ID != "mood-1709294400000" {
				t.Errorf("ID = %q", p.ID)
			}
			if p.Name != tt.wantName {
				t.Errorf("Name = %q, want %q", p.Name, tt.wantName)
			}
			if p.Description != tt.wantDesc {
				t.Errorf("Description = %q, want %q", p.Description, tt.wantDesc)
			}
			if p.ExternalURL != tt.wantURL {
				t.Errorf("ExternalURL = %q, want %q", p.ExternalURL, tt.wantURL)
			}
			if p.IsRealPlaylist {
				t.Error("IsRealPlaylist = true for assembled playlist")
			}
			if !p.CreatedAt.Equal(fixedNow) || p.OriginPrompt != tt.prompt {
				t.Errorf("CreatedAt/OriginPrompt = %v/%q", p.CreatedAt, p.OriginPrompt)
			}

			in[0].Name = "mutated"
			if p.Tracks[0].Name != "One" {
				t.Error("playlist shares track storage with caller")
			}
		})
	}
}

func TestPlaylistDraft(t *testing.T) {
	p := Playlist{
		Name:         "Calm Vibes",
		Description:  "quiet evening",
		OriginPrompt: "calm",
		Tracks: []spotify.Track{
			{ID: "a", Name: "A", Artist: "x", Album: "y"},
			{ID: "b", Name: "B", Artist: "x", Album: "y"},
		},
	}

	want := Draft{
		Name:         "Calm Vibes",
		Description:  "quiet evening",
		TrackIDs:     []string{"a", "b"},
		OriginPrompt: "calm",
	}
	if got := p.Draft(); !reflect.DeepEqual(got, want) {
		t.Errorf("Draft() = %+v, want %+v", got, want)
	}
}

func TestTruncate(t *testing.T) {
	exact := strings.Repeat("a", MaxNameRunes)
	if got := Truncate(exact); got != exact {
		t.Errorf("Truncate(50 runes) = %q", got)
	}
	if got := Truncate(exact + "b"); got != exact+"..." {
		t.Errorf("Truncate(51 runes) = %q", got)
	}
}

func TestDemo(t *testing.T) {
	tests := []struct {
		prompt  string
		wantIDs []string
	}{
		{"feeling HAPPY", []string{"demo-happy-1", "demo-happy-2"}},
		{"so much joy", []string{"demo-happy-1", "demo-happy-2"}},
		{"sad rainy day", []string{"demo-sad-1"}},
		{"gym session", []string{"demo-energy-1", "demo-energy-2"}},
		{"something else", []string{"demo-default-1"}},
	}

	a := NewAssembler(WithClock(fixedClock))
	for _, tt := range tests {
		p := a.Demo(tt.prompt)
		if !reflect.DeepEqual(p.TrackIDs(), tt.wantIDs) {
			t.Errorf("Demo(%q) tracks = %v, want %v", tt.prompt, p.TrackIDs(), tt.wantIDs)
		}
		if p.IsRealPlaylist {
			t.Errorf("Demo(%q) IsRealPlaylist = true", tt.prompt)
		}
		if p.ID != "demo-1709294400000" || p.Name != "Demo: "+tt.prompt {
			t.Errorf("Demo(%q) id/name = %q/%q", tt.prompt, p.ID, p.Name)
		}
	}

	// Callers must not be able to corrupt the shared table.
	p := a.Demo("happy")
	p.Tracks[0].Name = "changed"
	if a.Demo("happy").Tracks[0].Name != "Happy" {
		t.Error("demo table was mutated through a returned playlist")
	}
}

// mockUserCatalog implements UserCatalog for testing.
type mockUserCatalog struct {
	createErr error
	addErr    error
	added     []string
	callCount atomic.Int32
}

func (m *mockUserCatalog) CreatePlaylist(_ context.Context, name, description string, _ bool) (*spotify.PlaylistRef, error) {
	m.callCount.Add(1)
	if m.createErr != nil {
		return nil, m.createErr
	}
	return &spotify.PlaylistRef{
		ID:          "pl1",
		Name:        name,
		Description: description,
		URL:         "https://open.spotify.com/playlist/pl1",
	}, nil
}

func (m *mockUserCatalog) AddTracksToPlaylist(_ context.Context, _ string, ids []string) error {
	m.callCount.Add(1)
	m.added = append(m.added, ids...)
	return m.addErr
}

// mockLookup implements TrackLookup for testing.
type mockLookup struct {
	tracks    []spotify.Track
	err       error
	callCount atomic.Int32
}

func (m *mockLookup) LookupByIDs(_ context.Context, _ []string) ([]spotify.Track, error) {
	m.callCount.Add(1)
	return m.tracks, m.err
}

func TestMaterialize(t *testing.T) {
	draft := Draft{Name: "Focus", Description: "deep work", TrackIDs: []string{"t1", "t2"}}
	authErr := apperr.UpstreamAuth("spotify.current_user", errors.New("401"))

	tests := []struct {
		name      string
		token     string
		user      *mockUserCatalog
		lookup    *mockLookup
		wantReal  bool
		wantIDs   []string
		wantNames []string
	}{
		{
			name:      "success",
			token:     "user-token",
			user:      &mockUserCatalog{},
			lookup:    &mockLookup{tracks: sampleTracks()},
			wantReal:  true,
			wantIDs:   []string{"t1", "t2"},
			wantNames: []string{"One", "Two"},
		},
		{
			name:      "create rejected",
			token:     "user-token",
			user:      &mockUserCatalog{createErr: authErr},
			lookup:    &mockLookup{tracks: sampleTracks()},
			wantIDs:   []string{"t1", "t2"},
			wantNames: []string{"One", "Two"},
		},
		{
			name:      "add rejected and lookup failed",
			token:     "user-token",
			user:      &mockUserCatalog{addErr: errors.New("500")},
			lookup:    &mockLookup{err: errors.New("lookup down")},
			wantIDs:   []string{"t1", "t2"},
			wantNames: []string{"", ""},
		},
		{
			name:      "no token",
			token:     "",
			user:      &mockUserCatalog{},
			lookup:    &mockLookup{tracks: sampleTracks()},
			wantIDs:   []string{"t1", "t2"},
			wantNames: []string{"One", "Two"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := NewAssembler(
				WithClock(fixedClock),
				WithLookup(tt.lookup),
				WithUserCatalog(func(string) UserCatalog { return tt.user }),
			)

			res := a.Materialize(context.Background(), draft, tt.token)
			p := res.Value()

			if res.IsErr() {
				t.Fatal("Materialize() returned an error result")
			}
			if p.IsRealPlaylist != tt.wantReal || res.IsOK() != tt.wantReal {
				t.Errorf("IsRealPlaylist = %v, IsOK = %v, want %v", p.IsRealPlaylist, res.IsOK(), tt.wantReal)
			}
			if !reflect.DeepEqual(p.TrackIDs(), tt.wantIDs) {
				t.Errorf("track ids = %v, want %v", p.TrackIDs(), tt.wantIDs)
			}
			var names []string
			for _, tr := range p.Tracks {
				names = append(names, tr.Name)
			}
			if !reflect.DeepEqual(names, tt.wantNames) {
				t.Errorf("track names = %v, want %v", names, tt.wantNames)
			}

			if tt.wantReal {
				if p.ID != "pl1" || p.ExternalURL != "https://open.spotify.com/playlist/pl1" {
					t.Errorf("real playlist id/url = %q/%q", p.ID, p.ExternalURL)
				}
				if !reflect.DeepEqual(tt.user.added, draft.TrackIDs) {
					t.Errorf("added = %v, want %v", tt.user.added, draft.TrackIDs)
				}
				return
			}

			if p.Name != "Demo: Focus" {
				t.Errorf("Name = %q", p.Name)
			}
			if p.Description != "deep work (Creation failed - showing demo)" {
				t.Errorf("Description = %q", p.Description)
			}
			if p.ExternalURL != "https://open.spotify.com/search/Focus" {
				t.Errorf("ExternalURL = %q", p.ExternalURL)
			}
			if res.Cause() == nil {
				t.Error("degraded result has no cause")
			}
		})
	}
}

func TestMaterialize_StubLinks(t *testing.T) {
	a := NewAssembler(WithClock(fixedClock))
	res := a.Materialize(context.Background(), Draft{Name: "x", TrackIDs: []string{"abc"}}, "")

	got := res.Value().Tracks
	if len(got) != 1 || got[0].ExternalURL != "https://open.spotify.com/track/abc" {
		t.Errorf("stub tracks = %+v", got)
	}
	if !errors.Is(res.Cause(), apperr.ErrConfig) {
		t.Errorf("Cause() = %v, want config error", res.Cause())
	}
}
