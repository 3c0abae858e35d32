package playlist

import (
	"fmt"
	"strings"

	"github.com/ALOK-SINGH-CHAUHAN/VibeTunes/internal/spotify"
)

// Description suffixes for demo playlists built from caller-chosen tracks.
const (
	SuffixDemoMode       = "(Demo mode - Connect Spotify to create real playlist)"
	SuffixCreationFailed = "(Creation failed - showing demo)"
)

// demoSet is a canned track list selected by mood keywords.
type demoSet struct {
	keywords []string
	tracks   []spotify.Track
}

// demoSets are checked in order; the first set with a matching keyword wins.
var demoSets = []demoSet{
	{
		keywords: []string{"happy", "joy", "upbeat"},
		tracks: []spotify.Track{
			{
				ID:          "demo-happy-1",
				Name:        "Happy",
				Artist:      "Pharrell Williams",
				Album:       "G I R L",
				ImageURL:    "https://via.placeholder.com/300x300/FFD700/000000?text=Happy",
				ExternalURL: "https://open.spotify.com/track/6bZBe1Ld7qL1e8Mq7sG6g3",
			},
			{
				ID:          "demo-happy-2",
				Name:        "Can't Stop the Feeling",
				Artist:      "Justin Timberlake",
				Album:       "Trolls: Original Motion Picture Soundtrack",
				ImageURL:    "https://via.placeholder.com/300x300/FF6B6B/FFFFFF?text=Feeling",
				ExternalURL: "https://open.spotify.com/track/1KS2lUqL1O9XcXV4y2y5x1",
			},
		},
	},
	{
		keywords: []string{"sad", "melancholy"},
		tracks: []spotify.Track{
			{
				ID:          "demo-sad-1",
				Name:        "Someone Like You",
				Artist:      "Adele",
				Album:       "21",
				ImageURL:    "https://via.placeholder.com/300x300/4A90E2/FFFFFF?text=Sad",
				ExternalURL: "https://open.spotify.com/track/0liO22Dlh19k1dW2kcMlyD",
			},
		},
	},
	{
		keywords: []string{"energy", "workout", "gym"},
		tracks: []spotify.Track{
			{
				ID:          "demo-energy-1",
				Name:        "Eye of the Tiger",
				Artist:      "Survivor",
				Album:       "Eye of the Tiger",
				ImageURL:    "https://via.placeholder.com/300x300/FF4444/FFFFFF?text=Tiger",
				ExternalURL: "https://open.spotify.com/track/4bHsxqR3GMrXTxEPLuK5ue",
			},
			{
				ID:          "demo-energy-2",
				Name:        "Stronger",
				Artist:      "Kanye West",
				Album:       "Graduation",
				ImageURL:    "https://via.placeholder.com/300x300/8B5CF6/FFFFFF?text=Stronger",
				ExternalURL: "https://open.spotify.com/track/0Pcu7NpaubYqtA6y9wVwOr",
			},
		},
	},
}

var defaultDemoTracks = []spotify.Track{
	{
		ID:          "demo-default-1",
		Name:        "Demo Track 1",
		Artist:      "Demo Artist",
		Album:       "Demo Album",
		ImageURL:    "https://via.placeholder.com/300x300/666666/FFFFFF?text=Demo",
		ExternalURL: homeURL,
	},
}

// demoTracks returns a copy of the canned tracks for a prompt.
func demoTracks(prompt string) []spotify.Track {
	lower := strings.ToLower(prompt)
	for _, set := range demoSets {
		for _, kw := range set.keywords {
			if strings.Contains(lower, kw) {
				return append([]spotify.Track(nil), set.tracks...)
			}
		}
	}
	return append([]spotify.Track(nil), defaultDemoTracks...)
}

// Demo builds a canned playlist for prompt, used when the catalog cannot be
// reached at all.
func (a *Assembler) Demo(prompt string) Playlist {
	now := a.now()
	return Playlist{
		ID:           fmt.Sprintf("demo-%d", now.UnixMilli()),
		Name:         "Demo: " + Truncate(prompt),
		Description:  fmt.Sprintf("Demo playlist based on: \"%s\" (Configure APIs for real tracks)", prompt),
		Tracks:       demoTracks(prompt),
		OriginPrompt: prompt,
		CreatedAt:    now,
		ExternalURL:  homeURL,
	}
}

// DemoFromTracks builds a demo playlist for a draft whose tracks were already
// resolved. suffix is appended to the draft's description.
func (a *Assembler) DemoFromTracks(d Draft, tracks []spotify.Track, suffix string) Playlist {
	now := a.now()
	return Playlist{
		ID:           fmt.Sprintf("demo-%d", now.UnixMilli()),
		Name:         "Demo: " + d.Name,
		Description:  strings.TrimSpace(d.Description + " " + suffix),
		Tracks:       tracks,
		OriginPrompt: d.OriginPrompt,
		CreatedAt:    now,
		ExternalURL:  spotify.SearchURL(d.Name),
	}
}

// StubTracks returns id-only placeholder tracks.
func StubTracks(ids []string) []spotify.Track {
	tracks := make([]spotify.Track, len(ids))
	for i, id := range ids {
		tracks[i] = spotify.StubTrack(id)
	}
	return tracks
}
