package spotify

import (
	"net/url"
	"strings"

	"github.com/zmb3/spotify/v2"
)

const (
	trackURLPrefix  = "https://open.spotify.com/track/"
	searchURLPrefix = "https://open.spotify.com/search/"
)

// Track is catalog track metadata as returned to API callers.
type Track struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Artist      string `json:"artist"` // Comma-separated artist names
	Album       string `json:"album"`
	ImageURL    string `json:"imageUrl"`
	PreviewURL  string `json:"previewUrl,omitempty"`
	ExternalURL string `json:"externalUrl"`
	DurationMs  int    `json:"durationMs,omitempty"`
}

// Valid reports whether the required fields are present.
func (t Track) Valid() bool {
	return t.ID != "" && t.Name != "" && t.Artist != "" && t.Album != ""
}

// PlaylistRef identifies a playlist created upstream.
type PlaylistRef struct {
	ID          string
	Name        string
	Description string
	URL         string
}

// StubTrack returns a placeholder carrying only the id and its public link.
func StubTrack(id string) Track {
	return Track{ID: id, ExternalURL: TrackURL(id)}
}

// TrackURL returns the public web link for a track id.
func TrackURL(id string) string {
	return trackURLPrefix + id
}

// SearchURL returns the public web search link for a query.
func SearchURL(query string) string {
	return searchURLPrefix + url.PathEscape(query)
}

// convertTrack converts a Spotify FullTrack to Track.
func convertTrack(ft spotify.FullTrack) Track {
	// Join artist names
	artists := make([]string, 0, len(ft.Artists))
	for _, a := range ft.Artists {
		if a.Name != "" {
			artists = append(artists, a.Name)
		}
	}

	var image string
	if len(ft.Album.Images) > 0 {
		image = ft.Album.Images[0].URL
	}

	return Track{
		ID:          ft.ID.String(),
		Name:        ft.Name,
		Artist:      strings.Join(artists, ", "),
		Album:       ft.Album.Name,
		ImageURL:    image,
		PreviewURL:  ft.PreviewURL,
		ExternalURL: ft.ExternalURLs["spotify"],
		DurationMs:  int(ft.Duration),
	}
}
