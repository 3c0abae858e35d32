package spotify

import (
	"context"
	"fmt"

	"github.com/zmb3/spotify/v2"
	"go.uber.org/zap"
)

// MaxTracksPerAdd is the largest batch the add-items endpoint accepts.
const MaxTracksPerAdd = 100

// CreatePlaylist creates a new playlist for the current user.
func (c *Client) CreatePlaylist(ctx context.Context, name, description string, public bool) (*PlaylistRef, error) {
	userID, err := c.UserID(ctx)
	if err != nil {
		return nil, err
	}
	if err := c.wait(ctx); err != nil {
		return nil, err
	}

	playlist, err := c.api.CreatePlaylistForUser(ctx, userID, name, description, public, false)
	if err != nil {
		return nil, classify("spotify.create_playlist", fmt.Errorf("creating playlist: %w", err))
	}

	ref := &PlaylistRef{
		ID:          playlist.ID.String(),
		Name:        playlist.Name,
		Description: playlist.Description,
		URL:         playlist.ExternalURLs["spotify"],
	}
	if ref.Name == "" {
		ref.Name = name
	}
	if ref.Description == "" {
		ref.Description = description
	}

	c.log.Info("created playlist",
		zap.String("playlist_id", ref.ID),
		zap.String("user_id", userID))
	return ref, nil
}

// AddTracksToPlaylist adds tracks to a playlist, handling batching for large sets.
// Spotify allows max 100 tracks per request.
func (c *Client) AddTracksToPlaylist(ctx context.Context, playlistID string, trackIDs []string) error {
	if len(trackIDs) == 0 {
		return nil
	}

	ids := make([]spotify.ID, len(trackIDs))
	for i, id := range trackIDs {
		ids[i] = spotify.ID(id)
	}

	for i := 0; i < len(ids); i += MaxTracksPerAdd {
		end := min(i+MaxTracksPerAdd, len(ids))
		if err := c.wait(ctx); err != nil {
			return err
		}

		_, err := c.api.AddTracksToPlaylist(ctx, spotify.ID(playlistID), ids[i:end]...)
		if err != nil {
			return classify("spotify.add_tracks",
				fmt.Errorf("adding tracks (batch %d-%d): %w", i+1, end, err))
		}
	}

	return nil
}
