package spotify

import (
	"context"
	"errors"
	"fmt"

	"github.com/zmb3/spotify/v2"
	"go.uber.org/zap"
)

// MaxIDsPerLookup is the largest id batch the tracks endpoint accepts.
const MaxIDsPerLookup = 50

// ErrTooManyIDs is returned when a lookup batch exceeds MaxIDsPerLookup.
var ErrTooManyIDs = errors.New("too many track ids in one lookup")

// SearchTracks runs a single track search. market may be empty.
func (c *Client) SearchTracks(ctx context.Context, query string, limit int, market string) ([]Track, error) {
	if err := c.wait(ctx); err != nil {
		return nil, err
	}

	opts := []spotify.RequestOption{spotify.Limit(limit)}
	if market != "" {
		opts = append(opts, spotify.Market(market))
	}

	res, err := c.api.Search(ctx, query, spotify.SearchTypeTrack, opts...)
	if err != nil {
		return nil, classify("spotify.search", fmt.Errorf("searching %q: %w", query, err))
	}
	if res == nil || res.Tracks == nil {
		return []Track{}, nil
	}

	tracks := make([]Track, 0, len(res.Tracks.Tracks))
	for _, ft := range res.Tracks.Tracks {
		tracks = append(tracks, convertTrack(ft))
	}

	c.log.Debug("search complete",
		zap.String("query", query),
		zap.Int("results", len(tracks)))
	return tracks, nil
}

// GetTracks fetches full metadata for up to MaxIDsPerLookup ids in one
// request. Unknown ids are omitted from the result.
func (c *Client) GetTracks(ctx context.Context, ids []string) ([]Track, error) {
	if len(ids) == 0 {
		return []Track{}, nil
	}
	if len(ids) > MaxIDsPerLookup {
		return nil, fmt.Errorf("%w: %d > %d", ErrTooManyIDs, len(ids), MaxIDsPerLookup)
	}
	if err := c.wait(ctx); err != nil {
		return nil, err
	}

	spotifyIDs := make([]spotify.ID, len(ids))
	for i, id := range ids {
		spotifyIDs[i] = spotify.ID(id)
	}

	full, err := c.api.GetTracks(ctx, spotifyIDs)
	if err != nil {
		return nil, classify("spotify.tracks", fmt.Errorf("getting %d tracks: %w", len(ids), err))
	}

	tracks := make([]Track, 0, len(full))
	for _, ft := range full {
		if ft == nil {
			continue
		}
		tracks = append(tracks, convertTrack(*ft))
	}
	return tracks, nil
}
