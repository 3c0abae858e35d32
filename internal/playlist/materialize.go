package playlist

import (
	"context"

	"go.uber.org/zap"

	"github.com/ALOK-SINGH-CHAUHAN/VibeTunes/internal/apperr"
	"github.com/ALOK-SINGH-CHAUHAN/VibeTunes/internal/result"
	"github.com/ALOK-SINGH-CHAUHAN/VibeTunes/internal/spotify"
)

// Draft is a playlist the caller wants created on their account.
type Draft struct {
	Name         string
	Description  string
	TrackIDs     []string
	OriginPrompt string
}

// Materialize creates the draft as a private playlist on the account that
// owns accessToken. Any failure degrades to a demo playlist carrying the
// same tracks; the returned value is never empty.
func (a *Assembler) Materialize(ctx context.Context, d Draft, accessToken string) result.Result[Playlist] {
	if accessToken == "" || a.users == nil {
		return a.creationFailed(ctx, d, apperr.Config("playlist.materialize", "no user catalog access"))
	}
	user := a.users(accessToken)

	ref, err := user.CreatePlaylist(ctx, d.Name, d.Description, false)
	if err != nil {
		return a.creationFailed(ctx, d, err)
	}
	if err := user.AddTracksToPlaylist(ctx, ref.ID, d.TrackIDs); err != nil {
		return a.creationFailed(ctx, d, err)
	}

	p := Playlist{
		ID:             ref.ID,
		Name:           ref.Name,
		Description:    ref.Description,
		Tracks:         a.resolve(ctx, d.TrackIDs),
		OriginPrompt:   d.OriginPrompt,
		CreatedAt:      a.now(),
		IsRealPlaylist: true,
		ExternalURL:    ref.URL,
	}

	a.log.Info("materialized playlist",
		zap.String("playlist_id", p.ID),
		zap.Int("tracks", len(d.TrackIDs)))
	return result.Ok(p)
}

func (a *Assembler) creationFailed(ctx context.Context, d Draft, cause error) result.Result[Playlist] {
	a.log.Warn("playlist creation failed, showing demo",
		zap.String("kind", apperr.KindOf(cause).String()),
		zap.Error(cause))

	p := a.DemoFromTracks(d, a.resolve(ctx, d.TrackIDs), SuffixCreationFailed)
	return result.Degraded(p, "Failed to create real playlist. Showing demo version instead.", cause)
}

// resolve looks ids up with app credentials, keeping id-only tracks when the
// lookup is unavailable or finds nothing.
func (a *Assembler) resolve(ctx context.Context, ids []string) []spotify.Track {
	if a.lookup == nil {
		return StubTracks(ids)
	}

	tracks, err := a.lookup.LookupByIDs(ctx, ids)
	if err != nil {
		a.log.Warn("track lookup failed, using stubs", zap.Error(err))
		return StubTracks(ids)
	}
	if len(tracks) == 0 {
		return StubTracks(ids)
	}
	return tracks
}
