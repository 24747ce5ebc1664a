// Package catalog maps tracks of the external music catalog onto local
// track records. Each external id is imported at most once no matter how
// many resolvers race for it.
package catalog

import (
	"context"
	"errors"

	"SoundCircle/core/apperr"
	"SoundCircle/logger"
	"SoundCircle/model"
	"SoundCircle/repository"

	"golang.org/x/sync/singleflight"
)

// Client fetches track descriptions from the external catalog.
type Client interface {
	GetTrack(ctx context.Context, externalID string) (*model.ExternalTrack, error)
}

// Resolver 外部曲目身份解析器
type Resolver struct {
	tracks repository.TrackRepository
	client Client
	group  singleflight.Group
}

// NewResolver creates a resolver. client may be nil, in which case only
// Resolve and already imported ids work.
func NewResolver(tracks repository.TrackRepository, client Client) *Resolver {
	return &Resolver{
		tracks: tracks,
		client: client,
	}
}

// Resolve returns the local track for ext, creating it if this is the first
// time the external id is seen.
func (r *Resolver) Resolve(ctx context.Context, ext model.ExternalTrack) (*model.Track, error) {
	if ext.ID == "" {
		return nil, apperr.InvalidOperation("external track id is required")
	}

	existing, err := r.tracks.GetByExternalID(ctx, ext.ID)
	if err != nil {
		return nil, apperr.Classify(err, "look up external track")
	}
	if existing != nil {
		return existing, nil
	}

	track := NewTrack(ext)
	err = r.tracks.Create(ctx, track)
	if err == nil {
		logger.Info("外部歌曲已导入",
			logger.String("externalId", ext.ID),
			logger.String("trackId", track.ID))
		return track, nil
	}
	if !errors.Is(err, repository.ErrDuplicate) {
		return nil, apperr.Classify(err, "import external track")
	}

	// Another resolver inserted it first.
	existing, err = r.tracks.GetByExternalID(ctx, ext.ID)
	if err != nil {
		return nil, apperr.Classify(err, "look up external track")
	}
	if existing == nil {
		return nil, apperr.Unavailable(nil, "external track %s vanished after duplicate insert", ext.ID)
	}
	logger.Debug("外部歌曲已被并发导入", logger.String("externalId", ext.ID))
	return existing, nil
}

// ResolveID returns the local track for externalID, fetching it from the
// catalog only when it has not been imported yet. Concurrent calls for the
// same id share one lookup.
func (r *Resolver) ResolveID(ctx context.Context, externalID string) (*model.Track, error) {
	if externalID == "" {
		return nil, apperr.InvalidOperation("external track id is required")
	}

	ch := r.group.DoChan(externalID, func() (interface{}, error) {
		return r.resolveID(context.WithoutCancel(ctx), externalID)
	})
	select {
	case <-ctx.Done():
		return nil, apperr.Unavailable(ctx.Err(), "resolve external track %s", externalID)
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(*model.Track), nil
	}
}

func (r *Resolver) resolveID(ctx context.Context, externalID string) (*model.Track, error) {
	existing, err := r.tracks.GetByExternalID(ctx, externalID)
	if err != nil {
		return nil, apperr.Classify(err, "look up external track")
	}
	if existing != nil {
		return existing, nil
	}

	if r.client == nil {
		return nil, apperr.Unavailable(nil, "external catalog is not configured")
	}
	ext, err := r.client.GetTrack(ctx, externalID)
	if err != nil {
		return nil, apperr.Classify(err, "fetch external track")
	}
	return r.Resolve(ctx, *ext)
}
