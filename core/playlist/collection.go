// Package playlist manages playlists and their ordered, deduplicated track
// membership. All membership mutations of one playlist are serialized by a
// row lock on the playlist taken at the start of each transaction.
package playlist

import (
	"context"
	"errors"
	"strings"
	"time"

	"SoundCircle/core/apperr"
	"SoundCircle/db"
	"SoundCircle/logger"
	"SoundCircle/model"
	"SoundCircle/repository"

	"github.com/google/uuid"
)

// TrackResolver maps an external catalog id to a local track, importing it
// on first sight.
type TrackResolver interface {
	ResolveID(ctx context.Context, externalID string) (*model.Track, error)
}

// EntryCache caches ordered listings. Entries are stored under a per-playlist
// version that Invalidate bumps, so a listing read before a mutation can
// never be served after it.
type EntryCache interface {
	Version(ctx context.Context, playlistID string) (int64, error)
	Get(ctx context.Context, playlistID string, version int64) ([]*model.PlaylistTrack, bool, error)
	Set(ctx context.Context, playlistID string, version int64, entries []*model.PlaylistTrack) error
	Invalidate(ctx context.Context, playlistID string) error
}

// Option 配置 Collection
type Option func(*Collection)

// WithCache enables the listing cache.
func WithCache(cache EntryCache) Option {
	return func(c *Collection) {
		c.cache = cache
	}
}

// WithResolver enables external track import.
func WithResolver(resolver TrackResolver) Option {
	return func(c *Collection) {
		c.resolver = resolver
	}
}

// Collection 歌单及其有序曲目集合
type Collection struct {
	playlists repository.PlaylistRepository
	resolver  TrackResolver
	cache     EntryCache
	txRetries int
}

// NewCollection 创建歌单集合服务
func NewCollection(playlists repository.PlaylistRepository, txRetries int, opts ...Option) *Collection {
	c := &Collection{
		playlists: playlists,
		txRetries: txRetries,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// ========== 歌单 ==========

// CreatePlaylist 创建歌单
func (c *Collection) CreatePlaylist(ctx context.Context, ownerID, name, description string, isPublic bool) (*model.Playlist, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, apperr.InvalidOperation("playlist name is required")
	}

	now := time.Now().UTC()
	p := &model.Playlist{
		ID:          uuid.NewString(),
		OwnerID:     ownerID,
		Name:        name,
		Description: strings.TrimSpace(description),
		IsPublic:    isPublic,
		IsActive:    true,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := c.playlists.Create(ctx, p); err != nil {
		return nil, apperr.Classify(err, "create playlist")
	}

	logger.Info("歌单已创建",
		logger.String("playlistId", p.ID),
		logger.String("ownerId", ownerID))
	return p, nil
}

// DeletePlaylist soft-deletes the playlist. Its memberships stay in the
// store but become unreachable.
func (c *Collection) DeletePlaylist(ctx context.Context, playlistID, ownerID string) error {
	err := c.mutate(ctx, playlistID, ownerID, func(tx repository.PlaylistTx, _ *model.Playlist) error {
		return tx.SoftDeletePlaylist(playlistID)
	})
	if err != nil {
		return err
	}
	logger.Info("歌单已删除", logger.String("playlistId", playlistID))
	return nil
}

// UpdatePlaylist changes the name, description or visibility of an owned
// playlist. Making a playlist private hides its listing from everyone but
// the owner from the next read on.
func (c *Collection) UpdatePlaylist(ctx context.Context, playlistID, ownerID string, upd model.PlaylistUpdate) (*model.Playlist, error) {
	var name string
	if upd.Name != nil {
		name = strings.TrimSpace(*upd.Name)
		if name == "" {
			return nil, apperr.InvalidOperation("playlist name is required")
		}
	}

	var updated *model.Playlist
	err := c.mutate(ctx, playlistID, ownerID, func(tx repository.PlaylistTx, p *model.Playlist) error {
		if upd.Name != nil {
			p.Name = name
		}
		if upd.Description != nil {
			p.Description = strings.TrimSpace(*upd.Description)
		}
		if upd.IsPublic != nil {
			p.IsPublic = *upd.IsPublic
		}
		p.UpdatedAt = time.Now().UTC()
		if err := tx.UpdatePlaylist(p); err != nil {
			return err
		}
		updated = p
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Info("歌单已更新",
		logger.String("playlistId", playlistID),
		logger.Bool("isPublic", updated.IsPublic))
	return updated, nil
}

// ListVisible 浏览歌单：公开歌单加上自己的歌单，最新的在前
func (c *Collection) ListVisible(ctx context.Context, viewerID string) ([]*model.Playlist, error) {
	playlists, err := c.playlists.ListVisible(ctx, viewerID)
	if err != nil {
		return nil, apperr.Classify(err, "list playlists")
	}
	return playlists, nil
}

// GetPlaylist returns the playlist if viewerID may see it. viewerID may be
// empty for anonymous viewers.
func (c *Collection) GetPlaylist(ctx context.Context, playlistID, viewerID string) (*model.Playlist, error) {
	return c.visible(ctx, playlistID, viewerID)
}

// ListByOwner 获取用户自己的歌单
func (c *Collection) ListByOwner(ctx context.Context, ownerID string) ([]*model.Playlist, error) {
	playlists, err := c.playlists.ListByOwner(ctx, ownerID)
	if err != nil {
		return nil, apperr.Classify(err, "list playlists")
	}
	return playlists, nil
}

// ========== 曲目成员 ==========

// AddTrack appends trackID to the playlist with order max+1, or 1 when the
// playlist is empty.
func (c *Collection) AddTrack(ctx context.Context, playlistID, trackID, ownerID string) (*model.PlaylistTrack, error) {
	var added *model.PlaylistTrack
	err := c.mutate(ctx, playlistID, ownerID, func(tx repository.PlaylistTx, _ *model.Playlist) error {
		track, err := tx.ActiveTrack(trackID)
		if err != nil {
			return err
		}
		if track == nil {
			return apperr.NotFound("track %s not found", trackID)
		}

		existing, err := tx.GetMembership(playlistID, trackID)
		if err != nil {
			return err
		}
		if existing != nil {
			return apperr.Conflict("track %s is already in the playlist", trackID)
		}

		max, ok, err := tx.MaxOrder(playlistID)
		if err != nil {
			return err
		}
		order := 1
		if ok {
			order = max + 1
		}

		entry := &model.PlaylistTrack{
			PlaylistID: playlistID,
			TrackID:    trackID,
			Order:      order,
		}
		if err := tx.InsertMembership(entry); err != nil {
			if errors.Is(err, repository.ErrDuplicate) {
				return apperr.Conflict("track %s is already in the playlist", trackID)
			}
			return err
		}
		entry.Track = track
		added = entry
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Debug("歌曲已加入歌单",
		logger.String("playlistId", playlistID),
		logger.String("trackId", trackID),
		logger.Int("order", added.Order))
	return added, nil
}

// RemoveTrack removes trackID if present. Remaining entries keep their
// order values.
func (c *Collection) RemoveTrack(ctx context.Context, playlistID, trackID, ownerID string) error {
	return c.mutate(ctx, playlistID, ownerID, func(tx repository.PlaylistTx, _ *model.Playlist) error {
		_, err := tx.DeleteMembership(playlistID, trackID)
		return err
	})
}

// Reorder assigns new order values to the named entries; others keep
// theirs. The request is rejected as a whole when it is empty, names a track
// twice, names a non-member, or would leave two entries with the same order.
func (c *Collection) Reorder(ctx context.Context, playlistID string, orders []model.TrackOrder, ownerID string) error {
	if len(orders) == 0 {
		return apperr.InvalidOperation("no track orders given")
	}
	requested := make(map[string]int, len(orders))
	for _, o := range orders {
		if o.TrackID == "" {
			return apperr.InvalidOperation("track id is required")
		}
		if _, dup := requested[o.TrackID]; dup {
			return apperr.InvalidOperation("track %s appears more than once", o.TrackID)
		}
		requested[o.TrackID] = o.Order
	}

	return c.mutate(ctx, playlistID, ownerID, func(tx repository.PlaylistTx, _ *model.Playlist) error {
		entries, err := tx.ListMemberships(playlistID)
		if err != nil {
			return err
		}
		current := make(map[string]int, len(entries))
		for _, e := range entries {
			current[e.TrackID] = e.Order
		}

		for _, o := range orders {
			if _, ok := current[o.TrackID]; !ok {
				return apperr.InvalidOperation("track %s is not in the playlist", o.TrackID)
			}
		}

		final := make(map[int]string, len(entries))
		for _, e := range entries {
			order := e.Order
			if o, ok := requested[e.TrackID]; ok {
				order = o
			}
			if other, taken := final[order]; taken {
				return apperr.InvalidOperation("tracks %s and %s would share order %d", other, e.TrackID, order)
			}
			final[order] = e.TrackID
		}

		for _, o := range orders {
			if current[o.TrackID] == o.Order {
				continue
			}
			if err := tx.UpdateOrder(playlistID, o.TrackID, o.Order); err != nil {
				return err
			}
		}
		return nil
	})
}

// ListOrdered returns the playlist's entries ascending by order, each with
// its track. Private playlists are visible to their owner only.
func (c *Collection) ListOrdered(ctx context.Context, playlistID, viewerID string) ([]*model.PlaylistTrack, error) {
	if _, err := c.visible(ctx, playlistID, viewerID); err != nil {
		return nil, err
	}

	var version int64
	cached := c.cache != nil
	if cached {
		v, err := c.cache.Version(ctx, playlistID)
		if err != nil {
			logger.Warn("读取歌单缓存版本失败", logger.String("playlistId", playlistID), logger.ErrorField(err))
			cached = false
		} else if entries, hit, err := c.cache.Get(ctx, playlistID, v); err != nil {
			logger.Warn("读取歌单缓存失败", logger.String("playlistId", playlistID), logger.ErrorField(err))
		} else if hit {
			return entries, nil
		}
		version = v
	}

	entries, err := c.playlists.ListEntries(ctx, playlistID)
	if err != nil {
		return nil, apperr.Classify(err, "list playlist tracks")
	}

	if cached {
		if err := c.cache.Set(ctx, playlistID, version, entries); err != nil {
			logger.Warn("写入歌单缓存失败", logger.String("playlistId", playlistID), logger.ErrorField(err))
		}
	}
	return entries, nil
}

// ImportExternalTrack resolves an external catalog track to its local record
// and adds it to the playlist.
func (c *Collection) ImportExternalTrack(ctx context.Context, playlistID, externalID, ownerID string) (*model.Track, *model.PlaylistTrack, error) {
	p, err := c.playlists.GetByID(ctx, playlistID)
	if err != nil {
		return nil, nil, apperr.Classify(err, "get playlist")
	}
	if p == nil {
		return nil, nil, apperr.NotFound("playlist %s not found", playlistID)
	}
	if p.OwnerID != ownerID {
		return nil, nil, apperr.Forbidden("not the owner of playlist %s", playlistID)
	}
	if c.resolver == nil {
		return nil, nil, apperr.Unavailable(nil, "external catalog is not configured")
	}

	track, err := c.resolver.ResolveID(ctx, externalID)
	if err != nil {
		return nil, nil, apperr.Classify(err, "resolve external track")
	}

	entry, err := c.AddTrack(ctx, playlistID, track.ID, ownerID)
	if err != nil {
		return nil, nil, err
	}
	return track, entry, nil
}

// mutate runs fn in a transaction holding the playlist row lock, after
// checking the playlist exists and belongs to ownerID. fn receives the
// locked row. The listing cache is invalidated once the transaction commits.
func (c *Collection) mutate(ctx context.Context, playlistID, ownerID string, fn func(tx repository.PlaylistTx, p *model.Playlist) error) error {
	err := db.WithRetry(ctx, c.txRetries, func() error {
		return c.playlists.Transaction(ctx, func(tx repository.PlaylistTx) error {
			p, err := tx.LockPlaylist(playlistID)
			if err != nil {
				return err
			}
			if p == nil {
				return apperr.NotFound("playlist %s not found", playlistID)
			}
			if p.OwnerID != ownerID {
				return apperr.Forbidden("not the owner of playlist %s", playlistID)
			}
			return fn(tx, p)
		})
	})
	if db.IsRetryable(err) {
		logger.Warn("歌单写冲突，重试已用尽", logger.String("playlistId", playlistID), logger.ErrorField(err))
		return apperr.Conflict("playlist %s is being changed concurrently, try again", playlistID)
	}
	if err != nil {
		return apperr.Classify(err, "update playlist")
	}

	if c.cache != nil {
		if err := c.cache.Invalidate(ctx, playlistID); err != nil {
			logger.Warn("歌单缓存失效失败", logger.String("playlistId", playlistID), logger.ErrorField(err))
		}
	}
	return nil
}

func (c *Collection) visible(ctx context.Context, playlistID, viewerID string) (*model.Playlist, error) {
	p, err := c.playlists.GetByID(ctx, playlistID)
	if err != nil {
		return nil, apperr.Classify(err, "get playlist")
	}
	if p == nil {
		return nil, apperr.NotFound("playlist %s not found", playlistID)
	}
	if !p.IsPublic && p.OwnerID != viewerID {
		return nil, apperr.Forbidden("playlist %s is private", playlistID)
	}
	return p, nil
}
