package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"SoundCircle/model"

	"github.com/redis/go-redis/v9"
)

const playlistKeyPrefix = "soundcircle:playlist:"

// PlaylistCache 歌单曲目列表缓存
//
// Listings are stored under a per-playlist version number. Writers bump the
// version after commit instead of deleting, so a reader that loaded the
// listing before the write can only store it under the old version.
type PlaylistCache struct {
	client *redis.Client
	ttl    atomic.Int64
}

// NewPlaylistCache 创建歌单缓存
func NewPlaylistCache(client *redis.Client, ttl time.Duration) *PlaylistCache {
	c := &PlaylistCache{client: client}
	c.SetTTL(ttl)
	return c
}

// SetTTL changes the lifetime of listings stored from now on. A
// non-positive ttl restores the default of ten minutes.
func (c *PlaylistCache) SetTTL(ttl time.Duration) {
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	c.ttl.Store(int64(ttl))
}

// TTL 当前列表缓存时长
func (c *PlaylistCache) TTL() time.Duration {
	return time.Duration(c.ttl.Load())
}

// versionTTL outlives every listing stored under the version.
func (c *PlaylistCache) versionTTL() time.Duration {
	if ttl := c.TTL(); ttl > 24*time.Hour {
		return ttl
	}
	return 24 * time.Hour
}

func versionKey(playlistID string) string {
	return playlistKeyPrefix + playlistID + ":ver"
}

func entriesKey(playlistID string, version int64) string {
	return fmt.Sprintf("%s%s:entries:%d", playlistKeyPrefix, playlistID, version)
}

// Version 获取歌单当前缓存版本，不存在时为 0
func (c *PlaylistCache) Version(ctx context.Context, playlistID string) (int64, error) {
	v, err := c.client.Get(ctx, versionKey(playlistID)).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("get playlist cache version: %w", err)
	}
	return v, nil
}

// Get 读取指定版本的曲目列表
func (c *PlaylistCache) Get(ctx context.Context, playlistID string, version int64) ([]*model.PlaylistTrack, bool, error) {
	data, err := c.client.Get(ctx, entriesKey(playlistID, version)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("get playlist cache: %w", err)
	}

	var entries []*model.PlaylistTrack
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, false, fmt.Errorf("decode playlist cache: %w", err)
	}
	return entries, true, nil
}

// Set 写入指定版本的曲目列表
func (c *PlaylistCache) Set(ctx context.Context, playlistID string, version int64, entries []*model.PlaylistTrack) error {
	if entries == nil {
		entries = []*model.PlaylistTrack{}
	}
	data, err := json.Marshal(entries)
	if err != nil {
		return fmt.Errorf("encode playlist cache: %w", err)
	}
	if err := c.client.Set(ctx, entriesKey(playlistID, version), data, c.TTL()).Err(); err != nil {
		return fmt.Errorf("set playlist cache: %w", err)
	}
	return nil
}

// Invalidate 使歌单缓存失效（版本号加一）
func (c *PlaylistCache) Invalidate(ctx context.Context, playlistID string) error {
	key := versionKey(playlistID)
	pipe := c.client.TxPipeline()
	pipe.Incr(ctx, key)
	pipe.Expire(ctx, key, c.versionTTL())
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("invalidate playlist cache: %w", err)
	}
	return nil
}
