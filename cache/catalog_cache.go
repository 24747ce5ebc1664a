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

const catalogKeyPrefix = "soundcircle:catalog:track:"

// CatalogCache 外部曲库歌曲信息缓存
type CatalogCache struct {
	client *redis.Client
	ttl    atomic.Int64
}

// NewCatalogCache 创建曲库缓存
func NewCatalogCache(client *redis.Client, ttl time.Duration) *CatalogCache {
	c := &CatalogCache{client: client}
	c.SetTTL(ttl)
	return c
}

// SetTTL 修改之后写入条目的缓存时长，非正数恢复默认一小时
func (c *CatalogCache) SetTTL(ttl time.Duration) {
	if ttl <= 0 {
		ttl = time.Hour
	}
	c.ttl.Store(int64(ttl))
}

// TTL 当前缓存时长
func (c *CatalogCache) TTL() time.Duration {
	return time.Duration(c.ttl.Load())
}

// GetTrack 读取缓存的外部歌曲信息
func (c *CatalogCache) GetTrack(ctx context.Context, externalID string) (*model.ExternalTrack, bool, error) {
	data, err := c.client.Get(ctx, catalogKeyPrefix+externalID).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("get catalog cache: %w", err)
	}

	var track model.ExternalTrack
	if err := json.Unmarshal(data, &track); err != nil {
		return nil, false, fmt.Errorf("decode catalog cache: %w", err)
	}
	return &track, true, nil
}

// SetTrack 缓存外部歌曲信息
func (c *CatalogCache) SetTrack(ctx context.Context, track *model.ExternalTrack) error {
	data, err := json.Marshal(track)
	if err != nil {
		return fmt.Errorf("encode catalog cache: %w", err)
	}
	if err := c.client.Set(ctx, catalogKeyPrefix+track.ID, data, c.TTL()).Err(); err != nil {
		return fmt.Errorf("set catalog cache: %w", err)
	}
	return nil
}
