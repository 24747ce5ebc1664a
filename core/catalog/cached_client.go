package catalog

import (
	"context"

	"SoundCircle/logger"
	"SoundCircle/model"
)

// TrackCache stores fetched catalog descriptions.
type TrackCache interface {
	GetTrack(ctx context.Context, externalID string) (*model.ExternalTrack, bool, error)
	SetTrack(ctx context.Context, track *model.ExternalTrack) error
}

// CachedClient is a read-through cache in front of a Client. Cache failures
// are logged and fall through to the wrapped client.
type CachedClient struct {
	next  Client
	cache TrackCache
}

// NewCachedClient 创建带缓存的曲库客户端
func NewCachedClient(next Client, cache TrackCache) *CachedClient {
	return &CachedClient{next: next, cache: cache}
}

func (c *CachedClient) GetTrack(ctx context.Context, externalID string) (*model.ExternalTrack, error) {
	track, hit, err := c.cache.GetTrack(ctx, externalID)
	if err != nil {
		logger.Warn("读取曲库缓存失败", logger.String("externalId", externalID), logger.ErrorField(err))
	} else if hit {
		return track, nil
	}

	track, err = c.next.GetTrack(ctx, externalID)
	if err != nil {
		return nil, err
	}
	if err := c.cache.SetTrack(ctx, track); err != nil {
		logger.Warn("写入曲库缓存失败", logger.String("externalId", externalID), logger.ErrorField(err))
	}
	return track, nil
}
