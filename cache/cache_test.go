package cache

import (
	"context"
	"testing"
	"time"

	"SoundCircle/model"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return mr, client
}

func TestPlaylistCache_VersionedEntries(t *testing.T) {
	mr, client := newRedis(t)
	c := NewPlaylistCache(client, time.Minute)
	ctx := context.Background()

	v, err := c.Version(ctx, "p1")
	require.NoError(t, err)
	assert.Zero(t, v)

	_, hit, err := c.Get(ctx, "p1", v)
	require.NoError(t, err)
	assert.False(t, hit)

	entries := []*model.PlaylistTrack{
		{PlaylistID: "p1", TrackID: "t1", Order: 1, Track: &model.Track{ID: "t1", Title: "One"}},
		{PlaylistID: "p1", TrackID: "t2", Order: 2},
	}
	require.NoError(t, c.Set(ctx, "p1", v, entries))

	got, hit, err := c.Get(ctx, "p1", v)
	require.NoError(t, err)
	require.True(t, hit)
	require.Len(t, got, 2)
	assert.Equal(t, "t1", got[0].TrackID)
	require.NotNil(t, got[0].Track)
	assert.Equal(t, "One", got[0].Track.Title)

	require.NoError(t, c.Invalidate(ctx, "p1"))
	v2, err := c.Version(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, int64(1), v2)

	_, hit, err = c.Get(ctx, "p1", v2)
	require.NoError(t, err)
	assert.False(t, hit, "new version starts empty")

	assert.True(t, mr.TTL(versionKey("p1")) >= time.Minute)
	mr.FastForward(2 * time.Minute)
	_, hit, err = c.Get(ctx, "p1", v)
	require.NoError(t, err)
	assert.False(t, hit, "entries expire")
}

func TestPlaylistCache_EmptyListing(t *testing.T) {
	_, client := newRedis(t)
	c := NewPlaylistCache(client, time.Minute)
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "p1", 0, nil))
	got, hit, err := c.Get(ctx, "p1", 0)
	require.NoError(t, err)
	assert.True(t, hit)
	assert.Empty(t, got)
}

func TestPlaylistCache_RedisDown(t *testing.T) {
	mr, client := newRedis(t)
	c := NewPlaylistCache(client, time.Minute)
	mr.Close()

	_, err := c.Version(context.Background(), "p1")
	assert.Error(t, err)
	assert.Error(t, c.Invalidate(context.Background(), "p1"))
}

func TestCatalogCache(t *testing.T) {
	mr, client := newRedis(t)
	c := NewCatalogCache(client, time.Hour)
	ctx := context.Background()

	_, hit, err := c.GetTrack(ctx, "ext-1")
	require.NoError(t, err)
	assert.False(t, hit)

	pop := 50
	require.NoError(t, c.SetTrack(ctx, &model.ExternalTrack{
		ID:         "ext-1",
		Title:      "Cached",
		Artists:    []model.ExternalArtist{{Name: "A"}},
		DurationMs: 1000,
		Popularity: &pop,
	}))

	got, hit, err := c.GetTrack(ctx, "ext-1")
	require.NoError(t, err)
	require.True(t, hit)
	assert.Equal(t, "Cached", got.Title)
	assert.Equal(t, 50, *got.Popularity)

	mr.FastForward(2 * time.Hour)
	_, hit, err = c.GetTrack(ctx, "ext-1")
	require.NoError(t, err)
	assert.False(t, hit)
}

func TestCacheTTLCanChangeAtRuntime(t *testing.T) {
	mr, client := newRedis(t)
	ctx := context.Background()

	pc := NewPlaylistCache(client, time.Minute)
	pc.SetTTL(5 * time.Second)
	require.NoError(t, pc.Set(ctx, "p1", 0, nil))
	assert.Equal(t, 5*time.Second, mr.TTL(entriesKey("p1", 0)))

	pc.SetTTL(48 * time.Hour)
	require.NoError(t, pc.Invalidate(ctx, "p1"))
	assert.Equal(t, 48*time.Hour, mr.TTL(versionKey("p1")))

	pc.SetTTL(0)
	assert.Equal(t, 10*time.Minute, pc.TTL())

	cc := NewCatalogCache(client, time.Hour)
	cc.SetTTL(30 * time.Second)
	require.NoError(t, cc.SetTrack(ctx, &model.ExternalTrack{ID: "ext-ttl", Title: "T"}))
	assert.Equal(t, 30*time.Second, mr.TTL(catalogKeyPrefix+"ext-ttl"))
}
