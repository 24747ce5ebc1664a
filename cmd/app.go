package cmd

import (
	"fmt"

	"SoundCircle/cache"
	"SoundCircle/config"
	"SoundCircle/core/catalog"
	"SoundCircle/core/friend"
	"SoundCircle/core/playlist"
	"SoundCircle/core/spotify"
	"SoundCircle/db"
	"SoundCircle/logger"
	"SoundCircle/repository"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// app 持有所有已连接的依赖
type app struct {
	cfg       *config.Config
	gdb       *gorm.DB
	rdb       *redis.Client
	friends   *friend.Manager
	playlists *playlist.Collection
	resolver  *catalog.Resolver
	catalog   catalog.Client

	playlistCache *cache.PlaylistCache
	catalogCache  *cache.CatalogCache
}

// newApp connects the store (and Redis when configured) and wires the
// services. Redis failures disable caching instead of aborting startup.
func newApp(cfg *config.Config) (*app, error) {
	gdb, err := db.ConnectGormDB(cfg)
	if err != nil {
		return nil, err
	}
	a := &app{cfg: cfg, gdb: gdb}

	if cfg.RedisEnabled() {
		rdb, err := db.ConnectRedis(cfg)
		if err != nil {
			logger.Warn("Redis不可用，缓存已禁用", logger.ErrorField(err))
		} else {
			a.rdb = rdb
		}
	}

	if cfg.SpotifyClientID != "" {
		a.catalog = spotify.NewClient(spotify.Options{
			ClientID:     cfg.SpotifyClientID,
			ClientSecret: cfg.SpotifyClientSecret,
			TokenURL:     cfg.SpotifyTokenURL,
			BaseURL:      cfg.SpotifyAPIBaseURL,
			MaxRetries:   cfg.SpotifyMaxRetries,
			RetryBackoff: cfg.SpotifyRetryBackoff,
			Timeout:      cfg.SpotifyTimeout,
		})
		if a.rdb != nil {
			a.catalogCache = cache.NewCatalogCache(a.rdb, cfg.CatalogCacheTTL)
			a.catalog = catalog.NewCachedClient(a.catalog, a.catalogCache)
		}
	} else {
		logger.Warn("未配置 SPOTIFY_CLIENT_ID，外部歌曲导入不可用")
	}

	a.resolver = catalog.NewResolver(repository.NewGormTrackRepository(gdb), a.catalog)
	a.friends = friend.NewManager(
		repository.NewGormAccountRepository(gdb),
		repository.NewGormFriendshipRepository(gdb),
		cfg.TxMaxRetries,
	)

	opts := []playlist.Option{playlist.WithResolver(a.resolver)}
	if a.rdb != nil {
		a.playlistCache = cache.NewPlaylistCache(a.rdb, cfg.PlaylistCacheTTL)
		opts = append(opts, playlist.WithCache(a.playlistCache))
	}
	a.playlists = playlist.NewCollection(repository.NewGormPlaylistRepository(gdb), cfg.TxMaxRetries, opts...)
	return a, nil
}

// applyReload 应用 .env 热加载后的配置：日志级别与缓存时长
func (a *app) applyReload(c *config.Config) {
	logger.SetLevel(logger.LogLevel(c.LogLevel))
	if a.playlistCache != nil {
		a.playlistCache.SetTTL(c.PlaylistCacheTTL)
	}
	if a.catalogCache != nil {
		a.catalogCache.SetTTL(c.CatalogCacheTTL)
	}
	logger.Info("配置已重新加载",
		logger.String("logLevel", c.LogLevel),
		logger.Duration("playlistCacheTTL", c.PlaylistCacheTTL),
		logger.Duration("catalogCacheTTL", c.CatalogCacheTTL))
}

func (a *app) Close() {
	if a.rdb != nil {
		if err := a.rdb.Close(); err != nil {
			logger.Warn("关闭Redis连接失败", logger.ErrorField(err))
		}
	}
	if err := db.CloseGormDB(a.gdb); err != nil {
		logger.Warn("关闭数据库连接失败", logger.ErrorField(err))
	}
}

// initLogger 根据配置初始化日志
func initLogger(cfg *config.Config) error {
	err := logger.InitLogger(logger.Config{
		Level:      logger.LogLevel(cfg.LogLevel),
		OutputPath: cfg.LogPath,
		MaxSize:    cfg.LogMaxSizeMB,
		MaxBackups: cfg.LogMaxBackups,
		MaxAge:     cfg.LogMaxAgeDays,
		Compress:   true,
	})
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	return nil
}
