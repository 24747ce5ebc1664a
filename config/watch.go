package config

import (
	"context"
	"fmt"
	"path/filepath"

	"SoundCircle/logger"

	"github.com/fsnotify/fsnotify"
	"github.com/joho/godotenv"
)

// WatchEnvFile re-reads the given .env file whenever it is written and
// passes the resulting Config to onChange. Values in the file override the
// process environment for the reloaded Config only; os.Environ is untouched.
// It blocks until ctx is cancelled.
func WatchEnvFile(ctx context.Context, path string, onChange func(*Config)) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create env watcher: %w", err)
	}
	defer watcher.Close()

	// 监听目录而不是文件本身，编辑器保存时常常是 rename+create
	dir := filepath.Dir(path)
	if err := watcher.Add(dir); err != nil {
		return fmt.Errorf("failed to watch %s: %w", dir, err)
	}
	target := filepath.Clean(path)

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != target {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			cfg, err := loadFile(path)
			if err != nil {
				logger.Warn("重新加载配置失败", logger.String("path", path), logger.ErrorField(err))
				continue
			}
			onChange(cfg)
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Warn("配置监听出错", logger.ErrorField(err))
		}
	}
}

func loadFile(path string) (*Config, error) {
	values, err := godotenv.Read(path)
	if err != nil {
		return nil, err
	}
	cfg := FromEnv()
	if v, ok := values["LOG_LEVEL"]; ok {
		cfg.LogLevel = v
	}
	if v, ok := values["PLAYLIST_CACHE_TTL"]; ok {
		cfg.PlaylistCacheTTL = getDuration(v, cfg.PlaylistCacheTTL)
	}
	if v, ok := values["CATALOG_CACHE_TTL"]; ok {
		cfg.CatalogCacheTTL = getDuration(v, cfg.CatalogCacheTTL)
	}
	return cfg, nil
}
