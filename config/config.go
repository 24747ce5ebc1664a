package config

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config stores the application configuration.
type Config struct {
	HTTPPort string

	// 数据库配置
	DBDriver   string // mysql or sqlite
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	SQLitePath string

	// Redis配置，RedisHost 为空时禁用缓存
	RedisHost     string
	RedisPort     string
	RedisPassword string
	RedisDB       int

	// Spotify client-credentials app
	SpotifyClientID     string
	SpotifyClientSecret string
	SpotifyTokenURL     string
	SpotifyAPIBaseURL   string
	SpotifyMaxRetries   int
	SpotifyRetryBackoff time.Duration
	SpotifyTimeout      time.Duration

	JWTSecret string

	// 日志配置
	LogLevel      string
	LogPath       string
	LogMaxSizeMB  int
	LogMaxBackups int
	LogMaxAgeDays int

	PlaylistCacheTTL time.Duration
	CatalogCacheTTL  time.Duration
	TxMaxRetries     int
}

// getEnv gets an environment variable or returns a default value.
func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

// getEnvInt gets an environment variable as int or returns a default value.
func getEnvInt(key string, fallback int) int {
	if value, exists := os.LookupEnv(key); exists {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return fallback
}

// getEnvDuration accepts Go duration strings ("30s", "5m").
func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if value, exists := os.LookupEnv(key); exists {
		return getDuration(value, fallback)
	}
	return fallback
}

func getDuration(value string, fallback time.Duration) time.Duration {
	if d, err := time.ParseDuration(value); err == nil {
		return d
	}
	return fallback
}

// Load loads configuration from environment variables (via .env file) or defaults.
func Load() *Config {
	// godotenv.Load() will not override existing env vars.
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found or error loading .env, relying on existing environment variables and defaults.")
	}
	return FromEnv()
}

// FromEnv builds a Config from the current process environment only.
func FromEnv() *Config {
	return &Config{
		HTTPPort: getEnv("HTTP_PORT", "8080"),

		DBDriver:   getEnv("DB_DRIVER", "mysql"),
		DBHost:     getEnv("DB_HOST", "127.0.0.1"),
		DBPort:     getEnv("DB_PORT", "3306"),
		DBUser:     getEnv("DB_USER", "root"),
		DBPassword: os.Getenv("DB_PASSWORD"), // no hardcoded default for passwords
		DBName:     getEnv("DB_NAME", "soundcircle"),
		SQLitePath: getEnv("SQLITE_PATH", filepath.Join("data", "soundcircle.db")),

		RedisHost:     getEnv("REDIS_HOST", "127.0.0.1"),
		RedisPort:     getEnv("REDIS_PORT", "6379"),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       getEnvInt("REDIS_DB", 0),

		SpotifyClientID:     os.Getenv("SPOTIFY_CLIENT_ID"),
		SpotifyClientSecret: os.Getenv("SPOTIFY_CLIENT_SECRET"),
		SpotifyTokenURL:     getEnv("SPOTIFY_TOKEN_URL", "https://accounts.spotify.com/api/token"),
		SpotifyAPIBaseURL:   getEnv("SPOTIFY_API_BASE_URL", "https://api.spotify.com/v1"),
		SpotifyMaxRetries:   getEnvInt("SPOTIFY_MAX_RETRIES", 3),
		SpotifyRetryBackoff: getEnvDuration("SPOTIFY_RETRY_BACKOFF", 500*time.Millisecond),
		SpotifyTimeout:      getEnvDuration("SPOTIFY_TIMEOUT", 10*time.Second),

		JWTSecret: os.Getenv("JWT_SECRET"),

		LogLevel:      getEnv("LOG_LEVEL", "info"),
		LogPath:       getEnv("LOG_PATH", filepath.Join("logs", "soundcircle.log")),
		LogMaxSizeMB:  getEnvInt("LOG_MAX_SIZE_MB", 100),
		LogMaxBackups: getEnvInt("LOG_MAX_BACKUPS", 5),
		LogMaxAgeDays: getEnvInt("LOG_MAX_AGE_DAYS", 30),

		PlaylistCacheTTL: getEnvDuration("PLAYLIST_CACHE_TTL", 10*time.Minute),
		CatalogCacheTTL:  getEnvDuration("CATALOG_CACHE_TTL", time.Hour),
		TxMaxRetries:     getEnvInt("TX_MAX_RETRIES", 3),
	}
}

// RedisEnabled reports whether a Redis host is configured.
func (c *Config) RedisEnabled() bool {
	return c.RedisHost != ""
}

// RedisAddr returns host:port for the Redis client.
func (c *Config) RedisAddr() string {
	return fmt.Sprintf("%s:%s", c.RedisHost, c.RedisPort)
}

// MySQLDSN builds the go-sql-driver DSN.
func (c *Config) MySQLDSN() string {
	return fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=True&loc=UTC",
		c.DBUser, c.DBPassword, c.DBHost, c.DBPort, c.DBName)
}
