package spotify

import (
	"context"
	"net/http"
	"sync"

	"SoundCircle/logger"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"
	"golang.org/x/sync/singleflight"
)

// TokenCache holds the process-wide access token. It is fetched lazily,
// replaced when it expires or is reported stale, and concurrent callers
// needing a new token share a single fetch.
type TokenCache struct {
	cfg        *clientcredentials.Config
	httpClient *http.Client

	mu    sync.Mutex
	token *oauth2.Token
	group singleflight.Group
}

// NewTokenCache 创建令牌缓存
func NewTokenCache(clientID, clientSecret, tokenURL string, httpClient *http.Client) *TokenCache {
	return &TokenCache{
		cfg: &clientcredentials.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			TokenURL:     tokenURL,
			AuthStyle:    oauth2.AuthStyleInHeader,
		},
		httpClient: httpClient,
	}
}

// Token returns a valid access token, fetching one if needed.
func (c *TokenCache) Token(ctx context.Context) (string, error) {
	if tok := c.current(); tok.Valid() {
		return tok.AccessToken, nil
	}

	v, err, _ := c.group.Do("token", func() (interface{}, error) {
		if tok := c.current(); tok.Valid() {
			return tok.AccessToken, nil
		}

		fetchCtx := context.WithoutCancel(ctx)
		if c.httpClient != nil {
			fetchCtx = context.WithValue(fetchCtx, oauth2.HTTPClient, c.httpClient)
		}
		tok, err := c.cfg.Token(fetchCtx)
		if err != nil {
			logger.Error("获取 Spotify 访问令牌失败", logger.ErrorField(err))
			return "", err
		}

		c.mu.Lock()
		c.token = tok
		c.mu.Unlock()
		logger.Debug("Spotify 访问令牌已刷新", logger.Any("expiry", tok.Expiry))
		return tok.AccessToken, nil
	})
	if err != nil {
		return "", err
	}
	return v.(string), nil
}

// Invalidate drops the cached token if it is still the given stale one, so
// a caller reporting an old token cannot evict a newer one.
func (c *TokenCache) Invalidate(stale string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.token != nil && c.token.AccessToken == stale {
		c.token = nil
	}
}

func (c *TokenCache) current() *oauth2.Token {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.token
}
