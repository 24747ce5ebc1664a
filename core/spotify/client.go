// Package spotify is a client for the Spotify Web API track endpoint,
// authenticated with the client-credentials grant.
package spotify

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"SoundCircle/core/apperr"
	"SoundCircle/model"
)

const (
	defaultBaseURL  = "https://api.spotify.com/v1"
	defaultTokenURL = "https://accounts.spotify.com/api/token"
)

// Options 客户端配置
type Options struct {
	ClientID     string
	ClientSecret string
	TokenURL     string
	BaseURL      string
	MaxRetries   int
	RetryBackoff time.Duration
	Timeout      time.Duration
}

// Client Spotify API客户端
type Client struct {
	baseURL     string
	httpClient  *http.Client
	tokens      *TokenCache
	maxRetries  int
	baseBackoff time.Duration
}

// NewClient 创建新的API客户端
func NewClient(opts Options) *Client {
	if opts.BaseURL == "" {
		opts.BaseURL = defaultBaseURL
	}
	if opts.TokenURL == "" {
		opts.TokenURL = defaultTokenURL
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 10 * time.Second
	}

	httpClient := &http.Client{Timeout: opts.Timeout}
	return &Client{
		baseURL:     strings.TrimRight(opts.BaseURL, "/"),
		httpClient:  httpClient,
		tokens:      NewTokenCache(opts.ClientID, opts.ClientSecret, opts.TokenURL, httpClient),
		maxRetries:  opts.MaxRetries,
		baseBackoff: opts.RetryBackoff,
	}
}

// GetTrack fetches one track. An unknown id is NotFound; every other
// failure is Unavailable.
func (c *Client) GetTrack(ctx context.Context, externalID string) (*model.ExternalTrack, error) {
	endpoint := fmt.Sprintf("%s/tracks/%s", c.baseURL, url.PathEscape(externalID))

	// A 401 means the cached token was revoked or expired early; refresh it
	// once and try again.
	for attempt := 0; ; attempt++ {
		token, err := c.tokens.Token(ctx)
		if err != nil {
			return nil, apperr.Unavailable(err, "spotify: acquire access token")
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
		if err != nil {
			return nil, apperr.Unavailable(err, "spotify: build request")
		}
		req.Header.Set("Authorization", "Bearer "+token)
		req.Header.Set("Accept", "application/json")

		resp, err := c.doRequestWithRetry(req)
		if err != nil {
			return nil, apperr.Unavailable(err, "spotify: get track %s", externalID)
		}

		if resp.StatusCode == http.StatusUnauthorized && attempt == 0 {
			_ = resp.Body.Close()
			c.tokens.Invalidate(token)
			continue
		}
		return decodeTrack(resp, externalID)
	}
}

func decodeTrack(resp *http.Response, externalID string) (*model.ExternalTrack, error) {
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, apperr.NotFound("external track %s not found", externalID)
	case resp.StatusCode != http.StatusOK:
		return nil, apperr.Unavailable(nil, "spotify: get track %s: status %d", externalID, resp.StatusCode)
	}

	var tr spotifyTrack
	if err := json.NewDecoder(resp.Body).Decode(&tr); err != nil {
		return nil, apperr.Unavailable(err, "spotify: decode track %s", externalID)
	}
	return tr.toExternal(), nil
}
