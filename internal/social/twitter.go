package social

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/corticalabs/site-manager/internal/logger"
)

const (
	defaultTwitterAPI  = "https://api.twitter.com"
	defaultBearerTTL   = time.Hour
	timelineEndpoint   = "/1.1/statuses/user_timeline.json"
	oauthTokenEndpoint = "/oauth2/token"
)

// TokenSource exchanges the consumer key pair for an application bearer
// token and caches it until the expiry passes.
type TokenSource struct {
	client         *http.Client
	baseURL        string
	consumerKey    string
	consumerSecret string
	ttl            time.Duration

	mu      sync.Mutex
	token   string
	expires time.Time
}

func NewTokenSource(client *http.Client, baseURL, consumerKey, consumerSecret string) *TokenSource {
	if baseURL == "" {
		baseURL = defaultTwitterAPI
	}
	return &TokenSource{
		client:         client,
		baseURL:        baseURL,
		consumerKey:    consumerKey,
		consumerSecret: consumerSecret,
		ttl:            defaultBearerTTL,
	}
}

// Token returns a cached bearer token, fetching a fresh one when the cache
// is empty or expired.
func (s *TokenSource) Token(ctx context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.token != "" && time.Now().Before(s.expires) {
		return s.token, nil
	}

	token, err := s.fetchToken(ctx)
	if err != nil {
		return "", err
	}

	s.token = token
	s.expires = time.Now().Add(s.ttl)
	return token, nil
}

func (s *TokenSource) fetchToken(ctx context.Context) (string, error) {
	body := strings.NewReader("grant_type=client_credentials")
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+oauthTokenEndpoint, body)
	if err != nil {
		return "", fmt.Errorf("build token request: %w", err)
	}
	req.SetBasicAuth(s.consumerKey, s.consumerSecret)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded;charset=UTF-8")

	resp, err := s.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("exchange bearer token: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("exchange bearer token: unexpected status %d", resp.StatusCode)
	}

	var payload struct {
		AccessToken string `json:"access_token"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return "", fmt.Errorf("decode bearer token: %w", err)
	}
	if payload.AccessToken == "" {
		return "", fmt.Errorf("exchange bearer token: empty access token")
	}

	return payload.AccessToken, nil
}

// TwitterClient fetches user timelines with an application bearer token.
type TwitterClient struct {
	client  *http.Client
	baseURL string
	tokens  *TokenSource
	logger  logger.Logger
}

func NewTwitterClient(client *http.Client, baseURL string, tokens *TokenSource, log logger.Logger) *TwitterClient {
	if baseURL == "" {
		baseURL = defaultTwitterAPI
	}
	return &TwitterClient{
		client:  client,
		baseURL: baseURL,
		tokens:  tokens,
		logger:  log,
	}
}

// Tweet is one timeline entry.
type Tweet struct {
	ID        int64  `json:"id"`
	Text      string `json:"text"`
	CreatedAt string `json:"created_at"`
}

// Timeline returns the most recent tweets of the screen name. A provider
// failure yields an empty timeline.
func (c *TwitterClient) Timeline(ctx context.Context, screenName string, count int) []Tweet {
	token, err := c.tokens.Token(ctx)
	if err != nil {
		c.logger.Warn("twitter token unavailable", logger.Error(err))
		return []Tweet{}
	}

	url := fmt.Sprintf("%s%s?screen_name=%s&count=%d",
		c.baseURL, timelineEndpoint, screenName, count)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		c.logger.Warn("twitter timeline request failed", logger.Error(err))
		return []Tweet{}
	}
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := c.client.Do(req)
	if err != nil {
		c.logger.Warn("twitter timeline unreachable", logger.Error(err))
		return []Tweet{}
	}
	defer resp.Body.Close()

	var tweets []Tweet
	if err := json.NewDecoder(resp.Body).Decode(&tweets); err != nil {
		c.logger.Warn("twitter timeline decode failed", logger.Error(err))
		return []Tweet{}
	}
	if tweets == nil {
		return []Tweet{}
	}

	return tweets
}
