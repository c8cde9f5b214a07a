package social

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"github.com/corticalabs/site-manager/internal/logger"
)

const defaultFacebookAPI = "https://graph.facebook.com"

// FacebookClient fetches the feed of a public page using an app access
// token derived from the app id and secret.
type FacebookClient struct {
	client    *http.Client
	baseURL   string
	appID     string
	appSecret string
	logger    logger.Logger
}

func NewFacebookClient(client *http.Client, baseURL, appID, appSecret string, log logger.Logger) *FacebookClient {
	if baseURL == "" {
		baseURL = defaultFacebookAPI
	}
	return &FacebookClient{
		client:    client,
		baseURL:   baseURL,
		appID:     appID,
		appSecret: appSecret,
		logger:    log,
	}
}

// FacebookPost is one item of a page feed.
type FacebookPost struct {
	ID          string `json:"id"`
	Message     string `json:"message,omitempty"`
	Story       string `json:"story,omitempty"`
	CreatedTime string `json:"created_time"`
}

// PageFeed returns up to count posts published on the page. A provider
// failure yields an empty feed.
func (c *FacebookClient) PageFeed(ctx context.Context, pageID string, count int) []FacebookPost {
	feedURL := fmt.Sprintf("%s/%s/feed?limit=%d&access_token=%s",
		c.baseURL, pageID, count, url.QueryEscape(c.appID+"|"+c.appSecret))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, feedURL, nil)
	if err != nil {
		c.logger.Warn("facebook feed request failed", logger.Error(err))
		return []FacebookPost{}
	}

	resp, err := c.client.Do(req)
	if err != nil {
		c.logger.Warn("facebook feed unreachable", logger.Error(err))
		return []FacebookPost{}
	}
	defer resp.Body.Close()

	var payload struct {
		Data []FacebookPost `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		c.logger.Warn("facebook feed decode failed", logger.Error(err))
		return []FacebookPost{}
	}
	if payload.Data == nil {
		return []FacebookPost{}
	}

	return payload.Data
}
