package social

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/corticalabs/site-manager/internal/logger"
)

const defaultYouTubeAPI = "https://www.googleapis.com"

// YouTubeClient lists the videos of a channel. Without an API key it stays
// silent and returns empty results.
type YouTubeClient struct {
	client  *http.Client
	baseURL string
	apiKey  string
	logger  logger.Logger
}

func NewYouTubeClient(client *http.Client, baseURL, apiKey string, log logger.Logger) *YouTubeClient {
	if baseURL == "" {
		baseURL = defaultYouTubeAPI
	}
	return &YouTubeClient{
		client:  client,
		baseURL: baseURL,
		apiKey:  apiKey,
		logger:  log,
	}
}

// YouTubeVideo is one channel upload.
type YouTubeVideo struct {
	VideoID     string `json:"video_id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	PublishedAt string `json:"published_at"`
}

type youtubeSearchResponse struct {
	Error *struct {
		Message string `json:"message"`
	} `json:"error"`
	Items []struct {
		ID struct {
			Kind    string `json:"kind"`
			VideoID string `json:"videoId"`
		} `json:"id"`
		Snippet struct {
			Title       string `json:"title"`
			Description string `json:"description"`
			PublishedAt string `json:"publishedAt"`
		} `json:"snippet"`
	} `json:"items"`
}

// ChannelVideos returns the channel's uploads, newest first, skipping search
// results that are not videos. A missing API key or provider failure yields
// an empty list.
func (c *YouTubeClient) ChannelVideos(ctx context.Context, channelID string, count int) []YouTubeVideo {
	if c.apiKey == "" {
		c.logger.Warn("youtube api key not configured")
		return []YouTubeVideo{}
	}

	url := fmt.Sprintf(
		"%s/youtube/v3/search?order=date&part=snippet&channelId=%s&maxResults=%d&key=%s",
		c.baseURL, channelID, count, c.apiKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		c.logger.Warn("youtube search request failed", logger.Error(err))
		return []YouTubeVideo{}
	}

	resp, err := c.client.Do(req)
	if err != nil {
		c.logger.Warn("youtube search unreachable", logger.Error(err))
		return []YouTubeVideo{}
	}
	defer resp.Body.Close()

	var payload youtubeSearchResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		c.logger.Warn("youtube search decode failed", logger.Error(err))
		return []YouTubeVideo{}
	}
	if payload.Error != nil {
		c.logger.Warn("youtube search rejected",
			logger.String("message", payload.Error.Message))
		return []YouTubeVideo{}
	}

	videos := make([]YouTubeVideo, 0, len(payload.Items))
	for _, item := range payload.Items {
		if item.ID.Kind != "youtube#video" {
			continue
		}
		videos = append(videos, YouTubeVideo{
			VideoID:     item.ID.VideoID,
			Title:       item.Snippet.Title,
			Description: item.Snippet.Description,
			PublishedAt: item.Snippet.PublishedAt,
		})
	}

	return videos
}
