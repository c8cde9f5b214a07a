package handlers

import (
	"context"
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"

	"github.com/corticalabs/site-manager/internal/config"
	"github.com/corticalabs/site-manager/internal/logger"
	"github.com/corticalabs/site-manager/internal/social"
)

// Feed client surfaces. All of them absorb provider failures and return
// empty results.
type (
	FacebookFeed interface {
		PageFeed(ctx context.Context, pageID string, count int) []social.FacebookPost
	}
	TwitterFeed interface {
		Timeline(ctx context.Context, screenName string, count int) []social.Tweet
	}
	YouTubeFeed interface {
		ChannelVideos(ctx context.Context, channelID string, count int) []social.YouTubeVideo
	}
)

// FeedHandler aggregates the outbound social feeds for the front page.
type FeedHandler struct {
	facebook FacebookFeed
	twitter  TwitterFeed
	youtube  YouTubeFeed
	cfg      config.SocialConfig
	logger   logger.Logger
}

func NewFeedHandler(facebook FacebookFeed, twitter TwitterFeed, youtube YouTubeFeed, cfg config.SocialConfig, log logger.Logger) *FeedHandler {
	return &FeedHandler{
		facebook: facebook,
		twitter:  twitter,
		youtube:  youtube,
		cfg:      cfg,
		logger:   log,
	}
}

func (h *FeedHandler) Facebook(c *gin.Context) {
	posts := h.facebook.PageFeed(c.Request.Context(), h.cfg.FacebookPageID, h.cfg.FeedCount)
	c.JSON(http.StatusOK, gin.H{"posts": posts, "count": len(posts)})
}

func (h *FeedHandler) Twitter(c *gin.Context) {
	tweets := h.twitter.Timeline(c.Request.Context(), h.cfg.TwitterScreenName, h.cfg.FeedCount)
	c.JSON(http.StatusOK, gin.H{"tweets": tweets, "count": len(tweets)})
}

func (h *FeedHandler) YouTube(c *gin.Context) {
	videos := h.youtube.ChannelVideos(c.Request.Context(), h.cfg.YouTubeChannelID, h.cfg.FeedCount)
	c.JSON(http.StatusOK, gin.H{"videos": videos, "count": len(videos)})
}

// All fans out to every provider concurrently and merges the results. A
// slow or failing provider only empties its own slice.
func (h *FeedHandler) All(c *gin.Context) {
	ctx := c.Request.Context()

	var (
		wg     sync.WaitGroup
		posts  []social.FacebookPost
		tweets []social.Tweet
		videos []social.YouTubeVideo
	)

	wg.Add(3)
	go func() {
		defer wg.Done()
		posts = h.facebook.PageFeed(ctx, h.cfg.FacebookPageID, h.cfg.FeedCount)
	}()
	go func() {
		defer wg.Done()
		tweets = h.twitter.Timeline(ctx, h.cfg.TwitterScreenName, h.cfg.FeedCount)
	}()
	go func() {
		defer wg.Done()
		videos = h.youtube.ChannelVideos(ctx, h.cfg.YouTubeChannelID, h.cfg.FeedCount)
	}()
	wg.Wait()

	c.JSON(http.StatusOK, gin.H{
		"facebook": posts,
		"twitter":  tweets,
		"youtube":  videos,
	})
}
