package bootstrap

import (
	"github.com/gin-gonic/gin"

	"github.com/corticalabs/site-manager/internal/api"
	"github.com/corticalabs/site-manager/internal/config"
	"github.com/corticalabs/site-manager/internal/database"
	"github.com/corticalabs/site-manager/internal/docs"
	"github.com/corticalabs/site-manager/internal/events"
	"github.com/corticalabs/site-manager/internal/handlers"
	"github.com/corticalabs/site-manager/internal/httpx"
	"github.com/corticalabs/site-manager/internal/importer"
	"github.com/corticalabs/site-manager/internal/jobs"
	"github.com/corticalabs/site-manager/internal/logger"
	"github.com/corticalabs/site-manager/internal/meta"
	"github.com/corticalabs/site-manager/internal/repository"
	"github.com/corticalabs/site-manager/internal/scheduler"
	"github.com/corticalabs/site-manager/internal/social"
)

// Services bundles the long-running pieces the app starts and stops.
type Services struct {
	Router    *gin.Engine
	Worker    *jobs.RefreshWorker
	Scheduler *scheduler.Scheduler
}

// SetupServices wires the repositories, clients, background workers and the
// HTTP router.
func SetupServices(cfg *config.Config, db *database.DB, publisher events.Publisher, log logger.Logger) *Services {
	pubRepo := repository.NewPublicationRepository(db.DB(), log)
	docRepo := repository.NewDocumentationRepository(db.DB(), log)
	contentRepo := repository.NewContentRepository(db.DB(), log)
	workshopRepo := repository.NewWorkshopRepository(db.DB(), log)
	jobRepo := repository.NewSyncJobRepository(db.DB(), log)

	httpClient := httpx.NewClient(nil)

	fetcher := docs.NewFetcher(httpClient, cfg.Docs.RawBaseURL(), cfg.Docs.IntroContainer, log)
	worker := jobs.NewRefreshWorker(fetcher, docRepo, jobRepo, publisher, log, cfg.Docs.SyncQueueSize)
	syncer := docs.NewSyncer(httpClient, cfg.Docs.ListingURL(), cfg.Docs.RawBaseURL(),
		docRepo, jobRepo, worker, publisher, log)

	github := social.NewGitHubClient(httpClient, "", cfg.Social.GitHubOrg, log)
	facebook := social.NewFacebookClient(httpClient, "",
		cfg.Social.FacebookAppID, cfg.Social.FacebookAppSecret, log)
	twitterTokens := social.NewTokenSource(httpClient, "",
		cfg.Social.TwitterConsumerKey, cfg.Social.TwitterConsumerSecret)
	twitter := social.NewTwitterClient(httpClient, "", twitterTokens, log)
	youtube := social.NewYouTubeClient(httpClient, "", cfg.Social.YouTubeAPIKey, log)

	metaBuilder := meta.NewBuilder(cfg.Meta)

	routerHandlers := api.Handlers{
		Publications: handlers.NewPublicationHandler(pubRepo,
			importer.NewPublicationImporter(pubRepo, log), log),
		Documentation: handlers.NewDocumentationHandler(docRepo, syncer, jobRepo, log),
		Content:       handlers.NewContentHandler(contentRepo, metaBuilder, log),
		Workshops: handlers.NewWorkshopHandler(workshopRepo, metaBuilder,
			cfg.Meta.StockAvatarURL, cfg.Meta.StripePublicKey, log),
		Feeds: handlers.NewFeedHandler(facebook, twitter, youtube, cfg.Social, log),
		Auth: handlers.NewAuthHandler(github, cfg.Social.GitHubRepo,
			cfg.Auth.JWTSecret, cfg.Auth.TokenTTL, log),
	}

	return &Services{
		Router:    api.NewRouter(routerHandlers, cfg, log),
		Worker:    worker,
		Scheduler: scheduler.New(syncer, cfg.Docs.SyncSchedule, log),
	}
}
