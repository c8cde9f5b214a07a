// Package config loads service configuration from YAML files with
// .env file support and environment variable overrides.
package config

import (
	"errors"
	"fmt"
	"time"
)

const (
	defaultServerPort      = 8060
	defaultServerTimeout   = 30
	defaultDatabasePort    = 5432
	defaultMaxOpenConns    = 25
	defaultMaxIdleConns    = 5
	defaultConnMaxLifetime = 5
	defaultRedisAddress    = "localhost:6379"
	defaultSyncQueueSize   = 16
	defaultFeedCount       = 10
)

type Config struct {
	Debug    bool           `env:"APP_DEBUG" yaml:"debug"`
	Server   ServerConfig   `yaml:"server"`
	Database DatabaseConfig `yaml:"database"`
	Redis    RedisConfig    `yaml:"redis"`
	Auth     AuthConfig     `yaml:"auth"`
	Docs     DocsConfig     `yaml:"docs"`
	Social   SocialConfig   `yaml:"social"`
	Meta     MetaConfig     `yaml:"meta"`
}

type ServerConfig struct {
	Host         string        `env:"SERVER_HOST" yaml:"host"`
	Port         int           `env:"SERVER_PORT" yaml:"port"`
	ReadTimeout  time.Duration `yaml:"read_timeout"`
	WriteTimeout time.Duration `yaml:"write_timeout"`
	CORSOrigins  []string      `env:"CORS_ORIGINS" yaml:"cors_origins"`
}

type DatabaseConfig struct {
	Host            string        `env:"DB_HOST"     yaml:"host"`
	Port            int           `env:"DB_PORT"     yaml:"port"`
	User            string        `env:"DB_USER"     yaml:"user"`
	Password        string        `env:"DB_PASSWORD" yaml:"password"`
	DBName          string        `env:"DB_NAME"     yaml:"dbname"`
	SSLMode         string        `env:"DB_SSLMODE"  yaml:"sslmode"`
	MigrationsPath  string        `yaml:"migrations_path"`
	MaxOpenConns    int           `yaml:"max_open_conns"`
	MaxIdleConns    int           `yaml:"max_idle_conns"`
	ConnMaxLifetime time.Duration `yaml:"conn_max_lifetime"`
}

// RedisConfig holds Redis connection configuration for sync event publishing.
type RedisConfig struct {
	Address  string `env:"REDIS_ADDRESS"        yaml:"address"`
	Password string `env:"REDIS_PASSWORD"       yaml:"password"`
	DB       int    `env:"REDIS_DB"             yaml:"db"`
	Enabled  bool   `env:"REDIS_EVENTS_ENABLED" yaml:"enabled"`
}

type AuthConfig struct {
	JWTSecret string        `env:"AUTH_JWT_SECRET" yaml:"jwt_secret"`
	TokenTTL  time.Duration `yaml:"token_ttl"`
}

// DocsConfig describes the remote repository that hosts the rendered
// documentation, one directory per published version on the docs branch.
type DocsConfig struct {
	RepoOwner      string `env:"DOCS_REPO_OWNER" yaml:"repo_owner"`
	RepoName       string `env:"DOCS_REPO_NAME"  yaml:"repo_name"`
	Branch         string `env:"DOCS_BRANCH"     yaml:"branch"`
	IntroContainer string `yaml:"intro_container"`
	SyncSchedule   string `env:"DOCS_SYNC_SCHEDULE" yaml:"sync_schedule"`
	SyncQueueSize  int    `yaml:"sync_queue_size"`
}

// SocialConfig carries the credentials for the outbound API integrations.
type SocialConfig struct {
	GitHubOrg             string `env:"GITHUB_ORG"              yaml:"github_org"`
	GitHubRepo            string `env:"GITHUB_REPO"             yaml:"github_repo"`
	FacebookAppID         string `env:"FACEBOOK_APP_ID"         yaml:"facebook_app_id"`
	FacebookAppSecret     string `env:"FACEBOOK_APP_SECRET"     yaml:"facebook_app_secret"`
	FacebookPageID        string `env:"FACEBOOK_PAGE_ID"        yaml:"facebook_page_id"`
	TwitterConsumerKey    string `env:"TWITTER_CONSUMER_KEY"    yaml:"twitter_consumer_key"`
	TwitterConsumerSecret string `env:"TWITTER_CONSUMER_SECRET" yaml:"twitter_consumer_secret"`
	TwitterScreenName     string `env:"TWITTER_SCREEN_NAME"     yaml:"twitter_screen_name"`
	YouTubeAPIKey         string `env:"YOUTUBE_API_KEY"         yaml:"youtube_api_key"`
	YouTubeChannelID      string `env:"YOUTUBE_CHANNEL_ID"      yaml:"youtube_channel_id"`
	FeedCount             int    `yaml:"feed_count"`
}

// MetaConfig holds the default page metadata used when a page does not
// override it.
type MetaConfig struct {
	DefaultTitle       string   `env:"META_DEFAULT_TITLE"       yaml:"default_title"`
	DefaultDescription string   `env:"META_DEFAULT_DESCRIPTION" yaml:"default_description"`
	DefaultKeywords    []string `env:"META_DEFAULT_KEYWORDS"    yaml:"default_keywords"`
	DefaultLogoURL     string   `env:"META_DEFAULT_LOGO_URL"    yaml:"default_logo_url"`
	StockAvatarURL     string   `env:"META_STOCK_AVATAR_URL"    yaml:"stock_avatar_url"`
	StripePublicKey    string   `env:"STRIPE_PUBLIC_KEY"        yaml:"stripe_public_key"`
}

func (c *Config) Validate() error {
	if c.Server.Host == "" {
		return errors.New("server.host is required")
	}
	if c.Server.Port <= 0 {
		return errors.New("server.port is required and must be positive")
	}
	if c.Database.Host == "" {
		return errors.New("database.host is required")
	}
	if c.Database.Port <= 0 {
		return errors.New("database.port is required and must be positive")
	}
	if c.Database.User == "" {
		return errors.New("database.user is required")
	}
	if c.Database.DBName == "" {
		return errors.New("database.dbname is required")
	}
	if c.Docs.RepoOwner == "" || c.Docs.RepoName == "" {
		return errors.New("docs.repo_owner and docs.repo_name are required")
	}
	if c.Auth.JWTSecret == "" {
		return errors.New("auth.jwt_secret is required")
	}
	return nil
}

func Load(path string) (*Config, error) {
	cfg, err := load(path, setDefaults)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

func setDefaults(cfg *Config) {
	if cfg.Server.Host == "" {
		cfg.Server.Host = "0.0.0.0"
	}
	if cfg.Server.Port == 0 {
		cfg.Server.Port = defaultServerPort
	}
	if cfg.Server.ReadTimeout == 0 {
		cfg.Server.ReadTimeout = defaultServerTimeout * time.Second
	}
	if cfg.Server.WriteTimeout == 0 {
		cfg.Server.WriteTimeout = defaultServerTimeout * time.Second
	}
	if len(cfg.Server.CORSOrigins) == 0 {
		cfg.Server.CORSOrigins = []string{"http://localhost:3000"}
	}
	if cfg.Database.Port == 0 {
		cfg.Database.Port = defaultDatabasePort
	}
	if cfg.Database.SSLMode == "" {
		cfg.Database.SSLMode = "disable"
	}
	if cfg.Database.MigrationsPath == "" {
		cfg.Database.MigrationsPath = "migrations"
	}
	if cfg.Database.MaxOpenConns == 0 {
		cfg.Database.MaxOpenConns = defaultMaxOpenConns
	}
	if cfg.Database.MaxIdleConns == 0 {
		cfg.Database.MaxIdleConns = defaultMaxIdleConns
	}
	if cfg.Database.ConnMaxLifetime == 0 {
		cfg.Database.ConnMaxLifetime = defaultConnMaxLifetime * time.Minute
	}
	if cfg.Redis.Address == "" {
		cfg.Redis.Address = defaultRedisAddress
	}
	if cfg.Auth.TokenTTL == 0 {
		cfg.Auth.TokenTTL = 24 * time.Hour
	}
	if cfg.Docs.Branch == "" {
		cfg.Docs.Branch = "gh-pages"
	}
	if cfg.Docs.IntroContainer == "" {
		cfg.Docs.IntroContainer = "overview"
	}
	if cfg.Docs.SyncQueueSize == 0 {
		cfg.Docs.SyncQueueSize = defaultSyncQueueSize
	}
	if cfg.Social.FeedCount == 0 {
		cfg.Social.FeedCount = defaultFeedCount
	}
	if cfg.Meta.DefaultTitle == "" {
		cfg.Meta.DefaultTitle = "Cortica"
	}
}

// ListingURL returns the GitHub contents API URL for the documentation branch.
func (d DocsConfig) ListingURL() string {
	return fmt.Sprintf("https://api.github.com/repos/%s/%s/contents/?ref=%s",
		d.RepoOwner, d.RepoName, d.Branch)
}

// RawBaseURL returns the raw content base URL for the documentation branch,
// always ending with a trailing slash.
func (d DocsConfig) RawBaseURL() string {
	return fmt.Sprintf("https://raw.githubusercontent.com/%s/%s/%s/",
		d.RepoOwner, d.RepoName, d.Branch)
}
