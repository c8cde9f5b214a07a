package bootstrap

import (
	"fmt"

	"github.com/corticalabs/site-manager/internal/config"
	"github.com/corticalabs/site-manager/internal/logger"
)

// LoadConfig resolves the config file path and loads the validated
// configuration.
func LoadConfig() (*config.Config, error) {
	cfg, err := config.Load(config.GetConfigPath("config.yml"))
	if err != nil {
		return nil, err
	}
	return cfg, nil
}

// CreateLogger builds the service logger from configuration.
func CreateLogger(cfg *config.Config, version string) (logger.Logger, error) {
	log, err := logger.New(logger.Config{
		Level:       logLevel(cfg),
		Development: cfg.Debug,
	})
	if err != nil {
		return nil, fmt.Errorf("create logger: %w", err)
	}

	return log.With(logger.String("version", version)), nil
}

func logLevel(cfg *config.Config) string {
	if cfg.Debug {
		return "debug"
	}
	return "info"
}
