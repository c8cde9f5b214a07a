package bootstrap

import (
	"fmt"

	"github.com/corticalabs/site-manager/internal/config"
	"github.com/corticalabs/site-manager/internal/database"
	"github.com/corticalabs/site-manager/internal/logger"
)

// SetupDatabase connects to PostgreSQL and applies pending migrations.
func SetupDatabase(cfg *config.Config, log logger.Logger) (*database.DB, error) {
	db, err := database.New(cfg, log)
	if err != nil {
		return nil, err
	}

	if err := database.RunMigrations(db, cfg, log); err != nil {
		if closeErr := db.Close(); closeErr != nil {
			log.Error("Failed to close database", logger.Error(closeErr))
		}
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return db, nil
}
