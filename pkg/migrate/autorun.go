package migrate

import (
	"context"
	"fmt"

	"github.com/angelmondragon/warrantywizard-backend/pkg/config"
	"github.com/angelmondragon/warrantywizard-backend/pkg/db"
	"github.com/angelmondragon/warrantywizard-backend/pkg/logger"
)

// MaybeRun applies the embedded migrations when auto-migrate is enabled, or
// always for SQLite, whose file is local to the process.
func MaybeRun(ctx context.Context, cfg *config.Config, logg *logger.Logger, client *db.Client) error {
	dialect := client.Dialect()
	if dialect != "sqlite" && !cfg.FeatureFlags.AutoMigrate {
		return nil
	}

	sqlDB, err := client.DB().DB()
	if err != nil {
		return fmt.Errorf("extracting sql.DB: %w", err)
	}

	ctx = logg.WithFields(ctx, map[string]any{"env": cfg.App.Env, "dialect": dialect})
	logg.Info(ctx, "running Goose migrations")

	if err := Up(ctx, sqlDB, dialect); err != nil {
		return err
	}

	logg.Info(ctx, "Goose migrations completed")
	return nil
}
