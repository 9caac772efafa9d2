package storage

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/File-Sharing-BondBridg/files-manager/internal/configuration"
)

// Open builds the metadata repository selected by cfg.Backend.
func Open(ctx context.Context, cfg configuration.MetadataConfig, logger *slog.Logger) (Repository, error) {
	switch cfg.Backend {
	case "mongo":
		return NewMongoStorage(ctx, cfg.Mongo.URI(), cfg.Mongo.Database, logger)
	case "postgres":
		return NewPostgresStorage(ctx, cfg.Postgres.DSNs, logger)
	case "local":
		logger.Info("[DB] using local metadata storage", "snapshot", cfg.Local.SnapshotPath)
		return NewLocalStorage(cfg.Local.SnapshotPath)
	default:
		return nil, fmt.Errorf("unknown metadata backend %q", cfg.Backend)
	}
}
