package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/File-Sharing-BondBridg/files-manager/internal/configuration"
)

// OpenBlobStore builds the blob store selected by cfg.Backend and checks that
// it is reachable before returning it.
func OpenBlobStore(ctx context.Context, cfg configuration.BlobConfig, logger *slog.Logger) (BlobStore, error) {
	store, err := newBlobStore(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}
	if err := store.Ping(ctx); err != nil {
		return nil, fmt.Errorf("blob store unreachable: %w", err)
	}
	return store, nil
}

func newBlobStore(ctx context.Context, cfg configuration.BlobConfig, logger *slog.Logger) (BlobStore, error) {
	switch cfg.Backend {
	case "filesystem":
		return NewLocalBlobStore(cfg.FolderPath)
	case "minio":
		return NewMinioBlobStore(ctx, MinioOptions{
			Endpoint:  cfg.MinIO.Endpoint,
			AccessKey: cfg.MinIO.AccessKey,
			SecretKey: cfg.MinIO.SecretKey,
			Bucket:    cfg.MinIO.BucketName,
			UseSSL:    cfg.MinIO.UseSSL,
			Prefix:    cfg.FolderPath,
		}, logger)
	default:
		return nil, fmt.Errorf("unknown blob backend %q", cfg.Backend)
	}
}
