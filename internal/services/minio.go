package services

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"path"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// MinioBlobStore keeps blobs as objects in a single bucket. Object keys take
// the place of filesystem paths.
type MinioBlobStore struct {
	client *minio.Client
	bucket string
	prefix string
	logger *slog.Logger
}

type MinioOptions struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
	// Prefix is prepended to every generated key.
	Prefix string
}

// NewMinioBlobStore connects and creates the bucket if it doesn't exist.
func NewMinioBlobStore(ctx context.Context, opts MinioOptions, logger *slog.Logger) (*MinioBlobStore, error) {
	client, err := minio.New(opts.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(opts.AccessKey, opts.SecretKey, ""),
		Secure: opts.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create MinIO client: %w", err)
	}

	exists, err := client.BucketExists(ctx, opts.Bucket)
	if err != nil {
		return nil, fmt.Errorf("failed to check bucket existence: %w", err)
	}
	if !exists {
		if err := client.MakeBucket(ctx, opts.Bucket, minio.MakeBucketOptions{}); err != nil {
			return nil, fmt.Errorf("failed to create bucket: %w", err)
		}
		logger.Info("[MinIO] created bucket", "bucket", opts.Bucket)
	}

	logger.Info("[MinIO] connected", "endpoint", opts.Endpoint, "bucket", opts.Bucket)
	return &MinioBlobStore{
		client: client,
		bucket: opts.Bucket,
		prefix: strings.Trim(opts.Prefix, "/"),
		logger: logger,
	}, nil
}

func (s *MinioBlobStore) key() string {
	return path.Join(s.prefix, uuid.NewString())
}

func (s *MinioBlobStore) Save(ctx context.Context, data []byte) (string, error) {
	key := s.key()
	if err := s.Write(ctx, key, data); err != nil {
		return "", err
	}
	return key, nil
}

func (s *MinioBlobStore) Write(ctx context.Context, key string, data []byte) error {
	_, err := s.client.PutObject(ctx, s.bucket, key,
		bytes.NewReader(data),
		int64(len(data)),
		minio.PutObjectOptions{ContentType: mimetype.Detect(data).String()},
	)
	if err != nil {
		return fmt.Errorf("failed to upload object %s: %w", key, err)
	}
	return nil
}

func (s *MinioBlobStore) Read(ctx context.Context, key string) ([]byte, error) {
	obj, err := s.client.GetObject(ctx, s.bucket, key, minio.GetObjectOptions{})
	if err != nil {
		return nil, s.mapError(key, err)
	}
	defer obj.Close()

	data, err := io.ReadAll(obj)
	if err != nil {
		return nil, s.mapError(key, err)
	}
	return data, nil
}

func (s *MinioBlobStore) mapError(key string, err error) error {
	if minio.ToErrorResponse(err).Code == "NoSuchKey" {
		return ErrBlobNotFound
	}
	return fmt.Errorf("failed to read object %s: %w", key, err)
}

func (s *MinioBlobStore) Ping(ctx context.Context) error {
	_, err := s.client.BucketExists(ctx, s.bucket)
	return err
}
