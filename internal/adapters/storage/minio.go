package storage

import (
	"bytes"
	"context"
	"fmt"
	"path/filepath"

	"subasta-auction-service/internal/config"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/rs/zerolog"
)

// MinIOImageStore keeps uploaded auction images in a MinIO bucket. The core
// only ever sees the returned path string.
type MinIOImageStore struct {
	client *minio.Client
	bucket string
	logger zerolog.Logger
}

type MinIOImageStoreParams struct {
	Config config.StorageConfig
	Logger zerolog.Logger
}

// NewMinIOImageStore connects to MinIO and ensures the bucket exists
func NewMinIOImageStore(params MinIOImageStoreParams) (*MinIOImageStore, error) {
	cfg := params.Config

	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create minio client: %w", err)
	}

	ctx := context.Background()
	exists, err := client.BucketExists(ctx, cfg.Bucket)
	if err != nil {
		return nil, fmt.Errorf("failed to check bucket: %w", err)
	}
	if !exists {
		if err := client.MakeBucket(ctx, cfg.Bucket, minio.MakeBucketOptions{}); err != nil {
			return nil, fmt.Errorf("failed to create bucket: %w", err)
		}
	}

	return &MinIOImageStore{
		client: client,
		bucket: cfg.Bucket,
		logger: params.Logger.With().Str("component", "image_store").Logger(),
	}, nil
}

// Upload stores the image under a collision-free key and returns its path
func (s *MinIOImageStore) Upload(ctx context.Context, filename, contentType string, data []byte) (string, error) {
	key := fmt.Sprintf("uploads/%s%s", uuid.New().String(), filepath.Ext(filename))

	_, err := s.client.PutObject(ctx, s.bucket, key, bytes.NewReader(data), int64(len(data)), minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		s.logger.Error().Err(err).Str("key", key).Msg("Failed to upload image")
		return "", fmt.Errorf("failed to upload image: %w", err)
	}

	path := fmt.Sprintf("/%s/%s", s.bucket, key)

	s.logger.Info().
		Str("key", key).
		Str("content_type", contentType).
		Int("size", len(data)).
		Msg("Image uploaded")

	return path, nil
}
