// Package storage implements the object-storage adapter for user media on
// top of gocloud.dev blob buckets, so deployments can point it at S3, GCS
// or a local directory without code changes.
package storage

import (
	"context"
	"io"
	"log/slog"
	"mime"
	"os"
	"path/filepath"
	"strings"
	"time"

	"cliphub/config"
	"cliphub/internal/domain/service"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.uber.org/fx"
	"gocloud.dev/blob"

	// Bucket URL schemes supported in deployment configuration.
	_ "gocloud.dev/blob/fileblob"
	_ "gocloud.dev/blob/gcsblob"
	_ "gocloud.dev/blob/s3blob"
)

const defaultUploadTimeout = 30 * time.Second

// blobStorage implements service.MediaStorage backed by a gocloud bucket.
type blobStorage struct {
	bucket        *blob.Bucket
	publicPrefix  string
	uploadTimeout time.Duration
	logger        *slog.Logger
}

// Params defines the dependencies for the media storage adapter.
type Params struct {
	fx.In
	fx.Lifecycle

	Ctx    context.Context
	Config *config.Config
	Logger *slog.Logger
}

// NewMediaStorage opens the configured bucket and returns it as a
// service.MediaStorage. The bucket is closed on shutdown.
func NewMediaStorage(params Params) (service.MediaStorage, error) {
	cfg := params.Config.Storage
	if cfg == nil || cfg.BucketURL == "" {
		return nil, errors.New("storage bucket url must be configured")
	}

	bucket, err := blob.OpenBucket(params.Ctx, cfg.BucketURL)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open bucket %s", cfg.BucketURL)
	}

	params.Append(fx.Hook{
		OnStop: func(context.Context) error {
			return bucket.Close()
		},
	})

	return newBlobStorage(bucket, cfg.PublicURLPrefix, cfg.UploadTimeout, params.Logger), nil
}

func newBlobStorage(bucket *blob.Bucket, publicPrefix string, uploadTimeout time.Duration, logger *slog.Logger) *blobStorage {
	if uploadTimeout <= 0 {
		uploadTimeout = defaultUploadTimeout
	}

	return &blobStorage{
		bucket:        bucket,
		publicPrefix:  strings.TrimSuffix(publicPrefix, "/"),
		uploadTimeout: uploadTimeout,
		logger:        logger,
	}
}

// Upload stores the local file under a fresh key and returns its hosted
// reference. The spooled local file is removed afterwards regardless of
// outcome, mirroring its single-use temp-file role.
func (s *blobStorage) Upload(ctx context.Context, localPath string) (*service.StoredAsset, error) {
	defer s.removeLocal(localPath)

	file, err := os.Open(localPath)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open local file %s", localPath)
	}
	defer file.Close()

	key := uuid.New().String() + strings.ToLower(filepath.Ext(localPath))

	ctx, cancel := context.WithTimeout(ctx, s.uploadTimeout)
	defer cancel()

	writer, err := s.bucket.NewWriter(ctx, key, &blob.WriterOptions{
		ContentType: contentTypeFor(localPath),
	})
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open bucket writer for %s", key)
	}

	if _, err := io.Copy(writer, file); err != nil {
		writer.Close()

		return nil, errors.Wrapf(err, "failed to write object %s", key)
	}
	if err := writer.Close(); err != nil {
		return nil, errors.Wrapf(err, "failed to finalize object %s", key)
	}

	return &service.StoredAsset{
		URL: s.publicPrefix + "/" + key,
		Key: key,
	}, nil
}

// Delete removes a previously uploaded object.
func (s *blobStorage) Delete(ctx context.Context, key string) error {
	ctx, cancel := context.WithTimeout(ctx, s.uploadTimeout)
	defer cancel()

	if err := s.bucket.Delete(ctx, key); err != nil {
		return errors.Wrapf(err, "failed to delete object %s", key)
	}

	return nil
}

func (s *blobStorage) removeLocal(localPath string) {
	if err := os.Remove(localPath); err != nil && !os.IsNotExist(err) && s.logger != nil {
		s.logger.Warn("Failed to remove spooled upload file",
			slog.String("path", localPath),
			slog.Any("error", err),
		)
	}
}

func contentTypeFor(localPath string) string {
	if ct := mime.TypeByExtension(filepath.Ext(localPath)); ct != "" {
		return ct
	}

	return "application/octet-stream"
}
