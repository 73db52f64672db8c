package minio

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/ryu-qqq/FileFlow-sub007/internal/config"
	"github.com/ryu-qqq/FileFlow-sub007/internal/core/port"
)

// Adapter is an adapter for minio
type Adapter struct {
	client *minio.Client
	core   *minio.Core
	config config.MinioConfig
	logger *slog.Logger
}

// NewAdapter returns Adapter. The configured bucket is created when missing.
func NewAdapter(ctx context.Context, cfg config.MinioConfig, logger *slog.Logger) (*Adapter, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create minio client: %w", err)
	}

	exists, err := client.BucketExists(ctx, cfg.BucketName)
	if err != nil {
		return nil, fmt.Errorf("failed to check if bucket exists: %w", err)
	}
	if !exists {
		if err := client.MakeBucket(ctx, cfg.BucketName, minio.MakeBucketOptions{}); err != nil {
			return nil, fmt.Errorf("failed to create bucket: %w", err)
		}
	}

	core := minio.Core{Client: client}
	return &Adapter{client: client, config: cfg, core: &core, logger: logger}, nil
}

// GeneratePresignedURLSimpleUpload issues one presigned PUT for a single-shot upload
func (a *Adapter) GeneratePresignedURLSimpleUpload(ctx context.Context, bucket, key, contentType string) (string, time.Time, error) {
	requestHeaders := make(http.Header)
	requestHeaders.Set("Content-Type", contentType)

	presignedURL, err := a.client.PresignHeader(ctx, http.MethodPut, bucket, key, a.config.SimplePresignedDuration, nil, requestHeaders)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to generate pre-signed URL: %w", err)
	}

	expiresAt := time.Now().Add(a.config.SimplePresignedDuration)
	return presignedURL.String(), expiresAt, nil
}

// InitMultipartUpload starts a native multipart upload
func (a *Adapter) InitMultipartUpload(ctx context.Context, bucket, key, contentType string) (string, error) {
	opts := minio.PutObjectOptions{
		ContentType: contentType,
	}
	uploadID, err := a.core.NewMultipartUpload(ctx, bucket, key, opts)
	if err != nil {
		return "", fmt.Errorf("failed to init multipart upload: %w", err)
	}
	return uploadID, nil
}

// GeneratePresignedURLForPart issues one presigned PUT for a single part
func (a *Adapter) GeneratePresignedURLForPart(ctx context.Context, bucket, key, uploadID string, partNumber int) (string, error) {
	reqParams := make(url.Values)
	reqParams.Set("partNumber", fmt.Sprintf("%d", partNumber))
	reqParams.Set("uploadId", uploadID)

	presignedURL, err := a.core.PresignHeader(ctx, http.MethodPut, bucket, key, a.config.MultiPartPresignedDuration, reqParams, nil)
	if err != nil {
		return "", fmt.Errorf("failed to generate presigned URL for part: %w", err)
	}
	return presignedURL.String(), nil
}

// CompleteMultipartUpload finalizes the native upload and returns the merged ETag
func (a *Adapter) CompleteMultipartUpload(ctx context.Context, bucket, key, uploadID string, parts []port.CompletePart) (string, error) {
	sort.Slice(parts, func(i, j int) bool {
		return parts[i].PartNumber < parts[j].PartNumber
	})

	completeParts := make([]minio.CompletePart, 0, len(parts))
	for _, part := range parts {
		completeParts = append(completeParts, minio.CompletePart{
			PartNumber: part.PartNumber,
			ETag:       strings.Trim(part.ETag, "\""),
		})
	}

	info, err := a.core.CompleteMultipartUpload(ctx, bucket, key, uploadID, completeParts, minio.PutObjectOptions{})
	if err != nil {
		return "", fmt.Errorf("failed to complete multipart upload: %w", err)
	}
	return info.ETag, nil
}

// AbortMultipartUpload discards a native upload and its staged parts
func (a *Adapter) AbortMultipartUpload(ctx context.Context, bucket, key, uploadID string) error {
	err := a.core.AbortMultipartUpload(ctx, bucket, key, uploadID)
	if err != nil {
		return fmt.Errorf("failed to abort multipart upload: %w", err)
	}

	a.logger.Info("multipart upload aborted",
		slog.String("key", key),
		slog.String("uploadID", uploadID))

	return nil
}

// StoreObject writes a fetched object directly and returns its ETag
func (a *Adapter) StoreObject(ctx context.Context, bucket, key string, body io.Reader, size int64, contentType string) (string, error) {
	info, err := a.client.PutObject(ctx, bucket, key, body, size, minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return "", fmt.Errorf("failed to store object: %w", err)
	}
	return info.ETag, nil
}
