package port

import (
	"context"
	"io"
	"time"
)

// FileStorage is an interface to define object storage interactions
type FileStorage interface {
	// GeneratePresignedURLSimpleUpload issues one PUT URL for a single-shot upload
	GeneratePresignedURLSimpleUpload(ctx context.Context, bucket, key, contentType string) (string, time.Time, error)
	// InitMultipartUpload starts a native multipart upload and returns its id
	InitMultipartUpload(ctx context.Context, bucket, key, contentType string) (string, error)
	// GeneratePresignedURLForPart issues one PUT URL for a single part
	GeneratePresignedURLForPart(ctx context.Context, bucket, key, uploadID string, partNumber int) (string, error)
	// CompleteMultipartUpload finalizes the upload with part ETags in ascending
	// part-number order and returns the provider-computed merged ETag
	CompleteMultipartUpload(ctx context.Context, bucket, key, uploadID string, parts []CompletePart) (string, error)
	AbortMultipartUpload(ctx context.Context, bucket, key, uploadID string) error
	// StoreObject writes a fetched object directly and returns its ETag
	StoreObject(ctx context.Context, bucket, key string, body io.Reader, size int64, contentType string) (string, error)
}

// CompletePart is the (partNumber, etag) pair handed to the provider on completion
type CompletePart struct {
	PartNumber int
	ETag       string
}
