package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/ryu-qqq/FileFlow-sub007/internal/core/domain"
	"github.com/ryu-qqq/FileFlow-sub007/internal/core/port"
)

type sqlDownloadTaskRepository struct {
	db SQLQuerier
}

// NewSQLDownloadTaskRepository creates sqlDownloadTaskRepository that implements port.DownloadTaskRepository
func NewSQLDownloadTaskRepository(db SQLQuerier) port.DownloadTaskRepository {
	return &sqlDownloadTaskRepository{db: db}
}

// Create inserts a new external download task
func (s *sqlDownloadTaskRepository) Create(ctx context.Context, task *domain.ExternalDownloadTask) error {
	query := `
		INSERT INTO external_download_task (
			id, source_url, bucket, access_level, webhook_url, status,
			retry_count, max_retries, asset_key, last_error, version, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`

	_, err := s.db.ExecContext(
		ctx,
		query,
		task.ID,
		task.SourceURL,
		task.Bucket,
		task.Access,
		task.WebhookURL,
		task.Status,
		task.RetryCount,
		task.MaxRetries,
		task.AssetKey,
		task.LastError,
		task.Version,
		task.CreatedAt,
		task.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("error inserting download task: %w", err)
	}
	return nil
}

// FindByID finds a task by id
func (s *sqlDownloadTaskRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.ExternalDownloadTask, error) {
	query := `
		SELECT id, source_url, bucket, access_level, webhook_url, status,
		       retry_count, max_retries, asset_key, last_error, version, created_at, updated_at
		FROM external_download_task
		WHERE id = $1`

	var row dbDownloadTask
	err := s.db.QueryRowContext(ctx, query, id).Scan(
		&row.ID,
		&row.SourceURL,
		&row.Bucket,
		&row.Access,
		&row.WebhookURL,
		&row.Status,
		&row.RetryCount,
		&row.MaxRetries,
		&row.AssetKey,
		&row.LastError,
		&row.Version,
		&row.CreatedAt,
		&row.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrTaskNotFound
		}
		return nil, err
	}
	return row.ToDomain(), nil
}

// Update persists a mutated task guarded by its previous version
func (s *sqlDownloadTaskRepository) Update(ctx context.Context, task *domain.ExternalDownloadTask) error {
	query := `UPDATE external_download_task
              SET status = $1, retry_count = $2, asset_key = $3, last_error = $4,
                  version = version + 1, updated_at = $5
              WHERE id = $6 AND version = $7`

	result, err := s.db.ExecContext(
		ctx,
		query,
		task.Status,
		task.RetryCount,
		task.AssetKey,
		task.LastError,
		task.UpdatedAt,
		task.ID,
		task.Version,
	)
	if err != nil {
		return fmt.Errorf("error updating download task: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("error checking rows affected: %w", err)
	}
	if rows == 0 {
		return domain.ErrConflict
	}

	task.Version++
	return nil
}

// dbDownloadTask represents an external download task row
type dbDownloadTask struct {
	ID         uuid.UUID      `db:"id"`
	SourceURL  string         `db:"source_url"`
	Bucket     string         `db:"bucket"`
	Access     string         `db:"access_level"`
	WebhookURL sql.NullString `db:"webhook_url"`
	Status     string         `db:"status"`
	RetryCount int            `db:"retry_count"`
	MaxRetries int            `db:"max_retries"`
	AssetKey   sql.NullString `db:"asset_key"`
	LastError  sql.NullString `db:"last_error"`
	Version    int64          `db:"version"`
	CreatedAt  time.Time      `db:"created_at"`
	UpdatedAt  time.Time      `db:"updated_at"`
}

// ToDomain converts to domain.ExternalDownloadTask
func (r *dbDownloadTask) ToDomain() *domain.ExternalDownloadTask {
	return domain.RehydrateExternalDownloadTask(
		r.ID,
		r.SourceURL,
		r.Bucket,
		domain.AccessLevel(r.Access),
		nullableString(r.WebhookURL),
		domain.DownloadTaskStatus(r.Status),
		r.RetryCount,
		r.MaxRetries,
		nullableString(r.AssetKey),
		nullableString(r.LastError),
		r.Version,
		r.CreatedAt,
		r.UpdatedAt,
	)
}

func nullableString(s sql.NullString) *string {
	if !s.Valid {
		return nil
	}
	return &s.String
}
