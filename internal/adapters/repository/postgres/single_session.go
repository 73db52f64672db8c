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

type sqlSingleSessionRepository struct {
	db SQLQuerier
}

// NewSQLSingleSessionRepository creates sqlSingleSessionRepository that implements port.SingleUploadSessionRepository
func NewSQLSingleSessionRepository(db SQLQuerier) port.SingleUploadSessionRepository {
	return &sqlSingleSessionRepository{db: db}
}

const singleSessionColumns = `id, owner_id, bucket, storage_key, filename, content_type, size_bytes,
                  presigned_url, etag, status, expires_at, completed_at, version, created_at, updated_at`

// Create inserts a new single upload session
func (s *sqlSingleSessionRepository) Create(ctx context.Context, session *domain.SingleUploadSession) error {
	query := `
		INSERT INTO single_upload_session (
			id, owner_id, bucket, storage_key, filename, content_type, size_bytes,
			presigned_url, etag, status, expires_at, completed_at, version, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)`

	_, err := s.db.ExecContext(
		ctx,
		query,
		session.ID,
		session.OwnerID,
		session.Bucket,
		session.StorageKey,
		session.FileName,
		session.ContentType,
		session.SizeBytes,
		session.PresignedURL,
		session.ETag,
		session.Status,
		session.ExpiresAt,
		session.CompletedAt,
		session.Version,
		session.CreatedAt,
		session.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("error inserting single upload session: %w", err)
	}
	return nil
}

// FindByID finds a session by id
func (s *sqlSingleSessionRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.SingleUploadSession, error) {
	query := `SELECT ` + singleSessionColumns + `
              FROM single_upload_session
              WHERE id = $1`

	row, err := scanSingleSession(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrSessionNotFound
		}
		return nil, err
	}
	return row.ToDomain(), nil
}

// Update persists a mutated session guarded by its previous version
func (s *sqlSingleSessionRepository) Update(ctx context.Context, session *domain.SingleUploadSession) error {
	query := `UPDATE single_upload_session
              SET presigned_url = $1, etag = $2, status = $3, completed_at = $4,
                  version = version + 1, updated_at = $5
              WHERE id = $6 AND version = $7`

	result, err := s.db.ExecContext(
		ctx,
		query,
		session.PresignedURL,
		session.ETag,
		session.Status,
		session.CompletedAt,
		session.UpdatedAt,
		session.ID,
		session.Version,
	)
	if err != nil {
		return fmt.Errorf("error updating single upload session: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("error checking rows affected: %w", err)
	}
	if rows == 0 {
		return domain.ErrConflict
	}

	session.Version++
	return nil
}

// FindAllExpired finds non-terminal sessions past their expiry
func (s *sqlSingleSessionRepository) FindAllExpired(ctx context.Context, now time.Time, limit int) ([]domain.SingleUploadSession, error) {
	query := `SELECT ` + singleSessionColumns + `
              FROM single_upload_session
              WHERE status IN ('preparing', 'active', 'uploading') AND expires_at < $1
              ORDER BY expires_at ASC
              LIMIT $2`

	rows, err := s.db.QueryContext(ctx, query, now, limit)
	if err != nil {
		return nil, fmt.Errorf("error querying expired sessions: %w", err)
	}
	defer rows.Close()

	var sessions []domain.SingleUploadSession
	for rows.Next() {
		var row dbSingleSession
		if err := rows.Scan(
			&row.ID,
			&row.OwnerID,
			&row.Bucket,
			&row.StorageKey,
			&row.FileName,
			&row.ContentType,
			&row.SizeBytes,
			&row.PresignedURL,
			&row.ETag,
			&row.Status,
			&row.ExpiresAt,
			&row.CompletedAt,
			&row.Version,
			&row.CreatedAt,
			&row.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("error scanning session: %w", err)
		}
		sessions = append(sessions, *row.ToDomain())
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating sessions: %w", err)
	}
	return sessions, nil
}

func scanSingleSession(r *sql.Row) (*dbSingleSession, error) {
	var row dbSingleSession
	err := r.Scan(
		&row.ID,
		&row.OwnerID,
		&row.Bucket,
		&row.StorageKey,
		&row.FileName,
		&row.ContentType,
		&row.SizeBytes,
		&row.PresignedURL,
		&row.ETag,
		&row.Status,
		&row.ExpiresAt,
		&row.CompletedAt,
		&row.Version,
		&row.CreatedAt,
		&row.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &row, nil
}

// dbSingleSession represents a single upload session row
type dbSingleSession struct {
	ID           uuid.UUID      `db:"id"`
	OwnerID      string         `db:"owner_id"`
	Bucket       string         `db:"bucket"`
	StorageKey   string         `db:"storage_key"`
	FileName     string         `db:"filename"`
	ContentType  string         `db:"content_type"`
	SizeBytes    int64          `db:"size_bytes"`
	PresignedURL string         `db:"presigned_url"`
	ETag         sql.NullString `db:"etag"`
	Status       string         `db:"status"`
	ExpiresAt    time.Time      `db:"expires_at"`
	CompletedAt  sql.NullTime   `db:"completed_at"`
	Version      int64          `db:"version"`
	CreatedAt    time.Time      `db:"created_at"`
	UpdatedAt    time.Time      `db:"updated_at"`
}

// ToDomain converts to domain.SingleUploadSession
func (r *dbSingleSession) ToDomain() *domain.SingleUploadSession {
	var etag *string
	if r.ETag.Valid {
		etag = &r.ETag.String
	}
	var completedAt *time.Time
	if r.CompletedAt.Valid {
		completedAt = &r.CompletedAt.Time
	}
	return domain.RehydrateSingleUploadSession(
		r.ID,
		r.OwnerID,
		r.Bucket,
		r.StorageKey,
		r.FileName,
		r.ContentType,
		r.SizeBytes,
		r.PresignedURL,
		etag,
		domain.SessionStatus(r.Status),
		r.ExpiresAt,
		completedAt,
		r.Version,
		r.CreatedAt,
		r.UpdatedAt,
	)
}
