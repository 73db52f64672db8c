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

type sqlMultipartSessionRepository struct {
	db SQLQuerier
}

// NewSQLMultipartSessionRepository creates sqlMultipartSessionRepository that implements port.MultipartUploadSessionRepository
func NewSQLMultipartSessionRepository(db SQLQuerier) port.MultipartUploadSessionRepository {
	return &sqlMultipartSessionRepository{db: db}
}

const multipartSessionColumns = `id, owner_id, bucket, storage_key, filename, content_type, size_bytes,
                  upload_id, part_size, total_parts, merged_etag, status, expires_at, completed_at,
                  version, created_at, updated_at`

// Create inserts a new multipart session and its part ledger placeholders
func (s *sqlMultipartSessionRepository) Create(ctx context.Context, session *domain.MultipartUploadSession) error {
	query := `
		INSERT INTO multipart_upload_session (
			id, owner_id, bucket, storage_key, filename, content_type, size_bytes,
			upload_id, part_size, total_parts, merged_etag, status, expires_at, completed_at,
			version, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)`

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
		session.UploadID,
		session.PartSize,
		session.TotalParts,
		session.MergedETag,
		session.Status,
		session.ExpiresAt,
		session.CompletedAt,
		session.Version,
		session.CreatedAt,
		session.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("error inserting multipart session: %w", err)
	}

	for _, part := range session.Parts() {
		if err := s.UpsertPart(ctx, part); err != nil {
			return err
		}
	}
	return nil
}

// FindByID finds a session with its part ledger
func (s *sqlMultipartSessionRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.MultipartUploadSession, error) {
	query := `SELECT ` + multipartSessionColumns + `
              FROM multipart_upload_session
              WHERE id = $1`

	var row dbMultipartSession
	err := s.db.QueryRowContext(ctx, query, id).Scan(
		&row.ID,
		&row.OwnerID,
		&row.Bucket,
		&row.StorageKey,
		&row.FileName,
		&row.ContentType,
		&row.SizeBytes,
		&row.UploadID,
		&row.PartSize,
		&row.TotalParts,
		&row.MergedETag,
		&row.Status,
		&row.ExpiresAt,
		&row.CompletedAt,
		&row.Version,
		&row.CreatedAt,
		&row.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrSessionNotFound
		}
		return nil, err
	}

	parts, err := s.findParts(ctx, id)
	if err != nil {
		return nil, err
	}
	return row.ToDomain(parts), nil
}

// Update persists a mutated session guarded by its previous version
func (s *sqlMultipartSessionRepository) Update(ctx context.Context, session *domain.MultipartUploadSession) error {
	query := `UPDATE multipart_upload_session
              SET upload_id = $1, merged_etag = $2, status = $3, completed_at = $4,
                  version = version + 1, updated_at = $5
              WHERE id = $6 AND version = $7`

	result, err := s.db.ExecContext(
		ctx,
		query,
		session.UploadID,
		session.MergedETag,
		session.Status,
		session.CompletedAt,
		session.UpdatedAt,
		session.ID,
		session.Version,
	)
	if err != nil {
		return fmt.Errorf("error updating multipart session: %w", err)
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

// UpsertPart writes one ledger row, overwriting previous upload evidence
func (s *sqlMultipartSessionRepository) UpsertPart(ctx context.Context, part domain.CompletedPart) error {
	query := `
		INSERT INTO multipart_upload_part (session_id, part_number, presigned_url, etag, size_bytes, uploaded_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (session_id, part_number)
		DO UPDATE SET presigned_url = EXCLUDED.presigned_url, etag = EXCLUDED.etag,
		              size_bytes = EXCLUDED.size_bytes, uploaded_at = EXCLUDED.uploaded_at`

	_, err := s.db.ExecContext(
		ctx,
		query,
		part.SessionID,
		part.PartNumber,
		part.PresignedURL,
		part.ETag,
		part.SizeBytes,
		part.UploadedAt,
	)
	if err != nil {
		return fmt.Errorf("error upserting part %d: %w", part.PartNumber, err)
	}
	return nil
}

// FindAllExpired finds non-terminal sessions past their expiry, ledgers included
func (s *sqlMultipartSessionRepository) FindAllExpired(ctx context.Context, now time.Time, limit int) ([]domain.MultipartUploadSession, error) {
	query := `SELECT ` + multipartSessionColumns + `
              FROM multipart_upload_session
              WHERE status IN ('preparing', 'active', 'uploading') AND expires_at < $1
              ORDER BY expires_at ASC
              LIMIT $2`

	rows, err := s.db.QueryContext(ctx, query, now, limit)
	if err != nil {
		return nil, fmt.Errorf("error querying expired sessions: %w", err)
	}
	defer rows.Close()

	var dbRows []dbMultipartSession
	for rows.Next() {
		var row dbMultipartSession
		if err := rows.Scan(
			&row.ID,
			&row.OwnerID,
			&row.Bucket,
			&row.StorageKey,
			&row.FileName,
			&row.ContentType,
			&row.SizeBytes,
			&row.UploadID,
			&row.PartSize,
			&row.TotalParts,
			&row.MergedETag,
			&row.Status,
			&row.ExpiresAt,
			&row.CompletedAt,
			&row.Version,
			&row.CreatedAt,
			&row.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("error scanning session: %w", err)
		}
		dbRows = append(dbRows, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating sessions: %w", err)
	}

	sessions := make([]domain.MultipartUploadSession, 0, len(dbRows))
	for i := range dbRows {
		parts, err := s.findParts(ctx, dbRows[i].ID)
		if err != nil {
			return nil, err
		}
		sessions = append(sessions, *dbRows[i].ToDomain(parts))
	}
	return sessions, nil
}

func (s *sqlMultipartSessionRepository) findParts(ctx context.Context, sessionID uuid.UUID) ([]domain.CompletedPart, error) {
	query := `
		SELECT session_id, part_number, presigned_url, etag, size_bytes, uploaded_at
		FROM multipart_upload_part
		WHERE session_id = $1
		ORDER BY part_number ASC`

	rows, err := s.db.QueryContext(ctx, query, sessionID)
	if err != nil {
		return nil, fmt.Errorf("error querying parts: %w", err)
	}
	defer rows.Close()

	var parts []domain.CompletedPart
	for rows.Next() {
		var p domain.CompletedPart
		var uploadedAt sql.NullTime
		if err := rows.Scan(&p.SessionID, &p.PartNumber, &p.PresignedURL, &p.ETag, &p.SizeBytes, &uploadedAt); err != nil {
			return nil, fmt.Errorf("error scanning part: %w", err)
		}
		if uploadedAt.Valid {
			p.UploadedAt = &uploadedAt.Time
		}
		parts = append(parts, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating parts: %w", err)
	}
	return parts, nil
}

// dbMultipartSession represents a multipart session row
type dbMultipartSession struct {
	ID          uuid.UUID      `db:"id"`
	OwnerID     string         `db:"owner_id"`
	Bucket      string         `db:"bucket"`
	StorageKey  string         `db:"storage_key"`
	FileName    string         `db:"filename"`
	ContentType string         `db:"content_type"`
	SizeBytes   int64          `db:"size_bytes"`
	UploadID    string         `db:"upload_id"`
	PartSize    int64          `db:"part_size"`
	TotalParts  int            `db:"total_parts"`
	MergedETag  sql.NullString `db:"merged_etag"`
	Status      string         `db:"status"`
	ExpiresAt   time.Time      `db:"expires_at"`
	CompletedAt sql.NullTime   `db:"completed_at"`
	Version     int64          `db:"version"`
	CreatedAt   time.Time      `db:"created_at"`
	UpdatedAt   time.Time      `db:"updated_at"`
}

// ToDomain converts to domain.MultipartUploadSession
func (r *dbMultipartSession) ToDomain(parts []domain.CompletedPart) *domain.MultipartUploadSession {
	var mergedETag *string
	if r.MergedETag.Valid {
		mergedETag = &r.MergedETag.String
	}
	var completedAt *time.Time
	if r.CompletedAt.Valid {
		completedAt = &r.CompletedAt.Time
	}
	return domain.RehydrateMultipartUploadSession(
		r.ID,
		r.OwnerID,
		r.Bucket,
		r.StorageKey,
		r.FileName,
		r.ContentType,
		r.SizeBytes,
		r.UploadID,
		r.PartSize,
		r.TotalParts,
		mergedETag,
		domain.SessionStatus(r.Status),
		r.ExpiresAt,
		completedAt,
		r.Version,
		r.CreatedAt,
		r.UpdatedAt,
		parts,
	)
}
