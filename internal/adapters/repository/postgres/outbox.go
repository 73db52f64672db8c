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

type sqlOutboxRepository struct {
	db SQLQuerier
}

// NewSQLOutboxRepository creates sqlOutboxRepository that implements port.OutboxRepository
func NewSQLOutboxRepository(db SQLQuerier) port.OutboxRepository {
	return &sqlOutboxRepository{db: db}
}

const outboxColumns = `id, kind, aggregate_id, topic, reported_status, asset_key, error_message,
                  webhook_url, attempt, status, retry_count, last_error, claimed_at, processed_at, created_at`

// Create inserts a new outbox record
func (s *sqlOutboxRepository) Create(ctx context.Context, record *domain.OutboxRecord) error {
	query := `
		INSERT INTO outbox (
			id, kind, aggregate_id, topic, reported_status, asset_key, error_message,
			webhook_url, attempt, status, retry_count, last_error, claimed_at, processed_at, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)`

	_, err := s.db.ExecContext(
		ctx,
		query,
		record.ID,
		record.Kind,
		record.AggregateID,
		record.Topic,
		record.ReportedStatus,
		record.AssetKey,
		record.ErrorMessage,
		record.WebhookURL,
		record.Attempt,
		record.Status,
		record.RetryCount,
		record.LastError,
		record.ClaimedAt,
		record.ProcessedAt,
		record.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("error inserting outbox record: %w", err)
	}
	return nil
}

// FindByID finds a record by id
func (s *sqlOutboxRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.OutboxRecord, error) {
	query := `SELECT ` + outboxColumns + ` FROM outbox WHERE id = $1`

	var row dbOutboxRecord
	err := s.db.QueryRowContext(ctx, query, id).Scan(
		&row.ID,
		&row.Kind,
		&row.AggregateID,
		&row.Topic,
		&row.ReportedStatus,
		&row.AssetKey,
		&row.ErrorMessage,
		&row.WebhookURL,
		&row.Attempt,
		&row.Status,
		&row.RetryCount,
		&row.LastError,
		&row.ClaimedAt,
		&row.ProcessedAt,
		&row.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrOutboxNotFound
		}
		return nil, err
	}
	return row.ToDomain(), nil
}

// ClaimPending leases up to limit pending rows of one kind, oldest first.
// The inner select takes FOR UPDATE SKIP LOCKED so concurrent workers never
// block each other or claim the same row; a stale lease (claimed_at older
// than leaseExpiry) is reclaimable.
func (s *sqlOutboxRepository) ClaimPending(ctx context.Context, kind domain.OutboxKind, limit int, now, leaseExpiry time.Time) ([]domain.OutboxRecord, error) {
	query := `
		UPDATE outbox
		SET claimed_at = $1
		WHERE id IN (
			SELECT id FROM outbox
			WHERE kind = $2 AND status = 'pending'
			  AND (claimed_at IS NULL OR claimed_at < $3)
			ORDER BY created_at ASC
			LIMIT $4
			FOR UPDATE SKIP LOCKED
		)
		RETURNING ` + outboxColumns

	rows, err := s.db.QueryContext(ctx, query, now, kind, leaseExpiry, limit)
	if err != nil {
		return nil, fmt.Errorf("error claiming outbox records: %w", err)
	}
	defer rows.Close()

	var records []domain.OutboxRecord
	for rows.Next() {
		var row dbOutboxRecord
		if err := rows.Scan(
			&row.ID,
			&row.Kind,
			&row.AggregateID,
			&row.Topic,
			&row.ReportedStatus,
			&row.AssetKey,
			&row.ErrorMessage,
			&row.WebhookURL,
			&row.Attempt,
			&row.Status,
			&row.RetryCount,
			&row.LastError,
			&row.ClaimedAt,
			&row.ProcessedAt,
			&row.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("error scanning outbox record: %w", err)
		}
		records = append(records, *row.ToDomain())
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating outbox records: %w", err)
	}
	return records, nil
}

// MarkSent flips a pending row to sent. Zero rows affected means the row
// already went terminal under another worker.
func (s *sqlOutboxRepository) MarkSent(ctx context.Context, id uuid.UUID, processedAt time.Time) error {
	query := `UPDATE outbox
              SET status = 'sent', processed_at = $1, claimed_at = NULL
              WHERE id = $2 AND status = 'pending'`

	result, err := s.db.ExecContext(ctx, query, processedAt, id)
	if err != nil {
		return fmt.Errorf("error marking outbox record sent: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("error checking rows affected: %w", err)
	}
	if rows == 0 {
		return domain.ErrInvalidState
	}
	return nil
}

// ReleaseForRetry returns a claimed row to the pending pool
func (s *sqlOutboxRepository) ReleaseForRetry(ctx context.Context, id uuid.UUID, lastError string) error {
	query := `UPDATE outbox
              SET retry_count = retry_count + 1, last_error = $1, claimed_at = NULL
              WHERE id = $2 AND status = 'pending'`

	result, err := s.db.ExecContext(ctx, query, lastError, id)
	if err != nil {
		return fmt.Errorf("error releasing outbox record: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("error checking rows affected: %w", err)
	}
	if rows == 0 {
		return domain.ErrInvalidState
	}
	return nil
}

// MarkFailed flips a pending row to terminal failed
func (s *sqlOutboxRepository) MarkFailed(ctx context.Context, id uuid.UUID, lastError string, processedAt time.Time) error {
	query := `UPDATE outbox
              SET status = 'failed', retry_count = retry_count + 1, last_error = $1,
                  processed_at = $2, claimed_at = NULL
              WHERE id = $3 AND status = 'pending'`

	result, err := s.db.ExecContext(ctx, query, lastError, processedAt, id)
	if err != nil {
		return fmt.Errorf("error marking outbox record failed: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("error checking rows affected: %w", err)
	}
	if rows == 0 {
		return domain.ErrInvalidState
	}
	return nil
}

// dbOutboxRecord represents an outbox row
type dbOutboxRecord struct {
	ID             uuid.UUID      `db:"id"`
	Kind           string         `db:"kind"`
	AggregateID    uuid.UUID      `db:"aggregate_id"`
	Topic          string         `db:"topic"`
	ReportedStatus string         `db:"reported_status"`
	AssetKey       sql.NullString `db:"asset_key"`
	ErrorMessage   sql.NullString `db:"error_message"`
	WebhookURL     sql.NullString `db:"webhook_url"`
	Attempt        int            `db:"attempt"`
	Status         string         `db:"status"`
	RetryCount     int            `db:"retry_count"`
	LastError      sql.NullString `db:"last_error"`
	ClaimedAt      sql.NullTime   `db:"claimed_at"`
	ProcessedAt    sql.NullTime   `db:"processed_at"`
	CreatedAt      time.Time      `db:"created_at"`
}

// ToDomain converts to domain.OutboxRecord
func (r *dbOutboxRecord) ToDomain() *domain.OutboxRecord {
	var claimedAt, processedAt *time.Time
	if r.ClaimedAt.Valid {
		claimedAt = &r.ClaimedAt.Time
	}
	if r.ProcessedAt.Valid {
		processedAt = &r.ProcessedAt.Time
	}
	return domain.RehydrateOutboxRecord(
		r.ID,
		domain.OutboxKind(r.Kind),
		r.AggregateID,
		r.Topic,
		r.ReportedStatus,
		nullableString(r.AssetKey),
		nullableString(r.ErrorMessage),
		nullableString(r.WebhookURL),
		r.Attempt,
		domain.OutboxStatus(r.Status),
		r.RetryCount,
		nullableString(r.LastError),
		claimedAt,
		processedAt,
		r.CreatedAt,
	)
}
