package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"github.com/ryu-qqq/FileFlow-sub007/internal/core/domain"
	"github.com/ryu-qqq/FileFlow-sub007/internal/core/port"
)

type sqlIdempotencyRepository struct {
	db SQLQuerier
}

// NewSQLIdempotencyRepository creates sqlIdempotencyRepository that implements port.IdempotencyRepository
func NewSQLIdempotencyRepository(db SQLQuerier) port.IdempotencyRepository {
	return &sqlIdempotencyRepository{db: db}
}

// Find resolves a key to its original aggregate. Absence is (nil, nil).
func (s *sqlIdempotencyRepository) Find(ctx context.Context, key string) (*domain.IdempotencyRecord, error) {
	query := `SELECT key, aggregate_id, outbox_id, created_at FROM idempotency_key WHERE key = $1`

	var record domain.IdempotencyRecord
	err := s.db.QueryRowContext(ctx, query, key).Scan(
		&record.Key,
		&record.AggregateID,
		&record.OutboxID,
		&record.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &record, nil
}

// Create inserts a key. The primary key constraint turns a racing duplicate
// into domain.ErrConflict.
func (s *sqlIdempotencyRepository) Create(ctx context.Context, record *domain.IdempotencyRecord) error {
	query := `INSERT INTO idempotency_key (key, aggregate_id, outbox_id, created_at) VALUES ($1, $2, $3, $4)`

	_, err := s.db.ExecContext(ctx, query, record.Key, record.AggregateID, record.OutboxID, record.CreatedAt)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok {
			if pqErr.Code == "23505" {
				return fmt.Errorf("idempotency key %s : %w", record.Key, domain.ErrConflict)
			}
		}
		return err
	}
	return nil
}
