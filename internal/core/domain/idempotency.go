package domain

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// IdempotencyRecord maps a caller-supplied key to the aggregate (and outbox
// row, when one was created) produced by the original request. The key is
// unique at the storage layer; a racing duplicate create fails there and the
// caller re-reads this record instead.
type IdempotencyRecord struct {
	Key         string
	AggregateID uuid.UUID
	OutboxID    *uuid.UUID
	CreatedAt   time.Time
}

// NewIdempotencyRecord creates a record for a freshly created aggregate
func NewIdempotencyRecord(key string, aggregateID uuid.UUID, outboxID *uuid.UUID, now time.Time) (*IdempotencyRecord, error) {
	if key == "" {
		return nil, fmt.Errorf("%w: idempotency key", ErrMissingField)
	}
	return &IdempotencyRecord{
		Key:         key,
		AggregateID: aggregateID,
		OutboxID:    outboxID,
		CreatedAt:   now,
	}, nil
}
