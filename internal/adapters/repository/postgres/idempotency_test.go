package postgres_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/ryu-qqq/FileFlow-sub007/internal/adapters/repository/postgres"
	"github.com/ryu-qqq/FileFlow-sub007/internal/core/domain"
)

func TestSqlIdempotencyRepository(t *testing.T) {
	dbConnection, cleanup, truncate := postgres.NewTestDB(t)
	defer cleanup()
	ctx := context.Background()

	repo := postgres.NewSQLIdempotencyRepository(dbConnection)

	t.Run("Create and Find - Nominal case", func(t *testing.T) {
		// Arrange
		truncate()
		now := time.Now().Round(time.Microsecond)
		outboxID := uuid.New()
		record, err := domain.NewIdempotencyRecord("client-key-1", uuid.New(), &outboxID, now)
		require.NoError(t, err)

		// Act
		err = repo.Create(ctx, record)

		// Assert
		require.NoError(t, err)
		saved, err := repo.Find(ctx, "client-key-1")
		require.NoError(t, err)
		require.NotNil(t, saved)
		require.Equal(t, record.Key, saved.Key)
		require.Equal(t, record.AggregateID, saved.AggregateID)
		require.NotNil(t, saved.OutboxID)
		require.Equal(t, outboxID, *saved.OutboxID)
	})

	t.Run("Find - Miss is not an error", func(t *testing.T) {
		// Arrange
		truncate()

		// Act
		saved, err := repo.Find(ctx, "never-seen")

		// Assert
		require.NoError(t, err)
		require.Nil(t, saved)
	})

	t.Run("Create - Duplicate key is a conflict", func(t *testing.T) {
		// Arrange
		truncate()
		now := time.Now().Round(time.Microsecond)
		first, err := domain.NewIdempotencyRecord("client-key-1", uuid.New(), nil, now)
		require.NoError(t, err)
		require.NoError(t, repo.Create(ctx, first))

		second, err := domain.NewIdempotencyRecord("client-key-1", uuid.New(), nil, now)
		require.NoError(t, err)

		// Act
		err = repo.Create(ctx, second)

		// Assert
		require.ErrorIs(t, err, domain.ErrConflict)
		saved, err := repo.Find(ctx, "client-key-1")
		require.NoError(t, err)
		require.Equal(t, first.AggregateID, saved.AggregateID)
	})
}
