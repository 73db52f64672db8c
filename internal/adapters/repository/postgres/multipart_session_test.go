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

func newStoredMultipartSession(t *testing.T, totalParts int, ttl time.Duration) *domain.MultipartUploadSession {
	t.Helper()
	now := time.Now().Round(time.Microsecond)
	partSize := int64(5 * 1024 * 1024)
	session, err := domain.NewMultipartUploadSession("owner-1", "fileflow", "movie.mp4", "video/mp4", partSize*int64(totalParts), partSize, ttl, now)
	require.NoError(t, err)

	partURLs := make(map[int]string, totalParts)
	for n := 1; n <= totalParts; n++ {
		partURLs[n] = "https://minio.example.com/part"
	}
	require.NoError(t, session.Activate("upload-1", partURLs, now))
	return session
}

func TestSqlMultipartSessionRepository(t *testing.T) {
	dbConnection, cleanup, truncate := postgres.NewTestDB(t)
	defer cleanup()
	ctx := context.Background()

	repo := postgres.NewSQLMultipartSessionRepository(dbConnection)

	t.Run("Create and FindByID - Loads the part ledger", func(t *testing.T) {
		// Arrange
		truncate()
		session := newStoredMultipartSession(t, 3, time.Hour)

		// Act
		err := repo.Create(ctx, session)

		// Assert
		require.NoError(t, err)
		saved, err := repo.FindByID(ctx, session.ID)
		require.NoError(t, err)
		require.Equal(t, session.ID, saved.ID)
		require.Equal(t, "upload-1", saved.UploadID)
		require.Equal(t, 3, saved.TotalParts)
		require.Len(t, saved.Parts(), 3)
		for i, part := range saved.Parts() {
			require.Equal(t, i+1, part.PartNumber)
			require.False(t, part.Uploaded())
			require.NotEmpty(t, part.PresignedURL)
		}
	})

	t.Run("FindByID - Not found", func(t *testing.T) {
		// Arrange
		truncate()

		// Act
		_, err := repo.FindByID(ctx, uuid.New())

		// Assert
		require.ErrorIs(t, err, domain.ErrSessionNotFound)
	})

	t.Run("UpsertPart - Records and overwrites evidence", func(t *testing.T) {
		// Arrange
		truncate()
		session := newStoredMultipartSession(t, 2, time.Hour)
		require.NoError(t, repo.Create(ctx, session))

		now := time.Now().Round(time.Microsecond)
		part, err := session.MarkPartUploaded(1, "first", 5*1024*1024, now)
		require.NoError(t, err)
		require.NoError(t, repo.UpsertPart(ctx, *part))

		// Act - re-report the same part with fresh evidence
		part, err = session.MarkPartUploaded(1, "second", 6*1024*1024, now)
		require.NoError(t, err)
		err = repo.UpsertPart(ctx, *part)

		// Assert
		require.NoError(t, err)
		saved, err := repo.FindByID(ctx, session.ID)
		require.NoError(t, err)
		ledger, ok := saved.Part(1)
		require.True(t, ok)
		require.Equal(t, "second", ledger.ETag)
		require.Equal(t, int64(6*1024*1024), ledger.SizeBytes)
		require.NotNil(t, ledger.UploadedAt)
	})

	t.Run("Update - Bumps version and persists merged etag", func(t *testing.T) {
		// Arrange
		truncate()
		session := newStoredMultipartSession(t, 2, time.Hour)
		require.NoError(t, repo.Create(ctx, session))

		now := time.Now().Round(time.Microsecond)
		for n := 1; n <= 2; n++ {
			part, err := session.MarkPartUploaded(n, "etag", 5*1024*1024, now)
			require.NoError(t, err)
			require.NoError(t, repo.UpsertPart(ctx, *part))
		}
		_, err := session.Complete("merged-etag", now)
		require.NoError(t, err)

		// Act
		err = repo.Update(ctx, session)

		// Assert
		require.NoError(t, err)
		require.Equal(t, int64(2), session.Version)
		saved, err := repo.FindByID(ctx, session.ID)
		require.NoError(t, err)
		require.Equal(t, domain.SessionStatusCompleted, saved.Status)
		require.NotNil(t, saved.MergedETag)
		require.Equal(t, "merged-etag", *saved.MergedETag)
	})

	t.Run("Update - Conflict on stale version", func(t *testing.T) {
		// Arrange
		truncate()
		session := newStoredMultipartSession(t, 2, time.Hour)
		require.NoError(t, repo.Create(ctx, session))

		stale, err := repo.FindByID(ctx, session.ID)
		require.NoError(t, err)

		require.True(t, session.Cancel(time.Now()))
		require.NoError(t, repo.Update(ctx, session))

		// Act
		stale.Cancel(time.Now())
		err = repo.Update(ctx, stale)

		// Assert
		require.ErrorIs(t, err, domain.ErrConflict)
	})

	t.Run("FindAllExpired - Loads ledgers of expired sessions", func(t *testing.T) {
		// Arrange
		truncate()

		expired := newStoredMultipartSession(t, 2, time.Millisecond)
		require.NoError(t, repo.Create(ctx, expired))

		alive := newStoredMultipartSession(t, 2, time.Hour)
		require.NoError(t, repo.Create(ctx, alive))

		// Act
		found, err := repo.FindAllExpired(ctx, time.Now().Add(time.Second), 10)

		// Assert
		require.NoError(t, err)
		require.Len(t, found, 1)
		require.Equal(t, expired.ID, found[0].ID)
		require.Len(t, found[0].Parts(), 2)
	})
}
