package domain_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ryu-qqq/FileFlow-sub007/internal/core/domain"
)

func newActiveSingle(t *testing.T, ttl time.Duration) *domain.SingleUploadSession {
	t.Helper()
	now := time.Now()
	s, err := domain.NewSingleUploadSession("owner-1", "bucket", "photo.png", "image/png", 1024, ttl, now)
	require.NoError(t, err)
	require.NoError(t, s.Activate("https://minio.example.com/presigned", now))
	return s
}

func newActiveMultipart(t *testing.T, sizeBytes, partSize int64) *domain.MultipartUploadSession {
	t.Helper()
	now := time.Now()
	s, err := domain.NewMultipartUploadSession("owner-1", "bucket", "movie.mp4", "video/mp4", sizeBytes, partSize, time.Hour, now)
	require.NoError(t, err)

	partURLs := make(map[int]string, s.TotalParts)
	for n := 1; n <= s.TotalParts; n++ {
		partURLs[n] = "https://minio.example.com/part"
	}
	require.NoError(t, s.Activate("upload-1", partURLs, now))
	return s
}

func TestNewSingleUploadSession_StartsPreparing(t *testing.T) {
	now := time.Now()

	s, err := domain.NewSingleUploadSession("owner-1", "bucket", "photo.png", "image/png", 1024, time.Hour, now)

	require.NoError(t, err)
	assert.Equal(t, domain.SessionStatusPreparing, s.Status)
	assert.Equal(t, int64(1), s.Version)
	assert.Contains(t, s.StorageKey, "owner-1/")
	assert.Contains(t, s.StorageKey, s.ID.String())
	assert.Equal(t, now.Add(time.Hour), s.ExpiresAt)
}

func TestNewSingleUploadSession_RejectsMissingFields(t *testing.T) {
	now := time.Now()

	cases := []struct {
		name        string
		ownerID     string
		fileName    string
		contentType string
	}{
		{"no owner", "", "photo.png", "image/png"},
		{"no file name", "owner-1", "", "image/png"},
		{"no content type", "owner-1", "photo.png", ""},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := domain.NewSingleUploadSession(tc.ownerID, "bucket", tc.fileName, tc.contentType, 1024, time.Hour, now)
			require.ErrorIs(t, err, domain.ErrMissingField)
		})
	}
}

func TestNewSingleUploadSession_RejectsNonPositiveSize(t *testing.T) {
	_, err := domain.NewSingleUploadSession("owner-1", "bucket", "photo.png", "image/png", 0, time.Hour, time.Now())
	require.ErrorIs(t, err, domain.ErrInvalidFileSize)
}

func TestSingleUploadSession_Complete_TrimsETagQuotes(t *testing.T) {
	s := newActiveSingle(t, time.Hour)

	events, err := s.Complete(`"abc123"`, time.Now())

	require.NoError(t, err)
	assert.Equal(t, domain.SessionStatusCompleted, s.Status)
	require.NotNil(t, s.ETag)
	assert.Equal(t, "abc123", *s.ETag)
	require.Len(t, events, 1)

	completed, ok := events[0].(domain.UploadCompleted)
	require.True(t, ok)
	assert.Equal(t, s.ID, completed.SessionID)
	assert.Equal(t, "single", completed.UploadType)
}

func TestSingleUploadSession_Complete_RejectsNonActive(t *testing.T) {
	now := time.Now()
	s, err := domain.NewSingleUploadSession("owner-1", "bucket", "photo.png", "image/png", 1024, time.Hour, now)
	require.NoError(t, err)

	_, err = s.Complete("abc123", now)

	require.ErrorIs(t, err, domain.ErrInvalidState)
}

func TestSingleUploadSession_Complete_RejectsExpired(t *testing.T) {
	s := newActiveSingle(t, time.Minute)

	_, err := s.Complete("abc123", time.Now().Add(2*time.Minute))

	require.ErrorIs(t, err, domain.ErrSessionExpired)
	assert.Equal(t, domain.SessionStatusActive, s.Status)
}

func TestSingleUploadSession_Expire(t *testing.T) {
	s := newActiveSingle(t, time.Minute)

	assert.False(t, s.Expire(time.Now()), "not yet past expiry")
	assert.True(t, s.Expire(time.Now().Add(2*time.Minute)))
	assert.Equal(t, domain.SessionStatusExpired, s.Status)

	// terminal sessions stay put
	assert.False(t, s.Expire(time.Now().Add(3*time.Minute)))
}

func TestSingleUploadSession_Cancel(t *testing.T) {
	s := newActiveSingle(t, time.Hour)

	assert.True(t, s.Cancel(time.Now()))
	assert.Equal(t, domain.SessionStatusFailed, s.Status)
	assert.False(t, s.Cancel(time.Now()), "cancel is a no-op once terminal")
}

func TestNewMultipartUploadSession_DerivesPartCount(t *testing.T) {
	partSize := int64(5 * 1024 * 1024)

	s, err := domain.NewMultipartUploadSession("owner-1", "bucket", "movie.mp4", "video/mp4", 12*1024*1024, partSize, time.Hour, time.Now())

	require.NoError(t, err)
	assert.Equal(t, 3, s.TotalParts)
	assert.Len(t, s.Parts(), 3)
	for i, p := range s.Parts() {
		assert.Equal(t, i+1, p.PartNumber)
		assert.False(t, p.Uploaded())
	}
}

func TestNewMultipartUploadSession_RejectsBadPartSize(t *testing.T) {
	_, err := domain.NewMultipartUploadSession("owner-1", "bucket", "movie.mp4", "video/mp4", 100*1024*1024, domain.MinPartSize-1, time.Hour, time.Now())
	require.ErrorIs(t, err, domain.ErrInvalidPartSize)

	_, err = domain.NewMultipartUploadSession("owner-1", "bucket", "movie.mp4", "video/mp4", 100*1024*1024, domain.MaxPartSize+1, time.Hour, time.Now())
	require.ErrorIs(t, err, domain.ErrInvalidPartSize)
}

func TestNewMultipartUploadSession_RejectsTooManyParts(t *testing.T) {
	sizeBytes := domain.MinPartSize * (domain.MaxParts + 1)

	_, err := domain.NewMultipartUploadSession("owner-1", "bucket", "movie.mp4", "video/mp4", sizeBytes, domain.MinPartSize, time.Hour, time.Now())

	require.ErrorIs(t, err, domain.ErrTooManyParts)
}

func TestMultipartUploadSession_Activate_RequiresEveryPartURL(t *testing.T) {
	now := time.Now()
	s, err := domain.NewMultipartUploadSession("owner-1", "bucket", "movie.mp4", "video/mp4", 12*1024*1024, 5*1024*1024, time.Hour, now)
	require.NoError(t, err)

	err = s.Activate("upload-1", map[int]string{1: "u1", 2: "u2"}, now)

	require.ErrorIs(t, err, domain.ErrMissingField)
	assert.Equal(t, domain.SessionStatusPreparing, s.Status)
}

func TestMultipartUploadSession_MarkPartUploaded_OrdersLedger(t *testing.T) {
	s := newActiveMultipart(t, 15*1024*1024, 5*1024*1024)
	now := time.Now()

	// parts reported out of order
	for _, n := range []int{2, 1, 3} {
		_, err := s.MarkPartUploaded(n, "etag", 5*1024*1024, now)
		require.NoError(t, err)
	}

	parts := s.Parts()
	require.Len(t, parts, 3)
	assert.Equal(t, 1, parts[0].PartNumber)
	assert.Equal(t, 2, parts[1].PartNumber)
	assert.Equal(t, 3, parts[2].PartNumber)
	assert.Equal(t, domain.SessionStatusUploading, s.Status)
}

func TestMultipartUploadSession_MarkPartUploaded_ReReportOverwrites(t *testing.T) {
	s := newActiveMultipart(t, 15*1024*1024, 5*1024*1024)
	now := time.Now()

	_, err := s.MarkPartUploaded(1, "first", 5*1024*1024, now)
	require.NoError(t, err)
	_, err = s.MarkPartUploaded(1, "second", 6*1024*1024, now)
	require.NoError(t, err)

	part, ok := s.Part(1)
	require.True(t, ok)
	assert.Equal(t, "second", part.ETag)
	assert.Equal(t, int64(6*1024*1024), part.SizeBytes)
}

func TestMultipartUploadSession_MarkPartUploaded_UnknownPart(t *testing.T) {
	s := newActiveMultipart(t, 15*1024*1024, 5*1024*1024)

	_, err := s.MarkPartUploaded(4, "etag", 5*1024*1024, time.Now())

	require.ErrorIs(t, err, domain.ErrPartNotFound)
}

func TestMultipartUploadSession_MarkPartUploaded_MinimumAppliesToNonLastParts(t *testing.T) {
	s := newActiveMultipart(t, 15*1024*1024, 5*1024*1024)
	now := time.Now()

	_, err := s.MarkPartUploaded(1, "etag", 1024, now)
	require.ErrorIs(t, err, domain.ErrInvalidPartSize)

	_, err = s.MarkPartUploaded(3, "etag", 1024, now)
	require.NoError(t, err, "last part may be below the provider minimum")
}

func TestMultipartUploadSession_VerifyParts(t *testing.T) {
	s := newActiveMultipart(t, 10*1024*1024, 5*1024*1024)
	now := time.Now()
	_, err := s.MarkPartUploaded(1, "etag-1", 5*1024*1024, now)
	require.NoError(t, err)
	_, err = s.MarkPartUploaded(2, "etag-2", 5*1024*1024, now)
	require.NoError(t, err)

	t.Run("all parts match", func(t *testing.T) {
		err := s.VerifyParts([]domain.PartETag{
			{PartNumber: 1, ETag: `"etag-1"`},
			{PartNumber: 2, ETag: "etag-2"},
		})
		require.NoError(t, err)
	})

	t.Run("duplicate part", func(t *testing.T) {
		err := s.VerifyParts([]domain.PartETag{
			{PartNumber: 1, ETag: "etag-1"},
			{PartNumber: 1, ETag: "etag-1"},
		})
		require.ErrorIs(t, err, domain.ErrDuplicatePart)
	})

	t.Run("part not provided", func(t *testing.T) {
		err := s.VerifyParts([]domain.PartETag{{PartNumber: 1, ETag: "etag-1"}})
		require.ErrorIs(t, err, domain.ErrIncompleteUpload)
	})

	t.Run("etag mismatch", func(t *testing.T) {
		err := s.VerifyParts([]domain.PartETag{
			{PartNumber: 1, ETag: "etag-1"},
			{PartNumber: 2, ETag: "wrong"},
		})
		require.ErrorIs(t, err, domain.ErrMismatchETag)
	})
}

func TestMultipartUploadSession_Complete_RequiresEveryPart(t *testing.T) {
	s := newActiveMultipart(t, 10*1024*1024, 5*1024*1024)
	now := time.Now()
	_, err := s.MarkPartUploaded(1, "etag-1", 5*1024*1024, now)
	require.NoError(t, err)

	_, err = s.Complete("merged", now)

	require.ErrorIs(t, err, domain.ErrIncompleteUpload)
}

func TestMultipartUploadSession_Complete_Success(t *testing.T) {
	s := newActiveMultipart(t, 10*1024*1024, 5*1024*1024)
	now := time.Now()
	_, err := s.MarkPartUploaded(1, "etag-1", 5*1024*1024, now)
	require.NoError(t, err)
	_, err = s.MarkPartUploaded(2, "etag-2", 5*1024*1024, now)
	require.NoError(t, err)

	events, err := s.Complete(`"merged-etag"`, now)

	require.NoError(t, err)
	assert.Equal(t, domain.SessionStatusCompleted, s.Status)
	require.NotNil(t, s.MergedETag)
	assert.Equal(t, "merged-etag", *s.MergedETag)
	require.Len(t, events, 1)

	completed, ok := events[0].(domain.UploadCompleted)
	require.True(t, ok)
	assert.Equal(t, "multipart", completed.UploadType)
}

func TestRehydrateMultipartUploadSession_RestoresLedger(t *testing.T) {
	original := newActiveMultipart(t, 10*1024*1024, 5*1024*1024)
	now := time.Now()
	_, err := original.MarkPartUploaded(1, "etag-1", 5*1024*1024, now)
	require.NoError(t, err)

	restored := domain.RehydrateMultipartUploadSession(
		original.ID, original.OwnerID, original.Bucket, original.StorageKey,
		original.FileName, original.ContentType, original.SizeBytes,
		original.UploadID, original.PartSize, original.TotalParts,
		nil, original.Status, original.ExpiresAt, nil, original.Version,
		original.CreatedAt, original.UpdatedAt, original.Parts(),
	)

	require.Len(t, restored.Parts(), 2)
	part, ok := restored.Part(1)
	require.True(t, ok)
	assert.Equal(t, "etag-1", part.ETag)
	part, ok = restored.Part(2)
	require.True(t, ok)
	assert.False(t, part.Uploaded())
}
