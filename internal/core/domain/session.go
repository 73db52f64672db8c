package domain

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
)

// SessionStatus represents the status of an upload session
type SessionStatus string

const (
	SessionStatusPreparing SessionStatus = "preparing"
	SessionStatusActive    SessionStatus = "active"
	SessionStatusUploading SessionStatus = "uploading"
	SessionStatusCompleted SessionStatus = "completed"
	SessionStatusFailed    SessionStatus = "failed"
	SessionStatusExpired   SessionStatus = "expired"
)

// IsTerminal reports whether no further transitions are allowed
func (s SessionStatus) IsTerminal() bool {
	return s == SessionStatusCompleted || s == SessionStatusFailed || s == SessionStatusExpired
}

// Provider multipart constraints (S3-compatible stores)
const (
	MinPartSize int64 = 5 * 1024 * 1024
	MaxPartSize int64 = 5 * 1024 * 1024 * 1024
	MaxParts          = 10000
)

// SingleUploadSession tracks a single-shot presigned upload from issuance to
// the client reporting the ETag back.
type SingleUploadSession struct {
	ID           uuid.UUID
	OwnerID      string
	Bucket       string
	StorageKey   string
	FileName     string
	ContentType  string
	SizeBytes    int64
	PresignedURL string
	ETag         *string
	Status       SessionStatus
	ExpiresAt    time.Time
	CompletedAt  *time.Time
	Version      int64
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// NewSingleUploadSession creates a new session in PREPARING state. The storage
// key is derived from owner, date and session id and never changes afterwards.
func NewSingleUploadSession(ownerID, bucket, fileName, contentType string, sizeBytes int64, ttl time.Duration, now time.Time) (*SingleUploadSession, error) {
	if err := validateFileMeta(ownerID, bucket, fileName, contentType); err != nil {
		return nil, err
	}
	if sizeBytes <= 0 {
		return nil, ErrInvalidFileSize
	}

	id := uuid.New()
	return &SingleUploadSession{
		ID:          id,
		OwnerID:     ownerID,
		Bucket:      bucket,
		StorageKey:  buildStorageKey(ownerID, id, fileName, now),
		FileName:    fileName,
		ContentType: contentType,
		SizeBytes:   sizeBytes,
		Status:      SessionStatusPreparing,
		ExpiresAt:   now.Add(ttl),
		Version:     1,
		CreatedAt:   now,
		UpdatedAt:   now,
	}, nil
}

// RehydrateSingleUploadSession rebuilds a persisted session without applying defaults
func RehydrateSingleUploadSession(id uuid.UUID, ownerID, bucket, storageKey, fileName, contentType string, sizeBytes int64, presignedURL string, etag *string, status SessionStatus, expiresAt time.Time, completedAt *time.Time, version int64, createdAt, updatedAt time.Time) *SingleUploadSession {
	return &SingleUploadSession{
		ID:           id,
		OwnerID:      ownerID,
		Bucket:       bucket,
		StorageKey:   storageKey,
		FileName:     fileName,
		ContentType:  contentType,
		SizeBytes:    sizeBytes,
		PresignedURL: presignedURL,
		ETag:         etag,
		Status:       status,
		ExpiresAt:    expiresAt,
		CompletedAt:  completedAt,
		Version:      version,
		CreatedAt:    createdAt,
		UpdatedAt:    updatedAt,
	}
}

// Activate attaches the issued presigned URL and moves PREPARING to ACTIVE
func (s *SingleUploadSession) Activate(presignedURL string, now time.Time) error {
	if s.Status != SessionStatusPreparing {
		return fmt.Errorf("%w: cannot activate session in status %s", ErrInvalidState, s.Status)
	}
	if presignedURL == "" {
		return fmt.Errorf("%w: presigned url", ErrMissingField)
	}
	s.PresignedURL = presignedURL
	s.Status = SessionStatusActive
	s.UpdatedAt = now
	return nil
}

// Complete records the client-reported ETag and moves the session to COMPLETED.
// Only an ACTIVE, non-expired session can complete.
func (s *SingleUploadSession) Complete(etag string, now time.Time) ([]Event, error) {
	if s.Status != SessionStatusActive {
		return nil, fmt.Errorf("%w: cannot complete session in status %s", ErrInvalidState, s.Status)
	}
	if s.IsExpired(now) {
		return nil, ErrSessionExpired
	}
	etag = strings.Trim(etag, "\"")
	if etag == "" {
		return nil, fmt.Errorf("%w: etag", ErrMissingField)
	}

	s.ETag = &etag
	s.CompletedAt = &now
	s.Status = SessionStatusCompleted
	s.UpdatedAt = now

	return []Event{UploadCompleted{
		SessionID:  s.ID,
		UploadType: "single",
		Bucket:     s.Bucket,
		StorageKey: s.StorageKey,
		ETag:       etag,
		SizeBytes:  s.SizeBytes,
		At:         now,
	}}, nil
}

// Expire moves an ACTIVE session past its expiry to EXPIRED. Returns false
// without error when the session is already terminal or not yet expired.
func (s *SingleUploadSession) Expire(now time.Time) bool {
	if s.Status.IsTerminal() || !s.IsExpired(now) {
		return false
	}
	s.Status = SessionStatusExpired
	s.UpdatedAt = now
	return true
}

// Cancel moves a non-terminal session to FAILED. No-op on terminal sessions.
func (s *SingleUploadSession) Cancel(now time.Time) bool {
	if s.Status.IsTerminal() {
		return false
	}
	s.Status = SessionStatusFailed
	s.UpdatedAt = now
	return true
}

// IsExpired reports whether the session is past its expiry timestamp
func (s *SingleUploadSession) IsExpired(now time.Time) bool {
	return now.After(s.ExpiresAt)
}

// CompletedPart is one row of the multipart ledger. A placeholder is created
// per part number at session creation; MarkPartUploaded fills in the upload
// evidence. ETag empty means the part has not been reported yet.
type CompletedPart struct {
	SessionID    uuid.UUID
	PartNumber   int
	PresignedURL string
	ETag         string
	SizeBytes    int64
	UploadedAt   *time.Time
}

// Uploaded reports whether upload evidence has been recorded for this part
func (p CompletedPart) Uploaded() bool {
	return p.ETag != ""
}

// PartETag pairs a part number with the ETag a caller claims for it
type PartETag struct {
	PartNumber int
	ETag       string
}

// MultipartUploadSession owns the part ledger for one native multipart upload
type MultipartUploadSession struct {
	ID          uuid.UUID
	OwnerID     string
	Bucket      string
	StorageKey  string
	FileName    string
	ContentType string
	SizeBytes   int64
	UploadID    string
	PartSize    int64
	TotalParts  int
	MergedETag  *string
	Status      SessionStatus
	ExpiresAt   time.Time
	CompletedAt *time.Time
	Version     int64
	CreatedAt   time.Time
	UpdatedAt   time.Time

	parts map[int]*CompletedPart
}

// NewMultipartUploadSession creates a PREPARING session with one ledger
// placeholder per part number. Part size and part count are validated against
// the provider constraints before any storage call is made.
func NewMultipartUploadSession(ownerID, bucket, fileName, contentType string, sizeBytes, partSize int64, ttl time.Duration, now time.Time) (*MultipartUploadSession, error) {
	if err := validateFileMeta(ownerID, bucket, fileName, contentType); err != nil {
		return nil, err
	}
	if sizeBytes <= 0 {
		return nil, ErrInvalidFileSize
	}
	if partSize < MinPartSize || partSize > MaxPartSize {
		return nil, fmt.Errorf("%w: %d bytes", ErrInvalidPartSize, partSize)
	}

	totalParts := int((sizeBytes + partSize - 1) / partSize)
	if totalParts > MaxParts {
		return nil, fmt.Errorf("%w: %d", ErrTooManyParts, totalParts)
	}

	id := uuid.New()
	parts := make(map[int]*CompletedPart, totalParts)
	for n := 1; n <= totalParts; n++ {
		parts[n] = &CompletedPart{SessionID: id, PartNumber: n}
	}

	return &MultipartUploadSession{
		ID:          id,
		OwnerID:     ownerID,
		Bucket:      bucket,
		StorageKey:  buildStorageKey(ownerID, id, fileName, now),
		FileName:    fileName,
		ContentType: contentType,
		SizeBytes:   sizeBytes,
		PartSize:    partSize,
		TotalParts:  totalParts,
		Status:      SessionStatusPreparing,
		ExpiresAt:   now.Add(ttl),
		Version:     1,
		CreatedAt:   now,
		UpdatedAt:   now,
		parts:       parts,
	}, nil
}

// RehydrateMultipartUploadSession rebuilds a persisted session and its ledger
func RehydrateMultipartUploadSession(id uuid.UUID, ownerID, bucket, storageKey, fileName, contentType string, sizeBytes int64, uploadID string, partSize int64, totalParts int, mergedETag *string, status SessionStatus, expiresAt time.Time, completedAt *time.Time, version int64, createdAt, updatedAt time.Time, parts []CompletedPart) *MultipartUploadSession {
	ledger := make(map[int]*CompletedPart, len(parts))
	for i := range parts {
		p := parts[i]
		ledger[p.PartNumber] = &p
	}
	return &MultipartUploadSession{
		ID:          id,
		OwnerID:     ownerID,
		Bucket:      bucket,
		StorageKey:  storageKey,
		FileName:    fileName,
		ContentType: contentType,
		SizeBytes:   sizeBytes,
		UploadID:    uploadID,
		PartSize:    partSize,
		TotalParts:  totalParts,
		MergedETag:  mergedETag,
		Status:      status,
		ExpiresAt:   expiresAt,
		CompletedAt: completedAt,
		Version:     version,
		CreatedAt:   createdAt,
		UpdatedAt:   updatedAt,
		parts:       ledger,
	}
}

// Activate attaches the native upload id and the per-part presigned URLs and
// moves PREPARING to ACTIVE. Every declared part number must receive a URL.
func (s *MultipartUploadSession) Activate(uploadID string, partURLs map[int]string, now time.Time) error {
	if s.Status != SessionStatusPreparing {
		return fmt.Errorf("%w: cannot activate session in status %s", ErrInvalidState, s.Status)
	}
	if uploadID == "" {
		return fmt.Errorf("%w: upload id", ErrMissingField)
	}
	for n := 1; n <= s.TotalParts; n++ {
		if partURLs[n] == "" {
			return fmt.Errorf("%w: presigned url for part %d", ErrMissingField, n)
		}
	}

	s.UploadID = uploadID
	for n, u := range partURLs {
		if p, ok := s.parts[n]; ok {
			p.PresignedURL = u
		}
	}
	s.Status = SessionStatusActive
	s.UpdatedAt = now
	return nil
}

// MarkPartUploaded records upload evidence for one part. Re-reporting the same
// part overwrites the previous evidence. Allowed while ACTIVE or UPLOADING;
// the first recorded part moves ACTIVE to UPLOADING.
func (s *MultipartUploadSession) MarkPartUploaded(partNumber int, etag string, sizeBytes int64, now time.Time) (*CompletedPart, error) {
	if s.Status != SessionStatusActive && s.Status != SessionStatusUploading {
		return nil, fmt.Errorf("%w: cannot record part in status %s", ErrInvalidState, s.Status)
	}
	part, ok := s.parts[partNumber]
	if !ok {
		return nil, fmt.Errorf("%w: part %d of %d", ErrPartNotFound, partNumber, s.TotalParts)
	}
	etag = strings.Trim(etag, "\"")
	if etag == "" {
		return nil, fmt.Errorf("%w: etag", ErrMissingField)
	}
	if sizeBytes < 1 {
		return nil, ErrInvalidFileSize
	}
	// every part but the last must honor the provider minimum
	if partNumber != s.TotalParts && sizeBytes < MinPartSize {
		return nil, fmt.Errorf("%w: part %d is %d bytes", ErrInvalidPartSize, partNumber, sizeBytes)
	}
	if sizeBytes > MaxPartSize {
		return nil, fmt.Errorf("%w: part %d is %d bytes", ErrInvalidPartSize, partNumber, sizeBytes)
	}

	part.ETag = etag
	part.SizeBytes = sizeBytes
	uploadedAt := now
	part.UploadedAt = &uploadedAt

	if s.Status == SessionStatusActive {
		s.Status = SessionStatusUploading
	}
	s.UpdatedAt = now

	copied := *part
	return &copied, nil
}

// VerifyParts checks caller-provided ETags against the ledger: every declared
// part must be recorded, no duplicates, and provided ETags must match.
func (s *MultipartUploadSession) VerifyParts(provided []PartETag) error {
	seen := make(map[int]string, len(provided))
	for _, p := range provided {
		if _, dup := seen[p.PartNumber]; dup {
			return fmt.Errorf("%w: part %d", ErrDuplicatePart, p.PartNumber)
		}
		seen[p.PartNumber] = strings.Trim(p.ETag, "\"")
	}

	for n := 1; n <= s.TotalParts; n++ {
		part, ok := s.parts[n]
		if !ok || !part.Uploaded() {
			return fmt.Errorf("%w: part %d not recorded", ErrIncompleteUpload, n)
		}
		want, ok := seen[n]
		if !ok {
			return fmt.Errorf("%w: part %d not provided", ErrIncompleteUpload, n)
		}
		if want != part.ETag {
			return fmt.Errorf("%w: part %d", ErrMismatchETag, n)
		}
	}
	return nil
}

// Complete records the provider-computed merged ETag and moves the session to
// COMPLETED. Every declared part must have recorded evidence.
func (s *MultipartUploadSession) Complete(mergedETag string, now time.Time) ([]Event, error) {
	if s.Status != SessionStatusActive && s.Status != SessionStatusUploading {
		return nil, fmt.Errorf("%w: cannot complete session in status %s", ErrInvalidState, s.Status)
	}
	if s.IsExpired(now) {
		return nil, ErrSessionExpired
	}
	for n := 1; n <= s.TotalParts; n++ {
		if p, ok := s.parts[n]; !ok || !p.Uploaded() {
			return nil, fmt.Errorf("%w: part %d not recorded", ErrIncompleteUpload, n)
		}
	}
	mergedETag = strings.Trim(mergedETag, "\"")
	if mergedETag == "" {
		return nil, fmt.Errorf("%w: merged etag", ErrMissingField)
	}

	s.MergedETag = &mergedETag
	s.CompletedAt = &now
	s.Status = SessionStatusCompleted
	s.UpdatedAt = now

	return []Event{UploadCompleted{
		SessionID:  s.ID,
		UploadType: "multipart",
		Bucket:     s.Bucket,
		StorageKey: s.StorageKey,
		ETag:       mergedETag,
		SizeBytes:  s.SizeBytes,
		At:         now,
	}}, nil
}

// Cancel moves a non-terminal session to FAILED. The caller is responsible for
// aborting the native upload at the provider. No-op on terminal sessions.
func (s *MultipartUploadSession) Cancel(now time.Time) bool {
	if s.Status.IsTerminal() {
		return false
	}
	s.Status = SessionStatusFailed
	s.UpdatedAt = now
	return true
}

// Expire moves a non-terminal session past its expiry to EXPIRED
func (s *MultipartUploadSession) Expire(now time.Time) bool {
	if s.Status.IsTerminal() || !s.IsExpired(now) {
		return false
	}
	s.Status = SessionStatusExpired
	s.UpdatedAt = now
	return true
}

// IsExpired reports whether the session is past its expiry timestamp
func (s *MultipartUploadSession) IsExpired(now time.Time) bool {
	return now.After(s.ExpiresAt)
}

// Parts returns the ledger ascending by part number, regardless of the order
// parts were recorded in.
func (s *MultipartUploadSession) Parts() []CompletedPart {
	out := make([]CompletedPart, 0, len(s.parts))
	for _, p := range s.parts {
		out = append(out, *p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].PartNumber < out[j].PartNumber })
	return out
}

// Part returns a copy of one ledger entry
func (s *MultipartUploadSession) Part(partNumber int) (CompletedPart, bool) {
	p, ok := s.parts[partNumber]
	if !ok {
		return CompletedPart{}, false
	}
	return *p, true
}

func validateFileMeta(ownerID, bucket, fileName, contentType string) error {
	if ownerID == "" {
		return fmt.Errorf("%w: owner id", ErrMissingField)
	}
	if bucket == "" {
		return fmt.Errorf("%w: bucket", ErrMissingField)
	}
	if fileName == "" {
		return fmt.Errorf("%w: file name", ErrMissingField)
	}
	if contentType == "" {
		return fmt.Errorf("%w: content type", ErrMissingField)
	}
	return nil
}

func buildStorageKey(ownerID string, id uuid.UUID, fileName string, now time.Time) string {
	return fmt.Sprintf("%s/%s/%s_%s", ownerID, now.UTC().Format("2006/01/02"), id.String(), fileName)
}
