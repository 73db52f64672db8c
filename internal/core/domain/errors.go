package domain

import "errors"

// ErrInvalidState is an error thrown when an operation is invoked against an aggregate in the wrong state
var ErrInvalidState = errors.New("invalid state")

// ErrConflict is an error thrown when an optimistic-lock version check fails
var ErrConflict = errors.New("version conflict")

// ErrSessionNotFound is an error thrown when session is not found
var ErrSessionNotFound = errors.New("session not found")

// ErrTaskNotFound is an error thrown when a download task is not found
var ErrTaskNotFound = errors.New("download task not found")

// ErrOutboxNotFound is an error thrown when an outbox record is not found
var ErrOutboxNotFound = errors.New("outbox record not found")

// ErrPartNotFound is an error thrown when a part number is outside the session's declared range
var ErrPartNotFound = errors.New("part not found")

// ErrIncompleteUpload is an error thrown when completion is requested with parts still missing
var ErrIncompleteUpload = errors.New("incomplete upload")

// ErrDuplicatePart is an error thrown when parts are duplicated
var ErrDuplicatePart = errors.New("duplicate part")

// ErrMismatchETag is an error thrown when tags mismatch
var ErrMismatchETag = errors.New("mismatched ETag")

// ErrSessionExpired is an error thrown when a session is past its expiry
var ErrSessionExpired = errors.New("session expired")

// ErrMissingField is an error thrown when a required field is blank
var ErrMissingField = errors.New("missing required field")

// ErrInvalidFileSize is an error thrown when file size is not positive
var ErrInvalidFileSize = errors.New("invalid file size")

// ErrInvalidPartSize is an error thrown when part size is outside provider bounds
var ErrInvalidPartSize = errors.New("invalid part size")

// ErrTooManyParts is an error thrown when a file would need more parts than the provider allows
var ErrTooManyParts = errors.New("too many parts")

// ErrInvalidSourceURL is an error thrown when a download source URL is malformed
var ErrInvalidSourceURL = errors.New("invalid source url")

// ErrRetryExhausted is an error thrown when a retry is requested past the retry ceiling
var ErrRetryExhausted = errors.New("retry exhausted")
