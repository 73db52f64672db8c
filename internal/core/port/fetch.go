package port

import (
	"context"
	"io"
)

// SourceFetcher retrieves an external URL for a download task. Implementations
// bound the call with their own timeout; a timed-out fetch is a plain failure.
type SourceFetcher interface {
	// Fetch returns the body, content length (-1 when unknown) and content type
	Fetch(ctx context.Context, url string) (io.ReadCloser, int64, string, error)
}
