package fetch_test

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ryu-qqq/FileFlow-sub007/internal/adapters/fetch"
)

func TestHTTPFetcher_Fetch(t *testing.T) {
	ctx := context.Background()

	t.Run("Nominal case", func(t *testing.T) {
		// Arrange
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "image/jpeg; charset=utf-8")
			w.Write([]byte("jpeg-bytes"))
		}))
		defer server.Close()
		fetcher := fetch.NewHTTPFetcher(1024)

		// Act
		body, size, contentType, err := fetcher.Fetch(ctx, server.URL)

		// Assert
		require.NoError(t, err)
		defer body.Close()
		require.Equal(t, int64(len("jpeg-bytes")), size)
		require.Equal(t, "image/jpeg", contentType)
		data, err := io.ReadAll(body)
		require.NoError(t, err)
		require.Equal(t, "jpeg-bytes", string(data))
	})

	t.Run("Non-2xx status", func(t *testing.T) {
		// Arrange
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "gone", http.StatusNotFound)
		}))
		defer server.Close()
		fetcher := fetch.NewHTTPFetcher(1024)

		// Act
		_, _, _, err := fetcher.Fetch(ctx, server.URL)

		// Assert
		require.ErrorContains(t, err, "status 404")
	})

	t.Run("Declared oversize body is rejected up front", func(t *testing.T) {
		// Arrange
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Length", "2048")
			w.Write([]byte(strings.Repeat("x", 2048)))
		}))
		defer server.Close()
		fetcher := fetch.NewHTTPFetcher(1024)

		// Act
		_, _, _, err := fetcher.Fetch(ctx, server.URL)

		// Assert
		require.ErrorIs(t, err, fetch.ErrSourceTooLarge)
	})

	t.Run("Undeclared oversize body fails mid-stream", func(t *testing.T) {
		// Arrange - chunked response, no Content-Length
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			flusher := w.(http.Flusher)
			for i := 0; i < 64; i++ {
				w.Write([]byte(strings.Repeat("x", 64)))
				flusher.Flush()
			}
		}))
		defer server.Close()
		fetcher := fetch.NewHTTPFetcher(1024)

		body, size, _, err := fetcher.Fetch(ctx, server.URL)
		require.NoError(t, err)
		defer body.Close()
		require.Equal(t, int64(-1), size)

		// Act
		_, err = io.ReadAll(body)

		// Assert
		require.ErrorIs(t, err, fetch.ErrSourceTooLarge)
	})

	t.Run("Body at exactly the limit is allowed", func(t *testing.T) {
		// Arrange
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(strings.Repeat("x", 1024)))
		}))
		defer server.Close()
		fetcher := fetch.NewHTTPFetcher(1024)

		body, _, _, err := fetcher.Fetch(ctx, server.URL)
		require.NoError(t, err)
		defer body.Close()

		// Act
		data, err := io.ReadAll(body)

		// Assert
		require.NoError(t, err)
		require.Len(t, data, 1024)
	})
}
