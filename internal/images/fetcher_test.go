package images

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFetch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/lots/12-1.jpg":
			w.Header().Set("Content-Type", "image/jpeg")
			_, _ = w.Write([]byte("jpeg"))
		case "/page.jpg":
			w.Header().Set("Content-Type", "text/html")
			_, _ = w.Write([]byte("<html>"))
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	f := NewFetcher(0)
	ctx := context.Background()

	got, err := f.Fetch(ctx, srv.URL+"/lots/12-1.jpg", "")
	require.NoError(t, err)
	assert.Equal(t, "12-1.jpg", got.Filename)
	assert.Equal(t, "image/jpeg", got.ContentType)
	assert.Equal(t, []byte("jpeg"), got.Data)

	got, err = f.Fetch(ctx, srv.URL+"/lots/12-1.jpg", "13-1.jpg")
	require.NoError(t, err)
	assert.Equal(t, "13-1.jpg", got.Filename)

	tests := []struct {
		name     string
		url      string
		filename string
	}{
		{"missing", srv.URL + "/lots/99-1.jpg", ""},
		{"html", srv.URL + "/page.jpg", ""},
		{"no extension", srv.URL + "/lots/12-1", ""},
		{"bad scheme", "ftp://example.org/1-1.jpg", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.Fetch(ctx, tt.url, tt.filename)
			assert.Error(t, err)
		})
	}

	_, err = f.Fetch(ctx, srv.URL+"/page.jpg", "")
	assert.ErrorIs(t, err, ErrNotImage)
}

func TestFetchRejectsOversizedBody(t *testing.T) {
	payload := strings.Repeat("x", 64)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "image/jpeg")
		if r.URL.Path == "/chunked/1-1.jpg" {
			// flushing before the body is written forces chunked encoding
			w.(http.Flusher).Flush()
		}
		_, _ = w.Write([]byte(payload))
	}))
	defer srv.Close()

	ctx := context.Background()
	for _, p := range []string{"/sized/1-1.jpg", "/chunked/1-1.jpg"} {
		t.Run(p, func(t *testing.T) {
			_, err := NewFetcher(16).Fetch(ctx, srv.URL+p, "")
			assert.ErrorIs(t, err, ErrTooLarge)

			got, err := NewFetcher(64).Fetch(ctx, srv.URL+p, "")
			require.NoError(t, err)
			assert.Len(t, got.Data, 64)
		})
	}
}
