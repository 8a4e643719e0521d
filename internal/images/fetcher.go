package images

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/url"
	"path"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
)

var (
	ErrNotImage = errors.New("not a supported image")
	ErrTooLarge = errors.New("upload exceeds size limit")
)

// Fetched is an image downloaded from a remote URL
type Fetched struct {
	Filename    string
	ContentType string
	Data        []byte
}

// Fetcher retrieves lot images from remote URLs
type Fetcher struct {
	client   *resty.Client
	maxBytes int64
}

// NewFetcher creates a new image fetcher. Bodies larger than maxBytes are
// rejected with ErrTooLarge; maxBytes <= 0 disables the limit.
func NewFetcher(maxBytes int64) *Fetcher {
	return &Fetcher{
		client:   resty.New().SetTimeout(30 * time.Second),
		maxBytes: maxBytes,
	}
}

// Fetch downloads rawURL. The file is named after the last path segment of
// the URL unless filename is set; either way it must carry an image extension
// so that lot grouping can see it.
func (f *Fetcher) Fetch(ctx context.Context, rawURL, filename string) (*Fetched, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("invalid image URL: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("invalid image URL %q: scheme must be http or https", rawURL)
	}

	if filename == "" {
		filename = path.Base(u.Path)
	}
	if !IsImage(filename) {
		return nil, fmt.Errorf("%w: %q", ErrNotImage, filename)
	}

	resp, err := f.client.R().SetContext(ctx).SetDoNotParseResponse(true).Get(u.String())
	if err != nil {
		return nil, fmt.Errorf("failed to fetch image: %w", err)
	}
	body := resp.RawBody()
	defer body.Close()

	if resp.IsError() {
		return nil, fmt.Errorf("image URL returned status %d", resp.StatusCode())
	}

	contentType := resp.Header().Get("Content-Type")
	if contentType != "" && !strings.HasPrefix(contentType, "image/") && !strings.HasPrefix(contentType, "application/octet-stream") {
		return nil, fmt.Errorf("%w: %s served %s", ErrNotImage, rawURL, contentType)
	}

	if f.maxBytes > 0 && resp.RawResponse.ContentLength > f.maxBytes {
		return nil, fmt.Errorf("%w: %s is %d bytes, limit is %d", ErrTooLarge, rawURL, resp.RawResponse.ContentLength, f.maxBytes)
	}

	var src io.Reader = body
	if f.maxBytes > 0 {
		src = io.LimitReader(body, f.maxBytes+1)
	}
	data, err := io.ReadAll(src)
	if err != nil {
		return nil, fmt.Errorf("failed to read image: %w", err)
	}
	if f.maxBytes > 0 && int64(len(data)) > f.maxBytes {
		return nil, fmt.Errorf("%w: %s is larger than %d bytes", ErrTooLarge, rawURL, f.maxBytes)
	}

	slog.Debug("Fetched image", "url", rawURL, "filename", filename, "size", len(data))
	return &Fetched{
		Filename:    filename,
		ContentType: contentType,
		Data:        data,
	}, nil
}
