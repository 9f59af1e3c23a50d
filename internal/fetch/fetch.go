// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package fetch retrieves the raw content of bookmarked pages.
package fetch

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"golang.org/x/net/html/charset"

	"github.com/pdiddy/hatebu-clipper/pkg/types"
)

// DefaultTimeout bounds a single page fetch.
const DefaultTimeout = 10 * time.Second

// maxBodySize caps how much of a page is read into memory.
const maxBodySize = 32 << 20

// ErrBodyTooLarge is returned for pages larger than the fetcher's size cap.
var ErrBodyTooLarge = errors.New("page exceeds size limit")

// Fetcher retrieves the content at a URL. Implementations return an error
// for transport failures and non-success statuses.
type Fetcher interface {
	Fetch(ctx context.Context, url string) ([]byte, error)
}

// HTTPFetcher fetches pages with a plain GET and normalizes the body to
// UTF-8 using the declared or sniffed charset.
type HTTPFetcher struct {
	client  *http.Client
	cfg     types.HTTPConfig
	maxBody int64
}

// NewHTTPFetcher returns a fetcher whose client enforces cfg.Timeout
// (DefaultTimeout when unset).
func NewHTTPFetcher(cfg types.HTTPConfig) *HTTPFetcher {
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	return &HTTPFetcher{
		client:  &http.Client{Timeout: cfg.Timeout},
		cfg:     cfg,
		maxBody: maxBodySize,
	}
}

// Fetch implements Fetcher.
func (f *HTTPFetcher) Fetch(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	if f.cfg.UserAgent != "" {
		req.Header.Set("User-Agent", f.cfg.UserAgent)
	}
	req.Header.Set("Accept", "text/html,application/xhtml+xml,text/plain;q=0.9,*/*;q=0.8")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("HTTP request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("HTTP %d from %s", resp.StatusCode, url)
	}

	raw, err := io.ReadAll(io.LimitReader(resp.Body, f.maxBody+1))
	if err != nil {
		return nil, fmt.Errorf("reading body: %w", err)
	}
	if int64(len(raw)) > f.maxBody {
		return nil, fmt.Errorf("%w: more than %d bytes from %s", ErrBodyTooLarge, f.maxBody, url)
	}

	utf8Body, err := charset.NewReader(bytes.NewReader(raw), resp.Header.Get("Content-Type"))
	if err != nil {
		return nil, fmt.Errorf("detecting charset: %w", err)
	}

	data, err := io.ReadAll(utf8Body)
	if err != nil {
		return nil, fmt.Errorf("decoding body: %w", err)
	}
	return data, nil
}
