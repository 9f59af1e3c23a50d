// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package hatena talks to Hatena Bookmark: the OAuth 1.0a handshake, the
// tag search used to enumerate bookmarks, and bookmark deletion.
package hatena

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/dghubble/oauth1"

	"github.com/pdiddy/hatebu-clipper/internal/httputil"
	"github.com/pdiddy/hatebu-clipper/pkg/types"
)

// ErrMalformedResponse marks a search response that is not valid JSON.
var ErrMalformedResponse = errors.New("malformed search response")

// Endpoints lists the Hatena URLs the client and authenticator talk to.
type Endpoints struct {
	RequestToken string
	Authorize    string
	AccessToken  string
	Search       string
	Bookmark     string
}

// DefaultEndpoints returns the production Hatena endpoints.
func DefaultEndpoints() Endpoints {
	return Endpoints{
		RequestToken: "https://www.hatena.com/oauth/initiate",
		Authorize:    "https://www.hatena.ne.jp/oauth/authorize",
		AccessToken:  "https://www.hatena.com/oauth/token",
		Search:       "https://b.hatena.ne.jp/my/search/json",
		Bookmark:     "https://bookmark.hatenaapis.com/rest/1/my/bookmark",
	}
}

// Client performs authenticated calls against the bookmark API. The HTTP
// client is expected to sign requests; see NewSession.
type Client struct {
	http      *http.Client
	endpoints Endpoints
	cfg       types.HTTPConfig
	log       io.Writer
}

// NewClient wraps an already-authenticated HTTP client.
func NewClient(httpClient *http.Client, endpoints Endpoints, cfg types.HTTPConfig, log io.Writer) *Client {
	if log == nil {
		log = io.Discard
	}
	return &Client{http: httpClient, endpoints: endpoints, cfg: cfg, log: log}
}

// NewSession returns a Client whose requests are signed with the consumer
// credentials and the access token pair.
func NewSession(ctx context.Context, consumerKey, consumerSecret string, creds types.Credentials, endpoints Endpoints, cfg types.HTTPConfig, log io.Writer) *Client {
	config := oauth1.NewConfig(consumerKey, consumerSecret)
	httpClient := config.Client(ctx, oauth1.NewToken(creds.Token, creds.TokenSecret))
	return NewClient(httpClient, endpoints, cfg, log)
}

// searchResponse is the subset of /my/search/json the clipper reads.
type searchResponse struct {
	Bookmarks []json.RawMessage `json:"bookmarks"`
	Error     string            `json:"error"`
}

// Search returns the user's bookmarks matching tag, in API order. An empty
// or missing bookmarks array yields an empty slice and no error; an "error"
// field in that response is reported to the log writer. A body that is not
// JSON is returned as ErrMalformedResponse. Records are decoded one by one;
// a record that is not an object is logged and kept with an empty URL so the
// caller skips it.
func (c *Client) Search(ctx context.Context, tag string) ([]types.Bookmark, error) {
	reqURL := c.endpoints.Search + "?" + url.Values{"q": {tag}}.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	c.setHeaders(req)

	resp, err := httputil.DoWithRetry(ctx, c.http, req, c.cfg.MaxRetries, c.log)
	if err != nil {
		return nil, fmt.Errorf("search request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("search returned HTTP %d", resp.StatusCode)
	}

	var sr searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&sr); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}

	if len(sr.Bookmarks) == 0 {
		if sr.Error != "" {
			fmt.Fprintf(c.log, "error: API error: %s\n", sr.Error)
		}
		return []types.Bookmark{}, nil
	}

	bookmarks := make([]types.Bookmark, len(sr.Bookmarks))
	for i, raw := range sr.Bookmarks {
		if err := json.Unmarshal(raw, &bookmarks[i]); err != nil {
			fmt.Fprintf(c.log, "warning: bookmark %d: %v\n", i+1, err)
			bookmarks[i] = types.Bookmark{Title: types.DefaultTitle}
		}
	}
	return bookmarks, nil
}

// Delete removes the caller's bookmark for pageURL.
func (c *Client) Delete(ctx context.Context, pageURL string) error {
	reqURL := c.endpoints.Bookmark + "?" + url.Values{"url": {pageURL}}.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, reqURL, nil)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	c.setHeaders(req)

	resp, err := httputil.DoWithRetry(ctx, c.http, req, c.cfg.MaxRetries, c.log)
	if err != nil {
		return fmt.Errorf("delete request: %w", err)
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("delete returned HTTP %d", resp.StatusCode)
	}
	return nil
}

func (c *Client) setHeaders(req *http.Request) {
	if c.cfg.UserAgent != "" {
		req.Header.Set("User-Agent", c.cfg.UserAgent)
	}
	req.Header.Set("Accept", "application/json")
}
