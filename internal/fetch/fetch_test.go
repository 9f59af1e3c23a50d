// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package fetch

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/hatebu-clipper/pkg/types"
)

func TestHTTPFetcher(t *testing.T) {
	var gotUA string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
		switch r.URL.Path {
		case "/ok":
			w.Header().Set("Content-Type", "text/html; charset=utf-8")
			w.Write([]byte("<html><body><h1>Hello</h1></body></html>"))
		case "/sjis":
			w.Header().Set("Content-Type", "text/html; charset=Shift_JIS")
			// "日本" in Shift_JIS.
			w.Write([]byte{0x93, 0xfa, 0x96, 0x7b})
		case "/missing":
			http.NotFound(w, r)
		case "/broken":
			w.WriteHeader(http.StatusBadGateway)
		}
	}))
	defer ts.Close()

	f := NewHTTPFetcher(types.HTTPConfig{UserAgent: "hatebu-clipper/test"})

	tests := []struct {
		name    string
		path    string
		want    string
		wantErr string
	}{
		{"success", "/ok", "<html><body><h1>Hello</h1></body></html>", ""},
		{"decodes declared charset", "/sjis", "日本", ""},
		{"not found", "/missing", "", "HTTP 404"},
		{"bad gateway", "/broken", "", "HTTP 502"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := f.Fetch(context.Background(), ts.URL+tt.path)
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, string(got))
			assert.Equal(t, "hatebu-clipper/test", gotUA)
		})
	}
}

func TestHTTPFetcher_Timeout(t *testing.T) {
	release := make(chan struct{})
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer ts.Close()
	defer close(release)

	f := NewHTTPFetcher(types.HTTPConfig{Timeout: 50 * time.Millisecond})
	_, err := f.Fetch(context.Background(), ts.URL)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "HTTP request")
}

func TestHTTPFetcher_BodySizeLimit(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		switch r.URL.Path {
		case "/exact":
			w.Write([]byte(strings.Repeat("a", 16)))
		case "/over":
			w.Write([]byte(strings.Repeat("a", 17)))
		}
	}))
	defer ts.Close()

	f := NewHTTPFetcher(types.HTTPConfig{})
	f.maxBody = 16

	got, err := f.Fetch(context.Background(), ts.URL+"/exact")
	require.NoError(t, err)
	assert.Len(t, got, 16)

	got, err = f.Fetch(context.Background(), ts.URL+"/over")
	require.ErrorIs(t, err, ErrBodyTooLarge)
	assert.Nil(t, got)
}

func TestHTTPFetcher_InvalidURL(t *testing.T) {
	f := NewHTTPFetcher(types.HTTPConfig{})
	_, err := f.Fetch(context.Background(), "://not a url")
	require.Error(t, err)
}

func TestNewHTTPFetcher_DefaultTimeout(t *testing.T) {
	f := NewHTTPFetcher(types.HTTPConfig{})
	assert.Equal(t, DefaultTimeout, f.client.Timeout)
}

func TestBrowserFetcher_Options(t *testing.T) {
	f := NewBrowserFetcher(types.HTTPConfig{UserAgent: "ua"}, "/opt/chrome")
	assert.Equal(t, DefaultTimeout, f.cfg.Timeout)
	assert.Equal(t, "/opt/chrome", f.ChromePath)

	base := len(NewBrowserFetcher(types.HTTPConfig{}, "").allocatorOptions())
	assert.Equal(t, base+2, len(f.allocatorOptions()), "exec path and user agent add one option each")
}
