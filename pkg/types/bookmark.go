// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import (
	"encoding/json"
	"strconv"
	"strings"
	"time"
)

// DefaultTitle is used for bookmarks whose entry carries no title.
const DefaultTitle = "No Title"

// Credentials is an OAuth access token pair. It is replaced wholesale by a
// new handshake, never edited in place.
type Credentials struct {
	Token       string `json:"oauth_token"`
	TokenSecret string `json:"oauth_token_secret"`
}

// Valid reports whether both halves of the pair are present.
func (c Credentials) Valid() bool {
	return c.Token != "" && c.TokenSecret != ""
}

// Bookmark is one remote bookmark matching the query tag.
type Bookmark struct {
	URL       string    `json:"url" yaml:"url"`
	Title     string    `json:"title" yaml:"title"`
	Comment   string    `json:"comment,omitempty" yaml:"comment,omitempty"`
	CreatedAt time.Time `json:"created_at,omitempty" yaml:"created_at,omitempty"`
}

// UnmarshalJSON decodes the search API shape, where URL and title live
// under "entry" and the comment and creation time sit alongside it.
// Fields of the wrong type decode as empty and unparseable times as zero.
// Only data that is not a JSON object is an error.
func (b *Bookmark) UnmarshalJSON(data []byte) error {
	var raw struct {
		Entry     json.RawMessage `json:"entry"`
		Comment   json.RawMessage `json:"comment"`
		CreatedAt json.RawMessage `json:"created_at"`
		Timestamp json.RawMessage `json:"timestamp"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	var entry map[string]json.RawMessage
	_ = json.Unmarshal(raw.Entry, &entry)

	*b = Bookmark{Comment: rawString(raw.Comment), Title: DefaultTitle}
	b.URL = strings.TrimSpace(rawString(entry["url"]))
	if t := strings.TrimSpace(rawString(entry["title"])); t != "" {
		b.Title = t
	}
	b.CreatedAt = parseTimestamp(raw.CreatedAt)
	if b.CreatedAt.IsZero() {
		b.CreatedAt = parseTimestamp(raw.Timestamp)
	}
	return nil
}

// rawString returns data as a string when it is a JSON string, else "".
func rawString(data json.RawMessage) string {
	var s string
	if json.Unmarshal(data, &s) != nil {
		return ""
	}
	return s
}

// parseTimestamp accepts an RFC 3339 string or a Unix epoch number and
// returns the zero time for anything else.
func parseTimestamp(data json.RawMessage) time.Time {
	s := strings.TrimSpace(string(data))
	if s == "" || s == "null" {
		return time.Time{}
	}
	if strings.HasPrefix(s, `"`) {
		parsed, err := time.Parse(time.RFC3339, rawString(data))
		if err != nil {
			return time.Time{}
		}
		return parsed
	}
	secs, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return time.Time{}
	}
	return time.Unix(int64(secs), 0)
}

// Artifact is the converted, persisted representation of one bookmark.
type Artifact struct {
	// Name is "<YYYYMMDD>_<sanitized-title>.md". Empty in preview mode.
	Name string
	// Path is Name joined onto the save directory. Empty in preview mode.
	Path string
	// Content is the Markdown that was (or would have been) written.
	Content string
	// Previewed is set when the content went to stdout instead of a file.
	Previewed bool
	// DryRun is set when the write was skipped.
	DryRun bool
}
