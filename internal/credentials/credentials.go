// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package credentials caches the OAuth access token pair on local disk so
// the authorization handshake only runs once.
package credentials

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/pdiddy/hatebu-clipper/pkg/types"
)

// DefaultPath is the token cache location relative to the working directory.
const DefaultPath = "tokens.json"

// Store reads and writes a single JSON credential file.
type Store struct {
	path string
	log  io.Writer
}

// NewStore returns a Store backed by path. Warnings about unusable cache
// content are written to log; a nil log discards them.
func NewStore(path string, log io.Writer) *Store {
	if path == "" {
		path = DefaultPath
	}
	if log == nil {
		log = io.Discard
	}
	return &Store{path: path, log: log}
}

// Path returns the backing file path.
func (s *Store) Path() string { return s.path }

// Load returns the cached pair, or nil when there is none. A missing file is
// the normal first-run condition and is not an error. A file that does not
// parse, or lacks either token, is treated the same as a missing one.
func (s *Store) Load() (*types.Credentials, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading credentials %s: %w", s.path, err)
	}

	var creds types.Credentials
	if err := json.Unmarshal(data, &creds); err != nil {
		fmt.Fprintf(s.log, "warning: ignoring unreadable credentials in %s: %v\n", s.path, err)
		return nil, nil
	}
	if !creds.Valid() {
		fmt.Fprintf(s.log, "warning: ignoring incomplete credentials in %s\n", s.path)
		return nil, nil
	}
	return &creds, nil
}

// Save overwrites the cache with creds, creating the file if needed.
func (s *Store) Save(creds types.Credentials) error {
	if !creds.Valid() {
		return fmt.Errorf("refusing to save incomplete credentials")
	}

	data, err := json.Marshal(creds)
	if err != nil {
		return fmt.Errorf("marshaling credentials: %w", err)
	}

	if dir := filepath.Dir(s.path); dir != "." {
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return fmt.Errorf("creating directory %s: %w", dir, err)
		}
	}
	if err := os.WriteFile(s.path, data, 0o600); err != nil {
		return fmt.Errorf("writing credentials %s: %w", s.path, err)
	}
	return nil
}
