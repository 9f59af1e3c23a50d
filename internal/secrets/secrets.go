// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package secrets reads consumer credentials from a directory of plain-text
// files. Each file is one secret: the file name is the key and the trimmed
// contents are the value.
//
// Recognized keys: hatena-consumer-key, hatena-consumer-secret.
package secrets

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// DefaultDir is searched relative to the working directory.
const DefaultDir = ".secrets"

const (
	ConsumerKey    = "hatena-consumer-key"
	ConsumerSecret = "hatena-consumer-secret"
)

// Load reads every regular, non-hidden file in dir. A missing directory
// yields an empty map. Unreadable files are reported to log and skipped.
func Load(dir string, log io.Writer) (map[string]string, error) {
	if log == nil {
		log = io.Discard
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return map[string]string{}, nil
		}
		return nil, fmt.Errorf("reading secrets directory %s: %w", dir, err)
	}

	secrets := make(map[string]string)
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || strings.HasPrefix(name, ".") {
			continue
		}

		data, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			fmt.Fprintf(log, "warning: could not read secret %s: %v\n", name, err)
			continue
		}
		if value := strings.TrimSpace(string(data)); value != "" {
			secrets[name] = value
		}
	}
	return secrets, nil
}
