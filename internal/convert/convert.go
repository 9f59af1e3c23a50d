// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package convert turns fetched page content into Markdown. Backends share
// the Converter interface: the built-in goquery renderer, and markitdown
// run inside a container.
package convert

import (
	"fmt"
	"path/filepath"
	"strings"
)

// DefaultHint is the file name hint passed with fetched pages. Its extension
// tells backends nothing about the content, so they sniff it.
const DefaultHint = "page.data"

// Converter transforms raw content into Markdown text. hint is a file name
// whose extension may identify the content type.
type Converter interface {
	Convert(content []byte, hint string) (string, error)
}

// Func adapts an ordinary function to Converter.
type Func func(content []byte, hint string) (string, error)

// Convert implements Converter.
func (f Func) Convert(content []byte, hint string) (string, error) { return f(content, hint) }

// Safe calls c and turns a panic inside the backend into an error, so a
// misbehaving converter costs one item rather than the whole run.
func Safe(c Converter, content []byte, hint string) (out string, err error) {
	defer func() {
		if r := recover(); r != nil {
			out = ""
			err = fmt.Errorf("converter panic: %v", r)
		}
	}()
	return c.Convert(content, hint)
}

// isPlainText reports whether hint names content that is already Markdown
// or plain text.
func isPlainText(hint string) bool {
	switch strings.ToLower(filepath.Ext(hint)) {
	case ".md", ".markdown", ".txt":
		return true
	}
	return false
}
