// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package archive writes converted bookmarks as dated Markdown files, or
// prints them when no save directory is configured.
package archive

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/hatebu-clipper/pkg/types"
)

const (
	previewBegin = "--- Markdown Output ---"
	previewEnd   = "--- End of Markdown ---"
)

// Options configures a Writer.
type Options struct {
	// SaveDir is the target directory. Empty selects preview mode.
	SaveDir string
	// DryRun logs the would-be path without touching the filesystem.
	DryRun bool
	// Frontmatter prepends bookmark metadata as YAML.
	Frontmatter bool
	// Tag is recorded in the frontmatter.
	Tag string
}

// Writer persists artifacts. Out receives previews; Log receives status
// lines.
type Writer struct {
	opts Options
	out  io.Writer
	log  io.Writer
	now  func() time.Time
}

// NewWriter returns a Writer that prints previews to out and status to log.
func NewWriter(opts Options, out, log io.Writer) *Writer {
	if log == nil {
		log = io.Discard
	}
	return &Writer{opts: opts, out: out, log: log, now: time.Now}
}

// Write stores content for bm. Writing the same title twice on the same day
// overwrites the earlier file.
func (w *Writer) Write(bm types.Bookmark, content string) (types.Artifact, error) {
	now := w.now()
	if w.opts.Frontmatter {
		fm, err := frontmatter(bm, w.opts.Tag, now)
		if err != nil {
			return types.Artifact{}, err
		}
		content = fm + content
	}

	if w.opts.SaveDir == "" {
		fmt.Fprintln(w.out)
		fmt.Fprintln(w.out, previewBegin)
		fmt.Fprintln(w.out, strings.TrimRight(content, "\n"))
		fmt.Fprintln(w.out, previewEnd)
		fmt.Fprintln(w.out)
		return types.Artifact{Content: content, Previewed: true}, nil
	}

	name := ArtifactName(bm.Title, now)
	path := filepath.Join(w.opts.SaveDir, name)
	art := types.Artifact{Name: name, Path: path, Content: content}

	fmt.Fprintf(w.log, "Saving Markdown to %s...\n", path)
	if w.opts.DryRun {
		fmt.Fprintf(w.log, "DRY RUN: Skipping file write to %s.\n", path)
		art.DryRun = true
		return art, nil
	}

	if err := os.MkdirAll(w.opts.SaveDir, 0o755); err != nil {
		return types.Artifact{}, fmt.Errorf("creating directory %s: %w", w.opts.SaveDir, err)
	}
	if err := writeFile(path, content); err != nil {
		return types.Artifact{}, err
	}
	return art, nil
}

// writeFile replaces path through a temporary file in the same directory.
// An interrupted write leaves any previous file at path intact.
func writeFile(path, content string) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".clip-*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpPath := tmp.Name()

	_, writeErr := tmp.WriteString(content)
	closeErr := tmp.Close()
	if writeErr != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("writing %s: %w", path, writeErr)
	}
	if closeErr != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("closing temp file: %w", closeErr)
	}
	if err := os.Chmod(tmpPath, 0o644); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("setting permissions: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("renaming temp file: %w", err)
	}
	return nil
}

// clipHeader is the YAML frontmatter written ahead of the page content.
type clipHeader struct {
	Title        string   `yaml:"title"`
	Source       string   `yaml:"source"`
	Comment      string   `yaml:"comment,omitempty"`
	BookmarkedAt string   `yaml:"bookmarked_at,omitempty"`
	ClippedAt    string   `yaml:"clipped_at"`
	Tags         []string `yaml:"tags,omitempty"`
}

func frontmatter(bm types.Bookmark, tag string, now time.Time) (string, error) {
	h := clipHeader{
		Title:     bm.Title,
		Source:    bm.URL,
		Comment:   bm.Comment,
		ClippedAt: now.Format(time.RFC3339),
	}
	if !bm.CreatedAt.IsZero() {
		h.BookmarkedAt = bm.CreatedAt.Format(time.RFC3339)
	}
	if tag != "" {
		h.Tags = []string{tag}
	}

	data, err := yaml.Marshal(&h)
	if err != nil {
		return "", fmt.Errorf("marshaling frontmatter: %w", err)
	}
	return "---\n" + string(data) + "---\n\n", nil
}
