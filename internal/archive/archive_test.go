// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package archive

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/hatebu-clipper/pkg/types"
)

var fixedNow = time.Date(2026, 10, 17, 9, 30, 0, 0, time.UTC)

func newTestWriter(opts Options) (*Writer, *bytes.Buffer, *bytes.Buffer) {
	var out, log bytes.Buffer
	w := NewWriter(opts, &out, &log)
	w.now = func() time.Time { return fixedNow }
	return w, &out, &log
}

func TestSanitize(t *testing.T) {
	tests := []struct {
		title string
		want  string
	}{
		{"Title/With:Bad*Chars", "TitleWithBadChars"},
		{`a\b"c<d>e|f?g`, "abcdefg"},
		{"Go 1.25 Release Notes", "Go 1.25 Release Notes"},
		{"trailing dots...", "trailing dots"},
		{"  leading space", "leading space"},
		{"tab\there\nnewline", "tabherenewline"},
		{"日本語のタイトル", "日本語のタイトル"},
		{"CON", "CON_"},
		{"lpt1", "lpt1_"},
		{"", "untitled"},
		{"???", "untitled"},
		{" . ", "untitled"},
	}
	for _, tt := range tests {
		t.Run(tt.title, func(t *testing.T) {
			assert.Equal(t, tt.want, Sanitize(tt.title))
		})
	}
}

func TestArtifactName(t *testing.T) {
	assert.Equal(t, "20261017_TitleWithBadChars.md", ArtifactName("Title/With:Bad*Chars", fixedNow))
	assert.Equal(t, "20261017_untitled.md", ArtifactName("", fixedNow))
}

func TestArtifactName_Truncates(t *testing.T) {
	name := ArtifactName(strings.Repeat("あ", 200), fixedNow)

	assert.LessOrEqual(t, len(name), maxNameBytes)
	assert.True(t, utf8.ValidString(name))
	assert.True(t, strings.HasPrefix(name, "20261017_あ"))
	assert.True(t, strings.HasSuffix(name, "あ.md"))
}

func TestWrite_SavesFile(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "vault", "clips")
	w, out, log := newTestWriter(Options{SaveDir: dir})

	art, err := w.Write(types.Bookmark{URL: "https://example.com", Title: "Title/With:Bad*Chars"}, "# Hello\n")
	require.NoError(t, err)

	wantPath := filepath.Join(dir, "20261017_TitleWithBadChars.md")
	assert.Equal(t, wantPath, art.Path)
	assert.Equal(t, "20261017_TitleWithBadChars.md", art.Name)
	assert.False(t, art.Previewed)
	assert.False(t, art.DryRun)

	data, err := os.ReadFile(wantPath)
	require.NoError(t, err)
	assert.Equal(t, "# Hello\n", string(data))
	assert.Empty(t, out.String())
	assert.Contains(t, log.String(), "Saving Markdown to "+wantPath)
}

func TestWrite_OverwritesSameDay(t *testing.T) {
	dir := t.TempDir()
	w, _, _ := newTestWriter(Options{SaveDir: dir})
	bm := types.Bookmark{URL: "https://example.com", Title: "Same"}

	_, err := w.Write(bm, "first")
	require.NoError(t, err)
	art, err := w.Write(bm, "second")
	require.NoError(t, err)

	data, err := os.ReadFile(art.Path)
	require.NoError(t, err)
	assert.Equal(t, "second", string(data))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestWrite_DryRun(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "never-created")
	w, out, log := newTestWriter(Options{SaveDir: dir, DryRun: true})

	art, err := w.Write(types.Bookmark{Title: "Page"}, "body")
	require.NoError(t, err)

	assert.True(t, art.DryRun)
	assert.Equal(t, filepath.Join(dir, "20261017_Page.md"), art.Path)
	assert.Contains(t, log.String(), "DRY RUN: Skipping file write to "+art.Path+".")
	assert.Empty(t, out.String())
	assert.NoDirExists(t, dir)
}

func TestWrite_Preview(t *testing.T) {
	for _, dryRun := range []bool{false, true} {
		w, out, _ := newTestWriter(Options{DryRun: dryRun})

		art, err := w.Write(types.Bookmark{Title: "Page"}, "# Page\n\nbody\n")
		require.NoError(t, err)

		assert.True(t, art.Previewed)
		assert.Empty(t, art.Path)
		assert.Equal(t, "\n--- Markdown Output ---\n# Page\n\nbody\n--- End of Markdown ---\n\n", out.String())
	}
}

func TestWrite_Frontmatter(t *testing.T) {
	w, out, _ := newTestWriter(Options{Frontmatter: true, Tag: "obsidian"})
	bm := types.Bookmark{
		URL:       "https://example.com/post",
		Title:     "A Post",
		Comment:   "read later",
		CreatedAt: time.Date(2026, 10, 1, 12, 0, 0, 0, time.UTC),
	}

	art, err := w.Write(bm, "body\n")
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(art.Content, "---\n"))

	parts := strings.SplitN(strings.TrimPrefix(art.Content, "---\n"), "---\n\n", 2)
	require.Len(t, parts, 2)
	assert.Equal(t, "body\n", parts[1])

	var got clipHeader
	require.NoError(t, yaml.Unmarshal([]byte(parts[0]), &got))
	assert.Equal(t, clipHeader{
		Title:        "A Post",
		Source:       "https://example.com/post",
		Comment:      "read later",
		BookmarkedAt: "2026-10-01T12:00:00Z",
		ClippedAt:    "2026-10-17T09:30:00Z",
		Tags:         []string{"obsidian"},
	}, got)
	assert.Contains(t, out.String(), "title: A Post")
}
