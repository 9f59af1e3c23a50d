// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package convert

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const samplePage = `<html><head><title>  Sample
Page </title><style>p { color: red }</style></head><body>
<nav><a href="/">Home</a></nav>
<article>
<h1>Hello</h1>
<p>Some <strong>bold</strong> and <em>italic</em> text with a <a href="https://example.com">link</a>.</p>
<ul><li>one</li><li>two</li></ul>
<pre><code>x := 1</code></pre>
</article>
<script>alert(1)</script>
<footer>copyright</footer>
</body></html>`

func TestHTMLConverter(t *testing.T) {
	got, err := HTMLConverter{}.Convert([]byte(samplePage), DefaultHint)
	require.NoError(t, err)

	want := "# Hello\n\n" +
		"Some **bold** and _italic_ text with a [link](https://example.com).\n\n" +
		"- one\n- two\n\n" +
		"```\nx := 1\n```\n"
	assert.Equal(t, want, got)
}

func TestHTMLConverter_Elements(t *testing.T) {
	tests := []struct {
		name string
		html string
		want string
	}{
		{
			name: "falls back to body",
			html: `<body><h2>Title</h2><p>Body text.</p></body>`,
			want: "## Title\n\nBody text.\n",
		},
		{
			name: "prefers main over body chrome",
			html: `<body><div>sidebar</div><main><p>Content</p></main></body>`,
			want: "Content\n",
		},
		{
			name: "ordered list",
			html: `<ol><li>first</li><li>second</li></ol>`,
			want: "1. first\n2. second\n",
		},
		{
			name: "nested list",
			html: `<ul><li>a<ul><li>b</li></ul></li><li>c</li></ul>`,
			want: "- a\n  - b\n- c\n",
		},
		{
			name: "blockquote",
			html: `<blockquote><p>quoted</p><p>twice</p></blockquote>`,
			want: "> quoted\n>\n> twice\n",
		},
		{
			name: "table",
			html: `<table><tr><th>A</th><th>B</th></tr><tr><td>1</td><td>2|3</td></tr></table>`,
			want: "| A | B |\n| --- | --- |\n| 1 | 2\\|3 |\n",
		},
		{
			name: "image and inline code",
			html: `<p><img src="/a.png" alt="diagram"> run <code>go test</code></p>`,
			want: "![diagram](/a.png) run `go test`\n",
		},
		{
			name: "anchor and javascript links lose their target",
			html: `<p><a href="#top">Top</a> <a href="javascript:void(0)">Click</a></p>`,
			want: "Top Click\n",
		},
		{
			name: "horizontal rule and line break",
			html: `<p>a<br>b</p><hr><p>c</p>`,
			want: "a\nb\n\n---\n\nc\n",
		},
		{
			name: "whitespace collapses",
			html: "<p>  lots \n\n of   space  </p>",
			want: "lots of space\n",
		},
		{
			name: "empty document",
			html: `<html><body><script>x()</script></body></html>`,
			want: "",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := HTMLConverter{}.Convert([]byte(tt.html), DefaultHint)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestHTMLConverter_PlainTextHint(t *testing.T) {
	for _, hint := range []string{"note.md", "NOTE.MARKDOWN", "readme.txt"} {
		got, err := HTMLConverter{}.Convert([]byte("<b>kept</b>"), hint)
		require.NoError(t, err)
		assert.Equal(t, "<b>kept</b>", got, hint)
	}
}

func TestPageTitle(t *testing.T) {
	assert.Equal(t, "Sample Page", PageTitle([]byte(samplePage)))
	assert.Equal(t, "", PageTitle([]byte("<p>no title</p>")))
}

func TestSafe(t *testing.T) {
	panicky := Func(func([]byte, string) (string, error) {
		panic("index out of range")
	})
	out, err := Safe(panicky, []byte("x"), DefaultHint)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "converter panic")
	assert.Empty(t, out)

	failing := Func(func([]byte, string) (string, error) {
		return "", errors.New("unsupported format")
	})
	_, err = Safe(failing, nil, DefaultHint)
	assert.EqualError(t, err, "unsupported format")

	out, err = Safe(HTMLConverter{}, []byte("<p>ok</p>"), DefaultHint)
	require.NoError(t, err)
	assert.Equal(t, "ok\n", out)
}

// fakeRuntime implements container.Runtime for the markitdown backend.
type fakeRuntime struct {
	imageErr error
	output   string
	runErr   error
	gotInput string
}

func (f *fakeRuntime) Name() string             { return "docker" }
func (f *fakeRuntime) Available() bool          { return true }
func (f *fakeRuntime) ImageExists(string) error { return f.imageErr }

func (f *fakeRuntime) Run(_ context.Context, _ string, stdin io.Reader, stdout io.Writer) error {
	data, _ := io.ReadAll(stdin)
	f.gotInput = string(data)
	if f.runErr != nil {
		return f.runErr
	}
	_, err := io.WriteString(stdout, f.output)
	return err
}

func TestMarkitdownConverter(t *testing.T) {
	tests := []struct {
		name    string
		rt      *fakeRuntime
		wantOut string
		wantErr string
	}{
		{name: "success", rt: &fakeRuntime{output: "# Converted\n"}, wantOut: "# Converted\n"},
		{name: "container failure", rt: &fakeRuntime{runErr: errors.New("exit status 1")}, wantErr: "exit status 1"},
		{name: "empty output", rt: &fakeRuntime{}, wantErr: "empty output"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			conv, err := NewMarkitdownConverter(tt.rt)
			require.NoError(t, err)

			got, err := conv.Convert([]byte("<h1>Converted</h1>"), DefaultHint)
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantOut, got)
			assert.Equal(t, "<h1>Converted</h1>", tt.rt.gotInput)
		})
	}
}

func TestNewMarkitdownConverter_MissingImage(t *testing.T) {
	_, err := NewMarkitdownConverter(&fakeRuntime{imageErr: errors.New("no such image")})
	require.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), "markitdown image not available in docker"))
}
