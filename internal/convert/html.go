// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package convert

import (
	"bytes"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// droppedElements never contribute readable text.
var droppedElements = []string{
	"script", "style", "noscript", "iframe", "svg", "canvas",
	"form", "button", "nav", "footer", "template", "head",
}

var (
	spaceRun   = regexp.MustCompile(`[ \t\r\n\f]+`)
	blankLines = regexp.MustCompile(`\n{3,}`)
)

// HTMLConverter renders HTML as Markdown using goquery. It prefers the
// page's <article> or <main> element and falls back to <body>.
type HTMLConverter struct{}

// Convert implements Converter.
func (HTMLConverter) Convert(content []byte, hint string) (string, error) {
	if isPlainText(hint) {
		return string(content), nil
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(content))
	if err != nil {
		return "", fmt.Errorf("parsing HTML: %w", err)
	}
	doc.Find(strings.Join(droppedElements, ",")).Remove()

	root := doc.Find("article").First()
	if root.Length() == 0 {
		root = doc.Find("main").First()
	}
	if root.Length() == 0 {
		root = doc.Find("body").First()
	}
	if root.Length() == 0 {
		root = doc.Selection
	}

	var r renderer
	for _, n := range root.Nodes {
		r.children(n)
	}
	return normalize(r.b.String()), nil
}

// PageTitle returns the trimmed <title> of an HTML document, or "".
func PageTitle(content []byte) string {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(content))
	if err != nil {
		return ""
	}
	return strings.TrimSpace(spaceRun.ReplaceAllString(doc.Find("title").First().Text(), " "))
}

// renderer accumulates Markdown for a subtree.
type renderer struct {
	b         bytes.Buffer
	listDepth int
}

func (r *renderer) children(n *html.Node) {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		r.node(c)
	}
}

func (r *renderer) node(n *html.Node) {
	switch n.Type {
	case html.TextNode:
		r.text(n.Data)
	case html.ElementNode:
		r.element(n)
	case html.DocumentNode:
		r.children(n)
	}
}

func (r *renderer) text(s string) {
	s = spaceRun.ReplaceAllString(s, " ")
	if s == "" {
		return
	}
	if r.atLineStart() {
		s = strings.TrimLeft(s, " ")
	}
	r.b.WriteString(s)
}

func (r *renderer) atLineStart() bool {
	out := r.b.Bytes()
	return len(out) == 0 || out[len(out)-1] == '\n'
}

// block ends the current paragraph.
func (r *renderer) block() {
	trimmed := bytes.TrimRight(r.b.Bytes(), " ")
	r.b.Truncate(len(trimmed))
	switch {
	case len(trimmed) == 0:
	case bytes.HasSuffix(trimmed, []byte("\n\n")):
	case bytes.HasSuffix(trimmed, []byte("\n")):
		r.b.WriteByte('\n')
	default:
		r.b.WriteString("\n\n")
	}
}

// inline renders n's children in a fresh renderer and returns the result on
// one line.
func (r *renderer) inline(n *html.Node) string {
	sub := renderer{listDepth: r.listDepth}
	sub.children(n)
	return strings.TrimSpace(spaceRun.ReplaceAllString(sub.b.String(), " "))
}

// nested renders n's children as blocks in a fresh renderer.
func (r *renderer) nested(n *html.Node, depth int) string {
	sub := renderer{listDepth: depth}
	sub.children(n)
	return strings.Trim(blankLines.ReplaceAllString(sub.b.String(), "\n\n"), "\n ")
}

func (r *renderer) element(n *html.Node) {
	switch n.DataAtom {
	case atom.H1, atom.H2, atom.H3, atom.H4, atom.H5, atom.H6:
		level, _ := strconv.Atoi(n.Data[1:])
		if text := r.inline(n); text != "" {
			r.block()
			r.b.WriteString(strings.Repeat("#", level) + " " + text)
			r.block()
		}
	case atom.P, atom.Div, atom.Section, atom.Article, atom.Main, atom.Header,
		atom.Aside, atom.Figure, atom.Figcaption, atom.Dl, atom.Dd, atom.Dt:
		r.block()
		r.children(n)
		r.block()
	case atom.Br:
		r.b.WriteString("\n")
	case atom.Hr:
		r.block()
		r.b.WriteString("---")
		r.block()
	case atom.Strong, atom.B:
		r.wrap(n, "**")
	case atom.Em, atom.I:
		r.wrap(n, "_")
	case atom.Del, atom.S:
		r.wrap(n, "~~")
	case atom.Code:
		if text := strings.TrimSpace(textContent(n)); text != "" {
			r.b.WriteString("`" + text + "`")
		}
	case atom.Pre:
		r.block()
		r.b.WriteString("```\n" + strings.Trim(textContent(n), "\n") + "\n```")
		r.block()
	case atom.A:
		r.link(n)
	case atom.Img:
		if src := attr(n, "src"); src != "" {
			r.b.WriteString("![" + attr(n, "alt") + "](" + src + ")")
		}
	case atom.Ul, atom.Ol:
		r.list(n)
	case atom.Blockquote:
		body := r.nested(n, r.listDepth)
		if body == "" {
			return
		}
		r.block()
		lines := strings.Split(body, "\n")
		for i, line := range lines {
			lines[i] = strings.TrimRight("> "+line, " ")
		}
		r.b.WriteString(strings.Join(lines, "\n"))
		r.block()
	case atom.Table:
		r.table(n)
	default:
		r.children(n)
	}
}

func (r *renderer) wrap(n *html.Node, marker string) {
	if text := r.inline(n); text != "" {
		r.b.WriteString(marker + text + marker)
	}
}

func (r *renderer) link(n *html.Node) {
	text := r.inline(n)
	href := strings.TrimSpace(attr(n, "href"))
	switch {
	case text == "":
	case href == "" || strings.HasPrefix(href, "#") || strings.HasPrefix(strings.ToLower(href), "javascript:"):
		r.b.WriteString(text)
	default:
		r.b.WriteString("[" + text + "](" + href + ")")
	}
}

func (r *renderer) list(n *html.Node) {
	ordered := n.DataAtom == atom.Ol
	indent := strings.Repeat("  ", r.listDepth)

	var items []string
	num := 1
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type != html.ElementNode || c.DataAtom != atom.Li {
			continue
		}
		body := r.nested(c, r.listDepth+1)
		if body == "" {
			continue
		}
		marker := "- "
		if ordered {
			marker = strconv.Itoa(num) + ". "
			num++
		}
		lines := strings.Split(body, "\n")
		var out []string
		for i, line := range lines {
			switch {
			case i == 0:
				out = append(out, indent+marker+line)
			case strings.TrimSpace(line) == "":
			case strings.HasPrefix(line, indent+"  "):
				out = append(out, line)
			default:
				out = append(out, indent+"  "+line)
			}
		}
		items = append(items, strings.Join(out, "\n"))
	}
	if len(items) == 0 {
		return
	}
	if r.listDepth == 0 {
		r.block()
	} else if !r.atLineStart() {
		r.b.WriteString("\n")
	}
	r.b.WriteString(strings.Join(items, "\n"))
	if r.listDepth == 0 {
		r.block()
	} else {
		r.b.WriteString("\n")
	}
}

func (r *renderer) table(n *html.Node) {
	var rows [][]string
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if c.Type != html.ElementNode {
				continue
			}
			if c.DataAtom != atom.Tr {
				walk(c)
				continue
			}
			var cells []string
			for td := c.FirstChild; td != nil; td = td.NextSibling {
				if td.Type == html.ElementNode && (td.DataAtom == atom.Td || td.DataAtom == atom.Th) {
					cells = append(cells, strings.ReplaceAll(r.inline(td), "|", `\|`))
				}
			}
			if len(cells) > 0 {
				rows = append(rows, cells)
			}
		}
	}
	walk(n)
	if len(rows) == 0 {
		return
	}

	width := 0
	for _, row := range rows {
		if len(row) > width {
			width = len(row)
		}
	}
	r.block()
	for i, row := range rows {
		for len(row) < width {
			row = append(row, "")
		}
		r.b.WriteString("| " + strings.Join(row, " | ") + " |\n")
		if i == 0 {
			r.b.WriteString("|" + strings.Repeat(" --- |", width) + "\n")
		}
	}
	r.block()
}

func textContent(n *html.Node) string {
	var b strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			b.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return b.String()
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

// normalize trims trailing spaces, collapses runs of blank lines, and ends
// the document with a single newline.
func normalize(s string) string {
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimRight(line, " \t")
	}
	out := blankLines.ReplaceAllString(strings.Join(lines, "\n"), "\n\n")
	out = strings.TrimSpace(out)
	if out == "" {
		return ""
	}
	return out + "\n"
}
