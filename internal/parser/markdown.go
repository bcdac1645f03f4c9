package parser

import (
	"bytes"
	"errors"
	"io"
	"regexp"
	"sort"
	"strconv"
	"unicode/utf8"

	"github.com/adrg/frontmatter"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/text"

	"github.com/dgallion1/markchap/internal/doctree"
)

var errInvalidUTF8 = errors.New("invalid UTF-8")

// MarkdownParser handles Markdown files using goldmark.
//
// goldmark is only used to locate headings, images and raw HTML; the document
// itself is kept as source bytes split at those locations, so rendering it
// back reproduces every untouched byte.
type MarkdownParser struct{}

type frontMatterMeta struct {
	Title string `yaml:"title" toml:"title" json:"title"`
}

// span is a byte range of the body that becomes a non-opaque node.
type span struct {
	start, stop int
	kind        doctree.NodeKind
	level       int
}

func (p *MarkdownParser) Parse(r io.Reader, filename string) (*doctree.Document, error) {
	src, err := io.ReadAll(r)
	if err != nil {
		return nil, &ParseError{Path: filename, Err: err}
	}
	if !utf8.Valid(src) {
		return nil, &ParseError{Path: filename, Line: firstInvalidLine(src), Err: errInvalidUTF8}
	}

	var meta frontMatterMeta
	body, err := frontmatter.Parse(bytes.NewReader(src), &meta)
	// A leading "---" may be a thematic break rather than front matter. When
	// the block does not decode, or the body is not a suffix of the source,
	// treat the whole file as Markdown.
	if err != nil || !bytes.HasSuffix(src, body) {
		body = src
		meta = frontMatterMeta{}
	}
	base := len(src) - len(body)

	md := goldmark.New(goldmark.WithExtensions(extension.GFM))
	root := md.Parser().Parse(text.NewReader(body))

	spans := collectSpans(root, body)
	sort.SliceStable(spans, func(i, j int) bool { return spans[i].start < spans[j].start })

	lines := newLineIndex(src)
	doc := &doctree.Document{
		Path:        filename,
		Title:       meta.Title,
		FrontMatter: bytes.Clone(src[:base]),
	}

	addNode := func(kind doctree.NodeKind, level, start, stop int) {
		doc.Nodes = append(doc.Nodes, doctree.Node{
			Kind:  kind,
			Index: len(doc.Nodes),
			Line:  lines.line(base + start),
			Level: level,
			Raw:   string(body[start:stop]),
		})
	}

	cursor := 0
	for _, s := range spans {
		if s.start < cursor {
			continue
		}
		if s.start > cursor {
			addNode(doctree.NodeOpaque, 0, cursor, s.start)
		}
		addNode(s.kind, s.level, s.start, s.stop)
		cursor = s.stop
	}
	if cursor < len(body) {
		addNode(doctree.NodeOpaque, 0, cursor, len(body))
	}

	return doc, nil
}

// collectSpans walks the goldmark AST in document order.
func collectSpans(root ast.Node, src []byte) []span {
	var spans []span
	// lastStop trails the most recent inline text so images with an empty
	// alt can be located by searching forward from it.
	lastStop := 0

	ast.Walk(root, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch node := n.(type) {
		case *ast.Heading:
			start, stop, ok := blockRange(node.Lines())
			if !ok {
				start, stop, ok = emptyHeadingRange(src, lastStop, node.Level)
			}
			if ok {
				spans = append(spans, span{start: start, stop: stop, kind: doctree.NodeHeading, level: node.Level})
				lastStop = stop
			}
			return ast.WalkSkipChildren, nil

		case *ast.Image:
			start, stop, ok := altRange(node, src, lastStop)
			if !ok {
				idx := bytes.Index(src[lastStop:], []byte("![]"))
				if idx < 0 {
					return ast.WalkSkipChildren, nil
				}
				start = lastStop + idx + 2
				stop = start
			}
			spans = append(spans, span{start: start, stop: stop, kind: doctree.NodeImage})
			lastStop = stop
			return ast.WalkSkipChildren, nil

		case *ast.HTMLBlock:
			start, stop, ok := blockRange(node.Lines())
			if node.HasClosure() {
				if !ok {
					start = node.ClosureLine.Start
				}
				stop = max(stop, node.ClosureLine.Stop)
				ok = true
			}
			if ok {
				spans = append(spans, commentSpans(src[start:stop], start)...)
				lastStop = stop
			}

		case *ast.RawHTML:
			if start, stop, ok := blockRange(node.Segments); ok {
				spans = append(spans, commentSpans(src[start:stop], start)...)
				lastStop = stop
			}

		case *ast.FencedCodeBlock, *ast.CodeBlock:
			if _, stop, ok := blockRange(node.Lines()); ok {
				lastStop = max(lastStop, stop)
			}

		case *ast.Text:
			lastStop = max(lastStop, node.Segment.Stop)
		}
		return ast.WalkContinue, nil
	})
	return spans
}

// blockRange returns the byte range covered by a set of line segments.
func blockRange(lines *text.Segments) (start, stop int, ok bool) {
	if lines == nil || lines.Len() == 0 {
		return 0, 0, false
	}
	first := lines.At(0)
	last := lines.At(lines.Len() - 1)
	return first.Start, last.Stop, true
}

// emptyHeadingPatterns[level] matches an ATX heading with no content. Group 1
// is the opening sequence, group 2 an optional closing sequence and group 3
// trailing blanks.
var emptyHeadingPatterns = func() [7]*regexp.Regexp {
	var res [7]*regexp.Regexp
	for level := 1; level <= 6; level++ {
		res[level] = regexp.MustCompile(`(?m)^[ \t>]*(#{` + strconv.Itoa(level) + `})([ \t]+#+)?([ \t]*)\r?$`)
	}
	return res
}()

// emptyHeadingRange locates an empty ATX heading at or after from. goldmark
// records no segment for it, so the node is placed after the opening
// sequence: over the trailing blanks, or zero-width before a closing
// sequence.
func emptyHeadingRange(src []byte, from, level int) (start, stop int, ok bool) {
	if level < 1 || level > 6 || from > len(src) {
		return 0, 0, false
	}
	m := emptyHeadingPatterns[level].FindSubmatchIndex(src[from:])
	if m == nil {
		return 0, 0, false
	}
	start = from + m[3]
	if m[4] >= 0 {
		return start, start, true
	}
	return start, from + m[7], true
}

// altRange returns the source range of an image's alt text: everything
// between "![" and "]", so inline markup around the text stays inside it.
func altRange(img *ast.Image, src []byte, from int) (start, stop int, ok bool) {
	start, stop, ok = textRange(img)
	if !ok {
		return 0, 0, false
	}
	if open := bytes.LastIndex(src[:start], []byte("![")); open >= 0 && open+2 >= from {
		start = open + 2
	}
	if end := bytes.IndexByte(src[stop:], ']'); end >= 0 {
		stop += end
	}
	return start, stop, true
}

// textRange spans an image's first to last descendant text segment.
func textRange(img *ast.Image) (start, stop int, ok bool) {
	start, stop = -1, -1
	_ = ast.Walk(img, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering || n == img {
			return ast.WalkContinue, nil
		}
		var segStart, segStop int
		switch c := n.(type) {
		case *ast.Text:
			segStart, segStop = c.Segment.Start, c.Segment.Stop
		case *ast.RawHTML:
			s, e, found := blockRange(c.Segments)
			if !found {
				return ast.WalkContinue, nil
			}
			segStart, segStop = s, e
		default:
			return ast.WalkContinue, nil
		}
		if start < 0 || segStart < start {
			start = segStart
		}
		if segStop > stop {
			stop = segStop
		}
		return ast.WalkContinue, nil
	})
	return start, stop, start >= 0
}

// lineIndex maps byte offsets to 1-based line numbers.
type lineIndex []int

func newLineIndex(src []byte) lineIndex {
	starts := lineIndex{0}
	for i, b := range src {
		if b == '\n' {
			starts = append(starts, i+1)
		}
	}
	return starts
}

func (li lineIndex) line(offset int) int {
	return sort.Search(len(li), func(i int) bool { return li[i] > offset })
}

func firstInvalidLine(src []byte) int {
	line := 1
	for len(src) > 0 {
		r, size := utf8.DecodeRune(src)
		if r == utf8.RuneError && size <= 1 {
			return line
		}
		if r == '\n' {
			line++
		}
		src = src[size:]
	}
	return line
}
