package doctree

import (
	"bytes"
	"slices"
)

// NodeKind classifies a node in a Document.
type NodeKind int

const (
	// NodeOpaque is content the numbering engine never inspects.
	NodeOpaque NodeKind = iota
	// NodeHeading holds the text content of a heading, without the "#" marker.
	NodeHeading
	// NodeImage holds the alt text of an image.
	NodeImage
	// NodeRawHTML holds a single HTML comment.
	NodeRawHTML
)

func (k NodeKind) String() string {
	switch k {
	case NodeHeading:
		return "heading"
	case NodeImage:
		return "image"
	case NodeRawHTML:
		return "raw_html"
	default:
		return "opaque"
	}
}

// Node is one entry of a Document's node arena.
type Node struct {
	Kind  NodeKind
	Index int    // Position in Document.Nodes
	Line  int    // 1-based source line where the node starts
	Level int    // Heading level 1-6, 0 for other kinds
	Raw   string // Current bytes of the node
}

// Document is a parsed Markdown file. Concatenating FrontMatter and every
// node's Raw in order yields the file contents exactly.
type Document struct {
	Path        string // Slash-separated path relative to the input root
	Title       string // From front matter, if any
	FrontMatter []byte // Leading front matter block, verbatim
	Nodes       []Node
}

// Corpus is the ordered set of documents numbered as one logical document.
type Corpus []*Document

// Clone returns a copy that shares no mutable state with d.
func (d *Document) Clone() *Document {
	return &Document{
		Path:        d.Path,
		Title:       d.Title,
		FrontMatter: bytes.Clone(d.FrontMatter),
		Nodes:       slices.Clone(d.Nodes),
	}
}

// Render serializes the document back to bytes.
func (d *Document) Render() []byte {
	var buf bytes.Buffer
	buf.Write(d.FrontMatter)
	for i := range d.Nodes {
		buf.WriteString(d.Nodes[i].Raw)
	}
	return buf.Bytes()
}

// Count returns how many nodes of the given kind the document holds.
func (d *Document) Count(kind NodeKind) int {
	n := 0
	for i := range d.Nodes {
		if d.Nodes[i].Kind == kind {
			n++
		}
	}
	return n
}
