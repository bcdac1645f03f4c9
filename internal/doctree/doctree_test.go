package doctree

import "testing"

func sampleDocument() *Document {
	return &Document{
		Path:        "ch1.md",
		FrontMatter: []byte("---\ntitle: One\n---\n"),
		Nodes: []Node{
			{Kind: NodeOpaque, Index: 0, Line: 4, Raw: "# "},
			{Kind: NodeHeading, Index: 1, Line: 4, Level: 1, Raw: "Intro"},
			{Kind: NodeOpaque, Index: 2, Line: 4, Raw: "\n\n!["},
			{Kind: NodeImage, Index: 3, Line: 6, Raw: "kbd"},
			{Kind: NodeOpaque, Index: 4, Line: 6, Raw: "](kbd.png)\n"},
		},
	}
}

func TestDocument_Render(t *testing.T) {
	doc := sampleDocument()
	want := "---\ntitle: One\n---\n# Intro\n\n![kbd](kbd.png)\n"
	if got := string(doc.Render()); got != want {
		t.Errorf("expected %q, got %q", want, got)
	}
}

func TestDocument_CloneIsIndependent(t *testing.T) {
	doc := sampleDocument()
	clone := doc.Clone()
	clone.Nodes[1].Raw = "1 Intro"
	clone.FrontMatter[0] = '+'

	if doc.Nodes[1].Raw != "Intro" {
		t.Errorf("expected original heading untouched, got %q", doc.Nodes[1].Raw)
	}
	if doc.FrontMatter[0] != '-' {
		t.Error("expected original front matter untouched")
	}
}

func TestDocument_Count(t *testing.T) {
	doc := sampleDocument()
	if n := doc.Count(NodeHeading); n != 1 {
		t.Errorf("expected 1 heading, got %d", n)
	}
	if n := doc.Count(NodeOpaque); n != 3 {
		t.Errorf("expected 3 opaque nodes, got %d", n)
	}
	if n := doc.Count(NodeRawHTML); n != 0 {
		t.Errorf("expected 0 raw html nodes, got %d", n)
	}
}

func TestNodeKind_String(t *testing.T) {
	tests := map[NodeKind]string{
		NodeOpaque:  "opaque",
		NodeHeading: "heading",
		NodeImage:   "image",
		NodeRawHTML: "raw_html",
	}
	for k, want := range tests {
		if got := k.String(); got != want {
			t.Errorf("expected %q, got %q", want, got)
		}
	}
}
