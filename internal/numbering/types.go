package numbering

import "fmt"

// FigureKind distinguishes numbered images from numbered tables.
type FigureKind string

const (
	KindFigure FigureKind = "figure"
	KindTable  FigureKind = "table"
)

// Heading records what the engine decided for one heading node.
type Heading struct {
	Path     string
	Index    int // Node index within the document
	Line     int
	Level    int
	Text     string // Display text with any previous number stripped
	RawText  string // Text exactly as found
	Excluded bool
	// Number is nil for excluded headings; otherwise len(Number) == Level.
	Number    []int
	Label     string
	Preserved bool // Existing manual number kept verbatim
}

// Figure records the number assigned to an image or table marker.
type Figure struct {
	Kind     FigureKind
	Path     string
	Index    int
	Line     int
	Caption  string
	Chapter  []int // Copy of State.LastChapter at this node; nil before any heading
	Sequence int
	Label    string
}

// MalformedMarkerError reports a comment that looks like a table marker but
// has no caption. The node is left unmodified.
type MalformedMarkerError struct {
	Path string
	Line int
	Text string
}

func (e *MalformedMarkerError) Error() string {
	return fmt.Sprintf("%s:%d: malformed table marker %q (expected <!-- keyword: caption -->)", e.Path, e.Line, e.Text)
}

// Report lists everything one engine run assigned, in corpus order.
type Report struct {
	Headings []Heading
	Figures  []Figure
	Warnings []error
}
