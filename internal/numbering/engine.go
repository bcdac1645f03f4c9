// Package numbering assigns chapter numbers to headings and chapter-scoped
// sequence numbers to figures and tables across an ordered corpus.
//
// The pass is strictly sequential: the number given to any node depends on
// every node before it, across file boundaries. Engine.Apply performs no I/O
// and never mutates its input.
package numbering

import (
	"errors"
	"regexp"
	"strconv"
	"strings"
	"unicode"

	"github.com/dgallion1/markchap/internal/doctree"
	"github.com/dgallion1/markchap/internal/label"
)

// Options configures an Engine.
type Options struct {
	ExcludedHeadings []string
	Chapter          *label.Template
	Figure           *label.Template
	Table            *label.Template
	// TableKeyword identifies unnumbered table markers: <!-- 表: caption -->.
	TableKeyword string
	// HeadingSeparator goes between a chapter label and the heading text.
	HeadingSeparator string
	// CaptionSeparator goes between a figure or table label and its caption.
	CaptionSeparator string
	// PreserveExisting keeps a manual heading number verbatim when it equals
	// the computed one.
	PreserveExisting bool
}

// Engine applies numbering to a corpus.
type Engine struct {
	opts         Options
	matcher      *Matcher
	headingDelim string
	captionDelim string
	marker       *regexp.Regexp
	markerPrefix *regexp.Regexp
}

// NewEngine validates opts and compiles the marker patterns.
func NewEngine(opts Options) (*Engine, error) {
	if opts.Chapter == nil || opts.Figure == nil || opts.Table == nil {
		return nil, errors.New("numbering: chapter, figure and table templates are required")
	}

	e := &Engine{
		opts:         opts,
		headingDelim: strings.TrimSpace(opts.HeadingSeparator),
		captionDelim: strings.TrimSpace(opts.CaptionSeparator),
	}
	// Manual numbers are commonly written "1.2. Title"; accept the dot even
	// when the configured separator is plain whitespace.
	if e.headingDelim == "" {
		e.headingDelim = "."
	}
	e.matcher = NewMatcher(opts.ExcludedHeadings, opts.Chapter, e.headingDelim)

	lead := opts.Table.Pattern()
	if kw := strings.TrimSpace(opts.TableKeyword); kw != "" {
		lead += "|" + regexp.QuoteMeta(kw)
	}
	sep := ":"
	if e.captionDelim != "" && e.captionDelim != ":" {
		sep = `(?::|` + regexp.QuoteMeta(e.captionDelim) + `)`
	}
	var err error
	e.marker, err = regexp.Compile(`(?s)^<!--\s*(?:` + lead + `)\s*` + sep + `\s*(.*?)\s*-->$`)
	if err != nil {
		return nil, err
	}
	e.markerPrefix, err = regexp.Compile(`(?s)^<!--\s*(?:` + lead + `)\s*(?:` + sep + `|-->|$)`)
	if err != nil {
		return nil, err
	}
	return e, nil
}

// Matcher returns the engine's exclusion matcher.
func (e *Engine) Matcher() *Matcher { return e.matcher }

// Apply numbers every document of corpus in order, starting from st. It
// returns new documents, the final state and a report of every assignment.
func (e *Engine) Apply(corpus doctree.Corpus, st State) (doctree.Corpus, State, Report) {
	st = st.Clone()
	out := make(doctree.Corpus, len(corpus))
	var rep Report
	for i, doc := range corpus {
		out[i] = e.applyDocument(doc.Clone(), &st, &rep)
	}
	return out, st, rep
}

func (e *Engine) applyDocument(doc *doctree.Document, st *State, rep *Report) *doctree.Document {
	for i := range doc.Nodes {
		n := &doc.Nodes[i]
		switch n.Kind {
		case doctree.NodeHeading:
			if n.Level < 1 || n.Level > MaxLevel {
				continue
			}
			rep.Headings = append(rep.Headings, e.heading(doc.Path, n, st))
		case doctree.NodeImage:
			rep.Figures = append(rep.Figures, e.image(doc.Path, n, st))
		case doctree.NodeRawHTML:
			fig, ok, err := e.table(doc.Path, n, st)
			if err != nil {
				rep.Warnings = append(rep.Warnings, err)
			}
			if ok {
				rep.Figures = append(rep.Figures, fig)
			}
		}
	}
	return doc
}

func (e *Engine) heading(path string, n *doctree.Node, st *State) Heading {
	lead, core, trail := splitSpace(n.Raw)
	existing, body, numbered := e.opts.Chapter.Cut(core, e.headingDelim)

	h := Heading{
		Path:    path,
		Index:   n.Index,
		Line:    n.Line,
		Level:   n.Level,
		Text:    body,
		RawText: n.Raw,
	}

	if e.matcher.Excluded(core) {
		h.Excluded = true
		if numbered && !e.opts.PreserveExisting {
			n.Raw = lead + body + trail
		}
		return h
	}

	h.Number = st.enter(n.Level)
	h.Label = e.opts.Chapter.FormatNumber(h.Number)
	if e.opts.PreserveExisting && numbered && existing == h.Label {
		h.Preserved = true
		return h
	}
	if core == "" && lead == "" {
		// Empty ATX heading: the label still needs a blank after the marker.
		lead = " "
	}
	n.Raw = lead + compose(h.Label, e.opts.HeadingSeparator, body) + trail
	return h
}

func (e *Engine) image(path string, n *doctree.Node, st *State) Figure {
	caption := n.Raw
	if _, rest, ok := e.opts.Figure.Cut(caption, e.captionDelim); ok {
		caption = rest
	}
	fig := e.assign(KindFigure, e.opts.Figure, path, n, st, strings.TrimSpace(caption))
	n.Raw = compose(fig.Label, e.opts.CaptionSeparator, fig.Caption)
	return fig
}

// table numbers a table marker comment. ok is false for comments that are
// not markers; err is set for comments that look like markers but are not.
func (e *Engine) table(path string, n *doctree.Node, st *State) (fig Figure, ok bool, err error) {
	m := e.marker.FindStringSubmatch(n.Raw)
	if m == nil || strings.TrimSpace(m[1]) == "" {
		if e.markerPrefix.MatchString(n.Raw) {
			return Figure{}, false, &MalformedMarkerError{Path: path, Line: n.Line, Text: n.Raw}
		}
		return Figure{}, false, nil
	}
	fig = e.assign(KindTable, e.opts.Table, path, n, st, strings.TrimSpace(m[1]))
	n.Raw = "<!-- " + compose(fig.Label, e.opts.CaptionSeparator, fig.Caption) + " -->"
	return fig, true, nil
}

func (e *Engine) assign(kind FigureKind, tmpl *label.Template, path string, n *doctree.Node, st *State, caption string) Figure {
	seq := st.next(kind)
	fig := Figure{
		Kind:     kind,
		Path:     path,
		Index:    n.Index,
		Line:     n.Line,
		Caption:  caption,
		Sequence: seq,
	}
	if len(st.LastChapter) > 0 {
		fig.Chapter = append([]int(nil), st.LastChapter...)
		fig.Label = tmpl.Format(label.Dotted(fig.Chapter), strconv.Itoa(seq))
	} else {
		fig.Label = tmpl.Format(strconv.Itoa(seq))
	}
	return fig
}

func compose(lbl, sep, text string) string {
	if text == "" {
		return lbl
	}
	return lbl + sep + text
}

// splitSpace splits s into leading whitespace, the trimmed core and trailing
// whitespace.
func splitSpace(s string) (lead, core, trail string) {
	core = strings.TrimLeftFunc(s, unicode.IsSpace)
	lead = s[:len(s)-len(core)]
	trimmed := strings.TrimRightFunc(core, unicode.IsSpace)
	trail = core[len(trimmed):]
	return lead, trimmed, trail
}
