package numbering

import (
	"strings"

	"github.com/dgallion1/markchap/internal/label"
)

// Matcher tests heading text against the configured excluded titles.
// Matching is exact and case-sensitive after trimming whitespace and
// stripping a leading chapter number.
type Matcher struct {
	titles  map[string]struct{}
	chapter *label.Template
	delim   string
}

// NewMatcher builds a Matcher. chapter recognizes automatic number prefixes;
// delim is the punctuation allowed between a number and the title.
func NewMatcher(titles []string, chapter *label.Template, delim string) *Matcher {
	m := &Matcher{
		titles:  make(map[string]struct{}, len(titles)),
		chapter: chapter,
		delim:   delim,
	}
	for _, t := range titles {
		if t = strings.TrimSpace(t); t != "" {
			m.titles[t] = struct{}{}
		}
	}
	return m
}

// Excluded reports whether the heading text names an excluded title.
func (m *Matcher) Excluded(text string) bool {
	text = strings.TrimSpace(text)
	if _, ok := m.titles[text]; ok {
		return true
	}
	if m.chapter == nil {
		return false
	}
	if _, rest, ok := m.chapter.Cut(text, m.delim); ok {
		_, found := m.titles[rest]
		return found
	}
	return false
}
