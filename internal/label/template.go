// Package label renders and recognizes number labels such as "1.2.3" or
// "図1.2.1". A Template is built from a single pattern string so that the
// label it writes is always the label it can find and strip again.
package label

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Placeholder marks where numbers are substituted in a template.
const Placeholder = "{}"

// numberPattern matches a single placeholder value: a dotted decimal.
const numberPattern = `[0-9]+(?:\.[0-9]+)*`

var ErrNoPlaceholder = errors.New("template has no " + Placeholder + " placeholder")

// Template is a parsed number format such as "{}", "図{}" or "第{}章{}節".
type Template struct {
	raw      string
	literals []string // len = placeholders + 1
	pattern  string
	prefix   *regexp.Regexp
}

// Parse compiles a template string.
func Parse(s string) (*Template, error) {
	literals := strings.Split(s, Placeholder)
	if len(literals) < 2 {
		return nil, fmt.Errorf("%q: %w", s, ErrNoPlaceholder)
	}
	t := &Template{raw: s, literals: literals}
	t.pattern = regexp.QuoteMeta(literals[0]) + t.tail(0)
	re, err := regexp.Compile(`^(?:` + t.pattern + `)`)
	if err != nil {
		return nil, fmt.Errorf("%q: %w", s, err)
	}
	t.prefix = re
	return t, nil
}

// MustParse is like Parse but panics on error.
func MustParse(s string) *Template {
	t, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return t
}

// tail builds the pattern for placeholder i and everything after it. Later
// placeholders are optional because Format stops early when it runs out of
// values.
func (t *Template) tail(i int) string {
	p := numberPattern + regexp.QuoteMeta(t.literals[i+1])
	if i+1 < t.Placeholders() {
		p += `(?:` + t.tail(i+1) + `)?`
	}
	return p
}

// String returns the template source.
func (t *Template) String() string { return t.raw }

// Placeholders returns the number of {} slots.
func (t *Template) Placeholders() int { return len(t.literals) - 1 }

// Pattern returns an unanchored regular expression matching any label this
// template can produce.
func (t *Template) Pattern() string { return t.pattern }

// Format substitutes values into the template. With a single placeholder all
// values are joined by "."; otherwise each placeholder takes one value and the
// last takes the remainder. Output ends after the literal following the last
// filled placeholder.
func (t *Template) Format(values ...string) string {
	if len(values) == 0 {
		return ""
	}
	k := t.Placeholders()
	var sb strings.Builder
	sb.WriteString(t.literals[0])
	for i := 0; i < k && i < len(values); i++ {
		if i == k-1 {
			sb.WriteString(strings.Join(values[i:], "."))
		} else {
			sb.WriteString(values[i])
		}
		sb.WriteString(t.literals[i+1])
	}
	return sb.String()
}

// FormatNumber formats a counter vector, e.g. [1 2 3] -> "1.2.3" for "{}".
func (t *Template) FormatNumber(number []int) string {
	return t.Format(Strings(number)...)
}

// Match reports the label at the start of s, if any.
func (t *Template) Match(s string) (string, bool) {
	loc := t.prefix.FindStringIndex(s)
	if loc == nil {
		return "", false
	}
	return s[:loc[1]], true
}

// Cut splits s into a leading label and the text after it. The label must be
// followed by the end of s, whitespace, or delim (which is consumed). The
// returned rest has leading whitespace removed.
func (t *Template) Cut(s, delim string) (lbl, rest string, ok bool) {
	lbl, ok = t.Match(s)
	if !ok {
		return "", s, false
	}
	rest = s[len(lbl):]
	switch {
	case rest == "":
	case delim != "" && strings.HasPrefix(rest, delim):
		rest = rest[len(delim):]
	default:
		r, _ := utf8.DecodeRuneInString(rest)
		if !unicode.IsSpace(r) {
			return "", s, false
		}
	}
	return lbl, strings.TrimLeftFunc(rest, unicode.IsSpace), true
}

// Dotted joins a counter vector with "." regardless of any template.
func Dotted(number []int) string {
	return strings.Join(Strings(number), ".")
}

// Strings converts a counter vector to decimal strings.
func Strings(number []int) []string {
	out := make([]string, len(number))
	for i, n := range number {
		out[i] = strconv.Itoa(n)
	}
	return out
}
