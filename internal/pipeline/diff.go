package pipeline

import (
	"strings"

	"github.com/pmezard/go-difflib/difflib"
)

const diffContext = 3

// UnifiedDiff returns a unified diff between the original and numbered
// versions of the document at path, or "" when they are identical.
func UnifiedDiff(path string, before, after []byte) (string, error) {
	if string(before) == string(after) {
		return "", nil
	}
	u := difflib.UnifiedDiff{
		A:        splitLinesKeepNL(string(before)),
		B:        splitLinesKeepNL(string(after)),
		FromFile: "a/" + path,
		ToFile:   "b/" + path,
		Context:  diffContext,
	}
	return difflib.GetUnifiedDiffString(u)
}

// splitLinesKeepNL splits into lines and keeps newline characters so that a
// missing final newline shows up in the hunk.
func splitLinesKeepNL(s string) []string {
	if s == "" {
		return []string{}
	}
	lines := strings.SplitAfter(s, "\n")
	if lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	return lines
}
