package pipeline

import (
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"slices"
	"strings"

	"github.com/dgallion1/markchap/internal/parser"
)

var (
	ErrInputNotFound = errors.New("input directory not found")
	ErrNoDocuments   = errors.New("no markdown documents found")
)

// Listing is the result of walking an input tree. Paths are slash-separated
// and relative to the root.
type Listing struct {
	Files []string // in corpus order
	Dirs  []string
}

// Discover walks root for supported Markdown files. Subdirectories are only
// entered when recursive is set. skip, if non-empty, names a directory
// (typically the output directory) that is never entered.
func Discover(root string, recursive bool, skip string) (Listing, error) {
	var l Listing

	absRoot, err := filepath.Abs(root)
	if err != nil {
		return l, fmt.Errorf("%w: %s: %w", ErrInputNotFound, root, err)
	}
	if skip != "" {
		if skip, err = filepath.Abs(skip); err != nil {
			return l, err
		}
	}

	err = filepath.WalkDir(absRoot, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			if p == absRoot {
				return fmt.Errorf("%w: %s: %w", ErrInputNotFound, root, err)
			}
			return err
		}
		rel, err := filepath.Rel(absRoot, p)
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)

		if d.IsDir() {
			if p == absRoot {
				return nil
			}
			if !recursive || p == skip {
				return filepath.SkipDir
			}
			l.Dirs = append(l.Dirs, rel)
			return nil
		}
		if d.Type().IsRegular() && parser.IsSupportedExtension(rel) {
			l.Files = append(l.Files, rel)
		}
		return nil
	})
	if err != nil {
		return Listing{}, err
	}

	slices.SortFunc(l.Files, ComparePaths)
	slices.SortFunc(l.Dirs, ComparePaths)
	return l, nil
}

// ComparePaths orders slash-separated paths component by component using
// byte order, so "01/x.md" sorts before "01.md".
func ComparePaths(a, b string) int {
	return slices.Compare(strings.Split(a, "/"), strings.Split(b, "/"))
}
