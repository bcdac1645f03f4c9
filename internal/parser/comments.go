package parser

import (
	"bytes"

	"golang.org/x/net/html"

	"github.com/dgallion1/markchap/internal/doctree"
)

// commentSpans finds HTML comments in a raw HTML fragment. base is the
// fragment's offset in the body.
func commentSpans(fragment []byte, base int) []span {
	var spans []span
	z := html.NewTokenizer(bytes.NewReader(fragment))
	offset := 0
	for {
		tt := z.Next()
		if tt == html.ErrorToken {
			break
		}
		// Tokens are contiguous, so summing raw lengths tracks the offset.
		n := len(z.Raw())
		if tt == html.CommentToken {
			spans = append(spans, span{
				start: base + offset,
				stop:  base + offset + n,
				kind:  doctree.NodeRawHTML,
			})
		}
		offset += n
	}
	return spans
}
