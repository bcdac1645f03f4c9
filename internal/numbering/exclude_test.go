package numbering

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/dgallion1/markchap/internal/label"
)

func TestMatcher_Excluded(t *testing.T) {
	m := NewMatcher(append([]string{"  Appendix ", ""}, defaultExcluded...), label.MustParse("{}"), ".")

	tests := []struct {
		text string
		want bool
	}{
		{"はじめに", true},
		{"  まとめ  ", true},
		{"1 はじめに", true},
		{"2.3. 参考文献", true},
		{"Appendix", true},
		{"appendix", false},
		{"はじめにの前に", false},
		{"第1章 はじめに", false},
		{"概論", false},
		{"", false},
	}
	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			assert.Equal(t, tt.want, m.Excluded(tt.text))
		})
	}
}

func TestMatcher_NoChapterTemplate(t *testing.T) {
	m := NewMatcher([]string{"まとめ"}, nil, ".")
	assert.True(t, m.Excluded("まとめ"))
	assert.False(t, m.Excluded("1 まとめ"))
}

func TestEngine_MatcherUsesChapterTemplate(t *testing.T) {
	opts := testOptions()
	opts.Chapter = label.MustParse("第{}章")
	e := newEngine(t, opts)
	assert.True(t, e.Matcher().Excluded("第1章 まとめ"))
	assert.False(t, e.Matcher().Excluded("1 まとめ"))
}
