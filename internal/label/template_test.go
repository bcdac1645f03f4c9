package label

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse_RequiresPlaceholder(t *testing.T) {
	_, err := Parse("図")
	require.ErrorIs(t, err, ErrNoPlaceholder)

	tmpl, err := Parse("図{}")
	require.NoError(t, err)
	assert.Equal(t, 1, tmpl.Placeholders())
	assert.Equal(t, "図{}", tmpl.String())
}

func TestFormat(t *testing.T) {
	tests := []struct {
		template string
		values   []string
		want     string
	}{
		{"{}", []string{"1", "2", "3"}, "1.2.3"},
		{"{}", []string{"7"}, "7"},
		{"{}.", []string{"1", "2"}, "1.2."},
		{"図{}", []string{"1.1", "2"}, "図1.1.2"},
		{"図{}-{}", []string{"1.1", "2"}, "図1.1-2"},
		{"第{}章{}節", []string{"1"}, "第1章"},
		{"第{}章{}節", []string{"1", "2"}, "第1章2節"},
		{"第{}章{}節", []string{"1", "2", "3"}, "第1章2.3節"},
		{"{}", nil, ""},
	}
	for _, tt := range tests {
		got := MustParse(tt.template).Format(tt.values...)
		assert.Equal(t, tt.want, got, "template=%q values=%v", tt.template, tt.values)
	}
}

func TestFormatNumber(t *testing.T) {
	assert.Equal(t, "1.0.1", MustParse("{}").FormatNumber([]int{1, 0, 1}))
	assert.Equal(t, "2.3", Dotted([]int{2, 3}))
}

func TestMatch_RecognizesOwnOutput(t *testing.T) {
	templates := []string{"{}", "{}.", "図{}", "表{}", "Figure {}", "図{}-{}", "第{}章{}節"}
	inputs := [][]string{{"1"}, {"1", "2"}, {"3", "10", "2"}}
	for _, src := range templates {
		tmpl := MustParse(src)
		for _, values := range inputs {
			formatted := tmpl.Format(values...)
			got, ok := tmpl.Match(formatted + " tail")
			require.True(t, ok, "template=%q formatted=%q", src, formatted)
			assert.Equal(t, formatted, got, "template=%q", src)
		}
	}
}

func TestMatch_RejectsNonLabels(t *testing.T) {
	tmpl := MustParse("図{}")
	for _, s := range []string{"図解", "画像", "", " 図1"} {
		_, ok := tmpl.Match(s)
		assert.False(t, ok, "input %q", s)
	}
}

func TestCut(t *testing.T) {
	chapter := MustParse("{}")
	figure := MustParse("図{}")

	tests := []struct {
		name     string
		tmpl     *Template
		input    string
		delim    string
		wantLbl  string
		wantRest string
		wantOK   bool
	}{
		{"plain number", chapter, "1.2 Intro", ".", "1.2", "Intro", true},
		{"manual trailing dot", chapter, "1.1. 第一節", ".", "1.1", "第一節", true},
		{"label only", chapter, "3", ".", "3", "", true},
		{"number glued to word", chapter, "2024年の話", ".", "", "2024年の話", false},
		{"no number", chapter, "Intro", ".", "", "Intro", false},
		{"ideographic space", chapter, "2　概要", ".", "2", "概要", true},
		{"figure caption", figure, "図1.1.1: kbd", ":", "図1.1.1", "kbd", true},
		{"figure without caption", figure, "図1.1.1", ":", "図1.1.1", "", true},
		{"figure mentioned in text", figure, "図2のように", ":", "", "図2のように", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lbl, rest, ok := tt.tmpl.Cut(tt.input, tt.delim)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.wantLbl, lbl)
			assert.Equal(t, tt.wantRest, rest)
		})
	}
}
