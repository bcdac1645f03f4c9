package numbering

import "slices"

// MaxLevel is the deepest Markdown heading level.
const MaxLevel = 6

// State is the numbering state threaded through a corpus pass. The zero value
// is the initial state.
type State struct {
	// Counters[i] is the current count at heading level i+1.
	Counters [MaxLevel]int
	// FigureCount and TableCount are scoped to LastChapter.
	FigureCount int
	TableCount  int
	// LastChapter is the number of the most recent non-excluded heading; nil
	// before the first one.
	LastChapter []int
}

// Clone returns a copy that shares no memory with s.
func (s State) Clone() State {
	s.LastChapter = slices.Clone(s.LastChapter)
	return s
}

// enter advances the counters for a non-excluded heading at level and returns
// its number. A change of chapter resets the figure and table counts.
func (s *State) enter(level int) []int {
	s.Counters[level-1]++
	for i := level; i < MaxLevel; i++ {
		s.Counters[i] = 0
	}
	number := slices.Clone(s.Counters[:level])
	if !slices.Equal(number, s.LastChapter) {
		s.FigureCount = 0
		s.TableCount = 0
	}
	s.LastChapter = number
	return slices.Clone(number)
}

// next increments the counter for kind within the current chapter and returns
// the new sequence number.
func (s *State) next(kind FigureKind) int {
	if kind == KindTable {
		s.TableCount++
		return s.TableCount
	}
	s.FigureCount++
	return s.FigureCount
}
