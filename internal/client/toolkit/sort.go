package toolkit

import (
	"slices"
	"sync"
)

type Direction string

const (
	Asc  Direction = "asc"
	Desc Direction = "desc"
)

type SortState struct {
	Field     string
	Direction Direction
}

// Sorter keeps at most one active sort key.
type Sorter[T Record] struct {
	onChange func(*SortState)

	mu    sync.RWMutex
	state *SortState
}

// NewSorter starts with initial (may be nil). onChange receives nil on Clear.
func NewSorter[T Record](initial *SortState, onChange func(*SortState)) *Sorter[T] {
	s := &Sorter[T]{onChange: onChange}
	if initial != nil {
		st := *initial
		s.state = &st
	}
	return s
}

// Sort activates field: ascending if new, flipped if already active.
func (s *Sorter[T]) Sort(field string) SortState {
	s.mu.Lock()
	dir := Asc
	if s.state != nil && s.state.Field == field && s.state.Direction == Asc {
		dir = Desc
	}
	s.state = &SortState{Field: field, Direction: dir}
	st := *s.state
	s.mu.Unlock()

	if s.onChange != nil {
		cp := st
		s.onChange(&cp)
	}
	return st
}

func (s *Sorter[T]) Clear() {
	s.mu.Lock()
	s.state = nil
	s.mu.Unlock()

	if s.onChange != nil {
		s.onChange(nil)
	}
}

// Current returns the active sort; ok is false when none is set.
func (s *Sorter[T]) Current() (SortState, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.state == nil {
		return SortState{}, false
	}
	return *s.state, true
}

func (s *Sorter[T]) IsSorted(field string) bool {
	st, ok := s.Current()
	return ok && st.Field == field
}

func (s *Sorter[T]) Icon(field string) string {
	st, ok := s.Current()
	switch {
	case !ok || st.Field != field:
		return "↕"
	case st.Direction == Asc:
		return "↑"
	default:
		return "↓"
	}
}

func (s *Sorter[T]) Label(field string) string {
	st, ok := s.Current()
	switch {
	case !ok || st.Field != field:
		return "Sort"
	case st.Direction == Asc:
		return "Sort Ascending"
	default:
		return "Sort Descending"
	}
}

// Apply returns a stably sorted copy of items. nil field values go last in
// both directions.
func (s *Sorter[T]) Apply(items []T) []T {
	st, ok := s.Current()
	if !ok {
		return items
	}
	out := slices.Clone(items)
	slices.SortStableFunc(out, func(a, b T) int {
		return compareField(a.Field(st.Field), b.Field(st.Field), st.Direction)
	})
	return out
}

func compareField(a, b any, dir Direction) int {
	aNil, bNil := isNil(a), isNil(b)
	switch {
	case aNil && bNil:
		return 0
	case aNil:
		return 1
	case bNil:
		return -1
	}
	c := compareValues(a, b)
	if dir == Desc {
		return -c
	}
	return c
}
