package toolkit

import (
	"fmt"
	"strings"
	"sync"
	"time"
	"unicode/utf8"
)

type SearchConfig struct {
	// Fields are matched with a substring test; a record matches if any does.
	Fields        []string
	Placeholder   string
	MinLength     int
	MaxLength     int // 0 means unlimited
	CaseSensitive bool

	Delay    time.Duration
	OnChange func(term string)
}

// Search holds the current term of a search box and filters collections by it.
type Search[T Record] struct {
	cfg SearchConfig
	deb *Debouncer[string]

	mu        sync.RWMutex
	term      string
	searching bool
}

func NewSearch[T Record](cfg SearchConfig) *Search[T] {
	s := &Search[T]{cfg: cfg}
	s.deb = NewDebouncer(cfg.Delay, func(term string) {
		if cfg.OnChange != nil {
			cfg.OnChange(term)
		}
	})
	return s
}

// Handle records a new term (clamped to MaxLength runes) and schedules the
// debounced OnChange.
func (s *Search[T]) Handle(term string) {
	if s.cfg.MaxLength > 0 && utf8.RuneCountInString(term) > s.cfg.MaxLength {
		term = string([]rune(term)[:s.cfg.MaxLength])
	}

	s.mu.Lock()
	s.term = term
	s.searching = utf8.RuneCountInString(term) >= s.cfg.MinLength
	s.mu.Unlock()

	s.deb.Call(term)
}

// Clear empties the term and notifies OnChange at once.
func (s *Search[T]) Clear() {
	s.deb.Cancel()

	s.mu.Lock()
	s.term = ""
	s.searching = false
	s.mu.Unlock()

	if s.cfg.OnChange != nil {
		s.cfg.OnChange("")
	}
}

// Flush delivers a pending debounced term immediately.
func (s *Search[T]) Flush() { s.deb.Flush() }

func (s *Search[T]) Term() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.term
}

func (s *Search[T]) IsSearching() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.searching
}

// Apply returns the items matching the current term. An empty term, or one
// shorter than MinLength, returns items unchanged.
func (s *Search[T]) Apply(items []T) []T {
	term := s.Term()
	if term == "" || utf8.RuneCountInString(term) < s.cfg.MinLength {
		return items
	}
	if !s.cfg.CaseSensitive {
		term = strings.ToLower(term)
	}

	out := make([]T, 0, len(items))
	for _, it := range items {
		if s.matches(it, term) {
			out = append(out, it)
		}
	}
	return out
}

func (s *Search[T]) matches(it T, term string) bool {
	for _, f := range s.cfg.Fields {
		v := it.Field(f)
		if isNil(v) {
			continue
		}
		str := stringOf(deref(v))
		if !s.cfg.CaseSensitive {
			str = strings.ToLower(str)
		}
		if strings.Contains(str, term) {
			return true
		}
	}
	return false
}

func (s *Search[T]) Placeholder() string {
	if s.cfg.Placeholder != "" {
		return s.cfg.Placeholder
	}
	p := "Search by " + strings.Join(s.cfg.Fields, ", ")
	if s.cfg.MinLength > 0 {
		p += fmt.Sprintf(" (min %d characters)", s.cfg.MinLength)
	}
	return p
}
