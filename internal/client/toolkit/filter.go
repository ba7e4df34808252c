package toolkit

import (
	"errors"
	"fmt"
	"maps"
	"reflect"
	"strings"
	"sync"
	"time"
)

var ErrUnknownFilter = errors.New("unknown filter field")

type FilterKind string

const (
	FilterSelect  FilterKind = "select"
	FilterText    FilterKind = "text"
	FilterDate    FilterKind = "date"
	FilterNumber  FilterKind = "number"
	FilterBoolean FilterKind = "boolean"
)

type FilterOption struct {
	Label string
	Value string
}

// FilterField declares one filter input.
type FilterField struct {
	Field   string
	Label   string
	Kind    FilterKind
	Options []FilterOption
	Default any

	// Validate rejects values that must not reach OnChange.
	Validate     func(v any) bool
	ErrorMessage string

	// Match overrides the default predicate used by Apply. It receives the
	// record's field value and the active filter value.
	Match func(field, filter any) bool
}

type FilterConfig struct {
	Fields   []FilterField
	Delay    time.Duration
	OnChange func(values map[string]any)
}

// ActiveFilter is a field with a non-empty value.
type ActiveFilter struct {
	Field string
	Value any
}

// Filters holds the current values of a set of filter inputs.
type Filters[T Record] struct {
	cfg FilterConfig
	deb *Debouncer[map[string]any]

	mu     sync.RWMutex
	values map[string]any
	errs   map[string]string
}

func NewFilters[T Record](cfg FilterConfig) *Filters[T] {
	f := &Filters[T]{
		cfg:    cfg,
		values: defaults(cfg.Fields),
		errs:   map[string]string{},
	}
	f.deb = NewDebouncer(cfg.Delay, f.notify)
	return f
}

func defaults(fields []FilterField) map[string]any {
	m := make(map[string]any, len(fields))
	for _, fl := range fields {
		m[fl.Field] = fl.Default
	}
	return m
}

func (f *Filters[T]) field(name string) (FilterField, bool) {
	for _, fl := range f.cfg.Fields {
		if fl.Field == name {
			return fl, true
		}
	}
	return FilterField{}, false
}

// Handle sets one field, clears its error and schedules the debounced
// validate-then-notify step.
func (f *Filters[T]) Handle(field string, v any) error {
	if _, ok := f.field(field); !ok {
		return fmt.Errorf("%w: %s", ErrUnknownFilter, field)
	}

	f.mu.Lock()
	f.values[field] = v
	delete(f.errs, field)
	snap := maps.Clone(f.values)
	f.mu.Unlock()

	f.deb.Call(snap)
	return nil
}

// notify validates values and forwards them when every field passes.
func (f *Filters[T]) notify(values map[string]any) {
	errs := map[string]string{}
	for _, fl := range f.cfg.Fields {
		if fl.Validate == nil || fl.Validate(values[fl.Field]) {
			continue
		}
		msg := fl.ErrorMessage
		if msg == "" {
			msg = "Invalid " + fl.Label
		}
		errs[fl.Field] = msg
	}

	f.mu.Lock()
	f.errs = errs
	f.mu.Unlock()

	if len(errs) == 0 && f.cfg.OnChange != nil {
		f.cfg.OnChange(values)
	}
}

// Flush runs a pending validate-then-notify step now.
func (f *Filters[T]) Flush() { f.deb.Flush() }

// Reset restores every default, drops errors and notifies immediately.
func (f *Filters[T]) Reset() {
	f.deb.Cancel()

	f.mu.Lock()
	f.values = defaults(f.cfg.Fields)
	f.errs = map[string]string{}
	snap := maps.Clone(f.values)
	f.mu.Unlock()

	if f.cfg.OnChange != nil {
		f.cfg.OnChange(snap)
	}
}

// Clear restores one field to its default.
func (f *Filters[T]) Clear(field string) error {
	fl, ok := f.field(field)
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownFilter, field)
	}
	return f.Handle(field, fl.Default)
}

func (f *Filters[T]) Value(field string) any {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.values[field]
}

func (f *Filters[T]) Values() map[string]any {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return maps.Clone(f.values)
}

func (f *Filters[T]) Errors() map[string]string {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return maps.Clone(f.errs)
}

// Active lists fields holding a value, in declaration order. nil, blank
// strings and empty slices count as inactive.
func (f *Filters[T]) Active() []ActiveFilter {
	f.mu.RLock()
	defer f.mu.RUnlock()

	var out []ActiveFilter
	for _, fl := range f.cfg.Fields {
		v := f.values[fl.Field]
		if isActive(v) {
			out = append(out, ActiveFilter{Field: fl.Field, Value: v})
		}
	}
	return out
}

func (f *Filters[T]) HasActive() bool { return len(f.Active()) > 0 }

func isActive(v any) bool {
	if isNil(v) {
		return false
	}
	if s, ok := v.(string); ok {
		return strings.TrimSpace(s) != ""
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() == reflect.Slice || rv.Kind() == reflect.Array {
		return rv.Len() > 0
	}
	return true
}

// Apply keeps the items matching every active filter.
func (f *Filters[T]) Apply(items []T) []T {
	active := f.Active()
	if len(active) == 0 {
		return items
	}

	preds := make([]func(T) bool, 0, len(active))
	for _, a := range active {
		fl, _ := f.field(a.Field)
		preds = append(preds, predicate[T](fl, a.Value))
	}

	out := make([]T, 0, len(items))
next:
	for _, it := range items {
		for _, p := range preds {
			if !p(it) {
				continue next
			}
		}
		out = append(out, it)
	}
	return out
}

func predicate[T Record](fl FilterField, want any) func(T) bool {
	if fl.Match != nil {
		return func(it T) bool { return fl.Match(it.Field(fl.Field), want) }
	}

	rv := reflect.ValueOf(want)
	if rv.Kind() == reflect.Slice || rv.Kind() == reflect.Array {
		return func(it T) bool {
			got := it.Field(fl.Field)
			if isNil(got) {
				return false
			}
			for i := 0; i < rv.Len(); i++ {
				if compareValues(got, rv.Index(i).Interface()) == 0 {
					return true
				}
			}
			return false
		}
	}

	if fl.Kind == FilterText {
		needle := strings.ToLower(stringOf(deref(want)))
		return func(it T) bool {
			got := it.Field(fl.Field)
			if isNil(got) {
				return false
			}
			return strings.Contains(strings.ToLower(stringOf(deref(got))), needle)
		}
	}

	return func(it T) bool {
		got := it.Field(fl.Field)
		if isNil(got) {
			return false
		}
		return compareValues(got, want) == 0
	}
}
