// Package toolkit holds the view-agnostic collection helpers every list or
// table screen composes: a debouncer, text search, declarative filters,
// single-field sorting and pagination.
//
// Nothing here touches the network. All helpers operate on slices already in
// memory and never mutate their input; each returns a fresh slice.
//
// Stateful helpers (Search, Filters, Sorter, Paginator) are safe for
// concurrent use. Change callbacks are always invoked without internal locks
// held, so they may call back into the helper.
package toolkit
