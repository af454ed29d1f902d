// Package listview implements the paging and filtering state machine
// shared by every list screen: current page, active filters, and the
// last fetched page of data. Page and filter changes trigger a refetch,
// and a monotonic generation counter makes sure a slow response for an
// old page or filter set never overwrites newer data.
package listview

import (
	"context"
	"sync"

	"github.com/bookhaven/shelfctl/internal/domain/model"
)

// FetchFunc loads one page of results for the given filters.
type FetchFunc[T any, F any] func(ctx context.Context, page, size int, filters F) (model.Page[T], error)

// State is the observable list state after the most recent resolved
// fetch. Err and Data are mutually exclusive for one resolution; a
// failed fetch keeps the previous data so the screen can keep rendering
// it alongside the error.
type State[T any, F any] struct {
	Data    model.Page[T]
	Filters F
	Page    int
	Loading bool
	Err     error
}

// Loader drives a paginated, filterable list.
type Loader[T any, F any] struct {
	fetch FetchFunc[T, F]
	size  int

	mu      sync.Mutex
	page    int
	filters F
	data    model.Page[T]
	loading bool
	err     error
	// generation counts dispatched fetches. A resolution carrying an
	// older generation is stale and gets discarded.
	generation uint64
}

// NewLoader constructs a loader with the given page size.
func NewLoader[T any, F any](fetch FetchFunc[T, F], size int) *Loader[T, F] {
	if fetch == nil {
		panic("listview.Loader requires a fetch func")
	}
	if size < 1 {
		size = 1
	}
	return &Loader[T, F]{fetch: fetch, size: size}
}

// State returns the current list state.
func (l *Loader[T, F]) State() State[T, F] {
	l.mu.Lock()
	defer l.mu.Unlock()
	return State[T, F]{
		Data:    l.data,
		Filters: l.filters,
		Page:    l.page,
		Loading: l.loading,
		Err:     l.err,
	}
}

// Load fetches the current page with the current filters.
func (l *Loader[T, F]) Load(ctx context.Context) State[T, F] {
	l.mu.Lock()
	return l.dispatchLocked(ctx)
}

// SetPage moves to page (0-based) keeping filters, and refetches.
func (l *Loader[T, F]) SetPage(ctx context.Context, page int) State[T, F] {
	if page < 0 {
		page = 0
	}
	l.mu.Lock()
	l.page = page
	return l.dispatchLocked(ctx)
}

// SetFilters replaces the filters, resets to the first page, and
// refetches. Filter changes always restart from page 0 so a short
// filtered result set is never viewed from a page that no longer exists.
func (l *Loader[T, F]) SetFilters(ctx context.Context, filters F) State[T, F] {
	l.mu.Lock()
	l.filters = filters
	l.page = 0
	return l.dispatchLocked(ctx)
}

// dispatchLocked starts a fetch for the current page/filters. The lock
// is held on entry and released before the fetch runs; the generation
// captured here decides whether the resolution still applies.
func (l *Loader[T, F]) dispatchLocked(ctx context.Context) State[T, F] {
	l.generation++
	gen := l.generation
	page, filters := l.page, l.filters
	l.loading = true
	l.mu.Unlock()

	data, err := l.fetch(ctx, page, l.size, filters)

	l.mu.Lock()
	defer l.mu.Unlock()
	if gen != l.generation {
		// A newer dispatch superseded this one; its result wins.
		return l.stateLocked()
	}
	l.loading = false
	if err != nil {
		l.err = err
		return l.stateLocked()
	}
	data.Normalize()
	l.data = data
	l.err = nil
	return l.stateLocked()
}

func (l *Loader[T, F]) stateLocked() State[T, F] {
	return State[T, F]{
		Data:    l.data,
		Filters: l.filters,
		Page:    l.page,
		Loading: l.loading,
		Err:     l.err,
	}
}
