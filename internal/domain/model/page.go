//revive:disable-next-line:var-naming // legacy package name widely used across the project
package model

// Page is one page of a paginated API response plus the metadata needed
// to compute next/previous availability. Page indices are 0-based.
type Page[T any] struct {
	Content       []T  `json:"content"`
	CurrentPage   int  `json:"currentPage"`
	TotalPages    int  `json:"totalPages"`
	TotalElements int  `json:"totalElements"`
	HasNext       bool `json:"hasNext"`
	HasPrevious   bool `json:"hasPrevious"`
}

// Normalize rederives HasNext and HasPrevious from the page indices.
// Invariants: HasNext = CurrentPage < TotalPages-1; HasPrevious = CurrentPage > 0.
// Applied after decoding so a response with stale flags cannot drive the
// pagination controls out of sync with the indices.
func (p *Page[T]) Normalize() {
	p.HasNext = p.CurrentPage < p.TotalPages-1
	p.HasPrevious = p.CurrentPage > 0
}

// SinglePage reports whether the result fits on one page. Single-page
// results render no pagination controls.
func (p Page[T]) SinglePage() bool {
	return p.TotalPages <= 1
}
