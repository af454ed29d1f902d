//revive:disable-next-line:var-naming // legacy package name widely used across the project
package model

// Book is a catalog entry as returned by the library API.
// Invariant (server-enforced, asserted client-side for rendering):
// 0 <= AvailableCopies <= TotalCopies.
type Book struct {
	ID              int64  `json:"id"`
	Title           string `json:"title"`
	Author          string `json:"author"`
	ISBN            string `json:"isbn"`
	TotalCopies     int    `json:"totalCopies"`
	AvailableCopies int    `json:"availableCopies"`
	ImageURL        string `json:"imageUrl,omitempty"`
}

// Available reports whether at least one copy can be borrowed.
func (b Book) Available() bool {
	return b.AvailableCopies > 0
}
