//revive:disable-next-line:var-naming // legacy package name widely used across the project
package model

// BorrowStatus is the lifecycle state of a borrow record.
type BorrowStatus string

const (
	BorrowStatusBorrowed BorrowStatus = "BORROWED"
	BorrowStatusReturned BorrowStatus = "RETURNED"
)

// Valid reports whether the status is one the API recognizes.
func (s BorrowStatus) Valid() bool {
	switch s {
	case BorrowStatusBorrowed, BorrowStatusReturned:
		return true
	default:
		return false
	}
}

// BorrowRecord ties a user to a borrowed book.
// Invariant: Status is RETURNED iff ReturnDate is set.
type BorrowRecord struct {
	ID         int64        `json:"id"`
	UserEmail  string       `json:"userEmail"`
	BookTitle  string       `json:"bookTitle"`
	BorrowDate Date         `json:"borrowDate"`
	DueDate    Date         `json:"dueDate"`
	ReturnDate *Date        `json:"returnDate,omitempty"`
	Status     BorrowStatus `json:"status"`
}

// Returned reports whether the record is closed.
func (r BorrowRecord) Returned() bool {
	return r.Status == BorrowStatusReturned
}

// Consistent reports whether the returned-iff-return-date invariant holds.
func (r BorrowRecord) Consistent() bool {
	hasReturnDate := r.ReturnDate != nil && !r.ReturnDate.IsZero()
	return r.Returned() == hasReturnDate
}
