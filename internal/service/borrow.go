package service

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"github.com/bookhaven/shelfctl/internal/api"
	"github.com/bookhaven/shelfctl/internal/domain/model"
)

// BorrowServiceOptions groups dependencies for BorrowService.
type BorrowServiceOptions struct {
	API *api.Client
}

// BorrowService wraps the borrowing endpoints.
type BorrowService struct {
	api *api.Client
}

// NewBorrowService constructs a new BorrowService.
func NewBorrowService(opts BorrowServiceOptions) *BorrowService {
	if opts.API == nil {
		panic("BorrowService requires an API client")
	}
	return &BorrowService{api: opts.API}
}

// Borrow checks out a book for the current user.
func (s *BorrowService) Borrow(ctx context.Context, bookID int64) (model.BorrowRecord, error) {
	var out model.BorrowRecord
	if err := s.api.Post(ctx, fmt.Sprintf("/borrow/%d", bookID), nil, &out); err != nil {
		return model.BorrowRecord{}, err
	}
	return out, nil
}

// Return closes an open borrow record.
func (s *BorrowService) Return(ctx context.Context, recordID int64) (model.BorrowRecord, error) {
	var out model.BorrowRecord
	if err := s.api.Put(ctx, fmt.Sprintf("/borrow/return/%d", recordID), nil, nil, &out); err != nil {
		return model.BorrowRecord{}, err
	}
	return out, nil
}

func historyQuery(page, size int, status model.BorrowStatus) url.Values {
	query := url.Values{}
	query.Set("page", strconv.Itoa(page))
	query.Set("size", strconv.Itoa(size))
	if status != "" {
		query.Set("status", string(status))
	}
	return query
}

// MyHistory returns one page of the current user's borrow history,
// optionally filtered by status.
func (s *BorrowService) MyHistory(ctx context.Context, page, size int, status model.BorrowStatus) (model.Page[model.BorrowRecord], error) {
	var out model.Page[model.BorrowRecord]
	if err := s.api.Get(ctx, "/borrow/my-history", historyQuery(page, size, status), &out); err != nil {
		return model.Page[model.BorrowRecord]{}, err
	}
	out.Normalize()
	return out, nil
}

// AllHistory returns one page of every user's borrow history. Admin only.
func (s *BorrowService) AllHistory(ctx context.Context, page, size int, status model.BorrowStatus) (model.Page[model.BorrowRecord], error) {
	var out model.Page[model.BorrowRecord]
	if err := s.api.Get(ctx, "/borrow/all", historyQuery(page, size, status), &out); err != nil {
		return model.Page[model.BorrowRecord]{}, err
	}
	out.Normalize()
	return out, nil
}

// OverrideStatus forces a record into the given status. Admin only.
func (s *BorrowService) OverrideStatus(ctx context.Context, recordID int64, status model.BorrowStatus) (model.BorrowRecord, error) {
	query := url.Values{}
	query.Set("status", string(status))

	var out model.BorrowRecord
	if err := s.api.Put(ctx, fmt.Sprintf("/borrow/admin/override/%d", recordID), query, nil, &out); err != nil {
		return model.BorrowRecord{}, err
	}
	return out, nil
}
