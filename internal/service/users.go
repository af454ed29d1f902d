package service

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"github.com/bookhaven/shelfctl/internal/api"
	"github.com/bookhaven/shelfctl/internal/domain/model"
)

// UserServiceOptions groups dependencies for UserService.
type UserServiceOptions struct {
	API *api.Client
}

// UserService wraps the admin user-management endpoints.
type UserService struct {
	api *api.Client
}

// NewUserService constructs a new UserService.
func NewUserService(opts UserServiceOptions) *UserService {
	if opts.API == nil {
		panic("UserService requires an API client")
	}
	return &UserService{api: opts.API}
}

// List returns one page of accounts, optionally filtered by role.
func (s *UserService) List(ctx context.Context, page, size int, role string) (model.Page[model.User], error) {
	query := url.Values{}
	query.Set("page", strconv.Itoa(page))
	query.Set("size", strconv.Itoa(size))
	if role != "" {
		query.Set("role", role)
	}

	var out model.Page[model.User]
	if err := s.api.Get(ctx, "/admin/users", query, &out); err != nil {
		return model.Page[model.User]{}, err
	}
	out.Normalize()
	return out, nil
}

// Get returns a single account.
func (s *UserService) Get(ctx context.Context, id int64) (model.User, error) {
	var out model.User
	if err := s.api.Get(ctx, fmt.Sprintf("/admin/users/%d", id), nil, &out); err != nil {
		return model.User{}, err
	}
	return out, nil
}

// Update applies a partial update to an account.
func (s *UserService) Update(ctx context.Context, id int64, patch model.UserPatch) (model.User, error) {
	var out model.User
	if err := s.api.Put(ctx, fmt.Sprintf("/admin/users/%d", id), nil, patch, &out); err != nil {
		return model.User{}, err
	}
	return out, nil
}

// BorrowRecords returns one page of an account's borrow history.
func (s *UserService) BorrowRecords(ctx context.Context, id int64, page, size int) (model.Page[model.BorrowRecord], error) {
	query := url.Values{}
	query.Set("page", strconv.Itoa(page))
	query.Set("size", strconv.Itoa(size))

	var out model.Page[model.BorrowRecord]
	if err := s.api.Get(ctx, fmt.Sprintf("/admin/users/%d/records", id), query, &out); err != nil {
		return model.Page[model.BorrowRecord]{}, err
	}
	out.Normalize()
	return out, nil
}

// UpdateBorrowRecord patches a borrow record's fields (due date, status).
type BorrowRecordPatch struct {
	DueDate *model.Date         `json:"dueDate,omitempty"`
	Status  *model.BorrowStatus `json:"status,omitempty"`
}

// UpdateBorrowRecord applies a partial update to a borrow record.
func (s *UserService) UpdateBorrowRecord(ctx context.Context, recordID int64, patch BorrowRecordPatch) (model.BorrowRecord, error) {
	var out model.BorrowRecord
	if err := s.api.Put(ctx, fmt.Sprintf("/admin/users/records/%d", recordID), nil, patch, &out); err != nil {
		return model.BorrowRecord{}, err
	}
	return out, nil
}
