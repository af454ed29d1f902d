package service

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"strconv"

	"github.com/bookhaven/shelfctl/internal/api"
	"github.com/bookhaven/shelfctl/internal/domain/model"
)

// BookServiceOptions groups dependencies for BookService.
type BookServiceOptions struct {
	API *api.Client
}

// BookService wraps the catalog endpoints.
type BookService struct {
	api *api.Client
}

// NewBookService constructs a new BookService.
func NewBookService(opts BookServiceOptions) *BookService {
	if opts.API == nil {
		panic("BookService requires an API client")
	}
	return &BookService{api: opts.API}
}

// BookInput carries the fields for creating or updating a book. Image is
// optional; when set the cover is uploaded alongside the fields.
type BookInput struct {
	Title       string
	Author      string
	ISBN        string
	TotalCopies int
	ImageName   string
	Image       io.Reader
}

func (in BookInput) form() *api.Form {
	form := api.NewForm().
		AddField("title", in.Title).
		AddField("author", in.Author).
		AddField("isbn", in.ISBN).
		AddField("totalCopies", strconv.Itoa(in.TotalCopies))
	if in.Image != nil {
		form.AddFile("image", in.ImageName, in.Image)
	}
	return form
}

// List returns one page of the catalog.
func (s *BookService) List(ctx context.Context, page, size int) (model.Page[model.Book], error) {
	query := url.Values{}
	query.Set("page", strconv.Itoa(page))
	query.Set("size", strconv.Itoa(size))

	var out model.Page[model.Book]
	if err := s.api.Get(ctx, "/books", query, &out); err != nil {
		return model.Page[model.Book]{}, err
	}
	out.Normalize()
	return out, nil
}

// Get returns a single book.
func (s *BookService) Get(ctx context.Context, id int64) (model.Book, error) {
	var out model.Book
	if err := s.api.Get(ctx, fmt.Sprintf("/books/%d", id), nil, &out); err != nil {
		return model.Book{}, err
	}
	return out, nil
}

// Create adds a book to the catalog. Admin only.
func (s *BookService) Create(ctx context.Context, in BookInput) (model.Book, error) {
	var out model.Book
	if err := s.api.PostForm(ctx, "/books", in.form(), &out); err != nil {
		return model.Book{}, err
	}
	return out, nil
}

// Update replaces a book's fields and optionally its cover. Admin only.
func (s *BookService) Update(ctx context.Context, id int64, in BookInput) (model.Book, error) {
	var out model.Book
	if err := s.api.PutForm(ctx, fmt.Sprintf("/books/%d", id), in.form(), &out); err != nil {
		return model.Book{}, err
	}
	return out, nil
}
