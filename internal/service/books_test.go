package service

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bookhaven/shelfctl/internal/domain/model"
)

func TestBookService_ListNormalizesPageBounds(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/books", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "2", r.URL.Query().Get("page"))
		assert.Equal(t, "10", r.URL.Query().Get("size"))
		// Deliberately wrong flags; the client rederives them.
		_, _ = w.Write([]byte(`{
			"content": [{"id":1,"title":"Dune","author":"Herbert","isbn":"9780441172719","totalCopies":3,"availableCopies":2}],
			"currentPage": 2, "totalPages": 5, "totalElements": 42,
			"hasNext": false, "hasPrevious": false
		}`))
	})

	svc := NewBookService(BookServiceOptions{API: newServiceClient(t, mux)})
	page, err := svc.List(context.Background(), 2, 10)
	require.NoError(t, err)

	assert.Len(t, page.Content, 1)
	assert.Equal(t, "Dune", page.Content[0].Title)
	assert.True(t, page.HasNext, "page 2 of 5 must have a next page")
	assert.True(t, page.HasPrevious, "page 2 of 5 must have a previous page")
}

func TestBookService_Get(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/books/7", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(model.Book{ID: 7, Title: "Hyperion", AvailableCopies: 1, TotalCopies: 2})
	})

	svc := NewBookService(BookServiceOptions{API: newServiceClient(t, mux)})
	book, err := svc.Get(context.Background(), 7)
	require.NoError(t, err)
	assert.Equal(t, "Hyperion", book.Title)
	assert.True(t, book.Available())
}

func TestBookService_CreateSendsMultipart(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/books", func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseMultipartForm(1<<20))
		assert.Equal(t, "Dune", r.FormValue("title"))
		assert.Equal(t, "Herbert", r.FormValue("author"))
		assert.Equal(t, "9780441172719", r.FormValue("isbn"))
		assert.Equal(t, "3", r.FormValue("totalCopies"))
		_, header, err := r.FormFile("image")
		require.NoError(t, err)
		assert.Equal(t, "cover.png", header.Filename)
		_ = json.NewEncoder(w).Encode(model.Book{ID: 1, Title: "Dune"})
	})

	svc := NewBookService(BookServiceOptions{API: newServiceClient(t, mux)})
	book, err := svc.Create(context.Background(), BookInput{
		Title:       "Dune",
		Author:      "Herbert",
		ISBN:        "9780441172719",
		TotalCopies: 3,
		ImageName:   "cover.png",
		Image:       strings.NewReader("png-bytes"),
	})
	require.NoError(t, err)
	assert.Equal(t, int64(1), book.ID)
}

func TestBookService_UpdateWithoutImage(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("PUT /api/books/9", func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseMultipartForm(1<<20))
		assert.Equal(t, "Hyperion", r.FormValue("title"))
		_, _, err := r.FormFile("image")
		assert.Error(t, err, "no image part expected")
		_ = json.NewEncoder(w).Encode(model.Book{ID: 9, Title: "Hyperion"})
	})

	svc := NewBookService(BookServiceOptions{API: newServiceClient(t, mux)})
	book, err := svc.Update(context.Background(), 9, BookInput{Title: "Hyperion", Author: "Simmons", ISBN: "x", TotalCopies: 1})
	require.NoError(t, err)
	assert.Equal(t, int64(9), book.ID)
}
