package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/bookhaven/shelfctl/internal/domain/auth"
	"github.com/bookhaven/shelfctl/internal/domain/model"
	apperrors "github.com/bookhaven/shelfctl/internal/errors"
	"github.com/bookhaven/shelfctl/internal/listview"
	"github.com/bookhaven/shelfctl/internal/service"
	"github.com/bookhaven/shelfctl/internal/validation"
)

const listRequestTimeout = 30 * time.Second

// catalogFilter is the client-side search filter for the catalog list.
// The API has no search parameter; matching happens on the fetched page
// across title, author, and ISBN.
type catalogFilter struct {
	Search string
}

func (f catalogFilter) matches(b model.Book) bool {
	if f.Search == "" {
		return true
	}
	needle := strings.ToLower(f.Search)
	for _, field := range []string{b.Title, b.Author, b.ISBN} {
		if strings.Contains(strings.ToLower(field), needle) {
			return true
		}
	}
	return false
}

func runBooks(cmdCtx *commandContext, args []string) error {
	var out renderer
	fs := newFlagSet(cmdCtx, "books", &out)
	var (
		page   int
		size   int
		search string
	)
	fs.IntVar(&page, "page", 1, "Page number (1-based)")
	fs.IntVar(&size, "size", cmdCtx.App.Config.Output.PageSize, "Books per page")
	fs.StringVar(&search, "search", "", "Filter the page by title, author, or ISBN")
	if err := fs.Parse(args); err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(cmdCtx.Ctx, listRequestTimeout)
	defer cancel()

	loader := listview.NewLoader(func(ctx context.Context, page, size int, filters catalogFilter) (model.Page[model.Book], error) {
		fetched, err := cmdCtx.App.Books.List(ctx, page, size)
		if err != nil {
			return model.Page[model.Book]{}, err
		}
		if filters.Search == "" {
			return fetched, nil
		}
		kept := make([]model.Book, 0, len(fetched.Content))
		for _, b := range fetched.Content {
			if filters.matches(b) {
				kept = append(kept, b)
			}
		}
		fetched.Content = kept
		return fetched, nil
	}, size)

	state := loader.SetFilters(ctx, catalogFilter{Search: strings.TrimSpace(search)})
	if page > 1 {
		state = loader.SetPage(ctx, page-1)
	}
	if state.Err != nil {
		return state.Err
	}

	if out.json() {
		return out.printJSON(state.Data)
	}
	if len(state.Data.Content) == 0 && search != "" {
		if err := writef(os.Stdout, "No books on this page match %q.\n", search); err != nil {
			return err
		}
	}
	return renderBooksPage(state.Data)
}

func runBookShow(cmdCtx *commandContext, args []string) error {
	var out renderer
	fs := newFlagSet(cmdCtx, "book", &out)
	if err := fs.Parse(args); err != nil {
		return err
	}
	id, err := positionalID(fs.Args(), "book ID")
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(cmdCtx.Ctx, listRequestTimeout)
	defer cancel()

	book, err := cmdCtx.App.Books.Get(ctx, id)
	if err != nil {
		if apperrors.IsNotFound(err) {
			return apperrors.Validationf("No book with ID %d.", id)
		}
		return err
	}

	if out.json() {
		return out.printJSON(book)
	}
	return renderBookDetail(book)
}

type bookFormFlags struct {
	title     string
	author    string
	isbn      string
	copies    int
	imagePath string
}

func (f *bookFormFlags) register(fs *flag.FlagSet) {
	fs.StringVar(&f.title, "title", "", "Book title")
	fs.StringVar(&f.author, "author", "", "Author name")
	fs.StringVar(&f.isbn, "isbn", "", "ISBN")
	fs.IntVar(&f.copies, "copies", 1, "Total number of copies")
	fs.StringVar(&f.imagePath, "image", "", "Path to a cover image file (optional)")
}

func (f *bookFormFlags) validate() error {
	err := validation.New().
		Validate("title", f.title, validation.Required("Title", 255)).
		Validate("author", f.author, validation.Required("Author", 255)).
		Validate("isbn", f.isbn, validation.Required("ISBN", 20)).
		Validate("copies", strconv.Itoa(f.copies), validation.IntRange("Copies", 1, 10000)).
		Err()
	if err != nil {
		return apperrors.Wrap(err, apperrors.ErrCodeValidation, err.Error())
	}
	return nil
}

// input builds the service payload, opening the cover image when one
// was given. The caller owns closing the returned file.
func (f *bookFormFlags) input() (service.BookInput, *os.File, error) {
	in := service.BookInput{
		Title:       strings.TrimSpace(f.title),
		Author:      strings.TrimSpace(f.author),
		ISBN:        strings.TrimSpace(f.isbn),
		TotalCopies: f.copies,
	}
	if f.imagePath == "" {
		return in, nil, nil
	}
	file, err := os.Open(f.imagePath)
	if err != nil {
		return service.BookInput{}, nil, fmt.Errorf("open cover image: %w", err)
	}
	in.ImageName = filepath.Base(f.imagePath)
	in.Image = file
	return in, file, nil
}

func runBookAdd(cmdCtx *commandContext, args []string) error {
	var out renderer
	fs := newFlagSet(cmdCtx, "book-add", &out)
	var form bookFormFlags
	form.register(fs)
	if err := fs.Parse(args); err != nil {
		return err
	}
	if err := requireRole(cmdCtx, auth.RoleAdmin); err != nil {
		return err
	}
	if err := form.validate(); err != nil {
		return err
	}

	in, file, err := form.input()
	if err != nil {
		return err
	}
	if file != nil {
		defer file.Close() //nolint:errcheck // read-only file
	}

	ctx, cancel := context.WithTimeout(cmdCtx.Ctx, listRequestTimeout)
	defer cancel()

	book, err := cmdCtx.App.Books.Create(ctx, in)
	if err != nil {
		return err
	}
	if out.json() {
		return out.printJSON(book)
	}
	if err := writef(os.Stdout, "Added book %d.\n\n", book.ID); err != nil {
		return err
	}
	return renderBookDetail(book)
}

func runBookUpdate(cmdCtx *commandContext, args []string) error {
	var out renderer
	fs := newFlagSet(cmdCtx, "book-update", &out)
	var form bookFormFlags
	form.register(fs)
	if err := fs.Parse(args); err != nil {
		return err
	}
	id, err := positionalID(fs.Args(), "book ID")
	if err != nil {
		return err
	}
	if err := requireRole(cmdCtx, auth.RoleAdmin); err != nil {
		return err
	}
	if err := form.validate(); err != nil {
		return err
	}

	in, file, err := form.input()
	if err != nil {
		return err
	}
	if file != nil {
		defer file.Close() //nolint:errcheck // read-only file
	}

	ctx, cancel := context.WithTimeout(cmdCtx.Ctx, listRequestTimeout)
	defer cancel()

	book, err := cmdCtx.App.Books.Update(ctx, id, in)
	if err != nil {
		if apperrors.IsNotFound(err) {
			return apperrors.Validationf("No book with ID %d.", id)
		}
		return err
	}
	if out.json() {
		return out.printJSON(book)
	}
	if err := writef(os.Stdout, "Updated book %d.\n\n", book.ID); err != nil {
		return err
	}
	return renderBookDetail(book)
}

// positionalID parses the single required positional argument as an ID.
func positionalID(args []string, label string) (int64, error) {
	if len(args) != 1 {
		return 0, apperrors.Validationf("Exactly one %s argument is required.", label)
	}
	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil || id <= 0 {
		return 0, apperrors.Validationf("Invalid %s %q.", label, args[0])
	}
	return id, nil
}
