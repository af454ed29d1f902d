package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"text/tabwriter"

	jmespath "github.com/jmespath-community/go-jmespath"

	"github.com/bookhaven/shelfctl/config"
	"github.com/bookhaven/shelfctl/internal/domain/model"
	"github.com/bookhaven/shelfctl/internal/listview"
)

func writef(w io.Writer, format string, args ...any) error {
	if _, err := fmt.Fprintf(w, format, args...); err != nil {
		return fmt.Errorf("write output: %w", err)
	}
	return nil
}

func writeln(w io.Writer, args ...any) error {
	if _, err := fmt.Fprintln(w, args...); err != nil {
		return fmt.Errorf("write output: %w", err)
	}
	return nil
}

// renderer decides between the human table output and JSON, with an
// optional JMESPath projection applied to the JSON form.
type renderer struct {
	format config.OutputFormat
	query  string
}

func (r renderer) json() bool { return r.format == config.OutputJSON || r.query != "" }

// printJSON writes v as indented JSON, applying the JMESPath query when
// one is set. The value is round-tripped through encoding/json so the
// query sees the same shapes the API uses.
func (r renderer) printJSON(v any) error {
	if r.query != "" {
		raw, err := json.Marshal(v)
		if err != nil {
			return fmt.Errorf("encode output: %w", err)
		}
		var generic any
		if err := json.Unmarshal(raw, &generic); err != nil {
			return fmt.Errorf("decode output: %w", err)
		}
		projected, err := jmespath.Search(r.query, generic)
		if err != nil {
			return fmt.Errorf("apply query %q: %w", r.query, err)
		}
		v = projected
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encode output: %w", err)
	}
	return nil
}

func renderBookRow(w io.Writer, b model.Book) error {
	avail := fmt.Sprintf("%d/%d", b.AvailableCopies, b.TotalCopies)
	return writef(w, "%d\t%s\t%s\t%s\t%s\n", b.ID, b.Title, b.Author, b.ISBN, avail)
}

func renderBooksPage(page model.Page[model.Book]) error {
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	if err := writeln(w, "ID\tTitle\tAuthor\tISBN\tAvailable"); err != nil {
		return err
	}
	for _, b := range page.Content {
		if err := renderBookRow(w, b); err != nil {
			return err
		}
	}
	if err := w.Flush(); err != nil {
		return fmt.Errorf("flush table: %w", err)
	}
	return renderPageFooter(page.CurrentPage, page.TotalPages, page.TotalElements)
}

func renderBookDetail(b model.Book) error {
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	badge := "available"
	if !b.Available() {
		badge = "all copies out"
	}
	rows := [][2]string{
		{"ID", strconv.FormatInt(b.ID, 10)},
		{"Title", b.Title},
		{"Author", b.Author},
		{"ISBN", b.ISBN},
		{"Copies", fmt.Sprintf("%d of %d available", b.AvailableCopies, b.TotalCopies)},
		{"Status", badge},
	}
	if b.ImageURL != "" {
		rows = append(rows, [2]string{"Cover", b.ImageURL})
	}
	for _, row := range rows {
		if err := writef(w, "%s\t%s\n", row[0], row[1]); err != nil {
			return err
		}
	}
	if err := w.Flush(); err != nil {
		return fmt.Errorf("flush table: %w", err)
	}
	return nil
}

func renderRecordRow(w io.Writer, rec model.BorrowRecord) error {
	returned := "-"
	if rec.ReturnDate != nil {
		returned = rec.ReturnDate.String()
	}
	return writef(w, "%d\t%s\t%s\t%s\t%s\t%s\t%s\n",
		rec.ID, rec.UserEmail, rec.BookTitle, rec.BorrowDate, rec.DueDate, returned, rec.Status)
}

func renderRecordsPage(page model.Page[model.BorrowRecord]) error {
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	if err := writeln(w, "ID\tUser\tBook\tBorrowed\tDue\tReturned\tStatus"); err != nil {
		return err
	}
	for _, rec := range page.Content {
		if err := renderRecordRow(w, rec); err != nil {
			return err
		}
	}
	if err := w.Flush(); err != nil {
		return fmt.Errorf("flush table: %w", err)
	}
	return renderPageFooter(page.CurrentPage, page.TotalPages, page.TotalElements)
}

func renderRecordDetail(rec model.BorrowRecord) error {
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	if err := writeln(w, "ID\tUser\tBook\tBorrowed\tDue\tReturned\tStatus"); err != nil {
		return err
	}
	if err := renderRecordRow(w, rec); err != nil {
		return err
	}
	if err := w.Flush(); err != nil {
		return fmt.Errorf("flush table: %w", err)
	}
	return nil
}

func renderUsersPage(page model.Page[model.User]) error {
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	if err := writeln(w, "ID\tEmail\tName\tRole\tProvider\tVerified\tActive Borrows"); err != nil {
		return err
	}
	for _, u := range page.Content {
		if err := writef(w, "%d\t%s\t%s\t%s\t%s\t%t\t%d\n",
			u.ID, u.Email, u.FullName, u.Role, u.AuthProvider, u.Verified, u.ActiveBorrows); err != nil {
			return err
		}
	}
	if err := w.Flush(); err != nil {
		return fmt.Errorf("flush table: %w", err)
	}
	return renderPageFooter(page.CurrentPage, page.TotalPages, page.TotalElements)
}

// renderPageFooter prints the pager line. A single page renders nothing;
// elided ranges show as "..".
func renderPageFooter(current, total, totalElements int) error {
	window := listview.PageWindow(current, total)
	if window == nil {
		return nil
	}

	parts := make([]string, 0, len(window))
	for _, p := range window {
		switch {
		case p == listview.Gap:
			parts = append(parts, "..")
		case p == current:
			parts = append(parts, "["+strconv.Itoa(p+1)+"]")
		default:
			parts = append(parts, strconv.Itoa(p+1))
		}
	}
	return writef(os.Stdout, "\nPage %d of %d (%d total)  %s\n",
		current+1, total, totalElements, strings.Join(parts, " "))
}
