package main

import (
	"context"
	"os"
	"strings"

	"github.com/bookhaven/shelfctl/internal/domain/auth"
	"github.com/bookhaven/shelfctl/internal/domain/model"
	apperrors "github.com/bookhaven/shelfctl/internal/errors"
	"github.com/bookhaven/shelfctl/internal/listview"
)

func runBorrow(cmdCtx *commandContext, args []string) error {
	var out renderer
	fs := newFlagSet(cmdCtx, "borrow", &out)
	if err := fs.Parse(args); err != nil {
		return err
	}
	id, err := positionalID(fs.Args(), "book ID")
	if err != nil {
		return err
	}
	if err := requireRole(cmdCtx, auth.RoleUser); err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(cmdCtx.Ctx, listRequestTimeout)
	defer cancel()

	record, err := cmdCtx.App.Borrow.Borrow(ctx, id)
	if err != nil {
		if apperrors.IsNotFound(err) {
			return apperrors.Validationf("No book with ID %d.", id)
		}
		return err
	}
	if out.json() {
		return out.printJSON(record)
	}
	if err := writef(os.Stdout, "Borrowed %q. Due %s (record %d).\n",
		record.BookTitle, record.DueDate.String(), record.ID); err != nil {
		return err
	}
	return nil
}

func runReturn(cmdCtx *commandContext, args []string) error {
	var out renderer
	fs := newFlagSet(cmdCtx, "return", &out)
	if err := fs.Parse(args); err != nil {
		return err
	}
	id, err := positionalID(fs.Args(), "record ID")
	if err != nil {
		return err
	}
	if err := requireRole(cmdCtx, auth.RoleUser); err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(cmdCtx.Ctx, listRequestTimeout)
	defer cancel()

	record, err := cmdCtx.App.Borrow.Return(ctx, id)
	if err != nil {
		if apperrors.IsNotFound(err) {
			return apperrors.Validationf("No borrow record with ID %d.", id)
		}
		return err
	}
	if out.json() {
		return out.printJSON(record)
	}
	if err := writef(os.Stdout, "Returned %q (record %d).\n", record.BookTitle, record.ID); err != nil {
		return err
	}
	return nil
}

// historyFilter narrows a history listing to a single record status.
type historyFilter struct {
	Status model.BorrowStatus
}

func parseStatusFlag(raw string) (model.BorrowStatus, error) {
	if raw == "" {
		return "", nil
	}
	status := model.BorrowStatus(strings.ToUpper(strings.TrimSpace(raw)))
	if !status.Valid() {
		return "", apperrors.Validationf("Invalid status %q. Use %s or %s.",
			raw, model.BorrowStatusBorrowed, model.BorrowStatusReturned)
	}
	return status, nil
}

func runHistory(cmdCtx *commandContext, args []string) error {
	var out renderer
	fs := newFlagSet(cmdCtx, "history", &out)
	var (
		page      int
		size      int
		rawStatus string
		all       bool
	)
	fs.IntVar(&page, "page", 1, "Page number (1-based)")
	fs.IntVar(&size, "size", cmdCtx.App.Config.Output.PageSize, "Records per page")
	fs.StringVar(&rawStatus, "status", "", "Filter by status: BORROWED or RETURNED")
	fs.BoolVar(&all, "all", false, "Show every user's history (admin)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	status, err := parseStatusFlag(rawStatus)
	if err != nil {
		return err
	}

	fetch := cmdCtx.App.Borrow.MyHistory
	role := auth.RoleUser
	if all {
		fetch = cmdCtx.App.Borrow.AllHistory
		role = auth.RoleAdmin
	}
	if err := requireRole(cmdCtx, role); err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(cmdCtx.Ctx, listRequestTimeout)
	defer cancel()

	loader := listview.NewLoader(func(ctx context.Context, page, size int, filters historyFilter) (model.Page[model.BorrowRecord], error) {
		return fetch(ctx, page, size, filters.Status)
	}, size)

	state := loader.SetFilters(ctx, historyFilter{Status: status})
	if page > 1 {
		state = loader.SetPage(ctx, page-1)
	}
	if state.Err != nil {
		return state.Err
	}

	if out.json() {
		return out.printJSON(state.Data)
	}
	return renderRecordsPage(state.Data)
}

func runBorrowOverride(cmdCtx *commandContext, args []string) error {
	var out renderer
	fs := newFlagSet(cmdCtx, "borrow-override", &out)
	var rawStatus string
	fs.StringVar(&rawStatus, "status", "", "Target status: BORROWED or RETURNED")
	if err := fs.Parse(args); err != nil {
		return err
	}
	id, err := positionalID(fs.Args(), "record ID")
	if err != nil {
		return err
	}
	if err := requireRole(cmdCtx, auth.RoleAdmin); err != nil {
		return err
	}
	status, err := parseStatusFlag(rawStatus)
	if err != nil {
		return err
	}
	if status == "" {
		return apperrors.Validation("--status is required.")
	}

	ctx, cancel := context.WithTimeout(cmdCtx.Ctx, listRequestTimeout)
	defer cancel()

	record, err := cmdCtx.App.Borrow.OverrideStatus(ctx, id, status)
	if err != nil {
		if apperrors.IsNotFound(err) {
			return apperrors.Validationf("No borrow record with ID %d.", id)
		}
		return err
	}
	if out.json() {
		return out.printJSON(record)
	}
	if err := writef(os.Stdout, "Record %d is now %s.\n", record.ID, record.Status); err != nil {
		return err
	}
	return nil
}
