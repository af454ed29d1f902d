package main

import (
	"context"
	"os"
	"strings"
	"time"

	"github.com/bookhaven/shelfctl/internal/domain/auth"
	"github.com/bookhaven/shelfctl/internal/domain/model"
	apperrors "github.com/bookhaven/shelfctl/internal/errors"
	"github.com/bookhaven/shelfctl/internal/listview"
	"github.com/bookhaven/shelfctl/internal/service"
	"github.com/bookhaven/shelfctl/internal/validation"
)

// accountFilter narrows the account list to a single role.
type accountFilter struct {
	Role string
}

func runUsers(cmdCtx *commandContext, args []string) error {
	var out renderer
	fs := newFlagSet(cmdCtx, "users", &out)
	var (
		page int
		size int
		role string
	)
	fs.IntVar(&page, "page", 1, "Page number (1-based)")
	fs.IntVar(&size, "size", cmdCtx.App.Config.Output.PageSize, "Accounts per page")
	fs.StringVar(&role, "role", "", "Filter by role: ADMIN or USER")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if err := requireRole(cmdCtx, auth.RoleAdmin); err != nil {
		return err
	}

	role = strings.ToUpper(strings.TrimSpace(role))
	if role != "" {
		if msg := validation.OneOf("Role", []string{string(auth.RoleAdmin), string(auth.RoleUser)})(role); msg != "" {
			return apperrors.ValidationField("role", msg)
		}
	}

	ctx, cancel := context.WithTimeout(cmdCtx.Ctx, listRequestTimeout)
	defer cancel()

	loader := listview.NewLoader(func(ctx context.Context, page, size int, filters accountFilter) (model.Page[model.User], error) {
		return cmdCtx.App.Users.List(ctx, page, size, filters.Role)
	}, size)

	state := loader.SetFilters(ctx, accountFilter{Role: role})
	if page > 1 {
		state = loader.SetPage(ctx, page-1)
	}
	if state.Err != nil {
		return state.Err
	}

	if out.json() {
		return out.printJSON(state.Data)
	}
	return renderUsersPage(state.Data)
}

func runUserShow(cmdCtx *commandContext, args []string) error {
	var out renderer
	fs := newFlagSet(cmdCtx, "user", &out)
	if err := fs.Parse(args); err != nil {
		return err
	}
	id, err := positionalID(fs.Args(), "user ID")
	if err != nil {
		return err
	}
	if err := requireRole(cmdCtx, auth.RoleAdmin); err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(cmdCtx.Ctx, listRequestTimeout)
	defer cancel()

	user, err := cmdCtx.App.Users.Get(ctx, id)
	if err != nil {
		if apperrors.IsNotFound(err) {
			return apperrors.Validationf("No account with ID %d.", id)
		}
		return err
	}

	if out.json() {
		return out.printJSON(user)
	}
	return renderUsersPage(model.Page[model.User]{
		Content:       []model.User{user},
		TotalElements: 1,
		TotalPages:    1,
	})
}

func runUserUpdate(cmdCtx *commandContext, args []string) error {
	var out renderer
	fs := newFlagSet(cmdCtx, "user-update", &out)
	var patch model.UserPatch
	fs.Func("name", "New full name", func(v string) error {
		patch.FullName = &v
		return nil
	})
	fs.Func("role", "New role: ADMIN or USER", func(v string) error {
		role := strings.ToUpper(strings.TrimSpace(v))
		patch.Role = &role
		return nil
	})
	fs.BoolFunc("verified", "Mark the account verified", func(string) error {
		verified := true
		patch.Verified = &verified
		return nil
	})
	fs.BoolFunc("unverified", "Mark the account unverified", func(string) error {
		verified := false
		patch.Verified = &verified
		return nil
	})
	if err := fs.Parse(args); err != nil {
		return err
	}
	id, err := positionalID(fs.Args(), "user ID")
	if err != nil {
		return err
	}
	if err := requireRole(cmdCtx, auth.RoleAdmin); err != nil {
		return err
	}
	if patch.FullName == nil && patch.Role == nil && patch.Verified == nil {
		return apperrors.Validation("Nothing to update. Pass --name, --role, --verified, or --unverified.")
	}
	if patch.Role != nil {
		if msg := validation.OneOf("Role", []string{string(auth.RoleAdmin), string(auth.RoleUser)})(*patch.Role); msg != "" {
			return apperrors.ValidationField("role", msg)
		}
	}
	if patch.FullName != nil {
		if msg := validation.Required("Name", 255)(*patch.FullName); msg != "" {
			return apperrors.ValidationField("name", msg)
		}
	}

	ctx, cancel := context.WithTimeout(cmdCtx.Ctx, listRequestTimeout)
	defer cancel()

	user, err := cmdCtx.App.Users.Update(ctx, id, patch)
	if err != nil {
		if apperrors.IsNotFound(err) {
			return apperrors.Validationf("No account with ID %d.", id)
		}
		return err
	}
	if out.json() {
		return out.printJSON(user)
	}
	if err := writef(os.Stdout, "Updated account %d.\n\n", user.ID); err != nil {
		return err
	}
	return renderUsersPage(model.Page[model.User]{
		Content:       []model.User{user},
		TotalElements: 1,
		TotalPages:    1,
	})
}

func runUserRecords(cmdCtx *commandContext, args []string) error {
	var out renderer
	fs := newFlagSet(cmdCtx, "user-records", &out)
	var (
		page int
		size int
	)
	fs.IntVar(&page, "page", 1, "Page number (1-based)")
	fs.IntVar(&size, "size", cmdCtx.App.Config.Output.PageSize, "Records per page")
	if err := fs.Parse(args); err != nil {
		return err
	}
	id, err := positionalID(fs.Args(), "user ID")
	if err != nil {
		return err
	}
	if err := requireRole(cmdCtx, auth.RoleAdmin); err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(cmdCtx.Ctx, listRequestTimeout)
	defer cancel()

	loader := listview.NewLoader(func(ctx context.Context, page, size int, _ struct{}) (model.Page[model.BorrowRecord], error) {
		return cmdCtx.App.Users.BorrowRecords(ctx, id, page, size)
	}, size)

	state := loader.SetPage(ctx, page-1)
	if state.Err != nil {
		return state.Err
	}

	if out.json() {
		return out.printJSON(state.Data)
	}
	return renderRecordsPage(state.Data)
}

func runRecordUpdate(cmdCtx *commandContext, args []string) error {
	var out renderer
	fs := newFlagSet(cmdCtx, "record-update", &out)
	var (
		patch   service.BorrowRecordPatch
		flagErr error
	)
	fs.Func("due-date", "New due date (YYYY-MM-DD)", func(v string) error {
		t, err := time.Parse("2006-01-02", strings.TrimSpace(v))
		if err != nil {
			flagErr = apperrors.ValidationField("due-date", "Enter the due date as YYYY-MM-DD.")
			return nil
		}
		patch.DueDate = &model.Date{Time: t}
		return nil
	})
	fs.Func("status", "New status: BORROWED or RETURNED", func(v string) error {
		status, err := parseStatusFlag(v)
		if err != nil {
			flagErr = err
			return nil
		}
		patch.Status = &status
		return nil
	})
	if err := fs.Parse(args); err != nil {
		return err
	}
	if flagErr != nil {
		return flagErr
	}
	id, err := positionalID(fs.Args(), "record ID")
	if err != nil {
		return err
	}
	if err := requireRole(cmdCtx, auth.RoleAdmin); err != nil {
		return err
	}
	if patch.DueDate == nil && patch.Status == nil {
		return apperrors.Validation("Nothing to update. Pass --due-date or --status.")
	}

	ctx, cancel := context.WithTimeout(cmdCtx.Ctx, listRequestTimeout)
	defer cancel()

	record, err := cmdCtx.App.Users.UpdateBorrowRecord(ctx, id, patch)
	if err != nil {
		if apperrors.IsNotFound(err) {
			return apperrors.Validationf("No borrow record with ID %d.", id)
		}
		return err
	}
	if out.json() {
		return out.printJSON(record)
	}
	if err := writef(os.Stdout, "Updated record %d.\n\n", record.ID); err != nil {
		return err
	}
	return renderRecordDetail(record)
}
