package main

import (
	"context"
	"os"

	"golang.org/x/sync/errgroup"

	"github.com/bookhaven/shelfctl/internal/domain/auth"
	"github.com/bookhaven/shelfctl/internal/domain/model"
	apperrors "github.com/bookhaven/shelfctl/internal/errors"
	"github.com/bookhaven/shelfctl/internal/session"
)

// runDashboard shows the landing view for whichever role is signed in,
// mirroring the post-login destinations the route guards send users to.
func runDashboard(cmdCtx *commandContext, args []string) error {
	var out renderer
	fs := newFlagSet(cmdCtx, "dashboard", &out)
	if err := fs.Parse(args); err != nil {
		return err
	}

	snap := cmdCtx.App.Session.Snapshot()
	decision := session.RequireRole(snap, auth.RoleUser)
	if decision.Action == session.ActionRedirect && decision.Target == session.RouteSignIn {
		return apperrors.Validation(`You are not signed in. Run "shelfctl login" first.`)
	}
	if snap.User == nil {
		return apperrors.Internal("session still loading")
	}

	ctx, cancel := context.WithTimeout(cmdCtx.Ctx, listRequestTimeout)
	defer cancel()

	if snap.User.IsAdmin() {
		return adminDashboard(ctx, cmdCtx, out, snap.User.Email)
	}
	return userDashboard(ctx, cmdCtx, out, snap.User.Email)
}

type userDashboardData struct {
	Email         string                         `json:"email"`
	CatalogSize   int                            `json:"catalogSize"`
	ActiveBorrows model.Page[model.BorrowRecord] `json:"activeBorrows"`
}

func userDashboard(ctx context.Context, cmdCtx *commandContext, out renderer, email string) error {
	var data userDashboardData
	data.Email = email

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		page, err := cmdCtx.App.Books.List(gctx, 0, 1)
		if err != nil {
			return err
		}
		data.CatalogSize = page.TotalElements
		return nil
	})
	g.Go(func() error {
		page, err := cmdCtx.App.Borrow.MyHistory(gctx, 0, cmdCtx.App.Config.Output.PageSize, model.BorrowStatusBorrowed)
		if err != nil {
			return err
		}
		data.ActiveBorrows = page
		return nil
	})
	if err := g.Wait(); err != nil {
		return err
	}

	if out.json() {
		return out.printJSON(data)
	}
	if err := writef(os.Stdout, "Signed in as %s\nCatalog: %d books\n\n", data.Email, data.CatalogSize); err != nil {
		return err
	}
	if len(data.ActiveBorrows.Content) == 0 {
		return writeln(os.Stdout, `No books out. Browse the catalog with "shelfctl books".`)
	}
	if err := writef(os.Stdout, "Books out (%d):\n", data.ActiveBorrows.TotalElements); err != nil {
		return err
	}
	return renderRecordsPage(data.ActiveBorrows)
}

type adminDashboardData struct {
	Email         string `json:"email"`
	TotalBooks    int    `json:"totalBooks"`
	TotalAccounts int    `json:"totalAccounts"`
	ActiveBorrows int    `json:"activeBorrows"`
}

func adminDashboard(ctx context.Context, cmdCtx *commandContext, out renderer, email string) error {
	var data adminDashboardData
	data.Email = email

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		page, err := cmdCtx.App.Books.List(gctx, 0, 1)
		if err != nil {
			return err
		}
		data.TotalBooks = page.TotalElements
		return nil
	})
	g.Go(func() error {
		page, err := cmdCtx.App.Users.List(gctx, 0, 1, "")
		if err != nil {
			return err
		}
		data.TotalAccounts = page.TotalElements
		return nil
	})
	g.Go(func() error {
		page, err := cmdCtx.App.Borrow.AllHistory(gctx, 0, 1, model.BorrowStatusBorrowed)
		if err != nil {
			return err
		}
		data.ActiveBorrows = page.TotalElements
		return nil
	})
	if err := g.Wait(); err != nil {
		return err
	}

	if out.json() {
		return out.printJSON(data)
	}
	if err := writef(os.Stdout, "Signed in as %s (admin)\n\n", data.Email); err != nil {
		return err
	}
	if err := writef(os.Stdout, "Books:           %d\n", data.TotalBooks); err != nil {
		return err
	}
	if err := writef(os.Stdout, "Accounts:        %d\n", data.TotalAccounts); err != nil {
		return err
	}
	return writef(os.Stdout, "Active borrows:  %d\n", data.ActiveBorrows)
}
