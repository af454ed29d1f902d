// Command shelfctl is a terminal client for the BookHaven library API:
// browsing the catalog, borrowing and returning books, and the admin
// surface for managing accounts and borrow records.
package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"sort"

	"github.com/bookhaven/shelfctl/internal/bootstrap"
	apperrors "github.com/bookhaven/shelfctl/internal/errors"
)

type commandFn func(ctx *commandContext, args []string) error

type command struct {
	name        string
	description string
	run         commandFn
}

type commandContext struct {
	Ctx    context.Context
	Logger *slog.Logger
	App    *bootstrap.App
}

func main() {
	cfg, err := bootstrap.LoadConfig()
	if err != nil {
		bootstrap.InitLogger(false).Error("load config", "error", err)
		os.Exit(1) //nolint:forbidigo // CLI must signal configuration load failure to shell scripts
	}
	logger := bootstrap.InitLogger(cfg.IsDev)

	if len(os.Args) < 2 {
		if err := printUsage(); err != nil {
			logger.Error("print usage failed", "error", err)
		}
		os.Exit(2) //nolint:forbidigo // CLI must exit with failure status when no command is provided
	}

	cmdName := os.Args[1]
	cmd, ok := commands()[cmdName]
	if !ok {
		if err := writef(os.Stderr, "unknown command %q\n\n", cmdName); err != nil {
			logger.Error("print unknown command message failed", "error", err)
		}
		if err := printUsage(); err != nil {
			logger.Error("print usage failed", "error", err)
		}
		os.Exit(2) //nolint:forbidigo // CLI must exit with failure status when command is unknown
	}

	app, err := bootstrap.NewApp(cfg, logger)
	if err != nil {
		logger.Error("initialize client", "error", err)
		os.Exit(1) //nolint:forbidigo // CLI must signal startup failure to callers
	}

	cmdCtx := &commandContext{
		Ctx:    context.Background(),
		Logger: logger,
		App:    app,
	}
	if runErr := cmd.run(cmdCtx, os.Args[2:]); runErr != nil {
		if writeErr := writeln(os.Stderr, apperrors.UserMessage(runErr)); writeErr != nil {
			logger.Error("print error message failed", "error", writeErr)
		}
		logger.Debug("command failed", "command", cmdName, "error", runErr)
		os.Exit(1) //nolint:forbidigo // CLI must propagate command execution failure to callers
	}
}

func commands() map[string]command {
	return map[string]command{
		"login": {
			name:        "login",
			description: "Sign in with email and password",
			run:         runLogin,
		},
		"login-google": {
			name:        "login-google",
			description: "Sign in with a Google account via the browser",
			run:         runLoginGoogle,
		},
		"logout": {
			name:        "logout",
			description: "Clear the stored session token",
			run:         runLogout,
		},
		"register": {
			name:        "register",
			description: "Create a new account (requires OTP verification)",
			run:         runRegister,
		},
		"verify-otp": {
			name:        "verify-otp",
			description: "Verify a new account with the emailed one-time code",
			run:         runVerifyOTP,
		},
		"resend-otp": {
			name:        "resend-otp",
			description: "Request a fresh one-time code for an unverified account",
			run:         runResendOTP,
		},
		"forgot-password": {
			name:        "forgot-password",
			description: "Request a password reset email",
			run:         runForgotPassword,
		},
		"reset-password": {
			name:        "reset-password",
			description: "Set a new password using an emailed reset token",
			run:         runResetPassword,
		},
		"whoami": {
			name:        "whoami",
			description: "Show the current session identity",
			run:         runWhoami,
		},
		"books": {
			name:        "books",
			description: "List the catalog, with paging and client-side search",
			run:         runBooks,
		},
		"book": {
			name:        "book",
			description: "Show one book with availability",
			run:         runBookShow,
		},
		"book-add": {
			name:        "book-add",
			description: "Add a book to the catalog (admin)",
			run:         runBookAdd,
		},
		"book-update": {
			name:        "book-update",
			description: "Update a book's fields or cover image (admin)",
			run:         runBookUpdate,
		},
		"borrow": {
			name:        "borrow",
			description: "Borrow a book by ID",
			run:         runBorrow,
		},
		"return": {
			name:        "return",
			description: "Return a borrowed book by record ID",
			run:         runReturn,
		},
		"history": {
			name:        "history",
			description: "Show borrow history (your own, or everyone's with --all)",
			run:         runHistory,
		},
		"borrow-override": {
			name:        "borrow-override",
			description: "Force a borrow record into a status (admin)",
			run:         runBorrowOverride,
		},
		"users": {
			name:        "users",
			description: "List accounts, optionally filtered by role (admin)",
			run:         runUsers,
		},
		"user": {
			name:        "user",
			description: "Show one account (admin)",
			run:         runUserShow,
		},
		"user-update": {
			name:        "user-update",
			description: "Update an account's name, role, or verified flag (admin)",
			run:         runUserUpdate,
		},
		"user-records": {
			name:        "user-records",
			description: "Show an account's borrow records (admin)",
			run:         runUserRecords,
		},
		"record-update": {
			name:        "record-update",
			description: "Update a borrow record's due date or status (admin)",
			run:         runRecordUpdate,
		},
		"dashboard": {
			name:        "dashboard",
			description: "Show the dashboard for your role",
			run:         runDashboard,
		},
	}
}

func printUsage() error {
	if err := writef(os.Stdout, "Usage: shelfctl <command> [flags]\n\n"); err != nil {
		return err
	}
	if err := writef(os.Stdout, "Available commands:\n"); err != nil {
		return err
	}
	cmds := commands()
	names := make([]string, 0, len(cmds))
	for name := range cmds {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		if err := writef(os.Stdout, "  %-18s %s\n", name, cmds[name].description); err != nil {
			return err
		}
	}
	return nil
}

// newFlagSet creates a command flag set with the shared output flags
// registered. out starts from the configured default format and picks
// up --output/--query after parsing.
func newFlagSet(cmdCtx *commandContext, name string, out *renderer) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(os.Stderr)

	out.format = cmdCtx.App.Config.Output.Format
	fs.Func("output", "Output format: table or json", func(v string) error {
		return out.format.UnmarshalText([]byte(v))
	})
	fs.StringVar(&out.query, "query", "", "JMESPath projection applied to JSON output")
	return fs
}
