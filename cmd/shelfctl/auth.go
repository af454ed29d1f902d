package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"golang.org/x/term"

	"github.com/bookhaven/shelfctl/internal/adapters/googleauth"
	"github.com/bookhaven/shelfctl/internal/domain/auth"
	apperrors "github.com/bookhaven/shelfctl/internal/errors"
	"github.com/bookhaven/shelfctl/internal/service"
	"github.com/bookhaven/shelfctl/internal/session"
	"github.com/bookhaven/shelfctl/internal/validation"
)

const authRequestTimeout = time.Minute

// requireRole maps the session guard's decision to a command error. A
// signed-in user with the wrong role is pointed at their own surface,
// not told "forbidden".
func requireRole(cmdCtx *commandContext, required auth.Role) error {
	snap := cmdCtx.App.Session.Snapshot()
	decision := session.RequireRole(snap, required)
	switch decision.Action {
	case session.ActionProceed:
		return nil
	case session.ActionPending:
		return apperrors.Internal("session still loading")
	default:
		if decision.Target == session.RouteSignIn {
			return apperrors.Validation(`You are not signed in. Run "shelfctl login" first.`)
		}
		return apperrors.Validationf(
			"This command needs the %s role. Your dashboard: shelfctl dashboard", required)
	}
}

func runLogin(cmdCtx *commandContext, args []string) error {
	var out renderer
	fs := newFlagSet(cmdCtx, "login", &out)
	var email string
	fs.StringVar(&email, "email", "", "Account email address")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if decision := session.RequireAnonymous(cmdCtx.App.Session.Snapshot()); decision.Action == session.ActionRedirect {
		return apperrors.Validation(`Already signed in. Run "shelfctl logout" first.`)
	}
	if msg := validation.Email("Email")(email); msg != "" {
		return apperrors.ValidationField("email", msg)
	}

	password, err := promptPassword("Password")
	if err != nil {
		return err
	}
	if msg := validation.MinLength("Password", 1)(password); msg != "" {
		return apperrors.ValidationField("password", msg)
	}

	ctx, cancel := context.WithTimeout(cmdCtx.Ctx, authRequestTimeout)
	defer cancel()

	token, err := cmdCtx.App.Auth.Authenticate(ctx, service.Credentials{
		Email:    strings.TrimSpace(email),
		Password: password,
	})
	if err != nil {
		return err
	}
	if err := cmdCtx.App.Session.Login(token); err != nil {
		return err
	}

	snap := cmdCtx.App.Session.Snapshot()
	return writef(os.Stdout, "Signed in as %s (%s)\n", snap.User.Email, snap.User.Role)
}

func runLoginGoogle(cmdCtx *commandContext, args []string) error {
	var out renderer
	fs := newFlagSet(cmdCtx, "login-google", &out)
	if err := fs.Parse(args); err != nil {
		return err
	}

	googleCfg := cmdCtx.App.Config.Auth.Google
	if !googleCfg.Enabled() {
		return apperrors.Validation("Google sign-in is not configured. Set SHELF_GOOGLE_CLIENT_ID and SHELF_GOOGLE_CLIENT_SECRET.")
	}
	if decision := session.RequireAnonymous(cmdCtx.App.Session.Snapshot()); decision.Action == session.ActionRedirect {
		return apperrors.Validation(`Already signed in. Run "shelfctl logout" first.`)
	}

	ctx, cancel := context.WithTimeout(cmdCtx.Ctx, 5*time.Minute)
	defer cancel()

	provider, err := googleauth.NewProvider(ctx, googleauth.ProviderConfig{
		ClientID:     googleCfg.ClientID,
		ClientSecret: googleCfg.ClientSecret,
		RedirectAddr: googleCfg.RedirectAddr,
		Scope:        googleCfg.Scope,
		IssuerURL:    googleCfg.IssuerURL,
	})
	if err != nil {
		return err
	}

	idToken, err := provider.SignIn(ctx, func(authURL string) {
		_ = writef(os.Stderr, "Open this URL in your browser to sign in:\n\n  %s\n\nWaiting for the redirect...\n", authURL)
	})
	if err != nil {
		return err
	}

	token, err := cmdCtx.App.Auth.GoogleSignIn(ctx, idToken)
	if err != nil {
		return err
	}
	if err := cmdCtx.App.Session.Login(token); err != nil {
		return err
	}

	snap := cmdCtx.App.Session.Snapshot()
	return writef(os.Stdout, "Signed in as %s (%s)\n", snap.User.Email, snap.User.Role)
}

func runLogout(cmdCtx *commandContext, args []string) error {
	var out renderer
	fs := newFlagSet(cmdCtx, "logout", &out)
	if err := fs.Parse(args); err != nil {
		return err
	}

	if err := cmdCtx.App.Session.Logout(); err != nil {
		return err
	}
	return writeln(os.Stdout, "Signed out.")
}

func runRegister(cmdCtx *commandContext, args []string) error {
	var out renderer
	fs := newFlagSet(cmdCtx, "register", &out)
	var req service.RegisterRequest
	fs.StringVar(&req.FirstName, "first-name", "", "First name")
	fs.StringVar(&req.LastName, "last-name", "", "Last name")
	fs.StringVar(&req.Email, "email", "", "Email address")
	fs.StringVar(&req.Role, "role", "", "Requested role: USER or ADMIN (ADMIN needs --admin-code)")
	fs.StringVar(&req.AdminCode, "admin-code", "", "Admin registration code")
	if err := fs.Parse(args); err != nil {
		return err
	}

	fv := validation.New().
		Validate("first-name", req.FirstName, validation.Required("First name", 60)).
		Validate("last-name", req.LastName, validation.Required("Last name", 60)).
		Validate("email", req.Email, validation.Email("Email"))
	if req.Role != "" {
		fv.Validate("role", req.Role, validation.OneOf("Role", []string{"USER", "ADMIN"}))
	}
	if err := fv.Err(); err != nil {
		return apperrors.Wrap(err, apperrors.ErrCodeValidation, err.Error())
	}
	if strings.EqualFold(req.Role, "ADMIN") && req.AdminCode == "" {
		return apperrors.ValidationField("admin-code", "Admin registration requires --admin-code.")
	}

	password, err := promptNewPassword()
	if err != nil {
		return err
	}
	req.Password = password
	req.Role = strings.ToUpper(strings.TrimSpace(req.Role))

	ctx, cancel := context.WithTimeout(cmdCtx.Ctx, authRequestTimeout)
	defer cancel()

	message, err := cmdCtx.App.Auth.Register(ctx, req)
	if err != nil {
		return err
	}
	if message == "" {
		message = "Account created."
	}
	if err := writeln(os.Stdout, message); err != nil {
		return err
	}
	return writef(os.Stdout, "Check your email for a one-time code, then run: shelfctl verify-otp --email %s --code <otp>\n", req.Email)
}

func runVerifyOTP(cmdCtx *commandContext, args []string) error {
	var out renderer
	fs := newFlagSet(cmdCtx, "verify-otp", &out)
	var email, code string
	fs.StringVar(&email, "email", "", "Account email address")
	fs.StringVar(&code, "code", "", "One-time code from the verification email")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if msg := validation.Email("Email")(email); msg != "" {
		return apperrors.ValidationField("email", msg)
	}
	if msg := validation.Required("Code", 12)(code); msg != "" {
		return apperrors.ValidationField("code", msg)
	}

	ctx, cancel := context.WithTimeout(cmdCtx.Ctx, authRequestTimeout)
	defer cancel()

	if err := cmdCtx.App.Auth.VerifyOTP(ctx, strings.TrimSpace(email), strings.TrimSpace(code)); err != nil {
		return err
	}
	return writeln(os.Stdout, `Account verified. Run "shelfctl login" to sign in.`)
}

func runResendOTP(cmdCtx *commandContext, args []string) error {
	var out renderer
	fs := newFlagSet(cmdCtx, "resend-otp", &out)
	var email string
	fs.StringVar(&email, "email", "", "Account email address")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if msg := validation.Email("Email")(email); msg != "" {
		return apperrors.ValidationField("email", msg)
	}

	ctx, cancel := context.WithTimeout(cmdCtx.Ctx, authRequestTimeout)
	defer cancel()

	if err := cmdCtx.App.Auth.ResendOTP(ctx, strings.TrimSpace(email)); err != nil {
		return err
	}
	return writeln(os.Stdout, "A new one-time code is on its way.")
}

func runForgotPassword(cmdCtx *commandContext, args []string) error {
	var out renderer
	fs := newFlagSet(cmdCtx, "forgot-password", &out)
	var email string
	fs.StringVar(&email, "email", "", "Account email address")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if msg := validation.Email("Email")(email); msg != "" {
		return apperrors.ValidationField("email", msg)
	}

	ctx, cancel := context.WithTimeout(cmdCtx.Ctx, authRequestTimeout)
	defer cancel()

	if err := cmdCtx.App.Auth.ForgotPassword(ctx, strings.TrimSpace(email)); err != nil {
		return err
	}
	return writeln(os.Stdout, "If that address has an account, a reset email is on its way.")
}

func runResetPassword(cmdCtx *commandContext, args []string) error {
	var out renderer
	fs := newFlagSet(cmdCtx, "reset-password", &out)
	var resetToken string
	fs.StringVar(&resetToken, "token", "", "Reset token from the password reset email")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if msg := validation.Required("Token", 512)(resetToken); msg != "" {
		return apperrors.ValidationField("token", msg)
	}

	password, err := promptNewPassword()
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(cmdCtx.Ctx, authRequestTimeout)
	defer cancel()

	if err := cmdCtx.App.Auth.ResetPassword(ctx, strings.TrimSpace(resetToken), password); err != nil {
		if apperrors.IsAPI(err) {
			return apperrors.Validationf(
				"%s The reset link may have expired; run \"shelfctl forgot-password\" for a new one.",
				apperrors.UserMessage(err))
		}
		return err
	}
	return writeln(os.Stdout, `Password updated. Run "shelfctl login" to sign in.`)
}

func runWhoami(cmdCtx *commandContext, args []string) error {
	var out renderer
	fs := newFlagSet(cmdCtx, "whoami", &out)
	var watch bool
	fs.BoolVar(&watch, "watch", false, "Keep running and report session changes from other processes")
	if err := fs.Parse(args); err != nil {
		return err
	}

	printSnap := func(snap session.Snapshot) error {
		if !snap.LoggedIn() {
			return writeln(os.Stdout, "Not signed in.")
		}
		if out.json() {
			return out.printJSON(snap.User)
		}
		return writef(os.Stdout, "%s (%s)\n", snap.User.Email, snap.User.Role)
	}

	if err := printSnap(cmdCtx.App.Session.Snapshot()); err != nil {
		return err
	}
	if !watch {
		return nil
	}

	events, err := cmdCtx.App.Tokens.Watch(cmdCtx.Ctx)
	if err != nil {
		return err
	}
	cmdCtx.App.Session.Subscribe(func(snap session.Snapshot) {
		if err := printSnap(snap); err != nil {
			cmdCtx.Logger.Warn("print session change", "error", err)
		}
	})

	ctx, stop := signal.NotifyContext(cmdCtx.Ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()
	cmdCtx.App.Session.Run(ctx, events)
	return nil
}

// promptPassword reads a password without echo when stdin is a
// terminal, and as a plain line otherwise (piped input, tests).
func promptPassword(label string) (string, error) {
	fd := int(os.Stdin.Fd())
	if term.IsTerminal(fd) {
		if err := writef(os.Stderr, "%s: ", label); err != nil {
			return "", err
		}
		raw, err := term.ReadPassword(fd)
		if writeErr := writeln(os.Stderr); writeErr != nil {
			return "", writeErr
		}
		if err != nil {
			return "", fmt.Errorf("read password: %w", err)
		}
		return string(raw), nil
	}

	reader := bufio.NewReader(os.Stdin)
	line, err := reader.ReadString('\n')
	if err != nil && line == "" {
		return "", errors.New("no password provided on stdin")
	}
	return strings.TrimRight(line, "\r\n"), nil
}

// promptNewPassword asks for a password and its confirmation, applying
// the account password policy.
func promptNewPassword() (string, error) {
	password, err := promptPassword("New password")
	if err != nil {
		return "", err
	}
	if msg := validation.MinLength("Password", 6)(password); msg != "" {
		return "", apperrors.ValidationField("password", msg)
	}
	confirm, err := promptPassword("Confirm password")
	if err != nil {
		return "", err
	}
	if msg := validation.Match("Confirm password", password)(confirm); msg != "" {
		return "", apperrors.ValidationField("confirm-password", msg)
	}
	return password, nil
}
