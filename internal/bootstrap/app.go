package bootstrap

import (
	"fmt"
	"log/slog"

	"github.com/bookhaven/shelfctl/config"
	"github.com/bookhaven/shelfctl/internal/adapters/tokenfile"
	"github.com/bookhaven/shelfctl/internal/api"
	"github.com/bookhaven/shelfctl/internal/service"
	"github.com/bookhaven/shelfctl/internal/session"
)

// App holds the wired client dependency graph shared by every command.
type App struct {
	Config  config.AppConfig
	Logger  *slog.Logger
	Tokens  *tokenfile.Store
	API     *api.Client
	Session *session.Manager

	Auth   *service.AuthService
	Books  *service.BookService
	Borrow *service.BorrowService
	Users  *service.UserService
}

// NewApp wires the token store, API client, session, and resource
// services from configuration. The session is initialized from the
// stored token before NewApp returns, so callers can read a settled
// snapshot immediately.
func NewApp(cfg config.AppConfig, logger *slog.Logger) (*App, error) {
	if logger == nil {
		logger = slog.Default()
	}

	tokens, err := tokenfile.NewStore(cfg.Auth.TokenFile)
	if err != nil {
		return nil, fmt.Errorf("open token store: %w", err)
	}

	client, err := api.NewClient(api.Options{
		BaseURL: cfg.API.BaseURL,
		Tokens:  tokens,
		Timeout: cfg.API.Timeout,
		Logger:  logger,
	})
	if err != nil {
		return nil, fmt.Errorf("build api client: %w", err)
	}

	sess := session.NewManager(session.ManagerOptions{
		Store:  tokens,
		Logger: logger,
	})
	sess.Initialize()

	return &App{
		Config:  cfg,
		Logger:  logger,
		Tokens:  tokens,
		API:     client,
		Session: sess,
		Auth:    service.NewAuthService(service.AuthServiceOptions{API: client}),
		Books:   service.NewBookService(service.BookServiceOptions{API: client}),
		Borrow:  service.NewBorrowService(service.BorrowServiceOptions{API: client}),
		Users:   service.NewUserService(service.UserServiceOptions{API: client}),
	}, nil
}
