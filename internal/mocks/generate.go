// Package mocks provides mock implementations for testing.
//
// This package uses go.uber.org/mock (gomock) to generate type-safe mocks
// for our interfaces. The mocks are generated using go:generate directives
// and provide a fluent API for setting up test expectations.
//
// To regenerate mocks after interface changes, run:
//
//	go generate ./internal/mocks
//
// Usage in tests:
//
//	ctrl := gomock.NewController(t)
//	defer ctrl.Finish()
//	store := tokens.NewMockTokenStore(ctrl)
//	store.EXPECT().Get().Return("token", nil)
package mocks

// Generate mock for TokenStore interface from internal/session.
// This creates MockTokenStore with Get, Set, and Clear methods.
//go:generate go run go.uber.org/mock/mockgen@v0.6.0 -package=tokens -destination=tokens/token_store_mock.go github.com/bookhaven/shelfctl/internal/session TokenStore
