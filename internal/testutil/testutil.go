// Package testutil provides testing utilities and helpers for the
// shelfctl client.
package testutil

import (
	"sync"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// FixedNow is a stable clock value for deterministic expiry tests.
var FixedNow = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

// MintToken builds a session token for tests. The signature key is
// irrelevant: the client decodes tokens without verification.
func MintToken(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-secret"))
	if err != nil {
		t.Fatalf("mint token: %v", err)
	}
	return token
}

// MintUserToken mints a token for a plain user expiring one hour after
// FixedNow.
func MintUserToken(t *testing.T, email string) string {
	t.Helper()
	return MintToken(t, jwt.MapClaims{
		"sub": email,
		"exp": FixedNow.Add(time.Hour).Unix(),
	})
}

// MintAdminToken mints a token carrying the admin authority, expiring one
// hour after FixedNow.
func MintAdminToken(t *testing.T, email string) string {
	t.Helper()
	return MintToken(t, jwt.MapClaims{
		"sub":         email,
		"exp":         FixedNow.Add(time.Hour).Unix(),
		"authorities": []string{"ROLE_ADMIN"},
	})
}

// MemoryTokenStore is an in-memory token store double. It satisfies both
// the session and API client store interfaces. Error fields let tests
// inject failures per operation.
type MemoryTokenStore struct {
	mu    sync.Mutex
	token string

	GetErr   error
	SetErr   error
	ClearErr error
}

// NewMemoryTokenStore creates a store seeded with token (may be empty).
func NewMemoryTokenStore(token string) *MemoryTokenStore {
	return &MemoryTokenStore{token: token}
}

func (s *MemoryTokenStore) Get() (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.GetErr != nil {
		return "", s.GetErr
	}
	return s.token, nil
}

func (s *MemoryTokenStore) Set(token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.SetErr != nil {
		return s.SetErr
	}
	s.token = token
	return nil
}

func (s *MemoryTokenStore) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ClearErr != nil {
		return s.ClearErr
	}
	s.token = ""
	return nil
}

// Current returns the stored token without error injection, for
// assertions.
func (s *MemoryTokenStore) Current() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.token
}
