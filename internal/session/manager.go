// Package session owns the client-side auth state: the current identity
// derived from the stored token, a loading flag covering the initial
// decode pass, and the login/logout mutators. All session writers funnel
// through the Manager so the "user is rederivable from token" invariant
// is enforced in one place.
package session

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/bookhaven/shelfctl/internal/domain/auth"
)

// TokenStore is the full token store surface the session needs.
type TokenStore interface {
	Get() (string, error)
	Set(token string) error
	Clear() error
}

// Snapshot is an immutable view of the session at one observable instant.
// User is nil or consistent with the last successfully decoded token.
type Snapshot struct {
	User    *auth.Identity
	Token   string
	Loading bool
}

// LoggedIn reports whether a decoded identity is present.
func (s Snapshot) LoggedIn() bool { return s.User != nil }

// Subscriber observes session changes. Callbacks run outside the state
// lock, in mutation order.
type Subscriber func(Snapshot)

// ManagerOptions groups dependencies for Manager.
type ManagerOptions struct {
	Store TokenStore
	// Now is the clock used for expiry checks. Defaults to time.Now.
	Now    func() time.Time
	Logger *slog.Logger
}

// Manager is the process-wide session state cell.
type Manager struct {
	store  TokenStore
	now    func() time.Time
	logger *slog.Logger

	mu      sync.Mutex
	user    *auth.Identity
	token   string
	loading bool
	subs    []Subscriber
}

// NewManager constructs a Manager. The session starts in the loading
// state until Initialize runs.
func NewManager(opts ManagerOptions) *Manager {
	if opts.Store == nil {
		panic("session.Manager requires a token store")
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Manager{
		store:   opts.Store,
		now:     now,
		logger:  logger,
		loading: true,
	}
}

// Snapshot returns the current session state.
func (m *Manager) Snapshot() Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.snapshotLocked()
}

// Subscribe registers a callback invoked after every state change.
func (m *Manager) Subscribe(fn Subscriber) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.subs = append(m.subs, fn)
}

// Initialize seeds the session from the token store. A malformed or
// expired token is treated as "not logged in": the store is cleared
// silently and no error surfaces. The loading flag flips to false exactly
// once, synchronously, at the end of this pass.
func (m *Manager) Initialize() {
	m.mu.Lock()
	m.applyStoredTokenLocked()
	m.loading = false
	snap, subs := m.snapshotLocked(), m.subscribersLocked()
	m.mu.Unlock()

	notify(subs, snap)
}

// Login persists the token and derives the identity from it. The token
// came from a trusted auth endpoint, so a decode failure is a hard error;
// the store is rolled back to keep user and token consistent.
func (m *Manager) Login(token string) error {
	m.mu.Lock()

	if err := m.store.Set(token); err != nil {
		m.mu.Unlock()
		return err
	}
	identity, err := auth.DecodeIdentity(token, m.now())
	if err != nil {
		if clearErr := m.store.Clear(); clearErr != nil {
			m.logger.Warn("roll back token after decode failure", "error", clearErr)
		}
		m.user = nil
		m.token = ""
		snap, subs := m.snapshotLocked(), m.subscribersLocked()
		m.mu.Unlock()
		notify(subs, snap)
		return err
	}

	m.user = &identity
	m.token = token
	snap, subs := m.snapshotLocked(), m.subscribersLocked()
	m.mu.Unlock()

	notify(subs, snap)
	return nil
}

// Logout clears the token store and the derived identity.
func (m *Manager) Logout() error {
	m.mu.Lock()

	err := m.store.Clear()
	m.user = nil
	m.token = ""
	snap, subs := m.snapshotLocked(), m.subscribersLocked()
	m.mu.Unlock()

	notify(subs, snap)
	return err
}

// Run consumes external-invalidation events (token file watch) until ctx
// is done or the channel closes. Each event re-reads the store, so a
// logout performed elsewhere — another process, or the API client's 401
// hook — converges here without an explicit Logout call.
func (m *Manager) Run(ctx context.Context, events <-chan struct{}) {
	for {
		select {
		case <-ctx.Done():
			return
		case _, ok := <-events:
			if !ok {
				return
			}
			m.Resync()
		}
	}
}

// Resync re-reads the token store and rederives the identity. No-op when
// the stored token is unchanged.
func (m *Manager) Resync() {
	m.mu.Lock()

	stored, err := m.store.Get()
	if err != nil {
		m.logger.Warn("resync token store", "error", err)
		m.mu.Unlock()
		return
	}
	if stored == m.token {
		m.mu.Unlock()
		return
	}

	m.applyStoredTokenLocked()
	snap, subs := m.snapshotLocked(), m.subscribersLocked()
	m.mu.Unlock()

	notify(subs, snap)
}

// applyStoredTokenLocked reads the store and sets user/token from it.
// The read-decode-publish sequence stays under the lock so no caller
// observes a half-updated state.
func (m *Manager) applyStoredTokenLocked() {
	stored, err := m.store.Get()
	if err != nil {
		m.logger.Warn("read token store", "error", err)
		stored = ""
	}

	if stored == "" {
		m.user = nil
		m.token = ""
		return
	}

	identity, err := auth.DecodeIdentity(stored, m.now())
	if err != nil {
		// Malformed or expired: silent logout, never a user-facing error.
		m.logger.Debug("stored token rejected", "error", err)
		if clearErr := m.store.Clear(); clearErr != nil {
			m.logger.Warn("clear rejected token", "error", clearErr)
		}
		m.user = nil
		m.token = ""
		return
	}

	m.user = &identity
	m.token = stored
}

func (m *Manager) snapshotLocked() Snapshot {
	var user *auth.Identity
	if m.user != nil {
		u := *m.user
		user = &u
	}
	return Snapshot{User: user, Token: m.token, Loading: m.loading}
}

func (m *Manager) subscribersLocked() []Subscriber {
	subs := make([]Subscriber, len(m.subs))
	copy(subs, m.subs)
	return subs
}

func notify(subs []Subscriber, snap Snapshot) {
	for _, fn := range subs {
		fn(snap)
	}
}
