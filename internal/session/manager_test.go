package session_test

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/bookhaven/shelfctl/internal/domain/auth"
	"github.com/bookhaven/shelfctl/internal/mocks/tokens"
	"github.com/bookhaven/shelfctl/internal/session"
	"github.com/bookhaven/shelfctl/internal/testutil"
)

func fixedNow() time.Time { return testutil.FixedNow }

func newManager(store session.TokenStore) *session.Manager {
	return session.NewManager(session.ManagerOptions{Store: store, Now: fixedNow})
}

func TestNewManager_RequiresStore(t *testing.T) {
	assert.Panics(t, func() {
		session.NewManager(session.ManagerOptions{})
	})
}

func TestManager_InitializeWithValidToken(t *testing.T) {
	token := testutil.MintAdminToken(t, "a@x.com")
	store := testutil.NewMemoryTokenStore(token)
	mgr := newManager(store)

	snap := mgr.Snapshot()
	assert.True(t, snap.Loading, "session starts loading")

	mgr.Initialize()

	snap = mgr.Snapshot()
	assert.False(t, snap.Loading)
	require.NotNil(t, snap.User)
	assert.Equal(t, "a@x.com", snap.User.Email)
	assert.Equal(t, auth.RoleAdmin, snap.User.Role)
	assert.Equal(t, token, snap.Token)
}

func TestManager_InitializeEmptyStore(t *testing.T) {
	mgr := newManager(testutil.NewMemoryTokenStore(""))
	mgr.Initialize()

	snap := mgr.Snapshot()
	assert.False(t, snap.Loading)
	assert.Nil(t, snap.User)
	assert.Empty(t, snap.Token)
}

func TestManager_InitializeExpiredTokenClearsStore(t *testing.T) {
	expired := testutil.MintToken(t, jwt.MapClaims{
		"sub": "a@x.com",
		"exp": testutil.FixedNow.Add(-time.Minute).Unix(),
	})
	store := testutil.NewMemoryTokenStore(expired)
	mgr := newManager(store)

	mgr.Initialize()

	snap := mgr.Snapshot()
	assert.Nil(t, snap.User, "expired token must not yield a user")
	assert.Empty(t, store.Current(), "expired token must be cleared from the store")
}

func TestManager_InitializeMalformedTokenClearsStore(t *testing.T) {
	store := testutil.NewMemoryTokenStore("not-a-jwt")
	mgr := newManager(store)

	mgr.Initialize()

	assert.Nil(t, mgr.Snapshot().User)
	assert.Empty(t, store.Current())
}

func TestManager_LoadingFlipsExactlyOnce(t *testing.T) {
	mgr := newManager(testutil.NewMemoryTokenStore(""))

	var loadingSeen []bool
	mgr.Subscribe(func(snap session.Snapshot) {
		loadingSeen = append(loadingSeen, snap.Loading)
	})

	mgr.Initialize()
	require.NoError(t, mgr.Login(testutil.MintUserToken(t, "a@x.com")))
	require.NoError(t, mgr.Logout())

	for i, loading := range loadingSeen {
		assert.False(t, loading, "observation %d: loading must stay false after initialize", i)
	}
}

func TestManager_LoginDerivesUser(t *testing.T) {
	store := testutil.NewMemoryTokenStore("")
	mgr := newManager(store)
	mgr.Initialize()

	token := testutil.MintAdminToken(t, "a@x.com")
	require.NoError(t, mgr.Login(token))

	snap := mgr.Snapshot()
	require.NotNil(t, snap.User)
	assert.Equal(t, "a@x.com", snap.User.Email)
	assert.Equal(t, auth.RoleAdmin, snap.User.Role)
	assert.Equal(t, token, store.Current(), "login must persist the token")
}

func TestManager_LoginMalformedTokenRollsBack(t *testing.T) {
	store := testutil.NewMemoryTokenStore("")
	mgr := newManager(store)
	mgr.Initialize()

	err := mgr.Login("garbage")
	require.Error(t, err)
	assert.Nil(t, mgr.Snapshot().User)
	assert.Empty(t, store.Current(), "failed login must not leave a token behind")
}

func TestManager_Logout(t *testing.T) {
	store := testutil.NewMemoryTokenStore(testutil.MintUserToken(t, "a@x.com"))
	mgr := newManager(store)
	mgr.Initialize()
	require.NotNil(t, mgr.Snapshot().User)

	require.NoError(t, mgr.Logout())

	snap := mgr.Snapshot()
	assert.Nil(t, snap.User)
	assert.Empty(t, snap.Token)
	assert.Empty(t, store.Current())
}

func TestManager_ResyncConvergesAfterExternalClear(t *testing.T) {
	// An external 401 clear never calls Logout; the session converges by
	// re-reading the store.
	store := testutil.NewMemoryTokenStore(testutil.MintUserToken(t, "a@x.com"))
	mgr := newManager(store)
	mgr.Initialize()
	require.NotNil(t, mgr.Snapshot().User)

	require.NoError(t, store.Clear())
	mgr.Resync()

	snap := mgr.Snapshot()
	assert.Nil(t, snap.User)
	assert.Empty(t, snap.Token)
}

func TestManager_ResyncPicksUpExternalLogin(t *testing.T) {
	store := testutil.NewMemoryTokenStore("")
	mgr := newManager(store)
	mgr.Initialize()

	require.NoError(t, store.Set(testutil.MintAdminToken(t, "root@x.com")))
	mgr.Resync()

	snap := mgr.Snapshot()
	require.NotNil(t, snap.User)
	assert.Equal(t, auth.RoleAdmin, snap.User.Role)
}

func TestManager_ResyncUnchangedTokenDoesNotNotify(t *testing.T) {
	store := testutil.NewMemoryTokenStore(testutil.MintUserToken(t, "a@x.com"))
	mgr := newManager(store)
	mgr.Initialize()

	var notifications int
	mgr.Subscribe(func(session.Snapshot) { notifications++ })

	mgr.Resync()
	assert.Zero(t, notifications, "unchanged token must not fan out")
}

func TestManager_RunConsumesWatchEvents(t *testing.T) {
	store := testutil.NewMemoryTokenStore(testutil.MintUserToken(t, "a@x.com"))
	mgr := newManager(store)
	mgr.Initialize()

	cleared := make(chan session.Snapshot, 1)
	mgr.Subscribe(func(snap session.Snapshot) {
		if snap.User == nil {
			select {
			case cleared <- snap:
			default:
			}
		}
	})

	events := make(chan struct{}, 1)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan struct{})
	go func() {
		mgr.Run(ctx, events)
		close(done)
	}()

	require.NoError(t, store.Clear())
	events <- struct{}{}

	select {
	case snap := <-cleared:
		assert.Nil(t, snap.User)
	case <-time.After(3 * time.Second):
		t.Fatal("timed out waiting for convergence")
	}

	cancel()
	select {
	case <-done:
	case <-time.After(3 * time.Second):
		t.Fatal("Run did not stop on cancel")
	}
}

func TestManager_SubscriberOrderAndPayload(t *testing.T) {
	mgr := newManager(testutil.NewMemoryTokenStore(""))
	mgr.Initialize()

	var emails []string
	mgr.Subscribe(func(snap session.Snapshot) {
		if snap.User != nil {
			emails = append(emails, snap.User.Email)
		} else {
			emails = append(emails, "")
		}
	})

	require.NoError(t, mgr.Login(testutil.MintUserToken(t, "first@x.com")))
	require.NoError(t, mgr.Login(testutil.MintUserToken(t, "second@x.com")))
	require.NoError(t, mgr.Logout())

	assert.Equal(t, []string{"first@x.com", "second@x.com", ""}, emails)
}

func TestManager_StoreFailuresSurfaceFromMutators(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	store := tokens.NewMockTokenStore(ctrl)
	mgr := session.NewManager(session.ManagerOptions{Store: store, Now: fixedNow})

	setErr := assert.AnError
	store.EXPECT().Set("some-token").Return(setErr)
	err := mgr.Login("some-token")
	assert.ErrorIs(t, err, setErr)

	clearErr := assert.AnError
	store.EXPECT().Clear().Return(clearErr)
	err = mgr.Logout()
	assert.ErrorIs(t, err, clearErr)
}

func TestManager_InitializeStoreReadFailureIsLoggedOut(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	store := tokens.NewMockTokenStore(ctrl)
	store.EXPECT().Get().Return("", assert.AnError)

	mgr := session.NewManager(session.ManagerOptions{Store: store, Now: fixedNow})
	mgr.Initialize()

	snap := mgr.Snapshot()
	assert.False(t, snap.Loading)
	assert.Nil(t, snap.User)
}
