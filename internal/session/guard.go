package session

import "github.com/bookhaven/shelfctl/internal/domain/auth"

// Route identifies a screen a guard can redirect to.
type Route string

const (
	RouteSignIn    Route = "/login"
	RouteUserHome  Route = "/user/dashboard"
	RouteAdminHome Route = "/admin/dashboard"
)

// Action is the kind of render decision a guard returns.
type Action int

const (
	// ActionProceed renders the guarded screen.
	ActionProceed Action = iota
	// ActionPending renders a neutral indicator while the session loads.
	// No redirect is decided yet, which prevents redirect flicker.
	ActionPending
	// ActionRedirect navigates to Target instead of rendering.
	ActionRedirect
)

// Decision is a guard's verdict for one render. Guards only read the
// snapshot; they never mutate session state.
type Decision struct {
	Action Action
	Target Route
}

// HomeRoute returns the landing screen for a role.
func HomeRoute(role auth.Role) Route {
	if role == auth.RoleAdmin {
		return RouteAdminHome
	}
	return RouteUserHome
}

// RequireRole guards a screen restricted to authenticated users of one
// role. A signed-in user with the wrong role is sent to their own home —
// never to a "forbidden" screen, there is always a valid destination for
// the actual role.
func RequireRole(snap Snapshot, required auth.Role) Decision {
	if snap.Loading {
		return Decision{Action: ActionPending}
	}
	if snap.Token == "" || snap.User == nil {
		return Decision{Action: ActionRedirect, Target: RouteSignIn}
	}
	if snap.User.Role != required {
		return Decision{Action: ActionRedirect, Target: HomeRoute(snap.User.Role)}
	}
	return Decision{Action: ActionProceed}
}

// RequireAnonymous guards screens for visitors only (login, register).
// A signed-in user is redirected to their role's home.
func RequireAnonymous(snap Snapshot) Decision {
	if snap.Loading {
		return Decision{Action: ActionPending}
	}
	if snap.User != nil {
		return Decision{Action: ActionRedirect, Target: HomeRoute(snap.User.Role)}
	}
	return Decision{Action: ActionProceed}
}
