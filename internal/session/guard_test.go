package session_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/bookhaven/shelfctl/internal/domain/auth"
	"github.com/bookhaven/shelfctl/internal/session"
)

func userSnap(role auth.Role) session.Snapshot {
	return session.Snapshot{
		User:  &auth.Identity{Email: "a@x.com", Role: role},
		Token: "tok",
	}
}

func TestRequireRole(t *testing.T) {
	tests := []struct {
		name     string
		snap     session.Snapshot
		required auth.Role
		want     session.Decision
	}{
		{
			name:     "loading is pending, not a redirect",
			snap:     session.Snapshot{Loading: true},
			required: auth.RoleUser,
			want:     session.Decision{Action: session.ActionPending},
		},
		{
			name:     "anonymous goes to sign-in",
			snap:     session.Snapshot{},
			required: auth.RoleUser,
			want:     session.Decision{Action: session.ActionRedirect, Target: session.RouteSignIn},
		},
		{
			name:     "token without identity goes to sign-in",
			snap:     session.Snapshot{Token: "tok"},
			required: auth.RoleUser,
			want:     session.Decision{Action: session.ActionRedirect, Target: session.RouteSignIn},
		},
		{
			name:     "matching user role proceeds",
			snap:     userSnap(auth.RoleUser),
			required: auth.RoleUser,
			want:     session.Decision{Action: session.ActionProceed},
		},
		{
			name:     "matching admin role proceeds",
			snap:     userSnap(auth.RoleAdmin),
			required: auth.RoleAdmin,
			want:     session.Decision{Action: session.ActionProceed},
		},
		{
			name:     "user on admin screen goes to user home",
			snap:     userSnap(auth.RoleUser),
			required: auth.RoleAdmin,
			want:     session.Decision{Action: session.ActionRedirect, Target: session.RouteUserHome},
		},
		{
			name:     "admin on user screen goes to admin home",
			snap:     userSnap(auth.RoleAdmin),
			required: auth.RoleUser,
			want:     session.Decision{Action: session.ActionRedirect, Target: session.RouteAdminHome},
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, session.RequireRole(tc.snap, tc.required))
		})
	}
}

func TestRequireAnonymous(t *testing.T) {
	tests := []struct {
		name string
		snap session.Snapshot
		want session.Decision
	}{
		{
			name: "loading is pending",
			snap: session.Snapshot{Loading: true},
			want: session.Decision{Action: session.ActionPending},
		},
		{
			name: "anonymous proceeds",
			snap: session.Snapshot{},
			want: session.Decision{Action: session.ActionProceed},
		},
		{
			name: "signed-in user goes to user home",
			snap: userSnap(auth.RoleUser),
			want: session.Decision{Action: session.ActionRedirect, Target: session.RouteUserHome},
		},
		{
			name: "signed-in admin goes to admin home",
			snap: userSnap(auth.RoleAdmin),
			want: session.Decision{Action: session.ActionRedirect, Target: session.RouteAdminHome},
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, session.RequireAnonymous(tc.snap))
		})
	}
}

func TestHomeRoute(t *testing.T) {
	assert.Equal(t, session.RouteAdminHome, session.HomeRoute(auth.RoleAdmin))
	assert.Equal(t, session.RouteUserHome, session.HomeRoute(auth.RoleUser))
	assert.Equal(t, session.RouteUserHome, session.HomeRoute(auth.Role("OTHER")))
}
