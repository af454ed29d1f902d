//revive:disable-next-line:var-naming // legacy package name widely used across the project
package model

// User is the administrative view of an account.
type User struct {
	ID            int64  `json:"id"`
	Email         string `json:"email"`
	FullName      string `json:"fullName,omitempty"`
	Role          string `json:"role"`
	AuthProvider  string `json:"authProvider"`
	Verified      bool   `json:"verified"`
	ActiveBorrows int    `json:"activeBorrows"`
}

// UserPatch carries the fields an administrator may update. Nil fields
// are omitted from the request body and left unchanged server-side.
type UserPatch struct {
	FullName *string `json:"fullName,omitempty"`
	Role     *string `json:"role,omitempty"`
	Verified *bool   `json:"verified,omitempty"`
}
