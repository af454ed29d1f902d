package auth

import (
	"time"

	"github.com/golang-jwt/jwt/v5"

	apperrors "github.com/bookhaven/shelfctl/internal/errors"
)

// Admin markers recognized inside an authorities claim. The library API
// issues Spring-style authorities; matching is case-sensitive.
const (
	authorityRoleAdmin = "ROLE_ADMIN"
	authorityAdmin     = "ADMIN"
)

// DecodeIdentity parses the session token's payload and derives the
// identity used for screen routing. The signature is deliberately not
// verified: the token is only read for UI decisions, and the server
// re-checks authorization on every API call.
//
// Failure modes: a malformed token yields a Decode error; a token whose
// exp claim is strictly in the past yields an Expired error.
func DecodeIdentity(token string, now time.Time) (Identity, error) {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return Identity{}, apperrors.Wrap(err, apperrors.ErrCodeDecode, "parse session token")
	}

	exp, err := claims.GetExpirationTime()
	if err != nil {
		return Identity{}, apperrors.Wrap(err, apperrors.ErrCodeDecode, "read exp claim")
	}
	if exp != nil && exp.Unix() < now.Unix() {
		return Identity{}, apperrors.Expired("session token expired")
	}

	sub, err := claims.GetSubject()
	if err != nil {
		return Identity{}, apperrors.Wrap(err, apperrors.ErrCodeDecode, "read sub claim")
	}

	return Identity{
		Email: sub,
		Role:  resolveRole(claims),
	}, nil
}

// resolveRole applies the role precedence: an authorities claim containing
// an admin marker wins; otherwise a direct role claim; otherwise USER.
// When an authorities claim is present without an admin marker, the direct
// role claim is not consulted.
func resolveRole(claims jwt.MapClaims) Role {
	if authorities, ok := claims["authorities"]; ok {
		if containsAdminMarker(authorities) {
			return RoleAdmin
		}
		return RoleUser
	}

	if role, ok := claims["role"].(string); ok && role != "" {
		return Role(role)
	}

	return RoleUser
}

// containsAdminMarker accepts the claim as a single string or a list of
// strings, mirroring the shapes the API has been observed to issue.
func containsAdminMarker(authorities any) bool {
	switch v := authorities.(type) {
	case string:
		return v == authorityRoleAdmin || v == authorityAdmin
	case []any:
		for _, item := range v {
			s, ok := item.(string)
			if ok && (s == authorityRoleAdmin || s == authorityAdmin) {
				return true
			}
		}
	case []string:
		for _, s := range v {
			if s == authorityRoleAdmin || s == authorityAdmin {
				return true
			}
		}
	}
	return false
}
