// Package service contains thin typed wrappers over the library API's
// endpoints. Services never swallow errors; every failure propagates to
// the calling screen, which owns user-facing translation.
package service

import (
	"context"

	"github.com/bookhaven/shelfctl/internal/api"
)

// AuthServiceOptions groups dependencies for AuthService.
type AuthServiceOptions struct {
	API *api.Client
}

// AuthService wraps the authentication endpoints.
type AuthService struct {
	api *api.Client
}

// NewAuthService constructs a new AuthService.
func NewAuthService(opts AuthServiceOptions) *AuthService {
	if opts.API == nil {
		panic("AuthService requires an API client")
	}
	return &AuthService{api: opts.API}
}

// Credentials is the email/password login payload.
type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// RegisterRequest is the registration payload. AdminCode is only sent
// when a user requests the admin role.
type RegisterRequest struct {
	FirstName string `json:"firstname"`
	LastName  string `json:"lastname"`
	Email     string `json:"email"`
	Password  string `json:"password"`
	Role      string `json:"role,omitempty"`
	AdminCode string `json:"adminCode,omitempty"`
}

type messageResponse struct {
	Message string `json:"message"`
}

type tokenResponse struct {
	Token string `json:"token"`
}

// Register creates an account and returns the server's confirmation
// message. The account must be verified via OTP before login.
func (s *AuthService) Register(ctx context.Context, req RegisterRequest) (string, error) {
	var out messageResponse
	if err := s.api.Post(ctx, "/auth/register", req, &out); err != nil {
		return "", err
	}
	return out.Message, nil
}

// Authenticate exchanges credentials for a session token.
func (s *AuthService) Authenticate(ctx context.Context, creds Credentials) (string, error) {
	var out tokenResponse
	if err := s.api.Post(ctx, "/auth/authenticate", creds, &out); err != nil {
		return "", err
	}
	return out.Token, nil
}

// GoogleSignIn exchanges a Google ID token for a session token.
func (s *AuthService) GoogleSignIn(ctx context.Context, idToken string) (string, error) {
	var out tokenResponse
	body := map[string]string{"idToken": idToken}
	if err := s.api.Post(ctx, "/auth/google", body, &out); err != nil {
		return "", err
	}
	return out.Token, nil
}

// VerifyOTP confirms a registration with the emailed one-time code.
func (s *AuthService) VerifyOTP(ctx context.Context, email, code string) error {
	body := map[string]string{"email": email, "otp": code}
	return s.api.Post(ctx, "/auth/verify-otp", body, nil)
}

// ResendOTP requests a fresh one-time code for an unverified account.
func (s *AuthService) ResendOTP(ctx context.Context, email string) error {
	body := map[string]string{"email": email}
	return s.api.Post(ctx, "/auth/resend-otp", body, nil)
}

// ForgotPassword requests a password reset link for the given email.
func (s *AuthService) ForgotPassword(ctx context.Context, email string) error {
	body := map[string]string{"email": email}
	return s.api.Post(ctx, "/auth/forgot-password", body, nil)
}

// ResetPassword sets a new password using an emailed reset token.
func (s *AuthService) ResetPassword(ctx context.Context, resetToken, newPassword string) error {
	body := map[string]string{"token": resetToken, "newPassword": newPassword}
	return s.api.Post(ctx, "/auth/reset-password", body, nil)
}
