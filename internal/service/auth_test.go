package service

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/bookhaven/shelfctl/internal/errors"
)

func TestAuthService_Authenticate(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/auth/authenticate", func(w http.ResponseWriter, r *http.Request) {
		var creds Credentials
		require.NoError(t, json.NewDecoder(r.Body).Decode(&creds))
		assert.Equal(t, "a@x.com", creds.Email)
		assert.Equal(t, "secret123", creds.Password)
		_ = json.NewEncoder(w).Encode(map[string]string{"token": "h.p.s"})
	})

	svc := NewAuthService(AuthServiceOptions{API: newServiceClient(t, mux)})
	token, err := svc.Authenticate(context.Background(), Credentials{Email: "a@x.com", Password: "secret123"})
	require.NoError(t, err)
	assert.Equal(t, "h.p.s", token)
}

func TestAuthService_AuthenticateFailurePropagates(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/auth/authenticate", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_ = json.NewEncoder(w).Encode(map[string]string{"message": "Bad credentials"})
	})

	svc := NewAuthService(AuthServiceOptions{API: newServiceClient(t, mux)})
	_, err := svc.Authenticate(context.Background(), Credentials{Email: "a@x.com", Password: "wrong"})
	require.Error(t, err)
	assert.Equal(t, "Bad credentials", apperrors.UserMessage(err))
}

func TestAuthService_Register(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/auth/register", func(w http.ResponseWriter, r *http.Request) {
		var req RegisterRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "Paul", req.FirstName)
		assert.Equal(t, "ADMIN", req.Role)
		assert.Equal(t, "secret-code", req.AdminCode)
		_ = json.NewEncoder(w).Encode(map[string]string{"message": "Verification code sent"})
	})

	svc := NewAuthService(AuthServiceOptions{API: newServiceClient(t, mux)})
	msg, err := svc.Register(context.Background(), RegisterRequest{
		FirstName: "Paul",
		LastName:  "Atreides",
		Email:     "paul@x.com",
		Password:  "longenough",
		Role:      "ADMIN",
		AdminCode: "secret-code",
	})
	require.NoError(t, err)
	assert.Equal(t, "Verification code sent", msg)
}

func TestAuthService_OTPAndPasswordFlows(t *testing.T) {
	var calls []string
	mux := http.NewServeMux()
	record := func(name string) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			var body map[string]string
			_ = json.NewDecoder(r.Body).Decode(&body)
			calls = append(calls, name+":"+body["email"]+body["otp"]+body["token"])
			w.WriteHeader(http.StatusOK)
		}
	}
	mux.HandleFunc("POST /api/auth/verify-otp", record("verify"))
	mux.HandleFunc("POST /api/auth/resend-otp", record("resend"))
	mux.HandleFunc("POST /api/auth/forgot-password", record("forgot"))
	mux.HandleFunc("POST /api/auth/reset-password", record("reset"))

	svc := NewAuthService(AuthServiceOptions{API: newServiceClient(t, mux)})
	ctx := context.Background()

	require.NoError(t, svc.VerifyOTP(ctx, "a@x.com", "123456"))
	require.NoError(t, svc.ResendOTP(ctx, "a@x.com"))
	require.NoError(t, svc.ForgotPassword(ctx, "a@x.com"))
	require.NoError(t, svc.ResetPassword(ctx, "reset-tok", "newpassword"))

	assert.Equal(t, []string{
		"verify:a@x.com123456",
		"resend:a@x.com",
		"forgot:a@x.com",
		"reset:reset-tok",
	}, calls)
}

func TestAuthService_GoogleSignIn(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/auth/google", func(w http.ResponseWriter, r *http.Request) {
		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "google-id-token", body["idToken"])
		_ = json.NewEncoder(w).Encode(map[string]string{"token": "session.jwt.here"})
	})

	svc := NewAuthService(AuthServiceOptions{API: newServiceClient(t, mux)})
	token, err := svc.GoogleSignIn(context.Background(), "google-id-token")
	require.NoError(t, err)
	assert.Equal(t, "session.jwt.here", token)
}
