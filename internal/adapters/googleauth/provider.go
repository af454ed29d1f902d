// Package googleauth runs the Google OIDC sign-in flow for the terminal
// client. It opens a loopback HTTP listener for the OAuth redirect,
// sends the user to Google's consent screen, and exchanges the returned
// code for a verified ID token. The ID token is then posted to the
// library API, which issues its own session token.
package googleauth

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"
	"time"

	gooidc "github.com/coreos/go-oidc/v3/oidc"
	"golang.org/x/oauth2"
)

// Provider drives the browser sign-in flow against Google.
type Provider struct {
	config     *oauth2.Config
	verifier   *gooidc.IDTokenVerifier
	listenAddr string
}

// ProviderConfig holds configuration for the Google sign-in flow.
type ProviderConfig struct {
	ClientID     string
	ClientSecret string
	// RedirectAddr is the loopback host:port the flow listens on.
	RedirectAddr string
	Scope        string
	IssuerURL    string
	HTTPClient   *http.Client // Optional, defaults to a 30s-timeout client
}

// NewProvider creates a provider, fetching the issuer's discovery
// document once.
func NewProvider(ctx context.Context, config ProviderConfig) (*Provider, error) {
	if config.ClientID == "" {
		return nil, errors.New("client ID is required")
	}
	if config.RedirectAddr == "" {
		return nil, errors.New("redirect address is required")
	}
	if config.IssuerURL == "" {
		return nil, errors.New("issuer URL is required")
	}

	httpClient := config.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}

	scope := config.Scope
	if scope == "" {
		scope = "openid email profile"
	}

	ctx = context.WithValue(ctx, oauth2.HTTPClient, httpClient)
	op, err := gooidc.NewProvider(ctx, strings.TrimSuffix(config.IssuerURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("oidc new provider: %w", err)
	}

	return &Provider{
		config: &oauth2.Config{
			ClientID:     config.ClientID,
			ClientSecret: config.ClientSecret,
			RedirectURL:  "http://" + config.RedirectAddr + "/callback",
			Scopes:       strings.Fields(scope),
			Endpoint:     op.Endpoint(),
		},
		verifier:   op.Verifier(&gooidc.Config{ClientID: config.ClientID}),
		listenAddr: config.RedirectAddr,
	}, nil
}

// SignIn runs the full flow: it starts the loopback listener, hands the
// consent URL to prompt (which should show it to the user or open a
// browser), waits for Google's redirect, and exchanges the code. The
// returned string is the raw, nonce-checked ID token.
func (p *Provider) SignIn(ctx context.Context, prompt func(authURL string)) (string, error) {
	if prompt == nil {
		return "", errors.New("prompt callback is required")
	}

	state, err := generateRandomString(32)
	if err != nil {
		return "", fmt.Errorf("generate state: %w", err)
	}
	nonce, err := generateRandomString(32)
	if err != nil {
		return "", fmt.Errorf("generate nonce: %w", err)
	}

	code, err := p.awaitCallback(ctx, state, prompt, p.authURL(state, nonce))
	if err != nil {
		return "", err
	}
	return p.exchange(ctx, code, nonce)
}

func (p *Provider) authURL(state, nonce string) string {
	return p.config.AuthCodeURL(state,
		oauth2.SetAuthURLParam("nonce", nonce),
		oauth2.SetAuthURLParam("response_type", "code"),
		oauth2.SetAuthURLParam("prompt", "select_account"),
	)
}

type callbackResult struct {
	code string
	err  error
}

// awaitCallback serves the loopback redirect endpoint until one code
// arrives, the context is canceled, or Google reports an error.
func (p *Provider) awaitCallback(ctx context.Context, state string, prompt func(string), authURL string) (string, error) {
	ln, err := net.Listen("tcp", p.listenAddr)
	if err != nil {
		return "", fmt.Errorf("listen on %s: %w", p.listenAddr, err)
	}

	results := make(chan callbackResult, 1)
	mux := http.NewServeMux()
	mux.Handle("/callback", callbackHandler(state, results))

	srv := &http.Server{Handler: mux, ReadHeaderTimeout: 10 * time.Second}
	go srv.Serve(ln) //nolint:errcheck // shut down via srv.Shutdown below
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	prompt(authURL)

	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case res := <-results:
		return res.code, res.err
	}
}

// exchange trades the authorization code for tokens and verifies the ID
// token, including the nonce bound at dispatch.
func (p *Provider) exchange(ctx context.Context, code, nonce string) (string, error) {
	token, err := p.config.Exchange(ctx, code)
	if err != nil {
		return "", fmt.Errorf("exchange code for token: %w", err)
	}

	rawID, err := getIDTokenFromToken(token)
	if err != nil {
		return "", err
	}
	idTok, err := p.verifier.Verify(ctx, rawID)
	if err != nil {
		return "", fmt.Errorf("verify id_token: %w", err)
	}

	var claims struct {
		Nonce string `json:"nonce"`
	}
	if claimsErr := idTok.Claims(&claims); claimsErr != nil {
		return "", fmt.Errorf("parse id_token claims: %w", claimsErr)
	}
	if claims.Nonce != nonce {
		return "", errors.New("invalid nonce")
	}

	return rawID, nil
}

// callbackHandler validates one redirect from the authorization server
// and reports the outcome on results. Only the first outcome counts;
// stray repeat requests are answered but ignored.
func callbackHandler(state string, results chan<- callbackResult) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if errCode := q.Get("error"); errCode != "" {
			http.Error(w, "Sign-in failed. You can close this window.", http.StatusBadRequest)
			sendResult(results, callbackResult{err: fmt.Errorf("authorization denied: %s", errCode)})
			return
		}
		if q.Get("state") != state {
			http.Error(w, "Sign-in failed. You can close this window.", http.StatusBadRequest)
			sendResult(results, callbackResult{err: errors.New("state mismatch")})
			return
		}
		code := q.Get("code")
		if code == "" {
			http.Error(w, "Sign-in failed. You can close this window.", http.StatusBadRequest)
			sendResult(results, callbackResult{err: errors.New("missing authorization code")})
			return
		}
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		fmt.Fprintln(w, "Signed in. You can close this window and return to the terminal.")
		sendResult(results, callbackResult{code: code})
	})
}

func sendResult(ch chan<- callbackResult, res callbackResult) {
	select {
	case ch <- res:
	default:
	}
}

// generateRandomString generates a cryptographically secure URL-safe random string of exact length.
func generateRandomString(length int) (string, error) {
	if length <= 0 {
		return "", nil
	}
	nBytes := (length*3 + 3) / 4
	b := make([]byte, nBytes)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	s := base64.RawURLEncoding.EncodeToString(b)
	if len(s) < length {
		extra := make([]byte, 1)
		if _, err := rand.Read(extra); err != nil {
			return "", err
		}
		s += base64.RawURLEncoding.EncodeToString(extra)
	}
	return s[:length], nil
}

// getIDTokenFromToken extracts the id_token from oauth2.Token.
func getIDTokenFromToken(tok *oauth2.Token) (string, error) {
	if tok == nil {
		return "", errors.New("nil token")
	}
	raw := tok.Extra("id_token")
	s, ok := raw.(string)
	if !ok || s == "" {
		return "", errors.New("missing id_token in token response")
	}
	return s, nil
}
