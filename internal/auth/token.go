// Package auth handles OAuth2 credentials: loading, refresh, interactive grant and persistence.
package auth

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	gmail "google.golang.org/api/gmail/v1"
)

// ErrTokenNotSet indicates no OAuth token is available and an interactive grant is required.
var ErrTokenNotSet = errors.New("no token defined")

// ErrCredentialsUnavailable indicates the OAuth client-secret configuration is
// missing while an interactive grant would be required. Fatal for the session.
var ErrCredentialsUnavailable = errors.New("OAuth client credentials unavailable")

// LoadConfig reads the Google OAuth client-secret JSON from disk and builds an
// oauth2 config with read-only Gmail scope. The file is user-provided and never
// written by this program.
func LoadConfig(credentialsPath, redirectURL string) (*oauth2.Config, error) {
	raw, err := os.ReadFile(credentialsPath)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s does not exist", ErrCredentialsUnavailable, credentialsPath)
		}
		return nil, fmt.Errorf("os.ReadFile failed: %w", err)
	}

	cfg, err := google.ConfigFromJSON(raw, gmail.GmailReadonlyScope)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCredentialsUnavailable, err)
	}

	cfg.RedirectURL = redirectURL

	return cfg, nil
}

// Token manages OAuth2 tokens with thread-safe operations.
type Token struct {
	mu          sync.RWMutex
	cfg         *oauth2.Config
	token       *oauth2.Token
	persistPath string
	stateStore  map[string]time.Time
}

// NewToken creates a Token manager, loading a persisted token from disk if path provided.
func NewToken(cfg *oauth2.Config, persistPath string) (*Token, error) {
	t := &Token{
		cfg:         cfg,
		persistPath: persistPath,
		stateStore:  make(map[string]time.Time),
	}
	if persistPath == "" {
		return t, nil
	}

	f, err := os.Open(persistPath)
	defer func() { _ = f.Close() }()
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			slog.Info("token file does not exist yet, will be created after grant", "path", persistPath)

			return t, nil
		}

		return nil, fmt.Errorf("os.Open failed: %w", err)
	}

	token := &oauth2.Token{}
	if err := json.NewDecoder(f).Decode(token); err != nil {
		return nil, fmt.Errorf("json.NewDecoder.Decode failed: %w", err)
	}
	t.token = token

	return t, nil
}

// EnsureValid guarantees a usable token is held: a valid token passes through,
// an expired token with a refresh token is refreshed in place and re-persisted,
// anything else returns ErrTokenNotSet so the caller can run the grant flow.
func (t *Token) EnsureValid(ctx context.Context) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.token == nil {
		return ErrTokenNotSet
	}
	if t.token.Valid() {
		return nil
	}
	if t.token.RefreshToken == "" {
		return ErrTokenNotSet
	}

	refreshed, err := t.cfg.TokenSource(ctx, t.token).Token()
	if err != nil {
		return fmt.Errorf("token refresh failed: %w", err)
	}
	t.token = refreshed

	if err := t.persistLocked(); err != nil {
		return fmt.Errorf("persist after refresh failed: %w", err)
	}

	return nil
}

// RedirectURL generates the OAuth2 authorization URL with a secure random state.
func (t *Token) RedirectURL() (string, error) {
	state, err := t.generateState()
	if err != nil {
		return "", fmt.Errorf("generateState failed: %w", err)
	}

	return t.cfg.AuthCodeURL(state, oauth2.AccessTypeOffline), nil
}

func (t *Token) generateState() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("rand.Read failed: %w", err)
	}
	state := base64.URLEncoding.EncodeToString(b)

	t.mu.Lock()
	defer t.mu.Unlock()

	now := time.Now()
	t.stateStore[state] = now.Add(5 * time.Minute)

	for s, exp := range t.stateStore {
		if exp.Before(now) {
			delete(t.stateStore, s)
		}
	}

	return state, nil
}

func (t *Token) validateState(state string) bool {
	if state == "" {
		return false
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	expiry, exists := t.stateStore[state]
	if !exists {
		return false
	}

	delete(t.stateStore, state)

	return !time.Now().After(expiry)
}

// AuthorizeCode exchanges an authorization code for an access token after
// validating state, then persists the new token.
func (t *Token) AuthorizeCode(ctx context.Context, code string, state string) error {
	if !t.validateState(state) {
		return errors.New("invalid or expired state parameter")
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	tok, err := t.cfg.Exchange(ctx, code)
	if err != nil {
		return fmt.Errorf("cfg.Exchange failed: %w", err)
	}

	t.token = tok

	if err := t.persistLocked(); err != nil {
		return fmt.Errorf("persist after grant failed: %w", err)
	}

	return nil
}

// OAuthToken returns the current OAuth2 token.
func (t *Token) OAuthToken() (*oauth2.Token, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	if t.token == nil {
		return nil, ErrTokenNotSet
	}

	return t.token, nil
}

// Persist saves the token to disk.
func (t *Token) Persist() error {
	t.mu.RLock()
	defer t.mu.RUnlock()

	return t.persistLocked()
}

// persistLocked writes the token atomically: a temp file in the target
// directory followed by rename, so a crash never leaves a torn token store.
func (t *Token) persistLocked() error {
	if t.persistPath == "" || t.token == nil {
		return nil
	}

	dir := filepath.Dir(t.persistPath)
	f, err := os.CreateTemp(dir, ".token-*.json")
	if err != nil {
		return fmt.Errorf("os.CreateTemp failed: %w", err)
	}
	tmpName := f.Name()

	if err := json.NewEncoder(f).Encode(t.token); err != nil {
		_ = f.Close()
		_ = os.Remove(tmpName)
		return fmt.Errorf("json.NewEncoder.Encode failed: %w", err)
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("f.Close failed: %w", err)
	}

	if err := os.Chmod(tmpName, 0600); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("os.Chmod failed: %w", err)
	}
	if err := os.Rename(tmpName, t.persistPath); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("os.Rename failed: %w", err)
	}

	return nil
}
