// Package session holds the authentication state that decides which view is
// active. The token is kept in an injected TokenStore so the same Gate works
// against an in-memory store in tests and a SQLite store in the CLI.
package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
)

// ErrNoToken is returned by a TokenStore when no session is stored.
var ErrNoToken = errors.New("no session token stored")

// View is the page section that is currently shown.
type View int

const (
	// ViewLogin is shown while no token is present.
	ViewLogin View = iota
	// ViewProfile is shown once a token is present.
	ViewProfile
)

func (v View) String() string {
	switch v {
	case ViewProfile:
		return "profile"
	default:
		return "login"
	}
}

// TokenStore persists the session token between runs.
type TokenStore interface {
	LoadToken(ctx context.Context) (string, error)
	SaveToken(ctx context.Context, token string) error
	DeleteToken(ctx context.Context) error
}

// Gate tracks whether a session token is present
type Gate struct {
	store TokenStore
	token string
	mu    sync.RWMutex
}

// NewGate creates a Gate backed by store. The gate starts signed out;
// call Restore to pick up a previously stored token.
func NewGate(store TokenStore) *Gate {
	return &Gate{store: store}
}

// Restore loads a stored token, if any. A missing token is not an error.
func (g *Gate) Restore(ctx context.Context) error {
	token, err := g.store.LoadToken(ctx)
	if errors.Is(err, ErrNoToken) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to restore session: %w", err)
	}

	g.mu.Lock()
	defer g.mu.Unlock()
	g.token = token
	return nil
}

// SignIn stores token and switches to the profile view.
func (g *Gate) SignIn(ctx context.Context, token string) error {
	if token == "" {
		return errors.New("session token must not be empty")
	}
	if err := g.store.SaveToken(ctx, token); err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}

	g.mu.Lock()
	defer g.mu.Unlock()
	g.token = token
	return nil
}

// SignOut drops the token and switches to the login view. The in-memory
// token is cleared even when the store fails.
func (g *Gate) SignOut(ctx context.Context) error {
	g.mu.Lock()
	g.token = ""
	g.mu.Unlock()

	if err := g.store.DeleteToken(ctx); err != nil && !errors.Is(err, ErrNoToken) {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}

// Token returns the current token and whether one is present.
func (g *Gate) Token() (string, bool) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.token, g.token != ""
}

// ActiveView returns the view implied by the current token.
func (g *Gate) ActiveView() View {
	if _, ok := g.Token(); ok {
		return ViewProfile
	}
	return ViewLogin
}

// MemoryStore is a TokenStore that lives for the process only.
type MemoryStore struct {
	token string
	mu    sync.Mutex
}

// NewMemoryStore creates an empty MemoryStore
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

// LoadToken implements TokenStore
func (m *MemoryStore) LoadToken(ctx context.Context) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.token == "" {
		return "", ErrNoToken
	}
	return m.token, nil
}

// SaveToken implements TokenStore
func (m *MemoryStore) SaveToken(ctx context.Context, token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.token = token
	return nil
}

// DeleteToken implements TokenStore
func (m *MemoryStore) DeleteToken(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.token = ""
	return nil
}
