// File: internal/auth/gate.go
package auth

import (
	"context"
	"sync"

	"github.com/iyunix/go-chatfront/internal/logging"
)

// Authenticator is the boundary the gate talks to.
type Authenticator interface {
	Check(ctx context.Context) (bool, error)
	Login(ctx context.Context, secret string) (bool, error)
	Logout(ctx context.Context) error
}

// Gate holds the client's view of whether it may send. It starts loading
// and refuses submits until the initial check resolves.
type Gate struct {
	auth   Authenticator
	logger logging.Logger

	mu            sync.RWMutex
	authenticated bool
	loading       bool
	promptOpen    bool
	onChange      func()
}

func NewGate(a Authenticator, logger logging.Logger) *Gate {
	if logger == nil {
		logger = &logging.NoOpLogger{}
	}
	return &Gate{auth: a, logger: logger, loading: true}
}

// OnChange registers fn to run after every state change.
func (g *Gate) OnChange(fn func()) {
	g.mu.Lock()
	g.onChange = fn
	g.mu.Unlock()
}

func (g *Gate) set(update func()) {
	g.mu.Lock()
	update()
	fn := g.onChange
	g.mu.Unlock()
	if fn != nil {
		fn()
	}
}

// Init performs the startup check. A failed check leaves the gate
// unauthenticated, not loading.
func (g *Gate) Init(ctx context.Context) error {
	ok, err := g.auth.Check(ctx)
	if err != nil {
		g.logger.Warn("auth check failed", "error", err)
		ok = false
	}
	g.set(func() {
		g.authenticated = ok
		g.loading = false
	})
	g.logger.Debug("auth check resolved", "authenticated", ok)
	return err
}

func (g *Gate) Authenticated() bool {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.authenticated
}

func (g *Gate) Loading() bool {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.loading
}

// CanSubmit is false while loading, exactly as if unauthenticated.
func (g *Gate) CanSubmit() bool {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.authenticated && !g.loading
}

// Login sets authenticated to the boundary's verdict. Success closes the
// login prompt. Boundary errors count as a failed login.
func (g *Gate) Login(ctx context.Context, secret string) bool {
	ok, err := g.auth.Login(ctx, secret)
	if err != nil {
		g.logger.Error("login request failed", "error", err)
		ok = false
	}
	g.set(func() {
		g.authenticated = ok
		g.loading = false
		if ok {
			g.promptOpen = false
		}
	})
	if ok {
		g.logger.Info("logged in")
	} else {
		g.logger.Warn("login rejected")
	}
	return ok
}

// Logout clears the local flag even when the boundary call fails; the
// error is returned so the caller can report it.
func (g *Gate) Logout(ctx context.Context) error {
	err := g.auth.Logout(ctx)
	if err != nil {
		g.logger.Error("logout request failed", "error", err)
	}
	g.set(func() { g.authenticated = false })
	return err
}

// Invalidate drops the local flag after the server rejected the cookie,
// without another boundary call.
func (g *Gate) Invalidate() {
	g.set(func() {
		g.authenticated = false
		g.loading = false
	})
}

// OpenLogin marks the login prompt as pending.
func (g *Gate) OpenLogin() { g.set(func() { g.promptOpen = true }) }

// CloseLogin dismisses the prompt without logging in.
func (g *Gate) CloseLogin() { g.set(func() { g.promptOpen = false }) }

func (g *Gate) PromptOpen() bool {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.promptOpen
}
