package storefront

import (
	"context"
	"sync"

	"github.com/isdelr/storefront/internal/models"
	"github.com/rs/zerolog/log"
)

// Status is the session state as seen by the view layer.
type Status int

const (
	StatusUnknown Status = iota
	StatusLoading
	StatusAuthenticated
	StatusAnonymous
)

func (s Status) String() string {
	switch s {
	case StatusLoading:
		return "loading"
	case StatusAuthenticated:
		return "authenticated"
	case StatusAnonymous:
		return "anonymous"
	default:
		return "unknown"
	}
}

// Account tracks who is signed in on top of an AuthSource.
type Account struct {
	auth AuthSource

	mu     sync.RWMutex
	status Status
	user   *models.User
}

// NewAccount creates an Account in the Unknown state.
func NewAccount(auth AuthSource) *Account {
	return &Account{auth: auth}
}

// Status returns the current session state.
func (a *Account) Status() Status {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.status
}

// User returns the signed-in user, if any.
func (a *Account) User() (models.User, bool) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	if a.user == nil {
		return models.User{}, false
	}
	return *a.user, true
}

// Bootstrap resolves the Unknown state. A stored token that the backend
// rejects is treated as expired: the session is cleared and no error is
// reported.
func (a *Account) Bootstrap(ctx context.Context) Status {
	if !a.auth.IsAuthenticated() {
		a.set(StatusAnonymous, nil)
		return StatusAnonymous
	}

	a.set(StatusLoading, nil)
	user, err := a.auth.CurrentUser(ctx)
	if err != nil {
		log.Warn().Err(err).Msg("Stored session rejected, signing out")
		a.auth.Logout()
		a.set(StatusAnonymous, nil)
		return StatusAnonymous
	}
	a.set(StatusAuthenticated, &user)
	return StatusAuthenticated
}

// Login signs in and records the user.
func (a *Account) Login(ctx context.Context, email, password string) (models.User, error) {
	status, user := a.snapshot()
	a.set(StatusLoading, nil)
	res, err := a.auth.Login(ctx, email, password)
	if err != nil {
		a.set(status, user)
		return models.User{}, err
	}
	a.set(StatusAuthenticated, &res.User)
	return res.User, nil
}

// Register creates the account and then signs in with the same credentials.
func (a *Account) Register(ctx context.Context, reg models.Registration) (models.User, error) {
	status, user := a.snapshot()
	a.set(StatusLoading, nil)
	if _, err := a.auth.Register(ctx, reg); err != nil {
		a.set(status, user)
		return models.User{}, err
	}
	a.set(status, user)
	return a.Login(ctx, reg.Email, reg.Password)
}

// Logout clears the session locally.
func (a *Account) Logout() {
	a.auth.Logout()
	a.set(StatusAnonymous, nil)
}

func (a *Account) set(status Status, user *models.User) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.status = status
	a.user = user
}

func (a *Account) snapshot() (Status, *models.User) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.status, a.user
}
