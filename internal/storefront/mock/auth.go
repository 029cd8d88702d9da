package mock

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/isdelr/storefront/internal/models"
	"github.com/isdelr/storefront/internal/session"
)

// Password is accepted for every mock user.
const Password = "password123"

const tokenPrefix = "mock-token-"

// Users returns the seed accounts known to the mock provider.
func Users() []models.User {
	return []models.User{
		{ID: "1", Name: "John Doe", Email: "john@example.com", Role: models.RoleUser, CreatedAt: time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC)},
		{ID: "2", Name: "Jane Smith", Email: "jane@example.com", Role: models.RoleAdmin, CreatedAt: time.Date(2023, 1, 2, 0, 0, 0, 0, time.UTC)},
	}
}

// AuthService validates against an in-memory user list and issues
// synthetic tokens. It is a development aid, not a security mechanism.
type AuthService struct {
	opts  options
	store *session.Store

	mu    sync.Mutex
	users []models.User
}

// NewAuthService creates a mock AuthSource bound to store.
func NewAuthService(store *session.Store, opts ...Option) *AuthService {
	return &AuthService{opts: buildOptions(opts), store: store, users: Users()}
}

func (s *AuthService) Login(ctx context.Context, email, password string) (models.LoginResult, error) {
	if err := delay(ctx, s.opts.latency.Auth); err != nil {
		return models.LoginResult{}, err
	}
	user, ok := s.findByEmail(email)
	if !ok || password != Password {
		return models.LoginResult{}, models.NewAPIError(http.StatusUnauthorized, "Invalid email or password", nil)
	}

	token := s.issue(user.ID)
	if err := s.store.SetTokens(token, ""); err != nil {
		return models.LoginResult{}, err
	}
	return models.LoginResult{User: user, Token: token}, nil
}

func (s *AuthService) Register(ctx context.Context, reg models.Registration) (models.User, error) {
	if err := delay(ctx, s.opts.latency.Auth); err != nil {
		return models.User{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if strings.EqualFold(u.Email, reg.Email) {
			return models.User{}, models.NewValidationError(map[string][]string{
				"email": {"Email already taken"},
			})
		}
	}

	now := s.opts.now().UTC()
	user := models.User{
		ID:        uuid.NewString(),
		Name:      reg.Name,
		Email:     reg.Email,
		Role:      models.RoleUser,
		CreatedAt: now,
	}
	s.users = append(s.users, user)
	return user, nil
}

// CurrentUser resolves the user id embedded in the stored token.
func (s *AuthService) CurrentUser(ctx context.Context) (models.User, error) {
	if err := delay(ctx, s.opts.latency.Get); err != nil {
		return models.User{}, err
	}
	id, ok := parseToken(s.store.Token())
	if !ok {
		return models.User{}, errInvalidToken()
	}
	user, ok := s.findByID(id)
	if !ok {
		return models.User{}, errInvalidToken()
	}
	return user, nil
}

// Refresh reissues a token for the current user.
func (s *AuthService) Refresh(ctx context.Context) error {
	user, err := s.CurrentUser(ctx)
	if err != nil {
		return err
	}
	return s.store.SetTokens(s.issue(user.ID), "")
}

// Revoke has nothing upstream to invalidate; it logs out locally.
func (s *AuthService) Revoke(context.Context) error {
	s.Logout()
	return nil
}

func (s *AuthService) Logout() {
	s.store.Clear()
}

func (s *AuthService) IsAuthenticated() bool {
	return s.store.IsAuthenticated()
}

func (s *AuthService) issue(userID string) string {
	return fmt.Sprintf("%s%s-%d", tokenPrefix, userID, s.opts.now().UnixMilli())
}

func (s *AuthService) findByEmail(email string) (models.User, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if strings.EqualFold(u.Email, email) {
			return u, true
		}
	}
	return models.User{}, false
}

func (s *AuthService) findByID(id string) (models.User, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.ID == id {
			return u, true
		}
	}
	return models.User{}, false
}

// parseToken extracts the user id from mock-token-<id>-<millis>. Ids may
// themselves contain dashes.
func parseToken(token string) (string, bool) {
	rest, ok := strings.CutPrefix(token, tokenPrefix)
	if !ok {
		return "", false
	}
	i := strings.LastIndex(rest, "-")
	if i <= 0 {
		return "", false
	}
	return rest[:i], true
}

func errInvalidToken() error {
	return models.NewAPIError(http.StatusUnauthorized, "Invalid or expired token", nil)
}
