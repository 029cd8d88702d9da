package storefront

import (
	"context"
	"net/http"

	"github.com/isdelr/storefront/internal/client"
	"github.com/isdelr/storefront/internal/models"
	"github.com/isdelr/storefront/internal/session"
	"github.com/rs/zerolog/log"
)

// AuthService talks to the backend's authentication endpoints.
type AuthService struct {
	api   *client.Client
	store *session.Store
}

// NewAuthService creates a new AuthService.
func NewAuthService(api *client.Client, store *session.Store) *AuthService {
	return &AuthService{api: api, store: store}
}

// Login posts the credentials, persists the issued tokens and returns the
// current user.
func (s *AuthService) Login(ctx context.Context, email, password string) (models.LoginResult, error) {
	var pair models.TokenPair
	creds := models.Credentials{Email: email, Password: password}
	if _, err := s.api.Post(ctx, "/auth/login/", creds, &pair); err != nil {
		return models.LoginResult{}, err
	}
	if pair.Access == "" {
		return models.LoginResult{}, models.NewAPIError(http.StatusBadGateway, "login response did not include an access token", nil)
	}
	if err := s.store.SetTokens(pair.Access, pair.Refresh); err != nil {
		return models.LoginResult{}, err
	}

	user, err := s.CurrentUser(ctx)
	if err != nil {
		s.store.Clear()
		return models.LoginResult{}, err
	}
	log.Debug().Str("user_id", user.ID).Msg("Logged in")
	return models.LoginResult{User: user, Token: pair.Access}, nil
}

// Register creates an account. It does not log the user in.
func (s *AuthService) Register(ctx context.Context, reg models.Registration) (models.User, error) {
	var user models.User
	if _, err := s.api.Post(ctx, "/register/", reg, &user); err != nil {
		return models.User{}, err
	}
	return user, nil
}

// CurrentUser fetches the user the stored token belongs to.
func (s *AuthService) CurrentUser(ctx context.Context) (models.User, error) {
	if !s.store.IsAuthenticated() {
		return models.User{}, errNotLoggedIn()
	}
	var user models.User
	if _, err := s.api.Get(ctx, "/me/", &user); err != nil {
		return models.User{}, err
	}
	return user, nil
}

// Refresh swaps the refresh token for a new access token.
func (s *AuthService) Refresh(ctx context.Context) error {
	refresh := s.store.RefreshToken()
	if refresh == "" {
		return errNotLoggedIn()
	}
	var pair models.TokenPair
	if _, err := s.api.Post(ctx, "/auth/refresh/", models.RefreshRequest{Refresh: refresh}, &pair); err != nil {
		return err
	}
	if pair.Access == "" {
		return models.NewAPIError(http.StatusBadGateway, "refresh response did not include an access token", nil)
	}
	if pair.Refresh == "" {
		pair.Refresh = refresh
	}
	return s.store.SetTokens(pair.Access, pair.Refresh)
}

// Revoke blacklists the refresh token upstream. The local session is
// cleared even when the backend call fails.
func (s *AuthService) Revoke(ctx context.Context) error {
	defer s.Logout()
	refresh := s.store.RefreshToken()
	if refresh == "" {
		return nil
	}
	_, err := s.api.Post(ctx, "/auth/logout/", models.RefreshRequest{Refresh: refresh}, nil)
	return err
}

// Logout clears the session locally without contacting the backend.
func (s *AuthService) Logout() {
	s.store.Clear()
}

// IsAuthenticated reports whether a token is stored.
func (s *AuthService) IsAuthenticated() bool {
	return s.store.IsAuthenticated()
}

func errNotLoggedIn() error {
	return models.NewAPIError(http.StatusUnauthorized, "Authentication credentials were not provided.", nil)
}
