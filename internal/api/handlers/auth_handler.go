package handlers

import (
	"errors"
	"net/http"

	"github.com/isdelr/storefront/internal/auth"
	"github.com/isdelr/storefront/internal/models"
	"github.com/isdelr/storefront/internal/services"
	"github.com/rs/zerolog/log"
)

// AuthHandler handles registration, login and token lifecycle requests.
type AuthHandler struct {
	users  services.UserServiceProvider
	tokens services.TokenServiceProvider
	issuer *auth.Issuer
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(users services.UserServiceProvider, tokens services.TokenServiceProvider, issuer *auth.Issuer) *AuthHandler {
	return &AuthHandler{users: users, tokens: tokens, issuer: issuer}
}

// Register handles new user registration.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var payload models.Registration
	if !decodeBody(w, r, &payload) {
		return
	}

	user, err := h.users.CreateUser(payload.Name, payload.Email, payload.Password, models.RoleUser)
	if errors.Is(err, services.ErrEmailTaken) {
		writeValidation(w, map[string][]string{"email": {"User with this email already exists."}})
		return
	}
	if err != nil {
		log.Error().Err(err).Str("email", payload.Email).Msg("Failed to register user")
		writeError(w, http.StatusInternalServerError, "Failed to register user")
		return
	}

	writeJSON(w, http.StatusCreated, user)
}

// Login handles user authentication and token generation.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var payload models.Credentials
	if !decodeBody(w, r, &payload) {
		return
	}

	user, err := h.users.AuthenticateUser(payload.Email, payload.Password)
	if errors.Is(err, services.ErrInvalidCredentials) {
		log.Warn().Str("email", payload.Email).Msg("Failed authentication attempt")
		writeError(w, http.StatusUnauthorized, "Invalid email or password")
		return
	}
	if err != nil {
		log.Error().Err(err).Str("email", payload.Email).Msg("Failed to authenticate user")
		writeError(w, http.StatusInternalServerError, "Failed to authenticate")
		return
	}

	pair, err := h.issuer.IssuePair(user)
	if err != nil {
		log.Error().Err(err).Str("user_id", user.ID).Msg("Failed to generate JWT")
		writeError(w, http.StatusInternalServerError, "Failed to generate token")
		return
	}
	writeJSON(w, http.StatusOK, pair)
}

// Refresh exchanges a refresh token for a new access token.
func (h *AuthHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	claims, ok := h.refreshClaims(w, r)
	if !ok {
		return
	}
	access, err := h.issuer.IssueAccess(claims)
	if err != nil {
		log.Error().Err(err).Str("user_id", claims.UserID).Msg("Failed to generate JWT")
		writeError(w, http.StatusInternalServerError, "Failed to generate token")
		return
	}
	writeJSON(w, http.StatusOK, models.TokenPair{Access: access})
}

// Logout blacklists a refresh token.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	claims, ok := h.refreshClaims(w, r)
	if !ok {
		return
	}
	if err := h.tokens.Revoke(claims.ID, claims.UserID, claims.ExpiresAt.Time); err != nil {
		log.Error().Err(err).Str("user_id", claims.UserID).Msg("Failed to revoke token")
		writeError(w, http.StatusInternalServerError, "Failed to revoke token")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Token revoked"})
}

// GetMe retrieves the currently authenticated user from the token.
func (h *AuthHandler) GetMe(w http.ResponseWriter, r *http.Request) {
	claims, ok := auth.ClaimsFrom(r.Context())
	if !ok {
		log.Error().Msg("Could not retrieve user claims from context")
		writeError(w, http.StatusInternalServerError, "Could not retrieve user from token")
		return
	}

	user, err := h.users.GetUserByID(claims.UserID)
	if errors.Is(err, services.ErrUserNotFound) {
		log.Warn().Str("user_id", claims.UserID).Msg("User from token not found in DB")
		writeError(w, http.StatusUnauthorized, "User not found")
		return
	}
	if err != nil {
		log.Error().Err(err).Str("user_id", claims.UserID).Msg("Failed to load user")
		writeError(w, http.StatusInternalServerError, "Failed to load user")
		return
	}
	writeJSON(w, http.StatusOK, user)
}

// refreshClaims validates the refresh token in the body and checks it was
// not revoked.
func (h *AuthHandler) refreshClaims(w http.ResponseWriter, r *http.Request) (*auth.Claims, bool) {
	var payload models.RefreshRequest
	if !decodeBody(w, r, &payload) {
		return nil, false
	}
	claims, err := h.issuer.Validate(payload.Refresh, auth.RefreshToken)
	if err != nil {
		writeError(w, http.StatusUnauthorized, "Token is invalid or expired")
		return nil, false
	}
	revoked, err := h.tokens.IsRevoked(claims.ID)
	if err != nil {
		log.Error().Err(err).Msg("Failed to check token revocation")
		writeError(w, http.StatusInternalServerError, "Failed to check token")
		return nil, false
	}
	if revoked {
		writeError(w, http.StatusUnauthorized, "Token is blacklisted")
		return nil, false
	}
	return claims, true
}
