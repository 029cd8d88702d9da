package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/isdelr/storefront/internal/models"
	"github.com/rs/zerolog/log"
)

// Token types carried in the "typ" claim.
const (
	AccessToken  = "access"
	RefreshToken = "refresh"
)

var ErrWrongTokenType = errors.New("wrong token type")

// Claims defines the JWT claims structure.
type Claims struct {
	UserID string      `json:"userId"`
	Role   models.Role `json:"role"`
	Type   string      `json:"typ"`
	jwt.RegisteredClaims
}

// UserClaimsKey is the context key for user claims.
type contextKey string

const UserClaimsKey = contextKey("userClaims")

// Issuer signs and validates HS256 tokens.
type Issuer struct {
	key        []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
	now        func() time.Time
}

// NewIssuer creates an Issuer.
func NewIssuer(secret string, accessTTL, refreshTTL time.Duration) *Issuer {
	return &Issuer{key: []byte(secret), accessTTL: accessTTL, refreshTTL: refreshTTL, now: time.Now}
}

// IssuePair creates an access and a refresh token for user.
func (i *Issuer) IssuePair(user models.User) (models.TokenPair, error) {
	access, err := i.sign(user.ID, user.Role, AccessToken, i.accessTTL)
	if err != nil {
		return models.TokenPair{}, err
	}
	refresh, err := i.sign(user.ID, user.Role, RefreshToken, i.refreshTTL)
	if err != nil {
		return models.TokenPair{}, err
	}
	return models.TokenPair{Access: access, Refresh: refresh}, nil
}

// IssueAccess creates a new access token from validated refresh claims.
func (i *Issuer) IssueAccess(refresh *Claims) (string, error) {
	return i.sign(refresh.UserID, refresh.Role, AccessToken, i.accessTTL)
}

func (i *Issuer) sign(userID string, role models.Role, typ string, ttl time.Duration) (string, error) {
	now := i.now()
	claims := &Claims{
		UserID: userID,
		Role:   role,
		Type:   typ,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.New().String(),
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(i.key)
}

// Validate parses a token string and checks its type.
func (i *Issuer) Validate(tokenStr, typ string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenStr, claims, func(token *jwt.Token) (interface{}, error) {
		return i.key, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithTimeFunc(i.now))
	if err != nil {
		return nil, err
	}
	if !token.Valid {
		return nil, fmt.Errorf("invalid token")
	}
	if claims.Type != typ {
		return nil, ErrWrongTokenType
	}
	return claims, nil
}

// Middleware rejects requests without a valid access token and passes the
// claims down via the request context.
func (i *Issuer) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		tokenStr, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
		if !ok || tokenStr == "" {
			unauthorized(w, "Authentication credentials were not provided.")
			return
		}

		claims, err := i.Validate(tokenStr, AccessToken)
		if err != nil {
			log.Debug().Err(err).Msg("Rejected bearer token")
			unauthorized(w, "Given token not valid for any token type")
			return
		}

		ctx := context.WithValue(r.Context(), UserClaimsKey, claims)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequireRole must run after Middleware.
func RequireRole(role models.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims, ok := ClaimsFrom(r.Context())
			if !ok || claims.Role != role {
				writeError(w, http.StatusForbidden, "You do not have permission to perform this action.")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// ClaimsFrom returns the claims stored by Middleware.
func ClaimsFrom(ctx context.Context) (*Claims, bool) {
	claims, ok := ctx.Value(UserClaimsKey).(*Claims)
	return claims, ok
}

func unauthorized(w http.ResponseWriter, msg string) {
	w.Header().Set("WWW-Authenticate", `Bearer realm="api"`)
	writeError(w, http.StatusUnauthorized, msg)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"message": msg})
}
