package services

import (
	"database/sql"
	"time"

	"github.com/isdelr/storefront/internal/database"
)

// TokenServiceProvider defines the interface for refresh token revocation.
type TokenServiceProvider interface {
	Revoke(jti, userID string, expiresAt time.Time) error
	IsRevoked(jti string) (bool, error)
	PruneExpired(now time.Time) (int64, error)
}

// TokenService persists revoked refresh tokens until they expire.
type TokenService struct {
	db *sql.DB
}

// NewTokenService creates a new TokenService.
func NewTokenService(db *sql.DB) *TokenService {
	return &TokenService{db: db}
}

// Revoke blacklists a token id. Revoking twice is not an error.
func (s *TokenService) Revoke(jti, userID string, expiresAt time.Time) error {
	_, err := s.db.Exec(
		"INSERT OR IGNORE INTO revoked_tokens(jti, user_id, expires_at) VALUES(?, ?, ?)",
		jti, userID, database.FormatTime(expiresAt),
	)
	return err
}

// IsRevoked reports whether a token id was blacklisted.
func (s *TokenService) IsRevoked(jti string) (bool, error) {
	var n int
	if err := s.db.QueryRow("SELECT COUNT(*) FROM revoked_tokens WHERE jti = ?", jti).Scan(&n); err != nil {
		return false, err
	}
	return n > 0, nil
}

// PruneExpired drops entries whose token would be rejected anyway.
func (s *TokenService) PruneExpired(now time.Time) (int64, error) {
	res, err := s.db.Exec("DELETE FROM revoked_tokens WHERE expires_at <= ?", database.FormatTime(now))
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
