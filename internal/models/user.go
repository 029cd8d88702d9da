package models

import "time"

// Role is the authorization level of a user.
type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// User represents a user account in the system.
type User struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	Avatar       string    `json:"avatar,omitempty"`
	Role         Role      `json:"role"`
	PasswordHash string    `json:"-"` // Never expose this to the client
	CreatedAt    time.Time `json:"createdAt"`
}

// Credentials is the login payload.
type Credentials struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// Registration is the sign-up payload. The password_confirmation name is
// part of the backend contract.
type Registration struct {
	Name                 string `json:"name" validate:"required"`
	Email                string `json:"email" validate:"required,email"`
	Password             string `json:"password" validate:"required,min=8"`
	PasswordConfirmation string `json:"password_confirmation" validate:"required,eqfield=Password"`
}

// TokenPair is what the backend hands out on login.
type TokenPair struct {
	Access  string `json:"access"`
	Refresh string `json:"refresh,omitempty"`
}

// LoginResult is returned to callers after a successful login.
type LoginResult struct {
	User  User   `json:"user"`
	Token string `json:"token"`
}

// RefreshRequest carries a refresh token to the refresh and logout endpoints.
type RefreshRequest struct {
	Refresh string `json:"refresh" validate:"required"`
}
