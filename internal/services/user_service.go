package services

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/isdelr/storefront/internal/database"
	"github.com/isdelr/storefront/internal/models"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrUserNotFound       = errors.New("user not found")
	ErrEmailTaken         = errors.New("email already taken")
	ErrInvalidCredentials = errors.New("invalid email or password")
)

// UserServiceProvider defines the interface for user services.
type UserServiceProvider interface {
	GetUserByID(id string) (models.User, error)
	CreateUser(name, email, password string, role models.Role) (models.User, error)
	AuthenticateUser(email, password string) (models.User, error)
}

// UserService provides business logic for user management.
type UserService struct {
	db *sql.DB
}

// NewUserService creates a new UserService.
func NewUserService(db *sql.DB) *UserService {
	return &UserService{db: db}
}

func scanUser(scanner interface{ Scan(...interface{}) error }) (models.User, error) {
	var user models.User
	var avatar sql.NullString
	var createdAt string
	if err := scanner.Scan(&user.ID, &user.Name, &user.Email, &avatar, &user.Role, &user.PasswordHash, &createdAt); err != nil {
		return models.User{}, err
	}
	user.Avatar = avatar.String
	t, err := database.ParseTime(createdAt)
	if err != nil {
		return models.User{}, fmt.Errorf("bad created_at for user %s: %w", user.ID, err)
	}
	user.CreatedAt = t
	return user, nil
}

const userColumns = "id, name, email, avatar, role, password_hash, created_at"

// GetUserByID retrieves a single user by their ID.
func (s *UserService) GetUserByID(id string) (models.User, error) {
	user, err := scanUser(s.db.QueryRow("SELECT "+userColumns+" FROM users WHERE id = ?", id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.User{}, fmt.Errorf("user with ID %s: %w", id, ErrUserNotFound)
		}
		return models.User{}, err
	}
	user.PasswordHash = ""
	return user, nil
}

// GetUserByEmail retrieves a single user by their email, including the password hash.
func (s *UserService) GetUserByEmail(email string) (models.User, error) {
	user, err := scanUser(s.db.QueryRow("SELECT "+userColumns+" FROM users WHERE email = ?", normalizeEmail(email)))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.User{}, fmt.Errorf("user with email %s: %w", email, ErrUserNotFound)
		}
		return models.User{}, err
	}
	return user, nil
}

// CreateUser creates a new user, hashing their password.
func (s *UserService) CreateUser(name, email, password string, role models.Role) (models.User, error) {
	email = normalizeEmail(email)
	if _, err := s.GetUserByEmail(email); err == nil {
		return models.User{}, ErrEmailTaken
	} else if !errors.Is(err, ErrUserNotFound) {
		return models.User{}, err
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return models.User{}, fmt.Errorf("failed to hash password: %w", err)
	}

	user := models.User{
		ID:           uuid.New().String(),
		Name:         name,
		Email:        email,
		Role:         role,
		PasswordHash: string(hashedPassword),
		CreatedAt:    time.Now().UTC(),
	}

	_, err = s.db.Exec(
		"INSERT INTO users(id, name, email, avatar, role, password_hash, created_at) VALUES(?, ?, ?, NULL, ?, ?, ?)",
		user.ID, user.Name, user.Email, string(user.Role), user.PasswordHash, database.FormatTime(user.CreatedAt),
	)
	if err != nil {
		return models.User{}, err
	}

	// Return user without password hash
	user.PasswordHash = ""
	return user, nil
}

// AuthenticateUser verifies a user's credentials.
func (s *UserService) AuthenticateUser(email, password string) (models.User, error) {
	user, err := s.GetUserByEmail(email)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return models.User{}, ErrInvalidCredentials
		}
		return models.User{}, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return models.User{}, ErrInvalidCredentials
	}

	// Don't send the password hash to the client
	user.PasswordHash = ""
	return user, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
