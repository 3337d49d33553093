package domain

import (
	"errors"
	"strings"
	"time"
)

var (
	ErrAccountNotFound    = errors.New("account not found")
	ErrEmailTaken         = errors.New("email is already registered")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrAccountNotVerified = errors.New("account is not verified")
	ErrTokenInvalid       = errors.New("token is invalid or expired")
	ErrMissingToken       = errors.New("token is required")
	ErrSessionInvalid     = errors.New("session token is invalid or expired")
)

// ValidationError reports client input that can never succeed as sent.
// Message is safe to show to the caller.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

func NewValidationError(msg string) error {
	return &ValidationError{Message: msg}
}

type Account struct {
	ID           string
	DisplayName  string
	Email        string
	PasswordHash string
	Verified     bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// NewAccount is what registration persists. VerifyTokenHash and
// VerifyExpires are always set together.
type NewAccount struct {
	DisplayName     string
	Email           string
	PasswordHash    string
	VerifyTokenHash string
	VerifyExpires   time.Time
}

// NormalizeEmail is the lookup and uniqueness key for accounts.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
