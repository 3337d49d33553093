package repository

import (
	"context"
	"time"

	"github.com/ErlanBelekov/autos-marketplace/internal/domain"
)

// AccountRepository is the credential store. Implementations normalize every
// email they receive, so callers may pass user input as typed.
type AccountRepository interface {
	// Create returns domain.ErrEmailTaken when the normalized email exists.
	Create(ctx context.Context, acc domain.NewAccount) (*domain.Account, error)
	FindByEmail(ctx context.Context, email string) (*domain.Account, error)

	// Verify flips an unverified account whose token hash matches and whose
	// expiry is after now, clearing the token in the same statement.
	// Returns domain.ErrTokenInvalid when nothing matched.
	Verify(ctx context.Context, tokenHash string, now time.Time) (*domain.Account, error)
}
