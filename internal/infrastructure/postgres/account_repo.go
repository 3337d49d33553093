package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ErlanBelekov/autos-marketplace/internal/domain"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

const accountColumns = `id, display_name, email, password_hash, verified, created_at, updated_at`

const accountsEmailKey = "accounts_email_key"

// AccountRepository stores accounts. Every email is normalized here, so no
// caller can skip it.
type AccountRepository struct {
	db DBTX
}

func NewAccountRepository(db DBTX) *AccountRepository {
	return &AccountRepository{db: db}
}

func (r *AccountRepository) Create(ctx context.Context, acc domain.NewAccount) (*domain.Account, error) {
	query := `
		INSERT INTO accounts (
			display_name, email, password_hash, verified, verify_token_hash, verify_expires
		) VALUES ($1, $2, $3, false, $4, $5)
		RETURNING ` + accountColumns

	row := r.db.QueryRow(ctx, query,
		acc.DisplayName,
		domain.NormalizeEmail(acc.Email),
		acc.PasswordHash,
		acc.VerifyTokenHash,
		acc.VerifyExpires,
	)

	created, err := scanAccount(row)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation &&
			(pgErr.ConstraintName == accountsEmailKey || pgErr.ConstraintName == "") {
			return nil, domain.ErrEmailTaken
		}
		return nil, fmt.Errorf("create account: %w", err)
	}
	return created, nil
}

func (r *AccountRepository) FindByEmail(ctx context.Context, email string) (*domain.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE email = $1`

	row := r.db.QueryRow(ctx, query, domain.NormalizeEmail(email))
	return scanAccount(row)
}

// Verify is a single conditional UPDATE: of two concurrent calls with the
// same token, only one can match the verified = false predicate.
func (r *AccountRepository) Verify(ctx context.Context, tokenHash string, now time.Time) (*domain.Account, error) {
	query := `
		UPDATE accounts
		SET    verified          = true,
		       verify_token_hash = NULL,
		       verify_expires    = NULL,
		       updated_at        = NOW()
		WHERE  verify_token_hash = $1
		  AND  verify_expires    > $2
		  AND  verified          = false
		RETURNING ` + accountColumns

	row := r.db.QueryRow(ctx, query, tokenHash, now)
	acc, err := scanAccount(row)
	if err != nil {
		if errors.Is(err, domain.ErrAccountNotFound) {
			return nil, domain.ErrTokenInvalid
		}
		return nil, fmt.Errorf("verify account: %w", err)
	}
	return acc, nil
}

func scanAccount(row rowScanner) (*domain.Account, error) {
	var a domain.Account
	err := row.Scan(&a.ID, &a.DisplayName, &a.Email, &a.PasswordHash, &a.Verified, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrAccountNotFound
		}
		return nil, fmt.Errorf("scan account: %w", err)
	}
	return &a, nil
}
