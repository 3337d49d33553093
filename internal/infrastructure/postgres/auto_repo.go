package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/ErlanBelekov/autos-marketplace/internal/domain"
	"github.com/ErlanBelekov/autos-marketplace/internal/repository"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

const autoColumns = `id, brand, model, year, price, status, description, created_by, created_at, updated_at`

type AutoRepository struct {
	db DBTX
}

func NewAutoRepository(db DBTX) *AutoRepository {
	return &AutoRepository{db: db}
}

func (r *AutoRepository) Create(ctx context.Context, a *domain.Auto) (*domain.Auto, error) {
	query := `
		INSERT INTO autos (brand, model, year, price, status, description, created_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING ` + autoColumns

	row := r.db.QueryRow(ctx, query,
		a.Brand, a.Model, a.Year, a.Price, a.Status, a.Description, a.CreatedBy,
	)
	created, err := scanAuto(row)
	if err != nil {
		return nil, fmt.Errorf("create auto: %w", err)
	}
	return created, nil
}

func (r *AutoRepository) GetByID(ctx context.Context, id string) (*domain.Auto, error) {
	query := `SELECT ` + autoColumns + ` FROM autos WHERE id = $1`

	row := r.db.QueryRow(ctx, query, id)
	return scanAuto(row)
}

func (r *AutoRepository) List(ctx context.Context, input repository.ListAutosInput) ([]*domain.Auto, error) {
	var (
		args  []any
		where []string
	)

	if input.Status != "" {
		args = append(args, input.Status)
		where = append(where, fmt.Sprintf("status = $%d", len(args)))
	}
	if q := strings.TrimSpace(input.Query); q != "" {
		args = append(args, "%"+escapeLike(q)+"%")
		n := len(args)
		where = append(where, fmt.Sprintf(
			"(brand ILIKE $%d OR model ILIKE $%d OR COALESCE(description, '') ILIKE $%d)", n, n, n))
	}

	query := `SELECT ` + autoColumns + ` FROM autos`
	if len(where) > 0 {
		query += ` WHERE ` + strings.Join(where, " AND ")
	}
	query += ` ORDER BY created_at DESC, id DESC`

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list autos: %w", err)
	}
	defer rows.Close()

	autos := []*domain.Auto{}
	for rows.Next() {
		a, err := scanAuto(rows)
		if err != nil {
			return nil, err
		}
		autos = append(autos, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list autos: %w", err)
	}
	return autos, nil
}

func (r *AutoRepository) Update(ctx context.Context, a *domain.Auto) (*domain.Auto, error) {
	query := `
		UPDATE autos
		SET    brand       = $1,
		       model       = $2,
		       year        = $3,
		       price       = $4,
		       status      = $5,
		       description = $6,
		       updated_at  = NOW()
		WHERE  id = $7
		RETURNING ` + autoColumns

	row := r.db.QueryRow(ctx, query,
		a.Brand, a.Model, a.Year, a.Price, a.Status, a.Description, a.ID,
	)
	return scanAuto(row)
}

func (r *AutoRepository) Delete(ctx context.Context, id string) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM autos WHERE id = $1`, id)
	if err != nil {
		if isInvalidID(err) {
			return domain.ErrAutoNotFound
		}
		return fmt.Errorf("delete auto: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrAutoNotFound
	}
	return nil
}

func scanAuto(row rowScanner) (*domain.Auto, error) {
	var a domain.Auto
	err := row.Scan(
		&a.ID, &a.Brand, &a.Model, &a.Year, &a.Price, &a.Status,
		&a.Description, &a.CreatedBy, &a.CreatedAt, &a.UpdatedAt,
	)
	if err != nil {
		// a malformed uuid can never name an existing row
		if errors.Is(err, pgx.ErrNoRows) || isInvalidID(err) {
			return nil, domain.ErrAutoNotFound
		}
		// price is NUMERIC(12,2); anything wider is bad input, not a fault
		if isOutOfRange(err) {
			return nil, domain.NewValidationError("invalid price")
		}
		return nil, fmt.Errorf("scan auto: %w", err)
	}
	return &a, nil
}

func isInvalidID(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgerrcode.InvalidTextRepresentation
}

func isOutOfRange(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgerrcode.NumericValueOutOfRange
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}
