package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/ErlanBelekov/autos-marketplace/internal/domain"
	"github.com/ErlanBelekov/autos-marketplace/internal/metrics"
	"github.com/ErlanBelekov/autos-marketplace/internal/repository"
	"github.com/go-playground/validator/v10"
)

type AutoUsecase struct {
	repo     repository.AutoRepository
	validate *validator.Validate
}

func NewAutoUsecase(repo repository.AutoRepository) *AutoUsecase {
	return &AutoUsecase{repo: repo, validate: validator.New()}
}

// AutoInput is the writable part of a listing, shared by create and full update.
type AutoInput struct {
	Brand       string            `validate:"required,max=80"`
	Model       string            `validate:"required,max=80"`
	Year        *int              `validate:"omitempty,min=1886,max=2100"`
	Price       *float64          `validate:"omitempty,min=0,max=9999999999.99"` // NUMERIC(12,2)
	Status      domain.AutoStatus `validate:"omitempty,oneof=available reserved sold"`
	Description *string           `validate:"omitempty,max=2000"`
}

func (u *AutoUsecase) normalize(in AutoInput) (AutoInput, error) {
	in.Brand = strings.TrimSpace(in.Brand)
	in.Model = strings.TrimSpace(in.Model)
	if in.Description != nil {
		d := strings.TrimSpace(*in.Description)
		if d == "" {
			in.Description = nil
		} else {
			in.Description = &d
		}
	}
	if in.Status == "" {
		in.Status = domain.AutoAvailable
	}

	if err := u.validate.Struct(in); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			field := strings.ToLower(verrs[0].Field())
			if verrs[0].Tag() == "required" {
				return in, domain.NewValidationError(field + " is required")
			}
			return in, domain.NewValidationError("invalid " + field)
		}
		return in, fmt.Errorf("validate auto: %w", err)
	}
	return in, nil
}

type ListAutosInput struct {
	Status string
	Query  string
}

func (u *AutoUsecase) List(ctx context.Context, in ListAutosInput) ([]*domain.Auto, error) {
	status := domain.AutoStatus(strings.ToLower(strings.TrimSpace(in.Status)))
	if status != "" && !status.Valid() {
		return nil, domain.ErrInvalidAutoStatus
	}

	autos, err := u.repo.List(ctx, repository.ListAutosInput{Status: status, Query: in.Query})
	if err != nil {
		return nil, fmt.Errorf("list autos: %w", err)
	}
	return autos, nil
}

func (u *AutoUsecase) GetByID(ctx context.Context, id string) (*domain.Auto, error) {
	a, err := u.repo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get auto: %w", err)
	}
	return a, nil
}

// Create lists a new auto on behalf of the authenticated account.
func (u *AutoUsecase) Create(ctx context.Context, in AutoInput, accountID string) (*domain.Auto, error) {
	in, err := u.normalize(in)
	if err != nil {
		return nil, err
	}

	var createdBy *string
	if accountID != "" {
		createdBy = &accountID
	}

	created, err := u.repo.Create(ctx, &domain.Auto{
		Brand:       in.Brand,
		Model:       in.Model,
		Year:        in.Year,
		Price:       in.Price,
		Status:      in.Status,
		Description: in.Description,
		CreatedBy:   createdBy,
	})
	if err != nil {
		return nil, fmt.Errorf("create auto: %w", err)
	}
	metrics.AutoMutationsTotal.WithLabelValues("create").Inc()
	return created, nil
}

// Update replaces every writable field of the listing.
func (u *AutoUsecase) Update(ctx context.Context, id string, in AutoInput) (*domain.Auto, error) {
	in, err := u.normalize(in)
	if err != nil {
		return nil, err
	}

	updated, err := u.repo.Update(ctx, &domain.Auto{
		ID:          id,
		Brand:       in.Brand,
		Model:       in.Model,
		Year:        in.Year,
		Price:       in.Price,
		Status:      in.Status,
		Description: in.Description,
	})
	if err != nil {
		return nil, fmt.Errorf("update auto: %w", err)
	}
	metrics.AutoMutationsTotal.WithLabelValues("update").Inc()
	return updated, nil
}

func (u *AutoUsecase) Delete(ctx context.Context, id string) error {
	if err := u.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete auto: %w", err)
	}
	metrics.AutoMutationsTotal.WithLabelValues("delete").Inc()
	return nil
}
