package repository

import (
	"context"

	"github.com/ErlanBelekov/autos-marketplace/internal/domain"
)

type ListAutosInput struct {
	Status domain.AutoStatus // empty = all statuses
	Query  string            // case-insensitive match on brand, model, description
}

type AutoRepository interface {
	Create(ctx context.Context, a *domain.Auto) (*domain.Auto, error)
	GetByID(ctx context.Context, id string) (*domain.Auto, error)
	List(ctx context.Context, input ListAutosInput) ([]*domain.Auto, error)
	Update(ctx context.Context, a *domain.Auto) (*domain.Auto, error)
	Delete(ctx context.Context, id string) error
}
