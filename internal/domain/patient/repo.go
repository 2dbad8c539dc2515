package patient

import (
	"context"

	"github.com/google/uuid"
)

type Repository interface {
	Create(ctx context.Context, p *Patient) error
	GetByID(ctx context.Context, id uuid.UUID) (*Patient, error)
	List(ctx context.Context, limit, offset int) ([]*Patient, int, error)
	// DeleteCascade removes the patient with its allergies and notes as one
	// atomic operation. Returns ErrNotFound when nothing matched.
	DeleteCascade(ctx context.Context, id uuid.UUID) error
}
