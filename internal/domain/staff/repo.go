package staff

import (
	"context"

	"github.com/google/uuid"
)

type Repository interface {
	// Get returns nil, nil when the user has no profile yet.
	Get(ctx context.Context, userID uuid.UUID) (*Profile, error)
	// Upsert writes every field of p and sets UpdatedAt.
	Upsert(ctx context.Context, p *Profile) error
}
