package note

import (
	"context"

	"github.com/google/uuid"
)

type Repository interface {
	PatientExists(ctx context.Context, patientID uuid.UUID) (bool, error)
	// ListByPatient returns notes newest first.
	ListByPatient(ctx context.Context, patientID uuid.UUID) ([]*Note, error)
	Insert(ctx context.Context, n *Note) error
}
