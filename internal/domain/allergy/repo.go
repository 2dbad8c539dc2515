package allergy

import (
	"context"

	"github.com/google/uuid"
)

type Repository interface {
	// PatientExists reports whether the patient row is present.
	PatientExists(ctx context.Context, patientID uuid.UUID) (bool, error)
	// ListByPatient returns the patient's allergies ordered by name.
	ListByPatient(ctx context.Context, patientID uuid.UUID) ([]*Allergy, error)
	// DeleteByIDs removes the given records in one statement. Ids that do not
	// belong to patientID are ignored.
	DeleteByIDs(ctx context.Context, patientID uuid.UUID, ids []uuid.UUID) error
	// InsertNames adds one record per name in one statement.
	InsertNames(ctx context.Context, patientID uuid.UUID, names []string) error
}
