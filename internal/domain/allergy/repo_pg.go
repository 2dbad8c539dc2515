package allergy

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ehr/emr/internal/platform/db"
)

type allergyRepoPG struct {
	pool *pgxpool.Pool
}

func NewRepo(pool *pgxpool.Pool) Repository {
	return &allergyRepoPG{pool: pool}
}

func (r *allergyRepoPG) conn(ctx context.Context) db.Querier {
	return db.Conn(ctx, r.pool)
}

func (r *allergyRepoPG) PatientExists(ctx context.Context, patientID uuid.UUID) (bool, error) {
	var ok bool
	err := r.conn(ctx).QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM patients WHERE id = $1)`, patientID).Scan(&ok)
	if err != nil {
		return false, fmt.Errorf("check patient: %w", err)
	}
	return ok, nil
}

func (r *allergyRepoPG) ListByPatient(ctx context.Context, patientID uuid.UUID) ([]*Allergy, error) {
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT id, patient_id, allergen_name, severity, reaction, created_at, updated_at
		FROM allergies
		WHERE patient_id = $1
		ORDER BY allergen_name ASC, id`, patientID)
	if err != nil {
		return nil, fmt.Errorf("list allergies: %w", err)
	}
	defer rows.Close()

	out := []*Allergy{}
	for rows.Next() {
		var a Allergy
		if err := rows.Scan(&a.ID, &a.PatientID, &a.AllergenName, &a.Severity, &a.Reaction, &a.CreatedAt, &a.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan allergy: %w", err)
		}
		if err := a.Validate(); err != nil {
			return nil, db.DecodeError("allergies", err)
		}
		out = append(out, &a)
	}
	return out, rows.Err()
}

func (r *allergyRepoPG) DeleteByIDs(ctx context.Context, patientID uuid.UUID, ids []uuid.UUID) error {
	if len(ids) == 0 {
		return nil
	}
	_, err := r.conn(ctx).Exec(ctx,
		`DELETE FROM allergies WHERE patient_id = $1 AND id = ANY($2)`,
		patientID, ids)
	return err
}

func (r *allergyRepoPG) InsertNames(ctx context.Context, patientID uuid.UUID, names []string) error {
	if len(names) == 0 {
		return nil
	}
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO allergies (patient_id, allergen_name)
		SELECT $1, name FROM unnest($2::text[]) WITH ORDINALITY AS t(name, ord)
		ORDER BY ord`,
		patientID, names)
	return err
}
