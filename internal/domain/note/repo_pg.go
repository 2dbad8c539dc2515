package note

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ehr/emr/internal/platform/db"
)

type noteRepoPG struct {
	pool *pgxpool.Pool
}

func NewRepo(pool *pgxpool.Pool) Repository {
	return &noteRepoPG{pool: pool}
}

func (r *noteRepoPG) conn(ctx context.Context) db.Querier {
	return db.Conn(ctx, r.pool)
}

func (r *noteRepoPG) PatientExists(ctx context.Context, patientID uuid.UUID) (bool, error) {
	var ok bool
	err := r.conn(ctx).QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM patients WHERE id = $1)`, patientID).Scan(&ok)
	if err != nil {
		return false, fmt.Errorf("check patient: %w", err)
	}
	return ok, nil
}

func (r *noteRepoPG) ListByPatient(ctx context.Context, patientID uuid.UUID) ([]*Note, error) {
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT id, patient_id, note_text, created_at, updated_at, signed_at
		FROM notes
		WHERE patient_id = $1
		ORDER BY created_at DESC, id DESC`, patientID)
	if err != nil {
		return nil, fmt.Errorf("list notes: %w", err)
	}
	defer rows.Close()

	out := []*Note{}
	for rows.Next() {
		var n Note
		if err := rows.Scan(&n.ID, &n.PatientID, &n.Text, &n.CreatedAt, &n.UpdatedAt, &n.SignedAt); err != nil {
			return nil, fmt.Errorf("scan note: %w", err)
		}
		if err := n.Validate(); err != nil {
			return nil, db.DecodeError("notes", err)
		}
		out = append(out, &n)
	}
	return out, rows.Err()
}

func (r *noteRepoPG) Insert(ctx context.Context, n *Note) error {
	return r.conn(ctx).QueryRow(ctx, `
		INSERT INTO notes (patient_id, note_text)
		VALUES ($1, $2)
		RETURNING id, created_at`,
		n.PatientID, n.Text).Scan(&n.ID, &n.CreatedAt)
}
