package staff

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ehr/emr/internal/platform/db"
)

type staffRepoPG struct {
	pool *pgxpool.Pool
}

func NewRepo(pool *pgxpool.Pool) Repository {
	return &staffRepoPG{pool: pool}
}

func (r *staffRepoPG) conn(ctx context.Context) db.Querier {
	return db.Conn(ctx, r.pool)
}

func (r *staffRepoPG) Get(ctx context.Context, userID uuid.UUID) (*Profile, error) {
	p := &Profile{}
	var updated time.Time
	err := r.conn(ctx).QueryRow(ctx, `
		SELECT user_id, full_name, role, email, updated_at
		FROM staff_profiles WHERE user_id = $1`, userID).
		Scan(&p.UserID, &p.FullName, &p.Role, &p.Email, &updated)
	if db.IsNoRows(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get staff profile: %w", err)
	}
	if err := p.Validate(); err != nil {
		return nil, db.DecodeError("staff_profiles", err)
	}
	p.UpdatedAt = &updated
	return p, nil
}

func (r *staffRepoPG) Upsert(ctx context.Context, p *Profile) error {
	var updated time.Time
	err := r.conn(ctx).QueryRow(ctx, `
		INSERT INTO staff_profiles (user_id, full_name, role, email, updated_at)
		VALUES ($1, $2, $3, $4, NOW())
		ON CONFLICT (user_id) DO UPDATE SET
			full_name = EXCLUDED.full_name,
			role = EXCLUDED.role,
			email = EXCLUDED.email,
			updated_at = EXCLUDED.updated_at
		RETURNING updated_at`,
		p.UserID, p.FullName, p.Role, p.Email).Scan(&updated)
	if err != nil {
		return fmt.Errorf("upsert staff profile: %w", err)
	}
	p.UpdatedAt = &updated
	return nil
}
