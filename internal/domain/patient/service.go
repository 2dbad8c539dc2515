package patient

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/ehr/emr/internal/platform/db"
)

// AllergySeeder records the allergies typed on the creation form.
type AllergySeeder interface {
	SeedDraft(ctx context.Context, patientID uuid.UUID, draft string) error
}

// CreateInput is the creation form. Names are trimmed; DOB is YYYY-MM-DD or
// blank; Status defaults to active.
type CreateInput struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	DOB       string `json:"dob"`
	Status    string `json:"status"`
	Allergies string `json:"allergies"`
}

type Service struct {
	repo      Repository
	allergies AllergySeeder
	tx        db.TxBeginner
	now       func() time.Time
}

// NewService wires the patient service. tx may be nil, in which case creation
// and allergy seeding run without a shared transaction.
func NewService(repo Repository, allergies AllergySeeder, tx db.TxBeginner) *Service {
	return &Service{repo: repo, allergies: allergies, tx: tx, now: time.Now}
}

func (s *Service) inTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if s.tx == nil {
		return fn(ctx)
	}
	return db.WithTx(ctx, s.tx, fn)
}

// Today is the reference day for age calculation.
func (s *Service) Today() time.Time {
	return s.now()
}

func (s *Service) Create(ctx context.Context, in CreateInput) (*Patient, error) {
	p := &Patient{
		FirstName: strings.TrimSpace(in.FirstName),
		LastName:  strings.TrimSpace(in.LastName),
		Status:    strings.TrimSpace(in.Status),
	}
	if p.FirstName == "" || p.LastName == "" {
		return nil, ErrNameRequired
	}
	if p.Status == "" {
		p.Status = StatusActive
	}
	if !ValidStatus(p.Status) {
		return nil, ErrInvalidStatus
	}
	dob, err := ParseDOB(in.DOB)
	if err != nil {
		return nil, err
	}
	p.DOB = dob

	err = s.inTx(ctx, func(ctx context.Context) error {
		if err := s.repo.Create(ctx, p); err != nil {
			return err
		}
		if s.allergies == nil || strings.TrimSpace(in.Allergies) == "" {
			return nil
		}
		return s.allergies.SeedDraft(ctx, p.ID, in.Allergies)
	})
	if err != nil {
		return nil, err
	}
	return p, nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Patient, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) List(ctx context.Context, limit, offset int) ([]*Patient, int, error) {
	return s.repo.List(ctx, limit, offset)
}

// Delete removes the patient and everything that references it.
func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	return s.repo.DeleteCascade(ctx, id)
}
