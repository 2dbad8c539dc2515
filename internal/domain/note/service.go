package note

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/ehr/emr/internal/domain/patient"
	"github.com/ehr/emr/internal/platform/db"
)

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Timeline returns a patient's notes, newest first. A missing patient is
// patient.ErrNotFound rather than an empty timeline.
func (s *Service) Timeline(ctx context.Context, patientID uuid.UUID) ([]*Note, error) {
	ok, err := s.repo.PatientExists(ctx, patientID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, patient.ErrNotFound
	}
	return s.repo.ListByPatient(ctx, patientID)
}

// Append stores a trimmed note and returns the refreshed timeline. Blank text
// is rejected before the store is touched.
func (s *Service) Append(ctx context.Context, patientID uuid.UUID, text string) ([]*Note, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, ErrEmptyNote
	}

	err := s.repo.Insert(ctx, &Note{PatientID: patientID, Text: text})
	if db.IsForeignKeyViolation(err) {
		return nil, patient.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("insert note: %w", err)
	}
	return s.repo.ListByPatient(ctx, patientID)
}
