package chart

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/ehr/emr/internal/domain/allergy"
	"github.com/ehr/emr/internal/domain/note"
	"github.com/ehr/emr/internal/domain/patient"
)

type PatientReader interface {
	Get(ctx context.Context, id uuid.UUID) (*patient.Patient, error)
}

type AllergyReader interface {
	List(ctx context.Context, patientID uuid.UUID) ([]*allergy.Allergy, error)
}

type NoteReader interface {
	Timeline(ctx context.Context, patientID uuid.UUID) ([]*note.Note, error)
}

// Chart is everything the patient detail screen shows.
type Chart struct {
	Patient   patient.View       `json:"patient"`
	Allergies []*allergy.Allergy `json:"allergies"`
	Draft     string             `json:"draft"`
	Notes     []*note.Note       `json:"notes"`
}

type Loader struct {
	patients  PatientReader
	allergies AllergyReader
	notes     NoteReader
	now       func() time.Time
}

func NewLoader(patients PatientReader, allergies AllergyReader, notes NoteReader) *Loader {
	return &Loader{patients: patients, allergies: allergies, notes: notes, now: time.Now}
}

// Load reads the patient, its allergies and its notes concurrently and waits
// for all three. A missing patient wins over any other failure.
func (l *Loader) Load(ctx context.Context, id uuid.UUID) (*Chart, error) {
	var (
		p         *patient.Patient
		pErr      error
		allergies []*allergy.Allergy
		notes     []*note.Note
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		p, pErr = l.patients.Get(gctx, id)
		return pErr
	})
	g.Go(func() error {
		var err error
		allergies, err = l.allergies.List(gctx, id)
		return err
	})
	g.Go(func() error {
		var err error
		notes, err = l.notes.Timeline(gctx, id)
		return err
	})
	err := g.Wait()
	if errors.Is(pErr, patient.ErrNotFound) {
		return nil, patient.ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	if allergies == nil {
		allergies = []*allergy.Allergy{}
	}
	if notes == nil {
		notes = []*note.Note{}
	}
	return &Chart{
		Patient:   patient.NewView(p, l.now()),
		Allergies: allergies,
		Draft:     allergy.DraftText(allergies),
		Notes:     notes,
	}, nil
}
