package chart

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"

	"github.com/ehr/emr/internal/domain/patient"
)

func TestLoad(t *testing.T) {
	s := newServices()
	ctx := context.Background()

	p, err := s.patients.Create(ctx, patient.CreateInput{
		FirstName: "Ada", LastName: "Lovelace", DOB: "2000-06-15", Allergies: "Penicillin\nLatex",
	})
	if err != nil {
		t.Fatalf("Create() error: %v", err)
	}
	if _, err := s.notes.Append(ctx, p.ID, "Initial consult"); err != nil {
		t.Fatalf("Append() error: %v", err)
	}

	ch, err := s.loader.Load(ctx, p.ID)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if ch.Patient.Title != "Lovelace, Ada" || ch.Patient.Age == nil || *ch.Patient.Age != 24 {
		t.Errorf("unexpected patient view: %+v", ch.Patient)
	}
	if ch.Draft != "Latex\nPenicillin" {
		t.Errorf("unexpected draft %q", ch.Draft)
	}
	if len(ch.Notes) != 1 || ch.Notes[0].Text != "Initial consult" {
		t.Errorf("unexpected notes: %+v", ch.Notes)
	}
}

func TestLoad_NotFound(t *testing.T) {
	s := newServices()
	if _, err := s.loader.Load(context.Background(), uuid.New()); !errors.Is(err, patient.ErrNotFound) {
		t.Fatalf("expected patient.ErrNotFound, got %v", err)
	}
}

func TestLoad_ReadFailure(t *testing.T) {
	s := newServices()
	ctx := context.Background()
	p, _ := s.patients.Create(ctx, patient.CreateInput{FirstName: "A", LastName: "B"})
	s.backend.failNotes = errBoom

	if _, err := s.loader.Load(ctx, p.ID); !errors.Is(err, errBoom) {
		t.Fatalf("expected notes failure, got %v", err)
	}
}

func TestDeleteCascadesToChildren(t *testing.T) {
	s := newServices()
	ctx := context.Background()

	keep, _ := s.patients.Create(ctx, patient.CreateInput{FirstName: "Keep", LastName: "Me", Allergies: "Sulfa"})
	gone, err := s.patients.Create(ctx, patient.CreateInput{FirstName: "Gone", LastName: "Soon", Allergies: "Peanuts\nLatex"})
	if err != nil {
		t.Fatalf("Create() error: %v", err)
	}
	_, _ = s.notes.Append(ctx, gone.ID, "note one")
	_, _ = s.notes.Append(ctx, keep.ID, "note two")

	if err := s.patients.Delete(ctx, gone.ID); err != nil {
		t.Fatalf("Delete() error: %v", err)
	}

	if _, err := s.loader.Load(ctx, gone.ID); !errors.Is(err, patient.ErrNotFound) {
		t.Errorf("expected deleted patient to be gone, got %v", err)
	}
	if _, err := s.allergies.List(ctx, gone.ID); !errors.Is(err, patient.ErrNotFound) {
		t.Errorf("allergy list: expected ErrNotFound, got %v", err)
	}
	if _, err := s.notes.Timeline(ctx, gone.ID); !errors.Is(err, patient.ErrNotFound) {
		t.Errorf("timeline: expected ErrNotFound, got %v", err)
	}
	for _, a := range s.backend.allergies {
		if a.PatientID == gone.ID {
			t.Errorf("allergy %q survived the delete", a.AllergenName)
		}
	}
	for _, n := range s.backend.notes {
		if n.PatientID == gone.ID {
			t.Errorf("note %q survived the delete", n.Text)
		}
	}

	ch, err := s.loader.Load(ctx, keep.ID)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if len(ch.Allergies) != 1 || len(ch.Notes) != 1 {
		t.Errorf("other patient's records should survive: %+v", ch)
	}

	if err := s.patients.Delete(ctx, gone.ID); !errors.Is(err, patient.ErrNotFound) {
		t.Errorf("second delete: expected ErrNotFound, got %v", err)
	}
}

func TestWritesAfterDeleteReportNotFound(t *testing.T) {
	s := newServices()
	ctx := context.Background()
	p, _ := s.patients.Create(ctx, patient.CreateInput{FirstName: "A", LastName: "B"})
	_ = s.patients.Delete(ctx, p.ID)

	if _, err := s.allergies.SaveDraft(ctx, p.ID, "Latex"); !errors.Is(err, patient.ErrNotFound) {
		t.Errorf("allergy save: expected ErrNotFound, got %v", err)
	}
	if _, err := s.allergies.SaveDraft(ctx, p.ID, ""); !errors.Is(err, patient.ErrNotFound) {
		t.Errorf("blank allergy save: expected ErrNotFound, got %v", err)
	}
	if _, err := s.notes.Append(ctx, p.ID, "late"); !errors.Is(err, patient.ErrNotFound) {
		t.Errorf("note append: expected ErrNotFound, got %v", err)
	}
}
