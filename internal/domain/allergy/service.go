package allergy

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	metricnoop "go.opentelemetry.io/otel/metric/noop"
	"go.opentelemetry.io/otel/trace"
	tracenoop "go.opentelemetry.io/otel/trace/noop"

	"github.com/ehr/emr/internal/domain/patient"
	"github.com/ehr/emr/internal/platform/db"
)

const instrumentationName = "github.com/ehr/emr/internal/domain/allergy"

type Service struct {
	repo     Repository
	tracer   trace.Tracer
	inserted metric.Int64Counter
	deleted  metric.Int64Counter
}

type Option func(*Service)

func WithMeter(m metric.Meter) Option {
	return func(s *Service) {
		s.inserted, _ = m.Int64Counter("emr.allergy.inserted",
			metric.WithDescription("Allergy records inserted by draft saves."))
		s.deleted, _ = m.Int64Counter("emr.allergy.deleted",
			metric.WithDescription("Allergy records deleted by draft saves."))
	}
}

func WithTracer(t trace.Tracer) Option {
	return func(s *Service) { s.tracer = t }
}

func NewService(repo Repository, opts ...Option) *Service {
	s := &Service{repo: repo, tracer: tracenoop.NewTracerProvider().Tracer(instrumentationName)}
	WithMeter(metricnoop.NewMeterProvider().Meter(instrumentationName))(s)
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// List returns the patient's allergies, or patient.ErrNotFound when the
// patient row is gone.
func (s *Service) List(ctx context.Context, patientID uuid.UUID) ([]*Allergy, error) {
	if err := s.requirePatient(ctx, patientID); err != nil {
		return nil, err
	}
	return s.repo.ListByPatient(ctx, patientID)
}

// SaveDraft makes the stored allergies match draft and returns the reloaded
// list. Deletes run before inserts. A failed insert after a successful delete
// leaves the partial state in place; the caller re-saves the same draft.
func (s *Service) SaveDraft(ctx context.Context, patientID uuid.UUID, draft string) ([]*Allergy, error) {
	ctx, span := s.tracer.Start(ctx, "allergy.SaveDraft",
		trace.WithAttributes(attribute.String("patient.id", patientID.String())))
	defer span.End()

	if err := s.requirePatient(ctx, patientID); err != nil {
		return nil, fail(span, err)
	}
	current, err := s.repo.ListByPatient(ctx, patientID)
	if err != nil {
		return nil, fail(span, err)
	}

	plan := Reconcile(draft, current)
	span.SetAttributes(
		attribute.Int("allergy.delete", len(plan.Delete)),
		attribute.Int("allergy.insert", len(plan.Insert)),
	)

	if len(plan.Delete) > 0 {
		if err := s.repo.DeleteByIDs(ctx, patientID, plan.DeleteIDs()); err != nil {
			return nil, fail(span, fmt.Errorf("delete allergies: %w", err))
		}
		s.deleted.Add(ctx, int64(len(plan.Delete)))
	}
	if len(plan.Insert) > 0 {
		if err := s.insert(ctx, patientID, plan.Insert); err != nil {
			return nil, fail(span, err)
		}
	}

	list, err := s.repo.ListByPatient(ctx, patientID)
	if err != nil {
		return nil, fail(span, err)
	}
	return list, nil
}

// SeedDraft inserts every name in draft for a patient that has no allergies
// yet. It implements patient.AllergySeeder.
func (s *Service) SeedDraft(ctx context.Context, patientID uuid.UUID, draft string) error {
	names := NormalizeDraft(draft)
	if len(names) == 0 {
		return nil
	}
	return s.insert(ctx, patientID, names)
}

func (s *Service) requirePatient(ctx context.Context, patientID uuid.UUID) error {
	ok, err := s.repo.PatientExists(ctx, patientID)
	if err != nil {
		return err
	}
	if !ok {
		return patient.ErrNotFound
	}
	return nil
}

func (s *Service) insert(ctx context.Context, patientID uuid.UUID, names []string) error {
	err := s.repo.InsertNames(ctx, patientID, names)
	if db.IsForeignKeyViolation(err) {
		return patient.ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("insert allergies: %w", err)
	}
	s.inserted.Add(ctx, int64(len(names)))
	return nil
}

func fail(span trace.Span, err error) error {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	return err
}

// DraftText renders stored allergies back into the one-name-per-line form
// used by the edit box.
func DraftText(list []*Allergy) string {
	names := make([]string, 0, len(list))
	for _, a := range list {
		names = append(names, a.AllergenName)
	}
	return strings.Join(names, "\n")
}
