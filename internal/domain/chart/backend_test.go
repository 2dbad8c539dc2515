package chart

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/ehr/emr/internal/domain/allergy"
	"github.com/ehr/emr/internal/domain/note"
	"github.com/ehr/emr/internal/domain/patient"
)

// backend is an in-memory store whose patient delete cascades to allergies
// and notes the way delete_patient does.
type backend struct {
	mu        sync.Mutex
	patients  map[uuid.UUID]*patient.Patient
	allergies []*allergy.Allergy
	notes     []*note.Note
	clock     time.Time
	failNotes error
}

func newBackend() *backend {
	return &backend{
		patients: make(map[uuid.UUID]*patient.Patient),
		clock:    time.Date(2024, 1, 1, 8, 0, 0, 0, time.UTC),
	}
}

func (b *backend) tick() time.Time {
	b.clock = b.clock.Add(time.Second)
	return b.clock
}

var errFK = &pgconn.PgError{Code: "23503", Message: "violates foreign key constraint"}

type patientRepo struct{ *backend }

func (r patientRepo) Create(_ context.Context, p *patient.Patient) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	p.ID = uuid.New()
	p.CreatedAt = r.tick()
	r.patients[p.ID] = p
	return nil
}

func (r patientRepo) GetByID(_ context.Context, id uuid.UUID) (*patient.Patient, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.patients[id]
	if !ok {
		return nil, patient.ErrNotFound
	}
	return p, nil
}

func (r patientRepo) List(_ context.Context, limit, offset int) ([]*patient.Patient, int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	all := make([]*patient.Patient, 0, len(r.patients))
	for _, p := range r.patients {
		all = append(all, p)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].CreatedAt.After(all[j].CreatedAt) })
	if offset > len(all) {
		offset = len(all)
	}
	end := min(offset+limit, len(all))
	return all[offset:end], len(all), nil
}

func (r patientRepo) DeleteCascade(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.patients[id]; !ok {
		return patient.ErrNotFound
	}
	delete(r.patients, id)
	var allergies []*allergy.Allergy
	for _, a := range r.allergies {
		if a.PatientID != id {
			allergies = append(allergies, a)
		}
	}
	var notes []*note.Note
	for _, n := range r.notes {
		if n.PatientID != id {
			notes = append(notes, n)
		}
	}
	r.allergies, r.notes = allergies, notes
	return nil
}

func (b *backend) patientExists(id uuid.UUID) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	_, ok := b.patients[id]
	return ok
}

type allergyRepo struct{ *backend }

func (r allergyRepo) PatientExists(_ context.Context, id uuid.UUID) (bool, error) {
	return r.patientExists(id), nil
}

func (r allergyRepo) ListByPatient(_ context.Context, patientID uuid.UUID) ([]*allergy.Allergy, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []*allergy.Allergy{}
	for _, a := range r.allergies {
		if a.PatientID == patientID {
			out = append(out, a)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].AllergenName < out[j].AllergenName })
	return out, nil
}

func (r allergyRepo) DeleteByIDs(_ context.Context, patientID uuid.UUID, ids []uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	drop := make(map[uuid.UUID]bool, len(ids))
	for _, id := range ids {
		drop[id] = true
	}
	var kept []*allergy.Allergy
	for _, a := range r.allergies {
		if !(a.PatientID == patientID && drop[a.ID]) {
			kept = append(kept, a)
		}
	}
	r.allergies = kept
	return nil
}

func (r allergyRepo) InsertNames(_ context.Context, patientID uuid.UUID, names []string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.patients[patientID]; !ok {
		return errFK
	}
	for _, n := range names {
		r.allergies = append(r.allergies, &allergy.Allergy{
			ID: uuid.New(), PatientID: patientID, AllergenName: n, CreatedAt: r.tick(),
		})
	}
	return nil
}

type noteRepo struct{ *backend }

func (r noteRepo) PatientExists(_ context.Context, id uuid.UUID) (bool, error) {
	return r.patientExists(id), nil
}

func (r noteRepo) ListByPatient(_ context.Context, patientID uuid.UUID) ([]*note.Note, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failNotes != nil {
		return nil, r.failNotes
	}
	out := []*note.Note{}
	for _, n := range r.notes {
		if n.PatientID == patientID {
			out = append(out, n)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (r noteRepo) Insert(_ context.Context, n *note.Note) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.patients[n.PatientID]; !ok {
		return errFK
	}
	n.ID = uuid.New()
	n.CreatedAt = r.tick()
	r.notes = append(r.notes, n)
	return nil
}

type services struct {
	backend   *backend
	patients  *patient.Service
	allergies *allergy.Service
	notes     *note.Service
	loader    *Loader
}

func newServices() *services {
	b := newBackend()
	allergies := allergy.NewService(allergyRepo{b})
	notes := note.NewService(noteRepo{b})
	patients := patient.NewService(patientRepo{b}, allergies, nil)
	loader := NewLoader(patients, allergies, notes)
	loader.now = func() time.Time { return time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC) }
	return &services{backend: b, patients: patients, allergies: allergies, notes: notes, loader: loader}
}

var errBoom = errors.New("relation \"notes\" does not exist")
