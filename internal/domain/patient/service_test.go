package patient

import (
	"context"
	"errors"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
)

type mockRepo struct {
	mu       sync.Mutex
	patients map[uuid.UUID]*Patient
	creates  int
}

func newMockRepo() *mockRepo {
	return &mockRepo{patients: make(map[uuid.UUID]*Patient)}
}

func (m *mockRepo) Create(_ context.Context, p *Patient) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.creates++
	p.ID = uuid.New()
	p.CreatedAt = time.Now().Add(time.Duration(m.creates) * time.Millisecond)
	m.patients[p.ID] = p
	return nil
}

func (m *mockRepo) GetByID(_ context.Context, id uuid.UUID) (*Patient, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.patients[id]
	if !ok {
		return nil, ErrNotFound
	}
	return p, nil
}

func (m *mockRepo) List(_ context.Context, limit, offset int) ([]*Patient, int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var all []*Patient
	for _, p := range m.patients {
		all = append(all, p)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].CreatedAt.After(all[j].CreatedAt) })
	total := len(all)
	if offset > total {
		offset = total
	}
	end := offset + limit
	if end > total {
		end = total
	}
	return all[offset:end], total, nil
}

func (m *mockRepo) DeleteCascade(_ context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.patients[id]; !ok {
		return ErrNotFound
	}
	delete(m.patients, id)
	return nil
}

type mockSeeder struct {
	calls map[uuid.UUID]string
	err   error
}

func (m *mockSeeder) SeedDraft(_ context.Context, patientID uuid.UUID, draft string) error {
	if m.err != nil {
		return m.err
	}
	if m.calls == nil {
		m.calls = make(map[uuid.UUID]string)
	}
	m.calls[patientID] = draft
	return nil
}

func newTestService() (*Service, *mockRepo, *mockSeeder) {
	repo := newMockRepo()
	seeder := &mockSeeder{}
	return NewService(repo, seeder, nil), repo, seeder
}

func TestCreate(t *testing.T) {
	svc, _, seeder := newTestService()

	p, err := svc.Create(context.Background(), CreateInput{
		FirstName: "  Ada ",
		LastName:  "Lovelace",
		DOB:       "2000-06-15",
		Allergies: "Peanuts\nShellfish",
	})
	if err != nil {
		t.Fatalf("Create() error: %v", err)
	}
	if p.FirstName != "Ada" || p.Status != StatusActive || p.DOB == nil {
		t.Errorf("unexpected patient: %+v", p)
	}
	if seeder.calls[p.ID] != "Peanuts\nShellfish" {
		t.Errorf("expected allergy draft to be seeded, got %q", seeder.calls[p.ID])
	}
}

func TestCreate_NoDraftSkipsSeeder(t *testing.T) {
	svc, _, seeder := newTestService()
	if _, err := svc.Create(context.Background(), CreateInput{FirstName: "A", LastName: "B", Allergies: " \n "}); err != nil {
		t.Fatalf("Create() error: %v", err)
	}
	if len(seeder.calls) != 0 {
		t.Error("seeder should not run for a blank draft")
	}
}

func TestCreate_Validation(t *testing.T) {
	tests := []struct {
		name string
		in   CreateInput
		want error
	}{
		{"missing first", CreateInput{LastName: "B"}, ErrNameRequired},
		{"blank last", CreateInput{FirstName: "A", LastName: "   "}, ErrNameRequired},
		{"bad status", CreateInput{FirstName: "A", LastName: "B", Status: "archived"}, ErrInvalidStatus},
		{"bad dob", CreateInput{FirstName: "A", LastName: "B", DOB: "June 15"}, ErrInvalidDOB},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, repo, _ := newTestService()
			if _, err := svc.Create(context.Background(), tt.in); !errors.Is(err, tt.want) {
				t.Fatalf("expected %v, got %v", tt.want, err)
			}
			if repo.creates != 0 {
				t.Error("repository should not be called on invalid input")
			}
		})
	}
}

func TestCreate_SeedErrorSurfaces(t *testing.T) {
	svc, _, seeder := newTestService()
	seeder.err = errors.New("insert allergies: boom")
	if _, err := svc.Create(context.Background(), CreateInput{FirstName: "A", LastName: "B", Allergies: "Latex"}); err == nil {
		t.Fatal("expected seeding error to surface")
	}
}

func TestDelete(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()
	p, _ := svc.Create(ctx, CreateInput{FirstName: "A", LastName: "B"})

	if err := svc.Delete(ctx, p.ID); err != nil {
		t.Fatalf("Delete() error: %v", err)
	}
	if _, err := svc.Get(ctx, p.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound after delete, got %v", err)
	}
	if err := svc.Delete(ctx, p.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound on second delete, got %v", err)
	}
}
