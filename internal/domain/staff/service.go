package staff

import (
	"context"
	"strings"

	"github.com/google/uuid"
)

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Get returns the stored profile, or a blank one with the default role and
// the session email when the user has never saved one.
func (s *Service) Get(ctx context.Context, userID uuid.UUID, email string) (*Profile, error) {
	if userID == uuid.Nil {
		return nil, ErrNoUser
	}
	p, err := s.repo.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return &Profile{UserID: userID, Role: DefaultRole, Email: email}, nil
	}
	return p, nil
}

// Save overwrites the profile. Email always comes from the session.
func (s *Service) Save(ctx context.Context, userID uuid.UUID, email, fullName, role string) (*Profile, error) {
	if userID == uuid.Nil {
		return nil, ErrNoUser
	}
	p := &Profile{
		UserID:   userID,
		FullName: strings.TrimSpace(fullName),
		Role:     strings.TrimSpace(role),
		Email:    email,
	}
	if p.Role == "" {
		p.Role = DefaultRole
	}
	if err := s.repo.Upsert(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}
