package patient

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

var (
	ErrNotFound      = errors.New("patient not found")
	ErrNameRequired  = errors.New("first_name and last_name are required")
	ErrInvalidStatus = errors.New("status must be one of active, discharged, pending")
	ErrInvalidDOB    = errors.New("dob must be a date in YYYY-MM-DD form")
)

const (
	StatusActive     = "active"
	StatusDischarged = "discharged"
	StatusPending    = "pending"
)

// DateLayout is the wire and storage format of a date of birth.
const DateLayout = "2006-01-02"

type Patient struct {
	ID        uuid.UUID
	FirstName string
	LastName  string
	DOB       *time.Time
	Status    string
	CreatedAt time.Time
	UpdatedAt *time.Time
}

func ValidStatus(s string) bool {
	switch s {
	case StatusActive, StatusDischarged, StatusPending:
		return true
	}
	return false
}

// ParseDOB parses an optional YYYY-MM-DD date. Blank input means no date.
func ParseDOB(s string) (*time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return nil, ErrInvalidDOB
	}
	return &t, nil
}

// Validate checks a row read back from the store.
func (p *Patient) Validate() error {
	if p.ID == uuid.Nil {
		return fmt.Errorf("missing id")
	}
	if strings.TrimSpace(p.FirstName) == "" || strings.TrimSpace(p.LastName) == "" {
		return ErrNameRequired
	}
	if !ValidStatus(p.Status) {
		return fmt.Errorf("unknown status %q", p.Status)
	}
	return nil
}
