package note

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

var ErrEmptyNote = errors.New("note text is required")

// Note is an append-only clinical note. SignedAt is stored but never set by
// this service.
type Note struct {
	ID        uuid.UUID  `json:"id"`
	PatientID uuid.UUID  `json:"patient_id"`
	Text      string     `json:"note_text"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt *time.Time `json:"updated_at,omitempty"`
	SignedAt  *time.Time `json:"signed_at,omitempty"`
}

func (n *Note) Validate() error {
	if n.ID == uuid.Nil || n.PatientID == uuid.Nil {
		return fmt.Errorf("missing id")
	}
	if strings.TrimSpace(n.Text) == "" {
		return fmt.Errorf("empty note_text")
	}
	return nil
}
