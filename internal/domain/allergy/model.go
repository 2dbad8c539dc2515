package allergy

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

type Allergy struct {
	ID           uuid.UUID  `json:"id"`
	PatientID    uuid.UUID  `json:"patient_id"`
	AllergenName string     `json:"allergen_name"`
	Severity     *string    `json:"severity"`
	Reaction     *string    `json:"reaction"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    *time.Time `json:"updated_at,omitempty"`
}

// Validate checks a row read back from the store.
func (a *Allergy) Validate() error {
	if a.ID == uuid.Nil || a.PatientID == uuid.Nil {
		return fmt.Errorf("missing id")
	}
	if strings.TrimSpace(a.AllergenName) == "" {
		return fmt.Errorf("empty allergen_name")
	}
	return nil
}
