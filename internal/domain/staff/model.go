package staff

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

const DefaultRole = "staff"

var ErrNoUser = errors.New("no signed-in user")

// Profile is the signed-in user's staff record. Role is free text and is not
// used for authorization.
type Profile struct {
	UserID    uuid.UUID  `json:"user_id"`
	FullName  string     `json:"full_name"`
	Role      string     `json:"role"`
	Email     string     `json:"email"`
	UpdatedAt *time.Time `json:"updated_at,omitempty"`
}

func (p *Profile) Validate() error {
	if p.UserID == uuid.Nil {
		return fmt.Errorf("missing user_id")
	}
	if strings.TrimSpace(p.Role) == "" {
		return fmt.Errorf("empty role")
	}
	return nil
}
