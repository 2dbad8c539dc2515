package patient

import (
	"strconv"
	"time"

	"github.com/google/uuid"
)

const (
	BadgePositive   = "positive"
	BadgeNeutral    = "neutral"
	BadgeCautionary = "cautionary"
)

const (
	TitlePlaceholder = "Patient"
	AgePlaceholder   = "—"
)

// Title is "Last, First", or the placeholder when there is no patient.
func Title(p *Patient) string {
	if p == nil {
		return TitlePlaceholder
	}
	return p.LastName + ", " + p.FirstName
}

// Age returns whole calendar years from dob to today. ok is false when dob
// is absent.
func Age(dob *time.Time, today time.Time) (years int, ok bool) {
	if dob == nil {
		return 0, false
	}
	by, bm, bd := dob.Date()
	ty, tm, td := today.Date()
	years = ty - by
	if tm < bm || (tm == bm && td < bd) {
		years--
	}
	return years, true
}

// Badge classifies a status for display. Unknown values are cautionary.
func Badge(status string) string {
	switch status {
	case StatusActive:
		return BadgePositive
	case StatusDischarged:
		return BadgeNeutral
	default:
		return BadgeCautionary
	}
}

// View is the read shape of a patient returned by the API.
type View struct {
	ID        uuid.UUID  `json:"id"`
	FirstName string     `json:"first_name"`
	LastName  string     `json:"last_name"`
	Title     string     `json:"title"`
	DOB       string     `json:"dob,omitempty"`
	Age       *int       `json:"age"`
	AgeLabel  string     `json:"age_label"`
	Status    string     `json:"status"`
	Badge     string     `json:"badge"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt *time.Time `json:"updated_at,omitempty"`
}

func NewView(p *Patient, today time.Time) View {
	v := View{
		ID:        p.ID,
		FirstName: p.FirstName,
		LastName:  p.LastName,
		Title:     Title(p),
		AgeLabel:  AgePlaceholder,
		Status:    p.Status,
		Badge:     Badge(p.Status),
		CreatedAt: p.CreatedAt,
		UpdatedAt: p.UpdatedAt,
	}
	if p.DOB != nil {
		v.DOB = p.DOB.Format(DateLayout)
	}
	if years, ok := Age(p.DOB, today); ok {
		v.Age = &years
		v.AgeLabel = strconv.Itoa(years)
	}
	return v
}
