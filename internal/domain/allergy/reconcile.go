package allergy

import (
	"strings"

	"github.com/google/uuid"
)

// Plan is the set of store mutations that makes a patient's allergies match
// a draft.
type Plan struct {
	Delete []*Allergy
	Insert []string
}

func (p Plan) Empty() bool {
	return len(p.Delete) == 0 && len(p.Insert) == 0
}

// DeleteIDs returns the ids of the records marked for deletion.
func (p Plan) DeleteIDs() []uuid.UUID {
	ids := make([]uuid.UUID, 0, len(p.Delete))
	for _, a := range p.Delete {
		ids = append(ids, a.ID)
	}
	return ids
}

func fold(name string) string {
	return strings.ToLower(name)
}

// NormalizeDraft splits a free-text draft into allergen names: one per line,
// trimmed, blanks dropped, order kept. Later lines that repeat an earlier
// name, ignoring case, are dropped.
func NormalizeDraft(draft string) []string {
	draft = strings.ReplaceAll(draft, "\r\n", "\n")
	draft = strings.ReplaceAll(draft, "\r", "\n")

	seen := make(map[string]bool)
	var names []string
	for _, line := range strings.Split(draft, "\n") {
		name := strings.TrimSpace(line)
		if name == "" || seen[fold(name)] {
			continue
		}
		seen[fold(name)] = true
		names = append(names, name)
	}
	return names
}

// Reconcile diffs the draft against current by case-insensitive name. Current
// records absent from the draft are deleted, as are stored duplicates of a
// name already kept. Draft names absent from current are inserted with no
// severity or reaction.
func Reconcile(draft string, current []*Allergy) Plan {
	wanted := NormalizeDraft(draft)

	want := make(map[string]bool, len(wanted))
	for _, name := range wanted {
		want[fold(name)] = true
	}
	have := make(map[string]bool, len(current))
	for _, a := range current {
		have[fold(a.AllergenName)] = true
	}

	var plan Plan
	kept := make(map[string]bool, len(current))
	for _, a := range current {
		key := fold(a.AllergenName)
		if !want[key] || kept[key] {
			plan.Delete = append(plan.Delete, a)
			continue
		}
		kept[key] = true
	}
	for _, name := range wanted {
		if !have[fold(name)] {
			plan.Insert = append(plan.Insert, name)
		}
	}
	return plan
}
