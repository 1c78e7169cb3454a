package ledger

import (
	"strings"

	"github.com/noah-isme/smart-tuition/internal/models"
)

// Candidate is a (name, class) pair about to be inserted.
type Candidate struct {
	Name      string `json:"name"`
	ClassName string `json:"className"`
}

// IsDuplicate reports whether a record with the same name and class exists
// for the target month. It only informs; insertion is never blocked here.
func IsDuplicate(candidate Candidate, month string, existing []models.Student) bool {
	name := normalizeText(candidate.Name)
	class := normalizeClass(candidate.ClassName)
	target := strings.TrimSpace(month)
	for _, s := range existing {
		if normalizeText(s.Name) == name && normalizeClass(s.ClassName) == class && strings.TrimSpace(s.Month) == target {
			return true
		}
	}
	return false
}

// FindDuplicates returns every candidate that duplicates an existing record,
// in input order.
func FindDuplicates(candidates []Candidate, month string, existing []models.Student) []Candidate {
	out := make([]Candidate, 0)
	for _, c := range candidates {
		if IsDuplicate(c, month, existing) {
			out = append(out, c)
		}
	}
	return out
}

func normalizeText(v string) string {
	return strings.ToLower(strings.TrimSpace(v))
}

// normalizeClass maps an empty class to the manual-entry sentinel so blank
// and defaulted records compare equal.
func normalizeClass(v string) string {
	if strings.TrimSpace(v) == "" {
		v = models.DefaultClassName
	}
	return normalizeText(v)
}
