package orchestration

import (
	"fmt"
	"path/filepath"

	"github.com/jconnelly/underwriting-ai-agent-demos/internal/models"
)

// FilterApplicants returns the applicants whose id matches at least one of
// the given glob patterns, in input order. An empty patterns slice returns
// all applicants unchanged.
func FilterApplicants(applicants []*models.Applicant, patterns []string) ([]*models.Applicant, error) {
	if len(patterns) == 0 {
		return applicants, nil
	}

	var matched []*models.Applicant
	for _, a := range applicants {
		ok, err := matchesAny(a.ApplicantID, patterns)
		if err != nil {
			return nil, err
		}
		if ok {
			matched = append(matched, a)
		}
	}
	return matched, nil
}

func matchesAny(id string, patterns []string) (bool, error) {
	for _, p := range patterns {
		ok, err := filepath.Match(p, id)
		if err != nil {
			return false, fmt.Errorf("invalid applicant filter pattern %q: %w", p, err)
		}
		if ok {
			return true, nil
		}
	}
	return false, nil
}
