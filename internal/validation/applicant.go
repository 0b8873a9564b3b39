package validation

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/jconnelly/underwriting-ai-agent-demos/internal/models"
)

var validate *validator.Validate

func init() {
	validate = validator.New(validator.WithRequiredStructEnabled())
}

// ValidateApplicant checks field-level constraints on an applicant and
// returns a single error listing every failing field.
func ValidateApplicant(a *models.Applicant) error {
	if a == nil {
		return errors.New("applicant is nil")
	}
	if err := validate.Struct(a); err != nil {
		return fmt.Errorf("applicant %q: %w", a.ApplicantID, flatten(err))
	}
	return nil
}

// ValidateApplicants validates a batch and rejects duplicate identifiers,
// since results are keyed by applicant_id.
func ValidateApplicants(applicants []*models.Applicant) error {
	seen := make(map[string]bool, len(applicants))
	var errs []error
	for i, a := range applicants {
		if err := ValidateApplicant(a); err != nil {
			errs = append(errs, fmt.Errorf("entry %d: %w", i, err))
			continue
		}
		if seen[a.ApplicantID] {
			errs = append(errs, fmt.Errorf("entry %d: duplicate applicant_id %q", i, a.ApplicantID))
		}
		seen[a.ApplicantID] = true
	}
	return errors.Join(errs...)
}

func flatten(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msg := fe.Namespace() + " failed " + fe.Tag()
		if fe.Param() != "" {
			msg += "=" + fe.Param()
		}
		msgs = append(msgs, msg)
	}
	return errors.New(strings.Join(msgs, "; "))
}
