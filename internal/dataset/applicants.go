package dataset

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/jconnelly/underwriting-ai-agent-demos/internal/models"
	"github.com/jconnelly/underwriting-ai-agent-demos/internal/validation"
	"gopkg.in/yaml.v3"
)

// applicantBatch is the wrapped file shape: {"applicants": [...]}.
type applicantBatch struct {
	Applicants []*models.Applicant `json:"applicants" yaml:"applicants"`
}

// LoadApplicants reads a batch of applicants from a JSON, YAML or CSV file
// and validates every entry. JSON and YAML files may hold a single
// applicant, a list, or an object with an "applicants" list.
func LoadApplicants(path string) ([]*models.Applicant, error) {
	var (
		applicants []*models.Applicant
		err        error
	)

	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		applicants, err = loadApplicantsCSV(path)
	case ".yaml", ".yml":
		applicants, err = loadStructured(path, yamlDecoder{})
	default:
		applicants, err = loadStructured(path, jsonDecoder{})
	}
	if err != nil {
		return nil, err
	}

	if len(applicants) == 0 {
		return nil, fmt.Errorf("applicants: %s contains no applicants", path)
	}
	if err := validation.ValidateApplicants(applicants); err != nil {
		return nil, fmt.Errorf("applicants: %s: %w", path, err)
	}
	return applicants, nil
}

// Select returns applicants in the given range [start, end] (1-based,
// inclusive). end is clamped to the batch size.
func Select(applicants []*models.Applicant, start, end int) ([]*models.Applicant, error) {
	if start < 1 {
		return nil, fmt.Errorf("applicants: range start must be >= 1, got %d", start)
	}
	if end < start {
		return nil, fmt.Errorf("applicants: range end (%d) must be >= start (%d)", end, start)
	}

	if end > len(applicants) {
		end = len(applicants)
	}
	if start > len(applicants) {
		return []*models.Applicant{}, nil
	}
	return applicants[start-1 : end], nil
}

type decoder interface {
	unmarshal(data []byte, v any) error
}

type jsonDecoder struct{}

func (jsonDecoder) unmarshal(data []byte, v any) error { return json.Unmarshal(data, v) }

type yamlDecoder struct{}

func (yamlDecoder) unmarshal(data []byte, v any) error { return yaml.Unmarshal(data, v) }

func loadStructured(path string, dec decoder) ([]*models.Applicant, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("applicants: read %s: %w", path, err)
	}

	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return nil, fmt.Errorf("applicants: %s is empty", path)
	}

	var batch applicantBatch
	if err := dec.unmarshal(data, &batch); err != nil {
		// not an object, so it must be a top-level list
		var list []*models.Applicant
		if listErr := dec.unmarshal(data, &list); listErr != nil {
			if trimmed[0] == '[' || trimmed[0] == '-' {
				err = listErr
			}
			return nil, fmt.Errorf("applicants: parse %s: %w", path, err)
		}
		return list, nil
	}
	if len(batch.Applicants) > 0 {
		return batch.Applicants, nil
	}

	var single models.Applicant
	if err := dec.unmarshal(data, &single); err != nil {
		return nil, fmt.Errorf("applicants: parse %s: %w", path, err)
	}
	if single.ApplicantID == "" {
		return nil, nil
	}
	return []*models.Applicant{&single}, nil
}
