// Package rules loads underwriting rule files and renders them as the plain
// text handed to the decision collaborator. Rules are context only; nothing
// in this package evaluates them.
package rules

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/jconnelly/underwriting-ai-agent-demos/internal/validation"
)

// ErrInvalidRules is returned when a rule file fails schema validation.
var ErrInvalidRules = errors.New("invalid rules file")

// Rule is a single named rule.
type Rule struct {
	RuleID      string `json:"rule_id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

// Category groups rules of one kind.
type Category struct {
	Description string `json:"description,omitempty"`
	Rules       []Rule `json:"rules"`
}

// RuleSet is the content of the underwriting_rules object.
type RuleSet struct {
	Version              string    `json:"version,omitempty"`
	Description          string    `json:"description,omitempty"`
	HardStops            *Category `json:"hard_stops,omitempty"`
	AdjudicationTriggers *Category `json:"adjudication_triggers,omitempty"`
	AcceptanceCriteria   *Category `json:"acceptance_criteria,omitempty"`
}

type ruleFile struct {
	UnderwritingRules RuleSet `json:"underwriting_rules"`
}

// Load reads and validates a rule file.
func Load(path string) (*RuleSet, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading rules file %s: %w", path, err)
	}
	rs, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return rs, nil
}

// Parse validates raw rule-file JSON and decodes it.
func Parse(data []byte) (*RuleSet, error) {
	if errs := validation.ValidateRulesBytes(data); len(errs) > 0 {
		return nil, fmt.Errorf("%w: %s", ErrInvalidRules, strings.Join(errs, "; "))
	}
	var f ruleFile
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidRules, err)
	}
	return &f.UnderwritingRules, nil
}

// Text renders the rule set in the fixed section order hard stops,
// adjudication triggers, acceptance criteria. Missing sections are omitted.
// The output depends only on the rule set contents.
func (rs *RuleSet) Text() string {
	var sb strings.Builder

	sections := []struct {
		heading string
		cat     *Category
	}{
		{"HARD STOPS (Automatic Denial):", rs.HardStops},
		{"ADJUDICATION TRIGGERS (Manual Review Required):", rs.AdjudicationTriggers},
		{"ACCEPTANCE CRITERIA (Automatic Approval):", rs.AcceptanceCriteria},
	}

	for _, s := range sections {
		if s.cat == nil {
			continue
		}
		if sb.Len() > 0 {
			sb.WriteString("\n")
		}
		sb.WriteString(s.heading)
		sb.WriteString("\n")
		for _, r := range s.cat.Rules {
			fmt.Fprintf(&sb, "- %s: %s - %s\n", r.RuleID, r.Name, r.Description)
		}
	}

	return sb.String()
}

// Count returns the total number of rules across all sections.
func (rs *RuleSet) Count() int {
	n := 0
	for _, c := range []*Category{rs.HardStops, rs.AdjudicationTriggers, rs.AcceptanceCriteria} {
		if c != nil {
			n += len(c.Rules)
		}
	}
	return n
}
