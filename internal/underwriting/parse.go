package underwriting

import (
	"strings"

	"github.com/jconnelly/underwriting-ai-agent-demos/internal/models"
)

// DefaultReason is reported when no decision label could be read.
const DefaultReason = "Unable to parse LLM response"

const (
	labelDecision = "decision:"
	labelReason   = "primary reason:"
	labelRules    = "triggered rules:"
	labelFactors  = "risk factors:"
)

// ParsedResponse is the structured reading of one collaborator answer.
// Matched is false when the default decision was used, in which case the
// caller keeps the raw text for diagnostics.
type ParsedResponse struct {
	Decision       models.Decision
	Reason         string
	TriggeredRules []string
	RiskFactors    []string
	Matched        bool
}

// ParseResponse scans the labeled lines of a collaborator answer. Labels may
// appear anywhere and in any case; markdown emphasis around a label is
// ignored. Later lines with the same label win.
//
// The decision token is matched as a case-insensitive substring with the
// precedence ACCEPT, then DENY, then ADJUDICATE, so "ACCEPT or DENY" reads
// as ACCEPT.
func ParseResponse(text string) ParsedResponse {
	p := ParsedResponse{
		Decision:       models.DecisionAdjudicate,
		Reason:         DefaultReason,
		TriggeredRules: []string{},
		RiskFactors:    []string{},
	}

	for _, raw := range strings.Split(text, "\n") {
		line := strings.TrimSpace(strings.ReplaceAll(raw, "**", ""))

		if rest, ok := cutLabel(line, labelDecision); ok {
			if d, ok := matchDecision(rest); ok {
				p.Decision = d
				p.Matched = true
			}
		} else if rest, ok := cutLabel(line, labelReason); ok {
			p.Reason = strings.TrimSpace(rest)
		} else if rest, ok := cutLabel(line, labelRules); ok {
			p.TriggeredRules = splitList(rest)
		} else if rest, ok := cutLabel(line, labelFactors); ok {
			p.RiskFactors = splitList(rest)
		}
	}

	return p
}

// cutLabel reports whether line starts with label, ignoring case, and
// returns the text after it.
func cutLabel(line, label string) (string, bool) {
	if len(line) < len(label) || !strings.EqualFold(line[:len(label)], label) {
		return "", false
	}
	return line[len(label):], true
}

func matchDecision(s string) (models.Decision, bool) {
	upper := strings.ToUpper(s)
	for _, d := range models.Decisions {
		if strings.Contains(upper, string(d)) {
			return d, true
		}
	}
	return "", false
}

// splitList splits a comma separated field. The literal "None" and an empty
// field both yield an empty list.
func splitList(s string) []string {
	s = strings.TrimSpace(s)
	if s == "" || s == "None" {
		return []string{}
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
