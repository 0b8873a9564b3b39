package execution

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// MockEngine is an offline engine that answers underwriting prompts with a
// small fixed rule table applied to the applicant section of the prompt.
// Its answers depend only on the prompt text, which keeps runs reproducible
// without network access.
type MockEngine struct {
	modelID string

	// Latency is slept before answering, to exercise timing code paths.
	Latency time.Duration
}

// NewMockEngine creates a new mock engine
func NewMockEngine(modelID string) *MockEngine {
	return &MockEngine{modelID: modelID}
}

func (m *MockEngine) Initialize(ctx context.Context) error {
	return nil
}

func (m *MockEngine) Complete(ctx context.Context, req *CompletionRequest) (*CompletionResponse, error) {
	if req == nil {
		return nil, fmt.Errorf("nil req was passed to MockEngine.Complete")
	}

	start := time.Now()
	if m.Latency > 0 {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(m.Latency):
		}
	}

	profile := profileFor(req.Prompt)
	facts := readApplicantFacts(req.Prompt)
	content := profile.decide(facts)

	return &CompletionResponse{
		Content:    content,
		ModelID:    m.modelID,
		DurationMs: time.Since(start).Milliseconds(),
	}, nil
}

func (m *MockEngine) Shutdown(ctx context.Context) error {
	return nil
}

// strictnessSignals shift the mock toward stricter (+) or looser (-)
// thresholds when the phrase appears anywhere in the prompt.
var strictnessSignals = []struct {
	phrase string
	delta  int
}{
	{"risk-averse", 1},
	{"Any DUI", 1},
	{"growth-minded", -1},
	{"Three or more DUI", -1},
}

type mockProfile struct {
	duiDeny           int
	atFaultDeny       int
	lapseDeny         int
	lapseAdjudicate   int
	creditAdjudicate  int
	youngViolations   int
	performanceReview bool
	recklessReview    bool
}

func profileFor(prompt string) mockProfile {
	strictness := 0
	for _, s := range strictnessSignals {
		if strings.Contains(prompt, s.phrase) {
			strictness += s.delta
		}
	}

	switch {
	case strictness > 0:
		return mockProfile{duiDeny: 1, atFaultDeny: 2, lapseDeny: 60, lapseAdjudicate: 0, creditAdjudicate: 650, youngViolations: 1, performanceReview: true, recklessReview: true}
	case strictness < 0:
		return mockProfile{duiDeny: 3, atFaultDeny: 4, lapseDeny: 180, lapseAdjudicate: 90, creditAdjudicate: 500, youngViolations: 3, performanceReview: false, recklessReview: false}
	default:
		return mockProfile{duiDeny: 2, atFaultDeny: 3, lapseDeny: 90, lapseAdjudicate: 30, creditAdjudicate: 600, youngViolations: 2, performanceReview: true, recklessReview: true}
	}
}

type applicantFacts struct {
	licenseStatus string
	age           int
	violations    map[string]int
	atFaultClaims int
	vehicles      []string
	creditScore   int
	lapseDays     int
	fraud         bool
}

var (
	itemAgoRe    = regexp.MustCompile(`^- ([A-Za-z0-9_]+).*\((\d+) years? ago\)$`)
	vehicleRe    = regexp.MustCompile(`^- \d{4} .*\(([a-z_]+)\)$`)
	leadingIntRe = regexp.MustCompile(`^-?\d+`)
)

var performanceCategories = map[string]bool{
	"sports_car":  true,
	"convertible": true,
	"performance": true,
	"supercar":    true,
	"racing":      true,
	"modified":    true,
}

// readApplicantFacts scans everything after the PRIMARY DRIVER heading.
// Rule text precedes that heading in every template and is ignored.
func readApplicantFacts(prompt string) applicantFacts {
	f := applicantFacts{violations: map[string]int{}, creditScore: -1}

	idx := strings.Index(prompt, "PRIMARY DRIVER:")
	if idx < 0 {
		return f
	}

	section := ""
	for _, line := range strings.Split(prompt[idx:], "\n") {
		line = strings.TrimSpace(line)
		switch {
		case strings.HasPrefix(line, "PRIMARY DRIVER:"):
			section = "driver"
		case strings.HasPrefix(line, "VIOLATIONS:"):
			section = "violations"
		case strings.HasPrefix(line, "CLAIMS HISTORY:"):
			section = "claims"
		case strings.HasPrefix(line, "ADDITIONAL DRIVERS:"):
			section = "additional"
		case strings.HasPrefix(line, "VEHICLES:"):
			section = "vehicles"
		case strings.HasPrefix(line, "CREDIT SCORE:"):
			f.creditScore = leadingInt(strings.TrimPrefix(line, "CREDIT SCORE:"), -1)
		case strings.HasPrefix(line, "COVERAGE LAPSE:"):
			f.lapseDays = leadingInt(strings.TrimPrefix(line, "COVERAGE LAPSE:"), 0)
		case strings.HasPrefix(line, "FRAUD HISTORY:"):
			f.fraud = strings.EqualFold(strings.TrimSpace(strings.TrimPrefix(line, "FRAUD HISTORY:")), "yes")
		case section == "driver" && strings.HasPrefix(line, "- License Status:"):
			f.licenseStatus = strings.TrimSpace(strings.TrimPrefix(line, "- License Status:"))
		case section == "driver" && strings.HasPrefix(line, "- Age:"):
			f.age = leadingInt(strings.TrimPrefix(line, "- Age:"), 0)
		case section == "violations":
			if m := itemAgoRe.FindStringSubmatch(line); m != nil && atoi(m[2]) < 7 {
				f.violations[m[1]]++
			}
		case section == "claims":
			if m := itemAgoRe.FindStringSubmatch(line); m != nil && strings.HasPrefix(m[1], "at_fault") && atoi(m[2]) < 5 {
				f.atFaultClaims++
			}
		case section == "vehicles":
			if m := vehicleRe.FindStringSubmatch(line); m != nil {
				f.vehicles = append(f.vehicles, m[1])
			}
		}
	}
	return f
}

func (p mockProfile) decide(f applicantFacts) string {
	var denyRules, reviewRules, risks []string

	if f.licenseStatus != "" && f.licenseStatus != "valid" {
		denyRules = append(denyRules, "Invalid License")
		risks = append(risks, "License "+f.licenseStatus)
	}
	if f.fraud {
		denyRules = append(denyRules, "Fraud History")
		risks = append(risks, "Prior fraud")
	}
	if dui := f.violations["DUI"]; dui >= p.duiDeny {
		denyRules = append(denyRules, "DUI Convictions")
		risks = append(risks, fmt.Sprintf("%d DUI convictions", dui))
	} else if dui > 0 {
		reviewRules = append(reviewRules, "DUI Conviction")
		risks = append(risks, "DUI conviction")
	}
	if f.atFaultClaims >= p.atFaultDeny {
		denyRules = append(denyRules, "Excessive At-Fault Claims")
		risks = append(risks, fmt.Sprintf("%d at-fault claims", f.atFaultClaims))
	} else if f.atFaultClaims >= p.atFaultDeny-1 && f.atFaultClaims > 0 {
		reviewRules = append(reviewRules, "Recent At-Fault Claims")
		risks = append(risks, "Recent at-fault claims")
	}
	if f.lapseDays > p.lapseDeny {
		denyRules = append(denyRules, "Extended Coverage Lapse")
		risks = append(risks, fmt.Sprintf("%d day coverage lapse", f.lapseDays))
	} else if f.lapseDays > p.lapseAdjudicate && f.lapseDays > 0 {
		reviewRules = append(reviewRules, "Coverage Lapse")
		risks = append(risks, fmt.Sprintf("%d day coverage lapse", f.lapseDays))
	}
	if p.recklessReview && f.violations["reckless_driving"] > 0 {
		reviewRules = append(reviewRules, "Reckless Driving")
		risks = append(risks, "Reckless driving conviction")
	}
	total := 0
	for _, n := range f.violations {
		total += n
	}
	if f.age > 0 && f.age < 25 && total >= p.youngViolations {
		reviewRules = append(reviewRules, "Young Driver With Violations")
		risks = append(risks, fmt.Sprintf("Driver age %d with %d violations", f.age, total))
	}
	if f.creditScore >= 0 && f.creditScore < p.creditAdjudicate {
		reviewRules = append(reviewRules, "Poor Credit")
		risks = append(risks, fmt.Sprintf("Credit score %d", f.creditScore))
	}
	if p.performanceReview {
		for _, v := range f.vehicles {
			if performanceCategories[v] {
				reviewRules = append(reviewRules, "High Performance Vehicle")
				risks = append(risks, "Vehicle category "+v)
				break
			}
		}
	}

	decision, reason, triggered := "ACCEPT", "Applicant meets acceptance criteria", []string{"Clean Record"}
	switch {
	case len(denyRules) > 0:
		decision, reason, triggered = "DENY", "Hard stop: "+denyRules[0], denyRules
	case len(reviewRules) > 0:
		decision, reason, triggered = "ADJUDICATE", "Manual review required: "+reviewRules[0], reviewRules
	}

	return fmt.Sprintf("Decision: %s\nPrimary Reason: %s\nTriggered Rules: %s\nRisk Factors: %s\n",
		decision, reason, joinOrNone(triggered), joinOrNone(risks))
}

func joinOrNone(items []string) string {
	if len(items) == 0 {
		return "None"
	}
	return strings.Join(items, ", ")
}

func leadingInt(s string, fallback int) int {
	m := leadingIntRe.FindString(strings.TrimSpace(s))
	if m == "" {
		return fallback
	}
	return atoi(m)
}

func atoi(s string) int {
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0
	}
	return n
}
