package reporting

import (
	"encoding/xml"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/jconnelly/underwriting-ai-agent-demos/internal/models"
	"github.com/jconnelly/underwriting-ai-agent-demos/internal/statistics"
)

// JUnit XML schema types

// JUnitTestSuites is the top-level container.
type JUnitTestSuites struct {
	XMLName    xml.Name         `xml:"testsuites"`
	Tests      int              `xml:"tests,attr"`
	Failures   int              `xml:"failures,attr"`
	Errors     int              `xml:"errors,attr"`
	Time       float64          `xml:"time,attr"`
	TestSuites []JUnitTestSuite `xml:"testsuite"`
}

// JUnitTestSuite maps to one comparison.
type JUnitTestSuite struct {
	XMLName    xml.Name        `xml:"testsuite"`
	Name       string          `xml:"name,attr"`
	Tests      int             `xml:"tests,attr"`
	Failures   int             `xml:"failures,attr"`
	Errors     int             `xml:"errors,attr"`
	Skipped    int             `xml:"skipped,attr"`
	Time       float64         `xml:"time,attr"`
	Timestamp  string          `xml:"timestamp,attr"`
	Properties []JUnitProperty `xml:"properties>property,omitempty"`
	TestCases  []JUnitTestCase `xml:"testcase"`
}

// JUnitTestCase maps to one statistical test or the risk assessment.
type JUnitTestCase struct {
	XMLName   xml.Name      `xml:"testcase"`
	Name      string        `xml:"name,attr"`
	Classname string        `xml:"classname,attr"`
	Time      float64       `xml:"time,attr"`
	Failure   *JUnitFailure `xml:"failure,omitempty"`
	Error     *JUnitError   `xml:"error,omitempty"`
	Skipped   *JUnitSkipped `xml:"skipped,omitempty"`
}

// JUnitFailure marks a significant difference or a high risk rating.
type JUnitFailure struct {
	Message string `xml:"message,attr"`
	Type    string `xml:"type,attr"`
	Body    string `xml:",chardata"`
}

// JUnitError represents an unexpected error during test execution.
type JUnitError struct {
	Message string `xml:"message,attr"`
	Type    string `xml:"type,attr"`
	Body    string `xml:",chardata"`
}

// JUnitSkipped marks a test that had too little data to run.
type JUnitSkipped struct {
	Message string `xml:"message,attr,omitempty"`
}

// JUnitProperty is a key-value metadata entry.
type JUnitProperty struct {
	Name  string `xml:"name,attr"`
	Value string `xml:"value,attr"`
}

// Test case names added to every comparison suite.
const (
	RiskAssessmentCase   = "Risk Assessment"
	EvaluationErrorsCase = "Evaluation Errors"
)

// ConvertToJUnit maps a report to JUnit XML so CI systems can flag
// comparisons where variant B behaves differently. Every comparison becomes
// a suite; significant tests and a High risk level are failures.
func ConvertToJUnit(r *Report) *JUnitTestSuites {
	out := &JUnitTestSuites{}
	timestamp := r.TestSuiteTimestamp.Format(time.RFC3339)

	for _, key := range r.Keys() {
		suite := convertComparison(key, r.TestResults[key])
		suite.Timestamp = timestamp

		out.Tests += suite.Tests
		out.Failures += suite.Failures
		out.Errors += suite.Errors
		out.Time += suite.Time
		out.TestSuites = append(out.TestSuites, suite)
	}
	return out
}

func convertComparison(key string, cr *ComparisonReport) JUnitTestSuite {
	suite := JUnitTestSuite{Name: key}
	if cr.Metrics != nil {
		// Mean time per applicant across both variants, in seconds.
		suite.Time = (cr.Metrics.Performance.AvgProcessingTimeA + cr.Metrics.Performance.AvgProcessingTimeB) / 1000
		suite.Properties = []JUnitProperty{
			{Name: "variant_a", Value: cr.Metrics.VariantAID},
			{Name: "variant_b", Value: cr.Metrics.VariantBID},
			{Name: "total_tests", Value: fmt.Sprintf("%d", cr.Metrics.TotalTests)},
			{Name: "agreement_rate", Value: fmt.Sprintf("%.4f", cr.Metrics.AgreementRate)},
		}
	}

	for _, t := range cr.StatisticalSignificance {
		tc := JUnitTestCase{Name: t.TestName, Classname: key}
		switch {
		case t.Interpretation == statistics.InsufficientData:
			tc.Skipped = &JUnitSkipped{Message: t.Interpretation}
			suite.Skipped++
		case t.IsSignificant:
			tc.Failure = &JUnitFailure{
				Message: fmt.Sprintf("%s: p=%.4f", t.TestName, t.PValue),
				Type:    "SignificantDifference",
				Body:    t.Interpretation,
			}
			suite.Failures++
		}
		suite.TestCases = append(suite.TestCases, tc)
	}

	if m := cr.Metrics; m != nil {
		tc := JUnitTestCase{Name: EvaluationErrorsCase, Classname: key}
		if m.Performance.ErrorRateA > 0 || m.Performance.ErrorRateB > 0 {
			tc.Error = &JUnitError{
				Message: fmt.Sprintf("error rate A=%.1f%% B=%.1f%%", m.Performance.ErrorRateA, m.Performance.ErrorRateB),
				Type:    "EvaluationError",
			}
			suite.Errors++
		}
		suite.TestCases = append(suite.TestCases, tc)
	}

	if bi := cr.BusinessImpact; bi != nil {
		tc := JUnitTestCase{Name: RiskAssessmentCase, Classname: key}
		if bi.RiskLevel == models.RiskHigh {
			tc.Failure = &JUnitFailure{
				Message: fmt.Sprintf("risk level %s", bi.RiskLevel),
				Type:    "HighRisk",
				Body:    strings.Join(bi.RiskFactors, "\n"),
			}
			suite.Failures++
		}
		suite.TestCases = append(suite.TestCases, tc)
	}

	suite.Tests = len(suite.TestCases)
	return suite
}

// WriteJUnitXML writes JUnit XML to the specified file path.
func WriteJUnitXML(r *Report, path string) error {
	suites := ConvertToJUnit(r)

	data, err := xml.MarshalIndent(suites, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling JUnit XML: %w", err)
	}

	output := append([]byte(xml.Header), data...)
	return os.WriteFile(path, output, 0644)
}
