package dataset

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/jconnelly/underwriting-ai-agent-demos/internal/models"
)

// Row represents a single CSV row with column name to value mapping.
type Row map[string]string

// LoadCSV reads a CSV file and returns rows as maps of column to value.
// The first row is treated as headers (column names).
func LoadCSV(path string) ([]Row, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("csv: open %s: %w", path, err)
	}
	defer f.Close() //nolint:errcheck

	reader := csv.NewReader(f)
	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("csv: parse %s: %w", path, err)
	}

	if len(records) == 0 {
		return nil, fmt.Errorf("csv: %s is empty (no header row)", path)
	}

	headers := records[0]
	rows := make([]Row, 0, len(records)-1)

	for i, record := range records[1:] {
		if len(record) != len(headers) {
			return nil, fmt.Errorf("csv: row %d has %d columns, expected %d", i+2, len(record), len(headers))
		}
		row := make(Row, len(headers))
		for j, h := range headers {
			row[h] = strings.TrimSpace(record[j])
		}
		rows = append(rows, row)
	}

	return rows, nil
}

// loadApplicantsCSV reads one applicant per row with a single primary driver
// and a single vehicle. Violations and claims are packed into one column
// each, entries separated by ';' and fields by '@':
//
//	violations: DUI@2022-04-18;speeding_15_over@2023-02-14
//	claims:     at_fault@2022-04-18@15000
func loadApplicantsCSV(path string) ([]*models.Applicant, error) {
	rows, err := LoadCSV(path)
	if err != nil {
		return nil, err
	}

	applicants := make([]*models.Applicant, 0, len(rows))
	for i, row := range rows {
		a, err := applicantFromRow(row)
		if err != nil {
			return nil, fmt.Errorf("csv: %s row %d: %w", path, i+2, err)
		}
		applicants = append(applicants, a)
	}
	return applicants, nil
}

func applicantFromRow(row Row) (*models.Applicant, error) {
	var p rowParser

	id := row["applicant_id"]
	driverID := row["driver_id"]
	if driverID == "" {
		driverID = id + "-D1"
	}

	a := &models.Applicant{
		ApplicantID: id,
		PrimaryDriver: models.Driver{
			DriverID:              driverID,
			FirstName:             row["first_name"],
			LastName:              row["last_name"],
			DateOfBirth:           p.date(row, "date_of_birth"),
			LicenseNumber:         row["license_number"],
			LicenseState:          row["license_state"],
			LicenseStatus:         models.LicenseStatus(row["license_status"]),
			LicenseIssueDate:      p.date(row, "license_issue_date"),
			LicenseExpirationDate: p.optionalDate(row, "license_expiration_date"),
			Violations:            p.violations(row["violations"]),
			Claims:                p.claims(row["claims"]),
		},
		PriorInsuranceLapseDays: p.int(row, "prior_insurance_lapse_days", 0),
		FraudHistory:            p.bool(row, "fraud_history"),
		Territory:               row["territory"],
		CoverageRequested:       splitPacked(row["coverage_requested"]),
	}

	if row["vehicle_make"] != "" {
		category := models.VehicleCategory(row["vehicle_category"])
		a.Vehicles = []models.Vehicle{{
			VIN:         row["vehicle_vin"],
			Year:        p.int(row, "vehicle_year", 0),
			Make:        row["vehicle_make"],
			Model:       row["vehicle_model"],
			Category:    category,
			VehicleType: category,
		}}
	}

	if row["credit_score"] != "" {
		score := p.int(row, "credit_score", 0)
		a.CreditScore = &score
	}

	if p.err != nil {
		return nil, p.err
	}
	return a, nil
}

// rowParser keeps the first conversion error so a row can be read field by
// field without checking every call.
type rowParser struct {
	err error
}

func (p *rowParser) fail(err error) {
	if p.err == nil {
		p.err = err
	}
}

func (p *rowParser) date(row Row, col string) models.Date {
	d, err := models.ParseDate(row[col])
	if err != nil {
		p.fail(fmt.Errorf("%s: %w", col, err))
	}
	return d
}

func (p *rowParser) optionalDate(row Row, col string) models.Date {
	if row[col] == "" {
		return models.Date{}
	}
	return p.date(row, col)
}

func (p *rowParser) int(row Row, col string, fallback int) int {
	if row[col] == "" {
		return fallback
	}
	n, err := strconv.Atoi(row[col])
	if err != nil {
		p.fail(fmt.Errorf("%s: %w", col, err))
	}
	return n
}

func (p *rowParser) bool(row Row, col string) bool {
	if row[col] == "" {
		return false
	}
	b, err := strconv.ParseBool(row[col])
	if err != nil {
		p.fail(fmt.Errorf("%s: %w", col, err))
	}
	return b
}

func (p *rowParser) violations(s string) []models.Violation {
	var out []models.Violation
	for _, entry := range splitPacked(s) {
		kind, date, ok := strings.Cut(entry, "@")
		if !ok {
			p.fail(fmt.Errorf("violation %q: want type@date", entry))
			continue
		}
		d, err := models.ParseDate(date)
		if err != nil {
			p.fail(fmt.Errorf("violation %q: %w", entry, err))
		}
		out = append(out, models.Violation{Type: models.ViolationType(kind), Date: d})
	}
	return out
}

func (p *rowParser) claims(s string) []models.Claim {
	var out []models.Claim
	for _, entry := range splitPacked(s) {
		fields := strings.Split(entry, "@")
		if len(fields) != 3 {
			p.fail(fmt.Errorf("claim %q: want type@date@amount", entry))
			continue
		}
		d, err := models.ParseDate(fields[1])
		if err != nil {
			p.fail(fmt.Errorf("claim %q: %w", entry, err))
		}
		amount, err := strconv.ParseFloat(fields[2], 64)
		if err != nil {
			p.fail(fmt.Errorf("claim %q: %w", entry, err))
		}
		out = append(out, models.Claim{Type: models.ClaimType(fields[0]), Date: d, Amount: amount})
	}
	return out
}

func splitPacked(s string) []string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	parts := strings.Split(s, ";")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
