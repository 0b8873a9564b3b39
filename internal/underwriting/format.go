package underwriting

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/jconnelly/underwriting-ai-agent-demos/internal/models"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var amountPrinter = message.NewPrinter(language.English)

// FormatApplicant renders an applicant as the plain text given to the
// collaborator. Ages and "years ago" figures are computed against ref, so
// the output is stable for a fixed reference time.
func FormatApplicant(a *models.Applicant, ref time.Time) string {
	var sb strings.Builder

	sb.WriteString("PRIMARY DRIVER:\n")
	writeDriver(&sb, &a.PrimaryDriver, ref)
	writeRecord(&sb, &a.PrimaryDriver, ref)

	if len(a.AdditionalDrivers) > 0 {
		sb.WriteString("ADDITIONAL DRIVERS:\n")
		for i := range a.AdditionalDrivers {
			d := &a.AdditionalDrivers[i]
			fmt.Fprintf(&sb, "- %s %s, age %d, license %s, %d violations, %d claims\n",
				d.FirstName, d.LastName, d.AgeOn(ref), d.LicenseStatus, len(d.Violations), len(d.Claims))
		}
	}

	sb.WriteString("VEHICLES:\n")
	for _, v := range a.Vehicles {
		kind := v.VehicleType
		if kind == "" {
			kind = v.Category
		}
		fmt.Fprintf(&sb, "- %d %s %s (%s)\n", v.Year, v.Make, v.Model, kind)
	}

	if a.CreditScore != nil {
		fmt.Fprintf(&sb, "CREDIT SCORE: %d\n", *a.CreditScore)
	} else {
		sb.WriteString("CREDIT SCORE: Not provided\n")
	}
	fmt.Fprintf(&sb, "COVERAGE LAPSE: %d days\n", a.PriorInsuranceLapseDays)
	fmt.Fprintf(&sb, "FRAUD HISTORY: %s\n", yesNo(a.FraudHistory))
	fmt.Fprintf(&sb, "TERRITORY: %s\n", a.Territory)
	fmt.Fprintf(&sb, "REQUESTED COVERAGE: %s\n", strings.Join(a.CoverageRequested, ", "))

	return sb.String()
}

func writeDriver(sb *strings.Builder, d *models.Driver, ref time.Time) {
	fmt.Fprintf(sb, "- Name: %s %s\n", d.FirstName, d.LastName)
	fmt.Fprintf(sb, "- Age: %d\n", d.AgeOn(ref))
	fmt.Fprintf(sb, "- License Status: %s\n", d.LicenseStatus)
	fmt.Fprintf(sb, "- License State: %s\n", d.LicenseState)
	fmt.Fprintf(sb, "- Years Licensed: %d\n", d.YearsLicensedOn(ref))
}

func writeRecord(sb *strings.Builder, d *models.Driver, ref time.Time) {
	if len(d.Violations) == 0 {
		sb.WriteString("VIOLATIONS: None\n")
	} else {
		sb.WriteString("VIOLATIONS:\n")
		for _, v := range d.Violations {
			fmt.Fprintf(sb, "- %s (%s)\n", v.Type, yearsAgo(v.Date, ref))
		}
	}

	if len(d.Claims) == 0 {
		sb.WriteString("CLAIMS HISTORY: None\n")
	} else {
		sb.WriteString("CLAIMS HISTORY:\n")
		for _, c := range d.Claims {
			fmt.Fprintf(sb, "- %s: $%s (%s)\n", c.Type, formatAmount(c.Amount), yearsAgo(c.Date, ref))
		}
	}
}

// formatAmount groups thousands and keeps cents when there are any.
func formatAmount(amount float64) string {
	if amount == math.Trunc(amount) {
		return amountPrinter.Sprintf("%.0f", amount)
	}
	return amountPrinter.Sprintf("%.2f", amount)
}

func yearsAgo(d models.Date, ref time.Time) string {
	n := max(d.YearsSince(ref), 0)
	if n == 1 {
		return "1 year ago"
	}
	return fmt.Sprintf("%d years ago", n)
}

func yesNo(b bool) string {
	if b {
		return "Yes"
	}
	return "No"
}
