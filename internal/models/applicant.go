package models

import (
	"encoding/json"
	"fmt"
	"time"

	"gopkg.in/yaml.v3"
)

// DateLayout is the calendar date format used in applicant files.
const DateLayout = "2006-01-02"

// LicenseStatus is the state of a driver's license.
type LicenseStatus string

const (
	LicenseValid     LicenseStatus = "valid"
	LicenseSuspended LicenseStatus = "suspended"
	LicenseRevoked   LicenseStatus = "revoked"
	LicenseExpired   LicenseStatus = "expired"
	LicenseInvalid   LicenseStatus = "invalid"
)

// ViolationType identifies a moving or non-moving violation.
type ViolationType string

const (
	ViolationDUI               ViolationType = "DUI"
	ViolationRecklessDriving   ViolationType = "reckless_driving"
	ViolationHitAndRun         ViolationType = "hit_and_run"
	ViolationVehicularHomicide ViolationType = "vehicular_homicide"
	ViolationSpeeding15Over    ViolationType = "speeding_15_over"
	ViolationSpeeding10Under   ViolationType = "speeding_10_under"
	ViolationImproperPassing   ViolationType = "improper_passing"
	ViolationFollowingTooClose ViolationType = "following_too_close"
	ViolationImproperTurn      ViolationType = "improper_turn"
	ViolationParkingViolation  ViolationType = "parking_violation"
)

// ClaimType identifies fault attribution for a prior claim.
type ClaimType string

const (
	ClaimAtFault       ClaimType = "at_fault"
	ClaimNotAtFault    ClaimType = "not_at_fault"
	ClaimComprehensive ClaimType = "comprehensive"
)

// VehicleCategory classifies a vehicle for rating purposes.
type VehicleCategory string

const (
	VehicleSedan       VehicleCategory = "sedan"
	VehicleSUV         VehicleCategory = "suv"
	VehicleMinivan     VehicleCategory = "minivan"
	VehiclePickup      VehicleCategory = "pickup"
	VehicleSportsCar   VehicleCategory = "sports_car"
	VehicleConvertible VehicleCategory = "convertible"
	VehiclePerformance VehicleCategory = "performance"
	VehicleLuxurySedan VehicleCategory = "luxury_sedan"
	VehicleLuxurySUV   VehicleCategory = "luxury_suv"
	VehicleSupercar    VehicleCategory = "supercar"
	VehicleRacing      VehicleCategory = "racing"
	VehicleModified    VehicleCategory = "modified"
)

// Date is a calendar date without a time component. It marshals as
// YYYY-MM-DD in both JSON and YAML.
type Date struct {
	time.Time
}

// NewDate builds a Date in UTC.
func NewDate(year int, month time.Month, day int) Date {
	return Date{Time: time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// ParseDate parses a YYYY-MM-DD string.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return Date{}, fmt.Errorf("invalid date %q: %w", s, err)
	}
	return Date{Time: t}, nil
}

func (d Date) String() string {
	return d.Format(DateLayout)
}

func (d Date) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

func (d *Date) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := ParseDate(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

func (d Date) MarshalYAML() (any, error) {
	return d.String(), nil
}

func (d *Date) UnmarshalYAML(node *yaml.Node) error {
	parsed, err := ParseDate(node.Value)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// YearsSince returns the number of whole years between d and ref.
func (d Date) YearsSince(ref time.Time) int {
	years := ref.Year() - d.Year()
	if ref.Month() < d.Month() || (ref.Month() == d.Month() && ref.Day() < d.Day()) {
		years--
	}
	return years
}

// Violation is a single traffic violation on a driver's record.
type Violation struct {
	Type           ViolationType `json:"violation_type" yaml:"violation_type" validate:"required"`
	Date           Date          `json:"violation_date" yaml:"violation_date"`
	ConvictionDate *Date         `json:"conviction_date,omitempty" yaml:"conviction_date,omitempty"`
	Description    string        `json:"description,omitempty" yaml:"description,omitempty"`
}

// Claim is a prior insurance claim.
type Claim struct {
	Type        ClaimType `json:"claim_type" yaml:"claim_type" validate:"required,oneof=at_fault not_at_fault comprehensive"`
	Date        Date      `json:"claim_date" yaml:"claim_date"`
	Amount      float64   `json:"claim_amount" yaml:"claim_amount" validate:"gte=0"`
	Description string    `json:"description,omitempty" yaml:"description,omitempty"`
}

// Vehicle is a vehicle to be covered by the policy.
type Vehicle struct {
	VIN         string          `json:"vin" yaml:"vin" validate:"required"`
	Year        int             `json:"year" yaml:"year" validate:"gte=1900"`
	Make        string          `json:"make" yaml:"make" validate:"required"`
	Model       string          `json:"model" yaml:"model" validate:"required"`
	Category    VehicleCategory `json:"category" yaml:"category" validate:"required"`
	VehicleType VehicleCategory `json:"vehicle_type" yaml:"vehicle_type"`
	Value       float64         `json:"value,omitempty" yaml:"value,omitempty" validate:"gte=0"`
}

// Driver is a person listed on the application.
type Driver struct {
	DriverID              string        `json:"driver_id" yaml:"driver_id" validate:"required"`
	FirstName             string        `json:"first_name" yaml:"first_name" validate:"required"`
	LastName              string        `json:"last_name" yaml:"last_name" validate:"required"`
	DateOfBirth           Date          `json:"date_of_birth" yaml:"date_of_birth"`
	LicenseNumber         string        `json:"license_number" yaml:"license_number"`
	LicenseState          string        `json:"license_state" yaml:"license_state" validate:"required,len=2"`
	LicenseStatus         LicenseStatus `json:"license_status" yaml:"license_status" validate:"required,oneof=valid suspended revoked expired invalid"`
	LicenseIssueDate      Date          `json:"license_issue_date" yaml:"license_issue_date"`
	LicenseExpirationDate Date          `json:"license_expiration_date" yaml:"license_expiration_date"`
	Violations            []Violation   `json:"violations,omitempty" yaml:"violations,omitempty" validate:"dive"`
	Claims                []Claim       `json:"claims,omitempty" yaml:"claims,omitempty" validate:"dive"`
}

// AgeOn returns the driver's age in whole years on ref.
func (d *Driver) AgeOn(ref time.Time) int {
	return d.DateOfBirth.YearsSince(ref)
}

// YearsLicensedOn returns whole years since the license was issued.
func (d *Driver) YearsLicensedOn(ref time.Time) int {
	return d.LicenseIssueDate.YearsSince(ref)
}

// Applicant is one insurance application. Callers treat it as immutable
// once built; every engine receives the same pointer.
type Applicant struct {
	ApplicantID             string    `json:"applicant_id" yaml:"applicant_id" validate:"required"`
	PrimaryDriver           Driver    `json:"primary_driver" yaml:"primary_driver"`
	AdditionalDrivers       []Driver  `json:"additional_drivers,omitempty" yaml:"additional_drivers,omitempty" validate:"dive"`
	Vehicles                []Vehicle `json:"vehicles" yaml:"vehicles" validate:"dive"`
	CreditScore             *int      `json:"credit_score,omitempty" yaml:"credit_score,omitempty" validate:"omitempty,gte=300,lte=850"`
	PriorInsuranceLapseDays int       `json:"prior_insurance_lapse_days" yaml:"prior_insurance_lapse_days" validate:"gte=0"`
	FraudHistory            bool      `json:"fraud_history" yaml:"fraud_history"`
	Territory               string    `json:"territory" yaml:"territory" validate:"required"`
	CoverageRequested       []string  `json:"coverage_requested,omitempty" yaml:"coverage_requested,omitempty"`
}

// AllDrivers returns the primary driver followed by any additional drivers.
func (a *Applicant) AllDrivers() []Driver {
	return append([]Driver{a.PrimaryDriver}, a.AdditionalDrivers...)
}
