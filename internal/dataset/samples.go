package dataset

import (
	"time"

	"github.com/jconnelly/underwriting-ai-agent-demos/internal/models"
)

// SampleApplicants returns six built-in applicants covering the three
// decisions: APP001 and APP002 are clean enough to accept, APP003 and APP004
// hit hard stops, APP005 and APP006 need manual review. Each call returns
// fresh values.
func SampleApplicants() []*models.Applicant {
	return []*models.Applicant{
		{
			ApplicantID: "APP001",
			PrimaryDriver: models.Driver{
				DriverID:              "DRV001",
				FirstName:             "Sarah",
				LastName:              "Johnson",
				DateOfBirth:           models.NewDate(1985, time.March, 15),
				LicenseNumber:         "D123456789",
				LicenseState:          "CA",
				LicenseStatus:         models.LicenseValid,
				LicenseIssueDate:      models.NewDate(2003, time.March, 15),
				LicenseExpirationDate: models.NewDate(2027, time.March, 15),
			},
			Vehicles: []models.Vehicle{{
				VIN: "1HGBH41JXMN109186", Year: 2020, Make: "Honda", Model: "Accord",
				Category: models.VehicleSedan, VehicleType: models.VehicleSedan, Value: 25000,
			}},
			CreditScore:       intPtr(750),
			Territory:         "Urban",
			CoverageRequested: standardCoverage(),
		},
		{
			ApplicantID: "APP002",
			PrimaryDriver: models.Driver{
				DriverID:              "DRV002",
				FirstName:             "Michael",
				LastName:              "Chen",
				DateOfBirth:           models.NewDate(1978, time.August, 22),
				LicenseNumber:         "D987654321",
				LicenseState:          "TX",
				LicenseStatus:         models.LicenseValid,
				LicenseIssueDate:      models.NewDate(1996, time.August, 22),
				LicenseExpirationDate: models.NewDate(2026, time.August, 22),
				Violations: []models.Violation{{
					Type: models.ViolationSpeeding10Under, Date: models.NewDate(2021, time.June, 10),
					Description: "Speeding 8 mph over limit",
				}},
				Claims: []models.Claim{{
					Type: models.ClaimNotAtFault, Date: models.NewDate(2020, time.November, 5), Amount: 3500,
					Description: "Rear-ended at stop light",
				}},
			},
			Vehicles: []models.Vehicle{{
				VIN: "5NPE34AF4HH012345", Year: 2019, Make: "Hyundai", Model: "Elantra",
				Category: models.VehicleSedan, VehicleType: models.VehicleSedan, Value: 18000,
			}},
			CreditScore:             intPtr(680),
			PriorInsuranceLapseDays: 15,
			Territory:               "Urban",
			CoverageRequested:       standardCoverage(),
		},
		{
			ApplicantID: "APP003",
			PrimaryDriver: models.Driver{
				DriverID:              "DRV003",
				FirstName:             "Robert",
				LastName:              "Williams",
				DateOfBirth:           models.NewDate(1990, time.December, 3),
				LicenseNumber:         "D555666777",
				LicenseState:          "FL",
				LicenseStatus:         models.LicenseValid,
				LicenseIssueDate:      models.NewDate(2008, time.December, 3),
				LicenseExpirationDate: models.NewDate(2026, time.December, 3),
				Violations: []models.Violation{
					{
						Type: models.ViolationDUI, Date: models.NewDate(2022, time.April, 18),
						ConvictionDate: datePtr(2022, time.August, 15), Description: "DUI conviction",
					},
					{
						Type: models.ViolationDUI, Date: models.NewDate(2020, time.September, 22),
						ConvictionDate: datePtr(2021, time.January, 10), Description: "DUI conviction",
					},
				},
				Claims: []models.Claim{{
					Type: models.ClaimAtFault, Date: models.NewDate(2022, time.April, 18), Amount: 15000,
					Description: "Single vehicle accident while impaired",
				}},
			},
			Vehicles: []models.Vehicle{{
				VIN: "1G1ZT53806F123456", Year: 2018, Make: "Chevrolet", Model: "Malibu",
				Category: models.VehicleSedan, VehicleType: models.VehicleSedan, Value: 16000,
			}},
			CreditScore:             intPtr(520),
			PriorInsuranceLapseDays: 45,
			Territory:               "Urban",
			CoverageRequested:       standardCoverage(),
		},
		{
			ApplicantID: "APP004",
			PrimaryDriver: models.Driver{
				DriverID:              "DRV004",
				FirstName:             "Jennifer",
				LastName:              "Davis",
				DateOfBirth:           models.NewDate(1995, time.May, 8),
				LicenseNumber:         "D111222333",
				LicenseState:          "NY",
				LicenseStatus:         models.LicenseValid,
				LicenseIssueDate:      models.NewDate(2013, time.May, 8),
				LicenseExpirationDate: models.NewDate(2027, time.May, 8),
				Violations: []models.Violation{{
					Type: models.ViolationSpeeding15Over, Date: models.NewDate(2023, time.February, 14),
					Description: "Speeding 18 mph over limit",
				}},
				Claims: []models.Claim{
					{Type: models.ClaimAtFault, Date: models.NewDate(2022, time.July, 30), Amount: 8500, Description: "Rear-end collision"},
					{Type: models.ClaimAtFault, Date: models.NewDate(2021, time.November, 12), Amount: 12000, Description: "Intersection accident"},
					{Type: models.ClaimAtFault, Date: models.NewDate(2020, time.March, 25), Amount: 6500, Description: "Parking lot collision"},
				},
			},
			Vehicles: []models.Vehicle{{
				VIN: "WBAVA37598NJ12345", Year: 2017, Make: "BMW", Model: "328i",
				Category: models.VehicleLuxurySedan, VehicleType: models.VehicleSedan, Value: 28000,
			}},
			CreditScore:             intPtr(580),
			PriorInsuranceLapseDays: 120,
			Territory:               "Urban",
			CoverageRequested:       standardCoverage(),
		},
		{
			ApplicantID: "APP005",
			PrimaryDriver: models.Driver{
				DriverID:              "DRV005",
				FirstName:             "Tyler",
				LastName:              "Martinez",
				DateOfBirth:           models.NewDate(2003, time.September, 12),
				LicenseNumber:         "D444555666",
				LicenseState:          "AZ",
				LicenseStatus:         models.LicenseValid,
				LicenseIssueDate:      models.NewDate(2021, time.September, 12),
				LicenseExpirationDate: models.NewDate(2029, time.September, 12),
				Violations: []models.Violation{
					{Type: models.ViolationSpeeding15Over, Date: models.NewDate(2023, time.August, 5), Description: "Speeding 16 mph over limit"},
					{Type: models.ViolationImproperPassing, Date: models.NewDate(2023, time.March, 18), Description: "Improper passing on highway"},
				},
			},
			Vehicles: []models.Vehicle{{
				VIN: "JH4KA8260MC123456", Year: 2015, Make: "Acura", Model: "TLX",
				Category: models.VehicleSportsCar, VehicleType: models.VehicleSportsCar, Value: 22000,
			}},
			CreditScore:       intPtr(620),
			Territory:         "Urban",
			CoverageRequested: standardCoverage(),
		},
		{
			ApplicantID: "APP006",
			PrimaryDriver: models.Driver{
				DriverID:              "DRV006",
				FirstName:             "Amanda",
				LastName:              "Thompson",
				DateOfBirth:           models.NewDate(1988, time.November, 30),
				LicenseNumber:         "D777888999",
				LicenseState:          "WA",
				LicenseStatus:         models.LicenseValid,
				LicenseIssueDate:      models.NewDate(2006, time.November, 30),
				LicenseExpirationDate: models.NewDate(2026, time.November, 30),
				Violations: []models.Violation{{
					Type: models.ViolationRecklessDriving, Date: models.NewDate(2023, time.January, 22),
					ConvictionDate: datePtr(2023, time.May, 10), Description: "Reckless driving conviction",
				}},
				Claims: []models.Claim{{
					Type: models.ClaimAtFault, Date: models.NewDate(2023, time.January, 22), Amount: 18000,
					Description: "Multi-vehicle accident",
				}},
			},
			Vehicles: []models.Vehicle{{
				VIN: "1FTFW1ET5DFC12345", Year: 2021, Make: "Ford", Model: "F-150",
				Category: models.VehiclePickup, VehicleType: models.VehiclePickup, Value: 35000,
			}},
			CreditScore:       intPtr(710),
			Territory:         "Urban",
			CoverageRequested: standardCoverage(),
		},
	}
}

func standardCoverage() []string {
	return []string{"Liability", "Collision", "Comprehensive"}
}

func intPtr(v int) *int {
	return &v
}

func datePtr(year int, month time.Month, day int) *models.Date {
	d := models.NewDate(year, month, day)
	return &d
}
