package main

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/david/fund-dashboard/internal/mockapi"
	"github.com/david/fund-dashboard/internal/models"
)

func main() {
	port := os.Getenv("PORT")
	if port == "" {
		port = "8000"
	}

	srv := mockapi.NewServer()
	if v := os.Getenv("SCRAPE_DELAY_SECONDS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			srv.ScrapeDelay = time.Duration(n) * time.Second
		}
	}
	srv.Seed(fixtures())

	log.Printf("Mock backend starting on port %s...", port)
	if err := srv.Start(port); err != nil {
		log.Fatal(err)
	}
}

func fixtures() []models.Record {
	return []models.Record{
		{
			models.FieldFundURL:             "https://www.examplefoundation.org.uk/grants",
			models.FieldFundName:            "Example Foundation Community Grants",
			models.FieldApplicantTypes:      "Registered charity organisations; CICs",
			models.FieldGeographicScope:     "England and Wales",
			models.FieldBeneficiaryFocus:    []string{"hospices", "end of life care"},
			models.FieldFundingRange:        "£10,000 - £50,000",
			models.FieldApplicationStatus:   "open",
			models.FieldDeadline:            "2026-11-30",
			models.FieldEligibility:         "Highly Eligible",
			models.FieldNotes:               "Priority given to palliative care services.",
			models.FieldEvidence:            "Eligibility page lists registered charities providing hospice care.",
			models.FieldExtractionTimestamp: "2026-08-01 09:15:00",
		},
		{
			models.FieldFundURL:             "https://trust.example.com/funding",
			models.FieldFundName:            "Community Health Trust",
			models.FieldApplicantTypes:      "Nonprofit organisations; community groups",
			models.FieldGeographicScope:     "UK wide",
			models.FieldFundingRange:        "up to 25k",
			models.FieldApplicationStatus:   "open",
			models.FieldDeadline:            "rolling",
			models.FieldEligibility:         "Eligible",
			models.FieldNotes:               "Rolling programme, decisions quarterly.",
			models.FieldExtractionTimestamp: "2026-07-15 14:02:11",
		},
		{
			models.FieldFundURL:             "https://legacy.example.net/apply",
			models.FieldFundName:            "Legacy Benevolent Fund",
			models.FieldApplicantTypes:      "Individuals",
			models.FieldGeographicScope:     "Scotland",
			models.FieldFundingRange:        "£500 - £2,000",
			models.FieldApplicationStatus:   "closed",
			models.FieldDeadline:            "2025-03-31",
			models.FieldEligibility:         "Not Eligible",
			models.FieldNotes:               "Individual hardship grants only.",
			models.FieldExtractionTimestamp: "2026-06-02 10:00:00",
		},
	}
}
