package view

import (
	"github.com/david/fund-dashboard/internal/models"
)

// SortMode selects the ordering applied after filtering.
type SortMode string

const (
	SortRecent       SortMode = "recent"
	SortAlphabetical SortMode = "alphabetical"
	SortEligibility  SortMode = "eligibility"
)

// Config is the full filter/sort configuration for the results browser.
// It doubles as the persisted view-state payload, so every field carries a
// JSON tag and tolerates its zero value.
type Config struct {
	// Eligibility is the allow-set of eligibility labels. An empty set
	// means "no restriction", NOT "exclude everything" — this keeps a
	// cleared filter from hiding every row and must be preserved as-is.
	Eligibility    []string          `json:"eligibility"`
	SortMode       SortMode          `json:"sort_mode"`
	Search         string            `json:"search"`
	ColumnFilters  map[string]string `json:"column_filters"`
	FutureOnly     bool              `json:"future_only"`
	NonprofitsOnly bool              `json:"nonprofits_only"`
	MinFunding     string            `json:"min_funding"`
	FundingKeyword string            `json:"funding_keyword"`
	ShowEvidence   bool              `json:"show_evidence"`
	PinnedKey      string            `json:"pinned_key"`
	ExpandedKeys   []string          `json:"expanded_keys"`
}

// DefaultConfig selects every eligibility label and the recent sort.
func DefaultConfig() Config {
	elig := make([]string, len(models.EligibilityOrder))
	copy(elig, models.EligibilityOrder)
	return Config{
		Eligibility:   elig,
		SortMode:      SortRecent,
		ColumnFilters: map[string]string{},
	}
}

// columnFilter binds a named per-column filter to its candidate fields. A
// record passes when ANY bound field matches the filter's query.
type columnFilter struct {
	name   string
	fields []string
}

var columnFilters = []columnFilter{
	{"fund", []string{models.FieldFundName, models.FieldFundURL}},
	{"status", []string{models.FieldApplicationStatus}},
	{"deadline", []string{models.FieldDeadline}},
	{"range", []string{models.FieldFundingRange}},
	{"scope", []string{models.FieldGeographicScope}},
	{"applicants", []string{models.FieldApplicantTypes}},
	{"beneficiaries", []string{models.FieldBeneficiaryFocus}},
	{"notes", []string{models.FieldNotes, models.FieldRestrictions}},
}

// ColumnFilterNames lists the available per-column filter names in display
// order.
func ColumnFilterNames() []string {
	names := make([]string, len(columnFilters))
	for i, cf := range columnFilters {
		names[i] = cf.name
	}
	return names
}

// nonprofitKeywords identify applicant-type copy aimed at charitable
// organisations. Matched as case-insensitive substrings.
var nonprofitKeywords = []string{
	"nonprofit",
	"non-profit",
	"non profit",
	"charity",
	"charitable",
	"not-for-profit",
	"not for profit",
	"ngo",
}
