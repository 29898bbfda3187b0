package view

import (
	"sort"
	"strings"
	"time"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/david/fund-dashboard/internal/models"
)

// Apply maps the raw record set and a filter/sort configuration to the
// ordered, filtered view. It is pure: the input slice is never mutated and
// identical inputs always produce the identical ordered output.
func Apply(records []models.Record, cfg Config, now time.Time) []models.Record {
	minFunding, minActive := ParseAmount(cfg.MinFunding)
	search := strings.ToLower(strings.TrimSpace(cfg.Search))
	fundingKeyword := strings.ToLower(strings.TrimSpace(cfg.FundingKeyword))

	filtered := make([]models.Record, 0, len(records))
	for _, r := range records {
		if !eligibilityAllowed(r, cfg.Eligibility) {
			continue
		}
		if search != "" && !strings.Contains(r.SearchText(), search) {
			continue
		}
		if !passesColumnFilters(r, cfg.ColumnFilters) {
			continue
		}
		if cfg.FutureOnly && !DeadlineOpen(r.Text(models.FieldDeadline), now) {
			continue
		}
		if cfg.NonprofitsOnly && !nonprofitApplicants(r.Text(models.FieldApplicantTypes)) {
			continue
		}
		if minActive {
			max, ok := MaxAmount(r.Text(models.FieldFundingRange))
			if !ok || max < minFunding {
				continue
			}
		}
		if fundingKeyword != "" && !fundingTextContains(r, fundingKeyword) {
			continue
		}
		filtered = append(filtered, r)
	}

	sortRecords(filtered, cfg.SortMode)
	return filtered
}

// eligibilityAllowed keeps a record when its eligibility label is in the
// allow-set, or when the set is empty (empty means "no restriction").
func eligibilityAllowed(r models.Record, allowed []string) bool {
	if len(allowed) == 0 {
		return true
	}
	elig := r.Eligibility()
	for _, label := range allowed {
		if label == elig {
			return true
		}
	}
	return false
}

// passesColumnFilters applies every configured (non-empty) column filter:
// AND across filters, OR across each filter's bound fields.
func passesColumnFilters(r models.Record, queries map[string]string) bool {
	if len(queries) == 0 {
		return true
	}
	for _, cf := range columnFilters {
		query := strings.ToLower(strings.TrimSpace(queries[cf.name]))
		if query == "" {
			continue
		}
		matched := false
		for _, field := range cf.fields {
			if strings.Contains(strings.ToLower(r.Text(field)), query) {
				matched = true
				break
			}
		}
		if !matched {
			return false
		}
	}
	return true
}

func nonprofitApplicants(applicantTypes string) bool {
	lower := strings.ToLower(applicantTypes)
	for _, kw := range nonprofitKeywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}

func fundingTextContains(r models.Record, keyword string) bool {
	blob := strings.ToLower(strings.Join([]string{
		r.Text(models.FieldFundingRange),
		r.Text(models.FieldNotes),
		r.Text(models.FieldRestrictions),
	}, " "))
	return strings.Contains(blob, keyword)
}

func sortRecords(records []models.Record, mode SortMode) {
	switch mode {
	case SortAlphabetical:
		// Collators carry internal buffers, so build one per call rather
		// than sharing package state.
		c := collate.New(language.English, collate.IgnoreCase)
		sort.SliceStable(records, func(i, j int) bool {
			return c.CompareString(displayName(records[i]), displayName(records[j])) < 0
		})
	case SortEligibility:
		sort.SliceStable(records, func(i, j int) bool {
			return models.EligibilityRank(records[i].Eligibility()) < models.EligibilityRank(records[j].Eligibility())
		})
	default: // SortRecent
		sort.SliceStable(records, func(i, j int) bool {
			return sortTimestamp(records[i]).After(sortTimestamp(records[j]))
		})
	}
}

func displayName(r models.Record) string {
	if name := r.Text(models.FieldFundName); name != "" {
		return name
	}
	return r.Text(models.FieldFundURL)
}

// sortTimestamp derives the "recent" ordering key: the extraction timestamp
// when parseable, else the deadline, else the epoch.
func sortTimestamp(r models.Record) time.Time {
	if t, ok := ParseDeadline(r.Text(models.FieldExtractionTimestamp)); ok {
		return t
	}
	if t, ok := ParseDeadline(r.Text(models.FieldDeadline)); ok {
		return t
	}
	return time.Unix(0, 0).UTC()
}

// EligibilityTally counts filtered records per eligibility label, for the
// metrics strip above the results table.
func EligibilityTally(records []models.Record) map[string]int {
	tally := make(map[string]int, len(models.EligibilityOrder))
	for _, r := range records {
		tally[r.Eligibility()]++
	}
	return tally
}
