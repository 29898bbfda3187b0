package models

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// Record is one funding opportunity as returned by the extraction backend.
// The backend promises no schema: a field may hold a string, a number, a
// list of strings, or be absent entirely. Every accessor below defines its
// own absent-value behavior instead of leaning on zero-value coercion.
type Record map[string]any

// Canonical field names produced by the extraction pipeline.
const (
	FieldFundURL             = "fund_url"
	FieldFundName            = "fund_name"
	FieldApplicantTypes      = "applicant_types"
	FieldGeographicScope     = "geographic_scope"
	FieldBeneficiaryFocus    = "beneficiary_focus"
	FieldFundingRange        = "funding_range"
	FieldRestrictions        = "restrictions"
	FieldApplicationStatus   = "application_status"
	FieldDeadline            = "deadline"
	FieldNotes               = "notes"
	FieldEligibility         = "eligibility"
	FieldEvidence            = "evidence"
	FieldPagesScraped        = "pages_scraped"
	FieldVisitedURLsCount    = "visited_urls_count"
	FieldExtractionTimestamp = "extraction_timestamp"
	FieldError               = "error"
	FieldSourceFolder        = "source_folder"
)

// ExportColumns is the canonical column order for CSV export, matching the
// results file written by the backend.
var ExportColumns = []string{
	FieldFundURL,
	FieldFundName,
	FieldApplicantTypes,
	FieldGeographicScope,
	FieldBeneficiaryFocus,
	FieldFundingRange,
	FieldRestrictions,
	FieldApplicationStatus,
	FieldDeadline,
	FieldNotes,
	FieldEligibility,
	FieldEvidence,
	FieldPagesScraped,
	FieldVisitedURLsCount,
	FieldExtractionTimestamp,
	FieldError,
}

// EligibilityOrder is the fixed eligibility vocabulary, best match first.
var EligibilityOrder = []string{
	"Highly Eligible",
	"Eligible",
	"Possibly Eligible",
	"Low Match",
	"Not Eligible",
}

// EligibilityRank returns the position of v in EligibilityOrder. Unknown or
// missing values rank after every known label.
func EligibilityRank(v string) int {
	for i, label := range EligibilityOrder {
		if label == v {
			return i
		}
	}
	return len(EligibilityOrder)
}

// Text returns the record field stringified: strings as-is, numbers
// formatted, string arrays joined with ", ". Absent fields and nil values
// yield the empty string.
func (r Record) Text(field string) string {
	v, ok := r[field]
	if !ok || v == nil {
		return ""
	}
	return stringify(v)
}

func stringify(v any) string {
	switch val := v.(type) {
	case string:
		return val
	case float64:
		// JSON numbers decode as float64. Render integers without a
		// trailing ".0" so search and display match the source text.
		if val == float64(int64(val)) {
			return strconv.FormatInt(int64(val), 10)
		}
		return strconv.FormatFloat(val, 'f', -1, 64)
	case int:
		return strconv.Itoa(val)
	case bool:
		return strconv.FormatBool(val)
	case []string:
		return strings.Join(val, ", ")
	case []any:
		parts := make([]string, 0, len(val))
		for _, item := range val {
			parts = append(parts, stringify(item))
		}
		return strings.Join(parts, ", ")
	default:
		return fmt.Sprintf("%v", val)
	}
}

// Eligibility returns the record's eligibility label, or "" when absent.
// Callers deciding filter membership treat "" as outside the vocabulary.
func (r Record) Eligibility() string {
	return strings.TrimSpace(r.Text(FieldEligibility))
}

// SearchText returns the concatenation of every field's stringified value,
// lower-cased, for global free-text search. Field order is stable so the
// result is deterministic for identical records.
func (r Record) SearchText() string {
	keys := make([]string, 0, len(r))
	for k := range r {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	for _, k := range keys {
		b.WriteString(strings.ToLower(stringify(r[k])))
		b.WriteByte('\n')
	}
	return b.String()
}

// Key derives the row identity: the first non-empty of fund_url, fund_name,
// source_folder, extraction_timestamp, else a positional fallback. The key
// is stable across re-renders but NOT guaranteed globally unique — two
// records sharing all four fields collide. That is an accepted limitation;
// callers wanting strict uniqueness should assign synthetic ids at ingestion
// (see AssignSyntheticKeys).
func (r Record) Key(position int) string {
	for _, field := range []string{FieldFundURL, FieldFundName, FieldSourceFolder, FieldExtractionTimestamp} {
		if v := strings.TrimSpace(r.Text(field)); v != "" {
			return v
		}
	}
	return "row-" + strconv.Itoa(position)
}

// Keys returns the derived key for every record in order.
func Keys(records []Record) []string {
	out := make([]string, len(records))
	for i, r := range records {
		out[i] = r.Key(i)
	}
	return out
}
