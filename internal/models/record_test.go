package models

import (
	"strings"
	"testing"
)

func TestText(t *testing.T) {
	tests := []struct {
		name   string
		record Record
		field  string
		want   string
	}{
		{"string as-is", Record{"fund_name": "Example Fund"}, "fund_name", "Example Fund"},
		{"integral float without decimal", Record{"pages_scraped": float64(7)}, "pages_scraped", "7"},
		{"fractional float", Record{"score": 0.85}, "score", "0.85"},
		{"string list joined", Record{"beneficiary_focus": []any{"hospices", "families"}}, "beneficiary_focus", "hospices, families"},
		{"absent field", Record{}, "notes", ""},
		{"nil value", Record{"notes": nil}, "notes", ""},
		{"bool", Record{"flag": true}, "flag", "true"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.record.Text(tt.field); got != tt.want {
				t.Fatalf("Text(%q) = %q, want %q", tt.field, got, tt.want)
			}
		})
	}
}

func TestKeyFallbackChain(t *testing.T) {
	tests := []struct {
		name   string
		record Record
		want   string
	}{
		{"fund_url wins", Record{FieldFundURL: "https://a.org", FieldFundName: "A"}, "https://a.org"},
		{"fund_name next", Record{FieldFundName: "A", FieldSourceFolder: "run1"}, "A"},
		{"source_folder next", Record{FieldSourceFolder: "run1", FieldExtractionTimestamp: "2026-01-01"}, "run1"},
		{"timestamp next", Record{FieldExtractionTimestamp: "2026-01-01"}, "2026-01-01"},
		{"positional fallback", Record{}, "row-3"},
		{"whitespace treated as empty", Record{FieldFundURL: "  "}, "row-3"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.record.Key(3); got != tt.want {
				t.Fatalf("Key(3) = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestEligibilityRank(t *testing.T) {
	if EligibilityRank("Highly Eligible") != 0 {
		t.Fatal("best label should rank first")
	}
	if EligibilityRank("Not Eligible") != 4 {
		t.Fatal("worst label should rank last among known")
	}
	if EligibilityRank("Unknown Thing") != len(EligibilityOrder) {
		t.Fatal("unknown labels should rank after every known label")
	}
	if EligibilityRank("") != len(EligibilityOrder) {
		t.Fatal("missing label should rank after every known label")
	}
}

func TestSearchTextLowercasesEveryField(t *testing.T) {
	r := Record{
		FieldFundName: "Example FOUNDATION",
		FieldNotes:    "Priority for Hospices",
	}
	text := r.SearchText()
	if !strings.Contains(text, "example foundation") {
		t.Fatalf("expected lower-cased name in %q", text)
	}
	if !strings.Contains(text, "priority for hospices") {
		t.Fatalf("expected lower-cased notes in %q", text)
	}
	if strings.Contains(text, "FOUNDATION") {
		t.Fatal("search text must not retain original casing")
	}
}

func TestKeysUsesPosition(t *testing.T) {
	records := []Record{
		{FieldFundURL: "https://a.org"},
		{},
		{FieldFundName: "B"},
	}
	got := Keys(records)
	want := []string{"https://a.org", "row-1", "B"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("Keys()[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}
