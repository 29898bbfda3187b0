package render

import (
	"bytes"
	"encoding/csv"
	"strings"
	"testing"

	"github.com/david/fund-dashboard/internal/browse"
	"github.com/david/fund-dashboard/internal/client"
	"github.com/david/fund-dashboard/internal/models"
)

func exportRecords() []models.Record {
	return []models.Record{
		{
			models.FieldFundURL:          "https://a.org",
			models.FieldFundName:         "Alpha, Foundation",
			models.FieldEligibility:      "Eligible",
			models.FieldBeneficiaryFocus: []any{"hospices", "families"},
		},
		{
			models.FieldFundURL:  "https://b.org",
			models.FieldFundName: "Beta Trust",
		},
	}
}

func TestExportCSV(t *testing.T) {
	var buf bytes.Buffer
	if err := ExportCSV(&buf, exportRecords()); err != nil {
		t.Fatal(err)
	}

	rows, err := csv.NewReader(&buf).ReadAll()
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 3 {
		t.Fatalf("expected header plus 2 rows, got %d", len(rows))
	}
	if len(rows[0]) != len(models.ExportColumns) || rows[0][0] != models.FieldFundURL {
		t.Fatalf("header = %v", rows[0])
	}
	if rows[1][1] != "Alpha, Foundation" {
		t.Fatalf("comma in value must survive quoting, got %q", rows[1][1])
	}
	if rows[1][4] != "hospices, families" {
		t.Fatalf("list field should be joined, got %q", rows[1][4])
	}
}

func TestResultsMarksSelectionAndPin(t *testing.T) {
	sel := browse.NewSelection()
	sel.Selected = "https://a.org"
	sel.TogglePin("https://a.org")

	var buf bytes.Buffer
	Results(&buf, exportRecords(), sel, false)

	out := buf.String()
	if !strings.Contains(out, "Alpha, Foundation") || !strings.Contains(out, "Beta Trust") {
		t.Fatalf("table missing rows:\n%s", out)
	}
	if !strings.Contains(out, ">*") {
		t.Fatalf("selected pinned row should be marked:\n%s", out)
	}
	// The pinned row is expanded, so its detail block follows the table.
	if !strings.Contains(out, models.FieldEligibility+":") {
		t.Fatalf("expanded detail missing:\n%s", out)
	}
}

func TestDetailHidesEvidenceUnlessToggled(t *testing.T) {
	r := models.Record{
		models.FieldFundName: "Alpha",
		models.FieldEvidence: "quoted source text",
	}

	var hidden, shown bytes.Buffer
	Detail(&hidden, r, false)
	Detail(&shown, r, true)

	if strings.Contains(hidden.String(), "quoted source text") {
		t.Fatal("evidence must stay hidden by default")
	}
	if !strings.Contains(shown.String(), "quoted source text") {
		t.Fatal("evidence should appear when toggled on")
	}
}

func TestClip(t *testing.T) {
	tests := []struct {
		name string
		in   string
		max  int
		want string
	}{
		{"short passes through", "abc", 10, "abc"},
		{"long gets ellipsis", "abcdefghij", 6, "abc..."},
		{"exact length untouched", "abcdef", 6, "abcdef"},
		{"tiny width truncates hard", "abcdef", 2, "ab"},
		{"width three truncates hard", "abcdef", 3, "abc"},
		{"zero width", "abcdef", 0, ""},
		{"multibyte runes survive", "£10k–£50k grants fund", 6, "£10..."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := clip(tt.in, tt.max); got != tt.want {
				t.Fatalf("clip(%q, %d) = %q, want %q", tt.in, tt.max, got, tt.want)
			}
		})
	}
}

func TestTallies(t *testing.T) {
	var buf bytes.Buffer
	Tallies(&buf, exportRecords())
	out := buf.String()
	if !strings.Contains(out, "2 results") {
		t.Fatalf("missing total:\n%s", out)
	}
	if !strings.Contains(out, "Eligible: 1") {
		t.Fatalf("missing eligibility count:\n%s", out)
	}
}

func TestJobProgress(t *testing.T) {
	var buf bytes.Buffer
	JobProgress(&buf, client.JobStatus{
		JobID:           "job-1",
		ProgressPercent: 50,
		TotalURLs:       4,
		CompletedURLs:   2,
		CurrentURL:      "https://c.org",
	})
	out := buf.String()
	if !strings.Contains(out, "50%") || !strings.Contains(out, "https://c.org") {
		t.Fatalf("running job summary incomplete:\n%s", out)
	}

	buf.Reset()
	JobProgress(&buf, client.JobStatus{
		JobID:         "job-1",
		Done:          true,
		TotalURLs:     4,
		CompletedURLs: 3,
		Errors:        []client.JobError{{URL: "https://d.org", Message: "timeout"}},
	})
	out = buf.String()
	if !strings.Contains(out, "finished") || !strings.Contains(out, "timeout") {
		t.Fatalf("finished job summary incomplete:\n%s", out)
	}
}
