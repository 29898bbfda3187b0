// Package render draws the dashboard's terminal output: the results table,
// expanded record details, eligibility tallies, job progress, and CSV export.
package render

import (
	"fmt"
	"io"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"github.com/david/fund-dashboard/internal/browse"
	"github.com/david/fund-dashboard/internal/models"
	"github.com/david/fund-dashboard/internal/view"
)

const maxCellWidth = 48

// Results writes the filtered record table. The selected row is marked with
// ">", the pinned row with "*". Expanded rows get their detail block printed
// directly beneath them.
func Results(w io.Writer, records []models.Record, sel *browse.Selection, showEvidence bool) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.AppendHeader(table.Row{"", "Fund", "Eligibility", "Funding", "Deadline", "Status"})
	t.SetColumnConfigs([]table.ColumnConfig{
		{Number: 2, WidthMax: maxCellWidth},
		{Number: 4, WidthMax: 24},
		{Number: 5, WidthMax: 20},
	})

	for i, r := range records {
		key := r.Key(i)
		marker := " "
		if key == sel.Selected {
			marker = ">"
		}
		if key == sel.Pinned {
			marker += "*"
		}
		t.AppendRow(table.Row{
			marker,
			clip(r.Text(models.FieldFundName), maxCellWidth),
			r.Eligibility(),
			clip(r.Text(models.FieldFundingRange), 24),
			clip(r.Text(models.FieldDeadline), 20),
			r.Text(models.FieldApplicationStatus),
		})
	}
	t.Render()

	for i, r := range records {
		if sel.IsExpanded(r.Key(i)) {
			Detail(w, r, showEvidence)
		}
	}
}

// Detail writes the full field listing for one record. The evidence field
// stays hidden unless the evidence toggle is on.
func Detail(w io.Writer, r models.Record, showEvidence bool) {
	name := r.Text(models.FieldFundName)
	if name == "" {
		name = r.Text(models.FieldFundURL)
	}
	fmt.Fprintf(w, "\n%s\n", text.Bold.Sprint(name))

	for _, field := range models.ExportColumns {
		if !showEvidence && field == models.FieldEvidence {
			continue
		}
		if v := r.Text(field); v != "" {
			fmt.Fprintf(w, "  %-24s %s\n", field+":", v)
		}
	}
	fmt.Fprintln(w)
}

// Tallies writes the eligibility metrics strip, one count per vocabulary
// label in rank order, plus the overall row count.
func Tallies(w io.Writer, records []models.Record) {
	counts := view.EligibilityTally(records)
	parts := make([]string, 0, len(models.EligibilityOrder)+1)
	parts = append(parts, fmt.Sprintf("%d results", len(records)))
	for _, label := range models.EligibilityOrder {
		parts = append(parts, fmt.Sprintf("%s: %d", label, counts[label]))
	}
	fmt.Fprintln(w, strings.Join(parts, "  |  "))
}

func clip(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	if max <= 3 {
		return string(runes[:max])
	}
	return string(runes[:max-3]) + "..."
}
