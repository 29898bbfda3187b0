package render

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"github.com/david/fund-dashboard/internal/client"
	"github.com/david/fund-dashboard/internal/models"
)

// ExportCSV writes the records in the canonical column order. The export
// reflects the current filtered view, not the full result set.
func ExportCSV(w io.Writer, records []models.Record) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(models.ExportColumns); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	row := make([]string, len(models.ExportColumns))
	for _, r := range records {
		for i, col := range models.ExportColumns {
			row[i] = r.Text(col)
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write csv row: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// JobProgress writes a one-or-two line summary of a running or finished
// batch job.
func JobProgress(w io.Writer, status client.JobStatus) {
	if status.Done {
		fmt.Fprintf(w, "Job %s finished: %d/%d URLs in %ds",
			status.JobID, status.CompletedURLs, status.TotalURLs, status.TotalElapsedSeconds)
		if len(status.Errors) > 0 {
			fmt.Fprintf(w, ", %d errors", len(status.Errors))
		}
		fmt.Fprintln(w)
		for _, e := range status.Errors {
			fmt.Fprintf(w, "  %s: %s\n", e.URL, e.Message)
		}
		return
	}

	bar := progressBar(status.ProgressPercent, 30)
	fmt.Fprintf(w, "Job %s  %s %d%%  (%d/%d)", status.JobID, bar,
		status.ProgressPercent, status.CompletedURLs, status.TotalURLs)
	if status.CurrentURL != "" {
		fmt.Fprintf(w, "  scraping %s (%ds)", status.CurrentURL, status.CurrentElapsedSeconds)
	}
	fmt.Fprintln(w)
}

func progressBar(percent, width int) string {
	if percent < 0 {
		percent = 0
	}
	if percent > 100 {
		percent = 100
	}
	filled := percent * width / 100
	return "[" + strings.Repeat("#", filled) + strings.Repeat("-", width-filled) + "]"
}
