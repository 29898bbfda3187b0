package view

import (
	"testing"
	"time"
)

func TestParseDeadline(t *testing.T) {
	tests := []struct {
		in   string
		want time.Time
		ok   bool
	}{
		{"2026-11-30", time.Date(2026, 11, 30, 23, 59, 59, 0, time.UTC), true},
		{"2026-11-30 14:30:00", time.Date(2026, 11, 30, 14, 30, 0, 0, time.UTC), true},
		{"31/03/2026", time.Date(2026, 3, 31, 23, 59, 59, 0, time.UTC), true},
		{"March 31, 2026", time.Date(2026, 3, 31, 23, 59, 59, 0, time.UTC), true},
		{"31 March 2026", time.Date(2026, 3, 31, 23, 59, 59, 0, time.UTC), true},
		{"Deadline: 31 March 2026 at noon", time.Date(2026, 3, 31, 23, 59, 59, 0, time.UTC), true},
		{"Applications close 2026-09-01.", time.Date(2026, 9, 1, 23, 59, 59, 0, time.UTC), true},
		{"rolling", time.Time{}, false},
		{"", time.Time{}, false},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, ok := ParseDeadline(tt.in)
			if ok != tt.ok {
				t.Fatalf("ParseDeadline(%q) ok = %v, want %v", tt.in, ok, tt.ok)
			}
			if ok && !got.Equal(tt.want) {
				t.Fatalf("ParseDeadline(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestDeadlineOpen(t *testing.T) {
	now := time.Date(2026, 8, 25, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name string
		in   string
		want bool
	}{
		{"future date open", "2026-12-01", true},
		{"past date closed", "2025-01-01", false},
		{"same day still open", "2026-08-25", true},
		{"rolling always open", "Rolling programme", true},
		{"ongoing always open", "ongoing", true},
		{"open copy always open", "Always open to applications", true},
		{"empty not open", "", false},
		{"unparseable not open", "contact the funder", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DeadlineOpen(tt.in, now); got != tt.want {
				t.Fatalf("DeadlineOpen(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}
