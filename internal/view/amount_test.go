package view

import "testing"

func TestParseAmount(t *testing.T) {
	tests := []struct {
		in   string
		want float64
		ok   bool
	}{
		{"50000", 50000, true},
		{"50k", 50000, true},
		{"50K", 50000, true},
		{"1.5m", 1500000, true},
		{"$50,000", 50000, true},
		{"up to £25k", 25000, true},
		{"tbd", 0, false},
		{"", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, ok := ParseAmount(tt.in)
			if ok != tt.ok {
				t.Fatalf("ParseAmount(%q) ok = %v, want %v", tt.in, ok, tt.ok)
			}
			if ok && got != tt.want {
				t.Fatalf("ParseAmount(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestMaxAmountTakesLargest(t *testing.T) {
	got, ok := MaxAmount("£10k-£50k")
	if !ok || got != 50000 {
		t.Fatalf("MaxAmount = %v (ok=%v), want 50000", got, ok)
	}

	got, ok = MaxAmount("between 5,000 and 2m depending on scale")
	if !ok || got != 2000000 {
		t.Fatalf("MaxAmount = %v (ok=%v), want 2000000", got, ok)
	}

	if _, ok := MaxAmount("varies by programme"); ok {
		t.Fatal("text without numbers should not parse")
	}
}
