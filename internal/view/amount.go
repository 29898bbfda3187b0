package view

import (
	"regexp"
	"strconv"
	"strings"
)

// amountPattern matches a number with an optional k/m magnitude suffix,
// e.g. "50000", "50k", "1.5m". Currency symbols and surrounding text are
// ignored; commas must be stripped before matching.
var amountPattern = regexp.MustCompile(`(\d+(\.\d+)?)\s*([km])?`)

// ParseAmount converts a free-text amount like "50k", "1.5m" or "$50,000"
// into a numeric value. It strips commas, lower-cases, and scales the first
// embedded number by its k/m suffix. Returns false when no number is found,
// which callers treat as "filter inactive" rather than an error.
func ParseAmount(s string) (float64, bool) {
	s = strings.ToLower(strings.ReplaceAll(s, ",", ""))
	m := amountPattern.FindStringSubmatch(s)
	if m == nil {
		return 0, false
	}
	val, err := strconv.ParseFloat(m[1], 64)
	if err != nil {
		return 0, false
	}
	return val * suffixMultiplier(m[3]), true
}

// MaxAmount extracts every amount embedded in a funding-range string, e.g.
// "£10k–£50k", and returns the largest. Returns false when the text holds
// no parseable number at all.
func MaxAmount(text string) (float64, bool) {
	text = strings.ToLower(strings.ReplaceAll(text, ",", ""))
	matches := amountPattern.FindAllStringSubmatch(text, -1)
	if len(matches) == 0 {
		return 0, false
	}

	var best float64
	found := false
	for _, m := range matches {
		val, err := strconv.ParseFloat(m[1], 64)
		if err != nil {
			continue
		}
		val *= suffixMultiplier(m[3])
		if !found || val > best {
			best = val
			found = true
		}
	}
	return best, found
}

func suffixMultiplier(suffix string) float64 {
	switch suffix {
	case "k":
		return 1_000
	case "m":
		return 1_000_000
	default:
		return 1
	}
}
