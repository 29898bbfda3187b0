package view

import (
	"github.com/david/fund-dashboard/internal/cache"
	"github.com/david/fund-dashboard/internal/models"
)

// viewStateKey persists filter, sort, and row state between sessions. Owned
// exclusively by the results browser.
const viewStateKey = "results_view_state"

// LoadConfig restores the persisted view configuration, falling back to the
// defaults when nothing usable is stored. Unknown eligibility labels that a
// newer vocabulary no longer contains are dropped on load.
func LoadConfig(store *cache.Store) Config {
	var cfg Config
	if _, ok := store.ReadInto(viewStateKey, &cfg); !ok {
		return DefaultConfig()
	}
	cfg.Eligibility = knownLabels(cfg.Eligibility)
	if cfg.SortMode != SortRecent && cfg.SortMode != SortAlphabetical && cfg.SortMode != SortEligibility {
		cfg.SortMode = SortRecent
	}
	return cfg
}

// SaveConfig persists the view configuration. Best-effort, like every cache
// write.
func SaveConfig(store *cache.Store, cfg Config) {
	store.Write(viewStateKey, cfg)
}

func knownLabels(labels []string) []string {
	var out []string
	for _, label := range labels {
		if models.EligibilityRank(label) < len(models.EligibilityOrder) {
			out = append(out, label)
		}
	}
	return out
}
