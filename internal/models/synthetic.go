package models

import (
	"strings"

	"github.com/google/uuid"
)

// syntheticKeyField holds an ingestion-time id for callers that opt out of
// the derived-key collision risk. It never round-trips to the backend.
const syntheticKeyField = "_row_id"

// AssignSyntheticKeys stamps every record that lacks one with a random id.
// Records keep their stamp across repeated calls, so keys stay stable for
// the lifetime of the loaded set.
func AssignSyntheticKeys(records []Record) {
	for _, r := range records {
		if strings.TrimSpace(r.Text(syntheticKeyField)) != "" {
			continue
		}
		r[syntheticKeyField] = uuid.New().String()
	}
}

// SyntheticKey returns the stamped id, or "" when AssignSyntheticKeys has
// not run over this record.
func (r Record) SyntheticKey() string {
	return r.Text(syntheticKeyField)
}
