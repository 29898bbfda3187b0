// Package cache is a best-effort local key/value store for view-state
// snapshots. Every operation degrades to a no-op when the backing directory
// is unavailable or a write is rejected; callers never see storage errors.
package cache

import (
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	"github.com/adrg/xdg"
)

const appDirName = "fund-dashboard"

// Entry is the stored payload shape: an opaque JSON value plus the write
// timestamp. Staleness policy is the caller's responsibility.
type Entry struct {
	Value     json.RawMessage `json:"value"`
	Timestamp time.Time       `json:"timestamp"`
}

// Store persists entries as one JSON file per key.
type Store struct {
	dir string
}

// Open resolves the per-user state directory. When the directory cannot be
// created the returned store silently drops writes and misses reads.
func Open() *Store {
	dir := filepath.Join(xdg.StateHome, appDirName)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return &Store{}
	}
	return &Store{dir: dir}
}

// OpenDir opens a store rooted at an explicit directory. Used by tests and
// by callers that manage their own locations.
func OpenDir(dir string) *Store {
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return &Store{}
	}
	return &Store{dir: dir}
}

// Read returns the stored entry for key, or nil when the key was never
// written, the payload is malformed JSON, or it is not an object carrying a
// "value" member. A missing or corrupt timestamp defaults to now.
func (s *Store) Read(key string) *Entry {
	if s.dir == "" {
		return nil
	}
	data, err := os.ReadFile(s.path(key))
	if err != nil {
		return nil
	}

	var probe struct {
		Value     *json.RawMessage `json:"value"`
		Timestamp time.Time        `json:"timestamp"`
	}
	if err := json.Unmarshal(data, &probe); err != nil || probe.Value == nil {
		return nil
	}

	ts := probe.Timestamp
	if ts.IsZero() {
		ts = time.Now()
	}
	return &Entry{Value: *probe.Value, Timestamp: ts}
}

// ReadInto decodes the stored value for key into dst. Returns the write
// timestamp and false on any miss or decode failure.
func (s *Store) ReadInto(key string, dst any) (time.Time, bool) {
	entry := s.Read(key)
	if entry == nil {
		return time.Time{}, false
	}
	if err := json.Unmarshal(entry.Value, dst); err != nil {
		return time.Time{}, false
	}
	return entry.Timestamp, true
}

// Write stores value under key with the current timestamp. Failures
// (unserialisable value, full or read-only storage) are swallowed.
func (s *Store) Write(key string, value any) {
	if s.dir == "" {
		return
	}
	raw, err := json.Marshal(value)
	if err != nil {
		return
	}
	data, err := json.Marshal(Entry{Value: raw, Timestamp: time.Now()})
	if err != nil {
		return
	}
	_ = os.WriteFile(s.path(key), data, 0o600)
}

// Clear removes the entry for key. Clearing an absent key is a no-op.
func (s *Store) Clear(key string) {
	if s.dir == "" {
		return
	}
	_ = os.Remove(s.path(key))
}

func (s *Store) path(key string) string {
	return filepath.Join(s.dir, key+".json")
}
