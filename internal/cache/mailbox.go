package cache

import "time"

// refreshSignalKey is the single-slot mailbox coordinating the scrape form
// (writer) and the results browser (reader-then-clearer). It is the only
// key shared between the two views.
const refreshSignalKey = "force_refresh_signal"

// RefreshSignal asks the results browser to bypass its cached snapshot and
// re-fetch from the server once.
type RefreshSignal struct {
	JobID       string    `json:"job_id"`
	CompletedAt time.Time `json:"completed_at"`
}

// PostRefresh deposits the signal, replacing any unread one.
func PostRefresh(s *Store, sig RefreshSignal) {
	s.Write(refreshSignalKey, sig)
}

// TakeRefresh removes and returns the pending signal, if any. The
// read-and-clear pairing makes the one-shot contract explicit: a second
// Take without an intervening Post reports nothing.
func TakeRefresh(s *Store) (RefreshSignal, bool) {
	var sig RefreshSignal
	if _, ok := s.ReadInto(refreshSignalKey, &sig); !ok {
		return RefreshSignal{}, false
	}
	s.Clear(refreshSignalKey)
	return sig, true
}
