package scrape

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path"
	"sync/atomic"
	"testing"
	"time"

	"github.com/david/fund-dashboard/internal/cache"
	"github.com/david/fund-dashboard/internal/client"
)

// jobServer serves job-status snapshots that report done after the given
// number of polls.
func jobServer(t *testing.T, doneAfter int32) (*httptest.Server, *int32) {
	t.Helper()
	var polls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		n := atomic.AddInt32(&polls, 1)
		status := map[string]any{
			"job_id":           path.Base(r.URL.Path),
			"done":             n >= doneAfter,
			"progress_percent": 50,
			"total_urls":       2,
			"completed_urls":   1,
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(status)
	}))
	t.Cleanup(srv.Close)
	return srv, &polls
}

func waitFor(t *testing.T, timeout time.Duration, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition not met before timeout")
}

func TestPollerPostsRefreshSignalOnceOnDone(t *testing.T) {
	srv, _ := jobServer(t, 1)
	store := cache.OpenDir(t.TempDir())
	p := NewPoller(client.New(srv.URL), store, 10*time.Millisecond)

	p.Start("job-1")
	waitFor(t, time.Second, func() bool {
		status, ok := p.Status()
		return ok && status.Done
	})

	sig, ok := cache.TakeRefresh(store)
	if !ok || sig.JobID != "job-1" {
		t.Fatalf("expected refresh signal for job-1, got %+v (ok=%v)", sig, ok)
	}
	if _, ok := cache.TakeRefresh(store); ok {
		t.Fatal("the refresh signal must be one-shot")
	}
}

func TestPollerDoneTwiceSameJobSignalsOnce(t *testing.T) {
	srv, _ := jobServer(t, 0) // done on every poll
	store := cache.OpenDir(t.TempDir())
	p := NewPoller(client.New(srv.URL), store, 10*time.Millisecond)

	p.Start("job-1")
	waitFor(t, time.Second, func() bool {
		status, ok := p.Status()
		return ok && status.Done
	})
	if _, ok := cache.TakeRefresh(store); !ok {
		t.Fatal("first done observation should post a signal")
	}

	// Re-observing done for the same job id must not re-fire.
	p.Start("job-1")
	waitFor(t, time.Second, func() bool {
		status, ok := p.Status()
		return ok && status.Done
	})
	if sig, ok := cache.TakeRefresh(store); ok {
		t.Fatalf("second done observation re-fired the signal: %+v", sig)
	}
}

func TestPollerKeepsPollingUntilDone(t *testing.T) {
	srv, polls := jobServer(t, 3)
	store := cache.OpenDir(t.TempDir())
	p := NewPoller(client.New(srv.URL), store, 10*time.Millisecond)

	p.Start("job-1")
	waitFor(t, time.Second, func() bool {
		status, ok := p.Status()
		return ok && status.Done
	})

	if n := atomic.LoadInt32(polls); n < 3 {
		t.Fatalf("expected at least 3 polls, got %d", n)
	}
}

func TestPollerSurvivesTransientErrors(t *testing.T) {
	var polls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		n := atomic.AddInt32(&polls, 1)
		if n == 1 {
			http.Error(w, "temporary failure", http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{"job_id": "job-1", "done": true})
	}))
	t.Cleanup(srv.Close)

	store := cache.OpenDir(t.TempDir())
	p := NewPoller(client.New(srv.URL), store, 10*time.Millisecond)
	p.Start("job-1")

	waitFor(t, time.Second, func() bool {
		status, ok := p.Status()
		return ok && status.Done
	})
}

func TestPollerStartNewJobSupersedesOld(t *testing.T) {
	srv, _ := jobServer(t, 1)
	store := cache.OpenDir(t.TempDir())
	p := NewPoller(client.New(srv.URL), store, 10*time.Millisecond)

	p.Start("job-1")
	waitFor(t, time.Second, func() bool {
		_, ok := p.Status()
		return ok
	})

	p.Start("job-2")
	waitFor(t, time.Second, func() bool {
		status, ok := p.Status()
		return ok && status.JobID == "job-2"
	})
}

func TestPollOnceDiscardsStaleResponseWithoutStopping(t *testing.T) {
	srv, _ := jobServer(t, 0) // done on every poll
	store := cache.OpenDir(t.TempDir())
	p := NewPoller(client.New(srv.URL), store, 10*time.Millisecond)

	p.mu.Lock()
	p.jobID = "job-1"
	p.appliedSeq = 99 // pretend a newer snapshot already landed
	p.mu.Unlock()

	if stop := p.pollOnce(context.Background(), "job-1"); stop {
		t.Fatal("a fenced-out response must not stop the polling loop")
	}
	if _, ok := p.Status(); ok {
		t.Fatal("a fenced-out response must not overwrite state")
	}
	if _, ok := cache.TakeRefresh(store); ok {
		t.Fatal("a fenced-out response must not post a refresh signal")
	}
}

func TestPollerClear(t *testing.T) {
	srv, _ := jobServer(t, 1)
	store := cache.OpenDir(t.TempDir())
	p := NewPoller(client.New(srv.URL), store, 10*time.Millisecond)

	p.Start("job-1")
	waitFor(t, time.Second, func() bool {
		_, ok := p.Status()
		return ok
	})

	p.Clear()
	if _, ok := p.Status(); ok {
		t.Fatal("cleared poller must report no status")
	}
}
