package scrape

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/david/fund-dashboard/internal/cache"
	"github.com/david/fund-dashboard/internal/client"
)

// DefaultPollInterval matches the dashboard's fixed 4-second status poll.
const DefaultPollInterval = 4 * time.Second

// Poller watches one batch job at a time. Starting a new job cancels the
// previous job's timer; transient fetch failures are logged and polling
// continues. On the first observation of done=true it deposits a one-shot
// force-refresh signal in the cache mailbox for the results browser.
type Poller struct {
	client   *client.Client
	store    *cache.Store
	interval time.Duration

	mu          sync.Mutex
	jobID       string
	cancel      context.CancelFunc
	seq         uint64
	appliedSeq  uint64
	status      client.JobStatus
	haveStatus  bool
	lastDoneJob string
}

func NewPoller(c *client.Client, store *cache.Store, interval time.Duration) *Poller {
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	return &Poller{client: c, store: store, interval: interval}
}

// Start begins polling the given job, fetching status once immediately and
// then on the fixed interval until the job reports done. Any previous
// polling loop is cancelled first.
func (p *Poller) Start(jobID string) {
	ctx := p.rearm(jobID)
	go p.run(ctx, jobID)
}

// rearm swaps the active job, cancelling the previous loop's context so at
// most one timer exists per job id.
func (p *Poller) rearm(jobID string) context.Context {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.cancel != nil {
		p.cancel()
	}
	ctx, cancel := context.WithCancel(context.Background())
	p.jobID = jobID
	p.cancel = cancel
	p.status = client.JobStatus{}
	p.haveStatus = false
	p.appliedSeq = 0
	return ctx
}

// Stop cancels future polling. An in-flight request is not interrupted;
// its response is still applied unless a newer one already was.
func (p *Poller) Stop() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.cancel != nil {
		p.cancel()
		p.cancel = nil
	}
}

// Clear discards the tracked job entirely (the explicit "clear completed
// job" action).
func (p *Poller) Clear() {
	p.Stop()
	p.mu.Lock()
	defer p.mu.Unlock()
	p.jobID = ""
	p.status = client.JobStatus{}
	p.haveStatus = false
}

// Status returns the last applied snapshot for the active job.
func (p *Poller) Status() (client.JobStatus, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.status, p.haveStatus
}

func (p *Poller) run(ctx context.Context, jobID string) {
	if p.pollOnce(ctx, jobID) {
		return
	}
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if p.pollOnce(ctx, jobID) {
				return
			}
		}
	}
}

// pollOnce fetches and applies one status snapshot. Reports whether polling
// should stop (job done). Responses are fenced by a per-request sequence
// number: a snapshot arriving after a newer one has been applied is
// discarded instead of overwriting fresher state.
func (p *Poller) pollOnce(ctx context.Context, jobID string) bool {
	p.mu.Lock()
	p.seq++
	seq := p.seq
	p.mu.Unlock()

	status, err := p.client.JobStatus(ctx, jobID)
	if err != nil {
		if ctx.Err() != nil {
			return true
		}
		log.Printf("poll job %s: %v", jobID, err)
		return false
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if p.jobID != jobID {
		// Superseded by a newer job; this loop is already cancelled.
		return true
	}
	if seq < p.appliedSeq {
		// Stale response fenced out by a newer applied snapshot. Keep
		// polling; the newer snapshot decides whether the job is done.
		return false
	}
	p.appliedSeq = seq
	p.status = status
	p.haveStatus = true

	if status.Done && p.lastDoneJob != jobID {
		// One-shot: re-observing done for the same job must not re-fire.
		p.lastDoneJob = jobID
		cache.PostRefresh(p.store, cache.RefreshSignal{JobID: jobID, CompletedAt: time.Now()})
	}
	return status.Done
}
