// Package scrape drives the client side of the batch scrape workflow: URL
// staging, the prepare/classify step, job submission, and status polling.
package scrape

import (
	"net/url"
	"regexp"
	"strings"

	"github.com/david/fund-dashboard/internal/cache"
	"github.com/david/fund-dashboard/internal/client"
)

// urlPattern matches http(s) URLs embedded in pasted text or uploaded file
// content: the scheme followed by any run of characters that cannot end a
// URL in prose (whitespace, quotes, brackets).
var urlPattern = regexp.MustCompile(`https?://[^\s"'<>\[\]]+`)

// ExtractURLs scans free text for candidate URLs, collapsing duplicates by
// exact string equality while preserving first-seen order.
func ExtractURLs(text string) []string {
	matches := urlPattern.FindAllString(text, -1)
	seen := make(map[string]struct{}, len(matches))
	var out []string
	for _, m := range matches {
		if _, ok := seen[m]; ok {
			continue
		}
		seen[m] = struct{}{}
		out = append(out, m)
	}
	return out
}

// stagingStateKey persists the staged queue between sessions. Owned
// exclusively by the scrape form view.
const stagingStateKey = "scrape_form_state"

// QueueStats summarises the staged queue. URLs that fail to parse, or parse
// without a hostname, contribute to neither count.
type QueueStats struct {
	Total         int `json:"total"`
	DistinctHosts int `json:"distinct_hosts"`
}

// Queue is the ordered set of URLs staged for submission.
type Queue struct {
	urls []string
}

func NewQueue() *Queue {
	return &Queue{}
}

// LoadQueue restores the staged queue from the cache, or returns an empty
// one when nothing usable is stored.
func LoadQueue(store *cache.Store) *Queue {
	var urls []string
	if _, ok := store.ReadInto(stagingStateKey, &urls); !ok {
		return NewQueue()
	}
	q := NewQueue()
	for _, u := range urls {
		q.Add(u)
	}
	return q
}

// Save persists the staged queue. Best-effort, like every cache write.
func (q *Queue) Save(store *cache.Store) {
	store.Write(stagingStateKey, q.urls)
}

// Add stages a URL unless it is already queued. Reports whether the queue
// changed.
func (q *Queue) Add(rawURL string) bool {
	rawURL = strings.TrimSpace(rawURL)
	if rawURL == "" {
		return false
	}
	for _, existing := range q.urls {
		if existing == rawURL {
			return false
		}
	}
	q.urls = append(q.urls, rawURL)
	return true
}

// AddText extracts URLs from pasted or uploaded text and stages the new
// ones. Returns how many were added.
func (q *Queue) AddText(text string) int {
	added := 0
	for _, u := range ExtractURLs(text) {
		if q.Add(u) {
			added++
		}
	}
	return added
}

// Remove drops a staged URL. Removing an absent URL is a no-op.
func (q *Queue) Remove(rawURL string) bool {
	for i, existing := range q.urls {
		if existing == rawURL {
			q.urls = append(q.urls[:i], q.urls[i+1:]...)
			return true
		}
	}
	return false
}

// Reset clears the queue.
func (q *Queue) Reset() {
	q.urls = nil
}

// URLs returns the staged URLs in order. The returned slice is a copy.
func (q *Queue) URLs() []string {
	out := make([]string, len(q.urls))
	copy(out, q.urls)
	return out
}

// Stats recomputes the queue statistics from the current contents.
func (q *Queue) Stats() QueueStats {
	hosts := make(map[string]struct{})
	valid := 0
	for _, raw := range q.urls {
		u, err := url.Parse(raw)
		if err != nil || u.Hostname() == "" {
			continue
		}
		valid++
		hosts[strings.ToLower(u.Hostname())] = struct{}{}
	}
	return QueueStats{Total: valid, DistinctHosts: len(hosts)}
}

// RescrapeURL maps a raw "already processed" URL to the canonical form the
// server stored it under, using the normalization map from the last prepare
// call. Unmapped URLs pass through unchanged.
func RescrapeURL(raw string, prep client.PrepSummary) string {
	if normalized, ok := prep.NormalizedMap[raw]; ok && normalized != "" {
		return normalized
	}
	return raw
}
