package client

import (
	"context"

	"github.com/david/fund-dashboard/internal/models"
)

// JobError is one per-URL failure inside a batch job. It does not abort the
// rest of the batch.
type JobError struct {
	URL     string `json:"url"`
	Message string `json:"message"`
}

// URLTiming records how long one URL took to scrape.
type URLTiming struct {
	URL     string  `json:"url"`
	Seconds float64 `json:"seconds"`
}

// JobStatus is a wholesale snapshot of a batch scrape job. Polling replaces
// the previous snapshot rather than merging into it.
type JobStatus struct {
	JobID                 string          `json:"job_id"`
	Done                  bool            `json:"done"`
	ProgressPercent       int             `json:"progress_percent"`
	Results               []models.Record `json:"results"`
	Errors                []JobError      `json:"errors"`
	CurrentURL            string          `json:"current_url"`
	CurrentElapsedSeconds int             `json:"current_elapsed_seconds"`
	TotalElapsedSeconds   int             `json:"total_elapsed_seconds"`
	StartedAt             float64         `json:"started_at"`
	FinishedAt            float64         `json:"finished_at"`
	URLTimings            []URLTiming     `json:"url_timings"`
	TotalURLs             int             `json:"total_urls"`
	CompletedURLs         int             `json:"completed_urls"`
}

// PrepSummary partitions candidate URLs before a batch submission.
type PrepSummary struct {
	ToScrape            []string          `json:"to_scrape"`
	AlreadyProcessed    []string          `json:"already_processed"`
	DuplicatesInPayload []string          `json:"duplicates_in_payload"`
	NormalizedMap       map[string]string `json:"normalized_map"`
}

// BatchAccepted is the server's acknowledgement of a batch submission.
type BatchAccepted struct {
	JobID               string   `json:"job_id"`
	ToScrape            []string `json:"to_scrape"`
	AlreadyProcessed    []string `json:"already_processed"`
	DuplicatesInPayload []string `json:"duplicates_in_payload"`
}

// Results fetches the current result set.
func (c *Client) Results(ctx context.Context) ([]models.Record, error) {
	var resp struct {
		Results []models.Record `json:"results"`
	}
	if err := c.get(ctx, "/results/", &resp); err != nil {
		return nil, err
	}
	return resp.Results, nil
}

// ScrapeSingle submits one URL for immediate scrape and extraction.
func (c *Client) ScrapeSingle(ctx context.Context, fundURL, fundName string) (models.Record, error) {
	body := map[string]string{"fund_url": fundURL}
	if fundName != "" {
		body["fund_name"] = fundName
	}
	var record models.Record
	if err := c.post(ctx, "/scrape/single", body, &record); err != nil {
		return nil, err
	}
	return record, nil
}

// ScrapeBatch submits a batch of URLs (plus an optional explicit rescrape
// list) as an asynchronous job.
func (c *Client) ScrapeBatch(ctx context.Context, fundURLs, rescrapeURLs []string) (BatchAccepted, error) {
	body := map[string]any{"fund_urls": fundURLs}
	if len(rescrapeURLs) > 0 {
		body["rescrape_urls"] = rescrapeURLs
	}
	var resp BatchAccepted
	if err := c.post(ctx, "/scrape/batch", body, &resp); err != nil {
		return BatchAccepted{}, err
	}
	return resp, nil
}

// JobStatus fetches the current snapshot of a batch job.
func (c *Client) JobStatus(ctx context.Context, jobID string) (JobStatus, error) {
	var status JobStatus
	if err := c.get(ctx, "/scrape/jobs/"+jobID, &status); err != nil {
		return JobStatus{}, err
	}
	return status, nil
}

// Prepare classifies candidate URLs into new, duplicate-within-payload, and
// already-processed.
func (c *Client) Prepare(ctx context.Context, fundURLs []string) (PrepSummary, error) {
	var resp PrepSummary
	if err := c.post(ctx, "/scrape/prepare", map[string]any{"fund_urls": fundURLs}, &resp); err != nil {
		return PrepSummary{}, err
	}
	return resp, nil
}

// RefreshResults asks the server to rebuild its results store and returns
// the resulting total.
func (c *Client) RefreshResults(ctx context.Context) (int, error) {
	var resp struct {
		TotalResults int `json:"total_results"`
	}
	if err := c.post(ctx, "/results/refresh", nil, &resp); err != nil {
		return 0, err
	}
	return resp.TotalResults, nil
}

// UpdateOpenAIKey pushes an API credential to the server for the session.
func (c *Client) UpdateOpenAIKey(ctx context.Context, key string) error {
	return c.post(ctx, "/settings/openai", map[string]string{"openai_api_key": key}, nil)
}
