// Package mockapi emulates the scrape/extraction backend's HTTP contract
// with fixture data. It backs local development of the dashboard and the
// client package's tests; the real backend is an external service.
package mockapi

import (
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/david/fund-dashboard/internal/models"
)

// Server is an in-memory stand-in for the scrape backend.
type Server struct {
	Echo *echo.Echo

	// ScrapeDelay simulates per-URL scrape time in batch jobs. Zero
	// completes jobs on the first status poll.
	ScrapeDelay time.Duration

	mu      sync.Mutex
	results []models.Record
	jobs    map[string]*job
	apiKey  string
}

type job struct {
	id         string
	urls       []string
	startedAt  time.Time
	finishedAt time.Time
	done       bool
	current    string
	results    []models.Record
	errors     []map[string]string
	timings    []map[string]any
}

func NewServer() *Server {
	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())

	s := &Server{Echo: e, jobs: map[string]*job{}}
	s.routes()
	return s
}

func (s *Server) routes() {
	s.Echo.GET("/results/", s.handleListResults)
	s.Echo.POST("/results/refresh", s.handleRefreshResults)
	s.Echo.POST("/scrape/single", s.handleScrapeSingle)
	s.Echo.POST("/scrape/batch", s.handleScrapeBatch)
	s.Echo.POST("/scrape/prepare", s.handlePrepare)
	s.Echo.GET("/scrape/jobs/:id", s.handleJobStatus)
	s.Echo.POST("/settings/openai", s.handleUpdateKey)
}

// Seed replaces the stored result set.
func (s *Server) Seed(records []models.Record) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.results = append([]models.Record(nil), records...)
}

func (s *Server) Start(port string) error {
	return s.Echo.Start(":" + port)
}

func (s *Server) handleListResults(c echo.Context) error {
	s.mu.Lock()
	results := append([]models.Record(nil), s.results...)
	s.mu.Unlock()
	if results == nil {
		results = []models.Record{}
	}
	return c.JSON(http.StatusOK, map[string]any{"results": results})
}

func (s *Server) handleRefreshResults(c echo.Context) error {
	s.mu.Lock()
	total := len(s.results)
	s.mu.Unlock()
	return c.JSON(http.StatusOK, map[string]int{"total_results": total})
}

func (s *Server) handleScrapeSingle(c echo.Context) error {
	var req struct {
		FundURL  string `json:"fund_url"`
		FundName string `json:"fund_name"`
	}
	if err := c.Bind(&req); err != nil || strings.TrimSpace(req.FundURL) == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "fund_url required"})
	}

	normalized := normalizeURL(req.FundURL)
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.hasResultLocked(normalized) {
		return c.JSON(http.StatusConflict, map[string]string{
			"error": "URL already exists in results or was provided more than once.",
		})
	}
	record := s.synthesizeLocked(normalized, req.FundName)
	s.results = append(s.results, record)
	return c.JSON(http.StatusOK, record)
}

func (s *Server) handleScrapeBatch(c echo.Context) error {
	var req struct {
		FundURLs     []string `json:"fund_urls"`
		RescrapeURLs []string `json:"rescrape_urls"`
	}
	if err := c.Bind(&req); err != nil || len(req.FundURLs) == 0 {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "No URLs provided"})
	}

	prep := s.prepare(req.FundURLs)
	toScrape := append([]string(nil), prep["to_scrape"].([]string)...)
	for _, raw := range req.RescrapeURLs {
		toScrape = append(toScrape, normalizeURL(raw))
	}
	if len(toScrape) == 0 {
		return c.JSON(http.StatusBadRequest, map[string]string{
			"error": "All provided URLs already exist in results or are duplicates.",
		})
	}

	j := &job{id: uuid.New().String(), urls: toScrape, startedAt: time.Now()}
	s.mu.Lock()
	s.jobs[j.id] = j
	s.mu.Unlock()
	go s.runJob(j)

	return c.JSON(http.StatusAccepted, map[string]any{
		"job_id":                j.id,
		"to_scrape":             toScrape,
		"already_processed":     prep["already_processed"],
		"duplicates_in_payload": prep["duplicates_in_payload"],
	})
}

// runJob simulates scraping each URL in turn, accumulating partial results
// the way the real backend's background worker does.
func (s *Server) runJob(j *job) {
	for _, u := range j.urls {
		s.mu.Lock()
		j.current = u
		s.mu.Unlock()

		if s.ScrapeDelay > 0 {
			time.Sleep(s.ScrapeDelay)
		}

		s.mu.Lock()
		started := time.Now()
		if s.hasResultLocked(u) {
			j.errors = append(j.errors, map[string]string{"url": u, "message": "already processed"})
		} else {
			record := s.synthesizeLocked(u, "")
			s.results = append(s.results, record)
			j.results = append(j.results, record)
		}
		j.timings = append(j.timings, map[string]any{"url": u, "seconds": time.Since(started).Seconds()})
		s.mu.Unlock()
	}

	s.mu.Lock()
	j.current = ""
	j.done = true
	j.finishedAt = time.Now()
	s.mu.Unlock()
}

func (s *Server) handleJobStatus(c echo.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	j, ok := s.jobs[c.Param("id")]
	if !ok {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "Job not found"})
	}

	now := time.Now()
	percent := 0
	if len(j.urls) > 0 {
		percent = len(j.results) * 100 / len(j.urls)
	}
	if j.done {
		percent = 100
	}
	totalElapsed := int(now.Sub(j.startedAt).Seconds())
	if j.done {
		totalElapsed = int(j.finishedAt.Sub(j.startedAt).Seconds())
	}

	errors := j.errors
	if errors == nil {
		errors = []map[string]string{}
	}
	results := j.results
	if results == nil {
		results = []models.Record{}
	}
	timings := j.timings
	if timings == nil {
		timings = []map[string]any{}
	}

	return c.JSON(http.StatusOK, map[string]any{
		"job_id":                  j.id,
		"done":                    j.done,
		"progress_percent":        percent,
		"results":                 results,
		"errors":                  errors,
		"current_url":             j.current,
		"current_elapsed_seconds": 0,
		"total_elapsed_seconds":   totalElapsed,
		"started_at":              float64(j.startedAt.Unix()),
		"finished_at":             float64(j.finishedAt.Unix()),
		"url_timings":             timings,
		"total_urls":              len(j.urls),
		"completed_urls":          len(j.results),
	})
}

func (s *Server) handlePrepare(c echo.Context) error {
	var req struct {
		FundURLs []string `json:"fund_urls"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request"})
	}
	return c.JSON(http.StatusOK, s.prepare(req.FundURLs))
}

// prepare normalizes candidates, collapses duplicates within the payload,
// and flags URLs already present in the results store.
func (s *Server) prepare(rawURLs []string) map[string]any {
	s.mu.Lock()
	defer s.mu.Unlock()

	normalizedMap := map[string]string{}
	toScrape := []string{}
	alreadyProcessed := []string{}
	duplicates := []string{}
	seen := map[string]struct{}{}

	for _, raw := range rawURLs {
		normalized := normalizeURL(raw)
		normalizedMap[raw] = normalized
		if _, dup := seen[normalized]; dup {
			duplicates = append(duplicates, raw)
			continue
		}
		seen[normalized] = struct{}{}
		if s.hasResultLocked(normalized) {
			alreadyProcessed = append(alreadyProcessed, raw)
			continue
		}
		toScrape = append(toScrape, normalized)
	}

	return map[string]any{
		"to_scrape":             toScrape,
		"already_processed":     alreadyProcessed,
		"duplicates_in_payload": duplicates,
		"normalized_map":        normalizedMap,
	}
}

func (s *Server) handleUpdateKey(c echo.Context) error {
	var req struct {
		OpenAIAPIKey string `json:"openai_api_key"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request"})
	}
	key := strings.TrimSpace(req.OpenAIAPIKey)
	s.mu.Lock()
	s.apiKey = key
	s.mu.Unlock()
	return c.JSON(http.StatusOK, map[string]any{"status": "ok", "openai_api_key_set": key != ""})
}

func (s *Server) hasResultLocked(normalizedURL string) bool {
	for _, r := range s.results {
		if normalizeURL(r.Text(models.FieldFundURL)) == normalizedURL {
			return true
		}
	}
	return false
}

// synthesizeLocked fabricates a plausible extraction record for a URL.
// Eligibility cycles through the vocabulary so seeded sets exercise every
// label.
func (s *Server) synthesizeLocked(fundURL, fundName string) models.Record {
	host := fundURL
	if u, err := url.Parse(fundURL); err == nil && u.Hostname() != "" {
		host = u.Hostname()
	}
	if fundName == "" {
		fundName = host
	}
	elig := models.EligibilityOrder[len(s.results)%len(models.EligibilityOrder)]

	return models.Record{
		models.FieldFundURL:             fundURL,
		models.FieldFundName:            fundName,
		models.FieldApplicantTypes:      "Registered charities; nonprofit organisations",
		models.FieldGeographicScope:     "UK",
		models.FieldBeneficiaryFocus:    []string{"palliative care", "families"},
		models.FieldFundingRange:        "£5,000 - £50,000",
		models.FieldRestrictions:        "No capital build projects",
		models.FieldApplicationStatus:   "open",
		models.FieldDeadline:            "rolling",
		models.FieldNotes:               fmt.Sprintf("Synthesized record for %s", host),
		models.FieldEligibility:         elig,
		models.FieldEvidence:            "Generated by the development backend emulator.",
		models.FieldPagesScraped:        3,
		models.FieldVisitedURLsCount:    12,
		models.FieldExtractionTimestamp: time.Now().UTC().Format("2006-01-02 15:04:05"),
		models.FieldError:               "",
	}
}

// normalizeURL applies the backend's canonical form: default https scheme,
// trailing path slash stripped, query preserved.
func normalizeURL(raw string) string {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil || u.Host == "" {
		return strings.TrimSpace(raw)
	}
	scheme := u.Scheme
	if scheme == "" {
		scheme = "https"
	}
	path := strings.TrimRight(u.Path, "/")
	out := scheme + "://" + u.Host + path
	if u.RawQuery != "" {
		out += "?" + u.RawQuery
	}
	return out
}
