package client_test

import (
	"context"
	"errors"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/david/fund-dashboard/internal/client"
	"github.com/david/fund-dashboard/internal/mockapi"
	"github.com/david/fund-dashboard/internal/models"
)

func testClient(t *testing.T) (*client.Client, *mockapi.Server) {
	t.Helper()
	srv := mockapi.NewServer()
	ts := httptest.NewServer(srv.Echo)
	t.Cleanup(ts.Close)
	return client.New(ts.URL), srv
}

func seedOne(srv *mockapi.Server) {
	srv.Seed([]models.Record{{
		models.FieldFundURL:     "https://seeded.org/grants",
		models.FieldFundName:    "Seeded Fund",
		models.FieldEligibility: "Eligible",
	}})
}

func TestResults(t *testing.T) {
	c, srv := testClient(t)
	seedOne(srv)

	records, err := c.Results(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if len(records) != 1 || records[0].Text(models.FieldFundName) != "Seeded Fund" {
		t.Fatalf("unexpected results: %v", records)
	}
}

func TestScrapeSingle(t *testing.T) {
	c, _ := testClient(t)

	record, err := c.ScrapeSingle(context.Background(), "https://new.org/fund", "New Fund")
	if err != nil {
		t.Fatal(err)
	}
	if record.Text(models.FieldFundName) != "New Fund" {
		t.Fatalf("unexpected record: %v", record)
	}

	records, err := c.Results(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if len(records) != 1 {
		t.Fatalf("scraped record should appear in results, got %d", len(records))
	}
}

func TestScrapeSingleConflictCarriesServerMessage(t *testing.T) {
	c, srv := testClient(t)
	seedOne(srv)

	_, err := c.ScrapeSingle(context.Background(), "https://seeded.org/grants", "")
	var reqErr *client.RequestError
	if !errors.As(err, &reqErr) {
		t.Fatalf("expected RequestError, got %v", err)
	}
	if reqErr.Status != 409 {
		t.Fatalf("status = %d, want 409", reqErr.Status)
	}
	if reqErr.Body == "" {
		t.Fatal("error should carry the server's body verbatim")
	}
}

func TestPrepareClassifiesURLs(t *testing.T) {
	c, srv := testClient(t)
	seedOne(srv)

	prep, err := c.Prepare(context.Background(), []string{
		"https://new.org/fund",
		"https://new.org/fund/", // same after normalization
		"https://seeded.org/grants",
	})
	if err != nil {
		t.Fatal(err)
	}
	if len(prep.ToScrape) != 1 {
		t.Fatalf("to_scrape = %v, want one entry", prep.ToScrape)
	}
	if len(prep.DuplicatesInPayload) != 1 {
		t.Fatalf("duplicates = %v, want one entry", prep.DuplicatesInPayload)
	}
	if len(prep.AlreadyProcessed) != 1 {
		t.Fatalf("already_processed = %v, want one entry", prep.AlreadyProcessed)
	}
	if prep.NormalizedMap["https://new.org/fund/"] != "https://new.org/fund" {
		t.Fatalf("normalized map = %v", prep.NormalizedMap)
	}
}

func TestBatchJobLifecycle(t *testing.T) {
	c, _ := testClient(t)

	accepted, err := c.ScrapeBatch(context.Background(), []string{"https://a.org", "https://b.org"}, nil)
	if err != nil {
		t.Fatal(err)
	}
	if accepted.JobID == "" {
		t.Fatal("expected a job id")
	}
	if len(accepted.ToScrape) != 2 {
		t.Fatalf("to_scrape = %v, want both URLs", accepted.ToScrape)
	}

	deadline := time.Now().Add(2 * time.Second)
	var status client.JobStatus
	for time.Now().Before(deadline) {
		status, err = c.JobStatus(context.Background(), accepted.JobID)
		if err != nil {
			t.Fatal(err)
		}
		if status.Done {
			break
		}
		time.Sleep(10 * time.Millisecond)
	}
	if !status.Done {
		t.Fatal("job never finished")
	}
	if status.TotalURLs != 2 || status.CompletedURLs != 2 {
		t.Fatalf("expected 2/2 URLs, got %d/%d", status.CompletedURLs, status.TotalURLs)
	}
	if status.ProgressPercent != 100 {
		t.Fatalf("progress = %d, want 100", status.ProgressPercent)
	}
}

func TestJobStatusUnknownJob(t *testing.T) {
	c, _ := testClient(t)

	_, err := c.JobStatus(context.Background(), "no-such-job")
	var reqErr *client.RequestError
	if !errors.As(err, &reqErr) || reqErr.Status != 404 {
		t.Fatalf("expected 404 RequestError, got %v", err)
	}
}

func TestRefreshResults(t *testing.T) {
	c, srv := testClient(t)
	seedOne(srv)

	total, err := c.RefreshResults(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if total != 1 {
		t.Fatalf("total = %d, want 1", total)
	}
}

func TestUpdateOpenAIKey(t *testing.T) {
	c, _ := testClient(t)
	if err := c.UpdateOpenAIKey(context.Background(), "sk-test"); err != nil {
		t.Fatal(err)
	}
}
