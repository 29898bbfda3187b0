// Command funddash is the terminal front-end for the funding research
// dashboard: it browses extraction results with filters and sorts, stages
// URLs for batch scraping, and tracks running jobs.
package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"golang.org/x/term"

	"github.com/david/fund-dashboard/internal/browse"
	"github.com/david/fund-dashboard/internal/cache"
	"github.com/david/fund-dashboard/internal/client"
	"github.com/david/fund-dashboard/internal/config"
	"github.com/david/fund-dashboard/internal/models"
	"github.com/david/fund-dashboard/internal/scrape"
	"github.com/david/fund-dashboard/internal/vault"
	"github.com/david/fund-dashboard/internal/view"
)

// resultsCacheKey holds the last fetched result set so the dashboard renders
// instantly on startup and survives a backend outage.
const resultsCacheKey = "results_data"

type app struct {
	cfg     config.Config
	client  *client.Client
	store   *cache.Store
	view    view.Config
	sel     *browse.Selection
	queue   *scrape.Queue
	poller  *scrape.Poller
	records []models.Record
	fetched time.Time

	lastPrep    client.PrepSummary
	havePrep    bool
	showDetails bool
}

func main() {
	configPath := flag.String("config", "", "path to a .funddash.yaml configuration file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	store := cache.Open()
	a := &app{
		cfg:    cfg,
		client: client.New(cfg.APIBaseURL),
		store:  store,
		view:   view.LoadConfig(store),
		queue:  scrape.LoadQueue(store),
	}
	a.sel = browse.Restore(a.view.PinnedKey, a.view.ExpandedKeys)
	a.poller = scrape.NewPoller(a.client, store, cfg.PollInterval())

	if err := a.unlock(); err != nil {
		log.Fatal(err)
	}

	a.hydrate()
	a.loop()
}

// unlock enforces the optional shared-secret access gate before any data is
// shown. A persisted valid session token skips the prompt.
func (a *app) unlock() error {
	if vault.Unlocked(a.store, a.cfg.AppPassword) {
		return nil
	}
	for attempt := 0; attempt < 3; attempt++ {
		pass, err := readSecret("Password: ")
		if err != nil {
			return err
		}
		if err := vault.Unlock(a.store, a.cfg.AppPassword, pass); err == nil {
			return nil
		}
		fmt.Println("Incorrect password.")
	}
	return fmt.Errorf("too many failed unlock attempts")
}

// hydrate shows the cached result set immediately, then refreshes from the
// server. A fetch failure keeps the cached data on screen.
func (a *app) hydrate() {
	if ts, ok := a.store.ReadInto(resultsCacheKey, &a.records); ok {
		a.fetched = ts
		fmt.Printf("Loaded %d cached results from %s.\n", len(a.records), ts.Format("2006-01-02 15:04"))
	}
	a.fetch()
}

// fetch replaces the working set from the server and reconciles row state.
func (a *app) fetch() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	records, err := a.client.Results(ctx)
	if err != nil {
		log.Printf("fetch results: %v", err)
		return
	}
	a.records = records
	a.fetched = time.Now()
	a.store.Write(resultsCacheKey, records)
	a.sel.SyncFull(models.Keys(a.records))
}

func (a *app) loop() {
	fmt.Println(`Type "help" for commands.`)
	scanner := bufio.NewScanner(os.Stdin)
	scanner.Buffer(make([]byte, 0, 1024*1024), 1024*1024)

	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			break
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if line == "quit" || line == "exit" {
			break
		}
		a.dispatch(line)
	}

	a.persist()
	a.poller.Stop()
}

// persist saves view and queue state on the way out. Everything is
// best-effort; losing it costs a reconfiguration, nothing more.
func (a *app) persist() {
	a.view.PinnedKey = a.sel.Pinned
	a.view.ExpandedKeys = a.sel.ExpandedKeys()
	view.SaveConfig(a.store, a.view)
	a.queue.Save(a.store)
}

func readSecret(prompt string) (string, error) {
	fmt.Print(prompt)
	raw, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Println()
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(raw)), nil
}
