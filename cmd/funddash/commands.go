package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/david/fund-dashboard/internal/browse"
	"github.com/david/fund-dashboard/internal/cache"
	"github.com/david/fund-dashboard/internal/models"
	"github.com/david/fund-dashboard/internal/render"
	"github.com/david/fund-dashboard/internal/scrape"
	"github.com/david/fund-dashboard/internal/vault"
	"github.com/david/fund-dashboard/internal/view"
)

const requestTimeout = 30 * time.Second

func (a *app) dispatch(line string) {
	fields := strings.Fields(line)
	cmd, args := fields[0], fields[1:]
	rest := strings.TrimSpace(strings.TrimPrefix(line, cmd))

	switch cmd {
	case "help":
		printHelp()
	case "list", "ls":
		a.list()
	case "search":
		a.view.Search = rest
		a.list()
	case "sort":
		a.setSort(rest)
	case "elig":
		a.setEligibility(args)
	case "col":
		a.setColumnFilter(args)
	case "cols":
		fmt.Println(strings.Join(view.ColumnFilterNames(), ", "))
	case "future":
		a.view.FutureOnly = !a.view.FutureOnly
		fmt.Printf("Future deadlines only: %v\n", a.view.FutureOnly)
	case "nonprofit":
		a.view.NonprofitsOnly = !a.view.NonprofitsOnly
		fmt.Printf("Nonprofits only: %v\n", a.view.NonprofitsOnly)
	case "min":
		a.view.MinFunding = rest
	case "keyword":
		a.view.FundingKeyword = rest
	case "evidence", "e":
		a.view.ShowEvidence = !a.view.ShowEvidence
		fmt.Printf("Show evidence: %v\n", a.view.ShowEvidence)
	case "down", "up", "enter":
		a.key(cmd)
	case "pin":
		a.key("enter")
	case "expand":
		a.sel.ToggleExpand(a.sel.Selected)
		a.list()
	case "fetch":
		a.fetch()
		a.list()
	case "refresh":
		a.refresh()
	case "stage":
		a.stage(args)
	case "paste":
		a.pasteURLs()
	case "stagefile":
		a.stageFile(rest)
	case "queue":
		a.showQueue()
	case "unstage":
		a.unstage(args)
	case "clearqueue":
		a.queue.Reset()
		a.queue.Save(a.store)
		fmt.Println("Queue cleared.")
	case "prepare":
		a.prepare()
	case "submit":
		a.submit(args)
	case "single":
		a.single(args)
	case "job":
		a.jobStatus()
	case "clearjob":
		a.poller.Clear()
		fmt.Println("Job cleared.")
	case "export":
		a.export(rest)
	case "setkey":
		a.setKey()
	case "pushkey":
		a.pushKey()
	case "delkey":
		vault.DeleteAPIKey(a.store)
		fmt.Println("Stored credential deleted.")
	case "lock":
		vault.Lock(a.store)
		fmt.Println("Locked. The password will be required on next start.")
	default:
		fmt.Printf("Unknown command %q. Type \"help\".\n", cmd)
	}
	a.persist()
}

// list renders the filtered table. A pending force-refresh signal from a
// finished job is consumed here, bypassing the cached snapshot exactly once.
func (a *app) list() {
	if sig, ok := cache.TakeRefresh(a.store); ok {
		fmt.Printf("Job %s finished; refreshing results...\n", sig.JobID)
		a.fetch()
	}

	visible := view.Apply(a.records, a.view, time.Now())
	a.sel.SyncVisible(models.Keys(visible))

	render.Tallies(os.Stdout, visible)
	render.Results(os.Stdout, visible, a.sel, a.view.ShowEvidence)
	if !a.fetched.IsZero() {
		fmt.Printf("Data as of %s.\n", a.fetched.Format("2006-01-02 15:04:05"))
	}
	if status, ok := a.poller.Status(); ok {
		render.JobProgress(os.Stdout, status)
	}
}

func (a *app) key(name string) {
	visible := view.Apply(a.records, a.view, time.Now())
	action := a.sel.HandleKey(browse.Key{Name: name}, models.Keys(visible), false)
	switch action {
	case browse.ActionFocusSearch:
		fmt.Println("Use: search <text>")
	case browse.ActionToggleEvidence:
		a.view.ShowEvidence = !a.view.ShowEvidence
	}
	a.list()
}

func (a *app) setSort(mode string) {
	switch mode {
	case "recent":
		a.view.SortMode = view.SortRecent
	case "alpha", "alphabetical":
		a.view.SortMode = view.SortAlphabetical
	case "elig", "eligibility":
		a.view.SortMode = view.SortEligibility
	default:
		fmt.Println("Use: sort recent|alpha|elig")
		return
	}
	a.list()
}

// setEligibility replaces the allow-set. "all" selects every label; "clear"
// empties the set, which means no restriction rather than no rows.
func (a *app) setEligibility(args []string) {
	switch {
	case len(args) == 0:
		fmt.Printf("Labels: %s\n", strings.Join(models.EligibilityOrder, ", "))
		fmt.Printf("Current: %s\n", strings.Join(a.view.Eligibility, ", "))
		return
	case args[0] == "all":
		a.view.Eligibility = append([]string(nil), models.EligibilityOrder...)
	case args[0] == "clear":
		a.view.Eligibility = nil
	default:
		joined := strings.Join(args, " ")
		var selected []string
		for _, part := range strings.Split(joined, ",") {
			part = strings.TrimSpace(part)
			if part == "" {
				continue
			}
			if models.EligibilityRank(part) == len(models.EligibilityOrder) {
				fmt.Printf("Unknown label %q.\n", part)
				return
			}
			selected = append(selected, part)
		}
		a.view.Eligibility = selected
	}
	a.list()
}

func (a *app) setColumnFilter(args []string) {
	if len(args) == 0 {
		for name, q := range a.view.ColumnFilters {
			if q != "" {
				fmt.Printf("%s: %q\n", name, q)
			}
		}
		return
	}
	name := args[0]
	found := false
	for _, n := range view.ColumnFilterNames() {
		if n == name {
			found = true
			break
		}
	}
	if !found {
		fmt.Printf("Unknown column %q. Available: %s\n", name, strings.Join(view.ColumnFilterNames(), ", "))
		return
	}
	if a.view.ColumnFilters == nil {
		a.view.ColumnFilters = map[string]string{}
	}
	a.view.ColumnFilters[name] = strings.Join(args[1:], " ")
	a.list()
}

// refresh asks the server to rebuild its results store, then re-fetches.
func (a *app) refresh() {
	ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
	defer cancel()
	total, err := a.client.RefreshResults(ctx)
	if err != nil {
		fmt.Printf("Refresh failed: %v\n", err)
		return
	}
	fmt.Printf("Server rebuilt results: %d records.\n", total)
	a.fetch()
	a.list()
}

func (a *app) stage(urls []string) {
	added := 0
	for _, u := range urls {
		if a.queue.Add(u) {
			added++
		}
	}
	a.queue.Save(a.store)
	fmt.Printf("Staged %d new URLs.\n", added)
	a.showQueue()
}

// pasteURLs reads free text until a lone "." and stages every URL found in
// it.
func (a *app) pasteURLs() {
	fmt.Println(`Paste text, then a line with only "." to finish:`)
	scanner := bufio.NewScanner(os.Stdin)
	scanner.Buffer(make([]byte, 0, 1024*1024), 1024*1024)
	var b strings.Builder
	for scanner.Scan() {
		line := scanner.Text()
		if strings.TrimSpace(line) == "." {
			break
		}
		b.WriteString(line)
		b.WriteByte('\n')
	}
	added := a.queue.AddText(b.String())
	a.queue.Save(a.store)
	fmt.Printf("Staged %d new URLs.\n", added)
	a.showQueue()
}

func (a *app) stageFile(path string) {
	data, err := os.ReadFile(path)
	if err != nil {
		fmt.Printf("Read %s: %v\n", path, err)
		return
	}
	added := a.queue.AddText(string(data))
	a.queue.Save(a.store)
	fmt.Printf("Staged %d new URLs from %s.\n", added, path)
	a.showQueue()
}

func (a *app) showQueue() {
	urls := a.queue.URLs()
	stats := a.queue.Stats()
	fmt.Printf("Queue: %d URLs across %d hosts.\n", stats.Total, stats.DistinctHosts)
	for _, u := range urls {
		fmt.Printf("  %s\n", u)
	}
}

func (a *app) unstage(urls []string) {
	for _, u := range urls {
		if !a.queue.Remove(u) {
			fmt.Printf("Not staged: %s\n", u)
		}
	}
	a.queue.Save(a.store)
}

// prepare classifies the staged queue without submitting anything.
func (a *app) prepare() {
	urls := a.queue.URLs()
	if len(urls) == 0 {
		fmt.Println("Queue is empty.")
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
	defer cancel()
	prep, err := a.client.Prepare(ctx, urls)
	if err != nil {
		fmt.Printf("Prepare failed: %v\n", err)
		return
	}
	a.lastPrep = prep
	a.havePrep = true

	fmt.Printf("New: %d, already processed: %d, duplicates in queue: %d\n",
		len(prep.ToScrape), len(prep.AlreadyProcessed), len(prep.DuplicatesInPayload))
	for _, u := range prep.AlreadyProcessed {
		fmt.Printf("  already processed: %s\n", u)
	}
	for _, u := range prep.DuplicatesInPayload {
		fmt.Printf("  duplicate: %s\n", u)
	}
	if len(prep.AlreadyProcessed) > 0 {
		fmt.Println(`Use "submit rescrape" to force re-scraping the processed ones.`)
	}
}

// submit sends the staged queue as a batch job and starts polling it. With
// the "rescrape" argument, URLs the last prepare flagged as already
// processed are submitted for re-scraping too.
func (a *app) submit(args []string) {
	urls := a.queue.URLs()
	if len(urls) == 0 {
		fmt.Println("Queue is empty.")
		return
	}

	var rescrape []string
	if len(args) > 0 && args[0] == "rescrape" {
		if !a.havePrep {
			fmt.Println(`Run "prepare" first so re-scrape targets are known.`)
			return
		}
		for _, raw := range a.lastPrep.AlreadyProcessed {
			rescrape = append(rescrape, scrape.RescrapeURL(raw, a.lastPrep))
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
	defer cancel()
	accepted, err := a.client.ScrapeBatch(ctx, urls, rescrape)
	if err != nil {
		fmt.Printf("Submit failed: %v\n", err)
		return
	}

	fmt.Printf("Job %s accepted: %d to scrape, %d already processed, %d duplicates.\n",
		accepted.JobID, len(accepted.ToScrape), len(accepted.AlreadyProcessed), len(accepted.DuplicatesInPayload))

	a.queue.Reset()
	a.queue.Save(a.store)
	a.havePrep = false
	a.poller.Start(accepted.JobID)
}

func (a *app) single(args []string) {
	if len(args) == 0 {
		fmt.Println("Use: single <url> [name]")
		return
	}
	name := strings.Join(args[1:], " ")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()
	record, err := a.client.ScrapeSingle(ctx, args[0], name)
	if err != nil {
		fmt.Printf("Scrape failed: %v\n", err)
		return
	}
	render.Detail(os.Stdout, record, a.view.ShowEvidence)
	a.fetch()
}

func (a *app) jobStatus() {
	status, ok := a.poller.Status()
	if !ok {
		fmt.Println("No job tracked.")
		return
	}
	render.JobProgress(os.Stdout, status)
}

func (a *app) export(path string) {
	if path == "" {
		fmt.Println("Use: export <path>")
		return
	}
	visible := view.Apply(a.records, a.view, time.Now())
	f, err := os.Create(path)
	if err != nil {
		fmt.Printf("Create %s: %v\n", path, err)
		return
	}
	defer f.Close()
	if err := render.ExportCSV(f, visible); err != nil {
		fmt.Printf("Export failed: %v\n", err)
		return
	}
	fmt.Printf("Exported %d records to %s.\n", len(visible), path)
}

// setKey seals an API credential under a passphrase, stores it locally, and
// pushes it to the server for the current session.
func (a *app) setKey() {
	key, err := readSecret("API key: ")
	if err != nil || key == "" {
		fmt.Println("No key entered.")
		return
	}
	pass, err := readSecret("Passphrase to seal it with: ")
	if err != nil || pass == "" {
		fmt.Println("No passphrase entered.")
		return
	}
	if err := vault.SaveAPIKey(a.store, pass, key); err != nil {
		fmt.Printf("Store credential: %v\n", err)
		return
	}
	a.pushKeyValue(key)
}

// pushKey unseals the stored credential and pushes it to the server.
func (a *app) pushKey() {
	pass, err := readSecret("Passphrase: ")
	if err != nil {
		return
	}
	key, err := vault.LoadAPIKey(a.store, pass)
	if errors.Is(err, vault.ErrNoCredential) {
		fmt.Println(`No stored credential. Use "setkey" first.`)
		return
	}
	if err != nil {
		fmt.Printf("Unseal credential: %v\n", err)
		return
	}
	a.pushKeyValue(key)
}

func (a *app) pushKeyValue(key string) {
	ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
	defer cancel()
	if err := a.client.UpdateOpenAIKey(ctx, key); err != nil {
		fmt.Printf("Push credential: %v\n", err)
		return
	}
	fmt.Println("Credential active on the server for this session.")
}

func printHelp() {
	fmt.Print(`Results
  list                 show the filtered results table
  search <text>        free-text search across every field
  sort recent|alpha|elig
  elig [all|clear|<labels,...>]
  col <name> <query>   per-column filter (see "cols")
  future | nonprofit   toggle deadline / applicant-type filters
  min <amount>         minimum funding, accepts 50000, 50k, 1.5m
  keyword <text>       funding-text keyword filter
  down | up | pin | expand | evidence
  fetch | refresh      re-fetch / server-side rebuild
  export <path>        write the current view as CSV

Scraping
  stage <url...> | paste | stagefile <path>
  queue | unstage <url> | clearqueue
  prepare | submit [rescrape] | single <url> [name]
  job | clearjob

Settings
  setkey | pushkey | delkey | lock
`)
}
