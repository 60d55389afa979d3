package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/spigell/airecruiter/internal/apperr"
	"github.com/spigell/airecruiter/internal/models"
)

type memStore struct {
	listings   []models.JobListing
	candidates []models.BenchCandidate
	jobs       []models.OpenJob
	matches    []models.MatchResult

	// failSaveAt is the 1-based listing save that fails; 0 means never.
	failSaveAt int
	saves      int
}

func (m *memStore) SaveJobListing(_ context.Context, job *models.JobListing) (string, error) {
	m.saves++
	if m.failSaveAt > 0 && m.saves == m.failSaveAt {
		return "", apperr.Storage("insert into job_listings", errors.New("disk full"))
	}
	job.ID = fmt.Sprintf("l%d", len(m.listings)+1)
	m.listings = append(m.listings, *job)
	return job.ID, nil
}

func (m *memStore) SaveMatchResult(_ context.Context, match *models.MatchResult) (string, error) {
	match.ID = fmt.Sprintf("m%d", len(m.matches)+1)
	m.matches = append(m.matches, *match)
	return match.ID, nil
}

// listingCount mirrors the job_listings counter of the platform stats.
func (m *memStore) listingCount() int {
	return len(m.listings)
}

func (m *memStore) GetBenchCandidates(context.Context) []models.BenchCandidate {
	return m.candidates
}

func (m *memStore) GetOpenJobs(context.Context) []models.OpenJob {
	return m.jobs
}

func (m *memStore) GetRecentMatches(context.Context, int) []models.MatchResult {
	var out []models.MatchResult
	for _, match := range m.matches {
		if !match.Notified {
			out = append(out, match)
		}
	}
	return out
}

func (m *memStore) MarkMatchNotified(_ context.Context, id string) (bool, error) {
	for i := range m.matches {
		if m.matches[i].ID == id && !m.matches[i].Notified {
			m.matches[i].Notified = true
			return true, nil
		}
	}
	return false, nil
}

type fakeScraper struct {
	jobs []models.JobListing
	err  error
	args []any
}

func (f *fakeScraper) Scrape(_ context.Context, query, location string, maxJobs int) ([]models.JobListing, error) {
	f.args = []any{query, location, maxJobs}
	return f.jobs, f.err
}

type fakeMatcher struct {
	matches []models.MatchResult
	err     error
	calls   int
}

func (f *fakeMatcher) FindMatches(context.Context, []models.BenchCandidate, []models.OpenJob) ([]models.MatchResult, error) {
	f.calls++
	return f.matches, f.err
}

type fakeNotifier struct {
	results map[string]bool
	errs    map[string]error
	calls   int
}

func (f *fakeNotifier) SendMatchNotification(_ context.Context, match models.MatchResult) (bool, error) {
	f.calls++
	if err := f.errs[match.ID]; err != nil {
		return false, err
	}
	if ok, found := f.results[match.ID]; found {
		return ok, nil
	}
	return true, nil
}

func threeListings() []models.JobListing {
	return []models.JobListing{
		{Title: "Go Developer", Company: "Acme"},
		{Title: "SRE", Company: "Globex"},
		{Title: "Backend Engineer", Company: "Initech"},
	}
}

func TestScrapeJobsPersistsEveryListing(t *testing.T) {
	store := &memStore{}
	scraper := &fakeScraper{jobs: threeListings()}
	o := New(store, scraper, nil, nil, zap.NewNop())

	res, err := o.ScrapeJobs(context.Background(), ScrapeParams{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if res.Count != 3 || len(store.listings) != 3 {
		t.Fatalf("expected 3 saved listings, got count=%d saved=%d", res.Count, len(store.listings))
	}
	if res.Message != "Successfully scraped 3 jobs" {
		t.Fatalf("unexpected message: %q", res.Message)
	}
	if res.Jobs[0].ID != "l1" {
		t.Fatalf("expected returned jobs to carry ids, got %q", res.Jobs[0].ID)
	}
	if scraper.args[0] != DefaultQuery || scraper.args[1] != DefaultLocation || scraper.args[2] != DefaultMaxJobs {
		t.Fatalf("expected defaults, got %v", scraper.args)
	}
}

func TestScrapeJobsGrowsListingCountByThree(t *testing.T) {
	store := &memStore{listings: []models.JobListing{{ID: "l0", Title: "Existing", Company: "Acme"}}}
	before := store.listingCount()

	o := New(store, &fakeScraper{jobs: threeListings()}, nil, nil, nil)
	if _, err := o.ScrapeJobs(context.Background(), ScrapeParams{}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if got := store.listingCount() - before; got != 3 {
		t.Fatalf("expected listing count to grow by exactly 3, got %d", got)
	}
}

func TestScrapeJobsStopsAtFirstFailedSave(t *testing.T) {
	store := &memStore{failSaveAt: 2}
	o := New(store, &fakeScraper{jobs: threeListings()}, nil, nil, nil)

	_, err := o.ScrapeJobs(context.Background(), ScrapeParams{Query: "go"})
	if !apperr.Is(err, apperr.KindStorage) {
		t.Fatalf("expected storage error, got %v", err)
	}
	if len(store.listings) != 1 || store.saves != 2 {
		t.Fatalf("expected first listing kept and third never attempted, got %d saved after %d attempts", len(store.listings), store.saves)
	}
}

func TestScrapeJobsNotInitialized(t *testing.T) {
	_, err := New(&memStore{}, nil, nil, nil, nil).ScrapeJobs(context.Background(), ScrapeParams{})
	if !apperr.Is(err, apperr.KindConfiguration) || err.Error() != "scrape jobs: Scraper not initialized" {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestScrapeJobsScraperError(t *testing.T) {
	scrapeErr := apperr.Collaborator("scrape jobs", errors.New("blocked"))
	_, err := New(&memStore{}, &fakeScraper{err: scrapeErr}, nil, nil, nil).ScrapeJobs(context.Background(), ScrapeParams{})
	if !errors.Is(err, scrapeErr) {
		t.Fatalf("expected scraper error to pass through, got %v", err)
	}
}

func TestFindMatchesEmptySets(t *testing.T) {
	tests := []struct {
		name    string
		store   *memStore
		message string
	}{
		{name: "no candidates", store: &memStore{jobs: []models.OpenJob{{ID: "j1", Title: "Go"}}}, message: "No bench candidates found"},
		{name: "no jobs", store: &memStore{candidates: []models.BenchCandidate{{ID: "c1", Name: "Asha"}}}, message: "No open jobs found"},
		{name: "nothing", store: &memStore{}, message: "No bench candidates found"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			matcher := &fakeMatcher{}
			res, err := New(tt.store, nil, matcher, nil, nil).FindMatches(context.Background())
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if res.Message != tt.message {
				t.Fatalf("expected %q, got %q", tt.message, res.Message)
			}
			if res.Matches == nil || len(res.Matches) != 0 {
				t.Fatalf("expected empty non-nil matches, got %#v", res.Matches)
			}
			if matcher.calls != 0 || len(tt.store.matches) != 0 {
				t.Fatal("nothing must be matched or written")
			}
		})
	}
}

func TestMatchThenNotifyScenario(t *testing.T) {
	store := &memStore{
		candidates: []models.BenchCandidate{{ID: "c1", Name: "Asha"}, {ID: "c2", Name: "Ravi"}},
		jobs:       []models.OpenJob{{ID: "j1", Title: "Go Developer"}},
	}
	matcher := &fakeMatcher{matches: []models.MatchResult{{CandidateID: "c1", JobID: "j1", OverallScore: 0.82}}}
	notifier := &fakeNotifier{}
	o := New(store, nil, matcher, notifier, nil)

	matched, err := o.FindMatches(context.Background())
	if err != nil {
		t.Fatalf("find matches: %v", err)
	}
	if len(matched.Matches) != 1 || matched.Matches[0].OverallScore != 0.82 {
		t.Fatalf("expected match returned unmodified, got %+v", matched.Matches)
	}
	if matched.Message != "Found 1 matches" || len(store.matches) != 1 {
		t.Fatalf("expected match to be persisted, got %q / %d", matched.Message, len(store.matches))
	}

	sent, err := o.SendNotifications(context.Background())
	if err != nil {
		t.Fatalf("send notifications: %v", err)
	}
	if sent.Sent != 1 || sent.TotalMatches != 1 {
		t.Fatalf("expected sent=1 total_matches=1, got %+v", sent)
	}
	if !store.matches[0].Notified {
		t.Fatal("expected match to be marked notified")
	}

	again, err := o.SendNotifications(context.Background())
	if err != nil {
		t.Fatalf("second send: %v", err)
	}
	if again.Message != "No recent matches found" || again.Sent != 0 || again.TotalMatches != 0 {
		t.Fatalf("expected nothing left to notify, got %+v", again)
	}
}

func TestSendNotificationsSkipsFailures(t *testing.T) {
	store := &memStore{matches: []models.MatchResult{
		{ID: "m1", CandidateID: "c1", JobID: "j1"},
		{ID: "m2", CandidateID: "c2", JobID: "j1"},
		{ID: "m3", CandidateID: "c3", JobID: "j1"},
	}}
	notifier := &fakeNotifier{
		errs:    map[string]error{"m1": errors.New("smtp down")},
		results: map[string]bool{"m2": false},
	}

	core, logs := observer.New(zap.ErrorLevel)
	o := New(store, nil, nil, notifier, zap.New(core))

	res, err := o.SendNotifications(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Sent != 1 || res.TotalMatches != 3 || notifier.calls != 3 {
		t.Fatalf("unexpected result: %+v after %d calls", res, notifier.calls)
	}
	if store.matches[0].Notified || store.matches[1].Notified || !store.matches[2].Notified {
		t.Fatalf("only the delivered match may be marked: %+v", store.matches)
	}
	if logs.FilterMessage("failed to send notification").Len() != 1 {
		t.Fatalf("expected the failure to be logged, got %v", logs.All())
	}
}

func TestRunFullCycle(t *testing.T) {
	store := &memStore{
		candidates: []models.BenchCandidate{{ID: "c1", Name: "Asha"}},
		jobs:       []models.OpenJob{{ID: "j1", Title: "Go Developer"}},
	}
	o := New(store,
		&fakeScraper{jobs: threeListings()},
		&fakeMatcher{matches: []models.MatchResult{{CandidateID: "c1", JobID: "j1", OverallScore: 0.9}}},
		&fakeNotifier{},
		nil,
	)

	res, err := o.RunFullCycle(context.Background(), ScrapeParams{Query: "golang", MaxJobs: 3})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Message != "Full cycle completed successfully" {
		t.Fatalf("unexpected message: %q", res.Message)
	}
	if res.Results.Scraping.Count != 3 || len(res.Results.Matching.Matches) != 1 || res.Results.Notifications.Sent != 1 {
		t.Fatalf("unexpected step results: %+v", res.Results)
	}
}

func TestRunFullCycleStopsWithoutRollback(t *testing.T) {
	store := &memStore{
		candidates: []models.BenchCandidate{{ID: "c1", Name: "Asha"}},
		jobs:       []models.OpenJob{{ID: "j1", Title: "Go Developer"}},
	}
	matchErr := apperr.Collaborator("find matches", errors.New("model unavailable"))
	notifier := &fakeNotifier{}
	o := New(store, &fakeScraper{jobs: threeListings()}, &fakeMatcher{err: matchErr}, notifier, nil)

	_, err := o.RunFullCycle(context.Background(), ScrapeParams{})
	if !errors.Is(err, matchErr) {
		t.Fatalf("expected the matching error itself, got %v", err)
	}
	if len(store.listings) != 3 {
		t.Fatalf("scraped listings must stay persisted, got %d", len(store.listings))
	}
	if notifier.calls != 0 {
		t.Fatal("notifications must not run after a failed step")
	}
}
