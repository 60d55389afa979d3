package storage

import (
	"context"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap/zaptest"

	"github.com/spigell/airecruiter/internal/apperr"
	"github.com/spigell/airecruiter/internal/models"
	"github.com/spigell/airecruiter/internal/orchestrator"
)

const testURIEnv = "AIRECRUITER_TEST_MONGODB_URI"

func TestObjectID(t *testing.T) {
	oid := primitive.NewObjectID()

	tests := []struct {
		name string
		in   string
		ok   bool
	}{
		{name: "hex id", in: oid.Hex(), ok: true},
		{name: "padded hex id", in: "  " + oid.Hex() + " ", ok: true},
		{name: "too short", in: "abc", ok: false},
		{name: "not hex", in: strings.Repeat("z", 24), ok: false},
		{name: "empty", in: "", ok: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := objectID(tt.in)
			if ok != tt.ok {
				t.Fatalf("expected ok=%v, got %v", tt.ok, ok)
			}
			if ok && got != oid {
				t.Fatalf("expected %s, got %s", oid.Hex(), got.Hex())
			}
		})
	}
}

func TestIDString(t *testing.T) {
	oid := primitive.NewObjectID()
	if got := idString(oid); got != oid.Hex() {
		t.Fatalf("expected hex id, got %q", got)
	}
	if got := idString("custom"); got != "custom" {
		t.Fatalf("expected string id to pass through, got %q", got)
	}
	if got := idString(42); got != "42" {
		t.Fatalf("expected formatted id, got %q", got)
	}
}

func TestConnectRequiresURI(t *testing.T) {
	_, err := Connect(context.Background(), Config{URI: "  "}, nil)
	if err == nil {
		t.Fatal("expected error for empty uri")
	}
	if !apperr.Is(err, apperr.KindConfiguration) {
		t.Fatalf("expected configuration error, got %s", apperr.KindOf(err))
	}
	if !strings.Contains(err.Error(), "MONGODB_URI") {
		t.Fatalf("expected error to name MONGODB_URI, got %q", err.Error())
	}
}

func TestCloseNilGateway(t *testing.T) {
	var g *Gateway
	if err := g.Close(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if g.Connected() {
		t.Fatal("nil gateway must not report connected")
	}
}

// newTestGateway connects to a scratch database that is dropped after the test.
func newTestGateway(t *testing.T) *Gateway {
	t.Helper()

	uri := os.Getenv(testURIEnv)
	if uri == "" {
		t.Skipf("%s not set", testURIEnv)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	dbName := "airecruiter_test_" + strings.ReplaceAll(uuid.NewString(), "-", "")[:12]
	g, err := Connect(ctx, Config{URI: uri, Database: dbName}, zaptest.NewLogger(t))
	if err != nil {
		t.Fatalf("connect: %v", err)
	}

	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = g.db.Drop(ctx)
		_ = g.Close(ctx)
	})

	return g
}

func TestGatewaySaveAndReadBack(t *testing.T) {
	g := newTestGateway(t)
	ctx := context.Background()

	bench := &models.BenchCandidate{Name: "Asha Rao", Email: "asha@example.com", Skills: []string{"go", "k8s"}}
	benchID, err := g.SaveBenchCandidate(ctx, bench)
	if err != nil {
		t.Fatalf("save bench candidate: %v", err)
	}
	if benchID == "" || bench.ID != benchID {
		t.Fatalf("expected id to be set on record, got %q / %q", benchID, bench.ID)
	}

	got := g.GetBenchCandidates(ctx)
	if len(got) != 1 {
		t.Fatalf("expected 1 bench candidate, got %d", len(got))
	}
	if got[0].ID != benchID || got[0].Status != models.BenchStatusAvailable {
		t.Fatalf("unexpected record: %+v", got[0])
	}

	if jobs := g.GetOpenJobs(ctx); jobs == nil || len(jobs) != 0 {
		t.Fatalf("expected empty non-nil open jobs, got %#v", jobs)
	}

	if _, err := g.SaveOpenJob(ctx, &models.OpenJob{}); !apperr.Is(err, apperr.KindValidation) {
		t.Fatalf("expected validation error for empty job, got %v", err)
	}
}

func TestGatewayJobListingsOrderAndPrune(t *testing.T) {
	g := newTestGateway(t)
	ctx := context.Background()

	base := time.Now().UTC().Truncate(time.Millisecond)
	for i, age := range []time.Duration{40 * 24 * time.Hour, time.Hour, 0} {
		listing := &models.JobListing{
			Title:     "Listing",
			Company:   "Acme",
			Location:  string(rune('a' + i)),
			CreatedAt: base.Add(-age),
		}
		if _, err := g.SaveJobListing(ctx, listing); err != nil {
			t.Fatalf("save listing %d: %v", i, err)
		}
	}

	listings := g.GetJobListings(ctx, 2)
	if len(listings) != 2 {
		t.Fatalf("expected limit to apply, got %d", len(listings))
	}
	if !listings[0].CreatedAt.After(listings[1].CreatedAt) {
		t.Fatalf("expected newest first, got %v then %v", listings[0].CreatedAt, listings[1].CreatedAt)
	}

	deleted, err := g.DeleteOldJobListings(ctx, 30)
	if err != nil {
		t.Fatalf("delete: %v", err)
	}
	if deleted != 1 {
		t.Fatalf("expected 1 deleted listing, got %d", deleted)
	}
	if n := len(g.GetJobListings(ctx, 0)); n != 2 {
		t.Fatalf("expected 2 listings to remain, got %d", n)
	}

	deleted, err = g.DeleteOldJobListings(ctx, 30)
	if err != nil {
		t.Fatalf("second delete: %v", err)
	}
	if deleted != 0 {
		t.Fatalf("expected second delete to remove nothing, got %d", deleted)
	}
}

func TestGatewayMarkMatchNotifiedIsOneWay(t *testing.T) {
	g := newTestGateway(t)
	ctx := context.Background()

	match := &models.MatchResult{CandidateID: "c1", JobID: "j1", OverallScore: 0.82}
	id, err := g.SaveMatchResult(ctx, match)
	if err != nil {
		t.Fatalf("save match: %v", err)
	}

	if recent := g.GetRecentMatches(ctx, 24); len(recent) != 1 {
		t.Fatalf("expected fresh match to be recent, got %d", len(recent))
	}

	changed, err := g.MarkMatchNotified(ctx, id)
	if err != nil || !changed {
		t.Fatalf("expected first mark to change record, got %v, %v", changed, err)
	}

	changed, err = g.MarkMatchNotified(ctx, id)
	if err != nil || changed {
		t.Fatalf("expected second mark to be a no-op, got %v, %v", changed, err)
	}

	changed, err = g.MarkMatchNotified(ctx, "not-an-id")
	if err != nil || changed {
		t.Fatalf("expected malformed id to report false, got %v, %v", changed, err)
	}

	changed, err = g.MarkMatchNotified(ctx, primitive.NewObjectID().Hex())
	if err != nil || changed {
		t.Fatalf("expected unknown id to report false, got %v, %v", changed, err)
	}

	if recent := g.GetRecentMatches(ctx, 24); len(recent) != 0 {
		t.Fatalf("notified match must not be recent, got %d", len(recent))
	}

	byCandidate := g.GetMatchesByCandidate(ctx, "c1")
	if len(byCandidate) != 1 || !byCandidate[0].Notified || byCandidate[0].NotifiedAt == nil {
		t.Fatalf("expected notified match with timestamp, got %+v", byCandidate)
	}

	stats := g.GetPlatformStats(ctx)
	if stats[StatTotalMatches] != 1 || stats[StatNotifiedMatches] != 1 || stats[StatRecentMatches] != 1 {
		t.Fatalf("unexpected stats: %v", stats)
	}
}

func TestGatewayUpdateStatus(t *testing.T) {
	g := newTestGateway(t)
	ctx := context.Background()

	id, err := g.SaveOpenJob(ctx, &models.OpenJob{Title: "SRE"})
	if err != nil {
		t.Fatalf("save job: %v", err)
	}

	changed, err := g.UpdateJobStatus(ctx, id, "closed")
	if err != nil || !changed {
		t.Fatalf("expected status update, got %v, %v", changed, err)
	}

	changed, err = g.UpdateJobStatus(ctx, primitive.NewObjectID().Hex(), "closed")
	if err != nil || changed {
		t.Fatalf("expected unknown id to report false, got %v, %v", changed, err)
	}

	if _, err := g.UpdateCandidateStatus(ctx, id, " "); !apperr.Is(err, apperr.KindValidation) {
		t.Fatalf("expected validation error for blank status, got %v", err)
	}

	jobs := g.GetOpenJobs(ctx)
	if len(jobs) != 1 || jobs[0].Status != "closed" {
		t.Fatalf("expected closed job, got %+v", jobs)
	}
}

type threeListingScraper struct{}

func (threeListingScraper) Scrape(context.Context, string, string, int) ([]models.JobListing, error) {
	return []models.JobListing{
		{Title: "Go Developer", Company: "Acme"},
		{Title: "SRE", Company: "Globex"},
		{Title: "Backend Engineer", Company: "Initech"},
	}, nil
}

func TestGatewayScrapeRaisesListingStatByThree(t *testing.T) {
	g := newTestGateway(t)
	ctx := context.Background()

	if _, err := g.SaveJobListing(ctx, &models.JobListing{Title: "Existing", Company: "Acme"}); err != nil {
		t.Fatalf("seed listing: %v", err)
	}
	before := g.GetPlatformStats(ctx)[StatJobListings]

	o := orchestrator.New(g, threeListingScraper{}, nil, nil, zaptest.NewLogger(t))
	if _, err := o.ScrapeJobs(ctx, orchestrator.ScrapeParams{}); err != nil {
		t.Fatalf("scrape jobs: %v", err)
	}

	after := g.GetPlatformStats(ctx)[StatJobListings]
	if after-before != 3 {
		t.Fatalf("expected job_listings to grow by 3, got %d -> %d", before, after)
	}
}
