package scheduler

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/spigell/airecruiter/internal/orchestrator"
)

type fakeCycler struct {
	calls chan orchestrator.ScrapeParams
	err   error
}

func (f *fakeCycler) RunFullCycle(_ context.Context, params orchestrator.ScrapeParams) (*orchestrator.CycleResult, error) {
	f.calls <- params
	if f.err != nil {
		return nil, f.err
	}
	return &orchestrator.CycleResult{
		Message: "Full cycle completed successfully",
		Results: orchestrator.CycleResults{
			Scraping: &orchestrator.ScrapeResult{Count: 2},
		},
	}, nil
}

type fakePruner struct {
	days int
	err  error
}

func (f *fakePruner) DeleteOldJobListings(_ context.Context, days int) (int64, error) {
	f.days = days
	return 5, f.err
}

func TestStartRegistersJobs(t *testing.T) {
	s := New(Config{Cycle: "@every 1h", Prune: "0 3 * * *"}, &fakeCycler{}, &fakePruner{}, nil)
	if err := s.Start(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer s.Stop()

	if got := s.Jobs(); got != 2 {
		t.Fatalf("expected 2 jobs, got %d", got)
	}
}

func TestStartSkipsEmptySpecs(t *testing.T) {
	s := New(Config{Cycle: "  "}, &fakeCycler{}, nil, nil)
	if err := s.Start(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer s.Stop()

	if got := s.Jobs(); got != 0 {
		t.Fatalf("expected no jobs, got %d", got)
	}
}

func TestStartRejectsBadSpec(t *testing.T) {
	s := New(Config{Cycle: "every now and then"}, &fakeCycler{}, nil, nil)
	if err := s.Start(context.Background()); err == nil {
		t.Fatal("expected error for malformed spec")
	}
}

func TestRunOnStart(t *testing.T) {
	cycler := &fakeCycler{calls: make(chan orchestrator.ScrapeParams, 1)}
	params := orchestrator.ScrapeParams{Query: "golang", MaxJobs: 3}

	s := New(Config{RunOnStart: true, Params: params}, cycler, nil, nil)
	if err := s.Start(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer s.Stop()

	select {
	case got := <-cycler.calls:
		if got != params {
			t.Fatalf("expected %+v, got %+v", params, got)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("cycle did not run on start")
	}
}

type blockingCycler struct {
	started  chan struct{}
	release  chan struct{}
	runs     atomic.Int32
	finished atomic.Bool
}

func (b *blockingCycler) RunFullCycle(context.Context, orchestrator.ScrapeParams) (*orchestrator.CycleResult, error) {
	b.runs.Add(1)
	close(b.started)
	<-b.release
	b.finished.Store(true)
	return &orchestrator.CycleResult{Message: "Full cycle completed successfully"}, nil
}

func TestStopWaitsForRunOnStartCycle(t *testing.T) {
	cycler := &blockingCycler{started: make(chan struct{}), release: make(chan struct{})}

	s := New(Config{RunOnStart: true}, cycler, nil, nil)
	if err := s.Start(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	select {
	case <-cycler.started:
	case <-time.After(2 * time.Second):
		t.Fatal("cycle did not run on start")
	}

	stopped := make(chan struct{})
	go func() {
		s.Stop()
		close(stopped)
	}()

	select {
	case <-stopped:
		t.Fatal("Stop returned while the cycle was still running")
	case <-time.After(100 * time.Millisecond):
	}

	close(cycler.release)

	select {
	case <-stopped:
	case <-time.After(2 * time.Second):
		t.Fatal("Stop did not return after the cycle finished")
	}
	if !cycler.finished.Load() {
		t.Fatal("expected the cycle to finish before Stop returned")
	}
}

func TestRunOnStartCycleIsNotOverlapped(t *testing.T) {
	cycler := &blockingCycler{started: make(chan struct{}), release: make(chan struct{})}

	s := New(Config{RunOnStart: true}, cycler, nil, nil)
	if err := s.Start(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer s.Stop()
	defer close(cycler.release)

	select {
	case <-cycler.started:
	case <-time.After(2 * time.Second):
		t.Fatal("cycle did not run on start")
	}

	// A scheduled tick shares the wrapped job, so it is skipped while the
	// startup cycle runs.
	s.cycleJob.Run()

	if got := cycler.runs.Load(); got != 1 {
		t.Fatalf("expected 1 run, got %d", got)
	}
}

func TestRunCycleLogsFailure(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	cycler := &fakeCycler{calls: make(chan orchestrator.ScrapeParams, 1), err: errors.New("Scraper not initialized")}

	s := New(Config{JobTimeout: time.Second}, cycler, nil, zap.New(core))
	s.runCycle(context.Background())

	if logs.FilterMessage("scheduled full cycle failed").Len() != 1 {
		t.Fatalf("expected failure to be logged, got %v", logs.All())
	}
}

func TestRunCycleLogsCounts(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	cycler := &fakeCycler{calls: make(chan orchestrator.ScrapeParams, 1)}

	s := New(Config{}, cycler, nil, zap.New(core))
	s.runCycle(context.Background())

	finished := logs.FilterMessage("scheduled full cycle finished").All()
	if len(finished) != 1 {
		t.Fatalf("expected one finished entry, got %v", logs.All())
	}
	if got := finished[0].ContextMap()["scraped"]; got != int64(2) {
		t.Fatalf("expected scraped=2, got %v", got)
	}
}

func TestRunPrune(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	pruner := &fakePruner{}

	s := New(Config{PruneDays: 14}, nil, pruner, zap.New(core))
	s.runPrune(context.Background())

	if pruner.days != 14 {
		t.Fatalf("expected 14 days, got %d", pruner.days)
	}
	if logs.FilterMessage("scheduled prune finished").Len() != 1 {
		t.Fatalf("expected prune to be logged, got %v", logs.All())
	}

	pruner.err = errors.New("boom")
	s.runPrune(context.Background())
	if logs.FilterMessage("scheduled prune failed").Len() != 1 {
		t.Fatalf("expected prune failure to be logged")
	}
}
