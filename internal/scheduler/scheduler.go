// Package scheduler runs the full cycle and the listings prune on cron specs.
package scheduler

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/spigell/airecruiter/internal/orchestrator"
)

// Config holds cron specs such as "@every 6h". An empty spec disables its job.
type Config struct {
	Cycle      string                    `mapstructure:"cycle"`
	Prune      string                    `mapstructure:"prune"`
	PruneDays  int                       `mapstructure:"prune-days"`
	Params     orchestrator.ScrapeParams `mapstructure:"params"`
	RunOnStart bool                      `mapstructure:"run-on-start"`
	JobTimeout time.Duration             `mapstructure:"job-timeout"`
}

type Cycler interface {
	RunFullCycle(ctx context.Context, params orchestrator.ScrapeParams) (*orchestrator.CycleResult, error)
}

type Pruner interface {
	DeleteOldJobListings(ctx context.Context, days int) (int64, error)
}

// Scheduler wraps robfig/cron. Jobs never overlap with themselves, including
// the cycle started by RunOnStart.
type Scheduler struct {
	cron   *cron.Cron
	chain  cron.Chain
	cfg    Config
	cycler Cycler
	pruner Pruner
	logger *zap.Logger

	cycleJob cron.Job
	wg       sync.WaitGroup
}

func New(cfg Config, cycler Cycler, pruner Pruner, logger *zap.Logger) *Scheduler {
	if logger == nil {
		logger = zap.NewNop()
	}

	cl := cronLogger{logger: logger}

	return &Scheduler{
		cron:   cron.New(cron.WithLogger(cl)),
		chain:  cron.NewChain(cron.Recover(cl), cron.SkipIfStillRunning(cl)),
		cfg:    cfg,
		cycler: cycler,
		pruner: pruner,
		logger: logger,
	}
}

// Start registers the configured jobs and starts the cron loop. ctx bounds
// every job run; cancel it together with Stop.
func (s *Scheduler) Start(ctx context.Context) error {
	if s.cycler != nil {
		s.cycleJob = s.chain.Then(cron.FuncJob(func() { s.runCycle(ctx) }))
	}

	if spec := strings.TrimSpace(s.cfg.Cycle); spec != "" && s.cycleJob != nil {
		if _, err := s.cron.AddJob(spec, s.cycleJob); err != nil {
			return fmt.Errorf("schedule full cycle %q: %w", spec, err)
		}
		s.logger.Info("scheduled full cycle", zap.String("spec", spec))
	}

	if spec := strings.TrimSpace(s.cfg.Prune); spec != "" && s.pruner != nil {
		if _, err := s.cron.AddJob(spec, s.chain.Then(cron.FuncJob(func() { s.runPrune(ctx) }))); err != nil {
			return fmt.Errorf("schedule prune %q: %w", spec, err)
		}
		s.logger.Info("scheduled prune", zap.String("spec", spec), zap.Int("days", s.cfg.PruneDays))
	}

	s.cron.Start()

	if s.cfg.RunOnStart && s.cycleJob != nil {
		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			s.cycleJob.Run()
		}()
	}

	return nil
}

// Stop stops the cron loop and waits for running jobs to finish, the cycle
// started on start included.
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
	s.wg.Wait()
	s.logger.Info("scheduler stopped")
}

// Jobs reports how many jobs are registered.
func (s *Scheduler) Jobs() int {
	return len(s.cron.Entries())
}

func (s *Scheduler) jobContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.cfg.JobTimeout > 0 {
		return context.WithTimeout(ctx, s.cfg.JobTimeout)
	}
	return context.WithCancel(ctx)
}

func (s *Scheduler) runCycle(ctx context.Context) {
	ctx, cancel := s.jobContext(ctx)
	defer cancel()

	s.logger.Info("scheduled full cycle started")

	res, err := s.cycler.RunFullCycle(ctx, s.cfg.Params)
	if err != nil {
		s.logger.Error("scheduled full cycle failed", zap.Error(err))
		return
	}

	fields := []zap.Field{zap.String("message", res.Message)}
	if r := res.Results.Scraping; r != nil {
		fields = append(fields, zap.Int("scraped", r.Count))
	}
	if r := res.Results.Matching; r != nil {
		fields = append(fields, zap.Int("matches", len(r.Matches)))
	}
	if r := res.Results.Notifications; r != nil {
		fields = append(fields, zap.Int("notified", r.Sent))
	}
	s.logger.Info("scheduled full cycle finished", fields...)
}

func (s *Scheduler) runPrune(ctx context.Context) {
	ctx, cancel := s.jobContext(ctx)
	defer cancel()

	deleted, err := s.pruner.DeleteOldJobListings(ctx, s.cfg.PruneDays)
	if err != nil {
		s.logger.Error("scheduled prune failed", zap.Error(err))
		return
	}
	s.logger.Info("scheduled prune finished", zap.Int64("deleted", deleted))
}

// cronLogger adapts zap to cron.Logger.
type cronLogger struct {
	logger *zap.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...any) {
	l.logger.Debug(msg, zap.Any("details", keysAndValues))
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...any) {
	l.logger.Error(msg, zap.Error(err), zap.Any("details", keysAndValues))
}
