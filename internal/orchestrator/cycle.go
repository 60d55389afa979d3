package orchestrator

import (
	"context"
	"time"

	"go.uber.org/zap"
)

const (
	StepScraping      = "scraping"
	StepMatching      = "matching"
	StepNotifications = "notifications"
)

// step is one stage of the full cycle.
type step struct {
	name string
	run  func(ctx context.Context) error
}

type CycleResults struct {
	Scraping      *ScrapeResult       `json:"scraping"`
	Matching      *MatchResults       `json:"matching"`
	Notifications *NotificationResult `json:"notifications"`
}

type CycleResult struct {
	Message   string       `json:"message"`
	Results   CycleResults `json:"results"`
	Timestamp time.Time    `json:"timestamp"`
}

// RunFullCycle runs scrape, match and notify in order. A failing step stops the
// cycle and its error is returned as is. Earlier steps are not undone.
func (o *Orchestrator) RunFullCycle(ctx context.Context, params ScrapeParams) (*CycleResult, error) {
	o.logger.Info("starting full job matching cycle")

	var results CycleResults
	steps := []step{
		{name: StepScraping, run: func(ctx context.Context) error {
			r, err := o.ScrapeJobs(ctx, params)
			results.Scraping = r
			return err
		}},
		{name: StepMatching, run: func(ctx context.Context) error {
			r, err := o.FindMatches(ctx)
			results.Matching = r
			return err
		}},
		{name: StepNotifications, run: func(ctx context.Context) error {
			r, err := o.SendNotifications(ctx)
			results.Notifications = r
			return err
		}},
	}

	for i, s := range steps {
		started := time.Now()
		if err := s.run(ctx); err != nil {
			o.logger.Error("full cycle failed",
				zap.String("step", s.name),
				zap.Int("completed_steps", i),
				zap.Error(err),
			)
			return nil, err
		}

		o.logger.Info("cycle step",
			zap.String("name", s.name),
			zap.Duration("took", time.Since(started)),
		)
	}

	return &CycleResult{
		Message:   "Full cycle completed successfully",
		Results:   results,
		Timestamp: o.now(),
	}, nil
}
