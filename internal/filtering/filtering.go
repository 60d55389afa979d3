// Package filtering drops scraped listings the recruiter never wants to store.
package filtering

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/spigell/airecruiter/internal/models"
)

// Filter is a single filtering step applied to scraped listings.
type Filter interface {
	Name() string
	Apply(ctx context.Context, listings []models.JobListing) ([]models.JobListing, Step, error)
}

// Step describes the result of executing a filtering step.
type Step struct {
	Initial int
	Dropped int
	Left    int
}

type Config struct {
	Companies   []string `mapstructure:"companies"`
	Keywords    []string `mapstructure:"keywords"`
	ExcludeFile string   `mapstructure:"exclude-file"`
}

// FromConfig returns the filters enabled by cfg, in the order they run.
func FromConfig(cfg Config) []Filter {
	var steps []Filter
	if len(cfg.Companies) > 0 {
		steps = append(steps, NewCompanies(cfg.Companies))
	}
	if len(cfg.Keywords) > 0 {
		steps = append(steps, NewKeywords(cfg.Keywords))
	}
	if cfg.ExcludeFile != "" {
		steps = append(steps, NewExcludeFile(cfg.ExcludeFile))
	}
	return steps
}

// Run executes the supplied filters sequentially.
func Run(ctx context.Context, logger *zap.Logger, steps []Filter, listings []models.JobListing) ([]models.JobListing, error) {
	for _, step := range steps {
		next, info, err := step.Apply(ctx, listings)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", step.Name(), err)
		}

		if logger != nil && info.Dropped > 0 {
			logger.Info("filter step",
				zap.String("name", step.Name()),
				zap.Int("initial", info.Initial),
				zap.Int("dropped", info.Dropped),
				zap.Int("left", info.Left),
			)
		}

		listings = next
	}

	return listings, nil
}

// keep returns the listings for which pred is true and the step summary.
func keep(listings []models.JobListing, pred func(models.JobListing) bool) ([]models.JobListing, Step) {
	out := make([]models.JobListing, 0, len(listings))
	for _, l := range listings {
		if pred(l) {
			out = append(out, l)
		}
	}
	return out, Step{Initial: len(listings), Dropped: len(listings) - len(out), Left: len(out)}
}
