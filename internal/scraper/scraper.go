// Package scraper collects job listings from the configured job boards.
package scraper

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/spigell/airecruiter/internal/apperr"
	"github.com/spigell/airecruiter/internal/filtering"
	"github.com/spigell/airecruiter/internal/models"
)

// Source is one job board.
type Source interface {
	Name() string
	// Fetch returns at most limit listings for query and location.
	Fetch(ctx context.Context, query, location string, limit int) ([]models.JobListing, error)
}

// JobScraper queries its sources in order until enough listings are collected.
type JobScraper struct {
	sources []Source
	filters []filtering.Filter
	logger  *zap.Logger
}

func New(logger *zap.Logger, sources ...Source) *JobScraper {
	if logger == nil {
		logger = zap.NewNop()
	}

	return &JobScraper{
		sources: sources,
		logger:  logger,
	}
}

// WithFilters sets the filters applied to every source batch before
// deduplication, so filtered listings do not count against maxJobs.
func (s *JobScraper) WithFilters(filters ...filtering.Filter) *JobScraper {
	s.filters = filters
	return s
}

// Sources returns the names of the configured sources, in query order.
func (s *JobScraper) Sources() []string {
	names := make([]string, 0, len(s.sources))
	for _, src := range s.sources {
		names = append(names, src.Name())
	}
	return names
}

// Scrape returns up to maxJobs unique listings. A failing source is logged and
// skipped; the call fails only when every source failed.
func (s *JobScraper) Scrape(ctx context.Context, query, location string, maxJobs int) ([]models.JobListing, error) {
	if len(s.sources) == 0 {
		return nil, apperr.Configuration("scrape jobs", errors.New("no scraper sources configured"))
	}
	if maxJobs <= 0 {
		return []models.JobListing{}, nil
	}

	listings := make([]models.JobListing, 0, maxJobs)
	seen := make(map[string]struct{})

	var errs []error
	for _, src := range s.sources {
		if len(listings) >= maxJobs {
			break
		}

		log := s.logger.With(zap.String("source", src.Name()))
		found, err := src.Fetch(ctx, query, location, maxJobs-len(listings))
		if err != nil {
			log.Warn("source failed", zap.Error(err))
			errs = append(errs, fmt.Errorf("%s: %w", src.Name(), err))
			continue
		}

		fetched := len(found)
		if found, err = filtering.Run(ctx, log, s.filters, found); err != nil {
			log.Warn("filtering failed", zap.Error(err))
			errs = append(errs, fmt.Errorf("%s: %w", src.Name(), err))
			continue
		}

		added := 0
		for _, listing := range found {
			if len(listings) >= maxJobs {
				break
			}

			key := dedupKey(listing)
			if _, ok := seen[key]; ok {
				continue
			}
			seen[key] = struct{}{}

			if listing.Source == "" {
				listing.Source = src.Name()
			}
			listing.Query = query
			listings = append(listings, listing)
			added++
		}

		log.Info("collected listings", zap.Int("found", fetched), zap.Int("added", added))
	}

	if len(errs) == len(s.sources) {
		return nil, apperr.Collaborator("scrape jobs", errors.Join(errs...))
	}

	return listings, nil
}

func dedupKey(l models.JobListing) string {
	if u := strings.TrimSpace(l.URL); u != "" {
		return "url:" + u
	}
	return "tc:" + strings.ToLower(strings.TrimSpace(l.Title)) + "|" + strings.ToLower(strings.TrimSpace(l.Company))
}
