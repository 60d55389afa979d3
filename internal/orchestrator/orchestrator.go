// Package orchestrator sequences the scrape, match and notify steps against
// the persistence gateway.
package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/spigell/airecruiter/internal/apperr"
	"github.com/spigell/airecruiter/internal/models"
)

const (
	DefaultQuery    = "software engineer"
	DefaultLocation = "India"
	DefaultMaxJobs  = 10

	recentMatchesWindow = 24
)

// Store is the slice of the persistence gateway the orchestrator needs.
type Store interface {
	SaveJobListing(ctx context.Context, job *models.JobListing) (string, error)
	SaveMatchResult(ctx context.Context, match *models.MatchResult) (string, error)
	GetBenchCandidates(ctx context.Context) []models.BenchCandidate
	GetOpenJobs(ctx context.Context) []models.OpenJob
	GetRecentMatches(ctx context.Context, hours int) []models.MatchResult
	MarkMatchNotified(ctx context.Context, matchID string) (bool, error)
}

type Scraper interface {
	Scrape(ctx context.Context, query, location string, maxJobs int) ([]models.JobListing, error)
}

type Matcher interface {
	FindMatches(ctx context.Context, candidates []models.BenchCandidate, jobs []models.OpenJob) ([]models.MatchResult, error)
}

type Notifier interface {
	SendMatchNotification(ctx context.Context, match models.MatchResult) (bool, error)
}

// Orchestrator holds the collaborators. A nil collaborator is reported as not
// initialized by the steps that need it.
type Orchestrator struct {
	store    Store
	scraper  Scraper
	matcher  Matcher
	notifier Notifier
	logger   *zap.Logger
	now      func() time.Time
}

func New(store Store, scraper Scraper, matcher Matcher, notifier Notifier, logger *zap.Logger) *Orchestrator {
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Orchestrator{
		store:    store,
		scraper:  scraper,
		matcher:  matcher,
		notifier: notifier,
		logger:   logger,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// ScrapeParams are the inputs of the scrape step. Zero values take defaults.
type ScrapeParams struct {
	Query    string `form:"query" json:"query" mapstructure:"query"`
	Location string `form:"location" json:"location" mapstructure:"location"`
	MaxJobs  int    `form:"max_jobs" json:"max_jobs" mapstructure:"max-jobs" binding:"gte=0"`
}

func (p ScrapeParams) withDefaults() ScrapeParams {
	if strings.TrimSpace(p.Query) == "" {
		p.Query = DefaultQuery
	}
	if strings.TrimSpace(p.Location) == "" {
		p.Location = DefaultLocation
	}
	if p.MaxJobs <= 0 {
		p.MaxJobs = DefaultMaxJobs
	}
	return p
}

type ScrapeResult struct {
	Message   string              `json:"message"`
	Jobs      []models.JobListing `json:"jobs"`
	Count     int                 `json:"count"`
	Timestamp time.Time           `json:"timestamp"`
}

type MatchResults struct {
	Message   string               `json:"message"`
	Matches   []models.MatchResult `json:"matches"`
	Timestamp time.Time            `json:"timestamp"`
}

type NotificationResult struct {
	Message      string    `json:"message"`
	Sent         int       `json:"sent"`
	TotalMatches int       `json:"total_matches"`
	Timestamp    time.Time `json:"timestamp"`
}

func notInitialized(op, what string) error {
	return apperr.Configuration(op, errors.New(what+" not initialized"))
}

// ScrapeJobs scrapes listings and saves them one by one. The first failed save
// aborts the rest; listings saved before it stay saved.
func (o *Orchestrator) ScrapeJobs(ctx context.Context, params ScrapeParams) (*ScrapeResult, error) {
	if o.scraper == nil {
		return nil, notInitialized("scrape jobs", "Scraper")
	}

	params = params.withDefaults()
	log := o.logger.With(zap.String("query", params.Query), zap.String("location", params.Location))
	log.Info("starting job scraping", zap.Int("max_jobs", params.MaxJobs))

	jobs, err := o.scraper.Scrape(ctx, params.Query, params.Location, params.MaxJobs)
	if err != nil {
		log.Error("job scraping failed", zap.Error(err))
		return nil, err
	}
	if jobs == nil {
		jobs = []models.JobListing{}
	}

	if o.store == nil {
		log.Warn("database not initialized, scraped jobs are not persisted")
	} else {
		for i := range jobs {
			if _, err := o.store.SaveJobListing(ctx, &jobs[i]); err != nil {
				log.Error("saving scraped job failed", zap.Int("saved", i), zap.Error(err))
				return nil, err
			}
		}
	}

	log.Info("scraped and saved jobs", zap.Int("count", len(jobs)))

	return &ScrapeResult{
		Message:   fmt.Sprintf("Successfully scraped %d jobs", len(jobs)),
		Jobs:      jobs,
		Count:     len(jobs),
		Timestamp: o.now(),
	}, nil
}

// FindMatches scores every bench candidate against every open job and saves
// the matches. Nothing is written when either set is empty.
func (o *Orchestrator) FindMatches(ctx context.Context) (*MatchResults, error) {
	if o.matcher == nil || o.store == nil {
		return nil, notInitialized("find matches", "Services")
	}

	o.logger.Info("starting job matching process")

	candidates := o.store.GetBenchCandidates(ctx)
	jobs := o.store.GetOpenJobs(ctx)

	if len(candidates) == 0 {
		return o.noMatches("No bench candidates found"), nil
	}
	if len(jobs) == 0 {
		return o.noMatches("No open jobs found"), nil
	}

	matches, err := o.matcher.FindMatches(ctx, candidates, jobs)
	if err != nil {
		o.logger.Error("job matching failed", zap.Error(err))
		return nil, err
	}
	if matches == nil {
		matches = []models.MatchResult{}
	}

	for i := range matches {
		if _, err := o.store.SaveMatchResult(ctx, &matches[i]); err != nil {
			o.logger.Error("saving match failed", zap.Int("saved", i), zap.Error(err))
			return nil, err
		}
	}

	o.logger.Info("found matches",
		zap.Int("candidates", len(candidates)),
		zap.Int("jobs", len(jobs)),
		zap.Int("matches", len(matches)),
	)

	return &MatchResults{
		Message:   fmt.Sprintf("Found %d matches", len(matches)),
		Matches:   matches,
		Timestamp: o.now(),
	}, nil
}

func (o *Orchestrator) noMatches(message string) *MatchResults {
	o.logger.Info(strings.ToLower(message[:1]) + message[1:])
	return &MatchResults{
		Message:   message,
		Matches:   []models.MatchResult{},
		Timestamp: o.now(),
	}
}

// SendNotifications emails every recent unnotified match. A failed delivery is
// logged and skipped; it never fails the batch.
func (o *Orchestrator) SendNotifications(ctx context.Context) (*NotificationResult, error) {
	if o.notifier == nil || o.store == nil {
		return nil, notInitialized("send notifications", "Services")
	}

	o.logger.Info("starting email notification process")

	matches := o.store.GetRecentMatches(ctx, recentMatchesWindow)
	if len(matches) == 0 {
		return &NotificationResult{
			Message:   "No recent matches found",
			Timestamp: o.now(),
		}, nil
	}

	sent := 0
	for _, match := range matches {
		log := o.logger.With(zap.String("match_id", match.ID))

		ok, err := o.notifier.SendMatchNotification(ctx, match)
		if err != nil {
			log.Error("failed to send notification", zap.Error(err))
			continue
		}
		if !ok {
			log.Warn("notification was not delivered")
			continue
		}

		sent++
		if _, err := o.store.MarkMatchNotified(ctx, match.ID); err != nil {
			log.Error("failed to mark match as notified", zap.Error(err))
		}
	}

	o.logger.Info("sent email notifications", zap.Int("sent", sent), zap.Int("total_matches", len(matches)))

	return &NotificationResult{
		Message:      fmt.Sprintf("Sent %d email notifications", sent),
		Sent:         sent,
		TotalMatches: len(matches),
		Timestamp:    o.now(),
	}, nil
}
