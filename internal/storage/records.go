package storage

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"

	"github.com/spigell/airecruiter/internal/apperr"
	"github.com/spigell/airecruiter/internal/models"
)

const (
	defaultListingsLimit = 100
	defaultRecentHours   = 24
	defaultListingsTTL   = 30
	statsRecentWindow    = 7 * 24 * time.Hour
)

// Stats keys.
const (
	StatTotalCandidates = "total_candidates"
	StatBenchCandidates = "bench_candidates"
	StatOpenJobs        = "open_jobs"
	StatJobListings     = "job_listings"
	StatTotalMatches    = "total_matches"
	StatRecentMatches   = "recent_matches"
	StatNotifiedMatches = "notified_matches"
)

// Stats maps counter names to document counts.
type Stats map[string]int64

func (g *Gateway) SaveJobListing(ctx context.Context, job *models.JobListing) (string, error) {
	if err := job.Prepare(g.now()); err != nil {
		return "", err
	}

	id, err := g.insert(ctx, JobListingsCollection, job)
	if err != nil {
		g.logger.Error("error saving job listing", zap.Error(err))
		return "", err
	}

	job.ID = id
	g.logger.Info("saved job listing", zap.String("title", job.Title), zap.String("company", job.Company))
	return id, nil
}

func (g *Gateway) SaveCandidateProfile(ctx context.Context, candidate *models.CandidateProfile) (string, error) {
	if err := candidate.Prepare(g.now()); err != nil {
		return "", err
	}

	id, err := g.insert(ctx, CandidateProfilesCollection, candidate)
	if err != nil {
		g.logger.Error("error saving candidate profile", zap.Error(err))
		return "", err
	}

	candidate.ID = id
	g.logger.Info("saved candidate profile", zap.String("name", candidate.Name))
	return id, nil
}

func (g *Gateway) SaveBenchCandidate(ctx context.Context, candidate *models.BenchCandidate) (string, error) {
	if err := candidate.Prepare(g.now()); err != nil {
		return "", err
	}

	id, err := g.insert(ctx, BenchCandidatesCollection, candidate)
	if err != nil {
		g.logger.Error("error saving bench candidate", zap.Error(err))
		return "", err
	}

	candidate.ID = id
	g.logger.Info("saved bench candidate", zap.String("name", candidate.Name))
	return id, nil
}

func (g *Gateway) SaveOpenJob(ctx context.Context, job *models.OpenJob) (string, error) {
	if err := job.Prepare(g.now()); err != nil {
		return "", err
	}

	id, err := g.insert(ctx, OpenJobsCollection, job)
	if err != nil {
		g.logger.Error("error saving open job", zap.Error(err))
		return "", err
	}

	job.ID = id
	g.logger.Info("saved open job", zap.String("title", job.Title))
	return id, nil
}

func (g *Gateway) SaveMatchResult(ctx context.Context, match *models.MatchResult) (string, error) {
	if err := match.Prepare(g.now()); err != nil {
		return "", err
	}

	id, err := g.insert(ctx, MatchResultsCollection, match)
	if err != nil {
		g.logger.Error("error saving match result", zap.Error(err))
		return "", err
	}

	match.ID = id
	g.logger.Info("saved match result", zap.Float64("score", match.OverallScore))
	return id, nil
}

func (g *Gateway) SaveEmailNotification(ctx context.Context, notification *models.EmailNotification) (string, error) {
	if err := notification.Prepare(g.now()); err != nil {
		return "", err
	}

	id, err := g.insert(ctx, EmailNotificationsCollection, notification)
	if err != nil {
		g.logger.Error("error saving email notification", zap.Error(err))
		return "", err
	}

	notification.ID = id
	g.logger.Info("saved email notification", zap.String("subject", notification.Subject))
	return id, nil
}

func (g *Gateway) GetBenchCandidates(ctx context.Context) []models.BenchCandidate {
	candidates, err := findAll[models.BenchCandidate](ctx, g.collection(BenchCandidatesCollection), bson.M{})
	if err != nil {
		g.logger.Error("error getting bench candidates", zap.Error(err))
	}
	return candidates
}

func (g *Gateway) GetOpenJobs(ctx context.Context) []models.OpenJob {
	jobs, err := findAll[models.OpenJob](ctx, g.collection(OpenJobsCollection), bson.M{})
	if err != nil {
		g.logger.Error("error getting open jobs", zap.Error(err))
	}
	return jobs
}

// GetJobListings returns up to limit listings, newest first.
func (g *Gateway) GetJobListings(ctx context.Context, limit int) []models.JobListing {
	if limit <= 0 {
		limit = defaultListingsLimit
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetLimit(int64(limit))

	jobs, err := findAll[models.JobListing](ctx, g.collection(JobListingsCollection), bson.M{}, opts)
	if err != nil {
		g.logger.Error("error getting job listings", zap.Error(err))
	}
	return jobs
}

func (g *Gateway) GetMatchesByCandidate(ctx context.Context, candidateID string) []models.MatchResult {
	return g.matchesBy(ctx, "candidate_id", candidateID)
}

func (g *Gateway) GetMatchesByJob(ctx context.Context, jobID string) []models.MatchResult {
	return g.matchesBy(ctx, "job_id", jobID)
}

func (g *Gateway) matchesBy(ctx context.Context, field, value string) []models.MatchResult {
	opts := options.Find().SetSort(bson.D{{Key: "overall_score", Value: -1}})

	matches, err := findAll[models.MatchResult](ctx, g.collection(MatchResultsCollection), bson.M{field: value}, opts)
	if err != nil {
		g.logger.Error("error getting matches", zap.String(field, value), zap.Error(err))
	}
	return matches
}

// GetRecentMatches returns unnotified matches created in the last hours, newest first.
func (g *Gateway) GetRecentMatches(ctx context.Context, hours int) []models.MatchResult {
	if hours <= 0 {
		hours = defaultRecentHours
	}

	cutoff := g.now().Add(-time.Duration(hours) * time.Hour)
	filter := bson.M{
		"created_at": bson.M{"$gte": cutoff},
		"notified":   bson.M{"$ne": true},
	}
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})

	matches, err := findAll[models.MatchResult](ctx, g.collection(MatchResultsCollection), filter, opts)
	if err != nil {
		g.logger.Error("error getting recent matches", zap.Error(err))
	}
	return matches
}

// MarkMatchNotified flips notified to true and stamps notified_at, once.
// Unknown, malformed or already notified ids report false.
func (g *Gateway) MarkMatchNotified(ctx context.Context, matchID string) (bool, error) {
	changed, err := g.setByID(ctx, MatchResultsCollection, matchID,
		bson.M{"notified": bson.M{"$ne": true}},
		bson.M{"notified": true, "notified_at": g.now()},
	)
	if err != nil {
		g.logger.Error("error marking match as notified", zap.String("match_id", matchID), zap.Error(err))
	}
	return changed, err
}

func (g *Gateway) UpdateCandidateStatus(ctx context.Context, candidateID, status string) (bool, error) {
	return g.updateStatus(ctx, BenchCandidatesCollection, candidateID, status)
}

func (g *Gateway) UpdateJobStatus(ctx context.Context, jobID, status string) (bool, error) {
	return g.updateStatus(ctx, OpenJobsCollection, jobID, status)
}

func (g *Gateway) updateStatus(ctx context.Context, coll, id, status string) (bool, error) {
	status = strings.TrimSpace(status)
	if status == "" {
		return false, apperr.Validation("update status", errors.New("status must not be empty"))
	}

	changed, err := g.setByID(ctx, coll, id, nil, bson.M{"status": status, "updated_at": g.now()})
	if err != nil {
		g.logger.Error("error updating status", zap.String("collection", coll), zap.String("id", id), zap.Error(err))
	}
	return changed, err
}

// DeleteOldJobListings removes listings created strictly before now-days.
func (g *Gateway) DeleteOldJobListings(ctx context.Context, days int) (int64, error) {
	if days <= 0 {
		days = defaultListingsTTL
	}

	cutoff := g.now().AddDate(0, 0, -days)
	res, err := g.collection(JobListingsCollection).DeleteMany(ctx, bson.M{"created_at": bson.M{"$lt": cutoff}})
	if err != nil {
		g.logger.Error("error deleting old job listings", zap.Error(err))
		return 0, apperr.Storage("delete old job listings", err)
	}

	g.logger.Info("deleted old job listings", zap.Int64("count", res.DeletedCount), zap.Int("days", days))
	return res.DeletedCount, nil
}

// GetPlatformStats counts documents per collection. Any failure yields an empty map.
func (g *Gateway) GetPlatformStats(ctx context.Context) Stats {
	since := g.now().Add(-statsRecentWindow)

	counters := []struct {
		key    string
		coll   string
		filter bson.M
	}{
		{StatTotalCandidates, CandidateProfilesCollection, bson.M{}},
		{StatBenchCandidates, BenchCandidatesCollection, bson.M{}},
		{StatOpenJobs, OpenJobsCollection, bson.M{}},
		{StatJobListings, JobListingsCollection, bson.M{}},
		{StatTotalMatches, MatchResultsCollection, bson.M{}},
		{StatRecentMatches, MatchResultsCollection, bson.M{"created_at": bson.M{"$gte": since}}},
		{StatNotifiedMatches, MatchResultsCollection, bson.M{"notified": true}},
	}

	stats := make(Stats, len(counters))
	for _, c := range counters {
		n, err := g.collection(c.coll).CountDocuments(ctx, c.filter)
		if err != nil {
			g.logger.Error("error getting platform stats", zap.String("counter", c.key), zap.Error(err))
			return Stats{}
		}
		stats[c.key] = n
	}

	return stats
}
