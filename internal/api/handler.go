// Package api exposes the orchestrator and the gateway over HTTP.
package api

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/spigell/airecruiter/internal/apperr"
	"github.com/spigell/airecruiter/internal/models"
	"github.com/spigell/airecruiter/internal/orchestrator"
	"github.com/spigell/airecruiter/internal/storage"
)

// Runner is the orchestrator as seen by the handlers.
type Runner interface {
	ScrapeJobs(ctx context.Context, params orchestrator.ScrapeParams) (*orchestrator.ScrapeResult, error)
	FindMatches(ctx context.Context) (*orchestrator.MatchResults, error)
	SendNotifications(ctx context.Context) (*orchestrator.NotificationResult, error)
	RunFullCycle(ctx context.Context, params orchestrator.ScrapeParams) (*orchestrator.CycleResult, error)
}

// Store is the part of the gateway served directly.
type Store interface {
	Connected() bool
	GetPlatformStats(ctx context.Context) storage.Stats
	GetJobListings(ctx context.Context, limit int) []models.JobListing
	DeleteOldJobListings(ctx context.Context, days int) (int64, error)
	SaveCandidateProfile(ctx context.Context, candidate *models.CandidateProfile) (string, error)
	SaveBenchCandidate(ctx context.Context, candidate *models.BenchCandidate) (string, error)
	SaveOpenJob(ctx context.Context, job *models.OpenJob) (string, error)
	GetBenchCandidates(ctx context.Context) []models.BenchCandidate
	GetOpenJobs(ctx context.Context) []models.OpenJob
	UpdateCandidateStatus(ctx context.Context, id, status string) (bool, error)
	UpdateJobStatus(ctx context.Context, id, status string) (bool, error)
	GetMatchesByCandidate(ctx context.Context, id string) []models.MatchResult
	GetMatchesByJob(ctx context.Context, id string) []models.MatchResult
}

// Readiness tells /health which collaborators were built at startup.
type Readiness struct {
	Scraper bool
	Matcher bool
	Email   bool
}

type Handler struct {
	runner Runner
	store  Store
	ready  Readiness
	logger *zap.Logger
	now    func() time.Time
}

func NewHandler(runner Runner, store Store, ready Readiness, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Handler{
		runner: runner,
		store:  store,
		ready:  ready,
		logger: logger,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

func (h *Handler) timestamp() string {
	return h.now().Format(time.RFC3339)
}

func (h *Handler) requireStore() error {
	if h.store == nil {
		return apperr.Configuration("database", errors.New("Database not initialized"))
	}
	return nil
}

func (h *Handler) Root(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"message":   "AI Job Recruiter Platform API",
		"status":    "running",
		"timestamp": h.timestamp(),
	})
}

func (h *Handler) Health(c *gin.Context) {
	database := "disconnected"
	if h.store != nil && h.store.Connected() {
		database = "connected"
	}

	c.JSON(http.StatusOK, gin.H{
		"status":   "healthy",
		"database": database,
		"services": gin.H{
			"scraper": readiness(h.ready.Scraper),
			"matcher": readiness(h.ready.Matcher),
			"email":   readiness(h.ready.Email),
		},
		"timestamp": h.timestamp(),
	})
}

func readiness(ok bool) string {
	if ok {
		return "ready"
	}
	return "not_initialized"
}

func (h *Handler) ScrapeJobs(c *gin.Context) {
	var params orchestrator.ScrapeParams
	if err := c.ShouldBindQuery(&params); err != nil {
		respondError(c, bindError(err))
		return
	}

	res, err := h.runner.ScrapeJobs(c.Request.Context(), params)
	if err != nil {
		respondStepError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *Handler) FindMatches(c *gin.Context) {
	res, err := h.runner.FindMatches(c.Request.Context())
	if err != nil {
		respondStepError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *Handler) SendNotifications(c *gin.Context) {
	res, err := h.runner.SendNotifications(c.Request.Context())
	if err != nil {
		respondStepError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *Handler) RunFullCycle(c *gin.Context) {
	var params orchestrator.ScrapeParams
	if err := c.ShouldBindQuery(&params); err != nil {
		respondError(c, bindError(err))
		return
	}

	res, err := h.runner.RunFullCycle(c.Request.Context(), params)
	if err != nil {
		respondStepError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *Handler) Stats(c *gin.Context) {
	if err := h.requireStore(); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"stats":     h.store.GetPlatformStats(c.Request.Context()),
		"timestamp": h.timestamp(),
	})
}

type listingsQuery struct {
	Limit int `form:"limit,default=100" binding:"gte=0"`
}

func (h *Handler) JobListings(c *gin.Context) {
	if err := h.requireStore(); err != nil {
		respondError(c, err)
		return
	}

	var q listingsQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		respondError(c, bindError(err))
		return
	}

	listings := h.store.GetJobListings(c.Request.Context(), q.Limit)
	c.JSON(http.StatusOK, gin.H{
		"job_listings": listings,
		"count":        len(listings),
		"timestamp":    h.timestamp(),
	})
}

type pruneQuery struct {
	Days int `form:"days,default=30" binding:"gte=0"`
}

func (h *Handler) DeleteOldJobListings(c *gin.Context) {
	if err := h.requireStore(); err != nil {
		respondError(c, err)
		return
	}

	var q pruneQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		respondError(c, bindError(err))
		return
	}

	deleted, err := h.store.DeleteOldJobListings(c.Request.Context(), q.Days)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"deleted":   deleted,
		"days":      q.Days,
		"timestamp": h.timestamp(),
	})
}

func (h *Handler) CreateCandidate(c *gin.Context) {
	var candidate models.CandidateProfile
	create(h, c, &candidate, func(ctx context.Context) (string, error) {
		candidate.ID = ""
		return h.store.SaveCandidateProfile(ctx, &candidate)
	})
}

func (h *Handler) CreateBenchCandidate(c *gin.Context) {
	var candidate models.BenchCandidate
	create(h, c, &candidate, func(ctx context.Context) (string, error) {
		candidate.ID = ""
		return h.store.SaveBenchCandidate(ctx, &candidate)
	})
}

func (h *Handler) CreateOpenJob(c *gin.Context) {
	var job models.OpenJob
	create(h, c, &job, func(ctx context.Context) (string, error) {
		job.ID = ""
		return h.store.SaveOpenJob(ctx, &job)
	})
}

// create binds the JSON body into record and stores it with save.
func create(h *Handler, c *gin.Context, record any, save func(ctx context.Context) (string, error)) {
	if err := h.requireStore(); err != nil {
		respondError(c, err)
		return
	}

	if err := c.ShouldBindJSON(record); err != nil {
		respondError(c, bindError(err))
		return
	}

	id, err := save(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"id":        id,
		"timestamp": h.timestamp(),
	})
}

func (h *Handler) ListBenchCandidates(c *gin.Context) {
	if err := h.requireStore(); err != nil {
		respondError(c, err)
		return
	}

	candidates := h.store.GetBenchCandidates(c.Request.Context())
	c.JSON(http.StatusOK, gin.H{
		"bench_candidates": candidates,
		"count":            len(candidates),
		"timestamp":        h.timestamp(),
	})
}

func (h *Handler) ListOpenJobs(c *gin.Context) {
	if err := h.requireStore(); err != nil {
		respondError(c, err)
		return
	}

	jobs := h.store.GetOpenJobs(c.Request.Context())
	c.JSON(http.StatusOK, gin.H{
		"open_jobs": jobs,
		"count":     len(jobs),
		"timestamp": h.timestamp(),
	})
}

type statusBody struct {
	Status string `json:"status" binding:"required"`
}

func (h *Handler) UpdateBenchCandidateStatus(c *gin.Context) {
	h.updateStatus(c, func(ctx context.Context, id, status string) (bool, error) {
		return h.store.UpdateCandidateStatus(ctx, id, status)
	})
}

func (h *Handler) UpdateOpenJobStatus(c *gin.Context) {
	h.updateStatus(c, func(ctx context.Context, id, status string) (bool, error) {
		return h.store.UpdateJobStatus(ctx, id, status)
	})
}

func (h *Handler) updateStatus(c *gin.Context, update func(ctx context.Context, id, status string) (bool, error)) {
	if err := h.requireStore(); err != nil {
		respondError(c, err)
		return
	}

	var body statusBody
	if err := c.ShouldBindJSON(&body); err != nil {
		respondError(c, bindError(err))
		return
	}

	updated, err := update(c.Request.Context(), c.Param("id"), strings.TrimSpace(body.Status))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"updated":   updated,
		"timestamp": h.timestamp(),
	})
}

func (h *Handler) MatchesByCandidate(c *gin.Context) {
	if err := h.requireStore(); err != nil {
		respondError(c, err)
		return
	}
	h.respondMatches(c, h.store.GetMatchesByCandidate(c.Request.Context(), c.Param("id")))
}

func (h *Handler) MatchesByJob(c *gin.Context) {
	if err := h.requireStore(); err != nil {
		respondError(c, err)
		return
	}
	h.respondMatches(c, h.store.GetMatchesByJob(c.Request.Context(), c.Param("id")))
}

func (h *Handler) respondMatches(c *gin.Context, matches []models.MatchResult) {
	c.JSON(http.StatusOK, gin.H{
		"matches":   matches,
		"count":     len(matches),
		"timestamp": h.timestamp(),
	})
}
