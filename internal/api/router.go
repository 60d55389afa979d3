package api

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// NewRouter wires the handlers behind request id, access log, recovery and
// permissive CORS.
func NewRouter(h *Handler, logger *zap.Logger) *gin.Engine {
	if logger == nil {
		logger = zap.NewNop()
	}

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowAllOrigins = true
	corsConfig.AllowHeaders = []string{"*"}
	corsConfig.ExposeHeaders = []string{requestIDHeader}

	r := gin.New()
	r.Use(requestID(), accessLog(logger), recovery(logger), cors.New(corsConfig))

	r.GET("/", h.Root)
	r.GET("/health", h.Health)

	r.POST("/scrape-jobs", h.ScrapeJobs)
	r.POST("/find-matches", h.FindMatches)
	r.POST("/send-notifications", h.SendNotifications)
	r.POST("/run-full-cycle", h.RunFullCycle)

	r.GET("/stats", h.Stats)

	r.GET("/job-listings", h.JobListings)
	r.DELETE("/job-listings", h.DeleteOldJobListings)

	r.POST("/candidates", h.CreateCandidate)

	r.POST("/bench-candidates", h.CreateBenchCandidate)
	r.GET("/bench-candidates", h.ListBenchCandidates)
	r.PATCH("/bench-candidates/:id/status", h.UpdateBenchCandidateStatus)

	r.POST("/open-jobs", h.CreateOpenJob)
	r.GET("/open-jobs", h.ListOpenJobs)
	r.PATCH("/open-jobs/:id/status", h.UpdateOpenJobStatus)

	r.GET("/matches/candidate/:id", h.MatchesByCandidate)
	r.GET("/matches/job/:id", h.MatchesByJob)

	return r
}
