package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/spigell/airecruiter/internal/apperr"
)

// respondError is the single place where error kinds become HTTP statuses.
func respondError(c *gin.Context, err error) {
	respondStatus(c, statusFor(err), err)
}

// respondStepError reports a failed scrape, match, notify or cycle step.
// Those are server errors whatever their kind; request validation happens
// before the step runs.
func respondStepError(c *gin.Context, err error) {
	respondStatus(c, http.StatusInternalServerError, err)
}

func respondStatus(c *gin.Context, status int, err error) {
	_ = c.Error(err)
	c.AbortWithStatusJSON(status, gin.H{"detail": err.Error()})
}

func statusFor(err error) int {
	if apperr.Is(err, apperr.KindValidation) {
		return http.StatusUnprocessableEntity
	}
	return http.StatusInternalServerError
}

func bindError(err error) error {
	return apperr.Validation("invalid request", err)
}
