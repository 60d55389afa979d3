package ai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	_ "embed"

	"go.uber.org/zap"

	"github.com/spigell/airecruiter/internal/apperr"
	"github.com/spigell/airecruiter/internal/models"
	"github.com/spigell/airecruiter/internal/utils"
)

//go:embed prompt.md
var systemPrompt string

const (
	defaultMaxLogLength = 200
	DefaultMinScore     = 0.6
)

// Matcher pairs every bench candidate with every open job and keeps the pairs
// the model calls a fit at or above minScore.
type Matcher struct {
	generator Generator
	minScore  float64
	logger    *zap.Logger
	maxLogLen int
}

func NewMatcher(generator Generator, minScore float64, maxLogLength int, logger *zap.Logger) *Matcher {
	if maxLogLength <= 0 {
		maxLogLength = defaultMaxLogLength
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Matcher{
		generator: generator,
		minScore:  minScore,
		logger:    logger,
		maxLogLen: maxLogLength,
	}
}

// FindMatches evaluates all pairs in candidate-major order. A pair that fails
// is logged and skipped. The call fails only when every pair failed.
func (m *Matcher) FindMatches(ctx context.Context, candidates []models.BenchCandidate, jobs []models.OpenJob) ([]models.MatchResult, error) {
	if m.generator == nil {
		return nil, apperr.Configuration("find matches", errors.New("matcher has no model backend"))
	}

	matches := make([]models.MatchResult, 0)
	total := len(candidates) * len(jobs)
	if total == 0 {
		return matches, nil
	}

	var (
		failed  int
		lastErr error
	)

	for i := range candidates {
		for j := range jobs {
			if err := ctx.Err(); err != nil {
				return nil, err
			}

			candidate, job := &candidates[i], &jobs[j]
			log := m.logger.With(zap.String("candidate_id", candidate.ID), zap.String("job_id", job.ID))

			assessment, err := m.Evaluate(ctx, candidate, job)
			if err != nil {
				failed++
				lastErr = err
				log.Warn("evaluation failed", zap.Error(err))
				continue
			}

			if !assessment.Fit {
				log.Debug("not a fit", zap.Float64("score", assessment.Score))
				continue
			}
			if assessment.Score < m.minScore {
				log.Debug("below score threshold",
					zap.Float64("score", assessment.Score),
					zap.Float64("threshold", m.minScore),
				)
				continue
			}

			matches = append(matches, models.MatchResult{
				CandidateID:   candidate.ID,
				JobID:         job.ID,
				CandidateName: candidate.Name,
				JobTitle:      job.Title,
				Company:       job.Company,
				OverallScore:  assessment.Score,
				Reasoning:     assessment.Reason,
				Message:       assessment.Message,
			})
		}
	}

	m.logger.Info("matching finished",
		zap.Int("pairs", total),
		zap.Int("failed", failed),
		zap.Int("matches", len(matches)),
	)

	if failed == total {
		return nil, apperr.Collaborator("find matches", fmt.Errorf("all %d evaluations failed: %w", total, lastErr))
	}

	return matches, nil
}

// Evaluate asks the model about a single pair.
func (m *Matcher) Evaluate(ctx context.Context, candidate *models.BenchCandidate, job *models.OpenJob) (*Assessment, error) {
	prompt, err := buildPrompt(candidate, job)
	if err != nil {
		return nil, err
	}

	m.logger.Debug("generate content request",
		zap.String("job_id", job.ID),
		zap.Int("prompt_length", utf8.RuneCountInString(prompt)),
		zap.String("prompt_preview", utils.TruncateForLog(prompt, m.maxLogLen)),
	)

	raw, err := m.generator.GenerateContent(ctx, systemPrompt, prompt)
	if err != nil {
		return nil, err
	}

	m.logger.Debug("generate content response",
		zap.String("job_id", job.ID),
		zap.Int("response_length", utf8.RuneCountInString(raw)),
		zap.String("response_preview", utils.TruncateForLog(raw, m.maxLogLen)),
	)

	assessment, err := parseResponse(raw)
	if err != nil {
		return nil, err
	}

	assessment.Raw = raw
	return assessment, nil
}

type candidatePayload struct {
	Name            string   `json:"name"`
	Skills          []string `json:"skills,omitempty"`
	ExperienceYears float64  `json:"experience_years"`
	Location        string   `json:"location,omitempty"`
	PreferredRoles  []string `json:"preferred_roles,omitempty"`
	Summary         string   `json:"summary,omitempty"`
}

type jobPayload struct {
	Title              string   `json:"title"`
	Company            string   `json:"company,omitempty"`
	Description        string   `json:"description,omitempty"`
	RequiredSkills     []string `json:"required_skills,omitempty"`
	Location           string   `json:"location,omitempty"`
	ExperienceRequired float64  `json:"experience_required"`
}

func buildPrompt(candidate *models.BenchCandidate, job *models.OpenJob) (string, error) {
	c, err := json.MarshalIndent(candidatePayload{
		Name:            candidate.Name,
		Skills:          candidate.Skills,
		ExperienceYears: candidate.ExperienceYears,
		Location:        candidate.Location,
		PreferredRoles:  candidate.PreferredRoles,
		Summary:         candidate.Summary,
	}, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal candidate payload: %w", err)
	}

	j, err := json.MarshalIndent(jobPayload{
		Title:              job.Title,
		Company:            job.Company,
		Description:        job.Description,
		RequiredSkills:     job.RequiredSkills,
		Location:           job.Location,
		ExperienceRequired: job.ExperienceRequired,
	}, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal job payload: %w", err)
	}

	var b strings.Builder
	b.WriteString("Candidate:\n")
	b.Write(c)
	b.WriteString("\n\nJob:\n")
	b.Write(j)
	b.WriteString("\n\nJSON Response:")

	return b.String(), nil
}
