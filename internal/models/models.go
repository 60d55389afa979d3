package models

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/spigell/airecruiter/internal/apperr"
)

const (
	BenchStatusAvailable = "available"
	OpenJobStatusOpen    = "open"

	NotificationStatusSent   = "sent"
	NotificationStatusFailed = "failed"
)

// JobListing is a posting collected by the scrape step.
type JobListing struct {
	ID          string    `json:"_id,omitempty" bson:"_id,omitempty"`
	Title       string    `json:"title" bson:"title" validate:"required"`
	Company     string    `json:"company" bson:"company" validate:"required"`
	Location    string    `json:"location,omitempty" bson:"location,omitempty"`
	Description string    `json:"description,omitempty" bson:"description,omitempty"`
	URL         string    `json:"url,omitempty" bson:"url,omitempty" validate:"omitempty,url"`
	Salary      string    `json:"salary,omitempty" bson:"salary,omitempty"`
	JobType     string    `json:"job_type,omitempty" bson:"job_type,omitempty"`
	PostedDate  string    `json:"posted_date,omitempty" bson:"posted_date,omitempty"`
	Source      string    `json:"source,omitempty" bson:"source,omitempty"`
	Query       string    `json:"query,omitempty" bson:"query,omitempty"`
	CreatedAt   time.Time `json:"created_at" bson:"created_at"`
}

// CandidateProfile is the full profile of a person known to the platform.
type CandidateProfile struct {
	ID              string    `json:"_id,omitempty" bson:"_id,omitempty"`
	Name            string    `json:"name" bson:"name" validate:"required"`
	Email           string    `json:"email,omitempty" bson:"email,omitempty" validate:"omitempty,email"`
	Phone           string    `json:"phone,omitempty" bson:"phone,omitempty"`
	Skills          []string  `json:"skills,omitempty" bson:"skills,omitempty"`
	ExperienceYears float64   `json:"experience_years,omitempty" bson:"experience_years,omitempty" validate:"gte=0"`
	Location        string    `json:"location,omitempty" bson:"location,omitempty"`
	Summary         string    `json:"summary,omitempty" bson:"summary,omitempty"`
	ResumeURL       string    `json:"resume_url,omitempty" bson:"resume_url,omitempty" validate:"omitempty,url"`
	CreatedAt       time.Time `json:"created_at" bson:"created_at"`
	UpdatedAt       time.Time `json:"updated_at" bson:"updated_at"`
}

// BenchCandidate is a candidate currently being matched against open jobs.
type BenchCandidate struct {
	ID              string     `json:"_id,omitempty" bson:"_id,omitempty"`
	Name            string     `json:"name" bson:"name" validate:"required"`
	Email           string     `json:"email,omitempty" bson:"email,omitempty" validate:"omitempty,email"`
	Skills          []string   `json:"skills,omitempty" bson:"skills,omitempty"`
	ExperienceYears float64    `json:"experience_years,omitempty" bson:"experience_years,omitempty" validate:"gte=0"`
	Location        string     `json:"location,omitempty" bson:"location,omitempty"`
	PreferredRoles  []string   `json:"preferred_roles,omitempty" bson:"preferred_roles,omitempty"`
	Summary         string     `json:"summary,omitempty" bson:"summary,omitempty"`
	Status          string     `json:"status" bson:"status" validate:"required"`
	AvailableFrom   *time.Time `json:"available_from,omitempty" bson:"available_from,omitempty"`
	CreatedAt       time.Time  `json:"created_at" bson:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at" bson:"updated_at"`
}

// OpenJob is a requisition currently accepting matches.
type OpenJob struct {
	ID                 string    `json:"_id,omitempty" bson:"_id,omitempty"`
	Title              string    `json:"title" bson:"title" validate:"required"`
	Company            string    `json:"company,omitempty" bson:"company,omitempty"`
	Description        string    `json:"description,omitempty" bson:"description,omitempty"`
	RequiredSkills     []string  `json:"required_skills,omitempty" bson:"required_skills,omitempty"`
	Location           string    `json:"location,omitempty" bson:"location,omitempty"`
	ExperienceRequired float64   `json:"experience_required,omitempty" bson:"experience_required,omitempty" validate:"gte=0"`
	Salary             string    `json:"salary,omitempty" bson:"salary,omitempty"`
	Status             string    `json:"status" bson:"status" validate:"required"`
	CreatedAt          time.Time `json:"created_at" bson:"created_at"`
	UpdatedAt          time.Time `json:"updated_at" bson:"updated_at"`
}

// MatchResult is a scored pairing of a bench candidate and an open job.
// Notified only ever moves from false to true.
type MatchResult struct {
	ID            string     `json:"_id,omitempty" bson:"_id,omitempty"`
	CandidateID   string     `json:"candidate_id" bson:"candidate_id" validate:"required"`
	JobID         string     `json:"job_id" bson:"job_id" validate:"required"`
	CandidateName string     `json:"candidate_name,omitempty" bson:"candidate_name,omitempty"`
	JobTitle      string     `json:"job_title,omitempty" bson:"job_title,omitempty"`
	Company       string     `json:"company,omitempty" bson:"company,omitempty"`
	OverallScore  float64    `json:"overall_score" bson:"overall_score" validate:"gte=0"`
	Reasoning     string     `json:"reasoning,omitempty" bson:"reasoning,omitempty"`
	Message       string     `json:"message,omitempty" bson:"message,omitempty"`
	Notified      bool       `json:"notified" bson:"notified"`
	NotifiedAt    *time.Time `json:"notified_at,omitempty" bson:"notified_at,omitempty"`
	CreatedAt     time.Time  `json:"created_at" bson:"created_at"`
}

// EmailNotification records one attempt to notify about a match.
type EmailNotification struct {
	ID        string    `json:"_id,omitempty" bson:"_id,omitempty"`
	MatchID   string    `json:"match_id,omitempty" bson:"match_id,omitempty"`
	Recipient string    `json:"recipient" bson:"recipient" validate:"required"`
	Subject   string    `json:"subject" bson:"subject" validate:"required"`
	Body      string    `json:"body,omitempty" bson:"body,omitempty"`
	Status    string    `json:"status" bson:"status" validate:"required,oneof=sent failed"`
	Error     string    `json:"error,omitempty" bson:"error,omitempty"`
	CreatedAt time.Time `json:"created_at" bson:"created_at"`
}

var (
	validateOnce sync.Once
	validate     *validator.Validate
)

func getValidator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
	})
	return validate
}

// Validate checks a record against its struct tags and returns a
// validation-kind error naming every failing field.
func Validate(kind string, record any) error {
	err := getValidator().Struct(record)
	if err == nil {
		return nil
	}

	var fields validator.ValidationErrors
	if !errors.As(err, &fields) {
		return apperr.Validation(kind, err)
	}

	problems := make([]string, 0, len(fields))
	for _, f := range fields {
		if f.Param() != "" {
			problems = append(problems, fmt.Sprintf("%s: failed %s=%s", f.Field(), f.Tag(), f.Param()))
			continue
		}
		problems = append(problems, fmt.Sprintf("%s: failed %s", f.Field(), f.Tag()))
	}

	return apperr.Validation(kind, fmt.Errorf("invalid record: %s", strings.Join(problems, "; ")))
}
