package models

import (
	"strings"
	"time"
)

// The Prepare methods fill database-side defaults and validate the record.
// They are the only way records enter storage.

func (j *JobListing) Prepare(now time.Time) error {
	j.Title = strings.TrimSpace(j.Title)
	j.Company = strings.TrimSpace(j.Company)
	if j.CreatedAt.IsZero() {
		j.CreatedAt = now
	}
	return Validate("job listing", j)
}

func (c *CandidateProfile) Prepare(now time.Time) error {
	c.Name = strings.TrimSpace(c.Name)
	if c.CreatedAt.IsZero() {
		c.CreatedAt = now
	}
	if c.UpdatedAt.IsZero() {
		c.UpdatedAt = c.CreatedAt
	}
	return Validate("candidate profile", c)
}

func (b *BenchCandidate) Prepare(now time.Time) error {
	b.Name = strings.TrimSpace(b.Name)
	if strings.TrimSpace(b.Status) == "" {
		b.Status = BenchStatusAvailable
	}
	if b.CreatedAt.IsZero() {
		b.CreatedAt = now
	}
	if b.UpdatedAt.IsZero() {
		b.UpdatedAt = b.CreatedAt
	}
	return Validate("bench candidate", b)
}

func (o *OpenJob) Prepare(now time.Time) error {
	o.Title = strings.TrimSpace(o.Title)
	if strings.TrimSpace(o.Status) == "" {
		o.Status = OpenJobStatusOpen
	}
	if o.CreatedAt.IsZero() {
		o.CreatedAt = now
	}
	if o.UpdatedAt.IsZero() {
		o.UpdatedAt = o.CreatedAt
	}
	return Validate("open job", o)
}

// Prepare on a match never sets Notified; a fresh match is always unnotified.
func (m *MatchResult) Prepare(now time.Time) error {
	if m.CreatedAt.IsZero() {
		m.CreatedAt = now
	}
	if !m.Notified {
		m.NotifiedAt = nil
	}
	return Validate("match result", m)
}

func (e *EmailNotification) Prepare(now time.Time) error {
	if e.CreatedAt.IsZero() {
		e.CreatedAt = now
	}
	return Validate("email notification", e)
}
