package headhunter

import (
	"fmt"
	"strings"

	"github.com/spigell/airecruiter/internal/models"
)

const Source = "headhunter"

type Vacancy struct {
	ID   string `json:"id,omitempty"`
	Name string `json:"name,omitempty"`
	Area struct {
		Name string `json:"name,omitempty"`
	} `json:"area,omitempty"`
	Salary *struct {
		From     int    `json:"from,omitempty"`
		To       int    `json:"to,omitempty"`
		Currency string `json:"currency,omitempty"`
	} `json:"salary,omitempty"`
	Schedule struct {
		Name string `json:"name,omitempty"`
	} `json:"schedule,omitempty"`
	Employment struct {
		Name string `json:"name,omitempty"`
	} `json:"employment,omitempty"`
	Employer struct {
		ID   string `json:"id,omitempty"`
		Name string `json:"name,omitempty"`
	} `json:"employer,omitempty"`
	Snippet struct {
		Requirement    string `json:"requirement,omitempty"`
		Responsibility string `json:"responsibility,omitempty"`
	} `json:"snippet,omitempty"`
	AlternateURL string `json:"alternate_url,omitempty"`
	PublishedAt  string `json:"published_at,omitempty"`
}

// SalaryText renders the salary fork, e.g. "100000-150000 RUR".
func (v *Vacancy) SalaryText() string {
	if v.Salary == nil {
		return ""
	}

	s := v.Salary
	switch {
	case s.From > 0 && s.To > 0:
		return strings.TrimSpace(fmt.Sprintf("%d-%d %s", s.From, s.To, s.Currency))
	case s.From > 0:
		return strings.TrimSpace(fmt.Sprintf("from %d %s", s.From, s.Currency))
	case s.To > 0:
		return strings.TrimSpace(fmt.Sprintf("up to %d %s", s.To, s.Currency))
	default:
		return ""
	}
}

// JobType prefers the employment kind and falls back to the schedule.
func (v *Vacancy) JobType() string {
	if v.Employment.Name != "" {
		return v.Employment.Name
	}
	return v.Schedule.Name
}

// ToJobListing converts the vacancy into a scraped listing.
// Snippets from hh.ru carry <highlighttext> markup, which is stripped.
func (v *Vacancy) ToJobListing() models.JobListing {
	var parts []string
	for _, s := range []string{v.Snippet.Responsibility, v.Snippet.Requirement} {
		if s = stripHighlight(s); s != "" {
			parts = append(parts, s)
		}
	}

	return models.JobListing{
		Title:       strings.TrimSpace(v.Name),
		Company:     strings.TrimSpace(v.Employer.Name),
		Location:    v.Area.Name,
		Description: strings.Join(parts, "\n"),
		URL:         v.AlternateURL,
		Salary:      v.SalaryText(),
		JobType:     v.JobType(),
		PostedDate:  v.PublishedAt,
		Source:      Source,
	}
}

var highlightReplacer = strings.NewReplacer("<highlighttext>", "", "</highlighttext>", "")

func stripHighlight(s string) string {
	return strings.TrimSpace(highlightReplacer.Replace(s))
}
