package filtering

import (
	"context"
	"strings"

	"github.com/spigell/airecruiter/internal/models"
)

type companiesFilter struct {
	companies map[string]struct{}
}

// NewCompanies creates a filter that removes listings by company name,
// ignoring case and surrounding spaces.
func NewCompanies(companies []string) Filter {
	set := make(map[string]struct{}, len(companies))
	for _, c := range companies {
		if c = normalize(c); c != "" {
			set[c] = struct{}{}
		}
	}
	return &companiesFilter{companies: set}
}

func (f *companiesFilter) Name() string { return "companies" }

func (f *companiesFilter) Apply(_ context.Context, listings []models.JobListing) ([]models.JobListing, Step, error) {
	out, step := keep(listings, func(l models.JobListing) bool {
		_, excluded := f.companies[normalize(l.Company)]
		return !excluded
	})
	return out, step, nil
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
