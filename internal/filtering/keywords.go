package filtering

import (
	"context"
	"strings"

	"github.com/spigell/airecruiter/internal/models"
)

type keywordsFilter struct {
	keywords []string
}

// NewKeywords creates a filter that removes listings whose title or
// description mentions any of the keywords.
func NewKeywords(keywords []string) Filter {
	f := &keywordsFilter{}
	for _, k := range keywords {
		if k = normalize(k); k != "" {
			f.keywords = append(f.keywords, k)
		}
	}
	return f
}

func (f *keywordsFilter) Name() string { return "keywords" }

func (f *keywordsFilter) Apply(_ context.Context, listings []models.JobListing) ([]models.JobListing, Step, error) {
	out, step := keep(listings, func(l models.JobListing) bool {
		text := strings.ToLower(l.Title + "\n" + l.Description)
		for _, k := range f.keywords {
			if strings.Contains(text, k) {
				return false
			}
		}
		return true
	})
	return out, step, nil
}
