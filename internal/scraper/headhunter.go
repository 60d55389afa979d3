package scraper

import (
	"context"
	"strings"

	"github.com/spigell/airecruiter/internal/headhunter"
	"github.com/spigell/airecruiter/internal/models"
)

// HeadHunterSource searches the hh.ru vacancies API.
type HeadHunterSource struct {
	client *headhunter.Client
	params headhunter.SearchParams
}

// NewHeadHunterSource uses params as a template; the query text is set per call.
func NewHeadHunterSource(client *headhunter.Client, params headhunter.SearchParams) *HeadHunterSource {
	return &HeadHunterSource{client: client, params: params}
}

func (s *HeadHunterSource) Name() string {
	return headhunter.Source
}

// Fetch adds the location to the text search when no area ids are configured.
func (s *HeadHunterSource) Fetch(ctx context.Context, query, location string, limit int) ([]models.JobListing, error) {
	params := s.params
	params.Text = query
	if len(params.Areas) == 0 && strings.TrimSpace(location) != "" {
		params.Text = strings.TrimSpace(query + " " + location)
	}

	vacancies, err := s.client.Search(ctx, params, limit)
	if err != nil {
		return nil, err
	}

	listings := make([]models.JobListing, 0, len(vacancies))
	for _, v := range vacancies {
		listing := v.ToJobListing()
		if listing.Title == "" || listing.Company == "" {
			continue
		}
		listings = append(listings, listing)
	}

	return listings, nil
}
