package scraper

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"

	"github.com/spigell/airecruiter/internal/models"
)

const (
	IndeedSourceName = "indeed"

	defaultIndeedURL = "https://in.indeed.com"
	indeedPageSize   = 10
	indeedMaxPages   = 5
)

// IndeedSource scrapes the Indeed search result pages.
type IndeedSource struct {
	BaseURL   string
	UserAgent string
	MaxPages  int

	client *RateLimitedClient
	logger *zap.Logger
}

func NewIndeedSource(client *RateLimitedClient, logger *zap.Logger) *IndeedSource {
	if logger == nil {
		logger = zap.NewNop()
	}

	return &IndeedSource{
		BaseURL:   defaultIndeedURL,
		UserAgent: defaultUserAgent,
		MaxPages:  indeedMaxPages,
		client:    client,
		logger:    logger.With(zap.String("source", IndeedSourceName)),
	}
}

func (s *IndeedSource) Name() string {
	return IndeedSourceName
}

func (s *IndeedSource) Fetch(ctx context.Context, query, location string, limit int) ([]models.JobListing, error) {
	listings := make([]models.JobListing, 0, limit)

	for page := 0; page < s.MaxPages && len(listings) < limit; page++ {
		pageURL, err := s.searchURL(query, location, page*indeedPageSize)
		if err != nil {
			return nil, err
		}

		doc, err := s.fetchDocument(ctx, pageURL)
		if err != nil {
			// Keep what earlier pages produced.
			if len(listings) > 0 {
				s.logger.Warn("stopping after page failure", zap.Int("page", page), zap.Error(err))
				break
			}
			return nil, err
		}

		found := s.extractListings(doc)
		s.logger.Debug("parsed result page", zap.Int("page", page), zap.Int("cards", len(found)))
		if len(found) == 0 {
			break
		}

		for _, l := range found {
			if len(listings) >= limit {
				break
			}
			listings = append(listings, l)
		}
	}

	return listings, nil
}

func (s *IndeedSource) searchURL(query, location string, start int) (string, error) {
	u, err := url.Parse(strings.TrimRight(s.BaseURL, "/") + "/jobs")
	if err != nil {
		return "", fmt.Errorf("build search url: %w", err)
	}

	q := url.Values{}
	q.Set("q", query)
	q.Set("l", location)
	if start > 0 {
		q.Set("start", strconv.Itoa(start))
	}
	u.RawQuery = q.Encode()

	return u.String(), nil
}

func (s *IndeedSource) fetchDocument(ctx context.Context, pageURL string) (*goquery.Document, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", s.UserAgent)
	req.Header.Set("Accept", "text/html")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request page: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("indeed returned %s", resp.Status)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("parse document: %w", err)
	}

	return doc, nil
}

func (s *IndeedSource) extractListings(doc *goquery.Document) []models.JobListing {
	var listings []models.JobListing

	doc.Find("div.job_seen_beacon").Each(func(_ int, card *goquery.Selection) {
		link := card.Find("h2.jobTitle a").First()
		title := cleanText(link.Text())
		company := cleanText(card.Find(`[data-testid="company-name"]`).First().Text())
		if title == "" || company == "" {
			return
		}

		listings = append(listings, models.JobListing{
			Title:       title,
			Company:     company,
			Location:    cleanText(card.Find(`[data-testid="text-location"]`).First().Text()),
			Description: cleanText(card.Find("div.job-snippet, [data-testid=\"jobsnippet_footer\"]").First().Text()),
			URL:         s.jobURL(link),
			Salary:      cleanText(card.Find("div.salary-snippet-container, [data-testid=\"attribute_snippet_testid\"]").First().Text()),
			PostedDate:  cleanText(card.Find("span.date").First().Text()),
			Source:      IndeedSourceName,
		})
	})

	return listings
}

// jobURL prefers the stable viewjob link built from the job key.
func (s *IndeedSource) jobURL(link *goquery.Selection) string {
	base := strings.TrimRight(s.BaseURL, "/")
	if jk, ok := link.Attr("data-jk"); ok && jk != "" {
		return base + "/viewjob?jk=" + url.QueryEscape(jk)
	}

	href, ok := link.Attr("href")
	if !ok || href == "" {
		return ""
	}
	if strings.HasPrefix(href, "http://") || strings.HasPrefix(href, "https://") {
		return href
	}
	return base + "/" + strings.TrimLeft(href, "/")
}

func cleanText(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
