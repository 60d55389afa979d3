// Package headhunter is a small client for the public hh.ru vacancies API.
package headhunter

import (
	"net/http"
	"time"

	"go.uber.org/zap"
)

const (
	apiURL    = "https://api.hh.ru"
	userAgent = "airecruiter/1.0 (+https://github.com/spigell/airecruiter)"
	// Max value for search per page.
	perPage = 100
	// hh.ru refuses to page past 2000 items.
	maxPages = 20
)

type Client struct {
	token      string
	logger     *zap.Logger
	HTTPClient *http.Client
	UserAgent  string
	APIURL     string
	// MaxPages bounds how many result pages one search may fetch.
	MaxPages int
}

// New returns a client for the public API. The token is optional; vacancy
// search works anonymously.
func New(logger *zap.Logger, token string) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Client{
		token:  token,
		APIURL: apiURL,
		HTTPClient: &http.Client{
			Timeout: 10 * time.Second,
		},
		logger:    logger,
		UserAgent: userAgent,
		MaxPages:  maxPages,
	}
}
