package scraper

import (
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/spigell/airecruiter/internal/apperr"
	"github.com/spigell/airecruiter/internal/filtering"
	"github.com/spigell/airecruiter/internal/headhunter"
)

type Config struct {
	Sources           []string         `mapstructure:"sources"`
	RequestsPerSecond float64          `mapstructure:"requests-per-second"`
	Timeout           time.Duration    `mapstructure:"timeout"`
	Indeed            IndeedConfig     `mapstructure:"indeed"`
	HeadHunter        HHConfig         `mapstructure:"headhunter"`
	Filter            filtering.Config `mapstructure:"filter"`
}

type IndeedConfig struct {
	URL      string `mapstructure:"url"`
	MaxPages int    `mapstructure:"max-pages"`
}

type HHConfig struct {
	URL      string                  `mapstructure:"url"`
	Token    string                  `mapstructure:"token"`
	MaxPages int                     `mapstructure:"max-pages"`
	Search   headhunter.SearchParams `mapstructure:"search"`
}

// NewFromConfig builds a scraper with the sources named in cfg, in order.
func NewFromConfig(cfg Config, logger *zap.Logger) (*JobScraper, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	names := cfg.Sources
	if len(names) == 0 {
		names = []string{IndeedSourceName}
	}

	var sources []Source
	for _, name := range names {
		switch strings.ToLower(strings.TrimSpace(name)) {
		case IndeedSourceName:
			src := NewIndeedSource(NewRateLimitedClient(cfg.RequestsPerSecond, cfg.Timeout), logger)
			if cfg.Indeed.URL != "" {
				src.BaseURL = cfg.Indeed.URL
			}
			if cfg.Indeed.MaxPages > 0 {
				src.MaxPages = cfg.Indeed.MaxPages
			}
			sources = append(sources, src)
		case headhunter.Source:
			client := headhunter.New(logger.Named(headhunter.Source), cfg.HeadHunter.Token)
			if cfg.HeadHunter.URL != "" {
				client.APIURL = cfg.HeadHunter.URL
			}
			if cfg.HeadHunter.MaxPages > 0 {
				client.MaxPages = cfg.HeadHunter.MaxPages
			}
			if cfg.Timeout > 0 {
				client.HTTPClient.Timeout = cfg.Timeout
			}
			sources = append(sources, NewHeadHunterSource(client, cfg.HeadHunter.Search))
		default:
			return nil, apperr.Configuration("scraper", fmt.Errorf("unknown source %q", name))
		}
	}

	return New(logger.Named("scraper"), sources...).WithFilters(filtering.FromConfig(cfg.Filter)...), nil
}
