package filtering

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spigell/airecruiter/internal/models"
)

type excludeFileFilter struct {
	path string
}

// NewExcludeFile creates a filter that removes listings whose URL is listed in
// the file, one per line. Blank lines and lines starting with # are ignored.
// A missing file excludes nothing.
func NewExcludeFile(path string) Filter {
	return &excludeFileFilter{path: strings.TrimSpace(path)}
}

func (f *excludeFileFilter) Name() string { return "exclude_file" }

func (f *excludeFileFilter) Apply(_ context.Context, listings []models.JobListing) ([]models.JobListing, Step, error) {
	urls, err := readExcluded(f.path)
	if err != nil {
		return nil, Step{}, fmt.Errorf("getting excluded listings from file: %w", err)
	}

	out, step := keep(listings, func(l models.JobListing) bool {
		_, excluded := urls[strings.TrimSpace(l.URL)]
		return !excluded
	})
	return out, step, nil
}

func readExcluded(path string) (map[string]struct{}, error) {
	file, err := os.Open(path)
	if errors.Is(err, os.ErrNotExist) {
		return map[string]struct{}{}, nil
	}
	if err != nil {
		return nil, err
	}
	defer file.Close()

	urls := make(map[string]struct{})
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		urls[line] = struct{}{}
	}

	return urls, scanner.Err()
}
