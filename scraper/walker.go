package scraper

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"krisha_scrooper/config"
	"krisha_scrooper/logging"
	"krisha_scrooper/models"
)

// WalkResult merges the pages of one search walk.
type WalkResult struct {
	URL        string
	Summaries  []models.ListingSummary
	Pages      int
	TotalPages int
	TotalFound int
	Skipped    int
}

// WalkPages reads page 1 to learn the page count, then fetches the remaining
// pages concurrently, up to maxPages (0 means the scraper's walk limit). The
// walk limit also caps maxPages. Any failed page fails the walk. Summaries
// keep page order and each id appears once.
func (s *Scraper) WalkPages(ctx context.Context, f models.FilterParams, maxPages int) (*WalkResult, error) {
	f.Page = 1
	first, err := s.ScrapeListings(ctx, f)
	if err != nil {
		return nil, fmt.Errorf("page 1: %w", err)
	}

	limit := s.maxPages
	if maxPages > 0 && maxPages < limit {
		limit = maxPages
	}
	last := first.Pagination.TotalPages
	if last > limit {
		if maxPages <= 0 || maxPages > s.maxPages {
			logging.Warnf("walk %s: %d pages reported, stopping at %d", first.URL, last, limit)
		}
		last = limit
	}
	if last < 1 {
		last = 1
	}

	pages := make([]*models.ListingPage, last)
	pages[0] = first

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency)
	for n := 2; n <= last; n++ {
		g.Go(func() error {
			pf := f
			pf.Page = n
			page, err := s.ScrapeListings(gctx, pf)
			if err != nil {
				return fmt.Errorf("page %d: %w", n, err)
			}
			pages[n-1] = page
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	result := mergePages(pages)
	result.URL = first.URL
	return result, nil
}

// Walk runs a saved search.
func (s *Scraper) Walk(ctx context.Context, watch config.Watch) (*WalkResult, error) {
	return s.WalkPages(ctx, FilterForWatch(watch), watch.MaxPages)
}

func mergePages(pages []*models.ListingPage) *WalkResult {
	result := &WalkResult{
		Summaries: make([]models.ListingSummary, 0),
		Pages:     len(pages),
	}
	if len(pages) > 0 {
		result.TotalPages = pages[0].Pagination.TotalPages
		result.TotalFound = pages[0].TotalFound
	}

	seen := make(map[string]bool)
	for _, page := range pages {
		result.Skipped += page.Skipped
		for _, summary := range page.Summaries {
			if seen[summary.ID] {
				continue
			}
			seen[summary.ID] = true
			result.Summaries = append(result.Summaries, summary)
		}
	}
	return result
}
