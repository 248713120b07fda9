package scraper

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"krisha_scrooper/config"
	"krisha_scrooper/httputil"
	"krisha_scrooper/logging"
	"krisha_scrooper/models"
	"krisha_scrooper/monitoring"
	"krisha_scrooper/parser"
)

// Scraper fetches listing documents and runs the extractors over them.
// It holds no per-request state and is safe for concurrent use.
type Scraper struct {
	site        *config.SiteConfig
	parser      *parser.Parser
	pages       Loader
	analytics   *AnalyticsFetcher
	concurrency int
	maxPages    int
}

func New(site *config.SiteConfig, clients *httputil.Clients, cfg config.ScraperConfig) *Scraper {
	limiter := NewLimiter(cfg.RateLimit, cfg.RateBurst)
	return NewWithLoaders(site,
		NewHTTPLoader(clients.Pages, limiter, "page"),
		NewHTTPLoader(clients.Analytics, limiter, "analytics"),
		cfg,
	)
}

func NewWithLoaders(site *config.SiteConfig, pages, analytics Loader, cfg config.ScraperConfig) *Scraper {
	concurrency := cfg.WalkConcurrency
	if concurrency < 1 {
		concurrency = 1
	}
	maxPages := cfg.MaxWalkPages
	if maxPages < 1 {
		maxPages = config.DefaultMaxWalkPages
	}
	return &Scraper{
		site: site,
		parser: parser.New(parser.Options{
			PhotoHost:     site.PhotoHost,
			CardPhotoHost: site.CardPhotoHost,
			PageSize:      site.PageSize,
		}),
		pages:       pages,
		analytics:   NewAnalyticsFetcher(analytics, site.AnalyticsEndpoint, site.UserAgent),
		concurrency: concurrency,
		maxPages:    maxPages,
	}
}

func (s *Scraper) ID() string {
	return s.site.ID
}

func (s *Scraper) Site() *config.SiteConfig {
	return s.site
}

// ValidateListingURL accepts http(s) URLs on the site host or its subdomains.
func (s *Scraper) ValidateListingURL(raw string) error {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("%w: %q", ErrInvalidURL, raw)
	}
	base, err := url.Parse(s.site.BaseURL)
	if err != nil {
		return fmt.Errorf("site base url: %w", err)
	}

	host := strings.ToLower(u.Hostname())
	siteHost := strings.ToLower(base.Hostname())
	if host != siteHost && !strings.HasSuffix(host, "."+siteHost) {
		return fmt.Errorf("%w: %s is not on %s", ErrInvalidURL, host, siteHost)
	}
	return nil
}

// ScrapeDetail extracts one listing and merges its price analytics.
func (s *Scraper) ScrapeDetail(ctx context.Context, listingURL string) (*models.ListingDetail, error) {
	if err := s.ValidateListingURL(listingURL); err != nil {
		return nil, err
	}
	listingURL = strings.TrimSpace(listingURL)

	doc, err := s.fetchDocument(ctx, listingURL)
	if err != nil {
		monitoring.RecordExtraction("detail", "upstream_error")
		return nil, err
	}

	detail, err := s.parser.ParseDetailDocument(doc)
	if err != nil {
		if errors.Is(err, parser.ErrContentNotFound) {
			monitoring.RecordExtraction("detail", "not_found")
		}
		return nil, fmt.Errorf("%s: %w", listingURL, err)
	}

	remote := s.analytics.Fetch(ctx, listingURL)
	merged, source := parser.MergeAnalytics(remote, func() models.PriceAnalytics {
		return parser.SameDocumentAnalytics(doc)
	})
	parser.ApplyAnalytics(detail, merged)
	monitoring.RecordAnalyticsSource(string(source))
	monitoring.RecordExtraction("detail", "ok")

	logging.Infof("detail %s: %q, %s, %d images, analytics from %s",
		listingURL, detail.Title, detail.Price, len(detail.Images), source)
	return detail, nil
}

// ScrapeListings extracts one search-results page.
func (s *Scraper) ScrapeListings(ctx context.Context, f models.FilterParams) (*models.ListingPage, error) {
	if f.Page < 1 {
		f.Page = 1
	}
	return s.ScrapeListingURL(ctx, BuildFilterURL(s.site, f), f.Page)
}

func (s *Scraper) ScrapeListingURL(ctx context.Context, pageURL string, pageNum int) (*models.ListingPage, error) {
	doc, err := s.fetchDocument(ctx, pageURL)
	if err != nil {
		monitoring.RecordExtraction("listing", "upstream_error")
		return nil, err
	}

	page := s.parser.ListingPageFromDocument(doc)
	page.URL = pageURL
	page.CurrentPage = pageNum

	monitoring.RecordExtraction("listing", "ok")
	monitoring.RecordSkippedCards(page.Skipped)
	if page.Skipped > 0 {
		logging.Debugf("listing %s: skipped %d malformed cards", pageURL, page.Skipped)
	}
	logging.Infof("listing %s: %d cards, page %d/%d, %d total",
		pageURL, len(page.Summaries), pageNum, page.Pagination.TotalPages, page.TotalFound)
	return page, nil
}

func (s *Scraper) fetchDocument(ctx context.Context, pageURL string) (*goquery.Document, error) {
	resp, err := s.pages.Fetch(ctx, pageURL, httputil.BrowserHeaders(s.site.UserAgent))
	if err != nil {
		return nil, &UpstreamError{URL: pageURL, Err: err}
	}
	if !statusOK(resp.Status) {
		return nil, &UpstreamError{URL: pageURL, Status: resp.Status}
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(resp.Body))
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", pageURL, err)
	}
	return doc, nil
}
