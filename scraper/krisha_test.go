package scraper

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"krisha_scrooper/config"
	"krisha_scrooper/models"
	"krisha_scrooper/parser"
)

const (
	detailURL = "https://krisha.kz/a/show/685432101"

	detailPage = `<html><body>
		<div class="offer__advert-title"><h1>2-комнатная квартира, 54 м², 5/9 этаж</h1></div>
		<div class="offer__price">25 000 000 ₸</div>
		<div class="offer__price-analytics">
			<span class="green-price">470 000 ₸</span>
			<span class="blue-price">480 000 ₸</span>
		</div>
	</body></html>`
)

func newTestScraper(pages, analytics *fakeLoader) *Scraper {
	return NewWithLoaders(testSite(), pages, analytics, config.ScraperConfig{WalkConcurrency: 2})
}

func TestValidateListingURL(t *testing.T) {
	s := newTestScraper(nil, nil)

	for _, ok := range []string{
		"https://krisha.kz/a/show/1",
		"http://m.krisha.kz/a/show/1",
		"  https://KRISHA.kz/a/show/1 ",
	} {
		assert.NoError(t, s.ValidateListingURL(ok), ok)
	}
	for _, bad := range []string{
		"",
		"krisha.kz/a/show/1",
		"ftp://krisha.kz/a/show/1",
		"https://notkrisha.kz/a/show/1",
		"https://krisha.kz.evil.example/a/show/1",
	} {
		err := s.ValidateListingURL(bad)
		assert.True(t, errors.Is(err, ErrInvalidURL), bad)
	}
}

func TestScrapeDetail_RemoteAnalyticsWin(t *testing.T) {
	pages := &fakeLoader{route: func(string) (*Response, error) { return htmlResponse(detailPage) }}
	analytics := &fakeLoader{route: func(string) (*Response, error) {
		return htmlResponse(`<div><span class="green-price">463 000 ₸</span></div>`)
	}}

	d, err := newTestScraper(pages, analytics).ScrapeDetail(context.Background(), detailURL)
	require.NoError(t, err)

	assert.Equal(t, "2-комнатная квартира, 54 м², 5/9 этаж", d.Title)
	assert.Equal(t, "25 000 000 ₸", d.Price)
	assert.Equal(t, "463 000 ₸", d.PricePerMeter)
	assert.Equal(t, models.MarketPrice{ThisListing: "463 000 ₸"}, d.MarketPrice)

	calls := analytics.calls()
	require.Len(t, calls, 1)
	assert.Equal(t, "https://krisha.kz/analytics/aPriceAnalysis/?id=685432101", calls[0])
}

func TestScrapeDetail_FallsBackToPageAnalytics(t *testing.T) {
	pages := &fakeLoader{route: func(string) (*Response, error) { return htmlResponse(detailPage) }}
	analytics := &fakeLoader{route: func(string) (*Response, error) { return statusResponse(http.StatusInternalServerError) }}

	d, err := newTestScraper(pages, analytics).ScrapeDetail(context.Background(), detailURL)
	require.NoError(t, err)

	assert.Equal(t, "470 000 ₸", d.MarketPrice.ThisListing)
	assert.Equal(t, "480 000 ₸", d.MarketPrice.SimilarInRegion)
	assert.Equal(t, "470 000 ₸", d.PricePerMeter)
}

func TestScrapeDetail_AcceptsAny2xxAnalytics(t *testing.T) {
	pages := &fakeLoader{route: func(string) (*Response, error) { return htmlResponse(detailPage) }}
	analytics := &fakeLoader{route: func(string) (*Response, error) {
		return &Response{
			Status: http.StatusNonAuthoritativeInfo,
			Body:   []byte(`<div><span class="green-price">463 000 ₸</span></div>`),
		}, nil
	}}

	d, err := newTestScraper(pages, analytics).ScrapeDetail(context.Background(), detailURL)
	require.NoError(t, err)
	assert.Equal(t, "463 000 ₸", d.MarketPrice.ThisListing)
}

func TestScrapeDetail_AnalyticsTransportErrorIsNotFatal(t *testing.T) {
	page := strings.Replace(detailPage, "offer__price-analytics", "unrelated", 1)
	pages := &fakeLoader{route: func(string) (*Response, error) { return htmlResponse(page) }}
	analytics := &fakeLoader{route: func(string) (*Response, error) { return nil, errConnRefused }}

	d, err := newTestScraper(pages, analytics).ScrapeDetail(context.Background(), detailURL)
	require.NoError(t, err)
	assert.Equal(t, models.MarketPrice{}, d.MarketPrice)
	assert.Equal(t, d.Price, d.PricePerMeter)
}

func TestScrapeDetail_Errors(t *testing.T) {
	ctx := context.Background()
	analytics := &fakeLoader{route: func(string) (*Response, error) { return statusResponse(http.StatusOK) }}

	t.Run("invalid url", func(t *testing.T) {
		pages := &fakeLoader{route: func(string) (*Response, error) { return htmlResponse(detailPage) }}
		_, err := newTestScraper(pages, analytics).ScrapeDetail(ctx, "https://example.com/a/show/1")
		assert.True(t, errors.Is(err, ErrInvalidURL))
		assert.Empty(t, pages.calls())
	})

	t.Run("upstream status", func(t *testing.T) {
		pages := &fakeLoader{route: func(string) (*Response, error) { return statusResponse(http.StatusNotFound) }}
		d, err := newTestScraper(pages, analytics).ScrapeDetail(ctx, detailURL)
		assert.Nil(t, d)
		assert.True(t, errors.Is(err, ErrUpstream))
	})

	t.Run("transport", func(t *testing.T) {
		pages := &fakeLoader{route: func(string) (*Response, error) { return nil, errConnRefused }}
		_, err := newTestScraper(pages, analytics).ScrapeDetail(ctx, detailURL)
		assert.True(t, errors.Is(err, ErrUpstream))
		assert.True(t, errors.Is(err, errConnRefused))
	})

	t.Run("content not found", func(t *testing.T) {
		pages := &fakeLoader{route: func(string) (*Response, error) { return htmlResponse(`<html><body>captcha</body></html>`) }}
		_, err := newTestScraper(pages, analytics).ScrapeDetail(ctx, detailURL)
		assert.True(t, errors.Is(err, parser.ErrContentNotFound))
		assert.Empty(t, analytics.calls())
	})
}

func TestScrapeListings(t *testing.T) {
	pages := &fakeLoader{route: func(string) (*Response, error) { return htmlResponse(listingHTML(3, "1", "2")) }}
	s := newTestScraper(pages, nil)

	page, err := s.ScrapeListings(context.Background(), models.FilterParams{City: "almaty", Page: 2})
	require.NoError(t, err)

	assert.Equal(t, "https://krisha.kz/prodazha/kvartiry/almaty/?page=2", page.URL)
	assert.Equal(t, 2, page.CurrentPage)
	assert.Equal(t, 45, page.TotalFound)
	assert.Equal(t, 3, page.Pagination.TotalPages)
	require.Len(t, page.Summaries, 2)
	assert.Equal(t, "1", page.Summaries[0].ID)
}
