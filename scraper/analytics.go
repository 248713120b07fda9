package scraper

import (
	"bytes"
	"context"
	"net/url"

	"krisha_scrooper/httputil"
	"krisha_scrooper/logging"
	"krisha_scrooper/models"
	"krisha_scrooper/parser"
)

// AnalyticsFetcher asks the site's price-analysis endpoint about one listing.
// Every failure degrades to the empty result.
type AnalyticsFetcher struct {
	loader    Loader
	endpoint  string
	userAgent string
}

func NewAnalyticsFetcher(loader Loader, endpoint, userAgent string) *AnalyticsFetcher {
	return &AnalyticsFetcher{
		loader:    loader,
		endpoint:  endpoint,
		userAgent: userAgent,
	}
}

func (f *AnalyticsFetcher) Fetch(ctx context.Context, listingURL string) models.PriceAnalytics {
	id, ok := parser.ExtractAdvertID(listingURL)
	if !ok {
		logging.Debugf("analytics: no advert id in %s", listingURL)
		return models.PriceAnalytics{}
	}

	endpoint, err := f.endpointFor(id)
	if err != nil {
		logging.Warnf("analytics: bad endpoint %q: %v", f.endpoint, err)
		return models.PriceAnalytics{}
	}

	resp, err := f.loader.Fetch(ctx, endpoint, httputil.AnalyticsHeaders(f.userAgent, listingURL))
	if err != nil {
		logging.Warnf("analytics %s: %v", id, err)
		return models.PriceAnalytics{}
	}
	if !statusOK(resp.Status) {
		logging.Warnf("analytics %s: status %d", id, resp.Status)
		return models.PriceAnalytics{}
	}

	a, err := parser.ParseAnalyticsDocument(bytes.NewReader(resp.Body))
	if err != nil {
		logging.Warnf("analytics %s: %v", id, err)
		return models.PriceAnalytics{}
	}
	logging.Debugf("analytics %s: %+v", id, a)
	return a
}

func (f *AnalyticsFetcher) endpointFor(id string) (string, error) {
	u, err := url.Parse(f.endpoint)
	if err != nil {
		return "", err
	}
	q := u.Query()
	q.Set("id", id)
	u.RawQuery = q.Encode()
	return u.String(), nil
}
