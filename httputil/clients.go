package httputil

import (
	"net/http"
	"net/url"
	"time"

	"krisha_scrooper/config"
)

const (
	defaultFetchTimeout     = 15 * time.Second
	defaultAnalyticsTimeout = 10 * time.Second
)

type Clients struct {
	Pages     *http.Client // listing and detail documents
	Analytics *http.Client // price-analysis fragments
}

// NewClients builds clients that never wait without bound: a zero timeout in
// cfg falls back to the package defaults.
func NewClients(cfg *config.HTTPConfig) *Clients {
	transport := &http.Transport{
		Proxy:               http.ProxyFromEnvironment,
		MaxIdleConnsPerHost: 4,
		IdleConnTimeout:     90 * time.Second,
	}
	if cfg.ProxyURL != "" {
		if proxyURL, err := url.Parse(cfg.ProxyURL); err == nil {
			transport.Proxy = http.ProxyURL(proxyURL)
		}
	}

	fetchTimeout := cfg.FetchTimeout
	if fetchTimeout <= 0 {
		fetchTimeout = defaultFetchTimeout
	}
	analyticsTimeout := cfg.AnalyticsTimeout
	if analyticsTimeout <= 0 {
		analyticsTimeout = defaultAnalyticsTimeout
	}

	return &Clients{
		Pages:     &http.Client{Timeout: fetchTimeout, Transport: transport},
		Analytics: &http.Client{Timeout: analyticsTimeout, Transport: transport},
	}
}

// BrowserHeaders are sent with every document fetch to avoid trivial bot rejection.
func BrowserHeaders(userAgent string) http.Header {
	h := http.Header{}
	h.Set("User-Agent", userAgent)
	h.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,image/webp,*/*;q=0.8")
	h.Set("Accept-Language", "ru-RU,ru;q=0.8,en-US;q=0.5,en;q=0.3")
	h.Set("Connection", "keep-alive")
	h.Set("Upgrade-Insecure-Requests", "1")
	return h
}

// AnalyticsHeaders mimic the XHR the listing page issues for its price block.
func AnalyticsHeaders(userAgent, referer string) http.Header {
	h := http.Header{}
	h.Set("User-Agent", userAgent)
	h.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	h.Set("Accept-Language", "ru-RU,ru;q=0.8,en-US;q=0.5,en;q=0.3")
	h.Set("Referer", referer)
	h.Set("X-Requested-With", "XMLHttpRequest")
	h.Set("Cache-Control", "no-cache")
	return h
}
