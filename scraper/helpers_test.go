package scraper

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"

	"krisha_scrooper/config"
)

// fakeLoader answers fetches from a routing function and records the URLs.
type fakeLoader struct {
	mu    sync.Mutex
	urls  []string
	route func(url string) (*Response, error)
}

func (f *fakeLoader) Fetch(_ context.Context, url string, _ http.Header) (*Response, error) {
	f.mu.Lock()
	f.urls = append(f.urls, url)
	f.mu.Unlock()
	return f.route(url)
}

func (f *fakeLoader) calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.urls...)
}

func htmlResponse(body string) (*Response, error) {
	return &Response{Status: http.StatusOK, Body: []byte(body)}, nil
}

func statusResponse(status int) (*Response, error) {
	return &Response{Status: status}, nil
}

var errConnRefused = errors.New("connection refused")

func testSite() *config.SiteConfig {
	return config.DefaultSite()
}

func cardHTML(id string) string {
	return fmt.Sprintf(`<div class="a-card" data-id="%s" data-uuid="uuid-%s">
		<a class="a-card__title" href="/a/show/%s">2-комнатная квартира, 50 м², 3/9 этаж</a>
		<div class="a-card__price">20 000 000 ₸</div></div>`, id, id, id)
}

func listingHTML(pages int, ids ...string) string {
	var b strings.Builder
	b.WriteString(`<html><body><div class="search-results-nb">Найдено 45 объявлений</div>`)
	for _, id := range ids {
		b.WriteString(cardHTML(id))
	}
	b.WriteString(`<div class="paginator">`)
	for n := 1; n <= pages; n++ {
		fmt.Fprintf(&b, `<a class="paginator__btn" data-page="%d">%d</a>`, n, n)
	}
	b.WriteString(`</div></body></html>`)
	return b.String()
}
