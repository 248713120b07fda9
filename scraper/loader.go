package scraper

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"golang.org/x/time/rate"

	"krisha_scrooper/monitoring"
)

const maxDocumentSize = 10 << 20

// ErrDocumentTooLarge is returned instead of a truncated body.
var ErrDocumentTooLarge = errors.New("document exceeds size limit")

// Response is a fetched document. Status is reported as-is; callers decide
// what counts as a failure.
type Response struct {
	Status int
	Body   []byte
	URL    string
}

type Loader interface {
	Fetch(ctx context.Context, url string, header http.Header) (*Response, error)
}

// HTTPLoader fetches documents with a bounded client and an optional shared
// rate limiter.
type HTTPLoader struct {
	client  *http.Client
	limiter *rate.Limiter
	target  string
	maxSize int64
}

// NewHTTPLoader builds a loader. target labels fetch metrics ("page",
// "analytics").
func NewHTTPLoader(client *http.Client, limiter *rate.Limiter, target string) *HTTPLoader {
	return &HTTPLoader{
		client:  client,
		limiter: limiter,
		target:  target,
		maxSize: maxDocumentSize,
	}
}

// NewLimiter returns nil when perSecond is not positive.
func NewLimiter(perSecond float64, burst int) *rate.Limiter {
	if perSecond <= 0 {
		return nil
	}
	if burst < 1 {
		burst = 1
	}
	return rate.NewLimiter(rate.Limit(perSecond), burst)
}

func (l *HTTPLoader) Fetch(ctx context.Context, url string, header http.Header) (*Response, error) {
	if l.limiter != nil {
		if err := l.limiter.Wait(ctx); err != nil {
			return nil, err
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	for key, values := range header {
		req.Header[key] = append([]string(nil), values...)
	}

	start := time.Now()
	resp, err := l.client.Do(req)
	if err != nil {
		monitoring.ObserveFetch(l.target, 0, time.Since(start))
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, l.maxSize+1))
	monitoring.ObserveFetch(l.target, resp.StatusCode, time.Since(start))
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}
	if int64(len(body)) > l.maxSize {
		return nil, fmt.Errorf("%s: %w (%d bytes)", url, ErrDocumentTooLarge, l.maxSize)
	}

	return &Response{
		Status: resp.StatusCode,
		Body:   body,
		URL:    resp.Request.URL.String(),
	}, nil
}
