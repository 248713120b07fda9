package scraper

import (
	"errors"
	"fmt"
)

var (
	// ErrUpstream matches every UpstreamError.
	ErrUpstream = errors.New("upstream fetch failed")
	// ErrInvalidURL is returned for URLs outside the configured site.
	ErrInvalidURL = errors.New("invalid listing url")
)

// UpstreamError is a failed primary document fetch: a transport error or a
// non-2xx status. Nothing partial is returned alongside it.
type UpstreamError struct {
	URL    string
	Status int
	Err    error
}

func (e *UpstreamError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("fetch %s: %v", e.URL, e.Err)
	}
	return fmt.Sprintf("fetch %s: status %d", e.URL, e.Status)
}

func (e *UpstreamError) Unwrap() error {
	return e.Err
}

func (e *UpstreamError) Is(target error) bool {
	return target == ErrUpstream
}

// statusOK reports whether an upstream status counts as success.
func statusOK(status int) bool {
	return status >= 200 && status < 300
}
