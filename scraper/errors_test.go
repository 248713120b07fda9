package scraper

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestUpstreamError(t *testing.T) {
	statusErr := &UpstreamError{URL: "https://krisha.kz/a/show/1", Status: 404}
	assert.True(t, errors.Is(statusErr, ErrUpstream))
	assert.Equal(t, "fetch https://krisha.kz/a/show/1: status 404", statusErr.Error())

	wrapped := fmt.Errorf("page 2: %w", &UpstreamError{URL: "u", Err: errConnRefused})
	assert.True(t, errors.Is(wrapped, ErrUpstream))
	assert.True(t, errors.Is(wrapped, errConnRefused))

	var ue *UpstreamError
	assert.True(t, errors.As(wrapped, &ue))
	assert.Equal(t, "u", ue.URL)
}
