package scraper

import (
	"context"

	"krisha_scrooper/config"
	"krisha_scrooper/httputil"
)

// Handler walks saved searches for one site.
type Handler interface {
	ID() string
	Walk(ctx context.Context, watch config.Watch) (*WalkResult, error)
}

func NewHandler(siteCfg *config.SiteConfig, clients *httputil.Clients, cfg config.ScraperConfig) Handler {
	return New(siteCfg, clients, cfg)
}
