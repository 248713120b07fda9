package api

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"krisha_scrooper/models"
	"krisha_scrooper/monitoring"
)

// Extractor runs the on-demand extractions.
type Extractor interface {
	ScrapeDetail(ctx context.Context, listingURL string) (*models.ListingDetail, error)
	ScrapeListings(ctx context.Context, f models.FilterParams) (*models.ListingPage, error)
}

// Store is the read side of the operational database plus the command queue.
type Store interface {
	Ping() error
	RecentRuns(limit int) ([]models.ScrapeRun, error)
	RecentLogs(runID *int64, limit int) ([]models.ScrapeLog, error)
	GetWatchStats() ([]models.WatchStats, error)
	EnqueueCommand(cmd models.CommandType, params *models.CommandParams) (int64, error)
}

type StatusReporter interface {
	MarshalStatus() ([]byte, error)
}

type Handlers struct {
	extractor Extractor
	store     Store
	status    StatusReporter
}

func NewHandlers(extractor Extractor, store Store, status StatusReporter) *Handlers {
	return &Handlers{
		extractor: extractor,
		store:     store,
		status:    status,
	}
}

// NewRouter wires every route. Probe endpoints are left out of the request
// metrics.
func NewRouter(h *Handlers) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), monitoring.GinMiddleware("/metrics", "/healthz"))

	r.GET("/healthz", h.Health)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := r.Group("/api")
	{
		api.GET("/parse-krisha", h.ParseListing)
		api.POST("/parse-krisha", h.ParseListing)
		api.GET("/parse-filters", h.ParseFilters)
		api.POST("/parse-filters", h.ParseFilters)

		api.GET("/status", h.Status)
		api.GET("/runs", h.Runs)
		api.GET("/runs/:id/logs", h.RunLogs)
		api.GET("/watches", h.Watches)
		api.POST("/commands", h.EnqueueCommand)
	}
	return r
}
