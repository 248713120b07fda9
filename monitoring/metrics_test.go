package monitoring

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestGinMiddlewareCountsRoutes(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(GinMiddleware("/metrics"))
	r.GET("/api/ping", func(c *gin.Context) { c.Status(http.StatusNoContent) })
	r.GET("/metrics", func(c *gin.Context) { c.Status(http.StatusOK) })

	before := testutil.ToFloat64(HTTPRequestsTotal.WithLabelValues("GET", "/api/ping", "204"))
	skippedBefore := testutil.ToFloat64(HTTPRequestsTotal.WithLabelValues("GET", "/metrics", "200"))

	for _, path := range []string{"/api/ping", "/api/ping", "/metrics"} {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
	}

	assert.Equal(t, before+2, testutil.ToFloat64(HTTPRequestsTotal.WithLabelValues("GET", "/api/ping", "204")))
	assert.Equal(t, skippedBefore, testutil.ToFloat64(HTTPRequestsTotal.WithLabelValues("GET", "/metrics", "200")))
}

func TestRecordHelpers(t *testing.T) {
	before := testutil.ToFloat64(CardsSkippedTotal)
	RecordSkippedCards(0)
	RecordSkippedCards(3)
	assert.Equal(t, before+3, testutil.ToFloat64(CardsSkippedTotal))

	sourceBefore := testutil.ToFloat64(AnalyticsSourceTotal.WithLabelValues("remote"))
	RecordAnalyticsSource("remote")
	assert.Equal(t, sourceBefore+1, testutil.ToFloat64(AnalyticsSourceTotal.WithLabelValues("remote")))

	ObserveFetch("page", 0, time.Second)
	ObserveFetch("page", 200, time.Second)
	assert.Equal(t, 2, testutil.CollectAndCount(FetchDuration))
}
