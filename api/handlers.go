package api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"krisha_scrooper/logging"
	"krisha_scrooper/models"
	"krisha_scrooper/parser"
	"krisha_scrooper/scraper"
)

const (
	defaultRunsLimit = 50
	maxRunsLimit     = 500
	defaultLogsLimit = 200
)

type parseListingRequest struct {
	URL string `json:"url" form:"url"`
}

type filtersResponse struct {
	Apartments  []models.ListingSummary `json:"apartments"`
	Total       int                     `json:"total"`
	TotalPages  int                     `json:"totalPages"`
	CurrentPage int                     `json:"currentPage"`
	HasNextPage bool                    `json:"hasNextPage"`
	URL         string                  `json:"url"`
	Filters     models.FilterParams     `json:"filters"`
}

// ParseListing extracts one listing page. GET without a url query answers
// with usage info.
func (h *Handlers) ParseListing(c *gin.Context) {
	var req parseListingRequest
	if c.Request.Method == http.MethodGet {
		req.URL = c.Query("url")
		if req.URL == "" {
			c.JSON(http.StatusOK, gin.H{
				"message": "Krisha.kz Parser API готов к работе",
				"usage":   `POST /api/parse-krisha with { url: "https://krisha.kz/..." }`,
			})
			return
		}
	} else if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "Некорректное тело запроса", err)
		return
	}

	if req.URL == "" {
		respondError(c, http.StatusBadRequest, "Неверная ссылка на krisha.kz", nil)
		return
	}

	detail, err := h.extractor.ScrapeDetail(c.Request.Context(), req.URL)
	if err != nil {
		respondScrapeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": detail})
}

// ParseFilters extracts one search-results page. GET reads the filters from
// the query string and answers with usage info when city is absent.
func (h *Handlers) ParseFilters(c *gin.Context) {
	var f models.FilterParams
	if c.Request.Method == http.MethodGet {
		if c.Query("city") == "" {
			c.JSON(http.StatusOK, gin.H{
				"message": "Krisha.kz Filters Parser API готов к работе",
				"usage":   "POST /api/parse-filters with { city, priceFrom, priceTo, rooms, page }",
				"example": models.FilterParams{City: "astana", PriceFrom: "10000000", PriceTo: "40000000", Rooms: "1", Page: 1},
			})
			return
		}
		f = models.FilterParams{
			City:      c.Query("city"),
			PriceFrom: c.Query("priceFrom"),
			PriceTo:   c.Query("priceTo"),
			Rooms:     c.Query("rooms"),
		}
		f.Page, _ = strconv.Atoi(c.Query("page"))
	} else if err := c.ShouldBindJSON(&f); err != nil {
		respondError(c, http.StatusBadRequest, "Некорректное тело запроса", err)
		return
	}

	if f.City == "" {
		respondError(c, http.StatusBadRequest, "Город обязателен", nil)
		return
	}
	if f.Page < 1 {
		f.Page = 1
	}

	page, err := h.extractor.ScrapeListings(c.Request.Context(), f)
	if err != nil {
		respondScrapeError(c, err)
		return
	}

	summaries := page.Summaries
	if summaries == nil {
		summaries = []models.ListingSummary{}
	}
	c.JSON(http.StatusOK, filtersResponse{
		Apartments:  summaries,
		Total:       page.TotalFound,
		TotalPages:  page.Pagination.TotalPages,
		CurrentPage: f.Page,
		HasNextPage: page.Pagination.HasNextPage,
		URL:         page.URL,
		Filters:     f,
	})
}

func (h *Handlers) Health(c *gin.Context) {
	if err := h.store.Ping(); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unhealthy", "error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (h *Handlers) Status(c *gin.Context) {
	data, err := h.status.MarshalStatus()
	if err != nil {
		respondError(c, http.StatusInternalServerError, "status unavailable", err)
		return
	}
	c.Data(http.StatusOK, "application/json; charset=utf-8", data)
}

func (h *Handlers) Runs(c *gin.Context) {
	limit := queryLimit(c, defaultRunsLimit)
	runs, err := h.store.RecentRuns(limit)
	if err != nil {
		respondError(c, http.StatusInternalServerError, "failed to load runs", err)
		return
	}
	if runs == nil {
		runs = []models.ScrapeRun{}
	}
	c.JSON(http.StatusOK, gin.H{"runs": runs})
}

func (h *Handlers) RunLogs(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		respondError(c, http.StatusBadRequest, "invalid run id", err)
		return
	}
	logs, err := h.store.RecentLogs(&id, queryLimit(c, defaultLogsLimit))
	if err != nil {
		respondError(c, http.StatusInternalServerError, "failed to load logs", err)
		return
	}
	if logs == nil {
		logs = []models.ScrapeLog{}
	}
	c.JSON(http.StatusOK, gin.H{"logs": logs})
}

func (h *Handlers) Watches(c *gin.Context) {
	stats, err := h.store.GetWatchStats()
	if err != nil {
		respondError(c, http.StatusInternalServerError, "failed to load watch stats", err)
		return
	}
	if stats == nil {
		stats = []models.WatchStats{}
	}
	c.JSON(http.StatusOK, gin.H{"watches": stats})
}

type commandRequest struct {
	Command models.CommandType `json:"command" binding:"required"`
	Watch   string             `json:"watch"`
}

// EnqueueCommand queues a control command for the daemon's command poller.
func (h *Handlers) EnqueueCommand(c *gin.Context) {
	var req commandRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "invalid command", err)
		return
	}
	if !req.Command.Valid() {
		respondError(c, http.StatusBadRequest, "unknown command: "+string(req.Command), nil)
		return
	}

	var params *models.CommandParams
	if req.Watch != "" {
		params = &models.CommandParams{Watch: req.Watch}
	}
	id, err := h.store.EnqueueCommand(req.Command, params)
	if err != nil {
		respondError(c, http.StatusInternalServerError, "failed to enqueue command", err)
		return
	}
	c.JSON(http.StatusAccepted, gin.H{"id": id, "command": req.Command})
}

func queryLimit(c *gin.Context, def int) int {
	n, err := strconv.Atoi(c.Query("limit"))
	if err != nil || n <= 0 {
		return def
	}
	if n > maxRunsLimit {
		return maxRunsLimit
	}
	return n
}

// statusFor maps extraction errors to HTTP statuses.
func statusFor(err error) int {
	switch {
	case errors.Is(err, scraper.ErrInvalidURL):
		return http.StatusBadRequest
	case errors.Is(err, parser.ErrContentNotFound):
		return http.StatusUnprocessableEntity
	case errors.Is(err, scraper.ErrUpstream):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func respondScrapeError(c *gin.Context, err error) {
	status := statusFor(err)
	var msg string
	switch status {
	case http.StatusBadRequest:
		msg = "Неверная ссылка на krisha.kz"
	case http.StatusUnprocessableEntity:
		msg = "Не удалось извлечь данные из объявления. Возможно, изменилась структура страницы или объявление удалено."
	case http.StatusBadGateway:
		msg = "Не удалось загрузить страницу krisha.kz. Попробуйте позже."
	default:
		msg = "Ошибка при парсинге. Проверьте параметры и попробуйте позже."
	}
	logging.Warnf("%s %s: %v", c.Request.Method, c.FullPath(), err)
	respondError(c, status, msg, err)
}

func respondError(c *gin.Context, status int, msg string, err error) {
	body := gin.H{"error": msg}
	if err != nil {
		body["details"] = err.Error()
	}
	c.AbortWithStatusJSON(status, body)
}
