package main

import (
	"context"
	"encoding/json"
	"flag"
	"io"
	"log"
	"net/url"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"krisha_scrooper/api"
	"krisha_scrooper/config"
	"krisha_scrooper/httputil"
	"krisha_scrooper/logging"
	"krisha_scrooper/models"
	"krisha_scrooper/scheduler"
	"krisha_scrooper/scraper"
	"krisha_scrooper/storage"
)

var (
	scrapeNow = flag.Bool("scrape", false, "Walk every saved search once and exit")
	resetData = flag.Bool("reset", false, "Clear runs, logs, watch stats and queued commands, then exit")
	detailURL = flag.String("url", "", "Extract one listing and print it as JSON")
	city      = flag.String("city", "", "Extract search results for a city and print them as JSON")
	rooms     = flag.String("rooms", "", "Room count filter")
	priceFrom = flag.String("price-from", "", "Minimum price filter")
	priceTo   = flag.String("price-to", "", "Maximum price filter")
	page      = flag.Int("page", 1, "Results page to extract")
	pages     = flag.Int("pages", 0, "Walk this many pages from page 1 (0 disables the walk)")
)

func main() {
	flag.Parse()
	log.SetFlags(log.LstdFlags | log.Lshortfile)

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// One-shot extraction prints JSON on stdout, so its logs go to stderr.
	var console io.Writer = os.Stdout
	if *detailURL != "" || *city != "" {
		console = os.Stderr
	}
	logFile := logging.Setup(cfg.LogPath, console)
	defer logFile.Close()
	logging.SetLevel(logging.ParseLevel(cfg.LogLevel))

	site := cfg.Site()
	clients := httputil.NewClients(&cfg.HTTP)
	if cfg.HTTP.ProxyURL != "" {
		logging.Infof("proxy: %s", maskProxyURL(cfg.HTTP.ProxyURL))
	}
	krisha := scraper.New(site, clients, cfg.Scraper)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// One-shot extraction modes never touch the database.
	switch {
	case *detailURL != "":
		detail, err := krisha.ScrapeDetail(ctx, *detailURL)
		if err != nil {
			log.Fatalf("Extraction failed: %v", err)
		}
		printJSON(map[string]interface{}{"data": detail})
		return
	case *city != "":
		runFilters(ctx, krisha)
		return
	}

	logging.Infof("starting krisha_scrooper...")
	logging.Infof("loaded %d site configs", len(cfg.Sites))
	for id, s := range cfg.Sites {
		logging.Infof("  - %s (%s), %d watches", s.Name, id, len(s.Watches))
	}

	store, err := storage.NewSQLiteStore(cfg.DBPath)
	if err != nil {
		log.Fatalf("Failed to open SQLite: %v", err)
	}
	defer store.Close()
	logging.Infof("SQLite database: %s", cfg.DBPath)

	if *resetData {
		if err := store.ResetAllData(); err != nil {
			log.Fatalf("Reset failed: %v", err)
		}
		logging.Infof("operational data cleared")
		return
	}

	handlers := make(map[string]scraper.Handler, len(cfg.Sites))
	for id, siteCfg := range cfg.Sites {
		if id == site.ID {
			handlers[id] = krisha
			continue
		}
		handlers[id] = scraper.NewHandler(siteCfg, clients, cfg.Scraper)
	}
	orchestrator := scraper.NewOrchestrator(cfg, store, handlers)

	if *scrapeNow {
		logging.Infof("running scrape...")
		if err := orchestrator.RunAll(ctx); err != nil {
			log.Fatalf("Scrape failed: %v", err)
		}
		logging.Infof("scrape complete")
		return
	}

	// Daemon mode
	sched := scheduler.New(cfg.Scheduler, orchestrator, store)
	if err := sched.Start(ctx); err != nil {
		log.Fatalf("Failed to start scheduler: %v", err)
	}

	gin.SetMode(gin.ReleaseMode)
	router := api.NewRouter(api.NewHandlers(krisha, store, orchestrator))
	server := api.NewServer(cfg.Server.Addr, router)
	serverErr := server.Start()

	logging.Infof("daemon running, press Ctrl+C to stop")
	select {
	case <-ctx.Done():
	case err := <-serverErr:
		if err != nil {
			logging.Errorf("HTTP server: %v", err)
		}
	}

	logging.Infof("shutting down...")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()
	if err := server.Stop(shutdownCtx); err != nil {
		logging.Errorf("server shutdown: %v", err)
	}
	cancel()
	sched.Stop()
	logging.Infof("goodbye")
}

func runFilters(ctx context.Context, s *scraper.Scraper) {
	f := models.FilterParams{
		City:      *city,
		PriceFrom: *priceFrom,
		PriceTo:   *priceTo,
		Rooms:     *rooms,
		Page:      *page,
	}

	if *pages > 0 {
		result, err := s.WalkPages(ctx, f, *pages)
		if err != nil {
			log.Fatalf("Walk failed: %v", err)
		}
		printJSON(map[string]interface{}{
			"apartments": result.Summaries,
			"total":      result.TotalFound,
			"totalPages": result.TotalPages,
			"pages":      result.Pages,
			"url":        result.URL,
			"filters":    f,
		})
		return
	}

	p, err := s.ScrapeListings(ctx, f)
	if err != nil {
		log.Fatalf("Extraction failed: %v", err)
	}
	printJSON(map[string]interface{}{
		"apartments":  p.Summaries,
		"total":       p.TotalFound,
		"totalPages":  p.Pagination.TotalPages,
		"currentPage": p.CurrentPage,
		"hasNextPage": p.Pagination.HasNextPage,
		"url":         p.URL,
		"filters":     f,
	})
}

func printJSON(v interface{}) {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		log.Fatalf("Encode output: %v", err)
	}
}

// maskProxyURL hides proxy credentials in logs.
func maskProxyURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return "<invalid>"
	}
	return u.Redacted()
}
