package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	DefaultSiteID       = "krisha"
	DefaultMaxWalkPages = 100
)

type Config struct {
	Server    ServerConfig
	HTTP      HTTPConfig
	Scheduler SchedulerConfig
	Scraper   ScraperConfig
	DBPath    string
	LogLevel  string
	LogPath   string
	SiteDir   string
	Sites     map[string]*SiteConfig
}

type ServerConfig struct {
	Addr string
}

type HTTPConfig struct {
	ProxyURL         string
	FetchTimeout     time.Duration
	AnalyticsTimeout time.Duration
}

type SchedulerConfig struct {
	Interval time.Duration
	Cron     string
}

type ScraperConfig struct {
	WalkConcurrency int
	// MaxWalkPages bounds every pagination walk, whatever the markup claims.
	MaxWalkPages int
	// RateLimit caps upstream requests per second; 0 disables the limiter.
	RateLimit float64
	RateBurst int
}

// SiteConfig describes the listings site markup-independent settings: hosts,
// paths and the saved searches walked by the scheduler.
type SiteConfig struct {
	ID                string  `yaml:"id"`
	Name              string  `yaml:"name"`
	BaseURL           string  `yaml:"base_url"`
	ListingPath       string  `yaml:"listing_path"`
	AnalyticsEndpoint string  `yaml:"analytics_endpoint"`
	PhotoHost         string  `yaml:"photo_host"`
	CardPhotoHost     string  `yaml:"card_photo_host"`
	UserAgent         string  `yaml:"user_agent"`
	PageSize          int     `yaml:"page_size"`
	Watches           []Watch `yaml:"watches"`
}

// Watch is a saved search walked on every scheduled run.
type Watch struct {
	Name      string `yaml:"name"`
	City      string `yaml:"city"`
	PriceFrom string `yaml:"price_from"`
	PriceTo   string `yaml:"price_to"`
	Rooms     string `yaml:"rooms"`
	MaxPages  int    `yaml:"max_pages"`
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Server: ServerConfig{
			Addr: getEnv("HTTP_ADDR", ":8080"),
		},
		HTTP: HTTPConfig{
			ProxyURL:         os.Getenv("PROXY_URL"),
			FetchTimeout:     getEnvDuration("FETCH_TIMEOUT", 15*time.Second),
			AnalyticsTimeout: getEnvDuration("ANALYTICS_TIMEOUT", 10*time.Second),
		},
		Scheduler: SchedulerConfig{
			Cron: os.Getenv("SCRAPE_CRON"),
		},
		Scraper: ScraperConfig{
			WalkConcurrency: getEnvInt("WALK_CONCURRENCY", 3),
			MaxWalkPages:    getEnvInt("MAX_WALK_PAGES", DefaultMaxWalkPages),
			RateLimit:       getEnvFloat("RATE_LIMIT", 2),
			RateBurst:       getEnvInt("RATE_BURST", 2),
		},
		DBPath:   getEnv("DB_PATH", "scraper.db"),
		LogLevel: getEnv("LOG_LEVEL", "info"),
		LogPath:  getEnv("LOG_PATH", "daemon.log"),
		SiteDir:  getEnv("SITE_CONFIG_DIR", "config/sites"),
		Sites:    make(map[string]*SiteConfig),
	}

	if interval := os.Getenv("SCRAPE_INTERVAL"); interval != "" {
		d, err := time.ParseDuration(interval)
		if err == nil {
			cfg.Scheduler.Interval = d
		}
	}

	if err := cfg.loadSiteConfigs(); err != nil {
		return nil, err
	}
	if _, ok := cfg.Sites[DefaultSiteID]; !ok {
		cfg.Sites[DefaultSiteID] = DefaultSite()
	}

	return cfg, nil
}

// Site returns the primary site config.
func (c *Config) Site() *SiteConfig {
	return c.Sites[DefaultSiteID]
}

// DefaultSite is used when no YAML overrides the listings site.
func DefaultSite() *SiteConfig {
	return &SiteConfig{
		ID:                DefaultSiteID,
		Name:              "Krisha.kz",
		BaseURL:           "https://krisha.kz",
		ListingPath:       "prodazha/kvartiry",
		AnalyticsEndpoint: "https://krisha.kz/analytics/aPriceAnalysis/",
		PhotoHost:         "alaps-photos-kr.kcdn.kz",
		CardPhotoHost:     "alakcell-photos-kr.kcdn.kz",
		UserAgent:         "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
		PageSize:          20,
	}
}

func (c *Config) loadSiteConfigs() error {
	entries, err := os.ReadDir(c.SiteDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}

	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".yaml" {
			continue
		}

		path := filepath.Join(c.SiteDir, entry.Name())
		data, err := os.ReadFile(path)
		if err != nil {
			return err
		}

		site, err := ParseSite(data)
		if err != nil {
			return fmt.Errorf("%s: %w", path, err)
		}

		c.Sites[site.ID] = site
	}

	return nil
}

// ParseSite decodes one site YAML document on top of the built-in defaults.
func ParseSite(data []byte) (*SiteConfig, error) {
	site := DefaultSite()
	site.Watches = nil
	if err := yaml.Unmarshal(data, site); err != nil {
		return nil, err
	}
	if site.ID == "" {
		return nil, fmt.Errorf("site config missing id")
	}
	if site.PageSize <= 0 {
		site.PageSize = 20
	}
	return site, nil
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	if val := os.Getenv(key); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			return i
		}
	}
	return defaultVal
}

func getEnvFloat(key string, defaultVal float64) float64 {
	if val := os.Getenv(key); val != "" {
		if f, err := strconv.ParseFloat(val, 64); err == nil && f >= 0 {
			return f
		}
	}
	return defaultVal
}

func getEnvDuration(key string, defaultVal time.Duration) time.Duration {
	if val := os.Getenv(key); val != "" {
		if d, err := time.ParseDuration(val); err == nil && d > 0 {
			return d
		}
	}
	return defaultVal
}
