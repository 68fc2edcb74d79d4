package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Proxy       ProxyConfig
	S3          S3Config
	Scheduler   SchedulerConfig
	Log         LogConfig
	Fetch       FetchConfig
	OutputPath  string
	DBPath      string
	DatabaseURL string
	HTTPAddr    string
	SitesDir    string
	Sites       []*SiteConfig
}

type ProxyConfig struct {
	URL string
}

type S3Config struct {
	Bucket          string
	Region          string
	Endpoint        string
	AccessKeyID     string
	SecretAccessKey string
	Prefix          string
}

// Enabled reports whether CSV exports should be uploaded.
func (c S3Config) Enabled() bool {
	return c.Bucket != ""
}

type SchedulerConfig struct {
	Interval time.Duration
	Cron     string
}

// Daemon reports whether a schedule is configured.
func (c SchedulerConfig) Daemon() bool {
	return c.Cron != "" || c.Interval > 0
}

type LogConfig struct {
	Level string
	File  string
}

type FetchConfig struct {
	UserAgent     string
	HostRateLimit float64 // requests per second per host
}

const DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36"

func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Proxy: ProxyConfig{
			URL: os.Getenv("PROXY_URL"),
		},
		S3: S3Config{
			Bucket:          os.Getenv("S3_BUCKET"),
			Region:          getEnv("S3_REGION", "us-east-1"),
			Endpoint:        os.Getenv("S3_ENDPOINT"),
			AccessKeyID:     os.Getenv("S3_ACCESS_KEY_ID"),
			SecretAccessKey: os.Getenv("S3_SECRET_ACCESS_KEY"),
			Prefix:          getEnv("S3_PREFIX", "exports/"),
		},
		Scheduler: SchedulerConfig{
			Cron: os.Getenv("SCRAPE_CRON"),
		},
		Log: LogConfig{
			Level: getEnv("LOG_LEVEL", "info"),
			File:  getEnv("LOG_FILE", "harvester.log"),
		},
		Fetch: FetchConfig{
			UserAgent:     getEnv("USER_AGENT", DefaultUserAgent),
			HostRateLimit: getEnvFloat("HOST_RATE_LIMIT", 2),
		},
		OutputPath:  getEnv("OUTPUT_PATH", "malawi_properties.csv"),
		DBPath:      lookupEnv("DB_PATH", "harvester.db"),
		DatabaseURL: os.Getenv("DATABASE_URL"),
		HTTPAddr:    os.Getenv("HTTP_ADDR"),
		SitesDir:    getEnv("SITES_DIR", "config/sites"),
	}

	interval, err := getEnvDuration("SCRAPE_INTERVAL")
	if err != nil {
		return nil, err
	}
	cfg.Scheduler.Interval = interval

	sites, err := LoadSites(cfg.SitesDir)
	if err != nil {
		return nil, err
	}
	cfg.Sites = sites

	return cfg, nil
}

// Site returns the profile with id, or nil.
func (c *Config) Site(id string) *SiteConfig {
	return findSite(c.Sites, id)
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

// lookupEnv is getEnv that lets an explicitly empty variable disable the default.
func lookupEnv(key, defaultVal string) string {
	if val, ok := os.LookupEnv(key); ok {
		return val
	}
	return defaultVal
}

func getEnvFloat(key string, defaultVal float64) float64 {
	if val := os.Getenv(key); val != "" {
		if f, err := strconv.ParseFloat(val, 64); err == nil {
			return f
		}
	}
	return defaultVal
}

func getEnvDuration(key string) (time.Duration, error) {
	val := os.Getenv(key)
	if val == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(val)
	if err != nil {
		return 0, fmt.Errorf("parse %s: %w", key, err)
	}
	return d, nil
}
