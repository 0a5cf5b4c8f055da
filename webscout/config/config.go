package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config carries every tunable of the engine. Values resolve in order:
// built-in defaults, then the YAML file named by WEBSCOUT_CONFIG, then
// environment variables.
type Config struct {
	SearxURL string

	Engines []string

	Permits int

	HTTPTimeout time.Duration

	SearchCacheSize int
	SearchCacheTTL  time.Duration
	ScrapeCacheSize int
	ScrapeCacheTTL  time.Duration
}

// fileConfig is the YAML shape; durations are strings like "30s" or "10m".
type fileConfig struct {
	SearxURL        string   `yaml:"searx_url"`
	Engines         []string `yaml:"engines"`
	Permits         int      `yaml:"permits"`
	HTTPTimeout     string   `yaml:"http_timeout"`
	SearchCacheSize int      `yaml:"search_cache_size"`
	SearchCacheTTL  string   `yaml:"search_cache_ttl"`
	ScrapeCacheSize int      `yaml:"scrape_cache_size"`
	ScrapeCacheTTL  string   `yaml:"scrape_cache_ttl"`
}

func defaults() Config {
	return Config{
		SearxURL:        "http://localhost:8080",
		Engines:         []string{"duckduckgo", "google", "bing"},
		Permits:         32,
		HTTPTimeout:     30 * time.Second,
		SearchCacheSize: 2000,
		SearchCacheTTL:  10 * time.Minute,
		ScrapeCacheSize: 2000,
		ScrapeCacheTTL:  30 * time.Minute,
	}
}

// LoadConfig resolves the full configuration. A missing .env file is
// fine; a missing or unreadable YAML file named by WEBSCOUT_CONFIG is
// reported.
func LoadConfig() (Config, error) {
	godotenv.Load()

	cfg := defaults()

	if path := os.Getenv("WEBSCOUT_CONFIG"); path != "" {
		if err := applyFile(&cfg, path); err != nil {
			return cfg, err
		}
	}

	if v := getEnv("WEBSCOUT_SEARX_URL", ""); v != "" {
		cfg.SearxURL = v
	}
	if v := getEnv("WEBSCOUT_ENGINES", ""); v != "" {
		cfg.Engines = splitList(v)
	}
	if v := getEnvInt("WEBSCOUT_PERMITS"); v > 0 {
		cfg.Permits = v
	}
	if v := getEnvDuration("WEBSCOUT_HTTP_TIMEOUT"); v > 0 {
		cfg.HTTPTimeout = v
	}
	if v := getEnvInt("WEBSCOUT_SEARCH_CACHE_SIZE"); v > 0 {
		cfg.SearchCacheSize = v
	}
	if v := getEnvDuration("WEBSCOUT_SEARCH_CACHE_TTL"); v > 0 {
		cfg.SearchCacheTTL = v
	}
	if v := getEnvInt("WEBSCOUT_SCRAPE_CACHE_SIZE"); v > 0 {
		cfg.ScrapeCacheSize = v
	}
	if v := getEnvDuration("WEBSCOUT_SCRAPE_CACHE_TTL"); v > 0 {
		cfg.ScrapeCacheTTL = v
	}

	return cfg, nil
}

func applyFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	var fc fileConfig
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}

	if fc.SearxURL != "" {
		cfg.SearxURL = fc.SearxURL
	}
	if len(fc.Engines) > 0 {
		cfg.Engines = fc.Engines
	}
	if fc.Permits > 0 {
		cfg.Permits = fc.Permits
	}
	if fc.SearchCacheSize > 0 {
		cfg.SearchCacheSize = fc.SearchCacheSize
	}
	if fc.ScrapeCacheSize > 0 {
		cfg.ScrapeCacheSize = fc.ScrapeCacheSize
	}
	for _, d := range []struct {
		raw string
		dst *time.Duration
	}{
		{fc.HTTPTimeout, &cfg.HTTPTimeout},
		{fc.SearchCacheTTL, &cfg.SearchCacheTTL},
		{fc.ScrapeCacheTTL, &cfg.ScrapeCacheTTL},
	} {
		if d.raw == "" {
			continue
		}
		v, err := time.ParseDuration(d.raw)
		if err != nil {
			return fmt.Errorf("parse %s: %w", path, err)
		}
		*d.dst = v
	}
	return nil
}

func getEnv(key, fallback string) string {
	value := os.Getenv(key)
	if value != "" {
		return value
	}
	return fallback
}

func getEnvInt(key string) int {
	v, err := strconv.Atoi(os.Getenv(key))
	if err != nil {
		return 0
	}
	return v
}

func getEnvDuration(key string) time.Duration {
	v, err := time.ParseDuration(os.Getenv(key))
	if err != nil {
		return 0
	}
	return v
}

func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
