package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// Config holds all configuration for the application
type Config struct {
	Environment string
	Port        string

	// Data files
	DataDir   string
	BackupDir string
	ImagesDir string

	// Public origins; their hosts are treated as local when sanitizing image URLs
	ShopURL string
	APIURL  string

	// Catalog cache
	CatalogCacheTTL time.Duration

	// Client state store (user ids, cart snapshots, local orders)
	KVBackend     string
	KVDatabaseURL string
	RedisURL      string
	RedisPassword string

	// Rate Limiting Configuration
	RateLimitRequests int
	RateLimitWindow   int

	// Request limits
	MaxRequestSize int64

	// CORS Configuration
	AllowedOrigins  []string
	AllowAllOrigins bool

	// Checkout
	ClearCartOnRelayFailure bool
}

// Load reads the configuration from environment variables
func Load() *Config {
	dataDir := getEnv("DATA_DIR", "./public/data")

	return &Config{
		Environment: getEnv("ENVIRONMENT", "development"),
		Port:        getEnv("PORT", "3001"),

		DataDir:   dataDir,
		BackupDir: getEnv("BACKUP_DIR", filepath.Join(dataDir, "backups")),
		ImagesDir: getEnv("IMAGES_DIR", "./public/images"),

		ShopURL: getEnv("SHOP_URL", ""),
		APIURL:  getEnv("API_URL", ""),

		CatalogCacheTTL: getEnvAsDuration("CATALOG_CACHE_TTL", 5*time.Minute),

		KVBackend:     getEnv("KV_BACKEND", "sqlite"),
		KVDatabaseURL: getEnv("KV_DATABASE_URL", "storefront.db"),
		RedisURL:      getEnv("REDIS_URL", "localhost:6379"),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),

		// Rate Limiting Configuration
		RateLimitRequests: getEnvAsInt("RATE_LIMIT_REQUESTS", 100),
		RateLimitWindow:   getEnvAsInt("RATE_LIMIT_WINDOW", 60),

		MaxRequestSize: getEnvAsInt64("MAX_REQUEST_SIZE", 10<<20),

		// CORS Configuration
		AllowedOrigins:  getEnvAsStringSlice("ALLOWED_ORIGINS", []string{}),
		AllowAllOrigins: getEnvAsBool("ALLOW_ALL_ORIGINS", true), // Default to true for development

		ClearCartOnRelayFailure: getEnvAsBool("CLEAR_CART_ON_RELAY_FAILURE", false),
	}
}

// Helper functions
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvAsInt64(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.ParseInt(value, 10, 64); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

func getEnvAsStringSlice(key string, defaultValue []string) []string {
	if value := os.Getenv(key); value != "" {
		parts := strings.Split(value, ",")
		out := make([]string, 0, len(parts))
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				out = append(out, p)
			}
		}
		return out
	}
	return defaultValue
}

// getEnvAsDuration accepts Go durations ("90s", "5m") or plain seconds.
func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
		if secs, err := strconv.Atoi(value); err == nil {
			return time.Duration(secs) * time.Second
		}
	}
	return defaultValue
}

// RateWindow returns the rate limit window as a duration.
func (c *Config) RateWindow() time.Duration {
	return time.Duration(c.RateLimitWindow) * time.Second
}

// IsProduction reports whether the server runs in production mode
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.DataDir == "" {
		return fmt.Errorf("data directory is required")
	}
	if c.Environment == "" {
		return fmt.Errorf("environment is required")
	}

	// Validate environment values
	validEnvs := map[string]bool{
		"development": true,
		"production":  true,
		"test":        true,
	}
	if !validEnvs[c.Environment] {
		return fmt.Errorf("invalid environment: %s", c.Environment)
	}

	switch c.KVBackend {
	case "sqlite":
		if c.KVDatabaseURL == "" {
			return fmt.Errorf("KV database URL is required for the sqlite backend")
		}
	case "redis":
		if c.RedisURL == "" {
			return fmt.Errorf("redis URL is required for the redis backend")
		}
	default:
		return fmt.Errorf("invalid KV backend: %s", c.KVBackend)
	}

	if c.RateLimitRequests <= 0 || c.RateLimitWindow <= 0 {
		return fmt.Errorf("rate limit requests and window must be positive")
	}
	if c.MaxRequestSize <= 0 {
		return fmt.Errorf("max request size must be positive")
	}
	if c.CatalogCacheTTL < 0 {
		return fmt.Errorf("catalog cache TTL cannot be negative")
	}
	if !c.AllowAllOrigins && len(c.AllowedOrigins) == 0 {
		return fmt.Errorf("allowed origins are required when all origins are not allowed")
	}
	return nil
}

// SetDefaults sets default values for configuration
func (c *Config) SetDefaults() {
	if c.Environment == "" {
		c.Environment = "development"
	}
	if c.Port == "" {
		c.Port = "3001"
	}
	if c.DataDir == "" {
		c.DataDir = "./public/data"
	}
	if c.BackupDir == "" {
		c.BackupDir = filepath.Join(c.DataDir, "backups")
	}
	if c.KVBackend == "" {
		c.KVBackend = "sqlite"
	}
	if c.KVDatabaseURL == "" {
		c.KVDatabaseURL = "storefront.db"
	}
	if c.RateLimitRequests == 0 {
		c.RateLimitRequests = 100
	}
	if c.RateLimitWindow == 0 {
		c.RateLimitWindow = 60
	}
	if c.MaxRequestSize == 0 {
		c.MaxRequestSize = 10 << 20
	}
	if c.CatalogCacheTTL == 0 {
		c.CatalogCacheTTL = 5 * time.Minute
	}
	if len(c.AllowedOrigins) == 0 {
		c.AllowAllOrigins = true
	}
}

// String returns a string representation of the configuration
func (c *Config) String() string {
	return fmt.Sprintf("Config{Environment: %s, Port: %s, DataDir: %s, KVBackend: %s}", c.Environment, c.Port, c.DataDir, c.KVBackend)
}
