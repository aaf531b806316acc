package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port     string
	Env      string
	LogLevel string

	JWTSecret     string
	AllowedOrigin string

	// Upstream commerce API (owns the orders)
	CommerceAPIURL   string
	CommerceAPIToken string
	CommerceTimeout  time.Duration

	// Audit DB
	DBUrl             string
	DBMaxConns        int32
	DBMinConns        int32
	DBMaxConnIdleTime time.Duration

	// Cache TTLs
	CacheOrderTTL time.Duration
	CacheListTTL  time.Duration
	CacheStatsTTL time.Duration

	// R2 Storage (order exports)
	R2AccountID       string
	R2AccessKeyID     string
	R2AccessKeySecret string
	R2BucketName      string
	R2PublicURL       string
	R2UploadTimeout   time.Duration

	// Rate limiting
	RateLimitRPS   float64
	RateLimitBurst int

	// Export paging
	ExportPageSize int
}

func LoadConfig() *Config {
	// A specific config file may be requested via env var; otherwise fall back
	// to .env for local dev. In docker/prod there may be no file at all and we
	// rely on system env vars.
	configFile := os.Getenv("CONFIG_FILE")
	if configFile != "" {
		if err := godotenv.Load(configFile); err != nil {
			log.Printf("Warning: Failed to load config file '%s': %v", configFile, err)
		} else {
			log.Printf("Loaded configuration from %s", configFile)
		}
	} else {
		if err := godotenv.Load(); err != nil {
			log.Println("No .env file found or error loading it, relying on system env vars")
		}
	}

	cfg := &Config{
		Port:     getEnv("PORT", "8080"),
		Env:      getEnv("ENV", "development"),
		LogLevel: getEnv("LOG_LEVEL", "info"),

		JWTSecret:     getEnv("JWT_SECRET", "default_secret_CHANGE_ME"),
		AllowedOrigin: getEnv("ALLOWED_ORIGIN", "http://localhost:3000"),

		CommerceAPIURL:   getEnv("COMMERCE_API_URL", ""),
		CommerceAPIToken: getEnv("COMMERCE_API_TOKEN", ""),
		// Generous: the legacy backend can be very slow under load. No retry
		// on timeout; the operator resubmits.
		CommerceTimeout: getDurationEnv("COMMERCE_TIMEOUT", 2*time.Minute),

		DBUrl:             getEnv("DB_DSN", ""),
		DBMaxConns:        getInt32Env("DB_MAX_CONNS", 20),
		DBMinConns:        getInt32Env("DB_MIN_CONNS", 2),
		DBMaxConnIdleTime: getDurationEnv("DB_MAX_CONN_IDLE_TIME", time.Minute*15),

		// Cache defaults: single orders 5m, list pages 2m, counters 5m.
		// Writes invalidate eagerly; TTLs only bound staleness from writes
		// made outside this service.
		CacheOrderTTL: getDurationEnv("CACHE_ORDER_TTL", 5*time.Minute),
		CacheListTTL:  getDurationEnv("CACHE_LIST_TTL", 2*time.Minute),
		CacheStatsTTL: getDurationEnv("CACHE_STATS_TTL", 5*time.Minute),

		R2AccountID:       getEnv("R2_ACCOUNT_ID", ""),
		R2AccessKeyID:     getEnv("R2_ACCESS_KEY_ID", ""),
		R2AccessKeySecret: getEnv("R2_ACCESS_KEY_SECRET", ""),
		R2BucketName:      getEnv("R2_BUCKET_NAME", ""),
		R2PublicURL:       getEnv("R2_PUBLIC_URL", ""),
		R2UploadTimeout:   getDurationEnv("R2_UPLOAD_TIMEOUT", 30*time.Second),

		RateLimitRPS:   getFloatEnv("RATE_LIMIT_RPS", 50),
		RateLimitBurst: getIntEnv("RATE_LIMIT_BURST", 100),

		ExportPageSize: getIntEnv("EXPORT_PAGE_SIZE", 200),
	}

	cfg.Validate()
	return cfg
}

func (c *Config) Validate() {
	if c.CommerceAPIURL == "" {
		log.Fatal("CRITICAL: COMMERCE_API_URL environment variable is required")
	}
	if c.DBUrl == "" {
		log.Fatal("CRITICAL: DB_DSN environment variable is required")
	}
	if c.JWTSecret == "default_secret_CHANGE_ME" {
		log.Println("WARNING: Using default JWT secret. Setting up for failure in production.")
	}
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getDurationEnv(key string, fallback time.Duration) time.Duration {
	if value, exists := os.LookupEnv(key); exists {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
		log.Printf("Invalid duration for %s, using fallback", key)
	}
	return fallback
}

func getIntEnv(key string, fallback int) int {
	if value, exists := os.LookupEnv(key); exists {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
		log.Printf("Invalid int for %s, using fallback", key)
	}
	return fallback
}

func getInt32Env(key string, fallback int32) int32 {
	if value, exists := os.LookupEnv(key); exists {
		if i, err := strconv.ParseInt(value, 10, 32); err == nil {
			return int32(i)
		}
		log.Printf("Invalid int32 for %s, using fallback", key)
	}
	return fallback
}

func getFloatEnv(key string, fallback float64) float64 {
	if value, exists := os.LookupEnv(key); exists {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
		log.Printf("Invalid float for %s, using fallback", key)
	}
	return fallback
}
