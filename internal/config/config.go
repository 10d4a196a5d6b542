package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Storage drivers
const (
	StoragePostgres = "postgres"
	StorageMemory   = "memory"
)

// Cache drivers
const (
	CacheMemory = "memory"
	CacheRedis  = "redis"
)

// Config holds all configuration for the application
type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	Storage   StorageConfig
	JWT       JWTConfig
	CORS      CORSConfig
	Security  SecurityConfig
	Logging   LoggingConfig
	Analytics AnalyticsConfig
	Cache     CacheConfig
	RateLimit RateLimitConfig
}

// ServerConfig holds server-related configuration
type ServerConfig struct {
	Port        string
	Environment string // development, staging, production
	LogLevel    string // debug, info, warn, error
}

// DatabaseConfig holds database-related configuration
type DatabaseConfig struct {
	URL                string
	MaxConnections     int
	MaxIdleConnections int
	ConnMaxLifetime    time.Duration
	AutoMigrate        bool
}

// StorageConfig selects the repository implementation used at startup
type StorageConfig struct {
	Driver           string // "postgres" or "memory"
	FallbackToMemory bool   // use the in-memory store when Postgres is unreachable
}

// JWTConfig holds JWT-related configuration
type JWTConfig struct {
	Secret             string
	RefreshSecret      string
	AccessTokenExpiry  time.Duration
	RefreshTokenExpiry time.Duration
}

// CORSConfig holds CORS-related configuration
type CORSConfig struct {
	AllowedOrigins []string
	AllowedMethods []string
	AllowedHeaders []string
}

// SecurityConfig holds security-related configuration
type SecurityConfig struct {
	BcryptCost       int
	EnableRequestLog bool
	AdminEmails      []string // accounts registered with these emails get the admin role
}

// LoggingConfig controls the optional rotating log file
type LoggingConfig struct {
	File       string // empty = stdout only
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
}

// AnalyticsConfig holds analytics aggregation settings
type AnalyticsConfig struct {
	CacheTTL    time.Duration
	RefreshCron string // cron spec with seconds, empty disables the refresh job
	DefaultDays int
}

// CacheConfig selects the analytics cache backend
type CacheConfig struct {
	Driver   string // "memory" or "redis"
	RedisURL string
}

// RateLimitConfig caps write-heavy public endpoints per client. A max of 0
// disables the limit for that scope.
type RateLimitConfig struct {
	ReportMax    int
	ReportWindow time.Duration
	AuthMax      int
	AuthWindow   time.Duration
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if it exists (for local development)
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	config := &Config{
		Server: ServerConfig{
			Port:        getEnv("PORT", "5000"),
			Environment: getEnv("ENVIRONMENT", "development"),
			LogLevel:    getEnv("LOG_LEVEL", "info"),
		},
		Database: DatabaseConfig{
			URL:                getEnv("DATABASE_URL", ""),
			MaxConnections:     getEnvAsInt("DATABASE_MAX_CONNECTIONS", 10),
			MaxIdleConnections: getEnvAsInt("DATABASE_MAX_IDLE_CONNECTIONS", 5),
			ConnMaxLifetime:    getEnvAsSeconds("DATABASE_CONN_MAX_LIFETIME", 300),
			AutoMigrate:        getEnvAsBool("DATABASE_AUTO_MIGRATE", true),
		},
		Storage: StorageConfig{
			Driver:           strings.ToLower(getEnv("STORAGE_DRIVER", StoragePostgres)),
			FallbackToMemory: getEnvAsBool("STORAGE_FALLBACK_TO_MEMORY", false),
		},
		JWT: JWTConfig{
			Secret:             getEnv("JWT_SECRET", ""),
			RefreshSecret:      getEnv("JWT_REFRESH_SECRET", ""),
			AccessTokenExpiry:  getEnvAsSeconds("JWT_ACCESS_TOKEN_EXPIRY", 3600),
			RefreshTokenExpiry: getEnvAsSeconds("JWT_REFRESH_TOKEN_EXPIRY", 604800),
		},
		CORS: CORSConfig{
			AllowedOrigins: getEnvAsSlice("CORS_ALLOWED_ORIGINS", []string{"*"}),
			AllowedMethods: getEnvAsSlice("CORS_ALLOWED_METHODS", []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}),
			AllowedHeaders: getEnvAsSlice("CORS_ALLOWED_HEADERS", []string{"Content-Type", "Authorization"}),
		},
		Security: SecurityConfig{
			BcryptCost:       getEnvAsInt("BCRYPT_COST", 12),
			EnableRequestLog: getEnvAsBool("ENABLE_REQUEST_LOGGING", true),
			AdminEmails:      getEnvAsSlice("ADMIN_EMAILS", nil),
		},
		Logging: LoggingConfig{
			File:       getEnv("LOG_FILE", ""),
			MaxSizeMB:  getEnvAsInt("LOG_FILE_MAX_SIZE_MB", 10),
			MaxBackups: getEnvAsInt("LOG_FILE_MAX_BACKUPS", 7),
			MaxAgeDays: getEnvAsInt("LOG_FILE_MAX_AGE_DAYS", 7),
		},
		Analytics: AnalyticsConfig{
			CacheTTL:    getEnvAsSeconds("ANALYTICS_CACHE_TTL_SECONDS", 60),
			RefreshCron: getEnv("ANALYTICS_REFRESH_CRON", "0 */5 * * * *"),
			DefaultDays: getEnvAsInt("ANALYTICS_DEFAULT_DAYS", 7),
		},
		Cache: CacheConfig{
			Driver:   strings.ToLower(getEnv("CACHE_DRIVER", CacheMemory)),
			RedisURL: getEnv("REDIS_URL", ""),
		},
		RateLimit: RateLimitConfig{
			ReportMax:    getEnvAsInt("RATE_LIMIT_REPORTS", 10),
			ReportWindow: getEnvAsSeconds("RATE_LIMIT_REPORTS_WINDOW_SECONDS", 3600),
			AuthMax:      getEnvAsInt("RATE_LIMIT_AUTH", 20),
			AuthWindow:   getEnvAsSeconds("RATE_LIMIT_AUTH_WINDOW_SECONDS", 900),
		},
	}

	// Validate required configuration
	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	switch c.Storage.Driver {
	case StoragePostgres:
		if c.Database.URL == "" && !c.Storage.FallbackToMemory {
			return fmt.Errorf("DATABASE_URL is required when STORAGE_DRIVER=postgres")
		}
	case StorageMemory:
	default:
		return fmt.Errorf("invalid STORAGE_DRIVER: %s (must be 'postgres' or 'memory')", c.Storage.Driver)
	}

	if c.JWT.Secret == "" {
		return fmt.Errorf("JWT_SECRET is required")
	}

	if c.JWT.RefreshSecret == "" {
		return fmt.Errorf("JWT_REFRESH_SECRET is required")
	}

	switch c.Cache.Driver {
	case CacheMemory:
	case CacheRedis:
		if c.Cache.RedisURL == "" {
			return fmt.Errorf("REDIS_URL is required when CACHE_DRIVER=redis")
		}
	default:
		return fmt.Errorf("invalid CACHE_DRIVER: %s (must be 'memory' or 'redis')", c.Cache.Driver)
	}

	if c.Security.BcryptCost < 4 || c.Security.BcryptCost > 31 {
		return fmt.Errorf("BCRYPT_COST must be between 4 and 31")
	}

	return nil
}

// IsProduction reports whether the server runs in production mode
func (c *Config) IsProduction() bool {
	return c.Server.Environment == "production"
}

// Helper functions to get environment variables

func getEnv(key string, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		log.Printf("Invalid integer value for %s, using default: %d", key, defaultValue)
		return defaultValue
	}
	return value
}

// getEnvAsSeconds reads a whole number of seconds
func getEnvAsSeconds(key string, defaultSeconds int) time.Duration {
	return time.Duration(getEnvAsInt(key, defaultSeconds)) * time.Second
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		log.Printf("Invalid boolean value for %s, using default: %t", key, defaultValue)
		return defaultValue
	}
	return value
}

func getEnvAsSlice(key string, defaultValue []string) []string {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	var result []string
	for _, v := range strings.Split(valueStr, ",") {
		if trimmed := strings.TrimSpace(v); trimmed != "" {
			result = append(result, trimmed)
		}
	}
	if len(result) == 0 {
		return defaultValue
	}
	return result
}
