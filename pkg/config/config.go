package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config holds all application configuration
type Config struct {
	Env         string
	LogLevel    string
	Server      ServerConfig
	Redis       RedisConfig
	Typesense   TypesenseConfig
	Kakao       KakaoConfig
	PlaceSearch PlaceSearchConfig
	Backend     BackendConfig
	Session     SessionConfig
	OTEL        OTELConfig
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Host           string
	Port           int
	AllowedOrigins string
}

// RedisConfig holds Redis configuration
type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
	Enabled  bool
}

// TypesenseConfig holds Typesense configuration
type TypesenseConfig struct {
	URL     string
	APIKey  string
	Enabled bool
}

// KakaoConfig holds the Kakao Mobility and Kakao Local settings
type KakaoConfig struct {
	RestAPIKey         string
	DirectionsBaseURL  string
	LocalBaseURL       string
	DirectionsProvider string
}

// PlaceSearchConfig holds keyword search tuning
type PlaceSearchConfig struct {
	Provider        string
	MaxPages        int
	CacheTTLSeconds int
	RatePerSecond   float64
	Burst           int
}

// BackendConfig holds the GraphQL backend settings
type BackendConfig struct {
	GraphQLURL  string
	TranslateTo string
}

// SessionConfig holds map session tuning
type SessionConfig struct {
	PageSize          int
	HighlightDuration time.Duration
	RouteTimeout      time.Duration
	IdleTTL           time.Duration
	SweepInterval     time.Duration
}

// OTELConfig holds OpenTelemetry configuration
type OTELConfig struct {
	ServiceName    string
	ServiceVersion string
	Endpoint       string
	Enabled        bool
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	cfg := &Config{
		Env:      getEnv("ENV", "development"),
		LogLevel: getEnv("LOG_LEVEL", "info"),
		Server: ServerConfig{
			Host:           getEnv("SERVER_HOST", "0.0.0.0"),
			Port:           getEnvAsInt("SERVER_PORT", 8080),
			AllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "*"),
		},
		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnvAsInt("REDIS_PORT", 6379),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),
			Enabled:  getEnvAsBool("REDIS_ENABLED", true),
		},
		Typesense: TypesenseConfig{
			URL:     getEnv("TYPESENSE_URL", "http://localhost:8108"),
			APIKey:  getEnv("TYPESENSE_API_KEY", "xyz"),
			Enabled: getEnvAsBool("TYPESENSE_ENABLED", false),
		},
		Kakao: KakaoConfig{
			RestAPIKey:         getEnv("KAKAO_REST_API_KEY", ""),
			DirectionsBaseURL:  getEnv("KAKAO_DIRECTIONS_URL", ""),
			LocalBaseURL:       getEnv("KAKAO_LOCAL_URL", ""),
			DirectionsProvider: getEnv("DIRECTIONS_PROVIDER", "kakao"),
		},
		PlaceSearch: PlaceSearchConfig{
			Provider:        getEnv("PLACE_SEARCH_PROVIDER", "kakao"),
			MaxPages:        getEnvAsInt("PLACE_SEARCH_MAX_PAGES", 45),
			CacheTTLSeconds: getEnvAsInt("PLACE_SEARCH_CACHE_TTL_SECONDS", 300),
			RatePerSecond:   getEnvAsFloat("PLACE_SEARCH_RATE_PER_SECOND", 10),
			Burst:           getEnvAsInt("PLACE_SEARCH_BURST", 5),
		},
		Backend: BackendConfig{
			GraphQLURL:  getEnv("BACKEND_GRAPHQL_URL", ""),
			TranslateTo: getEnv("BACKEND_TRANSLATE_TO", ""),
		},
		Session: SessionConfig{
			PageSize:          getEnvAsInt("SESSION_PAGE_SIZE", 10),
			HighlightDuration: getEnvAsDuration("SESSION_HIGHLIGHT_DURATION", 700*time.Millisecond),
			RouteTimeout:      getEnvAsDuration("SESSION_ROUTE_TIMEOUT", 10*time.Second),
			IdleTTL:           getEnvAsDuration("SESSION_IDLE_TTL", 30*time.Minute),
			SweepInterval:     getEnvAsDuration("SESSION_SWEEP_INTERVAL", time.Minute),
		},
		OTEL: OTELConfig{
			ServiceName:    getEnv("OTEL_SERVICE_NAME", "wayfinder"),
			ServiceVersion: getEnv("OTEL_SERVICE_VERSION", "1.0.0"),
			Endpoint:       getEnv("OTEL_ENDPOINT", ""),
			Enabled:        getEnvAsBool("OTEL_ENABLED", false),
		},
	}

	if cfg.Session.PageSize < 1 {
		return nil, fmt.Errorf("SESSION_PAGE_SIZE must be positive, got %d", cfg.Session.PageSize)
	}
	if cfg.PlaceSearch.MaxPages < 1 {
		return nil, fmt.Errorf("PLACE_SEARCH_MAX_PAGES must be positive, got %d", cfg.PlaceSearch.MaxPages)
	}
	return cfg, nil
}

// RedisAddr returns the Redis address
func (c *RedisConfig) RedisAddr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// Addr returns the HTTP listen address
func (c *ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatVal, err := strconv.ParseFloat(value, 64); err == nil {
			return floatVal
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
