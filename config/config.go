package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"goflare.io/storefront/models/enum"
)

type Config struct {
	Server   ServerConfig
	Log      LogConfig
	Backend  BackendConfig
	Database DatabaseConfig
	Redis    RedisConfig
	NATS     NATSConfig
	Session  SessionConfig
	Cart     CartConfig
	I18n     I18nConfig
	Cache    CacheConfig
}

type ServerConfig struct {
	Host            string
	Port            string
	Env             string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
}

func (s ServerConfig) Addr() string {
	return s.Host + ":" + s.Port
}

func (s ServerConfig) IsDevelopment() bool {
	return s.Env == "development"
}

type LogConfig struct {
	Level string
}

type BackendConfig struct {
	BaseURL         string
	Timeout         time.Duration
	BreakerFailures int
	BreakerOpenFor  time.Duration
}

// DatabaseConfig holds the PostgreSQL DSN for signed-in carts. Empty disables it.
type DatabaseConfig struct {
	URL string
}

// RedisConfig configures guest carts and event de-duplication. Empty Addr disables it.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// NATSConfig configures cart change notifications. Empty URL disables them.
type NATSConfig struct {
	URL     string
	Workers int
}

type SessionConfig struct {
	Secret string
	Name   string
	Secure bool
	MaxAge time.Duration
}

type CartConfig struct {
	GuestTTL     time.Duration
	IdleTimeout  time.Duration
	LogoutPolicy enum.LogoutPolicy
}

type I18nConfig struct {
	DefaultLocale string
}

type CacheConfig struct {
	CatalogTTL time.Duration
	MaxItems   int
}

const defaultSessionSecret = "storefront-dev-secret-change-me-32b"

func Load() (*Config, error) {
	// Load .env files if they exist (try .env.local first, then .env)
	_ = godotenv.Load(".env.local")
	_ = godotenv.Load(".env")

	config := &Config{
		Server: ServerConfig{
			Host:            getEnv("HOST", "0.0.0.0"),
			Port:            getEnv("PORT", "8080"),
			Env:             getEnv("ENV", "development"),
			ReadTimeout:     getEnvAsDuration("HTTP_READ_TIMEOUT", 10*time.Second),
			WriteTimeout:    getEnvAsDuration("HTTP_WRITE_TIMEOUT", 15*time.Second),
			ShutdownTimeout: getEnvAsDuration("SHUTDOWN_TIMEOUT", 15*time.Second),
		},
		Log: LogConfig{
			Level: getEnv("LOG_LEVEL", "info"),
		},
		Backend: BackendConfig{
			BaseURL:         getEnv("BACKEND_URL", "http://localhost:8000/api"),
			Timeout:         getEnvAsDuration("BACKEND_TIMEOUT", 10*time.Second),
			BreakerFailures: getEnvAsInt("BACKEND_BREAKER_FAILURES", 5),
			BreakerOpenFor:  getEnvAsDuration("BACKEND_BREAKER_OPEN_FOR", 30*time.Second),
		},
		Database: DatabaseConfig{
			URL: getEnv("DATABASE_URL", ""),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", ""),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),
		},
		NATS: NATSConfig{
			URL:     getEnv("NATS_URL", ""),
			Workers: getEnvAsInt("NATS_WORKERS", 4),
		},
		Session: SessionConfig{
			Secret: getEnv("SESSION_SECRET", defaultSessionSecret),
			Name:   getEnv("SESSION_NAME", "storefront_session"),
			Secure: getEnvAsBool("SESSION_SECURE", false),
			MaxAge: getEnvAsDuration("SESSION_MAX_AGE", 30*24*time.Hour),
		},
		Cart: CartConfig{
			GuestTTL:     getEnvAsDuration("CART_GUEST_TTL", 30*24*time.Hour),
			IdleTimeout:  getEnvAsDuration("CART_IDLE_TIMEOUT", 30*time.Minute),
			LogoutPolicy: enum.ParseLogoutPolicy(getEnv("CART_LOGOUT_POLICY", string(enum.LogoutPolicyKeep))),
		},
		I18n: I18nConfig{
			DefaultLocale: getEnv("DEFAULT_LOCALE", "en"),
		},
		Cache: CacheConfig{
			CatalogTTL: getEnvAsDuration("CATALOG_CACHE_TTL", time.Minute),
			MaxItems:   getEnvAsInt("CATALOG_CACHE_MAX_ITEMS", 10000),
		},
	}

	if err := config.validate(); err != nil {
		return nil, err
	}
	return config, nil
}

func (c *Config) validate() error {
	var errs []error

	if c.Backend.BaseURL == "" {
		errs = append(errs, errors.New("BACKEND_URL is required"))
	}
	if len(c.Session.Secret) < 32 {
		errs = append(errs, fmt.Errorf("SESSION_SECRET must be at least 32 bytes, got %d", len(c.Session.Secret)))
	}
	if !c.Server.IsDevelopment() && c.Session.Secret == defaultSessionSecret {
		errs = append(errs, errors.New("SESSION_SECRET must be set outside development"))
	}

	return errors.Join(errs...)
}

func getEnv(key, defaultValue string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
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

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
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
