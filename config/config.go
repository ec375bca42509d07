package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"golang.org/x/crypto/bcrypt"
)

const (
	StoreDriverPostgres = "postgres"
	StoreDriverMemory   = "memory"

	SessionStoreRedis  = "redis"
	SessionStoreMemory = "memory"

	defaultSessionSecret = "change-me"
)

type Config struct {
	AppPort            string
	AppMode            string
	StoreDriver        string
	DBHost             string
	DBUser             string
	DBPassword         string
	DBName             string
	DBPort             string
	DBSSLMode          string
	SessionSecret      string
	SessionMaxAgeHours int
	SessionStore       string
	RedisHost          string
	RedisPort          string
	RedisPassword      string
	RedisDB            int
	RateLimitEnabled   bool
	AuthRateLimit      int
	AuthRateWindowSec  int
	BcryptCost         int
}

func LoadConfig() *Config {
	// Load .env file if it exists
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	return &Config{
		AppPort:            getEnv("APP_PORT", "8080"),
		AppMode:            getEnv("APP_MODE", "debug"),
		StoreDriver:        getEnv("STORE_DRIVER", StoreDriverPostgres),
		DBHost:             getEnv("DB_HOST", "localhost"),
		DBUser:             getEnv("DB_USER", "postgres"),
		DBPassword:         getEnv("DB_PASSWORD", "postgres"),
		DBName:             getEnv("DB_NAME", "editor"),
		DBPort:             getEnv("DB_PORT", "5432"),
		DBSSLMode:          getEnv("DB_SSLMODE", "disable"),
		SessionSecret:      getEnv("SESSION_SECRET", defaultSessionSecret),
		SessionMaxAgeHours: getEnvAsInt("SESSION_MAX_AGE_HOURS", 14*24),
		SessionStore:       getEnv("SESSION_STORE", SessionStoreRedis),
		RedisHost:          getEnv("REDIS_HOST", "localhost"),
		RedisPort:          getEnv("REDIS_PORT", "6379"),
		RedisPassword:      getEnv("REDIS_PASSWORD", ""),
		RedisDB:            getEnvAsInt("REDIS_DB", 0),
		RateLimitEnabled:   getEnvAsBool("RATE_LIMIT_ENABLED", false),
		AuthRateLimit:      getEnvAsInt("AUTH_RATE_LIMIT", 10),
		AuthRateWindowSec:  getEnvAsInt("AUTH_RATE_WINDOW_SEC", 60),
		BcryptCost:         getEnvAsInt("BCRYPT_COST", bcrypt.DefaultCost),
	}
}

// Validate rejects settings the server cannot run with. Release mode is
// stricter: the session signing key must be set explicitly.
func (c *Config) Validate() error {
	switch c.StoreDriver {
	case StoreDriverPostgres, StoreDriverMemory:
	default:
		return fmt.Errorf("unknown STORE_DRIVER %q", c.StoreDriver)
	}
	switch c.SessionStore {
	case SessionStoreRedis, SessionStoreMemory:
	default:
		return fmt.Errorf("unknown SESSION_STORE %q", c.SessionStore)
	}
	if c.SessionSecret == "" {
		return errors.New("SESSION_SECRET must not be empty")
	}
	if c.BcryptCost < bcrypt.MinCost || c.BcryptCost > bcrypt.MaxCost {
		return fmt.Errorf("BCRYPT_COST must be between %d and %d", bcrypt.MinCost, bcrypt.MaxCost)
	}
	if c.RateLimitEnabled && (c.AuthRateLimit <= 0 || c.AuthRateWindowSec <= 0) {
		return errors.New("AUTH_RATE_LIMIT and AUTH_RATE_WINDOW_SEC must be positive")
	}

	if c.IsRelease() {
		if c.SessionSecret == defaultSessionSecret {
			return errors.New("SESSION_SECRET is required in release mode")
		}
		if c.StoreDriver == StoreDriverMemory {
			return errors.New("STORE_DRIVER=memory is not allowed in release mode")
		}
		if c.SessionStore == SessionStoreMemory {
			return errors.New("SESSION_STORE=memory is not allowed in release mode")
		}
	}
	return nil
}

func (c *Config) IsRelease() bool {
	return c.AppMode == "release"
}

// NeedsRedis reports whether any component is configured to use Redis.
func (c *Config) NeedsRedis() bool {
	return c.RateLimitEnabled || c.SessionStore == SessionStoreRedis
}

// DatabaseDSN builds the keyword/value connection string understood by pgx.
func (c *Config) DatabaseDSN() string {
	return fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=%s TimeZone=UTC",
		c.DBHost, c.DBUser, c.DBPassword, c.DBName, c.DBPort, c.DBSSLMode)
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return fallback
}

func getEnvAsBool(key string, fallback bool) bool {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseBool(valueStr); err == nil {
		return value
	}
	return fallback
}
