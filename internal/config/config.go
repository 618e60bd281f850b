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

const (
	DriverMongo    = "mongo"
	DriverPostgres = "postgres"
	DriverMemory   = "memory"
)

const (
	defaultMongoURI     = "mongodb://mongo:27017/blogdb"
	defaultMongoTestURI = "mongodb://localhost:27017/blogdb_test"
)

type Config struct {
	Port               string
	TestMode           bool
	StoreDriver        string
	MongoURI           string
	MongoTestURI       string
	DatabaseURL        string
	DatabaseTestURL    string
	CorsAllowedOrigins []string
	ShutdownTimeout    time.Duration
}

// Load reads .env (if present) and the environment. testMode selects the
// test store target; TEST_MODE=true in the environment does the same.
func Load(testMode bool) (Config, error) {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Printf("dotenv: failed to load .env: %v", err)
	}

	cfg := Config{
		Port:               getEnv("PORT", "3000"),
		TestMode:           testMode || getBool("TEST_MODE"),
		StoreDriver:        strings.ToLower(getEnv("STORE_DRIVER", DriverMongo)),
		MongoURI:           getEnv("MONGO_URI", defaultMongoURI),
		MongoTestURI:       getEnv("MONGO_TEST_URI", defaultMongoTestURI),
		DatabaseURL:        getEnv("DATABASE_URL", ""),
		DatabaseTestURL:    getEnv("DATABASE_TEST_URL", ""),
		CorsAllowedOrigins: splitCSV(getEnv("CORS_ALLOWED_ORIGINS", "*")),
	}

	timeout, err := time.ParseDuration(getEnv("SHUTDOWN_TIMEOUT", "10s"))
	if err != nil {
		return Config{}, fmt.Errorf("SHUTDOWN_TIMEOUT: %w", err)
	}
	cfg.ShutdownTimeout = timeout

	switch cfg.StoreDriver {
	case DriverMongo, DriverMemory:
	case DriverPostgres:
		if cfg.StoreURI() == "" {
			if cfg.TestMode {
				return Config{}, fmt.Errorf("DATABASE_TEST_URL is required in test mode")
			}
			return Config{}, fmt.Errorf("DATABASE_URL is required")
		}
	default:
		return Config{}, fmt.Errorf("unknown STORE_DRIVER %q", cfg.StoreDriver)
	}

	return cfg, nil
}

// StoreURI is the connection target for the configured driver and mode.
func (c Config) StoreURI() string {
	switch c.StoreDriver {
	case DriverMongo:
		if c.TestMode {
			return c.MongoTestURI
		}
		return c.MongoURI
	case DriverPostgres:
		if c.TestMode {
			return c.DatabaseTestURL
		}
		return c.DatabaseURL
	default:
		return ""
	}
}

func getEnv(key, fallback string) string {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback
	}
	return value
}

func getBool(key string) bool {
	value, err := strconv.ParseBool(getEnv(key, "false"))
	return err == nil && value
}

func splitCSV(value string) []string {
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		item := strings.TrimSpace(part)
		if item != "" {
			out = append(out, item)
		}
	}
	if len(out) == 0 {
		return []string{"*"}
	}
	return out
}
