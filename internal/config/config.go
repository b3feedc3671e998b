package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Store backends accepted by LEAD_STORE.
const (
	StoreMongo    = "mongo"
	StoreDynamo   = "dynamodb"
	StoreRedis    = "redis"
	StorePostgres = "postgres"
	StoreMemory   = "memory"
)

// Config holds application configuration
type Config struct {
	Port     string
	Env      string
	LogLevel string

	// LeadStore selects the document datastore backing POST /api/leads.
	LeadStore               string
	DatastoreConnectTimeout time.Duration
	DatastoreProbeInterval  time.Duration

	CORSAllowedOrigins []string

	// MongoDB
	MongoURI        string
	MongoCollection string

	// DynamoDB
	AWSRegion           string
	AWSAccessKeyID      string
	AWSSecretAccessKey  string
	AWSEndpointOverride string
	LeadsTable          string

	// Redis
	RedisAddr     string
	RedisPassword string
	RedisTLS      bool

	// Postgres
	DatabaseURL string
}

// Load reads configuration from environment variables
func Load() *Config {
	return &Config{
		Port:                    getEnv("PORT", "5000"),
		Env:                     getEnv("ENV", "development"),
		LogLevel:                getEnv("LOG_LEVEL", "info"),
		LeadStore:               strings.ToLower(strings.TrimSpace(getEnv("LEAD_STORE", StoreMongo))),
		DatastoreConnectTimeout: getEnvAsDuration("DATASTORE_CONNECT_TIMEOUT", 5*time.Second),
		DatastoreProbeInterval:  getEnvAsDuration("DATASTORE_PROBE_INTERVAL", 10*time.Second),
		CORSAllowedOrigins:      getEnvAsList("CORS_ALLOWED_ORIGINS", []string{"*"}),

		MongoURI:        getEnv("MONGODB_URI", "mongodb://localhost:27017/ng-t1-project"),
		MongoCollection: getEnv("MONGODB_COLLECTION", "leads"),

		AWSRegion:           getEnv("AWS_REGION", "us-east-1"),
		AWSAccessKeyID:      getEnv("AWS_ACCESS_KEY_ID", ""),
		AWSSecretAccessKey:  getEnv("AWS_SECRET_ACCESS_KEY", ""),
		AWSEndpointOverride: getEnv("AWS_ENDPOINT_OVERRIDE", ""),
		LeadsTable:          getEnv("LEADS_TABLE", "leads"),

		RedisAddr:     getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisTLS:      getEnvAsBool("REDIS_TLS", false),

		DatabaseURL: getEnv("DATABASE_URL", ""),
	}
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAsBool retrieves an environment variable as a boolean or returns a default value
func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseBool(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}
	if value, err := time.ParseDuration(valueStr); err == nil && value > 0 {
		return value
	}
	return defaultValue
}

// getEnvAsList splits a comma-separated variable, dropping blank entries.
func getEnvAsList(key string, defaultValue []string) []string {
	raw := strings.TrimSpace(getEnv(key, ""))
	if raw == "" {
		return defaultValue
	}
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	if len(out) == 0 {
		return defaultValue
	}
	return out
}
