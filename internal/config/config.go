package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all application configuration
type Config struct {
	Server     ServerConfig
	OpenAI     OpenAIConfig
	Generation GenerationConfig
	Store      StoreConfig
	MongoDB    MongoDBConfig
	Redis      RedisConfig
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Port string
	Host string
}

// OpenAIConfig holds completion API configuration
type OpenAIConfig struct {
	APIKey      string
	BaseURL     string // optional override for OpenAI-compatible endpoints
	Model       string
	Temperature float64
	MaxTokens   int
}

// GenerationConfig holds generation pipeline settings
type GenerationConfig struct {
	MaxContentLength int           // submissions longer than this are rejected with 400
	MaxRetries       int           // extra attempts after the first AI call fails
	RetryDelay       time.Duration // initial backoff delay before the first retry
}

// StoreConfig selects the task store backend
type StoreConfig struct {
	Backend string // "memory", "mongo" or "redis"
}

// MongoDBConfig holds MongoDB connection details
type MongoDBConfig struct {
	URI        string
	Username   string
	Password   string
	Host       string
	Port       string
	Database   string
	Collection string
	AuthSource string // Database to authenticate against (default: admin)
}

// RedisConfig holds Redis connection details for the redis task store
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
	TTL      time.Duration // task record expiry; 0 keeps records forever
}

// LoadConfig loads configuration from environment variables
func LoadConfig() (*Config, error) {
	// Try to load .env file (ignore error if it doesn't exist)
	_ = godotenv.Load()

	config := &Config{
		Server: ServerConfig{
			Port: getEnv("PORT", "8085"),
			Host: getEnv("HOST", "0.0.0.0"),
		},
		OpenAI: OpenAIConfig{
			APIKey:      getEnv("OPENAI_API_KEY", ""),
			BaseURL:     getEnv("OPENAI_BASE_URL", ""),
			Model:       getEnv("OPENAI_MODEL", "gpt-4o-mini"),
			Temperature: getEnvFloat("OPENAI_TEMPERATURE", 0.3),
			MaxTokens:   getEnvInt("OPENAI_MAX_TOKENS", 0), // 0 means use the service default
		},
		Generation: GenerationConfig{
			MaxContentLength: getEnvInt("GENERATION_MAX_CONTENT_LENGTH", 5000),
			MaxRetries:       getEnvInt("GENERATION_MAX_RETRIES", 2),
			RetryDelay:       time.Duration(getEnvInt("GENERATION_RETRY_DELAY_MS", 2000)) * time.Millisecond,
		},
		Store: StoreConfig{
			Backend: getEnv("STORE_BACKEND", "memory"),
		},
		MongoDB: MongoDBConfig{
			URI:        getEnv("MONGODB_URI", ""),
			Username:   getEnv("MONGODB_USERNAME", ""),
			Password:   getEnv("MONGODB_PASSWORD", ""),
			Host:       getEnv("MONGODB_HOST", "localhost"),
			Port:       getEnv("MONGODB_PORT", "27017"),
			Database:   getEnv("MONGODB_DATABASE", "infographics"),
			Collection: getEnv("MONGODB_COLLECTION", "generation_tasks"),
			AuthSource: getEnv("MONGODB_AUTH_SOURCE", "admin"),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", "localhost:6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvInt("REDIS_DB", 0),
			TTL:      time.Duration(getEnvInt("REDIS_TASK_TTL_HOURS", 24)) * time.Hour,
		},
	}

	if err := ValidateConfig(config); err != nil {
		return nil, err
	}

	return config, nil
}

// ValidateConfig validates that required configuration values are present
func ValidateConfig(config *Config) error {
	if config.OpenAI.APIKey == "" {
		return fmt.Errorf("OPENAI_API_KEY is required")
	}
	switch config.Store.Backend {
	case "memory":
		// Nothing to validate. Note that the in-memory store is only suitable
		// for single-instance deployments: with multiple replicas or serverless
		// cold starts, a status check may land on an instance that never saw
		// the task.
	case "mongo":
		if config.MongoDB.URI == "" && config.MongoDB.Host == "" {
			return fmt.Errorf("MONGODB_URI or MONGODB_HOST is required when STORE_BACKEND=mongo")
		}
	case "redis":
		if config.Redis.Addr == "" {
			return fmt.Errorf("REDIS_ADDR is required when STORE_BACKEND=redis")
		}
	default:
		return fmt.Errorf("unknown STORE_BACKEND: %q (expected memory, mongo or redis)", config.Store.Backend)
	}
	if config.Generation.MaxContentLength <= 0 {
		return fmt.Errorf("GENERATION_MAX_CONTENT_LENGTH must be positive")
	}
	return nil
}

// Helper functions for environment variable access
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}
