package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application.
type Config struct {
	// Server
	ApiPort       string
	PublicBaseURL string // Public URL of this API, used for Location headers
	MaxUploadMB   int

	// MongoDB
	MongoURI    string
	MongoDbName string

	// AWS S3
	AwsAccessKeyID     string
	AwsSecretAccessKey string
	AwsRegion          string
	AwsS3Bucket        string
	AwsS3Endpoint      string // Optional, for S3-compatible stores
	S3PublicBaseURL    string // Optional CDN/public prefix for image URLs
	S3ObjectACL        string // Canned ACL applied on upload; empty disables

	// Redis (optional read cache)
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	GetCacheTTL   time.Duration

	// Rate Limiting
	RateLimitRPS   int // tokens per second; 0 disables
	RateLimitBurst int

	// Logging
	LogFormat string // "text" or "json"
	LogLevel  string
}

// Load configuration from environment variables.
func Load() (*Config, error) {
	// Load .env file, ignoring errors if it doesn't exist
	godotenv.Load()

	cfg := &Config{}
	var err error

	getEnv := func(key, defaultValue string) string {
		if value, exists := os.LookupEnv(key); exists {
			return value
		}
		return defaultValue
	}

	getRequiredEnv := func(key string) (string, error) {
		value, exists := os.LookupEnv(key)
		if !exists || value == "" {
			return "", fmt.Errorf("missing required environment variable: %s", key)
		}
		return value, nil
	}

	cfg.MongoURI, err = getRequiredEnv("MONGO_URI")
	if err != nil {
		return nil, err
	}
	cfg.AwsS3Bucket, err = getRequiredEnv("AWS_S3_BUCKET")
	if err != nil {
		return nil, err
	}

	cfg.ApiPort = getEnv("API_PORT", "8080")
	cfg.PublicBaseURL = getEnv("PUBLIC_BASE_URL", "")
	cfg.MongoDbName = getEnv("MONGO_DB_NAME", "propdesk")
	cfg.AwsAccessKeyID = getEnv("AWS_ACCESS_KEY_ID", "")
	cfg.AwsSecretAccessKey = getEnv("AWS_SECRET_ACCESS_KEY", "")
	cfg.AwsRegion = getEnv("AWS_REGION", "us-east-1")
	cfg.AwsS3Endpoint = getEnv("AWS_S3_ENDPOINT", "")
	cfg.S3PublicBaseURL = getEnv("S3_PUBLIC_BASE_URL", "")
	cfg.S3ObjectACL = getEnv("S3_OBJECT_ACL", "public-read")
	cfg.RedisAddr = getEnv("REDIS_ADDR", "")
	cfg.RedisPassword = getEnv("REDIS_PASSWORD", "")
	cfg.LogFormat = getEnv("LOG_FORMAT", "json")
	cfg.LogLevel = getEnv("LOG_LEVEL", "info")

	cfg.RedisDB, err = strconv.Atoi(getEnv("REDIS_DB", "0"))
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_DB: %w", err)
	}

	getCacheTTLSeconds, err := strconv.ParseInt(getEnv("GET_CACHE_TTL_SECONDS", "60"), 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid GET_CACHE_TTL_SECONDS: %w", err)
	}
	cfg.GetCacheTTL = time.Duration(getCacheTTLSeconds) * time.Second

	cfg.MaxUploadMB, err = strconv.Atoi(getEnv("MAX_UPLOAD_MB", "32"))
	if err != nil {
		return nil, fmt.Errorf("invalid MAX_UPLOAD_MB: %w", err)
	}

	cfg.RateLimitRPS, err = strconv.Atoi(getEnv("RATE_LIMIT_RPS", "20"))
	if err != nil {
		return nil, fmt.Errorf("invalid RATE_LIMIT_RPS: %w", err)
	}
	cfg.RateLimitBurst, err = strconv.Atoi(getEnv("RATE_LIMIT_BURST", "40"))
	if err != nil {
		return nil, fmt.Errorf("invalid RATE_LIMIT_BURST: %w", err)
	}

	return cfg, nil
}
