package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port                 string
	AppEnv               string
	LogLevel             string
	JWTSecret            string
	JWTAccessExpiration  time.Duration
	JWTRefreshExpiration time.Duration
	GoogleClientID       string
	GoogleClientSecret   string
	FrontendURL          string
	MongoDBURI           string
	MongoDBDatabase      string

	// AWS (S3 for portfolio images, SES for notification mail)
	AWSRegion          string
	AWSAccessKeyID     string
	AWSSecretAccessKey string
	S3Bucket           string
	S3PublicBaseURL    string
	SESFromEmail       string
	SESFromName        string

	RedisAddr     string
	RedisPassword string
	StatsCacheTTL time.Duration

	DigestInterval time.Duration
	DigestHour     int
	// NotificationEmail seeds the settings document when none exists yet
	NotificationEmail string
}

func Load() *Config {
	// Load .env file
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	return &Config{
		Port:                 getEnv("PORT", "8080"),
		AppEnv:               getEnv("APP_ENV", "development"),
		LogLevel:             getEnv("LOG_LEVEL", "info"),
		JWTSecret:            getEnv("JWT_SECRET", "your-secret-key-change-in-production"),
		JWTAccessExpiration:  getDuration("JWT_ACCESS_EXPIRATION", 15*time.Minute),
		JWTRefreshExpiration: getDuration("JWT_REFRESH_EXPIRATION", 168*time.Hour),
		GoogleClientID:       getEnv("GOOGLE_CLIENT_ID", ""),
		GoogleClientSecret:   getEnv("GOOGLE_CLIENT_SECRET", ""),
		FrontendURL:          getEnv("FRONTEND_URL", "http://localhost:3000"),
		MongoDBURI:           getEnv("MONGODB_URI", ""),
		MongoDBDatabase:      getEnv("MONGODB_DATABASE", "interiors"),

		AWSRegion:          getEnv("AWS_REGION", "ap-south-1"),
		AWSAccessKeyID:     getEnv("AWS_ACCESS_KEY_ID", ""),
		AWSSecretAccessKey: getEnv("AWS_SECRET_ACCESS_KEY", ""),
		S3Bucket:           getEnv("S3_BUCKET", ""),
		S3PublicBaseURL:    getEnv("S3_PUBLIC_BASE_URL", ""),
		SESFromEmail:       getEnv("SES_FROM_EMAIL", ""),
		SESFromName:        getEnv("SES_FROM_NAME", "Interiors Admin"),

		RedisAddr:     getEnv("REDIS_ADDR", ""),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		StatsCacheTTL: getDuration("STATS_CACHE_TTL", 2*time.Minute),

		DigestInterval:    getDuration("DIGEST_INTERVAL", time.Hour),
		DigestHour:        getInt("DIGEST_HOUR", 8),
		NotificationEmail: getEnv("NOTIFICATION_EMAIL", ""),
	}
}

// StorageConfigured reports whether portfolio uploads can reach S3.
func (c *Config) StorageConfigured() bool {
	return c.S3Bucket != ""
}

// MailConfigured reports whether SES has a sender address.
func (c *Config) MailConfigured() bool {
	return c.SESFromEmail != ""
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getDuration(key string, defaultValue time.Duration) time.Duration {
	d, err := time.ParseDuration(getEnv(key, ""))
	if err != nil || d <= 0 {
		return defaultValue
	}
	return d
}

func getInt(key string, defaultValue int) int {
	n, err := strconv.Atoi(getEnv(key, ""))
	if err != nil {
		return defaultValue
	}
	return n
}
