package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	App         AppConfig
	Database    DatabaseConfig
	SMTP        SMTPConfig
	Fulfillment FulfillmentConfig
	Renewal     RenewalConfig
}

type AppConfig struct {
	Port               string
	BaseURL            string
	ClientURL          string
	Environment        string
	LogFilePath        string
	CorsAllowedOrigins string
	NatsURL            string
	RedisURL           string
	JWTSecret          string
	OrderPlacedTopic   string
}

type DatabaseConfig struct {
	Connection string
}

type SMTPConfig struct {
	Host       string
	Port       int
	Email      string
	Password   string
	SenderName string
}

type FulfillmentConfig struct {
	BaseURL          string
	APIKey           string
	RequestTimeout   time.Duration
	PollInterval     time.Duration
	MaxPollAttempts  int
	MetadataCacheTTL time.Duration
}

type RenewalConfig struct {
	// Secret guards the batch trigger endpoint; it is distinct from user
	// authentication on purpose.
	Secret string
	// Interval drives the in-process ticker; the HTTP trigger works
	// regardless.
	Interval time.Duration
	// ItemTimeout bounds each subscription so one hung call cannot stall
	// the whole batch.
	ItemTimeout time.Duration
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("Note: .env file not found, using system environment")
	}

	return &Config{
		App: AppConfig{
			Port:               getEnv("APP_PORT", "3000"),
			BaseURL:            getEnv("APP_BASE_URL", "http://localhost:3000"),
			ClientURL:          getEnv("CLIENT_URL", "http://localhost:5173"),
			Environment:        getEnv("GO_ENV", "development"),
			LogFilePath:        getEnv("LOG_FILE_PATH", "logs/app.log"),
			CorsAllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:5173"),
			NatsURL:            getEnv("NATS_URL", "nats://localhost:4222"),
			RedisURL:           getEnv("REDIS_URL", "redis://localhost:6379"),
			JWTSecret:          getEnv("JWT_SECRET", ""),
			OrderPlacedTopic:   getEnv("ORDER_PLACED_TOPIC_NAME", "ORDER_PLACED"),
		},
		Database: DatabaseConfig{
			Connection: getEnv("DB_CONNECTION_STRING", ""),
		},
		SMTP: SMTPConfig{
			Host:       getEnv("SMTP_HOST", ""),
			Port:       getEnvAsInt("SMTP_PORT", 587),
			Email:      getEnv("SMTP_EMAIL", ""),
			Password:   getEnv("SMTP_PASSWORD", ""),
			SenderName: getEnv("SMTP_SENDER_NAME", "StockPoints"),
		},
		Fulfillment: FulfillmentConfig{
			BaseURL:          getEnv("FULFILLMENT_BASE_URL", "http://localhost:8090"),
			APIKey:           getEnv("FULFILLMENT_API_KEY", ""),
			RequestTimeout:   getEnvAsDuration("FULFILLMENT_REQUEST_TIMEOUT", 15*time.Second),
			PollInterval:     getEnvAsDuration("FULFILLMENT_POLL_INTERVAL", 10*time.Second),
			MaxPollAttempts:  getEnvAsInt("FULFILLMENT_MAX_POLL_ATTEMPTS", 30),
			MetadataCacheTTL: getEnvAsDuration("FULFILLMENT_METADATA_CACHE_TTL", 5*time.Minute),
		},
		Renewal: RenewalConfig{
			Secret:      getEnv("RENEWAL_SECRET", ""),
			Interval:    getEnvAsDuration("RENEWAL_INTERVAL", 24*time.Hour),
			ItemTimeout: getEnvAsDuration("RENEWAL_ITEM_TIMEOUT", 30*time.Second),
		},
	}
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	strValue := getEnv(key, "")
	if value, err := strconv.Atoi(strValue); err == nil {
		return value
	}
	return fallback
}

func getEnvAsDuration(key string, fallback time.Duration) time.Duration {
	strValue := getEnv(key, "")
	if value, err := time.ParseDuration(strValue); err == nil {
		return value
	}
	return fallback
}
