package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config holds every environment-derived setting the server needs. Optional
// integrations (news provider, AI service key) may be empty; the features that
// depend on them degrade to fallback data instead of failing startup.
type Config struct {
	Environment string
	Port        string
	LogLevel    string

	PostgresURL string
	MongoURI    string

	JWTSecret      string
	TokenTTL       time.Duration
	InternalAPIKey string

	AIServiceURL     string
	AIServiceKey     string
	AIRequestTimeout time.Duration

	NewsAPIURL    string
	NewsAPIKey    string
	NewsCacheTTL  time.Duration
	NewsHourlyCap int

	KafkaBootstrapServers string
	KafkaAPIKey           string
	KafkaAPISecret        string

	UploadDir string
}

// Load reads configuration from the environment. It returns an error when a
// setting without a usable default is missing.
func Load() (*Config, error) {
	cfg := &Config{
		Environment: getEnv("ENVIRONMENT", "development"),
		Port:        getEnv("PORT", "8080"),
		LogLevel:    getEnv("LOG_LEVEL", "info"),

		PostgresURL: os.Getenv("DATABASE_URL"),
		MongoURI:    os.Getenv("MONGO_URI"),

		JWTSecret:      os.Getenv("JWT_SECRET"),
		InternalAPIKey: os.Getenv("INTERNAL_API_KEY"),

		AIServiceURL: getEnv("AI_SERVICE_URL", "http://localhost:8000"),
		AIServiceKey: os.Getenv("AI_SERVICE_KEY"),

		NewsAPIURL: getEnv("NEWS_API_URL", "https://newsapi.org/v2/everything"),
		NewsAPIKey: os.Getenv("NEWS_API_KEY"),

		KafkaBootstrapServers: os.Getenv("KAFKA_BOOTSTRAP_SERVERS"),
		KafkaAPIKey:           os.Getenv("KAFKA_API_KEY"),
		KafkaAPISecret:        os.Getenv("KAFKA_API_SECRET"),

		UploadDir: getEnv("UPLOAD_DIR", "uploads"),
	}

	if cfg.PostgresURL == "" {
		return nil, fmt.Errorf("DATABASE_URL environment variable not set")
	}
	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET environment variable not set")
	}

	tokenTTLMin, err := getEnvInt("TOKEN_TTL_MINUTES", 24*60)
	if err != nil {
		return nil, err
	}
	cfg.TokenTTL = time.Duration(tokenTTLMin) * time.Minute

	aiTimeoutSec, err := getEnvInt("AI_REQUEST_TIMEOUT_SECONDS", 30)
	if err != nil {
		return nil, err
	}
	cfg.AIRequestTimeout = time.Duration(aiTimeoutSec) * time.Second

	newsTTLMin, err := getEnvInt("NEWS_CACHE_TTL_MINUTES", 30)
	if err != nil {
		return nil, err
	}
	cfg.NewsCacheTTL = time.Duration(newsTTLMin) * time.Minute

	cfg.NewsHourlyCap, err = getEnvInt("NEWS_HOURLY_CAP", 20)
	if err != nil {
		return nil, err
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return n, nil
}
