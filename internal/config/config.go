package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	// EnvFileLoaded is false when no .env file was read.
	EnvFileLoaded bool

	Server   ServerConfig
	Search   SearchConfig
	Scrape   ScrapeConfig
	LLM      LLMConfig
	Database DatabaseConfig
	Recorder RecorderConfig
}

type ServerConfig struct {
	Port   string
	Env    string
	Rubric string
}

type SearchConfig struct {
	URL          string
	TopN         int
	Timeout      time.Duration
	Alternatives bool
}

type ScrapeConfig struct {
	Timeout          time.Duration
	MaxBytes         int64
	RatePerSec       float64
	MaxDocumentChars int
}

type LLMConfig struct {
	Provider    string
	APIKey      string
	BaseURL     string
	Model       string
	Temperature float32
	Timeout     time.Duration
	MaxAttempts int
	RetryDelay  time.Duration
}

type DatabaseConfig struct {
	Enabled  bool
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
}

type RecorderConfig struct {
	Concurrency int
	QueueSize   int
}

// Load reads .env (when present) and the process environment once. The
// result is passed explicitly to every component that needs it.
func Load() *Config {
	envFileLoaded := godotenv.Load() == nil

	return &Config{
		EnvFileLoaded: envFileLoaded,
		Server: ServerConfig{
			Port:   getEnv("PORT", "5001"),
			Env:    getEnv("ENV", "development"),
			Rubric: getEnv("RUBRIC", "esg"),
		},
		Search: SearchConfig{
			URL:          getEnv("SEARCH_URL", "http://localhost:8080/search"),
			TopN:         getEnvAsInt("SEARCH_TOP_N", 1),
			Timeout:      getEnvAsDuration("SEARCH_TIMEOUT", "10s"),
			Alternatives: getEnvAsBool("SEARCH_ALTERNATIVES", true),
		},
		Scrape: ScrapeConfig{
			Timeout:          getEnvAsDuration("SCRAPE_TIMEOUT", "15s"),
			MaxBytes:         getEnvAsInt64("SCRAPE_MAX_BYTES", 2097152),
			RatePerSec:       getEnvAsFloat("SCRAPE_RATE_PER_SEC", 2),
			MaxDocumentChars: getEnvAsInt("MAX_DOCUMENT_CHARS", 12000),
		},
		LLM: LLMConfig{
			Provider:    getEnv("LLM_PROVIDER", "openai"),
			APIKey:      getEnv("API_KEY", ""),
			BaseURL:     getEnv("LLM_BASE_URL", ""),
			Model:       getEnv("LLM_MODEL", "gpt-4o-mini"),
			Temperature: float32(getEnvAsFloat("LLM_TEMPERATURE", 0.3)),
			Timeout:     getEnvAsDuration("LLM_TIMEOUT", "60s"),
			MaxAttempts: getEnvAsInt("LLM_MAX_ATTEMPTS", 1),
			RetryDelay:  getEnvAsDuration("LLM_RETRY_DELAY", "2s"),
		},
		Database: DatabaseConfig{
			Enabled:  getEnvAsBool("DB_ENABLED", false),
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", "postgres"),
			DBName:   getEnv("DB_NAME", "eco_assessor"),
		},
		Recorder: RecorderConfig{
			Concurrency: getEnvAsInt("RECORDER_CONCURRENCY", 2),
			QueueSize:   getEnvAsInt("RECORDER_QUEUE_SIZE", 100),
		},
	}
}

func (c *Config) GetDatabaseDSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		c.Database.Host,
		c.Database.Port,
		c.Database.User,
		c.Database.Password,
		c.Database.DBName,
	)
}

// HasAPIKey reports whether the model credential is configured.
func (c *Config) HasAPIKey() bool {
	return c.LLM.APIKey != ""
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsInt64(key string, defaultValue int64) int64 {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseInt(valueStr, 10, 64); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseFloat(valueStr, 64); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseBool(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue string) time.Duration {
	valueStr := getEnv(key, defaultValue)
	if duration, err := time.ParseDuration(valueStr); err == nil {
		return duration
	}
	duration, _ := time.ParseDuration(defaultValue)
	return duration
}
