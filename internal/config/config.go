package config

import (
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Config holds all application configuration. Every field is read from the
// environment variable of the same name in upper snake case, see Load.
type Config struct {
	DataFile     string // DATA_FILE
	DataDir      string // DATA_DIR, per-chat snapshots for the bot
	LogLevel     string
	HistoryLimit int
	SignalsLimit int

	TelegramToken   string
	TelegramRate    float64
	TelegramTimeout int // long-poll seconds
	MetricsAddr     string

	DB DBConfig
}

// DBConfig holds PostgreSQL connection parameters. Postgres is only used when Host is set.
type DBConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	Name     string
	SSLMode  string
}

// Enabled reports whether a database host was configured.
func (c DBConfig) Enabled() bool {
	return c.Host != ""
}

// Load initializes configuration from environment variables
func Load() (*Config, error) {
	// Load environment variables from .env file if present
	if err := godotenv.Load(); err != nil {
		log.Debug().Msg(".env file not found, relying on actual environment variables")
	}

	var cfg Config

	cfg.DataFile = getEnvWithDefault("DATA_FILE", "analyzer_data.json")
	cfg.DataDir = getEnvWithDefault("DATA_DIR", "data")
	cfg.LogLevel = getEnvWithDefault("LOG_LEVEL", "info")
	cfg.HistoryLimit = getEnvIntWithDefault("HISTORY_LIMIT", 72)
	cfg.SignalsLimit = getEnvIntWithDefault("SIGNALS_LIMIT", 5)

	cfg.TelegramToken = os.Getenv("TELEGRAM_BOT_TOKEN")
	cfg.TelegramRate = getEnvFloatWithDefault("TELEGRAM_RATE_PER_SEC", 20)
	cfg.TelegramTimeout = getEnvIntWithDefault("TELEGRAM_TIMEOUT", 60)
	cfg.MetricsAddr = os.Getenv("METRICS_ADDR")

	cfg.DB = DBConfig{
		Host:     os.Getenv("DB_HOST"),
		Port:     getEnvWithDefault("DB_PORT", "5432"),
		User:     os.Getenv("DB_USER"),
		Password: os.Getenv("DB_PASSWORD"),
		Name:     os.Getenv("DB_NAME"),
		SSLMode:  getEnvWithDefault("DB_SSLMODE", "disable"),
	}

	return &cfg, nil
}

// SetupLogger points the global zerolog logger at a console writer on out.
// Unknown levels fall back to info.
func SetupLogger(level string, out io.Writer) {
	lvl, err := zerolog.ParseLevel(strings.ToLower(level))
	if err != nil || level == "" {
		lvl = zerolog.InfoLevel
	}
	log.Logger = zerolog.New(zerolog.ConsoleWriter{Out: out}).Level(lvl).With().Timestamp().Logger()
}

// Helper functions for environment variable handling
func getEnvWithDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntWithDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvFloatWithDefault(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}
