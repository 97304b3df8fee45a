package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"

	"lookate/internal/logger"
)

const (
	DriverMemory   = "memory"
	DriverJSON     = "json"
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

type DatabaseConfig struct {
	Driver string // memory, json, sqlite или postgres
	Path   string // файл sqlite
	File   string // файл json
	URL    string // DSN postgres
}

type TelegramConfig struct {
	Token string
	Debug bool
}

type Config struct {
	HTTPAddr  string
	LogLevel  logger.Level
	LogFormat string
	SeedDemo  bool
	DB        DatabaseConfig
	Telegram  TelegramConfig
}

// Load читает .env (если есть) и переменные окружения
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("ошибка чтения .env: %w", err)
	}
	return FromEnv()
}

// FromEnv собирает конфигурацию только из окружения
func FromEnv() (*Config, error) {
	level, err := logger.ParseLevel(getEnv("LOG_LEVEL", "info"))
	if err != nil {
		return nil, err
	}

	seed, err := getBool("SEED_DEMO_TASKS", false)
	if err != nil {
		return nil, err
	}

	tgDebug, err := getBool("TELEGRAM_DEBUG", false)
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		HTTPAddr:  getEnv("HTTP_ADDR", ":8080"),
		LogLevel:  level,
		LogFormat: getEnv("LOG_FORMAT", "text"),
		SeedDemo:  seed,
		DB: DatabaseConfig{
			Driver: strings.ToLower(getEnv("DB_DRIVER", DriverMemory)),
			Path:   getEnv("DB_PATH", "./data/lookate.db"),
			File:   getEnv("TASKS_FILE", "./data/tasks.json"),
			URL:    os.Getenv("DATABASE_URL"),
		},
		Telegram: TelegramConfig{
			Token: os.Getenv("TELEGRAM_TOKEN"),
			Debug: tgDebug,
		},
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	switch c.LogFormat {
	case "text", "json":
	default:
		return fmt.Errorf("LOG_FORMAT должен быть text или json, получено %q", c.LogFormat)
	}

	switch c.DB.Driver {
	case DriverMemory, DriverJSON, DriverSQLite:
	case DriverPostgres:
		if c.DB.URL == "" {
			return errors.New("DATABASE_URL обязателен для DB_DRIVER=postgres")
		}
	default:
		return fmt.Errorf("неподдерживаемый DB_DRIVER: %q", c.DB.Driver)
	}
	return nil
}

// DSN возвращает строку подключения для database/sql
func (db *DatabaseConfig) DSN() string {
	switch db.Driver {
	case DriverPostgres:
		return db.URL
	case DriverSQLite:
		return db.Path
	default:
		return ""
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getBool(key string, defaultValue bool) (bool, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	b, err := strconv.ParseBool(value)
	if err != nil {
		return false, fmt.Errorf("%s: ожидалось true/false, получено %q", key, value)
	}
	return b, nil
}
