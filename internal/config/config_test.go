package config

import (
	"testing"

	"lookate/internal/logger"
)

func TestFromEnvDefaults(t *testing.T) {
	for _, key := range []string{"HTTP_ADDR", "LOG_LEVEL", "LOG_FORMAT", "DB_DRIVER", "DB_PATH", "TASKS_FILE", "DATABASE_URL", "SEED_DEMO_TASKS", "TELEGRAM_TOKEN", "TELEGRAM_DEBUG"} {
		t.Setenv(key, "")
	}

	cfg, err := FromEnv()
	if err != nil {
		t.Fatalf("FromEnv: %v", err)
	}

	if cfg.HTTPAddr != ":8080" {
		t.Errorf("HTTPAddr = %q", cfg.HTTPAddr)
	}
	if cfg.LogLevel != logger.LevelInfo || cfg.LogFormat != "text" {
		t.Errorf("Неверные настройки логов: %v %q", cfg.LogLevel, cfg.LogFormat)
	}
	if cfg.DB.Driver != DriverMemory || cfg.DB.Path != "./data/lookate.db" || cfg.DB.File != "./data/tasks.json" {
		t.Errorf("Неверные настройки БД: %+v", cfg.DB)
	}
	if cfg.SeedDemo {
		t.Error("SeedDemo по умолчанию должен быть false")
	}
}

func TestFromEnvOverrides(t *testing.T) {
	t.Setenv("HTTP_ADDR", ":9090")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("LOG_FORMAT", "json")
	t.Setenv("DB_DRIVER", "SQLite")
	t.Setenv("DB_PATH", "/tmp/x.db")
	t.Setenv("SEED_DEMO_TASKS", "true")
	t.Setenv("TELEGRAM_TOKEN", "123:abc")
	t.Setenv("TELEGRAM_DEBUG", "1")

	cfg, err := FromEnv()
	if err != nil {
		t.Fatalf("FromEnv: %v", err)
	}

	if cfg.HTTPAddr != ":9090" || cfg.LogLevel != logger.LevelDebug || cfg.LogFormat != "json" {
		t.Errorf("Неверная конфигурация: %+v", cfg)
	}
	if cfg.DB.Driver != DriverSQLite || cfg.DB.DSN() != "/tmp/x.db" {
		t.Errorf("Неверная БД: %+v", cfg.DB)
	}
	if !cfg.SeedDemo || cfg.Telegram.Token != "123:abc" || !cfg.Telegram.Debug {
		t.Errorf("Неверные флаги: %+v", cfg)
	}
}

func TestFromEnvErrors(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{"unknown driver", map[string]string{"DB_DRIVER": "mysql"}},
		{"postgres without url", map[string]string{"DB_DRIVER": "postgres", "DATABASE_URL": ""}},
		{"bad level", map[string]string{"LOG_LEVEL": "loud"}},
		{"bad format", map[string]string{"LOG_FORMAT": "xml"}},
		{"bad bool", map[string]string{"SEED_DEMO_TASKS": "yes please"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for _, key := range []string{"DB_DRIVER", "DATABASE_URL", "LOG_LEVEL", "LOG_FORMAT", "SEED_DEMO_TASKS", "TELEGRAM_DEBUG"} {
				t.Setenv(key, "")
			}
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			if _, err := FromEnv(); err == nil {
				t.Error("Ожидалась ошибка")
			}
		})
	}
}

func TestPostgresDSN(t *testing.T) {
	db := DatabaseConfig{Driver: DriverPostgres, URL: "postgres://u:p@localhost/lookate?sslmode=disable"}
	if db.DSN() != db.URL {
		t.Errorf("DSN() = %q", db.DSN())
	}
}
