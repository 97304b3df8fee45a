package main

import (
	"context"
	"flag"
	"os"

	"lookate/internal/config"
	"lookate/internal/logger"
	"lookate/internal/manager"
	"lookate/internal/storage"
)

func main() {
	ctx := context.Background()
	seed := flag.Bool("seed", false, "insert demo tasks into an empty database")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		logger.Error(ctx, err, "Ошибка загрузки конфигурации")
		os.Exit(1)
	}

	if cfg.DB.Driver != config.DriverSQLite && cfg.DB.Driver != config.DriverPostgres {
		logger.Warn(ctx, "Миграция нужна только для SQL хранилищ, используется sqlite", "driver", cfg.DB.Driver)
		cfg.DB.Driver = config.DriverSQLite
	}

	logger.Info(ctx, "🔄 Подготовка базы данных...", "driver", cfg.DB.Driver)

	// Open создает таблицу tasks, если ее еще нет
	store, err := storage.Open(cfg.DB)
	if err != nil {
		logger.Error(ctx, err, "❌ Ошибка открытия БД")
		os.Exit(1)
	}
	defer store.Close()

	logger.Info(ctx, "✅ Таблица tasks готова")

	if *seed || cfg.SeedDemo {
		// Bootstrap добавит демо-задачи только в пустую таблицу
		if err := storage.Bootstrap(ctx, manager.NewTaskManager(), store, true); err != nil {
			logger.Error(ctx, err, "❌ Ошибка добавления демо-задач")
			os.Exit(1)
		}
	}

	logger.Info(ctx, "🎉 Миграция завершена успешно!")
}
