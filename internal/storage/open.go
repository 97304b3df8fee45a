package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"lookate/internal/config"
	"lookate/internal/logger"
	"lookate/internal/manager"
)

// Open выбирает хранилище по DB_DRIVER
func Open(cfg config.DatabaseConfig) (manager.Storage, error) {
	switch cfg.Driver {
	case config.DriverMemory, "":
		return NewMemoryStorage(), nil
	case config.DriverJSON:
		return NewFileStorage(cfg.File), nil
	case config.DriverSQLite:
		if dir := filepath.Dir(cfg.Path); dir != "." {
			if err := os.MkdirAll(dir, 0755); err != nil {
				return nil, fmt.Errorf("ошибка создания директории %s: %w", dir, err)
			}
		}
		return NewSQLiteStorage(cfg.DSN())
	case config.DriverPostgres:
		return NewPostgresStorage(cfg.DSN())
	}
	return nil, fmt.Errorf("неподдерживаемый драйвер хранилища: %q", cfg.Driver)
}

// Bootstrap загружает сохраненные задачи в менеджер. Если хранилище пусто
// и seed=true, в него записываются демонстрационные задачи.
func Bootstrap(ctx context.Context, tm *manager.TaskManager, s manager.Storage, seed bool) error {
	tasks, err := s.LoadTasks(ctx)
	if err != nil {
		return fmt.Errorf("ошибка загрузки задач: %w", err)
	}

	if len(tasks) == 0 && seed {
		tasks = manager.DemoTasks()
		// С конца: FileStorage кладет новые задачи в начало файла
		for i := len(tasks) - 1; i >= 0; i-- {
			if err := s.SaveTask(ctx, tasks[i]); err != nil {
				return fmt.Errorf("ошибка записи демо-задач: %w", err)
			}
		}
		logger.Info(ctx, "Добавлены демонстрационные задачи", "count", len(tasks))
	}

	tm.Restore(tasks)
	logger.Info(ctx, "Задачи загружены", "count", len(tasks))
	return nil
}
