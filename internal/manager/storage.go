package manager

import "context"

// Storage - долговременное хранилище задач. LoadTasks возвращает задачи
// в порядке отображения (новые первыми), SaveTask вставляет или обновляет по id.
type Storage interface {
	LoadTasks(ctx context.Context) ([]Task, error)
	SaveTask(ctx context.Context, task Task) error
	Close() error
}
