package storage

import (
	"context"
	"sort"
	"sync"

	"lookate/internal/manager"
)

// MemoryStorage живет столько же, сколько процесс
type MemoryStorage struct {
	tasks map[int64]manager.Task
	mu    sync.Mutex
}

func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{
		tasks: make(map[int64]manager.Task),
	}
}

func (m *MemoryStorage) LoadTasks(ctx context.Context) ([]manager.Task, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	tasks := make([]manager.Task, 0, len(m.tasks))
	for _, task := range m.tasks {
		tasks = append(tasks, task)
	}
	sortForDisplay(tasks)
	return tasks, nil
}

func (m *MemoryStorage) SaveTask(ctx context.Context, task manager.Task) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.tasks[task.ID] = task
	return nil
}

func (m *MemoryStorage) Close() error {
	return nil
}

// sortForDisplay - новые задачи первыми, при равном времени больший id первым
func sortForDisplay(tasks []manager.Task) {
	sort.SliceStable(tasks, func(i, j int) bool {
		if !tasks[i].CreatedAt.Equal(tasks[j].CreatedAt) {
			return tasks[i].CreatedAt.After(tasks[j].CreatedAt)
		}
		return tasks[i].ID > tasks[j].ID
	})
}
