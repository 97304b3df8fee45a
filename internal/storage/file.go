package storage

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"time"

	"lookate/internal/manager"
)

var csvHeader = []string{"id", "title", "description", "completed", "due_time", "location", "created_at"}

// SaveJSON записывает задачи в файл целиком
func SaveJSON(path string, tasks []manager.Task) error {
	data, err := json.MarshalIndent(tasks, "", "  ")
	if err != nil {
		return err
	}
	return writeFile(path, data)
}

// LoadJSON читает задачи из файла. Отсутствующий файл - пустой список, не ошибка.
func LoadJSON(path string) ([]manager.Task, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if len(data) == 0 {
		return nil, nil
	}

	var tasks []manager.Task
	if err := json.Unmarshal(data, &tasks); err != nil {
		return nil, fmt.Errorf("ошибка разбора %s: %w", path, err)
	}
	return tasks, nil
}

func SaveCSV(path string, tasks []manager.Task) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return err
		}
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(csvHeader); err != nil {
		return err
	}
	for _, task := range tasks {
		record := []string{
			strconv.FormatInt(task.ID, 10),
			task.Title,
			task.Description,
			strconv.FormatBool(task.Completed),
			task.DueTime,
			task.Location,
			task.CreatedAt.UTC().Format(time.RFC3339Nano),
		}
		if err := w.Write(record); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

func LoadCSV(path string) ([]manager.Task, error) {
	f, err := os.Open(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = len(csvHeader)
	records, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("ошибка разбора %s: %w", path, err)
	}

	var tasks []manager.Task
	for i, rec := range records {
		if i == 0 && rec[0] == csvHeader[0] {
			continue
		}

		id, err := strconv.ParseInt(rec[0], 10, 64)
		if err != nil {
			return nil, fmt.Errorf("строка %d: неверный id %q", i+1, rec[0])
		}
		completed, err := strconv.ParseBool(rec[3])
		if err != nil {
			return nil, fmt.Errorf("строка %d: неверный completed %q", i+1, rec[3])
		}
		var createdAt time.Time
		if rec[6] != "" {
			createdAt, err = time.Parse(time.RFC3339Nano, rec[6])
			if err != nil {
				return nil, fmt.Errorf("строка %d: неверный created_at %q", i+1, rec[6])
			}
		}

		tasks = append(tasks, manager.Task{
			ID:          id,
			Title:       rec[1],
			Description: rec[2],
			Completed:   completed,
			DueTime:     rec[4],
			Location:    rec[5],
			CreatedAt:   createdAt,
		})
	}
	return tasks, nil
}

func writeFile(path string, data []byte) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return err
		}
	}

	// Пишем во временный файл и переименовываем, чтобы не оставить обрезанный JSON
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}

// FileStorage хранит весь список в одном JSON-файле
type FileStorage struct {
	path string
	mu   sync.Mutex
}

func NewFileStorage(path string) *FileStorage {
	return &FileStorage{path: path}
}

func (f *FileStorage) LoadTasks(ctx context.Context) ([]manager.Task, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	tasks, err := LoadJSON(f.path)
	if err != nil {
		return nil, err
	}
	if tasks == nil {
		tasks = []manager.Task{}
	}
	return tasks, nil
}

// SaveTask переписывает файл: существующая задача заменяется на месте, новая идет в начало
func (f *FileStorage) SaveTask(ctx context.Context, task manager.Task) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	tasks, err := LoadJSON(f.path)
	if err != nil {
		return err
	}

	replaced := false
	for i := range tasks {
		if tasks[i].ID == task.ID {
			tasks[i] = task
			replaced = true
			break
		}
	}
	if !replaced {
		tasks = append([]manager.Task{task}, tasks...)
	}

	return SaveJSON(f.path, tasks)
}

func (f *FileStorage) Close() error {
	return nil
}
