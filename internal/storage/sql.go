package storage

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"strings"
	"time"

	"lookate/internal/logger"
	"lookate/internal/manager"

	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"
)

const createTasksTable = `
CREATE TABLE IF NOT EXISTS tasks (
	id BIGINT PRIMARY KEY,
	title TEXT NOT NULL,
	description TEXT,
	completed BOOLEAN NOT NULL DEFAULT FALSE,
	due_time TEXT,
	location TEXT,
	created_at TIMESTAMP NOT NULL
)`

// SQLStorage работает и с sqlite (modernc), и с postgres (lib/pq).
// Запросы пишутся с "?", для postgres они переписываются в $1, $2...
type SQLStorage struct {
	db      *sql.DB
	dialect string
}

func NewSQLiteStorage(dbPath string) (*SQLStorage, error) {
	return openSQL("sqlite", dbPath)
}

func NewPostgresStorage(dsn string) (*SQLStorage, error) {
	return openSQL("postgres", dsn)
}

// NewSQLStorage оборачивает уже открытое соединение (используется в тестах)
func NewSQLStorage(db *sql.DB, dialect string) (*SQLStorage, error) {
	s := &SQLStorage{db: db, dialect: dialect}
	if err := s.CreateSchema(context.Background()); err != nil {
		return nil, err
	}
	return s, nil
}

func openSQL(driver, dsn string) (*SQLStorage, error) {
	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("ошибка открытия БД: %w", err)
	}

	// Проверяем соединение
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ошибка подключения к БД: %w", err)
	}

	s, err := NewSQLStorage(db, driver)
	if err != nil {
		db.Close()
		return nil, err
	}

	logger.Info(context.Background(), "SQL хранилище инициализировано", "driver", driver)
	return s, nil
}

func (s *SQLStorage) CreateSchema(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, createTasksTable); err != nil {
		return fmt.Errorf("ошибка создания таблицы tasks: %w", err)
	}
	return nil
}

func (s *SQLStorage) Close() error {
	return s.db.Close()
}

func (s *SQLStorage) LoadTasks(ctx context.Context) ([]manager.Task, error) {
	query := `
	SELECT id, title, description, completed, due_time, location, created_at
	FROM tasks ORDER BY created_at DESC, id DESC`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("ошибка чтения задач: %w", err)
	}
	defer rows.Close()

	return scanTasks(rows)
}

// SaveTask вставляет задачу или обновляет существующую с тем же id
func (s *SQLStorage) SaveTask(ctx context.Context, task manager.Task) error {
	query := `
	INSERT INTO tasks (id, title, description, completed, due_time, location, created_at)
	VALUES (?, ?, ?, ?, ?, ?, ?)
	ON CONFLICT (id) DO UPDATE SET
		title = excluded.title,
		description = excluded.description,
		completed = excluded.completed,
		due_time = excluded.due_time,
		location = excluded.location`

	_, err := s.db.ExecContext(ctx, s.rebind(query),
		task.ID, task.Title, nullString(task.Description), task.Completed,
		nullString(task.DueTime), nullString(task.Location), task.CreatedAt.UTC(),
	)
	if err != nil {
		return fmt.Errorf("ошибка сохранения задачи %d: %w", task.ID, err)
	}
	return nil
}

func (s *SQLStorage) CountTasks(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM tasks").Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}

// rebind заменяет "?" на позиционные параметры postgres
func (s *SQLStorage) rebind(query string) string {
	if s.dialect != "postgres" {
		return query
	}

	var b strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// Вспомогательная функция для сканирования задач
func scanTasks(rows *sql.Rows) ([]manager.Task, error) {
	tasks := []manager.Task{}
	for rows.Next() {
		var task manager.Task
		var description, dueTime, location sql.NullString
		var createdAt time.Time

		err := rows.Scan(
			&task.ID, &task.Title, &description, &task.Completed,
			&dueTime, &location, &createdAt,
		)
		if err != nil {
			return nil, err
		}

		task.Description = description.String
		task.DueTime = dueTime.String
		task.Location = location.String
		task.CreatedAt = createdAt.UTC()

		tasks = append(tasks, task)
	}

	return tasks, rows.Err()
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
