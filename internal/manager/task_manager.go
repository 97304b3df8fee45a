package manager

import (
	"context"
	"strings"
	"sync"
	"time"

	"lookate/internal/logger"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	addTaskCount = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "lookate_tasks_added_total",
			Help: "Total number of AddTask operations",
		},
		[]string{"status"},
	)

	toggleTaskCount = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "lookate_tasks_toggled_total",
			Help: "Total number of ToggleTask operations",
		},
		[]string{"status"},
	)

	persistErrorCount = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "lookate_tasks_persist_errors_total",
			Help: "Total number of failed writes to the task storage",
		},
	)

	taskTitleLength = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "lookate_task_title_length_bytes",
			Help:    "Length distribution of task titles",
			Buckets: []float64{10, 25, 50, 100, 250},
		},
	)

	tasksGauge = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "lookate_tasks",
			Help: "Current number of tasks by completion state",
		},
		[]string{"state"},
	)

	addTaskDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "lookate_add_task_duration_seconds",
			Help:    "Duration of AddTask operation in seconds",
			Buckets: prometheus.DefBuckets,
		},
	)
)

const persistTimeout = 5 * time.Second

type Task struct {
	ID          int64     `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	Completed   bool      `json:"completed"`
	DueTime     string    `json:"due_time,omitempty"`
	Location    string    `json:"location,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

type Progress struct {
	CompletedCount int     `json:"completed_count"`
	TotalCount     int     `json:"total_count"`
	Percentage     float64 `json:"percentage"`
}

// Snapshot - согласованный срез списка задач и прогресса, снятый под одной блокировкой.
// Version растет с каждым фактическим изменением списка.
type Snapshot struct {
	Version  uint64   `json:"version"`
	Tasks    []Task   `json:"tasks"`
	Progress Progress `json:"progress"`
}

// TaskManager хранит упорядоченный список задач (новые в начале).
// Нулевое значение готово к работе и не сохраняет задачи никуда, кроме памяти.
type TaskManager struct {
	tasks   []Task
	lastID  int64
	version uint64
	mu      sync.Mutex
	storage Storage
	now     func() time.Time

	listeners    map[int]func(Snapshot)
	nextListener int
	// emitMu упорядочивает запись в хранилище и уведомления в порядке мутаций
	emitMu sync.Mutex
}

func NewTaskManager() *TaskManager {
	return &TaskManager{now: time.Now}
}

// NewTaskManagerWithStorage создает менеджер, который сохраняет каждое изменение в storage
func NewTaskManagerWithStorage(storage Storage) *TaskManager {
	return &TaskManager{now: time.Now, storage: storage}
}

// AddTask добавляет задачу в начало списка. Пустой (или из одних пробелов)
// заголовок игнорируется: состояние не меняется, возвращается false.
func (tm *TaskManager) AddTask(title string) (Task, bool) {
	startTime := time.Now()
	defer func() {
		addTaskDuration.Observe(time.Since(startTime).Seconds())
	}()

	if strings.TrimSpace(title) == "" {
		addTaskCount.WithLabelValues("ignored").Inc()
		return Task{}, false
	}

	tm.mu.Lock()
	now := tm.clock()
	id := now.UnixMilli()
	if id <= tm.lastID {
		id = tm.lastID + 1
	}
	tm.lastID = id

	task := Task{
		ID:        id,
		Title:     title,
		Completed: false,
		CreatedAt: now,
	}
	tm.tasks = append([]Task{task}, tm.tasks...)
	tm.version++
	tm.commitLocked(task)

	addTaskCount.WithLabelValues("success").Inc()
	taskTitleLength.Observe(float64(len(title)))

	return task, true
}

// ToggleTask переключает флаг выполнения. Неизвестный id молча игнорируется.
func (tm *TaskManager) ToggleTask(id int64) {
	tm.mu.Lock()
	for i := range tm.tasks {
		if tm.tasks[i].ID == id {
			tm.tasks[i].Completed = !tm.tasks[i].Completed
			tm.version++
			tm.commitLocked(tm.tasks[i])
			toggleTaskCount.WithLabelValues("success").Inc()
			return
		}
	}
	tm.mu.Unlock()

	toggleTaskCount.WithLabelValues("ignored").Inc()
}

func (tm *TaskManager) Progress() Progress {
	tm.mu.Lock()
	defer tm.mu.Unlock()

	return computeProgress(tm.tasks)
}

// Tasks возвращает копию всего списка в порядке отображения
func (tm *TaskManager) Tasks() []Task {
	tm.mu.Lock()
	defer tm.mu.Unlock()

	return copyTasks(tm.tasks)
}

func (tm *TaskManager) GetTask(id int64) (Task, bool) {
	tm.mu.Lock()
	defer tm.mu.Unlock()

	for _, task := range tm.tasks {
		if task.ID == id {
			return task, true
		}
	}
	return Task{}, false
}

func (tm *TaskManager) Snapshot() Snapshot {
	tm.mu.Lock()
	defer tm.mu.Unlock()

	return tm.snapshotLocked()
}

// Restore заменяет список задачами, загруженными из хранилища (порядок сохраняется).
// Счетчик id сдвигается за максимальный загруженный id.
func (tm *TaskManager) Restore(tasks []Task) {
	tm.mu.Lock()
	tm.tasks = copyTasks(tasks)
	tm.version++
	for _, task := range tasks {
		if task.ID > tm.lastID {
			tm.lastID = task.ID
		}
	}
	snap := tm.snapshotLocked()
	listeners := tm.listenersLocked()
	tm.emitMu.Lock()
	tm.mu.Unlock()
	defer tm.emitMu.Unlock()

	updateGauge(snap.Progress)
	for _, fn := range listeners {
		fn(snap)
	}
}

// Subscribe регистрирует слушателя, который вызывается после каждого
// фактического изменения списка. Возвращает функцию отписки.
// Слушатель не должен вызывать методы TaskManager: он выполняется под emitMu.
func (tm *TaskManager) Subscribe(fn func(Snapshot)) func() {
	tm.mu.Lock()
	defer tm.mu.Unlock()

	if tm.listeners == nil {
		tm.listeners = make(map[int]func(Snapshot))
	}
	id := tm.nextListener
	tm.nextListener++
	tm.listeners[id] = fn

	return func() {
		tm.mu.Lock()
		defer tm.mu.Unlock()
		delete(tm.listeners, id)
	}
}

// commitLocked вызывается с захваченным tm.mu и освобождает его.
// Запись в хранилище и уведомления идут вне tm.mu, но в порядке мутаций.
func (tm *TaskManager) commitLocked(changed Task) {
	snap := tm.snapshotLocked()
	listeners := tm.listenersLocked()
	storage := tm.storage
	tm.emitMu.Lock()
	tm.mu.Unlock()
	defer tm.emitMu.Unlock()

	if storage != nil {
		ctx, cancel := context.WithTimeout(context.Background(), persistTimeout)
		err := storage.SaveTask(ctx, changed)
		cancel()
		if err != nil {
			persistErrorCount.Inc()
			logger.Error(context.Background(), err, "Ошибка сохранения задачи", "taskID", changed.ID)
		}
	}

	updateGauge(snap.Progress)
	for _, fn := range listeners {
		fn(snap)
	}
}

func (tm *TaskManager) snapshotLocked() Snapshot {
	return Snapshot{
		Version:  tm.version,
		Tasks:    copyTasks(tm.tasks),
		Progress: computeProgress(tm.tasks),
	}
}

func (tm *TaskManager) listenersLocked() []func(Snapshot) {
	fns := make([]func(Snapshot), 0, len(tm.listeners))
	for _, fn := range tm.listeners {
		fns = append(fns, fn)
	}
	return fns
}

func (tm *TaskManager) clock() time.Time {
	if tm.now == nil {
		return time.Now()
	}
	return tm.now()
}

func computeProgress(tasks []Task) Progress {
	completed := 0
	for _, task := range tasks {
		if task.Completed {
			completed++
		}
	}

	p := Progress{CompletedCount: completed, TotalCount: len(tasks)}
	if p.TotalCount > 0 {
		p.Percentage = float64(completed) / float64(p.TotalCount) * 100
	}
	return p
}

func copyTasks(tasks []Task) []Task {
	out := make([]Task, len(tasks))
	copy(out, tasks)
	return out
}

func updateGauge(p Progress) {
	tasksGauge.WithLabelValues("completed").Set(float64(p.CompletedCount))
	tasksGauge.WithLabelValues("pending").Set(float64(p.TotalCount - p.CompletedCount))
}
