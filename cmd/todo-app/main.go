package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"lookate/internal/config"
	"lookate/internal/logger"
	"lookate/internal/manager"
	"lookate/internal/storage"
)

var errUsage = errors.New("usage")

func main() {
	logger.SetLevel(logger.LevelWarn)

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}

	// Между запусками CLI задачи хранятся в JSON-файле
	if cfg.DB.Driver == config.DriverMemory {
		cfg.DB.Driver = config.DriverJSON
	}

	os.Exit(run(cfg, os.Args[1:], os.Stdout, os.Stderr))
}

func run(cfg *config.Config, args []string, stdout, stderr io.Writer) int {
	if len(args) < 1 {
		printHelp(stdout)
		return 1
	}

	ctx := context.Background()
	store, err := storage.Open(cfg.DB)
	if err != nil {
		fmt.Fprintf(stderr, "Error opening storage: %v\n", err)
		return 1
	}
	defer store.Close()

	tm := manager.NewTaskManagerWithStorage(store)
	if err := storage.Bootstrap(ctx, tm, store, cfg.SeedDemo); err != nil {
		fmt.Fprintf(stderr, "Error loading tasks: %v\n", err)
		return 1
	}

	c := &cli{tm: tm, store: store, out: stdout}

	command, rest := args[0], args[1:]
	switch command {
	case "add":
		err = c.add(rest)
	case "list":
		err = c.list(rest)
	case "toggle", "done":
		err = c.toggle(rest)
	case "progress":
		err = c.progress()
	case "export":
		err = c.export(rest)
	case "load":
		err = c.load(ctx, rest)
	case "help", "-h", "--help":
		printHelp(stdout)
		return 0
	default:
		fmt.Fprintf(stderr, "Unknown command: %s\n", command)
		printHelp(stderr)
		return 1
	}

	if errors.Is(err, errUsage) {
		return 2
	}
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
	return 0
}

type cli struct {
	tm    *manager.TaskManager
	store manager.Storage
	out   io.Writer
}

func (c *cli) flagSet(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(c.out)
	return fs
}

func (c *cli) add(args []string) error {
	fs := c.flagSet("add")
	title := fs.String("title", "", "Task title")
	if err := fs.Parse(args); err != nil {
		return errUsage
	}
	if *title == "" && fs.NArg() > 0 {
		*title = strings.Join(fs.Args(), " ")
	}

	task, ok := c.tm.AddTask(*title)
	if !ok {
		fmt.Fprintln(c.out, "Nothing added: title is empty")
		return nil
	}

	fmt.Fprintf(c.out, "Added task with ID %d\n", task.ID)
	return nil
}

func (c *cli) list(args []string) error {
	fs := c.flagSet("list")
	filter := fs.String("filter", "all", "Filter tasks (all|completed|pending)")
	if err := fs.Parse(args); err != nil {
		return errUsage
	}

	var completed *bool
	switch *filter {
	case "all":
	case "completed":
		val := true
		completed = &val
	case "pending":
		val := false
		completed = &val
	default:
		return fmt.Errorf("unknown filter %q", *filter)
	}

	printed := 0
	for _, task := range c.tm.Tasks() {
		if completed != nil && task.Completed != *completed {
			continue
		}
		printTask(c.out, task)
		printed++
	}

	if printed == 0 {
		fmt.Fprintln(c.out, "No tasks found")
	}
	return nil
}

func (c *cli) toggle(args []string) error {
	fs := c.flagSet("toggle")
	id := fs.Int64("id", 0, "Task ID to toggle")
	if err := fs.Parse(args); err != nil {
		return errUsage
	}
	if *id == 0 {
		fmt.Fprintln(c.out, "Error: --id is required")
		return errUsage
	}

	c.tm.ToggleTask(*id)

	task, ok := c.tm.GetTask(*id)
	if !ok {
		fmt.Fprintf(c.out, "No task with ID %d, nothing changed\n", *id)
		return nil
	}

	state := "pending"
	if task.Completed {
		state = "completed"
	}
	fmt.Fprintf(c.out, "Task %d marked as %s\n", *id, state)
	return nil
}

func (c *cli) progress() error {
	p := c.tm.Progress()
	fmt.Fprintf(c.out, "%d of %d tasks completed (%.0f%%)\n", p.CompletedCount, p.TotalCount, p.Percentage)
	return nil
}

func (c *cli) export(args []string) error {
	fs := c.flagSet("export")
	format := fs.String("format", "json", "Export format (json|csv)")
	outFile := fs.String("out", "", "Output file path")
	if err := fs.Parse(args); err != nil {
		return errUsage
	}
	if *outFile == "" {
		fmt.Fprintln(c.out, "Error: --out is required")
		return errUsage
	}

	tasks := c.tm.Tasks()
	var err error
	switch *format {
	case "json":
		err = storage.SaveJSON(*outFile, tasks)
	case "csv":
		err = storage.SaveCSV(*outFile, tasks)
	default:
		return fmt.Errorf("unsupported format %s", *format)
	}
	if err != nil {
		return fmt.Errorf("exporting tasks: %w", err)
	}

	fmt.Fprintf(c.out, "Tasks exported to %s in %s format\n", *outFile, *format)
	return nil
}

// load импортирует задачи из файла; задачи с совпадающим id перезаписываются
func (c *cli) load(ctx context.Context, args []string) error {
	fs := c.flagSet("load")
	file := fs.String("file", "", "File to load tasks from")
	if err := fs.Parse(args); err != nil {
		return errUsage
	}
	if *file == "" {
		fmt.Fprintln(c.out, "Error: --file is required")
		return errUsage
	}

	var tasks []manager.Task
	var err error
	switch {
	case strings.HasSuffix(*file, ".json"):
		tasks, err = storage.LoadJSON(*file)
	case strings.HasSuffix(*file, ".csv"):
		tasks, err = storage.LoadCSV(*file)
	default:
		return errors.New("unsupported file format, use .json or .csv")
	}
	if err != nil {
		return fmt.Errorf("loading tasks: %w", err)
	}

	// С конца, чтобы файловое хранилище сохранило порядок из файла
	for i := len(tasks) - 1; i >= 0; i-- {
		if err := c.store.SaveTask(ctx, tasks[i]); err != nil {
			return fmt.Errorf("saving task %d: %w", tasks[i].ID, err)
		}
	}
	if err := storage.Bootstrap(ctx, c.tm, c.store, false); err != nil {
		return err
	}

	fmt.Fprintf(c.out, "Loaded %d tasks from %s\n", len(tasks), *file)
	return nil
}

func printTask(w io.Writer, task manager.Task) {
	status := "Pending"
	if task.Completed {
		status = "Completed"
	}
	fmt.Fprintf(w, "%d: %s [%s]", task.ID, task.Title, status)
	if task.DueTime != "" {
		fmt.Fprintf(w, " @ %s", task.DueTime)
	}
	if task.Location != "" {
		fmt.Fprintf(w, " (%s)", task.Location)
	}
	fmt.Fprintln(w)
}

func printHelp(w io.Writer) {
	fmt.Fprintln(w, `Usage: todo-app <command> [flags]

Commands:
  add      --title="..."                      Add new task (blank titles are ignored)
  list     [--filter=all|completed|pending]   List tasks, newest first
  toggle   --id=ID                            Toggle task completion
  progress                                    Show completed/total tasks
  export   --format=json|csv --out=FILE       Export tasks
  load     --file=FILE                        Import tasks from .json or .csv

Storage:
  DB_DRIVER selects json (default, TASKS_FILE=./data/tasks.json), sqlite (DB_PATH)
  or postgres (DATABASE_URL). Settings may also come from a .env file.`)
}
