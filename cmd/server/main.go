package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"lookate/internal/config"
	"lookate/internal/logger"
	"lookate/internal/manager"
	"lookate/internal/realtime"
	"lookate/internal/server"
	"lookate/internal/storage"
)

func main() {
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		logger.Error(ctx, err, "Ошибка загрузки конфигурации")
		os.Exit(1)
	}
	logger.SetLevel(cfg.LogLevel)
	logger.SetFormat(cfg.LogFormat)

	store, err := storage.Open(cfg.DB)
	if err != nil {
		logger.Error(ctx, err, "Ошибка инициализации хранилища", "driver", cfg.DB.Driver)
		os.Exit(1)
	}
	defer store.Close()

	taskManager := manager.NewTaskManagerWithStorage(store)
	if err := storage.Bootstrap(ctx, taskManager, store, cfg.SeedDemo); err != nil {
		logger.Error(ctx, err, "Ошибка загрузки задач")
		os.Exit(1)
	}

	hub := realtime.NewHub()
	unsubscribe := taskManager.Subscribe(hub.Broadcast)
	defer unsubscribe()

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           server.NewRouter(taskManager, hub),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		logger.Info(ctx, "HTTP сервер запущен", "addr", cfg.HTTPAddr, "driver", cfg.DB.Driver)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error(ctx, err, "Ошибка HTTP сервера")
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info(ctx, "Остановка сервера...")

	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	hub.Close()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error(ctx, err, "Ошибка при остановке сервера")
	}
	logger.Info(ctx, "Сервер остановлен")
}
