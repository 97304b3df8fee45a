package main

import (
	"context"
	"errors"
	"os"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api"

	"lookate/internal/config"
	"lookate/internal/logger"
	"lookate/internal/manager"
	"lookate/internal/storage"
)

func (b *Bot) Start(api *tgbotapi.BotAPI) error {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60

	updates, err := api.GetUpdatesChan(u)
	if err != nil {
		return err
	}

	logger.Info(context.Background(), "Бот запущен и слушает сообщения...")

	// Сообщения обрабатываются по порядку
	for update := range updates {
		if update.Message == nil {
			continue
		}
		b.handleMessage(update.Message)
	}
	return nil
}

func main() {
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		logger.Error(ctx, err, "Ошибка загрузки конфигурации")
		os.Exit(1)
	}
	logger.SetLevel(cfg.LogLevel)
	logger.SetFormat(cfg.LogFormat)
	logger.Info(ctx, "Запуск Telegram-бота...")

	if cfg.Telegram.Token == "" {
		logger.Error(ctx, errors.New("TELEGRAM_TOKEN не задан"), "Ошибка конфигурации")
		os.Exit(1)
	}

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

	api, err := tgbotapi.NewBotAPI(cfg.Telegram.Token)
	if err != nil {
		logger.Error(ctx, err, "Ошибка создания бота")
		os.Exit(1)
	}
	api.Debug = cfg.Telegram.Debug
	logger.Info(ctx, "Бот авторизован", "username", api.Self.UserName)

	bot := NewBot(api, taskManager)
	if err := bot.Start(api); err != nil {
		logger.Error(ctx, err, "Ошибка получения updates")
		os.Exit(1)
	}
}
