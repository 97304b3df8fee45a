package main

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api"

	"lookate/internal/logger"
	"lookate/internal/manager"
)

// sender - часть tgbotapi.BotAPI, которой пользуется бот (подменяется в тестах)
type sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

type Bot struct {
	api         sender
	taskManager *manager.TaskManager
}

func NewBot(api sender, tm *manager.TaskManager) *Bot {
	return &Bot{api: api, taskManager: tm}
}

func (b *Bot) handleMessage(msg *tgbotapi.Message) {
	ctx := context.Background()

	user := ""
	if msg.From != nil {
		user = msg.From.UserName
	}
	logger.Info(ctx, "Получено сообщение", "user", user, "text", msg.Text)

	// Обрабатываем команды
	if msg.IsCommand() {
		b.handleCommand(msg)
		return
	}

	// Обычный текст добавляется как задача
	b.addTaskFromText(msg.Chat.ID, msg.Text)
}

func (b *Bot) handleCommand(msg *tgbotapi.Message) {
	switch msg.Command() {
	case "start":
		b.sendMessage(msg.Chat.ID, welcomeText)
	case "help":
		b.sendMessage(msg.Chat.ID, helpText)
	case "add":
		b.addTask(msg)
	case "list":
		b.listTasks(msg.Chat.ID)
	case "done", "toggle":
		b.toggleTask(msg)
	case "progress":
		b.sendProgress(msg.Chat.ID)
	default:
		b.sendMessage(msg.Chat.ID, "Неизвестная команда. Используйте /help для списка команд.")
	}
}

func (b *Bot) addTask(msg *tgbotapi.Message) {
	args := msg.CommandArguments()
	if strings.TrimSpace(args) == "" {
		b.sendMessage(msg.Chat.ID, "Укажите задачу после команды: /add Купить молоко")
		return
	}

	b.addTaskFromText(msg.Chat.ID, args)
}

func (b *Bot) addTaskFromText(chatID int64, text string) {
	task, ok := b.taskManager.AddTask(text)
	if !ok {
		// Пустое сообщение молча игнорируется, как и в самом списке
		return
	}

	response := fmt.Sprintf("✅ *Задача добавлена!*\n\nID: %d\nЗадача: %s", task.ID, escapeMarkdown(task.Title))
	b.sendMessage(chatID, response)
}

func (b *Bot) listTasks(chatID int64) {
	snap := b.taskManager.Snapshot()

	if len(snap.Tasks) == 0 {
		b.sendMessage(chatID, "📭 Список задач пуст")
		return
	}

	var response strings.Builder
	response.WriteString("📋 *Ваши задачи:*\n\n")

	for _, task := range snap.Tasks {
		status := "🟢"
		if task.Completed {
			status = "✅"
		}

		response.WriteString(fmt.Sprintf("%s %d: %s", status, task.ID, escapeMarkdown(task.Title)))
		if task.DueTime != "" {
			response.WriteString(" 🕒 " + escapeMarkdown(task.DueTime))
		}
		if task.Location != "" {
			response.WriteString(" 📍 " + escapeMarkdown(task.Location))
		}
		response.WriteString("\n")
	}

	response.WriteString("\n" + progressLine(snap.Progress))
	b.sendMessage(chatID, response.String())
}

func (b *Bot) toggleTask(msg *tgbotapi.Message) {
	args := strings.TrimSpace(msg.CommandArguments())
	if args == "" {
		b.sendMessage(msg.Chat.ID, "Укажите номер задачи: /done 1")
		return
	}

	taskID, err := strconv.ParseInt(args, 10, 64)
	if err != nil {
		b.sendMessage(msg.Chat.ID, "Номер задачи должен быть числом")
		return
	}

	b.taskManager.ToggleTask(taskID)

	task, ok := b.taskManager.GetTask(taskID)
	if !ok {
		b.sendMessage(msg.Chat.ID, fmt.Sprintf("Задача %d не найдена, ничего не изменилось", taskID))
		return
	}

	if task.Completed {
		b.sendMessage(msg.Chat.ID, fmt.Sprintf("✅ Задача %d отмечена выполненной!", taskID))
	} else {
		b.sendMessage(msg.Chat.ID, fmt.Sprintf("↩️ Задача %d снова в работе", taskID))
	}
}

func (b *Bot) sendProgress(chatID int64) {
	b.sendMessage(chatID, progressLine(b.taskManager.Progress()))
}

func progressLine(p manager.Progress) string {
	return fmt.Sprintf("📊 Выполнено %d из %d (%.0f%%)", p.CompletedCount, p.TotalCount, p.Percentage)
}

func (b *Bot) sendMessage(chatID int64, text string) {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = "Markdown"

	if _, err := b.api.Send(msg); err != nil {
		logger.Error(context.Background(), err, "Ошибка отправки сообщения", "chatID", chatID)
	}
}

var markdownEscaper = strings.NewReplacer("_", "\\_", "*", "\\*", "`", "\\`", "[", "\\[")

func escapeMarkdown(s string) string {
	return markdownEscaper.Replace(s)
}

const welcomeText = `🎯 *Добро пожаловать в Lookate Tasks!*

*Доступные команды:*
/add [задача] - Добавить задачу
/list - Показать все задачи
/done [номер] - Переключить выполнение задачи
/progress - Прогресс за сегодня
/help - Помощь

Любое сообщение без команды тоже станет задачей.`

const helpText = `🤖 *Помощь по командам*

*/start* - Начать работу с ботом
*/add [задача]* - Добавить новую задачу
*/list* - Показать все задачи
*/done [номер]* - Отметить задачу выполненной или вернуть в работу
*/progress* - Сколько задач выполнено
*/help* - Показать эту справку

*Примеры использования:*
/add Купить молоко
/done 1
/list`
