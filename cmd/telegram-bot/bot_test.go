package main

import (
	"errors"
	"strings"
	"testing"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api"

	"lookate/internal/manager"
)

type fakeSender struct {
	sent []tgbotapi.MessageConfig
	err  error
}

func (f *fakeSender) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	if msg, ok := c.(tgbotapi.MessageConfig); ok {
		f.sent = append(f.sent, msg)
	}
	return tgbotapi.Message{}, f.err
}

func (f *fakeSender) last(t *testing.T) string {
	t.Helper()
	if len(f.sent) == 0 {
		t.Fatal("Бот ничего не отправил")
	}
	return f.sent[len(f.sent)-1].Text
}

func textMessage(text string) *tgbotapi.Message {
	msg := &tgbotapi.Message{
		Text: text,
		Chat: &tgbotapi.Chat{ID: 42},
		From: &tgbotapi.User{UserName: "tester"},
	}
	if strings.HasPrefix(text, "/") {
		cmd := strings.SplitN(text, " ", 2)[0]
		msg.Entities = &[]tgbotapi.MessageEntity{{Type: "bot_command", Offset: 0, Length: len(cmd)}}
	}
	return msg
}

func newTestBot(tasks ...manager.Task) (*Bot, *fakeSender, *manager.TaskManager) {
	tm := manager.NewTaskManager()
	tm.Restore(tasks)
	fs := &fakeSender{}
	return NewBot(fs, tm), fs, tm
}

func TestAddCommand(t *testing.T) {
	bot, fs, tm := newTestBot()

	bot.handleMessage(textMessage("/add Купить молоко"))

	tasks := tm.Tasks()
	if len(tasks) != 1 || tasks[0].Title != "Купить молоко" {
		t.Fatalf("Неверный список: %+v", tasks)
	}
	if !strings.Contains(fs.last(t), "Задача добавлена") {
		t.Errorf("Неверный ответ: %s", fs.last(t))
	}
	if fs.sent[0].ChatID != 42 || fs.sent[0].ParseMode != "Markdown" {
		t.Errorf("Неверные параметры сообщения: %+v", fs.sent[0])
	}
}

func TestAddWithoutArguments(t *testing.T) {
	bot, fs, tm := newTestBot()

	bot.handleMessage(textMessage("/add"))

	if len(tm.Tasks()) != 0 {
		t.Error("Задача не должна добавляться")
	}
	if !strings.Contains(fs.last(t), "Укажите задачу") {
		t.Errorf("Неверная подсказка: %s", fs.last(t))
	}
}

func TestPlainTextBecomesTask(t *testing.T) {
	bot, fs, tm := newTestBot()

	bot.handleMessage(textMessage("Позвонить маме"))
	bot.handleMessage(textMessage("   "))

	if len(tm.Tasks()) != 1 {
		t.Errorf("Ожидалась 1 задача, получено %d", len(tm.Tasks()))
	}
	if len(fs.sent) != 1 {
		t.Errorf("Пустое сообщение не должно вызывать ответ, отправлено %d", len(fs.sent))
	}
}

func TestDoneCommandToggles(t *testing.T) {
	bot, fs, tm := newTestBot(manager.Task{ID: 1, Title: "A"}, manager.Task{ID: 2, Title: "B", Completed: true})

	bot.handleMessage(textMessage("/done 1"))
	if task, _ := tm.GetTask(1); !task.Completed {
		t.Error("Задача 1 должна стать выполненной")
	}
	if !strings.Contains(fs.last(t), "отмечена выполненной") {
		t.Errorf("Неверный ответ: %s", fs.last(t))
	}

	bot.handleMessage(textMessage("/done 2"))
	if !strings.Contains(fs.last(t), "снова в работе") {
		t.Errorf("Неверный ответ: %s", fs.last(t))
	}

	before := tm.Snapshot().Version
	bot.handleMessage(textMessage("/done 99"))
	if tm.Snapshot().Version != before {
		t.Error("Неизвестный id не должен менять список")
	}
	if !strings.Contains(fs.last(t), "не найдена") {
		t.Errorf("Неверный ответ: %s", fs.last(t))
	}

	bot.handleMessage(textMessage("/done abc"))
	if !strings.Contains(fs.last(t), "должен быть числом") {
		t.Errorf("Неверный ответ: %s", fs.last(t))
	}
}

func TestListAndProgress(t *testing.T) {
	bot, fs, _ := newTestBot(manager.DemoTasks()...)

	bot.handleMessage(textMessage("/list"))
	list := fs.last(t)
	if !strings.Contains(list, "1: Buy groceries at Whole Foods") || !strings.Contains(list, "📍 Central Park") {
		t.Errorf("Неверный список: %s", list)
	}
	if !strings.Contains(list, "Выполнено 1 из 4 (25%)") {
		t.Errorf("Нет прогресса в списке: %s", list)
	}

	bot.handleMessage(textMessage("/progress"))
	if fs.last(t) != "📊 Выполнено 1 из 4 (25%)" {
		t.Errorf("Неверный прогресс: %s", fs.last(t))
	}
}

func TestEmptyListAndUnknownCommand(t *testing.T) {
	bot, fs, _ := newTestBot()

	bot.handleMessage(textMessage("/list"))
	if !strings.Contains(fs.last(t), "Список задач пуст") {
		t.Errorf("Неверный ответ: %s", fs.last(t))
	}

	bot.handleMessage(textMessage("/delete 1"))
	if !strings.Contains(fs.last(t), "Неизвестная команда") {
		t.Errorf("Неверный ответ: %s", fs.last(t))
	}
}

func TestSendErrorIsLogged(t *testing.T) {
	bot, fs, tm := newTestBot()
	fs.err = errors.New("network down")

	bot.handleMessage(textMessage("/add A"))

	if len(tm.Tasks()) != 1 {
		t.Error("Ошибка отправки не должна отменять добавление")
	}
}

func TestEscapeMarkdown(t *testing.T) {
	if got := escapeMarkdown("a_b *c* [d] `e`"); got != "a\\_b \\*c\\* \\[d] \\`e\\`" {
		t.Errorf("escapeMarkdown = %q", got)
	}
}
