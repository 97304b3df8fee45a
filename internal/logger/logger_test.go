package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"strings"
	"testing"
)

func TestLogger(t *testing.T) {
	// Перехватываем вывод
	var buf bytes.Buffer
	SetOutput(&buf)
	defer SetOutput(os.Stderr)

	ctx := context.Background()

	t.Run("Info", func(t *testing.T) {
		buf.Reset()
		Info(ctx, "Тестовое сообщение")
		if !strings.Contains(buf.String(), "[INFO] Тестовое сообщение") {
			t.Errorf("Неверный формат лога Info: %s", buf.String())
		}
	})

	t.Run("Error with error", func(t *testing.T) {
		buf.Reset()
		err := errors.New("тестовая ошибка")
		Error(ctx, err, "Дополнительное сообщение")
		if !strings.Contains(buf.String(), "[ERROR] Дополнительное сообщение: тестовая ошибка") {
			t.Errorf("Неверный формат лога Error: %s", buf.String())
		}
	})

	t.Run("Error without error", func(t *testing.T) {
		buf.Reset()
		Error(ctx, nil, "Сообщение без ошибки")
		if !strings.Contains(buf.String(), "[ERROR] Сообщение без ошибки") {
			t.Errorf("Неверный формат лога Error без ошибки: %s", buf.String())
		}
	})

	t.Run("Debug with level", func(t *testing.T) {
		buf.Reset()
		SetLevel(LevelDebug)
		defer SetLevel(LevelInfo)

		Debug(ctx, "Тестовое debug-сообщение")
		if !strings.Contains(buf.String(), "[DEBUG] Тестовое debug-сообщение") {
			t.Errorf("Неверный формат лога Debug: %s", buf.String())
		}
	})

	t.Run("Debug without level", func(t *testing.T) {
		buf.Reset()
		SetLevel(LevelInfo)

		Debug(ctx, "Это не должно логироваться")
		if buf.String() != "" {
			t.Errorf("Debug сообщение не должно логироваться при LevelInfo: %s", buf.String())
		}
	})

	t.Run("Warn filtered by error level", func(t *testing.T) {
		buf.Reset()
		SetLevel(LevelError)
		defer SetLevel(LevelInfo)

		Warn(ctx, "Предупреждение")
		if buf.String() != "" {
			t.Errorf("Warn не должен логироваться при LevelError: %s", buf.String())
		}
	})
}

func TestLoggerWithFields(t *testing.T) {
	var buf bytes.Buffer
	SetOutput(&buf)
	defer SetOutput(os.Stderr)

	ctx := context.Background()

	t.Run("Info with fields", func(t *testing.T) {
		buf.Reset()
		Info(ctx, "Сообщение с полями", "key1", "value1", "key2", 42)
		output := buf.String()
		if !strings.Contains(output, "[INFO] Сообщение с полями") ||
			!strings.Contains(output, "key1=value1") ||
			!strings.Contains(output, "key2=42") {
			t.Errorf("Неверный формат лога с полями: %s", output)
		}
	})

	t.Run("Request id from context", func(t *testing.T) {
		buf.Reset()
		Info(WithRequestID(ctx, "req-1"), "С request-id")
		if !strings.Contains(buf.String(), "request_id=req-1") {
			t.Errorf("request_id не попал в лог: %s", buf.String())
		}
	})

	t.Run("Odd number of fields", func(t *testing.T) {
		buf.Reset()
		Info(ctx, "Нечётные поля", "lonely")
		if !strings.Contains(buf.String(), "lonely=(MISSING)") {
			t.Errorf("Ожидалось поле-заглушка: %s", buf.String())
		}
	})
}

func TestJSONFormat(t *testing.T) {
	var buf bytes.Buffer
	SetOutput(&buf)
	SetFormat("json")
	defer func() {
		SetOutput(os.Stderr)
		SetFormat("text")
	}()

	Info(context.Background(), "json-сообщение", "task_id", 7)

	var rec map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &rec); err != nil {
		t.Fatalf("Вывод не является JSON: %v (%s)", err, buf.String())
	}
	if rec["message"] != "json-сообщение" || rec["level"] != "info" {
		t.Errorf("Неверные поля JSON: %v", rec)
	}
	if _, ok := rec["ts"]; !ok {
		t.Errorf("Нет поля ts: %v", rec)
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in      string
		want    Level
		wantErr bool
	}{
		{"debug", LevelDebug, false},
		{"INFO", LevelInfo, false},
		{"", LevelInfo, false},
		{"warning", LevelWarn, false},
		{"error", LevelError, false},
		{"verbose", LevelInfo, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseLevel(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseLevel(%q) ошибка = %v, ожидалась %v", tt.in, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParseLevel(%q) = %v, ожидалось %v", tt.in, got, tt.want)
			}
		})
	}
}
