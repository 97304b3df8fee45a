package logger

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
)

type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

type ctxKey struct{}

var std = newLogrus()

func newLogrus() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(os.Stderr)
	l.SetFormatter(&lineFormatter{})
	l.SetLevel(logrus.InfoLevel)
	return l
}

// ParseLevel разбирает значение LOG_LEVEL
func ParseLevel(s string) (Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return LevelDebug, nil
	case "info", "":
		return LevelInfo, nil
	case "warn", "warning":
		return LevelWarn, nil
	case "error":
		return LevelError, nil
	}
	return LevelInfo, fmt.Errorf("неизвестный уровень логирования: %q", s)
}

func SetLevel(level Level) {
	switch level {
	case LevelDebug:
		std.SetLevel(logrus.DebugLevel)
	case LevelWarn:
		std.SetLevel(logrus.WarnLevel)
	case LevelError:
		std.SetLevel(logrus.ErrorLevel)
	default:
		std.SetLevel(logrus.InfoLevel)
	}
}

func SetOutput(w io.Writer) {
	std.SetOutput(w)
}

// SetFormat переключает вывод между text и json
func SetFormat(format string) {
	if format == "json" {
		std.SetFormatter(&logrus.JSONFormatter{
			TimestampFormat: time.RFC3339Nano,
			FieldMap: logrus.FieldMap{
				logrus.FieldKeyTime:  "ts",
				logrus.FieldKeyLevel: "level",
				logrus.FieldKeyMsg:   "message",
			},
		})
		return
	}
	std.SetFormatter(&lineFormatter{})
}

// WithRequestID кладёт request-id в контекст, он попадёт во все записи лога
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, ctxKey{}, requestID)
}

func RequestID(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	id, _ := ctx.Value(ctxKey{}).(string)
	return id
}

func Debug(ctx context.Context, msg string, kv ...interface{}) {
	entry(ctx, kv).Debug(msg)
}

func Info(ctx context.Context, msg string, kv ...interface{}) {
	entry(ctx, kv).Info(msg)
}

func Warn(ctx context.Context, msg string, kv ...interface{}) {
	entry(ctx, kv).Warn(msg)
}

func Error(ctx context.Context, err error, msg string, kv ...interface{}) {
	if err != nil {
		msg = msg + ": " + err.Error()
	}
	entry(ctx, kv).Error(msg)
}

func entry(ctx context.Context, kv []interface{}) *logrus.Entry {
	fields := logrus.Fields{}
	for i := 0; i < len(kv); i += 2 {
		key := fmt.Sprint(kv[i])
		if i+1 < len(kv) {
			fields[key] = kv[i+1]
		} else {
			fields[key] = "(MISSING)"
		}
	}
	if id := RequestID(ctx); id != "" {
		fields["request_id"] = id
	}
	return std.WithFields(fields)
}

// lineFormatter пишет строки вида "2006/01/02 15:04:05 [INFO] сообщение key=value"
type lineFormatter struct{}

func (f *lineFormatter) Format(e *logrus.Entry) ([]byte, error) {
	var b bytes.Buffer
	b.WriteString(e.Time.Format("2006/01/02 15:04:05"))
	b.WriteString(" [")
	b.WriteString(levelTag(e.Level))
	b.WriteString("] ")
	b.WriteString(e.Message)

	keys := make([]string, 0, len(e.Data))
	for k := range e.Data {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Fprintf(&b, " %s=%v", k, e.Data[k])
	}
	b.WriteByte('\n')
	return b.Bytes(), nil
}

func levelTag(l logrus.Level) string {
	switch l {
	case logrus.DebugLevel, logrus.TraceLevel:
		return "DEBUG"
	case logrus.InfoLevel:
		return "INFO"
	case logrus.WarnLevel:
		return "WARN"
	default:
		return "ERROR"
	}
}
