package logger

import (
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/shyjal/goplaces/internal/domain"
)

type Logger struct {
	SlogLogger *slog.Logger
}

// NewLogger builds a JSON slog logger. An empty file path logs to
// stdout, otherwise lines are appended to the given file.
func NewLogger(loggingFilePath, level string) *Logger {
	var w io.Writer = os.Stdout
	if loggingFilePath != "" {
		file, err := os.OpenFile(loggingFilePath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			panic(err)
		}
		w = file
	}

	logger := slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: parseLevel(level)}))

	return &Logger{SlogLogger: logger}
}

func parseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func (l Logger) Debug(msg string, args ...interface{}) {
	l.SlogLogger.Debug(msg, args...)
}

func (l Logger) Info(msg string, args ...interface{}) {
	l.SlogLogger.Info(msg, args...)
}

func (l Logger) Warn(msg string, args ...interface{}) {
	l.SlogLogger.Warn(msg, args...)
}

func (l Logger) Error(msg string, args ...interface{}) {
	l.SlogLogger.Error(msg, args...)
}

func (l Logger) With(args ...any) domain.LoggingRepository {
	return &Logger{
		SlogLogger: l.SlogLogger.With(args...),
	}
}
