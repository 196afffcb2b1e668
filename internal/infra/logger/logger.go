package logger

import (
	"log/slog"
	"os"
)

// New настраивает общий логгер: JSON в stdout, debug-уровень в dev-окружении.
func New(env string) *slog.Logger {
	level := slog.LevelInfo
	if env == "dev" {
		level = slog.LevelDebug
	}
	opts := &slog.HandlerOptions{Level: level}
	if env == "dev" {
		// в dev удобнее читать текстовый вывод
		return slog.New(slog.NewTextHandler(os.Stdout, opts))
	}
	return slog.New(slog.NewJSONHandler(os.Stdout, opts))
}
