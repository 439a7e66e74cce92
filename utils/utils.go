package utils

import (
	"context"
	"log/slog"
)

// Loge logs e at error level along with any extra key/value pairs. A nil error
// is ignored so calls can wrap a result directly.
func Loge(e error, args ...any) {
	logAt(slog.LevelError, e, args)
}

func Logwe(e error, args ...any) {
	logAt(slog.LevelWarn, e, args)
}

func Logde(e error, args ...any) {
	logAt(slog.LevelDebug, e, args)
}

func logAt(level slog.Level, e error, args []any) {
	if e == nil {
		return
	}
	slog.Default().Log(context.Background(), level, "", append([]any{"error", e}, args...)...)
}
