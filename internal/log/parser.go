package log

import (
	"log/slog"
	"strings"
)

// ParseLogLevel maps a level name to a slog level, defaulting to info.
func ParseLogLevel(input string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(input)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
