package agent

import (
	"log/slog"
	"os"
	"strings"
)

// NewLogger parses PROBING_LOG into an slog logger. The filter
// expression is "<level>" or "<level>,<component>=<level>,..."; only
// the leading level sets the handler's threshold. Component sub-filters
// after the first comma are accepted and ignored: they set no
// per-component threshold and add no attribute.
func NewLogger(filter string) *slog.Logger {
	level, _ := parseLogFilter(filter)
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})
	return slog.New(handler)
}

func parseLogFilter(filter string) (slog.Level, string) {
	if filter == "" {
		return slog.LevelInfo, ""
	}
	parts := strings.SplitN(filter, ",", 2)
	level := parseLevel(parts[0])
	rest := ""
	if len(parts) == 2 {
		rest = parts[1]
	}
	return level, rest
}

func parseLevel(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
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
