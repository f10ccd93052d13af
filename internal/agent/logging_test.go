package agent

import (
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseLogFilterLevels(t *testing.T) {
	cases := map[string]slog.Level{
		"":        slog.LevelInfo,
		"debug":   slog.LevelDebug,
		"warn":    slog.LevelWarn,
		"warning": slog.LevelWarn,
		"error":   slog.LevelError,
		"info":    slog.LevelInfo,
		"bogus":   slog.LevelInfo,
	}
	for filter, want := range cases {
		level, _ := parseLogFilter(filter)
		require.Equal(t, want, level, "filter %q", filter)
	}
}

func TestParseLogFilterKeepsComponentSuffix(t *testing.T) {
	level, rest := parseLogFilter("debug,sampler=warn")
	require.Equal(t, slog.LevelDebug, level)
	require.Equal(t, "sampler=warn", rest)
}

func TestNewLoggerNeverNil(t *testing.T) {
	require.NotNil(t, NewLogger("debug"))
	require.NotNil(t, NewLogger(""))
}
