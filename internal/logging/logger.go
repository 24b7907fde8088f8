package logging

import (
	"log/slog"
	"os"
	"strings"
)

// Setup installs the process-wide JSON logger on stdout. LOG_LEVEL=debug
// lowers the threshold; anything else means info.
func Setup() {
	level := slog.LevelInfo
	if strings.EqualFold(os.Getenv("LOG_LEVEL"), "debug") {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: level,
	})))
}
