package cfg

import (
	"io"
	"log/slog"

	charmlog "github.com/charmbracelet/log"
)

// SetupLogger routes slog through a charm logger and makes it the default.
func SetupLogger(w io.Writer, debug bool) *slog.Logger {
	level := charmlog.InfoLevel
	if debug {
		level = charmlog.DebugLevel
	}

	handler := charmlog.NewWithOptions(w, charmlog.Options{
		ReportTimestamp: true,
		Level:           level,
	})

	logger := slog.New(handler)
	slog.SetDefault(logger)
	return logger
}
