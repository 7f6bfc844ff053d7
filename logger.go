package relay

import (
	"os"
	"strings"

	"github.com/charmbracelet/log"
)

// pkgLogger is the default logger used when no logger option is supplied.
// RELAY_LOG_LEVEL overrides the level (debug, info, warn, error).
var pkgLogger = newLogger()

func newLogger() *log.Logger {
	level := log.WarnLevel
	switch strings.ToLower(strings.TrimSpace(os.Getenv("RELAY_LOG_LEVEL"))) {
	case "debug":
		level = log.DebugLevel
	case "info":
		level = log.InfoLevel
	case "warn", "warning":
		level = log.WarnLevel
	case "error":
		level = log.ErrorLevel
	}

	return log.NewWithOptions(os.Stderr, log.Options{
		Level:           level,
		ReportTimestamp: true,
		Prefix:          "relay",
	})
}

func defaultLogger() *log.Logger {
	return pkgLogger
}
