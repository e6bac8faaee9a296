// Package logger builds the structured loggers used across effodio
package logger

import (
	"io"
	"os"
	"strings"

	"github.com/hashicorp/go-hclog"

	"github.com/su1ph3r/effodio/pkg/types"
)

// EnvLogLevel overrides the configured log level when set
const EnvLogLevel = "EFFODIO_LOG_LEVEL"

// NewLogger creates an hclog.Logger from the logger settings. Log lines go to
// stderr so rendered reports on stdout stay machine readable.
func NewLogger(cfg *types.Config, name string) hclog.Logger {
	return newLogger(cfg, name, os.Stderr)
}

func newLogger(cfg *types.Config, name string, out io.Writer) hclog.Logger {
	settings := types.DefaultConfig().Logger
	if cfg != nil {
		settings = cfg.Logger
	}
	return hclog.New(&hclog.LoggerOptions{
		Name:            name,
		DisableTime:     settings.DisableTime,
		JSONFormat:      settings.JSONFormat,
		IncludeLocation: settings.IncludeLocation,
		Output:          out,
		Level:           determineLogLevel(settings.Level),
	})
}

// determineLogLevel prefers the environment over the configuration and
// falls back to INFO
func determineLogLevel(configured string) hclog.Level {
	if env := os.Getenv(EnvLogLevel); env != "" {
		return parseLogLevel(strings.ToUpper(env))
	}
	return parseLogLevel(strings.ToUpper(configured))
}

func parseLogLevel(levelStr string) hclog.Level {
	switch levelStr {
	case "TRACE":
		return hclog.Trace
	case "DEBUG":
		return hclog.Debug
	case "", "INFO":
		return hclog.Info
	case "WARN", "WARNING":
		return hclog.Warn
	case "ERROR":
		return hclog.Error
	case "OFF":
		return hclog.Off
	default:
		hclog.New(&hclog.LoggerOptions{
			Level:       hclog.Warn,
			DisableTime: true,
			Output:      os.Stderr,
		}).Warn("unrecognized log level, defaulting to INFO", "level", levelStr)
		return hclog.Info
	}
}
