// Package logger provides structured logging for the moviedash tools.
package logger

import (
	"io"
	"os"
	"strings"

	charmlog "github.com/charmbracelet/log"
)

type Config struct {
	Level      string
	JSON       bool
	Output     io.Writer
	TimeFormat string
}

func DefaultConfig() Config {
	return Config{
		Level:      "info",
		Output:     os.Stderr,
		TimeFormat: "15:04:05",
	}
}

var defaultLogger = New(DefaultConfig())

// ParseLevel maps a config level name to a charm level; unknown names are info.
func ParseLevel(level string) charmlog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return charmlog.DebugLevel
	case "warn", "warning":
		return charmlog.WarnLevel
	case "error":
		return charmlog.ErrorLevel
	default:
		return charmlog.InfoLevel
	}
}

func New(cfg Config) *charmlog.Logger {
	out := cfg.Output
	if out == nil {
		out = os.Stderr
	}
	l := charmlog.NewWithOptions(out, charmlog.Options{
		ReportTimestamp: true,
		TimeFormat:      cfg.TimeFormat,
		Level:           ParseLevel(cfg.Level),
	})
	if cfg.JSON {
		l.SetFormatter(charmlog.JSONFormatter)
	}
	return l
}

// Init replaces the package logger.
func Init(cfg Config) {
	defaultLogger = New(cfg)
}

func Default() *charmlog.Logger { return defaultLogger }

func Debug(msg string, keyvals ...any) { defaultLogger.Debug(msg, keyvals...) }

func Info(msg string, keyvals ...any) { defaultLogger.Info(msg, keyvals...) }

func Warn(msg string, keyvals ...any) { defaultLogger.Warn(msg, keyvals...) }

func Error(msg string, keyvals ...any) { defaultLogger.Error(msg, keyvals...) }

// Fatal logs at error level and exits with status 1.
func Fatal(msg string, keyvals ...any) { defaultLogger.Fatal(msg, keyvals...) }

func With(keyvals ...any) *charmlog.Logger { return defaultLogger.With(keyvals...) }
