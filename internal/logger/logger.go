// Package logger wraps charmbracelet/log with the process-wide
// configuration waymark's CLI needs: a level, an optional mirrored log
// file, and a fixed prefix.
package logger

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"

	charmlog "github.com/charmbracelet/log"
)

// LogLevel is the severity threshold for log output.
type LogLevel = charmlog.Level

const (
	DebugLevel = charmlog.DebugLevel
	InfoLevel  = charmlog.InfoLevel
	WarnLevel  = charmlog.WarnLevel
	ErrorLevel = charmlog.ErrorLevel
	FatalLevel = charmlog.FatalLevel
)

// ParseLevel parses a string into a LogLevel, defaulting to InfoLevel for
// an unrecognized value.
func ParseLevel(s string) (LogLevel, error) {
	switch strings.ToLower(s) {
	case "debug":
		return DebugLevel, nil
	case "info":
		return InfoLevel, nil
	case "warn", "warning":
		return WarnLevel, nil
	case "error":
		return ErrorLevel, nil
	case "fatal":
		return FatalLevel, nil
	default:
		return InfoLevel, fmt.Errorf("invalid log level: %s", s)
	}
}

// Config configures the global logger. CurrentDir and LogFile combine to
// produce the mirrored log file path: when LogFile is relative, it is
// resolved against CurrentDir.
type Config struct {
	Level      LogLevel
	Output     io.Writer
	TimeFormat string
	Prefix     string
	LogFile    string
	CurrentDir string
	Version    string
}

var (
	mu        sync.Mutex
	global    *charmlog.Logger
	logFile   *os.File
	defaultLG = charmlog.NewWithOptions(os.Stderr, charmlog.Options{
		Level:           charmlog.InfoLevel,
		ReportTimestamp: true,
		Prefix:          "waymark",
	})
)

// Init replaces the global logger per cfg. If cfg.LogFile is set, output is
// mirrored to that file in addition to cfg.Output.
func Init(cfg *Config) error {
	mu.Lock()
	defer mu.Unlock()

	output := cfg.Output
	if output == nil {
		output = os.Stderr
	}

	if cfg.LogFile != "" {
		path := cfg.LogFile
		if !filepath.IsAbs(path) && cfg.CurrentDir != "" {
			path = filepath.Join(cfg.CurrentDir, path)
		}
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return fmt.Errorf("creating log directory: %w", err)
		}
		f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return fmt.Errorf("opening log file: %w", err)
		}
		if logFile != nil {
			logFile.Close()
		}
		logFile = f
		output = io.MultiWriter(output, f)
	}

	timeFormat := cfg.TimeFormat
	if timeFormat == "" {
		timeFormat = "15:04:05"
	}
	prefix := cfg.Prefix
	if prefix == "" {
		prefix = "waymark"
	}

	l := charmlog.NewWithOptions(output, charmlog.Options{
		Level:           cfg.Level,
		ReportTimestamp: true,
		TimeFormat:      timeFormat,
		Prefix:          prefix,
	})
	if cfg.Version != "" {
		l = l.With("version", cfg.Version)
	}
	global = l
	return nil
}

// Get returns the active logger, falling back to a stderr default if Init
// has not been called.
func Get() *charmlog.Logger {
	mu.Lock()
	defer mu.Unlock()
	if global != nil {
		return global
	}
	return defaultLG
}

// SetGlobal installs l as the active logger directly, bypassing Init. Used
// by tests to capture output.
func SetGlobal(l *charmlog.Logger) {
	mu.Lock()
	defer mu.Unlock()
	global = l
}

func Debug(msg string, keyvals ...interface{}) { Get().Debug(msg, keyvals...) }
func Info(msg string, keyvals ...interface{})  { Get().Info(msg, keyvals...) }
func Warn(msg string, keyvals ...interface{})  { Get().Warn(msg, keyvals...) }
func Error(msg string, keyvals ...interface{}) { Get().Error(msg, keyvals...) }
func Fatal(msg string, keyvals ...interface{}) { Get().Fatal(msg, keyvals...) }

// Close closes the mirrored log file, if one was opened by Init.
func Close() error {
	mu.Lock()
	defer mu.Unlock()
	if logFile == nil {
		return nil
	}
	err := logFile.Close()
	logFile = nil
	return err
}
