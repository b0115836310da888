package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/pterm/pterm"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/tosih/mrdf-tool/pkg/config"
)

// Logger writes structured records to the terminal and, when configured, as
// JSON lines to a rotating log file.
type Logger struct {
	console *pterm.Logger
	file    *pterm.Logger
	rotator *lumberjack.Logger
}

// ParseLevel maps a configuration level name to a pterm level
func ParseLevel(s string) (pterm.LogLevel, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "trace":
		return pterm.LogLevelTrace, nil
	case "debug":
		return pterm.LogLevelDebug, nil
	case "", "info":
		return pterm.LogLevelInfo, nil
	case "warn", "warning":
		return pterm.LogLevelWarn, nil
	case "error":
		return pterm.LogLevelError, nil
	case "fatal":
		return pterm.LogLevelFatal, nil
	}
	return pterm.LogLevelInfo, fmt.Errorf("unknown log level %q", s)
}

// Setup builds a Logger from the logs section of the configuration. Console
// records go to w, typically stderr.
func Setup(cfg config.LogConfig, w io.Writer) (*Logger, error) {
	level, err := ParseLevel(cfg.Level)
	if err != nil {
		return nil, err
	}
	l := &Logger{
		console: pterm.DefaultLogger.WithLevel(level).WithWriter(w),
	}
	if cfg.File == "" {
		return l, nil
	}

	if err := os.MkdirAll(filepath.Dir(cfg.File), 0o755); err != nil {
		return nil, fmt.Errorf("create log dir: %w", err)
	}
	l.rotator = &lumberjack.Logger{
		Filename:   cfg.File,
		MaxSize:    cfg.MaxSizeMB,
		MaxAge:     cfg.MaxAgeDays,
		MaxBackups: cfg.MaxBackups,
		Compress:   cfg.Compress,
	}
	l.file = pterm.DefaultLogger.
		WithLevel(level).
		WithWriter(l.rotator).
		WithFormatter(pterm.LogFormatterJSON)
	return l, nil
}

// Discard returns a Logger that drops everything
func Discard() *Logger {
	return &Logger{console: pterm.DefaultLogger.WithLevel(pterm.LogLevelDisabled).WithWriter(io.Discard)}
}

// Close flushes and closes the log file, if any
func (l *Logger) Close() error {
	if l == nil || l.rotator == nil {
		return nil
	}
	return l.rotator.Close()
}

func (l *Logger) emit(fn func(*pterm.Logger, string, []pterm.LoggerArgument), msg string, kv []any) {
	if l == nil {
		return
	}
	fn(l.console, msg, l.console.Args(kv...))
	if l.file != nil {
		fn(l.file, msg, l.file.Args(kv...))
	}
}

// Debug logs msg with alternating key/value pairs
func (l *Logger) Debug(msg string, kv ...any) {
	l.emit(func(p *pterm.Logger, m string, a []pterm.LoggerArgument) { p.Debug(m, a) }, msg, kv)
}

func (l *Logger) Info(msg string, kv ...any) {
	l.emit(func(p *pterm.Logger, m string, a []pterm.LoggerArgument) { p.Info(m, a) }, msg, kv)
}

func (l *Logger) Warn(msg string, kv ...any) {
	l.emit(func(p *pterm.Logger, m string, a []pterm.LoggerArgument) { p.Warn(m, a) }, msg, kv)
}

func (l *Logger) Error(msg string, kv ...any) {
	l.emit(func(p *pterm.Logger, m string, a []pterm.LoggerArgument) { p.Error(m, a) }, msg, kv)
}
