// Package logging provides structured logging with slog for the input
// method engine.
//
// Features:
//   - JSON and text output formats
//   - Log levels adjustable at runtime
//   - Per-component child loggers
//   - Redaction of typed text below debug level
//   - Size and daily log rotation with gzip
package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"slices"
	"strings"
	"sync"

	"goanthy/internal/config"
)

// Level represents a logging level.
type Level = slog.Level

// Log levels.
const (
	LevelDebug = slog.LevelDebug
	LevelInfo  = slog.LevelInfo
	LevelWarn  = slog.LevelWarn
	LevelError = slog.LevelError
)

// Format represents the output format for logs.
type Format int

const (
	// FormatText outputs human-readable text logs.
	FormatText Format = iota
	// FormatJSON outputs JSON-structured logs.
	FormatJSON
)

// Redacted replaces user text in log records.
const Redacted = "[REDACTED]"

// UserTextKeys are attribute keys whose values are text the user typed.
// They are logged verbatim only at debug level.
var UserTextKeys = []string{"commit", "preedit", "surrounding", "selection"}

// Config holds the logging configuration.
type Config struct {
	// Level is the minimum log level to output.
	Level Level

	Format Format

	// Output is "stdout", "stderr", "file", or "both".
	Output string

	// FilePath is the log file when Output includes "file".
	FilePath string

	// MaxSize is the size in megabytes at which the file is rotated.
	MaxSize int64

	// MaxAge is the maximum age of rotated files in days.
	MaxAge int

	// MaxBackups is the maximum number of rotated files to keep.
	MaxBackups int

	// Compress gzips rotated files.
	Compress bool

	AddSource bool

	// RedactPatterns are regular expressions whose matches in string
	// values are replaced at every level.
	RedactPatterns []string

	// Component is attached to every record.
	Component string

	// Writer overrides Output when set.
	Writer io.Writer
}

// DefaultConfig returns a default logging configuration.
func DefaultConfig() *Config {
	return &Config{
		Level:      LevelInfo,
		Format:     FormatText,
		Output:     "stderr",
		FilePath:   defaultLogPath(),
		MaxSize:    10,
		MaxAge:     30,
		MaxBackups: 3,
		Component:  config.AppName,
	}
}

// FromSettings converts the preference file's logging section.
func FromSettings(s config.LoggingConfig) (*Config, error) {
	level, err := ParseLevel(s.Level)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	cfg.Level = level
	if strings.EqualFold(s.Format, "json") {
		cfg.Format = FormatJSON
	}
	if s.Output != "" {
		cfg.Output = s.Output
	}
	if s.FilePath != "" {
		cfg.FilePath = s.FilePath
	}
	if s.MaxSizeMB > 0 {
		cfg.MaxSize = int64(s.MaxSizeMB)
	}
	cfg.MaxBackups = s.MaxBackups
	cfg.MaxAge = s.MaxAgeDays
	cfg.Compress = s.Compress
	return cfg, nil
}

func defaultLogPath() string {
	stateHome := os.Getenv("XDG_STATE_HOME")
	if stateHome == "" {
		homeDir, _ := os.UserHomeDir()
		stateHome = filepath.Join(homeDir, ".local", "state")
	}
	return filepath.Join(stateHome, config.AppName, config.AppName+".log")
}

// Logger wraps slog.Logger with a runtime level and an optional rotator.
type Logger struct {
	*slog.Logger
	config  *Config
	level   *slog.LevelVar
	rotator *FileRotator
	mu      *sync.Mutex
}

var (
	defaultLogger *Logger
	defaultMu     sync.Mutex
)

// Default returns the default global logger.
func Default() *Logger {
	defaultMu.Lock()
	defer defaultMu.Unlock()
	if defaultLogger == nil {
		l, err := New(DefaultConfig())
		if err != nil {
			l = &Logger{
				Logger: slog.Default(),
				config: DefaultConfig(),
				level:  new(slog.LevelVar),
				mu:     new(sync.Mutex),
			}
		}
		defaultLogger = l
	}
	return defaultLogger
}

// SetDefault sets the default global logger.
func SetDefault(l *Logger) {
	defaultMu.Lock()
	defaultLogger = l
	defaultMu.Unlock()
	slog.SetDefault(l.Logger)
}

// New creates a new Logger with the given configuration.
func New(cfg *Config) (*Logger, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}

	l := &Logger{
		config: cfg,
		level:  new(slog.LevelVar),
		mu:     new(sync.Mutex),
	}
	l.level.Set(cfg.Level)

	w, err := l.setupWriter()
	if err != nil {
		return nil, fmt.Errorf("setup writers: %w", err)
	}

	patterns := make([]*regexp.Regexp, 0, len(cfg.RedactPatterns))
	for _, p := range cfg.RedactPatterns {
		re, err := regexp.Compile(p)
		if err != nil {
			return nil, fmt.Errorf("redact pattern %q: %w", p, err)
		}
		patterns = append(patterns, re)
	}

	opts := &slog.HandlerOptions{
		Level:       l.level,
		AddSource:   cfg.AddSource,
		ReplaceAttr: l.redactor(patterns),
	}

	var handler slog.Handler
	switch cfg.Format {
	case FormatJSON:
		handler = slog.NewJSONHandler(w, opts)
	default:
		handler = slog.NewTextHandler(w, opts)
	}

	if cfg.Component != "" {
		handler = handler.WithAttrs([]slog.Attr{
			slog.String("component", cfg.Component),
		})
	}

	l.Logger = slog.New(handler)
	return l, nil
}

func (l *Logger) setupWriter() (io.Writer, error) {
	if l.config.Writer != nil {
		return l.config.Writer, nil
	}
	switch strings.ToLower(l.config.Output) {
	case "stdout":
		return os.Stdout, nil
	case "file", "both":
		rotator, err := NewFileRotator(l.config)
		if err != nil {
			return nil, err
		}
		l.rotator = rotator
		if strings.EqualFold(l.config.Output, "both") {
			return io.MultiWriter(os.Stderr, rotator), nil
		}
		return rotator, nil
	default:
		return os.Stderr, nil
	}
}

func (l *Logger) redactor(patterns []*regexp.Regexp) func([]string, slog.Attr) slog.Attr {
	return func(_ []string, a slog.Attr) slog.Attr {
		if l.level.Level() > LevelDebug && slices.Contains(UserTextKeys, a.Key) {
			a.Value = slog.StringValue(Redacted)
			return a
		}
		if len(patterns) > 0 && a.Value.Kind() == slog.KindString {
			s := a.Value.String()
			for _, re := range patterns {
				s = re.ReplaceAllString(s, Redacted)
			}
			a.Value = slog.StringValue(s)
		}
		return a
	}
}

// SetLevel changes the minimum level of l and every logger derived from it.
func (l *Logger) SetLevel(level Level) {
	l.level.Set(level)
}

// ApplyChanges applies a reloaded logging level to l. Other logging
// settings take effect on restart.
func (l *Logger) ApplyChanges(changes []config.Change) error {
	for _, ch := range changes {
		if ch.Section != "logging" || ch.Key != "level" {
			continue
		}
		name, _ := ch.Value.(string)
		level, err := ParseLevel(name)
		if err != nil {
			return err
		}
		if level != l.Level() {
			l.SetLevel(level)
			l.Info("log level changed", "to", LevelString(level))
		}
	}
	return nil
}

// Level returns the current minimum level.
func (l *Logger) Level() Level {
	return l.level.Level()
}

// WithComponent returns a child logger tagged with a component name.
func (l *Logger) WithComponent(name string) *Logger {
	return l.derive(l.Logger.With(slog.String("component", name)))
}

// With returns a child logger with extra attributes.
func (l *Logger) With(args ...any) *Logger {
	return l.derive(l.Logger.With(args...))
}

func (l *Logger) derive(s *slog.Logger) *Logger {
	return &Logger{
		Logger:  s,
		config:  l.config,
		level:   l.level,
		rotator: l.rotator,
		mu:      l.mu,
	}
}

// Close closes any open log files.
func (l *Logger) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.rotator != nil {
		return l.rotator.Close()
	}
	return nil
}

// Sync flushes any buffered log entries.
func (l *Logger) Sync() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.rotator != nil {
		return l.rotator.Sync()
	}
	return nil
}

// ParseLevel parses a string into a log level.
func ParseLevel(s string) (Level, error) {
	switch strings.ToLower(s) {
	case "debug":
		return LevelDebug, nil
	case "info":
		return LevelInfo, nil
	case "warn", "warning":
		return LevelWarn, nil
	case "error":
		return LevelError, nil
	default:
		return LevelInfo, fmt.Errorf("unknown log level: %s", s)
	}
}

// LevelString returns the lowercase name of level.
func LevelString(level Level) string {
	switch {
	case level <= LevelDebug:
		return "debug"
	case level <= LevelInfo:
		return "info"
	case level <= LevelWarn:
		return "warn"
	default:
		return "error"
	}
}
