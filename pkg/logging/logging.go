// Package logging builds subsystem loggers sharing one output, optionally
// mirrored to a rotated log file.
package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/decred/slog"
	"github.com/jrick/logrotate/rotator"
)

const (
	defaultMaxLogFiles  = 3
	defaultMaxLogSizeKB = 10 * 1024
)

// LogConfig configures a LogBackend.
type LogConfig struct {
	// LogFile is the path of the rotated log file. Empty disables file output.
	LogFile string
	// DebugLevel is either a single level ("info") or a default level
	// followed by per-subsystem overrides ("info,PRTY=debug,SRVR=trace").
	DebugLevel string
	// MaxLogFiles is the number of rolled files kept next to LogFile.
	MaxLogFiles int
	// MaxLogSizeKB is the size at which the log file is rolled.
	MaxLogSizeKB int64
	// NoStdout keeps logs off the standard output, for terminal UIs.
	NoStdout bool
}

// LogBackend hands out subsystem loggers. The zero value produces disabled loggers.
type LogBackend struct {
	backend      *slog.Backend
	rotator      *rotator.Rotator
	defaultLevel slog.Level
	levels       map[string]slog.Level

	mu      sync.Mutex
	loggers map[string]slog.Logger
}

// NewLogBackend creates the backend described by cfg.
func NewLogBackend(cfg LogConfig) (*LogBackend, error) {
	defaultLevel, levels, err := ParseDebugLevel(cfg.DebugLevel)
	if err != nil {
		return nil, err
	}

	lb := &LogBackend{
		defaultLevel: defaultLevel,
		levels:       levels,
		loggers:      make(map[string]slog.Logger),
	}

	var writers []io.Writer
	if !cfg.NoStdout {
		writers = append(writers, os.Stdout)
	}
	if cfg.LogFile != "" {
		if err := os.MkdirAll(filepath.Dir(cfg.LogFile), 0700); err != nil {
			return nil, fmt.Errorf("failed to create log directory: %w", err)
		}
		maxFiles := cfg.MaxLogFiles
		if maxFiles <= 0 {
			maxFiles = defaultMaxLogFiles
		}
		maxSize := cfg.MaxLogSizeKB
		if maxSize <= 0 {
			maxSize = defaultMaxLogSizeKB
		}
		r, err := rotator.New(cfg.LogFile, maxSize, false, maxFiles)
		if err != nil {
			return nil, fmt.Errorf("failed to create file rotator: %w", err)
		}
		lb.rotator = r
		writers = append(writers, r)
	}

	switch len(writers) {
	case 0:
		lb.backend = slog.NewBackend(io.Discard)
	case 1:
		lb.backend = slog.NewBackend(writers[0])
	default:
		lb.backend = slog.NewBackend(io.MultiWriter(writers...))
	}
	return lb, nil
}

// Logger returns the logger for a subsystem, creating it on first use.
func (lb *LogBackend) Logger(subsystem string) slog.Logger {
	if lb == nil || lb.backend == nil {
		return slog.Disabled
	}

	lb.mu.Lock()
	defer lb.mu.Unlock()
	if l, ok := lb.loggers[subsystem]; ok {
		return l
	}
	l := lb.backend.Logger(subsystem)
	level, ok := lb.levels[subsystem]
	if !ok {
		level = lb.defaultLevel
	}
	l.SetLevel(level)
	lb.loggers[subsystem] = l
	return l
}

// Close flushes and closes the log file, if any.
func (lb *LogBackend) Close() error {
	if lb == nil || lb.rotator == nil {
		return nil
	}
	return lb.rotator.Close()
}

// ParseDebugLevel parses a DebugLevel string. An empty string means info.
func ParseDebugLevel(s string) (slog.Level, map[string]slog.Level, error) {
	levels := make(map[string]slog.Level)
	defaultLevel := slog.LevelInfo
	if strings.TrimSpace(s) == "" {
		return defaultLevel, levels, nil
	}

	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		subsystem, levelStr, hasSubsystem := strings.Cut(part, "=")
		if !hasSubsystem {
			levelStr = subsystem
		}
		level, ok := slog.LevelFromString(levelStr)
		if !ok {
			return 0, nil, fmt.Errorf("invalid debug level %q", levelStr)
		}
		if hasSubsystem {
			levels[strings.ToUpper(strings.TrimSpace(subsystem))] = level
		} else {
			defaultLevel = level
		}
	}
	return defaultLevel, levels, nil
}
