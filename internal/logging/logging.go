package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"

	"github.com/decred/slog"
	"github.com/jrick/logrotate/rotator"
)

// LogConfig describes how the process-wide log backend is set up.
type LogConfig struct {
	// LogFile is the path of the rotated log file. Empty disables file
	// logging and only stderr is written.
	LogFile string

	// DebugLevel is the level applied to every subsystem logger: trace,
	// debug, info, warn, error, critical.
	DebugLevel string

	// MaxLogFiles is how many rotated files to keep (0 means keep all).
	MaxLogFiles int

	// MaxBufferLines limits the rotator's internal buffer; 0 uses the
	// rotator default.
	MaxBufferLines int
}

// LogBackend owns the slog backend plus the optional file rotator and hands
// out per-subsystem loggers at the configured level.
type LogBackend struct {
	mu      sync.Mutex
	backend *slog.Backend
	rotator *rotator.Rotator
	level   slog.Level
	loggers map[string]slog.Logger
}

// NewLogBackend creates the backend writing to stderr and, when configured,
// a rotated log file.
func NewLogBackend(cfg LogConfig) (*LogBackend, error) {
	var writers []io.Writer
	writers = append(writers, os.Stderr)

	var rot *rotator.Rotator
	if cfg.LogFile != "" {
		if err := os.MkdirAll(filepath.Dir(cfg.LogFile), 0700); err != nil {
			return nil, fmt.Errorf("failed to create log dir: %w", err)
		}
		var err error
		rot, err = rotator.New(cfg.LogFile, 32*1024, false, cfg.MaxLogFiles)
		if err != nil {
			return nil, fmt.Errorf("failed to create log rotator: %w", err)
		}
		writers = append(writers, rot)
	}

	level, ok := slog.LevelFromString(cfg.DebugLevel)
	if !ok {
		level = slog.LevelInfo
	}

	return &LogBackend{
		backend: slog.NewBackend(io.MultiWriter(writers...)),
		rotator: rot,
		level:   level,
		loggers: make(map[string]slog.Logger),
	}, nil
}

// Logger returns the logger for the given subsystem tag, creating it on
// first use.
func (lb *LogBackend) Logger(subsystem string) slog.Logger {
	lb.mu.Lock()
	defer lb.mu.Unlock()

	if l, ok := lb.loggers[subsystem]; ok {
		return l
	}
	l := lb.backend.Logger(subsystem)
	l.SetLevel(lb.level)
	lb.loggers[subsystem] = l
	return l
}

// Close flushes and closes the file rotator, if any.
func (lb *LogBackend) Close() error {
	if lb.rotator != nil {
		return lb.rotator.Close()
	}
	return nil
}
