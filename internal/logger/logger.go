// Package logger provides per-component rotating file logs for the bypass monitor.
package logger

import (
	"io"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"
)

// Options control where and how much a component logs.
type Options struct {
	Dir      string // empty = OS default log directory
	Level    string // debug, info, warn, error
	MaxBytes int64  // rotation threshold; 0 = default 1 MiB
}

// New creates a logger for the named component. Output goes to stderr and
// to <dir>/<component>.log with size-based rotation. The log file is
// diagnostic only; failure to open it degrades to stderr-only logging.
func New(component string, opts Options) *logrus.Logger {
	log := logrus.New()
	log.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "2006-01-02 15:04:05",
	})
	log.SetLevel(parseLevel(opts.Level))

	dir := opts.Dir
	if dir == "" {
		dir = defaultLogDir()
	}
	maxBytes := opts.MaxBytes
	if maxBytes <= 0 {
		maxBytes = 1 << 20
	}

	path := filepath.Join(dir, component+".log")
	w, err := newRotatingWriter(path, maxBytes)
	if err != nil {
		log.SetOutput(os.Stderr)
		log.WithError(err).Warn("log file unavailable, logging to stderr only")
		return log
	}

	log.SetOutput(io.MultiWriter(os.Stderr, w))
	return log
}

// Component returns an entry tagged with the component name, so every
// line carries its origin even when files are aggregated.
func Component(log *logrus.Logger, component string) *logrus.Entry {
	return log.WithField("component", component)
}

func parseLevel(s string) logrus.Level {
	switch s {
	case "debug":
		return logrus.DebugLevel
	case "warn":
		return logrus.WarnLevel
	case "error":
		return logrus.ErrorLevel
	default:
		return logrus.InfoLevel
	}
}

// Recover should be deferred at the top of every goroutine to catch panics.
func Recover(log *logrus.Logger, name string) {
	if r := recover(); r != nil {
		log.Errorf("panic in %s: %v", name, r)
	}
}
