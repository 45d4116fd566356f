package logging

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"time"
)

// Logger defines the interface for debug logging.
type Logger interface {
	// Log formats and writes a log message.
	Log(format string, args ...interface{})
	// IsEnabled returns true if messages are actually recorded.
	IsEnabled() bool
	// Close flushes pending messages and releases the log file.
	Close() error
}

// New returns a FileLogger when debug is set and a NilLogger otherwise, together with
// the resolved log path ("" when disabled). An empty path selects
// <user cache dir>/kori/logs/kori-<timestamp>.log.
func New(debug bool, path string) (Logger, string, error) {
	if !debug {
		return NewNilLogger(), "", nil
	}
	if path == "" {
		path = DefaultPath(time.Now())
	}
	l, err := NewFileLogger(path)
	if err != nil {
		return nil, "", err
	}
	if err := linkLatest(path); err != nil {
		l.Log("Warning: failed to update latest.log symlink: %v", err)
	}
	return l, path, nil
}

// DefaultPath returns the log file used when none is configured.
func DefaultPath(now time.Time) string {
	cacheDir, err := os.UserCacheDir()
	if err != nil {
		cacheDir = "."
	}
	name := fmt.Sprintf("kori-%s.log", now.Format("20060102-150405"))
	return filepath.Join(cacheDir, "kori", "logs", name)
}

// linkLatest points latest.log, next to path, at path.
func linkLatest(path string) error {
	if runtime.GOOS == "windows" {
		// Symlinks need extra privileges on Windows.
		return nil
	}
	link := filepath.Join(filepath.Dir(path), "latest.log")
	_ = os.Remove(link)
	return os.Symlink(filepath.Base(path), link)
}
