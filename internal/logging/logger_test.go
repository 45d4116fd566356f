package logging

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestFileLoggerWritesAndCloses(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "kori.log")

	l, err := NewFileLogger(path)
	if err != nil {
		t.Fatalf("NewFileLogger() failed: %v", err)
	}
	l.Log("computed diff: %d rows", 3)
	l.Log("second message")

	if err := l.Close(); err != nil {
		t.Fatalf("Close() failed: %v", err)
	}
	// Second close must not panic on the closed channel.
	if err := l.Close(); err != nil {
		t.Fatalf("second Close() failed: %v", err)
	}
	l.Log("after close")
	if l.Dropped() != 1 {
		t.Errorf("Expected 1 dropped message, got %d", l.Dropped())
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read log file: %v", err)
	}
	content := string(data)
	if !strings.Contains(content, "computed diff: 3 rows") || !strings.Contains(content, "second message") {
		t.Errorf("Log file missing messages:\n%s", content)
	}
	if strings.Contains(content, "after close") {
		t.Errorf("Message logged after Close was written")
	}
	if lines := strings.Count(content, "\n"); lines != 2 {
		t.Errorf("Expected 2 lines, got %d", lines)
	}
}

func TestNewDisabled(t *testing.T) {
	l, path, err := New(false, "/should/not/be/created.log")
	if err != nil {
		t.Fatalf("New() failed: %v", err)
	}
	if l.IsEnabled() {
		t.Errorf("Expected disabled logger")
	}
	if path != "" {
		t.Errorf("Expected empty path, got %q", path)
	}
	if err := l.Close(); err != nil {
		t.Errorf("NilLogger.Close() returned %v", err)
	}
}

func TestNewEnabledCreatesLatestLink(t *testing.T) {
	dir := t.TempDir()
	want := filepath.Join(dir, "kori-test.log")

	l, path, err := New(true, want)
	if err != nil {
		t.Fatalf("New() failed: %v", err)
	}
	defer l.Close()

	if path != want {
		t.Errorf("Expected path %q, got %q", want, path)
	}
	if !l.IsEnabled() {
		t.Errorf("Expected enabled logger")
	}
	if _, ok := l.(*FileLogger); !ok {
		t.Errorf("Expected *FileLogger, got %T", l)
	}
	if target, err := os.Readlink(filepath.Join(dir, "latest.log")); err == nil && target != "kori-test.log" {
		t.Errorf("latest.log points at %q", target)
	}
}

func TestDefaultPath(t *testing.T) {
	ts := time.Date(2026, 10, 17, 9, 30, 0, 0, time.UTC)
	path := DefaultPath(ts)
	if filepath.Base(path) != "kori-20261017-093000.log" {
		t.Errorf("Unexpected file name: %s", path)
	}
	if filepath.Base(filepath.Dir(path)) != "logs" {
		t.Errorf("Expected logs directory, got %s", path)
	}
}
