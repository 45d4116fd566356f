package logging

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"
)

// bufferSize is how many formatted messages may wait for the writer goroutine.
const bufferSize = 256

// FileLogger writes timestamped messages to a file from a background goroutine.
// Log never blocks: when the buffer is full the message is dropped and counted.
type FileLogger struct {
	logChan chan string
	file    *os.File
	waiter  sync.WaitGroup
	mu      sync.Mutex // guards file and closed
	closed  bool
	dropped atomic.Int64
}

// NewFileLogger opens (appending) or creates the file at filePath, creating parent
// directories as needed.
func NewFileLogger(filePath string) (*FileLogger, error) {
	dir := filepath.Dir(filePath)
	if err := os.MkdirAll(dir, 0750); err != nil {
		return nil, fmt.Errorf("failed to create log directory %s: %w", dir, err)
	}

	f, err := os.OpenFile(filePath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0640)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file %s: %w", filePath, err)
	}

	l := &FileLogger{
		logChan: make(chan string, bufferSize),
		file:    f,
	}
	l.waiter.Add(1)
	go l.writer()
	return l, nil
}

func (l *FileLogger) writer() {
	defer l.waiter.Done()
	for msg := range l.logChan {
		l.mu.Lock()
		if l.file != nil {
			_, _ = l.file.WriteString(msg)
		}
		l.mu.Unlock()
	}
}

// Log formats the message with a timestamp and queues it for writing.
func (l *FileLogger) Log(format string, args ...interface{}) {
	now := time.Now().Format("2006-01-02T15:04:05.000Z07:00")
	msg := fmt.Sprintf("[%s] %s\n", now, fmt.Sprintf(format, args...))

	l.mu.Lock()
	defer l.mu.Unlock()
	if l.closed {
		l.dropped.Add(1)
		return
	}
	select {
	case l.logChan <- msg:
	default:
		l.dropped.Add(1)
	}
}

func (l *FileLogger) IsEnabled() bool { return true }

// Dropped returns how many messages were discarded because the buffer was full or
// the logger was already closed.
func (l *FileLogger) Dropped() int64 {
	return l.dropped.Load()
}

// Close drains queued messages, then closes the file. Calling Close twice is a no-op.
func (l *FileLogger) Close() error {
	l.mu.Lock()
	if l.closed {
		l.mu.Unlock()
		return nil
	}
	l.closed = true
	close(l.logChan)
	l.mu.Unlock()

	l.waiter.Wait()

	l.mu.Lock()
	defer l.mu.Unlock()
	err := l.file.Close()
	l.file = nil
	return err
}

var _ Logger = (*FileLogger)(nil)
