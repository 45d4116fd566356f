package logging

// NilLogger discards everything.
type NilLogger struct{}

// NewNilLogger creates a new no-op logger.
func NewNilLogger() *NilLogger {
	return &NilLogger{}
}

func (l *NilLogger) Log(format string, args ...interface{}) {}

func (l *NilLogger) IsEnabled() bool { return false }

func (l *NilLogger) Close() error { return nil }

var _ Logger = (*NilLogger)(nil)
