package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"
)

const timeFormat = "2006-01-02 15:04:05"

// Logger appends one line per event to the backup history log.
// Safe for concurrent use; each line is written atomically under the mutex.
type Logger struct {
	mu      sync.Mutex
	out     io.Writer
	logFile *os.File
	now     func() time.Time
}

// Open creates or opens the append-only log file at path.
func Open(path string) (*Logger, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}

	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0600)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file %s: %w", path, err)
	}

	return &Logger{out: file, logFile: file, now: time.Now}, nil
}

// NewWriter returns a logger that writes to w. Used by tests.
func NewWriter(w io.Writer) *Logger {
	return &Logger{out: w, now: time.Now}
}

// Tee mirrors every subsequent line to w in addition to the current sink.
func (l *Logger) Tee(w io.Writer) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.out = io.MultiWriter(l.out, w)
}

// SetClock overrides the timestamp source. Used by tests.
func (l *Logger) SetClock(now func() time.Time) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if now == nil {
		l.now = time.Now
		return
	}
	l.now = now
}

// Logf writes one `{timestamp} - {message}` line.
func (l *Logger) Logf(format string, args ...any) {
	if l == nil {
		return
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintf(l.out, "%s - %s\n", l.now().Format(timeFormat), fmt.Sprintf(format, args...))
}

func (l *Logger) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.logFile == nil {
		return nil
	}

	err := l.logFile.Close()
	l.logFile = nil
	return err
}
