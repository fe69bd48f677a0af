// internal/journal/journal.go

// Package journal records study-session activity: logins, lesson phases,
// provider calls, and failures. Every entry goes to a plain text file under
// the app dir and into a small in-memory ring that feeds the dashboard's
// journal panel, so the panel never rereads the file while the session is
// running. The TUI owns the terminal, so nothing here ever writes to stdout
// or stderr. A nil Journal is valid and discards everything.
package journal

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

// Level represents the severity of a journal entry.
type Level string

const (
	LevelInfo  Level = "INFO"
	LevelWarn  Level = "WARN"
	LevelError Level = "ERROR"
)

// ringSize bounds how many recent entries stay in memory for the panel.
const ringSize = 64

// Journal is an append-only session log: a file on disk plus a bounded
// ring of the most recent lines.
type Journal struct {
	mu   sync.Mutex
	path string
	file *os.File

	ring  [ringSize]string
	next  int
	count int
}

// New opens the journal at path, creating parent directories as needed,
// and marks the start of the session.
func New(path string) (*Journal, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("journal: create log dir: %w", err)
	}
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("journal: open %s: %w", path, err)
	}
	j := &Journal{path: path, file: file}
	j.Info("session started")
	return j, nil
}

// Path returns the file backing this journal.
func (j *Journal) Path() string {
	if j == nil {
		return ""
	}
	return j.path
}

// Close releases the journal file. The ring stays readable, but nothing
// further reaches disk.
func (j *Journal) Close() error {
	if j == nil {
		return nil
	}
	j.mu.Lock()
	defer j.mu.Unlock()
	if j.file == nil {
		return nil
	}
	err := j.file.Close()
	j.file = nil
	return err
}

// Append records one entry. Disk failures are swallowed: journaling must
// never interfere with the session itself, and the ring keeps the line
// either way.
func (j *Journal) Append(level Level, message string) {
	if j == nil {
		return
	}
	line := fmt.Sprintf("%s %-5s %s",
		time.Now().UTC().Format(time.RFC3339),
		string(level),
		strings.TrimSpace(message),
	)
	j.mu.Lock()
	defer j.mu.Unlock()
	j.ring[j.next] = line
	j.next = (j.next + 1) % ringSize
	if j.count < ringSize {
		j.count++
	}
	if j.file != nil {
		_, _ = j.file.WriteString(line + "\n")
	}
}

// Tail returns up to n of the most recent entries, oldest first. It reads
// the ring, never the file, so the TUI can call it on every frame.
func (j *Journal) Tail(n int) []string {
	if j == nil || n <= 0 {
		return nil
	}
	j.mu.Lock()
	defer j.mu.Unlock()
	if n > j.count {
		n = j.count
	}
	if n == 0 {
		return nil
	}
	out := make([]string, 0, n)
	for i := j.next - n; i < j.next; i++ {
		out = append(out, j.ring[(i+ringSize)%ringSize])
	}
	return out
}

// Info appends an informational entry.
func (j *Journal) Info(format string, args ...any) {
	j.Append(LevelInfo, fmt.Sprintf(format, args...))
}

// Warn appends a warning entry.
func (j *Journal) Warn(format string, args ...any) {
	j.Append(LevelWarn, fmt.Sprintf(format, args...))
}

// Error appends an error entry.
func (j *Journal) Error(format string, args ...any) {
	j.Append(LevelError, fmt.Sprintf(format, args...))
}
