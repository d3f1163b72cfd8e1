// Package metrics provides JSONL event logging for analytics.
package metrics

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// Event names written to the log.
const (
	EventSearch     = "search"
	EventError      = "error"
	EventInvalidate = "invalidate"
)

// SearchEvent describes one completed query.
type SearchEvent struct {
	Query       string
	Intent      string
	Results     int
	Suggestions int
	Clarified   bool
	LatencyMs   int64
	CacheHit    bool
}

// Logger writes metrics events to JSONL file.
type Logger struct {
	file *os.File
	mu   sync.Mutex
}

// NewLogger creates a new metrics logger, creating parent directories as
// needed.
func NewLogger(path string) (*Logger, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, err
	}

	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, err
	}

	return &Logger{file: file}, nil
}

// DefaultPath returns the per-user metrics log location.
func DefaultPath() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		homeDir = os.TempDir()
	}
	return filepath.Join(homeDir, ".local", "share", "service-finder", "metrics.jsonl")
}

// Close closes the log file.
func (l *Logger) Close() error {
	return l.file.Close()
}

func (l *Logger) log(event string, data map[string]any) {
	l.mu.Lock()
	defer l.mu.Unlock()

	e := map[string]any{
		"ts":    time.Now().UTC().Format(time.RFC3339),
		"event": event,
	}
	for k, v := range data {
		e[k] = v
	}

	line, err := json.Marshal(e)
	if err != nil {
		// Unencodable values drop the event; metrics never fail a query.
		return
	}
	l.file.Write(append(line, '\n'))
}

// LogSearch logs a search query event.
func (l *Logger) LogSearch(ev SearchEvent) {
	l.log(EventSearch, map[string]any{
		"query":       ev.Query,
		"intent":      ev.Intent,
		"results":     ev.Results,
		"suggestions": ev.Suggestions,
		"clarified":   ev.Clarified,
		"latency_ms":  ev.LatencyMs,
		"cache_hit":   ev.CacheHit,
	})
}

// LogInvalidate logs a cache purge.
func (l *Logger) LogInvalidate(fingerprint string, keysRemoved int) {
	l.log(EventInvalidate, map[string]any{
		"fingerprint":  fingerprint,
		"keys_removed": keysRemoved,
	})
}

// LogError logs an error event.
func (l *Logger) LogError(operation, message string) {
	l.log(EventError, map[string]any{
		"operation": operation,
		"message":   message,
	})
}
