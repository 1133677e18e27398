// Package chatlog provides optional NDJSON logging of chat turns for
// offline review. Transcripts themselves never outlive the session;
// this log is observability, not persistence.
package chatlog

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

// Event is one logged chat turn.
type Event struct {
	Timestamp string `json:"timestamp"`
	User      string `json:"user"`
	Role      string `json:"role"`
	Content   string `json:"content"`
	Mode      string `json:"mode,omitempty"`
}

// Logger records chat events. Implementations must be safe for
// concurrent use and must never block the request path.
type Logger interface {
	Log(event Event)
	Close() error
}

// Config controls the file-backed logger.
type Config struct {
	Enabled   bool
	Dir       string
	QueueSize int
}

// FileLogger appends events to one NDJSON file per user. Writes happen
// on a background goroutine fed by a bounded queue; when the queue is
// full events are dropped, not blocked on.
type FileLogger struct {
	dir   string
	queue chan Event
	done  chan struct{}
	once  sync.Once
}

// New creates a logger per cfg. A disabled config yields a Noop.
func New(cfg Config) (Logger, error) {
	if !cfg.Enabled {
		return noop{}, nil
	}
	if err := os.MkdirAll(cfg.Dir, 0o755); err != nil {
		return nil, fmt.Errorf("create chat log directory: %w", err)
	}
	queueSize := cfg.QueueSize
	if queueSize <= 0 {
		queueSize = 1000
	}

	l := &FileLogger{
		dir:   cfg.Dir,
		queue: make(chan Event, queueSize),
		done:  make(chan struct{}),
	}
	go l.drain()
	return l, nil
}

type noop struct{}

func (noop) Log(Event)    {}
func (noop) Close() error { return nil }

// Log enqueues an event, dropping it if the queue is full.
func (l *FileLogger) Log(event Event) {
	if event.Timestamp == "" {
		event.Timestamp = time.Now().UTC().Format(time.RFC3339)
	}
	select {
	case l.queue <- event:
	default:
		slog.Warn("chat log queue full, dropping event", "user", event.User)
	}
}

// Close flushes queued events and stops the writer goroutine.
func (l *FileLogger) Close() error {
	l.once.Do(func() { close(l.queue) })
	<-l.done
	return nil
}

func (l *FileLogger) drain() {
	defer close(l.done)
	for event := range l.queue {
		if err := l.write(event); err != nil {
			slog.Warn("failed to write chat log event", "user", event.User, "error", err)
		}
	}
}

func (l *FileLogger) write(event Event) error {
	line, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("encode chat log event: %w", err)
	}

	path := filepath.Join(l.dir, sanitizeFilename(event.User)+".ndjson")
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open chat log file: %w", err)
	}
	defer func() { _ = f.Close() }()

	if _, err := f.Write(append(line, '\n')); err != nil {
		return fmt.Errorf("append chat log event: %w", err)
	}
	return nil
}

// sanitizeFilename keeps user identifiers from escaping the log
// directory.
func sanitizeFilename(name string) string {
	replacer := strings.NewReplacer("/", "_", "\\", "_", "..", "_", ":", "_")
	clean := replacer.Replace(name)
	if clean == "" {
		return "unknown"
	}
	return clean
}
