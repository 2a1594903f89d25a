// Package logger writes one structured JSON line per audit decision to a
// rotating file, redacting secrets before they touch disk.
package logger

import (
	"encoding/json"
	"fmt"
	"os"
	"sync"

	"github.com/taajirah/sentinel/internal/redact"
	"github.com/taajirah/sentinel/internal/unicode"
)

// defaultMaxLogBytes is the file size at which the log is rotated (10 MB).
const defaultMaxLogBytes = 10 * 1024 * 1024

// AuditEvent is one line of the audit log: the command audited, the
// Decision it produced, and whatever execution followed.
type AuditEvent struct {
	Timestamp     string   `json:"timestamp"`
	Command       string   `json:"command"`
	Normalized    string   `json:"normalized"`
	Cwd           string   `json:"cwd,omitempty"`
	Allowed       bool     `json:"allowed"`
	RiskScore     int      `json:"risk_score"`
	Reason        string   `json:"reason"`
	Source        string   `json:"source,omitempty"`
	ReturnCode    *int     `json:"returncode,omitempty"`
	Stdout        string   `json:"stdout,omitempty"`
	Stderr        string   `json:"stderr,omitempty"`
	ExecutedError string   `json:"executed_error,omitempty"`
	UnicodeThreat []string `json:"unicode_threats,omitempty"`
}

// AuditLogger appends AuditEvents to a JSON-lines file, rotating it when
// it grows past defaultMaxLogBytes.
type AuditLogger struct {
	path string
	file *os.File
	mu   sync.Mutex
}

// New opens (creating if necessary) the audit log at path.
func New(path string) (*AuditLogger, error) {
	file, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0600)
	if err != nil {
		return nil, err
	}
	return &AuditLogger{path: path, file: file}, nil
}

// rotateIfNeeded renames the current file to <path>.1 (dropping any
// existing .1) and opens a fresh one. Must be called with l.mu held.
func (l *AuditLogger) rotateIfNeeded() error {
	info, err := l.file.Stat()
	if err != nil {
		return fmt.Errorf("stat log file: %w", err)
	}
	if info.Size() < defaultMaxLogBytes {
		return nil
	}

	if err := l.file.Close(); err != nil {
		return fmt.Errorf("close log before rotation: %w", err)
	}

	rotated := l.path + ".1"
	_ = os.Remove(rotated)
	if err := os.Rename(l.path, rotated); err != nil {
		return fmt.Errorf("rotate log: %w", err)
	}

	f, err := os.OpenFile(l.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0600)
	if err != nil {
		return fmt.Errorf("open fresh log after rotation: %w", err)
	}
	l.file = f
	return nil
}

// Log redacts sensitive content out of event, attaches a forensic Unicode
// smuggling scan of the raw command, and appends the event as one JSON line.
func (l *AuditLogger) Log(event AuditEvent) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if err := l.rotateIfNeeded(); err != nil {
		fmt.Fprintf(os.Stderr, "[sentinel] warning: log rotation failed: %v\n", err)
	}

	if scan := unicode.Scan(event.Command); !scan.Clean {
		for _, threat := range scan.Threats {
			event.UnicodeThreat = append(event.UnicodeThreat, threat.Category+": "+threat.Codepoint)
		}
	}

	event.Command = redact.Redact(event.Command)
	event.Normalized = redact.Redact(event.Normalized)
	if event.Stdout != "" {
		event.Stdout = redact.Redact(event.Stdout)
	}
	if event.Stderr != "" {
		event.Stderr = redact.Redact(event.Stderr)
	}
	if event.ExecutedError != "" {
		event.ExecutedError = redact.Redact(event.ExecutedError)
	}

	data, err := json.Marshal(event)
	if err != nil {
		return err
	}
	data = append(data, '\n')
	_, err = l.file.Write(data)
	return err
}

// Close releases the underlying file handle.
func (l *AuditLogger) Close() error {
	if l.file != nil {
		return l.file.Close()
	}
	return nil
}
