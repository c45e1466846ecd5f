// Package notify supplies the notification sinks and integration-metadata
// providers consumed by the self check.
package notify

import (
	"fmt"
	"io"
	"os"

	"go.uber.org/zap"
)

// Notifier is the contract every sink implements.
type Notifier interface {
	Notify(message, source string) error
}

// New selects a sink by kind: "console" writes to out, "file" appends to
// path.
func New(kind, path string, out io.Writer, logger *zap.Logger) (Notifier, error) {
	switch kind {
	case "console":
		return NewConsole(out, logger), nil
	case "file":
		if path == "" {
			return nil, fmt.Errorf("file sink requires a path")
		}
		return NewFile(path, logger), nil
	default:
		return nil, fmt.Errorf("unsupported notification sink: %s", kind)
	}
}

// Console writes notifications to a writer, stdout by default, and mirrors
// them to the logger at debug level.
type Console struct {
	out    io.Writer
	logger *zap.Logger
}

// NewConsole builds a Console sink. A nil writer defaults to stdout, a nil
// logger to a nop.
func NewConsole(out io.Writer, logger *zap.Logger) *Console {
	if out == nil {
		out = os.Stdout
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Console{out: out, logger: logger.Named("notify")}
}

// Notify renders one notification to the console.
func (c *Console) Notify(message, source string) error {
	c.logger.Debug("delivering notification", zap.String("source", source))

	if _, err := fmt.Fprintf(c.out, "[%s]\n%s\n", source, message); err != nil {
		return fmt.Errorf("write notification: %w", err)
	}
	return nil
}

// File appends notifications to a file on disk, creating it on first use.
type File struct {
	path   string
	logger *zap.Logger
}

// NewFile builds a file sink for the given path. A nil logger defaults to a
// nop.
func NewFile(path string, logger *zap.Logger) *File {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &File{path: path, logger: logger.Named("notify")}
}

// Notify appends one notification to the file. The file is opened per call
// so a long-lived process never pins a stale handle.
func (f *File) Notify(message, source string) error {
	f.logger.Debug("delivering notification",
		zap.String("source", source),
		zap.String("file", f.path),
	)

	file, err := os.OpenFile(f.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open notification file: %w", err)
	}
	defer file.Close()

	if _, err := fmt.Fprintf(file, "[%s]\n%s\n", source, message); err != nil {
		return fmt.Errorf("write notification: %w", err)
	}
	return nil
}

// StaticMetadata answers metadata lookups from fixed values, today just the
// issue-tracker root URL.
type StaticMetadata struct {
	issueTracker string
}

// NewStaticMetadata builds a provider for the given issue-tracker root.
func NewStaticMetadata(issueTracker string) *StaticMetadata {
	return &StaticMetadata{issueTracker: issueTracker}
}

// IssueTracker returns the issue-tracker root URL.
func (m *StaticMetadata) IssueTracker() string {
	return m.issueTracker
}
