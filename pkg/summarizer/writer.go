package summarizer

import (
	"fmt"
	"path/filepath"

	"github.com/user/lanecrop/pkg/ports"
)

// Formatter renders a run summary as text.
type Formatter interface {
	Format(summary *Summary) string
}

// FormatFunc lets a plain function act as a Formatter.
type FormatFunc func(summary *Summary) string

func (f FormatFunc) Format(summary *Summary) string { return f(summary) }

// Writer persists a rendered summary next to the lane files, or wherever
// --summary points.
type Writer struct {
	formatter Formatter
	fs        ports.FileSystem
}

func NewWriter(formatter Formatter, fs ports.FileSystem) *Writer {
	return &Writer{formatter: formatter, fs: fs}
}

// Write renders summary and stores it at path. Missing parent directories
// are created first.
func (w *Writer) Write(path string, summary *Summary) error {
	if summary == nil {
		return fmt.Errorf("summary for %s: nothing to write", path)
	}

	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := w.fs.MkdirAll(dir); err != nil {
			return fmt.Errorf("summary directory %s: %w", dir, err)
		}
	}

	body := w.formatter.Format(summary)
	if err := w.fs.WriteFile(path, []byte(body)); err != nil {
		return fmt.Errorf("write summary %s: %w", path, err)
	}
	return nil
}
