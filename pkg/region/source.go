package region

import (
	"bytes"
	"context"
	"fmt"

	"github.com/ideamans/go-l10n"
	"github.com/user/lanecrop/pkg/ports"
)

// Source resolves the list of regions for a run.
type Source interface {
	Regions(ctx context.Context) ([]Box, error)
}

// FileSource loads regions from a region file.
type FileSource struct {
	path   string
	fs     ports.FileSystem
	logger ports.Logger
}

// NewFileSource creates a Source reading path through fs.
func NewFileSource(path string, fs ports.FileSystem, logger ports.Logger) *FileSource {
	return &FileSource{path: path, fs: fs, logger: logger}
}

// Regions reads and parses the file. Malformed lines are logged and skipped.
func (s *FileSource) Regions(ctx context.Context) ([]Box, error) {
	data, err := s.fs.ReadFile(s.path)
	if err != nil {
		return nil, fmt.Errorf("read region file %s: %w", s.path, err)
	}

	boxes, malformed, err := Parse(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	for _, m := range malformed {
		s.logger.Warn(l10n.F("Skipping region line %d: %s", m.Line, m.Reason))
	}
	s.logger.Debug(l10n.F("Loaded %d regions from %s", len(boxes), s.path))

	return boxes, nil
}

// StaticSource returns a fixed list of regions.
type StaticSource []Box

// Regions returns a copy of the list.
func (s StaticSource) Regions(ctx context.Context) ([]Box, error) {
	out := make([]Box, len(s))
	copy(out, s)
	return out, nil
}

var (
	_ Source = (*FileSource)(nil)
	_ Source = StaticSource(nil)
)
