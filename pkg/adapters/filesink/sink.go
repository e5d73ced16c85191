// Package filesink provides a file-based debug sink implementation.
package filesink

import (
	"fmt"
	"image"
	"path/filepath"

	"github.com/user/lanecrop/pkg/ports"
)

// Sink saves debug output under a base directory:
//
//	regions.json, lanes.json, preview.png, lanes/<NN>/frame-NNNN.jpg
type Sink struct {
	baseDir  string
	fs       ports.FileSystem
	renderer ports.Renderer
}

// New creates a new Sink.
func New(baseDir string, fs ports.FileSystem, renderer ports.Renderer) *Sink {
	return &Sink{
		baseDir:  baseDir,
		fs:       fs,
		renderer: renderer,
	}
}

// Enabled returns true as this sink saves output.
func (s *Sink) Enabled() bool {
	return true
}

// SaveRegionsJSON saves the resolved regions.
func (s *Sink) SaveRegionsJSON(data []byte) error {
	return s.fs.WriteFile(filepath.Join(s.baseDir, "regions.json"), data)
}

// SaveLanesJSON saves the lane results.
func (s *Sink) SaveLanesJSON(data []byte) error {
	return s.fs.WriteFile(filepath.Join(s.baseDir, "lanes.json"), data)
}

// SavePreview saves the annotated first frame as PNG.
func (s *Sink) SavePreview(img image.Image) error {
	data, err := s.renderer.Encode(img, ports.FormatPNG, 0)
	if err != nil {
		return fmt.Errorf("encode preview: %w", err)
	}
	return s.fs.WriteFile(filepath.Join(s.baseDir, "preview"+ports.FormatPNG.Ext()), data)
}

// SaveLaneFrame saves a routed lane frame as JPEG.
func (s *Sink) SaveLaneFrame(lane, index int, img image.Image) error {
	dir := filepath.Join(s.baseDir, "lanes", fmt.Sprintf("%02d", lane))
	if err := s.fs.MkdirAll(dir); err != nil {
		return err
	}
	data, err := s.renderer.Encode(img, ports.FormatJPEG, 90)
	if err != nil {
		return fmt.Errorf("encode lane frame: %w", err)
	}
	return s.fs.WriteFile(filepath.Join(dir, fmt.Sprintf("frame-%04d%s", index, ports.FormatJPEG.Ext())), data)
}

var _ ports.DebugSink = (*Sink)(nil)
