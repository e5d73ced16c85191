// Package nullsink provides a no-op debug sink implementation.
package nullsink

import (
	"image"

	"github.com/user/lanecrop/pkg/ports"
)

// Sink discards all debug output.
type Sink struct{}

// New creates a new Sink.
func New() *Sink {
	return &Sink{}
}

// Enabled returns false.
func (s *Sink) Enabled() bool { return false }

func (s *Sink) SaveRegionsJSON(data []byte) error { return nil }

func (s *Sink) SaveLanesJSON(data []byte) error { return nil }

func (s *Sink) SavePreview(img image.Image) error { return nil }

func (s *Sink) SaveLaneFrame(lane, index int, img image.Image) error { return nil }

var _ ports.DebugSink = (*Sink)(nil)
