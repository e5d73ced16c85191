package mocks

import (
	"image"
	"sync"

	"github.com/user/lanecrop/pkg/ports"
)

// DebugSink is a mock implementation of ports.DebugSink.
type DebugSink struct {
	mu sync.RWMutex

	enabled bool

	RegionsJSON []byte
	LanesJSON   []byte
	Preview     image.Image
	LaneFrames  map[int][]image.Image
}

// NewDebugSink creates a new mock DebugSink.
func NewDebugSink(enabled bool) *DebugSink {
	return &DebugSink{
		enabled:    enabled,
		LaneFrames: make(map[int][]image.Image),
	}
}

func (m *DebugSink) Enabled() bool {
	return m.enabled
}

func (m *DebugSink) SaveRegionsJSON(data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.RegionsJSON = data
	return nil
}

func (m *DebugSink) SaveLanesJSON(data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.LanesJSON = data
	return nil
}

func (m *DebugSink) SavePreview(img image.Image) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Preview = img
	return nil
}

func (m *DebugSink) SaveLaneFrame(lane, index int, img image.Image) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.LaneFrames[lane] = append(m.LaneFrames[lane], img)
	return nil
}

var _ ports.DebugSink = (*DebugSink)(nil)

// NullSink is a no-op implementation of ports.DebugSink.
type NullSink struct{}

func (m *NullSink) Enabled() bool                                        { return false }
func (m *NullSink) SaveRegionsJSON(data []byte) error                    { return nil }
func (m *NullSink) SaveLanesJSON(data []byte) error                      { return nil }
func (m *NullSink) SavePreview(img image.Image) error                    { return nil }
func (m *NullSink) SaveLaneFrame(lane, index int, img image.Image) error { return nil }

var _ ports.DebugSink = (*NullSink)(nil)
