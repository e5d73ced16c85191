package mocks

import (
	"errors"
	"image"
	"io"
	"path/filepath"
	"sync"

	"github.com/user/lanecrop/pkg/ports"
)

// Events records open and close calls across the media mocks in order.
type Events struct {
	mu   sync.Mutex
	list []string
}

func (e *Events) add(s string) {
	if e == nil {
		return
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	e.list = append(e.list, s)
}

// List returns the recorded events.
func (e *Events) List() []string {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]string, len(e.list))
	copy(out, e.list)
	return out
}

// Frame is a mock implementation of ports.Frame.
type Frame struct {
	Geo      ports.Geometry
	TS       float64
	Img      image.Image
	Releases int
}

// NewFrame creates a yuv420p frame of the given size.
func NewFrame(width, height int, ts float64) *Frame {
	return &Frame{
		Geo: ports.Geometry{Width: width, Height: height, PixelFormat: 0, PixelFormatName: "yuv420p"},
		TS:  ts,
	}
}

func (f *Frame) Geometry() ports.Geometry { return f.Geo }
func (f *Frame) Timestamp() float64       { return f.TS }

func (f *Frame) Image() (image.Image, error) {
	if f.Img != nil {
		return f.Img, nil
	}
	return image.NewRGBA(image.Rect(0, 0, f.Geo.Width, f.Geo.Height)), nil
}

func (f *Frame) Release() { f.Releases++ }

var _ ports.Frame = (*Frame)(nil)

// Decoder is a mock implementation of ports.Decoder that replays Frames.
type Decoder struct {
	Frames        []*Frame
	DurationValue float64

	// ReadErr is returned instead of the frame at index ReadErrAt.
	ReadErr   error
	ReadErrAt int
	SeekErr   error

	SeekCalls []float64
	Closed    bool

	pos    int
	events *Events
}

func (d *Decoder) Duration() float64 { return d.DurationValue }

func (d *Decoder) Seek(t float64) error {
	d.SeekCalls = append(d.SeekCalls, t)
	return d.SeekErr
}

func (d *Decoder) ReadFrame() (ports.Frame, error) {
	if d.ReadErr != nil && d.pos == d.ReadErrAt {
		return nil, d.ReadErr
	}
	if d.pos >= len(d.Frames) {
		return nil, io.EOF
	}
	f := d.Frames[d.pos]
	d.pos++
	return f, nil
}

func (d *Decoder) Close() error {
	d.Closed = true
	d.events.add("decoder.close")
	return nil
}

var _ ports.Decoder = (*Decoder)(nil)

// Router is a mock implementation of ports.FrameRouter. Every Collect
// returns a fresh target-sized frame per lane unless the lane is Absent.
type Router struct {
	Spec       ports.RouterSpec
	Absent     map[int]bool
	SubmitErr  error
	CollectErr error

	Submitted []float64
	Collected [][]*Frame
	Closed    bool

	last   float64
	events *Events
}

func (r *Router) Lanes() int { return len(r.Spec.Regions) }

func (r *Router) Submit(f ports.Frame) error {
	if r.SubmitErr != nil {
		return r.SubmitErr
	}
	r.Submitted = append(r.Submitted, f.Timestamp())
	r.last = f.Timestamp()
	return nil
}

func (r *Router) Collect() ([]ports.Frame, error) {
	if r.CollectErr != nil {
		return nil, r.CollectErr
	}
	out := make([]ports.Frame, r.Lanes())
	batch := make([]*Frame, r.Lanes())
	for i := range out {
		if r.Absent[i] {
			continue
		}
		f := NewFrame(r.Spec.TargetWidth, r.Spec.TargetHeight, r.last)
		out[i] = f
		batch[i] = f
	}
	r.Collected = append(r.Collected, batch)
	return out, nil
}

func (r *Router) Close() error {
	r.Closed = true
	r.events.add("router.close")
	return nil
}

var _ ports.FrameRouter = (*Router)(nil)

// EncoderPut records a call to PutFrame.
type EncoderPut struct {
	TS  float64
	Nil bool
}

// Encoder is a mock implementation of ports.LaneEncoder.
type Encoder struct {
	Path     string
	Opts     ports.EncoderOptions
	PutErr   error
	CloseErr error

	Puts   []EncoderPut
	Closed bool

	origin float64
	stats  ports.EncoderStats
	events *Events
}

func (e *Encoder) PutFrame(ts float64, f ports.Frame) error {
	e.Puts = append(e.Puts, EncoderPut{TS: ts, Nil: f == nil})
	if e.PutErr != nil {
		return e.PutErr
	}
	if f == nil {
		return nil
	}
	if e.stats.FramesIn == 0 {
		e.origin = ts
		e.stats.FirstTimestamp = ts
	}
	e.stats.FramesIn++
	e.stats.PacketsOut++
	e.stats.LastTimestamp = ts - e.origin
	return nil
}

func (e *Encoder) Close() error {
	e.Closed = true
	e.events.add("encoder.close:" + filepath.Base(e.Path))
	return e.CloseErr
}

func (e *Encoder) Stats() ports.EncoderStats { return e.stats }

// Rebased returns the lane-relative timestamps of the non-nil puts.
func (e *Encoder) Rebased() []float64 {
	var out []float64
	var origin float64
	for _, p := range e.Puts {
		if p.Nil {
			continue
		}
		if out == nil {
			origin = p.TS
		}
		out = append(out, p.TS-origin)
	}
	return out
}

var _ ports.LaneEncoder = (*Encoder)(nil)

// MediaFactory is a mock implementation of ports.MediaFactory.
type MediaFactory struct {
	Decoder        *Decoder
	OpenDecoderErr error

	Router         *Router
	BuildRouterErr error

	// OpenEncoderErr maps an output file base name to an open error.
	OpenEncoderErr map[string]error

	Encoders []*Encoder
	Events   Events
}

// NewMediaFactory creates a factory that serves dec and a default router.
func NewMediaFactory(dec *Decoder) *MediaFactory {
	return &MediaFactory{Decoder: dec, Router: &Router{}}
}

func (m *MediaFactory) OpenDecoder(path string) (ports.Decoder, error) {
	if m.OpenDecoderErr != nil {
		return nil, m.OpenDecoderErr
	}
	if m.Decoder == nil {
		return nil, errors.New("mock: no decoder")
	}
	m.Decoder.events = &m.Events
	m.Events.add("decoder.open")
	return m.Decoder, nil
}

func (m *MediaFactory) BuildRouter(spec ports.RouterSpec) (ports.FrameRouter, error) {
	if m.BuildRouterErr != nil {
		return nil, m.BuildRouterErr
	}
	m.Router.Spec = spec
	m.Router.events = &m.Events
	m.Events.add("router.build")
	return m.Router, nil
}

func (m *MediaFactory) OpenEncoder(path string, opts ports.EncoderOptions) (ports.LaneEncoder, error) {
	if err := m.OpenEncoderErr[filepath.Base(path)]; err != nil {
		return nil, err
	}
	e := &Encoder{Path: path, Opts: opts, events: &m.Events}
	m.Encoders = append(m.Encoders, e)
	m.Events.add("encoder.open:" + filepath.Base(path))
	return e, nil
}

var _ ports.MediaFactory = (*MediaFactory)(nil)

// Metrics is a mock implementation of ports.Metrics.
type Metrics struct {
	Decoded    int
	Skipped    int
	LaneFrames map[string]int
	Failed     []string
	Phases     map[string]float64
	Flushed    bool
}

// NewMetrics creates a new mock Metrics.
func NewMetrics() *Metrics {
	return &Metrics{LaneFrames: map[string]int{}, Phases: map[string]float64{}}
}

func (m *Metrics) FrameDecoded()                              { m.Decoded++ }
func (m *Metrics) FrameSkipped()                              { m.Skipped++ }
func (m *Metrics) LaneFrame(lane string)                      { m.LaneFrames[lane]++ }
func (m *Metrics) LaneFailed(lane string)                     { m.Failed = append(m.Failed, lane) }
func (m *Metrics) ObservePhase(phase string, seconds float64) { m.Phases[phase] += seconds }
func (m *Metrics) Flush() error                               { m.Flushed = true; return nil }

var _ ports.Metrics = (*Metrics)(nil)
