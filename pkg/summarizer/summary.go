// Package summarizer renders a human-readable summary of a lanecrop run.
package summarizer

import "time"

// Summary contains the data collected during one run.
type Summary struct {
	GeneratedAt time.Time

	RunID  string
	Status string

	Input      InputInfo
	Window     WindowInfo
	Settings   Settings
	Processing ProcessingInfo
	Lanes      []LaneInfo
}

// InputInfo describes the source video.
type InputInfo struct {
	Path        string
	Duration    float64 // seconds, negative when unknown
	Width       int
	Height      int
	PixelFormat string
}

// WindowInfo is the processed time window.
type WindowInfo struct {
	From     float64
	Duration float64
}

// Settings contains the lane encoding configuration.
type Settings struct {
	TargetWidth  int
	TargetHeight int
	FrameRate    int
	Bitrate      int
	Codec        string
	Preset       string
	ExtLeft      float64
	ExtRight     float64
	ExtTop       float64
	MaxLanes     int
}

// ProcessingInfo contains frame counters.
type ProcessingInfo struct {
	FramesDecoded int
	FramesSkipped int
	FramesRouted  int
	Elapsed       time.Duration
}

// LaneInfo describes one output lane.
type LaneInfo struct {
	Index    int
	Name     string
	Path     string
	Status   string
	Error    string
	Region   string
	Crop     string
	Frames   int
	Duration float64 // seconds of encoded video
	Bytes    int64
}

// NewSummary creates a new Summary with the current timestamp.
func NewSummary() *Summary {
	return &Summary{
		GeneratedAt: time.Now(),
	}
}

// Builder provides a fluent interface for building a Summary.
type Builder struct {
	summary *Summary
}

// NewBuilder creates a new Builder.
func NewBuilder() *Builder {
	return &Builder{
		summary: NewSummary(),
	}
}

// WithRun sets the run identifier and final status.
func (b *Builder) WithRun(id, status string) *Builder {
	b.summary.RunID = id
	b.summary.Status = status
	return b
}

// WithInput sets source information.
func (b *Builder) WithInput(input InputInfo) *Builder {
	b.summary.Input = input
	return b
}

// WithWindow sets the processed time window.
func (b *Builder) WithWindow(from, duration float64) *Builder {
	b.summary.Window = WindowInfo{From: from, Duration: duration}
	return b
}

// WithSettings sets encoding settings.
func (b *Builder) WithSettings(settings Settings) *Builder {
	b.summary.Settings = settings
	return b
}

// WithProcessing sets frame counters.
func (b *Builder) WithProcessing(p ProcessingInfo) *Builder {
	b.summary.Processing = p
	return b
}

// AddLane appends a lane.
func (b *Builder) AddLane(lane LaneInfo) *Builder {
	b.summary.Lanes = append(b.summary.Lanes, lane)
	return b
}

// Build returns the constructed Summary.
func (b *Builder) Build() *Summary {
	return b.summary
}
