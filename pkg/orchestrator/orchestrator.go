// Package orchestrator drives a lane crop run: decode the source window,
// fan every frame out through the frame router and feed each lane encoder.
package orchestrator

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"image"
	"io"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/ideamans/go-l10n"

	"github.com/user/lanecrop/pkg/pipeline"
	"github.com/user/lanecrop/pkg/ports"
	"github.com/user/lanecrop/pkg/region"
)

// Config contains all configuration for a run.
type Config struct {
	// Input
	Input     string
	OutputDir string

	// Time window, seconds
	From     float64
	Duration float64

	// Lanes
	TargetWidth  int
	TargetHeight int
	MaxLanes     int // 0 keeps every region
	Expansion    region.Expansion
	ClampRegions bool
	StrictLanes  bool

	// Encoding
	FrameRate int
	Bitrate   int
	Codec     string
	Preset    string

	// Debug
	PreviewMaxSide  int
	DebugLaneFrames int // routed frames saved per lane when the sink is enabled
}

// DefaultConfig returns a Config with default values.
func DefaultConfig() Config {
	return Config{
		OutputDir:    ".",
		From:         60.0,
		Duration:     60.0,
		TargetWidth:  320,
		TargetHeight: 240,
		Expansion:    region.DefaultExpansion(),
		ClampRegions: true,

		FrameRate: 25,
		Bitrate:   50000,
		Preset:    "ultrafast",

		PreviewMaxSide:  1280,
		DebugLaneFrames: 1,
	}
}

// Validate checks the configuration before any I/O happens.
func (c Config) Validate() error {
	switch {
	case c.Input == "":
		return fmt.Errorf("%w: no input file", ports.ErrArgument)
	case c.From < 0:
		return fmt.Errorf("%w: negative start time %.2f", ports.ErrArgument, c.From)
	case c.Duration <= 0:
		return fmt.Errorf("%w: duration must be positive, got %.2f", ports.ErrArgument, c.Duration)
	case c.TargetWidth <= 0 || c.TargetHeight <= 0:
		return fmt.Errorf("%w: invalid target size %dx%d", ports.ErrArgument, c.TargetWidth, c.TargetHeight)
	case c.TargetWidth%2 != 0 || c.TargetHeight%2 != 0:
		return fmt.Errorf("%w: target size %dx%d must be even", ports.ErrArgument, c.TargetWidth, c.TargetHeight)
	case c.MaxLanes < 0:
		return fmt.Errorf("%w: negative lane limit %d", ports.ErrArgument, c.MaxLanes)
	case c.Expansion.Left < 0 || c.Expansion.Right < 0 || c.Expansion.Top < 0:
		return fmt.Errorf("%w: negative expansion %+v", ports.ErrArgument, c.Expansion)
	case c.FrameRate <= 0:
		return fmt.Errorf("%w: frame rate must be positive, got %d", ports.ErrArgument, c.FrameRate)
	case c.Bitrate <= 0:
		return fmt.Errorf("%w: bitrate must be positive, got %d", ports.ErrArgument, c.Bitrate)
	}
	return nil
}

// End returns the exclusive end of the time window.
func (c Config) End() float64 {
	return c.From + c.Duration
}

// RunResult contains the outcome of a run for reporting.
type RunResult struct {
	RunID  string
	Status Status

	Input          string
	From           float64
	Duration       float64
	SourceDuration float64
	Geometry       ports.Geometry

	FramesDecoded int
	FramesSkipped int
	FramesRouted  int
	LastTimestamp float64 // source timestamp of the last routed frame

	Lanes   []pipeline.LaneReport
	Elapsed time.Duration
}

// Orchestrator coordinates the media components of a run.
type Orchestrator struct {
	media        ports.MediaFactory
	regions      region.Source
	previewStage pipeline.Stage[pipeline.PreviewInput, pipeline.PreviewResult]
	reportStage  pipeline.Stage[pipeline.ReportInput, pipeline.ReportResult]
	fs           ports.FileSystem
	sink         ports.DebugSink
	metrics      ports.Metrics
	logger       ports.Logger

	state   State
	onState func(State)
}

// New creates a new Orchestrator.
func New(
	media ports.MediaFactory,
	regions region.Source,
	previewStage pipeline.Stage[pipeline.PreviewInput, pipeline.PreviewResult],
	reportStage pipeline.Stage[pipeline.ReportInput, pipeline.ReportResult],
	fs ports.FileSystem,
	sink ports.DebugSink,
	metrics ports.Metrics,
	logger ports.Logger,
) *Orchestrator {
	return &Orchestrator{
		media:        media,
		regions:      regions,
		previewStage: previewStage,
		reportStage:  reportStage,
		fs:           fs,
		sink:         sink,
		metrics:      metrics,
		logger:       logger.WithComponent("orchestrator"),
	}
}

// OnStateChange registers a callback invoked on every state transition.
func (o *Orchestrator) OnStateChange(fn func(State)) {
	o.onState = fn
}

// State returns the current state.
func (o *Orchestrator) State() State {
	return o.state
}

func (o *Orchestrator) setState(s State) {
	o.state = s
	if o.onState != nil {
		o.onState(s)
	}
}

// lane is the runtime state of one output.
type lane struct {
	index   int
	name    string
	box     region.Box // as resolved
	crop    region.Box // expanded and clamped
	path    string
	encoder ports.LaneEncoder
	err     error
	frames  int
	saved   int
}

// session holds every native resource acquired during a run, in
// acquisition order.
type session struct {
	decoder ports.Decoder
	router  ports.FrameRouter
	lanes   []*lane
	pending ports.Frame // source frame owned by the loop
}

func (s *session) releasePending() {
	if s.pending != nil {
		s.pending.Release()
		s.pending = nil
	}
}

// Run executes the run. It returns ports.ErrNoRegions together with a
// StatusNoRegions result when nothing had to be encoded.
func (o *Orchestrator) Run(ctx context.Context, cfg Config) (RunResult, error) {
	if err := cfg.Validate(); err != nil {
		return RunResult{Status: StatusFailed}, err
	}

	started := time.Now()
	result := RunResult{
		RunID:          uuid.NewString(),
		Status:         StatusCompleted,
		Input:          cfg.Input,
		From:           cfg.From,
		Duration:       cfg.Duration,
		SourceDuration: ports.DurationUnknown,
	}

	o.setState(StateInit)
	o.logger.Info(l10n.F("Processing %s (window %.1fs + %.1fs)", cfg.Input, cfg.From, cfg.Duration))

	sess := &session{}
	runErr := o.run(ctx, cfg, sess, &result)

	drainStart := time.Now()
	o.drain(sess)
	o.metrics.ObservePhase("drain", time.Since(drainStart).Seconds())

	if runErr != nil {
		result.Status = StatusFailed
		result.Lanes = o.baseReports(sess)
		result.Elapsed = time.Since(started)
		o.flushMetrics()
		if errors.Is(runErr, ports.ErrNoRegions) {
			result.Status = StatusNoRegions
		}
		return result, runErr
	}

	// lane files are final at this point, report on them even when interrupted
	reportStart := time.Now()
	report, err := o.reportStage.Execute(context.WithoutCancel(ctx), pipeline.ReportInput{Lanes: outcomes(sess)})
	if err == nil && len(report.Lanes) != len(sess.lanes) {
		err = fmt.Errorf("%d reports for %d lanes", len(report.Lanes), len(sess.lanes))
	}
	if err != nil {
		o.logger.Warn(l10n.F("Failed to build lane reports: %s", err))
		report.Lanes = o.baseReports(sess)
	}
	o.metrics.ObservePhase("report", time.Since(reportStart).Seconds())
	result.Lanes = report.Lanes

	o.saveDebugJSON(o.sink.SaveLanesJSON, result.Lanes)

	o.logger.Info(l10n.F("Completed %d of %d lanes", report.Written(), len(sess.lanes)))
	result.Elapsed = time.Since(started)
	o.flushMetrics()

	return result, nil
}

// run performs Seeking, Priming and Streaming. Every resource it acquires is
// recorded in sess so that drain can release it whatever happens here.
func (o *Orchestrator) run(ctx context.Context, cfg Config, sess *session, result *RunResult) error {
	// Seeking
	o.setState(StateSeeking)
	phase := time.Now()

	dec, err := o.media.OpenDecoder(cfg.Input)
	if err != nil {
		o.logger.Error(l10n.F("Failed to open source: %s", err))
		return fmt.Errorf("open source: %w", err)
	}
	sess.decoder = dec

	result.SourceDuration = dec.Duration()
	if result.SourceDuration == ports.DurationUnknown {
		o.logger.Info(l10n.T("Source duration unknown"))
	} else {
		o.logger.Info(l10n.F("Source duration: %.2fs", result.SourceDuration))
	}

	if cfg.From > 0 {
		o.logger.Debug(l10n.F("Seeking to %.2fs", cfg.From))
		if err := dec.Seek(cfg.From); err != nil {
			return fmt.Errorf("seek to %.2fs: %w", cfg.From, err)
		}
	}

	// Priming
	o.setState(StatePriming)
	first, err := o.readFrame(dec, result)
	if err == io.EOF {
		return fmt.Errorf("%w: no frame decoded at or after %.2fs", ports.ErrDecode, cfg.From)
	}
	if err != nil {
		return err
	}
	sess.pending = first

	geo := first.Geometry()
	result.Geometry = geo
	o.logger.Info(l10n.F("Source geometry: %dx%d %s", geo.Width, geo.Height, geo.PixelFormatName))

	lanes, err := o.resolveLanes(ctx, cfg, geo)
	if err != nil {
		return err
	}
	if len(lanes) == 0 {
		o.logger.Info(l10n.T("No regions resolved, nothing to do"))
		return ports.ErrNoRegions
	}
	sess.lanes = lanes
	o.saveDebugJSON(o.sink.SaveRegionsJSON, regionRecords(lanes))
	o.renderPreview(ctx, cfg, first, lanes)

	rects := make([]image.Rectangle, len(lanes))
	for i, l := range lanes {
		rects[i] = l.crop.Rect()
	}
	router, err := o.media.BuildRouter(ports.RouterSpec{
		Source:       geo,
		Regions:      rects,
		TargetWidth:  cfg.TargetWidth,
		TargetHeight: cfg.TargetHeight,
	})
	if err != nil {
		o.logger.Error(l10n.F("Failed to build frame router: %s", err))
		return fmt.Errorf("build router: %w", err)
	}
	sess.router = router

	if err := o.openEncoders(cfg, lanes); err != nil {
		return err
	}
	o.metrics.ObservePhase("open", time.Since(phase).Seconds())

	// Streaming
	o.setState(StateStreaming)
	phase = time.Now()
	defer func() { o.metrics.ObservePhase("stream", time.Since(phase).Seconds()) }()

	o.logger.Info(l10n.F("Streaming %d lanes", len(lanes)))
	end := cfg.End()

	for sess.pending != nil {
		if ctx.Err() != nil {
			result.Status = StatusInterrupted
			o.logger.Warn(l10n.F("Interrupted at %.2fs", sess.pending.Timestamp()))
			return nil
		}

		ts := sess.pending.Timestamp()
		if ts >= end {
			o.logger.Info(l10n.F("Window end reached at %.2fs", ts))
			return nil
		}

		if ts < cfg.From {
			result.FramesSkipped++
			o.metrics.FrameSkipped()
		} else {
			if err := o.route(cfg, sess, ts); err != nil {
				return err
			}
			result.FramesRouted++
			result.LastTimestamp = ts
		}
		sess.releasePending()

		next, err := o.readFrame(dec, result)
		if err == io.EOF {
			o.logger.Info(l10n.F("Source ended at %.2fs", result.LastTimestamp))
			return nil
		}
		if err != nil {
			return err
		}
		sess.pending = next
	}
	return nil
}

func (o *Orchestrator) readFrame(dec ports.Decoder, result *RunResult) (ports.Frame, error) {
	f, err := dec.ReadFrame()
	if err == io.EOF {
		return nil, io.EOF
	}
	if err != nil {
		o.logger.Error(l10n.F("Failed to decode source: %s", err))
		return nil, fmt.Errorf("read frame: %w", err)
	}
	result.FramesDecoded++
	o.metrics.FrameDecoded()
	return f, nil
}

// resolveLanes loads the regions, drops unusable ones, expands and clamps
// the rest and applies the lane limit.
func (o *Orchestrator) resolveLanes(ctx context.Context, cfg Config, geo ports.Geometry) ([]*lane, error) {
	boxes, err := o.regions.Regions(ctx)
	if err != nil {
		o.logger.Error(l10n.F("Failed to load regions: %s", err))
		return nil, fmt.Errorf("resolve regions: %w", err)
	}

	var lanes []*lane
	for _, b := range boxes {
		if !b.Valid() {
			o.logger.Warn(l10n.F("Dropping invalid region %s", b))
			continue
		}

		crop := b.Expand(cfg.Expansion)
		if cfg.ClampRegions {
			clamped, changed := crop.Clamp(geo.Width, geo.Height)
			if !clamped.Valid() {
				o.logger.Warn(l10n.F("Region %s lies outside the frame, dropped", b))
				continue
			}
			if changed {
				o.logger.Debug(l10n.F("Region %s clamped to %s", crop, clamped))
			}
			crop = clamped
		}

		lanes = append(lanes, &lane{box: b, crop: crop})
	}

	if cfg.MaxLanes > 0 && len(lanes) > cfg.MaxLanes {
		o.logger.Info(l10n.F("Limiting lanes to %d", cfg.MaxLanes))
		lanes = lanes[:cfg.MaxLanes]
	}

	names := laneNames(lanes)
	for i, l := range lanes {
		l.index = i
		l.name = names[i]
		l.path = filepath.Join(cfg.OutputDir, region.LaneFileName(l.name))
	}

	o.logger.Info(l10n.F("Resolved %d regions", len(lanes)))
	return lanes, nil
}

// openEncoders opens one encoder per lane. A lane that fails is disabled
// unless StrictLanes is set; the run fails when no lane could be opened.
func (o *Orchestrator) openEncoders(cfg Config, lanes []*lane) error {
	if err := o.fs.MkdirAll(cfg.OutputDir); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}

	opts := ports.EncoderOptions{
		Width:     cfg.TargetWidth,
		Height:    cfg.TargetHeight,
		FrameRate: cfg.FrameRate,
		Bitrate:   cfg.Bitrate,
		Codec:     cfg.Codec,
		Preset:    cfg.Preset,
	}

	var failures []error
	for _, l := range lanes {
		enc, err := o.media.OpenEncoder(l.path, opts)
		if err != nil {
			l.err = err
			o.metrics.LaneFailed(l.name)
			o.logger.Warn(l10n.F("Lane %d (%s) disabled: %s", l.index, l.name, err))
			failures = append(failures, fmt.Errorf("lane %d (%s): %w", l.index, l.name, err))
			if cfg.StrictLanes {
				return errors.Join(failures...)
			}
			continue
		}
		l.encoder = enc
		o.logger.Info(l10n.F("Lane %d: %s -> %s", l.index, l.crop, l.path))
	}

	if len(failures) == len(lanes) {
		return errors.Join(failures...)
	}
	return nil
}

// route pushes the pending source frame through the router and hands every
// produced lane frame to its encoder. Lane frames are always released.
func (o *Orchestrator) route(cfg Config, sess *session, ts float64) error {
	if err := sess.router.Submit(sess.pending); err != nil {
		return fmt.Errorf("submit frame at %.2fs: %w", ts, err)
	}
	outs, err := sess.router.Collect()
	if err != nil {
		return fmt.Errorf("collect frames at %.2fs: %w", ts, err)
	}

	var firstErr error
	for i, out := range outs {
		if out == nil {
			continue
		}
		l := sess.lanes[i]
		if l.encoder == nil || firstErr != nil {
			out.Release()
			continue
		}

		if o.sink.Enabled() && l.saved < cfg.DebugLaneFrames {
			if img, err := out.Image(); err == nil {
				if err := o.sink.SaveLaneFrame(l.index, l.saved, img); err != nil {
					o.logger.Warn(l10n.F("Failed to write debug output: %s", err))
				}
			}
			l.saved++
		}

		err := l.encoder.PutFrame(ts, out)
		out.Release()
		if err != nil {
			firstErr = fmt.Errorf("lane %d (%s): encode frame at %.2fs: %w", l.index, l.name, ts, err)
			continue
		}
		l.frames++
		o.metrics.LaneFrame(l.name)
	}
	return firstErr
}

// drain releases everything in sess in reverse acquisition order.
func (o *Orchestrator) drain(sess *session) {
	o.setState(StateDraining)

	sess.releasePending()

	for i := len(sess.lanes) - 1; i >= 0; i-- {
		l := sess.lanes[i]
		if l.encoder == nil {
			continue
		}
		err := l.encoder.PutFrame(0, nil)
		if cerr := l.encoder.Close(); cerr != nil {
			err = errors.Join(err, cerr)
		}
		if err != nil {
			l.err = fmt.Errorf("finalize %s: %w", l.path, err)
			o.metrics.LaneFailed(l.name)
			o.logger.Warn(l10n.F("Failed to finalize %s: %s", l.path, err))
			continue
		}
		o.logger.Debug(l10n.F("Wrote %s: %d frames", l.path, l.frames))
	}

	if sess.router != nil {
		if err := sess.router.Close(); err != nil {
			o.logger.Warn(l10n.F("Failed to close frame router: %s", err))
		}
	}
	if sess.decoder != nil {
		if err := sess.decoder.Close(); err != nil {
			o.logger.Warn(l10n.F("Failed to close source: %s", err))
		}
	}

	o.setState(StateClosed)
}

func (o *Orchestrator) renderPreview(ctx context.Context, cfg Config, f ports.Frame, lanes []*lane) {
	if !o.sink.Enabled() || o.previewStage == nil {
		return
	}
	img, err := f.Image()
	if err != nil {
		o.logger.Warn(l10n.F("Failed to render preview: %s", err))
		return
	}

	input := pipeline.PreviewInput{Frame: img, MaxSide: cfg.PreviewMaxSide}
	for _, l := range lanes {
		input.Regions = append(input.Regions, l.box)
		input.Crops = append(input.Crops, l.crop)
	}
	preview, err := o.previewStage.Execute(ctx, input)
	if err != nil {
		o.logger.Warn(l10n.F("Failed to render preview: %s", err))
		return
	}
	if err := o.sink.SavePreview(preview.Image); err != nil {
		o.logger.Warn(l10n.F("Failed to write debug output: %s", err))
	}
}

func (o *Orchestrator) saveDebugJSON(save func([]byte) error, v any) {
	if !o.sink.Enabled() {
		return
	}
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return
	}
	if err := save(data); err != nil {
		o.logger.Warn(l10n.F("Failed to write debug output: %s", err))
	}
}

func (o *Orchestrator) flushMetrics() {
	if err := o.metrics.Flush(); err != nil {
		o.logger.Warn(l10n.F("Failed to write metrics: %s", err))
	}
}

// baseReports describes the lanes without inspecting any file.
func (o *Orchestrator) baseReports(sess *session) []pipeline.LaneReport {
	reports := make([]pipeline.LaneReport, 0, len(sess.lanes))
	for _, oc := range outcomes(sess) {
		rep := pipeline.LaneReport{
			Index:         oc.Index,
			Name:          oc.Name,
			Path:          oc.Path,
			Region:        oc.Region,
			Crop:          oc.Crop,
			Status:        pipeline.LaneWritten,
			Frames:        oc.Stats.FramesIn,
			SourceStart:   oc.Stats.FirstTimestamp,
			LastTimestamp: oc.Stats.LastTimestamp,
			Bytes:         oc.Stats.BytesOut,
		}
		switch {
		case oc.Err != nil:
			rep.Status = pipeline.LaneFailed
			rep.Error = oc.Err.Error()
		case oc.Stats.FramesIn == 0:
			rep.Status = pipeline.LaneEmpty
		}
		reports = append(reports, rep)
	}
	return reports
}

func outcomes(sess *session) []pipeline.LaneOutcome {
	out := make([]pipeline.LaneOutcome, len(sess.lanes))
	for i, l := range sess.lanes {
		out[i] = pipeline.LaneOutcome{
			Index:  l.index,
			Name:   l.name,
			Region: l.box,
			Crop:   l.crop,
			Path:   l.path,
			Err:    l.err,
		}
		if l.encoder != nil {
			out[i].Stats = l.encoder.Stats()
		}
	}
	return out
}
