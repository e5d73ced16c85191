package orchestrator

import (
	"context"
	"errors"
	"image"
	"math"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/user/lanecrop/pkg/mocks"
	"github.com/user/lanecrop/pkg/pipeline"
	"github.com/user/lanecrop/pkg/ports"
	"github.com/user/lanecrop/pkg/region"
)

// sourceFrames returns 1280x720 frames at 25 fps for frame numbers
// [first, last).
func sourceFrames(first, last int) []*mocks.Frame {
	var frames []*mocks.Frame
	for i := first; i < last; i++ {
		frames = append(frames, mocks.NewFrame(1280, 720, float64(i)/25))
	}
	return frames
}

type harness struct {
	factory *mocks.MediaFactory
	fs      *mocks.FileSystem
	sink    *mocks.DebugSink
	metrics *mocks.Metrics
	log     *mocks.Logger

	reportInputs []pipeline.ReportInput
	previews     []pipeline.PreviewInput
}

func newHarness(frames []*mocks.Frame) *harness {
	return &harness{
		factory: mocks.NewMediaFactory(&mocks.Decoder{Frames: frames, DurationValue: 3600}),
		fs:      mocks.NewFileSystem(),
		sink:    mocks.NewDebugSink(false),
		metrics: mocks.NewMetrics(),
		log:     mocks.NewLogger(),
	}
}

func (h *harness) orchestrator(regions region.Source) *Orchestrator {
	preview := pipeline.StageFunc[pipeline.PreviewInput, pipeline.PreviewResult](
		func(ctx context.Context, in pipeline.PreviewInput) (pipeline.PreviewResult, error) {
			h.previews = append(h.previews, in)
			return pipeline.PreviewResult{Image: image.NewRGBA(image.Rect(0, 0, 4, 4))}, nil
		},
	)
	report := pipeline.StageFunc[pipeline.ReportInput, pipeline.ReportResult](
		func(ctx context.Context, in pipeline.ReportInput) (pipeline.ReportResult, error) {
			h.reportInputs = append(h.reportInputs, in)
			var out pipeline.ReportResult
			for _, l := range in.Lanes {
				status := pipeline.LaneWritten
				if l.Err != nil {
					status = pipeline.LaneFailed
				}
				out.Lanes = append(out.Lanes, pipeline.LaneReport{
					Index:  l.Index,
					Name:   l.Name,
					Path:   l.Path,
					Status: status,
					Frames: l.Stats.FramesIn,
				})
			}
			return out, nil
		},
	)
	return New(h.factory, regions, preview, report, h.fs, h.sink, h.metrics, h.log)
}

func testConfig() Config {
	cfg := DefaultConfig()
	cfg.Input = "classroom.mp4"
	cfg.OutputDir = "out"
	cfg.From = 10
	cfg.Duration = 5
	return cfg
}

func TestOrchestrator_Run(t *testing.T) {
	h := newHarness(sourceFrames(225, 500))
	orch := h.orchestrator(region.StaticSource{region.Default()})

	var states []State
	orch.OnStateChange(func(s State) { states = append(states, s) })

	result, err := orch.Run(context.Background(), testConfig())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if result.Status != StatusCompleted {
		t.Errorf("expected completed status, got %s", result.Status)
	}
	if result.RunID == "" {
		t.Error("expected a run ID")
	}
	if result.SourceDuration != 3600 {
		t.Errorf("expected source duration 3600, got %f", result.SourceDuration)
	}
	if result.Geometry.Width != 1280 || result.Geometry.Height != 720 {
		t.Errorf("unexpected geometry: %+v", result.Geometry)
	}

	// frames 225..375 are decoded, 225..249 precede the window, 375 ends it
	if result.FramesDecoded != 151 || result.FramesSkipped != 25 || result.FramesRouted != 125 {
		t.Errorf("unexpected counters: decoded=%d skipped=%d routed=%d",
			result.FramesDecoded, result.FramesSkipped, result.FramesRouted)
	}

	if got := h.factory.Decoder.SeekCalls; !reflect.DeepEqual(got, []float64{10}) {
		t.Errorf("expected one seek to 10, got %v", got)
	}

	wantStates := []State{StateInit, StateSeeking, StatePriming, StateStreaming, StateDraining, StateClosed}
	if !reflect.DeepEqual(states, wantStates) {
		t.Errorf("expected states %v, got %v", wantStates, states)
	}
	if orch.State() != StateClosed {
		t.Errorf("expected closed state, got %s", orch.State())
	}

	spec := h.factory.Router.Spec
	if len(spec.Regions) != 1 || spec.Regions[0] != image.Rect(180, 340, 820, 700) {
		t.Errorf("unexpected router regions: %v", spec.Regions)
	}
	if spec.TargetWidth != 320 || spec.TargetHeight != 240 {
		t.Errorf("unexpected target size %dx%d", spec.TargetWidth, spec.TargetHeight)
	}

	if len(h.factory.Encoders) != 1 {
		t.Fatalf("expected 1 encoder, got %d", len(h.factory.Encoders))
	}
	enc := h.factory.Encoders[0]
	if enc.Path != filepath.Join("out", "crop-person-300_400.mp4") {
		t.Errorf("unexpected lane path %s", enc.Path)
	}
	want := ports.EncoderOptions{Width: 320, Height: 240, FrameRate: 25, Bitrate: 50000, Preset: "ultrafast"}
	if enc.Opts != want {
		t.Errorf("expected options %+v, got %+v", want, enc.Opts)
	}

	rebased := enc.Rebased()
	if len(rebased) != 125 {
		t.Fatalf("expected 125 frames, got %d", len(rebased))
	}
	if rebased[0] != 0 {
		t.Errorf("expected first rebased timestamp 0, got %f", rebased[0])
	}
	if last := rebased[len(rebased)-1]; last >= 5.04 || math.Abs(last-4.96) > 1e-9 {
		t.Errorf("expected last rebased timestamp 4.96, got %f", last)
	}
	for i := 1; i < len(rebased); i++ {
		if rebased[i] <= rebased[i-1] {
			t.Fatalf("timestamps not increasing at %d: %f <= %f", i, rebased[i], rebased[i-1])
		}
	}
	if last := enc.Puts[len(enc.Puts)-1]; !last.Nil {
		t.Error("expected a flush before close")
	}
	if !enc.Closed {
		t.Error("expected encoder to be closed")
	}

	if len(result.Lanes) != 1 || result.Lanes[0].Frames != 125 || result.Lanes[0].Name != "person-300_400" {
		t.Errorf("unexpected lane reports: %+v", result.Lanes)
	}
	if exists, _ := h.fs.Exists("out"); !exists {
		t.Error("expected output directory to be created")
	}

	if h.metrics.Decoded != 151 || h.metrics.Skipped != 25 || h.metrics.LaneFrames["person-300_400"] != 125 {
		t.Errorf("unexpected metrics: %+v", h.metrics)
	}
	if !h.metrics.Flushed {
		t.Error("expected metrics to be flushed")
	}
}

func TestOrchestrator_Run_ReleasesEveryFrame(t *testing.T) {
	frames := sourceFrames(225, 500)
	h := newHarness(frames)
	orch := h.orchestrator(region.StaticSource{region.Default(), {X1: 0, Y1: 0, X2: 100, Y2: 100}})

	if _, err := orch.Run(context.Background(), testConfig()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	for i, f := range frames {
		want := 0
		if f.TS <= 15.0 {
			want = 1
		}
		if f.Releases != want {
			t.Fatalf("source frame %d (%.2fs): expected %d releases, got %d", i, f.TS, want, f.Releases)
		}
	}
	for n, batch := range h.factory.Router.Collected {
		for lane, f := range batch {
			if f.Releases != 1 {
				t.Fatalf("batch %d lane %d: expected 1 release, got %d", n, lane, f.Releases)
			}
		}
	}
}

func TestOrchestrator_Run_TeardownOrder(t *testing.T) {
	h := newHarness(sourceFrames(250, 300))
	orch := h.orchestrator(region.StaticSource{
		{X1: 300, Y1: 400, X2: 700, Y2: 700, Label: "person"},
		{X1: 10, Y1: 20, X2: 110, Y2: 220, Label: "chair"},
	})

	if _, err := orch.Run(context.Background(), testConfig()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := []string{
		"decoder.open",
		"router.build",
		"encoder.open:crop-person-300_400.mp4",
		"encoder.open:crop-chair-10_20.mp4",
		"encoder.close:crop-chair-10_20.mp4",
		"encoder.close:crop-person-300_400.mp4",
		"router.close",
		"decoder.close",
	}
	if got := h.factory.Events.List(); !reflect.DeepEqual(got, want) {
		t.Errorf("expected events\n%v\ngot\n%v", want, got)
	}
}

func TestOrchestrator_Run_NoRegions(t *testing.T) {
	frames := sourceFrames(250, 260)
	h := newHarness(frames)
	orch := h.orchestrator(region.StaticSource{})

	result, err := orch.Run(context.Background(), testConfig())
	if !errors.Is(err, ports.ErrNoRegions) {
		t.Fatalf("expected ErrNoRegions, got %v", err)
	}
	if result.Status != StatusNoRegions {
		t.Errorf("expected no_regions status, got %s", result.Status)
	}
	if len(h.factory.Encoders) != 0 {
		t.Errorf("expected no encoders, got %d", len(h.factory.Encoders))
	}
	if got := h.factory.Events.List(); !reflect.DeepEqual(got, []string{"decoder.open", "decoder.close"}) {
		t.Errorf("unexpected events %v", got)
	}
	if frames[0].Releases != 1 {
		t.Errorf("expected the priming frame to be released, got %d", frames[0].Releases)
	}
	if len(h.fs.Files()) != 0 {
		t.Errorf("expected no files, got %v", h.fs.Files())
	}
}

func TestOrchestrator_Run_DropsUnusableRegions(t *testing.T) {
	h := newHarness(sourceFrames(250, 260))
	orch := h.orchestrator(region.StaticSource{
		{X1: 50, Y1: 50, X2: 50, Y2: 80},                    // empty
		{X1: 2000, Y1: 10, X2: 2100, Y2: 100},               // outside the frame
		{X1: 1200, Y1: 600, X2: 1280, Y2: 720, Label: "tv"}, // clamped
	})

	if _, err := orch.Run(context.Background(), testConfig()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	regions := h.factory.Router.Spec.Regions
	if len(regions) != 1 {
		t.Fatalf("expected 1 region, got %v", regions)
	}
	// expanded to (1176,576)-(1304,720), clamped to the right edge
	if regions[0] != image.Rect(1176, 576, 1280, 720) {
		t.Errorf("unexpected clamped region %v", regions[0])
	}
	if h.factory.Encoders[0].Path != filepath.Join("out", "crop-tv-1200_600.mp4") {
		t.Errorf("expected lane named from the unexpanded corner, got %s", h.factory.Encoders[0].Path)
	}
	if n := len(h.log.Warnings()); n != 2 {
		t.Errorf("expected 2 warnings, got %d: %v", n, h.log.Warnings())
	}
}

func TestOrchestrator_Run_WithoutClamp(t *testing.T) {
	h := newHarness(sourceFrames(250, 260))
	orch := h.orchestrator(region.StaticSource{{X1: 0, Y1: 10, X2: 100, Y2: 110}})

	cfg := testConfig()
	cfg.ClampRegions = false
	if _, err := orch.Run(context.Background(), cfg); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if got := h.factory.Router.Spec.Regions[0]; got != image.Rect(-30, -10, 130, 110) {
		t.Errorf("expected unclamped region, got %v", got)
	}
}

func TestOrchestrator_Run_MaxLanes(t *testing.T) {
	h := newHarness(sourceFrames(250, 260))
	orch := h.orchestrator(region.StaticSource{
		{X1: 100, Y1: 100, X2: 200, Y2: 200},
		{X1: 300, Y1: 100, X2: 400, Y2: 200},
		{X1: 500, Y1: 100, X2: 600, Y2: 200},
	})

	cfg := testConfig()
	cfg.MaxLanes = 2
	result, err := orch.Run(context.Background(), cfg)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(h.factory.Encoders) != 2 || len(h.factory.Router.Spec.Regions) != 2 {
		t.Errorf("expected 2 lanes, got %d encoders and %d regions",
			len(h.factory.Encoders), len(h.factory.Router.Spec.Regions))
	}
	if len(result.Lanes) != 2 {
		t.Errorf("expected 2 lane reports, got %d", len(result.Lanes))
	}
}

func TestOrchestrator_Run_DuplicateLaneNames(t *testing.T) {
	h := newHarness(sourceFrames(250, 260))
	box := region.Box{X1: 100, Y1: 100, X2: 200, Y2: 200, Label: "person"}
	orch := h.orchestrator(region.StaticSource{box, box})

	if _, err := orch.Run(context.Background(), testConfig()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	got := []string{filepath.Base(h.factory.Encoders[0].Path), filepath.Base(h.factory.Encoders[1].Path)}
	want := []string{"crop-person-100_100.mp4", "crop-person-100_100-2.mp4"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("expected %v, got %v", want, got)
	}
}

func TestOrchestrator_Run_LaneOpenFailureIsolated(t *testing.T) {
	h := newHarness(sourceFrames(250, 300))
	h.factory.OpenEncoderErr = map[string]error{
		"crop-chair-10_20.mp4": ports.ErrEncoderOpen,
	}
	orch := h.orchestrator(region.StaticSource{
		{X1: 300, Y1: 400, X2: 700, Y2: 700, Label: "person"},
		{X1: 10, Y1: 20, X2: 110, Y2: 220, Label: "chair"},
	})

	result, err := orch.Run(context.Background(), testConfig())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(h.factory.Encoders) != 1 {
		t.Fatalf("expected 1 open encoder, got %d", len(h.factory.Encoders))
	}
	if n := len(h.factory.Encoders[0].Rebased()); n != 50 {
		t.Errorf("expected the healthy lane to get 50 frames, got %d", n)
	}
	if len(h.factory.Router.Spec.Regions) != 2 {
		t.Errorf("expected the router to keep both lanes")
	}
	for n, batch := range h.factory.Router.Collected {
		if batch[1].Releases != 1 {
			t.Fatalf("batch %d: disabled lane frame not released", n)
		}
	}

	if result.Lanes[1].Status != pipeline.LaneFailed {
		t.Errorf("expected failed second lane, got %s", result.Lanes[1].Status)
	}
	if !reflect.DeepEqual(h.metrics.Failed, []string{"chair-10_20"}) {
		t.Errorf("expected failure metric for chair lane, got %v", h.metrics.Failed)
	}
}

func TestOrchestrator_Run_AllLanesFail(t *testing.T) {
	h := newHarness(sourceFrames(250, 300))
	h.factory.OpenEncoderErr = map[string]error{
		"crop-person-300_400.mp4": ports.ErrEncoderOpen,
	}
	orch := h.orchestrator(region.StaticSource{region.Default()})

	result, err := orch.Run(context.Background(), testConfig())
	if !errors.Is(err, ports.ErrEncoderOpen) {
		t.Fatalf("expected ErrEncoderOpen, got %v", err)
	}
	if result.Status != StatusFailed {
		t.Errorf("expected failed status, got %s", result.Status)
	}
	want := []string{"decoder.open", "router.build", "router.close", "decoder.close"}
	if got := h.factory.Events.List(); !reflect.DeepEqual(got, want) {
		t.Errorf("expected events %v, got %v", want, got)
	}
	if len(h.factory.Router.Submitted) != 0 {
		t.Error("expected no frame to be routed")
	}
}

func TestOrchestrator_Run_StrictLanes(t *testing.T) {
	h := newHarness(sourceFrames(250, 300))
	h.factory.OpenEncoderErr = map[string]error{
		"crop-chair-10_20.mp4": ports.ErrEncoderOpen,
	}
	orch := h.orchestrator(region.StaticSource{
		{X1: 300, Y1: 400, X2: 700, Y2: 700, Label: "person"},
		{X1: 10, Y1: 20, X2: 110, Y2: 220, Label: "chair"},
		{X1: 800, Y1: 20, X2: 900, Y2: 220, Label: "tv"},
	})

	cfg := testConfig()
	cfg.StrictLanes = true
	_, err := orch.Run(context.Background(), cfg)
	if !errors.Is(err, ports.ErrEncoderOpen) {
		t.Fatalf("expected ErrEncoderOpen, got %v", err)
	}

	want := []string{
		"decoder.open",
		"router.build",
		"encoder.open:crop-person-300_400.mp4",
		"encoder.close:crop-person-300_400.mp4",
		"router.close",
		"decoder.close",
	}
	if got := h.factory.Events.List(); !reflect.DeepEqual(got, want) {
		t.Errorf("expected events\n%v\ngot\n%v", want, got)
	}
}

func TestOrchestrator_Run_OpenError(t *testing.T) {
	h := newHarness(nil)
	h.factory.OpenDecoderErr = ports.ErrOpen
	orch := h.orchestrator(region.StaticSource{region.Default()})

	result, err := orch.Run(context.Background(), testConfig())
	if !errors.Is(err, ports.ErrOpen) {
		t.Fatalf("expected ErrOpen, got %v", err)
	}
	if result.Status != StatusFailed {
		t.Errorf("expected failed status, got %s", result.Status)
	}
	if len(h.factory.Events.List()) != 0 {
		t.Errorf("expected nothing to be opened, got %v", h.factory.Events.List())
	}
	if orch.State() != StateClosed {
		t.Errorf("expected closed state, got %s", orch.State())
	}
}

func TestOrchestrator_Run_NoFrameAfterSeek(t *testing.T) {
	h := newHarness(nil)
	orch := h.orchestrator(region.StaticSource{region.Default()})

	_, err := orch.Run(context.Background(), testConfig())
	if !errors.Is(err, ports.ErrDecode) {
		t.Fatalf("expected ErrDecode, got %v", err)
	}
	if !h.factory.Decoder.Closed {
		t.Error("expected decoder to be closed")
	}
}

func TestOrchestrator_Run_SeekError(t *testing.T) {
	h := newHarness(sourceFrames(250, 260))
	h.factory.Decoder.SeekErr = ports.ErrDecode
	orch := h.orchestrator(region.StaticSource{region.Default()})

	if _, err := orch.Run(context.Background(), testConfig()); !errors.Is(err, ports.ErrDecode) {
		t.Fatalf("expected ErrDecode, got %v", err)
	}
	if !h.factory.Decoder.Closed {
		t.Error("expected decoder to be closed")
	}
}

func TestOrchestrator_Run_NoSeekFromZero(t *testing.T) {
	h := newHarness(sourceFrames(0, 10))
	orch := h.orchestrator(region.StaticSource{region.Default()})

	cfg := testConfig()
	cfg.From = 0
	if _, err := orch.Run(context.Background(), cfg); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(h.factory.Decoder.SeekCalls) != 0 {
		t.Errorf("expected no seek, got %v", h.factory.Decoder.SeekCalls)
	}
}

func TestOrchestrator_Run_DecodeErrorMidStream(t *testing.T) {
	frames := sourceFrames(250, 300)
	h := newHarness(frames)
	h.factory.Decoder.ReadErr = ports.ErrDecode
	h.factory.Decoder.ReadErrAt = 20
	orch := h.orchestrator(region.StaticSource{region.Default()})

	_, err := orch.Run(context.Background(), testConfig())
	if !errors.Is(err, ports.ErrDecode) {
		t.Fatalf("expected ErrDecode, got %v", err)
	}

	enc := h.factory.Encoders[0]
	if !enc.Closed {
		t.Error("expected encoder to be closed on the abort path")
	}
	if n := len(enc.Rebased()); n != 20 {
		t.Errorf("expected 20 frames before the error, got %d", n)
	}
	want := []string{
		"decoder.open",
		"router.build",
		"encoder.open:crop-person-300_400.mp4",
		"encoder.close:crop-person-300_400.mp4",
		"router.close",
		"decoder.close",
	}
	if got := h.factory.Events.List(); !reflect.DeepEqual(got, want) {
		t.Errorf("expected events %v, got %v", want, got)
	}
	for i := 0; i < 20; i++ {
		if frames[i].Releases != 1 {
			t.Fatalf("frame %d released %d times", i, frames[i].Releases)
		}
	}
}

func TestOrchestrator_Run_TopologyError(t *testing.T) {
	h := newHarness(sourceFrames(250, 260))
	h.factory.BuildRouterErr = ports.ErrTopology
	orch := h.orchestrator(region.StaticSource{region.Default()})

	_, err := orch.Run(context.Background(), testConfig())
	if !errors.Is(err, ports.ErrTopology) {
		t.Fatalf("expected ErrTopology, got %v", err)
	}
	if len(h.factory.Encoders) != 0 {
		t.Error("expected no encoder to be opened")
	}
	if got := h.factory.Events.List(); !reflect.DeepEqual(got, []string{"decoder.open", "decoder.close"}) {
		t.Errorf("unexpected events %v", got)
	}
}

func TestOrchestrator_Run_EncodeError(t *testing.T) {
	h := newHarness(sourceFrames(250, 300))
	orch := h.orchestrator(region.StaticSource{region.Default()})
	orch.OnStateChange(func(s State) {
		if s == StateStreaming {
			h.factory.Encoders[0].PutErr = errors.New("encoder exploded")
		}
	})

	if _, err := orch.Run(context.Background(), testConfig()); err == nil {
		t.Fatal("expected error")
	}
	if !h.factory.Encoders[0].Closed {
		t.Error("expected encoder to be closed")
	}
	if h.factory.Router.Collected[0][0].Releases != 1 {
		t.Error("expected the lane frame to be released")
	}
}

func TestOrchestrator_Run_SourceEndsInsideWindow(t *testing.T) {
	h := newHarness(sourceFrames(250, 300))
	orch := h.orchestrator(region.StaticSource{region.Default()})

	result, err := orch.Run(context.Background(), testConfig())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.FramesRouted != 50 {
		t.Errorf("expected 50 routed frames, got %d", result.FramesRouted)
	}
	if math.Abs(result.LastTimestamp-11.96) > 1e-9 {
		t.Errorf("expected last timestamp 11.96, got %f", result.LastTimestamp)
	}
}

func TestOrchestrator_Run_AbsentLaneFrames(t *testing.T) {
	h := newHarness(sourceFrames(250, 275))
	h.factory.Router.Absent = map[int]bool{0: true}
	orch := h.orchestrator(region.StaticSource{
		{X1: 300, Y1: 400, X2: 700, Y2: 700, Label: "person"},
		{X1: 10, Y1: 20, X2: 110, Y2: 220, Label: "chair"},
	})

	result, err := orch.Run(context.Background(), testConfig())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n := len(h.factory.Encoders[0].Rebased()); n != 0 {
		t.Errorf("expected no frames in the absent lane, got %d", n)
	}
	if n := len(h.factory.Encoders[1].Rebased()); n != 25 {
		t.Errorf("expected 25 frames in the other lane, got %d", n)
	}
	if result.Lanes[0].Frames != 0 || result.Lanes[1].Frames != 25 {
		t.Errorf("unexpected lane frames: %+v", result.Lanes)
	}
}

func TestOrchestrator_Run_Interrupted(t *testing.T) {
	h := newHarness(sourceFrames(250, 300))
	orch := h.orchestrator(region.StaticSource{region.Default()})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	orch.OnStateChange(func(s State) {
		if s == StateStreaming {
			cancel()
		}
	})

	result, err := orch.Run(ctx, testConfig())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Status != StatusInterrupted {
		t.Errorf("expected interrupted status, got %s", result.Status)
	}
	if result.FramesRouted != 0 {
		t.Errorf("expected no routed frames, got %d", result.FramesRouted)
	}
	if !h.factory.Encoders[0].Closed || !h.factory.Router.Closed || !h.factory.Decoder.Closed {
		t.Error("expected every component to be closed")
	}
	if len(h.reportInputs) != 1 {
		t.Error("expected lane reports after an interrupt")
	}
}

func TestOrchestrator_Run_DebugOutput(t *testing.T) {
	h := newHarness(sourceFrames(250, 260))
	h.sink = mocks.NewDebugSink(true)
	orch := h.orchestrator(region.StaticSource{region.Default()})

	cfg := testConfig()
	cfg.DebugLaneFrames = 3
	if _, err := orch.Run(context.Background(), cfg); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(h.sink.RegionsJSON) == 0 {
		t.Error("expected regions JSON to be saved")
	}
	if len(h.sink.LanesJSON) == 0 {
		t.Error("expected lanes JSON to be saved")
	}
	if h.sink.Preview == nil {
		t.Error("expected preview to be saved")
	}
	if len(h.previews) != 1 || len(h.previews[0].Regions) != 1 || h.previews[0].MaxSide != cfg.PreviewMaxSide {
		t.Errorf("unexpected preview input: %+v", h.previews)
	}
	if n := len(h.sink.LaneFrames[0]); n != 3 {
		t.Errorf("expected 3 saved lane frames, got %d", n)
	}
}

func TestOrchestrator_Run_InvalidConfig(t *testing.T) {
	h := newHarness(sourceFrames(250, 260))
	orch := h.orchestrator(region.StaticSource{region.Default()})

	cfg := testConfig()
	cfg.Duration = 0
	_, err := orch.Run(context.Background(), cfg)
	if !errors.Is(err, ports.ErrArgument) {
		t.Fatalf("expected ErrArgument, got %v", err)
	}
	if len(h.factory.Events.List()) != 0 {
		t.Error("expected no I/O before validation")
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		valid  bool
	}{
		{"defaults", func(c *Config) {}, true},
		{"no input", func(c *Config) { c.Input = "" }, false},
		{"negative from", func(c *Config) { c.From = -1 }, false},
		{"zero duration", func(c *Config) { c.Duration = 0 }, false},
		{"zero width", func(c *Config) { c.TargetWidth = 0 }, false},
		{"odd height", func(c *Config) { c.TargetHeight = 241 }, false},
		{"negative lanes", func(c *Config) { c.MaxLanes = -1 }, false},
		{"negative expansion", func(c *Config) { c.Expansion.Top = -0.1 }, false},
		{"zero frame rate", func(c *Config) { c.FrameRate = 0 }, false},
		{"zero bitrate", func(c *Config) { c.Bitrate = 0 }, false},
		{"start at zero", func(c *Config) { c.From = 0 }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := testConfig()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.valid && err != nil {
				t.Errorf("expected valid config, got %v", err)
			}
			if !tt.valid && !errors.Is(err, ports.ErrArgument) {
				t.Errorf("expected ErrArgument, got %v", err)
			}
		})
	}
}

func TestState_String(t *testing.T) {
	if StateStreaming.String() != "streaming" || State(42).String() != "unknown" {
		t.Error("unexpected state names")
	}
}
