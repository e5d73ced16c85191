package libav_test

import (
	"context"
	"errors"
	"io"
	"math"
	"path/filepath"
	"testing"

	"github.com/user/lanecrop/pkg/adapters/ggrenderer"
	"github.com/user/lanecrop/pkg/adapters/libav"
	"github.com/user/lanecrop/pkg/adapters/logger"
	"github.com/user/lanecrop/pkg/adapters/mp4probe"
	"github.com/user/lanecrop/pkg/adapters/nullsink"
	"github.com/user/lanecrop/pkg/adapters/osfilesystem"
	"github.com/user/lanecrop/pkg/mocks"
	"github.com/user/lanecrop/pkg/orchestrator"
	"github.com/user/lanecrop/pkg/pipeline"
	"github.com/user/lanecrop/pkg/ports"
	"github.com/user/lanecrop/pkg/region"
	"github.com/user/lanecrop/pkg/stages/preview"
	"github.com/user/lanecrop/pkg/stages/report"
)

func TestLaneCrop_EndToEnd(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping end-to-end encode in short mode")
	}

	dir := t.TempDir()
	source := filepath.Join(dir, "source.mp4")
	if err := libav.WriteTestPattern(source, 1280, 720, 25, 16, logger.NewNoop()); err != nil {
		if errors.Is(err, ports.ErrEncoderOpen) {
			t.Skipf("no usable H.264 encoder: %v", err)
		}
		t.Fatalf("write test pattern: %v", err)
	}

	log := mocks.NewLogger()
	fs := osfilesystem.New()
	orch := orchestrator.New(
		libav.NewFactory(log),
		region.StaticSource{region.Default()},
		preview.NewStage(ggrenderer.New(), preview.DefaultTheme(), log),
		report.NewStage(mp4probe.NewProber(), fs, log, 1),
		fs,
		nullsink.New(),
		mocks.NewMetrics(),
		log,
	)

	cfg := orchestrator.DefaultConfig()
	cfg.Input = source
	cfg.OutputDir = filepath.Join(dir, "lanes")
	cfg.From = 10
	cfg.Duration = 5

	result, err := orch.Run(context.Background(), cfg)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if result.Status != orchestrator.StatusCompleted {
		t.Errorf("expected completed status, got %s", result.Status)
	}
	if len(result.Lanes) != 1 {
		t.Fatalf("expected 1 lane, got %d", len(result.Lanes))
	}

	lane := result.Lanes[0]
	if filepath.Base(lane.Path) != "crop-person-300_400.mp4" {
		t.Errorf("unexpected lane file %s", lane.Path)
	}
	if lane.Status != pipeline.LaneWritten {
		t.Fatalf("expected written lane, got %s (%s)", lane.Status, lane.Error)
	}
	if lane.Frames < 124 || lane.Frames > 126 {
		t.Errorf("expected about 125 frames, got %d", lane.Frames)
	}

	rep, err := mp4probe.ProbeFile(lane.Path)
	if err != nil {
		t.Fatalf("probe lane file: %v", err)
	}
	if rep.Width != 320 || rep.Height != 240 || rep.Codec != "h264" {
		t.Errorf("unexpected track: %s %dx%d", rep.Codec, rep.Width, rep.Height)
	}
	if rep.Samples < 124 || rep.Samples > 126 {
		t.Errorf("expected about 125 samples, got %d", rep.Samples)
	}
	if rep.Keyframes < 5 {
		t.Errorf("expected a keyframe every second, got %d", rep.Keyframes)
	}

	// Presentation times as a player sees them, edit lists applied.
	d, err := libav.OpenDecoder(lane.Path, logger.NewNoop())
	if err != nil {
		t.Fatalf("open lane file: %v", err)
	}
	defer d.Close()

	var stamps []float64
	for {
		f, err := d.ReadFrame()
		if err == io.EOF {
			break
		}
		if err != nil {
			t.Fatalf("decode lane frame %d: %v", len(stamps), err)
		}
		stamps = append(stamps, f.Timestamp())
		f.Release()
	}
	if len(stamps) < 124 {
		t.Fatalf("expected about 125 decoded lane frames, got %d", len(stamps))
	}
	if math.Abs(stamps[0]) > 1e-6 {
		t.Errorf("expected the lane to start at 0, got %f", stamps[0])
	}
	if last := stamps[len(stamps)-1]; last >= 5.04 {
		t.Errorf("expected last timestamp below 5.04, got %f", last)
	}
	for i := 1; i < len(stamps); i++ {
		if stamps[i] <= stamps[i-1] {
			t.Fatalf("lane timestamps not increasing at %d: %f <= %f", i, stamps[i], stamps[i-1])
		}
	}
}

func TestLaneCrop_NoRegions(t *testing.T) {
	dir := t.TempDir()
	source := filepath.Join(dir, "source.mp4")
	if err := libav.WriteTestPattern(source, 320, 240, 25, 1, logger.NewNoop()); err != nil {
		if errors.Is(err, ports.ErrEncoderOpen) {
			t.Skipf("no usable H.264 encoder: %v", err)
		}
		t.Fatalf("write test pattern: %v", err)
	}

	log := mocks.NewLogger()
	fs := osfilesystem.New()
	orch := orchestrator.New(
		libav.NewFactory(log),
		region.StaticSource{},
		nil,
		report.NewStage(nil, fs, log, 1),
		fs,
		nullsink.New(),
		mocks.NewMetrics(),
		log,
	)

	cfg := orchestrator.DefaultConfig()
	cfg.Input = source
	cfg.OutputDir = filepath.Join(dir, "lanes")
	cfg.From = 0

	result, err := orch.Run(context.Background(), cfg)
	if !errors.Is(err, ports.ErrNoRegions) {
		t.Fatalf("expected ErrNoRegions, got %v", err)
	}
	if result.Status != orchestrator.StatusNoRegions {
		t.Errorf("expected no_regions status, got %s", result.Status)
	}
	if exists, _ := fs.Exists(cfg.OutputDir); exists {
		t.Error("expected no output directory to be created")
	}
}
