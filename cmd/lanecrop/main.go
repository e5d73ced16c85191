// Package main provides the CLI entry point for lanecrop.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"runtime"
	"syscall"

	"github.com/ideamans/go-l10n"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/urfave/cli/v2"

	"github.com/user/lanecrop/pkg/adapters/filesink"
	"github.com/user/lanecrop/pkg/adapters/ggrenderer"
	"github.com/user/lanecrop/pkg/adapters/libav"
	"github.com/user/lanecrop/pkg/adapters/logger"
	"github.com/user/lanecrop/pkg/adapters/mp4probe"
	"github.com/user/lanecrop/pkg/adapters/nullsink"
	"github.com/user/lanecrop/pkg/adapters/osfilesystem"
	"github.com/user/lanecrop/pkg/adapters/promfile"
	"github.com/user/lanecrop/pkg/config"
	"github.com/user/lanecrop/pkg/orchestrator"
	"github.com/user/lanecrop/pkg/ports"
	"github.com/user/lanecrop/pkg/stages/preview"
	"github.com/user/lanecrop/pkg/stages/report"
	"github.com/user/lanecrop/pkg/summarizer"
)

var version = "dev"

// Flag categories
const (
	catRegions = "Regions"
	catWindow  = "Time Window"
	catLanes   = "Lanes and Encoding"
	catOutput  = "Output"
	catDebug   = "Debug"
	catLogging = "Logging"
	catInspect = "Inspection"
)

const (
	exitOK      = 0
	exitFailure = 1
	exitUsage   = 2
)

func init() {
	// -h is the lane height and -v the verbose switch
	cli.HelpFlag = &cli.BoolFlag{Name: "help", Usage: l10n.T("Show help")}
	cli.VersionFlag = &cli.BoolFlag{Name: "version", Usage: l10n.T("Print the version")}
}

func main() {
	os.Exit(run(os.Args, os.Stdout, os.Stderr))
}

// run executes the CLI and maps the outcome to an exit code.
func run(args []string, stdout, stderr io.Writer) int {
	app := newApp(stdout, stderr)
	args, err := reorderArgs(args, app.Flags, app.Commands)
	if err == nil {
		err = app.Run(args)
	}

	code := exitCode(err)
	if code != exitOK {
		fmt.Fprintln(stderr, l10n.F("Error: %s", err))
	}
	if code == exitUsage {
		fmt.Fprintln(stderr, l10n.T("Run 'lanecrop --help' for usage."))
	}
	return code
}

// exitCode maps a run error to the process status. A run that resolved no
// regions is a normal completion: no lanes were asked for, so none were
// written.
func exitCode(err error) int {
	switch {
	case err == nil, errors.Is(err, ports.ErrNoRegions):
		return exitOK
	case errors.Is(err, ports.ErrArgument):
		return exitUsage
	default:
		return exitFailure
	}
}

func newApp(stdout, stderr io.Writer) *cli.App {
	return &cli.App{
		Name:      "lanecrop",
		Usage:     l10n.T("Crop regions of a video into separate MP4 lanes"),
		UsageText: "lanecrop [options] <input>\nlanecrop inspect [--json] <file>...",
		Description: l10n.T("lanecrop decodes a time window of a video, crops every region " +
			"found in a region file, scales it to a fixed size and writes one H.264 MP4 per region."),
		Version:         version,
		Writer:          stdout,
		ErrWriter:       stderr,
		HideHelpCommand: true,
		Flags:           cropFlags(),
		Action:          cropAction,
		Commands:        []*cli.Command{inspectCommand()},
		OnUsageError: func(c *cli.Context, err error, isSubcommand bool) error {
			return fmt.Errorf("%w: %v", ports.ErrArgument, err)
		},
	}
}

func cropFlags() []cli.Flag {
	def := config.Defaults()
	return []cli.Flag{
		// Regions
		&cli.StringFlag{Name: "b", Usage: l10n.T("Region file, one 'x1 y1 x2 y2 score class' per line"), Category: l10n.T(catRegions)},
		&cli.Float64Flag{Name: "ext_left", Value: def.ExtLeft, Usage: l10n.T("Left margin as a ratio of the region width"), Category: l10n.T(catRegions)},
		&cli.Float64Flag{Name: "ext_right", Value: def.ExtRight, Usage: l10n.T("Right margin as a ratio of the region width"), Category: l10n.T(catRegions)},
		&cli.Float64Flag{Name: "ext_top", Value: def.ExtTop, Usage: l10n.T("Top margin as a ratio of the region height"), Category: l10n.T(catRegions)},
		&cli.BoolFlag{Name: "no-clamp", Usage: l10n.T("Do not clamp expanded regions to the frame"), Category: l10n.T(catRegions)},

		// Time window
		&cli.Float64Flag{Name: "f", Value: def.From, Usage: l10n.T("Start time in seconds"), Category: l10n.T(catWindow)},
		&cli.Float64Flag{Name: "d", Value: def.Duration, Usage: l10n.T("Duration in seconds"), Category: l10n.T(catWindow)},

		// Lanes and encoding
		&cli.IntFlag{Name: "w", Value: def.TargetWidth, Usage: l10n.T("Lane width in pixels"), Category: l10n.T(catLanes)},
		&cli.IntFlag{Name: "h", Value: def.TargetHeight, Usage: l10n.T("Lane height in pixels"), Category: l10n.T(catLanes)},
		&cli.IntFlag{Name: "N", Usage: l10n.T("Maximum number of lanes (0 = no limit)"), Category: l10n.T(catLanes)},
		&cli.BoolFlag{Name: "strict-lanes", Usage: l10n.T("Abort when any lane encoder cannot be opened"), Category: l10n.T(catLanes)},
		&cli.IntFlag{Name: "frame-rate", Value: def.FrameRate, Usage: l10n.T("Lane frame rate and keyframe interval"), Category: l10n.T(catLanes)},
		&cli.IntFlag{Name: "bitrate", Value: def.Bitrate, Usage: l10n.T("Lane bitrate in bits per second"), Category: l10n.T(catLanes)},
		&cli.StringFlag{Name: "preset", Value: def.Preset, Usage: l10n.T("Encoder speed preset"), Category: l10n.T(catLanes)},
		&cli.StringFlag{Name: "codec", Usage: l10n.T("Encoder name (default: libx264 or the first H.264 encoder)"), Category: l10n.T(catLanes)},

		// Output
		&cli.StringFlag{Name: "output-dir", Aliases: []string{"o"}, Value: def.OutputDir, Usage: l10n.T("Directory for lane files"), Category: l10n.T(catOutput)},
		&cli.StringFlag{Name: "config", Usage: l10n.T("YAML configuration file"), Category: l10n.T(catOutput)},
		&cli.StringFlag{Name: "summary", Usage: l10n.T("Output execution summary to file (Markdown format)"), Category: l10n.T(catOutput)},
		&cli.StringFlag{Name: "metrics-file", Usage: l10n.T("Write Prometheus metrics to a textfile"), Category: l10n.T(catOutput)},

		// Debug
		&cli.BoolFlag{Name: "debug", Usage: l10n.T("Enable debug output"), Category: l10n.T(catDebug)},
		&cli.StringFlag{Name: "debug-dir", Value: def.DebugDir, Usage: l10n.T("Directory for debug output"), Category: l10n.T(catDebug)},

		// Logging
		&cli.BoolFlag{Name: "v", Usage: l10n.T("Verbose output (same as --log-level debug)"), Category: l10n.T(catLogging)},
		&cli.StringFlag{Name: "log-level", Value: def.LogLevel, Usage: l10n.T("Log level (debug, info, warn, error)"), Category: l10n.T(catLogging)},
		&cli.BoolFlag{Name: "quiet", Usage: l10n.T("Suppress all log output"), Category: l10n.T(catLogging)},
	}
}

// buildConfig layers the config file and the explicitly set flags over the
// defaults.
func buildConfig(c *cli.Context) (config.Config, error) {
	cfg := config.Defaults()
	if path := c.String("config"); path != "" {
		loaded, err := config.LoadFromFile(path)
		if err != nil {
			return cfg, err
		}
		cfg = loaded
	}

	if c.IsSet("b") {
		cfg.RegionsFile = c.String("b")
	}
	if c.IsSet("ext_left") {
		cfg.ExtLeft = c.Float64("ext_left")
	}
	if c.IsSet("ext_right") {
		cfg.ExtRight = c.Float64("ext_right")
	}
	if c.IsSet("ext_top") {
		cfg.ExtTop = c.Float64("ext_top")
	}
	if c.Bool("no-clamp") {
		cfg.ClampRegions = false
	}

	if c.IsSet("f") {
		cfg.From = c.Float64("f")
	}
	if c.IsSet("d") {
		cfg.Duration = c.Float64("d")
	}

	if c.IsSet("w") {
		cfg.TargetWidth = c.Int("w")
	}
	if c.IsSet("h") {
		cfg.TargetHeight = c.Int("h")
	}
	if c.IsSet("N") {
		cfg.MaxLanes = c.Int("N")
	}
	if c.Bool("strict-lanes") {
		cfg.StrictLanes = true
	}
	if c.IsSet("frame-rate") {
		cfg.FrameRate = c.Int("frame-rate")
	}
	if c.IsSet("bitrate") {
		cfg.Bitrate = c.Int("bitrate")
	}
	if c.IsSet("preset") {
		cfg.Preset = c.String("preset")
	}
	if c.IsSet("codec") {
		cfg.Codec = c.String("codec")
	}

	if c.IsSet("output-dir") {
		cfg.OutputDir = c.String("output-dir")
	}
	if c.IsSet("summary") {
		cfg.Summary = c.String("summary")
	}
	if c.IsSet("metrics-file") {
		cfg.MetricsFile = c.String("metrics-file")
	}

	if c.Bool("debug") {
		cfg.Debug = true
	}
	if c.IsSet("debug-dir") {
		cfg.DebugDir = c.String("debug-dir")
	}

	if c.IsSet("log-level") {
		cfg.LogLevel = c.String("log-level")
	}
	if c.Bool("v") {
		cfg.LogLevel = "debug"
	}
	if c.Bool("quiet") {
		cfg.LogLevel = "quiet"
	}
	if _, err := ports.ParseLogLevel(cfg.LogLevel); err != nil {
		return cfg, err
	}

	return cfg, nil
}

// newLogger expects a level already accepted by buildConfig.
func newLogger(name string, stdout, stderr io.Writer) ports.Logger {
	level, _ := ports.ParseLogLevel(name)
	if level == ports.LevelQuiet {
		return logger.NewNoop()
	}
	if stdout == os.Stdout {
		return logger.NewConsole(level)
	}
	return logger.NewConsoleWithWriters(level, stdout, stderr)
}

// cropAction runs the lane crop on the single input argument.
func cropAction(c *cli.Context) error {
	if c.NArg() != 1 {
		return fmt.Errorf("%w: expected one input file, got %d arguments", ports.ErrArgument, c.NArg())
	}
	input := c.Args().First()

	cfg, err := buildConfig(c)
	if err != nil {
		return err
	}
	orchConfig := cfg.ToOrchestratorConfig(input)
	if err := orchConfig.Validate(); err != nil {
		return err
	}

	log := newLogger(cfg.LogLevel, c.App.Writer, c.App.ErrWriter)

	// Setup context with cancellation
	ctx, cancel := context.WithCancel(c.Context)
	defer cancel()

	// Handle signals
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)
	go func() {
		select {
		case <-sigCh:
			log.Warn(l10n.T("Interrupted, shutting down..."))
			cancel()
		case <-ctx.Done():
		}
	}()

	libav.Init(log, cfg.LogLevel == "debug")
	defer libav.Shutdown()

	// Create adapters
	fs := osfilesystem.New()
	renderer := ggrenderer.New()
	metrics := promfile.New(cfg.MetricsFile, prometheus.Labels{"input": filepath.Base(input)})

	// Create debug sink
	var sink ports.DebugSink
	if cfg.Debug {
		if err := fs.MkdirAll(cfg.DebugDir); err != nil {
			return fmt.Errorf("create debug directory: %w", err)
		}
		sink = filesink.New(cfg.DebugDir, fs, renderer)
	} else {
		sink = nullsink.New()
	}

	// Create stages
	previewStage := preview.NewStage(renderer, cfg.PreviewTheme(), log)
	reportStage := report.NewStage(mp4probe.NewProber(), fs, log, runtime.NumCPU())

	// Create orchestrator
	orch := orchestrator.New(
		libav.NewFactory(log),
		cfg.RegionSource(fs, log),
		previewStage,
		reportStage,
		fs,
		sink,
		metrics,
		log,
	)

	result, runErr := orch.Run(ctx, orchConfig)

	for _, lane := range result.Lanes {
		log.Info(l10n.F("Lane %s: %d frames, %.2fs", lane.Name, lane.Frames, lane.LastTimestamp))
	}

	if cfg.Summary != "" && result.RunID != "" {
		writer := summarizer.NewWriter(
			summarizer.NewMarkdownFormatter(
				summarizer.WithTranslator(l10n.T),
				summarizer.WithVersion(version),
			),
			fs,
		)
		if err := writer.Write(cfg.Summary, buildSummary(orchConfig, result)); err != nil {
			log.Warn(l10n.F("Failed to write summary: %s", err))
		} else {
			log.Info(l10n.F("Summary saved to %s", cfg.Summary))
		}
	}

	return runErr
}

// buildSummary converts a run result into a Summary.
func buildSummary(cfg orchestrator.Config, result orchestrator.RunResult) *summarizer.Summary {
	b := summarizer.NewBuilder().
		WithRun(result.RunID, string(result.Status)).
		WithInput(summarizer.InputInfo{
			Path:        result.Input,
			Duration:    result.SourceDuration,
			Width:       result.Geometry.Width,
			Height:      result.Geometry.Height,
			PixelFormat: result.Geometry.PixelFormatName,
		}).
		WithWindow(result.From, result.Duration).
		WithSettings(summarizer.Settings{
			TargetWidth:  cfg.TargetWidth,
			TargetHeight: cfg.TargetHeight,
			FrameRate:    cfg.FrameRate,
			Bitrate:      cfg.Bitrate,
			Codec:        cfg.Codec,
			Preset:       cfg.Preset,
			ExtLeft:      cfg.Expansion.Left,
			ExtRight:     cfg.Expansion.Right,
			ExtTop:       cfg.Expansion.Top,
			MaxLanes:     cfg.MaxLanes,
		}).
		WithProcessing(summarizer.ProcessingInfo{
			FramesDecoded: result.FramesDecoded,
			FramesSkipped: result.FramesSkipped,
			FramesRouted:  result.FramesRouted,
			Elapsed:       result.Elapsed,
		})

	for _, lane := range result.Lanes {
		info := summarizer.LaneInfo{
			Index:    lane.Index,
			Name:     lane.Name,
			Path:     lane.Path,
			Status:   string(lane.Status),
			Error:    lane.Error,
			Region:   lane.Region.String(),
			Crop:     lane.Crop.String(),
			Frames:   lane.Frames,
			Duration: lane.LastTimestamp,
			Bytes:    lane.Bytes,
		}
		if lane.Media != nil {
			info.Duration = lane.Media.Duration
		}
		b.AddLane(info)
	}

	return b.Build()
}

func inspectCommand() *cli.Command {
	return &cli.Command{
		Name:      "inspect",
		Usage:     l10n.T("Print the video track of MP4 files"),
		ArgsUsage: "<file>...",
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "json", Usage: l10n.T("Print one JSON object per file"), Category: l10n.T(catInspect)},
		},
		Action: inspectAction,
		OnUsageError: func(c *cli.Context, err error, isSubcommand bool) error {
			return fmt.Errorf("%w: %v", ports.ErrArgument, err)
		},
	}
}

// inspectAction probes every file argument. It keeps going after a failure
// and returns the joined errors.
func inspectAction(c *cli.Context) error {
	if c.NArg() == 0 {
		return fmt.Errorf("%w: no file to inspect", ports.ErrArgument)
	}

	out := c.App.Writer
	enc := json.NewEncoder(out)

	var errs []error
	for _, path := range c.Args().Slice() {
		rep, err := mp4probe.ProbeFile(path)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", path, err))
			continue
		}

		if c.Bool("json") {
			if err := enc.Encode(rep); err != nil {
				return err
			}
			continue
		}

		fmt.Fprintf(out, "%s\n", path)
		fmt.Fprintf(out, "  %s: %s %dx%d\n", l10n.T("Codec"), rep.Codec, rep.Width, rep.Height)
		fmt.Fprintf(out, "  %s: %d (%d %s)\n", l10n.T("Frames"), rep.Samples, rep.Keyframes, l10n.T("keyframes"))
		fmt.Fprintf(out, "  %s: %.3f s .. %.3f s\n", l10n.T("Timestamps"), rep.FirstTimestamp, rep.LastTimestamp)
		fmt.Fprintf(out, "  %s: %.3f s, %.2f fps\n", l10n.T("Duration"), rep.Duration, rep.FrameRate())
	}

	return errors.Join(errs...)
}
