// Package config provides configuration loading and management.
package config

import (
	"fmt"
	"image/color"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/user/lanecrop/pkg/orchestrator"
	"github.com/user/lanecrop/pkg/ports"
	"github.com/user/lanecrop/pkg/region"
	"github.com/user/lanecrop/pkg/stages/preview"
)

// Config represents the full configuration file for lanecrop.
type Config struct {
	// Window
	From     float64 `yaml:"from"`
	Duration float64 `yaml:"duration"`

	// Lanes
	TargetWidth  int          `yaml:"target_width"`
	TargetHeight int          `yaml:"target_height"`
	MaxLanes     int          `yaml:"max_lanes"`
	ExtLeft      float64      `yaml:"ext_left"`
	ExtRight     float64      `yaml:"ext_right"`
	ExtTop       float64      `yaml:"ext_top"`
	ClampRegions bool         `yaml:"clamp_regions"`
	StrictLanes  bool         `yaml:"strict_lanes"`
	RegionsFile  string       `yaml:"regions_file"`
	DefaultBox   RegionConfig `yaml:"default_region"`

	// Encoding
	FrameRate int    `yaml:"frame_rate"`
	Bitrate   int    `yaml:"bitrate"`
	Preset    string `yaml:"preset"`
	Codec     string `yaml:"codec"`

	// Output
	OutputDir   string `yaml:"output_dir"`
	Summary     string `yaml:"summary"`
	MetricsFile string `yaml:"metrics_file"`
	LogLevel    string `yaml:"log_level"`

	// Debug
	Debug    bool          `yaml:"debug"`
	DebugDir string        `yaml:"debug_dir"`
	Preview  PreviewConfig `yaml:"preview"`
}

// RegionConfig is the region used when no region file is given.
type RegionConfig struct {
	X1    int    `yaml:"x1"`
	Y1    int    `yaml:"y1"`
	X2    int    `yaml:"x2"`
	Y2    int    `yaml:"y2"`
	Label string `yaml:"label"`
}

// PreviewConfig controls the debug preview image.
type PreviewConfig struct {
	MaxSide     int    `yaml:"max_side"`
	RegionColor string `yaml:"region_color"`
	CropColor   string `yaml:"crop_color"`
	LabelColor  string `yaml:"label_color"`
	FontPath    string `yaml:"font_path"`
}

// Defaults returns a Config with default values.
func Defaults() Config {
	def := region.Default()
	return Config{
		From:     60.0,
		Duration: 60.0,

		TargetWidth:  320,
		TargetHeight: 240,
		ExtLeft:      0.3,
		ExtRight:     0.3,
		ExtTop:       0.2,
		ClampRegions: true,
		DefaultBox: RegionConfig{
			X1: def.X1, Y1: def.Y1, X2: def.X2, Y2: def.Y2,
			Label: def.Label,
		},

		FrameRate: 25,
		Bitrate:   50000,
		Preset:    "ultrafast",

		OutputDir: ".",
		LogLevel:  "info",

		DebugDir: "./debug",
		Preview: PreviewConfig{
			MaxSide:     1280,
			RegionColor: "#2ecc71",
			CropColor:   "#f39c12",
			LabelColor:  "#ffffff",
		},
	}
}

// LoadFromFile loads configuration from a YAML file on top of the
// defaults. Parse errors are reported as ports.ErrArgument.
func LoadFromFile(path string) (Config, error) {
	cfg := Defaults()

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("%w: read config: %v", ports.ErrArgument, err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("%w: parse config %s: %v", ports.ErrArgument, path, err)
	}

	return cfg, nil
}

// Expansion returns the region margins.
func (c Config) Expansion() region.Expansion {
	return region.Expansion{Left: c.ExtLeft, Right: c.ExtRight, Top: c.ExtTop}
}

// DefaultRegion returns the configured fallback region.
func (c Config) DefaultRegion() region.Box {
	r := c.DefaultBox
	return region.Box{X1: r.X1, Y1: r.Y1, X2: r.X2, Y2: r.Y2, Label: r.Label, Score: 1}
}

// RegionSource returns the region file source when a file is configured,
// otherwise the default region.
func (c Config) RegionSource(fs ports.FileSystem, logger ports.Logger) region.Source {
	if c.RegionsFile != "" {
		return region.NewFileSource(c.RegionsFile, fs, logger)
	}
	return region.StaticSource{c.DefaultRegion()}
}

// PreviewTheme returns the overlay theme for the preview stage.
func (c Config) PreviewTheme() preview.Theme {
	theme := preview.DefaultTheme()
	if c.Preview.RegionColor != "" {
		theme.RegionColor = ParseColor(c.Preview.RegionColor)
	}
	if c.Preview.CropColor != "" {
		theme.CropColor = ParseColor(c.Preview.CropColor)
	}
	if c.Preview.LabelColor != "" {
		theme.LabelColor = ParseColor(c.Preview.LabelColor)
	}
	theme.FontPath = c.Preview.FontPath
	return theme
}

// ParseColor parses a "#rrggbb" hex color. Anything else yields black.
func ParseColor(hex string) color.Color {
	if len(hex) > 0 && hex[0] == '#' {
		hex = hex[1:]
	}
	if len(hex) != 6 {
		return color.Black
	}

	var rgb [3]uint8
	for i := range rgb {
		rgb[i] = hexValue(hex[2*i])<<4 | hexValue(hex[2*i+1])
	}
	return color.RGBA{R: rgb[0], G: rgb[1], B: rgb[2], A: 255}
}

func hexValue(c byte) uint8 {
	switch {
	case c >= '0' && c <= '9':
		return c - '0'
	case c >= 'a' && c <= 'f':
		return c - 'a' + 10
	case c >= 'A' && c <= 'F':
		return c - 'A' + 10
	default:
		return 0
	}
}

// ToOrchestratorConfig converts Config to orchestrator.Config for input.
func (c Config) ToOrchestratorConfig(input string) orchestrator.Config {
	cfg := orchestrator.DefaultConfig()

	cfg.Input = input
	cfg.OutputDir = c.OutputDir

	cfg.From = c.From
	cfg.Duration = c.Duration

	cfg.TargetWidth = c.TargetWidth
	cfg.TargetHeight = c.TargetHeight
	cfg.MaxLanes = c.MaxLanes
	cfg.Expansion = c.Expansion()
	cfg.ClampRegions = c.ClampRegions
	cfg.StrictLanes = c.StrictLanes

	cfg.FrameRate = c.FrameRate
	cfg.Bitrate = c.Bitrate
	cfg.Codec = c.Codec
	cfg.Preset = c.Preset

	if c.Preview.MaxSide > 0 {
		cfg.PreviewMaxSide = c.Preview.MaxSide
	}

	return cfg
}
