// Package preview implements the debug preview stage: the first routed
// source frame with every region and its crop drawn on top.
package preview

import (
	"context"
	"fmt"
	"image"
	"image/color"

	"github.com/user/lanecrop/pkg/pipeline"
	"github.com/user/lanecrop/pkg/ports"
	"github.com/user/lanecrop/pkg/region"
)

// Theme holds the overlay colours.
type Theme struct {
	RegionColor color.Color
	CropColor   color.Color
	LabelColor  color.Color
	TagColor    color.Color // caption background, nil draws no box
	StrokeWidth float64
	FontSize    float64
	FontPath    string
}

// DefaultTheme returns the overlay colours used by the CLI.
func DefaultTheme() Theme {
	return Theme{
		RegionColor: color.RGBA{R: 0x2e, G: 0xcc, B: 0x71, A: 0xff},
		CropColor:   color.RGBA{R: 0xf3, G: 0x9c, B: 0x12, A: 0xff},
		LabelColor:  color.White,
		TagColor:    color.RGBA{A: 0xb0},
		StrokeWidth: 2,
		FontSize:    14,
	}
}

type Stage struct {
	renderer ports.Renderer
	theme    Theme
	logger   ports.Logger
}

func NewStage(renderer ports.Renderer, theme Theme, logger ports.Logger) *Stage {
	return &Stage{
		renderer: renderer,
		theme:    theme,
		logger:   logger.WithComponent("preview"),
	}
}

// Execute draws each crop, then its region and caption, over the frame
// scaled down to input.MaxSide.
func (s *Stage) Execute(ctx context.Context, input pipeline.PreviewInput) (pipeline.PreviewResult, error) {
	if input.Frame == nil {
		return pipeline.PreviewResult{}, fmt.Errorf("preview: no frame")
	}
	if len(input.Crops) != 0 && len(input.Crops) != len(input.Regions) {
		return pipeline.PreviewResult{}, fmt.Errorf("preview: %d crops for %d regions", len(input.Crops), len(input.Regions))
	}

	bounds := input.Frame.Bounds()
	scale := fitScale(bounds.Dx(), bounds.Dy(), input.MaxSide)
	width, height := scaled(bounds.Dx(), scale), scaled(bounds.Dy(), scale)
	canvas := s.renderer.FrameCanvas(input.Frame, width, height)

	style := ports.TagStyle{
		FontSize:   s.theme.FontSize,
		FontPath:   s.theme.FontPath,
		Text:       s.theme.LabelColor,
		Background: s.theme.TagColor,
	}

	for i, box := range input.Regions {
		if len(input.Crops) > 0 {
			canvas.Outline(scaleRect(input.Crops[i].Rect(), scale), s.theme.CropColor, s.theme.StrokeWidth)
		}
		r := scaleRect(box.Rect(), scale)
		canvas.Outline(r, s.theme.RegionColor, s.theme.StrokeWidth)

		// Caption above the region, or just inside it at the top edge.
		at := image.Pt(r.Min.X, r.Min.Y-int(2*s.theme.FontSize))
		if at.Y < 0 {
			at.Y = r.Min.Y
		}
		canvas.Tag(caption(i, box), at, style)
	}

	s.logger.Debug("Preview rendered at %dx%d with %d regions", width, height, len(input.Regions))
	return pipeline.PreviewResult{Image: canvas.Image()}, nil
}

// fitScale returns the factor that makes the longest side at most maxSide.
func fitScale(w, h, maxSide int) float64 {
	longest := w
	if h > longest {
		longest = h
	}
	if maxSide <= 0 || longest <= maxSide {
		return 1
	}
	return float64(maxSide) / float64(longest)
}

func scaled(v int, scale float64) int {
	return int(float64(v) * scale)
}

func scaleRect(r image.Rectangle, scale float64) image.Rectangle {
	if scale == 1 {
		return r
	}
	return image.Rect(scaled(r.Min.X, scale), scaled(r.Min.Y, scale), scaled(r.Max.X, scale), scaled(r.Max.Y, scale))
}

func caption(i int, b region.Box) string {
	if b.Label == "" {
		return fmt.Sprintf("#%d", i)
	}
	if b.Score > 0 {
		return fmt.Sprintf("#%d %s %.2f", i, b.Label, b.Score)
	}
	return fmt.Sprintf("#%d %s", i, b.Label)
}
