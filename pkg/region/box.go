// Package region loads, expands and names the rectangular regions that
// become output lanes.
package region

import (
	"fmt"
	"image"
	"math"
	"strings"
)

// Box is an integer rectangle in source pixel coordinates. X2 and Y2 are
// exclusive.
type Box struct {
	X1    int     `json:"x1"`
	Y1    int     `json:"y1"`
	X2    int     `json:"x2"`
	Y2    int     `json:"y2"`
	Label string  `json:"label,omitempty"`
	Score float64 `json:"score,omitempty"`
}

// Width returns X2-X1.
func (b Box) Width() int { return b.X2 - b.X1 }

// Height returns Y2-Y1.
func (b Box) Height() int { return b.Y2 - b.Y1 }

// Valid reports whether the box has a positive width and height.
func (b Box) Valid() bool {
	return b.X2 > b.X1 && b.Y2 > b.Y1
}

// Rect returns the box as an image.Rectangle.
func (b Box) Rect() image.Rectangle {
	return image.Rect(b.X1, b.Y1, b.X2, b.Y2)
}

func (b Box) String() string {
	if b.Label == "" {
		return fmt.Sprintf("(%d,%d)-(%d,%d)", b.X1, b.Y1, b.X2, b.Y2)
	}
	return fmt.Sprintf("%s (%d,%d)-(%d,%d)", b.Label, b.X1, b.Y1, b.X2, b.Y2)
}

// Key identifies the lane of a box: "<label>-<x1>_<y1>" or "<x1>_<y1>".
func (b Box) Key() string {
	if b.Label == "" {
		return fmt.Sprintf("%d_%d", b.X1, b.Y1)
	}
	label := strings.Map(func(r rune) rune {
		if r == ' ' || r == '/' || r == '\\' {
			return '_'
		}
		return r
	}, b.Label)
	return fmt.Sprintf("%s-%d_%d", label, b.X1, b.Y1)
}

// LaneFileName returns the file name of the lane called name, which is a
// Box key possibly carrying a "-N" duplicate suffix.
func LaneFileName(name string) string {
	return "crop-" + name + ".mp4"
}

// Expansion holds margin ratios added around a box. Left and Right are
// relative to the box width, Top to the box height. The bottom edge is
// never moved.
type Expansion struct {
	Left  float64 `json:"left"`
	Right float64 `json:"right"`
	Top   float64 `json:"top"`
}

// DefaultExpansion returns the 0.3/0.3/0.2 margins.
func DefaultExpansion() Expansion {
	return Expansion{Left: 0.3, Right: 0.3, Top: 0.2}
}

// Expand grows b by the margins in e. The result may leave the frame.
func (b Box) Expand(e Expansion) Box {
	w := float64(b.Width())
	h := float64(b.Height())
	out := b
	out.X1 -= int(math.Round(w * e.Left))
	out.X2 += int(math.Round(w * e.Right))
	out.Y1 -= int(math.Round(h * e.Top))
	return out
}

// Clamp restricts b to a width x height frame. The second result reports
// whether any edge moved.
func (b Box) Clamp(width, height int) (Box, bool) {
	out := b
	out.X1 = max(0, min(out.X1, width))
	out.Y1 = max(0, min(out.Y1, height))
	out.X2 = max(0, min(out.X2, width))
	out.Y2 = max(0, min(out.Y2, height))
	return out, out != b
}

// Default returns the region used when no region file is given.
func Default() Box {
	return Box{X1: 300, Y1: 400, X2: 700, Y2: 700, Label: Labels[0], Score: 1}
}
