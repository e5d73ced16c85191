package libav

import (
	"errors"
	"fmt"
	"strings"

	"github.com/user/lanecrop/pkg/ports"
)

// lanePixelFormat is the pixel format every lane is converted to before
// it reaches its sink.
const lanePixelFormat = "yuv420p"

type cropStage struct {
	X, Y          int
	Width, Height int
}

func (c cropStage) validate(src ports.Geometry) error {
	if c.Width <= 0 || c.Height <= 0 {
		return fmt.Errorf("empty crop %dx%d", c.Width, c.Height)
	}
	if c.X < 0 || c.Y < 0 || c.X+c.Width > src.Width || c.Y+c.Height > src.Height {
		return fmt.Errorf("crop %dx%d+%d+%d exceeds %dx%d frame", c.Width, c.Height, c.X, c.Y, src.Width, src.Height)
	}
	return nil
}

func (c cropStage) String() string {
	return fmt.Sprintf("crop=%d:%d:%d:%d", c.Width, c.Height, c.X, c.Y)
}

type scaleStage struct {
	Width, Height int
}

func (s scaleStage) validate() error {
	if s.Width <= 0 || s.Height <= 0 {
		return fmt.Errorf("invalid target size %dx%d", s.Width, s.Height)
	}
	return nil
}

func (s scaleStage) String() string {
	return fmt.Sprintf("scale=%d:%d", s.Width, s.Height)
}

type formatStage struct {
	PixelFormat string
}

func (f formatStage) String() string {
	return "format=" + f.PixelFormat
}

// laneChain is the crop, scale and format sequence of one output lane.
type laneChain struct {
	Crop   cropStage
	Scale  scaleStage
	Format formatStage
}

func (l laneChain) String() string {
	return l.Crop.String() + "," + l.Scale.String() + "," + l.Format.String()
}

// topology is the validated fan-out graph: one buffer source split into
// len(lanes) chains, each ending in its own sink.
type topology struct {
	source ports.Geometry
	lanes  []laneChain
}

func newTopology(spec ports.RouterSpec) (topology, error) {
	if spec.Source.Width <= 0 || spec.Source.Height <= 0 {
		return topology{}, fmt.Errorf("invalid source size %dx%d", spec.Source.Width, spec.Source.Height)
	}
	if len(spec.Regions) == 0 {
		return topology{}, errors.New("no regions")
	}

	t := topology{source: spec.Source, lanes: make([]laneChain, len(spec.Regions))}
	for i, r := range spec.Regions {
		lane := laneChain{
			Crop:   cropStage{X: r.Min.X, Y: r.Min.Y, Width: r.Dx(), Height: r.Dy()},
			Scale:  scaleStage{Width: spec.TargetWidth, Height: spec.TargetHeight},
			Format: formatStage{PixelFormat: lanePixelFormat},
		}
		if err := lane.Crop.validate(spec.Source); err != nil {
			return topology{}, fmt.Errorf("lane %d: %w", i, err)
		}
		if err := lane.Scale.validate(); err != nil {
			return topology{}, fmt.Errorf("lane %d: %w", i, err)
		}
		t.lanes[i] = lane
	}
	return t, nil
}

func sourceLabel() string { return "in" }

func sinkLabel(i int) string { return fmt.Sprintf("out%d", i) }

// description renders the graph in FFmpeg filtergraph syntax, e.g.
//
//	[in]split=2[s0][s1];[s0]crop=...,scale=...,format=yuv420p[out0];[s1]...[out1]
func (t topology) description() string {
	var b strings.Builder
	fmt.Fprintf(&b, "[%s]split=%d", sourceLabel(), len(t.lanes))
	for i := range t.lanes {
		fmt.Fprintf(&b, "[s%d]", i)
	}
	for i, lane := range t.lanes {
		fmt.Fprintf(&b, ";[s%d]%s[%s]", i, lane, sinkLabel(i))
	}
	return b.String()
}
