package libav

import (
	"errors"
	"fmt"
	"math"

	astiav "github.com/asticode/go-astiav"

	"github.com/user/lanecrop/pkg/ports"
)

// routerClock is the time base, in ticks per second, used inside the
// filter graph.
const routerClock = 90000

// Router fans one source frame out to N crop, scale and format chains.
type Router struct {
	spec   ports.RouterSpec
	topo   topology
	logger ports.Logger

	graph  *astiav.FilterGraph
	source *astiav.BuffersrcFilterContext
	sinks  []*astiav.BuffersinkFilterContext
	closed bool
}

// BuildRouter validates spec and configures the filter graph. Errors wrap
// ports.ErrTopology.
func BuildRouter(spec ports.RouterSpec, logger ports.Logger) (*Router, error) {
	topo, err := newTopology(spec)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ports.ErrTopology, err)
	}

	r := &Router{spec: spec, topo: topo, logger: logger}
	if err := r.build(); err != nil {
		r.Close()
		return nil, fmt.Errorf("%w: %w", ports.ErrTopology, err)
	}
	return r, nil
}

func (r *Router) build() error {
	r.graph = astiav.AllocFilterGraph()
	if r.graph == nil {
		return errors.New("alloc filter graph")
	}

	bufferFilter := astiav.FindFilterByName("buffer")
	sinkFilter := astiav.FindFilterByName("buffersink")
	if bufferFilter == nil || sinkFilter == nil {
		return errors.New("buffer filters not available")
	}

	src, err := r.graph.NewBuffersrcFilterContext(bufferFilter, sourceLabel())
	if err != nil {
		return fmt.Errorf("create buffer source: %w", err)
	}
	params := astiav.AllocBuffersrcFilterContextParameters()
	defer params.Free()
	params.SetWidth(r.spec.Source.Width)
	params.SetHeight(r.spec.Source.Height)
	params.SetPixelFormat(astiav.PixelFormat(r.spec.Source.PixelFormat))
	params.SetTimeBase(astiav.NewRational(1, routerClock))
	params.SetSampleAspectRatio(astiav.NewRational(1, 1))
	if err := src.SetParameters(params); err != nil {
		return fmt.Errorf("set buffer source parameters: %w", err)
	}
	if err := src.Initialize(nil); err != nil {
		return fmt.Errorf("initialize buffer source: %w", err)
	}
	r.source = src

	r.sinks = make([]*astiav.BuffersinkFilterContext, len(r.topo.lanes))
	for i := range r.topo.lanes {
		sink, err := r.graph.NewBuffersinkFilterContext(sinkFilter, sinkLabel(i))
		if err != nil {
			return fmt.Errorf("create sink %d: %w", i, err)
		}
		r.sinks[i] = sink
	}

	// The parser links the open pads of the description to these lists:
	// "outputs" feeds [in], "inputs" drains [out0]..[outN-1].
	outputs := astiav.AllocFilterInOut()
	defer outputs.Free()
	outputs.SetName(sourceLabel())
	outputs.SetFilterContext(src.FilterContext())
	outputs.SetPadIdx(0)
	outputs.SetNext(nil)

	var inputs *astiav.FilterInOut
	for i := len(r.sinks) - 1; i >= 0; i-- {
		in := astiav.AllocFilterInOut()
		in.SetName(sinkLabel(i))
		in.SetFilterContext(r.sinks[i].FilterContext())
		in.SetPadIdx(0)
		in.SetNext(inputs)
		inputs = in
	}
	defer inputs.Free()

	desc := r.topo.description()
	r.logger.Debug("Filter graph: %s", desc)
	if err := r.graph.Parse(desc, inputs, outputs); err != nil {
		return fmt.Errorf("parse %q: %w", desc, err)
	}
	if err := r.graph.Configure(); err != nil {
		return fmt.Errorf("configure: %w", err)
	}
	return nil
}

// Lanes returns the number of output lanes.
func (r *Router) Lanes() int {
	return len(r.topo.lanes)
}

// Submit feeds one source frame into the graph. The frame keeps its
// reference and stays owned by the caller.
func (r *Router) Submit(f ports.Frame) error {
	if r.closed {
		return ErrClosed
	}
	fr, err := nativeFrame(f)
	if err != nil {
		return err
	}
	g := fr.Geometry()
	if g.Width != r.spec.Source.Width || g.Height != r.spec.Source.Height || g.PixelFormat != r.spec.Source.PixelFormat {
		return fmt.Errorf("%w: got %dx%d %s, want %dx%d %s", ErrGeometryChanged,
			g.Width, g.Height, g.PixelFormatName,
			r.spec.Source.Width, r.spec.Source.Height, r.spec.Source.PixelFormatName)
	}

	fr.f.SetPts(int64(math.Round(fr.ts * routerClock)))
	if err := r.source.AddFrame(fr.f, astiav.NewBuffersrcFlags(astiav.BuffersrcFlagKeepRef)); err != nil {
		return fmt.Errorf("libav: submit frame at %.3fs: %w", fr.ts, err)
	}
	return nil
}

// Collect pulls one frame per lane. Lanes with nothing ready yield nil.
func (r *Router) Collect() ([]ports.Frame, error) {
	if r.closed {
		return nil, ErrClosed
	}

	out := make([]ports.Frame, len(r.sinks))
	for i, sink := range r.sinks {
		f := astiav.AllocFrame()
		if err := sink.GetFrame(f, astiav.NewBuffersinkFlags()); err != nil {
			f.Free()
			if errors.Is(err, astiav.ErrEagain) || errors.Is(err, astiav.ErrEof) {
				continue
			}
			releaseAll(out)
			return nil, fmt.Errorf("libav: collect lane %d: %w", i, err)
		}
		out[i] = newFrame(f, float64(f.Pts())/routerClock)
	}
	return out, nil
}

// Close frees the graph and every filter context in it.
func (r *Router) Close() error {
	if r.closed {
		return nil
	}
	r.closed = true
	if r.graph != nil {
		r.graph.Free()
	}
	return nil
}

func releaseAll(frames []ports.Frame) {
	for _, f := range frames {
		if f != nil {
			f.Release()
		}
	}
}

var _ ports.FrameRouter = (*Router)(nil)
