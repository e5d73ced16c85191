package libav

import (
	"errors"
	"fmt"
	"math"
	"strconv"

	astiav "github.com/asticode/go-astiav"

	"github.com/user/lanecrop/pkg/ports"
)

// encoderClock is the codec time base in ticks per second.
const encoderClock = 90000

// DefaultEncoderOptions returns the lane profile: 25 fps, 50 kbit/s,
// keyframe every second, fastest x264 preset.
func DefaultEncoderOptions(width, height int) ports.EncoderOptions {
	return ports.EncoderOptions{
		Width:     width,
		Height:    height,
		FrameRate: 25,
		Bitrate:   50000,
		Preset:    "ultrafast",
	}
}

// Encoder compresses yuv420p frames into a container chosen by the file
// extension of its output path.
type Encoder struct {
	path   string
	opts   ports.EncoderOptions
	logger ports.Logger

	fc     *astiav.FormatContext
	pb     *astiav.IOContext
	cc     *astiav.CodecContext
	stream *astiav.Stream
	pkt    *astiav.Packet

	headerWritten bool
	flushed       bool
	closed        bool

	hasOrigin bool
	origin    float64
	lastPts   int64
	stats     ports.EncoderStats
}

// OpenEncoder creates path and writes the container header. Errors wrap
// ports.ErrEncoderOpen.
func OpenEncoder(path string, opts ports.EncoderOptions, logger ports.Logger) (*Encoder, error) {
	if opts.FrameRate <= 0 {
		opts.FrameRate = 25
	}
	e := &Encoder{path: path, opts: opts, logger: logger}
	if err := e.open(); err != nil {
		e.release()
		return nil, fmt.Errorf("%w: %s: %w", ports.ErrEncoderOpen, path, err)
	}
	return e, nil
}

func (e *Encoder) open() error {
	if e.opts.Width <= 0 || e.opts.Height <= 0 {
		return fmt.Errorf("invalid size %dx%d", e.opts.Width, e.opts.Height)
	}

	fc, err := astiav.AllocOutputFormatContext(nil, "", e.path)
	if err != nil {
		return fmt.Errorf("guess output format: %w", err)
	}
	if fc == nil {
		return errors.New("guess output format: unknown extension")
	}
	e.fc = fc

	var codec *astiav.Codec
	if e.opts.Codec != "" {
		codec = astiav.FindEncoderByName(e.opts.Codec)
	} else {
		codec = astiav.FindEncoder(astiav.CodecIDH264)
	}
	if codec == nil {
		return ErrNoEncoder
	}

	e.cc = astiav.AllocCodecContext(codec)
	if e.cc == nil {
		return errors.New("alloc codec context")
	}
	e.cc.SetWidth(e.opts.Width)
	e.cc.SetHeight(e.opts.Height)
	e.cc.SetPixelFormat(astiav.PixelFormatYuv420P)
	e.cc.SetTimeBase(astiav.NewRational(1, encoderClock))
	e.cc.SetFramerate(astiav.NewRational(e.opts.FrameRate, 1))
	if e.opts.Bitrate > 0 {
		e.cc.SetBitRate(int64(e.opts.Bitrate))
	}
	if e.fc.OutputFormat().Flags().Has(astiav.IOFormatFlagGlobalheader) {
		e.cc.SetFlags(e.cc.Flags().Add(astiav.CodecContextFlagGlobalHeader))
	}

	// no B-frames keeps decode order equal to presentation order
	opts := astiav.NewDictionary()
	defer opts.Free()
	_ = opts.Set("g", strconv.Itoa(e.opts.FrameRate), 0)
	_ = opts.Set("bf", "0", 0)
	if e.opts.Preset != "" {
		_ = opts.Set("preset", e.opts.Preset, 0)
	}
	if err := e.cc.Open(codec, opts); err != nil {
		return fmt.Errorf("open codec %s: %w", codec.Name(), err)
	}

	e.stream = e.fc.NewStream(nil)
	if e.stream == nil {
		return errors.New("new stream")
	}
	if err := e.cc.ToCodecParameters(e.stream.CodecParameters()); err != nil {
		return fmt.Errorf("copy codec parameters: %w", err)
	}
	e.stream.SetTimeBase(e.cc.TimeBase())

	if !e.fc.OutputFormat().Flags().Has(astiav.IOFormatFlagNofile) {
		pb, err := astiav.OpenIOContext(e.path, astiav.NewIOContextFlags(astiav.IOContextFlagWrite), nil, nil)
		if err != nil {
			return fmt.Errorf("open output: %w", err)
		}
		e.pb = pb
		e.fc.SetPb(pb)
	}

	if err := e.fc.WriteHeader(nil); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	e.headerWritten = true
	e.pkt = astiav.AllocPacket()

	e.logger.Debug("Opened encoder %s for %s (%dx%d, %d fps)", codec.Name(), e.path, e.opts.Width, e.opts.Height, e.opts.FrameRate)
	return nil
}

// PutFrame encodes f taken at source time ts and writes every packet the
// codec has ready. The first frame sets the lane origin. Presentation
// timestamps are forced to increase strictly. A nil f flushes the codec;
// no frame may follow a flush.
func (e *Encoder) PutFrame(ts float64, f ports.Frame) error {
	if e.closed {
		return ErrClosed
	}
	if f == nil {
		return e.flush()
	}
	if e.flushed {
		return ErrFlushed
	}
	fr, err := nativeFrame(f)
	if err != nil {
		return err
	}

	if !e.hasOrigin {
		e.hasOrigin = true
		e.origin = ts
		e.stats.FirstTimestamp = ts
	}
	rel := ts - e.origin
	pts := int64(math.Round(rel * encoderClock))
	if e.stats.FramesIn > 0 && pts <= e.lastPts {
		pts = e.lastPts + 1
	}
	e.lastPts = pts

	fr.f.SetPts(pts)
	if err := e.cc.SendFrame(fr.f); err != nil {
		return fmt.Errorf("libav: encode frame at %.3fs: %w", rel, err)
	}
	e.stats.FramesIn++
	e.stats.LastTimestamp = rel

	return e.drain()
}

func (e *Encoder) flush() error {
	if e.flushed {
		return nil
	}
	e.flushed = true
	if err := e.cc.SendFrame(nil); err != nil && !errors.Is(err, astiav.ErrEof) {
		return fmt.Errorf("libav: flush encoder: %w", err)
	}
	return e.drain()
}

// drain writes all packets currently available from the codec.
func (e *Encoder) drain() error {
	for {
		if err := e.cc.ReceivePacket(e.pkt); err != nil {
			if errors.Is(err, astiav.ErrEagain) || errors.Is(err, astiav.ErrEof) {
				return nil
			}
			return fmt.Errorf("libav: receive packet: %w", err)
		}

		e.pkt.RescaleTs(e.cc.TimeBase(), e.stream.TimeBase())
		e.pkt.SetStreamIndex(e.stream.Index())
		e.stats.PacketsOut++
		e.stats.BytesOut += int64(e.pkt.Size())

		err := e.fc.WriteInterleavedFrame(e.pkt)
		e.pkt.Unref()
		if err != nil {
			return fmt.Errorf("libav: write packet: %w", err)
		}
	}
}

// Close flushes the codec, writes the trailer and releases resources.
func (e *Encoder) Close() error {
	if e.closed {
		return nil
	}

	var errs []error
	if e.headerWritten {
		if err := e.flush(); err != nil {
			errs = append(errs, err)
		}
		if err := e.fc.WriteTrailer(); err != nil {
			errs = append(errs, fmt.Errorf("libav: write trailer: %w", err))
		}
	}
	e.closed = true
	e.release()

	e.logger.Debug("Closed %s: %d frames, %d packets, %d bytes", e.path, e.stats.FramesIn, e.stats.PacketsOut, e.stats.BytesOut)
	return errors.Join(errs...)
}

// Stats returns counters for the encoded lane.
func (e *Encoder) Stats() ports.EncoderStats {
	return e.stats
}

func (e *Encoder) release() {
	if e.pkt != nil {
		e.pkt.Free()
		e.pkt = nil
	}
	if e.cc != nil {
		e.cc.Free()
		e.cc = nil
	}
	if e.pb != nil {
		_ = e.pb.Close()
		e.pb.Free()
		e.pb = nil
	}
	if e.fc != nil {
		e.fc.Free()
		e.fc = nil
	}
}

var _ ports.LaneEncoder = (*Encoder)(nil)
