package libav

import (
	"errors"
	"fmt"
	"io"

	astiav "github.com/asticode/go-astiav"

	"github.com/user/lanecrop/pkg/ports"
)

// Decoder decodes the first decodable video stream of a container.
type Decoder struct {
	path   string
	logger ports.Logger

	fc        *astiav.FormatContext
	inputOpen bool
	stream    *astiav.Stream
	codec     *astiav.Codec
	cc        *astiav.CodecContext
	pkt       *astiav.Packet
	frame     *astiav.Frame

	timeBase astiav.Rational
	duration float64
	lastPts  int64
	draining bool
	closed   bool
}

// OpenDecoder opens path and prepares its video decoder. Errors wrap
// ports.ErrOpen.
func OpenDecoder(path string, logger ports.Logger) (*Decoder, error) {
	d := &Decoder{path: path, logger: logger, lastPts: astiav.NoPtsValue}
	if err := d.open(); err != nil {
		d.Close()
		return nil, fmt.Errorf("%w: %s: %w", ports.ErrOpen, path, err)
	}
	return d, nil
}

func (d *Decoder) open() error {
	d.fc = astiav.AllocFormatContext()
	if d.fc == nil {
		return errors.New("alloc format context")
	}
	if err := d.fc.OpenInput(d.path, nil, nil); err != nil {
		return fmt.Errorf("open input: %w", err)
	}
	d.inputOpen = true

	if err := d.fc.FindStreamInfo(nil); err != nil {
		return fmt.Errorf("find stream info: %w", err)
	}

	for _, s := range d.fc.Streams() {
		if s.CodecParameters().MediaType() != astiav.MediaTypeVideo {
			continue
		}
		codec := astiav.FindDecoder(s.CodecParameters().CodecID())
		if codec == nil {
			d.logger.Debug("Stream %d has no decoder, skipping", s.Index())
			continue
		}
		d.stream = s
		d.codec = codec
		break
	}
	if d.stream == nil {
		return errors.New("no decodable video stream")
	}

	if err := d.openCodec(); err != nil {
		return err
	}

	d.timeBase = d.stream.TimeBase()
	d.duration = d.probeDuration()
	d.pkt = astiav.AllocPacket()
	d.frame = astiav.AllocFrame()

	d.logger.Debug("Opened %s: stream %d, codec %s, time base %d/%d, duration %.2fs",
		d.path, d.stream.Index(), d.codec.Name(), d.timeBase.Num(), d.timeBase.Den(), d.duration)
	return nil
}

func (d *Decoder) openCodec() error {
	cc := astiav.AllocCodecContext(d.codec)
	if cc == nil {
		return errors.New("alloc codec context")
	}
	if err := d.stream.CodecParameters().ToCodecContext(cc); err != nil {
		cc.Free()
		return fmt.Errorf("copy codec parameters: %w", err)
	}
	if err := cc.Open(d.codec, nil); err != nil {
		cc.Free()
		return fmt.Errorf("open codec: %w", err)
	}
	d.cc = cc
	return nil
}

func (d *Decoder) probeDuration() float64 {
	if dur := d.stream.Duration(); dur > 0 && dur != astiav.NoPtsValue {
		return float64(dur) * d.timeBase.Float64()
	}
	// container duration is in AV_TIME_BASE (microseconds)
	if dur := d.fc.Duration(); dur > 0 && dur != astiav.NoPtsValue {
		return float64(dur) / 1e6
	}
	return ports.DurationUnknown
}

// Duration returns the stream duration in seconds or ports.DurationUnknown.
func (d *Decoder) Duration() float64 {
	return d.duration
}

// Seek moves to the closest keyframe at or before t. The codec is reopened
// so no frame from before the seek leaks out.
func (d *Decoder) Seek(t float64) error {
	if d.closed {
		return ErrClosed
	}
	ts := int64(t / d.timeBase.Float64())
	if err := d.fc.SeekFrame(d.stream.Index(), ts, astiav.NewSeekFlags(astiav.SeekFlagBackward)); err != nil {
		return fmt.Errorf("%w: seek to %.3fs: %w", ports.ErrDecode, t, err)
	}

	if d.cc != nil {
		d.cc.Free()
		d.cc = nil
	}
	if err := d.openCodec(); err != nil {
		return fmt.Errorf("%w: reset after seek: %w", ports.ErrDecode, err)
	}
	d.draining = false
	d.lastPts = astiav.NoPtsValue
	d.logger.Debug("Seeked to %.3fs", t)
	return nil
}

// ReadFrame decodes the next frame. It reads and feeds packets until the
// codec yields a frame and returns io.EOF once the stream is drained.
func (d *Decoder) ReadFrame() (ports.Frame, error) {
	if d.closed {
		return nil, ErrClosed
	}
	if d.cc == nil {
		return nil, fmt.Errorf("%w: %w", ports.ErrDecode, ErrNoCodec)
	}

	for {
		err := d.cc.ReceiveFrame(d.frame)
		if err == nil {
			return d.takeFrame()
		}
		if errors.Is(err, astiav.ErrEof) {
			return nil, io.EOF
		}
		if !errors.Is(err, astiav.ErrEagain) {
			return nil, fmt.Errorf("%w: receive frame: %w", ports.ErrDecode, err)
		}
		if d.draining {
			return nil, io.EOF
		}

		if err := d.fc.ReadFrame(d.pkt); err != nil {
			if errors.Is(err, astiav.ErrEof) || errors.Is(err, io.EOF) {
				d.draining = true
				if err := d.cc.SendPacket(nil); err != nil && !errors.Is(err, astiav.ErrEof) {
					return nil, fmt.Errorf("%w: flush decoder: %w", ports.ErrDecode, err)
				}
				continue
			}
			return nil, fmt.Errorf("%w: read packet: %w", ports.ErrDecode, err)
		}

		if d.pkt.StreamIndex() != d.stream.Index() {
			d.pkt.Unref()
			continue
		}
		if pts := d.pkt.Pts(); pts != astiav.NoPtsValue {
			d.lastPts = pts
		}
		err = d.cc.SendPacket(d.pkt)
		d.pkt.Unref()
		if err != nil && !errors.Is(err, astiav.ErrEagain) {
			return nil, fmt.Errorf("%w: send packet: %w", ports.ErrDecode, err)
		}
	}
}

// takeFrame moves the decoded picture into a caller-owned Frame.
func (d *Decoder) takeFrame() (ports.Frame, error) {
	pts := d.frame.Pts()
	if pts == astiav.NoPtsValue {
		pts = d.lastPts
	}
	if pts == astiav.NoPtsValue {
		pts = 0
	}

	out := astiav.AllocFrame()
	if err := out.Ref(d.frame); err != nil {
		out.Free()
		d.frame.Unref()
		return nil, fmt.Errorf("%w: ref frame: %w", ports.ErrDecode, err)
	}
	d.frame.Unref()

	return newFrame(out, float64(pts)*d.timeBase.Float64()), nil
}

// Close releases all native resources. It is safe to call more than once.
func (d *Decoder) Close() error {
	if d.closed {
		return nil
	}
	d.closed = true
	if d.frame != nil {
		d.frame.Free()
	}
	if d.pkt != nil {
		d.pkt.Free()
	}
	if d.cc != nil {
		d.cc.Free()
	}
	if d.fc != nil {
		if d.inputOpen {
			d.fc.CloseInput()
		}
		d.fc.Free()
	}
	return nil
}

var _ ports.Decoder = (*Decoder)(nil)
