package libav

import (
	"errors"
	"fmt"
	"image"

	astiav "github.com/asticode/go-astiav"

	"github.com/user/lanecrop/pkg/ports"
)

// ErrForeignFrame is returned when a frame was not produced by this package.
var ErrForeignFrame = errors.New("libav: frame was not produced by libav")

// Frame wraps a native frame and its timestamp in seconds.
type Frame struct {
	f  *astiav.Frame
	ts float64
}

func newFrame(f *astiav.Frame, ts float64) *Frame {
	return &Frame{f: f, ts: ts}
}

// NewFrameFromImage copies a 4:2:0 YCbCr image into a new yuv420p frame.
func NewFrameFromImage(img *image.YCbCr, ts float64) (*Frame, error) {
	if img.SubsampleRatio != image.YCbCrSubsampleRatio420 {
		return nil, fmt.Errorf("libav: unsupported subsample ratio %v", img.SubsampleRatio)
	}

	f := astiav.AllocFrame()
	f.SetWidth(img.Rect.Dx())
	f.SetHeight(img.Rect.Dy())
	f.SetPixelFormat(astiav.PixelFormatYuv420P)
	if err := f.AllocBuffer(1); err != nil {
		f.Free()
		return nil, fmt.Errorf("libav: alloc frame buffer: %w", err)
	}
	if err := f.Data().FromImage(img); err != nil {
		f.Free()
		return nil, fmt.Errorf("libav: copy image: %w", err)
	}
	return newFrame(f, ts), nil
}

// Geometry returns the frame size and pixel format.
func (fr *Frame) Geometry() ports.Geometry {
	pf := fr.f.PixelFormat()
	return ports.Geometry{
		Width:           fr.f.Width(),
		Height:          fr.f.Height(),
		PixelFormat:     int(pf),
		PixelFormatName: pf.String(),
	}
}

// Timestamp returns the presentation time in seconds.
func (fr *Frame) Timestamp() float64 {
	return fr.ts
}

// Image converts the frame into a Go image.
func (fr *Frame) Image() (image.Image, error) {
	if fr.f == nil {
		return nil, errors.New("libav: frame released")
	}
	img, err := fr.f.Data().GuessImageFormat()
	if err != nil {
		return nil, fmt.Errorf("libav: guess image format: %w", err)
	}
	if err := fr.f.Data().ToImage(img); err != nil {
		return nil, fmt.Errorf("libav: convert frame: %w", err)
	}
	return img, nil
}

// Release frees the native frame.
func (fr *Frame) Release() {
	if fr.f != nil {
		fr.f.Free()
		fr.f = nil
	}
}

func nativeFrame(f ports.Frame) (*Frame, error) {
	fr, ok := f.(*Frame)
	if !ok {
		return nil, fmt.Errorf("%w: %T", ErrForeignFrame, f)
	}
	if fr.f == nil {
		return nil, errors.New("libav: frame released")
	}
	return fr, nil
}

var _ ports.Frame = (*Frame)(nil)
