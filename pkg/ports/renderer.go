package ports

import (
	"image"
	"image/color"
)

// Renderer draws the debug preview and encodes debug images.
type Renderer interface {
	// FrameCanvas returns a width x height canvas holding frame scaled to
	// fill it.
	FrameCanvas(frame image.Image, width, height int) Canvas

	// Encode serializes img. quality only applies to JPEG.
	Encode(img image.Image, format ImageFormat, quality int) ([]byte, error)
}

// Canvas is an annotated preview in progress.
type Canvas interface {
	// Outline strokes the border of r.
	Outline(r image.Rectangle, c color.Color, width float64)

	// Tag draws text on a filled box whose top-left corner is at. The box
	// is moved inside the canvas when it would overflow.
	Tag(text string, at image.Point, style TagStyle)

	Image() image.Image
}

// TagStyle controls how region captions are drawn.
type TagStyle struct {
	FontSize   float64
	FontPath   string // TrueType file; the built-in face is used when empty
	Text       color.Color
	Background color.Color
}

type ImageFormat int

const (
	FormatJPEG ImageFormat = iota
	FormatPNG
)

func (f ImageFormat) Ext() string {
	if f == FormatPNG {
		return ".png"
	}
	return ".jpg"
}
