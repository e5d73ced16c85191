package mocks

import (
	"image"
	"image/color"

	"github.com/user/lanecrop/pkg/ports"
)

// Renderer records the canvases it hands out. EncodeFunc overrides Encode,
// which otherwise returns a one byte payload.
type Renderer struct {
	EncodeFunc func(img image.Image, format ports.ImageFormat, quality int) ([]byte, error)

	Canvases []*Canvas
}

func (m *Renderer) FrameCanvas(frame image.Image, width, height int) ports.Canvas {
	c := &Canvas{Frame: frame, Width: width, Height: height}
	m.Canvases = append(m.Canvases, c)
	return c
}

func (m *Renderer) Encode(img image.Image, format ports.ImageFormat, quality int) ([]byte, error) {
	if m.EncodeFunc != nil {
		return m.EncodeFunc(img, format, quality)
	}
	return []byte{0}, nil
}

var _ ports.Renderer = (*Renderer)(nil)

type Outline struct {
	Rect  image.Rectangle
	Color color.Color
}

type Tag struct {
	Text string
	At   image.Point
}

// Canvas keeps every draw call for later inspection.
type Canvas struct {
	Frame         image.Image
	Width, Height int

	Outlines []Outline
	Tags     []Tag
}

func (m *Canvas) Outline(r image.Rectangle, c color.Color, width float64) {
	m.Outlines = append(m.Outlines, Outline{Rect: r, Color: c})
}

func (m *Canvas) Tag(text string, at image.Point, style ports.TagStyle) {
	m.Tags = append(m.Tags, Tag{Text: text, At: at})
}

func (m *Canvas) Image() image.Image {
	return image.NewRGBA(image.Rect(0, 0, m.Width, m.Height))
}

var _ ports.Canvas = (*Canvas)(nil)
