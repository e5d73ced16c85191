// Package ggrenderer draws debug previews with gg and scales frames with
// x/image.
package ggrenderer

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"sync"

	"github.com/fogleman/gg"
	"golang.org/x/image/draw"
	"golang.org/x/image/font"

	"github.com/user/lanecrop/pkg/ports"
)

const tagPadding = 3

type Renderer struct {
	mu    sync.Mutex
	faces map[faceKey]font.Face
}

type faceKey struct {
	path string
	size float64
}

func New() *Renderer {
	return &Renderer{faces: make(map[faceKey]font.Face)}
}

// FrameCanvas scales frame with Catmull-Rom when the sizes differ.
func (r *Renderer) FrameCanvas(frame image.Image, width, height int) ports.Canvas {
	dst := image.NewRGBA(image.Rect(0, 0, width, height))
	if b := frame.Bounds(); b.Dx() == width && b.Dy() == height {
		draw.Draw(dst, dst.Bounds(), frame, b.Min, draw.Src)
	} else {
		draw.CatmullRom.Scale(dst, dst.Bounds(), frame, b, draw.Src, nil)
	}
	return &Canvas{dc: gg.NewContextForRGBA(dst), r: r}
}

func (r *Renderer) Encode(img image.Image, format ports.ImageFormat, quality int) ([]byte, error) {
	var buf bytes.Buffer
	switch format {
	case ports.FormatJPEG:
		if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: quality}); err != nil {
			return nil, fmt.Errorf("encode JPEG: %w", err)
		}
	case ports.FormatPNG:
		if err := png.Encode(&buf, img); err != nil {
			return nil, fmt.Errorf("encode PNG: %w", err)
		}
	default:
		return nil, fmt.Errorf("unsupported image format %d", format)
	}
	return buf.Bytes(), nil
}

// face loads and caches TrueType faces. A nil face means the built-in one.
func (r *Renderer) face(path string, size float64) font.Face {
	if path == "" {
		return nil
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	key := faceKey{path, size}
	if f, ok := r.faces[key]; ok {
		return f
	}
	f, err := gg.LoadFontFace(path, size)
	if err != nil {
		f = nil
	}
	r.faces[key] = f
	return f
}

var _ ports.Renderer = (*Renderer)(nil)

type Canvas struct {
	dc *gg.Context
	r  *Renderer
}

func (c *Canvas) Outline(rect image.Rectangle, col color.Color, width float64) {
	// Stroke on pixel centres so a 1px line covers exactly one row.
	inset := width / 2
	c.dc.SetColor(col)
	c.dc.SetLineWidth(width)
	c.dc.DrawRectangle(
		float64(rect.Min.X)+inset, float64(rect.Min.Y)+inset,
		float64(rect.Dx())-width, float64(rect.Dy())-width,
	)
	c.dc.Stroke()
}

func (c *Canvas) Tag(text string, at image.Point, style ports.TagStyle) {
	if f := c.r.face(style.FontPath, style.FontSize); f != nil {
		c.dc.SetFontFace(f)
	}

	tw, th := c.dc.MeasureString(text)
	w, h := tw+2*tagPadding, th+2*tagPadding
	x, y := float64(at.X), float64(at.Y)
	if limit := float64(c.dc.Width()) - w; x > limit {
		x = limit
	}
	if limit := float64(c.dc.Height()) - h; y > limit {
		y = limit
	}
	if x < 0 {
		x = 0
	}
	if y < 0 {
		y = 0
	}

	if style.Background != nil {
		c.dc.SetColor(style.Background)
		c.dc.DrawRectangle(x, y, w, h)
		c.dc.Fill()
	}
	c.dc.SetColor(style.Text)
	c.dc.DrawStringAnchored(text, x+tagPadding, y+h/2, 0, 0.5)
}

func (c *Canvas) Image() image.Image {
	return c.dc.Image()
}

var _ ports.Canvas = (*Canvas)(nil)
