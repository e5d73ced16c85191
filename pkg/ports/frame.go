package ports

import "image"

// Geometry describes the layout of a raw video frame.
type Geometry struct {
	Width           int
	Height          int
	PixelFormat     int    // native pixel format identifier
	PixelFormatName string // e.g. "yuv420p"
}

// Frame is a decoded image buffer tagged with a presentation timestamp.
// A Frame is owned by whoever received it last and must be released
// exactly once by that owner.
type Frame interface {
	// Geometry returns the width, height and pixel format of the frame.
	Geometry() Geometry

	// Timestamp returns the presentation time in seconds.
	Timestamp() float64

	// Image converts the frame into a Go image for inspection.
	Image() (image.Image, error)

	// Release frees the native buffers. Calling Release twice is a no-op.
	Release()
}
