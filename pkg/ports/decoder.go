package ports

// DurationUnknown is returned by Decoder.Duration when the container does
// not report a duration.
const DurationUnknown = -1.0

// Decoder reads and decodes the video stream of a source container.
type Decoder interface {
	// Duration returns the stream duration in seconds or DurationUnknown.
	Duration() float64

	// Seek moves to the nearest keyframe at or before t seconds.
	Seek(t float64) error

	// ReadFrame returns the next decoded frame. It returns io.EOF once the
	// stream is exhausted. The caller owns the returned frame.
	ReadFrame() (Frame, error)

	// Close releases decoder resources.
	Close() error
}
