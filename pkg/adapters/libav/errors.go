package libav

import "errors"

var (
	// ErrClosed is returned by operations on a closed component.
	ErrClosed = errors.New("libav: closed")

	// ErrNoCodec is returned by a decoder whose codec could not be reopened
	// after a seek. Only Close is useful afterwards.
	ErrNoCodec = errors.New("libav: decoder codec unavailable")

	// ErrFlushed is returned when a frame is submitted after a flush.
	ErrFlushed = errors.New("libav: encoder already flushed")

	// ErrNoEncoder is returned when no suitable encoder is available.
	ErrNoEncoder = errors.New("libav: encoder not found")

	// ErrGeometryChanged is returned when a submitted frame does not match
	// the geometry the router was built for.
	ErrGeometryChanged = errors.New("libav: frame geometry changed")
)
