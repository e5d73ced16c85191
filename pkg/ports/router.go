package ports

import "image"

// RouterSpec describes the fan-out topology of a FrameRouter.
type RouterSpec struct {
	Source       Geometry
	Regions      []image.Rectangle // crop rectangle per lane, in source pixels
	TargetWidth  int
	TargetHeight int
}

// FrameRouter broadcasts one source frame into N crop and resize chains.
// Output slot i always corresponds to RouterSpec.Regions[i].
type FrameRouter interface {
	// Lanes returns the number of output lanes.
	Lanes() int

	// Submit feeds one source frame. The caller keeps ownership of f.
	Submit(f Frame) error

	// Collect pulls at most one frame per lane. The result always has
	// Lanes() entries; a nil entry means that lane produced nothing for
	// this submission. Returned frames are owned by the caller.
	Collect() ([]Frame, error)

	// Close releases the topology.
	Close() error
}
