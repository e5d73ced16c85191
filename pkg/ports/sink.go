package ports

import (
	"image"
)

// DebugSink abstracts debug output for intermediate results.
type DebugSink interface {
	// Enabled returns true if debug output is enabled.
	Enabled() bool

	// SaveRegionsJSON saves the resolved and expanded regions.
	SaveRegionsJSON(data []byte) error

	// SaveLanesJSON saves the per-lane results of the run.
	SaveLanesJSON(data []byte) error

	// SavePreview saves the annotated first source frame.
	SavePreview(img image.Image) error

	// SaveLaneFrame saves one routed frame of a lane.
	SaveLaneFrame(lane, index int, img image.Image) error
}
