package pipeline

import (
	"image"

	"github.com/user/lanecrop/pkg/ports"
	"github.com/user/lanecrop/pkg/region"
)

// =============================================================================
// Preview Stage Types
// =============================================================================

// PreviewInput contains the first routed source frame and the regions of
// the run.
type PreviewInput struct {
	Frame   image.Image
	Regions []region.Box // as resolved, before expansion
	Crops   []region.Box // expanded and clamped, index-aligned with Regions
	MaxSide int          // longest side of the preview, 0 keeps the frame size
}

// PreviewResult contains the annotated preview image.
type PreviewResult struct {
	Image image.Image
}

// =============================================================================
// Report Stage Types
// =============================================================================

// LaneStatus is the final state of a lane.
type LaneStatus string

const (
	// LaneWritten means the lane file was finalized with at least one frame.
	LaneWritten LaneStatus = "written"

	// LaneEmpty means the lane file was finalized but received no frames.
	LaneEmpty LaneStatus = "empty"

	// LaneFailed means the encoder could not be opened or finalized.
	LaneFailed LaneStatus = "failed"
)

// LaneOutcome is what the orchestrator knows about a lane after draining.
type LaneOutcome struct {
	Index  int
	Name   string
	Region region.Box
	Crop   region.Box
	Path   string
	Stats  ports.EncoderStats
	Err    error
}

// ReportInput contains the lanes to report on.
type ReportInput struct {
	Lanes []LaneOutcome
}

// LaneReport describes one lane of a finished run.
type LaneReport struct {
	Index         int              `json:"index"`
	Name          string           `json:"name"`
	Path          string           `json:"path"`
	Region        region.Box       `json:"region"`
	Crop          region.Box       `json:"crop"`
	Status        LaneStatus       `json:"status"`
	Error         string           `json:"error,omitempty"`
	Frames        int              `json:"frames"`
	SourceStart   float64          `json:"sourceStart"`
	LastTimestamp float64          `json:"lastTimestamp"`
	Bytes         int64            `json:"bytes"`
	Media         *ports.MediaInfo `json:"media,omitempty"`
}

// ReportResult contains one report per lane, in lane order.
type ReportResult struct {
	Lanes []LaneReport
}

// Written counts the lanes that produced a file with frames.
func (r ReportResult) Written() int {
	n := 0
	for _, l := range r.Lanes {
		if l.Status == LaneWritten {
			n++
		}
	}
	return n
}
