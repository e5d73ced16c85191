package ports

// Metrics records counters for a run.
type Metrics interface {
	// FrameDecoded counts one source frame read from the decoder.
	FrameDecoded()

	// FrameSkipped counts one source frame decoded before the window start.
	FrameSkipped()

	// LaneFrame counts one frame delivered to the named lane.
	LaneFrame(lane string)

	// LaneFailed counts a lane whose encoder could not be opened or closed.
	LaneFailed(lane string)

	// ObservePhase records how long a run phase took.
	ObservePhase(phase string, seconds float64)

	// Flush persists the collected metrics.
	Flush() error
}
