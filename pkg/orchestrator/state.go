package orchestrator

// State is a phase of a run.
type State int

const (
	StateInit State = iota
	StateSeeking
	StatePriming
	StateStreaming
	StateDraining
	StateClosed
)

func (s State) String() string {
	switch s {
	case StateInit:
		return "init"
	case StateSeeking:
		return "seeking"
	case StatePriming:
		return "priming"
	case StateStreaming:
		return "streaming"
	case StateDraining:
		return "draining"
	case StateClosed:
		return "closed"
	default:
		return "unknown"
	}
}

// Status is the outcome of a run that did not fail.
type Status string

const (
	// StatusCompleted means the window or the source was exhausted.
	StatusCompleted Status = "completed"

	// StatusNoRegions means no region survived resolution and nothing
	// was encoded.
	StatusNoRegions Status = "no_regions"

	// StatusInterrupted means the context was cancelled mid-stream. Lane
	// files are still finalized.
	StatusInterrupted Status = "interrupted"

	// StatusFailed means the run aborted with an error.
	StatusFailed Status = "failed"
)
