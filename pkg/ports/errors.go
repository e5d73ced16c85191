package ports

import "errors"

// Error kinds shared by the adapters and the orchestrator. Adapters wrap
// them with context; callers match with errors.Is.
var (
	// ErrArgument reports an invalid command line or configuration value.
	ErrArgument = errors.New("invalid argument")

	// ErrOpen reports a source that cannot be parsed or has no decodable
	// video stream.
	ErrOpen = errors.New("cannot open source")

	// ErrDecode reports a failure while reading or decoding the source.
	ErrDecode = errors.New("decode failed")

	// ErrTopology reports a frame router that cannot be built.
	ErrTopology = errors.New("cannot build frame router")

	// ErrEncoderOpen reports a lane encoder that cannot be opened.
	ErrEncoderOpen = errors.New("cannot open encoder")

	// ErrNoRegions reports a run that resolved no usable region. It is a
	// status rather than a failure.
	ErrNoRegions = errors.New("no regions resolved")
)
