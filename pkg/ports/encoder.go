package ports

// EncoderOptions configures a lane encoder.
type EncoderOptions struct {
	Width     int
	Height    int
	FrameRate int    // frames per second, also the keyframe interval
	Bitrate   int    // bits per second
	Codec     string // encoder name, empty selects the default H.264 encoder
	Preset    string // encoder speed preset
}

// EncoderStats reports what an encoder has produced so far.
type EncoderStats struct {
	FramesIn       int
	PacketsOut     int
	BytesOut       int64
	FirstTimestamp float64 // source timestamp of the first frame, seconds
	LastTimestamp  float64 // lane-relative timestamp of the last frame, seconds
}

// LaneEncoder compresses the frames of one lane into a container file.
type LaneEncoder interface {
	// PutFrame submits a frame taken at source time ts. The first frame
	// fixes the lane origin and later timestamps are relative to it.
	// A nil frame requests a flush of the codec.
	PutFrame(ts float64, f Frame) error

	// Close flushes pending output, writes the trailer and releases
	// resources.
	Close() error

	// Stats returns counters for the encoded lane.
	Stats() EncoderStats
}

// MediaFactory opens the native media components.
type MediaFactory interface {
	OpenDecoder(path string) (Decoder, error)
	BuildRouter(spec RouterSpec) (FrameRouter, error)
	OpenEncoder(path string, opts EncoderOptions) (LaneEncoder, error)
}
