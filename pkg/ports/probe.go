package ports

// MediaInfo summarizes the video track of a finished output file.
type MediaInfo struct {
	Codec          string  `json:"codec"`
	Width          int     `json:"width"`
	Height         int     `json:"height"`
	Samples        int     `json:"samples"`
	Keyframes      int     `json:"keyframes"`
	FirstTimestamp float64 `json:"firstTimestamp"`
	LastTimestamp  float64 `json:"lastTimestamp"`
	Duration       float64 `json:"duration"`
}

// MediaProber reads container metadata from an output file.
type MediaProber interface {
	Probe(path string) (MediaInfo, error)
}
