// Package mp4probe inspects MP4 files written by the lane encoders.
//
// It reads container metadata only: codec, dimensions, sample count,
// keyframes and the decode-time span of the first video track. Both
// progressive (moov with sample tables) and fragmented (moof/mdat)
// layouts are supported.
package mp4probe

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/Eyevinn/mp4ff/mp4"

	"github.com/user/lanecrop/pkg/ports"
)

// ErrNoVideoTrack is returned when a file carries no video track.
var ErrNoVideoTrack = errors.New("no video track found")

// Report describes the video track of an MP4 file.
type Report struct {
	Path           string  `json:"path,omitempty"`
	Codec          string  `json:"codec"`
	Width          int     `json:"width"`
	Height         int     `json:"height"`
	Timescale      uint32  `json:"timescale"`
	Samples        int     `json:"samples"`
	Keyframes      int     `json:"keyframes"`
	FirstTimestamp float64 `json:"firstTimestamp"`
	LastTimestamp  float64 `json:"lastTimestamp"`
	Duration       float64 `json:"duration"`
	Fragmented     bool    `json:"fragmented"`
}

// FrameRate returns the average sample rate over the track duration.
func (r Report) FrameRate() float64 {
	if r.Duration <= 0 {
		return 0
	}
	return float64(r.Samples) / r.Duration
}

// ProbeFile opens path and probes it.
func ProbeFile(path string) (Report, error) {
	f, err := os.Open(path)
	if err != nil {
		return Report{}, fmt.Errorf("open file: %w", err)
	}
	defer f.Close()

	rep, err := Probe(f)
	if err != nil {
		return Report{}, err
	}
	rep.Path = path
	return rep, nil
}

// Probe parses an MP4 stream and reports on its first video track.
func Probe(reader io.ReadSeeker) (Report, error) {
	mp4File, err := mp4.DecodeFile(reader)
	if err != nil {
		return Report{}, fmt.Errorf("decode mp4: %w", err)
	}

	if mp4File.IsFragmented() {
		return probeFragmented(mp4File)
	}
	return probeProgressive(mp4File)
}

// videoTrack returns the first track whose handler is "vide".
func videoTrack(moov *mp4.MoovBox) *mp4.TrakBox {
	if moov == nil {
		return nil
	}
	for _, trak := range moov.Traks {
		if trak.Mdia != nil && trak.Mdia.Hdlr != nil && trak.Mdia.Hdlr.HandlerType == "vide" {
			return trak
		}
	}
	return nil
}

// describeTrack fills codec, dimensions and timescale from the track header
// and sample description.
func describeTrack(trak *mp4.TrakBox) Report {
	rep := Report{Codec: "unknown", Timescale: 1000}

	if trak.Tkhd != nil {
		rep.Width = int(trak.Tkhd.Width >> 16)
		rep.Height = int(trak.Tkhd.Height >> 16)
	}
	if trak.Mdia.Mdhd != nil && trak.Mdia.Mdhd.Timescale > 0 {
		rep.Timescale = trak.Mdia.Mdhd.Timescale
	}

	if trak.Mdia.Minf == nil || trak.Mdia.Minf.Stbl == nil || trak.Mdia.Minf.Stbl.Stsd == nil {
		return rep
	}
	for _, child := range trak.Mdia.Minf.Stbl.Stsd.Children {
		entry, ok := child.(*mp4.VisualSampleEntryBox)
		if !ok {
			continue
		}
		rep.Codec = codecName(entry.Type())
		if entry.Width > 0 && entry.Height > 0 {
			rep.Width = int(entry.Width)
			rep.Height = int(entry.Height)
		}
		break
	}
	return rep
}

func codecName(sampleEntry string) string {
	switch sampleEntry {
	case "avc1", "avc3":
		return "h264"
	case "hvc1", "hev1":
		return "hevc"
	case "av01":
		return "av1"
	case "vp09":
		return "vp9"
	default:
		return sampleEntry
	}
}

func probeProgressive(mp4File *mp4.File) (Report, error) {
	if mp4File.Moov == nil {
		return Report{}, fmt.Errorf("no moov box found")
	}
	trak := videoTrack(mp4File.Moov)
	if trak == nil {
		return Report{}, ErrNoVideoTrack
	}
	rep := describeTrack(trak)

	if trak.Mdia.Minf == nil || trak.Mdia.Minf.Stbl == nil {
		return Report{}, fmt.Errorf("no sample table found")
	}
	stbl := trak.Mdia.Minf.Stbl
	if stbl.Stsz == nil {
		return Report{}, fmt.Errorf("no stsz box found")
	}

	rep.Samples = int(stbl.Stsz.SampleNumber)
	if stbl.Stss != nil {
		rep.Keyframes = len(stbl.Stss.SampleNumber)
	} else {
		// every sample is a sync sample without stss
		rep.Keyframes = rep.Samples
	}

	if rep.Samples == 0 || stbl.Stts == nil {
		return rep, nil
	}

	ts := float64(rep.Timescale)
	first, _ := stbl.Stts.GetDecodeTime(1)
	last, lastDur := stbl.Stts.GetDecodeTime(uint32(rep.Samples))
	rep.FirstTimestamp = float64(first) / ts
	rep.LastTimestamp = float64(last) / ts
	rep.Duration = float64(last+uint64(lastDur)-first) / ts
	return rep, nil
}

func probeFragmented(mp4File *mp4.File) (Report, error) {
	if mp4File.Init == nil {
		return Report{}, fmt.Errorf("no init segment found")
	}
	trak := videoTrack(mp4File.Init.Moov)
	if trak == nil {
		return Report{}, ErrNoVideoTrack
	}
	rep := describeTrack(trak)
	rep.Fragmented = true
	trackID := trak.Tkhd.TrackID

	var trex *mp4.TrexBox
	if mp4File.Init.Moov.Mvex != nil {
		for _, t := range mp4File.Init.Moov.Mvex.Trexs {
			if t.TrackID == trackID {
				trex = t
				break
			}
		}
	}

	var (
		first, end uint64
		last       uint64
		seen       bool
	)
	for _, seg := range mp4File.Segments {
		for _, frag := range seg.Fragments {
			if frag.Moof == nil || !carriesTrack(frag.Moof, trackID) {
				continue
			}
			samples, err := frag.GetFullSamples(trex)
			if err != nil {
				return Report{}, fmt.Errorf("get samples: %w", err)
			}
			for _, s := range samples {
				if !seen {
					first = s.DecodeTime
					seen = true
				}
				last = s.DecodeTime
				end = s.DecodeTime + uint64(s.Dur)
				rep.Samples++
				if !mp4.DecodeSampleFlags(s.Flags).SampleIsNonSync {
					rep.Keyframes++
				}
			}
		}
	}

	if seen {
		ts := float64(rep.Timescale)
		rep.FirstTimestamp = float64(first) / ts
		rep.LastTimestamp = float64(last) / ts
		rep.Duration = float64(end-first) / ts
	}
	return rep, nil
}

func carriesTrack(moof *mp4.MoofBox, trackID uint32) bool {
	for _, traf := range moof.Trafs {
		if traf.Tfhd != nil && traf.Tfhd.TrackID == trackID {
			return true
		}
	}
	return false
}

// MediaInfo converts the report into the port representation.
func (r Report) MediaInfo() ports.MediaInfo {
	return ports.MediaInfo{
		Codec:          r.Codec,
		Width:          r.Width,
		Height:         r.Height,
		Samples:        r.Samples,
		Keyframes:      r.Keyframes,
		FirstTimestamp: r.FirstTimestamp,
		LastTimestamp:  r.LastTimestamp,
		Duration:       r.Duration,
	}
}

// Prober implements ports.MediaProber on top of ProbeFile.
type Prober struct{}

// NewProber creates a Prober.
func NewProber() *Prober {
	return &Prober{}
}

// Probe reads the video track metadata of path.
func (p *Prober) Probe(path string) (ports.MediaInfo, error) {
	rep, err := ProbeFile(path)
	if err != nil {
		return ports.MediaInfo{}, err
	}
	return rep.MediaInfo(), nil
}

var _ ports.MediaProber = (*Prober)(nil)
