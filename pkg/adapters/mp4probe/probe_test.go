package mp4probe

import (
	"bytes"
	"errors"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/Eyevinn/mp4ff/mp4"
)

// buildFragmented writes a single-fragment MP4 with count samples of
// dur ticks each. Every gop-th sample is a sync sample.
func buildFragmented(t *testing.T, handler string, timescale uint32, count int, dur uint32, gop int) []byte {
	t.Helper()

	init := mp4.CreateEmptyInit()
	init.AddEmptyTrack(timescale, handler, "en")
	trak := init.Moov.Trak
	if handler == "video" {
		trak.Mdia.Minf.Stbl.Stsd.AddChild(mp4.CreateVisualSampleEntryBox("avc1", 320, 240, nil))
		trak.Tkhd.Width = mp4.Fixed32(320 << 16)
		trak.Tkhd.Height = mp4.Fixed32(240 << 16)
	}

	frag, err := mp4.CreateFragment(1, 1)
	if err != nil {
		t.Fatalf("create fragment: %v", err)
	}
	for i := 0; i < count; i++ {
		flags := mp4.NonSyncSampleFlags
		if i%gop == 0 {
			flags = mp4.SyncSampleFlags
		}
		data := []byte{0, 0, 0, 1, 0x65}
		frag.AddFullSample(mp4.FullSample{
			Sample: mp4.Sample{
				Flags: flags,
				Size:  uint32(len(data)),
				Dur:   dur,
			},
			DecodeTime: uint64(i) * uint64(dur),
			Data:       data,
		})
	}

	var buf bytes.Buffer
	ftyp := mp4.NewFtyp("isom", 0x200, []string{"isom", "iso2", "avc1", "mp41"})
	if err := ftyp.Encode(&buf); err != nil {
		t.Fatalf("encode ftyp: %v", err)
	}
	if err := init.Moov.Encode(&buf); err != nil {
		t.Fatalf("encode moov: %v", err)
	}
	if err := frag.Encode(&buf); err != nil {
		t.Fatalf("encode fragment: %v", err)
	}
	return buf.Bytes()
}

func approx(a, b float64) bool {
	return math.Abs(a-b) < 1e-6
}

func TestProbe_Fragmented(t *testing.T) {
	data := buildFragmented(t, "video", 90000, 50, 3600, 25)

	rep, err := Probe(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("Probe failed: %v", err)
	}

	if !rep.Fragmented {
		t.Error("expected fragmented report")
	}
	if rep.Codec != "h264" {
		t.Errorf("expected codec h264, got %s", rep.Codec)
	}
	if rep.Width != 320 || rep.Height != 240 {
		t.Errorf("expected 320x240, got %dx%d", rep.Width, rep.Height)
	}
	if rep.Timescale != 90000 {
		t.Errorf("expected timescale 90000, got %d", rep.Timescale)
	}
	if rep.Samples != 50 {
		t.Errorf("expected 50 samples, got %d", rep.Samples)
	}
	if rep.Keyframes != 2 {
		t.Errorf("expected 2 keyframes, got %d", rep.Keyframes)
	}
	if !approx(rep.FirstTimestamp, 0) {
		t.Errorf("expected first timestamp 0, got %f", rep.FirstTimestamp)
	}
	if !approx(rep.LastTimestamp, 1.96) {
		t.Errorf("expected last timestamp 1.96, got %f", rep.LastTimestamp)
	}
	if !approx(rep.Duration, 2.0) {
		t.Errorf("expected duration 2.0, got %f", rep.Duration)
	}
	if !approx(rep.FrameRate(), 25) {
		t.Errorf("expected 25 fps, got %f", rep.FrameRate())
	}
}

func TestProbe_NoVideoTrack(t *testing.T) {
	data := buildFragmented(t, "audio", 48000, 4, 1024, 1)

	_, err := Probe(bytes.NewReader(data))
	if !errors.Is(err, ErrNoVideoTrack) {
		t.Fatalf("expected ErrNoVideoTrack, got %v", err)
	}
}

func TestProbe_Garbage(t *testing.T) {
	if _, err := Probe(bytes.NewReader([]byte("not an mp4 file"))); err == nil {
		t.Error("expected error for garbage input")
	}
}

func TestProbeFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "crop-person-300_400.mp4")
	if err := os.WriteFile(path, buildFragmented(t, "video", 25000, 10, 1000, 5), 0644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	rep, err := ProbeFile(path)
	if err != nil {
		t.Fatalf("ProbeFile failed: %v", err)
	}
	if rep.Path != path {
		t.Errorf("expected path %s, got %s", path, rep.Path)
	}
	if rep.Samples != 10 || rep.Keyframes != 2 {
		t.Errorf("expected 10 samples and 2 keyframes, got %d and %d", rep.Samples, rep.Keyframes)
	}
	if !approx(rep.Duration, 0.4) {
		t.Errorf("expected duration 0.4, got %f", rep.Duration)
	}
}

func TestProbeFile_Missing(t *testing.T) {
	if _, err := ProbeFile(filepath.Join(t.TempDir(), "missing.mp4")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestCodecName(t *testing.T) {
	tests := map[string]string{
		"avc1": "h264",
		"avc3": "h264",
		"hev1": "hevc",
		"av01": "av1",
		"vp09": "vp9",
		"mp4v": "mp4v",
	}
	for in, want := range tests {
		if got := codecName(in); got != want {
			t.Errorf("codecName(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestProber_Probe(t *testing.T) {
	path := filepath.Join(t.TempDir(), "lane.mp4")
	if err := os.WriteFile(path, buildFragmented(t, "video", 90000, 25, 3600, 25), 0644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	info, err := NewProber().Probe(path)
	if err != nil {
		t.Fatalf("Probe failed: %v", err)
	}
	if info.Codec != "h264" || info.Samples != 25 || info.Keyframes != 1 {
		t.Errorf("unexpected media info: %+v", info)
	}
	if !approx(info.Duration, 1.0) {
		t.Errorf("expected duration 1.0, got %f", info.Duration)
	}
}
