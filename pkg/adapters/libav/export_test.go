package libav

import (
	"image"

	"github.com/user/lanecrop/pkg/ports"
)

// WriteTestPattern encodes a moving gradient of the given size and length
// into path with the package's own encoder. A keyframe is placed every
// second. Errors from a missing H.264 encoder wrap ports.ErrEncoderOpen.
func WriteTestPattern(path string, width, height, fps int, seconds float64, logger ports.Logger) error {
	opts := DefaultEncoderOptions(width, height)
	opts.FrameRate = fps
	opts.Bitrate = 1_000_000

	enc, err := OpenEncoder(path, opts, logger)
	if err != nil {
		return err
	}

	frames := int(seconds * float64(fps))
	for n := 0; n < frames; n++ {
		img := image.NewYCbCr(image.Rect(0, 0, width, height), image.YCbCrSubsampleRatio420)
		for y := 0; y < height; y++ {
			for x := 0; x < width; x++ {
				img.Y[y*img.YStride+x] = uint8(x + y + 4*n)
			}
		}
		for i := range img.Cb {
			img.Cb[i] = 128
			img.Cr[i] = uint8(64 + n)
		}

		f, err := NewFrameFromImage(img, float64(n)/float64(fps))
		if err != nil {
			enc.Close()
			return err
		}
		err = enc.PutFrame(f.Timestamp(), f)
		f.Release()
		if err != nil {
			enc.Close()
			return err
		}
	}

	if err := enc.PutFrame(0, nil); err != nil {
		enc.Close()
		return err
	}
	return enc.Close()
}
