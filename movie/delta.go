package movie

import "math"

// deltaStdRatio is the detection threshold for files without a codec
// attribute. Stored difference frames wrap negative values to the top of
// the uint16 range, which blows up their spread relative to a raw first
// frame.
const deltaStdRatio = 0.5

// decodeFrames reconstructs delta-stored frames in place. Frame 0 is
// already raw; every later frame holds per-pixel differences, so the
// cumulative uint16 sum restores the original values modulo 65536.
func decodeFrames(pix []uint16, frameSize int) {
	for off := frameSize; off+frameSize <= len(pix); off += frameSize {
		prev := pix[off-frameSize : off]
		cur := pix[off : off+frameSize]
		for p := range cur {
			cur[p] += prev[p]
		}
	}
}

// encodeFrames is the exact inverse of decodeFrames, run back to front so
// every difference is taken against a still-raw predecessor.
func encodeFrames(pix []uint16, frameSize int) {
	for off := len(pix) - frameSize; off >= frameSize; off -= frameSize {
		prev := pix[off-frameSize : off]
		cur := pix[off : off+frameSize]
		for p := range cur {
			cur[p] -= prev[p]
		}
	}
}

// std returns the population standard deviation of vals.
func std(vals []uint16) float64 {
	if len(vals) == 0 {
		return 0
	}

	var sum float64
	for _, v := range vals {
		sum += float64(v)
	}
	mean := sum / float64(len(vals))

	var ss float64
	for _, v := range vals {
		d := float64(v) - mean
		ss += d * d
	}

	return math.Sqrt(ss / float64(len(vals)))
}
