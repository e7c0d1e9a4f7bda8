package reaction

import "github.com/milk9111/ringbounce/common"

// MaxPitch is the pitch for any impact above the last segment.
const MaxPitch = 4.0

type pitchSegment struct {
	from, to float64
	lo, hi   float64
}

var pitchCurve = []pitchSegment{
	{from: 0, to: 200, lo: 0, hi: 1},
	{from: 200, to: 1000, lo: 1, hi: 2},
	{from: 1000, to: 2000, lo: 2, hi: 3},
	{from: 2000, to: 4000, lo: 3, hi: 4},
}

// Pitch maps a combined impact speed to a playback pitch, piecewise linear
// on each segment of the curve and clamped to MaxPitch.
func Pitch(magnitude float64) float64 {
	if !(magnitude > 0) {
		return 0
	}
	for _, seg := range pitchCurve {
		if magnitude <= seg.to {
			return common.Lerp(seg.lo, seg.hi, common.InverseLerp(seg.from, seg.to, magnitude))
		}
	}
	return MaxPitch
}
