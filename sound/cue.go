package sound

import (
	"fmt"

	"github.com/gopxl/beep"
)

// Cue names one sound effect.
type Cue int

const (
	CueBounce Cue = iota + 1
)

func (c Cue) String() string {
	switch c {
	case CueBounce:
		return "bounce"
	default:
		return fmt.Sprintf("Cue(%d)", int(c))
	}
}

const (
	// SampleRate is the output rate shared by every cue.
	SampleRate beep.SampleRate = 44100

	// DefaultVolume is the linear gain applied to every cue.
	DefaultVolume = 5.5 / 100

	// DefaultPitch is used for cues not tied to an impact.
	DefaultPitch = 1.0

	// MinPitch keeps resampling ratios positive.
	MinPitch = 0.1

	resampleQuality = 4
)
