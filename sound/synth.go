package sound

import (
	"math"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/effects"
)

const (
	bounceDuration = 180 * time.Millisecond
	bounceAttack   = 4 * time.Millisecond
	bounceRelease  = 150 * time.Millisecond
	bounceFreq     = 440.0
)

// oscillator emits a sine tone whose frequency slides from freq to
// freq*slide over its duration, with an octave mixed in at overtone gain.
type oscillator struct {
	freq     float64
	slide    float64
	overtone float64
	phase    float64
	position int
	duration int
	rate     beep.SampleRate
}

func newOscillator(freq, slide, overtone float64, duration time.Duration, rate beep.SampleRate) beep.Streamer {
	return &oscillator{freq: freq, slide: slide, overtone: overtone, duration: rate.N(duration), rate: rate}
}

func (o *oscillator) Stream(samples [][2]float64) (n int, ok bool) {
	for i := range samples {
		if o.position >= o.duration {
			return i, i > 0
		}
		val := (1-o.overtone)*math.Sin(2*math.Pi*o.phase) + o.overtone*math.Sin(4*math.Pi*o.phase)
		samples[i][0] = val
		samples[i][1] = val

		t := float64(o.position) / float64(o.duration)
		freq := o.freq * (1 + (o.slide-1)*t)
		o.phase += freq / float64(o.rate)
		o.phase -= math.Floor(o.phase)
		o.position++
	}
	return len(samples), true
}

func (o *oscillator) Err() error { return nil }

// envelope fades a stream in over attack and out over release.
type envelope struct {
	streamer beep.Streamer
	position int
	attack   int
	release  int
	total    int
}

func newEnvelope(s beep.Streamer, duration, attack, release time.Duration, rate beep.SampleRate) beep.Streamer {
	return &envelope{
		streamer: s,
		attack:   rate.N(attack),
		release:  rate.N(release),
		total:    rate.N(duration),
	}
}

func (e *envelope) Stream(samples [][2]float64) (n int, ok bool) {
	n, ok = e.streamer.Stream(samples)
	for i := 0; i < n; i++ {
		if e.position >= e.total {
			return i, i > 0
		}
		vol := 1.0
		if e.attack > 0 && e.position < e.attack {
			vol = float64(e.position) / float64(e.attack)
		}
		if start := e.total - e.release; e.release > 0 && e.position >= start {
			vol = math.Max(0, float64(e.total-e.position)/float64(e.release))
		}
		samples[i][0] *= vol
		samples[i][1] *= vol
		e.position++
	}
	return n, ok
}

func (e *envelope) Err() error { return e.streamer.Err() }

// withVolume applies a linear gain through effects.Volume.
func withVolume(s beep.Streamer, vol float64) beep.Streamer {
	if vol <= 0 {
		return &effects.Volume{Streamer: s, Base: 2, Silent: true}
	}
	return &effects.Volume{Streamer: s, Base: 2, Volume: math.Log2(vol)}
}

// synthBounce builds the built-in bounce cue, a short falling tone.
func synthBounce(rate beep.SampleRate) beep.Streamer {
	osc := newOscillator(bounceFreq, 0.7, 0.3, bounceDuration, rate)
	return newEnvelope(osc, bounceDuration, bounceAttack, bounceRelease, rate)
}
