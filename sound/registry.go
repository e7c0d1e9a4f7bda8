package sound

import (
	"errors"
	"fmt"
	"log"
	"os"
	"sync"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/wav"
)

var ErrUnknownCue = errors.New("sound: unknown cue")

// Registry holds one decoded buffer per cue for the life of the process.
type Registry struct {
	mu      sync.RWMutex
	format  beep.Format
	buffers map[Cue]*beep.Buffer
}

func NewRegistry(rate beep.SampleRate) *Registry {
	return &Registry{
		format:  beep.Format{SampleRate: rate, NumChannels: 2, Precision: 2},
		buffers: make(map[Cue]*beep.Buffer),
	}
}

func (r *Registry) SampleRate() beep.SampleRate {
	return r.format.SampleRate
}

// Preload synthesizes every built-in cue that has no buffer yet.
func (r *Registry) Preload() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.buffers[CueBounce]; !ok {
		buf := beep.NewBuffer(r.format)
		buf.Append(synthBounce(r.format.SampleRate))
		r.buffers[CueBounce] = buf
	}
}

// Load replaces a cue with the contents of a WAV file, resampled to the
// registry rate.
func (r *Registry) Load(cue Cue, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open cue %v: %w", cue, err)
	}
	stream, format, err := wav.Decode(f)
	if err != nil {
		f.Close()
		return fmt.Errorf("decode cue %v from %q: %w", cue, path, err)
	}
	defer stream.Close()

	var s beep.Streamer = stream
	if format.SampleRate != r.format.SampleRate {
		s = beep.Resample(resampleQuality, format.SampleRate, r.format.SampleRate, stream)
	}
	buf := beep.NewBuffer(r.format)
	buf.Append(s)
	if buf.Len() == 0 {
		return fmt.Errorf("decode cue %v from %q: no samples", cue, path)
	}

	r.mu.Lock()
	r.buffers[cue] = buf
	r.mu.Unlock()
	log.Printf("sound: loaded %v from %s (%d samples)", cue, path, buf.Len())
	return nil
}

// Len returns the cue length in samples at pitch 1, or 0 when unknown.
func (r *Registry) Len(cue Cue) int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if buf, ok := r.buffers[cue]; ok {
		return buf.Len()
	}
	return 0
}

// Streamer returns a fresh playback of cue at the given pitch and linear volume.
func (r *Registry) Streamer(cue Cue, pitch, volume float64) (beep.Streamer, error) {
	r.mu.RLock()
	buf, ok := r.buffers[cue]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %v", ErrUnknownCue, cue)
	}

	var s beep.Streamer = buf.Streamer(0, buf.Len())
	if pitch < MinPitch {
		pitch = MinPitch
	}
	if pitch != 1 {
		s = beep.ResampleRatio(resampleQuality, pitch, s)
	}
	return withVolume(s, volume), nil
}
