package main

import (
	"log"

	"github.com/hajimehoshi/ebiten/v2/audio"
	"github.com/milk9111/ringbounce/sound"
)

// maxActiveSounds bounds how many cues may overlap.
const maxActiveSounds = 32

// audioSink plays cues through ebiten's audio context and drops players
// once they finish.
type audioSink struct {
	ctx    *audio.Context
	reg    *sound.Registry
	volume float64
	active []*audio.Player
	muted  bool
}

func newAudioSink(reg *sound.Registry, volume float64) *audioSink {
	return &audioSink{
		ctx:    audio.NewContext(int(reg.SampleRate())),
		reg:    reg,
		volume: volume,
	}
}

func (s *audioSink) Play(cue sound.Cue, pitch float64) {
	if s.muted || len(s.active) >= maxActiveSounds {
		return
	}
	st, err := s.reg.Streamer(cue, pitch, s.volume)
	if err != nil {
		log.Printf("audio: %v", err)
		return
	}
	p, err := s.ctx.NewPlayerF32(sound.NewF32Reader(st))
	if err != nil {
		log.Printf("audio: new player for %v: %v", cue, err)
		return
	}
	p.Play()
	s.active = append(s.active, p)
}

// Prune closes players that stopped playing. Call it once per frame.
func (s *audioSink) Prune() {
	kept := s.active[:0]
	for _, p := range s.active {
		if p.IsPlaying() {
			kept = append(kept, p)
			continue
		}
		if err := p.Close(); err != nil {
			log.Printf("audio: close player: %v", err)
		}
	}
	clear(s.active[len(kept):])
	s.active = kept
}

func (s *audioSink) Active() int {
	return len(s.active)
}
