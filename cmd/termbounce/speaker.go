package main

import (
	"log"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/speaker"
	"github.com/milk9111/ringbounce/sound"
)

// speakerSink mixes cues into the default output device. The mixer drops
// streamers once they drain.
type speakerSink struct {
	reg    *sound.Registry
	volume float64
	mixer  *beep.Mixer
}

func newSpeakerSink(reg *sound.Registry, volume float64) (*speakerSink, error) {
	rate := reg.SampleRate()
	if err := speaker.Init(rate, rate.N(100*time.Millisecond)); err != nil {
		return nil, err
	}
	s := &speakerSink{reg: reg, volume: volume, mixer: &beep.Mixer{}}
	speaker.Play(s.mixer)
	return s, nil
}

func (s *speakerSink) Play(cue sound.Cue, pitch float64) {
	st, err := s.reg.Streamer(cue, pitch, s.volume)
	if err != nil {
		log.Printf("audio: %v", err)
		return
	}
	speaker.Lock()
	s.mixer.Add(st)
	speaker.Unlock()
}

func (s *speakerSink) Close() {
	speaker.Lock()
	s.mixer.Clear()
	speaker.Unlock()
	speaker.Close()
}
