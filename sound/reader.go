package sound

import (
	"encoding/binary"
	"io"
	"math"

	"github.com/gopxl/beep"
)

const bytesPerFrame = 8

// F32Reader turns a streamer into interleaved little-endian float32 stereo
// bytes, the layout ebiten's NewPlayerF32 reads.
type F32Reader struct {
	streamer beep.Streamer
	buf      [][2]float64
	done     bool
}

func NewF32Reader(s beep.Streamer) *F32Reader {
	return &F32Reader{streamer: s}
}

func (r *F32Reader) Read(p []byte) (int, error) {
	if r.done {
		return 0, io.EOF
	}
	frames := len(p) / bytesPerFrame
	if frames == 0 {
		return 0, nil
	}
	if cap(r.buf) < frames {
		r.buf = make([][2]float64, frames)
	}
	buf := r.buf[:frames]

	n, ok := r.streamer.Stream(buf)
	if !ok || n < frames {
		r.done = true
	}
	if n == 0 {
		return 0, io.EOF
	}
	for i := 0; i < n; i++ {
		off := i * bytesPerFrame
		binary.LittleEndian.PutUint32(p[off:], math.Float32bits(float32(buf[i][0])))
		binary.LittleEndian.PutUint32(p[off+4:], math.Float32bits(float32(buf[i][1])))
	}
	return n * bytesPerFrame, nil
}
