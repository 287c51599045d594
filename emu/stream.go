package emu

import (
	"encoding/binary"
	"sync/atomic"
)

// A synthesizer renders one frame of interleaved 16-bit stereo samples per
// call.
type synthesizer interface {
	SynthSound() []int16
}

// Stream adapts a frame synthesizer to an io.Reader of little-endian signed
// 16-bit stereo samples, of any read size.
type Stream struct {
	synth   synthesizer
	buf     []byte
	pending []byte

	// level is the peak absolute value of the last rendered frame.
	level atomic.Int32
}

func NewStream(synth synthesizer) *Stream {
	return &Stream{synth: synth}
}

func (s *Stream) Read(p []byte) (int, error) {
	n := 0
	for n < len(p) {
		if len(s.pending) == 0 {
			s.fill()
			if len(s.pending) == 0 {
				clear(p[n:])
				return len(p), nil
			}
		}
		c := copy(p[n:], s.pending)
		s.pending = s.pending[c:]
		n += c
	}
	return n, nil
}

func (s *Stream) fill() {
	samples := s.synth.SynthSound()

	s.buf = s.buf[:0]
	var peak int32
	for _, v := range samples {
		s.buf = binary.LittleEndian.AppendUint16(s.buf, uint16(v))
		peak = max(peak, abs32(int32(v)))
	}
	s.pending = s.buf
	s.level.Store(peak)
}

// Level returns the peak amplitude of the last frame read, in [0, 32768].
func (s *Stream) Level() int { return int(s.level.Load()) }

func abs32(v int32) int32 {
	if v < 0 {
		return -v
	}
	return v
}
