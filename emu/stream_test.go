package emu

import (
	"encoding/binary"
	"io"
	"testing"

	"github.com/google/go-cmp/cmp"
)

// countingSynth renders frames of 3 stereo samples, all equal to the frame
// index.
type countingSynth struct {
	frames int
}

func (s *countingSynth) SynthSound() []int16 {
	s.frames++
	v := int16(s.frames)
	return []int16{v, -v, v, -v, v, -v}
}

func TestStreamRead(t *testing.T) {
	synth := &countingSynth{}
	s := NewStream(synth)

	// Read sizes unrelated to the frame size.
	var got []int16
	for _, size := range []int{2, 10, 4, 8, 12} {
		buf := make([]byte, size)
		n, err := io.ReadFull(s, buf)
		if err != nil {
			t.Fatal(err)
		}
		for i := 0; i < n; i += 2 {
			got = append(got, int16(binary.LittleEndian.Uint16(buf[i:])))
		}
	}

	want := []int16{
		1, -1, 1, -1, 1, -1,
		2, -2, 2, -2, 2, -2,
		3, -3, 3, -3, 3, -3,
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("stream samples mismatch (-want +got):\n%s", diff)
	}
	if synth.frames != 3 {
		t.Errorf("synthesized %d frames, want 3", synth.frames)
	}
	if s.Level() != 3 {
		t.Errorf("Level() = %d, want 3", s.Level())
	}
}

type emptySynth struct{}

func (emptySynth) SynthSound() []int16 { return nil }

func TestStreamEmptyFrame(t *testing.T) {
	s := NewStream(emptySynth{})

	buf := []byte{1, 2, 3, 4}
	n, err := s.Read(buf)
	if err != nil {
		t.Fatal(err)
	}
	if n != len(buf) {
		t.Fatalf("Read() = %d, want %d", n, len(buf))
	}
	if diff := cmp.Diff([]byte{0, 0, 0, 0}, buf); diff != "" {
		t.Errorf("empty frames should read as silence (-want +got):\n%s", diff)
	}
}
