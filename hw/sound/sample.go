package sound

import (
	"fmt"

	"ticsynth/hw/hwdefs"
	"ticsynth/hw/hwio"
)

// Lane identifies one of the independently looping envelopes of a sample.
type Lane int

const (
	LaneWave Lane = iota
	LaneVolume
	LaneChord
	LanePitch

	NumLanes
)

// SampleTick is one step of a sample envelope.
type SampleTick struct {
	Volume uint8 // attenuation, 0 is loudest
	Wave   uint8
	Chord  uint8
	Pitch  int8 // 4-bit signed
}

// Loop is a loop window over a lane, [Start, Start+Size). A zero Size means
// the lane does not loop.
type Loop struct {
	Start uint8
	Size  uint8
}

// SampleSize is the size in bytes of an encoded Sample.
const SampleSize = hwdefs.SfxTicks*2 + 2 + int(NumLanes)

// Sample is a sound effect definition.
type Sample struct {
	Ticks [hwdefs.SfxTicks]SampleTick

	Octave   uint8
	Pitch16x bool // pitch envelope is scaled by 16
	Speed    int8 // 3-bit signed
	Reverse  bool // chord offsets are negated
	Note     uint8

	// Stereo mutes.
	MuteLeft  bool
	MuteRight bool

	Loops [NumLanes]Loop
}

func (s *Sample) AppendBinary(b []byte) ([]byte, error) {
	for _, t := range s.Ticks {
		b = append(b,
			t.Volume&0x0F|t.Wave<<4,
			t.Chord&0x0F|uint8(t.Pitch)<<4)
	}

	var flags0, flags1 uint8
	flags0 = s.Octave & 0x07
	hwio.SetBit8(&flags0, 3, s.Pitch16x)
	flags0 |= (uint8(s.Speed) & 0x07) << 4
	hwio.SetBit8(&flags0, 7, s.Reverse)

	flags1 = s.Note & 0x0F
	hwio.SetBit8(&flags1, 4, s.MuteLeft)
	hwio.SetBit8(&flags1, 5, s.MuteRight)
	b = append(b, flags0, flags1)

	for _, l := range s.Loops {
		b = append(b, l.Start&0x0F|l.Size<<4)
	}
	return b, nil
}

func (s *Sample) MarshalBinary() ([]byte, error) {
	return s.AppendBinary(make([]byte, 0, SampleSize))
}

func (s *Sample) UnmarshalBinary(data []byte) error {
	if len(data) < SampleSize {
		return fmt.Errorf("sample: %w: %d bytes, want %d", ErrShortData, len(data), SampleSize)
	}

	for i := range s.Ticks {
		b0, b1 := data[i*2], data[i*2+1]
		s.Ticks[i] = SampleTick{
			Volume: b0 & 0x0F,
			Wave:   b0 >> 4,
			Chord:  b1 & 0x0F,
			Pitch:  hwio.SignExtend(b1>>4, 4),
		}
	}

	flags0, flags1 := data[hwdefs.SfxTicks*2], data[hwdefs.SfxTicks*2+1]
	s.Octave = hwio.Bits8(flags0, 0, 3)
	s.Pitch16x = hwio.GetBit8(flags0, 3)
	s.Speed = hwio.SignExtend(hwio.Bits8(flags0, 4, 3), hwdefs.SfxSpeedBits)
	s.Reverse = hwio.GetBit8(flags0, 7)
	s.Note = hwio.Bits8(flags1, 0, 4)
	s.MuteLeft = hwio.GetBit8(flags1, 4)
	s.MuteRight = hwio.GetBit8(flags1, 5)

	loops := data[hwdefs.SfxTicks*2+2:]
	for i := range s.Loops {
		s.Loops[i] = Loop{Start: loops[i] & 0x0F, Size: loops[i] >> 4}
	}
	return nil
}
