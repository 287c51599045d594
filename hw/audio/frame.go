package audio

import (
	"fmt"

	"github.com/cespare/xxhash"

	"ticsynth/hw/hwdefs"
	"ticsynth/hw/sound"
)

// FrameSize is the size in bytes of an encoded Frame.
const FrameSize = hwdefs.SoundChannels*sound.RegisterSize + 4 + hwdefs.PCMSize

// Frame is the sound state produced by one console tick: what the
// synthesizer needs to render one frame of audio.
type Frame struct {
	Registers [hwdefs.SoundChannels]sound.Register
	Stereo    sound.Stereo
	PCM       [hwdefs.PCMSize]byte
}

// Reset zeroes registers and PCM, and sets all stereo gains to maximum.
func (f *Frame) Reset() {
	f.Registers = [hwdefs.SoundChannels]sound.Register{}
	f.PCM = [hwdefs.PCMSize]byte{}
	f.Stereo = sound.FullStereo()
}

// Silent reports whether no channel has a non-zero volume and the PCM
// region is empty.
func (f *Frame) Silent() bool {
	for i := range f.Registers {
		if f.Registers[i].Volume != 0 {
			return false
		}
	}
	return f.PCM == [hwdefs.PCMSize]byte{}
}

func (f *Frame) AppendBinary(b []byte) ([]byte, error) {
	var err error
	for i := range f.Registers {
		if b, err = f.Registers[i].AppendBinary(b); err != nil {
			return nil, err
		}
	}
	st := f.Stereo.Pack()
	b = append(b, byte(st), byte(st>>8), byte(st>>16), byte(st>>24))
	return append(b, f.PCM[:]...), nil
}

func (f *Frame) MarshalBinary() ([]byte, error) {
	return f.AppendBinary(make([]byte, 0, FrameSize))
}

func (f *Frame) UnmarshalBinary(data []byte) error {
	if len(data) < FrameSize {
		return fmt.Errorf("frame: %w: %d bytes, want %d", sound.ErrShortData, len(data), FrameSize)
	}
	for i := range f.Registers {
		if err := f.Registers[i].UnmarshalBinary(data); err != nil {
			return err
		}
		data = data[sound.RegisterSize:]
	}
	f.Stereo = sound.UnpackStereo(uint32(data[0]) | uint32(data[1])<<8 | uint32(data[2])<<16 | uint32(data[3])<<24)
	copy(f.PCM[:], data[4:])
	return nil
}

// Sum returns a fingerprint of the frame content.
func (f *Frame) Sum() uint64 {
	var buf [FrameSize]byte
	b, _ := f.AppendBinary(buf[:0])
	return xxhash.Sum64(b)
}
