package sound

import (
	"fmt"

	"ticsynth/hw/hwdefs"
	"ticsynth/hw/hwio"
)

// Waveform holds 32 4-bit amplitude values, two per byte, low nibble first.
type Waveform [hwdefs.WaveSize]byte

func (w *Waveform) Peek(i int) uint8    { return hwio.Peek4(w[:], i) }
func (w *Waveform) Poke(i int, v uint8) { hwio.Poke4(w[:], i, v) }

// IsNoise reports whether w selects the noise generator instead of waveform
// playback, that is when w is flat and either all zeroes or all ones.
func (w *Waveform) IsNoise() bool {
	first := w[0] & 0x0F
	first |= first << 4
	for _, b := range w {
		if b != first {
			return false
		}
	}
	return first == 0x00 || first == 0xFF
}

// ShortNoise reports whether a noise waveform selects the short LFSR tap,
// which gives the metallic noise color.
func (w *Waveform) ShortNoise() bool { return w[0] != 0 }

// RegisterSize is the size in bytes of an encoded Register.
const RegisterSize = 2 + hwdefs.WaveSize

// Register is the oscillator state of one sound channel for one tick.
//
//	byte 0     frequency bits 0-7
//	byte 1     frequency bits 8-11 | volume << 4
//	byte 2-17  waveform
type Register struct {
	Freq   uint16 // 12 bits
	Volume uint8  // 4 bits
	Wave   Waveform
}

// SetFreq sets the register frequency, keeping only the low 12 bits.
func (r *Register) SetFreq(freq int) {
	r.Freq = uint16(freq) & 0x0FFF
}

func (r Register) AppendBinary(b []byte) ([]byte, error) {
	b = append(b, uint8(r.Freq), uint8(r.Freq>>8)&0x0F|r.Volume<<4)
	return append(b, r.Wave[:]...), nil
}

func (r Register) MarshalBinary() ([]byte, error) {
	return r.AppendBinary(make([]byte, 0, RegisterSize))
}

func (r *Register) UnmarshalBinary(data []byte) error {
	if len(data) < RegisterSize {
		return fmt.Errorf("register: %w: %d bytes, want %d", ErrShortData, len(data), RegisterSize)
	}
	r.Freq = uint16(data[0]) | uint16(data[1]&0x0F)<<8
	r.Volume = data[1] >> 4
	copy(r.Wave[:], data[2:RegisterSize])
	return nil
}

// StereoVolume holds the left and right 4-bit gains of a channel.
type StereoVolume struct {
	Left  uint8
	Right uint8
}

// Stereo holds the gains of all channels for one tick.
type Stereo [hwdefs.SoundChannels]StereoVolume

// FullStereo returns a Stereo with all gains at their maximum.
func FullStereo() Stereo {
	var s Stereo
	for i := range s {
		s[i] = StereoVolume{Left: hwdefs.MaxVolume, Right: hwdefs.MaxVolume}
	}
	return s
}

// Pack encodes the stereo gains into the console memory layout: one nibble
// per side, left first, channel 0 in the lowest byte.
func (s Stereo) Pack() uint32 {
	var buf [4]byte
	for i, v := range s {
		hwio.Poke4(buf[:], i*2, v.Left)
		hwio.Poke4(buf[:], i*2+1, v.Right)
	}
	return uint32(buf[0]) | uint32(buf[1])<<8 | uint32(buf[2])<<16 | uint32(buf[3])<<24
}

// UnpackStereo decodes gains packed with Stereo.Pack.
func UnpackStereo(v uint32) Stereo {
	buf := [4]byte{byte(v), byte(v >> 8), byte(v >> 16), byte(v >> 24)}
	var s Stereo
	for i := range s {
		s[i].Left = hwio.Peek4(buf[:], i*2)
		s[i].Right = hwio.Peek4(buf[:], i*2+1)
	}
	return s
}
