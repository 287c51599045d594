package sound

import (
	"fmt"

	"ticsynth/hw/hwdefs"
	"ticsynth/hw/hwio"
)

//go:generate go tool stringer -type=Command -trimprefix=Cmd

// Command is the effect column of a pattern row.
type Command uint8

const (
	CmdEmpty   Command = iota
	CmdVolume          // M: master volume LEFT=X RIGHT=Y
	CmdChord           // C: chord, X=3 Y=7 plays +0,+3,+7
	CmdJump            // J: jump to FRAME=X BEAT=Y
	CmdSlide           // S: slide to note (legato) over XY ticks
	CmdPitch           // P: fine pitch, XY-128
	CmdVibrato         // V: vibrato PERIOD=X DEPTH=Y
	CmdDelay           // D: delay the row by XY ticks

	numCommands
)

// Row note codes.
const (
	NoteNone  = 0
	NoteStop  = 1
	NoteStart = 4
)

// RowSize is the size in bytes of an encoded Row.
const RowSize = 3

// Row is a pattern row.
//
//	byte 0  note | param1 << 4
//	byte 1  param2 | command << 4 | sfx bit 5 << 7
//	byte 2  sfx bits 0-4 | octave << 5
type Row struct {
	Note    uint8
	Param1  uint8
	Param2  uint8
	Command Command
	Sfx     uint8 // 6 bits
	Octave  uint8
}

// Param returns both command parameters as a single byte.
func (r Row) Param() int {
	return int(r.Param1)<<4 | int(r.Param2)
}

func (r Row) encode(b []byte) []byte {
	return append(b,
		r.Note&0x0F|r.Param1<<4,
		r.Param2&0x0F|uint8(r.Command&0x07)<<4|(r.Sfx>>5&1)<<7,
		r.Sfx&0x1F|r.Octave<<5)
}

func decodeRow(b []byte) Row {
	return Row{
		Note:    b[0] & 0x0F,
		Param1:  b[0] >> 4,
		Param2:  b[1] & 0x0F,
		Command: Command(hwio.Bits8(b[1], 4, hwdefs.MusicCmdBits)),
		Sfx:     hwio.GetBiti8(b[1], 7)<<5 | b[2]&0x1F,
		Octave:  b[2] >> 5,
	}
}

// PatternSize is the size in bytes of an encoded Pattern.
const PatternSize = RowSize * hwdefs.PatternRows

// Pattern is a list of rows for a single channel.
type Pattern [hwdefs.PatternRows]Row

func (p *Pattern) AppendBinary(b []byte) ([]byte, error) {
	for _, r := range p {
		b = r.encode(b)
	}
	return b, nil
}

func (p *Pattern) UnmarshalBinary(data []byte) error {
	if len(data) < PatternSize {
		return fmt.Errorf("pattern: %w: %d bytes, want %d", ErrShortData, len(data), PatternSize)
	}
	for i := range p {
		p[i] = decodeRow(data[i*RowSize:])
	}
	return nil
}

// TrackSize is the size in bytes of an encoded Track.
const TrackSize = hwdefs.MusicFrames*hwdefs.TrackPatternSize + 3

// Track is a song: for each frame, the pattern played by each channel.
//
// Pattern ids start at 1, 0 means the channel has no pattern in that frame.
// Tempo, Rows and Speed are stored relatively to their defaults (150 bpm, 64
// rows and speed 6).
type Track struct {
	Patterns [hwdefs.MusicFrames][hwdefs.SoundChannels]uint8

	Tempo int8
	Rows  uint8 // number of rows removed from the 64 rows of a pattern
	Speed int8
}

// PatternID returns the pattern id of channel ch in frame.
func (t *Track) PatternID(frame, ch int) int {
	return int(t.Patterns[frame][ch])
}

// RowCount returns the number of rows played per frame, at least 1.
func (t *Track) RowCount() int {
	return max(1, hwdefs.PatternRows-int(t.Rows))
}

// IsEmptyFrame reports whether no channel has a pattern in frame.
func (t *Track) IsEmptyFrame(frame int) bool {
	for _, id := range t.Patterns[frame] {
		if id != 0 {
			return false
		}
	}
	return true
}

func (t *Track) AppendBinary(b []byte) ([]byte, error) {
	for _, ids := range t.Patterns {
		var word uint32
		for ch, id := range ids {
			word |= uint32(id&hwdefs.TrackPatternMask) << (ch * hwdefs.TrackPatternBits)
		}
		b = append(b, byte(word), byte(word>>8), byte(word>>16))
	}
	return append(b, uint8(t.Tempo), t.Rows, uint8(t.Speed)), nil
}

func (t *Track) MarshalBinary() ([]byte, error) {
	return t.AppendBinary(make([]byte, 0, TrackSize))
}

func (t *Track) UnmarshalBinary(data []byte) error {
	if len(data) < TrackSize {
		return fmt.Errorf("track: %w: %d bytes, want %d", ErrShortData, len(data), TrackSize)
	}
	for f := range t.Patterns {
		b := data[f*hwdefs.TrackPatternSize:]
		word := uint32(b[0]) | uint32(b[1])<<8 | uint32(b[2])<<16
		for ch := range t.Patterns[f] {
			t.Patterns[f][ch] = uint8(word >> (ch * hwdefs.TrackPatternBits) & hwdefs.TrackPatternMask)
		}
	}
	hdr := data[hwdefs.MusicFrames*hwdefs.TrackPatternSize:]
	t.Tempo = int8(hdr[0])
	t.Rows = hdr[1]
	t.Speed = int8(hdr[2])
	return nil
}
