package sound

import "ticsynth/hw/hwdefs"

// noteFreqs maps a note (semitone + octave*12, 8 sub-piano entries first) to
// its register frequency.
var noteFreqs = [hwdefs.NoteFreqs]uint16{
	0x0010, 0x0011, 0x0012, 0x0013, 0x0015, 0x0016, 0x0017, 0x0018, 0x001A, 0x001C, 0x001D, 0x001F,
	0x0021, 0x0023, 0x0025, 0x0027, 0x0029, 0x002C, 0x002E, 0x0031, 0x0034, 0x0037, 0x003A, 0x003E,
	0x0041, 0x0045, 0x0049, 0x004E, 0x0052, 0x0057, 0x005C, 0x0062, 0x0068, 0x006E, 0x0075, 0x007B,
	0x0083, 0x008B, 0x0093, 0x009C, 0x00A5, 0x00AF, 0x00B9, 0x00C4, 0x00D0, 0x00DC, 0x00E9, 0x00F7,
	0x0106, 0x0115, 0x0126, 0x0137, 0x014A, 0x015D, 0x0172, 0x0188, 0x019F, 0x01B8, 0x01D2, 0x01EE,
	0x020B, 0x022A, 0x024B, 0x026E, 0x0293, 0x02BA, 0x02E4, 0x0310, 0x033F, 0x0370, 0x03A4, 0x03DC,
	0x0417, 0x0455, 0x0497, 0x04DD, 0x0527, 0x0575, 0x05C8, 0x0620, 0x067D, 0x06E0, 0x0749, 0x07B8,
	0x082D, 0x08A9, 0x092D, 0x09B9, 0x0A4D, 0x0AEA, 0x0B90, 0x0C40, 0x0CFA, 0x0DC0, 0x0E91, 0x0F6F,
	0x105A, 0x1153, 0x125B, 0x1372, 0x149A, 0x15D4, 0x1720, 0x1880,
}

// NoteFreq returns the register frequency of note, clamped to the valid range.
func NoteFreq(note int) uint16 {
	return noteFreqs[clampNote(note)]
}

func clampNote(note int) int {
	return max(0, min(note, len(noteFreqs)-1))
}

// vibrato is one period of a sine, 16.16 fixed point.
var vibrato = [32]int32{
	0, 12785, 25080, 36410, 46341, 54491, 60547, 64277,
	65536, 64277, 60547, 54491, 46341, 36410, 25080, 12785,
	0, -12785, -25080, -36410, -46341, -54491, -60547, -64277,
	-65536, -64277, -60547, -54491, -46341, -36410, -25080, -12785,
}
