package sound

import "ticsynth/hw/hwdefs"

// Demo waveforms and samples.
const (
	DemoWaveSquare = iota
	DemoWaveSaw
	DemoWaveTriangle
	DemoWavePulse
	DemoWaveNoise = hwdefs.Waves - 1
)

const (
	DemoSfxLead = iota
	DemoSfxBass
	DemoSfxArp
	DemoSfxDrum
)

// DemoBank returns a small bank with a few waveforms and samples, and a
// 4-frame song in track 0.
func DemoBank() *Bank {
	b := &Bank{}

	for i := range hwdefs.WaveValues {
		if i < hwdefs.WaveValues/2 {
			b.Waveforms[DemoWaveSquare].Poke(i, 0x0F)
		}
		if i < hwdefs.WaveValues/4 {
			b.Waveforms[DemoWavePulse].Poke(i, 0x0F)
		}
		b.Waveforms[DemoWaveSaw].Poke(i, uint8(i/2))

		tri := i
		if i >= hwdefs.WaveValues/2 {
			tri = hwdefs.WaveValues - 1 - i
		}
		b.Waveforms[DemoWaveTriangle].Poke(i, uint8(tri))
	}

	lead := &b.Samples[DemoSfxLead]
	for i := range lead.Ticks {
		lead.Ticks[i] = SampleTick{Wave: DemoWaveSquare, Volume: uint8(min(i/3, 8))}
	}
	lead.Ticks[0].Wave = DemoWavePulse
	lead.Note, lead.Octave = 0, 4
	lead.Speed = 1

	bass := &b.Samples[DemoSfxBass]
	for i := range bass.Ticks {
		bass.Ticks[i] = SampleTick{Wave: DemoWaveTriangle, Volume: 1}
	}
	bass.Octave = 2

	arp := &b.Samples[DemoSfxArp]
	for i, c := range []uint8{0, 4, 7} {
		arp.Ticks[i] = SampleTick{Wave: DemoWaveSaw, Volume: 4, Chord: c}
	}
	arp.Loops[LaneChord] = Loop{Start: 0, Size: 3}
	arp.Loops[LaneWave] = Loop{Start: 0, Size: 3}
	arp.Loops[LaneVolume] = Loop{Start: 0, Size: 3}
	arp.Octave = 4
	arp.MuteLeft = true

	drum := &b.Samples[DemoSfxDrum]
	for i := range drum.Ticks {
		drum.Ticks[i] = SampleTick{Wave: DemoWaveNoise, Volume: uint8(min(i*2, 15)), Pitch: -int8(min(i, 8))}
	}
	drum.Octave = 6
	drum.MuteRight = true

	// Pattern 1: melody.
	melody := b.Pattern(1)
	for i, n := range []int{0, 4, 7, 12, 11, 7, 4, 2} {
		melody[i*4] = Row{Note: uint8(NoteStart + n%12), Octave: uint8(4 + n/12), Sfx: DemoSfxLead}
	}
	melody[28] = Row{Note: NoteStop}
	melody[16].Command, melody[16].Param1, melody[16].Param2 = CmdVibrato, 3, 4

	// Pattern 2: bass line.
	bassline := b.Pattern(2)
	for i, n := range []int{0, 0, 5, 7} {
		bassline[i*8] = Row{Note: uint8(NoteStart + n), Octave: 2, Sfx: DemoSfxBass}
	}
	bassline[24].Command, bassline[24].Param2 = CmdSlide, 8

	// Pattern 3: drums.
	drums := b.Pattern(3)
	for i := 0; i < 32; i += 4 {
		drums[i] = Row{Note: NoteStart, Octave: 6, Sfx: DemoSfxDrum}
	}
	drums[30] = Row{Note: NoteStart, Octave: 6, Sfx: DemoSfxDrum, Command: CmdDelay, Param2: 2}

	// Pattern 4: chords.
	chords := b.Pattern(4)
	chords[0] = Row{Note: NoteStart, Octave: 4, Sfx: DemoSfxArp, Command: CmdVolume, Param1: 15, Param2: 8}
	chords[16] = Row{Note: NoteStart + 5, Octave: 4, Sfx: DemoSfxArp, Command: CmdChord, Param1: 3, Param2: 7}

	song := &b.Tracks[0]
	song.Rows = hwdefs.PatternRows - 32
	song.Patterns[0] = [hwdefs.SoundChannels]uint8{1, 2, 0, 0}
	song.Patterns[1] = [hwdefs.SoundChannels]uint8{1, 2, 3, 0}
	song.Patterns[2] = [hwdefs.SoundChannels]uint8{1, 2, 3, 4}
	song.Patterns[3] = [hwdefs.SoundChannels]uint8{0, 2, 3, 4}

	return b
}
