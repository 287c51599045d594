package sound

import (
	"ticsynth/emu/log"
	"ticsynth/hw/hwdefs"
)

// sfxPos converts elapsed ticks into an envelope position. Positive speeds
// play faster, negative ones slower.
func sfxPos(speed int8, tick int) int {
	if speed > 0 {
		return tick * (1 + int(speed))
	}
	return tick / (1 - int(speed))
}

// loopPos returns the envelope index reached after pos steps. The index
// walks from 0 to the end of the loop window then cycles inside it. Without
// a loop, it stops on the last tick.
func loopPos(l Loop, pos int) int {
	if l.Size == 0 {
		return min(pos, hwdefs.SfxTicks-1)
	}

	start, size := int(l.Start), int(l.Size)
	end := start + size - 1
	if pos <= end {
		return pos
	}
	return start + (pos-end-1)%size
}

// playSfx advances the sample playing on ch by one tick, and writes the
// resulting oscillator state into reg and st. note and pitch are the note to
// play and a frequency offset computed by the caller. It reports whether the
// register has been written, which doesn't happen for inactive channels nor
// for ticks where the volume envelope is silent.
func playSfx(bank *Bank, ch *ChannelData, note, pitch int, reg *Register, st *StereoVolume) bool {
	if ch.Index < 0 || ch.Duration == 0 {
		ch.deactivate()
		return false
	}

	if ch.Duration > 0 {
		ch.Duration--
	}

	smp := &bank.Samples[ch.Index]
	ch.Tick++
	pos := sfxPos(ch.Speed, ch.Tick)
	for i := range ch.Pos {
		ch.Pos[i] = int8(loopPos(smp.Loops[i], pos))
	}

	written := false
	volume := hwdefs.MaxVolume - smp.Ticks[ch.Pos[LaneVolume]].Volume
	if volume > 0 {
		arp := int(smp.Ticks[ch.Pos[LaneChord]].Chord)
		if smp.Reverse {
			arp = -arp
		}
		note = clampNote(note + arp)

		finepitch := int(smp.Ticks[ch.Pos[LanePitch]].Pitch)
		if smp.Pitch16x {
			finepitch *= 16
		}

		reg.SetFreq(int(noteFreqs[note]) + finepitch + pitch)
		reg.Volume = volume
		reg.Wave = bank.Waveforms[smp.Ticks[ch.Pos[LaneWave]].Wave]

		st.Left, st.Right = ch.Left, ch.Right
		if smp.MuteLeft {
			st.Left = 0
		}
		if smp.MuteRight {
			st.Right = 0
		}
		written = true
	}

	if ch.Duration == 0 {
		log.ModSfx.DebugZ("sfx ended").Int("index", ch.Index).End()
		ch.deactivate()
	}
	return written
}

// Voices are the channels playing one-shot sound effects, independently of
// the music.
type Voices [hwdefs.SoundChannels]ChannelData

// NewVoices returns all voices inactive.
func NewVoices() Voices {
	var v Voices
	for i := range v {
		v[i].deactivate()
	}
	return v
}

// Trigger starts sample index on channel ch, or stops the channel if index is
// negative. Out of range arguments are clamped: ch into the channel range,
// volumes to 4 bits, and unknown sample ids stop the channel. A negative note
// or octave selects the sample default.
func (v *Voices) Trigger(bank *Bank, index, note, octave, duration, ch int, left, right uint8, speed int) {
	ch = max(0, min(ch, hwdefs.SoundChannels-1))
	if index >= hwdefs.SfxCount {
		index = -1
	}
	if index >= 0 {
		smp := &bank.Samples[index]
		if note < 0 {
			note = int(smp.Note)
		}
		if octave < 0 {
			octave = int(smp.Octave)
		}
	}
	note, octave = max(note, 0), max(octave, 0)

	log.ModSfx.DebugZ("trigger").
		Int("index", index).
		Int("note", note).
		Int("octave", octave).
		Int("duration", duration).
		Int("channel", ch).
		End()

	v[ch].set(bank, index, note, octave, duration, left, right, speed)
}

// Tick advances all active voices by one tick, writing into regs and stereo.
func (v *Voices) Tick(bank *Bank, regs *[hwdefs.SoundChannels]Register, stereo *Stereo) {
	for i := range v {
		if v[i].Active() {
			playSfx(bank, &v[i], v[i].Note, 0, &regs[i], &stereo[i])
		}
	}
}
