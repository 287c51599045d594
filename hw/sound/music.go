package sound

import (
	"fmt"

	"ticsynth/emu/log"
	"ticsynth/hw/hwdefs"
)

//go:generate go tool stringer -type=MusicStatus -trimprefix=Music

// MusicStatus is the playback status of the sequencer.
type MusicStatus uint8

const (
	MusicStop      MusicStatus = iota
	MusicPlayFrame             // play a single frame
	MusicPlay
)

// MusicStateSize is the size in bytes of an encoded MusicState.
const MusicStateSize = 4

// MusicState is the externally visible position of the sequencer.
//
//	byte 0  track
//	byte 1  frame
//	byte 2  row
//	byte 3  loop | status << 1 | sustain << 3
type MusicState struct {
	Track   int8
	Frame   int8
	Row     int8
	Status  MusicStatus
	Loop    bool
	Sustain bool
}

func (ms MusicState) AppendBinary(b []byte) ([]byte, error) {
	var flags uint8
	if ms.Loop {
		flags |= 1
	}
	flags |= uint8(ms.Status&0x03) << 1
	if ms.Sustain {
		flags |= 1 << 3
	}
	return append(b, uint8(ms.Track), uint8(ms.Frame), uint8(ms.Row), flags), nil
}

func (ms MusicState) MarshalBinary() ([]byte, error) {
	return ms.AppendBinary(make([]byte, 0, MusicStateSize))
}

func (ms *MusicState) UnmarshalBinary(data []byte) error {
	if len(data) < MusicStateSize {
		return fmt.Errorf("music state: %w", ErrShortData)
	}
	ms.Track = int8(data[0])
	ms.Frame = int8(data[1])
	ms.Row = int8(data[2])
	ms.Loop = data[3]&1 != 0
	ms.Status = MusicStatus(data[3] >> 1 & 0x03)
	ms.Sustain = data[3]&(1<<3) != 0
	return nil
}

// Sequencer plays a music track, one tick at a time. Each channel of the
// track drives a sample player, modulated by the pattern commands.
type Sequencer struct {
	State MusicState

	Channels [hwdefs.SoundChannels]ChannelData
	Commands [hwdefs.SoundChannels]CommandData
	Jump     JumpCommand

	ticks int
	tempo int // -1 to use the track tempo
	speed int // -1 to use the track speed

	bank *Bank
}

// NewSequencer returns a stopped sequencer playing tracks of bank.
func NewSequencer(bank *Bank) *Sequencer {
	s := &Sequencer{bank: bank, tempo: -1, speed: -1}
	s.Stop()
	return s
}

// Ticks returns the number of ticks elapsed since the start of the frame.
func (s *Sequencer) Ticks() int { return s.ticks }

func (s *Sequencer) track() *Track {
	return &s.bank.Tracks[s.State.Track]
}

// Tempo returns the tempo in use, the override or the track's. It's at
// least 1.
func (s *Sequencer) Tempo() int {
	tempo := s.tempo
	if tempo < 0 {
		tempo = int(s.track().Tempo) + hwdefs.DefaultTempo
	}
	return max(1, tempo)
}

// Speed returns the speed in use, the override or the track's, clamped to
// [MinSpeed, MaxSpeed].
func (s *Sequencer) Speed() int {
	speed := s.speed
	if speed < 0 {
		speed = int(s.track().Speed) + hwdefs.DefaultSpeed
	}
	return max(hwdefs.MinSpeed, min(speed, hwdefs.MaxSpeed))
}

// notesPerMinute is the number of rows per minute at tempo 150 and speed 6.
const notesPerMinute = hwdefs.FrameRate * 60 / hwdefs.NotesPerBeat

// TickToRow converts a tick count to a row index.
func TickToRow(tick, tempo, speed int) int {
	if speed == 0 {
		return 0
	}
	return tick * tempo * hwdefs.DefaultSpeed / speed / notesPerMinute
}

// RowToTick converts a row index to a tick count.
func RowToTick(row, tempo, speed int) int {
	if tempo == 0 {
		return 0
	}
	return row * speed * notesPerMinute / tempo / hwdefs.DefaultSpeed
}

func (s *Sequencer) tick2row(tick int) int { return TickToRow(tick, s.Tempo(), s.Speed()) }
func (s *Sequencer) row2tick(row int) int  { return RowToTick(row, s.Tempo(), s.Speed()) }

// Music starts playing track from frame and row. A negative track, or one
// out of range, stops the music. Negative tempo and speed select the track
// values. A negative row starts at the beginning of the frame.
func (s *Sequencer) Music(track, frame, row int, loop, sustain bool, tempo, speed int) {
	if track < 0 || track >= hwdefs.MusicTracks {
		s.Stop()
		return
	}

	for c := range s.Channels {
		s.setChannel(c, -1, 0, 0, hwdefs.MaxVolume, hwdefs.MaxVolume)
	}

	s.State = MusicState{
		Track:   int8(track),
		Frame:   int8(max(0, min(frame, hwdefs.MusicFrames-1))),
		Row:     -1,
		Status:  MusicPlay,
		Loop:    loop,
		Sustain: sustain,
	}
	s.tempo, s.speed = tempo, speed
	s.ticks = 0
	if row >= 0 {
		s.ticks = s.row2tick(row)
	}

	log.ModMusic.InfoZ("music").
		Int("track", track).
		Int("frame", int(s.State.Frame)).
		Int("row", row).
		Bool("loop", loop).
		Bool("sustain", sustain).
		Int("tempo", s.Tempo()).
		Int("speed", s.Speed()).
		End()
}

// PlayFrame starts like Music, but only plays a single frame.
func (s *Sequencer) PlayFrame(track, frame, row int, loop, sustain bool, tempo, speed int) {
	s.Music(track, frame, row, loop, sustain, tempo, speed)
	if s.State.Status != MusicStop {
		s.State.Status = MusicPlayFrame
	}
}

// Stop stops the music, silencing all channels and clearing commands.
func (s *Sequencer) Stop() {
	s.State.Track = -1
	s.State.Status = MusicStop
	s.resetChannels()
	log.ModMusic.DebugZ("stop").End()
}

func (s *Sequencer) setChannel(c, index, note, octave int, left, right uint8) {
	s.Channels[c].set(s.bank, index, note, octave, -1, left, right, hwdefs.SfxDefSpeed)
}

func (s *Sequencer) resetChannels() {
	for c := range s.Channels {
		s.setChannel(c, -1, 0, 0, 0, 0)
	}
	s.Commands = [hwdefs.SoundChannels]CommandData{}
	s.Jump = JumpCommand{}
}

// Tick advances the music by one tick, writing the channel oscillators into
// regs and stereo.
func (s *Sequencer) Tick(regs *[hwdefs.SoundChannels]Register, stereo *Stereo) {
	if s.State.Status == MusicStop {
		return
	}

	track := s.track()
	row := s.tick2row(s.ticks)

	if row != int(s.State.Row) && s.Jump.Active {
		s.State.Frame = int8(min(s.Jump.Frame, hwdefs.MusicFrames-1))
		row = s.Jump.Beat * hwdefs.NotesPerBeat
		s.ticks = s.row2tick(row)
		s.Jump = JumpCommand{}
		log.ModMusic.DebugZ("jump").Int8("frame", s.State.Frame).Int("row", row).End()
	}

	if row >= track.RowCount() {
		row = 0
		s.ticks = 0
		// Row 0 of the next frame is always entered, even for 1-row frames.
		s.State.Row = -1

		// In sustain mode, channels keep playing across frames.
		if !s.State.Sustain {
			s.resetChannels()
			for c := range s.Channels {
				s.setChannel(c, -1, 0, 0, hwdefs.MaxVolume, hwdefs.MaxVolume)
			}
		}

		switch s.State.Status {
		case MusicPlay:
			s.State.Frame++
			if int(s.State.Frame) >= hwdefs.MusicFrames || track.IsEmptyFrame(int(s.State.Frame)) {
				if !s.State.Loop {
					s.Stop()
					return
				}
				s.State.Frame = 0
			}
		case MusicPlayFrame:
			if !s.State.Loop {
				s.Stop()
				return
			}
		}
		log.ModMusic.DebugZ("next frame").Int8("frame", s.State.Frame).End()
	}

	if row != int(s.State.Row) {
		s.State.Row = int8(row)
		s.enterRow(track)
	}

	for c := range s.Channels {
		ch := &s.Channels[c]
		cmd := &s.Commands[c]

		if cmd.delay.pending && cmd.delay.ticks == 0 {
			cmd.delay.pending = false
			s.applyRow(c, cmd.delay.row)
		}

		if ch.Active() {
			note, pitch := s.modulate(ch, cmd)
			playSfx(s.bank, ch, note, pitch, &regs[c], &stereo[c])
		}

		cmd.chord.tick++
		cmd.vibrato.tick++
		cmd.slide.tick++
		if cmd.delay.ticks > 0 {
			cmd.delay.ticks--
		}
	}

	s.ticks++
}

// enterRow applies the current row of each channel having a pattern in the
// current frame.
func (s *Sequencer) enterRow(track *Track) {
	for c := range s.Channels {
		id := track.PatternID(int(s.State.Frame), c)
		if id == 0 || id > hwdefs.MusicPatterns {
			continue
		}

		row := s.bank.Pattern(id)[s.State.Row]
		cmd := &s.Commands[c]

		// A delayed row still waiting is played before the new one.
		if cmd.delay.pending {
			cmd.delay.pending = false
			s.applyRow(c, cmd.delay.row)
		}

		if row.Command == CmdDelay && row.Param() > 0 {
			cmd.delay = delayCommand{row: row, pending: true, ticks: row.Param()}
			log.ModMusic.DebugZ("delay row").Int("channel", c).Int("ticks", row.Param()).End()
			continue
		}
		s.applyRow(c, row)
	}
}

func (s *Sequencer) applyRow(c int, row Row) {
	ch := &s.Channels[c]
	cmd := &s.Commands[c]

	if row.Note != NoteNone {
		cmd.slide.tick = 0
		cmd.slide.note = ch.Note
	}

	switch {
	case row.Note == NoteStop:
		s.setChannel(c, -1, 0, 0, ch.Left, ch.Right)
	case row.Note >= NoteStart:
		s.setChannel(c, int(row.Sfx), int(row.Note-NoteStart), int(row.Octave), ch.Left, ch.Right)
	}

	switch row.Command {
	case CmdVolume:
		ch.Left, ch.Right = row.Param1, row.Param2
	case CmdChord:
		cmd.chord = chordCommand{note1: row.Param1, note2: row.Param2}
	case CmdJump:
		s.Jump = JumpCommand{Active: true, Frame: int(row.Param1), Beat: int(row.Param2)}
	case CmdVibrato:
		cmd.vibrato = vibratoCommand{period: row.Param1, depth: row.Param2}
	case CmdSlide:
		cmd.slide.duration = row.Param()
	case CmdPitch:
		cmd.finepitch = row.Param() - hwdefs.PitchDelta
	}
}

// modulate returns the note and pitch offset to play on ch for this tick,
// from the chord, vibrato, slide and fine pitch commands.
func (s *Sequencer) modulate(ch *ChannelData, cmd *CommandData) (note, pitch int) {
	note = ch.Note

	chord := [3]int{0, int(cmd.chord.note1), int(cmd.chord.note2)}
	n := 3
	if cmd.chord.note2 == 0 {
		n = 2
	}
	note += chord[cmd.chord.tick%n]

	if cmd.vibrato.period != 0 && cmd.vibrato.depth != 0 {
		p := int(cmd.vibrato.period) << 1
		v := vibrato[(cmd.vibrato.tick%p)*len(vibrato)/p]
		pitch += int(v*int32(cmd.vibrato.depth)) >> 16
	}

	if cmd.slide.tick < cmd.slide.duration {
		note = cmd.slide.note
		pitch += (int(NoteFreq(ch.Note)) - int(NoteFreq(note))) * cmd.slide.tick / cmd.slide.duration
	}

	pitch += cmd.finepitch
	return note, pitch
}
