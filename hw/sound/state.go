package sound

import (
	"ticsynth/hw/hwdefs"
	"ticsynth/hw/snapshot"
)

func (c *ChannelData) state() snapshot.Channel {
	return snapshot.Channel{
		Index:    c.Index,
		Note:     c.Note,
		Duration: c.Duration,
		Tick:     c.Tick,
		Speed:    c.Speed,
		Pos:      c.Pos,
		Left:     c.Left,
		Right:    c.Right,
	}
}

func (c *ChannelData) setState(st *snapshot.Channel) {
	index := st.Index
	if index >= hwdefs.SfxCount {
		index = -1
	}
	*c = ChannelData{
		Index:    index,
		Note:     st.Note,
		Duration: st.Duration,
		Tick:     st.Tick,
		Speed:    st.Speed,
		Pos:      st.Pos,
		Left:     st.Left & 0x0F,
		Right:    st.Right & 0x0F,
	}
}

func (cd *CommandData) state() snapshot.Command {
	return snapshot.Command{
		ChordTick:     cd.chord.tick,
		ChordNote1:    cd.chord.note1,
		ChordNote2:    cd.chord.note2,
		VibratoTick:   cd.vibrato.tick,
		VibratoPeriod: cd.vibrato.period,
		VibratoDepth:  cd.vibrato.depth,
		SlideTick:     cd.slide.tick,
		SlideNote:     cd.slide.note,
		SlideDuration: cd.slide.duration,
		FinePitch:     cd.finepitch,
		DelayRow:      [RowSize]byte(cd.delay.row.encode(nil)),
		DelayPending:  cd.delay.pending,
		DelayTicks:    cd.delay.ticks,
	}
}

func (cd *CommandData) setState(st *snapshot.Command) {
	*cd = CommandData{
		chord:     chordCommand{tick: st.ChordTick, note1: st.ChordNote1, note2: st.ChordNote2},
		vibrato:   vibratoCommand{tick: st.VibratoTick, period: st.VibratoPeriod, depth: st.VibratoDepth},
		slide:     slideCommand{tick: st.SlideTick, note: st.SlideNote, duration: st.SlideDuration},
		finepitch: st.FinePitch,
		delay:     delayCommand{row: decodeRow(st.DelayRow[:]), pending: st.DelayPending, ticks: st.DelayTicks},
	}
}

// Snapshot returns the sequencer state, including the tick counter and the
// per-channel commands.
func (s *Sequencer) Snapshot() snapshot.Music {
	st := snapshot.Music{
		Track:   s.State.Track,
		Frame:   s.State.Frame,
		Row:     s.State.Row,
		Status:  uint8(s.State.Status),
		Loop:    s.State.Loop,
		Sustain: s.State.Sustain,
		Ticks:   s.ticks,
		Tempo:   s.tempo,
		Speed:   s.speed,
		Jump: snapshot.Jump{
			Active: s.Jump.Active,
			Frame:  s.Jump.Frame,
			Beat:   s.Jump.Beat,
		},
	}
	for i := range s.Channels {
		st.Channels[i] = s.Channels[i].state()
		st.Commands[i] = s.Commands[i].state()
	}
	return st
}

// SetSnapshot restores the sequencer. Out of range tracks stop the music.
func (s *Sequencer) SetSnapshot(st *snapshot.Music) {
	s.State = MusicState{
		Track:   st.Track,
		Frame:   max(0, min(st.Frame, hwdefs.MusicFrames-1)),
		Row:     st.Row,
		Status:  MusicStatus(st.Status & 0x03),
		Loop:    st.Loop,
		Sustain: st.Sustain,
	}
	s.ticks, s.tempo, s.speed = max(0, st.Ticks), st.Tempo, st.Speed
	s.Jump = JumpCommand{Active: st.Jump.Active, Frame: st.Jump.Frame, Beat: st.Jump.Beat}
	for i := range s.Channels {
		s.Channels[i].setState(&st.Channels[i])
		s.Commands[i].setState(&st.Commands[i])
	}

	if s.State.Track < 0 || s.State.Track >= hwdefs.MusicTracks || s.State.Status > MusicPlay {
		s.Stop()
	}
}

func (v *Voices) State() [hwdefs.SoundChannels]snapshot.Channel {
	var st [hwdefs.SoundChannels]snapshot.Channel
	for i := range v {
		st[i] = v[i].state()
	}
	return st
}

func (v *Voices) SetState(st *[hwdefs.SoundChannels]snapshot.Channel) {
	for i := range v {
		v[i].setState(&st[i])
	}
}
