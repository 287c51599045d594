package sound

import "ticsynth/hw/hwdefs"

// ChannelData is the playback state of a sample on a channel.
type ChannelData struct {
	Index    int // sample index, -1 when inactive
	Note     int // semitone + octave*12
	Duration int // remaining ticks, -1 for infinite
	Tick     int // ticks elapsed since trigger, -1 before the first one
	Speed    int8
	Pos      [NumLanes]int8 // loop position per lane, -1 when unset

	Left  uint8
	Right uint8
}

// Active reports whether a sample is playing on the channel.
func (c ChannelData) Active() bool { return c.Index >= 0 }

func (c *ChannelData) resetPos() {
	for i := range c.Pos {
		c.Pos[i] = -1
	}
	c.Tick = -1
}

func (c *ChannelData) deactivate() {
	c.Index = -1
	c.resetPos()
}

// set triggers sample index (or stops the channel if negative). A speed that
// doesn't fit in 3 signed bits selects the sample default speed.
func (c *ChannelData) set(bank *Bank, index, note, octave, duration int, left, right uint8, speed int) {
	c.Left = left & 0x0F
	c.Right = right & 0x0F

	if index >= 0 {
		if speed >= -4 && speed <= 3 {
			c.Speed = int8(speed)
		} else {
			c.Speed = bank.Samples[index].Speed
		}
	}

	c.Note = note + octave*hwdefs.Notes
	c.Duration = duration
	c.Index = index
	c.resetPos()
}

type chordCommand struct {
	tick         int
	note1, note2 uint8
}

type vibratoCommand struct {
	tick          int
	period, depth uint8
}

type slideCommand struct {
	tick     int
	note     int
	duration int
}

type delayCommand struct {
	row     Row
	pending bool
	ticks   int
}

// CommandData is the per-channel state of the running row commands.
type CommandData struct {
	chord     chordCommand
	vibrato   vibratoCommand
	slide     slideCommand
	finepitch int
	delay     delayCommand
}

// JumpCommand is a pending jump, applied at the next row change.
type JumpCommand struct {
	Active bool
	Frame  int
	Beat   int
}
