package snapshot

// Sound is the saved state of the sound engine.
type Sound struct {
	Version int

	Music  Music
	Sfx    [4]Channel
	PCM    [128]byte
	Synth  Synth
	Frames uint64
}

type Music struct {
	Track   int8
	Frame   int8
	Row     int8
	Status  uint8
	Loop    bool
	Sustain bool

	Ticks int
	Tempo int
	Speed int

	Channels [4]Channel
	Commands [4]Command
	Jump     Jump
}

type Channel struct {
	Index    int
	Note     int
	Duration int
	Tick     int
	Speed    int8
	Pos      [4]int8
	Left     uint8
	Right    uint8
}

type Command struct {
	ChordTick  int
	ChordNote1 uint8
	ChordNote2 uint8

	VibratoTick   int
	VibratoPeriod uint8
	VibratoDepth  uint8

	SlideTick     int
	SlideNote     int
	SlideDuration int

	FinePitch int

	DelayRow     [3]byte
	DelayPending bool
	DelayTicks   int
}

type Jump struct {
	Active bool
	Frame  int
	Beat   int
}

// Synth holds the oscillators of both stereo sides.
type Synth struct {
	Left  SynthSide
	Right SynthSide
}

type SynthSide struct {
	Channels [4]Oscillator
	PCM      Oscillator
}

type Oscillator struct {
	Time  int
	Phase int
	Amp   int
}
