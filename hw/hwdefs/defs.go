package hwdefs

// Sound hardware constants. Sizes marked as wire contracts must not change,
// they define the layout of the sound section of the console memory.
const (
	SoundChannels = 4

	SfxTicks     = 30
	SfxCountBits = 6
	SfxCount     = 1 << SfxCountBits
	SfxSpeedBits = 3
	SfxDefSpeed  = 1 << SfxSpeedBits // out of the 3-bit signed range: use sample speed

	Notes        = 12
	Octaves      = 8
	PianoStart   = 8
	NoteFreqs    = Notes*Octaves + PianoStart
	MaxVolume    = 15
	NotesPerBeat = 4

	PatternRows   = 64
	MusicPatterns = 60
	PatternStart  = 1
	MusicFrames   = 16
	MusicTracks   = 8
	MusicCmdBits  = 3

	TrackPatternBits = 6
	TrackPatternMask = 1<<TrackPatternBits - 1
	TrackPatternSize = TrackPatternBits * SoundChannels / 8

	DefaultTempo = 150
	DefaultSpeed = 6
	MinSpeed     = 1
	MaxSpeed     = 31
	PitchDelta   = 128

	Waves          = 16
	WaveValues     = 32
	WaveValueBits  = 4
	WaveSize       = WaveValues * WaveValueBits / 8
	PCMSize        = 128
	SampleChannels = 2
)

// Timing.
const (
	ClockRate = 255 << 13
	FrameRate = 60
	EndTime   = ClockRate / FrameRate // clocks per console frame

	DefaultSampleRate = 44100
	DefaultRingLen    = 12 // worst case ~12 ticks of latency, i.e 200ms
)
