package hw

import (
	"sync/atomic"

	"ticsynth/emu/log"
	"ticsynth/hw/audio"
	"ticsynth/hw/hwdefs"
	"ticsynth/hw/snapshot"
	"ticsynth/hw/sound"
)

// StateVersion is the version of the saved state format.
const StateVersion = 1

// EngineConfig holds the output sample rate and the frame ring length.
type EngineConfig struct {
	SampleRate int
	RingLen    int
}

// DefaultEngineConfig returns the configuration used when none is provided.
func DefaultEngineConfig() EngineConfig {
	return EngineConfig{
		SampleRate: hwdefs.DefaultSampleRate,
		RingLen:    hwdefs.DefaultRingLen,
	}
}

// SoundEngine owns the sequencer, the sfx voices, the frame ring and the
// synthesizer.
//
// There are 2 sides. The producer side (Music, PlayFrame, Sfx, SetPCM,
// TickStart, TickEnd) is driven by the console at 60Hz. The consumer side
// (SynthSound) is driven by the audio device. Each side must be used by a
// single goroutine, they can run concurrently.
type SoundEngine struct {
	bank *sound.Bank

	// producer side
	music *sound.Sequencer
	sfx   sound.Voices
	frame audio.Frame
	ticks uint64

	ring *audio.Ring[audio.Frame]

	// consumer side
	synth   *audio.Synth
	cur     audio.Frame
	out     []int16
	starved atomic.Uint64
}

// NewSoundEngine returns an engine playing the tracks and samples of bank.
func NewSoundEngine(bank *sound.Bank, cfg EngineConfig) *SoundEngine {
	if cfg.SampleRate <= 0 {
		cfg.SampleRate = hwdefs.DefaultSampleRate
	}
	if cfg.RingLen < 2 {
		cfg.RingLen = hwdefs.DefaultRingLen
	}

	e := &SoundEngine{
		bank:  bank,
		music: sound.NewSequencer(bank),
		sfx:   sound.NewVoices(),
		ring:  audio.NewRing[audio.Frame](cfg.RingLen),
		synth: audio.NewSynth(cfg.SampleRate),
	}
	e.out = make([]int16, 2*e.synth.SamplesPerFrame())
	e.frame.Reset()

	log.ModSound.InfoZ("sound engine created").
		Int("rate", cfg.SampleRate).
		Int("ring", cfg.RingLen).
		End()
	return e
}

func (e *SoundEngine) Bank() *sound.Bank { return e.bank }

// Music starts playing a track, or stops the music if track is negative.
// See sound.Sequencer.Music.
func (e *SoundEngine) Music(track, frame, row int, loop, sustain bool, tempo, speed int) {
	e.music.Music(track, frame, row, loop, sustain, tempo, speed)
}

// PlayFrame plays a single frame of a track.
func (e *SoundEngine) PlayFrame(track, frame, row int, loop, sustain bool, tempo, speed int) {
	e.music.PlayFrame(track, frame, row, loop, sustain, tempo, speed)
}

// StopMusic stops the music.
func (e *SoundEngine) StopMusic() { e.music.Stop() }

// Sfx plays sample index on a channel, for duration ticks (-1 for ever). A
// negative index stops the channel. See sound.Voices.Trigger.
func (e *SoundEngine) Sfx(index, note, octave, duration, channel, left, right, speed int) {
	e.sfx.Trigger(e.bank, index, note, octave, duration, channel, uint8(left&0x0F), uint8(right&0x0F), speed)
}

// MusicState returns the current position of the sequencer.
func (e *SoundEngine) MusicState() sound.MusicState { return e.music.State }

// Sequencer gives access to the music sequencer, from the producer side.
func (e *SoundEngine) Sequencer() *sound.Sequencer { return e.music }

// SfxChannel returns the state of an sfx voice.
func (e *SoundEngine) SfxChannel(ch int) sound.ChannelData { return e.sfx[ch] }

// SetPCM copies pcm into the PCM region of the current tick. It must be
// called between TickStart and TickEnd.
func (e *SoundEngine) SetPCM(pcm []byte) {
	copy(e.frame.PCM[:], pcm)
}

// Frame returns the frame built by the current tick.
func (e *SoundEngine) Frame() *audio.Frame { return &e.frame }

// TickStart resets the sound registers, then advances the music and the sfx
// voices by one tick.
func (e *SoundEngine) TickStart() {
	e.frame.Reset()
	e.music.Tick(&e.frame.Registers, &e.frame.Stereo)
	e.sfx.Tick(e.bank, &e.frame.Registers, &e.frame.Stereo)
}

// TickEnd publishes the frame built by the current tick for synthesis.
func (e *SoundEngine) TickEnd() {
	e.ticks++
	if !e.ring.Push(&e.frame) {
		log.ModSound.DebugZ("frame ring full").Uint("tick", e.ticks).End()
	}
}

// Tick runs TickStart then TickEnd.
func (e *SoundEngine) Tick() {
	e.TickStart()
	e.TickEnd()
}

// Ticks returns the number of ticks run since the engine creation.
func (e *SoundEngine) Ticks() uint64 { return e.ticks }

// SynthSound renders one frame of interleaved stereo samples from the oldest
// unconsumed tick. When no new tick is available, the last one is rendered
// again. The returned slice is only valid until the next call.
func (e *SoundEngine) SynthSound() []int16 {
	if !e.ring.Pop(&e.cur) {
		e.starved.Add(1)
	}
	n := e.synth.Render(&e.cur, e.out)
	return e.out[:2*n]
}

// Starved returns how many times SynthSound found no new tick.
func (e *SoundEngine) Starved() uint64 { return e.starved.Load() }

func (e *SoundEngine) SampleRate() int      { return e.synth.SampleRate() }
func (e *SoundEngine) SamplesPerFrame() int { return e.synth.SamplesPerFrame() }

// State returns the engine state. It must not run concurrently with any
// other method.
func (e *SoundEngine) State() *snapshot.Sound {
	return &snapshot.Sound{
		Version: StateVersion,
		Music:   e.music.Snapshot(),
		Sfx:     e.sfx.State(),
		PCM:     e.frame.PCM,
		Synth:   *e.synth.State(),
		Frames:  e.ticks,
	}
}

// SetState restores the engine state. Frames waiting for synthesis are
// dropped. It must not run concurrently with any other method.
func (e *SoundEngine) SetState(state *snapshot.Sound) {
	e.music.SetSnapshot(&state.Music)
	e.sfx.SetState(&state.Sfx)
	e.frame.PCM = state.PCM
	e.synth.SetState(&state.Synth)
	e.ticks = state.Frames
	e.ring.Reset()
	e.cur = audio.Frame{}

	log.ModSound.InfoZ("state restored").Uint("tick", e.ticks).End()
}
