package emu

import (
	"encoding/binary"
	"fmt"

	"github.com/arl/blip/wave"
	"github.com/cespare/xxhash"

	"ticsynth/emu/log"
	"ticsynth/hw"
	"ticsynth/hw/hwdefs"
	"ticsynth/hw/sound"
)

// RenderOptions describes what to render offline.
type RenderOptions struct {
	// Track to play, negative for none.
	Track   int
	Frame   int
	Row     int
	Loop    bool
	Sustain bool
	Tempo   int
	Speed   int

	// PlayFrame plays a single frame of Track.
	PlayFrame bool

	// Sfx to play on channel 0, negative for none.
	Sfx         int
	SfxNote     int
	SfxOctave   int
	SfxDuration int

	// MaxTicks bounds the rendering, in ticks. Rendering stops earlier when
	// the engine becomes idle.
	MaxTicks int

	Engine hw.EngineConfig
}

// DefaultRenderOptions renders a whole track.
func DefaultRenderOptions() RenderOptions {
	return RenderOptions{
		Track:       0,
		Row:         -1,
		Tempo:       -1,
		Speed:       -1,
		Sfx:         -1,
		SfxNote:     -1,
		SfxOctave:   -1,
		SfxDuration: -1,
		MaxTicks:    hwdefs.FrameRate * 60,
		Engine:      hw.DefaultEngineConfig(),
	}
}

// Rendering is the result of an offline render.
type Rendering struct {
	SampleRate int
	Samples    []int16 // interleaved stereo
	Ticks      int

	// Frames holds the fingerprint of the engine frame of each tick.
	Frames []uint64
}

// Render runs the engine as fast as possible and collects the synthesized
// samples.
func Render(bank *sound.Bank, opts RenderOptions) *Rendering {
	eng := hw.NewSoundEngine(bank, opts.Engine)
	switch {
	case opts.Track >= 0 && opts.PlayFrame:
		eng.PlayFrame(opts.Track, opts.Frame, opts.Row, opts.Loop, opts.Sustain, opts.Tempo, opts.Speed)
	case opts.Track >= 0:
		eng.Music(opts.Track, opts.Frame, opts.Row, opts.Loop, opts.Sustain, opts.Tempo, opts.Speed)
	}
	if opts.Sfx >= 0 {
		eng.Sfx(opts.Sfx, opts.SfxNote, opts.SfxOctave, opts.SfxDuration, 0, hwdefs.MaxVolume, hwdefs.MaxVolume, hwdefs.SfxDefSpeed)
	}

	r := &Rendering{SampleRate: eng.SampleRate()}
	for r.Ticks < opts.MaxTicks {
		if Idle(eng) {
			break
		}
		eng.Tick()
		r.Frames = append(r.Frames, eng.Frame().Sum())
		r.Ticks++

		r.Samples = append(r.Samples, eng.SynthSound()...)
	}

	log.ModEmu.InfoZ("rendering done").
		Int("ticks", r.Ticks).
		Int("samples", len(r.Samples)/hwdefs.SampleChannels).
		End()
	return r
}

// Duration returns the rendered duration, in seconds.
func (r *Rendering) Duration() float64 {
	return float64(len(r.Samples)/hwdefs.SampleChannels) / float64(r.SampleRate)
}

// Checksum returns a fingerprint of the rendered samples.
func (r *Rendering) Checksum() uint64 {
	d := xxhash.New()
	buf := make([]byte, 0, 2*len(r.Samples))
	for _, s := range r.Samples {
		buf = binary.LittleEndian.AppendUint16(buf, uint16(s))
	}
	d.Write(buf)
	return d.Sum64()
}

// WriteWAV writes the rendered samples into a stereo WAV file.
func (r *Rendering) WriteWAV(path string) error {
	w, err := wave.NewFile(path, r.SampleRate)
	if err != nil {
		return fmt.Errorf("create wav file: %w", err)
	}
	w.EnableStereo()

	const chunk = 4096
	for i := 0; i < len(r.Samples); i += chunk {
		w.Write(r.Samples[i:min(i+chunk, len(r.Samples))])
	}
	log.ModEmu.InfoZ("wav written").String("path", path).Int("samples", w.SampleCount()).End()
	w.Close()
	return nil
}
