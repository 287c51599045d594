package emu

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"ticsynth/emu/log"
	"ticsynth/hw"
	"ticsynth/hw/hwdefs"
	"ticsynth/hw/sound"
)

// A Request is a function run by the emulator loop on the sound engine, at
// the start of a tick.
type Request func(*hw.SoundEngine)

// An Observer is called by the emulator loop after each tick.
type Observer func(*hw.SoundEngine)

// A Service runs alongside the emulator loop until ctx is done.
type Service func(ctx context.Context) error

const maxPendingRequests = 64

var ErrQueueFull = errors.New("request queue full")

// Emulator runs the sound engine at the console frame rate, while an audio
// output consumes the synthesized samples.
type Emulator struct {
	Engine *hw.SoundEngine
	Stream *Stream

	out  AudioOutput
	reqs chan Request

	mu        sync.Mutex
	observers []Observer
	services  []Service

	// These are accessed concurrently by the emulator loop and the outside.
	quit       atomic.Bool
	paused     atomic.Bool
	exitIdle   atomic.Bool
	musicState atomic.Uint32
}

// Launch creates the sound engine for bank and opens the audio output. It
// doesn't start the emulation loop, call Run for that.
func Launch(bank *sound.Bank, cfg Config) (*Emulator, error) {
	cfg.Check()

	out, err := NewAudioOutput(cfg.Audio)
	if err != nil {
		return nil, err
	}
	return newEmulator(bank, cfg, out), nil
}

func newEmulator(bank *sound.Bank, cfg Config, out AudioOutput) *Emulator {
	eng := hw.NewSoundEngine(bank, cfg.EngineConfig())
	e := &Emulator{
		Engine: eng,
		Stream: NewStream(eng),
		out:    out,
		reqs:   make(chan Request, maxPendingRequests),
	}
	e.storeMusicState(eng.MusicState())
	return e
}

// Do queues r to be run by the emulator loop at the start of the next tick.
func (e *Emulator) Do(r Request) error {
	select {
	case e.reqs <- r:
		return nil
	default:
		return ErrQueueFull
	}
}

// Music starts playing a track at the next tick. See hw.SoundEngine.Music.
func (e *Emulator) Music(track, frame, row int, loop, sustain bool, tempo, speed int) error {
	return e.Do(func(eng *hw.SoundEngine) {
		eng.Music(track, frame, row, loop, sustain, tempo, speed)
	})
}

// PlayFrame plays a single frame of a track at the next tick.
func (e *Emulator) PlayFrame(track, frame, row int, loop, sustain bool, tempo, speed int) error {
	return e.Do(func(eng *hw.SoundEngine) {
		eng.PlayFrame(track, frame, row, loop, sustain, tempo, speed)
	})
}

// Sfx triggers a sample at the next tick. See hw.SoundEngine.Sfx.
func (e *Emulator) Sfx(index, note, octave, duration, channel, left, right, speed int) error {
	return e.Do(func(eng *hw.SoundEngine) {
		eng.Sfx(index, note, octave, duration, channel, left, right, speed)
	})
}

// AddObserver registers o, it must be called before Run.
func (e *Emulator) AddObserver(o Observer) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.observers = append(e.observers, o)
}

// AddService registers s to run alongside the emulator, it must be called
// before Run.
func (e *Emulator) AddService(s Service) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.services = append(e.services, s)
}

// MusicState returns the music state at the last tick. It's safe to call
// concurrently with Run.
func (e *Emulator) MusicState() sound.MusicState {
	v := e.musicState.Load()
	var ms sound.MusicState
	ms.UnmarshalBinary([]byte{byte(v), byte(v >> 8), byte(v >> 16), byte(v >> 24)})
	return ms
}

func (e *Emulator) storeMusicState(ms sound.MusicState) {
	b, _ := ms.MarshalBinary()
	e.musicState.Store(uint32(b[0]) | uint32(b[1])<<8 | uint32(b[2])<<16 | uint32(b[3])<<24)
}

// Run runs the emulator loop, the audio output and the registered services
// until ctx is done, Stop is called or any of them fails.
func (e *Emulator) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		defer cancel()
		return e.loop(ctx)
	})
	g.Go(func() error {
		return e.out.Run(ctx, e.Stream)
	})

	e.mu.Lock()
	for _, svc := range e.services {
		g.Go(func() error { return svc(ctx) })
	}
	e.mu.Unlock()

	err := g.Wait()
	log.ModEmu.InfoZ("Emulation loop exited").End()

	if cerr := e.out.Close(); cerr != nil && err == nil {
		err = fmt.Errorf("close audio output: %w", cerr)
	}
	return err
}

func (e *Emulator) loop(ctx context.Context) error {
	ticker := time.NewTicker(time.Second / hwdefs.FrameRate)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}

		e.drainRequests()
		if !e.paused.Load() {
			e.RunOneTick()
		}

		if e.shouldStop() {
			return nil
		}
	}
}

func (e *Emulator) drainRequests() {
	for {
		select {
		case r := <-e.reqs:
			r(e.Engine)
		default:
			return
		}
	}
}

// RunOneTick runs a single console tick and notifies the observers.
func (e *Emulator) RunOneTick() {
	e.Engine.Tick()
	e.storeMusicState(e.Engine.MusicState())

	for _, o := range e.observers {
		o(e.Engine)
	}
}

// SetPause, Stop and ExitWhenIdle allow to control the emulator loop in a
// concurrent-safe way.

func (e *Emulator) SetPause(pause bool) { e.paused.CompareAndSwap(!pause, pause) }
func (e *Emulator) IsPaused() bool      { return e.paused.Load() }
func (e *Emulator) Stop()               { e.quit.Store(true) }

// ExitWhenIdle makes the loop exit once neither music nor sfx are playing.
func (e *Emulator) ExitWhenIdle(exit bool) { e.exitIdle.Store(exit) }

func (e *Emulator) shouldStop() bool {
	if e.quit.Load() {
		return true
	}
	return e.exitIdle.Load() && len(e.reqs) == 0 && Idle(e.Engine)
}

// Idle reports whether eng plays neither music nor sfx.
func Idle(eng *hw.SoundEngine) bool {
	if eng.MusicState().Status != sound.MusicStop {
		return false
	}
	for ch := range hwdefs.SoundChannels {
		if eng.SfxChannel(ch).Active() {
			return false
		}
	}
	return true
}
