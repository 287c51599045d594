package emu

import (
	"context"
	"errors"
	"io"
	"sync/atomic"
	"testing"
	"time"

	"ticsynth/emu/log"
	"ticsynth/hw"
	"ticsynth/hw/hwdefs"
	"ticsynth/hw/sound"
)

func init() {
	log.Disable()
}

// fakeOutput pulls from the stream until ctx is done.
type fakeOutput struct {
	read   atomic.Int64
	closed atomic.Bool
}

func (o *fakeOutput) Run(ctx context.Context, src io.Reader) error {
	buf := make([]byte, 256)
	for ctx.Err() == nil {
		n, err := src.Read(buf)
		if err != nil {
			return err
		}
		o.read.Add(int64(n))
		time.Sleep(time.Millisecond)
	}
	return nil
}

func (o *fakeOutput) Close() error {
	o.closed.Store(true)
	return nil
}

func testEmulator(t *testing.T) (*Emulator, *fakeOutput) {
	t.Helper()

	out := &fakeOutput{}
	cfg := DefaultConfig()
	cfg.Audio.Backend = BackendNull
	return newEmulator(sound.DemoBank(), cfg, out), out
}

func runEmulator(t *testing.T, e *Emulator) {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := e.Run(ctx); err != nil {
		t.Fatalf("Run() = %v", err)
	}
	if ctx.Err() != nil {
		t.Fatalf("emulator didn't stop before timeout")
	}
}

func TestEmulatorExitWhenIdle(t *testing.T) {
	e, out := testEmulator(t)

	var ticks atomic.Int64
	e.AddObserver(func(*hw.SoundEngine) { ticks.Add(1) })

	if err := e.Sfx(sound.DemoSfxLead, -1, -1, 5, 0, 15, 15, hwdefs.SfxDefSpeed); err != nil {
		t.Fatal(err)
	}
	e.ExitWhenIdle(true)
	runEmulator(t, e)

	if got := ticks.Load(); got < 5 {
		t.Errorf("ran %d ticks, want at least 5", got)
	}
	if !Idle(e.Engine) {
		t.Errorf("engine not idle after exit")
	}
	if !out.closed.Load() {
		t.Errorf("audio output not closed")
	}
}

func TestEmulatorStop(t *testing.T) {
	e, _ := testEmulator(t)

	e.AddObserver(func(eng *hw.SoundEngine) {
		if eng.Ticks() == 3 {
			e.Stop()
		}
	})

	var svcDone atomic.Bool
	e.AddService(func(ctx context.Context) error {
		<-ctx.Done()
		svcDone.Store(true)
		return nil
	})

	runEmulator(t, e)

	if got := e.Engine.Ticks(); got != 3 {
		t.Errorf("Ticks() = %d, want 3", got)
	}
	if !svcDone.Load() {
		t.Errorf("service still running after Run returned")
	}
}

func TestEmulatorServiceError(t *testing.T) {
	e, _ := testEmulator(t)

	errSvc := errors.New("service failed")
	e.AddService(func(ctx context.Context) error { return errSvc })

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := e.Run(ctx); !errors.Is(err, errSvc) {
		t.Fatalf("Run() = %v, want %v", err, errSvc)
	}
}

func TestEmulatorMusicState(t *testing.T) {
	e, _ := testEmulator(t)

	if got := e.MusicState().Status; got != sound.MusicStop {
		t.Fatalf("initial status = %v, want %v", got, sound.MusicStop)
	}

	if err := e.Music(0, 1, -1, true, false, -1, -1); err != nil {
		t.Fatal(err)
	}
	e.drainRequests()
	e.RunOneTick()

	want := sound.MusicState{Track: 0, Frame: 1, Row: 0, Status: sound.MusicPlay, Loop: true}
	if got := e.MusicState(); got != want {
		t.Errorf("MusicState() = %+v, want %+v", got, want)
	}
}

func TestEmulatorQueueFull(t *testing.T) {
	e, _ := testEmulator(t)

	nop := func(*hw.SoundEngine) {}
	for i := range maxPendingRequests {
		if err := e.Do(nop); err != nil {
			t.Fatalf("Do() #%d = %v", i, err)
		}
	}
	if err := e.Do(nop); !errors.Is(err, ErrQueueFull) {
		t.Fatalf("Do() = %v, want %v", err, ErrQueueFull)
	}

	e.drainRequests()
	if err := e.Do(nop); err != nil {
		t.Fatalf("Do() after drain = %v", err)
	}
}

func TestEmulatorPause(t *testing.T) {
	e, _ := testEmulator(t)

	e.SetPause(true)
	if !e.IsPaused() {
		t.Fatalf("IsPaused() = false after SetPause(true)")
	}
	e.SetPause(true)
	if !e.IsPaused() {
		t.Fatalf("IsPaused() = false after second SetPause(true)")
	}
	e.SetPause(false)
	if e.IsPaused() {
		t.Fatalf("IsPaused() = true after SetPause(false)")
	}
}

func TestLaunchNullOutput(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Audio.Backend = BackendNull

	e, err := Launch(sound.DemoBank(), cfg)
	if err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()
	if err := e.Run(ctx); err != nil {
		t.Fatalf("Run() = %v", err)
	}
	if e.Engine.Ticks() == 0 {
		t.Errorf("no tick ran")
	}
}
