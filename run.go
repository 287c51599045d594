package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"ticsynth/emu"
	"ticsynth/emu/monitor"
	"ticsynth/emu/waveplot"
	"ticsynth/hw"
	"ticsynth/hw/hwdefs"
	"ticsynth/hw/sound"
)

// start triggers on eng what src selects.
func (src *Source) start(eng *hw.SoundEngine) {
	switch {
	case src.Track >= 0 && src.PlayFrame:
		eng.PlayFrame(src.Track, src.Frame, src.Row, src.Loop, src.Sustain, src.Tempo, src.Speed)
	case src.Track >= 0:
		eng.Music(src.Track, src.Frame, src.Row, src.Loop, src.Sustain, src.Tempo, src.Speed)
	}
	if src.Sfx >= 0 {
		eng.Sfx(src.Sfx, src.Note, src.Octave, src.Duration, 0, hwdefs.MaxVolume, hwdefs.MaxVolume, hwdefs.SfxDefSpeed)
	}
}

// playMain plays bank through the audio output until there's nothing left to
// play, or until interrupted.
func playMain(bank *sound.Bank, args Play, cfg emu.Config) error {
	if args.Backend != "" {
		cfg.Audio.Backend = args.Backend
	}
	if args.Monitor != "" {
		cfg.Monitor.Addr = args.Monitor
	}

	e, err := emu.Launch(bank, cfg)
	if err != nil {
		return fmt.Errorf("failed to start emulator: %w", err)
	}

	if cfg.Monitor.Addr != "" {
		mon := monitor.New(e, cfg.Monitor.Addr)
		if err := mon.Listen(); err != nil {
			return fmt.Errorf("monitor: %w", err)
		}
		e.AddService(mon.Run)
		fmt.Printf("monitor listening on ws://%s/ws\n", mon.Addr())
	}

	if err := e.Do(args.start); err != nil {
		return err
	}
	e.ExitWhenIdle(!args.Forever)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	return e.Run(ctx)
}

// renderMain renders bank offline into a WAV file, and optionally a waveform
// plot.
func renderMain(bank *sound.Bank, args Render, cfg emu.Config) error {
	opts := emu.DefaultRenderOptions()
	opts.Track = args.Track
	opts.Frame = args.Frame
	opts.Row = args.Row
	opts.Loop = args.Loop
	opts.Sustain = args.Sustain
	opts.Tempo = args.Tempo
	opts.Speed = args.Speed
	opts.PlayFrame = args.PlayFrame
	opts.Sfx = args.Sfx
	opts.SfxNote = args.Note
	opts.SfxOctave = args.Octave
	opts.SfxDuration = args.Duration
	opts.MaxTicks = args.MaxTicks
	opts.Engine = cfg.EngineConfig()

	r := emu.Render(bank, opts)
	if err := r.WriteWAV(args.Output); err != nil {
		return err
	}
	fmt.Printf("%s: %d ticks, %.2fs, checksum %016x\n", args.Output, r.Ticks, r.Duration(), r.Checksum())

	if args.Plot != "" {
		popts := waveplot.DefaultOptions()
		popts.Title = args.Output
		if err := waveplot.Save(args.Plot, r.Samples, r.SampleRate, popts); err != nil {
			return fmt.Errorf("plot: %w", err)
		}
	}
	return nil
}
