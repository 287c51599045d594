package emu

import (
	"context"
	"fmt"
	"io"
	"time"

	"ticsynth/emu/log"
	"ticsynth/hw/hwdefs"
)

// An AudioOutput pulls samples from a stream and plays them.
type AudioOutput interface {
	// Run plays src until ctx is done.
	Run(ctx context.Context, src io.Reader) error
	Close() error
}

const (
	bytesPerSample = 2 * hwdefs.SampleChannels
)

// NewAudioOutput opens the audio output of the configured backend.
func NewAudioOutput(cfg AudioConfig) (AudioOutput, error) {
	if cfg.DisableAudio {
		log.ModAudio.WarnZ("Audio disabled").End()
		return newNullOutput(cfg.SampleRate), nil
	}

	var (
		out AudioOutput
		err error
	)
	switch cfg.Backend {
	case BackendOto:
		out, err = newOtoOutput(cfg.SampleRate)
	case BackendSDL:
		out, err = newSDLOutput(cfg.SampleRate)
	case BackendNull:
		out = newNullOutput(cfg.SampleRate)
	default:
		return nil, fmt.Errorf("unknown audio backend %q", cfg.Backend)
	}
	if err != nil {
		return nil, fmt.Errorf("%s audio output: %w", cfg.Backend, err)
	}

	log.ModAudio.InfoZ("Audio enabled").
		String("backend", cfg.Backend).
		Int("rate", cfg.SampleRate).
		End()
	return out, nil
}

// nullOutput consumes samples in real time and discards them.
type nullOutput struct {
	frameBytes int
}

func newNullOutput(sampleRate int) *nullOutput {
	return &nullOutput{frameBytes: sampleRate / hwdefs.FrameRate * bytesPerSample}
}

func (o *nullOutput) Run(ctx context.Context, src io.Reader) error {
	buf := make([]byte, o.frameBytes)
	ticker := time.NewTicker(time.Second / hwdefs.FrameRate)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if _, err := io.ReadFull(src, buf); err != nil {
				return err
			}
		}
	}
}

func (o *nullOutput) Close() error { return nil }
