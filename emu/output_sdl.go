package emu

import (
	"context"
	"io"
	"time"

	"github.com/veandco/go-sdl2/sdl"

	"ticsynth/emu/log"
	"ticsynth/hw/hwdefs"
)

const (
	sdlAudioFormat     = sdl.AUDIO_S16LSB
	sdlAudioBufferSize = 1024

	// sdlQueuedFrames is the number of frames kept queued in the device.
	sdlQueuedFrames = 3
)

// sdlOutput queues samples into an SDL audio device, keeping the device
// queue a few frames long.
type sdlOutput struct {
	dev        sdl.AudioDeviceID
	frameBytes int
}

func newSDLOutput(sampleRate int) (*sdlOutput, error) {
	if err := sdl.InitSubSystem(sdl.INIT_AUDIO); err != nil {
		return nil, err
	}

	spec := &sdl.AudioSpec{
		Freq:     int32(sampleRate),
		Format:   sdlAudioFormat,
		Channels: hwdefs.SampleChannels,
		Samples:  sdlAudioBufferSize,
	}
	dev, err := sdl.OpenAudioDevice("", false, spec, nil, 0)
	if err != nil {
		sdl.QuitSubSystem(sdl.INIT_AUDIO)
		return nil, err
	}

	return &sdlOutput{
		dev:        dev,
		frameBytes: sampleRate / hwdefs.FrameRate * bytesPerSample,
	}, nil
}

func (o *sdlOutput) Run(ctx context.Context, src io.Reader) error {
	buf := make([]byte, o.frameBytes)
	sdl.PauseAudioDevice(o.dev, false)
	defer sdl.PauseAudioDevice(o.dev, true)

	ticker := time.NewTicker(time.Second / hwdefs.FrameRate / 2)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			sdl.ClearQueuedAudio(o.dev)
			return nil
		case <-ticker.C:
		}

		for int(sdl.GetQueuedAudioSize(o.dev)) < sdlQueuedFrames*o.frameBytes {
			if _, err := io.ReadFull(src, buf); err != nil {
				return err
			}
			if err := sdl.QueueAudio(o.dev, buf); err != nil {
				log.ModAudio.DebugZ("failed to queue audio buffer").Error("err", err).End()
				break
			}
		}
	}
}

func (o *sdlOutput) Close() error {
	sdl.CloseAudioDevice(o.dev)
	sdl.QuitSubSystem(sdl.INIT_AUDIO)
	return nil
}
