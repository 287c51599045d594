package emu

import (
	"context"
	"io"
	"time"

	"github.com/ebitengine/oto/v3"

	"ticsynth/emu/log"
	"ticsynth/hw/hwdefs"
)

// otoOutput plays through an oto context: the device pulls samples from the
// player, which reads the stream.
type otoOutput struct {
	ctx *oto.Context
}

const otoBufferSize = 4 * time.Second / hwdefs.FrameRate

func newOtoOutput(sampleRate int) (*otoOutput, error) {
	ctx, ready, err := oto.NewContext(&oto.NewContextOptions{
		SampleRate:   sampleRate,
		ChannelCount: hwdefs.SampleChannels,
		Format:       oto.FormatSignedInt16LE,
		BufferSize:   otoBufferSize,
	})
	if err != nil {
		return nil, err
	}
	<-ready
	return &otoOutput{ctx: ctx}, nil
}

func (o *otoOutput) Run(ctx context.Context, src io.Reader) error {
	player := o.ctx.NewPlayer(src)
	player.Play()
	log.ModAudio.DebugZ("oto player started").End()

	<-ctx.Done()

	player.Pause()
	if err := player.Close(); err != nil {
		log.ModAudio.WarnZ("failed to close oto player").Error("err", err).End()
	}
	return player.Err()
}

func (o *otoOutput) Close() error {
	return o.ctx.Suspend()
}
