package sound

import (
	"testing"

	"ticsynth/hw/hwdefs"
)

// square50 is a 50% duty square wave.
var square50 = func() Waveform {
	var w Waveform
	for i := range hwdefs.WaveValues / 2 {
		w.Poke(i, 0x0F)
	}
	return w
}()

// newTestBank returns a bank with waveform 0 a square, and sample 0 a flat
// full volume tone.
func newTestBank(t *testing.T) *Bank {
	t.Helper()

	b := &Bank{}
	b.Waveforms[0] = square50
	return b
}

// setVolumes sets the volume envelope of the sample, in attenuation steps.
func setVolumes(smp *Sample, vols ...uint8) {
	for i := range smp.Ticks {
		smp.Ticks[i].Volume = vols[min(i, len(vols)-1)]
	}
}

// tick runs one sequencer tick on zeroed registers and returns them.
func tick(s *Sequencer) ([hwdefs.SoundChannels]Register, Stereo) {
	var regs [hwdefs.SoundChannels]Register
	stereo := FullStereo()
	s.Tick(&regs, &stereo)
	return regs, stereo
}
