package audio

import (
	"math"

	"github.com/arl/blip"

	"ticsynth/emu/log"
	"ticsynth/hw/hwdefs"
	"ticsynth/hw/snapshot"
	"ticsynth/hw/sound"
)

const (
	minPeriod = 10
	maxPeriod = 4096

	// waveFreqScale is the factor applied to the register frequency of a
	// waveform so that it's played at the expected pitch.
	waveFreqScale = 2

	// periodRate converts a frequency to a period in clocks.
	periodRate = hwdefs.ClockRate * waveFreqScale / hwdefs.WaveValues

	pcmPeriod = hwdefs.EndTime / hwdefs.PCMSize

	// Noise LFSR feedback taps.
	noiseTapShort = 0x14
	noiseTapLong  = 0x12000
)

// freqToPeriod returns the number of clocks between 2 steps of an
// oscillator running at freq.
func freqToPeriod(freq int) int {
	if freq == 0 {
		return maxPeriod
	}
	return max(minPeriod, min(periodRate/freq-1, maxPeriod))
}

// amplitude scales amp by a 4-bit volume, leaving headroom to mix all
// channels plus PCM.
func amplitude(volume, amp int) int {
	return amp * volume / hwdefs.MaxVolume / (hwdefs.SoundChannels + 1)
}

// oscillator tracks the time and output level of one channel in one
// accumulation buffer.
type oscillator struct {
	time  int // clock of the next step, relative to the frame start
	phase int // waveform position, or noise LFSR state
	amp   int // last output amplitude
}

func (o *oscillator) output(buf *blip.Buffer, amp int) {
	if delta := amp - o.amp; delta != 0 {
		buf.AddDelta(uint64(o.time), int32(delta))
		o.amp = amp
	}
}

func (o *oscillator) runWave(buf *blip.Buffer, reg *sound.Register, gain uint8) {
	// The channel may have been playing noise, whose LFSR state is larger
	// than a waveform position.
	o.phase %= hwdefs.WaveValues

	period := freqToPeriod(int(reg.Freq) * waveFreqScale)
	for ; o.time < hwdefs.EndTime; o.time += period {
		v := int(reg.Wave.Peek(o.phase))
		o.output(buf, amplitude(int(reg.Volume), v*math.MaxInt16/hwdefs.MaxVolume*int(gain)/hwdefs.MaxVolume))
		o.phase = (o.phase + 1) % hwdefs.WaveValues
	}
}

func (o *oscillator) runNoise(buf *blip.Buffer, reg *sound.Register, gain uint8) {
	// The LFSR must never be zero.
	if o.phase == 0 {
		o.phase = 1
	}

	period := freqToPeriod(int(reg.Freq))
	tap := noiseTapLong
	if reg.Wave.ShortNoise() {
		tap = noiseTapShort
	}

	for ; o.time < hwdefs.EndTime; o.time += period {
		v := 0
		if o.phase&1 != 0 {
			v = int(gain) * math.MaxInt16 / hwdefs.MaxVolume
		}
		o.output(buf, amplitude(int(reg.Volume), v))
		o.phase = (o.phase&1)*tap ^ o.phase>>1
	}
}

func (o *oscillator) runPCM(buf *blip.Buffer, pcm *[hwdefs.PCMSize]byte) {
	for o.time = 0; o.time < hwdefs.EndTime; o.time += pcmPeriod {
		o.output(buf, amplitude(hwdefs.MaxVolume, int(pcm[o.phase])*math.MaxInt16/math.MaxUint8))
		o.phase = (o.phase + 1) % hwdefs.PCMSize
	}
}

// side is one stereo side of the synthesizer, with its own accumulation
// buffer and oscillators.
type side struct {
	buf      *blip.Buffer
	channels [hwdefs.SoundChannels]oscillator
	pcm      oscillator
	right    bool
}

func (s *side) synthesize(f *Frame) {
	for i := range s.channels {
		reg := &f.Registers[i]
		gain := f.Stereo[i].Left
		if s.right {
			gain = f.Stereo[i].Right
		}

		osc := &s.channels[i]
		if reg.Wave.IsNoise() {
			osc.runNoise(s.buf, reg, gain)
		} else {
			osc.runWave(s.buf, reg, gain)
		}
		osc.time -= hwdefs.EndTime
	}

	s.pcm.runPCM(s.buf, &f.PCM)
	s.buf.EndFrame(hwdefs.EndTime)
}

func (s *side) reset() {
	s.buf.Clear()
	s.channels = [hwdefs.SoundChannels]oscillator{}
	s.pcm = oscillator{}
}

// A Synth renders frames into band-limited 16-bit stereo PCM, one console
// frame at a time.
type Synth struct {
	left, right side

	sampleRate      int
	samplesPerFrame int
}

// NewSynth returns a synthesizer producing samples at sampleRate.
func NewSynth(sampleRate int) *Synth {
	s := &Synth{
		sampleRate:      sampleRate,
		samplesPerFrame: sampleRate / hwdefs.FrameRate,
	}

	for _, sd := range []*side{&s.left, &s.right} {
		sd.buf = blip.NewBuffer(sampleRate / 10)
		sd.buf.SetRates(hwdefs.ClockRate, float64(sampleRate))
	}
	s.right.right = true

	log.ModSynth.InfoZ("synth created").
		Int("rate", sampleRate).
		Int("samples/frame", s.samplesPerFrame).
		End()
	return s
}

// SampleRate returns the output sample rate, in Hz.
func (s *Synth) SampleRate() int { return s.sampleRate }

// SamplesPerFrame returns the number of stereo samples produced per frame.
func (s *Synth) SamplesPerFrame() int { return s.samplesPerFrame }

// Render synthesizes one frame of audio from f into out, as interleaved
// left/right samples. out must hold at least 2*SamplesPerFrame values. It
// returns the number of stereo samples written.
func (s *Synth) Render(f *Frame, out []int16) int {
	s.left.synthesize(f)
	s.right.synthesize(f)

	n := s.left.buf.ReadSamples(out, s.samplesPerFrame, blip.Stereo)
	s.right.buf.ReadSamples(out[1:], n, blip.Stereo)
	return n
}

// Reset silences all oscillators and drops buffered samples.
func (s *Synth) Reset() {
	s.left.reset()
	s.right.reset()
}

func (s *side) state() snapshot.SynthSide {
	var st snapshot.SynthSide
	for i, o := range s.channels {
		st.Channels[i] = snapshot.Oscillator{Time: o.time, Phase: o.phase, Amp: o.amp}
	}
	st.PCM = snapshot.Oscillator{Time: s.pcm.time, Phase: s.pcm.phase, Amp: s.pcm.amp}
	return st
}

// setState restores oscillator phases. Output levels restart from silence
// since the accumulation buffer is cleared.
func (s *side) setState(st *snapshot.SynthSide) {
	s.buf.Clear()
	for i, o := range st.Channels {
		s.channels[i] = oscillator{time: o.Time, phase: o.Phase}
	}
	s.pcm = oscillator{time: st.PCM.Time, phase: st.PCM.Phase}
}

func (s *Synth) State() *snapshot.Synth {
	return &snapshot.Synth{Left: s.left.state(), Right: s.right.state()}
}

// SetState restores the oscillators, dropping buffered samples.
func (s *Synth) SetState(state *snapshot.Synth) {
	s.left.setState(&state.Left)
	s.right.setState(&state.Right)
}
