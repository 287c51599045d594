package sound

import (
	"bytes"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"ticsynth/hw/hwdefs"
)

func TestRegisterBinary(t *testing.T) {
	reg := Register{Freq: 0xABC, Volume: 0x7, Wave: square50}

	buf, err := reg.MarshalBinary()
	if err != nil {
		t.Fatal(err)
	}
	if len(buf) != RegisterSize {
		t.Fatalf("len = %d, want %d", len(buf), RegisterSize)
	}
	if diff := cmp.Diff([]byte{0xBC, 0x7A}, buf[:2]); diff != "" {
		t.Errorf("header mismatch (-want +got):\n%s", diff)
	}

	var got Register
	if err := got.UnmarshalBinary(buf); err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(reg, got); diff != "" {
		t.Errorf("UnmarshalBinary mismatch (-want +got):\n%s", diff)
	}
}

func TestRegisterSetFreq(t *testing.T) {
	var reg Register
	reg.SetFreq(0x1880)
	if reg.Freq != 0x880 {
		t.Errorf("Freq = %#x, want 0x880", reg.Freq)
	}
}

func TestWaveformNoise(t *testing.T) {
	var w Waveform
	if !w.IsNoise() || w.ShortNoise() {
		t.Errorf("zero waveform: IsNoise=%t ShortNoise=%t", w.IsNoise(), w.ShortNoise())
	}

	for i := range w {
		w[i] = 0xFF
	}
	if !w.IsNoise() || !w.ShortNoise() {
		t.Errorf("0xFF waveform: IsNoise=%t ShortNoise=%t", w.IsNoise(), w.ShortNoise())
	}

	w[5] = 0xF7
	if w.IsNoise() {
		t.Errorf("non flat waveform should not be noise")
	}

	if square50.IsNoise() {
		t.Errorf("square should not be noise")
	}
}

func TestStereoPack(t *testing.T) {
	st := Stereo{{1, 2}, {3, 4}, {5, 6}, {7, 8}}
	packed := st.Pack()
	if packed != 0x87654321 {
		t.Errorf("Pack() = %#08x, want 0x87654321", packed)
	}
	if diff := cmp.Diff(st, UnpackStereo(packed)); diff != "" {
		t.Errorf("UnpackStereo mismatch (-want +got):\n%s", diff)
	}
	if FullStereo().Pack() != 0xFFFFFFFF {
		t.Errorf("FullStereo().Pack() = %#08x", FullStereo().Pack())
	}
}

func TestSampleBinary(t *testing.T) {
	var smp Sample
	for i := range smp.Ticks {
		smp.Ticks[i] = SampleTick{
			Volume: uint8(i % 16),
			Wave:   uint8(15 - i%16),
			Chord:  uint8(i % 7),
			Pitch:  int8(i%16) - 8,
		}
	}
	smp.Octave = 5
	smp.Pitch16x = true
	smp.Speed = -3
	smp.Note = 11
	smp.MuteRight = true
	smp.Loops = [NumLanes]Loop{{1, 2}, {0, 0}, {15, 15}, {7, 3}}

	buf, err := smp.MarshalBinary()
	if err != nil {
		t.Fatal(err)
	}
	if len(buf) != SampleSize || SampleSize != 66 {
		t.Fatalf("len = %d, SampleSize = %d, want 66", len(buf), SampleSize)
	}

	// octave | pitch16x | speed | reverse
	if got, want := buf[60], uint8(5|1<<3|0b101<<4); got != want {
		t.Errorf("flags byte = %08b, want %08b", got, want)
	}

	var got Sample
	if err := got.UnmarshalBinary(buf); err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(smp, got); diff != "" {
		t.Errorf("UnmarshalBinary mismatch (-want +got):\n%s", diff)
	}
}

func TestRowEncoding(t *testing.T) {
	row := Row{Note: 7, Param1: 0xA, Param2: 0x5, Command: CmdVibrato, Sfx: 0x2B, Octave: 6}

	buf := row.encode(nil)
	if diff := cmp.Diff([]byte{0xA7, 0x5 | 6<<4 | 1<<7, 0x0B | 6<<5}, buf); diff != "" {
		t.Errorf("encode mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(row, decodeRow(buf)); diff != "" {
		t.Errorf("decodeRow mismatch (-want +got):\n%s", diff)
	}
	if row.Param() != 0xA5 {
		t.Errorf("Param() = %#x, want 0xA5", row.Param())
	}
}

func TestTrackBinary(t *testing.T) {
	var tr Track
	tr.Patterns[0] = [4]uint8{1, 2, 3, 60}
	tr.Patterns[15] = [4]uint8{63, 0, 0, 5}
	tr.Tempo = -30
	tr.Rows = 32
	tr.Speed = 2

	buf, err := tr.MarshalBinary()
	if err != nil {
		t.Fatal(err)
	}
	if len(buf) != TrackSize || TrackSize != 51 {
		t.Fatalf("len = %d, TrackSize = %d, want 51", len(buf), TrackSize)
	}

	var got Track
	if err := got.UnmarshalBinary(buf); err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(tr, got); diff != "" {
		t.Errorf("UnmarshalBinary mismatch (-want +got):\n%s", diff)
	}
	if got.RowCount() != 32 {
		t.Errorf("RowCount() = %d, want 32", got.RowCount())
	}
	if got.IsEmptyFrame(0) || !got.IsEmptyFrame(1) {
		t.Errorf("IsEmptyFrame: frame 0 = %t, frame 1 = %t", got.IsEmptyFrame(0), got.IsEmptyFrame(1))
	}
}

func TestBankRoundTrip(t *testing.T) {
	if BankSize != 256+4224+11520+408 {
		t.Fatalf("BankSize = %d", BankSize)
	}

	bank := newTestBank(t)
	bank.Samples[63].Note = 3
	bank.Samples[63].Loops[LanePitch] = Loop{Start: 2, Size: 4}
	bank.Pattern(hwdefs.MusicPatterns)[63] = Row{Note: NoteStop, Command: CmdJump, Param1: 1}
	bank.Tracks[7].Patterns[3] = [4]uint8{60, 59, 1, 0}

	var buf bytes.Buffer
	n, err := bank.WriteTo(&buf)
	if err != nil {
		t.Fatal(err)
	}
	if n != int64(BankSize) {
		t.Fatalf("WriteTo wrote %d bytes, want %d", n, BankSize)
	}

	got, err := ReadBank(&buf)
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(bank, got); diff != "" {
		t.Errorf("ReadBank mismatch (-want +got):\n%s", diff)
	}
}

func TestReadBankShort(t *testing.T) {
	_, err := ReadBank(bytes.NewReader(make([]byte, BankSize-1)))
	if !errors.Is(err, ErrShortData) {
		t.Errorf("ReadBank() error = %v, want ErrShortData", err)
	}
}
