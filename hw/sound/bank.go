package sound

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"ticsynth/hw/hwdefs"
)

// BankSize is the size in bytes of an encoded Bank.
const BankSize = hwdefs.Waves*hwdefs.WaveSize +
	hwdefs.SfxCount*SampleSize +
	hwdefs.MusicPatterns*PatternSize +
	hwdefs.MusicTracks*TrackSize

// Bank is the sound section of the console memory: waveforms, samples,
// patterns and tracks, in that order once encoded.
type Bank struct {
	Waveforms [hwdefs.Waves]Waveform
	Samples   [hwdefs.SfxCount]Sample
	Patterns  [hwdefs.MusicPatterns]Pattern
	Tracks    [hwdefs.MusicTracks]Track
}

// ReadBank reads and decodes a Bank from r.
func ReadBank(r io.Reader) (*Bank, error) {
	buf := make([]byte, BankSize)
	if _, err := io.ReadFull(r, buf); err != nil {
		if errors.Is(err, io.ErrUnexpectedEOF) || errors.Is(err, io.EOF) {
			err = ErrShortData
		}
		return nil, fmt.Errorf("read sound bank: %w", err)
	}

	b := &Bank{}
	if err := b.UnmarshalBinary(buf); err != nil {
		return nil, err
	}
	return b, nil
}

// Pattern returns the pattern with the given id. Ids start at 1.
func (b *Bank) Pattern(id int) *Pattern {
	return &b.Patterns[id-hwdefs.PatternStart]
}

func (b *Bank) MarshalBinary() ([]byte, error) {
	buf := make([]byte, 0, BankSize)
	for _, w := range b.Waveforms {
		buf = append(buf, w[:]...)
	}

	var err error
	for i := range b.Samples {
		if buf, err = b.Samples[i].AppendBinary(buf); err != nil {
			return nil, err
		}
	}
	for i := range b.Patterns {
		if buf, err = b.Patterns[i].AppendBinary(buf); err != nil {
			return nil, err
		}
	}
	for i := range b.Tracks {
		if buf, err = b.Tracks[i].AppendBinary(buf); err != nil {
			return nil, err
		}
	}
	return buf, nil
}

func (b *Bank) UnmarshalBinary(data []byte) error {
	if len(data) < BankSize {
		return fmt.Errorf("sound bank: %w: %d bytes, want %d", ErrShortData, len(data), BankSize)
	}

	for i := range b.Waveforms {
		data = data[copy(b.Waveforms[i][:], data):]
	}
	for i := range b.Samples {
		if err := b.Samples[i].UnmarshalBinary(data); err != nil {
			return fmt.Errorf("sample %d: %w", i, err)
		}
		data = data[SampleSize:]
	}
	for i := range b.Patterns {
		if err := b.Patterns[i].UnmarshalBinary(data); err != nil {
			return fmt.Errorf("pattern %d: %w", i+hwdefs.PatternStart, err)
		}
		data = data[PatternSize:]
	}
	for i := range b.Tracks {
		if err := b.Tracks[i].UnmarshalBinary(data); err != nil {
			return fmt.Errorf("track %d: %w", i, err)
		}
		data = data[TrackSize:]
	}
	return nil
}

// WriteTo writes the encoded bank to w.
func (b *Bank) WriteTo(w io.Writer) (int64, error) {
	buf, err := b.MarshalBinary()
	if err != nil {
		return 0, err
	}
	return bytes.NewReader(buf).WriteTo(w)
}
