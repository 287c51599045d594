// Package waveplot draws rendered audio as a waveform image.
package waveplot

import (
	"fmt"
	"image"
	"image/color"
	"image/png"
	"os"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"

	"ticsynth/emu/log"
)

// Options controls the plot appearance.
type Options struct {
	Title         string
	Width, Height int

	// MaxPoints bounds the number of points per channel. Samples are
	// decimated, keeping the peak of each bucket.
	MaxPoints int
}

func DefaultOptions() Options {
	return Options{
		Title:     "Waveform",
		Width:     1280,
		Height:    480,
		MaxPoints: 4000,
	}
}

var (
	leftColor  = color.RGBA{R: 0x29, G: 0x36, B: 0x6f, A: 0xff}
	rightColor = color.RGBA{R: 0xef, G: 0x7d, B: 0x57, A: 0xff}
)

// Draw plots interleaved stereo samples, sampled at rate Hz, into a new
// image.
func Draw(samples []int16, rate int, opts Options) (*image.RGBA, error) {
	p := plot.New()
	p.Title.Text = opts.Title
	p.X.Label.Text = "Time (s)"
	p.Y.Label.Text = "Amplitude"
	p.Y.Min, p.Y.Max = -32768, 32767
	p.Add(plotter.NewGrid())

	for ch, col := range []color.RGBA{leftColor, rightColor} {
		line, err := plotter.NewLine(decimate(samples, ch, rate, opts.MaxPoints))
		if err != nil {
			return nil, fmt.Errorf("channel %d: %w", ch, err)
		}
		line.Color = col
		p.Add(line)
		p.Legend.Add([]string{"left", "right"}[ch], line)
	}

	img := image.NewRGBA(image.Rect(0, 0, opts.Width, opts.Height))
	c := vgimg.NewWith(vgimg.UseImage(img))
	p.Draw(draw.New(c))
	return img, nil
}

// decimate returns the points of channel ch, at most maxPoints of them.
func decimate(samples []int16, ch, rate, maxPoints int) plotter.XYs {
	n := len(samples) / 2
	step := 1
	if maxPoints > 0 && n > maxPoints {
		step = (n + maxPoints - 1) / maxPoints
	}

	pts := make(plotter.XYs, 0, n/step+1)
	for i := 0; i < n; i += step {
		// Keep the sample of largest magnitude in the bucket.
		peak := samples[2*i+ch]
		for j := i + 1; j < i+step && j < n; j++ {
			if v := samples[2*j+ch]; abs(int(v)) > abs(int(peak)) {
				peak = v
			}
		}
		pts = append(pts, plotter.XY{X: float64(i) / float64(rate), Y: float64(peak)})
	}
	return pts
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

// Save plots samples into a PNG file at path.
func Save(path string, samples []int16, rate int, opts Options) error {
	img, err := Draw(samples, rate, opts)
	if err != nil {
		return err
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := png.Encode(f, img); err != nil {
		f.Close()
		return fmt.Errorf("encode png: %w", err)
	}
	if err := f.Close(); err != nil {
		return err
	}

	log.ModEmu.InfoZ("waveform plot written").String("path", path).End()
	return nil
}
