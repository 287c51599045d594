package main

import (
	"encoding/hex"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/go-faster/jx"

	"ticsynth/hw/hwdefs"
	"ticsynth/hw/sound"
)

// bankInfo is a summary of the non-empty parts of a bank.
type bankInfo struct {
	waves    []waveInfo
	samples  []sampleInfo
	patterns []patternInfo
	tracks   []trackInfo
}

type waveInfo struct {
	index int
	data  string
	noise bool
}

type sampleInfo struct {
	index  int
	sample *sound.Sample
}

type patternInfo struct {
	id    int
	notes int // rows starting or stopping a note
	cmds  int // rows having a command
}

type trackInfo struct {
	index  int
	tempo  int
	speed  int
	rows   int
	frames [][hwdefs.SoundChannels]uint8
}

func summarize(bank *sound.Bank) *bankInfo {
	info := &bankInfo{}

	for i := range bank.Waveforms {
		w := &bank.Waveforms[i]
		if *w == (sound.Waveform{}) {
			continue
		}
		info.waves = append(info.waves, waveInfo{index: i, data: hex.EncodeToString(w[:]), noise: w.IsNoise()})
	}

	for i := range bank.Samples {
		if bank.Samples[i] == (sound.Sample{}) {
			continue
		}
		info.samples = append(info.samples, sampleInfo{index: i, sample: &bank.Samples[i]})
	}

	for i := range bank.Patterns {
		pi := patternInfo{id: i + hwdefs.PatternStart}
		for _, row := range bank.Patterns[i] {
			if row.Note != sound.NoteNone {
				pi.notes++
			}
			if row.Command != sound.CmdEmpty {
				pi.cmds++
			}
		}
		if pi.notes+pi.cmds > 0 {
			info.patterns = append(info.patterns, pi)
		}
	}

	for i := range bank.Tracks {
		t := &bank.Tracks[i]
		last := -1
		for f := range t.Patterns {
			if !t.IsEmptyFrame(f) {
				last = f
			}
		}
		if last < 0 {
			continue
		}
		info.tracks = append(info.tracks, trackInfo{
			index:  i,
			tempo:  int(t.Tempo) + hwdefs.DefaultTempo,
			speed:  int(t.Speed) + hwdefs.DefaultSpeed,
			rows:   t.RowCount(),
			frames: t.Patterns[:last+1],
		})
	}
	return info
}

// inspect writes a summary of bank to w, as text or JSON.
func inspect(w io.Writer, bank *sound.Bank, asJSON bool) error {
	info := summarize(bank)
	if asJSON {
		var e jx.Encoder
		e.SetIdent(2)
		info.encode(&e)
		_, err := w.Write(append(e.Bytes(), '\n'))
		return err
	}
	return info.print(w)
}

func (info *bankInfo) print(w io.Writer) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)

	fmt.Fprintf(tw, "WAVEFORMS (%d)\n", len(info.waves))
	for _, wi := range info.waves {
		kind := ""
		if wi.noise {
			kind = "noise"
		}
		fmt.Fprintf(tw, "  %02d\t%s\t%s\n", wi.index, wi.data, kind)
	}

	fmt.Fprintf(tw, "\nSAMPLES (%d)\n", len(info.samples))
	fmt.Fprintf(tw, "  id\toctave\tnote\tspeed\treverse\tloops (wave vol chord pitch)\n")
	for _, si := range info.samples {
		s := si.sample
		fmt.Fprintf(tw, "  %02d\t%d\t%d\t%d\t%t\t", si.index, s.Octave, s.Note, s.Speed, s.Reverse)
		for _, l := range s.Loops {
			fmt.Fprintf(tw, "%d+%d ", l.Start, l.Size)
		}
		fmt.Fprintln(tw)
	}

	fmt.Fprintf(tw, "\nPATTERNS (%d)\n", len(info.patterns))
	for _, pi := range info.patterns {
		fmt.Fprintf(tw, "  %02d\t%d notes\t%d commands\n", pi.id, pi.notes, pi.cmds)
	}

	fmt.Fprintf(tw, "\nTRACKS (%d)\n", len(info.tracks))
	for _, ti := range info.tracks {
		fmt.Fprintf(tw, "  %d\ttempo %d\tspeed %d\trows %d\n", ti.index, ti.tempo, ti.speed, ti.rows)
		for f, ids := range ti.frames {
			fmt.Fprintf(tw, "    frame %02d\t%02d %02d %02d %02d\n", f, ids[0], ids[1], ids[2], ids[3])
		}
	}
	return tw.Flush()
}

func (info *bankInfo) encode(e *jx.Encoder) {
	e.Obj(func(e *jx.Encoder) {
		e.Field("waveforms", func(e *jx.Encoder) {
			e.Arr(func(e *jx.Encoder) {
				for _, wi := range info.waves {
					e.Obj(func(e *jx.Encoder) {
						e.Field("index", func(e *jx.Encoder) { e.Int(wi.index) })
						e.Field("data", func(e *jx.Encoder) { e.Str(wi.data) })
						e.Field("noise", func(e *jx.Encoder) { e.Bool(wi.noise) })
					})
				}
			})
		})
		e.Field("samples", func(e *jx.Encoder) {
			e.Arr(func(e *jx.Encoder) {
				for _, si := range info.samples {
					encodeSample(e, si.index, si.sample)
				}
			})
		})
		e.Field("patterns", func(e *jx.Encoder) {
			e.Arr(func(e *jx.Encoder) {
				for _, pi := range info.patterns {
					e.Obj(func(e *jx.Encoder) {
						e.Field("id", func(e *jx.Encoder) { e.Int(pi.id) })
						e.Field("notes", func(e *jx.Encoder) { e.Int(pi.notes) })
						e.Field("commands", func(e *jx.Encoder) { e.Int(pi.cmds) })
					})
				}
			})
		})
		e.Field("tracks", func(e *jx.Encoder) {
			e.Arr(func(e *jx.Encoder) {
				for _, ti := range info.tracks {
					e.Obj(func(e *jx.Encoder) {
						e.Field("index", func(e *jx.Encoder) { e.Int(ti.index) })
						e.Field("tempo", func(e *jx.Encoder) { e.Int(ti.tempo) })
						e.Field("speed", func(e *jx.Encoder) { e.Int(ti.speed) })
						e.Field("rows", func(e *jx.Encoder) { e.Int(ti.rows) })
						e.Field("frames", func(e *jx.Encoder) {
							e.Arr(func(e *jx.Encoder) {
								for _, ids := range ti.frames {
									e.Arr(func(e *jx.Encoder) {
										for _, id := range ids {
											e.Int(int(id))
										}
									})
								}
							})
						})
					})
				}
			})
		})
	})
}

func encodeSample(e *jx.Encoder, index int, s *sound.Sample) {
	e.Obj(func(e *jx.Encoder) {
		e.Field("index", func(e *jx.Encoder) { e.Int(index) })
		e.Field("octave", func(e *jx.Encoder) { e.Int(int(s.Octave)) })
		e.Field("note", func(e *jx.Encoder) { e.Int(int(s.Note)) })
		e.Field("speed", func(e *jx.Encoder) { e.Int(int(s.Speed)) })
		e.Field("reverse", func(e *jx.Encoder) { e.Bool(s.Reverse) })
		e.Field("pitch16x", func(e *jx.Encoder) { e.Bool(s.Pitch16x) })
		e.Field("mute_left", func(e *jx.Encoder) { e.Bool(s.MuteLeft) })
		e.Field("mute_right", func(e *jx.Encoder) { e.Bool(s.MuteRight) })
		e.Field("loops", func(e *jx.Encoder) {
			e.Arr(func(e *jx.Encoder) {
				for _, l := range s.Loops {
					e.Arr(func(e *jx.Encoder) {
						e.Int(int(l.Start))
						e.Int(int(l.Size))
					})
				}
			})
		})
		e.Field("volumes", func(e *jx.Encoder) {
			e.Arr(func(e *jx.Encoder) {
				for _, t := range s.Ticks {
					e.Int(int(t.Volume))
				}
			})
		})
	})
}
