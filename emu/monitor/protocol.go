package monitor

import (
	"errors"
	"fmt"
	"slices"

	"github.com/go-faster/jx"

	"ticsynth/hw/hwdefs"
	"ticsynth/hw/sound"
)

// The monitor and its clients exchange JSON text messages over a websocket,
// all of the form {"event": <name>, "data": <value>}.
//
// Upon connection, the monitor sends the current state. After which it keeps
// pushing "state" events at a regular tick interval, while answering each
// client request with an "ack", an "error" or, for a "state" request, a
// "state" event.

// Event names.
const (
	EventState = "state"
	EventAck   = "ack"
	EventError = "error"
)

// Request is a client->monitor message.
type Request struct {
	Event string
	Data  jx.Raw
}

var errMissingEvent = errors.New("missing event")

func decodeRequest(buf []byte) (Request, error) {
	var req Request
	err := jx.DecodeBytes(buf).Obj(func(d *jx.Decoder, key string) error {
		switch key {
		case "event":
			s, err := d.Str()
			req.Event = s
			return err
		case "data":
			raw, err := d.Raw()
			req.Data = slices.Clone(raw)
			return err
		default:
			return d.Skip()
		}
	})
	if err != nil {
		return Request{}, fmt.Errorf("decode request: %w", err)
	}
	if req.Event == "" {
		return Request{}, fmt.Errorf("decode request: %w", errMissingEvent)
	}
	return req, nil
}

// decodeFields decodes a JSON object into the pointers of fields, indexed by
// key. Unknown keys are ignored, as is empty or null data.
func decodeFields(data []byte, fields map[string]any) error {
	if len(data) == 0 {
		return nil
	}
	d := jx.DecodeBytes(data)
	if d.Next() == jx.Null {
		return nil
	}
	return d.Obj(func(d *jx.Decoder, key string) error {
		switch p := fields[key].(type) {
		case *int:
			v, err := d.Int()
			*p = v
			return err
		case *bool:
			v, err := d.Bool()
			*p = v
			return err
		default:
			return d.Skip()
		}
	})
}

// State is the data of the "state" event.
type State struct {
	Music  sound.MusicState
	Ticks  uint64
	Level  int
	Paused bool

	// Sample played by each sfx channel, -1 when idle.
	Sfx [hwdefs.SoundChannels]int
}

func (s *State) Encode(e *jx.Encoder) {
	e.Obj(func(e *jx.Encoder) {
		e.Field("track", func(e *jx.Encoder) { e.Int(int(s.Music.Track)) })
		e.Field("frame", func(e *jx.Encoder) { e.Int(int(s.Music.Frame)) })
		e.Field("row", func(e *jx.Encoder) { e.Int(int(s.Music.Row)) })
		e.Field("status", func(e *jx.Encoder) { e.Str(s.Music.Status.String()) })
		e.Field("loop", func(e *jx.Encoder) { e.Bool(s.Music.Loop) })
		e.Field("sustain", func(e *jx.Encoder) { e.Bool(s.Music.Sustain) })
		e.Field("ticks", func(e *jx.Encoder) { e.UInt64(s.Ticks) })
		e.Field("level", func(e *jx.Encoder) { e.Int(s.Level) })
		e.Field("paused", func(e *jx.Encoder) { e.Bool(s.Paused) })
		e.Field("sfx", func(e *jx.Encoder) {
			e.Arr(func(e *jx.Encoder) {
				for _, idx := range s.Sfx {
					e.Int(idx)
				}
			})
		})
	})
}

func (s *State) Decode(d *jx.Decoder) error {
	return d.Obj(func(d *jx.Decoder, key string) error {
		var err error
		switch key {
		case "track", "frame", "row":
			var v int
			v, err = d.Int()
			switch key {
			case "track":
				s.Music.Track = int8(v)
			case "frame":
				s.Music.Frame = int8(v)
			case "row":
				s.Music.Row = int8(v)
			}
		case "status":
			var name string
			if name, err = d.Str(); err == nil {
				s.Music.Status, err = parseStatus(name)
			}
		case "loop":
			s.Music.Loop, err = d.Bool()
		case "sustain":
			s.Music.Sustain, err = d.Bool()
		case "ticks":
			s.Ticks, err = d.UInt64()
		case "level":
			s.Level, err = d.Int()
		case "paused":
			s.Paused, err = d.Bool()
		case "sfx":
			i := 0
			err = d.Arr(func(d *jx.Decoder) error {
				v, err := d.Int()
				if i < len(s.Sfx) {
					s.Sfx[i] = v
				}
				i++
				return err
			})
		default:
			err = d.Skip()
		}
		return err
	})
}

func parseStatus(name string) (sound.MusicStatus, error) {
	for st := sound.MusicStop; st <= sound.MusicPlay; st++ {
		if st.String() == name {
			return st, nil
		}
	}
	return sound.MusicStop, fmt.Errorf("unknown music status %q", name)
}

// encodeEvent returns the encoded message for event, with data written by
// the data function, or null if data is nil.
func encodeEvent(event string, data func(e *jx.Encoder)) []byte {
	var e jx.Encoder
	e.Obj(func(e *jx.Encoder) {
		e.Field("event", func(e *jx.Encoder) { e.Str(event) })
		e.Field("data", func(e *jx.Encoder) {
			if data == nil {
				e.Null()
				return
			}
			data(e)
		})
	})
	return e.Bytes()
}

func stateEvent(st *State) []byte {
	return encodeEvent(EventState, st.Encode)
}

func ackEvent(req string) []byte {
	return encodeEvent(EventAck, func(e *jx.Encoder) {
		e.Obj(func(e *jx.Encoder) {
			e.Field("request", func(e *jx.Encoder) { e.Str(req) })
		})
	})
}

func errorEvent(req string, err error) []byte {
	return encodeEvent(EventError, func(e *jx.Encoder) {
		e.Obj(func(e *jx.Encoder) {
			e.Field("request", func(e *jx.Encoder) { e.Str(req) })
			e.Field("message", func(e *jx.Encoder) { e.Str(err.Error()) })
		})
	})
}
