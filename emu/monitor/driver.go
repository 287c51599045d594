package monitor

import (
	"fmt"

	"github.com/gorilla/websocket"

	"ticsynth/hw"
	"ticsynth/hw/hwdefs"
)

// A handlerFunc handles the data of a request. It returns the response
// message, or nil for a simple acknowledgment.
type handlerFunc func(data []byte) ([]byte, error)

type driver struct {
	srv *Server
	c   *client

	handlers map[string]handlerFunc
}

func newDriver(srv *Server, c *client) *driver {
	d := &driver{srv: srv, c: c}
	d.handlers = map[string]handlerFunc{
		"music": d.handleMusic,
		"stop":  d.handleStop,
		"sfx":   d.handleSfx,
		"pause": d.handlePause,
		"state": d.handleState,
	}
	return d
}

func (d *driver) drive() error {
	for {
		mt, buf, err := d.c.ws.ReadMessage()
		if err != nil {
			return err
		}
		if mt != websocket.TextMessage {
			continue
		}

		req, err := decodeRequest(buf)
		if err != nil {
			modMonitor.WarnZ("invalid request").Error("err", err).End()
			d.c.send <- errorEvent("", err)
			continue
		}

		modMonitor.DebugZ("received request").
			String("event", req.Event).
			String("data", string(req.Data)).
			End()

		handler, ok := d.handlers[req.Event]
		if !ok {
			modMonitor.WarnZ("unknown request").String("event", req.Event).End()
			d.c.send <- errorEvent(req.Event, fmt.Errorf("unknown request %q", req.Event))
			continue
		}

		resp, err := handler(req.Data)
		switch {
		case err != nil:
			modMonitor.ErrorZ("error handling request").
				String("event", req.Event).
				Error("err", err).
				End()
			resp = errorEvent(req.Event, err)
		case resp == nil:
			resp = ackEvent(req.Event)
		}
		d.c.send <- resp
	}
}

func (d *driver) handleMusic(data []byte) ([]byte, error) {
	var (
		track, frame          = 0, 0
		row, tempo, speed     = -1, -1, -1
		loop, sustain, single bool
	)
	err := decodeFields(data, map[string]any{
		"track":      &track,
		"frame":      &frame,
		"row":        &row,
		"loop":       &loop,
		"sustain":    &sustain,
		"tempo":      &tempo,
		"speed":      &speed,
		"play_frame": &single,
	})
	if err != nil {
		return nil, err
	}

	if single {
		return nil, d.srv.emu.PlayFrame(track, frame, row, loop, sustain, tempo, speed)
	}
	return nil, d.srv.emu.Music(track, frame, row, loop, sustain, tempo, speed)
}

func (d *driver) handleStop([]byte) ([]byte, error) {
	return nil, d.srv.emu.Do(func(eng *hw.SoundEngine) { eng.StopMusic() })
}

func (d *driver) handleSfx(data []byte) ([]byte, error) {
	var (
		index, channel         = 0, 0
		note, octave, duration = -1, -1, -1
		left, right            = hwdefs.MaxVolume, hwdefs.MaxVolume
		speed                  = hwdefs.SfxDefSpeed
	)
	err := decodeFields(data, map[string]any{
		"index":    &index,
		"note":     &note,
		"octave":   &octave,
		"duration": &duration,
		"channel":  &channel,
		"left":     &left,
		"right":    &right,
		"speed":    &speed,
	})
	if err != nil {
		return nil, err
	}
	return nil, d.srv.emu.Sfx(index, note, octave, duration, channel, left, right, speed)
}

func (d *driver) handlePause(data []byte) ([]byte, error) {
	paused := true
	if err := decodeFields(data, map[string]any{"paused": &paused}); err != nil {
		return nil, err
	}
	d.srv.emu.SetPause(paused)
	return nil, nil
}

func (d *driver) handleState([]byte) ([]byte, error) {
	st := d.srv.lastState()
	return stateEvent(&st), nil
}
