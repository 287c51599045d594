package monitor

import (
	"context"
	"errors"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-faster/jx"
	"github.com/google/go-cmp/cmp"
	"github.com/gorilla/websocket"

	"ticsynth/emu"
	"ticsynth/emu/log"
	"ticsynth/hw/sound"
)

func init() {
	log.Disable()
}

func TestDecodeRequest(t *testing.T) {
	tests := []struct {
		in      string
		want    Request
		wantErr bool
	}{
		{in: `{"event":"stop"}`, want: Request{Event: "stop"}},
		{in: `{"event":"sfx","data":{"index":3}}`, want: Request{Event: "sfx", Data: jx.Raw(`{"index":3}`)}},
		{in: `{"data":{},"extra":1,"event":"state"}`, want: Request{Event: "state", Data: jx.Raw(`{}`)}},
		{in: `{"data":{}}`, wantErr: true},
		{in: `[1, 2]`, wantErr: true},
		{in: `{"event":`, wantErr: true},
	}
	for _, tt := range tests {
		got, err := decodeRequest([]byte(tt.in))
		if (err != nil) != tt.wantErr {
			t.Fatalf("decodeRequest(%s) error = %v, wantErr %t", tt.in, err, tt.wantErr)
		}
		if diff := cmp.Diff(tt.want, got); diff != "" {
			t.Errorf("decodeRequest(%s) mismatch (-want +got):\n%s", tt.in, diff)
		}
	}
}

func TestDecodeFields(t *testing.T) {
	var (
		n    = -1
		flag = false
	)
	fields := map[string]any{"n": &n, "flag": &flag}

	if err := decodeFields([]byte(`{"n":12,"flag":true,"other":"x"}`), fields); err != nil {
		t.Fatal(err)
	}
	if n != 12 || !flag {
		t.Errorf("got n=%d flag=%t, want n=12 flag=true", n, flag)
	}

	for _, data := range []string{``, `null`} {
		if err := decodeFields([]byte(data), fields); err != nil {
			t.Errorf("decodeFields(%q) = %v", data, err)
		}
	}
	if err := decodeFields([]byte(`{"n":"str"}`), fields); err == nil {
		t.Errorf("decodeFields with wrong type should fail")
	}
}

func TestStateEncodeDecode(t *testing.T) {
	want := State{
		Music: sound.MusicState{
			Track:   2,
			Frame:   5,
			Row:     17,
			Status:  sound.MusicPlayFrame,
			Loop:    true,
			Sustain: true,
		},
		Ticks:  123456,
		Level:  2048,
		Paused: true,
		Sfx:    [4]int{-1, 3, -1, 63},
	}

	var e jx.Encoder
	want.Encode(&e)

	var got State
	if err := got.Decode(jx.DecodeBytes(e.Bytes())); err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("state mismatch (-want +got):\n%s", diff)
	}
}

func TestParseStatusUnknown(t *testing.T) {
	if _, err := parseStatus("Rewind"); err == nil {
		t.Errorf("parseStatus should fail on unknown status")
	}
}

// message is a decoded monitor->client message.
type message struct {
	event string
	data  jx.Raw
}

func readMessage(t *testing.T, ws *websocket.Conn) message {
	t.Helper()

	ws.SetReadDeadline(time.Now().Add(5 * time.Second))
	_, buf, err := ws.ReadMessage()
	if err != nil {
		t.Fatal(err)
	}
	req, err := decodeRequest(buf)
	if err != nil {
		t.Fatalf("bad message %s: %v", buf, err)
	}
	return message{event: req.Event, data: req.Data}
}

func decodeState(t *testing.T, m message) State {
	t.Helper()

	if m.event != EventState {
		t.Fatalf("got event %q, want %q", m.event, EventState)
	}
	var st State
	if err := st.Decode(jx.DecodeBytes(m.data)); err != nil {
		t.Fatal(err)
	}
	return st
}

func startMonitor(t *testing.T) (*emu.Emulator, *websocket.Conn) {
	t.Helper()

	cfg := emu.DefaultConfig()
	cfg.Audio.Backend = emu.BackendNull
	e, err := emu.Launch(sound.DemoBank(), cfg)
	if err != nil {
		t.Fatal(err)
	}

	srv := New(e, "")
	srv.SetInterval(1)
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- e.Run(ctx) }()
	t.Cleanup(func() {
		cancel()
		if err := <-done; err != nil {
			t.Errorf("emulator Run() = %v", err)
		}
	})

	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws"
	ws, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { ws.Close() })

	return e, ws
}

func send(t *testing.T, ws *websocket.Conn, msg string) {
	t.Helper()

	if err := ws.WriteMessage(websocket.TextMessage, []byte(msg)); err != nil {
		t.Fatal(err)
	}
}

// waitFor reads messages until one satisfies match.
func waitFor(t *testing.T, ws *websocket.Conn, match func(m message) bool) message {
	t.Helper()

	for range 1000 {
		if m := readMessage(t, ws); match(m) {
			return m
		}
	}
	t.Fatalf("no matching message received")
	return message{}
}

func isEvent(event string) func(m message) bool {
	return func(m message) bool { return m.event == event }
}

func TestMonitorMusic(t *testing.T) {
	e, ws := startMonitor(t)

	// Initial state.
	st := decodeState(t, readMessage(t, ws))
	if st.Music.Status != sound.MusicStop {
		t.Fatalf("initial status = %v, want %v", st.Music.Status, sound.MusicStop)
	}

	send(t, ws, `{"event":"music","data":{"track":0,"frame":2,"loop":true}}`)
	ack := waitFor(t, ws, isEvent(EventAck))
	if string(ack.data) != `{"request":"music"}` {
		t.Errorf("ack data = %s", ack.data)
	}

	waitFor(t, ws, func(m message) bool {
		if m.event != EventState {
			return false
		}
		st := decodeState(t, m)
		return st.Music.Status == sound.MusicPlay && st.Music.Frame == 2 && st.Music.Loop
	})

	send(t, ws, `{"event":"stop"}`)
	waitFor(t, ws, isEvent(EventAck))
	waitFor(t, ws, func(m message) bool {
		return m.event == EventState && decodeState(t, m).Music.Status == sound.MusicStop
	})

	if got := e.MusicState().Status; got != sound.MusicStop {
		t.Errorf("emulator status = %v, want %v", got, sound.MusicStop)
	}
}

func TestMonitorSfx(t *testing.T) {
	_, ws := startMonitor(t)
	readMessage(t, ws)

	send(t, ws, `{"event":"sfx","data":{"index":2,"channel":3}}`)
	waitFor(t, ws, isEvent(EventAck))
	waitFor(t, ws, func(m message) bool {
		return m.event == EventState && decodeState(t, m).Sfx[3] == 2
	})
}

func TestMonitorPause(t *testing.T) {
	e, ws := startMonitor(t)
	readMessage(t, ws)

	send(t, ws, `{"event":"pause","data":{"paused":true}}`)
	waitFor(t, ws, isEvent(EventAck))
	if !e.IsPaused() {
		t.Fatalf("emulator not paused")
	}

	send(t, ws, `{"event":"state"}`)
	waitFor(t, ws, func(m message) bool {
		return m.event == EventState && decodeState(t, m).Paused
	})

	send(t, ws, `{"event":"pause","data":{"paused":false}}`)
	waitFor(t, ws, isEvent(EventAck))
	if e.IsPaused() {
		t.Fatalf("emulator still paused")
	}
}

func TestMonitorErrors(t *testing.T) {
	_, ws := startMonitor(t)
	readMessage(t, ws)

	tests := []struct {
		msg, req string
	}{
		{msg: `{"event":"rewind"}`, req: "rewind"},
		{msg: `not json`, req: ""},
		{msg: `{"event":"sfx","data":{"index":"lead"}}`, req: "sfx"},
	}
	for _, tt := range tests {
		send(t, ws, tt.msg)
		m := waitFor(t, ws, isEvent(EventError))

		var req, msg string
		err := jx.DecodeBytes(m.data).Obj(func(d *jx.Decoder, key string) error {
			var err error
			switch key {
			case "request":
				req, err = d.Str()
			case "message":
				msg, err = d.Str()
			default:
				err = errors.New("unexpected key " + key)
			}
			return err
		})
		if err != nil {
			t.Fatal(err)
		}
		if req != tt.req || msg == "" {
			t.Errorf("%s: got error {request: %q, message: %q}, want request %q", tt.msg, req, msg, tt.req)
		}
	}
}

func TestServerRun(t *testing.T) {
	cfg := emu.DefaultConfig()
	cfg.Audio.Backend = emu.BackendNull
	e, err := emu.Launch(sound.DemoBank(), cfg)
	if err != nil {
		t.Fatal(err)
	}

	srv := New(e, "localhost:0")
	if err := srv.Listen(); err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- srv.Run(ctx) }()

	url := "ws://" + srv.Addr().String() + "/ws"
	ws, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatal(err)
	}
	defer ws.Close()
	readMessage(t, ws)

	cancel()
	if err := <-done; err != nil {
		t.Fatalf("Run() = %v", err)
	}

	// Connections are closed along with the server.
	ws.SetReadDeadline(time.Now().Add(5 * time.Second))
	if _, _, err := ws.ReadMessage(); err == nil {
		t.Errorf("connection still open after server shutdown")
	}
}
