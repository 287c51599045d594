// Package monitor serves a websocket endpoint to observe and remote control a
// running emulator.
package monitor

import (
	"context"
	"errors"
	"net"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"

	"ticsynth/emu"
	"ticsynth/emu/log"
	"ticsynth/hw"
	"ticsynth/hw/hwdefs"
)

var modMonitor = log.NewModule("monitor")

// DefaultInterval is the default number of ticks between state broadcasts.
const DefaultInterval = hwdefs.FrameRate / 10

const sendQueueLen = 16

// Server is the monitor websocket server.
type Server struct {
	emu      *emu.Emulator
	addr     string
	interval uint64

	ln net.Listener

	mu      sync.Mutex
	clients map[*client]struct{}
	last    State
}

// New creates a monitor for e, listening on addr once run. It registers an
// observer on e, so it must be called before e runs.
func New(e *emu.Emulator, addr string) *Server {
	s := &Server{
		emu:      e,
		addr:     addr,
		interval: DefaultInterval,
		clients:  make(map[*client]struct{}),
	}
	s.last = s.snapshot(e.Engine)
	e.AddObserver(s.observe)
	return s
}

// SetInterval sets the number of ticks between state broadcasts.
func (s *Server) SetInterval(ticks int) {
	s.interval = uint64(max(1, ticks))
}

// Listen binds the listening address. Run calls it if it hasn't been.
func (s *Server) Listen() error {
	ln, err := net.Listen("tcp", s.addr)
	if err != nil {
		return err
	}
	s.ln = ln
	return nil
}

// Addr returns the address the server listens on, or nil before Listen.
func (s *Server) Addr() net.Addr {
	if s.ln == nil {
		return nil
	}
	return s.ln.Addr()
}

// Handler returns the HTTP handler of the monitor.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", s.handleWebsocket)
	return mux
}

// Run serves the monitor until ctx is done. It's an emu.Service.
func (s *Server) Run(ctx context.Context) error {
	if s.ln == nil {
		if err := s.Listen(); err != nil {
			return err
		}
	}

	srv := &http.Server{Handler: s.Handler()}
	go func() {
		<-ctx.Done()
		srv.Close()
		s.closeClients()
	}()

	modMonitor.InfoZ("monitor listening").String("addr", s.ln.Addr().String()).End()
	if err := srv.Serve(s.ln); !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) snapshot(eng *hw.SoundEngine) State {
	st := State{
		Music:  eng.MusicState(),
		Ticks:  eng.Ticks(),
		Level:  s.emu.Stream.Level(),
		Paused: s.emu.IsPaused(),
	}
	for ch := range st.Sfx {
		st.Sfx[ch] = eng.SfxChannel(ch).Index
	}
	return st
}

// observe runs on the emulator loop, after each tick.
func (s *Server) observe(eng *hw.SoundEngine) {
	st := s.snapshot(eng)

	s.mu.Lock()
	defer s.mu.Unlock()

	s.last = st
	if st.Ticks%s.interval != 0 || len(s.clients) == 0 {
		return
	}

	msg := stateEvent(&st)
	for c := range s.clients {
		select {
		case c.send <- msg:
		default:
			modMonitor.DebugZ("client too slow, state dropped").String("remote", c.remote).End()
		}
	}
}

// lastState returns the state at the last tick. Since no tick runs while
// paused, the pause flag is read from the emulator.
func (s *Server) lastState() State {
	s.mu.Lock()
	st := s.last
	s.mu.Unlock()

	st.Paused = s.emu.IsPaused()
	return st
}

func (s *Server) addClient(c *client) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.clients[c] = struct{}{}
}

func (s *Server) removeClient(c *client) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.clients, c)
	close(c.send)
}

func (s *Server) closeClients() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for c := range s.clients {
		c.ws.Close()
	}
}

func (s *Server) handleWebsocket(w http.ResponseWriter, r *http.Request) {
	upgrader := websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     func(r *http.Request) bool { return true },
	}

	ws, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		modMonitor.ErrorZ("websocket handshake failed").Error("err", err).End()
		return
	}
	defer ws.Close()

	modMonitor.DebugZ("websocket handshake success").String("remote", r.RemoteAddr).End()

	c := &client{
		ws:     ws,
		remote: r.RemoteAddr,
		send:   make(chan []byte, sendQueueLen),
	}
	s.addClient(c)
	defer s.removeClient(c)

	go c.writeLoop()

	st := s.lastState()
	c.send <- stateEvent(&st)

	if err := newDriver(s, c).drive(); err != nil {
		if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
			modMonitor.ErrorZ("monitor connection ended").Error("err", err).End()
		}
	}
}

// client is a connected websocket. Only its write loop writes to ws.
type client struct {
	ws     *websocket.Conn
	remote string
	send   chan []byte
}

func (c *client) writeLoop() {
	failed := false
	for msg := range c.send {
		if failed {
			continue
		}
		if err := c.ws.WriteMessage(websocket.TextMessage, msg); err != nil {
			modMonitor.DebugZ("websocket write failed").Error("err", err).End()
			c.ws.Close()
			failed = true
		}
	}
}
