package preview

import (
	"context"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"image"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/achilleasa/raylive/input"
	"github.com/achilleasa/raylive/log"
)

var logger = log.New("preview")

// Size of the frame message header: little endian u32 width and height.
const headerSize = 8

// Messages queued per client before frames start getting dropped.
const clientQueueSize = 4

type outMessage struct {
	kind    int
	payload []byte
}

type client struct {
	conn *websocket.Conn
	send chan outMessage
}

// Server is a surface that streams frames to browsers over websockets and
// feeds browser input back as input events.
//
// Frames are sent as binary messages holding a header with the frame
// dimensions followed by the RGBA pixels. Status updates are sent as text
// messages.
type Server struct {
	mu      sync.Mutex
	clients map[*client]bool

	width     int
	height    int
	lastFrame []byte
	status    string

	post     func(input.Event)
	upgrader websocket.Upgrader
}

// Create a preview server. Browser input events are passed to post.
func NewServer(width, height int, post func(input.Event)) *Server {
	return &Server{
		clients: map[*client]bool{},
		width:   width,
		height:  height,
		post:    post,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
}

// Get the HTTP handler serving the viewer page and the websocket endpoint.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/", s.handlePage)
	mux.HandleFunc("/ws", s.HandleWS)
	return mux
}

// Listen on addr until the context is cancelled.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errChan := make(chan error, 1)
	go func() {
		logger.Noticef("serving preview on http://%s/", addr)
		errChan <- srv.ListenAndServe()
	}()

	select {
	case err := <-errChan:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errChan; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	s.closeClients()
	return nil
}

// Resize the surface; subsequent frames carry the new dimensions.
func (s *Server) Resize(width, height int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.width, s.height = width, height
	return nil
}

// Broadcast a frame to all connected clients.
func (s *Server) Paint(img *image.RGBA) error {
	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()

	msg := make([]byte, headerSize+len(img.Pix))
	binary.LittleEndian.PutUint32(msg[0:4], uint32(w))
	binary.LittleEndian.PutUint32(msg[4:8], uint32(h))
	copy(msg[headerSize:], img.Pix)

	s.mu.Lock()
	defer s.mu.Unlock()
	if w != s.width || h != s.height {
		return fmt.Errorf("preview: frame is %dx%d; surface is %dx%d", w, h, s.width, s.height)
	}
	s.lastFrame = msg
	s.broadcast(outMessage{kind: websocket.BinaryMessage, payload: msg})
	return nil
}

// Broadcast a status line.
func (s *Server) SetStatus(text string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.status = text
	s.broadcast(outMessage{kind: websocket.TextMessage, payload: []byte(text)})
}

// Get the number of connected clients.
func (s *Server) Clients() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.clients)
}

// Upgrade a connection and stream frames to it. The last frame and status
// are sent right away so new viewers do not wait for the next repaint.
func (s *Server) HandleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.Warningf("websocket upgrade failed: %v", err)
		return
	}

	c := &client{conn: conn, send: make(chan outMessage, clientQueueSize)}
	s.mu.Lock()
	s.clients[c] = true
	if s.lastFrame != nil {
		c.send <- outMessage{kind: websocket.BinaryMessage, payload: s.lastFrame}
	}
	if s.status != "" {
		c.send <- outMessage{kind: websocket.TextMessage, payload: []byte(s.status)}
	}
	s.mu.Unlock()
	logger.Infof("viewer connected from %s", r.RemoteAddr)

	go s.writeLoop(c)
	s.readLoop(c)
}

func (s *Server) writeLoop(c *client) {
	for msg := range c.send {
		if err := c.conn.WriteMessage(msg.kind, msg.payload); err != nil {
			c.conn.Close()
			return
		}
	}
	_ = c.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
	c.conn.Close()
}

func (s *Server) readLoop(c *client) {
	defer s.removeClient(c)
	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			return
		}
		ev, err := decodeMessage(data)
		if err != nil {
			logger.Debugf("ignoring client message: %v", err)
			continue
		}
		s.post(ev)
	}
}

// Queue a message for every client, dropping it for clients that fall
// behind. Must be called while holding s.mu.
func (s *Server) broadcast(msg outMessage) {
	for c := range s.clients {
		select {
		case c.send <- msg:
		default:
			logger.Debug("dropping message for slow viewer")
		}
	}
}

func (s *Server) removeClient(c *client) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.clients[c] {
		delete(s.clients, c)
		close(c.send)
	}
}

func (s *Server) closeClients() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for c := range s.clients {
		delete(s.clients, c)
		close(c.send)
	}
}

// A message sent by the viewer page.
type clientMessage struct {
	Type    string  `json:"type"`
	Key     string  `json:"key,omitempty"`
	X       float32 `json:"x,omitempty"`
	Y       float32 `json:"y,omitempty"`
	Control string  `json:"control,omitempty"`
	Value   float64 `json:"value,omitempty"`
}

func decodeMessage(data []byte) (input.Event, error) {
	var msg clientMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}

	switch msg.Type {
	case "keydown", "keyup":
		if msg.Key == "" {
			return nil, errors.New("key event without a key")
		}
		return input.KeyEvent(msg.Key, msg.Type == "keydown"), nil
	case "pointermove":
		return input.PointerMove{X: msg.X, Y: msg.Y}, nil
	case "pointerdown", "pointerup":
		return input.PointerButton{X: msg.X, Y: msg.Y, Pressed: msg.Type == "pointerdown"}, nil
	case "pointerleave":
		return input.PointerLeave{}, nil
	case "control":
		var control input.Control
		switch strings.ToLower(msg.Control) {
		case "focal_length":
			control = input.FocalLength
		case "width":
			control = input.Width
		case "anti_alias":
			control = input.AntiAlias
		default:
			return nil, fmt.Errorf("unknown control %q", msg.Control)
		}
		return input.ControlChange{Control: control, Value: msg.Value}, nil
	}
	return nil, fmt.Errorf("unknown message type %q", msg.Type)
}

func (s *Server) handlePage(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write([]byte(viewerPage))
}
