package gateway

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/soyeahso/prelims-tutor/internal/logging"
)

// Connection timing. A chat.send can take minutes upstream, so liveness
// comes from ping/pong rather than from request traffic.
const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = pongWait * 9 / 10
)

// ErrClientClosed is returned when sending on a closed connection.
var ErrClientClosed = errors.New("client connection closed")

// Client is one WebSocket connection. Writes are serialized; reads happen
// only on the connection's own read loop.
type Client struct {
	ConnID      string
	RemoteAddr  string
	ConnectedAt time.Time

	conn   *websocket.Conn
	mu     sync.Mutex
	closed bool
	done   chan struct{}
	log    *logging.Logger
}

// NewClient wraps a freshly upgraded connection.
func NewClient(conn *websocket.Conn, remoteAddr string, log *logging.Logger) *Client {
	id := uuid.New().String()
	c := &Client{
		ConnID:      id,
		RemoteAddr:  remoteAddr,
		ConnectedAt: time.Now(),
		conn:        conn,
		done:        make(chan struct{}),
		log:         log.With("connId", id),
	}
	conn.SetReadLimit(maxFrameBytes)
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	return c
}

// Send writes a frame. Safe for concurrent use.
func (c *Client) Send(frame Frame) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return ErrClientClosed
	}
	c.conn.SetWriteDeadline(time.Now().Add(writeWait))
	return c.conn.WriteJSON(frame)
}

// SendEvent sends a named event with payload.
func (c *Client) SendEvent(event string, payload any) error {
	f, err := NewEvent(event, payload)
	if err != nil {
		return err
	}
	return c.Send(f)
}

// Respond sends a success response for the given request ID.
func (c *Client) Respond(reqID string, payload any) error {
	f, err := NewResponse(reqID, payload)
	if err != nil {
		c.log.Error().Err(err).Str("id", reqID).Msg("response not encodable")
		return c.RespondError(reqID, ErrorShape{Code: CodeInternal, Message: err.Error()})
	}
	return c.Send(f)
}

// RespondError sends an error response for the given request ID.
func (c *Client) RespondError(reqID string, shape ErrorShape) error {
	return c.Send(NewErrorResponse(reqID, shape))
}

// ReadFrame blocks for the next message and decodes it. A *FrameError
// means the message was bad but the connection is still usable. The read
// deadline restarts on each call, so time spent handling the previous
// frame does not count against the peer.
func (c *Client) ReadFrame() (Frame, error) {
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	_, msg, err := c.conn.ReadMessage()
	if err != nil {
		return Frame{}, err
	}
	return DecodeFrame(msg)
}

// keepalive pings until the client is closed.
func (c *Client) keepalive() {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()
	for {
		select {
		case <-c.done:
			return
		case <-ticker.C:
			c.mu.Lock()
			if c.closed {
				c.mu.Unlock()
				return
			}
			err := c.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait))
			c.mu.Unlock()
			if err != nil {
				c.log.Debug().Err(err).Msg("ping failed")
				return
			}
		}
	}
}

// Close closes the connection. Calling it more than once is safe.
func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return nil
	}
	c.closed = true
	if c.done != nil {
		close(c.done)
	}
	if c.conn == nil {
		return nil
	}
	return c.conn.Close()
}

// ClientRegistry tracks open connections so shutdown can close them.
type ClientRegistry struct {
	mu      sync.RWMutex
	clients map[string]*Client
	log     *logging.Logger
}

// NewClientRegistry creates an empty client registry.
func NewClientRegistry(log *logging.Logger) *ClientRegistry {
	return &ClientRegistry{
		clients: make(map[string]*Client),
		log:     log,
	}
}

// Add registers a connected client.
func (r *ClientRegistry) Add(c *Client) {
	r.mu.Lock()
	r.clients[c.ConnID] = c
	n := len(r.clients)
	r.mu.Unlock()
	r.log.Info().Str("connId", c.ConnID).Str("remote", c.RemoteAddr).Int("clients", n).Msg("client connected")
}

// Remove unregisters a client. Its lifetime is logged.
func (r *ClientRegistry) Remove(connID string) {
	r.mu.Lock()
	c, ok := r.clients[connID]
	delete(r.clients, connID)
	r.mu.Unlock()
	if ok {
		r.log.Info().Str("connId", connID).Dur("connected", time.Since(c.ConnectedAt)).Msg("client disconnected")
	}
}

// Count returns the number of connected clients.
func (r *ClientRegistry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.clients)
}

// CloseAll closes and forgets every client.
func (r *ClientRegistry) CloseAll() {
	r.mu.Lock()
	clients := r.clients
	r.clients = make(map[string]*Client)
	r.mu.Unlock()
	for _, c := range clients {
		c.Close()
	}
}
