package gateway

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sort"
	"time"

	"github.com/gorilla/websocket"
	"github.com/soyeahso/prelims-tutor/internal/chat"
	"github.com/soyeahso/prelims-tutor/internal/config"
	"github.com/soyeahso/prelims-tutor/internal/logging"
	"github.com/soyeahso/prelims-tutor/internal/version"
)

const (
	// maxFrameBytes caps a single inbound WebSocket message.
	maxFrameBytes = 1 << 20

	shutdownGrace = 10 * time.Second
)

// Server is the tutor's HTTP + WebSocket gateway.
type Server struct {
	cfg      config.ServerConfig
	svc      *chat.Service
	api      *API
	log      *logging.Logger
	clients  *ClientRegistry
	handlers map[string]RequestHandler
	version  string

	// WriteTimeout must outlast a provider call
	writeTimeout time.Duration

	startedAt  time.Time
	httpServer *http.Server
	upgrader   websocket.Upgrader
	ready      chan struct{}
}

// ServerOption configures the gateway server.
type ServerOption func(*Server)

// WithProviderTimeout sizes the HTTP write timeout to fit a provider call.
func WithProviderTimeout(d time.Duration) ServerOption {
	return func(s *Server) {
		if d > 0 {
			s.writeTimeout = d + 30*time.Second
		} else {
			s.writeTimeout = 0
		}
	}
}

// New creates a new gateway server.
func New(cfg config.ServerConfig, svc *chat.Service, log *logging.Logger, opts ...ServerOption) *Server {
	s := &Server{
		cfg:          cfg,
		svc:          svc,
		api:          NewAPI(svc, log),
		log:          log.Sub("gateway"),
		clients:      NewClientRegistry(log.Sub("clients")),
		handlers:     make(map[string]RequestHandler),
		version:      version.Version,
		writeTimeout: 150 * time.Second,
		ready:        make(chan struct{}),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
			CheckOrigin:     checkWebSocketOrigin(cfg.AllowedOrigins),
		},
	}

	for _, opt := range opts {
		opt(s)
	}

	s.registerRPCHandlers()
	return s
}

// checkWebSocketOrigin returns a function that validates WebSocket Origin headers.
// Non-browser clients (no Origin) and same-host pages are always allowed; any
// other Origin must appear in allowed.
func checkWebSocketOrigin(allowed []string) func(*http.Request) bool {
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" {
			return true
		}
		if origin == "http://"+r.Host || origin == "https://"+r.Host {
			return true
		}
		for _, a := range allowed {
			if a == "*" || a == origin {
				return true
			}
		}
		return false
	}
}

// Handle registers an RPC method handler.
func (s *Server) Handle(method string, handler RequestHandler) {
	s.handlers[method] = handler
}

// Methods returns the registered RPC method names, sorted.
func (s *Server) Methods() []string {
	methods := make([]string, 0, len(s.handlers))
	for m := range s.handlers {
		methods = append(methods, m)
	}
	sort.Strings(methods)
	return methods
}

// Handler returns the full HTTP handler with middleware applied.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	s.registerHTTPRoutes(mux)
	return withMiddleware(mux, s.log, s.cfg.AllowedOrigins)
}

// resolveBindAddr computes the listen address from config.
func resolveBindAddr(cfg config.ServerConfig) string {
	switch cfg.Bind {
	case "loopback":
		return fmt.Sprintf("127.0.0.1:%d", cfg.Port)
	case "lan", "":
		return fmt.Sprintf("0.0.0.0:%d", cfg.Port)
	case "custom":
		host := cfg.CustomBindHost
		if host == "" {
			host = "0.0.0.0"
		}
		return fmt.Sprintf("%s:%d", host, cfg.Port)
	default:
		return fmt.Sprintf("127.0.0.1:%d", cfg.Port)
	}
}

// Start begins listening for HTTP and WebSocket connections.
// It blocks until the context is cancelled or an error occurs.
func (s *Server) Start(ctx context.Context) error {
	addr := resolveBindAddr(s.cfg)

	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", addr, err)
	}
	return s.Serve(ctx, ln)
}

// Serve runs the server on ln until ctx is cancelled, then drains
// in-flight requests for up to shutdownGrace and returns.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	s.httpServer = &http.Server{
		Addr:         ln.Addr().String(),
		Handler:      s.Handler(),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: s.writeTimeout,
		IdleTimeout:  120 * time.Second,
		ErrorLog:     s.log.StdLogger("warn"),
		BaseContext:  func(net.Listener) context.Context { return ctx },
	}
	s.startedAt = time.Now()

	served := make(chan error, 1)
	go func() { served <- s.httpServer.Serve(ln) }()

	s.log.Info().
		Str("addr", ln.Addr().String()).
		Str("bind", s.cfg.Bind).
		Str("model", s.svc.Model()).
		Dur("writeTimeout", s.writeTimeout).
		Msg("tutor listening")
	close(s.ready)

	select {
	case err := <-served:
		return err
	case <-ctx.Done():
	}

	s.log.Info().Int("clients", s.clients.Count()).Msg("shutting down")
	s.clients.CloseAll()

	drainCtx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
	defer cancel()
	if err := s.httpServer.Shutdown(drainCtx); err != nil {
		return fmt.Errorf("draining requests: %w", err)
	}
	if err := <-served; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Ready is closed once the server is accepting connections.
func (s *Server) Ready() <-chan struct{} {
	return s.ready
}

// Addr returns the server's listen address, or empty string if not started.
func (s *Server) Addr() string {
	if s.httpServer != nil {
		return s.httpServer.Addr
	}
	return ""
}

// handleWebSocket upgrades HTTP to WebSocket and runs the connection loop.
func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Error().Err(err).Msg("websocket upgrade failed")
		return
	}
	client := NewClient(conn, r.RemoteAddr, s.log.Sub("ws"))
	if err := client.SendEvent(EventWelcome, Welcome{
		Protocol: ProtocolVersion,
		Version:  s.version,
		ConnID:   client.ConnID,
		Model:    s.svc.Model(),
		Methods:  s.Methods(),
	}); err != nil {
		s.log.Warn().Err(err).Msg("sending welcome failed")
		client.Close()
		return
	}

	s.clients.Add(client)
	defer func() {
		s.clients.Remove(client.ConnID)
		client.Close()
	}()
	go client.keepalive()

	s.readLoop(r.Context(), client)
}

// readLoop processes incoming frames until the client goes away. Frames
// are handled in order, one at a time.
func (s *Server) readLoop(ctx context.Context, client *Client) {
	for {
		frame, err := client.ReadFrame()
		if fe, ok := asFrameError(err); ok {
			client.log.Debug().Err(err).Msg("rejecting frame")
			if fe.ID != "" {
				client.RespondError(fe.ID, ErrorShape{Code: CodeInvalidFrame, Message: fe.Msg})
			}
			continue
		}
		if err != nil {
			if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				client.log.Debug().Msg("client closed connection")
			} else {
				client.log.Warn().Err(err).Msg("read error")
			}
			return
		}

		if frame.Type != FrameTypeRequest {
			client.log.Debug().Str("type", frame.Type).Msg("ignoring non-request frame")
			continue
		}

		s.dispatch(ctx, client, frame)
	}
}

// dispatch routes a request frame to the appropriate handler.
func (s *Server) dispatch(ctx context.Context, client *Client, frame Frame) {
	handler, ok := s.handlers[frame.Method]
	if !ok {
		client.RespondError(frame.ID, ErrorShape{
			Code:    CodeMethodNotFound,
			Message: "unknown method: " + frame.Method,
		})
		return
	}

	handler(&RequestContext{
		Ctx:    ctx,
		Client: client,
		Frame:  frame,
		Server: s,
	})
}
