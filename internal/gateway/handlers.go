package gateway

import (
	"bytes"
	"context"
	_ "embed"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

//go:embed static/index.html
var indexHTML []byte

// HealthResponse is served by GET /health and the health method.
type HealthResponse struct {
	Status  string `json:"status"`
	Version string `json:"version"`
	Model   string `json:"model"`
	Clients int    `json:"clients"`
	Uptime  string `json:"uptime,omitempty"`
}

type notFoundResponse struct {
	Error string `json:"error"`
	Path  string `json:"path"`
}

func (s *Server) health() HealthResponse {
	h := HealthResponse{
		Status:  "ok",
		Version: s.version,
		Model:   s.svc.Model(),
		Clients: s.clients.Count(),
	}
	if !s.startedAt.IsZero() {
		h.Uptime = time.Since(s.startedAt).Truncate(time.Second).String()
	}
	return h
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.health())
}

// handleIndex serves the chat page.
func handleIndex(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write(indexHTML)
}

func handleNotFound(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusNotFound, notFoundResponse{Error: "not found", Path: r.URL.Path})
}

// RequestHandler processes one request frame.
type RequestHandler func(rc *RequestContext)

// RequestContext carries a request frame and the connection it came from.
type RequestContext struct {
	Ctx    context.Context
	Client *Client
	Frame  Frame
	Server *Server
}

// Respond sends a success response.
func (rc *RequestContext) Respond(payload any) {
	if err := rc.Client.Respond(rc.Frame.ID, payload); err != nil {
		rc.Client.log.Warn().Err(err).Str("method", rc.Frame.Method).Msg("failed to send response")
	}
}

// Fail sends an error response.
func (rc *RequestContext) Fail(shape ErrorShape) {
	if err := rc.Client.RespondError(rc.Frame.ID, shape); err != nil {
		rc.Client.log.Warn().Err(err).Str("method", rc.Frame.Method).Msg("failed to send error")
	}
}

// Params decodes the request params into target. Absent or null params
// leave target untouched.
func (rc *RequestContext) Params(target any) error {
	raw := bytes.TrimSpace(rc.Frame.Params)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return nil
	}
	if err := json.Unmarshal(raw, target); err != nil {
		return fmt.Errorf("invalid params for %s: %w", rc.Frame.Method, err)
	}
	return nil
}
