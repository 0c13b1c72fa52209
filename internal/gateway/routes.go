package gateway

import (
	"errors"
	"net/http"

	"github.com/soyeahso/prelims-tutor/internal/chat"
	"github.com/soyeahso/prelims-tutor/internal/llm"
)

// registerHTTPRoutes sets up all HTTP routes on the server mux.
func (s *Server) registerHTTPRoutes(mux *http.ServeMux) {
	s.api.Register(mux)
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("GET /ws", s.handleWebSocket)
	mux.HandleFunc("GET /{$}", handleIndex)

	// Catch-all for unknown routes
	mux.HandleFunc("/", handleNotFound)
}

// registerRPCHandlers sets up the WebSocket method handlers.
func (s *Server) registerRPCHandlers() {
	s.Handle("health", s.rpcHealth)
	s.Handle("chat.send", s.rpcChatSend)
	s.Handle("chat.clear", s.rpcChatClear)
	s.Handle("studyplan.get", s.rpcStudyPlan)
}

func (s *Server) rpcHealth(rc *RequestContext) {
	rc.Respond(s.health())
}

func (s *Server) rpcChatSend(rc *RequestContext) {
	var p chat.Request
	if err := rc.Params(&p); err != nil {
		rc.Fail(ErrorShape{Code: CodeInvalidParams, Message: err.Error()})
		return
	}

	resp, err := s.svc.Chat(rc.Ctx, p)
	if err != nil {
		shape := chatErrorShape(err)
		if shape.Code == CodeInternal {
			rc.Client.log.Error().Err(err).Msg("chat.send failed")
		}
		rc.Fail(shape)
		return
	}
	rc.Respond(resp)
}

// chatErrorShape classifies a chat.Service error. Rate limits, upstream
// 5xx and transport failures are marked retryable.
func chatErrorShape(err error) ErrorShape {
	if errors.Is(err, chat.ErrEmptyMessage) {
		return ErrorShape{Code: CodeInvalidParams, Message: err.Error()}
	}
	if !isProviderFailure(err) {
		return ErrorShape{Code: CodeInternal, Message: errorMessage(err)}
	}
	shape := ErrorShape{Code: CodeProviderError, Message: errorMessage(err)}
	var pe *llm.ProviderError
	if errors.As(err, &pe) {
		shape.Retryable = pe.Code == 0 || pe.Code == http.StatusTooManyRequests || pe.Code >= http.StatusInternalServerError
	}
	return shape
}

type chatClearParams struct {
	SessionID string `json:"sessionId,omitempty"`
}

func (s *Server) rpcChatClear(rc *RequestContext) {
	var p chatClearParams
	if err := rc.Params(&p); err != nil {
		rc.Fail(ErrorShape{Code: CodeInvalidParams, Message: err.Error()})
		return
	}
	if err := s.svc.Clear(rc.Ctx, p.SessionID); err != nil {
		rc.Client.log.Warn().Err(err).Str("sessionId", p.SessionID).Msg("chat.clear failed")
	}
	rc.Respond(ClearResponse{Success: true})
}

func (s *Server) rpcStudyPlan(rc *RequestContext) {
	rc.Respond(s.svc.StudyPlan())
}
