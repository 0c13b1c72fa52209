package gateway

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/soyeahso/prelims-tutor/internal/chat"
	"github.com/soyeahso/prelims-tutor/internal/logging"
)

// maxBodyBytes caps a chat request body.
const maxBodyBytes = 1 << 20

// ErrorResponse is the body of every non-2xx API response.
type ErrorResponse struct {
	Error string `json:"error"`
}

// ClearResponse is returned by the clear endpoint.
type ClearResponse struct {
	Success bool `json:"success"`
}

// API serves the chat, clear and study-plan endpoints. The long-running
// gateway and the serverless handler both use it.
type API struct {
	svc *chat.Service
	log *logging.Logger
}

// NewAPI creates the HTTP API over a chat service.
func NewAPI(svc *chat.Service, log *logging.Logger) *API {
	return &API{svc: svc, log: log.Sub("api")}
}

// Register mounts the API routes. Method checks happen in the handlers so
// a wrong method gets a JSON 405 rather than the mux's plain-text one.
func (a *API) Register(mux *http.ServeMux) {
	mux.HandleFunc("/api/chat", a.Chat)
	mux.HandleFunc("/api/clear", a.Clear)
	mux.HandleFunc("/api/study-plan", a.StudyPlan)
}

// Chat handles POST /api/chat.
func (a *API) Chat(w http.ResponseWriter, r *http.Request) {
	if !allowMethod(w, r, http.MethodPost) {
		return
	}

	var req chat.Request
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	resp, err := a.svc.Chat(r.Context(), req)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, chat.ErrEmptyMessage) {
			status = http.StatusBadRequest
		} else if !isProviderFailure(err) {
			a.log.Error().Err(err).Str("sessionId", req.SessionID).Msg("chat failed")
		}
		writeError(w, status, errorMessage(err))
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// Clear handles GET (or POST) /api/clear?sessionId=. It always reports
// success; a store failure is only logged.
func (a *API) Clear(w http.ResponseWriter, r *http.Request) {
	if !allowMethod(w, r, http.MethodGet, http.MethodPost) {
		return
	}
	id := r.URL.Query().Get("sessionId")
	if err := a.svc.Clear(r.Context(), id); err != nil {
		a.log.Warn().Err(err).Str("sessionId", id).Msg("clear failed")
	}
	writeJSON(w, http.StatusOK, ClearResponse{Success: true})
}

// StudyPlan handles GET /api/study-plan.
func (a *API) StudyPlan(w http.ResponseWriter, r *http.Request) {
	if !allowMethod(w, r, http.MethodGet) {
		return
	}
	writeJSON(w, http.StatusOK, a.svc.StudyPlan())
}

func allowMethod(w http.ResponseWriter, r *http.Request, methods ...string) bool {
	for _, m := range methods {
		if r.Method == m {
			return true
		}
	}
	for _, m := range methods {
		w.Header().Add("Allow", m)
	}
	writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
	return false
}

func isProviderFailure(err error) bool {
	var pf *chat.ProviderFailure
	return errors.As(err, &pf)
}

func errorMessage(err error) string {
	if msg := err.Error(); msg != "" {
		return msg
	}
	return chat.FallbackErrorMessage
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, ErrorResponse{Error: msg})
}
