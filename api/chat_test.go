package handler

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/soyeahso/prelims-tutor/internal/config"
	"github.com/soyeahso/prelims-tutor/internal/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func silentLog() *logging.Logger {
	return logging.New(nil, "silent")
}

func TestNewHandler_MissingKey(t *testing.T) {
	cfg := config.Defaults()
	cfg.Provider.APIKey = ""

	h := newHandler(cfg, silentLog())
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/api/chat", strings.NewReader(`{"message":"hi"}`)))

	assert.Equal(t, http.StatusInternalServerError, rr.Code)
	assert.Contains(t, rr.Body.String(), "config validation failed")
}

func TestNewHandler_Routes(t *testing.T) {
	provider := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"id":"c1","object":"chat.completion","created":1,"model":"gpt-5.2",
			"choices":[{"index":0,"finish_reason":"stop","message":{"role":"assistant","content":"Part IV of the Constitution."}}],
			"usage":{"prompt_tokens":900,"completion_tokens":7,"total_tokens":907}}`)
	}))
	defer provider.Close()

	cfg := config.Defaults()
	cfg.Provider.APIKey = "sk-test"
	cfg.Provider.BaseURL = provider.URL
	h := newHandler(cfg, silentLog())

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/api/chat",
		strings.NewReader(`{"message":"Where are DPSP?","sessionId":"fn"}`)))
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	assert.JSONEq(t, `{"response":"Part IV of the Constitution.","model":"gpt-5.2",
		"usage":{"prompt_tokens":900,"completion_tokens":7,"total_tokens":907}}`, rr.Body.String())

	rr = httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/chat", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, rr.Code)
	assert.JSONEq(t, `{"error":"Method not allowed"}`, rr.Body.String())

	rr = httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/clear?sessionId=fn", nil))
	assert.JSONEq(t, `{"success":true}`, rr.Body.String())

	rr = httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/study-plan", nil))
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), `"examDate":"2026-05-24"`)
}
