package gateway

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/soyeahso/prelims-tutor/internal/chat"
	"github.com/soyeahso/prelims-tutor/internal/config"
	"github.com/soyeahso/prelims-tutor/internal/llm"
	"github.com/soyeahso/prelims-tutor/internal/session"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	srv   *Server
	ts    *httptest.Server
	mock  *llm.MockClient
	store *session.MemoryStore
}

func newFixture(t *testing.T, mock *llm.MockClient) *fixture {
	t.Helper()
	if mock == nil {
		mock = &llm.MockClient{}
	}
	store := session.NewMemoryStore(session.MemoryOptions{}, testLog())
	t.Cleanup(func() { store.Close() })

	svc := chat.NewService(chat.Options{}, mock, store, nil, testLog())
	srv := New(config.Defaults().Server, svc, testLog())

	mux := http.NewServeMux()
	srv.registerHTTPRoutes(mux)
	ts := httptest.NewServer(mux)
	t.Cleanup(ts.Close)

	return &fixture{srv: srv, ts: ts, mock: mock, store: store}
}

func postChat(t *testing.T, url, body string) (*http.Response, map[string]any) {
	t.Helper()
	resp, err := http.Post(url+"/api/chat", "application/json", strings.NewReader(body))
	require.NoError(t, err)
	defer resp.Body.Close()

	var out map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return resp, out
}

func TestAPIChat(t *testing.T) {
	f := newFixture(t, &llm.MockClient{
		CompleteFunc: func(ctx context.Context, req llm.CompletionRequest) (*llm.CompletionResponse, error) {
			return &llm.CompletionResponse{
				Content: "DPSP are the Directive Principles of State Policy.",
				Usage:   llm.Usage{PromptTokens: 812, CompletionTokens: 11, TotalTokens: 823},
			}, nil
		},
	})

	resp, body := postChat(t, f.ts.URL, `{"message":"What is DPSP?","sessionId":"s1"}`)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/json", resp.Header.Get("Content-Type"))
	assert.Equal(t, "DPSP are the Directive Principles of State Policy.", body["response"])
	assert.Equal(t, "gpt-5.2", body["model"])

	usage := body["usage"].(map[string]any)
	assert.EqualValues(t, 812, usage["prompt_tokens"])
	assert.EqualValues(t, 11, usage["completion_tokens"])
	assert.EqualValues(t, 823, usage["total_tokens"])

	n, err := f.store.Len(context.Background(), "s1")
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}

func TestAPIChat_DefaultSession(t *testing.T) {
	f := newFixture(t, nil)

	resp, _ := postChat(t, f.ts.URL, `{"message":"hello"}`)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	n, _ := f.store.Len(context.Background(), "default")
	assert.Equal(t, 2, n)
}

func TestAPIChat_BadRequests(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{"invalid json", `{"message":`, "invalid request body"},
		{"wrong type", `{"message":42}`, "invalid request body"},
		{"missing message", `{}`, "message is required"},
		{"blank message", `{"message":"   "}`, "message is required"},
	}

	f := newFixture(t, nil)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, body := postChat(t, f.ts.URL, tt.body)
			assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
			assert.Equal(t, tt.want, body["error"])
		})
	}
	assert.Empty(t, f.mock.Requests())
	assert.Zero(t, f.store.Count())
}

func TestAPIChat_ProviderFailure(t *testing.T) {
	f := newFixture(t, &llm.MockClient{
		CompleteFunc: func(ctx context.Context, req llm.CompletionRequest) (*llm.CompletionResponse, error) {
			return nil, &llm.ProviderError{Provider: "openai", Code: 401, Message: "Incorrect API key provided"}
		},
	})

	resp, body := postChat(t, f.ts.URL, `{"message":"hi","sessionId":"s"}`)
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	assert.Equal(t, "Incorrect API key provided", body["error"])

	turns, err := f.store.Recent(context.Background(), "s", 0)
	require.NoError(t, err)
	require.Len(t, turns, 1)
	assert.Equal(t, session.RoleUser, turns[0].Role)
}

func TestAPI_MethodNotAllowed(t *testing.T) {
	f := newFixture(t, nil)

	tests := []struct {
		method string
		path   string
	}{
		{http.MethodGet, "/api/chat"},
		{http.MethodPut, "/api/chat"},
		{http.MethodDelete, "/api/clear"},
		{http.MethodPost, "/api/study-plan"},
	}
	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			req, err := http.NewRequest(tt.method, f.ts.URL+tt.path, nil)
			require.NoError(t, err)
			resp, err := http.DefaultClient.Do(req)
			require.NoError(t, err)
			defer resp.Body.Close()

			assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
			var body ErrorResponse
			require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
			assert.Equal(t, "Method not allowed", body.Error)
			assert.NotEmpty(t, resp.Header.Get("Allow"))
		})
	}
	assert.Empty(t, f.mock.Requests())
}

func TestAPIClear(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()

	postChat(t, f.ts.URL, `{"message":"one","sessionId":"s1"}`)
	postChat(t, f.ts.URL, `{"message":"other","sessionId":"s2"}`)

	resp, err := http.Get(f.ts.URL + "/api/clear?sessionId=s1")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var body ClearResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.True(t, body.Success)

	n, _ := f.store.Len(ctx, "s1")
	assert.Zero(t, n)
	n, _ = f.store.Len(ctx, "s2")
	assert.Equal(t, 2, n)
}

func TestAPIClear_UnknownAndDefault(t *testing.T) {
	f := newFixture(t, nil)
	postChat(t, f.ts.URL, `{"message":"hi"}`)

	for _, url := range []string{"/api/clear?sessionId=never-seen", "/api/clear"} {
		resp, err := http.Post(f.ts.URL+url, "application/json", nil)
		require.NoError(t, err)
		data, _ := io.ReadAll(resp.Body)
		resp.Body.Close()
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.JSONEq(t, `{"success":true}`, string(data))
	}

	n, _ := f.store.Len(context.Background(), "default")
	assert.Zero(t, n)
}

func TestAPIStudyPlan(t *testing.T) {
	f := newFixture(t, nil)

	resp, err := http.Get(f.ts.URL + "/api/study-plan")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var plan map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&plan))
	overview := plan["overview"].(map[string]any)
	assert.Equal(t, "2026-05-24", overview["examDate"])
	assert.Len(t, plan["phases"], 4)
	assert.Len(t, plan["weeklyTargets"], 16)
}

func TestAPI_ServedWithoutGateway(t *testing.T) {
	store := session.NewMemoryStore(session.MemoryOptions{}, testLog())
	api := NewAPI(chat.NewService(chat.Options{}, &llm.MockClient{}, store, nil, testLog()), testLog())

	rr := httptest.NewRecorder()
	api.Chat(rr, httptest.NewRequest(http.MethodPost, "/api/chat", strings.NewReader(`{"message":"hi"}`)))
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), `"response":"mock response"`)
}
