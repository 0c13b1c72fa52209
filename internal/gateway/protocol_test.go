package gateway

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRequest(t *testing.T) {
	frame, err := NewRequest("req-1", "chat.send", map[string]string{"message": "What is DPSP?"})
	require.NoError(t, err)

	assert.Equal(t, FrameTypeRequest, frame.Type)
	assert.Equal(t, "req-1", frame.ID)
	assert.Equal(t, "chat.send", frame.Method)

	var decoded map[string]string
	require.NoError(t, json.Unmarshal(frame.Params, &decoded))
	assert.Equal(t, "What is DPSP?", decoded["message"])
}

func TestNewResponse(t *testing.T) {
	frame, err := NewResponse("req-1", ClearResponse{Success: true})
	require.NoError(t, err)

	data, err := json.Marshal(frame)
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"res","id":"req-1","ok":true,"payload":{"success":true}}`, string(data))
}

func TestNewResponse_Unencodable(t *testing.T) {
	_, err := NewResponse("req-1", make(chan int))
	assert.ErrorContains(t, err, "encoding payload")
}

func TestNewErrorResponse(t *testing.T) {
	frame := NewErrorResponse("req-1", ErrorShape{
		Code:      CodeProviderError,
		Message:   "openai: 429 Rate limit reached",
		Retryable: true,
	})

	data, err := json.Marshal(frame)
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"type": "res",
		"id": "req-1",
		"ok": false,
		"error": {"code": "provider_error", "message": "openai: 429 Rate limit reached", "retryable": true}
	}`, string(data))
}

func TestNewEvent(t *testing.T) {
	frame, err := NewEvent(EventWelcome, Welcome{Protocol: ProtocolVersion, ConnID: "c-1", Methods: []string{"health"}})
	require.NoError(t, err)

	assert.Equal(t, FrameTypeEvent, frame.Type)
	assert.Equal(t, "welcome", frame.Event)

	var w Welcome
	require.NoError(t, json.Unmarshal(frame.Payload, &w))
	assert.Equal(t, "c-1", w.ConnID)
	assert.Equal(t, 1, w.Protocol)
}

func TestDecodeFrame(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr string
		wantID  string
	}{
		{"request", `{"type":"req","id":"1","method":"health"}`, "", ""},
		{"event", `{"type":"event","event":"welcome"}`, "", ""},
		{"not json", `hello`, "invalid frame", ""},
		{"missing id", `{"type":"req","method":"health"}`, "without id", ""},
		{"missing method", `{"type":"req","id":"7"}`, "without method", "7"},
		{"unknown type", `{"type":"ping","id":"8"}`, `unknown frame type "ping"`, "8"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DecodeFrame([]byte(tt.input))
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.ErrorContains(t, err, tt.wantErr)
			fe, ok := asFrameError(err)
			require.True(t, ok)
			assert.Equal(t, tt.wantID, fe.ID)
		})
	}
}
