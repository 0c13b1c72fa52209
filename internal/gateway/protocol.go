package gateway

import (
	"encoding/json"
	"errors"
	"fmt"
)

// ProtocolVersion is announced in the welcome event.
const ProtocolVersion = 1

// Frame types.
const (
	FrameTypeRequest  = "req"
	FrameTypeResponse = "res"
	FrameTypeEvent    = "event"
)

// Error codes carried in ErrorShape.Code.
const (
	CodeInvalidFrame   = "invalid_frame"
	CodeInvalidParams  = "invalid_params"
	CodeMethodNotFound = "method_not_found"
	CodeProviderError  = "provider_error"
	CodeInternal       = "internal_error"
)

// EventWelcome is sent once, right after the socket is upgraded.
const EventWelcome = "welcome"

// Frame is the envelope for every WebSocket message. A request frame gets
// exactly one response frame with the same ID; replies are never split.
type Frame struct {
	Type string `json:"type"`
	ID   string `json:"id,omitempty"`

	// req
	Method string          `json:"method,omitempty"`
	Params json.RawMessage `json:"params,omitempty"`

	// res
	OK      *bool           `json:"ok,omitempty"`
	Payload json.RawMessage `json:"payload,omitempty"`
	Error   *ErrorShape     `json:"error,omitempty"`

	// event (uses Payload)
	Event string `json:"event,omitempty"`
}

// ErrorShape is the error body of a failed response. Retryable marks
// failures where sending the same request again may succeed.
type ErrorShape struct {
	Code      string `json:"code"`
	Message   string `json:"message"`
	Retryable bool   `json:"retryable,omitempty"`
}

// Welcome is the payload of the welcome event.
type Welcome struct {
	Protocol int      `json:"protocol"`
	Version  string   `json:"version"`
	ConnID   string   `json:"connId"`
	Model    string   `json:"model"`
	Methods  []string `json:"methods"`
}

// FrameError reports an inbound message that is not a usable frame. ID is
// set when the message carried one, so the error can be answered.
type FrameError struct {
	ID  string
	Msg string
}

func (e *FrameError) Error() string { return "invalid frame: " + e.Msg }

// DecodeFrame parses one inbound message. Request frames must carry an id
// and a method.
func DecodeFrame(data []byte) (Frame, error) {
	var f Frame
	if err := json.Unmarshal(data, &f); err != nil {
		return Frame{}, &FrameError{Msg: err.Error()}
	}
	switch f.Type {
	case FrameTypeRequest:
		if f.ID == "" {
			return f, &FrameError{Msg: "request frame without id"}
		}
		if f.Method == "" {
			return f, &FrameError{ID: f.ID, Msg: "request frame without method"}
		}
	case FrameTypeResponse, FrameTypeEvent:
	default:
		return f, &FrameError{ID: f.ID, Msg: fmt.Sprintf("unknown frame type %q", f.Type)}
	}
	return f, nil
}

func marshalPayload(v any) (json.RawMessage, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encoding payload: %w", err)
	}
	return raw, nil
}

// NewRequest creates a request frame.
func NewRequest(id, method string, params any) (Frame, error) {
	raw, err := marshalPayload(params)
	if err != nil {
		return Frame{}, err
	}
	return Frame{Type: FrameTypeRequest, ID: id, Method: method, Params: raw}, nil
}

// NewResponse creates a success response frame.
func NewResponse(id string, payload any) (Frame, error) {
	raw, err := marshalPayload(payload)
	if err != nil {
		return Frame{}, err
	}
	ok := true
	return Frame{Type: FrameTypeResponse, ID: id, OK: &ok, Payload: raw}, nil
}

// NewErrorResponse creates a failed response frame.
func NewErrorResponse(id string, shape ErrorShape) Frame {
	ok := false
	return Frame{Type: FrameTypeResponse, ID: id, OK: &ok, Error: &shape}
}

// NewEvent creates an event frame.
func NewEvent(event string, payload any) (Frame, error) {
	raw, err := marshalPayload(payload)
	if err != nil {
		return Frame{}, err
	}
	return Frame{Type: FrameTypeEvent, Event: event, Payload: raw}, nil
}

// asFrameError unwraps a FrameError.
func asFrameError(err error) (*FrameError, bool) {
	var fe *FrameError
	ok := errors.As(err, &fe)
	return fe, ok
}
