package chat

import (
	"errors"

	"github.com/soyeahso/prelims-tutor/internal/llm"
)

// ErrEmptyMessage is returned when a chat message has no visible text.
var ErrEmptyMessage = errors.New("message is required")

// FallbackErrorMessage is reported when a provider error carries no text.
const FallbackErrorMessage = "Failed to get response from AI"

// ProviderFailure wraps an error from the completion provider. The user turn
// that triggered it stays in the session.
type ProviderFailure struct {
	SessionID string
	Err       error
}

// Error is the provider's own message, without the provider name or status
// that llm.ProviderError adds for logs.
func (f *ProviderFailure) Error() string {
	var pe *llm.ProviderError
	if errors.As(f.Err, &pe) && pe.Message != "" {
		return pe.Message
	}
	if f.Err == nil || f.Err.Error() == "" {
		return FallbackErrorMessage
	}
	return f.Err.Error()
}

func (f *ProviderFailure) Unwrap() error { return f.Err }
