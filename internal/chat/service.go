// Package chat is the single chat operation shared by every transport.
//
// A call appends the user turn, sends the system prompt plus the most recent
// window of turns to the provider, and appends the reply. Calls on the same
// session run one at a time so the stored order matches arrival order.
package chat

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/soyeahso/prelims-tutor/internal/config"
	"github.com/soyeahso/prelims-tutor/internal/llm"
	"github.com/soyeahso/prelims-tutor/internal/logging"
	"github.com/soyeahso/prelims-tutor/internal/session"
	"github.com/soyeahso/prelims-tutor/internal/studyplan"
)

// Options tunes each provider call.
type Options struct {
	Model        string
	SystemPrompt string
	MaxTokens    int
	Temperature  *float64      // nil takes the default
	Window       int           // turns sent per call
	Timeout      time.Duration // 0 means no limit
}

// OptionsFromConfig builds Options, reading the prompt override if set.
func OptionsFromConfig(cfg *config.Config) (Options, error) {
	prompt, err := LoadSystemPrompt(cfg.Provider.SystemPromptFile)
	if err != nil {
		return Options{}, err
	}
	return Options{
		Model:        cfg.Provider.Model,
		SystemPrompt: prompt,
		MaxTokens:    cfg.Provider.MaxTokens,
		Temperature:  llm.Float(cfg.Provider.Temperature),
		Window:       cfg.Session.Window,
		Timeout:      time.Duration(cfg.Provider.TimeoutSeconds) * time.Second,
	}, nil
}

// Request is an inbound chat message.
type Request struct {
	Message   string `json:"message"`
	SessionID string `json:"sessionId,omitempty"`
}

// Response is the assistant reply. Model is the configured model id.
type Response struct {
	Response string    `json:"response"`
	Model    string    `json:"model"`
	Usage    llm.Usage `json:"usage"`
}

// PlanSource supplies the study plan currently in effect.
type PlanSource interface {
	Current() *studyplan.Plan
}

// Service runs chat turns against a provider and a session store.
type Service struct {
	opts   Options
	client llm.Client
	store  session.Store
	plans  PlanSource
	locks  *keyedMutex
	log    *logging.Logger
}

// NewService creates a chat service. Unset options take the defaults.
func NewService(opts Options, client llm.Client, store session.Store, plans PlanSource, log *logging.Logger) *Service {
	if opts.Model == "" {
		opts.Model = config.DefaultModel
	}
	if opts.SystemPrompt == "" {
		opts.SystemPrompt = DefaultSystemPrompt
	}
	if opts.MaxTokens <= 0 {
		opts.MaxTokens = config.DefaultMaxTokens
	}
	if opts.Temperature == nil {
		opts.Temperature = llm.Float(config.DefaultTemperature)
	}
	if opts.Window <= 0 {
		opts.Window = config.DefaultWindow
	}
	return &Service{
		opts:   opts,
		client: client,
		store:  store,
		plans:  plans,
		locks:  newKeyedMutex(),
		log:    log.Sub("chat"),
	}
}

// Model returns the configured model id.
func (s *Service) Model() string { return s.opts.Model }

// Chat records the message, asks the provider for a reply, and records it.
// A provider error comes back as *ProviderFailure with the user turn kept.
func (s *Service) Chat(ctx context.Context, req Request) (*Response, error) {
	if strings.TrimSpace(req.Message) == "" {
		return nil, ErrEmptyMessage
	}
	id := sessionKey(req.SessionID)

	unlock := s.locks.Lock(id)
	defer unlock()
	if p, ok := s.store.(session.Pinner); ok {
		defer p.Pin(id)()
	}

	if err := s.store.Append(ctx, id, session.NewTurn(session.RoleUser, req.Message)); err != nil {
		return nil, fmt.Errorf("recording user turn: %w", err)
	}
	recent, err := s.store.Recent(ctx, id, s.opts.Window)
	if err != nil {
		return nil, fmt.Errorf("loading history: %w", err)
	}

	// the reply is still recorded if the caller goes away mid-call
	detached := context.WithoutCancel(ctx)
	callCtx := detached
	if s.opts.Timeout > 0 {
		var cancel context.CancelFunc
		callCtx, cancel = context.WithTimeout(detached, s.opts.Timeout)
		defer cancel()
	}

	start := time.Now()
	resp, err := s.client.Complete(callCtx, llm.CompletionRequest{
		Model:       s.opts.Model,
		System:      s.opts.SystemPrompt,
		Messages:    toMessages(recent),
		MaxTokens:   s.opts.MaxTokens,
		Temperature: llm.Float(*s.opts.Temperature),
	})
	if err != nil {
		s.log.Error().Err(err).
			Str("sessionId", id).
			Str("provider", s.client.Name()).
			Dur("duration", time.Since(start)).
			Msg("completion failed")
		return nil, &ProviderFailure{SessionID: id, Err: err}
	}

	if err := s.store.Append(detached, id, session.NewTurn(session.RoleAssistant, resp.Content)); err != nil {
		return nil, fmt.Errorf("recording reply: %w", err)
	}

	s.log.Info().
		Str("sessionId", id).
		Str("model", s.opts.Model).
		Int("contextTurns", len(recent)).
		Int("promptTokens", resp.Usage.PromptTokens).
		Int("completionTokens", resp.Usage.CompletionTokens).
		Dur("duration", time.Since(start)).
		Msg("chat completed")

	return &Response{
		Response: resp.Content,
		Model:    s.opts.Model,
		Usage:    resp.Usage,
	}, nil
}

// Clear drops a session's history. Unknown sessions are not an error.
func (s *Service) Clear(ctx context.Context, sessionID string) error {
	id := sessionKey(sessionID)
	unlock := s.locks.Lock(id)
	defer unlock()

	if err := s.store.Clear(ctx, id); err != nil {
		return fmt.Errorf("clearing session: %w", err)
	}
	s.log.Debug().Str("sessionId", id).Msg("session cleared")
	return nil
}

// StudyPlan returns the study plan in effect.
func (s *Service) StudyPlan() *studyplan.Plan {
	if s.plans == nil {
		return studyplan.Default()
	}
	return s.plans.Current()
}

func sessionKey(id string) string {
	if id == "" {
		return session.DefaultID
	}
	return id
}

func toMessages(turns []session.Turn) []llm.Message {
	msgs := make([]llm.Message, 0, len(turns))
	for _, t := range turns {
		msgs = append(msgs, llm.Message{Role: t.Role, Content: t.Content})
	}
	return msgs
}
