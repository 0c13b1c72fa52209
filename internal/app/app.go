// Package app assembles the chat service from a Config. The gateway, the
// serverless handler and the CLI all start from here.
package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/soyeahso/prelims-tutor/internal/chat"
	"github.com/soyeahso/prelims-tutor/internal/config"
	"github.com/soyeahso/prelims-tutor/internal/llm"
	"github.com/soyeahso/prelims-tutor/internal/logging"
	"github.com/soyeahso/prelims-tutor/internal/session"
	"github.com/soyeahso/prelims-tutor/internal/studyplan"
)

// App holds the wired components. Close releases them.
type App struct {
	Config  config.Config
	Service *chat.Service
	Store   session.Store
	Plans   *studyplan.Loader
	Client  llm.Client
}

// Build validates cfg and constructs the provider client, session store,
// study plan loader and chat service.
func Build(ctx context.Context, cfg config.Config, log *logging.Logger) (*App, error) {
	if issues := config.Validate(&cfg); len(issues) > 0 {
		for _, issue := range issues {
			log.Error().Str("path", issue.Path).Msg(issue.Message)
		}
		return nil, &config.ConfigError{
			Message: fmt.Sprintf("config validation failed with %d issue(s)", len(issues)),
		}
	}

	opts, err := chat.OptionsFromConfig(&cfg)
	if err != nil {
		return nil, err
	}

	client, err := llm.NewFromConfig(cfg.Provider)
	if err != nil {
		return nil, err
	}

	plans, err := studyplan.NewLoader(cfg.StudyPlan.Path, log)
	if err != nil {
		return nil, fmt.Errorf("loading study plan: %w", err)
	}

	store, err := session.NewStore(ctx, cfg.Session, log)
	if err != nil {
		plans.Close()
		return nil, err
	}

	log.Info().
		Str("provider", client.Name()).
		Str("model", opts.Model).
		Str("store", cfg.Session.Store).
		Msg("chat service configured")

	return &App{
		Config:  cfg,
		Service: chat.NewService(opts, client, store, plans, log),
		Store:   store,
		Plans:   plans,
		Client:  client,
	}, nil
}

// Close stops the plan watcher and closes the session store.
func (a *App) Close() error {
	return errors.Join(a.Plans.Close(), a.Store.Close())
}
