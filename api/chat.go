// Package handler exposes the chat API as a single serverless function.
// The platform routes /api/chat, /api/clear and /api/study-plan here and
// owns the listen socket.
package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"

	"github.com/soyeahso/prelims-tutor/internal/app"
	"github.com/soyeahso/prelims-tutor/internal/config"
	"github.com/soyeahso/prelims-tutor/internal/gateway"
	"github.com/soyeahso/prelims-tutor/internal/logging"
)

// built once per cold start
var (
	once    sync.Once
	handler http.Handler
)

// Handler serves one invocation.
func Handler(w http.ResponseWriter, r *http.Request) {
	once.Do(func() {
		cfg := config.FromEnv()
		handler = newHandler(cfg, logging.NewWithStyle(logging.StyleJSON, cfg.Logging.Level))
	})
	handler.ServeHTTP(w, r)
}

// newHandler wires the API routes for cfg. A wiring failure yields a
// handler that answers every request with a 500.
func newHandler(cfg config.Config, log *logging.Logger) http.Handler {
	a, err := app.Build(context.Background(), cfg, log)
	if err != nil {
		log.Error().Err(err).Msg("serverless init failed")
		return initFailure(err)
	}

	mux := http.NewServeMux()
	gateway.NewAPI(a.Service, log).Register(mux)
	return mux
}

func initFailure(err error) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		json.NewEncoder(w).Encode(gateway.ErrorResponse{Error: err.Error()})
	})
}
