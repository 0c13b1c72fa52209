package session

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/soyeahso/prelims-tutor/internal/config"
	"github.com/soyeahso/prelims-tutor/internal/logging"
)

// NewStore builds the store selected by cfg.Store. The redis store is pinged
// before it is returned.
func NewStore(ctx context.Context, cfg config.SessionConfig, log *logging.Logger) (Store, error) {
	idle := time.Duration(cfg.IdleMinutes) * time.Minute

	switch cfg.Store {
	case config.StoreMemory, "":
		s := NewMemoryStore(MemoryOptions{
			MaxSessions: cfg.MaxSessions,
			MaxTurns:    cfg.MaxTurns,
			IdleTimeout: idle,
		}, log)
		if err := s.Start(); err != nil {
			return nil, fmt.Errorf("starting idle sweep: %w", err)
		}
		return s, nil

	case config.StoreRedis:
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		if err := client.Ping(pingCtx).Err(); err != nil {
			client.Close()
			return nil, fmt.Errorf("connecting to redis at %s: %w", cfg.Redis.Addr, err)
		}
		log.Sub("session.redis").Info().Str("addr", cfg.Redis.Addr).Msg("redis store ready")
		return NewRedisStore(client, idle, cfg.MaxTurns), nil

	case config.StoreSQLite:
		return OpenSQLite(cfg.SQLite.Path, cfg.MaxTurns, log)

	default:
		return nil, &config.ConfigError{Message: fmt.Sprintf("unknown session store %q", cfg.Store)}
	}
}
