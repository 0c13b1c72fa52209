package session

import (
	"context"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/soyeahso/prelims-tutor/internal/logging"
)

// MemoryOptions bounds the growth of a MemoryStore. Zero values disable the
// corresponding limit.
type MemoryOptions struct {
	MaxSessions int           // least-recently-updated session is evicted past this
	MaxTurns    int           // oldest turns are dropped past this
	IdleTimeout time.Duration // sessions untouched this long are swept
}

type memSession struct {
	turns     []Turn
	updatedAt time.Time
}

// MemoryStore is an in-process Store. History lives as long as the process.
type MemoryStore struct {
	mu       sync.RWMutex
	sessions map[string]*memSession
	pinned   map[string]int
	opts     MemoryOptions
	log      *logging.Logger
	now      func() time.Time

	cron *cron.Cron
}

// NewMemoryStore creates an empty in-memory store. Call Start to enable the
// idle sweep.
func NewMemoryStore(opts MemoryOptions, log *logging.Logger) *MemoryStore {
	return &MemoryStore{
		sessions: make(map[string]*memSession),
		pinned:   make(map[string]int),
		opts:     opts,
		log:      log.Sub("session.memory"),
		now:      time.Now,
	}
}

// Start schedules the idle sweep once a minute. It is a no-op when
// IdleTimeout is zero or the sweep is already running.
func (s *MemoryStore) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.opts.IdleTimeout <= 0 || s.cron != nil {
		return nil
	}

	c := cron.New()
	if _, err := c.AddFunc("@every 1m", func() { s.Sweep() }); err != nil {
		return err
	}
	c.Start()
	s.cron = c
	s.log.Debug().Dur("idleTimeout", s.opts.IdleTimeout).Msg("idle sweep scheduled")
	return nil
}

// Pin keeps id out of capacity eviction and the idle sweep until the
// returned func is called. Pins nest.
func (s *MemoryStore) Pin(id string) (unpin func()) {
	s.mu.Lock()
	s.pinned[id]++
	s.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			if s.pinned[id]--; s.pinned[id] <= 0 {
				delete(s.pinned, id)
			}
			s.mu.Unlock()
		})
	}
}

func (s *MemoryStore) Append(_ context.Context, id string, turn Turn) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[id]
	if !ok {
		if s.opts.MaxSessions > 0 && len(s.sessions) >= s.opts.MaxSessions {
			s.evictOldestLocked()
		}
		sess = &memSession{}
		s.sessions[id] = sess
	}

	sess.turns = append(sess.turns, turn)
	if limit := s.opts.MaxTurns; limit > 0 && len(sess.turns) > limit {
		// copy so the dropped prefix can be collected
		sess.turns = append([]Turn(nil), sess.turns[len(sess.turns)-limit:]...)
	}
	sess.updatedAt = s.now()
	return nil
}

func (s *MemoryStore) Recent(_ context.Context, id string, n int) ([]Turn, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, ok := s.sessions[id]
	if !ok {
		return nil, nil
	}
	turns := sess.turns
	if n > 0 && len(turns) > n {
		turns = turns[len(turns)-n:]
	}
	return append([]Turn(nil), turns...), nil
}

func (s *MemoryStore) Len(_ context.Context, id string) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if sess, ok := s.sessions[id]; ok {
		return len(sess.turns), nil
	}
	return 0, nil
}

func (s *MemoryStore) Clear(_ context.Context, id string) error {
	s.mu.Lock()
	delete(s.sessions, id)
	s.mu.Unlock()
	return nil
}

// Count returns the number of live sessions.
func (s *MemoryStore) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

// Sweep removes sessions idle longer than IdleTimeout and returns how many
// were removed.
func (s *MemoryStore) Sweep() int {
	if s.opts.IdleTimeout <= 0 {
		return 0
	}
	cutoff := s.now().Add(-s.opts.IdleTimeout)

	s.mu.Lock()
	removed := 0
	for id, sess := range s.sessions {
		if sess.updatedAt.Before(cutoff) && s.pinned[id] == 0 {
			delete(s.sessions, id)
			removed++
		}
	}
	s.mu.Unlock()

	if removed > 0 {
		s.log.Info().Int("removed", removed).Msg("swept idle sessions")
	}
	return removed
}

// Close stops the idle sweep and waits for a running sweep to finish.
func (s *MemoryStore) Close() error {
	s.mu.Lock()
	c := s.cron
	s.cron = nil
	s.mu.Unlock()

	if c != nil {
		<-c.Stop().Done()
	}
	return nil
}

// evictOldestLocked drops the least-recently-updated unpinned session. When
// every session is pinned the store runs over capacity until one is released.
func (s *MemoryStore) evictOldestLocked() {
	var oldestID string
	var oldest time.Time
	for id, sess := range s.sessions {
		if s.pinned[id] > 0 {
			continue
		}
		if oldestID == "" || sess.updatedAt.Before(oldest) {
			oldestID, oldest = id, sess.updatedAt
		}
	}
	if oldestID != "" {
		delete(s.sessions, oldestID)
		s.log.Debug().Str("sessionId", oldestID).Msg("evicted session at capacity")
	}
}
