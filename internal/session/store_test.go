package session

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/soyeahso/prelims-tutor/internal/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func silentLog() *logging.Logger {
	return logging.New(nil, "silent")
}

// storeFactory returns a fresh store with the given turn cap.
type storeFactory func(t *testing.T, maxTurns int) Store

// runStoreSuite checks the behavior every Store must share.
func runStoreSuite(t *testing.T, newStore storeFactory) {
	ctx := context.Background()

	t.Run("append and recent keep order", func(t *testing.T) {
		s := newStore(t, 0)
		for i := 0; i < 5; i++ {
			require.NoError(t, s.Append(ctx, "a", NewTurn(RoleUser, fmt.Sprintf("m%d", i))))
		}

		turns, err := s.Recent(ctx, "a", 3)
		require.NoError(t, err)
		require.Len(t, turns, 3)
		assert.Equal(t, "m2", turns[0].Content)
		assert.Equal(t, "m4", turns[2].Content)

		all, err := s.Recent(ctx, "a", 0)
		require.NoError(t, err)
		assert.Len(t, all, 5)
	})

	t.Run("recent on short session returns fewer", func(t *testing.T) {
		s := newStore(t, 0)
		require.NoError(t, s.Append(ctx, "a", NewTurn(RoleUser, "only")))

		turns, err := s.Recent(ctx, "a", 30)
		require.NoError(t, err)
		require.Len(t, turns, 1)
		assert.Equal(t, RoleUser, turns[0].Role)
		assert.False(t, turns[0].Timestamp.IsZero())
	})

	t.Run("unknown session is empty", func(t *testing.T) {
		s := newStore(t, 0)
		turns, err := s.Recent(ctx, "nobody", 30)
		require.NoError(t, err)
		assert.Empty(t, turns)

		n, err := s.Len(ctx, "nobody")
		require.NoError(t, err)
		assert.Zero(t, n)
	})

	t.Run("sessions are isolated", func(t *testing.T) {
		s := newStore(t, 0)
		require.NoError(t, s.Append(ctx, "a", NewTurn(RoleUser, "for a")))
		require.NoError(t, s.Append(ctx, "b", NewTurn(RoleUser, "for b")))

		turns, err := s.Recent(ctx, "b", 30)
		require.NoError(t, err)
		require.Len(t, turns, 1)
		assert.Equal(t, "for b", turns[0].Content)
	})

	t.Run("clear removes history and is idempotent", func(t *testing.T) {
		s := newStore(t, 0)
		require.NoError(t, s.Append(ctx, "a", NewTurn(RoleUser, "x")))
		require.NoError(t, s.Append(ctx, "b", NewTurn(RoleUser, "y")))

		require.NoError(t, s.Clear(ctx, "a"))
		require.NoError(t, s.Clear(ctx, "a"))
		require.NoError(t, s.Clear(ctx, "never-existed"))

		n, err := s.Len(ctx, "a")
		require.NoError(t, err)
		assert.Zero(t, n)

		n, err = s.Len(ctx, "b")
		require.NoError(t, err)
		assert.Equal(t, 1, n)
	})

	t.Run("max turns drops the oldest", func(t *testing.T) {
		s := newStore(t, 4)
		for i := 0; i < 7; i++ {
			require.NoError(t, s.Append(ctx, "a", NewTurn(RoleUser, fmt.Sprintf("m%d", i))))
		}

		turns, err := s.Recent(ctx, "a", 0)
		require.NoError(t, err)
		require.Len(t, turns, 4)
		assert.Equal(t, "m3", turns[0].Content)
		assert.Equal(t, "m6", turns[3].Content)
	})

	t.Run("concurrent appends are all kept", func(t *testing.T) {
		s := newStore(t, 0)
		var wg sync.WaitGroup
		for i := 0; i < 20; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				assert.NoError(t, s.Append(ctx, "a", NewTurn(RoleUser, fmt.Sprintf("m%d", i))))
			}(i)
		}
		wg.Wait()

		n, err := s.Len(ctx, "a")
		require.NoError(t, err)
		assert.Equal(t, 20, n)
	})
}
