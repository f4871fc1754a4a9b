package maintenance

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"
)

type countingStore struct {
	calls atomic.Int64
	fail  bool
}

func (c *countingStore) DeleteExpired(context.Context) (int64, error) {
	c.calls.Add(1)
	if c.fail {
		return 0, errors.New("db down")
	}
	return 2, nil
}

func (c *countingStore) PurgeExpired(context.Context) (int64, error) {
	c.calls.Add(1)
	if c.fail {
		return 0, errors.New("db down")
	}
	return 1, nil
}

func TestSweeperRunsImmediatelyAndOnTicks(t *testing.T) {
	sessions := &countingStore{}
	tokens := &countingStore{}
	s := NewSweeper(sessions, tokens, 10*time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		s.Run(ctx)
		close(done)
	}()

	deadline := time.After(2 * time.Second)
	for sessions.calls.Load() < 3 || tokens.calls.Load() < 3 {
		select {
		case <-deadline:
			t.Fatalf("sweeper too slow: sessions=%d tokens=%d", sessions.calls.Load(), tokens.calls.Load())
		case <-time.After(5 * time.Millisecond):
		}
	}
	cancel()
	<-done
}

func TestSweeperSurvivesStoreErrors(t *testing.T) {
	sessions := &countingStore{fail: true}
	tokens := &countingStore{}
	s := NewSweeper(sessions, tokens, time.Hour)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	s.Run(ctx)

	if sessions.calls.Load() != 1 || tokens.calls.Load() != 1 {
		t.Fatalf("both stores must be swept once: sessions=%d tokens=%d", sessions.calls.Load(), tokens.calls.Load())
	}
}
