// Package maintenance periodically clears expired sessions and single-use
// tokens so the tables stay bounded.
package maintenance

import (
	"context"
	"log"
	"time"
)

// SessionStore is the session repository surface the sweeper uses.
type SessionStore interface {
	DeleteExpired(ctx context.Context) (int64, error)
}

// TokenStore is the token ledger surface the sweeper uses.
type TokenStore interface {
	PurgeExpired(ctx context.Context) (int64, error)
}

// Sweeper deletes expired rows on a fixed interval.
type Sweeper struct {
	sessions SessionStore
	tokens   TokenStore
	every    time.Duration
}

// NewSweeper returns a Sweeper running every interval.
func NewSweeper(sessions SessionStore, tokens TokenStore, every time.Duration) *Sweeper {
	return &Sweeper{sessions: sessions, tokens: tokens, every: every}
}

// Run sweeps once immediately and then on every tick until ctx is canceled.
func (s *Sweeper) Run(ctx context.Context) {
	s.sweep(ctx)
	ticker := time.NewTicker(s.every)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.sweep(ctx)
		}
	}
}

// sweep runs one pass. Errors are logged; one failing store does not stop the other.
func (s *Sweeper) sweep(ctx context.Context) {
	if n, err := s.sessions.DeleteExpired(ctx); err != nil {
		log.Printf("maintenance: sweep sessions: %v", err)
	} else if n > 0 {
		log.Printf("maintenance: removed %d expired sessions", n)
	}
	if n, err := s.tokens.PurgeExpired(ctx); err != nil {
		log.Printf("maintenance: sweep tokens: %v", err)
	} else if n > 0 {
		log.Printf("maintenance: removed %d expired tokens", n)
	}
}
