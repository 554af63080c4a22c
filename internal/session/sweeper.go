package session

import (
	"context"
	"log"
	"time"
)

// Sweeper reconciles presence with session liveness: users marked online
// whose token has expired are flipped offline and announced as departed.
// This covers abrupt disconnects that never reach SignOff.
type Sweeper struct {
	manager  *Manager
	interval time.Duration
	stop     chan struct{}
}

// NewSweeper constructs a Sweeper.
func NewSweeper(manager *Manager, interval time.Duration) *Sweeper {
	return &Sweeper{manager: manager, interval: interval, stop: make(chan struct{})}
}

// Start launches the sweep loop.
func (s *Sweeper) Start() {
	go func() {
		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				s.Sweep(context.Background())
			case <-s.stop:
				return
			}
		}
	}()
}

// Stop halts the sweep loop.
func (s *Sweeper) Stop() {
	close(s.stop)
}

// Sweep runs one reconciliation pass. Failures are logged only; the next
// tick retries naturally.
func (s *Sweeper) Sweep(ctx context.Context) {
	live, err := s.manager.tokens.LiveUserIDs(ctx)
	if err != nil {
		log.Printf("presence sweep: live sessions lookup failed: %v", err)
		return
	}

	online, err := s.manager.users.ListOnline(ctx)
	if err != nil {
		log.Printf("presence sweep: online users lookup failed: %v", err)
		return
	}

	for _, user := range online {
		if !live[user.ID] {
			s.manager.ExpireUser(ctx, user)
		}
	}
}
