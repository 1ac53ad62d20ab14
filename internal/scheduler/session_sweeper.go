package scheduler

import (
	"context"
	"sync"
	"time"

	"github.com/MrSnakeDoc/snooze/internal/logger"
)

// DefaultSweepInterval is used when no interval is configured
const DefaultSweepInterval = 10 * time.Minute

// Sweepable is a store that can drop its expired entries.
type Sweepable interface {
	Sweep(now time.Time) int
	Len() int
}

// SessionSweeper periodically removes expired in-memory sessions
type SessionSweeper struct {
	store    Sweepable
	logger   logger.Logger
	interval time.Duration
	now      func() time.Time

	stopOnce sync.Once
	stopCh   chan struct{}
	doneCh   chan struct{}
}

// NewSessionSweeper creates a new session sweeper
func NewSessionSweeper(store Sweepable, log logger.Logger, interval time.Duration) *SessionSweeper {
	if interval <= 0 {
		interval = DefaultSweepInterval
	}

	return &SessionSweeper{
		store:    store,
		logger:   log,
		interval: interval,
		now:      time.Now,
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
	}
}

// Start runs one sweep immediately, then one every interval until Stop
// is called or ctx is done.
func (s *SessionSweeper) Start(ctx context.Context) {
	s.Sweep()

	ticker := time.NewTicker(s.interval)
	go func() {
		defer close(s.doneCh)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				s.Sweep()
			case <-s.stopCh:
				return
			case <-ctx.Done():
				return
			}
		}
	}()
}

// Stop stops the sweeper and waits for its goroutine to exit.
// It must only be called after Start.
func (s *SessionSweeper) Stop() {
	s.stopOnce.Do(func() { close(s.stopCh) })
	<-s.doneCh
}

// Sweep drops expired sessions and returns how many went away
func (s *SessionSweeper) Sweep() int {
	dropped := s.store.Sweep(s.now())

	if dropped > 0 {
		s.logger.Info("expired sessions swept",
			logger.Int("dropped", dropped),
			logger.Int("remaining", s.store.Len()))
	} else {
		s.logger.Debug("no expired sessions to sweep")
	}

	return dropped
}
