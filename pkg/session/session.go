// Package session manages the lifecycle of a user-data stream session: it
// obtains the listen key, keeps it alive on a timer, and closes it on
// shutdown. The websocket consumer stays separate; a session only drives the
// REST side of the contract.
package session

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"nakula/pkg/client"
	"nakula/pkg/core"
)

// State represents the lifecycle state of a Session.
type State int

const (
	// StateNew indicates a session that has not been started yet.
	StateNew State = iota
	// StateActive indicates a session holding a live listen key.
	StateActive
	// StateClosed indicates a session that has been shut down.
	StateClosed
)

// String returns the string representation of the State.
func (s State) String() string {
	return [...]string{"NEW", "ACTIVE", "CLOSED"}[s]
}

// DefaultKeepAliveInterval is how often the listen key is refreshed. The
// server expires a key after sixty minutes without a keep-alive, so half that
// leaves room for one missed tick.
const DefaultKeepAliveInterval = 30 * time.Minute

// Session owns one listen key. It is safe for concurrent use.
type Session struct {
	mu        sync.RWMutex
	client    *client.UserDataClient
	listenKey string
	interval  time.Duration
	logger    zerolog.Logger
	state     State
	startedAt time.Time

	cancel context.CancelFunc
	done   chan struct{}
}

// Option configures optional session behavior.
type Option func(*Session)

// WithLogger sets the session logger.
func WithLogger(logger zerolog.Logger) Option {
	return func(s *Session) {
		s.logger = logger
	}
}

// WithKeepAliveInterval overrides the refresh cadence.
func WithKeepAliveInterval(interval time.Duration) Option {
	return func(s *Session) {
		s.interval = interval
	}
}

// New creates a session over the given user-data client. The session does not
// touch the network until Start.
func New(c *client.UserDataClient, opts ...Option) *Session {
	s := &Session{
		client:   c,
		interval: DefaultKeepAliveInterval,
		logger:   zerolog.Nop(),
		state:    StateNew,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start obtains a listen key and launches the keep-alive loop. It returns the
// key so the caller can open the matching stream channel.
func (s *Session) Start(ctx context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StateNew {
		return "", core.NewConfigError("session already started")
	}

	var lk core.ListenKey
	if err := s.client.StartStream().JSON(ctx, &lk); err != nil {
		return "", err
	}

	loopCtx, cancel := context.WithCancel(context.Background())
	s.listenKey = lk.ListenKey
	s.state = StateActive
	s.startedAt = time.Now()
	s.cancel = cancel
	s.done = make(chan struct{})

	go s.keepAliveLoop(loopCtx, lk.ListenKey)

	s.logger.Info().Msg("user data session started")
	return lk.ListenKey, nil
}

func (s *Session) keepAliveLoop(ctx context.Context, listenKey string) {
	defer close(s.done)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if _, err := s.client.KeepAlive(listenKey).Text(ctx); err != nil {
				// The next tick retries; the server allows a full hour
				// between refreshes.
				s.logger.Warn().Err(err).Msg("listen key keep-alive failed")
				continue
			}
			s.logger.Debug().Msg("listen key refreshed")
		case <-ctx.Done():
			return
		}
	}
}

// ListenKey returns the active listen key, or "" when the session is not
// active.
func (s *Session) ListenKey() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.listenKey
}

// State returns the current lifecycle state of the session.
func (s *Session) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// StartedAt returns when the session became active.
func (s *Session) StartedAt() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.startedAt
}

// Close stops the keep-alive loop and invalidates the listen key server-side.
// Safe to call more than once.
func (s *Session) Close(ctx context.Context) error {
	s.mu.Lock()
	if s.state != StateActive {
		s.mu.Unlock()
		return nil
	}
	s.state = StateClosed
	listenKey := s.listenKey
	s.cancel()
	done := s.done
	s.mu.Unlock()

	<-done

	_, err := s.client.CloseStream(listenKey).Text(ctx)
	if err != nil {
		s.logger.Warn().Err(err).Msg("listen key close failed")
		return err
	}
	s.logger.Info().Msg("user data session closed")
	return nil
}
