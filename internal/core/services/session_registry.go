package services

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/SscSPs/currency_swapper/internal/apperrors"
	portssvc "github.com/SscSPs/currency_swapper/internal/core/ports/services"
	"github.com/SscSPs/currency_swapper/internal/platform/metrics"
	"github.com/google/uuid"
)

type sessionConfig struct {
	catalog  portssvc.CatalogReaderSvc
	quotes   portssvc.QuoteSvc
	notifier portssvc.Notifier
	logger   *slog.Logger
	metrics  *metrics.Metrics
	delay    time.Duration
	now      func() time.Time
}

// SessionOption is a functional option shared by every session a registry creates
type SessionOption func(*sessionConfig)

// WithSettlementDelay overrides DefaultSettlementDelay
func WithSettlementDelay(d time.Duration) SessionOption {
	return func(c *sessionConfig) {
		c.delay = d
	}
}

// WithNotifier sets the sink for settlement notifications
func WithNotifier(n portssvc.Notifier) SessionOption {
	return func(c *sessionConfig) {
		c.notifier = n
	}
}

// WithSessionLogger sets the logger used outside of request scope
func WithSessionLogger(logger *slog.Logger) SessionOption {
	return func(c *sessionConfig) {
		c.logger = logger
	}
}

// WithSessionMetrics records submission outcomes
func WithSessionMetrics(m *metrics.Metrics) SessionOption {
	return func(c *sessionConfig) {
		c.metrics = m
	}
}

// WithSessionClock overrides the clock used for timestamps and idle tracking
func WithSessionClock(now func() time.Time) SessionOption {
	return func(c *sessionConfig) {
		c.now = now
	}
}

// SessionRegistry keeps the swap sessions of all connected clients in memory.
type SessionRegistry struct {
	cfg *sessionConfig

	mu       sync.RWMutex
	sessions map[string]*swapSession
}

// NewSessionRegistry creates an empty registry whose sessions price swaps
// from catalog and compute them with quotes.
func NewSessionRegistry(catalog portssvc.CatalogReaderSvc, quotes portssvc.QuoteSvc, options ...SessionOption) *SessionRegistry {
	cfg := &sessionConfig{
		catalog: catalog,
		quotes:  quotes,
		delay:   DefaultSettlementDelay,
		now:     time.Now,
	}
	for _, option := range options {
		option(cfg)
	}
	if cfg.logger == nil {
		cfg.logger = slog.Default()
	}
	return &SessionRegistry{
		cfg:      cfg,
		sessions: make(map[string]*swapSession),
	}
}

var _ portssvc.SessionRegistrySvc = (*SessionRegistry)(nil)

// Create starts a new idle session.
func (r *SessionRegistry) Create() portssvc.SwapSessionSvc {
	s := newSwapSession(uuid.NewString(), r.cfg)

	r.mu.Lock()
	r.sessions[s.id] = s
	r.mu.Unlock()

	r.cfg.logger.Debug("Swap session created", slog.String("session_id", s.id))
	return s
}

// Get returns the session with the given ID.
func (r *SessionRegistry) Get(id string) (portssvc.SwapSessionSvc, error) {
	r.mu.RLock()
	s, ok := r.sessions[id]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("swap session %s: %w", id, apperrors.ErrNotFound)
	}
	return s, nil
}

// Len returns the number of live sessions.
func (r *SessionRegistry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}

// Prune evicts sessions unused for at least idleFor. Processing sessions are kept.
func (r *SessionRegistry) Prune(idleFor time.Duration) int {
	cutoff := r.cfg.now().Add(-idleFor)

	r.mu.Lock()
	defer r.mu.Unlock()
	evicted := 0
	for id, s := range r.sessions {
		lastActive, evictable := s.idleSince()
		if evictable && !lastActive.After(cutoff) {
			delete(r.sessions, id)
			evicted++
		}
	}
	return evicted
}

// RunJanitor prunes sessions idle for ttl every interval until ctx is done.
// A non-positive interval disables the janitor.
func (r *SessionRegistry) RunJanitor(ctx context.Context, interval, ttl time.Duration) {
	if interval <= 0 {
		r.cfg.logger.Warn("Session janitor disabled, interval must be positive", slog.Duration("interval", interval))
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := r.Prune(ttl); n > 0 {
				r.cfg.logger.Info("Evicted idle swap sessions",
					slog.Int("evicted", n),
					slog.Int("remaining", r.Len()))
			}
		}
	}
}
