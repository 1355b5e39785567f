package notifications

import (
	"context"
	"log/slog"
	"sync"

	"github.com/SscSPs/currency_swapper/internal/core/domain"
	portssvc "github.com/SscSPs/currency_swapper/internal/core/ports/services"
)

// subscriberBuffer is the number of undelivered notifications kept per subscriber.
const subscriberBuffer = 8

// Hub fans settlement notifications out to the subscribers of each session.
// Delivery never blocks: a subscriber that is not keeping up loses events.
type Hub struct {
	logger *slog.Logger

	mu     sync.RWMutex
	nextID uint64
	subs   map[string]map[uint64]chan domain.Notification
}

// NewHub creates an empty hub.
func NewHub(logger *slog.Logger) *Hub {
	if logger == nil {
		logger = slog.Default()
	}
	return &Hub{
		logger: logger,
		subs:   make(map[string]map[uint64]chan domain.Notification),
	}
}

var (
	_ portssvc.Notifier               = (*Hub)(nil)
	_ portssvc.NotificationSubscriber = (*Hub)(nil)
)

// Subscribe registers interest in sessionID. The returned function must be
// called to release the subscription; it closes the channel.
func (h *Hub) Subscribe(sessionID string) (<-chan domain.Notification, func()) {
	ch := make(chan domain.Notification, subscriberBuffer)

	h.mu.Lock()
	h.nextID++
	id := h.nextID
	if h.subs[sessionID] == nil {
		h.subs[sessionID] = make(map[uint64]chan domain.Notification)
	}
	h.subs[sessionID][id] = ch
	h.mu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			h.mu.Lock()
			defer h.mu.Unlock()
			delete(h.subs[sessionID], id)
			if len(h.subs[sessionID]) == 0 {
				delete(h.subs, sessionID)
			}
			close(ch)
		})
	}
}

// Notify delivers n to every current subscriber of its session.
func (h *Hub) Notify(_ context.Context, n domain.Notification) error {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, ch := range h.subs[n.SessionID] {
		select {
		case ch <- n:
		default:
			h.logger.Warn("Dropping notification for slow subscriber", slog.String("session_id", n.SessionID))
		}
	}
	return nil
}

// Subscribers returns the number of open subscriptions for sessionID.
func (h *Hub) Subscribers(sessionID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs[sessionID])
}
