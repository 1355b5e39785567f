package services

import (
	"context"
	"time"

	"github.com/SscSPs/currency_swapper/internal/core/domain"
)

// QuoteSvc validates swap requests and computes quotes.
type QuoteSvc interface {
	// Validate returns *apperrors.ValidationErrors listing every violated field.
	Validate(req domain.SwapRequest) error

	// ComputeQuote converts the amount at the ratio of the two prices.
	ComputeQuote(req domain.SwapRequest) (domain.SwapResult, error)
}

// SwapSessionSvc is the form surface owned by a single client.
type SwapSessionSvc interface {
	ID() string
	View() domain.SessionView
	UpdateForm(patch domain.FormPatch) (domain.SessionView, error)
	Submit(ctx context.Context) (domain.SwapResult, error)
	Reset() (domain.SessionView, error)
}

// SessionRegistrySvc creates and looks up swap sessions.
type SessionRegistrySvc interface {
	Create() SwapSessionSvc
	Get(id string) (SwapSessionSvc, error)
	Prune(idleFor time.Duration) int
}

// Notifier receives settlement notifications.
type Notifier interface {
	Notify(ctx context.Context, n domain.Notification) error
}

// NotificationSubscriber streams a session's notifications.
type NotificationSubscriber interface {
	// Subscribe returns a channel of notifications and a function releasing it.
	Subscribe(sessionID string) (<-chan domain.Notification, func())
}
