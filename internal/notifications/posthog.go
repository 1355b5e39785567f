package notifications

import (
	"context"
	"fmt"

	"github.com/SscSPs/currency_swapper/internal/core/domain"
	portssvc "github.com/SscSPs/currency_swapper/internal/core/ports/services"
)

// SwapSettledEvent is the analytics event name for a settled swap.
const SwapSettledEvent = "swap_settled"

// EventEnqueuer is the part of the analytics client this package needs.
// utils.PosthogClientWrapper implements it.
type EventEnqueuer interface {
	Enqueue(distinctID string, event string, properties map[string]any) error
}

// PosthogNotifier captures settlements as analytics events, keyed by session.
type PosthogNotifier struct {
	client EventEnqueuer
}

// NewPosthogNotifier creates a notifier backed by client.
func NewPosthogNotifier(client EventEnqueuer) *PosthogNotifier {
	return &PosthogNotifier{client: client}
}

var _ portssvc.Notifier = (*PosthogNotifier)(nil)

func (p *PosthogNotifier) Notify(_ context.Context, n domain.Notification) error {
	err := p.client.Enqueue(n.SessionID, SwapSettledEvent, map[string]any{
		"message":          n.Message,
		"converted_amount": n.Result.ConvertedAmount.String(),
		"settled_at":       n.At,
	})
	if err != nil {
		return fmt.Errorf("failed to enqueue %s event: %w", SwapSettledEvent, err)
	}
	return nil
}
