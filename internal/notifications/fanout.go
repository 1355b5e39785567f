package notifications

import (
	"context"
	"errors"

	"github.com/SscSPs/currency_swapper/internal/core/domain"
	portssvc "github.com/SscSPs/currency_swapper/internal/core/ports/services"
)

// Fanout delivers every notification to all of its sinks, in order. A failing
// sink does not stop delivery to the rest; all errors are returned joined.
type Fanout []portssvc.Notifier

var _ portssvc.Notifier = Fanout(nil)

// NewFanout drops nil sinks.
func NewFanout(sinks ...portssvc.Notifier) Fanout {
	out := make(Fanout, 0, len(sinks))
	for _, s := range sinks {
		if s != nil {
			out = append(out, s)
		}
	}
	return out
}

func (f Fanout) Notify(ctx context.Context, n domain.Notification) error {
	var errs []error
	for _, sink := range f {
		if err := sink.Notify(ctx, n); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
