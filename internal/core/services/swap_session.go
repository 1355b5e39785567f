package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/SscSPs/currency_swapper/internal/apperrors"
	"github.com/SscSPs/currency_swapper/internal/core/domain"
	portssvc "github.com/SscSPs/currency_swapper/internal/core/ports/services"
	"github.com/SscSPs/currency_swapper/internal/platform/metrics"
	"github.com/shopspring/decimal"
)

// DefaultSettlementDelay is how long a swap stays in processing before it settles.
const DefaultSettlementDelay = time.Second

// swapSession implements the SwapSessionSvc interface. All fields below mu
// are guarded by it; the settlement goroutine is the only writer while the
// session is processing.
type swapSession struct {
	BaseService
	id       string
	catalog  portssvc.CatalogReaderSvc
	quotes   portssvc.QuoteSvc
	notifier portssvc.Notifier
	delay    time.Duration
	now      func() time.Time

	mu         sync.Mutex
	state      domain.SwapState
	form       domain.SwapForm
	result     *domain.SwapResult
	fieldErrs  []apperrors.FieldError
	updatedAt  time.Time
	lastActive time.Time
}

type settleOutcome struct {
	result domain.SwapResult
	err    error
}

func newSwapSession(id string, cfg *sessionConfig) *swapSession {
	now := cfg.now()
	return &swapSession{
		BaseService: BaseService{Logger: cfg.logger, Metrics: cfg.metrics},
		id:          id,
		catalog:     cfg.catalog,
		quotes:      cfg.quotes,
		notifier:    cfg.notifier,
		delay:       cfg.delay,
		now:         cfg.now,
		state:       domain.SwapIdle,
		updatedAt:   now,
		lastActive:  now,
	}
}

var _ portssvc.SwapSessionSvc = (*swapSession)(nil)

func (s *swapSession) ID() string {
	return s.id
}

// View returns a copy of the session state.
func (s *swapSession) View() domain.SessionView {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.viewLocked()
}

func (s *swapSession) viewLocked() domain.SessionView {
	v := domain.SessionView{
		SessionID: s.id,
		State:     s.state,
		Form:      s.form,
		UpdatedAt: s.updatedAt,
	}
	if s.form.Amount != nil {
		amount := *s.form.Amount
		v.Form.Amount = &amount
	}
	if s.result != nil {
		res := *s.result
		v.Result = &res
	}
	if len(s.fieldErrs) > 0 {
		v.Errors = append([]apperrors.FieldError(nil), s.fieldErrs...)
	}
	return v
}

func (s *swapSession) touchLocked() {
	s.updatedAt = s.now()
	s.lastActive = s.updatedAt
}

// UpdateForm applies patch. Changing a currency selection invalidates a
// displayed result; inputs are locked while a swap is processing.
func (s *swapSession) UpdateForm(patch domain.FormPatch) (domain.SessionView, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state == domain.SwapProcessing {
		return s.viewLocked(), fmt.Errorf("%w: form is locked while processing", apperrors.ErrSwapInFlight)
	}

	verr := &apperrors.ValidationErrors{}
	if patch.FromCurrency != nil && !s.selectable(*patch.FromCurrency) {
		verr.Add(FieldFromCurrency, fmt.Sprintf("Unknown currency %q", *patch.FromCurrency))
	}
	if patch.ToCurrency != nil && !s.selectable(*patch.ToCurrency) {
		verr.Add(FieldToCurrency, fmt.Sprintf("Unknown currency %q", *patch.ToCurrency))
	}
	if err := verr.OrNil(); err != nil {
		return s.viewLocked(), err
	}

	selectionChanged := false
	if patch.Amount != nil {
		amount := *patch.Amount
		s.form.Amount = &amount
	}
	if patch.FromCurrency != nil && *patch.FromCurrency != s.form.FromCurrency {
		s.form.FromCurrency = *patch.FromCurrency
		selectionChanged = true
	}
	if patch.ToCurrency != nil && *patch.ToCurrency != s.form.ToCurrency {
		s.form.ToCurrency = *patch.ToCurrency
		selectionChanged = true
	}

	if selectionChanged {
		s.result = nil
		if s.state == domain.SwapSettled {
			s.state = domain.SwapIdle
		}
	}
	if s.state == domain.SwapRejected {
		s.fieldErrs = nil
		s.state = domain.SwapIdle
	}
	s.touchLocked()
	return s.viewLocked(), nil
}

// selectable reports whether id may be put in a currency field. "" deselects.
func (s *swapSession) selectable(id string) bool {
	if id == "" {
		return true
	}
	_, ok := s.catalog.FindOption(id)
	return ok
}

// priceOf resolves a selection against the current catalog. Anything that
// does not resolve counts as nothing selected.
func (s *swapSession) priceOf(id string) decimal.Decimal {
	opt, ok := s.catalog.FindOption(id)
	if !ok {
		return decimal.Zero
	}
	return opt.Value
}

// Submit validates the form and, when valid, settles a quote after the
// settlement delay. Once processing starts the swap always settles, even if
// ctx is cancelled; only the wait for the result is abandoned.
func (s *swapSession) Submit(ctx context.Context) (domain.SwapResult, error) {
	logger := s.GetLogger(ctx).With(slog.String("session_id", s.id))

	s.mu.Lock()
	if s.state == domain.SwapProcessing {
		s.mu.Unlock()
		s.Metrics.ObserveQuote(metrics.OutcomeInFlight)
		return domain.SwapResult{}, fmt.Errorf("%w: session %s", apperrors.ErrSwapInFlight, s.id)
	}

	s.state = domain.SwapValidating
	s.fieldErrs = nil
	req := domain.SwapRequest{
		Amount:    s.form.Amount,
		FromPrice: s.priceOf(s.form.FromCurrency),
		ToPrice:   s.priceOf(s.form.ToCurrency),
	}

	if err := s.quotes.Validate(req); err != nil {
		var verr *apperrors.ValidationErrors
		if errors.As(err, &verr) {
			s.state = domain.SwapRejected
			s.fieldErrs = append([]apperrors.FieldError(nil), verr.Fields...)
			s.touchLocked()
			s.mu.Unlock()
			s.Metrics.ObserveQuote(metrics.OutcomeRejected)
			logger.Info("Swap rejected", slog.Int("violations", len(verr.Fields)))
			return domain.SwapResult{}, err
		}
		s.state = domain.SwapIdle
		s.touchLocked()
		s.mu.Unlock()
		logger.Error("Swap validation failed unexpectedly", slog.String("error", err.Error()))
		return domain.SwapResult{}, err
	}

	s.state = domain.SwapProcessing
	s.touchLocked()
	started := s.updatedAt
	from, to := s.form.FromCurrency, s.form.ToCurrency
	s.mu.Unlock()
	logger.Info("Swap processing",
		slog.String("from", from),
		slog.String("to", to),
		slog.Duration("delay", s.delay))

	done := make(chan settleOutcome, 1)
	go s.settle(context.WithoutCancel(ctx), logger, req, started, done)

	select {
	case out := <-done:
		return out.result, out.err
	case <-ctx.Done():
		return domain.SwapResult{}, ctx.Err()
	}
}

func (s *swapSession) settle(ctx context.Context, logger *slog.Logger, req domain.SwapRequest, started time.Time, done chan<- settleOutcome) {
	time.Sleep(s.delay)

	result, err := s.quotes.ComputeQuote(req)

	s.mu.Lock()
	if err != nil {
		s.state = domain.SwapIdle
		s.touchLocked()
		s.mu.Unlock()
		s.Metrics.ObserveQuote(metrics.OutcomeDefect)
		logger.Error("Swap could not be settled", slog.String("error", err.Error()))
		done <- settleOutcome{err: err}
		return
	}
	s.state = domain.SwapSettled
	s.result = &result
	s.touchLocked()
	settledAt := s.updatedAt
	s.mu.Unlock()

	s.Metrics.ObserveQuote(metrics.OutcomeSettled)
	s.Metrics.ObserveSettlement(settledAt.Sub(started))
	logger.Info("Swap settled", slog.String("converted_amount", result.ConvertedAmount.String()))

	if s.notifier != nil {
		n := domain.Notification{
			SessionID: s.id,
			Message:   domain.SettlementMessage,
			Result:    result,
			At:        settledAt,
		}
		if nerr := s.notifier.Notify(ctx, n); nerr != nil {
			logger.Warn("Failed to deliver settlement notification", slog.String("error", nerr.Error()))
		}
	}
	done <- settleOutcome{result: result}
}

// Reset clears the form and any result. It is refused while processing.
func (s *swapSession) Reset() (domain.SessionView, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state == domain.SwapProcessing {
		return s.viewLocked(), fmt.Errorf("%w: reset is disabled while processing", apperrors.ErrSwapInFlight)
	}
	s.form = domain.SwapForm{}
	s.result = nil
	s.fieldErrs = nil
	s.state = domain.SwapIdle
	s.touchLocked()
	return s.viewLocked(), nil
}

// idleSince reports when the session was last used and whether it may be evicted.
func (s *swapSession) idleSince() (time.Time, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastActive, s.state != domain.SwapProcessing
}
