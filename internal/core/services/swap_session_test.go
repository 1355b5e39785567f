package services_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/SscSPs/currency_swapper/internal/apperrors"
	"github.com/SscSPs/currency_swapper/internal/core/domain"
	portssvc "github.com/SscSPs/currency_swapper/internal/core/ports/services"
	"github.com/SscSPs/currency_swapper/internal/core/services"
	"github.com/SscSPs/currency_swapper/internal/platform/metrics"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

// --- Mock Notifier ---
type MockNotifier struct {
	mock.Mock
}

func (m *MockNotifier) Notify(ctx context.Context, n domain.Notification) error {
	args := m.Called(ctx, n)
	return args.Error(0)
}

// --- Mock QuoteSvc ---
type MockQuoteSvc struct {
	mock.Mock
}

func (m *MockQuoteSvc) Validate(req domain.SwapRequest) error {
	args := m.Called(req)
	return args.Error(0)
}

func (m *MockQuoteSvc) ComputeQuote(req domain.SwapRequest) (domain.SwapResult, error) {
	args := m.Called(req)
	return args.Get(0).(domain.SwapResult), args.Error(1)
}

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

func strPtr(s string) *string {
	return &s
}

func loadedCatalog(t *testing.T) portssvc.CatalogSvcFacade {
	t.Helper()
	feed := new(MockPriceFeed)
	feed.On("FetchPrices", mock.Anything).Return([]domain.PriceQuote{
		quote("BTC", "50000"),
		quote("ETH", "3000"),
		quote("USDC", "1"),
	}, nil)
	catalog := services.NewCatalogService(feed, services.WithCatalogLogger(discardLogger()))
	_, err := catalog.Load(context.Background())
	require.NoError(t, err)
	return catalog
}

// --- Test Suite ---
type SwapSessionTestSuite struct {
	suite.Suite
	notifier *MockNotifier
	metrics  *metrics.Metrics
	clock    *fakeClock
	registry *services.SessionRegistry
	session  portssvc.SwapSessionSvc
}

func (suite *SwapSessionTestSuite) newRegistry(delay time.Duration) {
	suite.registry = services.NewSessionRegistry(
		loadedCatalog(suite.T()),
		services.NewQuoteEngine(services.DefaultQuotePrecision, discardLogger()),
		services.WithSettlementDelay(delay),
		services.WithNotifier(suite.notifier),
		services.WithSessionLogger(discardLogger()),
		services.WithSessionMetrics(suite.metrics),
		services.WithSessionClock(suite.clock.Now),
	)
	suite.session = suite.registry.Create()
}

func (suite *SwapSessionTestSuite) SetupTest() {
	suite.notifier = new(MockNotifier)
	suite.metrics = metrics.New()
	suite.clock = &fakeClock{now: time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)}
	suite.newRegistry(10 * time.Millisecond)
}

func (suite *SwapSessionTestSuite) fill(amount, from, to string) {
	_, err := suite.session.UpdateForm(domain.FormPatch{
		Amount:       decPtr(amount),
		FromCurrency: strPtr(from),
		ToCurrency:   strPtr(to),
	})
	suite.Require().NoError(err)
}

// submitAsync starts a submission and waits until it is processing.
func (suite *SwapSessionTestSuite) submitAsync(ctx context.Context) <-chan error {
	errCh := make(chan error, 1)
	go func() {
		_, err := suite.session.Submit(ctx)
		errCh <- err
	}()
	suite.Require().Eventually(func() bool {
		return suite.session.View().State == domain.SwapProcessing
	}, time.Second, time.Millisecond)
	return errCh
}

func (suite *SwapSessionTestSuite) TestNewSessionIsIdle() {
	view := suite.session.View()

	suite.Equal(suite.session.ID(), view.SessionID)
	suite.Equal(domain.SwapIdle, view.State)
	suite.False(view.Loading())
	suite.Nil(view.Result)
	suite.Nil(view.Form.Amount)
	suite.Empty(view.Form.FromCurrency)
}

func (suite *SwapSessionTestSuite) TestSubmit_SettlesAndNotifies() {
	suite.notifier.On("Notify", mock.Anything, mock.MatchedBy(func(n domain.Notification) bool {
		return n.SessionID == suite.session.ID() &&
			n.Message == domain.SettlementMessage &&
			n.Result.ConvertedAmount.Equal(decimal.RequireFromString("0.6"))
	})).Return(nil).Once()
	suite.fill("10", "ETH", "BTC")

	result, err := suite.session.Submit(context.Background())

	suite.Require().NoError(err)
	suite.Equal("0.6", result.ConvertedAmount.String())
	view := suite.session.View()
	suite.Equal(domain.SwapSettled, view.State)
	suite.Require().NotNil(view.Result)
	suite.Equal("0.6", view.Result.ConvertedAmount.String())
	suite.Empty(view.Errors)
	suite.Equal(float64(1), metricValue(suite.T(), suite.metrics, "swapper_quote_submissions_total", metrics.OutcomeSettled))
	suite.notifier.AssertExpectations(suite.T())
}

func (suite *SwapSessionTestSuite) TestSubmit_RejectsWithFieldErrors() {
	_, err := suite.session.UpdateForm(domain.FormPatch{Amount: decPtr("0"), ToCurrency: strPtr("BTC")})
	suite.Require().NoError(err)

	_, err = suite.session.Submit(context.Background())

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrValidation)
	view := suite.session.View()
	suite.Equal(domain.SwapRejected, view.State)
	suite.ElementsMatch([]apperrors.FieldError{
		{Field: "amount", Message: "Amount must be equal or greater than 1"},
		{Field: "fromCurrency", Message: "Select from currency"},
	}, view.Errors)
	suite.Nil(view.Result)
	suite.notifier.AssertNotCalled(suite.T(), "Notify", mock.Anything, mock.Anything)
}

func (suite *SwapSessionTestSuite) TestSubmit_RejectionKeepsPreviousResult() {
	suite.notifier.On("Notify", mock.Anything, mock.Anything).Return(nil)
	suite.fill("10", "ETH", "BTC")
	_, err := suite.session.Submit(context.Background())
	suite.Require().NoError(err)

	_, err = suite.session.UpdateForm(domain.FormPatch{Amount: decPtr("0.5")})
	suite.Require().NoError(err)
	_, err = suite.session.Submit(context.Background())

	suite.Require().Error(err)
	view := suite.session.View()
	suite.Equal(domain.SwapRejected, view.State)
	suite.Require().NotNil(view.Result)
	suite.Equal("0.6", view.Result.ConvertedAmount.String())
}

func (suite *SwapSessionTestSuite) TestUpdateForm_ClearsRejection() {
	_, err := suite.session.Submit(context.Background())
	suite.Require().Error(err)

	view, err := suite.session.UpdateForm(domain.FormPatch{Amount: decPtr("3")})

	suite.Require().NoError(err)
	suite.Equal(domain.SwapIdle, view.State)
	suite.Empty(view.Errors)
}

func (suite *SwapSessionTestSuite) TestSubmit_InFlightIsRefused() {
	suite.newRegistry(200 * time.Millisecond)
	suite.notifier.On("Notify", mock.Anything, mock.Anything).Return(nil).Once()
	suite.fill("10", "ETH", "BTC")

	errCh := suite.submitAsync(context.Background())
	suite.True(suite.session.View().Loading())

	_, err := suite.session.Submit(context.Background())
	suite.ErrorIs(err, apperrors.ErrSwapInFlight)
	_, err = suite.session.UpdateForm(domain.FormPatch{Amount: decPtr("99")})
	suite.ErrorIs(err, apperrors.ErrSwapInFlight)
	_, err = suite.session.Reset()
	suite.ErrorIs(err, apperrors.ErrSwapInFlight)

	suite.Require().NoError(<-errCh)
	view := suite.session.View()
	suite.Equal(domain.SwapSettled, view.State)
	suite.Equal("10", view.Form.Amount.String(), "edits during processing must not apply")
	suite.Equal(float64(1), metricValue(suite.T(), suite.metrics, "swapper_quote_submissions_total", metrics.OutcomeInFlight))
	suite.notifier.AssertNumberOfCalls(suite.T(), "Notify", 1)
}

func (suite *SwapSessionTestSuite) TestSubmit_CancelledCallerStillSettles() {
	suite.newRegistry(100 * time.Millisecond)
	notified := make(chan struct{})
	suite.notifier.On("Notify", mock.Anything, mock.Anything).
		Run(func(mock.Arguments) { close(notified) }).
		Return(nil).Once()
	suite.fill("10", "ETH", "BTC")
	ctx, cancel := context.WithCancel(context.Background())

	errCh := suite.submitAsync(ctx)
	cancel()

	suite.ErrorIs(<-errCh, context.Canceled)
	suite.Require().Eventually(func() bool {
		return suite.session.View().State == domain.SwapSettled
	}, time.Second, 5*time.Millisecond)
	suite.Equal("0.6", suite.session.View().Result.ConvertedAmount.String())
	select {
	case <-notified:
	case <-time.After(time.Second):
		suite.Fail("settlement notification was not emitted")
	}
}

func (suite *SwapSessionTestSuite) TestSubmit_NotificationFailureDoesNotFailSwap() {
	suite.notifier.On("Notify", mock.Anything, mock.Anything).Return(errors.New("sink down")).Once()
	suite.fill("1", "BTC", "USDC")

	result, err := suite.session.Submit(context.Background())

	suite.Require().NoError(err)
	suite.Equal("50000", result.ConvertedAmount.String())
	suite.Equal(domain.SwapSettled, suite.session.View().State)
}

func (suite *SwapSessionTestSuite) TestUpdateForm_SelectionChangeClearsResult() {
	suite.notifier.On("Notify", mock.Anything, mock.Anything).Return(nil)
	suite.fill("10", "ETH", "BTC")
	_, err := suite.session.Submit(context.Background())
	suite.Require().NoError(err)

	view, err := suite.session.UpdateForm(domain.FormPatch{Amount: decPtr("20")})
	suite.Require().NoError(err)
	suite.Equal(domain.SwapSettled, view.State)
	suite.NotNil(view.Result, "amount edits keep the displayed result")

	view, err = suite.session.UpdateForm(domain.FormPatch{ToCurrency: strPtr("USDC")})
	suite.Require().NoError(err)
	suite.Equal(domain.SwapIdle, view.State)
	suite.Nil(view.Result)
}

func (suite *SwapSessionTestSuite) TestUpdateForm_SameSelectionKeepsResult() {
	suite.notifier.On("Notify", mock.Anything, mock.Anything).Return(nil)
	suite.fill("10", "ETH", "BTC")
	_, err := suite.session.Submit(context.Background())
	suite.Require().NoError(err)

	view, err := suite.session.UpdateForm(domain.FormPatch{FromCurrency: strPtr("ETH")})

	suite.Require().NoError(err)
	suite.NotNil(view.Result)
}

func (suite *SwapSessionTestSuite) TestUpdateForm_UnknownCurrency() {
	view, err := suite.session.UpdateForm(domain.FormPatch{FromCurrency: strPtr("DOGE"), Amount: decPtr("5")})

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrValidation)
	suite.Empty(view.Form.FromCurrency)
	suite.Nil(view.Form.Amount, "a rejected patch is not partially applied")
}

func (suite *SwapSessionTestSuite) TestUpdateForm_EmptyDeselects() {
	suite.fill("5", "ETH", "BTC")

	view, err := suite.session.UpdateForm(domain.FormPatch{FromCurrency: strPtr("")})

	suite.Require().NoError(err)
	suite.Empty(view.Form.FromCurrency)
	_, err = suite.session.Submit(context.Background())
	suite.ErrorIs(err, apperrors.ErrValidation)
}

func (suite *SwapSessionTestSuite) TestReset() {
	suite.notifier.On("Notify", mock.Anything, mock.Anything).Return(nil)
	suite.fill("10", "ETH", "BTC")
	_, err := suite.session.Submit(context.Background())
	suite.Require().NoError(err)

	view, err := suite.session.Reset()

	suite.Require().NoError(err)
	suite.Equal(domain.SwapIdle, view.State)
	suite.Equal(domain.SwapForm{}, view.Form)
	suite.Nil(view.Result)
	suite.Empty(view.Errors)
}

func (suite *SwapSessionTestSuite) TestViewIsACopy() {
	suite.fill("10", "ETH", "BTC")

	view := suite.session.View()
	*view.Form.Amount = decimal.NewFromInt(999)

	suite.Equal("10", suite.session.View().Form.Amount.String())
}

func (suite *SwapSessionTestSuite) TestRegistry_GetAndPrune() {
	got, err := suite.registry.Get(suite.session.ID())
	suite.Require().NoError(err)
	suite.Equal(suite.session.ID(), got.ID())

	_, err = suite.registry.Get("missing")
	suite.ErrorIs(err, apperrors.ErrNotFound)

	fresh := suite.registry.Create()
	suite.Equal(2, suite.registry.Len())

	suite.clock.Advance(20 * time.Minute)
	_, err = fresh.UpdateForm(domain.FormPatch{Amount: decPtr("1")})
	suite.Require().NoError(err)
	suite.clock.Advance(15 * time.Minute)

	suite.Equal(1, suite.registry.Prune(30*time.Minute))
	_, err = suite.registry.Get(suite.session.ID())
	suite.ErrorIs(err, apperrors.ErrNotFound)
	_, err = suite.registry.Get(fresh.ID())
	suite.NoError(err)
}

func (suite *SwapSessionTestSuite) TestRegistry_PruneKeepsProcessingSessions() {
	suite.newRegistry(200 * time.Millisecond)
	suite.notifier.On("Notify", mock.Anything, mock.Anything).Return(nil)
	suite.fill("10", "ETH", "BTC")

	errCh := suite.submitAsync(context.Background())
	suite.clock.Advance(time.Hour)

	suite.Equal(0, suite.registry.Prune(time.Minute))
	suite.NoError(<-errCh)
}

func (suite *SwapSessionTestSuite) TestRegistry_RunJanitorStopsOnCancel() {
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		suite.registry.RunJanitor(ctx, time.Millisecond, time.Minute)
		close(done)
	}()

	suite.clock.Advance(2 * time.Minute)
	suite.Eventually(func() bool { return suite.registry.Len() == 0 }, time.Second, time.Millisecond)
	cancel()
	suite.Eventually(func() bool {
		select {
		case <-done:
			return true
		default:
			return false
		}
	}, time.Second, time.Millisecond)
}

func (suite *SwapSessionTestSuite) TestRegistry_RunJanitorNonPositiveIntervalReturns() {
	done := make(chan struct{})
	go func() {
		suite.registry.RunJanitor(context.Background(), 0, 0)
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		suite.Fail("janitor with a zero interval should return immediately")
	}
}

// Run the test suite
func TestSwapSessionTestSuite(t *testing.T) {
	suite.Run(t, new(SwapSessionTestSuite))
}

func TestSwapSession_ComputeDefectReturnsToIdle(t *testing.T) {
	quotes := new(MockQuoteSvc)
	quotes.On("Validate", mock.Anything).Return(nil)
	quotes.On("ComputeQuote", mock.Anything).
		Return(domain.SwapResult{}, apperrors.ErrPreconditionViolation)
	notifier := new(MockNotifier)

	registry := services.NewSessionRegistry(loadedCatalog(t), quotes,
		services.WithSettlementDelay(0),
		services.WithNotifier(notifier),
		services.WithSessionLogger(discardLogger()))
	session := registry.Create()

	_, err := session.Submit(context.Background())

	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrPreconditionViolation)
	assert.Equal(t, domain.SwapIdle, session.View().State)
	notifier.AssertNotCalled(t, "Notify", mock.Anything, mock.Anything)
}

func TestSwapSession_PricesResolvedAtSubmit(t *testing.T) {
	quotes := new(MockQuoteSvc)
	quotes.On("Validate", mock.Anything).Return(nil)
	quotes.On("ComputeQuote", mock.MatchedBy(func(req domain.SwapRequest) bool {
		return req.Amount != nil && req.Amount.Equal(decimal.NewFromInt(2)) &&
			req.FromPrice.Equal(decimal.NewFromInt(3000)) &&
			req.ToPrice.Equal(decimal.NewFromInt(1))
	})).Return(domain.SwapResult{ConvertedAmount: decimal.NewFromInt(6000)}, nil).Once()

	registry := services.NewSessionRegistry(loadedCatalog(t), quotes,
		services.WithSettlementDelay(0),
		services.WithSessionLogger(discardLogger()))
	session := registry.Create()
	_, err := session.UpdateForm(domain.FormPatch{Amount: decPtr("2"), FromCurrency: strPtr("ETH"), ToCurrency: strPtr("USDC")})
	require.NoError(t, err)

	result, err := session.Submit(context.Background())

	require.NoError(t, err)
	assert.Equal(t, "6000", result.ConvertedAmount.String())
	quotes.AssertExpectations(t)
}
