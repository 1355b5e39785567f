package handlers_test

import (
	"bufio"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/SscSPs/currency_swapper/internal/adapters/pricefeed"
	"github.com/SscSPs/currency_swapper/internal/core/services"
	"github.com/SscSPs/currency_swapper/internal/dto"
	"github.com/SscSPs/currency_swapper/internal/handlers"
	"github.com/SscSPs/currency_swapper/internal/middleware"
	"github.com/SscSPs/currency_swapper/internal/notifications"
	"github.com/SscSPs/currency_swapper/internal/platform/metrics"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const pricesJSON = `[
	{"currency":"BTC","date":"2023-08-29T07:10:40.000Z","price":50000},
	{"currency":"ETH","date":"2023-08-29T07:10:40.000Z","price":3000},
	{"currency":"USDC","date":"2023-08-29T07:10:40.000Z","price":1},
	{"currency":"LUNA","date":"2023-08-29T07:10:40.000Z","price":0.01}
]`

type swapAPI struct {
	t      *testing.T
	server *httptest.Server
	token  string
}

// newSwapAPI serves the full router over real services with a zero settlement delay.
func newSwapAPI(t *testing.T, rateLimit string) *swapAPI {
	t.Helper()
	gin.SetMode(gin.TestMode)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	feedServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, pricesJSON)
	}))
	t.Cleanup(feedServer.Close)

	cfg := testConfig()
	cfg.PriceNoiseFloor = services.DefaultNoiseFloor
	cfg.QuotePrecision = services.DefaultQuotePrecision
	cfg.SettlementDelay = 0

	m := metrics.New()
	hub := notifications.NewHub(logger)
	container, _ := services.NewServiceContainer(cfg, services.ContainerDeps{
		Feed:     pricefeed.NewHTTPPriceFeed(feedServer.URL, time.Second, logger),
		Notifier: notifications.NewFanout(hub),
		Events:   hub,
		Logger:   logger,
		Metrics:  m,
	})
	_, err := container.Catalog.Load(context.Background())
	require.NoError(t, err)

	lim, err := middleware.NewRateLimiter(rateLimit)
	require.NoError(t, err)

	r := gin.New()
	r.Use(middleware.StructuredLoggingMiddleware(logger), middleware.MetricsMiddleware(m))
	handlers.RegisterRoutes(r, cfg, container, m, lim)

	api := &swapAPI{t: t, server: httptest.NewServer(r)}
	t.Cleanup(api.server.Close)
	return api
}

func (a *swapAPI) do(method, path, body string, out any) int {
	a.t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req, err := http.NewRequest(method, a.server.URL+path, reader)
	require.NoError(a.t, err)
	req.Header.Set("Content-Type", "application/json")
	if a.token != "" {
		req.Header.Set("Authorization", "Bearer "+a.token)
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(a.t, err)
	defer resp.Body.Close()
	if out != nil {
		require.NoError(a.t, json.NewDecoder(resp.Body).Decode(out))
	}
	return resp.StatusCode
}

func (a *swapAPI) openSession() {
	a.t.Helper()
	var created dto.CreateSessionResponse
	require.Equal(a.t, http.StatusCreated, a.do(http.MethodPost, "/api/v1/sessions", "", &created))
	a.token = created.Token
}

func TestSwapFlow_SettlesAtPriceRatio(t *testing.T) {
	api := newSwapAPI(t, "100-M")

	var catalog dto.CatalogResponse
	require.Equal(t, http.StatusOK, api.do(http.MethodGet, "/api/v1/catalog", "", &catalog))
	assert.Equal(t, "ready", catalog.State)
	require.Len(t, catalog.Options, 3, "LUNA is below the noise floor")

	api.openSession()

	var rejected dto.ValidationErrorResponse
	require.Equal(t, http.StatusBadRequest, api.do(http.MethodPost, "/api/v1/swap/submit", "", &rejected))
	assert.Len(t, rejected.Fields, 3)

	var view dto.SessionViewResponse
	require.Equal(t, http.StatusOK, api.do(http.MethodGet, "/api/v1/swap", "", &view))
	assert.Equal(t, "rejected", view.State)

	require.Equal(t, http.StatusOK,
		api.do(http.MethodPatch, "/api/v1/swap/form", `{"amount":"10","fromCurrency":"ETH","toCurrency":"BTC"}`, &view))
	assert.Equal(t, "idle", view.State)
	assert.Empty(t, view.Errors)

	var settled dto.SubmitSwapResponse
	require.Equal(t, http.StatusOK, api.do(http.MethodPost, "/api/v1/swap/submit", "", &settled))
	assert.Equal(t, "Currency has been processed", settled.Message)
	assert.True(t, decimal.RequireFromString("0.6").Equal(settled.Result.ConvertedAmount), settled.Result.ConvertedAmount.String())
	assert.Equal(t, "settled", settled.Session.State)

	// an amount edit keeps the displayed result, a new selection drops it
	require.Equal(t, http.StatusOK, api.do(http.MethodPatch, "/api/v1/swap/form", `{"amount":20}`, &view))
	assert.NotNil(t, view.Result)
	require.Equal(t, http.StatusOK, api.do(http.MethodPatch, "/api/v1/swap/form", `{"toCurrency":"USDC"}`, &view))
	assert.Nil(t, view.Result)
	assert.Equal(t, "idle", view.State)

	require.Equal(t, http.StatusBadRequest, api.do(http.MethodPatch, "/api/v1/swap/form", `{"toCurrency":"LUNA"}`, nil))

	require.Equal(t, http.StatusOK, api.do(http.MethodPost, "/api/v1/swap/reset", "", &view))
	assert.Nil(t, view.Form.Amount)
	assert.Empty(t, view.Form.FromCurrency)
}

func TestSwapFlow_SubmitIsRateLimited(t *testing.T) {
	api := newSwapAPI(t, "1-M")
	api.openSession()
	require.Equal(t, http.StatusOK,
		api.do(http.MethodPatch, "/api/v1/swap/form", `{"amount":1,"fromCurrency":"USDC","toCurrency":"ETH"}`, nil))

	assert.Equal(t, http.StatusOK, api.do(http.MethodPost, "/api/v1/swap/submit", "", nil))
	assert.Equal(t, http.StatusTooManyRequests, api.do(http.MethodPost, "/api/v1/swap/submit", "", nil))
	// other routes are not limited
	assert.Equal(t, http.StatusOK, api.do(http.MethodGet, "/api/v1/swap", "", nil))
}

func TestSwapFlow_EventStreamReceivesSettlement(t *testing.T) {
	api := newSwapAPI(t, "100-M")
	api.openSession()
	require.Equal(t, http.StatusOK,
		api.do(http.MethodPatch, "/api/v1/swap/form", `{"amount":"10","fromCurrency":"ETH","toCurrency":"BTC"}`, nil))

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, api.server.URL+"/api/v1/swap/events?token="+api.token, nil)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	events := make(chan string, 4)
	go func() {
		scanner := bufio.NewScanner(resp.Body)
		var event string
		for scanner.Scan() {
			line := scanner.Text()
			switch {
			case strings.HasPrefix(line, "event:"):
				event = strings.TrimPrefix(line, "event:")
			case strings.HasPrefix(line, "data:"):
				events <- event + " " + strings.TrimPrefix(line, "data:")
			}
		}
		close(events)
	}()

	ready := <-events
	require.True(t, strings.HasPrefix(ready, "ready "), ready)

	require.Equal(t, http.StatusOK, api.do(http.MethodPost, "/api/v1/swap/submit", "", nil))

	select {
	case got := <-events:
		require.True(t, strings.HasPrefix(got, "settled "), got)
		var n dto.NotificationResponse
		require.NoError(t, json.Unmarshal([]byte(strings.TrimPrefix(got, "settled ")), &n))
		assert.Equal(t, "Currency has been processed", n.Message)
		assert.True(t, decimal.RequireFromString("0.6").Equal(n.Result.ConvertedAmount))
	case <-ctx.Done():
		t.Fatal("no settlement event received")
	}
}
