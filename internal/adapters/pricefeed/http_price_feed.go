package pricefeed

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/SscSPs/currency_swapper/internal/core/domain"
	portsrepo "github.com/SscSPs/currency_swapper/internal/core/ports/repositories"
	"github.com/shopspring/decimal"
)

// maxErrorBody bounds how much of a failed response is kept for the error message.
const maxErrorBody = 512

// rawPrice is one element of the feed's JSON array, e.g.
// {"currency":"BLUR","date":"2023-08-29T07:10:40.000Z","price":0.20811525423728813}
type rawPrice struct {
	Currency string          `json:"currency"`
	Price    decimal.Decimal `json:"price"`
}

// HTTPPriceFeed reads the price list from a JSON endpoint.
type HTTPPriceFeed struct {
	url        string
	httpClient *http.Client
	logger     *slog.Logger
}

// NewHTTPPriceFeed creates a feed for url. Every fetch is bounded by timeout.
func NewHTTPPriceFeed(url string, timeout time.Duration, logger *slog.Logger) *HTTPPriceFeed {
	if logger == nil {
		logger = slog.Default()
	}
	return &HTTPPriceFeed{
		url: url,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		logger: logger,
	}
}

var _ portsrepo.PriceFeedReader = (*HTTPPriceFeed)(nil)

// FetchPrices downloads and decodes the feed, preserving its order.
func (f *HTTPPriceFeed) FetchPrices(ctx context.Context) ([]domain.PriceQuote, error) {
	f.logger.Info("Fetching prices from feed", "url", f.url)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch prices: %w", err)
	}
	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return nil, fmt.Errorf("price feed returned status %d: %s", resp.StatusCode, string(body))
	}

	var raw []rawPrice
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return nil, fmt.Errorf("failed to decode price feed: %w", err)
	}

	quotes := make([]domain.PriceQuote, 0, len(raw))
	for _, r := range raw {
		quotes = append(quotes, domain.PriceQuote{CurrencyCode: r.Currency, UnitPrice: r.Price})
	}
	f.logger.Info("Fetched prices from feed", "count", len(quotes))
	return quotes, nil
}
