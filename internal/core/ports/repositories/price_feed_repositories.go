package repositories

import (
	"context"

	"github.com/SscSPs/currency_swapper/internal/core/domain"
)

// PriceFeedReader defines read access to the raw, unnormalized price list.
type PriceFeedReader interface {
	// FetchPrices returns the price list in source order, duplicates and dust included.
	FetchPrices(ctx context.Context) ([]domain.PriceQuote, error)
}

// PriceWriter defines write operations for a stored price list.
type PriceWriter interface {
	// ReplacePrices atomically replaces the stored list, preserving order.
	ReplacePrices(ctx context.Context, quotes []domain.PriceQuote) error
}

// PriceRepositoryFacade combines all price-related repository interfaces
type PriceRepositoryFacade interface {
	PriceFeedReader
	PriceWriter
	RepositoryWithTx
}
