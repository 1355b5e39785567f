package mapping

import (
	"github.com/SscSPs/currency_swapper/internal/core/domain"
	"github.com/SscSPs/currency_swapper/internal/models"
)

// ToDomainPriceQuote converts a model Price to a domain PriceQuote
func ToDomainPriceQuote(m models.Price) domain.PriceQuote {
	return domain.PriceQuote{
		CurrencyCode: m.CurrencyCode,
		UnitPrice:    m.UnitPrice,
	}
}

// ToDomainPriceQuoteSlice converts a slice of model Prices to a slice of domain PriceQuotes
func ToDomainPriceQuoteSlice(ms []models.Price) []domain.PriceQuote {
	ds := make([]domain.PriceQuote, len(ms))
	for i, m := range ms {
		ds[i] = ToDomainPriceQuote(m)
	}
	return ds
}

// ToModelPrice converts a domain PriceQuote to a model Price
func ToModelPrice(d domain.PriceQuote) models.Price {
	return models.Price{
		CurrencyCode: d.CurrencyCode,
		UnitPrice:    d.UnitPrice,
	}
}
