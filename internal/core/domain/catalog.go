package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// PriceQuote is one tradable currency's price in the feed's common reference unit.
type PriceQuote struct {
	CurrencyCode string          `json:"currency"`
	UnitPrice    decimal.Decimal `json:"price"`
}

// CurrencyOption is a display-ready, deduplicated projection of a PriceQuote.
// ID is the stable identifier used for selection; Value is the price attribute.
type CurrencyOption struct {
	ID      string          `json:"id"`
	Label   string          `json:"label"`
	Value   decimal.Decimal `json:"value"`
	IconRef string          `json:"iconRef"`
}

// CatalogState describes where the catalog is in its load lifecycle.
type CatalogState string

const (
	CatalogLoading CatalogState = "loading"
	CatalogReady   CatalogState = "ready"
	CatalogFailed  CatalogState = "failed"
)

// Catalog is an immutable snapshot of the tradable option set.
type Catalog struct {
	State    CatalogState     `json:"state"`
	Options  []CurrencyOption `json:"options"`
	LoadedAt time.Time        `json:"loadedAt"`
	Error    string           `json:"error,omitempty"`
}

// Find returns the option with the given ID.
func (c Catalog) Find(id string) (CurrencyOption, bool) {
	if id == "" {
		return CurrencyOption{}, false
	}
	for _, opt := range c.Options {
		if opt.ID == id {
			return opt, true
		}
	}
	return CurrencyOption{}, false
}

// IconRef returns the icon file reference for a currency code.
func IconRef(currencyCode string) string {
	return currencyCode + ".svg"
}

// NewCurrencyOption projects a quote into an option.
func NewCurrencyOption(q PriceQuote) CurrencyOption {
	return CurrencyOption{
		ID:      q.CurrencyCode,
		Label:   q.CurrencyCode,
		Value:   q.UnitPrice,
		IconRef: IconRef(q.CurrencyCode),
	}
}

// BuildOptions normalizes a raw quote list in its given order. The first
// occurrence of a currency code wins; quotes priced below noiseFloor are dropped
// without marking their code as seen, so a later tradable quote of the same
// code is kept.
func BuildOptions(quotes []PriceQuote, noiseFloor decimal.Decimal) []CurrencyOption {
	seen := make(map[string]struct{}, len(quotes))
	options := make([]CurrencyOption, 0, len(quotes))
	for _, q := range quotes {
		if _, dup := seen[q.CurrencyCode]; dup || q.UnitPrice.LessThan(noiseFloor) {
			continue
		}
		seen[q.CurrencyCode] = struct{}{}
		options = append(options, NewCurrencyOption(q))
	}
	return options
}
