package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Price is one row of the prices table. Rows are read in Position order and
// the same currency may appear more than once.
type Price struct {
	Position     int64           `json:"position"`
	CurrencyCode string          `json:"currency"`
	UnitPrice    decimal.Decimal `json:"price"`
	ObservedAt   time.Time       `json:"observedAt"`
}
