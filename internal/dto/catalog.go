package dto

import (
	"time"

	"github.com/SscSPs/currency_swapper/internal/core/domain"
	"github.com/shopspring/decimal"
)

// CurrencyOptionResponse is one selectable currency.
type CurrencyOptionResponse struct {
	ID      string          `json:"id"`
	Label   string          `json:"label"`
	Value   decimal.Decimal `json:"value" swaggertype:"string" example:"1645.93"`
	IconRef string          `json:"iconRef"`
}

// CatalogResponse defines the data returned for the price catalog.
type CatalogResponse struct {
	State    string                   `json:"state" enums:"loading,ready,failed"`
	Options  []CurrencyOptionResponse `json:"options"`
	LoadedAt *time.Time               `json:"loadedAt,omitempty"`
	Error    string                   `json:"error,omitempty"`
}

// ToCurrencyOptionResponse converts a domain.CurrencyOption to CurrencyOptionResponse DTO
func ToCurrencyOptionResponse(o domain.CurrencyOption) CurrencyOptionResponse {
	return CurrencyOptionResponse{
		ID:      o.ID,
		Label:   o.Label,
		Value:   o.Value,
		IconRef: o.IconRef,
	}
}

// ToCatalogResponse converts a domain.Catalog to CatalogResponse DTO
func ToCatalogResponse(c domain.Catalog) CatalogResponse {
	res := CatalogResponse{
		State:   string(c.State),
		Options: make([]CurrencyOptionResponse, len(c.Options)),
		Error:   c.Error,
	}
	for i, o := range c.Options {
		res.Options[i] = ToCurrencyOptionResponse(o)
	}
	if !c.LoadedAt.IsZero() {
		loadedAt := c.LoadedAt
		res.LoadedAt = &loadedAt
	}
	return res
}
