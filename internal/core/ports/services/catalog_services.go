package services

import (
	"context"

	"github.com/SscSPs/currency_swapper/internal/core/domain"
)

// CatalogReaderSvc defines read operations on the loaded catalog
type CatalogReaderSvc interface {
	// Snapshot returns the current catalog, including its load state.
	Snapshot() domain.Catalog

	// FindOption looks up a tradable option by its identifier.
	FindOption(id string) (domain.CurrencyOption, bool)
}

// CatalogLoaderSvc defines the load/reload operation
type CatalogLoaderSvc interface {
	// Load fetches the price feed and replaces the catalog wholesale.
	Load(ctx context.Context) ([]domain.CurrencyOption, error)
}

// CatalogSvcFacade combines all catalog-related service interfaces
type CatalogSvcFacade interface {
	CatalogReaderSvc
	CatalogLoaderSvc
}
