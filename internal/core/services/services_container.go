package services

import (
	"log/slog"

	portsrepo "github.com/SscSPs/currency_swapper/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/currency_swapper/internal/core/ports/services"
	"github.com/SscSPs/currency_swapper/internal/platform/config"
	"github.com/SscSPs/currency_swapper/internal/platform/metrics"
)

// ContainerDeps are the collaborators the services are built on
type ContainerDeps struct {
	Feed     portsrepo.PriceFeedReader
	Notifier portssvc.Notifier
	Events   portssvc.NotificationSubscriber
	Logger   *slog.Logger
	Metrics  *metrics.Metrics
}

// NewServiceContainer creates a new service container with properly initialized dependencies.
// The concrete registry is returned as well so the caller can run its janitor.
func NewServiceContainer(cfg *config.Config, deps ContainerDeps) (*portssvc.ServiceContainer, *SessionRegistry) {
	container := &portssvc.ServiceContainer{
		Events: deps.Events,
	}

	// The catalog comes first since sessions price swaps from it
	container.Catalog = NewCatalogService(deps.Feed,
		WithCatalogLogger(deps.Logger),
		WithCatalogMetrics(deps.Metrics),
		WithNoiseFloor(cfg.PriceNoiseFloor),
	)

	container.Quote = NewQuoteEngine(cfg.QuotePrecision, deps.Logger)

	registry := NewSessionRegistry(container.Catalog, container.Quote,
		WithSettlementDelay(cfg.SettlementDelay),
		WithNotifier(deps.Notifier),
		WithSessionLogger(deps.Logger),
		WithSessionMetrics(deps.Metrics),
	)
	container.Sessions = registry

	return container, registry
}
