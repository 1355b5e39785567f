package services

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/SscSPs/currency_swapper/internal/apperrors"
	"github.com/SscSPs/currency_swapper/internal/core/domain"
	portsrepo "github.com/SscSPs/currency_swapper/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/currency_swapper/internal/core/ports/services"
	"github.com/SscSPs/currency_swapper/internal/platform/metrics"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/singleflight"
)

// DefaultNoiseFloor is the minimum unit price a currency needs to be listed.
var DefaultNoiseFloor = decimal.RequireFromString("0.05")

const catalogLoadKey = "catalog"

// catalogService implements the CatalogSvcFacade interface
type catalogService struct {
	BaseService
	feed       portsrepo.PriceFeedReader
	noiseFloor decimal.Decimal
	now        func() time.Time

	loads singleflight.Group

	mu      sync.RWMutex
	catalog domain.Catalog
}

// CatalogOption is a functional option for configuring the catalog service
type CatalogOption func(*catalogService)

// WithCatalogLogger sets the logger used outside of request scope
func WithCatalogLogger(logger *slog.Logger) CatalogOption {
	return func(s *catalogService) {
		s.Logger = logger
	}
}

// WithCatalogMetrics records load outcomes
func WithCatalogMetrics(m *metrics.Metrics) CatalogOption {
	return func(s *catalogService) {
		s.Metrics = m
	}
}

// WithNoiseFloor overrides DefaultNoiseFloor
func WithNoiseFloor(floor decimal.Decimal) CatalogOption {
	return func(s *catalogService) {
		s.noiseFloor = floor
	}
}

// WithCatalogClock overrides the clock used for LoadedAt
func WithCatalogClock(now func() time.Time) CatalogOption {
	return func(s *catalogService) {
		s.now = now
	}
}

// NewCatalogService creates a catalog in the Loading state backed by feed.
func NewCatalogService(feed portsrepo.PriceFeedReader, options ...CatalogOption) portssvc.CatalogSvcFacade {
	svc := &catalogService{
		feed:       feed,
		noiseFloor: DefaultNoiseFloor,
		now:        time.Now,
		catalog: domain.Catalog{
			State:   domain.CatalogLoading,
			Options: []domain.CurrencyOption{},
		},
	}
	for _, option := range options {
		option(svc)
	}
	return svc
}

var _ portssvc.CatalogSvcFacade = (*catalogService)(nil)

// Load fetches the feed and replaces the catalog. Concurrent callers share one
// fetch, which runs detached from the caller's cancellation: only the feed's own
// timeout can fail it.
func (s *catalogService) Load(ctx context.Context) ([]domain.CurrencyOption, error) {
	fetchCtx := context.WithoutCancel(ctx)
	v, err, shared := s.loads.Do(catalogLoadKey, func() (interface{}, error) {
		return s.load(fetchCtx)
	})
	if shared {
		s.GetLogger(ctx).Debug("Catalog load shared with a concurrent caller")
	}
	if err != nil {
		return nil, err
	}
	return cloneOptions(v.([]domain.CurrencyOption)), nil
}

func (s *catalogService) load(ctx context.Context) ([]domain.CurrencyOption, error) {
	quotes, err := s.feed.FetchPrices(ctx)
	if err != nil {
		s.LogError(ctx, err, "Failed to load price catalog")
		s.replace(domain.Catalog{
			State:    domain.CatalogFailed,
			Options:  []domain.CurrencyOption{},
			LoadedAt: s.now(),
			Error:    err.Error(),
		})
		s.Metrics.ObserveCatalogLoad(metrics.OutcomeFailed, 0)
		return nil, fmt.Errorf("%w: %w", apperrors.ErrCatalogUnavailable, err)
	}

	options := domain.BuildOptions(quotes, s.noiseFloor)
	s.replace(domain.Catalog{
		State:    domain.CatalogReady,
		Options:  options,
		LoadedAt: s.now(),
	})
	s.Metrics.ObserveCatalogLoad(metrics.OutcomeReady, len(options))
	s.LogInfo(ctx, "Price catalog loaded",
		slog.Int("raw_quotes", len(quotes)),
		slog.Int("options", len(options)),
		slog.String("noise_floor", s.noiseFloor.String()))
	return options, nil
}

func (s *catalogService) replace(c domain.Catalog) {
	s.mu.Lock()
	s.catalog = c
	s.mu.Unlock()
}

// Snapshot returns a copy of the current catalog.
func (s *catalogService) Snapshot() domain.Catalog {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c := s.catalog
	c.Options = cloneOptions(c.Options)
	return c
}

// FindOption looks up an option in the current catalog.
func (s *catalogService) FindOption(id string) (domain.CurrencyOption, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.catalog.Find(id)
}

func cloneOptions(in []domain.CurrencyOption) []domain.CurrencyOption {
	out := make([]domain.CurrencyOption, len(in))
	copy(out, in)
	return out
}
