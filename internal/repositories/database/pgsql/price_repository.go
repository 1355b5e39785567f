package pgsql

import (
	"context"
	"fmt"

	"github.com/SscSPs/currency_swapper/internal/core/domain"
	portsrepo "github.com/SscSPs/currency_swapper/internal/core/ports/repositories"
	"github.com/SscSPs/currency_swapper/internal/models"
	"github.com/SscSPs/currency_swapper/internal/utils/mapping"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

type PgxPriceRepository struct {
	BaseRepository
}

// newPgxPriceRepository creates a new repository for raw price rows.
func newPgxPriceRepository(pool *pgxpool.Pool) portsrepo.PriceRepositoryFacade {
	return &PgxPriceRepository{
		BaseRepository: BaseRepository{Pool: pool},
	}
}

// Ensure implementation matches interface
var _ portsrepo.PriceRepositoryFacade = (*PgxPriceRepository)(nil)

// FetchPrices returns every stored price in insertion order.
func (r *PgxPriceRepository) FetchPrices(ctx context.Context) ([]domain.PriceQuote, error) {
	// NUMERIC is read as text so no precision is lost on the way to decimal.
	query := `
		SELECT position, currency, price::text, observed_at
		FROM prices
		ORDER BY position ASC;
	`
	rows, err := r.Pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query prices: %w", err)
	}
	defer rows.Close()

	var prices []models.Price
	for rows.Next() {
		var m models.Price
		var rawPrice string
		if err := rows.Scan(&m.Position, &m.CurrencyCode, &rawPrice, &m.ObservedAt); err != nil {
			return nil, fmt.Errorf("failed to scan price row: %w", err)
		}
		m.UnitPrice, err = decimal.NewFromString(rawPrice)
		if err != nil {
			return nil, fmt.Errorf("invalid price %q for %s: %w", rawPrice, m.CurrencyCode, err)
		}
		prices = append(prices, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating price rows: %w", err)
	}

	return mapping.ToDomainPriceQuoteSlice(prices), nil
}

// ReplacePrices swaps the stored price list for quotes in a single transaction,
// keeping their order.
func (r *PgxPriceRepository) ReplacePrices(ctx context.Context, quotes []domain.PriceQuote) (err error) {
	tx, err := r.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = r.Rollback(ctx, tx)
		}
	}()

	if _, err = tx.Exec(ctx, `TRUNCATE prices RESTART IDENTITY;`); err != nil {
		return fmt.Errorf("failed to clear prices: %w", err)
	}

	batch := &pgx.Batch{}
	for _, q := range quotes {
		m := mapping.ToModelPrice(q)
		batch.Queue(`INSERT INTO prices (currency, price) VALUES ($1, $2::numeric);`, m.CurrencyCode, m.UnitPrice.String())
	}
	if err = tx.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("failed to insert %d prices: %w", len(quotes), err)
	}

	return r.Commit(ctx, tx)
}
