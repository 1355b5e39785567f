package pgsql

import (
	portsrepo "github.com/SscSPs/currency_swapper/internal/core/ports/repositories"
	"github.com/jackc/pgx/v5/pgxpool"
)

func NewRepositoryProvider(dbPool *pgxpool.Pool) portsrepo.RepositoryProvider {
	return portsrepo.RepositoryProvider{
		PriceRepo: newPgxPriceRepository(dbPool),
	}
}
