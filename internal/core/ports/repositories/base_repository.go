package repositories

import (
	"context"

	"github.com/jackc/pgx/v5"
)

// TransactionManager scopes multi-statement writes, such as replacing the
// prices table, to a single database transaction.
type TransactionManager interface {
	// Begin opens the transaction a price list replacement runs in.
	Begin(ctx context.Context) (pgx.Tx, error)

	// Commit makes the replaced price list visible to feed readers.
	Commit(ctx context.Context, tx pgx.Tx) error

	// Rollback discards a partial replacement. Rolling back a transaction that
	// already ended is not an error.
	Rollback(ctx context.Context, tx pgx.Tx) error
}

// RepositoryWithTx is implemented by stores whose writes need a transaction.
type RepositoryWithTx interface {
	TransactionManager
}
