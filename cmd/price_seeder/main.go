// Command price_seeder copies the HTTP price feed into the Postgres prices
// table, so the backend can run with PRICE_FEED_SOURCE=pgsql.
package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/SscSPs/currency_swapper/internal/adapters/pricefeed"
	"github.com/SscSPs/currency_swapper/internal/platform/config"
	"github.com/SscSPs/currency_swapper/internal/platform/logger"
	"github.com/SscSPs/currency_swapper/internal/repositories/database/pgsql"
	"github.com/SscSPs/currency_swapper/pkg/database"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		slog.Error("Failed to load config", slog.String("error", err.Error()))
		os.Exit(1)
	}
	log, logCloser := logger.New(logger.Options{
		Service: "price_seeder",
		Env:     cfg.AppEnv,
		Level:   cfg.LogLevel,
		File:    cfg.LogFile,
	})

	err = run(context.Background(), cfg, log)
	if err != nil {
		log.Error("Price seeding failed", slog.String("error", err.Error()))
	}
	_ = logCloser.Close()
	if err != nil {
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, log *slog.Logger) error {
	quotes, err := pricefeed.NewHTTPPriceFeed(cfg.PriceFeedURL, cfg.PriceFeedTimeout, log).FetchPrices(ctx)
	if err != nil {
		return err
	}
	log.Info("Fetched price feed", slog.Int("quotes", len(quotes)))

	dbPool, err := database.NewPgxPool(ctx, cfg.DatabaseURL, true)
	if err != nil {
		return err
	}
	defer database.ClosePgxPool(dbPool)

	if err := database.RunMigrations(cfg.DatabaseURL, cfg.MigrationsPath, log); err != nil {
		return err
	}

	repos := pgsql.NewRepositoryProvider(dbPool)
	if err := repos.PriceRepo.ReplacePrices(ctx, quotes); err != nil {
		return err
	}
	log.Info("Prices table replaced", slog.Int("rows", len(quotes)))
	return nil
}
