// Package app builds the services shared by the HTTP server and the ccpt command.
package app

import (
	"context"
	"fmt"
	"net/http"

	log "github.com/sirupsen/logrus"

	"github.com/michaelcoll/card-collection-price-tracker/internal/api"
	"github.com/michaelcoll/card-collection-price-tracker/internal/config"
	"github.com/michaelcoll/card-collection-price-tracker/internal/database"
	"github.com/michaelcoll/card-collection-price-tracker/internal/events"
	"github.com/michaelcoll/card-collection-price-tracker/internal/repository"
	"github.com/michaelcoll/card-collection-price-tracker/internal/repository/postgres"
	"github.com/michaelcoll/card-collection-price-tracker/internal/services"
)

type App struct {
	Imports    *services.ImportService
	Prices     *services.PriceImportService
	ProductIDs *services.ProductIDService
	Valuations *services.ValuationScheduler
	CardInfo   *services.EDHRECService
	Worker     *services.Worker

	publisher *events.Publisher
	closers   []func()
}

// New opens the configured store and the NATS connection, then wires every service.
func New(ctx context.Context, cfg *config.Config) (*App, error) {
	a := &App{}

	stores, err := a.openStores(ctx, cfg)
	if err != nil {
		return nil, err
	}

	publisher, err := events.Connect(cfg.NATSURL, cfg.NATSToken)
	if err != nil {
		a.Close()
		return nil, err
	}
	a.publisher = publisher

	scryfall := services.NewScryfallService(cfg.ScryfallBaseURL, cfg.ScryfallRatePerSecond)

	a.Imports = services.NewImportService(stores.Ownership, stores.SetNames)
	a.Prices = services.NewPriceImportService(services.NewCardmarketService(cfg.CardmarketPriceGuidesURL), stores.Prices)
	a.ProductIDs = services.NewProductIDService(stores.Ownership, scryfall)
	a.Valuations = services.NewValuationScheduler(stores.Ownership, stores.Prices, stores.Snapshots, services.StoredProductIDs{}).
		WithInterval(cfg.ValuationInterval)
	if publisher != nil {
		a.Valuations.WithPublisher(publisher)
	}
	a.CardInfo = services.NewEDHRECService(cfg.EDHRECBaseURL, nil)
	a.Worker = services.NewWorker(a.Prices, a.ProductIDs, a.Valuations, cfg.PriceImportInterval)

	return a, nil
}

func (a *App) openStores(ctx context.Context, cfg *config.Config) (repository.Stores, error) {
	switch cfg.DBDriver {
	case config.DriverPostgres:
		pool, err := database.ConnectPostgres(ctx, cfg.DatabaseURL)
		if err != nil {
			return repository.Stores{}, fmt.Errorf("failed to connect to postgres: %w", err)
		}
		a.closers = append(a.closers, pool.Close)
		log.Info("Database: using postgres")
		return postgres.NewStores(pool), nil
	default:
		if err := database.Initialize(cfg.DBPath); err != nil {
			return repository.Stores{}, fmt.Errorf("failed to initialize database: %w", err)
		}
		db := database.GetDB()
		if sqlDB, err := db.DB(); err == nil {
			a.closers = append(a.closers, func() { _ = sqlDB.Close() })
		}
		return repository.NewStores(db), nil
	}
}

// Router returns the HTTP API over the app's services.
func (a *App) Router(cfg *config.Config) http.Handler {
	s := api.Services{
		Imports:        a.Imports,
		Prices:         a.Prices,
		ProductIDs:     a.ProductIDs,
		Valuations:     a.Valuations,
		CardInfo:       a.CardInfo,
		MaxImportBytes: cfg.MaxImportBytes,
		AllowedOrigins: cfg.CORSAllowedOrigins,
	}
	if cfg.WorkerEnabled {
		s.Worker = a.Worker
	}
	return api.SetupRouter(s)
}

// Close drains the event connection and closes the store.
func (a *App) Close() {
	a.publisher.Close()
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
}
