package postgres

import (
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/michaelcoll/card-collection-price-tracker/internal/repository"
)

// NewStores returns pgx-backed stores sharing pool.
func NewStores(pool *pgxpool.Pool) repository.Stores {
	return repository.Stores{
		Ownership: NewOwnershipRepo(pool),
		SetNames:  NewSetNameRepo(pool),
		Prices:    NewMarketPriceRepo(pool),
		Snapshots: NewSnapshotRepo(pool),
	}
}
