package repository

import (
	"gorm.io/gorm"

	"github.com/michaelcoll/card-collection-price-tracker/internal/services"
)

// Stores groups the gorm-backed stores sharing one database.
type Stores struct {
	Ownership services.OwnershipStore
	SetNames  services.SetNameStore
	Prices    services.MarketPriceStore
	Snapshots services.SnapshotStore
}

func NewStores(db *gorm.DB) Stores {
	return Stores{
		Ownership: NewOwnershipRepo(db),
		SetNames:  NewSetNameRepo(db),
		Prices:    NewMarketPriceRepo(db),
		Snapshots: NewSnapshotRepo(db),
	}
}
