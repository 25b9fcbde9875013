package services

import (
	"context"

	"github.com/michaelcoll/card-collection-price-tracker/internal/models"
)

// OwnershipStore persists which cards each user owns.
type OwnershipStore interface {
	// OwnedCards returns every card the user owns with its quantity.
	OwnedCards(ctx context.Context, user models.UserID) ([]models.Card, error)
	// ReplaceAll swaps the user's whole ownership set for cards.
	ReplaceAll(ctx context.Context, user models.UserID, cards []models.Card) error
	// DistinctUsers returns every user owning at least one card.
	DistinctUsers(ctx context.Context) ([]models.UserID, error)
	// CardsWithoutProductID returns known printings not yet linked to a catalog product.
	CardsWithoutProductID(ctx context.Context) ([]models.Card, error)
	// SetProductID links a printing to its catalog product.
	SetProductID(ctx context.Context, id models.CardID, productID uint32) error
}

// SetNameStore persists set display names.
type SetNameStore interface {
	Exists(ctx context.Context, code models.SetCode) (bool, error)
	Save(ctx context.Context, set models.SetName) error
}

// MarketPriceStore persists dated catalog price guides.
type MarketPriceStore interface {
	// SaveBatch upserts guides for date, keyed by product.
	SaveBatch(ctx context.Context, date models.Date, guides []models.FullPriceGuide) error
	// DistinctDates returns every date with at least one price.
	DistinctDates(ctx context.Context) ([]models.Date, error)
	// Lookup returns the guide for a product on a date; ok is false when absent.
	Lookup(ctx context.Context, productID uint32, date models.Date) (guide models.FullPriceGuide, ok bool, err error)
}

// SnapshotStore persists valuation snapshots.
type SnapshotStore interface {
	ExistingKeys(ctx context.Context) ([]models.ValuationKey, error)
	// Insert stores a snapshot, returning models.ErrSnapshotExists when its key is taken.
	Insert(ctx context.Context, snapshot models.ValuationSnapshot) error
	History(ctx context.Context, user models.UserID, from models.Date) ([]models.ValuationSnapshot, error)
}

// ProductIDResolver maps an owned card to its catalog product.
type ProductIDResolver interface {
	ResolveProductID(ctx context.Context, card models.Card) (productID uint32, ok bool, err error)
}

// StoredProductIDs resolves product ids from the id saved on the card.
type StoredProductIDs struct{}

func (StoredProductIDs) ResolveProductID(_ context.Context, card models.Card) (uint32, bool, error) {
	if card.CardmarketID == nil {
		return 0, false, nil
	}
	return *card.CardmarketID, true, nil
}
