package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"github.com/michaelcoll/card-collection-price-tracker/internal/metrics"
)

// CardmarketIDSource finds the catalog product of a Scryfall card.
type CardmarketIDSource interface {
	CardmarketID(ctx context.Context, id uuid.UUID) (productID uint32, ok bool, err error)
}

// ProductIDUpdateResult summarizes an UpdateMissing pass.
type ProductIDUpdateResult struct {
	Candidates int `json:"candidates"`
	Updated    int `json:"updated"`
	NotFound   int `json:"not_found"`
	Failed     int `json:"failed"`
}

// ProductIDService links stored cards to their Cardmarket product.
type ProductIDService struct {
	ownership OwnershipStore
	source    CardmarketIDSource
}

func NewProductIDService(ownership OwnershipStore, source CardmarketIDSource) *ProductIDService {
	return &ProductIDService{ownership: ownership, source: source}
}

// UpdateMissing looks up every stored card without a product id. A failure
// on one card is logged and the pass moves on to the next.
func (s *ProductIDService) UpdateMissing(ctx context.Context) (ProductIDUpdateResult, error) {
	cards, err := s.ownership.CardsWithoutProductID(ctx)
	if err != nil {
		return ProductIDUpdateResult{}, fmt.Errorf("failed to list cards without product id: %w", err)
	}

	var result ProductIDUpdateResult
	for _, card := range cards {
		if !card.HasScryfallID() {
			continue
		}
		if err := ctx.Err(); err != nil {
			return result, err
		}
		result.Candidates++

		id, ok, err := s.source.CardmarketID(ctx, card.ScryfallID)
		if err != nil {
			result.Failed++
			log.Warnf("Product ids: failed to fetch Cardmarket id for %s: %v", card.Name, err)
			continue
		}
		if !ok {
			result.NotFound++
			log.Debugf("Product ids: %s has no Cardmarket product", card.Name)
			continue
		}

		if err := s.ownership.SetProductID(ctx, card.ID, id); err != nil {
			result.Failed++
			log.Warnf("Product ids: failed to save Cardmarket id %d for %s: %v", id, card.Name, err)
			continue
		}
		result.Updated++
		metrics.ProductIDsResolved.Inc()
		log.Debugf("Product ids: updated %s with Cardmarket id %d", card.Name, id)
	}

	log.Infof("Product ids: updated %d of %d cards (%d without product, %d failed)",
		result.Updated, result.Candidates, result.NotFound, result.Failed)
	return result, nil
}
