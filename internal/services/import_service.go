package services

import (
	"context"
	"fmt"

	log "github.com/sirupsen/logrus"

	"github.com/michaelcoll/card-collection-price-tracker/internal/metrics"
	"github.com/michaelcoll/card-collection-price-tracker/internal/models"
)

// ImportService replaces a user's collection with the content of an export.
type ImportService struct {
	ownership OwnershipStore
	setNames  SetNameStore
}

func NewImportService(ownership OwnershipStore, setNames SetNameStore) *ImportService {
	return &ImportService{ownership: ownership, setNames: setNames}
}

// ImportCollection parses text, registers unknown set names and swaps the
// user's ownership for the parsed cards. Nothing is written when parsing fails.
func (s *ImportService) ImportCollection(ctx context.Context, user models.UserID, text string) (models.ImportResult, error) {
	cards, err := ParseCollection(text)
	if err != nil {
		metrics.CollectionImportsTotal.WithLabelValues("invalid").Inc()
		log.Infof("Import: rejected collection of %s: %v", user, err)
		return models.ImportResult{}, err
	}

	result, err := s.store(ctx, user, cards)
	if err != nil {
		metrics.CollectionImportsTotal.WithLabelValues("failed").Inc()
		return models.ImportResult{}, err
	}

	metrics.CollectionImportsTotal.WithLabelValues("success").Inc()
	metrics.CollectionCardsImported.Add(float64(result.Cards))
	log.Infof("Import: stored %d cards (%d copies) for %s, %d new sets",
		result.Cards, result.TotalCopies, user, result.NewSets)
	return result, nil
}

func (s *ImportService) store(ctx context.Context, user models.UserID, cards []models.Card) (models.ImportResult, error) {
	result := models.ImportResult{User: user, Cards: len(cards)}

	seen := make(map[models.SetCode]bool)
	for _, card := range cards {
		result.TotalCopies += int(card.Quantity)

		if seen[card.ID.SetCode] {
			continue
		}
		seen[card.ID.SetCode] = true

		exists, err := s.setNames.Exists(ctx, card.ID.SetCode)
		if err != nil {
			return result, fmt.Errorf("failed to check set %s: %w", card.ID.SetCode, err)
		}
		if exists {
			continue
		}
		if err := s.setNames.Save(ctx, models.SetName{Code: card.ID.SetCode, Name: card.SetName}); err != nil {
			return result, fmt.Errorf("failed to register set %s: %w", card.ID.SetCode, err)
		}
		result.NewSets++
	}

	if err := s.ownership.ReplaceAll(ctx, user, cards); err != nil {
		return result, fmt.Errorf("failed to replace collection of %s: %w", user, err)
	}
	return result, nil
}

// Collection returns the cards a user owns.
func (s *ImportService) Collection(ctx context.Context, user models.UserID) ([]models.Card, error) {
	cards, err := s.ownership.OwnedCards(ctx, user)
	if err != nil {
		return nil, fmt.Errorf("failed to load collection of %s: %w", user, err)
	}
	return cards, nil
}
