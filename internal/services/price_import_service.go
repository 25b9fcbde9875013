package services

import (
	"context"
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/michaelcoll/card-collection-price-tracker/internal/metrics"
	"github.com/michaelcoll/card-collection-price-tracker/internal/models"
)

// PriceGuideSource provides the current catalog price guide.
type PriceGuideSource interface {
	FetchPriceGuides(ctx context.Context) (models.Date, []models.FullPriceGuide, error)
}

// PriceImportResult summarizes a price import.
type PriceImportResult struct {
	Date   models.Date `json:"date"`
	Guides int         `json:"guides"`
}

// PriceImportService stores the current price guide under its publication date.
type PriceImportService struct {
	source PriceGuideSource
	prices MarketPriceStore
}

func NewPriceImportService(source PriceGuideSource, prices MarketPriceStore) *PriceImportService {
	return &PriceImportService{source: source, prices: prices}
}

// ImportCurrentPrices fetches the guide and upserts it by (product, date).
// Importing the same guide twice leaves the store unchanged.
func (s *PriceImportService) ImportCurrentPrices(ctx context.Context) (PriceImportResult, error) {
	start := time.Now()

	date, guides, err := s.source.FetchPriceGuides(ctx)
	if err != nil {
		return PriceImportResult{}, err
	}

	log.Infof("Price import: importing %d prices for %s", len(guides), date)
	if err := s.prices.SaveBatch(ctx, date, guides); err != nil {
		return PriceImportResult{}, fmt.Errorf("failed to store prices for %s: %w", date, err)
	}

	metrics.PriceGuidesIngested.Add(float64(len(guides)))
	metrics.PriceImportDuration.Observe(time.Since(start).Seconds())
	return PriceImportResult{Date: date, Guides: len(guides)}, nil
}
