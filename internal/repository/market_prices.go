package repository

import (
	"context"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/michaelcoll/card-collection-price-tracker/internal/models"
)

// priceChunkSize bounds rows per INSERT; 14 columns each stays under sqlite's variable limit.
const priceChunkSize = 1000

type MarketPriceRepo struct {
	db *gorm.DB
}

func NewMarketPriceRepo(db *gorm.DB) *MarketPriceRepo {
	return &MarketPriceRepo{db: db}
}

func (r *MarketPriceRepo) SaveBatch(ctx context.Context, date models.Date, guides []models.FullPriceGuide) error {
	if len(guides) == 0 {
		return nil
	}

	recs := make([]models.CardmarketPriceRecord, len(guides))
	for i, g := range guides {
		recs[i] = models.CardmarketPriceRecord{
			ProductID: g.ProductID,
			Date:      date,
			Normal:    g.Normal,
			Foil:      g.Foil,
		}
	}

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id_produit"}, {Name: "date"}},
			UpdateAll: true,
		}).CreateInBatches(&recs, priceChunkSize).Error
	})
	if err != nil {
		return fmt.Errorf("failed to save %d price guides for %s: %w", len(guides), date, err)
	}
	return nil
}

func (r *MarketPriceRepo) DistinctDates(ctx context.Context) ([]models.Date, error) {
	var dates []models.Date
	err := r.db.WithContext(ctx).
		Model(&models.CardmarketPriceRecord{}).
		Distinct("date").
		Order("date").
		Pluck("date", &dates).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list price dates: %w", err)
	}
	return dates, nil
}

func (r *MarketPriceRepo) Lookup(ctx context.Context, productID uint32, date models.Date) (models.FullPriceGuide, bool, error) {
	var recs []models.CardmarketPriceRecord
	err := r.db.WithContext(ctx).
		Where("id_produit = ? AND date = ?", productID, date).
		Limit(1).
		Find(&recs).Error
	if err != nil {
		return models.FullPriceGuide{}, false, fmt.Errorf("failed to look up price of %d on %s: %w", productID, date, err)
	}
	if len(recs) == 0 {
		return models.FullPriceGuide{}, false, nil
	}
	return recs[0].Guide(), true, nil
}

// Count returns the number of stored price rows for date.
func (r *MarketPriceRepo) Count(ctx context.Context, date models.Date) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).
		Model(&models.CardmarketPriceRecord{}).
		Where("date = ?", date).
		Count(&n).Error
	return n, err
}
