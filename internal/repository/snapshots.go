package repository

import (
	"context"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/michaelcoll/card-collection-price-tracker/internal/models"
)

type SnapshotRepo struct {
	db *gorm.DB
}

func NewSnapshotRepo(db *gorm.DB) *SnapshotRepo {
	return &SnapshotRepo{db: db}
}

func (r *SnapshotRepo) ExistingKeys(ctx context.Context) ([]models.ValuationKey, error) {
	var recs []models.CollectionPriceHistoryRecord
	err := r.db.WithContext(ctx).
		Select("date", "user_id").
		Find(&recs).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list valuation keys: %w", err)
	}

	keys := make([]models.ValuationKey, len(recs))
	for i, rec := range recs {
		keys[i] = models.ValuationKey{Date: rec.Date, User: models.UserID(rec.UserID)}
	}
	return keys, nil
}

// Insert stores the snapshot unless one already exists for its key.
func (r *SnapshotRepo) Insert(ctx context.Context, snapshot models.ValuationSnapshot) error {
	rec := snapshot.ToRecord()
	result := r.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(&rec)
	if result.Error != nil {
		return fmt.Errorf("failed to save valuation of %s on %s: %w", snapshot.User, snapshot.Date, result.Error)
	}
	if result.RowsAffected == 0 {
		return models.ErrSnapshotExists
	}
	return nil
}

func (r *SnapshotRepo) History(ctx context.Context, user models.UserID, from models.Date) ([]models.ValuationSnapshot, error) {
	query := r.db.WithContext(ctx).
		Where("user_id = ?", string(user)).
		Order("date ASC")
	if !from.IsZero() {
		query = query.Where("date >= ?", from)
	}

	var recs []models.CollectionPriceHistoryRecord
	if err := query.Find(&recs).Error; err != nil {
		return nil, fmt.Errorf("failed to load valuation history of %s: %w", user, err)
	}

	snapshots := make([]models.ValuationSnapshot, len(recs))
	for i, rec := range recs {
		snapshots[i] = rec.Snapshot()
	}
	return snapshots, nil
}
