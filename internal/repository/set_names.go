package repository

import (
	"context"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/michaelcoll/card-collection-price-tracker/internal/models"
)

type SetNameRepo struct {
	db *gorm.DB
}

func NewSetNameRepo(db *gorm.DB) *SetNameRepo {
	return &SetNameRepo{db: db}
}

func (r *SetNameRepo) Exists(ctx context.Context, code models.SetCode) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.SetNameRecord{}).
		Where("set_code = ?", string(code)).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("failed to look up set %s: %w", code, err)
	}
	return count > 0, nil
}

// Save stores a set name; an existing name for the code is kept.
func (r *SetNameRepo) Save(ctx context.Context, set models.SetName) error {
	rec := models.SetNameRecord{SetCode: string(set.Code), Name: set.Name}
	if err := r.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(&rec).Error; err != nil {
		return fmt.Errorf("failed to save set %s: %w", set.Code, err)
	}
	return nil
}
