// Package repository implements the service stores on top of gorm.
package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/michaelcoll/card-collection-price-tracker/internal/models"
)

const cardJoin = `JOIN card c ON c.set_code = cq.set_code
	AND c.collector_number = cq.collector_number
	AND c.language_code = cq.language_code
	AND c.foil = cq.foil`

type OwnershipRepo struct {
	db *gorm.DB
}

func NewOwnershipRepo(db *gorm.DB) *OwnershipRepo {
	return &OwnershipRepo{db: db}
}

type ownedCardRow struct {
	SetCode         string
	CollectorNumber string
	LanguageCode    string
	Foil            bool
	Name            string
	ScryfallID      string
	CardmarketID    *uint32
	SetName         *string
	Quantity        int
	PurchasePrice   int64
}

func (r ownedCardRow) card() models.Card {
	rec := models.CardRecord{
		SetCode:         r.SetCode,
		CollectorNumber: r.CollectorNumber,
		LanguageCode:    r.LanguageCode,
		Foil:            r.Foil,
		Name:            r.Name,
		CardmarketID:    r.CardmarketID,
	}
	if id, err := uuid.Parse(r.ScryfallID); err == nil {
		rec.ScryfallID = id
	}
	setName := ""
	if r.SetName != nil {
		setName = *r.SetName
	}
	return rec.ToCard(setName, r.Quantity, r.PurchasePrice)
}

func (o *OwnershipRepo) OwnedCards(ctx context.Context, user models.UserID) ([]models.Card, error) {
	var rows []ownedCardRow
	err := o.db.WithContext(ctx).
		Table("card_quantity AS cq").
		Select(`c.set_code, c.collector_number, c.language_code, c.foil, c.name,
			c.scryfall_id, c.cardmarket_id, sn.name AS set_name, cq.quantity, cq.purchase_price`).
		Joins(cardJoin).
		Joins("LEFT JOIN set_name sn ON sn.set_code = c.set_code").
		Where("cq.user_id = ?", string(user)).
		Order("c.set_code, c.collector_number, c.language_code, c.foil").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load cards of %s: %w", user, err)
	}

	cards := make([]models.Card, len(rows))
	for i, row := range rows {
		cards[i] = row.card()
	}
	return cards, nil
}

// ReplaceAll deletes the user's ownership and inserts cards in one transaction.
// Catalog rows that already exist are left untouched.
func (o *OwnershipRepo) ReplaceAll(ctx context.Context, user models.UserID, cards []models.Card) error {
	return o.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("user_id = ?", string(user)).Delete(&models.CardQuantityRecord{}).Error; err != nil {
			return fmt.Errorf("failed to delete cards of %s: %w", user, err)
		}

		for _, card := range cards {
			cardRec, qtyRec := card.ToRecords(user)

			if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&cardRec).Error; err != nil {
				return fmt.Errorf("failed to save card %s/%s: %w", card.ID.SetCode, card.ID.CollectorNumber, err)
			}

			err := tx.Clauses(clause.OnConflict{
				Columns: []clause.Column{
					{Name: "set_code"}, {Name: "collector_number"}, {Name: "language_code"},
					{Name: "foil"}, {Name: "user_id"},
				},
				DoUpdates: clause.AssignmentColumns([]string{"quantity", "purchase_price"}),
			}).Create(&qtyRec).Error
			if err != nil {
				return fmt.Errorf("failed to save quantity of %s/%s: %w", card.ID.SetCode, card.ID.CollectorNumber, err)
			}
		}
		return nil
	})
}

func (o *OwnershipRepo) DistinctUsers(ctx context.Context) ([]models.UserID, error) {
	var ids []string
	err := o.db.WithContext(ctx).
		Model(&models.CardQuantityRecord{}).
		Distinct("user_id").
		Order("user_id").
		Pluck("user_id", &ids).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}

	users := make([]models.UserID, len(ids))
	for i, id := range ids {
		users[i] = models.UserID(id)
	}
	return users, nil
}

func (o *OwnershipRepo) CardsWithoutProductID(ctx context.Context) ([]models.Card, error) {
	var recs []models.CardRecord
	err := o.db.WithContext(ctx).
		Where("cardmarket_id IS NULL").
		Order("set_code, collector_number").
		Find(&recs).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list cards without cardmarket id: %w", err)
	}

	cards := make([]models.Card, len(recs))
	for i, rec := range recs {
		cards[i] = rec.ToCard("", 0, 0)
	}
	return cards, nil
}

func (o *OwnershipRepo) SetProductID(ctx context.Context, id models.CardID, productID uint32) error {
	err := o.db.WithContext(ctx).
		Model(&models.CardRecord{}).
		Where("set_code = ? AND collector_number = ? AND language_code = ? AND foil = ?",
			string(id.SetCode), id.CollectorNumber, string(id.Language), id.Foil).
		Update("cardmarket_id", productID).Error
	if err != nil {
		return fmt.Errorf("failed to save cardmarket id %d: %w", productID, err)
	}
	return nil
}
