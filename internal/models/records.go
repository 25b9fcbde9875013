package models

import (
	"time"

	"github.com/google/uuid"
)

// CardRecord is the catalog row for one printing, shared by all users.
type CardRecord struct {
	SetCode         string    `gorm:"primaryKey;size:3"`
	CollectorNumber string    `gorm:"primaryKey"`
	LanguageCode    string    `gorm:"primaryKey;size:2"`
	Foil            bool      `gorm:"primaryKey"`
	Name            string    `gorm:"not null;index"`
	ScryfallID      uuid.UUID `gorm:"type:varchar(36);index"`
	CardmarketID    *uint32   `gorm:"index"`
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

func (CardRecord) TableName() string { return "card" }

// CardQuantityRecord is a user's ownership of one printing.
type CardQuantityRecord struct {
	SetCode         string `gorm:"primaryKey;size:3"`
	CollectorNumber string `gorm:"primaryKey"`
	LanguageCode    string `gorm:"primaryKey;size:2"`
	Foil            bool   `gorm:"primaryKey"`
	UserID          string `gorm:"primaryKey;index"`
	Quantity        int    `gorm:"not null"`
	PurchasePrice   int64  `gorm:"not null;default:0"` // cents
}

func (CardQuantityRecord) TableName() string { return "card_quantity" }

// SetNameRecord maps a set code to its display name.
type SetNameRecord struct {
	SetCode string `gorm:"primaryKey;size:3"`
	Name    string `gorm:"not null"`
}

func (SetNameRecord) TableName() string { return "set_name" }

// CardmarketPriceRecord is one product's price guide on one day.
type CardmarketPriceRecord struct {
	ProductID uint32     `gorm:"primaryKey;column:id_produit;autoIncrement:false"`
	Date      Date       `gorm:"primaryKey;index"`
	Normal    PriceGuide `gorm:"embedded"`
	Foil      PriceGuide `gorm:"embedded;embeddedPrefix:foil_"`
}

func (CardmarketPriceRecord) TableName() string { return "cardmarket_price" }

// CollectionPriceHistoryRecord is a persisted valuation snapshot.
type CollectionPriceHistoryRecord struct {
	Date      Date       `gorm:"primaryKey"`
	UserID    string     `gorm:"primaryKey"`
	Total     PriceGuide `gorm:"embedded"`
	CreatedAt time.Time
}

func (CollectionPriceHistoryRecord) TableName() string { return "collection_price_history" }

// AllRecords lists every persisted type, in migration order.
func AllRecords() []any {
	return []any{
		&SetNameRecord{},
		&CardRecord{},
		&CardQuantityRecord{},
		&CardmarketPriceRecord{},
		&CollectionPriceHistoryRecord{},
	}
}

// recordKey returns the column values identifying a printing.
func (id CardID) recordKey() (string, string, string, bool) {
	return string(id.SetCode), id.CollectorNumber, string(id.Language), id.Foil
}

// ToRecords splits a card into its catalog and ownership rows.
func (c Card) ToRecords(user UserID) (CardRecord, CardQuantityRecord) {
	set, num, lang, foil := c.ID.recordKey()
	return CardRecord{
			SetCode:         set,
			CollectorNumber: num,
			LanguageCode:    lang,
			Foil:            foil,
			Name:            c.Name,
			ScryfallID:      c.ScryfallID,
			CardmarketID:    c.CardmarketID,
		}, CardQuantityRecord{
			SetCode:         set,
			CollectorNumber: num,
			LanguageCode:    lang,
			Foil:            foil,
			UserID:          string(user),
			Quantity:        int(c.Quantity),
			PurchasePrice:   c.PurchasePrice,
		}
}

// ID returns the printing a catalog row describes.
func (r CardRecord) ID() CardID {
	return CardID{
		SetCode:         SetCode(r.SetCode),
		CollectorNumber: r.CollectorNumber,
		Language:        LanguageCode(r.LanguageCode),
		Foil:            r.Foil,
	}
}

// ToRecord converts a snapshot for storage.
func (s ValuationSnapshot) ToRecord() CollectionPriceHistoryRecord {
	return CollectionPriceHistoryRecord{
		Date:      s.Date,
		UserID:    string(s.User),
		Total:     s.Total,
		CreatedAt: s.CreatedAt,
	}
}

// Snapshot converts a stored row back to the domain type.
func (r CollectionPriceHistoryRecord) Snapshot() ValuationSnapshot {
	return ValuationSnapshot{
		Date:      r.Date,
		User:      UserID(r.UserID),
		Total:     r.Total,
		CreatedAt: r.CreatedAt,
	}
}

// Guide converts a stored price row back to the domain type.
func (r CardmarketPriceRecord) Guide() FullPriceGuide {
	return FullPriceGuide{ProductID: r.ProductID, Normal: r.Normal, Foil: r.Foil}
}

// ToCard builds the domain card from a catalog row and the owner's quantity row values.
func (r CardRecord) ToCard(setName string, quantity int, purchasePrice int64) Card {
	if quantity < 0 {
		quantity = 0
	} else if quantity > 255 {
		quantity = 255
	}
	return Card{
		ID:            r.ID(),
		Name:          r.Name,
		SetName:       setName,
		Quantity:      uint8(quantity),
		PurchasePrice: purchasePrice,
		ScryfallID:    r.ScryfallID,
		CardmarketID:  r.CardmarketID,
	}
}
