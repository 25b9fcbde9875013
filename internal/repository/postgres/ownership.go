// Package postgres implements the service stores with pgx for PostgreSQL deployments.
package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/michaelcoll/card-collection-price-tracker/internal/models"
)

type OwnershipRepo struct {
	pool *pgxpool.Pool
}

func NewOwnershipRepo(pool *pgxpool.Pool) *OwnershipRepo {
	return &OwnershipRepo{pool: pool}
}

func (r *OwnershipRepo) OwnedCards(ctx context.Context, user models.UserID) ([]models.Card, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT c.set_code, c.collector_number, c.language_code, c.foil, c.name,
		       c.scryfall_id, c.cardmarket_id, COALESCE(sn.name, ''), cq.quantity, cq.purchase_price
		FROM card_quantity cq
		JOIN card c ON c.set_code = cq.set_code
			AND c.collector_number = cq.collector_number
			AND c.language_code = cq.language_code
			AND c.foil = cq.foil
		LEFT JOIN set_name sn ON sn.set_code = c.set_code
		WHERE cq.user_id = $1
		ORDER BY c.set_code, c.collector_number, c.language_code, c.foil`,
		string(user),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load cards of %s: %w", user, err)
	}
	defer rows.Close()

	var cards []models.Card
	for rows.Next() {
		var (
			rec      models.CardRecord
			scryfall *string
			product  *int64
			setName  string
			quantity int
			price    int64
		)
		if err := rows.Scan(&rec.SetCode, &rec.CollectorNumber, &rec.LanguageCode, &rec.Foil, &rec.Name,
			&scryfall, &product, &setName, &quantity, &price); err != nil {
			return nil, err
		}
		applyOptional(&rec, scryfall, product)
		cards = append(cards, rec.ToCard(setName, quantity, price))
	}
	return cards, rows.Err()
}

// ReplaceAll deletes the user's ownership and inserts cards in one transaction.
func (r *OwnershipRepo) ReplaceAll(ctx context.Context, user models.UserID, cards []models.Card) error {
	return pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `DELETE FROM card_quantity WHERE user_id = $1`, string(user)); err != nil {
			return fmt.Errorf("failed to delete cards of %s: %w", user, err)
		}

		batch := &pgx.Batch{}
		for _, card := range cards {
			c, q := card.ToRecords(user)
			batch.Queue(`
				INSERT INTO card (set_code, collector_number, language_code, foil, name, scryfall_id, cardmarket_id)
				VALUES ($1, $2, $3, $4, $5, $6, $7)
				ON CONFLICT (set_code, collector_number, language_code, foil) DO NOTHING`,
				c.SetCode, c.CollectorNumber, c.LanguageCode, c.Foil, c.Name, c.ScryfallID.String(), nullableID(c.CardmarketID))
			batch.Queue(`
				INSERT INTO card_quantity (set_code, collector_number, language_code, foil, user_id, quantity, purchase_price)
				VALUES ($1, $2, $3, $4, $5, $6, $7)
				ON CONFLICT (set_code, collector_number, language_code, foil, user_id)
				DO UPDATE SET quantity = EXCLUDED.quantity, purchase_price = EXCLUDED.purchase_price`,
				q.SetCode, q.CollectorNumber, q.LanguageCode, q.Foil, q.UserID, q.Quantity, q.PurchasePrice)
		}
		if err := tx.SendBatch(ctx, batch).Close(); err != nil {
			return fmt.Errorf("failed to save cards of %s: %w", user, err)
		}
		return nil
	})
}

func (r *OwnershipRepo) DistinctUsers(ctx context.Context) ([]models.UserID, error) {
	rows, err := r.pool.Query(ctx, `SELECT DISTINCT user_id FROM card_quantity ORDER BY user_id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	defer rows.Close()

	var users []models.UserID
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		users = append(users, models.UserID(id))
	}
	return users, rows.Err()
}

func (r *OwnershipRepo) CardsWithoutProductID(ctx context.Context) ([]models.Card, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT set_code, collector_number, language_code, foil, name, scryfall_id
		FROM card
		WHERE cardmarket_id IS NULL
		ORDER BY set_code, collector_number`)
	if err != nil {
		return nil, fmt.Errorf("failed to list cards without cardmarket id: %w", err)
	}
	defer rows.Close()

	var cards []models.Card
	for rows.Next() {
		var rec models.CardRecord
		var scryfall *string
		if err := rows.Scan(&rec.SetCode, &rec.CollectorNumber, &rec.LanguageCode, &rec.Foil, &rec.Name, &scryfall); err != nil {
			return nil, err
		}
		applyOptional(&rec, scryfall, nil)
		cards = append(cards, rec.ToCard("", 0, 0))
	}
	return cards, rows.Err()
}

func (r *OwnershipRepo) SetProductID(ctx context.Context, id models.CardID, productID uint32) error {
	_, err := r.pool.Exec(ctx, `
		UPDATE card SET cardmarket_id = $5, updated_at = NOW()
		WHERE set_code = $1 AND collector_number = $2 AND language_code = $3 AND foil = $4`,
		string(id.SetCode), id.CollectorNumber, string(id.Language), id.Foil, int64(productID))
	if err != nil {
		return fmt.Errorf("failed to save cardmarket id %d: %w", productID, err)
	}
	return nil
}

// --- helpers ---

func applyOptional(rec *models.CardRecord, scryfall *string, product *int64) {
	if scryfall != nil {
		if id, err := uuid.Parse(*scryfall); err == nil {
			rec.ScryfallID = id
		}
	}
	if product != nil {
		v := uint32(*product)
		rec.CardmarketID = &v
	}
}

func nullableID(id *uint32) *int64 {
	if id == nil {
		return nil
	}
	v := int64(*id)
	return &v
}
