package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/michaelcoll/card-collection-price-tracker/internal/models"
)

const priceChunkSize = 1000

type SetNameRepo struct {
	pool *pgxpool.Pool
}

func NewSetNameRepo(pool *pgxpool.Pool) *SetNameRepo {
	return &SetNameRepo{pool: pool}
}

func (r *SetNameRepo) Exists(ctx context.Context, code models.SetCode) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM set_name WHERE set_code = $1)`, string(code)).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to look up set %s: %w", code, err)
	}
	return exists, nil
}

func (r *SetNameRepo) Save(ctx context.Context, set models.SetName) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO set_name (set_code, name) VALUES ($1, $2) ON CONFLICT (set_code) DO NOTHING`,
		string(set.Code), set.Name)
	if err != nil {
		return fmt.Errorf("failed to save set %s: %w", set.Code, err)
	}
	return nil
}

type MarketPriceRepo struct {
	pool *pgxpool.Pool
}

func NewMarketPriceRepo(pool *pgxpool.Pool) *MarketPriceRepo {
	return &MarketPriceRepo{pool: pool}
}

const upsertPrice = `
	INSERT INTO cardmarket_price
		(id_produit, date, low, avg, trend, avg1, avg7, avg30,
		 foil_low, foil_avg, foil_trend, foil_avg1, foil_avg7, foil_avg30)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
	ON CONFLICT (id_produit, date) DO UPDATE SET
		low        = EXCLUDED.low,
		avg        = EXCLUDED.avg,
		trend      = EXCLUDED.trend,
		avg1       = EXCLUDED.avg1,
		avg7       = EXCLUDED.avg7,
		avg30      = EXCLUDED.avg30,
		foil_low   = EXCLUDED.foil_low,
		foil_avg   = EXCLUDED.foil_avg,
		foil_trend = EXCLUDED.foil_trend,
		foil_avg1  = EXCLUDED.foil_avg1,
		foil_avg7  = EXCLUDED.foil_avg7,
		foil_avg30 = EXCLUDED.foil_avg30`

// SaveBatch upserts guides in chunks inside a single transaction.
func (r *MarketPriceRepo) SaveBatch(ctx context.Context, date models.Date, guides []models.FullPriceGuide) error {
	err := pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		for start := 0; start < len(guides); start += priceChunkSize {
			end := min(start+priceChunkSize, len(guides))

			batch := &pgx.Batch{}
			for _, g := range guides[start:end] {
				batch.Queue(upsertPrice, int64(g.ProductID), date,
					g.Normal.Low, g.Normal.Avg, g.Normal.Trend, g.Normal.Avg1, g.Normal.Avg7, g.Normal.Avg30,
					g.Foil.Low, g.Foil.Avg, g.Foil.Trend, g.Foil.Avg1, g.Foil.Avg7, g.Foil.Avg30)
			}
			if err := tx.SendBatch(ctx, batch).Close(); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to save %d price guides for %s: %w", len(guides), date, err)
	}
	return nil
}

func (r *MarketPriceRepo) DistinctDates(ctx context.Context) ([]models.Date, error) {
	rows, err := r.pool.Query(ctx, `SELECT DISTINCT date FROM cardmarket_price ORDER BY date`)
	if err != nil {
		return nil, fmt.Errorf("failed to list price dates: %w", err)
	}
	defer rows.Close()

	var dates []models.Date
	for rows.Next() {
		var d models.Date
		if err := rows.Scan(&d); err != nil {
			return nil, err
		}
		dates = append(dates, d)
	}
	return dates, rows.Err()
}

func (r *MarketPriceRepo) Lookup(ctx context.Context, productID uint32, date models.Date) (models.FullPriceGuide, bool, error) {
	g := models.FullPriceGuide{ProductID: productID}
	err := r.pool.QueryRow(ctx, `
		SELECT low, avg, trend, avg1, avg7, avg30,
		       foil_low, foil_avg, foil_trend, foil_avg1, foil_avg7, foil_avg30
		FROM cardmarket_price
		WHERE id_produit = $1 AND date = $2`,
		int64(productID), date,
	).Scan(
		&g.Normal.Low, &g.Normal.Avg, &g.Normal.Trend, &g.Normal.Avg1, &g.Normal.Avg7, &g.Normal.Avg30,
		&g.Foil.Low, &g.Foil.Avg, &g.Foil.Trend, &g.Foil.Avg1, &g.Foil.Avg7, &g.Foil.Avg30,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return models.FullPriceGuide{}, false, nil
	}
	if err != nil {
		return models.FullPriceGuide{}, false, fmt.Errorf("failed to look up price of %d on %s: %w", productID, date, err)
	}
	return g, true, nil
}
