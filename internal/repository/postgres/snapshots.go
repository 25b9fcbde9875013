package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/michaelcoll/card-collection-price-tracker/internal/models"
)

type SnapshotRepo struct {
	pool *pgxpool.Pool
}

func NewSnapshotRepo(pool *pgxpool.Pool) *SnapshotRepo {
	return &SnapshotRepo{pool: pool}
}

func (r *SnapshotRepo) ExistingKeys(ctx context.Context) ([]models.ValuationKey, error) {
	rows, err := r.pool.Query(ctx, `SELECT date, user_id FROM collection_price_history`)
	if err != nil {
		return nil, fmt.Errorf("failed to list valuation keys: %w", err)
	}
	defer rows.Close()

	var keys []models.ValuationKey
	for rows.Next() {
		var k models.ValuationKey
		var user string
		if err := rows.Scan(&k.Date, &user); err != nil {
			return nil, err
		}
		k.User = models.UserID(user)
		keys = append(keys, k)
	}
	return keys, rows.Err()
}

func (r *SnapshotRepo) Insert(ctx context.Context, s models.ValuationSnapshot) error {
	tag, err := r.pool.Exec(ctx, `
		INSERT INTO collection_price_history (date, user_id, low, avg, trend, avg1, avg7, avg30, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (date, user_id) DO NOTHING`,
		s.Date, string(s.User),
		s.Total.Low, s.Total.Avg, s.Total.Trend, s.Total.Avg1, s.Total.Avg7, s.Total.Avg30,
		s.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to save valuation of %s on %s: %w", s.User, s.Date, err)
	}
	if tag.RowsAffected() == 0 {
		return models.ErrSnapshotExists
	}
	return nil
}

func (r *SnapshotRepo) History(ctx context.Context, user models.UserID, from models.Date) ([]models.ValuationSnapshot, error) {
	query := `
		SELECT date, user_id, low, avg, trend, avg1, avg7, avg30, created_at
		FROM collection_price_history
		WHERE user_id = $1`
	args := []any{string(user)}
	if !from.IsZero() {
		query += ` AND date >= $2`
		args = append(args, from)
	}
	query += ` ORDER BY date ASC`

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to load valuation history of %s: %w", user, err)
	}
	defer rows.Close()

	var out []models.ValuationSnapshot
	for rows.Next() {
		var s models.ValuationSnapshot
		var id string
		if err := rows.Scan(&s.Date, &id,
			&s.Total.Low, &s.Total.Avg, &s.Total.Trend, &s.Total.Avg1, &s.Total.Avg7, &s.Total.Avg30,
			&s.CreatedAt); err != nil {
			return nil, err
		}
		s.User = models.UserID(id)
		out = append(out, s)
	}
	return out, rows.Err()
}
