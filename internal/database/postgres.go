package database

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	log "github.com/sirupsen/logrus"
)

// ConnectPostgres opens a pgx pool and checks it answers.
func ConnectPostgres(ctx context.Context, dsn string) (*pgxpool.Pool, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse dsn: %w", err)
	}

	cfg.MaxConns = 10
	cfg.MinConns = 1
	cfg.MaxConnIdleTime = 30 * time.Second
	cfg.MaxConnLifetime = 5 * time.Minute

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	p, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("create pool: %w", err)
	}

	if err := p.Ping(ctx); err != nil {
		p.Close()
		return nil, fmt.Errorf("ping: %w", err)
	}

	if err := EnsurePostgresSchema(ctx, p); err != nil {
		p.Close()
		return nil, err
	}

	log.Info("Postgres connected successfully")
	return p, nil
}

const postgresSchema = `
CREATE TABLE IF NOT EXISTS set_name (
    set_code VARCHAR(3) PRIMARY KEY,
    name     TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS card (
    set_code         VARCHAR(3) NOT NULL,
    collector_number TEXT       NOT NULL,
    language_code    VARCHAR(2) NOT NULL,
    foil             BOOLEAN    NOT NULL,
    name             TEXT       NOT NULL,
    scryfall_id      VARCHAR(36),
    cardmarket_id    BIGINT,
    created_at       TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    updated_at       TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    PRIMARY KEY (set_code, collector_number, language_code, foil)
);

CREATE TABLE IF NOT EXISTS card_quantity (
    set_code         VARCHAR(3) NOT NULL,
    collector_number TEXT       NOT NULL,
    language_code    VARCHAR(2) NOT NULL,
    foil             BOOLEAN    NOT NULL,
    user_id          TEXT       NOT NULL,
    quantity         INTEGER    NOT NULL,
    purchase_price   BIGINT     NOT NULL DEFAULT 0,
    PRIMARY KEY (set_code, collector_number, language_code, foil, user_id)
);

CREATE TABLE IF NOT EXISTS cardmarket_price (
    id_produit  BIGINT NOT NULL,
    date        DATE   NOT NULL,
    low         BIGINT,
    avg         BIGINT,
    trend       BIGINT,
    avg1        BIGINT,
    avg7        BIGINT,
    avg30       BIGINT,
    foil_low    BIGINT,
    foil_avg    BIGINT,
    foil_trend  BIGINT,
    foil_avg1   BIGINT,
    foil_avg7   BIGINT,
    foil_avg30  BIGINT,
    PRIMARY KEY (id_produit, date)
);

CREATE TABLE IF NOT EXISTS collection_price_history (
    date       DATE NOT NULL,
    user_id    TEXT NOT NULL,
    low        BIGINT,
    avg        BIGINT,
    trend      BIGINT,
    avg1       BIGINT,
    avg7       BIGINT,
    avg30      BIGINT,
    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    PRIMARY KEY (date, user_id)
);

CREATE INDEX IF NOT EXISTS idx_card_quantity_user ON card_quantity (user_id);
CREATE INDEX IF NOT EXISTS idx_cardmarket_price_date ON cardmarket_price (date);
`

// EnsurePostgresSchema creates the tables when missing. It uses the same
// table and column names as the sqlite schema.
func EnsurePostgresSchema(ctx context.Context, p *pgxpool.Pool) error {
	if _, err := p.Exec(ctx, postgresSchema); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	return nil
}
