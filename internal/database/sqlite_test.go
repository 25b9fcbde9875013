package database

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/michaelcoll/card-collection-price-tracker/internal/models"
)

func TestOpenCreatesSchema(t *testing.T) {
	db, err := Open("file:TestOpenCreatesSchema?mode=memory&cache=shared")
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	for _, table := range []string{"set_name", "card", "card_quantity", "cardmarket_price", "collection_price_history"} {
		assert.True(t, db.Migrator().HasTable(table), table)
	}

	// Migrating an up to date schema keeps its rows.
	require.NoError(t, db.Create(&models.SetNameRecord{SetCode: "FDN", Name: "Foundations"}).Error)
	require.NoError(t, Migrate(db))

	var count int64
	require.NoError(t, db.Model(&models.SetNameRecord{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}
