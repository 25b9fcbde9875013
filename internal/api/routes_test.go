package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/michaelcoll/card-collection-price-tracker/internal/database"
	"github.com/michaelcoll/card-collection-price-tracker/internal/models"
	"github.com/michaelcoll/card-collection-price-tracker/internal/repository"
	"github.com/michaelcoll/card-collection-price-tracker/internal/services"
)

const exportCSV = "Binder Name,Binder Type,Name,Set code,Set name,Collector number,Foil,Rarity,Quantity,ManaBox ID,Scryfall ID,Purchase price,Misprint,Altered,Condition,Language,Purchase price currency\n" +
	"bulk,binder,Goblin Boarders,FDN,Foundations,87,normal,common,3,101506,4409a063-bf2a-4a49-803e-3ce6bd474353,0.08,false,false,near_mint,fr,EUR\n" +
	`bulk,binder,"Dwynen, Gilt-Leaf Daen",FDN,Foundations,217,foil,uncommon,2,100086,01c00d7b-7fac-4f8c-a1ea-de2cf4d06627,0.2,false,false,near_mint,en,EUR` + "\n"

type stubCardInfo struct{}

func (stubCardInfo) CardInfo(_ context.Context, name string) (models.CardInfo, error) {
	if name == "Sol Ring" {
		return models.CardInfo{Name: name, Inclusion: 10, TotalDecks: 20}, nil
	}
	return models.CardInfo{}, services.ErrCardNotFound
}

func setupTestRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	db, err := database.Open(fmt.Sprintf("file:%s?mode=memory&cache=shared", name))
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	// Catalog serving one product per printing of the export.
	catalog := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.URL.Path == "/price_guide.json":
			fmt.Fprint(w, `{"createdAt": "2025-12-23T02:47:26+0100", "priceGuides": [
				{"idProduct": 1, "trend": 0.10, "trend-foil": 1.00},
				{"idProduct": 2, "trend": 0.50, "trend-foil": 2.50}
			]}`)
		case r.URL.Path == "/cards/4409a063-bf2a-4a49-803e-3ce6bd474353":
			fmt.Fprint(w, `{"cardmarket_id": 1}`)
		case r.URL.Path == "/cards/01c00d7b-7fac-4f8c-a1ea-de2cf4d06627":
			fmt.Fprint(w, `{"cardmarket_id": 2}`)
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	t.Cleanup(catalog.Close)

	stores := repository.NewStores(db)
	scryfall := services.NewScryfallService(catalog.URL, 100)

	return SetupRouter(Services{
		Imports:        services.NewImportService(stores.Ownership, stores.SetNames),
		Prices:         services.NewPriceImportService(services.NewCardmarketService(catalog.URL+"/price_guide.json"), stores.Prices),
		ProductIDs:     services.NewProductIDService(stores.Ownership, scryfall),
		Valuations:     services.NewValuationScheduler(stores.Ownership, stores.Prices, stores.Snapshots, nil),
		CardInfo:       stubCardInfo{},
		MaxImportBytes: 1 << 20,
	})
}

func do(router *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	router.ServeHTTP(w, req)
	return w
}

func TestHealth(t *testing.T) {
	router := setupTestRouter(t)
	w := do(router, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())
}

func TestImportThenValuate(t *testing.T) {
	router := setupTestRouter(t)

	w := do(router, http.MethodPost, "/api/users/alice/collection/import", exportCSV)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var imported models.ImportResult
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &imported))
	assert.Equal(t, models.ImportResult{User: "alice", Cards: 2, TotalCopies: 5, NewSets: 1}, imported)

	w = do(router, http.MethodGet, "/api/users/alice/collection", "")
	require.Equal(t, http.StatusOK, w.Code)
	var collection struct {
		Cards []models.Card `json:"cards"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &collection))
	assert.Len(t, collection.Cards, 2)

	w = do(router, http.MethodPost, "/api/prices/import", "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.JSONEq(t, `{"date":"2025-12-23","guides":2}`, w.Body.String())

	w = do(router, http.MethodPost, "/api/cards/resolve-ids", "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.JSONEq(t, `{"candidates":2,"updated":2,"not_found":0,"failed":0}`, w.Body.String())

	w = do(router, http.MethodPost, "/api/valuations/run", "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.JSONEq(t, `{"pending":1,"written":1,"already_stored":0,"skipped_cards":0}`, w.Body.String())

	w = do(router, http.MethodGet, "/api/users/alice/valuations?from=2025-12-01", "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var history models.ValuationHistoryResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &history))
	require.Len(t, history.Snapshots, 1)
	// 3 x 0.10 normal + 2 x 2.50 foil
	assert.Equal(t, models.Cents(530), history.Snapshots[0].Total.Trend)
	assert.False(t, history.Snapshots[0].Total.Low.IsKnown())
}

func TestImportErrors(t *testing.T) {
	router := setupTestRouter(t)

	tests := []struct {
		name   string
		body   string
		status int
		check  func(t *testing.T, body map[string]any)
	}{
		{
			name:   "empty file",
			body:   "",
			status: http.StatusBadRequest,
			check: func(t *testing.T, body map[string]any) {
				assert.Equal(t, "missing headers or empty file", body["error"])
			},
		},
		{
			name:   "bad quantity",
			body:   strings.Replace(exportCSV, ",3,101506,", ",many,101506,", 1),
			status: http.StatusBadRequest,
			check: func(t *testing.T, body map[string]any) {
				assert.EqualValues(t, 1, body["line"])
				assert.Equal(t, "quantity", body["field"])
				assert.Equal(t, "many", body["value"])
			},
		},
		{
			name:   "wrong column count",
			body:   "header\na,b,c\n",
			status: http.StatusBadRequest,
			check: func(t *testing.T, body map[string]any) {
				assert.EqualValues(t, 3, body["columns"])
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := do(router, http.MethodPost, "/api/users/bob/collection/import", tt.body)
			require.Equal(t, tt.status, w.Code)
			var body map[string]any
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
			tt.check(t, body)
		})
	}
}

func TestImportTooLarge(t *testing.T) {
	router := setupTestRouter(t)
	w := do(router, http.MethodPost, "/api/users/bob/collection/import", strings.Repeat("x", 2<<20))
	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
}

func TestValuationHistory_InvalidFrom(t *testing.T) {
	router := setupTestRouter(t)
	w := do(router, http.MethodGet, "/api/users/alice/valuations?from=yesterday", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(router, http.MethodGet, "/api/users/alice/valuations", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"snapshots":[]`)
}

func TestCardInfo(t *testing.T) {
	router := setupTestRouter(t)

	w := do(router, http.MethodGet, "/api/cards/info?name=Sol+Ring", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"name":"Sol Ring","inclusion":10,"total_decks":20}`, w.Body.String())

	w = do(router, http.MethodGet, "/api/cards/info?name=Nothing", "")
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = do(router, http.MethodGet, "/api/cards/info", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestMetricsEndpoint(t *testing.T) {
	router := setupTestRouter(t)
	do(router, http.MethodGet, "/health", "")

	w := do(router, http.MethodGet, "/metrics", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "ccpt_http_requests_total")
}
