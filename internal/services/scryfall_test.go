package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/michaelcoll/card-collection-price-tracker/internal/models"
)

func TestScryfallService_CardmarketID(t *testing.T) {
	known := uuid.MustParse("4409a063-bf2a-4a49-803e-3ce6bd474353")
	noProduct := uuid.MustParse("9e7dd929-4bba-46a6-86c9-b8ed853eb721")
	missing := uuid.MustParse("01c00d7b-7fac-4f8c-a1ea-de2cf4d06627")

	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		if r.URL.Query().Get("format") != "json" {
			t.Errorf("expected format=json, got %q", r.URL.RawQuery)
		}
		switch r.URL.Path {
		case "/cards/" + known.String():
			fmt.Fprint(w, `{"id": "`+known.String()+`", "name": "Goblin Boarders", "cardmarket_id": 12345}`)
		case "/cards/" + noProduct.String():
			fmt.Fprint(w, `{"cardmarket_id": null}`)
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer server.Close()

	svc := NewScryfallService(server.URL, 100)
	ctx := context.Background()

	tests := []struct {
		name   string
		id     uuid.UUID
		wantID uint32
		wantOK bool
	}{
		{"known product", known, 12345, true},
		{"card without product", noProduct, 0, false},
		{"unknown card", missing, 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id, ok, err := svc.CardmarketID(ctx, tt.id)
			require.NoError(t, err)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.wantID, id)
		})
	}

	// Second lookups are served from the cache.
	id, ok, err := svc.CardmarketID(ctx, known)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, uint32(12345), id)
	assert.Equal(t, int32(3), calls.Load())
}

func TestScryfallService_ServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	_, _, err := NewScryfallService(server.URL, 100).CardmarketID(context.Background(), uuid.New())
	assert.Error(t, err)
}

// MockCardmarketIDSource is a mock implementation of CardmarketIDSource for testing
type MockCardmarketIDSource struct {
	mock.Mock
}

func (m *MockCardmarketIDSource) CardmarketID(ctx context.Context, id uuid.UUID) (uint32, bool, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(uint32), args.Bool(1), args.Error(2)
}

func TestProductIDService_UpdateMissing(t *testing.T) {
	ctx := context.Background()
	ownership := new(MockOwnershipStore)
	source := new(MockCardmarketIDSource)

	found := models.Card{Name: "found", ID: models.CardID{SetCode: "FDN", CollectorNumber: "1"}, ScryfallID: uuid.New()}
	absent := models.Card{Name: "absent", ID: models.CardID{SetCode: "FDN", CollectorNumber: "2"}, ScryfallID: uuid.New()}
	failing := models.Card{Name: "failing", ID: models.CardID{SetCode: "FDN", CollectorNumber: "3"}, ScryfallID: uuid.New()}
	noScryfall := models.Card{Name: "no scryfall id", ID: models.CardID{SetCode: "FDN", CollectorNumber: "4"}}

	ownership.On("CardsWithoutProductID", ctx).Return([]models.Card{found, absent, failing, noScryfall}, nil)
	source.On("CardmarketID", ctx, found.ScryfallID).Return(uint32(100), true, nil)
	source.On("CardmarketID", ctx, absent.ScryfallID).Return(uint32(0), false, nil)
	source.On("CardmarketID", ctx, failing.ScryfallID).Return(uint32(0), false, errors.New("timeout"))
	ownership.On("SetProductID", ctx, found.ID, uint32(100)).Return(nil).Once()

	result, err := NewProductIDService(ownership, source).UpdateMissing(ctx)
	require.NoError(t, err)
	assert.Equal(t, ProductIDUpdateResult{Candidates: 3, Updated: 1, NotFound: 1, Failed: 1}, result)

	ownership.AssertExpectations(t)
	source.AssertExpectations(t)
}

func TestProductIDService_ListFailure(t *testing.T) {
	ctx := context.Background()
	ownership := new(MockOwnershipStore)
	ownership.On("CardsWithoutProductID", ctx).Return(nil, errors.New("locked"))

	_, err := NewProductIDService(ownership, new(MockCardmarketIDSource)).UpdateMissing(ctx)
	assert.ErrorContains(t, err, "locked")
}
