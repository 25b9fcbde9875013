package services

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/mock"

	"github.com/michaelcoll/card-collection-price-tracker/internal/models"
)

const priceGuideJSON = `{
  "version": 1,
  "createdAt": "2025-12-23T02:47:26+0100",
  "priceGuides": [
    {
      "idProduct": 1, "idCategory": 1,
      "avg": 0.06, "low": 0.02, "trend": 0.09, "avg1": 0.1, "avg7": 0.06, "avg30": 0.07,
      "avg-foil": 0.5, "low-foil": 0.04, "trend-foil": 0.42, "avg1-foil": 0.5, "avg7-foil": 0.41, "avg30-foil": 0.34
    },
    {
      "idProduct": 2, "idCategory": 1,
      "avg": 0.06, "low": 0.02, "trend": 0.07, "avg1": 0.3, "avg7": 0.08, "avg30": 0.06,
      "avg-foil": null, "low-foil": 0.05, "trend-foil": 0.28, "avg1-foil": 0.49, "avg7-foil": 0.31, "avg30-foil": 0.25
    }
  ]
}`

func TestCardmarketService_FetchPriceGuides(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/price_guide.json" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(priceGuideJSON))
	}))
	defer server.Close()

	svc := NewCardmarketService(server.URL + "/price_guide.json")
	date, guides, err := svc.FetchPriceGuides(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if date != models.NewDate(2025, 12, 23) {
		t.Errorf("expected date 2025-12-23, got %s", date)
	}
	if len(guides) != 2 {
		t.Fatalf("expected 2 guides, got %d", len(guides))
	}

	first := guides[0]
	if first.ProductID != 1 {
		t.Errorf("expected product 1, got %d", first.ProductID)
	}
	checks := []struct {
		name string
		got  models.Money
		want int64
	}{
		{"avg", first.Normal.Avg, 6},
		{"low", first.Normal.Low, 2},
		{"trend", first.Normal.Trend, 9},
		{"avg1", first.Normal.Avg1, 10},
		{"avg7", first.Normal.Avg7, 6},
		{"avg30", first.Normal.Avg30, 7},
		{"avg-foil", first.Foil.Avg, 50},
		{"low-foil", first.Foil.Low, 4},
		{"trend-foil", first.Foil.Trend, 42},
		{"avg1-foil", first.Foil.Avg1, 50},
		{"avg7-foil", first.Foil.Avg7, 41},
		{"avg30-foil", first.Foil.Avg30, 34},
	}
	for _, c := range checks {
		if c.got != models.Cents(c.want) {
			t.Errorf("%s: expected %d cents, got %s", c.name, c.want, c.got)
		}
	}

	second := guides[1]
	if second.Foil.Avg.IsKnown() {
		t.Errorf("expected unknown avg-foil for product 2, got %s", second.Foil.Avg)
	}
	if second.Normal.Trend != models.Cents(7) {
		t.Errorf("expected trend 7 cents, got %s", second.Normal.Trend)
	}
}

func TestCardmarketService_Errors(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		wantErr bool
	}{
		{"server error", http.StatusInternalServerError, "", true},
		{"invalid json", http.StatusOK, "this is not json", true},
		{"bad createdAt", http.StatusOK, `{"createdAt": "yesterday", "priceGuides": []}`, true},
		{"rfc3339 createdAt", http.StatusOK, `{"createdAt": "2025-12-23T02:47:26+01:00", "priceGuides": []}`, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer server.Close()

			_, _, err := NewCardmarketService(server.URL).FetchPriceGuides(context.Background())
			if (err != nil) != tt.wantErr {
				t.Errorf("wantErr %v, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestParseCreatedAt_UsesUTCDay(t *testing.T) {
	date, err := parseCreatedAt("2025-12-23T00:30:00+0100")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if date != models.NewDate(2025, 12, 22) {
		t.Errorf("expected 2025-12-22, got %s", date)
	}
}

type stubPriceSource struct {
	date   models.Date
	guides []models.FullPriceGuide
	err    error
}

func (s stubPriceSource) FetchPriceGuides(context.Context) (models.Date, []models.FullPriceGuide, error) {
	return s.date, s.guides, s.err
}

func TestImportCurrentPrices(t *testing.T) {
	ctx := context.Background()
	date := models.NewDate(2025, 12, 23)
	guides := []models.FullPriceGuide{{ProductID: 1}, {ProductID: 2}}

	store := new(MockMarketPriceStore)
	store.On("SaveBatch", ctx, date, guides).Return(nil).Once()

	result, err := NewPriceImportService(stubPriceSource{date: date, guides: guides}, store).ImportCurrentPrices(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Guides != 2 || result.Date != date {
		t.Errorf("unexpected result %+v", result)
	}
	store.AssertExpectations(t)
}

func TestImportCurrentPrices_FetchFailureStoresNothing(t *testing.T) {
	store := new(MockMarketPriceStore)
	boom := errors.New("timeout")

	_, err := NewPriceImportService(stubPriceSource{err: boom}, store).ImportCurrentPrices(context.Background())
	if !errors.Is(err, boom) {
		t.Errorf("expected fetch error, got %v", err)
	}
	store.AssertNotCalled(t, "SaveBatch", mock.Anything, mock.Anything, mock.Anything)
}
