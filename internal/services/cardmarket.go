package services

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/michaelcoll/card-collection-price-tracker/internal/models"
)

// DefaultCardmarketPriceGuidesURL is the public Cardmarket price guide for Magic.
const DefaultCardmarketPriceGuidesURL = "https://downloads.s3.cardmarket.com/productCatalog/priceGuide/price_guide_1.json"

// CardmarketService downloads the daily Cardmarket price guide.
type CardmarketService struct {
	client *http.Client
	url    string
}

func NewCardmarketService(url string) *CardmarketService {
	if url == "" {
		url = DefaultCardmarketPriceGuidesURL
	}
	return &CardmarketService{
		client: &http.Client{
			Timeout: 2 * time.Minute,
		},
		url: url,
	}
}

type cardmarketPriceGuides struct {
	CreatedAt   string                 `json:"createdAt"`
	PriceGuides []cardmarketPriceGuide `json:"priceGuides"`
}

type cardmarketPriceGuide struct {
	IDProduct uint32   `json:"idProduct"`
	Avg       *float64 `json:"avg"`
	Low       *float64 `json:"low"`
	Trend     *float64 `json:"trend"`
	Avg1      *float64 `json:"avg1"`
	Avg7      *float64 `json:"avg7"`
	Avg30     *float64 `json:"avg30"`
	AvgFoil   *float64 `json:"avg-foil"`
	LowFoil   *float64 `json:"low-foil"`
	TrendFoil *float64 `json:"trend-foil"`
	Avg1Foil  *float64 `json:"avg1-foil"`
	Avg7Foil  *float64 `json:"avg7-foil"`
	Avg30Foil *float64 `json:"avg30-foil"`
}

func (g cardmarketPriceGuide) toFullPriceGuide() models.FullPriceGuide {
	return models.FullPriceGuide{
		ProductID: g.IDProduct,
		Normal: models.PriceGuide{
			Low:   models.MoneyFromFloat(g.Low),
			Avg:   models.MoneyFromFloat(g.Avg),
			Trend: models.MoneyFromFloat(g.Trend),
			Avg1:  models.MoneyFromFloat(g.Avg1),
			Avg7:  models.MoneyFromFloat(g.Avg7),
			Avg30: models.MoneyFromFloat(g.Avg30),
		},
		Foil: models.PriceGuide{
			Low:   models.MoneyFromFloat(g.LowFoil),
			Avg:   models.MoneyFromFloat(g.AvgFoil),
			Trend: models.MoneyFromFloat(g.TrendFoil),
			Avg1:  models.MoneyFromFloat(g.Avg1Foil),
			Avg7:  models.MoneyFromFloat(g.Avg7Foil),
			Avg30: models.MoneyFromFloat(g.Avg30Foil),
		},
	}
}

// Cardmarket writes offsets without a colon ("+0100").
var createdAtLayouts = []string{
	"2006-01-02T15:04:05-0700",
	time.RFC3339,
}

// parseCreatedAt returns the UTC calendar day of a createdAt timestamp.
func parseCreatedAt(s string) (models.Date, error) {
	s = strings.TrimSpace(s)
	for _, layout := range createdAtLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return models.DateOf(t.UTC()), nil
		}
	}
	return models.Date{}, fmt.Errorf("unrecognized createdAt %q", s)
}

// FetchPriceGuides downloads the price guide and returns it with the day it was built.
func (s *CardmarketService) FetchPriceGuides(ctx context.Context) (models.Date, []models.FullPriceGuide, error) {
	start := time.Now()
	log.Infof("Cardmarket: fetching price guides from %s", s.url)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.url, nil)
	if err != nil {
		return models.Date{}, nil, fmt.Errorf("failed to create request: %w", err)
	}
	resp, err := s.client.Do(req)
	if err != nil {
		return models.Date{}, nil, fmt.Errorf("failed to fetch price guides: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return models.Date{}, nil, fmt.Errorf("cardmarket returned status %d", resp.StatusCode)
	}

	var body cardmarketPriceGuides
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return models.Date{}, nil, fmt.Errorf("failed to decode price guides: %w", err)
	}

	date, err := parseCreatedAt(body.CreatedAt)
	if err != nil {
		return models.Date{}, nil, err
	}

	guides := make([]models.FullPriceGuide, len(body.PriceGuides))
	for i, g := range body.PriceGuides {
		guides[i] = g.toFullPriceGuide()
	}

	log.Infof("Cardmarket: fetched %d price guides for %s in %v", len(guides), date, time.Since(start).Round(time.Millisecond))
	return date, guides, nil
}
