package services

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/hashicorp/golang-lru/v2/expirable"
	"golang.org/x/time/rate"

	"github.com/michaelcoll/card-collection-price-tracker/internal/metrics"
)

const (
	scryfallBaseURL = "https://api.scryfall.com"

	// Scryfall asks clients to stay under 10 requests per second.
	defaultScryfallRate = 8

	productIDCacheSize = 10000
	productIDCacheTTL  = 24 * time.Hour
)

// productIDLookup is a cached Scryfall answer; found is false when the card
// has no Cardmarket product.
type productIDLookup struct {
	id    uint32
	found bool
}

// ScryfallService looks up the Cardmarket product of a Scryfall card.
type ScryfallService struct {
	client  *http.Client
	baseURL string
	limiter *rate.Limiter
	cache   *expirable.LRU[uuid.UUID, productIDLookup]
}

// NewScryfallService creates a client allowing perSecond requests per second.
// An empty baseURL uses the public API.
func NewScryfallService(baseURL string, perSecond int) *ScryfallService {
	if baseURL == "" {
		baseURL = scryfallBaseURL
	}
	if perSecond <= 0 {
		perSecond = defaultScryfallRate
	}
	return &ScryfallService{
		client: &http.Client{
			Timeout: 10 * time.Second,
		},
		baseURL: strings.TrimSuffix(baseURL, "/"),
		limiter: rate.NewLimiter(rate.Limit(perSecond), perSecond),
		cache:   expirable.NewLRU[uuid.UUID, productIDLookup](productIDCacheSize, nil, productIDCacheTTL),
	}
}

type scryfallCard struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	CardmarketID *int64 `json:"cardmarket_id"`
}

// CardmarketID returns the Cardmarket product id of a Scryfall card. ok is
// false when Scryfall knows the card but not its product.
func (s *ScryfallService) CardmarketID(ctx context.Context, id uuid.UUID) (productID uint32, ok bool, err error) {
	if cached, hit := s.cache.Get(id); hit {
		metrics.ScryfallCacheHits.Inc()
		return cached.id, cached.found, nil
	}
	metrics.ScryfallCacheMisses.Inc()

	if err := s.limiter.Wait(ctx); err != nil {
		return 0, false, err
	}

	reqURL := fmt.Sprintf("%s/cards/%s?format=json", s.baseURL, id)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return 0, false, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", "card-collection-price-tracker/1.0")

	resp, err := s.client.Do(req)
	if err != nil {
		metrics.ScryfallRequestsTotal.WithLabelValues("error").Inc()
		return 0, false, fmt.Errorf("failed to get card from scryfall: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		metrics.ScryfallRequestsTotal.WithLabelValues("not_found").Inc()
		s.cache.Add(id, productIDLookup{})
		return 0, false, nil
	}
	if resp.StatusCode != http.StatusOK {
		metrics.ScryfallRequestsTotal.WithLabelValues("error").Inc()
		return 0, false, fmt.Errorf("scryfall API returned status %d", resp.StatusCode)
	}

	var sc scryfallCard
	if err := json.NewDecoder(resp.Body).Decode(&sc); err != nil {
		metrics.ScryfallRequestsTotal.WithLabelValues("error").Inc()
		return 0, false, fmt.Errorf("failed to decode scryfall response: %w", err)
	}
	metrics.ScryfallRequestsTotal.WithLabelValues("success").Inc()

	lookup := productIDLookup{}
	if sc.CardmarketID != nil && *sc.CardmarketID > 0 {
		lookup = productIDLookup{id: uint32(*sc.CardmarketID), found: true}
	}
	s.cache.Add(id, lookup)
	return lookup.id, lookup.found, nil
}
