package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"
	"golang.org/x/net/html"

	"github.com/michaelcoll/card-collection-price-tracker/internal/metrics"
	"github.com/michaelcoll/card-collection-price-tracker/internal/models"
)

const (
	edhrecBaseURL   = "https://edhrec.com"
	buildIDLifetime = 24 * time.Hour
)

// ErrCardNotFound is returned when EDHREC has no page for a card name.
var ErrCardNotFound = errors.New("card not found on EDHREC")

// BuildIDCache holds the EDHREC site build id for a limited time.
type BuildIDCache struct {
	mu        sync.RWMutex
	id        string
	updatedAt time.Time
	ttl       time.Duration
	now       func() time.Time
}

func NewBuildIDCache(ttl time.Duration) *BuildIDCache {
	if ttl <= 0 {
		ttl = buildIDLifetime
	}
	return &BuildIDCache{ttl: ttl, now: time.Now}
}

// Get returns the cached id while it is fresh.
func (c *BuildIDCache) Get() (string, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.id == "" || c.now().Sub(c.updatedAt) >= c.ttl {
		return "", false
	}
	return c.id, true
}

// Set stores a fresh id.
func (c *BuildIDCache) Set(id string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.id = id
	c.updatedAt = c.now()
}

// EDHRECService reads card popularity from EDHREC.
type EDHRECService struct {
	client  *http.Client
	baseURL string
	cache   *BuildIDCache
}

func NewEDHRECService(baseURL string, cache *BuildIDCache) *EDHRECService {
	if baseURL == "" {
		baseURL = edhrecBaseURL
	}
	if cache == nil {
		cache = NewBuildIDCache(buildIDLifetime)
	}
	return &EDHRECService{
		client: &http.Client{
			Timeout: 15 * time.Second,
		},
		baseURL: strings.TrimSuffix(baseURL, "/"),
		cache:   cache,
	}
}

type edhrecCardPage struct {
	PageProps struct {
		Data struct {
			Container struct {
				JSONDict struct {
					Card struct {
						Name           string  `json:"name"`
						Inclusion      float64 `json:"inclusion"`
						PotentialDecks float64 `json:"potential_decks"`
					} `json:"card"`
				} `json:"json_dict"`
			} `json:"container"`
		} `json:"data"`
	} `json:"pageProps"`
}

// CardSlug turns a card name into its EDHREC page name.
func CardSlug(name string) string {
	slug := strings.ReplaceAll(name, " ", "-")
	slug = strings.ReplaceAll(slug, "'", "")
	slug = strings.ReplaceAll(slug, ",", "")
	return strings.ToLower(slug)
}

// CardInfo returns how many EDHREC decks include the card and how many could.
func (s *EDHRECService) CardInfo(ctx context.Context, name string) (models.CardInfo, error) {
	buildID, err := s.buildID(ctx)
	if err != nil {
		return models.CardInfo{}, err
	}

	reqURL := fmt.Sprintf("%s/_next/data/%s/cards/%s.json", s.baseURL, buildID, CardSlug(name))
	log.Debugf("EDHREC: fetching card info from %s", reqURL)
	metrics.EDHRECRequestsTotal.WithLabelValues("card").Inc()

	resp, err := s.get(ctx, reqURL)
	if err != nil {
		return models.CardInfo{}, fmt.Errorf("failed to get card info for %s: %w", name, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return models.CardInfo{}, ErrCardNotFound
	}
	if resp.StatusCode != http.StatusOK {
		return models.CardInfo{}, fmt.Errorf("edhrec returned status %d", resp.StatusCode)
	}

	var page edhrecCardPage
	if err := json.NewDecoder(resp.Body).Decode(&page); err != nil {
		return models.CardInfo{}, fmt.Errorf("failed to decode edhrec card page: %w", err)
	}

	card := page.PageProps.Data.Container.JSONDict.Card
	return models.CardInfo{
		Name:       name,
		Inclusion:  int(card.Inclusion),
		TotalDecks: int(card.PotentialDecks),
	}, nil
}

func (s *EDHRECService) buildID(ctx context.Context) (string, error) {
	if id, ok := s.cache.Get(); ok {
		return id, nil
	}
	id, err := s.fetchBuildID(ctx)
	if err != nil {
		return "", err
	}
	s.cache.Set(id)
	log.Infof("EDHREC: build id refreshed to %s", id)
	return id, nil
}

// fetchBuildID reads the Next.js build id embedded in the FAQ page.
func (s *EDHRECService) fetchBuildID(ctx context.Context) (string, error) {
	metrics.EDHRECRequestsTotal.WithLabelValues("build_id").Inc()

	resp, err := s.get(ctx, s.baseURL+"/faq")
	if err != nil {
		return "", fmt.Errorf("edhrec request error: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("edhrec returned status %d", resp.StatusCode)
	}

	doc, err := html.Parse(resp.Body)
	if err != nil {
		return "", fmt.Errorf("edhrec response read error: %w", err)
	}

	data, ok := nextData(doc)
	if !ok {
		return "", errors.New("unable to find __NEXT_DATA__ script")
	}

	var payload struct {
		BuildID string `json:"buildId"`
	}
	if err := json.Unmarshal([]byte(data), &payload); err != nil {
		return "", fmt.Errorf("__NEXT_DATA__ is not valid json: %w", err)
	}
	if payload.BuildID == "" {
		return "", errors.New("buildId not found in __NEXT_DATA__")
	}
	return payload.BuildID, nil
}

func (s *EDHRECService) get(ctx context.Context, url string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	return s.client.Do(req)
}

// nextData returns the text of <script id="__NEXT_DATA__">.
func nextData(n *html.Node) (string, bool) {
	if n.Type == html.ElementNode && n.Data == "script" {
		for _, a := range n.Attr {
			if a.Key == "id" && a.Val == "__NEXT_DATA__" {
				if n.FirstChild != nil && n.FirstChild.Type == html.TextNode {
					return n.FirstChild.Data, true
				}
				return "", false
			}
		}
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if data, ok := nextData(c); ok {
			return data, true
		}
	}
	return "", false
}
