package services

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/michaelcoll/card-collection-price-tracker/internal/metrics"
	"github.com/michaelcoll/card-collection-price-tracker/internal/models"
)

// ErrRunInProgress is returned by TriggerNow while another run holds the scheduler.
var ErrRunInProgress = errors.New("valuation run already in progress")

// SnapshotPublisher is notified after each stored snapshot.
type SnapshotPublisher interface {
	SnapshotCreated(ctx context.Context, snapshot models.ValuationSnapshot) error
}

// RunResult summarizes one scheduler run.
type RunResult struct {
	Pending       int `json:"pending"`
	Written       int `json:"written"`
	AlreadyStored int `json:"already_stored"`
	SkippedCards  int `json:"skipped_cards"`
}

// ValuationScheduler computes one valuation snapshot per (price date, user)
// pair that does not have one yet.
type ValuationScheduler struct {
	ownership OwnershipStore
	prices    MarketPriceStore
	snapshots SnapshotStore
	resolver  ProductIDResolver
	publisher SnapshotPublisher

	interval time.Duration
	now      func() time.Time

	mu         sync.Mutex // held for the duration of a run
	statusMu   sync.RWMutex
	lastRun    time.Time
	lastResult RunResult
}

func NewValuationScheduler(ownership OwnershipStore, prices MarketPriceStore, snapshots SnapshotStore, resolver ProductIDResolver) *ValuationScheduler {
	if resolver == nil {
		resolver = StoredProductIDs{}
	}
	return &ValuationScheduler{
		ownership: ownership,
		prices:    prices,
		snapshots: snapshots,
		resolver:  resolver,
		interval:  time.Hour,
		now:       time.Now,
	}
}

// WithPublisher sets the publisher notified after each insert.
func (s *ValuationScheduler) WithPublisher(p SnapshotPublisher) *ValuationScheduler {
	s.publisher = p
	return s
}

// WithInterval sets the period used by Start.
func (s *ValuationScheduler) WithInterval(d time.Duration) *ValuationScheduler {
	if d > 0 {
		s.interval = d
	}
	return s
}

// PendingKeys returns every (price date, user) pair without a snapshot,
// ordered by date then user.
func (s *ValuationScheduler) PendingKeys(ctx context.Context) ([]models.ValuationKey, error) {
	dates, err := s.prices.DistinctDates(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list price dates: %w", err)
	}
	users, err := s.ownership.DistinctUsers(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	existing, err := s.snapshots.ExistingKeys(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list stored valuations: %w", err)
	}

	done := make(map[models.ValuationKey]struct{}, len(existing))
	for _, k := range existing {
		done[k] = struct{}{}
	}

	var pending []models.ValuationKey
	for _, date := range dates {
		for _, user := range users {
			key := models.ValuationKey{Date: date, User: user}
			if _, ok := done[key]; ok {
				continue
			}
			done[key] = struct{}{}
			pending = append(pending, key)
		}
	}

	sort.SliceStable(pending, func(i, j int) bool {
		if pending[i].Date != pending[j].Date {
			return pending[i].Date.Before(pending[j].Date)
		}
		return pending[i].User < pending[j].User
	})
	return pending, nil
}

// Valuate returns the total value of the user's collection at the prices of date.
// Cards without a product id or without a price that day are left out.
func (s *ValuationScheduler) Valuate(ctx context.Context, date models.Date, user models.UserID) (models.PriceGuide, error) {
	total, _, err := s.valuate(ctx, date, user)
	return total, err
}

func (s *ValuationScheduler) valuate(ctx context.Context, date models.Date, user models.UserID) (models.PriceGuide, int, error) {
	cards, err := s.ownership.OwnedCards(ctx, user)
	if err != nil {
		return models.PriceGuide{}, 0, fmt.Errorf("failed to load cards of %s: %w", user, err)
	}

	var total models.PriceGuide
	skipped := 0
	for _, card := range cards {
		productID, ok, err := s.resolver.ResolveProductID(ctx, card)
		if err != nil {
			return models.PriceGuide{}, skipped, fmt.Errorf("failed to resolve product of %s: %w", card.Name, err)
		}
		if !ok {
			skipped++
			metrics.ValuationCardsExcluded.WithLabelValues("no_product_id").Inc()
			log.Debugf("Valuation: %s (%s %s) has no product id, skipped", card.Name, card.ID.SetCode, card.ID.CollectorNumber)
			continue
		}

		guide, ok, err := s.prices.Lookup(ctx, productID, date)
		if err != nil {
			return models.PriceGuide{}, skipped, fmt.Errorf("failed to look up price of %d: %w", productID, err)
		}
		if !ok {
			skipped++
			metrics.ValuationCardsExcluded.WithLabelValues("no_price").Inc()
			log.Debugf("Valuation: no price for product %d on %s, skipped", productID, date)
			continue
		}

		total = total.Add(guide.Variant(card.ID.Foil).Scale(uint(card.Quantity)))
	}
	return total, skipped, nil
}

// Run values every pending pair in order and stores each result before
// moving to the next one. The first failed insert stops the run; snapshots
// already written stay. A key stored concurrently by another process is
// counted as AlreadyStored.
func (s *ValuationScheduler) Run(ctx context.Context) (RunResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.run(ctx)
}

// TriggerNow runs immediately unless a run is already in progress.
func (s *ValuationScheduler) TriggerNow(ctx context.Context) (RunResult, error) {
	if !s.mu.TryLock() {
		return RunResult{}, ErrRunInProgress
	}
	defer s.mu.Unlock()
	return s.run(ctx)
}

func (s *ValuationScheduler) run(ctx context.Context) (result RunResult, err error) {
	start := time.Now()
	defer func() {
		metrics.ValuationRunDuration.Observe(time.Since(start).Seconds())
		if err != nil {
			metrics.ValuationRunsTotal.WithLabelValues("failed").Inc()
		} else {
			metrics.ValuationRunsTotal.WithLabelValues("success").Inc()
		}
		s.statusMu.Lock()
		s.lastRun = s.now()
		s.lastResult = result
		s.statusMu.Unlock()
	}()

	pending, err := s.PendingKeys(ctx)
	if err != nil {
		return result, err
	}
	result.Pending = len(pending)
	metrics.ValuationPendingKeys.Set(float64(len(pending)))
	if len(pending) == 0 {
		log.Debug("Valuation: nothing to evaluate")
		return result, nil
	}
	log.Infof("Valuation: %d pending (date, user) pairs", len(pending))

	for _, key := range pending {
		if err := ctx.Err(); err != nil {
			return result, err
		}

		total, skipped, err := s.valuate(ctx, key.Date, key.User)
		if err != nil {
			return result, err
		}
		result.SkippedCards += skipped

		snapshot := models.ValuationSnapshot{Date: key.Date, User: key.User, Total: total, CreatedAt: s.now()}
		if err := s.snapshots.Insert(ctx, snapshot); err != nil {
			if errors.Is(err, models.ErrSnapshotExists) {
				result.AlreadyStored++
				log.Debugf("Valuation: %s on %s already stored", key.User, key.Date)
				continue
			}
			return result, fmt.Errorf("failed to store valuation of %s on %s: %w", key.User, key.Date, err)
		}
		result.Written++
		metrics.ValuationSnapshotsWritten.Inc()

		if s.publisher != nil {
			if err := s.publisher.SnapshotCreated(ctx, snapshot); err != nil {
				log.Warnf("Valuation: failed to publish snapshot of %s on %s: %v", key.User, key.Date, err)
			}
		}
	}

	log.Infof("Valuation: wrote %d snapshots (%d already stored, %d cards skipped)",
		result.Written, result.AlreadyStored, result.SkippedCards)
	return result, nil
}

// LastRun returns when the last run finished and what it did.
func (s *ValuationScheduler) LastRun() (time.Time, RunResult) {
	s.statusMu.RLock()
	defer s.statusMu.RUnlock()
	return s.lastRun, s.lastResult
}

// Start runs once immediately, then every interval until ctx is done.
func (s *ValuationScheduler) Start(ctx context.Context) {
	log.Infof("Valuation scheduler started: will evaluate collections every %v", s.interval)

	if _, err := s.Run(ctx); err != nil {
		log.Errorf("Valuation scheduler: initial run failed: %v", err)
	}

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Info("Valuation scheduler stopping...")
			return
		case <-ticker.C:
			if _, err := s.Run(ctx); err != nil {
				log.Errorf("Valuation scheduler: run failed: %v", err)
			}
		}
	}
}

// History returns the user's stored snapshots from the given date on.
func (s *ValuationScheduler) History(ctx context.Context, user models.UserID, from models.Date) ([]models.ValuationSnapshot, error) {
	snapshots, err := s.snapshots.History(ctx, user, from)
	if err != nil {
		return nil, fmt.Errorf("failed to load valuation history of %s: %w", user, err)
	}
	return snapshots, nil
}
