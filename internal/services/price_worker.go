package services

import (
	"context"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"
)

// WorkerStatus is the state reported by the background worker.
type WorkerStatus struct {
	LastCycleTime  time.Time             `json:"last_cycle_time"`
	NextCycleTime  time.Time             `json:"next_cycle_time"`
	LastPrices     PriceImportResult     `json:"last_prices"`
	LastProductIDs ProductIDUpdateResult `json:"last_product_ids"`
	LastValuation  RunResult             `json:"last_valuation"`
	LastError      string                `json:"last_error,omitempty"`
}

// Worker keeps prices, product ids and valuations up to date: each cycle
// imports the current price guide, resolves missing product ids and then
// runs the valuation scheduler.
type Worker struct {
	prices     *PriceImportService
	productIDs *ProductIDService
	valuations *ValuationScheduler
	interval   time.Duration

	mu     sync.RWMutex
	status WorkerStatus
}

func NewWorker(prices *PriceImportService, productIDs *ProductIDService, valuations *ValuationScheduler, interval time.Duration) *Worker {
	if interval <= 0 {
		interval = 24 * time.Hour
	}
	return &Worker{
		prices:     prices,
		productIDs: productIDs,
		valuations: valuations,
		interval:   interval,
	}
}

// Start runs a cycle immediately, then every interval until ctx is done.
func (w *Worker) Start(ctx context.Context) {
	log.Infof("Worker started: will refresh prices and valuations every %v", w.interval)

	w.RunCycle(ctx)

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Info("Worker stopping...")
			return
		case <-ticker.C:
			w.RunCycle(ctx)
		}
	}
}

// RunCycle performs one refresh. A failed price import does not prevent
// valuing the dates already stored.
func (w *Worker) RunCycle(ctx context.Context) WorkerStatus {
	status := WorkerStatus{}
	var lastErr error

	if w.prices != nil {
		result, err := w.prices.ImportCurrentPrices(ctx)
		if err != nil {
			log.Errorf("Worker: price import failed: %v", err)
			lastErr = err
		}
		status.LastPrices = result
	}

	if w.productIDs != nil {
		result, err := w.productIDs.UpdateMissing(ctx)
		if err != nil {
			log.Errorf("Worker: product id resolution failed: %v", err)
			lastErr = err
		}
		status.LastProductIDs = result
	}

	if w.valuations != nil {
		result, err := w.valuations.Run(ctx)
		if err != nil {
			log.Errorf("Worker: valuation run failed: %v", err)
			lastErr = err
		}
		status.LastValuation = result
	}

	if lastErr != nil {
		status.LastError = lastErr.Error()
	}
	status.LastCycleTime = time.Now()
	status.NextCycleTime = status.LastCycleTime.Add(w.interval)

	w.mu.Lock()
	w.status = status
	w.mu.Unlock()
	return status
}

// GetStatus returns the outcome of the last cycle.
func (w *Worker) GetStatus() WorkerStatus {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.status
}
