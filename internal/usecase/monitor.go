package usecase

import (
	"context"
	"sync"
	"time"

	domrepo "StockSage/internal/domain/repository"
)

// Monitor periodically polls every pending watchlist entry against the
// latest cached price, so entries expire and settle even when the feed
// for their symbol goes quiet.
type Monitor struct {
	advisor  *Advisor
	prices   domrepo.PriceCache
	metrics  domrepo.Metrics
	interval time.Duration

	stopCh chan struct{}
	wg     sync.WaitGroup
	once   sync.Once
}

// NewMonitor creates a watchlist monitor.
func NewMonitor(advisor *Advisor, prices domrepo.PriceCache, metrics domrepo.Metrics, interval time.Duration) *Monitor {
	if interval <= 0 {
		interval = time.Minute
	}
	return &Monitor{
		advisor:  advisor,
		prices:   prices,
		metrics:  metrics,
		interval: interval,
		stopCh:   make(chan struct{}),
	}
}

// Start launches the polling loop.
func (m *Monitor) Start(ctx context.Context) {
	m.wg.Add(1)
	go func() {
		defer m.wg.Done()
		ticker := time.NewTicker(m.interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-m.stopCh:
				return
			case <-ticker.C:
				m.sweep(ctx)
			}
		}
	}()
}

func (m *Monitor) sweep(ctx context.Context) {
	start := time.Now()
	for _, e := range m.advisor.Watchlist() {
		if e.Outcome.Terminal() {
			continue
		}
		var price float64
		if m.prices != nil {
			if p, ok, err := m.prices.GetLastPrice(ctx, e.Symbol); err == nil && ok {
				price = p
			}
		}
		// a zero price still drives horizon expiry
		if _, err := m.advisor.Poll(ctx, e.ID, price); err != nil {
			m.metrics.RecordError("monitor_poll")
		}
	}
	m.metrics.RecordLatency("monitor_sweep", time.Since(start).Seconds())
}

// Stop terminates the loop and waits for the sweep in flight.
func (m *Monitor) Stop() {
	m.once.Do(func() { close(m.stopCh) })
	m.wg.Wait()
}
