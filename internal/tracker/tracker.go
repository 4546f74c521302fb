package tracker

import (
	"context"
	"fmt"
	"math"
	"sort"
	"sync"
	"time"

	"StockSage/internal/domain/models"
	domrepo "StockSage/internal/domain/repository"
	"StockSage/internal/engine"
)

// Tracker owns the watchlist. Entries move PENDING -> CORRECT |
// INCORRECT | EXPIRED exactly once; repeated refreshes on a labeled
// entry are expected from polling and return the current state.
type Tracker struct {
	cfg   engine.Config
	store domrepo.WatchStore

	mu      sync.RWMutex
	entries map[string]*models.WatchEntry
}

// New creates a tracker backed by store.
func New(cfg engine.Config, store domrepo.WatchStore) *Tracker {
	return &Tracker{cfg: cfg, store: store, entries: make(map[string]*models.WatchEntry)}
}

// Restore loads persisted entries into memory. Called once at startup.
func (t *Tracker) Restore(ctx context.Context) error {
	if t.store == nil {
		return nil
	}
	list, err := t.store.List(ctx)
	if err != nil {
		return fmt.Errorf("restore watchlist: %w", err)
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	for _, e := range list {
		t.entries[e.ID] = e
	}
	return nil
}

// Track starts following a recommendation.
func (t *Tracker) Track(ctx context.Context, rec models.Recommendation) (*models.WatchEntry, error) {
	now := time.Now().UTC()
	e := &models.WatchEntry{
		ID:             fmt.Sprintf("%s_%d", rec.Symbol, now.UnixNano()),
		Symbol:         rec.Symbol,
		Recommendation: rec,
		AddedAt:        now,
		Outcome:        models.OutcomePending,
	}
	t.mu.Lock()
	t.entries[e.ID] = e
	t.mu.Unlock()

	if t.store != nil {
		if err := t.store.Put(ctx, e); err != nil {
			return nil, fmt.Errorf("persist watch entry: %w", err)
		}
	}
	return copyEntry(e), nil
}

// Refresh is the on-demand evaluation: it labels the entry against
// latestPrice immediately. A non-PENDING entry is returned unchanged.
func (t *Tracker) Refresh(ctx context.Context, id string, latestPrice float64) (*models.WatchEntry, error) {
	return t.update(ctx, id, latestPrice, true)
}

// Poll is the periodic price check driven by the monitor and the tick
// feed. It records the price, labels early when the target or stop is
// hit, and labels directionally once the evaluation horizon elapses.
// Past the horizon with no usable price the entry expires.
func (t *Tracker) Poll(ctx context.Context, id string, latestPrice float64) (*models.WatchEntry, error) {
	return t.update(ctx, id, latestPrice, false)
}

func (t *Tracker) update(ctx context.Context, id string, latestPrice float64, onDemand bool) (*models.WatchEntry, error) {
	t.mu.Lock()
	e, ok := t.entries[id]
	if !ok {
		t.mu.Unlock()
		return nil, fmt.Errorf("%w: %s", models.ErrEntryNotFound, id)
	}
	if e.Outcome.Terminal() {
		out := copyEntry(e)
		t.mu.Unlock()
		return out, nil
	}

	now := time.Now().UTC()
	if latestPrice > 0 {
		e.LastCheckedPrice = latestPrice
		e.LastCheckedAt = now
		e.PerformancePct = (latestPrice - e.Recommendation.ReferencePrice) / e.Recommendation.ReferencePrice * 100
	}
	pastHorizon := now.Sub(e.AddedAt) >= t.cfg.EvaluationHorizon

	switch {
	case latestPrice > 0 && (onDemand || pastHorizon):
		t.label(e, latestPrice)
	case latestPrice > 0:
		t.labelEarly(e, latestPrice)
	case pastHorizon:
		e.Outcome = models.OutcomeExpired
	}
	out := copyEntry(e)
	t.mu.Unlock()

	if t.store != nil && out.Outcome.Terminal() {
		if err := t.store.Put(ctx, out); err != nil {
			return out, fmt.Errorf("persist watch entry: %w", err)
		}
	}
	return out, nil
}

// label applies the directional correctness rule.
func (t *Tracker) label(e *models.WatchEntry, price float64) {
	rec := e.Recommendation
	switch rec.Action {
	case models.ActionBuy:
		if price >= rec.ReferencePrice {
			e.Outcome = models.OutcomeCorrect
		} else {
			e.Outcome = models.OutcomeIncorrect
		}
		e.TargetHit = price >= rec.TargetPrice
		e.StopLossHit = price <= rec.StopLoss
	case models.ActionSell:
		if price <= rec.ReferencePrice {
			e.Outcome = models.OutcomeCorrect
		} else {
			e.Outcome = models.OutcomeIncorrect
		}
		e.TargetHit = price <= rec.TargetPrice
		e.StopLossHit = false
	default: // HOLD
		drift := math.Abs(price-rec.ReferencePrice) / rec.ReferencePrice
		if drift < t.cfg.HoldDriftTolerance {
			e.Outcome = models.OutcomeCorrect
		} else {
			e.Outcome = models.OutcomeIncorrect
		}
	}
}

// labelEarly settles an entry before the horizon only when the target
// or the stop has been hit.
func (t *Tracker) labelEarly(e *models.WatchEntry, price float64) {
	rec := e.Recommendation
	switch rec.Action {
	case models.ActionBuy:
		if price >= rec.TargetPrice {
			e.Outcome = models.OutcomeCorrect
			e.TargetHit = true
		} else if price <= rec.StopLoss {
			e.Outcome = models.OutcomeIncorrect
			e.StopLossHit = true
		}
	case models.ActionSell:
		if price <= rec.TargetPrice {
			e.Outcome = models.OutcomeCorrect
			e.TargetHit = true
		}
	}
}

// Remove deletes an entry from tracking.
func (t *Tracker) Remove(ctx context.Context, id string) error {
	t.mu.Lock()
	_, ok := t.entries[id]
	delete(t.entries, id)
	t.mu.Unlock()
	if !ok {
		return fmt.Errorf("%w: %s", models.ErrEntryNotFound, id)
	}
	if t.store != nil {
		if err := t.store.Delete(ctx, id); err != nil {
			return fmt.Errorf("delete watch entry: %w", err)
		}
	}
	return nil
}

// Get returns a copy of one entry.
func (t *Tracker) Get(id string) (*models.WatchEntry, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	e, ok := t.entries[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", models.ErrEntryNotFound, id)
	}
	return copyEntry(e), nil
}

// List returns copies of all entries, newest first.
func (t *Tracker) List() []*models.WatchEntry {
	t.mu.RLock()
	out := make([]*models.WatchEntry, 0, len(t.entries))
	for _, e := range t.entries {
		out = append(out, copyEntry(e))
	}
	t.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool { return out[i].AddedAt.After(out[j].AddedAt) })
	return out
}

// Pending returns ids of entries still awaiting a label.
func (t *Tracker) Pending() []string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	ids := make([]string, 0, len(t.entries))
	for id, e := range t.entries {
		if e.Outcome == models.OutcomePending {
			ids = append(ids, id)
		}
	}
	return ids
}

// UnconsumedLabeled returns labeled entries the learner has not seen,
// oldest first so adjustments replay in a stable order.
func (t *Tracker) UnconsumedLabeled(limit int) []*models.WatchEntry {
	t.mu.RLock()
	out := make([]*models.WatchEntry, 0, limit)
	for _, e := range t.entries {
		if e.Outcome.Terminal() && e.Outcome != models.OutcomeExpired && !e.Consumed {
			out = append(out, copyEntry(e))
		}
	}
	t.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool { return out[i].AddedAt.Before(out[j].AddedAt) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

// MarkConsumed flags entries as used for learning, at most once each.
func (t *Tracker) MarkConsumed(ctx context.Context, ids []string) error {
	t.mu.Lock()
	changed := make([]*models.WatchEntry, 0, len(ids))
	for _, id := range ids {
		if e, ok := t.entries[id]; ok && !e.Consumed {
			e.Consumed = true
			changed = append(changed, copyEntry(e))
		}
	}
	t.mu.Unlock()
	if t.store == nil {
		return nil
	}
	for _, e := range changed {
		if err := t.store.Put(ctx, e); err != nil {
			return fmt.Errorf("persist consumed marker: %w", err)
		}
	}
	return nil
}

func copyEntry(e *models.WatchEntry) *models.WatchEntry {
	cp := *e
	return &cp
}
