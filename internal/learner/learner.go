package learner

import (
	"context"
	"fmt"
	"math"
	"sync"
	"time"

	"StockSage/internal/domain/models"
	domrepo "StockSage/internal/domain/repository"
	"StockSage/internal/engine"
)

// EntrySource feeds the learner labeled entries and lets it mark them
// consumed, so each entry reinforces the weights at most once.
type EntrySource interface {
	UnconsumedLabeled(limit int) []*models.WatchEntry
	MarkConsumed(ctx context.Context, ids []string) error
}

// Learner is the sole writer of the weight state. A batch pass runs
// exclusively; adjustments are not commutative-safe when interleaved
// relative to the audit log.
type Learner struct {
	cfg     engine.Config
	weights *engine.Weights
	source  EntrySource
	store   domrepo.WeightStore
	log     domrepo.AdjustmentLog

	mu sync.Mutex
}

// New creates a learner. store and log may be nil in tests.
func New(cfg engine.Config, weights *engine.Weights, source EntrySource, store domrepo.WeightStore, log domrepo.AdjustmentLog) (*Learner, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Learner{cfg: cfg, weights: weights, source: source, store: store, log: log}, nil
}

// Learn runs one batch pass over unconsumed labeled entries.
//
// Ordering is log-then-apply: the audit records are appended before
// the new vector is swapped in and persisted, so a crash in between
// never leaves an applied adjustment without a trail. Entries are
// marked consumed only after the vector commits, which makes a retry
// of the whole call safe.
func (l *Learner) Learn(ctx context.Context, limit int) ([]models.LearningAdjustment, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	entries := l.source.UnconsumedLabeled(limit)
	if len(entries) == 0 {
		return nil, nil
	}

	next := l.weights.Snapshot().Clone()
	adjs := make([]models.LearningAdjustment, 0, len(entries)*2)
	ids := make([]string, 0, len(entries))
	now := time.Now().UTC()

	for _, e := range entries {
		dir := 1.0
		if e.Outcome == models.OutcomeIncorrect {
			dir = -1.0
		}
		for _, c := range e.Recommendation.Reasoning {
			delta := l.cfg.LearningRate * sign(c.Value) * dir * math.Abs(c.Value)
			if delta == 0 {
				continue
			}
			next.Weights[c.Category] = clampWeight(next.Weights[c.Category]+delta, l.cfg)
			adjs = append(adjs, models.LearningAdjustment{
				Category:  c.Category,
				Delta:     delta,
				Reason:    fmt.Sprintf("%s %s %s", e.Symbol, e.Recommendation.Action, e.Outcome),
				EntryID:   e.ID,
				AppliedAt: now,
			})
		}
		ids = append(ids, e.ID)
	}

	if l.log != nil {
		if err := l.log.Append(ctx, adjs); err != nil {
			return nil, fmt.Errorf("append adjustment log: %w", err)
		}
	}
	if l.store != nil {
		staged := next.Clone()
		staged.Version = l.weights.Snapshot().Version + 1
		staged.UpdatedAt = now
		if err := l.store.Save(ctx, staged); err != nil {
			return nil, fmt.Errorf("persist weights: %w", err)
		}
	}
	l.weights.Swap(next)

	if err := l.source.MarkConsumed(ctx, ids); err != nil {
		return adjs, fmt.Errorf("mark entries consumed: %w", err)
	}
	return adjs, nil
}

// Replay rebuilds a weight vector from defaults by applying an
// adjustment log in order. Used to audit the persisted vector.
func Replay(cfg engine.Config, adjs []models.LearningAdjustment) *models.WeightVector {
	w := models.DefaultWeights()
	for _, a := range adjs {
		w.Weights[a.Category] = clampWeight(w.Weights[a.Category]+a.Delta, cfg)
		w.Version++
	}
	return w
}

func clampWeight(v float64, cfg engine.Config) float64 {
	if v < cfg.WeightFloor {
		return cfg.WeightFloor
	}
	if v > cfg.WeightCeiling {
		return cfg.WeightCeiling
	}
	return v
}

func sign(v float64) float64 {
	switch {
	case v > 0:
		return 1
	case v < 0:
		return -1
	default:
		return 0
	}
}
