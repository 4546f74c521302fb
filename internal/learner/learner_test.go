package learner

import (
	"context"
	"math"
	"testing"
	"time"

	"StockSage/internal/domain/models"
	"StockSage/internal/engine"
)

// fakeSource is an in-memory EntrySource.
type fakeSource struct {
	entries []*models.WatchEntry
}

func (f *fakeSource) UnconsumedLabeled(limit int) []*models.WatchEntry {
	out := make([]*models.WatchEntry, 0, limit)
	for _, e := range f.entries {
		if e.Consumed {
			continue
		}
		cp := *e
		out = append(out, &cp)
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out
}

func (f *fakeSource) MarkConsumed(_ context.Context, ids []string) error {
	for _, id := range ids {
		for _, e := range f.entries {
			if e.ID == id {
				e.Consumed = true
			}
		}
	}
	return nil
}

func labeled(id string, outcome models.Outcome, contribs ...models.Contribution) *models.WatchEntry {
	return &models.WatchEntry{
		ID:     id,
		Symbol: "AAPL",
		Recommendation: models.Recommendation{
			Symbol:    "AAPL",
			Action:    models.ActionBuy,
			Reasoning: contribs,
			CreatedAt: time.Now().UTC(),
		},
		Outcome: outcome,
	}
}

func newLearner(t *testing.T, cfg engine.Config, w *engine.Weights, src EntrySource) *Learner {
	t.Helper()
	l, err := New(cfg, w, src, nil, nil)
	if err != nil {
		t.Fatalf("learner: %v", err)
	}
	return l
}

func TestLearnIncorrectReducesPositiveContributors(t *testing.T) {
	cfg := engine.Defaults()
	w := engine.NewWeights(nil)
	src := &fakeSource{entries: []*models.WatchEntry{
		labeled("e1", models.OutcomeIncorrect,
			models.Contribution{Category: models.CategoryTechnical, Value: 0.4},
			models.Contribution{Category: models.CategorySentiment, Value: 0.2},
		),
	}}
	l := newLearner(t, cfg, w, src)

	adjs, err := l.Learn(context.Background(), 10)
	if err != nil {
		t.Fatalf("learn: %v", err)
	}
	if len(adjs) != 2 {
		t.Fatalf("adjustments = %d, want 2", len(adjs))
	}
	snap := w.Snapshot()
	if snap.Weight(models.CategoryTechnical) >= 1.0 {
		t.Fatalf("technical weight not reduced: %v", snap.Weight(models.CategoryTechnical))
	}
	if snap.Weight(models.CategorySentiment) >= 1.0 {
		t.Fatalf("sentiment weight not reduced: %v", snap.Weight(models.CategorySentiment))
	}
	// delta = lr * sign(0.4) * (-1) * |0.4|
	want := 1.0 - 0.1*0.4
	if math.Abs(snap.Weight(models.CategoryTechnical)-want) > 1e-9 {
		t.Fatalf("technical weight = %v, want %v", snap.Weight(models.CategoryTechnical), want)
	}
}

func TestLearnCorrectReinforces(t *testing.T) {
	cfg := engine.Defaults()
	w := engine.NewWeights(nil)
	src := &fakeSource{entries: []*models.WatchEntry{
		labeled("e1", models.OutcomeCorrect,
			models.Contribution{Category: models.CategoryFundamental, Value: 0.3},
		),
	}}
	l := newLearner(t, cfg, w, src)

	if _, err := l.Learn(context.Background(), 10); err != nil {
		t.Fatalf("learn: %v", err)
	}
	got := w.Snapshot().Weight(models.CategoryFundamental)
	want := 1.0 + 0.1*0.3
	if math.Abs(got-want) > 1e-9 {
		t.Fatalf("fundamental weight = %v, want %v", got, want)
	}
}

func TestLearnIdempotentAgainstDoubleConsumption(t *testing.T) {
	cfg := engine.Defaults()
	w := engine.NewWeights(nil)
	src := &fakeSource{entries: []*models.WatchEntry{
		labeled("e1", models.OutcomeCorrect,
			models.Contribution{Category: models.CategoryTechnical, Value: 0.5},
		),
	}}
	l := newLearner(t, cfg, w, src)

	if _, err := l.Learn(context.Background(), 10); err != nil {
		t.Fatalf("first learn: %v", err)
	}
	after := w.Snapshot().Weight(models.CategoryTechnical)

	adjs, err := l.Learn(context.Background(), 10)
	if err != nil {
		t.Fatalf("second learn: %v", err)
	}
	if len(adjs) != 0 {
		t.Fatalf("second pass produced %d adjustments, want 0", len(adjs))
	}
	if got := w.Snapshot().Weight(models.CategoryTechnical); got != after {
		t.Fatalf("weights changed on second pass: %v -> %v", after, got)
	}
}

func TestLearnClampsToBand(t *testing.T) {
	cfg := engine.Defaults()
	cfg.LearningRate = 10 // force saturation
	w := engine.NewWeights(nil)

	entries := make([]*models.WatchEntry, 0, 8)
	for i := 0; i < 8; i++ {
		id := string(rune('a' + i))
		entries = append(entries, labeled(id, models.OutcomeIncorrect,
			models.Contribution{Category: models.CategoryTechnical, Value: 0.9},
		))
	}
	src := &fakeSource{entries: entries}
	l := newLearner(t, cfg, w, src)

	if _, err := l.Learn(context.Background(), 100); err != nil {
		t.Fatalf("learn: %v", err)
	}
	got := w.Snapshot().Weight(models.CategoryTechnical)
	if got != cfg.WeightFloor {
		t.Fatalf("weight = %v, want floor %v", got, cfg.WeightFloor)
	}

	// and the ceiling on the way up
	w2 := engine.NewWeights(nil)
	for _, e := range entries {
		e.Consumed = false
		e.Outcome = models.OutcomeCorrect
	}
	l2 := newLearner(t, cfg, w2, src)
	if _, err := l2.Learn(context.Background(), 100); err != nil {
		t.Fatalf("learn up: %v", err)
	}
	if got := w2.Snapshot().Weight(models.CategoryTechnical); got != cfg.WeightCeiling {
		t.Fatalf("weight = %v, want ceiling %v", got, cfg.WeightCeiling)
	}
}

func TestLearnVersionBumps(t *testing.T) {
	cfg := engine.Defaults()
	w := engine.NewWeights(nil)
	src := &fakeSource{entries: []*models.WatchEntry{
		labeled("e1", models.OutcomeCorrect,
			models.Contribution{Category: models.CategoryTechnical, Value: 0.2},
		),
	}}
	l := newLearner(t, cfg, w, src)

	v0 := w.Snapshot().Version
	if _, err := l.Learn(context.Background(), 10); err != nil {
		t.Fatalf("learn: %v", err)
	}
	if got := w.Snapshot().Version; got != v0+1 {
		t.Fatalf("version = %d, want %d", got, v0+1)
	}
}

func TestReplayReconstructsVector(t *testing.T) {
	cfg := engine.Defaults()
	w := engine.NewWeights(nil)
	src := &fakeSource{entries: []*models.WatchEntry{
		labeled("e1", models.OutcomeCorrect,
			models.Contribution{Category: models.CategoryTechnical, Value: 0.5},
			models.Contribution{Category: models.CategorySentiment, Value: -0.2},
		),
		labeled("e2", models.OutcomeIncorrect,
			models.Contribution{Category: models.CategoryFundamental, Value: 0.3},
		),
	}}
	l := newLearner(t, cfg, w, src)

	adjs, err := l.Learn(context.Background(), 10)
	if err != nil {
		t.Fatalf("learn: %v", err)
	}

	replayed := Replay(cfg, adjs)
	live := w.Snapshot()
	for _, c := range models.Categories() {
		if math.Abs(replayed.Weight(c)-live.Weight(c)) > 1e-9 {
			t.Fatalf("replayed %s = %v, live = %v", c, replayed.Weight(c), live.Weight(c))
		}
	}
}
