package engine

import (
	"encoding/json"
	"testing"

	"StockSage/internal/domain/models"
)

func TestWeightsDefaultSeed(t *testing.T) {
	w := NewWeights(nil)
	snap := w.Snapshot()
	for _, c := range models.Categories() {
		if snap.Weight(c) != 1.0 {
			t.Fatalf("default weight for %s = %v", c, snap.Weight(c))
		}
	}
}

func TestWeightsSwapBumpsVersion(t *testing.T) {
	w := NewWeights(nil)
	v0 := w.Snapshot().Version

	next := w.Snapshot().Clone()
	next.Weights[models.CategoryTechnical] = 2.5
	w.Swap(next)

	snap := w.Snapshot()
	if snap.Version != v0+1 {
		t.Fatalf("version = %d, want %d", snap.Version, v0+1)
	}
	if snap.Weight(models.CategoryTechnical) != 2.5 {
		t.Fatalf("weight = %v, want 2.5", snap.Weight(models.CategoryTechnical))
	}
}

func TestSnapshotIsolatedFromSwap(t *testing.T) {
	w := NewWeights(nil)
	before := w.Snapshot()

	next := before.Clone()
	next.Weights[models.CategorySentiment] = 0.1
	w.Swap(next)

	if before.Weight(models.CategorySentiment) != 1.0 {
		t.Fatalf("held snapshot changed: %v", before.Weight(models.CategorySentiment))
	}
}

// persisting and reloading a vector must reproduce it exactly
func TestWeightVectorRoundTrip(t *testing.T) {
	w := NewWeights(nil)
	next := w.Snapshot().Clone()
	next.Weights[models.CategoryTechnical] = 1.37
	next.Weights[models.CategorySentiment] = 0.05
	w.Swap(next)

	b, err := json.Marshal(w.Snapshot())
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var got models.WeightVector
	if err := json.Unmarshal(b, &got); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	snap := w.Snapshot()
	if got.Version != snap.Version {
		t.Fatalf("version = %d, want %d", got.Version, snap.Version)
	}
	for _, c := range models.Categories() {
		if got.Weight(c) != snap.Weight(c) {
			t.Fatalf("weight %s = %v, want %v", c, got.Weight(c), snap.Weight(c))
		}
	}
}

func TestUnknownCategoryWeighsZero(t *testing.T) {
	w := NewWeights(nil)
	if got := w.Snapshot().Weight(models.SignalCategory("astrology")); got != 0 {
		t.Fatalf("unknown category weight = %v, want 0", got)
	}
}
