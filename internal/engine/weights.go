package engine

import (
	"sync/atomic"
	"time"

	"StockSage/internal/domain/models"
)

// Weights is the process-wide weight state. Readers take an immutable
// snapshot per call; the learner is the single writer and replaces the
// whole vector with Swap, so a concurrent Recommend never observes a
// partially applied update.
type Weights struct {
	cur atomic.Pointer[models.WeightVector]
}

// NewWeights seeds the holder from a persisted vector, or defaults when
// nil.
func NewWeights(initial *models.WeightVector) *Weights {
	w := &Weights{}
	if initial == nil {
		initial = models.DefaultWeights()
	}
	w.cur.Store(initial.Clone())
	return w
}

// Snapshot returns the current vector. Callers must treat it as
// read-only; the learner never mutates a vector after it is stored.
func (w *Weights) Snapshot() *models.WeightVector {
	return w.cur.Load()
}

// Swap installs next as the current vector, bumping its version past
// the vector it replaces.
func (w *Weights) Swap(next *models.WeightVector) *models.WeightVector {
	prev := w.cur.Load()
	next.Version = prev.Version + 1
	next.UpdatedAt = time.Now().UTC()
	w.cur.Store(next)
	return next
}
