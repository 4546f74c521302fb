package models

import (
	"errors"
	"time"
)

// SignalCategory identifies the analysis family a score came from.
type SignalCategory string

const (
	CategoryTechnical   SignalCategory = "technical"
	CategoryFundamental SignalCategory = "fundamental"
	CategorySentiment   SignalCategory = "sentiment"
)

// Categories lists every known category in a stable order.
func Categories() []SignalCategory {
	return []SignalCategory{CategoryTechnical, CategoryFundamental, CategorySentiment}
}

// Action is the discrete trading decision.
type Action string

const (
	ActionBuy  Action = "BUY"
	ActionSell Action = "SELL"
	ActionHold Action = "HOLD"
)

// Outcome labels a tracked recommendation. PENDING is the only
// non-terminal state.
type Outcome string

const (
	OutcomePending   Outcome = "PENDING"
	OutcomeCorrect   Outcome = "CORRECT"
	OutcomeIncorrect Outcome = "INCORRECT"
	OutcomeExpired   Outcome = "EXPIRED"
)

// Terminal reports whether the outcome can no longer change.
func (o Outcome) Terminal() bool { return o != OutcomePending }

var (
	// ErrInsufficientSignals is returned alongside a degenerate HOLD when
	// no usable signal category was supplied.
	ErrInsufficientSignals = errors.New("no usable signals supplied")

	// ErrInvalidConfiguration rejects non-positive price factors, a
	// negative learning rate or an inverted weight band.
	ErrInvalidConfiguration = errors.New("invalid advisor configuration")

	// ErrEntryNotFound is returned for unknown watchlist entry ids.
	ErrEntryNotFound = errors.New("watch entry not found")
)

// Signal is a normalized per-category score. Produced fresh per
// evaluation, never persisted.
type Signal struct {
	Category         SignalCategory `json:"category"`
	RawValue         float64        `json:"raw_value"`
	NormalizedValue  float64        `json:"normalized_value"`
	SourceConfidence float64        `json:"source_confidence"`
}

// WeightVector maps categories to their current mixing weight. The sum
// does not have to equal one; the engine normalizes per call over the
// categories actually present. Versioned so readers can tell snapshots
// apart.
type WeightVector struct {
	Version   uint64                     `json:"version"`
	Weights   map[SignalCategory]float64 `json:"weights"`
	UpdatedAt time.Time                  `json:"updated_at"`
}

// Weight returns the weight for a category, zero when absent.
func (w *WeightVector) Weight(c SignalCategory) float64 {
	return w.Weights[c]
}

// Clone produces an independent copy so mutations never leak into a
// snapshot held by a concurrent reader.
func (w *WeightVector) Clone() *WeightVector {
	cp := &WeightVector{Version: w.Version, UpdatedAt: w.UpdatedAt, Weights: make(map[SignalCategory]float64, len(w.Weights))}
	for c, v := range w.Weights {
		cp.Weights[c] = v
	}
	return cp
}

// DefaultWeights returns the starting vector: equal weight per category.
func DefaultWeights() *WeightVector {
	w := &WeightVector{Version: 0, Weights: make(map[SignalCategory]float64, 3), UpdatedAt: time.Now().UTC()}
	for _, c := range Categories() {
		w.Weights[c] = 1.0
	}
	return w
}

// Contribution is one category's share of a composite score, kept for
// explainability and later reinforcement.
type Contribution struct {
	Category SignalCategory `json:"category"`
	Value    float64        `json:"value"`
}

// Recommendation is the engine's output. Immutable once created;
// outcome labeling happens on the owning WatchEntry.
type Recommendation struct {
	Symbol         string         `json:"symbol"`
	Action         Action         `json:"action"`
	CompositeScore float64        `json:"composite_score"`
	Confidence     float64        `json:"confidence"`
	TargetPrice    float64        `json:"target_price"`
	StopLoss       float64        `json:"stop_loss"`
	ReferencePrice float64        `json:"reference_price"`
	Reasoning      []Contribution `json:"reasoning"`
	Degenerate     bool           `json:"degenerate"`
	CreatedAt      time.Time      `json:"created_at"`
	WeightsVersion uint64         `json:"weights_version"`
}

// WatchEntry is a tracked recommendation awaiting evaluation. Owned by
// the tracker; the embedded recommendation never changes after Track.
type WatchEntry struct {
	ID               string         `json:"id"`
	Symbol           string         `json:"symbol"`
	Recommendation   Recommendation `json:"recommendation"`
	AddedAt          time.Time      `json:"added_at"`
	LastCheckedPrice float64        `json:"last_checked_price"`
	LastCheckedAt    time.Time      `json:"last_checked_at"`
	Outcome          Outcome        `json:"outcome"`
	PerformancePct   float64        `json:"performance_pct"`
	TargetHit        bool           `json:"target_hit"`
	StopLossHit      bool           `json:"stop_loss_hit"`
	Consumed         bool           `json:"consumed"`
}

// LearningAdjustment is one audited weight mutation. Append-only.
type LearningAdjustment struct {
	Category  SignalCategory `json:"category"`
	Delta     float64        `json:"delta"`
	Reason    string         `json:"reason"`
	EntryID   string         `json:"entry_id"`
	AppliedAt time.Time      `json:"applied_at"`
}

// PriceTick is a market data point flowing in from the feed.
type PriceTick struct {
	Symbol    string  `json:"symbol"`
	Price     float64 `json:"price"`
	Volume    float64 `json:"volume"`
	Timestamp int64   `json:"timestamp"` // unix seconds
}

// PerformanceSummary aggregates labeled outcomes for display.
type PerformanceSummary struct {
	Total       int     `json:"total"`
	Correct     int     `json:"correct"`
	Incorrect   int     `json:"incorrect"`
	Expired     int     `json:"expired"`
	Pending     int     `json:"pending"`
	SuccessRate float64 `json:"success_rate"` // percent over labeled entries
	AvgPct      float64 `json:"avg_performance_pct"`
}

// SymbolStats is one row of the per-symbol insight report.
type SymbolStats struct {
	Symbol      string  `json:"symbol"`
	Total       int     `json:"total"`
	Correct     int     `json:"correct"`
	SuccessRate float64 `json:"success_rate"`
}
