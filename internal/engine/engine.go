package engine

import (
	"fmt"
	"math"
	"sort"
	"time"

	"StockSage/internal/domain/models"
)

// Engine combines normalized signals with the current weights into a
// composite decision. It only ever reads the weight state.
type Engine struct {
	cfg     Config
	weights *Weights
}

// New validates cfg up front so a bad configuration can never reach a
// Recommend call.
func New(cfg Config, weights *Weights) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Engine{cfg: cfg, weights: weights}, nil
}

// Config returns the engine configuration.
func (e *Engine) Config() Config { return e.cfg }

// Recommend produces a recommendation for symbol at currentPrice.
//
// An empty signal set does not abort the caller's batch: the result is
// a degenerate HOLD with zero confidence, and ErrInsufficientSignals is
// returned alongside it so the caller can tell it apart from a real
// neutral verdict.
func (e *Engine) Recommend(symbol string, signals []models.Signal, currentPrice float64) (models.Recommendation, error) {
	if currentPrice <= 0 {
		return models.Recommendation{}, fmt.Errorf("%w: current price must be positive, got %v", models.ErrInvalidConfiguration, currentPrice)
	}

	w := e.weights.Snapshot()
	rec := models.Recommendation{
		Symbol:         symbol,
		ReferencePrice: currentPrice,
		CreatedAt:      time.Now().UTC(),
		WeightsVersion: w.Version,
	}

	usable := signals[:0:0]
	for _, s := range signals {
		if s.SourceConfidence > 0 {
			usable = append(usable, s)
		}
	}
	if len(usable) == 0 {
		rec.Action = models.ActionHold
		rec.Degenerate = true
		rec.TargetPrice = currentPrice
		rec.StopLoss = currentPrice
		return rec, models.ErrInsufficientSignals
	}

	var contribSum, weightSum, confSum float64
	contribs := make([]models.Contribution, 0, len(usable))
	for _, s := range usable {
		wt := w.Weight(s.Category) // unknown categories weigh zero
		c := wt * s.NormalizedValue * s.SourceConfidence
		contribSum += c
		weightSum += wt
		confSum += s.SourceConfidence
		contribs = append(contribs, models.Contribution{Category: s.Category, Value: c})
	}
	if weightSum == 0 {
		rec.Action = models.ActionHold
		rec.Degenerate = true
		rec.TargetPrice = currentPrice
		rec.StopLoss = currentPrice
		return rec, models.ErrInsufficientSignals
	}

	// Dividing by the present-category weight sum keeps the score
	// comparable when some categories are unavailable.
	score := contribSum / weightSum
	meanConf := confSum / float64(len(usable))

	rec.CompositeScore = score
	rec.Confidence = clamp(math.Abs(score)*meanConf, 0, 1)
	rec.Action = e.action(score)
	rec.TargetPrice = currentPrice * (1 + e.cfg.KTarget*score)
	rec.StopLoss = currentPrice * (1 - e.cfg.KStop*math.Abs(score))

	sort.SliceStable(contribs, func(i, j int) bool {
		return math.Abs(contribs[i].Value) > math.Abs(contribs[j].Value)
	})
	rec.Reasoning = contribs

	return rec, nil
}

// action applies the thresholds; both boundaries are inclusive.
func (e *Engine) action(score float64) models.Action {
	switch {
	case score >= e.cfg.BuyThreshold:
		return models.ActionBuy
	case score <= e.cfg.SellThreshold:
		return models.ActionSell
	default:
		return models.ActionHold
	}
}
