package engine

import (
	"StockSage/internal/domain/models"
)

// Normalize maps a raw analyzer score onto the common bounded scale.
// Technical and fundamental scores arrive pre-scored by upstream
// analyzers; out-of-range values are clamped rather than rejected to
// stay robust against noisy scoring. Sentiment polarity is already
// [-1, 1] and passes through.
func Normalize(category models.SignalCategory, raw, confidence float64, hint models.ScaleHint) models.Signal {
	s := models.Signal{
		Category:         category,
		RawValue:         raw,
		SourceConfidence: clamp(confidence, 0, 1),
	}
	switch hint {
	case models.ScaleUnit:
		s.NormalizedValue = clamp(raw, 0, 1)
	default:
		s.NormalizedValue = clamp(raw, -1, 1)
	}
	return s
}

// NeutralSignal stands in for a missing category: zero value, zero
// confidence. Keeping the category present keeps the weighted-sum
// formula total-invariant regardless of which signals are available.
func NeutralSignal(category models.SignalCategory) models.Signal {
	return models.Signal{Category: category, NormalizedValue: 0, SourceConfidence: 0}
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
