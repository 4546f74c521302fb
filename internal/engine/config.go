package engine

import (
	"fmt"
	"time"

	"StockSage/internal/domain/models"
)

// Config holds the advisor tunables. Zero values are filled in by
// Defaults; Validate guards every call path that consumes them.
type Config struct {
	BuyThreshold       float64
	SellThreshold      float64
	KTarget            float64
	KStop              float64
	LearningRate       float64
	WeightFloor        float64
	WeightCeiling      float64
	EvaluationHorizon  time.Duration
	HoldDriftTolerance float64
}

// Defaults returns the calibrated starting configuration.
func Defaults() Config {
	return Config{
		BuyThreshold:       0.3,
		SellThreshold:      -0.3,
		KTarget:            0.1,
		KStop:              0.05,
		LearningRate:       0.1,
		WeightFloor:        0.05,
		WeightCeiling:      5.0,
		EvaluationHorizon:  7 * 24 * time.Hour,
		HoldDriftTolerance: 0.02,
	}
}

// Validate rejects configurations that could corrupt prices or weights.
func (c Config) Validate() error {
	if c.KTarget <= 0 {
		return fmt.Errorf("%w: k_target must be positive, got %v", models.ErrInvalidConfiguration, c.KTarget)
	}
	if c.KStop <= 0 {
		return fmt.Errorf("%w: k_stop must be positive, got %v", models.ErrInvalidConfiguration, c.KStop)
	}
	if c.LearningRate < 0 {
		return fmt.Errorf("%w: learning_rate must not be negative, got %v", models.ErrInvalidConfiguration, c.LearningRate)
	}
	if c.WeightFloor > c.WeightCeiling {
		return fmt.Errorf("%w: weight_floor %v above weight_ceiling %v", models.ErrInvalidConfiguration, c.WeightFloor, c.WeightCeiling)
	}
	if c.BuyThreshold < c.SellThreshold {
		return fmt.Errorf("%w: buy_threshold %v below sell_threshold %v", models.ErrInvalidConfiguration, c.BuyThreshold, c.SellThreshold)
	}
	if c.HoldDriftTolerance < 0 {
		return fmt.Errorf("%w: hold_drift_tolerance must not be negative, got %v", models.ErrInvalidConfiguration, c.HoldDriftTolerance)
	}
	return nil
}
