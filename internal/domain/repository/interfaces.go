package repository

import (
	"context"

	"StockSage/internal/domain/models"
)

// WeightStore persists the current weight vector across sessions.
// Loaded once at startup, saved after every learning pass.
type WeightStore interface {
	Load(ctx context.Context) (*models.WeightVector, error)
	Save(ctx context.Context, w *models.WeightVector) error
}

// WatchStore persists watchlist entries.
type WatchStore interface {
	Put(ctx context.Context, e *models.WatchEntry) error
	Get(ctx context.Context, id string) (*models.WatchEntry, error)
	Delete(ctx context.Context, id string) error
	List(ctx context.Context) ([]*models.WatchEntry, error)
}

// AdjustmentLog is the append-only audit trail of weight mutations.
// Adjustments are appended before the new vector is committed, so the
// vector is always reconstructible by replaying the log over defaults.
type AdjustmentLog interface {
	Append(ctx context.Context, adjs []models.LearningAdjustment) error
	List(ctx context.Context, limit int) ([]models.LearningAdjustment, error)
}

// OutcomeHistory records labeled entries for offline analysis.
type OutcomeHistory interface {
	Record(ctx context.Context, e *models.WatchEntry) error
}

// MarketStream delivers live price ticks from a market-data feed.
type MarketStream interface {
	Connect(ctx context.Context) error
	Subscribe(ctx context.Context) error
	Read(ctx context.Context) (<-chan *models.PriceTick, <-chan error)
	Reconnect(ctx context.Context) error
	Close() error
	IsConnected() bool
}

// Publisher emits advisor events to the message bus.
type Publisher interface {
	PublishTick(ctx context.Context, t *models.PriceTick) error
	PublishRecommendation(ctx context.Context, r *models.Recommendation) error
	Close() error
}

// PriceCache holds the latest seen price per symbol.
type PriceCache interface {
	SetLastPrice(ctx context.Context, symbol string, price float64) error
	GetLastPrice(ctx context.Context, symbol string) (float64, bool, error)
}

// Metrics abstracts operational counters so use cases stay free of the
// metrics backend.
type Metrics interface {
	RecordRecommendation(symbol, action string)
	RecordOutcome(label string)
	RecordAdjustment(category string)
	RecordError(kind string)
	RecordLastPrice(symbol string, price float64)
	RecordLatency(op string, seconds float64)
}
