package service

import (
	"context"

	"StockSage/internal/domain/models"
)

// RawScore is an analyzer's verdict before normalization.
type RawScore struct {
	Value      float64
	Confidence float64
	Scale      models.ScaleHint
	Missing    bool
}

// TechnicalAnalyzer scores a symbol from indicator data. The indicator
// math itself lives in the collaborator service.
type TechnicalAnalyzer interface {
	Score(ctx context.Context, symbol string) (RawScore, error)
}

// FundamentalAnalyzer scores a symbol from financial ratios.
type FundamentalAnalyzer interface {
	Score(ctx context.Context, symbol string) (RawScore, error)
}

// SentimentAnalyzer scores a symbol from news sentiment polarity.
type SentimentAnalyzer interface {
	Score(ctx context.Context, symbol string) (RawScore, error)
}
