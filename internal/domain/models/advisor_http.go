package models

// Requests for advisor HTTP endpoints. Defined in domain for consistency and reuse.

// SignalInput is one raw analyzer score submitted for evaluation.
type SignalInput struct {
	Category   string  `json:"category" validate:"required,oneof=technical fundamental sentiment"`
	Value      float64 `json:"value"`
	Confidence float64 `json:"confidence" default:"1" validate:"gte=0,lte=1"`
	Scale      string  `json:"scale" default:"bipolar" validate:"oneof=bipolar unit"`
}

type RecommendRequest struct {
	Symbol       string        `json:"symbol" validate:"required"`
	CurrentPrice float64       `json:"current_price" validate:"gt=0"`
	Signals      []SignalInput `json:"signals" validate:"dive"`
	Track        bool          `json:"track"`
}

type TrackRequest struct {
	Symbol string `json:"symbol" validate:"required"`
}

type RefreshRequest struct {
	ID          string  `param:"id" json:"id" validate:"required"`
	LatestPrice float64 `json:"latest_price" validate:"gte=0"`
}

type LearnRequest struct {
	// Limit caps how many unconsumed labeled entries one pass takes.
	Limit int `json:"limit" default:"100" validate:"gte=1,lte=1000"`
}

type AdjustmentsRequest struct {
	Limit int `query:"limit" json:"limit" default:"100" validate:"gte=1,lte=1000"`
}
