package analyzers

import (
	"context"
	"fmt"

	"StockSage/internal/domain/models"
	domsvc "StockSage/internal/domain/service"
	"StockSage/pkg/config"
)

// The analyzer collaborators compute indicator, ratio and sentiment
// scores out of process; these clients only fetch the finished score.

type scoreReq struct {
	Symbol string `json:"symbol"`
}

type scoreResp struct {
	Score      float64 `json:"score"`
	Confidence float64 `json:"confidence"`
	Scale      string  `json:"scale"`
	Missing    bool    `json:"missing"`
}

func (r scoreResp) toRaw() domsvc.RawScore {
	return domsvc.RawScore{
		Value:      r.Score,
		Confidence: r.Confidence,
		Scale:      models.NormalizeScale(r.Scale),
		Missing:    r.Missing,
	}
}

type HTTPTechnicalAnalyzer struct{ base *HTTPServiceBase }

func NewHTTPTechnicalAnalyzer(cfg *config.Config) *HTTPTechnicalAnalyzer {
	return &HTTPTechnicalAnalyzer{base: NewHTTPServiceBase(cfg)}
}

func (s *HTTPTechnicalAnalyzer) Score(ctx context.Context, symbol string) (domsvc.RawScore, error) {
	var resp scoreResp
	if err := s.base.PostJSON(ctx, "/technical/score", scoreReq{Symbol: symbol}, &resp); err != nil {
		return domsvc.RawScore{}, fmt.Errorf("technical score: %w", err)
	}
	return resp.toRaw(), nil
}

type HTTPFundamentalAnalyzer struct{ base *HTTPServiceBase }

func NewHTTPFundamentalAnalyzer(cfg *config.Config) *HTTPFundamentalAnalyzer {
	return &HTTPFundamentalAnalyzer{base: NewHTTPServiceBase(cfg)}
}

func (s *HTTPFundamentalAnalyzer) Score(ctx context.Context, symbol string) (domsvc.RawScore, error) {
	var resp scoreResp
	if err := s.base.PostJSON(ctx, "/fundamental/score", scoreReq{Symbol: symbol}, &resp); err != nil {
		return domsvc.RawScore{}, fmt.Errorf("fundamental score: %w", err)
	}
	return resp.toRaw(), nil
}

// HTTPSentimentAnalyzer degrades to a missing score when the sentiment
// service is unreachable, so evaluation proceeds on the remaining
// categories.
type HTTPSentimentAnalyzer struct{ base *HTTPServiceBase }

func NewHTTPSentimentAnalyzer(cfg *config.Config) *HTTPSentimentAnalyzer {
	return &HTTPSentimentAnalyzer{base: NewHTTPServiceBase(cfg)}
}

func (s *HTTPSentimentAnalyzer) Score(ctx context.Context, symbol string) (domsvc.RawScore, error) {
	var resp scoreResp
	if err := s.base.PostJSON(ctx, "/sentiment/score", scoreReq{Symbol: symbol}, &resp); err != nil {
		return domsvc.RawScore{Missing: true}, nil
	}
	return resp.toRaw(), nil
}

var (
	_ domsvc.TechnicalAnalyzer   = (*HTTPTechnicalAnalyzer)(nil)
	_ domsvc.FundamentalAnalyzer = (*HTTPFundamentalAnalyzer)(nil)
	_ domsvc.SentimentAnalyzer   = (*HTTPSentimentAnalyzer)(nil)
)
