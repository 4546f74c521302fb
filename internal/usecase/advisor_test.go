package usecase

import (
	"context"
	"testing"

	"StockSage/internal/domain/models"
	"StockSage/internal/engine"
	"StockSage/internal/learner"
	"StockSage/internal/tracker"
)

type fakeMetrics struct {
	outcomes    []string
	adjustments []string
	errors      []string
}

func (m *fakeMetrics) RecordRecommendation(symbol, action string) {}
func (m *fakeMetrics) RecordOutcome(label string)                 { m.outcomes = append(m.outcomes, label) }
func (m *fakeMetrics) RecordAdjustment(category string) {
	m.adjustments = append(m.adjustments, category)
}
func (m *fakeMetrics) RecordError(kind string)                  { m.errors = append(m.errors, kind) }
func (m *fakeMetrics) RecordLastPrice(symbol string, p float64)   {}
func (m *fakeMetrics) RecordLatency(op string, seconds float64)   {}

type fakeHistory struct {
	recorded []*models.WatchEntry
}

func (h *fakeHistory) Record(ctx context.Context, e *models.WatchEntry) error {
	h.recorded = append(h.recorded, e)
	return nil
}

type fakePublisher struct {
	recs []*models.Recommendation
}

func (p *fakePublisher) PublishTick(ctx context.Context, t *models.PriceTick) error { return nil }
func (p *fakePublisher) PublishRecommendation(ctx context.Context, r *models.Recommendation) error {
	p.recs = append(p.recs, r)
	return nil
}
func (p *fakePublisher) Close() error { return nil }

type memPriceCache struct {
	prices map[string]float64
}

func (c *memPriceCache) SetLastPrice(ctx context.Context, symbol string, price float64) error {
	if c.prices == nil {
		c.prices = make(map[string]float64)
	}
	c.prices[symbol] = price
	return nil
}

func (c *memPriceCache) GetLastPrice(ctx context.Context, symbol string) (float64, bool, error) {
	p, ok := c.prices[symbol]
	return p, ok, nil
}

func newTestAdvisor(t *testing.T) (*Advisor, *fakeMetrics, *fakeHistory, *fakePublisher, *memPriceCache) {
	t.Helper()
	cfg := engine.Defaults()
	weights := engine.NewWeights(models.DefaultWeights())
	eng, err := engine.New(cfg, weights)
	if err != nil {
		t.Fatalf("engine: %v", err)
	}
	trk := tracker.New(cfg, nil)
	lrn, err := learner.New(cfg, weights, trk, nil, nil)
	if err != nil {
		t.Fatalf("learner: %v", err)
	}
	m := &fakeMetrics{}
	hist := &fakeHistory{}
	pub := &fakePublisher{}
	prices := &memPriceCache{}
	adv := NewAdvisor(eng, trk, lrn, weights, nil, hist, pub, prices, m)
	return adv, m, hist, pub, prices
}

func buyRequest(track bool) models.RecommendRequest {
	return models.RecommendRequest{
		Symbol:       "AAPL",
		CurrentPrice: 100,
		Track:        track,
		Signals: []models.SignalInput{
			{Category: "technical", Value: 0.8, Confidence: 0.9, Scale: "bipolar"},
			{Category: "fundamental", Value: 0.6, Confidence: 0.8, Scale: "bipolar"},
			{Category: "sentiment", Value: 0.2, Confidence: 0.5, Scale: "bipolar"},
		},
	}
}

func TestRecommendInlineSignals(t *testing.T) {
	adv, _, _, pub, _ := newTestAdvisor(t)

	rec, entry, err := adv.Recommend(context.Background(), buyRequest(true))
	if err != nil {
		t.Fatalf("recommend: %v", err)
	}
	if rec.Action != models.ActionBuy {
		t.Fatalf("action = %s, want BUY", rec.Action)
	}
	// (0.72 + 0.48 + 0.10) / 3
	if rec.CompositeScore < 0.43 || rec.CompositeScore > 0.44 {
		t.Fatalf("composite = %v, want ~0.433", rec.CompositeScore)
	}
	if entry == nil || entry.Outcome != models.OutcomePending {
		t.Fatalf("entry = %+v, want pending watchlist entry", entry)
	}
	if len(pub.recs) != 1 {
		t.Fatalf("published %d recommendations, want 1", len(pub.recs))
	}
}

func TestRecommendUntrackedLeavesWatchlistEmpty(t *testing.T) {
	adv, _, _, _, _ := newTestAdvisor(t)

	_, entry, err := adv.Recommend(context.Background(), buyRequest(false))
	if err != nil {
		t.Fatalf("recommend: %v", err)
	}
	if entry != nil {
		t.Fatalf("entry = %+v, want nil", entry)
	}
	if got := len(adv.Watchlist()); got != 0 {
		t.Fatalf("watchlist size = %d, want 0", got)
	}
}

func TestRecommendMissingSentimentStaysNeutral(t *testing.T) {
	adv, _, _, _, _ := newTestAdvisor(t)

	req := models.RecommendRequest{
		Symbol:       "MSFT",
		CurrentPrice: 50,
		Signals: []models.SignalInput{
			{Category: "technical", Value: 0.6, Confidence: 1, Scale: "bipolar"},
		},
	}
	rec, _, err := adv.Recommend(context.Background(), req)
	if err != nil {
		t.Fatalf("recommend: %v", err)
	}
	// the implied neutral sentiment must not dilute the technical score
	if rec.CompositeScore != 0.6 {
		t.Fatalf("composite = %v, want 0.6", rec.CompositeScore)
	}
	if rec.Action != models.ActionBuy {
		t.Fatalf("action = %s, want BUY", rec.Action)
	}
}

func TestRefreshLabelsAndRecordsHistory(t *testing.T) {
	adv, m, hist, _, _ := newTestAdvisor(t)

	_, entry, err := adv.Recommend(context.Background(), buyRequest(true))
	if err != nil {
		t.Fatalf("recommend: %v", err)
	}

	got, err := adv.Refresh(context.Background(), entry.ID, 95)
	if err != nil {
		t.Fatalf("refresh: %v", err)
	}
	if got.Outcome != models.OutcomeIncorrect {
		t.Fatalf("outcome = %s, want INCORRECT", got.Outcome)
	}
	if len(hist.recorded) != 1 {
		t.Fatalf("history records = %d, want 1", len(hist.recorded))
	}
	if len(m.outcomes) != 1 || m.outcomes[0] != string(models.OutcomeIncorrect) {
		t.Fatalf("outcome metrics = %v", m.outcomes)
	}
}

func TestRefreshFallsBackToCachedPrice(t *testing.T) {
	adv, _, _, _, prices := newTestAdvisor(t)

	_, entry, err := adv.Recommend(context.Background(), buyRequest(true))
	if err != nil {
		t.Fatalf("recommend: %v", err)
	}
	if err := prices.SetLastPrice(context.Background(), "AAPL", 110); err != nil {
		t.Fatalf("seed price: %v", err)
	}

	got, err := adv.Refresh(context.Background(), entry.ID, 0)
	if err != nil {
		t.Fatalf("refresh: %v", err)
	}
	if got.LastCheckedPrice != 110 {
		t.Fatalf("last checked = %v, want cached 110", got.LastCheckedPrice)
	}
	if got.Outcome != models.OutcomeCorrect {
		t.Fatalf("outcome = %s, want CORRECT", got.Outcome)
	}
}

func TestLearnReducesWeightsAfterIncorrectCall(t *testing.T) {
	adv, m, _, _, _ := newTestAdvisor(t)

	_, entry, err := adv.Recommend(context.Background(), buyRequest(true))
	if err != nil {
		t.Fatalf("recommend: %v", err)
	}
	if _, err := adv.Refresh(context.Background(), entry.ID, 90); err != nil {
		t.Fatalf("refresh: %v", err)
	}

	before := adv.Weights()
	adjs, err := adv.Learn(context.Background(), 10)
	if err != nil {
		t.Fatalf("learn: %v", err)
	}
	if len(adjs) == 0 {
		t.Fatalf("no adjustments applied")
	}
	after := adv.Weights()
	if after.Version != before.Version+1 {
		t.Fatalf("version %d -> %d, want +1", before.Version, after.Version)
	}
	if after.Weights[models.CategoryTechnical] >= before.Weights[models.CategoryTechnical] {
		t.Fatalf("technical weight %v not reduced from %v",
			after.Weights[models.CategoryTechnical], before.Weights[models.CategoryTechnical])
	}
	if len(m.adjustments) != len(adjs) {
		t.Fatalf("adjustment metrics = %d, want %d", len(m.adjustments), len(adjs))
	}

	// second pass sees nothing unconsumed
	again, err := adv.Learn(context.Background(), 10)
	if err != nil {
		t.Fatalf("second learn: %v", err)
	}
	if len(again) != 0 {
		t.Fatalf("second pass applied %d adjustments, want 0", len(again))
	}
}

func TestHandleTickLabelsTargetHit(t *testing.T) {
	adv, _, hist, _, prices := newTestAdvisor(t)

	_, entry, err := adv.Recommend(context.Background(), buyRequest(true))
	if err != nil {
		t.Fatalf("recommend: %v", err)
	}

	tick := &models.PriceTick{Symbol: "AAPL", Price: entry.Recommendation.TargetPrice + 1}
	if err := adv.HandleTick(context.Background(), tick); err != nil {
		t.Fatalf("handle tick: %v", err)
	}

	got, err := adv.Entry(entry.ID)
	if err != nil {
		t.Fatalf("entry: %v", err)
	}
	if got.Outcome != models.OutcomeCorrect || !got.TargetHit {
		t.Fatalf("entry after tick = outcome %s target_hit %v", got.Outcome, got.TargetHit)
	}
	if len(hist.recorded) != 1 {
		t.Fatalf("history records = %d, want 1", len(hist.recorded))
	}
	if p, ok, _ := prices.GetLastPrice(context.Background(), "AAPL"); !ok || p != tick.Price {
		t.Fatalf("cached price = %v ok=%v", p, ok)
	}
}

func TestHandleTickRejectsInvalid(t *testing.T) {
	adv, _, _, _, _ := newTestAdvisor(t)
	if err := adv.HandleTick(context.Background(), &models.PriceTick{Symbol: "", Price: 1}); err == nil {
		t.Fatalf("expected error for empty symbol")
	}
	if err := adv.HandleTick(context.Background(), &models.PriceTick{Symbol: "AAPL", Price: 0}); err == nil {
		t.Fatalf("expected error for zero price")
	}
}
