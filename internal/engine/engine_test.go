package engine

import (
	"errors"
	"math"
	"testing"

	"StockSage/internal/domain/models"
)

func newTestEngine(t *testing.T, cfg Config) *Engine {
	t.Helper()
	e, err := New(cfg, NewWeights(nil))
	if err != nil {
		t.Fatalf("engine: %v", err)
	}
	return e
}

func sig(c models.SignalCategory, v, conf float64) models.Signal {
	return models.Signal{Category: c, NormalizedValue: v, SourceConfidence: conf}
}

func TestRecommendWorkedScenario(t *testing.T) {
	e := newTestEngine(t, Defaults())

	rec, err := e.Recommend("AAPL", []models.Signal{
		sig(models.CategoryTechnical, 0.6, 0.9),
		sig(models.CategoryFundamental, 0.4, 0.8),
	}, 100)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if math.Abs(rec.CompositeScore-0.43) > 1e-9 {
		t.Fatalf("composite = %v, want 0.43", rec.CompositeScore)
	}
	if rec.Action != models.ActionBuy {
		t.Fatalf("action = %s, want BUY", rec.Action)
	}
	want := 0.43 * 0.85
	if math.Abs(rec.Confidence-want) > 1e-9 {
		t.Fatalf("confidence = %v, want %v", rec.Confidence, want)
	}
	if rec.ReferencePrice != 100 {
		t.Fatalf("reference price = %v", rec.ReferencePrice)
	}
}

func TestRecommendThresholdBoundaries(t *testing.T) {
	e := newTestEngine(t, Defaults())

	cases := []struct {
		score float64
		want  models.Action
	}{
		{0.3, models.ActionBuy},
		{-0.3, models.ActionSell},
		{0.299999, models.ActionHold},
		{-0.299999, models.ActionHold},
		{0, models.ActionHold},
	}
	for _, tc := range cases {
		// one full-confidence signal makes composite == normalized value
		rec, err := e.Recommend("X", []models.Signal{sig(models.CategoryTechnical, tc.score, 1)}, 50)
		if err != nil {
			t.Fatalf("score %v: %v", tc.score, err)
		}
		if rec.Action != tc.want {
			t.Fatalf("score %v: action = %s, want %s", tc.score, rec.Action, tc.want)
		}
	}
}

func TestRecommendCompositeBounded(t *testing.T) {
	e := newTestEngine(t, Defaults())
	sets := [][]models.Signal{
		{sig(models.CategoryTechnical, 1, 1)},
		{sig(models.CategoryTechnical, -1, 1), sig(models.CategorySentiment, -1, 1)},
		{sig(models.CategoryTechnical, 1, 1), sig(models.CategoryFundamental, 1, 1), sig(models.CategorySentiment, 1, 1)},
		{sig(models.CategoryTechnical, 0.2, 0.5)},
	}
	for _, set := range sets {
		rec, err := e.Recommend("X", set, 10)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if rec.CompositeScore < -1 || rec.CompositeScore > 1 {
			t.Fatalf("composite %v out of [-1,1]", rec.CompositeScore)
		}
		if rec.Confidence < 0 || rec.Confidence > 1 {
			t.Fatalf("confidence %v out of [0,1]", rec.Confidence)
		}
	}
}

func TestRecommendMonotonicInSignal(t *testing.T) {
	e := newTestEngine(t, Defaults())
	base := []models.Signal{
		sig(models.CategoryTechnical, 0.2, 0.9),
		sig(models.CategorySentiment, -0.5, 0.7),
	}
	prev := math.Inf(-1)
	for v := -1.0; v <= 1.0; v += 0.1 {
		set := append([]models.Signal{sig(models.CategoryFundamental, v, 0.8)}, base...)
		rec, err := e.Recommend("X", set, 10)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if rec.CompositeScore < prev-1e-12 {
			t.Fatalf("composite decreased: %v -> %v at v=%v", prev, rec.CompositeScore, v)
		}
		prev = rec.CompositeScore
	}
}

func TestRecommendEmptySignalSet(t *testing.T) {
	e := newTestEngine(t, Defaults())

	rec, err := e.Recommend("X", nil, 42)
	if !errors.Is(err, models.ErrInsufficientSignals) {
		t.Fatalf("err = %v, want ErrInsufficientSignals", err)
	}
	if rec.Action != models.ActionHold {
		t.Fatalf("action = %s, want HOLD", rec.Action)
	}
	if rec.Confidence != 0 {
		t.Fatalf("confidence = %v, want 0", rec.Confidence)
	}
	if !rec.Degenerate {
		t.Fatalf("degenerate flag not set")
	}
}

func TestRecommendNeutralOnlySignalsDegenerate(t *testing.T) {
	e := newTestEngine(t, Defaults())

	// a missing-sentiment placeholder carries zero confidence
	rec, err := e.Recommend("X", []models.Signal{NeutralSignal(models.CategorySentiment)}, 42)
	if !errors.Is(err, models.ErrInsufficientSignals) {
		t.Fatalf("err = %v, want ErrInsufficientSignals", err)
	}
	if !rec.Degenerate || rec.Action != models.ActionHold {
		t.Fatalf("expected degenerate HOLD, got %+v", rec)
	}
}

func TestRecommendNeutralSentimentDoesNotDilute(t *testing.T) {
	e := newTestEngine(t, Defaults())

	with, err := e.Recommend("X", []models.Signal{
		sig(models.CategoryTechnical, 0.6, 0.9),
		sig(models.CategoryFundamental, 0.4, 0.8),
		NeutralSignal(models.CategorySentiment),
	}, 100)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if math.Abs(with.CompositeScore-0.43) > 1e-9 {
		t.Fatalf("composite = %v, want 0.43", with.CompositeScore)
	}
}

func TestRecommendTargetAndStop(t *testing.T) {
	e := newTestEngine(t, Defaults())
	rec, err := e.Recommend("X", []models.Signal{sig(models.CategoryTechnical, 0.5, 1)}, 200)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	wantTarget := 200 * (1 + 0.1*0.5)
	wantStop := 200 * (1 - 0.05*0.5)
	if math.Abs(rec.TargetPrice-wantTarget) > 1e-9 {
		t.Fatalf("target = %v, want %v", rec.TargetPrice, wantTarget)
	}
	if math.Abs(rec.StopLoss-wantStop) > 1e-9 {
		t.Fatalf("stop = %v, want %v", rec.StopLoss, wantStop)
	}
	if rec.TargetPrice <= 0 || rec.StopLoss <= 0 {
		t.Fatalf("prices must stay positive")
	}
}

func TestRecommendReasoningSorted(t *testing.T) {
	e := newTestEngine(t, Defaults())
	rec, err := e.Recommend("X", []models.Signal{
		sig(models.CategoryTechnical, 0.1, 1),
		sig(models.CategoryFundamental, -0.9, 1),
		sig(models.CategorySentiment, 0.5, 1),
	}, 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(rec.Reasoning) != 3 {
		t.Fatalf("reasoning entries = %d", len(rec.Reasoning))
	}
	for i := 1; i < len(rec.Reasoning); i++ {
		if math.Abs(rec.Reasoning[i].Value) > math.Abs(rec.Reasoning[i-1].Value) {
			t.Fatalf("reasoning not sorted by |contribution|: %+v", rec.Reasoning)
		}
	}
	if rec.Reasoning[0].Category != models.CategoryFundamental {
		t.Fatalf("largest contributor = %s, want fundamental", rec.Reasoning[0].Category)
	}
}

func TestInvalidConfiguration(t *testing.T) {
	bad := []Config{}
	c := Defaults()
	c.KTarget = 0
	bad = append(bad, c)
	c = Defaults()
	c.KStop = -0.1
	bad = append(bad, c)
	c = Defaults()
	c.LearningRate = -1
	bad = append(bad, c)
	c = Defaults()
	c.WeightFloor, c.WeightCeiling = 2, 1
	bad = append(bad, c)

	for i, cfg := range bad {
		if _, err := New(cfg, NewWeights(nil)); !errors.Is(err, models.ErrInvalidConfiguration) {
			t.Fatalf("case %d: err = %v, want ErrInvalidConfiguration", i, err)
		}
	}
}
