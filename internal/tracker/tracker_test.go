package tracker

import (
	"context"
	"errors"
	"testing"
	"time"

	"StockSage/internal/domain/models"
	"StockSage/internal/engine"
)

func buyRec(symbol string, ref float64) models.Recommendation {
	return models.Recommendation{
		Symbol:         symbol,
		Action:         models.ActionBuy,
		CompositeScore: 0.5,
		ReferencePrice: ref,
		TargetPrice:    ref * 1.05,
		StopLoss:       ref * 0.975,
		Reasoning: []models.Contribution{
			{Category: models.CategoryTechnical, Value: 0.4},
			{Category: models.CategoryFundamental, Value: 0.1},
		},
		CreatedAt: time.Now().UTC(),
	}
}

func TestTrackStartsPending(t *testing.T) {
	tr := New(engine.Defaults(), nil)
	e, err := tr.Track(context.Background(), buyRec("AAPL", 100))
	if err != nil {
		t.Fatalf("track: %v", err)
	}
	if e.Outcome != models.OutcomePending {
		t.Fatalf("outcome = %s, want PENDING", e.Outcome)
	}
	if e.Symbol != "AAPL" || e.ID == "" {
		t.Fatalf("entry = %+v", e)
	}
}

func TestRefreshBuyBelowReferenceIncorrect(t *testing.T) {
	tr := New(engine.Defaults(), nil)
	e, _ := tr.Track(context.Background(), buyRec("AAPL", 100))

	got, err := tr.Refresh(context.Background(), e.ID, 95)
	if err != nil {
		t.Fatalf("refresh: %v", err)
	}
	if got.Outcome != models.OutcomeIncorrect {
		t.Fatalf("outcome = %s, want INCORRECT", got.Outcome)
	}
	if got.LastCheckedPrice != 95 {
		t.Fatalf("last checked = %v", got.LastCheckedPrice)
	}
	if got.PerformancePct != -5 {
		t.Fatalf("performance = %v, want -5", got.PerformancePct)
	}
}

func TestRefreshBuyAboveReferenceCorrect(t *testing.T) {
	tr := New(engine.Defaults(), nil)
	e, _ := tr.Track(context.Background(), buyRec("AAPL", 100))

	got, err := tr.Refresh(context.Background(), e.ID, 106)
	if err != nil {
		t.Fatalf("refresh: %v", err)
	}
	if got.Outcome != models.OutcomeCorrect {
		t.Fatalf("outcome = %s, want CORRECT", got.Outcome)
	}
	if !got.TargetHit {
		t.Fatalf("target hit flag not set at %v vs target %v", 106.0, got.Recommendation.TargetPrice)
	}
}

func TestRefreshSellDirection(t *testing.T) {
	tr := New(engine.Defaults(), nil)
	rec := buyRec("TSLA", 200)
	rec.Action = models.ActionSell
	rec.TargetPrice = 190
	rec.StopLoss = 206
	e, _ := tr.Track(context.Background(), rec)

	got, err := tr.Refresh(context.Background(), e.ID, 198)
	if err != nil {
		t.Fatalf("refresh: %v", err)
	}
	if got.Outcome != models.OutcomeCorrect {
		t.Fatalf("outcome = %s, want CORRECT", got.Outcome)
	}
}

func TestRefreshHoldDriftTolerance(t *testing.T) {
	tr := New(engine.Defaults(), nil)
	rec := buyRec("MSFT", 100)
	rec.Action = models.ActionHold

	e, _ := tr.Track(context.Background(), rec)
	got, _ := tr.Refresh(context.Background(), e.ID, 101) // 1% drift, inside 2%
	if got.Outcome != models.OutcomeCorrect {
		t.Fatalf("outcome = %s, want CORRECT at 1%% drift", got.Outcome)
	}

	e2, _ := tr.Track(context.Background(), rec)
	got2, _ := tr.Refresh(context.Background(), e2.ID, 103) // 3% drift
	if got2.Outcome != models.OutcomeIncorrect {
		t.Fatalf("outcome = %s, want INCORRECT at 3%% drift", got2.Outcome)
	}
}

func TestRefreshLabeledEntryIsNoop(t *testing.T) {
	tr := New(engine.Defaults(), nil)
	e, _ := tr.Track(context.Background(), buyRec("AAPL", 100))

	first, _ := tr.Refresh(context.Background(), e.ID, 95)
	second, err := tr.Refresh(context.Background(), e.ID, 200)
	if err != nil {
		t.Fatalf("repeated refresh must not error: %v", err)
	}
	if second.Outcome != first.Outcome {
		t.Fatalf("outcome changed on repeated refresh: %s -> %s", first.Outcome, second.Outcome)
	}
	if second.LastCheckedPrice != first.LastCheckedPrice {
		t.Fatalf("labeled entry mutated by refresh")
	}
}

func TestPollBeforeHorizonStaysPending(t *testing.T) {
	tr := New(engine.Defaults(), nil)
	e, _ := tr.Track(context.Background(), buyRec("AAPL", 100))

	got, err := tr.Poll(context.Background(), e.ID, 101) // inside target/stop band
	if err != nil {
		t.Fatalf("poll: %v", err)
	}
	if got.Outcome != models.OutcomePending {
		t.Fatalf("outcome = %s, want PENDING before horizon", got.Outcome)
	}
	if got.LastCheckedPrice != 101 {
		t.Fatalf("poll must record price, got %v", got.LastCheckedPrice)
	}
}

func TestPollEarlyLabelsOnTargetHit(t *testing.T) {
	tr := New(engine.Defaults(), nil)
	e, _ := tr.Track(context.Background(), buyRec("AAPL", 100))

	got, _ := tr.Poll(context.Background(), e.ID, 106) // above target 105
	if got.Outcome != models.OutcomeCorrect || !got.TargetHit {
		t.Fatalf("expected early CORRECT with target hit, got %+v", got)
	}
}

func TestPollExpiresWithoutPricePastHorizon(t *testing.T) {
	cfg := engine.Defaults()
	cfg.EvaluationHorizon = 0 // horizon immediately elapsed
	tr := New(cfg, nil)
	e, _ := tr.Track(context.Background(), buyRec("AAPL", 100))

	got, err := tr.Poll(context.Background(), e.ID, 0)
	if err != nil {
		t.Fatalf("poll: %v", err)
	}
	if got.Outcome != models.OutcomeExpired {
		t.Fatalf("outcome = %s, want EXPIRED", got.Outcome)
	}
}

func TestRemove(t *testing.T) {
	tr := New(engine.Defaults(), nil)
	e, _ := tr.Track(context.Background(), buyRec("AAPL", 100))
	if err := tr.Remove(context.Background(), e.ID); err != nil {
		t.Fatalf("remove: %v", err)
	}
	if _, err := tr.Get(e.ID); !errors.Is(err, models.ErrEntryNotFound) {
		t.Fatalf("err = %v, want ErrEntryNotFound", err)
	}
	if err := tr.Remove(context.Background(), "missing"); !errors.Is(err, models.ErrEntryNotFound) {
		t.Fatalf("err = %v, want ErrEntryNotFound", err)
	}
}

func TestUnconsumedLabeledOrderAndMark(t *testing.T) {
	tr := New(engine.Defaults(), nil)
	ctx := context.Background()

	a, _ := tr.Track(ctx, buyRec("A", 100))
	b, _ := tr.Track(ctx, buyRec("B", 100))
	if _, err := tr.Refresh(ctx, a.ID, 110); err != nil {
		t.Fatalf("refresh: %v", err)
	}
	if _, err := tr.Refresh(ctx, b.ID, 90); err != nil {
		t.Fatalf("refresh: %v", err)
	}

	got := tr.UnconsumedLabeled(10)
	if len(got) != 2 {
		t.Fatalf("unconsumed = %d, want 2", len(got))
	}
	if !got[0].AddedAt.Before(got[1].AddedAt) && !got[0].AddedAt.Equal(got[1].AddedAt) {
		t.Fatalf("entries not oldest-first")
	}

	if err := tr.MarkConsumed(ctx, []string{a.ID, b.ID}); err != nil {
		t.Fatalf("mark consumed: %v", err)
	}
	if left := tr.UnconsumedLabeled(10); len(left) != 0 {
		t.Fatalf("still unconsumed after mark: %d", len(left))
	}
}

func TestSummaryAndInsights(t *testing.T) {
	tr := New(engine.Defaults(), nil)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		e, _ := tr.Track(ctx, buyRec("WIN", 100))
		if _, err := tr.Refresh(ctx, e.ID, 110); err != nil {
			t.Fatalf("refresh: %v", err)
		}
	}
	e, _ := tr.Track(ctx, buyRec("LOSE", 100))
	if _, err := tr.Refresh(ctx, e.ID, 90); err != nil {
		t.Fatalf("refresh: %v", err)
	}
	if _, err := tr.Track(ctx, buyRec("OPEN", 100)); err != nil {
		t.Fatalf("track: %v", err)
	}

	s := tr.Summary()
	if s.Total != 5 || s.Correct != 3 || s.Incorrect != 1 || s.Pending != 1 {
		t.Fatalf("summary = %+v", s)
	}
	if s.SuccessRate != 75 {
		t.Fatalf("success rate = %v, want 75", s.SuccessRate)
	}

	ins := tr.Insights()
	if len(ins) != 1 {
		t.Fatalf("insights = %+v, want only WIN (min sample 3)", ins)
	}
	if ins[0].Symbol != "WIN" || ins[0].SuccessRate != 100 {
		t.Fatalf("insights[0] = %+v", ins[0])
	}
}
