package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"StockSage/internal/domain/models"
	domrepo "StockSage/internal/domain/repository"
	domsvc "StockSage/internal/domain/service"
	"StockSage/internal/engine"
	"StockSage/internal/learner"
	"StockSage/internal/tracker"
	"StockSage/pkg/queue"
)

// Advisor orchestrates the recommendation flow: analyzer scores in,
// normalized and weighed by the engine, tracked by the watchlist,
// fed back through the learner.
type Advisor struct {
	engine  *engine.Engine
	tracker *tracker.Tracker
	learner *learner.Learner

	technical   domsvc.TechnicalAnalyzer
	fundamental domsvc.FundamentalAnalyzer
	sentiment   domsvc.SentimentAnalyzer

	weights *engine.Weights
	log     domrepo.AdjustmentLog
	history domrepo.OutcomeHistory
	pub     domrepo.Publisher
	prices  domrepo.PriceCache
	metrics domrepo.Metrics
	queue   queue.QueueService
}

// NewAdvisor wires the advisor use case. history, pub and prices may
// be nil when the corresponding backend is not configured.
func NewAdvisor(
	eng *engine.Engine,
	trk *tracker.Tracker,
	lrn *learner.Learner,
	weights *engine.Weights,
	log domrepo.AdjustmentLog,
	history domrepo.OutcomeHistory,
	pub domrepo.Publisher,
	prices domrepo.PriceCache,
	metrics domrepo.Metrics,
) *Advisor {
	return &Advisor{
		engine:  eng,
		tracker: trk,
		learner: lrn,
		weights: weights,
		log:     log,
		history: history,
		pub:     pub,
		prices:  prices,
		metrics: metrics,
	}
}

// SetQueue injects the job queue that drives learning passes after an
// entry settles.
func (a *Advisor) SetQueue(q queue.QueueService) { a.queue = q }

// SetAnalyzers injects the collaborator scorers used when a request
// carries no inline signal values.
func (a *Advisor) SetAnalyzers(t domsvc.TechnicalAnalyzer, f domsvc.FundamentalAnalyzer, s domsvc.SentimentAnalyzer) {
	a.technical, a.fundamental, a.sentiment = t, f, s
}

// Recommend evaluates a symbol. Inline signals take precedence; absent
// those, the configured analyzers are consulted. A missing sentiment
// score degrades to a neutral signal instead of dropping the category.
func (a *Advisor) Recommend(ctx context.Context, req models.RecommendRequest) (*models.Recommendation, *models.WatchEntry, error) {
	start := time.Now()

	var signals []models.Signal
	if len(req.Signals) > 0 {
		signals = a.normalizeInline(req.Signals)
	} else {
		var err error
		signals, err = a.collectSignals(ctx, req.Symbol)
		if err != nil {
			a.metrics.RecordError("collect_signals")
			return nil, nil, err
		}
	}

	rec, err := a.engine.Recommend(req.Symbol, signals, req.CurrentPrice)
	if err != nil && !errors.Is(err, models.ErrInsufficientSignals) {
		a.metrics.RecordError("recommend")
		return nil, nil, err
	}
	degenerate := errors.Is(err, models.ErrInsufficientSignals)

	a.metrics.RecordRecommendation(rec.Symbol, string(rec.Action))
	a.metrics.RecordLatency("recommend", time.Since(start).Seconds())

	if a.pub != nil && !degenerate {
		if perr := a.pub.PublishRecommendation(ctx, &rec); perr != nil {
			// the recommendation is still valid without the event
			a.metrics.RecordError("publish_recommendation")
		}
	}

	var entry *models.WatchEntry
	if req.Track && !degenerate {
		entry, err = a.tracker.Track(ctx, rec)
		if err != nil {
			return &rec, nil, err
		}
	}
	if degenerate {
		return &rec, nil, models.ErrInsufficientSignals
	}
	return &rec, entry, nil
}

func (a *Advisor) normalizeInline(inputs []models.SignalInput) []models.Signal {
	signals := make([]models.Signal, 0, len(inputs))
	seen := make(map[models.SignalCategory]bool, len(inputs))
	for _, in := range inputs {
		cat := models.SignalCategory(in.Category)
		signals = append(signals, engine.Normalize(cat, in.Value, in.Confidence, models.NormalizeScale(in.Scale)))
		seen[cat] = true
	}
	if !seen[models.CategorySentiment] {
		signals = append(signals, engine.NeutralSignal(models.CategorySentiment))
	}
	return signals
}

func (a *Advisor) collectSignals(ctx context.Context, symbol string) ([]models.Signal, error) {
	signals := make([]models.Signal, 0, 3)

	score := func(cat models.SignalCategory, fn func(context.Context, string) (domsvc.RawScore, error)) error {
		if fn == nil {
			return nil
		}
		rs, err := fn(ctx, symbol)
		if err != nil {
			return fmt.Errorf("%s analyzer: %w", cat, err)
		}
		if rs.Missing {
			if cat == models.CategorySentiment {
				signals = append(signals, engine.NeutralSignal(cat))
			}
			return nil
		}
		signals = append(signals, engine.Normalize(cat, rs.Value, rs.Confidence, rs.Scale))
		return nil
	}

	if a.technical != nil {
		if err := score(models.CategoryTechnical, a.technical.Score); err != nil {
			return nil, err
		}
	}
	if a.fundamental != nil {
		if err := score(models.CategoryFundamental, a.fundamental.Score); err != nil {
			return nil, err
		}
	}
	if a.sentiment != nil {
		if err := score(models.CategorySentiment, a.sentiment.Score); err != nil {
			return nil, err
		}
	} else {
		signals = append(signals, engine.NeutralSignal(models.CategorySentiment))
	}
	return signals, nil
}

// Refresh evaluates one watchlist entry on demand. A zero latestPrice
// falls back to the latest cached feed price for the symbol.
func (a *Advisor) Refresh(ctx context.Context, id string, latestPrice float64) (*models.WatchEntry, error) {
	before, err := a.tracker.Get(id)
	if err != nil {
		return nil, err
	}
	if latestPrice <= 0 && a.prices != nil {
		if p, ok, cerr := a.prices.GetLastPrice(ctx, before.Symbol); cerr == nil && ok {
			latestPrice = p
		}
	}
	entry, err := a.tracker.Refresh(ctx, id, latestPrice)
	if err != nil {
		return nil, err
	}
	a.afterLabel(ctx, before, entry)
	return entry, nil
}

// Poll runs a periodic price check on one entry. Unlike Refresh it
// only labels early on target/stop hits or once the horizon elapses.
func (a *Advisor) Poll(ctx context.Context, id string, latestPrice float64) (*models.WatchEntry, error) {
	before, err := a.tracker.Get(id)
	if err != nil {
		return nil, err
	}
	entry, err := a.tracker.Poll(ctx, id, latestPrice)
	if err != nil {
		return nil, err
	}
	a.afterLabel(ctx, before, entry)
	return entry, nil
}

// afterLabel records history and metrics when an entry just turned
// terminal.
func (a *Advisor) afterLabel(ctx context.Context, before, after *models.WatchEntry) {
	if before.Outcome.Terminal() || !after.Outcome.Terminal() {
		return
	}
	a.metrics.RecordOutcome(string(after.Outcome))
	if a.history != nil {
		if err := a.history.Record(ctx, after); err != nil {
			a.metrics.RecordError("outcome_history")
		}
	}
	if a.queue != nil && after.Outcome != models.OutcomeExpired {
		payload := LearnTrigger{EntryID: after.ID, Symbol: after.Symbol}
		if err := a.queue.PublishMessage(ctx, LearnMessageType, payload); err != nil {
			a.metrics.RecordError("learn_enqueue")
		}
	}
}

// Remove stops tracking an entry.
func (a *Advisor) Remove(ctx context.Context, id string) error {
	return a.tracker.Remove(ctx, id)
}

// Watchlist returns all entries, newest first.
func (a *Advisor) Watchlist() []*models.WatchEntry {
	return a.tracker.List()
}

// Entry returns one watchlist entry.
func (a *Advisor) Entry(id string) (*models.WatchEntry, error) {
	return a.tracker.Get(id)
}

// Learn runs one exclusive learning pass over unconsumed labeled
// entries and reports the applied adjustments.
func (a *Advisor) Learn(ctx context.Context, limit int) ([]models.LearningAdjustment, error) {
	start := time.Now()
	adjs, err := a.learner.Learn(ctx, limit)
	if err != nil {
		a.metrics.RecordError("learn")
		return nil, err
	}
	for _, adj := range adjs {
		a.metrics.RecordAdjustment(string(adj.Category))
	}
	a.metrics.RecordLatency("learn", time.Since(start).Seconds())
	return adjs, nil
}

// Weights returns a read-only snapshot for display and audit.
func (a *Advisor) Weights() *models.WeightVector {
	return a.weights.Snapshot()
}

// Adjustments lists recent audit records.
func (a *Advisor) Adjustments(ctx context.Context, limit int) ([]models.LearningAdjustment, error) {
	if a.log == nil {
		return nil, nil
	}
	return a.log.List(ctx, limit)
}

// Summary aggregates labeled outcomes.
func (a *Advisor) Summary() models.PerformanceSummary {
	return a.tracker.Summary()
}

// Insights ranks symbols by historical hit rate.
func (a *Advisor) Insights() []models.SymbolStats {
	return a.tracker.Insights()
}

// HandleTick absorbs one feed price: cache it, expose it as a gauge,
// and poll any pending entries for the symbol.
func (a *Advisor) HandleTick(ctx context.Context, t *models.PriceTick) error {
	if t == nil || t.Symbol == "" || t.Price <= 0 {
		return fmt.Errorf("invalid tick")
	}
	if a.prices != nil {
		if err := a.prices.SetLastPrice(ctx, t.Symbol, t.Price); err != nil {
			a.metrics.RecordError("price_cache")
		}
	}
	a.metrics.RecordLastPrice(t.Symbol, t.Price)

	for _, e := range a.tracker.List() {
		if e.Symbol != t.Symbol || e.Outcome.Terminal() {
			continue
		}
		after, err := a.tracker.Poll(ctx, e.ID, t.Price)
		if err != nil {
			a.metrics.RecordError("poll_entry")
			continue
		}
		a.afterLabel(ctx, e, after)
	}
	return nil
}
