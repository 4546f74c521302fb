package tracker

import (
	"sort"

	"StockSage/internal/domain/models"
)

// minSymbolSample is the smallest labeled-entry count a symbol needs
// before it shows up in the insight report.
const minSymbolSample = 3

// Summary aggregates outcomes over the whole watchlist.
func (t *Tracker) Summary() models.PerformanceSummary {
	var s models.PerformanceSummary
	var pctSum float64
	for _, e := range t.List() {
		s.Total++
		switch e.Outcome {
		case models.OutcomeCorrect:
			s.Correct++
			pctSum += e.PerformancePct
		case models.OutcomeIncorrect:
			s.Incorrect++
			pctSum += e.PerformancePct
		case models.OutcomeExpired:
			s.Expired++
		default:
			s.Pending++
		}
	}
	labeled := s.Correct + s.Incorrect
	if labeled > 0 {
		s.SuccessRate = float64(s.Correct) / float64(labeled) * 100
		s.AvgPct = pctSum / float64(labeled)
	}
	return s
}

// Insights ranks symbols by hit rate, skipping thin samples.
func (t *Tracker) Insights() []models.SymbolStats {
	bySymbol := make(map[string]*models.SymbolStats)
	for _, e := range t.List() {
		if e.Outcome != models.OutcomeCorrect && e.Outcome != models.OutcomeIncorrect {
			continue
		}
		st, ok := bySymbol[e.Symbol]
		if !ok {
			st = &models.SymbolStats{Symbol: e.Symbol}
			bySymbol[e.Symbol] = st
		}
		st.Total++
		if e.Outcome == models.OutcomeCorrect {
			st.Correct++
		}
	}
	out := make([]models.SymbolStats, 0, len(bySymbol))
	for _, st := range bySymbol {
		if st.Total < minSymbolSample {
			continue
		}
		st.SuccessRate = float64(st.Correct) / float64(st.Total) * 100
		out = append(out, *st)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].SuccessRate != out[j].SuccessRate {
			return out[i].SuccessRate > out[j].SuccessRate
		}
		return out[i].Symbol < out[j].Symbol
	})
	return out
}
