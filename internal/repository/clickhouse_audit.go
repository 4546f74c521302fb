package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"StockSage/internal/domain/models"
	"StockSage/internal/domain/repository"
)

// ClickHouseAuditLog implements AdjustmentLog on a MergeTree table.
// Rows are append-only; the weight vector can be rebuilt by replaying
// them in applied_at order.
type ClickHouseAuditLog struct {
	db    *sql.DB
	table string
}

// NewClickHouseAuditLog creates the adjustment log.
func NewClickHouseAuditLog(db *sql.DB, table string) repository.AdjustmentLog {
	return &ClickHouseAuditLog{db: db, table: table}
}

func (s *ClickHouseAuditLog) Append(ctx context.Context, adjs []models.LearningAdjustment) error {
	if len(adjs) == 0 {
		return nil
	}
	values := make([]string, 0, len(adjs))
	args := make([]interface{}, 0, len(adjs)*5)
	for _, a := range adjs {
		values = append(values, "(?, ?, ?, ?, ?)")
		args = append(args, a.AppliedAt, string(a.Category), a.Delta, a.Reason, a.EntryID)
	}
	q := fmt.Sprintf("INSERT INTO %s (applied_at, category, delta, reason, entry_id) VALUES %s",
		s.table, strings.Join(values, ","))
	if _, err := s.db.ExecContext(ctx, q, args...); err != nil {
		return fmt.Errorf("append adjustments: %w", err)
	}
	return nil
}

func (s *ClickHouseAuditLog) List(ctx context.Context, limit int) ([]models.LearningAdjustment, error) {
	q := fmt.Sprintf("SELECT applied_at, category, delta, reason, entry_id FROM %s ORDER BY applied_at DESC LIMIT ?", s.table)
	rows, err := s.db.QueryContext(ctx, q, limit)
	if err != nil {
		return nil, fmt.Errorf("list adjustments: %w", err)
	}
	defer rows.Close()

	var out []models.LearningAdjustment
	for rows.Next() {
		var a models.LearningAdjustment
		var cat string
		if err := rows.Scan(&a.AppliedAt, &cat, &a.Delta, &a.Reason, &a.EntryID); err != nil {
			return nil, err
		}
		a.Category = models.SignalCategory(cat)
		out = append(out, a)
	}
	return out, rows.Err()
}

// ClickHouseOutcomeHistory implements OutcomeHistory: one row per
// labeled entry, kept for offline hit-rate analysis.
type ClickHouseOutcomeHistory struct {
	db    *sql.DB
	table string
}

// NewClickHouseOutcomeHistory creates the outcome history writer.
func NewClickHouseOutcomeHistory(db *sql.DB, table string) repository.OutcomeHistory {
	return &ClickHouseOutcomeHistory{db: db, table: table}
}

func (s *ClickHouseOutcomeHistory) Record(ctx context.Context, e *models.WatchEntry) error {
	q := fmt.Sprintf(`INSERT INTO %s
		(labeled_at, entry_id, symbol, action, outcome, reference_price, last_price, performance_pct, target_hit, stop_loss_hit, composite_score, confidence)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`, s.table)
	_, err := s.db.ExecContext(ctx, q,
		time.Now().UTC(),
		e.ID,
		e.Symbol,
		string(e.Recommendation.Action),
		string(e.Outcome),
		e.Recommendation.ReferencePrice,
		e.LastCheckedPrice,
		e.PerformancePct,
		boolToUInt8(e.TargetHit),
		boolToUInt8(e.StopLossHit),
		e.Recommendation.CompositeScore,
		e.Recommendation.Confidence,
	)
	if err != nil {
		return fmt.Errorf("record outcome: %w", err)
	}
	return nil
}

func boolToUInt8(b bool) uint8 {
	if b {
		return 1
	}
	return 0
}
