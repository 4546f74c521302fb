package usecase

import (
	"context"
	"fmt"
	"time"

	"StockSage/internal/domain/models"
	drepo "StockSage/internal/domain/repository"
)

// TickProcessor routes feed ticks to the configured backend: "kafka"
// publishes them for the consumer group to absorb, "direct" hands them
// straight to the advisor.
type TickProcessor struct {
	pub     drepo.Publisher
	advisor *Advisor
	metrics drepo.Metrics
	backend string
}

// NewTickProcessor creates a new TickProcessor instance.
func NewTickProcessor(pub drepo.Publisher, advisor *Advisor, metrics drepo.Metrics, backend string) *TickProcessor {
	return &TickProcessor{pub: pub, advisor: advisor, metrics: metrics, backend: backend}
}

// Process routes a single tick to the configured backend.
func (p *TickProcessor) Process(ctx context.Context, t *models.PriceTick) error {
	if t == nil {
		return fmt.Errorf("tick is nil")
	}
	start := time.Now()
	var err error

	switch p.backend {
	case "kafka":
		err = p.pub.PublishTick(ctx, t)
	case "direct":
		err = p.advisor.HandleTick(ctx, t)
	default:
		err = fmt.Errorf("unknown backend: %s", p.backend)
	}

	if err != nil {
		p.metrics.RecordError("process_tick")
		return fmt.Errorf("process tick: %w", err)
	}
	p.metrics.RecordLatency("process_tick", time.Since(start).Seconds())
	return nil
}

// Close releases the publisher.
func (p *TickProcessor) Close() {
	if p.pub != nil {
		_ = p.pub.Close()
	}
}
