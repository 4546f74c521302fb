package usecase

import (
	"context"
	"encoding/json"
	"time"

	"StockSage/internal/domain/models"
	domrepo "StockSage/internal/domain/repository"
	pkgkafka "StockSage/pkg/kafka"
)

// PriceTicksHandler consumes tick messages from Kafka and feeds them
// into the advisor's watchlist polling.
type PriceTicksHandler struct {
	topic   string
	advisor *Advisor
	metrics domrepo.Metrics
}

func NewPriceTicksHandler(topic string, advisor *Advisor, metrics domrepo.Metrics) *PriceTicksHandler {
	return &PriceTicksHandler{topic: topic, advisor: advisor, metrics: metrics}
}

func (h *PriceTicksHandler) Topic() string { return h.topic }

// incoming message schema: {symbol, price, volume, timestamp}
func (h *PriceTicksHandler) Handle(ctx context.Context, b []byte) error {
	var m models.PriceTick
	if err := json.Unmarshal(b, &m); err != nil {
		h.metrics.RecordError("consumer_unmarshal")
		return err
	}
	if m.Timestamp > 1e11 { // ms
		m.Timestamp = m.Timestamp / 1000
	}
	// E2E latency from event time to now (approx)
	h.metrics.RecordLatency("tick_e2e_seconds", time.Since(time.Unix(m.Timestamp, 0)).Seconds())

	if err := h.advisor.HandleTick(ctx, &m); err != nil {
		h.metrics.RecordError("consumer_handle")
		return err
	}
	return nil
}

var _ pkgkafka.MessageHandler = (*PriceTicksHandler)(nil)
