package repository

import (
	"context"

	"StockSage/internal/domain/models"
	"StockSage/internal/domain/repository"
	pkgkafka "StockSage/pkg/kafka"
)

// KafkaPublisher implements Publisher for Kafka.
type KafkaPublisher struct {
	producer  *pkgkafka.Producer
	tickTopic string
	recTopic  string
}

// NewKafkaPublisher creates a Kafka publisher for advisor events.
func NewKafkaPublisher(producer *pkgkafka.Producer, tickTopic, recTopic string) repository.Publisher {
	return &KafkaPublisher{producer: producer, tickTopic: tickTopic, recTopic: recTopic}
}

func (p *KafkaPublisher) PublishTick(ctx context.Context, t *models.PriceTick) error {
	return p.producer.Publish(ctx, p.tickTopic, []byte(t.Symbol), map[string]interface{}{
		"symbol":    t.Symbol,
		"price":     t.Price,
		"volume":    t.Volume,
		"timestamp": t.Timestamp,
	})
}

func (p *KafkaPublisher) PublishRecommendation(ctx context.Context, r *models.Recommendation) error {
	return p.producer.Publish(ctx, p.recTopic, []byte(r.Symbol), r)
}

func (p *KafkaPublisher) Close() error {
	if p.producer != nil {
		return p.producer.Close()
	}
	return nil
}
