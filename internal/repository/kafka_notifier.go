package repository

import (
	"context"
	"fmt"

	"TradePulse/internal/domain/models"
	domrepo "TradePulse/internal/domain/repository"
	pkgkafka "TradePulse/pkg/kafka"
	applogger "TradePulse/pkg/logger"
)

// KafkaNotifier fans emitted signals out to a Kafka topic, keyed by symbol
// so per-symbol ordering is preserved for downstream consumers.
type KafkaNotifier struct {
	producer *pkgkafka.Producer
	topic    string
	l        *applogger.Logger
}

var _ domrepo.Notifier = (*KafkaNotifier)(nil)

func NewKafkaNotifier(producer *pkgkafka.Producer, topic string) *KafkaNotifier {
	return &KafkaNotifier{producer: producer, topic: topic}
}

// SetLogger injects a structured logger.
func (n *KafkaNotifier) SetLogger(l *applogger.Logger) { n.l = l }

func (n *KafkaNotifier) PublishSignal(ctx context.Context, s *models.Signal) error {
	if err := n.producer.Publish(ctx, n.topic, []byte(s.Symbol), s); err != nil {
		return fmt.Errorf("publish signal: %w", err)
	}
	if n.l != nil {
		n.l.Debug("signal published",
			applogger.String("topic", n.topic),
			applogger.String("symbol", s.Symbol),
			applogger.String("direction", string(s.Direction)),
		)
	}
	return nil
}

func (n *KafkaNotifier) Close() error {
	return n.producer.Close()
}
