package kafka

import (
	"context"
	"encoding/json"
	"time"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/yourorg/ma-backtest-service/internal/model"
)

// Producer publishes backtest lifecycle events to Kafka
type Producer struct {
	writer   *kafka.Writer
	topic    string
	clientID string
	logger   *zap.Logger
}

// BacktestCompletedEvent is published after a backtest run finishes
type BacktestCompletedEvent struct {
	MAWindow    int                   `json:"ma_window"`
	TradeMode   model.TradeMode       `json:"trade_mode"`
	Summary     model.BacktestSummary `json:"summary"`
	CompletedAt time.Time             `json:"completed_at"`
}

// NewProducer creates a new Kafka producer. A nil Producer is safe to call;
// publishing becomes a no-op when Kafka is disabled.
func NewProducer(brokers []string, clientID, topic string, logger *zap.Logger) *Producer {
	writer := &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.LeastBytes{},
		BatchSize:    100,
		BatchTimeout: 10 * time.Millisecond,
		RequiredAcks: kafka.RequireOne,
		Async:        false,
		Transport: &kafka.Transport{
			ClientID: clientID,
		},
	}

	return &Producer{
		writer:   writer,
		topic:    topic,
		clientID: clientID,
		logger:   logger,
	}
}

// PublishBacktestCompleted sends a completed-run event. Failures are logged
// and swallowed: event delivery never fails a finished backtest.
func (p *Producer) PublishBacktestCompleted(ctx context.Context, event BacktestCompletedEvent) {
	if p == nil {
		return
	}

	value, err := json.Marshal(event)
	if err != nil {
		p.logger.Error("Failed to marshal backtest event", zap.Error(err))
		return
	}

	message := kafka.Message{
		Key:   []byte(p.clientID),
		Value: value,
		Time:  time.Now(),
	}

	if err := p.writer.WriteMessages(ctx, message); err != nil {
		p.logger.Warn("Failed to publish backtest event",
			zap.Error(err),
			zap.String("topic", p.topic))
		return
	}

	p.logger.Debug("Published backtest event",
		zap.String("topic", p.topic),
		zap.Int("ma_window", event.MAWindow))
}

// Close closes the underlying writer
func (p *Producer) Close() error {
	if p == nil {
		return nil
	}
	return p.writer.Close()
}
