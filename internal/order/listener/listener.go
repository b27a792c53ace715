package listener

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/fekuna/omnipos-availability-service/internal/apperr"
	"github.com/fekuna/omnipos-availability-service/internal/order"
	"github.com/fekuna/omnipos-availability-service/internal/order/dto"
	"github.com/fekuna/omnipos-availability-service/pkg/logger"
	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// MessageSource is the part of *broker.KafkaConsumer the listener uses.
type MessageSource interface {
	FetchMessage(ctx context.Context) (kafka.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafka.Message) error
}

// DefaultMaxAttempts bounds how often one message is ingested before it is skipped.
const DefaultMaxAttempts = 5

// OrderListener ingests order webhooks relayed through Kafka. Offsets are
// committed once ingestion succeeds, the message is unusable, or
// maxAttempts ingestions have failed.
type OrderListener struct {
	consumer    MessageSource
	uc          order.UseCase
	backoff     time.Duration
	maxAttempts int
	logger      logger.ZapLogger
}

func NewOrderListener(consumer MessageSource, uc order.UseCase, logger logger.ZapLogger) *OrderListener {
	return &OrderListener{
		consumer:    consumer,
		uc:          uc,
		backoff:     time.Second,
		maxAttempts: DefaultMaxAttempts,
		logger:      logger,
	}
}

func (l *OrderListener) Start(ctx context.Context) {
	l.logger.Info("Starting Order Kafka Listener")
	for {
		select {
		case <-ctx.Done():
			l.logger.Info("Stopping Order Kafka Listener")
			return
		default:
			msg, err := l.consumer.FetchMessage(ctx)
			if err != nil {
				if ctx.Err() != nil {
					return
				}
				l.logger.Error("Failed to fetch kafka message", zap.Error(err))
				l.sleep(ctx)
				continue
			}

			for attempt := 1; !l.processMessage(ctx, msg.Value); attempt++ {
				if attempt >= l.maxAttempts {
					l.logger.Error("Giving up on relayed order",
						zap.String("topic", msg.Topic),
						zap.Int("partition", msg.Partition),
						zap.Int64("offset", msg.Offset),
						zap.Int("attempts", attempt),
					)
					break
				}
				if !l.sleep(ctx) {
					return
				}
			}
			if err := l.consumer.CommitMessages(ctx, msg); err != nil && ctx.Err() == nil {
				l.logger.Error("Failed to commit kafka message", zap.Int64("offset", msg.Offset), zap.Error(err))
			}
		}
	}
}

func (l *OrderListener) sleep(ctx context.Context) bool {
	select {
	case <-ctx.Done():
		return false
	case <-time.After(l.backoff):
		return true
	}
}

// processMessage reports whether the message is done with. Only ingestion
// failures that may succeed on retry return false.
func (l *OrderListener) processMessage(ctx context.Context, value []byte) bool {
	var env dto.RelayEnvelope
	if err := json.Unmarshal(value, &env); err != nil {
		l.logger.Error("Failed to unmarshal relay envelope", zap.Error(err))
		return true
	}

	input := &dto.IngestInput{ShopDomain: env.ShopDomain, Topic: env.Topic}
	if err := json.Unmarshal(env.Payload, &input.Order); err != nil {
		l.logger.Error("Failed to unmarshal order payload",
			zap.String("shop_domain", env.ShopDomain),
			zap.Error(err),
		)
		return true
	}

	l.logger.Debug("Processing relayed order",
		zap.String("topic", env.Topic),
		zap.Int64("order_id", input.Order.ID),
	)

	_, err := l.uc.Ingest(ctx, input)
	if err == nil {
		return true
	}

	var v *apperr.ValidationError
	if errors.As(err, &v) {
		l.logger.Warn("Dropping invalid relayed order", zap.Int64("order_id", input.Order.ID), zap.Error(err))
		return true
	}
	l.logger.Error("Failed to ingest relayed order, retrying",
		zap.String("shop_domain", env.ShopDomain),
		zap.Int64("order_id", input.Order.ID),
		zap.Error(err),
	)
	return false
}
