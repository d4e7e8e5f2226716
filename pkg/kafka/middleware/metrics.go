package kafka_middleware

import (
	"context"
	"sync/atomic"
	"time"

	"stayhub/pkg/kafka"
)

// Metrics counts publish and consume outcomes. All fields are updated
// atomically and safe to read from another goroutine.
type Metrics struct {
	MessagesPublished       atomic.Int64
	MessagesPublishedFailed atomic.Int64
	publishDurationTotal    atomic.Int64

	MessagesConsumed       atomic.Int64
	MessagesConsumedFailed atomic.Int64
	consumeDurationTotal   atomic.Int64
}

func NewMetrics() *Metrics {
	return &Metrics{}
}

func (m *Metrics) Reset() {
	m.MessagesPublished.Store(0)
	m.MessagesPublishedFailed.Store(0)
	m.publishDurationTotal.Store(0)
	m.MessagesConsumed.Store(0)
	m.MessagesConsumedFailed.Store(0)
	m.consumeDurationTotal.Store(0)
}

func (m *Metrics) AvgPublishDuration() time.Duration {
	published := m.MessagesPublished.Load()
	if published == 0 {
		return 0
	}
	return time.Duration(m.publishDurationTotal.Load() / published)
}

func (m *Metrics) AvgConsumeDuration() time.Duration {
	consumed := m.MessagesConsumed.Load()
	if consumed == 0 {
		return 0
	}
	return time.Duration(m.consumeDurationTotal.Load() / consumed)
}

func MetricsProducerMiddleware(metrics *Metrics) kafka.ProducerMiddleware {
	return func(ctx context.Context, msg kafka.Message, next func(ctx context.Context, msg kafka.Message) error) error {
		start := time.Now()
		err := next(ctx, msg)
		metrics.publishDurationTotal.Add(int64(time.Since(start)))

		if err != nil {
			metrics.MessagesPublishedFailed.Add(1)
		} else {
			metrics.MessagesPublished.Add(1)
		}

		return err
	}
}

func MetricsConsumerMiddleware(metrics *Metrics) kafka.ConsumerMiddleware {
	return func(ctx context.Context, msg kafka.Message, next kafka.MessageHandler) error {
		start := time.Now()
		err := next(ctx, msg)
		metrics.consumeDurationTotal.Add(int64(time.Since(start)))

		if err != nil {
			metrics.MessagesConsumedFailed.Add(1)
		} else {
			metrics.MessagesConsumed.Add(1)
		}

		return err
	}
}
