package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"stayhub/pkg/config"
	"stayhub/pkg/contracts"
	"stayhub/pkg/kafka"
	kafka_config "stayhub/pkg/kafka/config"
	kafka_middleware "stayhub/pkg/kafka/middleware"
)

const ServiceName = "notifier"

// The notifier consumes reservation events and records them. It stands in
// for downstream fan-out such as confirmation emails.
func main() {
	cfg := config.Load(ServiceName)
	cfg.Log.Info("Starting StayHub notifier")

	kafkaCfg, err := kafka_config.Load()
	if err != nil {
		cfg.Log.Fatal("Invalid Kafka configuration", "error", err)
	}

	handler := func(ctx context.Context, msg kafka.Message) error {
		var event contracts.ReservationEvent
		if err := msg.DecodeValue(&event); err != nil {
			return kafka.NewPermanentError("decode reservation event", err)
		}

		cfg.Log.Info("Reservation event received",
			"type", msg.GetEventType(),
			"reservation_id", event.ReservationID,
			"room_id", event.RoomID,
			"user_id", event.UserID,
			"check_in", event.CheckIn,
			"check_out", event.CheckOut,
		)
		return nil
	}

	consumer, err := kafka.NewConsumer(
		kafkaCfg,
		cfg.KafkaReservationTopic,
		ServiceName,
		cfg.KafkaDLQTopic,
		handler,
		cfg.Log,
	)
	if err != nil {
		cfg.Log.Fatal("Failed to create Kafka consumer", "error", err)
	}
	defer consumer.Close()

	consumer.Use(kafka_middleware.LoggingConsumerMiddleware(cfg.Log))
	consumer.Use(kafka_middleware.MetricsConsumerMiddleware(kafka_middleware.NewMetrics()))

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := consumer.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
		cfg.Log.Fatal("Consumer stopped", "error", err)
	}

	cfg.Log.Info("Notifier shut down")
}
