package config

import "time"

const (
	DefaultMongoURI          = "mongodb://localhost:27017"
	DefaultMongoDatabaseName = "stayhub"
	DefaultMongoConnTimeout  = 10 * time.Second

	DefaultPort = "8080"

	DefaultJWTTTL     = 12 * time.Hour
	DefaultBcryptCost = 12

	DefaultKafkaReservationTopic = "reservations.events"
	DefaultKafkaDLQTopic         = "reservations.events.dlq"

	DefaultRateLimitRequests = 30
	DefaultRateLimitWindow   = 1 * time.Minute

	DefaultRequestTimeout = 30 * time.Second
	DefaultIdempotencyTTL = 24 * time.Hour
	DefaultMaxRequestSize = 1 * 1024 * 1024 // 1MB

	DefaultReadTimeout     = 15 * time.Second
	DefaultWriteTimeout    = 15 * time.Second
	DefaultIdleTimeout     = 60 * time.Second
	DefaultShutdownTimeout = 30 * time.Second

	DefaultRoomLockTTL       = 10 * time.Second
	DefaultLockRetryInterval = 25 * time.Millisecond

	DefaultPaginationLimit = 100

	DefaultLogLevel = "info"
)

var DefaultKafkaBrokers = []string{"localhost:9092"}
