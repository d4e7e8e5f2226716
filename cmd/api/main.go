package main

import (
	"github.com/julienschmidt/httprouter"

	eventshandler "stayhub/internal/events/handler"
	eventsrepository "stayhub/internal/events/repository"
	eventsservice "stayhub/internal/events/service"
	hotelshandler "stayhub/internal/hotels/handler"
	hotelsrepository "stayhub/internal/hotels/repository"
	hotelsservice "stayhub/internal/hotels/service"
	reservationshandler "stayhub/internal/reservations/handler"
	reservationsrepository "stayhub/internal/reservations/repository"
	reservationsservice "stayhub/internal/reservations/service"
	reservationsvalidator "stayhub/internal/reservations/validator"
	roomshandler "stayhub/internal/rooms/handler"
	roomsrepository "stayhub/internal/rooms/repository"
	roomsservice "stayhub/internal/rooms/service"
	usershandler "stayhub/internal/users/handler"
	usersrepository "stayhub/internal/users/repository"
	usersservice "stayhub/internal/users/service"
	"stayhub/pkg/app"
	"stayhub/pkg/auth"
	"stayhub/pkg/config"
	"stayhub/pkg/contracts"
	"stayhub/pkg/kafka"
	kafka_config "stayhub/pkg/kafka/config"
	kafka_middleware "stayhub/pkg/kafka/middleware"
)

const ServiceName = "api"

// apiHandler mounts every vertical on the shared router.
type apiHandler struct {
	handlers []contracts.Handler
}

func (h *apiHandler) RegisterRoutes(router *httprouter.Router) {
	for _, handler := range h.handlers {
		handler.RegisterRoutes(router)
	}
}

func main() {
	cfg := config.Load(ServiceName)

	if err := cfg.Validate(); err != nil {
		cfg.Log.Fatal("Invalid configuration", "error", err)
	}
	cfg.LogConfiguration()

	cfg.Log.Info("Starting StayHub API")
	cfg.SetMongo()

	authManager := auth.NewManager(cfg.JWTSecret, cfg.JWTTTL, "stayhub")
	publisher := initPublisher(cfg)

	serverApp := app.NewApplication()
	serverApp.SetApp(cfg, initHandlers(cfg, authManager, publisher))
	serverApp.Run()
}

func initHandlers(cfg *config.Config, authManager *auth.Manager, publisher reservationsservice.EventPublisher) contracts.Handler {
	hotelRepo := hotelsrepository.NewMongoHotelRepository(cfg)
	roomRepo := roomsrepository.NewMongoRoomRepository(cfg)
	eventRepo := eventsrepository.NewMongoEventRepository(cfg)
	userRepo := usersrepository.NewMongoUserRepository(cfg)
	reservationRepo := reservationsrepository.NewMongoReservationRepository(cfg)
	lockRepo := reservationsrepository.NewMongoRoomLockRepository(cfg)

	hotelService := hotelsservice.NewHotelService(hotelRepo, cfg)
	roomService := roomsservice.NewRoomService(roomRepo, hotelRepo, cfg)
	eventService := eventsservice.NewEventService(eventRepo, cfg)
	userService := usersservice.NewUserService(userRepo, authManager, cfg)
	reservationService := reservationsservice.NewReservationService(
		reservationRepo,
		lockRepo,
		roomRepo,
		reservationsvalidator.NewReservationValidator(cfg.Log),
		publisher,
		cfg,
	)

	cfg.Log.Info("Services initialized", "database", cfg.MongoDatabaseName)

	return &apiHandler{handlers: []contracts.Handler{
		hotelshandler.NewHotelHandler(hotelService, authManager, cfg.PaginationLimit, cfg.Log),
		roomshandler.NewRoomHandler(roomService, authManager, cfg.PaginationLimit, cfg.Log),
		eventshandler.NewEventHandler(eventService, authManager, cfg.PaginationLimit, cfg.Log),
		usershandler.NewUserHandler(userService, authManager, cfg.Log),
		reservationshandler.NewReservationHandler(reservationService, authManager, cfg.PaginationLimit, cfg.Log),
	}}
}

// initPublisher returns nil when Kafka is not configured. Reservation
// admission never depends on the broker being up.
func initPublisher(cfg *config.Config) reservationsservice.EventPublisher {
	kafkaCfg, err := kafka_config.Load()
	if err != nil {
		cfg.Log.Warn("Kafka disabled, invalid configuration", "error", err)
		return nil
	}

	producer, err := kafka.NewProducer(kafkaCfg, cfg.KafkaReservationTopic, cfg.KafkaDLQTopic, cfg.Log)
	if err != nil {
		cfg.Log.Warn("Kafka disabled, producer init failed", "error", err)
		return nil
	}

	producer.Use(kafka_middleware.LoggingProducerMiddleware(cfg.Log))
	producer.Use(kafka_middleware.MetricsProducerMiddleware(kafka_middleware.NewMetrics()))

	cfg.Log.Info("Kafka producer initialized", "topic", cfg.KafkaReservationTopic)
	return producer
}
