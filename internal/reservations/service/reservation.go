package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	reservationserrors "stayhub/internal/reservations/errors"
	"stayhub/internal/reservations/repository"
	"stayhub/internal/reservations/validator"
	roomserrors "stayhub/internal/rooms/errors"
	"stayhub/pkg/config"
	"stayhub/pkg/contracts"
	apperrors "stayhub/pkg/errors"
	"stayhub/pkg/kafka"
	"stayhub/pkg/model"
)

type ReservationService interface {
	Create(ctx context.Context, reservation *model.Reservation) error
	GetByID(ctx context.Context, id int64) (*model.Reservation, error)
	GetAll(ctx context.Context, limit int, offset int64) ([]*model.Reservation, int64, error)
	GetByRoom(ctx context.Context, roomID int64, limit int, offset int64) ([]*model.Reservation, int64, error)
	Cancel(ctx context.Context, id int64) (bool, error)
	CheckAvailability(ctx context.Context, roomID int64, checkIn, checkOut time.Time) (bool, error)
}

// RoomFinder is the slice of the rooms vertical the admission path needs.
type RoomFinder interface {
	FindByID(ctx context.Context, id int64) (*model.Room, error)
}

// EventPublisher is satisfied by *kafka.Producer. A nil publisher
// disables events without touching the admission path.
type EventPublisher interface {
	Publish(ctx context.Context, msg kafka.Message) error
}

type reservationService struct {
	repo      repository.ReservationRepository
	lockRepo  repository.RoomLockRepository
	rooms     RoomFinder
	validator *validator.ReservationValidator
	publisher EventPublisher
	cfg       *config.Config
}

func NewReservationService(
	repo repository.ReservationRepository,
	lockRepo repository.RoomLockRepository,
	rooms RoomFinder,
	validator *validator.ReservationValidator,
	publisher EventPublisher,
	cfg *config.Config,
) ReservationService {
	return &reservationService{
		repo:      repo,
		lockRepo:  lockRepo,
		rooms:     rooms,
		validator: validator,
		publisher: publisher,
		cfg:       cfg,
	}
}

// Create admits a reservation if and only if no non-cancelled reservation
// for the same room overlaps the requested half-open date range. The check
// and the insert run under a per-room advisory lock inside a transaction,
// so two concurrent requests for overlapping ranges cannot both pass the
// availability check.
func (s *reservationService) Create(ctx context.Context, reservation *model.Reservation) error {
	reservation.IsCancelled = false

	if err := s.validate(reservation); err != nil {
		return err
	}

	if err := s.verifyRoomExists(ctx, reservation.RoomID); err != nil {
		return err
	}

	lockID, err := s.acquireRoomLock(ctx, reservation.RoomID)
	if err != nil {
		return err
	}
	defer func() {
		if releaseErr := s.lockRepo.Release(ctx, lockID); releaseErr != nil {
			s.cfg.Log.Warn("Failed to release room lock", "lock_id", lockID, "error", releaseErr)
		}
	}()

	err = s.repo.ExecuteTransaction(ctx, func(txCtx context.Context) error {
		if err := s.verifyAvailability(txCtx, reservation); err != nil {
			return err
		}
		if err := s.repo.Create(txCtx, reservation); err != nil {
			return apperrors.Internal("Failed to create reservation", err)
		}
		return nil
	})
	if err != nil {
		s.cfg.Log.Error("Failed to create reservation",
			"room_id", reservation.RoomID,
			"user_id", reservation.UserID,
			"error", err,
		)
		return err
	}

	s.publishEvent(ctx, contracts.EventReservationCreated, reservation)

	s.cfg.Log.Info("Reservation created",
		"id", reservation.ID,
		"room_id", reservation.RoomID,
		"user_id", reservation.UserID,
		"check_in", reservation.CheckIn,
		"check_out", reservation.CheckOut,
	)
	return nil
}

func (s *reservationService) GetByID(ctx context.Context, id int64) (*model.Reservation, error) {
	if id <= 0 {
		return nil, apperrors.InvalidInput("Reservation ID must be positive")
	}

	reservation, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, reservationserrors.ErrNotFound) {
			return nil, apperrors.NotFoundWithID("Reservation", id)
		}
		return nil, apperrors.Internal("Failed to retrieve reservation", err)
	}

	return reservation, nil
}

func (s *reservationService) GetAll(ctx context.Context, limit int, offset int64) ([]*model.Reservation, int64, error) {
	var count int64
	var reservations []*model.Reservation
	var errCount, errFind error
	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		count, errCount = s.repo.Count(ctx)
		if errCount != nil {
			s.cfg.Log.Error("Failed to count reservations", "error", errCount)
			errCount = apperrors.Internal("Failed to count reservations", errCount)
		}
	}()

	go func() {
		defer wg.Done()
		reservations, errFind = s.repo.FindAll(ctx, limit, offset)
		if errFind != nil {
			s.cfg.Log.Error("Failed to list reservations", "error", errFind)
			errFind = apperrors.Internal("Failed to retrieve reservations", errFind)
		}
	}()

	wg.Wait()
	if errCount != nil {
		return nil, 0, errCount
	}
	if errFind != nil {
		return nil, 0, errFind
	}

	return reservations, count, nil
}

func (s *reservationService) GetByRoom(ctx context.Context, roomID int64, limit int, offset int64) ([]*model.Reservation, int64, error) {
	if roomID <= 0 {
		return nil, 0, apperrors.InvalidInput("Room ID must be positive")
	}

	var count int64
	var reservations []*model.Reservation
	var errCount, errFind error
	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		count, errCount = s.repo.CountByRoom(ctx, roomID)
		if errCount != nil {
			s.cfg.Log.Error("Failed to count reservations by room", "room_id", roomID, "error", errCount)
			errCount = apperrors.Internal("Failed to count reservations", errCount)
		}
	}()

	go func() {
		defer wg.Done()
		reservations, errFind = s.repo.FindByRoom(ctx, roomID, limit, offset)
		if errFind != nil {
			s.cfg.Log.Error("Failed to list reservations by room", "room_id", roomID, "error", errFind)
			errFind = apperrors.Internal("Failed to retrieve reservations", errFind)
		}
	}()

	wg.Wait()
	if errCount != nil {
		return nil, 0, errCount
	}
	if errFind != nil {
		return nil, 0, errFind
	}

	return reservations, count, nil
}

// Cancel flips is_cancelled one way. It reports whether a reservation is
// cancelled after the call: an unknown id returns false with no error, a
// reservation that was already cancelled returns true without a write.
func (s *reservationService) Cancel(ctx context.Context, id int64) (bool, error) {
	if id <= 0 {
		return false, apperrors.InvalidInput("Reservation ID must be positive")
	}

	reservation, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, reservationserrors.ErrNotFound) {
			return false, nil
		}
		return false, apperrors.Internal("Failed to retrieve reservation", err)
	}

	if reservation.IsCancelled {
		return true, nil
	}

	if err := s.repo.MarkCancelled(ctx, id); err != nil {
		if errors.Is(err, reservationserrors.ErrNotFound) {
			return false, nil
		}
		return false, apperrors.Internal("Failed to cancel reservation", err)
	}

	reservation.IsCancelled = true
	s.publishEvent(ctx, contracts.EventReservationCancelled, reservation)

	s.cfg.Log.Info("Reservation cancelled", "id", id, "room_id", reservation.RoomID)
	return true, nil
}

func (s *reservationService) CheckAvailability(ctx context.Context, roomID int64, checkIn, checkOut time.Time) (bool, error) {
	if roomID <= 0 {
		return false, apperrors.InvalidInput("Room ID must be positive")
	}
	if !checkOut.After(checkIn) {
		return false, apperrors.InvalidInputFrom(reservationserrors.ErrInvalidDateRange, "Check-out date must be after check-in date")
	}

	overlapping, err := s.repo.FindOverlapping(ctx, roomID, checkIn, checkOut)
	if err != nil {
		return false, apperrors.Internal("Failed to check room availability", err)
	}

	return len(overlapping) == 0, nil
}

// --- Helpers ---

func (s *reservationService) validate(reservation *model.Reservation) error {
	if err := s.validator.Validate(reservation); err != nil {
		s.cfg.Log.Warn("Reservation validation failed", "error", err)
		if errors.Is(err, reservationserrors.ErrInvalidDateRange) {
			return apperrors.InvalidInputFrom(err, "Check-out date must be after check-in date")
		}
		return apperrors.Validation("Reservation validation failed", map[string]any{"error": err.Error()})
	}
	return nil
}

func (s *reservationService) verifyRoomExists(ctx context.Context, roomID int64) error {
	if _, err := s.rooms.FindByID(ctx, roomID); err != nil {
		if errors.Is(err, roomserrors.ErrNotFound) {
			return apperrors.NotFoundWithID("Room", roomID)
		}
		return apperrors.Internal("Failed to verify room existence", err)
	}
	return nil
}

func (s *reservationService) verifyAvailability(ctx context.Context, reservation *model.Reservation) error {
	overlapping, err := s.repo.FindOverlapping(ctx, reservation.RoomID, reservation.CheckIn, reservation.CheckOut)
	if err != nil {
		return apperrors.Internal("Failed to check room availability", err)
	}

	for _, existing := range overlapping {
		if existing.ID == reservation.ID {
			continue
		}
		return apperrors.ConflictFrom(reservationserrors.ErrRoomNotAvailable, fmt.Sprintf(
			"Room %d is already reserved from %s to %s",
			reservation.RoomID,
			existing.CheckIn.Format(time.RFC3339),
			existing.CheckOut.Format(time.RFC3339),
		))
	}
	return nil
}

// acquireRoomLock blocks until the per-room advisory lock is acquired or
// ctx is done. Waiting instead of failing keeps the loser of a race alive
// long enough to see the winner's committed reservation and report
// ErrRoomNotAvailable rather than a spurious lock conflict.
func (s *reservationService) acquireRoomLock(ctx context.Context, roomID int64) (string, error) {
	lockID := fmt.Sprintf("room_lock_%d", roomID)

	for {
		err := s.lockRepo.Acquire(ctx, &model.RoomLock{
			ID:        lockID,
			ExpiresAt: time.Now().Add(s.cfg.RoomLockTTL),
		})
		if err == nil {
			return lockID, nil
		}
		if !errors.Is(err, reservationserrors.ErrLockHeld) {
			return "", apperrors.Internal("Failed to acquire room lock", err)
		}

		select {
		case <-ctx.Done():
			return "", apperrors.Wrap(ctx.Err(), apperrors.CodeTimeout, "Timed out waiting for room lock", 504)
		case <-time.After(s.cfg.LockRetryInterval):
		}
	}
}

func (s *reservationService) publishEvent(ctx context.Context, eventType string, reservation *model.Reservation) {
	if s.publisher == nil {
		return
	}

	msg, err := kafka.NewMessage().
		WithKey(fmt.Sprintf("%d", reservation.RoomID)).
		WithEventType(eventType).
		WithSource("stayhub-api").
		WithValue(contracts.ReservationEvent{
			ReservationID: reservation.ID,
			RoomID:        reservation.RoomID,
			UserID:        reservation.UserID,
			CheckIn:       reservation.CheckIn,
			CheckOut:      reservation.CheckOut,
			OccurredAt:    time.Now().UTC(),
		}).
		Build()
	if err != nil {
		s.cfg.Log.Warn("Failed to build reservation event", "type", eventType, "error", err)
		return
	}

	if err := s.publisher.Publish(ctx, msg); err != nil {
		s.cfg.Log.Warn("Failed to publish reservation event",
			"type", eventType,
			"reservation_id", reservation.ID,
			"error", err,
		)
	}
}
