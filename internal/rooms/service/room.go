package service

import (
	"context"
	"errors"
	"sync"

	hotelserrors "stayhub/internal/hotels/errors"
	roomserrors "stayhub/internal/rooms/errors"
	"stayhub/internal/rooms/repository"
	"stayhub/pkg/config"
	apperrors "stayhub/pkg/errors"
	"stayhub/pkg/model"
	"stayhub/pkg/sanitizer"

	"github.com/go-playground/validator/v10"
)

type RoomService interface {
	Create(ctx context.Context, room *model.Room) error
	GetByID(ctx context.Context, id int64) (*model.Room, error)
	GetByHotel(ctx context.Context, hotelID int64, limit int, offset int64) ([]*model.Room, int64, error)
	Search(ctx context.Context, filter *model.RoomFilter, limit int, offset int64) ([]*model.Room, int64, error)
	Delete(ctx context.Context, id int64) error
}

// HotelFinder is the slice of the hotels vertical room creation needs.
type HotelFinder interface {
	FindByID(ctx context.Context, id int64) (*model.Hotel, error)
}

type roomService struct {
	repo     repository.RoomRepository
	hotels   HotelFinder
	validate *validator.Validate
	cfg      *config.Config
}

func NewRoomService(repo repository.RoomRepository, hotels HotelFinder, cfg *config.Config) RoomService {
	return &roomService{
		repo:     repo,
		hotels:   hotels,
		validate: validator.New(),
		cfg:      cfg,
	}
}

func (s *roomService) Create(ctx context.Context, room *model.Room) error {
	room.RoomNumber = sanitizer.TrimAndNormalize(room.RoomNumber)

	if err := s.validate.Struct(room); err != nil {
		s.cfg.Log.Warn("Room validation failed", "error", err)
		return apperrors.Validation("Room validation failed", map[string]any{"error": err.Error()})
	}

	if _, err := s.hotels.FindByID(ctx, room.HotelID); err != nil {
		if errors.Is(err, hotelserrors.ErrNotFound) {
			return apperrors.NotFoundWithID("Hotel", room.HotelID)
		}
		return apperrors.Internal("Failed to verify hotel existence", err)
	}

	if err := s.repo.Create(ctx, room); err != nil {
		s.cfg.Log.Error("Failed to create room", "hotel_id", room.HotelID, "error", err)
		return apperrors.Internal("Failed to create room", err)
	}

	s.cfg.Log.Info("Room created", "id", room.ID, "hotel_id", room.HotelID, "room_number", room.RoomNumber)
	return nil
}

func (s *roomService) GetByID(ctx context.Context, id int64) (*model.Room, error) {
	if id <= 0 {
		return nil, apperrors.InvalidInput("Room ID must be positive")
	}

	room, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, roomserrors.ErrNotFound) {
			return nil, apperrors.NotFoundWithID("Room", id)
		}
		return nil, apperrors.Internal("Failed to retrieve room", err)
	}

	return room, nil
}

func (s *roomService) GetByHotel(ctx context.Context, hotelID int64, limit int, offset int64) ([]*model.Room, int64, error) {
	if hotelID <= 0 {
		return nil, 0, apperrors.InvalidInput("Hotel ID must be positive")
	}

	var count int64
	var rooms []*model.Room
	var errCount, errFind error
	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		count, errCount = s.repo.CountByHotel(ctx, hotelID)
		if errCount != nil {
			s.cfg.Log.Error("Failed to count rooms", "hotel_id", hotelID, "error", errCount)
			errCount = apperrors.Internal("Failed to count rooms", errCount)
		}
	}()

	go func() {
		defer wg.Done()
		rooms, errFind = s.repo.FindByHotel(ctx, hotelID, limit, offset)
		if errFind != nil {
			s.cfg.Log.Error("Failed to list rooms", "hotel_id", hotelID, "error", errFind)
			errFind = apperrors.Internal("Failed to retrieve rooms", errFind)
		}
	}()

	wg.Wait()
	if errCount != nil {
		return nil, 0, errCount
	}
	if errFind != nil {
		return nil, 0, errFind
	}

	return rooms, count, nil
}

func (s *roomService) Search(ctx context.Context, filter *model.RoomFilter, limit int, offset int64) ([]*model.Room, int64, error) {
	var count int64
	var rooms []*model.Room
	var errCount, errFind error
	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		count, errCount = s.repo.CountByFilter(ctx, filter)
		if errCount != nil {
			s.cfg.Log.Error("Failed to count rooms by filter", "error", errCount)
			errCount = apperrors.Internal("Failed to count rooms", errCount)
		}
	}()

	go func() {
		defer wg.Done()
		rooms, errFind = s.repo.Search(ctx, filter, limit, offset)
		if errFind != nil {
			s.cfg.Log.Error("Failed to search rooms", "error", errFind)
			errFind = apperrors.Internal("Failed to search rooms", errFind)
		}
	}()

	wg.Wait()
	if errCount != nil {
		return nil, 0, errCount
	}
	if errFind != nil {
		return nil, 0, errFind
	}

	return rooms, count, nil
}

func (s *roomService) Delete(ctx context.Context, id int64) error {
	if id <= 0 {
		return apperrors.InvalidInput("Room ID must be positive")
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, roomserrors.ErrNotFound) {
			return apperrors.NotFoundWithID("Room", id)
		}
		return apperrors.Internal("Failed to delete room", err)
	}

	s.cfg.Log.Info("Room deleted", "id", id)
	return nil
}
