package service

import (
	"context"
	"errors"
	"sync"

	hotelserrors "stayhub/internal/hotels/errors"
	"stayhub/internal/hotels/repository"
	"stayhub/pkg/config"
	apperrors "stayhub/pkg/errors"
	"stayhub/pkg/model"
	"stayhub/pkg/sanitizer"

	"github.com/go-playground/validator/v10"
)

type HotelService interface {
	Create(ctx context.Context, hotel *model.Hotel) error
	GetByID(ctx context.Context, id int64) (*model.Hotel, error)
	GetAll(ctx context.Context, limit int, offset int64) ([]*model.Hotel, int64, error)
	Delete(ctx context.Context, id int64) error
}

type hotelService struct {
	repo     repository.HotelRepository
	validate *validator.Validate
	cfg      *config.Config
}

func NewHotelService(repo repository.HotelRepository, cfg *config.Config) HotelService {
	return &hotelService{
		repo:     repo,
		validate: validator.New(),
		cfg:      cfg,
	}
}

func (s *hotelService) Create(ctx context.Context, hotel *model.Hotel) error {
	hotel.Name = sanitizer.NormalizeName(hotel.Name)
	hotel.City = sanitizer.NormalizeLocation(hotel.City)
	hotel.Description = sanitizer.TrimAndNormalize(hotel.Description)

	if err := s.validate.Struct(hotel); err != nil {
		s.cfg.Log.Warn("Hotel validation failed", "error", err)
		return apperrors.Validation("Hotel validation failed", map[string]any{"error": err.Error()})
	}

	if err := s.repo.Create(ctx, hotel); err != nil {
		s.cfg.Log.Error("Failed to create hotel", "name", hotel.Name, "error", err)
		return apperrors.Internal("Failed to create hotel", err)
	}

	s.cfg.Log.Info("Hotel created", "id", hotel.ID, "name", hotel.Name, "city", hotel.City)
	return nil
}

func (s *hotelService) GetByID(ctx context.Context, id int64) (*model.Hotel, error) {
	if id <= 0 {
		return nil, apperrors.InvalidInput("Hotel ID must be positive")
	}

	hotel, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, hotelserrors.ErrNotFound) {
			return nil, apperrors.NotFoundWithID("Hotel", id)
		}
		return nil, apperrors.Internal("Failed to retrieve hotel", err)
	}

	return hotel, nil
}

func (s *hotelService) GetAll(ctx context.Context, limit int, offset int64) ([]*model.Hotel, int64, error) {
	var count int64
	var hotels []*model.Hotel
	var errCount, errFind error
	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		count, errCount = s.repo.Count(ctx)
		if errCount != nil {
			s.cfg.Log.Error("Failed to count hotels", "error", errCount)
			errCount = apperrors.Internal("Failed to count hotels", errCount)
		}
	}()

	go func() {
		defer wg.Done()
		hotels, errFind = s.repo.FindAll(ctx, limit, offset)
		if errFind != nil {
			s.cfg.Log.Error("Failed to list hotels", "error", errFind)
			errFind = apperrors.Internal("Failed to retrieve hotels", errFind)
		}
	}()

	wg.Wait()
	if errCount != nil {
		return nil, 0, errCount
	}
	if errFind != nil {
		return nil, 0, errFind
	}

	return hotels, count, nil
}

func (s *hotelService) Delete(ctx context.Context, id int64) error {
	if id <= 0 {
		return apperrors.InvalidInput("Hotel ID must be positive")
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, hotelserrors.ErrNotFound) {
			return apperrors.NotFoundWithID("Hotel", id)
		}
		return apperrors.Internal("Failed to delete hotel", err)
	}

	s.cfg.Log.Info("Hotel deleted", "id", id)
	return nil
}
