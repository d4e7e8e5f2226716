package service

import (
	"context"
	"errors"

	"golang.org/x/crypto/bcrypt"

	userserrors "stayhub/internal/users/errors"
	"stayhub/internal/users/repository"
	"stayhub/pkg/auth"
	"stayhub/pkg/config"
	apperrors "stayhub/pkg/errors"
	"stayhub/pkg/model"
	"stayhub/pkg/sanitizer"

	"github.com/go-playground/validator/v10"
)

type RegisterInput struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8,max=72"`
}

type LoginInput struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type UserService interface {
	Register(ctx context.Context, input *RegisterInput) (*model.User, error)
	Login(ctx context.Context, input *LoginInput) (string, *model.User, error)
	GetByID(ctx context.Context, id int64) (*model.User, error)
}

type userService struct {
	repo        repository.UserRepository
	authManager *auth.Manager
	validate    *validator.Validate
	cfg         *config.Config
}

func NewUserService(repo repository.UserRepository, authManager *auth.Manager, cfg *config.Config) UserService {
	return &userService{
		repo:        repo,
		authManager: authManager,
		validate:    validator.New(),
		cfg:         cfg,
	}
}

func (s *userService) Register(ctx context.Context, input *RegisterInput) (*model.User, error) {
	input.Email = sanitizer.NormalizeEmail(input.Email)

	if err := s.validate.Struct(input); err != nil {
		s.cfg.Log.Warn("User registration validation failed", "error", err)
		return nil, apperrors.Validation("User validation failed", map[string]any{"error": err.Error()})
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), s.cfg.BcryptCost)
	if err != nil {
		return nil, apperrors.Internal("Failed to hash password", err)
	}

	user := &model.User{
		Email:        input.Email,
		PasswordHash: string(hash),
		Role:         model.RoleCustomer,
	}

	if err := s.repo.Create(ctx, user); err != nil {
		if errors.Is(err, userserrors.ErrEmailTaken) {
			return nil, apperrors.ConflictFrom(err, "Email address is already registered")
		}
		s.cfg.Log.Error("Failed to create user", "email", user.Email, "error", err)
		return nil, apperrors.Internal("Failed to create user", err)
	}

	s.cfg.Log.Info("User registered", "id", user.ID, "email", user.Email)
	return user, nil
}

// Login deliberately reports the same UNAUTHORIZED error for an unknown
// email and a wrong password.
func (s *userService) Login(ctx context.Context, input *LoginInput) (string, *model.User, error) {
	input.Email = sanitizer.NormalizeEmail(input.Email)

	if err := s.validate.Struct(input); err != nil {
		return "", nil, apperrors.Validation("Login validation failed", map[string]any{"error": err.Error()})
	}

	user, err := s.repo.FindByEmail(ctx, input.Email)
	if err != nil {
		if errors.Is(err, userserrors.ErrNotFound) {
			return "", nil, apperrors.Unauthorized("Invalid email or password")
		}
		return "", nil, apperrors.Internal("Failed to look up user", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(input.Password)); err != nil {
		return "", nil, apperrors.Unauthorized("Invalid email or password")
	}

	token, err := s.authManager.Generate(user.ID, user.Email, user.Role)
	if err != nil {
		return "", nil, err
	}

	s.cfg.Log.Info("User logged in", "id", user.ID)
	return token, user, nil
}

func (s *userService) GetByID(ctx context.Context, id int64) (*model.User, error) {
	if id <= 0 {
		return nil, apperrors.InvalidInput("User ID must be positive")
	}

	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, userserrors.ErrNotFound) {
			return nil, apperrors.NotFoundWithID("User", id)
		}
		return nil, apperrors.Internal("Failed to retrieve user", err)
	}

	return user, nil
}
