package service

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"

	userserrors "stayhub/internal/users/errors"
	"stayhub/pkg/auth"
	"stayhub/pkg/config"
	apperrors "stayhub/pkg/errors"
	"stayhub/pkg/logger"
	"stayhub/pkg/model"
)

type fakeUserRepo struct {
	nextID  int64
	byID    map[int64]*model.User
	byEmail map[string]*model.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{
		byID:    make(map[int64]*model.User),
		byEmail: make(map[string]*model.User),
	}
}

func (f *fakeUserRepo) Create(_ context.Context, user *model.User) error {
	if _, taken := f.byEmail[user.Email]; taken {
		return userserrors.ErrEmailTaken
	}

	f.nextID++
	user.ID = f.nextID
	stored := *user
	f.byID[user.ID] = &stored
	f.byEmail[user.Email] = &stored
	return nil
}

func (f *fakeUserRepo) FindByID(_ context.Context, id int64) (*model.User, error) {
	user, ok := f.byID[id]
	if !ok {
		return nil, userserrors.ErrNotFound
	}
	found := *user
	return &found, nil
}

func (f *fakeUserRepo) FindByEmail(_ context.Context, email string) (*model.User, error) {
	user, ok := f.byEmail[email]
	if !ok {
		return nil, userserrors.ErrNotFound
	}
	found := *user
	return &found, nil
}

func newUserFixture(t *testing.T) (UserService, *auth.Manager) {
	t.Helper()

	manager := auth.NewManager("test-secret", time.Hour, "stayhub-test")
	cfg := &config.Config{
		Log:        logger.New(logger.Config{Level: "error", Output: io.Discard}),
		BcryptCost: bcrypt.MinCost,
	}
	return NewUserService(newFakeUserRepo(), manager, cfg), manager
}

func TestRegister(t *testing.T) {
	service, _ := newUserFixture(t)

	user, err := service.Register(context.Background(), &RegisterInput{
		Email:    "  Guest@Example.COM ",
		Password: "correct horse",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if user.ID == 0 {
		t.Error("expected an assigned user id")
	}
	if user.Email != "guest@example.com" {
		t.Errorf("email should be normalized, got %q", user.Email)
	}
	if user.Role != model.RoleCustomer {
		t.Errorf("new users should be customers, got %q", user.Role)
	}
	if user.PasswordHash == "correct horse" || user.PasswordHash == "" {
		t.Error("password must be stored as a bcrypt hash")
	}
}

func TestRegisterRejectsBadInput(t *testing.T) {
	service, _ := newUserFixture(t)

	tests := []struct {
		name  string
		input RegisterInput
	}{
		{"missing email", RegisterInput{Password: "correct horse"}},
		{"malformed email", RegisterInput{Email: "not-an-email", Password: "correct horse"}},
		{"short password", RegisterInput{Email: "guest@example.com", Password: "short"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := service.Register(context.Background(), &tt.input)
			if err == nil {
				t.Fatal("expected an error")
			}
			if code := apperrors.AsAppError(err).Code; code != apperrors.CodeValidation {
				t.Errorf("expected code %s, got %s", apperrors.CodeValidation, code)
			}
		})
	}
}

func TestRegisterDuplicateEmail(t *testing.T) {
	service, _ := newUserFixture(t)

	input := &RegisterInput{Email: "guest@example.com", Password: "correct horse"}
	if _, err := service.Register(context.Background(), input); err != nil {
		t.Fatalf("first registration failed: %v", err)
	}

	_, err := service.Register(context.Background(), &RegisterInput{
		Email:    "GUEST@example.com",
		Password: "another password",
	})
	if err == nil {
		t.Fatal("expected an error")
	}
	if !errors.Is(err, userserrors.ErrEmailTaken) {
		t.Errorf("expected ErrEmailTaken, got %v", err)
	}
	if code := apperrors.AsAppError(err).Code; code != apperrors.CodeConflict {
		t.Errorf("expected code %s, got %s", apperrors.CodeConflict, code)
	}
}

func TestLogin(t *testing.T) {
	service, manager := newUserFixture(t)

	registered, err := service.Register(context.Background(), &RegisterInput{
		Email:    "guest@example.com",
		Password: "correct horse",
	})
	if err != nil {
		t.Fatalf("registration failed: %v", err)
	}

	token, user, err := service.Login(context.Background(), &LoginInput{
		Email:    "guest@example.com",
		Password: "correct horse",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if user.ID != registered.ID {
		t.Errorf("expected user %d, got %d", registered.ID, user.ID)
	}

	claims, err := manager.Verify(token)
	if err != nil {
		t.Fatalf("issued token failed verification: %v", err)
	}
	if claims.UserID != registered.ID || claims.Email != "guest@example.com" || claims.Role != model.RoleCustomer {
		t.Errorf("unexpected claims: %+v", claims)
	}
}

// Unknown email and wrong password must be indistinguishable to a caller.
func TestLoginRejectsBadCredentials(t *testing.T) {
	service, _ := newUserFixture(t)

	if _, err := service.Register(context.Background(), &RegisterInput{
		Email:    "guest@example.com",
		Password: "correct horse",
	}); err != nil {
		t.Fatalf("registration failed: %v", err)
	}

	tests := []struct {
		name  string
		input LoginInput
	}{
		{"unknown email", LoginInput{Email: "other@example.com", Password: "correct horse"}},
		{"wrong password", LoginInput{Email: "guest@example.com", Password: "wrong horse"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := service.Login(context.Background(), &tt.input)
			if err == nil {
				t.Fatal("expected an error")
			}
			appErr := apperrors.AsAppError(err)
			if appErr.Code != apperrors.CodeUnauthorized {
				t.Errorf("expected code %s, got %s", apperrors.CodeUnauthorized, appErr.Code)
			}
			if appErr.Message != "Invalid email or password" {
				t.Errorf("credential failures must share one message, got %q", appErr.Message)
			}
		})
	}
}

func TestGetByID(t *testing.T) {
	service, _ := newUserFixture(t)

	registered, err := service.Register(context.Background(), &RegisterInput{
		Email:    "guest@example.com",
		Password: "correct horse",
	})
	if err != nil {
		t.Fatalf("registration failed: %v", err)
	}

	user, err := service.GetByID(context.Background(), registered.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if user.Email != "guest@example.com" {
		t.Errorf("unexpected user: %+v", user)
	}

	if _, err := service.GetByID(context.Background(), 999); apperrors.AsAppError(err).Code != apperrors.CodeNotFound {
		t.Errorf("expected NOT_FOUND for unknown id, got %v", err)
	}
	if _, err := service.GetByID(context.Background(), 0); apperrors.AsAppError(err).Code != apperrors.CodeInvalidInput {
		t.Errorf("expected INVALID_INPUT for non-positive id, got %v", err)
	}
}
