package handler

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/julienschmidt/httprouter"

	reservationserrors "stayhub/internal/reservations/errors"
	"stayhub/pkg/auth"
	apperrors "stayhub/pkg/errors"
	"stayhub/pkg/logger"
	"stayhub/pkg/model"
)

// stubService drives the handler with canned behavior per test.
type stubService struct {
	createFn            func(ctx context.Context, reservation *model.Reservation) error
	getByIDFn           func(ctx context.Context, id int64) (*model.Reservation, error)
	getAllFn            func(ctx context.Context, limit int, offset int64) ([]*model.Reservation, int64, error)
	getByRoomFn         func(ctx context.Context, roomID int64, limit int, offset int64) ([]*model.Reservation, int64, error)
	cancelFn            func(ctx context.Context, id int64) (bool, error)
	checkAvailabilityFn func(ctx context.Context, roomID int64, checkIn, checkOut time.Time) (bool, error)
}

func (s *stubService) Create(ctx context.Context, reservation *model.Reservation) error {
	return s.createFn(ctx, reservation)
}

func (s *stubService) GetByID(ctx context.Context, id int64) (*model.Reservation, error) {
	return s.getByIDFn(ctx, id)
}

func (s *stubService) GetAll(ctx context.Context, limit int, offset int64) ([]*model.Reservation, int64, error) {
	return s.getAllFn(ctx, limit, offset)
}

func (s *stubService) GetByRoom(ctx context.Context, roomID int64, limit int, offset int64) ([]*model.Reservation, int64, error) {
	return s.getByRoomFn(ctx, roomID, limit, offset)
}

func (s *stubService) Cancel(ctx context.Context, id int64) (bool, error) {
	return s.cancelFn(ctx, id)
}

func (s *stubService) CheckAvailability(ctx context.Context, roomID int64, checkIn, checkOut time.Time) (bool, error) {
	return s.checkAvailabilityFn(ctx, roomID, checkIn, checkOut)
}

type handlerFixture struct {
	router  *httprouter.Router
	stub    *stubService
	manager *auth.Manager
}

func newHandlerFixture(t *testing.T) *handlerFixture {
	t.Helper()

	log := logger.New(logger.Config{Level: "error", Output: io.Discard})
	manager := auth.NewManager("test-secret", time.Hour, "stayhub-test")
	stub := &stubService{}

	router := httprouter.New()
	NewReservationHandler(stub, manager, 100, log).RegisterRoutes(router)

	return &handlerFixture{router: router, stub: stub, manager: manager}
}

func (fx *handlerFixture) bearer(t *testing.T, userID int64, role string) string {
	t.Helper()

	token, err := fx.manager.Generate(userID, "guest@example.com", role)
	if err != nil {
		t.Fatalf("failed to generate token: %v", err)
	}
	return "Bearer " + token
}

func (fx *handlerFixture) do(r *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	fx.router.ServeHTTP(w, r)
	return w
}

func decodeErrorCode(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()

	var body struct {
		Code string `json:"code"`
	}
	if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode error body: %v", err)
	}
	return body.Code
}

func TestCreateEndpoint(t *testing.T) {
	fx := newHandlerFixture(t)

	var captured *model.Reservation
	fx.stub.createFn = func(_ context.Context, reservation *model.Reservation) error {
		reservation.ID = 1
		captured = reservation
		return nil
	}

	body := `{"room_id": 7, "check_in": "2026-09-10T00:00:00Z", "check_out": "2026-09-14T00:00:00Z"}`
	r := httptest.NewRequest(http.MethodPost, "/api/v1/reservations", strings.NewReader(body))
	r.Header.Set("Authorization", fx.bearer(t, 42, model.RoleCustomer))

	w := fx.do(r)

	if w.Code != http.StatusCreated {
		t.Fatalf("expected status 201, got %d: %s", w.Code, w.Body.String())
	}
	if captured == nil || captured.RoomID != 7 {
		t.Fatalf("unexpected reservation passed to the service: %+v", captured)
	}
	if captured.UserID != 42 {
		t.Errorf("user id must come from the token, got %d", captured.UserID)
	}
}

func TestCreateEndpointRejectsAnonymous(t *testing.T) {
	fx := newHandlerFixture(t)
	fx.stub.createFn = func(context.Context, *model.Reservation) error {
		t.Error("service must not be called without a token")
		return nil
	}

	r := httptest.NewRequest(http.MethodPost, "/api/v1/reservations", strings.NewReader(`{}`))
	w := fx.do(r)

	if w.Code != http.StatusUnauthorized {
		t.Errorf("expected status 401, got %d", w.Code)
	}
}

func TestCreateEndpointErrorMapping(t *testing.T) {
	fx := newHandlerFixture(t)

	tests := []struct {
		name       string
		serviceErr error
		wantStatus int
		wantCode   string
	}{
		{
			name:       "invalid date range",
			serviceErr: apperrors.InvalidInputFrom(reservationserrors.ErrInvalidDateRange, "Check-out date must be after check-in date"),
			wantStatus: http.StatusBadRequest,
			wantCode:   apperrors.CodeInvalidInput,
		},
		{
			name:       "room not available",
			serviceErr: apperrors.ConflictFrom(reservationserrors.ErrRoomNotAvailable, "Room 7 is already reserved"),
			wantStatus: http.StatusConflict,
			wantCode:   apperrors.CodeConflict,
		},
		{
			name:       "room not found",
			serviceErr: apperrors.NotFoundWithID("Room", 7),
			wantStatus: http.StatusNotFound,
			wantCode:   apperrors.CodeNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fx.stub.createFn = func(context.Context, *model.Reservation) error {
				return tt.serviceErr
			}

			body := `{"room_id": 7, "check_in": "2026-09-10T00:00:00Z", "check_out": "2026-09-14T00:00:00Z"}`
			r := httptest.NewRequest(http.MethodPost, "/api/v1/reservations", strings.NewReader(body))
			r.Header.Set("Authorization", fx.bearer(t, 42, model.RoleCustomer))

			w := fx.do(r)

			if w.Code != tt.wantStatus {
				t.Errorf("expected status %d, got %d", tt.wantStatus, w.Code)
			}
			if code := decodeErrorCode(t, w); code != tt.wantCode {
				t.Errorf("expected code %s, got %s", tt.wantCode, code)
			}
		})
	}
}

func TestCancelEndpoint(t *testing.T) {
	fx := newHandlerFixture(t)

	tests := []struct {
		name       string
		cancelled  bool
		wantStatus int
	}{
		{"cancelled", true, http.StatusNoContent},
		{"unknown reservation", false, http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fx.stub.cancelFn = func(_ context.Context, id int64) (bool, error) {
				if id != 5 {
					t.Errorf("expected id 5, got %d", id)
				}
				return tt.cancelled, nil
			}

			r := httptest.NewRequest(http.MethodDelete, "/api/v1/reservations/id/5", nil)
			r.Header.Set("Authorization", fx.bearer(t, 42, model.RoleCustomer))

			w := fx.do(r)

			if w.Code != tt.wantStatus {
				t.Errorf("expected status %d, got %d", tt.wantStatus, w.Code)
			}
		})
	}
}

func TestCancelEndpointRejectsBadID(t *testing.T) {
	fx := newHandlerFixture(t)
	fx.stub.cancelFn = func(context.Context, int64) (bool, error) {
		t.Error("service must not be called for a malformed id")
		return false, nil
	}

	r := httptest.NewRequest(http.MethodDelete, "/api/v1/reservations/id/zero", nil)
	r.Header.Set("Authorization", fx.bearer(t, 42, model.RoleCustomer))

	w := fx.do(r)

	if w.Code != http.StatusBadRequest {
		t.Errorf("expected status 400, got %d", w.Code)
	}
}

func TestGetAllRequiresAdmin(t *testing.T) {
	fx := newHandlerFixture(t)
	fx.stub.getAllFn = func(_ context.Context, limit int, offset int64) ([]*model.Reservation, int64, error) {
		return []*model.Reservation{{ID: 1, RoomID: 7}}, 1, nil
	}

	r := httptest.NewRequest(http.MethodGet, "/api/v1/reservations", nil)
	r.Header.Set("Authorization", fx.bearer(t, 42, model.RoleCustomer))
	if w := fx.do(r); w.Code != http.StatusForbidden {
		t.Errorf("expected status 403 for a customer, got %d", w.Code)
	}

	r = httptest.NewRequest(http.MethodGet, "/api/v1/reservations", nil)
	r.Header.Set("Authorization", fx.bearer(t, 1, model.RoleAdmin))
	w := fx.do(r)
	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200 for an admin, got %d", w.Code)
	}

	var body struct {
		Data       []*model.Reservation `json:"data"`
		TotalCount int64                `json:"total_count"`
	}
	if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode body: %v", err)
	}
	if body.TotalCount != 1 || len(body.Data) != 1 {
		t.Errorf("unexpected body: %+v", body)
	}
}

func TestAvailabilityEndpoint(t *testing.T) {
	fx := newHandlerFixture(t)
	fx.stub.checkAvailabilityFn = func(_ context.Context, roomID int64, checkIn, checkOut time.Time) (bool, error) {
		return roomID == 7, nil
	}

	// The availability probe is open, no token required.
	r := httptest.NewRequest(http.MethodGet,
		"/api/v1/reservations/availability?room_id=7&check_in=2026-09-10T00:00:00Z&check_out=2026-09-14T00:00:00Z", nil)
	w := fx.do(r)

	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", w.Code, w.Body.String())
	}

	var body struct {
		Data AvailabilityResponse `json:"data"`
	}
	if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode body: %v", err)
	}
	if !body.Data.Available || body.Data.RoomID != 7 {
		t.Errorf("unexpected body: %+v", body.Data)
	}

	r = httptest.NewRequest(http.MethodGet,
		"/api/v1/reservations/availability?room_id=7&check_in=not-a-date&check_out=2026-09-14T00:00:00Z", nil)
	if w := fx.do(r); w.Code != http.StatusBadRequest {
		t.Errorf("expected status 400 for a bad date, got %d", w.Code)
	}
}
