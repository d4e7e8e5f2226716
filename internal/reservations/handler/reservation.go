package handler

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/julienschmidt/httprouter"

	"stayhub/internal/reservations/service"
	"stayhub/pkg/auth"
	apperrors "stayhub/pkg/errors"
	httputil "stayhub/pkg/http"
	"stayhub/pkg/logger"
	"stayhub/pkg/model"
)

type CreateReservationRequest struct {
	RoomID   int64     `json:"room_id"`
	CheckIn  time.Time `json:"check_in"`
	CheckOut time.Time `json:"check_out"`
}

type AvailabilityResponse struct {
	RoomID    int64     `json:"room_id"`
	CheckIn   time.Time `json:"check_in"`
	CheckOut  time.Time `json:"check_out"`
	Available bool      `json:"available"`
}

type ReservationHandler struct {
	service     service.ReservationService
	authManager *auth.Manager
	maxPageSize int
	log         *logger.Logger
}

func NewReservationHandler(service service.ReservationService, authManager *auth.Manager, maxPageSize int, log *logger.Logger) *ReservationHandler {
	return &ReservationHandler{
		service:     service,
		authManager: authManager,
		maxPageSize: maxPageSize,
		log:         log,
	}
}

// Create books a room for the authenticated user.
func (h *ReservationHandler) Create(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	claims, ok := auth.FromContext(r.Context())
	if !ok {
		h.writeError(w, "Create", apperrors.Unauthorized("missing bearer token"))
		return
	}

	var req CreateReservationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, "Create", apperrors.InvalidInput("Invalid request body"))
		return
	}

	reservation := &model.Reservation{
		RoomID:   req.RoomID,
		UserID:   claims.UserID,
		CheckIn:  req.CheckIn,
		CheckOut: req.CheckOut,
	}

	if err := h.service.Create(r.Context(), reservation); err != nil {
		h.writeError(w, "Create", err)
		return
	}

	if err := httputil.WriteCreated(w, reservation); err != nil {
		h.log.Error("failed to write created response", "handler", "Create", "error", err)
	}
}

func (h *ReservationHandler) GetByID(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	id, err := httputil.ParseID(ps.ByName("id"))
	if err != nil {
		h.writeError(w, "GetByID", err)
		return
	}

	reservation, err := h.service.GetByID(r.Context(), id)
	if err != nil {
		h.writeError(w, "GetByID", err)
		return
	}

	if err := httputil.WriteSuccess(w, reservation); err != nil {
		h.log.Error("failed to write success response", "handler", "GetByID", "error", err)
	}
}

func (h *ReservationHandler) GetAll(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	limit, offset, err := httputil.ExtractLimitOffset(r, h.maxPageSize)
	if err != nil {
		h.writeError(w, "GetAll", err)
		return
	}

	reservations, total, err := h.service.GetAll(r.Context(), limit, offset)
	if err != nil {
		h.writeError(w, "GetAll", err)
		return
	}

	if err := httputil.WritePaginated(w, reservations, total, limit, offset); err != nil {
		h.log.Error("failed to write paginated response", "handler", "GetAll", "error", err)
	}
}

func (h *ReservationHandler) GetByRoom(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	roomID, err := httputil.ParseID(ps.ByName("id"))
	if err != nil {
		h.writeError(w, "GetByRoom", err)
		return
	}

	limit, offset, err := httputil.ExtractLimitOffset(r, h.maxPageSize)
	if err != nil {
		h.writeError(w, "GetByRoom", err)
		return
	}

	reservations, total, err := h.service.GetByRoom(r.Context(), roomID, limit, offset)
	if err != nil {
		h.writeError(w, "GetByRoom", err)
		return
	}

	if err := httputil.WritePaginated(w, reservations, total, limit, offset); err != nil {
		h.log.Error("failed to write paginated response", "handler", "GetByRoom", "error", err)
	}
}

// Cancel maps the service's boolean-absence result onto HTTP: cancelled
// (or already cancelled) is 204, unknown id is 404.
func (h *ReservationHandler) Cancel(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	id, err := httputil.ParseID(ps.ByName("id"))
	if err != nil {
		h.writeError(w, "Cancel", err)
		return
	}

	cancelled, err := h.service.Cancel(r.Context(), id)
	if err != nil {
		h.writeError(w, "Cancel", err)
		return
	}

	if !cancelled {
		h.writeError(w, "Cancel", apperrors.NotFoundWithID("Reservation", id))
		return
	}

	httputil.WriteNoContent(w)
}

func (h *ReservationHandler) CheckAvailability(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	query := r.URL.Query()

	roomID, err := httputil.ParseID(query.Get("room_id"))
	if err != nil {
		h.writeError(w, "CheckAvailability", apperrors.InvalidInput("invalid room_id parameter"))
		return
	}

	checkIn, err := time.Parse(time.RFC3339, query.Get("check_in"))
	if err != nil {
		h.writeError(w, "CheckAvailability", apperrors.InvalidInput("invalid check_in, must be RFC3339"))
		return
	}

	checkOut, err := time.Parse(time.RFC3339, query.Get("check_out"))
	if err != nil {
		h.writeError(w, "CheckAvailability", apperrors.InvalidInput("invalid check_out, must be RFC3339"))
		return
	}

	available, err := h.service.CheckAvailability(r.Context(), roomID, checkIn, checkOut)
	if err != nil {
		h.writeError(w, "CheckAvailability", err)
		return
	}

	if err := httputil.WriteSuccess(w, AvailabilityResponse{
		RoomID:    roomID,
		CheckIn:   checkIn,
		CheckOut:  checkOut,
		Available: available,
	}); err != nil {
		h.log.Error("failed to write success response", "handler", "CheckAvailability", "error", err)
	}
}

func (h *ReservationHandler) writeError(w http.ResponseWriter, handler string, err error) {
	if writeErr := httputil.WriteError(w, err); writeErr != nil {
		h.log.Error("failed to write error response", "handler", handler, "error", writeErr)
	}
}

func (h *ReservationHandler) RegisterRoutes(router *httprouter.Router) {
	router.POST("/api/v1/reservations", auth.Guard(h.authManager, h.Create))
	router.GET("/api/v1/reservations", auth.GuardRole(h.authManager, model.RoleAdmin, h.GetAll))
	router.GET("/api/v1/reservations/id/:id", auth.Guard(h.authManager, h.GetByID))
	router.DELETE("/api/v1/reservations/id/:id", auth.Guard(h.authManager, h.Cancel))
	router.GET("/api/v1/reservations/room/:id", auth.Guard(h.authManager, h.GetByRoom))
	router.GET("/api/v1/reservations/availability", h.CheckAvailability)
}
