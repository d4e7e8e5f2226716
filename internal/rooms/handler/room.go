package handler

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/julienschmidt/httprouter"

	"stayhub/internal/rooms/service"
	"stayhub/pkg/auth"
	apperrors "stayhub/pkg/errors"
	httputil "stayhub/pkg/http"
	"stayhub/pkg/logger"
	"stayhub/pkg/model"
)

type RoomHandler struct {
	service     service.RoomService
	authManager *auth.Manager
	maxPageSize int
	log         *logger.Logger
}

func NewRoomHandler(service service.RoomService, authManager *auth.Manager, maxPageSize int, log *logger.Logger) *RoomHandler {
	return &RoomHandler{
		service:     service,
		authManager: authManager,
		maxPageSize: maxPageSize,
		log:         log,
	}
}

func (h *RoomHandler) Create(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var room model.Room
	if err := json.NewDecoder(r.Body).Decode(&room); err != nil {
		h.writeError(w, "Create", apperrors.InvalidInput("Invalid request body"))
		return
	}
	room.ID = 0

	if err := h.service.Create(r.Context(), &room); err != nil {
		h.writeError(w, "Create", err)
		return
	}

	if err := httputil.WriteCreated(w, room); err != nil {
		h.log.Error("failed to write created response", "handler", "Create", "error", err)
	}
}

func (h *RoomHandler) GetByID(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	id, err := httputil.ParseID(ps.ByName("id"))
	if err != nil {
		h.writeError(w, "GetByID", err)
		return
	}

	room, err := h.service.GetByID(r.Context(), id)
	if err != nil {
		h.writeError(w, "GetByID", err)
		return
	}

	if err := httputil.WriteSuccess(w, room); err != nil {
		h.log.Error("failed to write success response", "handler", "GetByID", "error", err)
	}
}

func (h *RoomHandler) GetByHotel(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	hotelID, err := httputil.ParseID(ps.ByName("id"))
	if err != nil {
		h.writeError(w, "GetByHotel", err)
		return
	}

	limit, offset, err := httputil.ExtractLimitOffset(r, h.maxPageSize)
	if err != nil {
		h.writeError(w, "GetByHotel", err)
		return
	}

	rooms, total, err := h.service.GetByHotel(r.Context(), hotelID, limit, offset)
	if err != nil {
		h.writeError(w, "GetByHotel", err)
		return
	}

	if err := httputil.WritePaginated(w, rooms, total, limit, offset); err != nil {
		h.log.Error("failed to write paginated response", "handler", "GetByHotel", "error", err)
	}
}

// Search parses the typed filter from query parameters. Absent parameters
// leave the corresponding filter fields nil.
func (h *RoomHandler) Search(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	filter, err := parseRoomFilter(r)
	if err != nil {
		h.writeError(w, "Search", err)
		return
	}

	limit, offset, err := httputil.ExtractLimitOffset(r, h.maxPageSize)
	if err != nil {
		h.writeError(w, "Search", err)
		return
	}

	rooms, total, err := h.service.Search(r.Context(), filter, limit, offset)
	if err != nil {
		h.writeError(w, "Search", err)
		return
	}

	if err := httputil.WritePaginated(w, rooms, total, limit, offset); err != nil {
		h.log.Error("failed to write paginated response", "handler", "Search", "error", err)
	}
}

func (h *RoomHandler) Delete(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	id, err := httputil.ParseID(ps.ByName("id"))
	if err != nil {
		h.writeError(w, "Delete", err)
		return
	}

	if err := h.service.Delete(r.Context(), id); err != nil {
		h.writeError(w, "Delete", err)
		return
	}

	httputil.WriteNoContent(w)
}

func parseRoomFilter(r *http.Request) (*model.RoomFilter, error) {
	query := r.URL.Query()
	filter := &model.RoomFilter{}

	if s := query.Get("hotel_id"); s != "" {
		v, err := strconv.ParseInt(s, 10, 64)
		if err != nil || v <= 0 {
			return nil, apperrors.InvalidInput("invalid hotel_id parameter: " + s)
		}
		filter.HotelID = &v
	}

	if s := query.Get("min_capacity"); s != "" {
		v, err := strconv.Atoi(s)
		if err != nil {
			return nil, apperrors.InvalidInput("invalid min_capacity parameter: " + s)
		}
		filter.MinCapacity = &v
	}

	if s := query.Get("max_capacity"); s != "" {
		v, err := strconv.Atoi(s)
		if err != nil {
			return nil, apperrors.InvalidInput("invalid max_capacity parameter: " + s)
		}
		filter.MaxCapacity = &v
	}

	if s := query.Get("min_price_cents"); s != "" {
		v, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return nil, apperrors.InvalidInput("invalid min_price_cents parameter: " + s)
		}
		filter.MinPriceCents = &v
	}

	if s := query.Get("max_price_cents"); s != "" {
		v, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return nil, apperrors.InvalidInput("invalid max_price_cents parameter: " + s)
		}
		filter.MaxPriceCents = &v
	}

	switch sortBy := query.Get("sort_by"); sortBy {
	case "", "id", "price", "capacity":
		filter.SortBy = sortBy
	default:
		return nil, apperrors.InvalidInput("sort_by must be one of: id, price, capacity")
	}

	switch order := query.Get("order"); order {
	case "", "asc":
	case "desc":
		filter.SortDesc = true
	default:
		return nil, apperrors.InvalidInput("order must be asc or desc")
	}

	return filter, nil
}

func (h *RoomHandler) writeError(w http.ResponseWriter, handler string, err error) {
	if writeErr := httputil.WriteError(w, err); writeErr != nil {
		h.log.Error("failed to write error response", "handler", handler, "error", writeErr)
	}
}

func (h *RoomHandler) RegisterRoutes(router *httprouter.Router) {
	router.POST("/api/v1/rooms", auth.Guard(h.authManager, h.Create))
	router.GET("/api/v1/rooms/id/:id", h.GetByID)
	router.GET("/api/v1/rooms/hotel/:id", h.GetByHotel)
	router.GET("/api/v1/rooms/search", h.Search)
	router.DELETE("/api/v1/rooms/id/:id", auth.GuardRole(h.authManager, model.RoleAdmin, h.Delete))
}
