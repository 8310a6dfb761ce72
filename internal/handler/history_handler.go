package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/serendigo/serendigo-backend-go/internal/detour"
	"github.com/serendigo/serendigo-backend-go/internal/middleware"
	"github.com/serendigo/serendigo-backend-go/internal/service"
	"github.com/serendigo/serendigo-backend-go/pkg/response"
)

// HistoryHandler handles the guide history screens
type HistoryHandler struct {
	service *service.HistoryService
}

// NewHistoryHandler creates a new history handler
func NewHistoryHandler(service *service.HistoryService) *HistoryHandler {
	return &HistoryHandler{service: service}
}

// List handles GET /api/v1/guide-history
// Backend failures render as an empty history, never as an error.
func (h *HistoryHandler) List(c *gin.Context) {
	view := h.service.List(c.Request.Context(), middleware.ClaimsFrom(c))
	response.Success(c, view)
}

// Detail handles GET /api/v1/guide-history/:id
func (h *HistoryHandler) Detail(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.Error(c, http.StatusBadRequest, "Invalid history ID", err)
		return
	}

	view, err := h.service.Detail(c.Request.Context(), middleware.ClaimsFrom(c), id)
	if err != nil {
		response.Error(c, http.StatusBadGateway, service.HistoryDetailMessage, err)
		return
	}
	response.Success(c, view)
}

// Repeat handles POST /api/v1/guide-history/:id/repeat
// An optional JSON body {"lat": ..., "lng": ...} sets the search origin.
func (h *HistoryHandler) Repeat(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.Error(c, http.StatusBadRequest, "Invalid history ID", err)
		return
	}

	var body struct {
		Lat *float64 `json:"lat"`
		Lng *float64 `json:"lng"`
	}
	_ = c.ShouldBindJSON(&body)
	var origin *detour.Coordinate
	if body.Lat != nil && body.Lng != nil {
		origin = &detour.Coordinate{Lat: *body.Lat, Lng: *body.Lng}
	}

	view, err := h.service.Repeat(c.Request.Context(), middleware.ClaimsFrom(c), id, origin)
	switch {
	case err == nil:
		response.Created(c, view)
	case errors.Is(err, service.ErrInvalidCoordinate):
		response.BadRequest(c, err.Error())
	case errors.Is(err, service.ErrNoSearchParams):
		response.Error(c, http.StatusUnprocessableEntity, "この履歴は同じ条件で探せません", nil)
	case errors.Is(err, service.ErrHistoryDetail):
		response.Error(c, http.StatusBadGateway, service.HistoryDetailMessage, err)
	default:
		response.InternalError(c, "Failed to open session", err)
	}
}
