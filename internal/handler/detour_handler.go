package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/serendigo/serendigo-backend-go/internal/detour"
	"github.com/serendigo/serendigo-backend-go/internal/middleware"
	"github.com/serendigo/serendigo-backend-go/internal/models"
	"github.com/serendigo/serendigo-backend-go/internal/service"
	"github.com/serendigo/serendigo-backend-go/pkg/response"
)

// DetourHandler handles HTTP requests for detour sessions
type DetourHandler struct {
	service *service.SessionService
}

// NewDetourHandler creates a new detour handler
func NewDetourHandler(service *service.SessionService) *DetourHandler {
	return &DetourHandler{service: service}
}

// CreateSession handles POST /api/v1/detour/sessions
func (h *DetourHandler) CreateSession(c *gin.Context) {
	var req models.SessionRequest
	if err := c.ShouldBind(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "Invalid session request", err)
		return
	}

	cfg, ok := sessionConfig(req)
	if !ok {
		response.BadRequest(c, "mode (walk|drive) and duration (15|30|45|60) are required")
		return
	}

	view, err := h.service.Create(c.Request.Context(), cfg, middleware.ClaimsFrom(c))
	if err != nil {
		h.sessionError(c, "Failed to open session", err)
		return
	}
	response.Created(c, view)
}

// GetSession handles GET /api/v1/detour/sessions/:id
func (h *DetourHandler) GetSession(c *gin.Context) {
	view, err := h.service.View(c.Param("id"))
	if err != nil {
		h.sessionError(c, "Failed to get session", err)
		return
	}
	response.Success(c, view)
}

// Retry handles POST /api/v1/detour/sessions/:id/retry
func (h *DetourHandler) Retry(c *gin.Context) {
	view, err := h.service.Retry(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.sessionError(c, "Failed to search again", err)
		return
	}
	response.Success(c, view)
}

// CloseSession handles DELETE /api/v1/detour/sessions/:id
func (h *DetourHandler) CloseSession(c *gin.Context) {
	result, err := h.service.Close(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.sessionError(c, "Failed to close session", err)
		return
	}
	response.Success(c, result)
}

// UpdatePosition handles PUT /api/v1/detour/sessions/:id/position
func (h *DetourHandler) UpdatePosition(c *gin.Context) {
	var update models.PositionUpdate
	if err := c.ShouldBindJSON(&update); err != nil {
		response.Error(c, http.StatusBadRequest, "Invalid position", err)
		return
	}

	result, err := h.service.UpdatePosition(c.Param("id"), update)
	if err != nil {
		h.sessionError(c, "Failed to update position", err)
		return
	}
	response.Success(c, result)
}

// GetMap handles GET /api/v1/detour/sessions/:id/map
// The body is a bare GeoJSON FeatureCollection so map libraries can load
// it directly.
func (h *DetourHandler) GetMap(c *gin.Context) {
	fc, err := h.service.Map(c.Param("id"))
	if err != nil {
		h.sessionError(c, "Failed to build map", err)
		return
	}
	c.Header("Content-Type", "application/geo+json")
	c.JSON(http.StatusOK, fc)
}

// GetAttempts handles GET /api/v1/detour/sessions/:id/attempts
func (h *DetourHandler) GetAttempts(c *gin.Context) {
	var filter models.AttemptFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		response.Error(c, http.StatusBadRequest, "Invalid query parameters", err)
		return
	}

	attempts, total, err := h.service.Attempts(c.Request.Context(), c.Param("id"), filter)
	if err != nil {
		h.sessionError(c, "Failed to get attempts", err)
		return
	}

	response.Success(c, gin.H{
		"data":  attempts,
		"total": total,
	})
}

// Announce handles POST /api/v1/detour/sessions/:id/announce
func (h *DetourHandler) Announce(c *gin.Context) {
	var req struct {
		SpotID string `json:"spot_id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "spot_id is required", err)
		return
	}

	text, err := h.service.Announce(c.Request.Context(), c.Param("id"), req.SpotID)
	if err != nil {
		h.sessionError(c, "Failed to announce spot", err)
		return
	}
	response.Success(c, gin.H{"text": text})
}

// ToggleAudio handles POST /api/v1/detour/sessions/:id/audio
func (h *DetourHandler) ToggleAudio(c *gin.Context) {
	playing, err := h.service.ToggleAudio(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.sessionError(c, "Failed to toggle audio", err)
		return
	}
	response.Success(c, gin.H{"playing": playing})
}

func (h *DetourHandler) sessionError(c *gin.Context, message string, err error) {
	switch {
	case errors.Is(err, service.ErrSessionNotFound):
		response.NotFound(c, "Session not found")
	case errors.Is(err, service.ErrSpotNotFound):
		response.NotFound(c, "Spot not found")
	case errors.Is(err, service.ErrInvalidConditions), errors.Is(err, service.ErrInvalidCoordinate):
		response.BadRequest(c, err.Error())
	case errors.Is(err, detour.ErrBusy):
		response.Error(c, http.StatusConflict, "Search already in progress", nil)
	default:
		response.InternalError(c, message, err)
	}
}

// sessionConfig resolves the condition screen's query. An unknown category
// is treated as unset.
func sessionConfig(req models.SessionRequest) (detour.SessionConfig, bool) {
	mode, okMode := detour.ParseMode(req.Mode)
	minutes, okDuration := detour.ParseDuration(req.Duration)
	if !okMode || !okDuration {
		return detour.SessionConfig{}, false
	}
	cat, _ := detour.ParseCategory(req.Category)

	cfg := detour.SessionConfig{Mode: mode, DurationMinutes: minutes, Category: cat}
	if req.Lat != nil && req.Lng != nil {
		cfg.Origin = &detour.Coordinate{Lat: *req.Lat, Lng: *req.Lng}
	}
	if req.Gender != "" || req.AgeRange != "" {
		cfg.Profile = &detour.Profile{Gender: req.Gender, AgeRange: req.AgeRange}
	}
	return cfg, true
}
