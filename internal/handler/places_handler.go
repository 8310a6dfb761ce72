package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/serendigo/serendigo-backend-go/internal/service"
	"github.com/serendigo/serendigo-backend-go/pkg/response"
)

// PlacesHandler handles destination autocomplete
type PlacesHandler struct {
	service *service.PlacesService
}

// NewPlacesHandler creates a new places handler
func NewPlacesHandler(service *service.PlacesService) *PlacesHandler {
	return &PlacesHandler{service: service}
}

// Predictions handles GET /api/v1/places/predictions?input=
func (h *PlacesHandler) Predictions(c *gin.Context) {
	preds, err := h.service.Predictions(c.Request.Context(), c.Query("input"))
	if err != nil {
		if errors.Is(err, service.ErrMissingInput) {
			response.BadRequest(c, "Missing input parameter")
			return
		}
		backendError(c, "Failed to fetch predictions", err)
		return
	}
	response.Success(c, preds)
}
