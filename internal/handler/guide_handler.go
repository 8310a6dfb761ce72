package handler

import (
	"errors"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/serendigo/serendigo-backend-go/internal/backend"
	"github.com/serendigo/serendigo-backend-go/internal/middleware"
	"github.com/serendigo/serendigo-backend-go/internal/service"
	"github.com/serendigo/serendigo-backend-go/pkg/response"
)

// GuideHandler handles visits and destinations
type GuideHandler struct {
	service *service.GuideService
}

// NewGuideHandler creates a new guide handler
func NewGuideHandler(service *service.GuideService) *GuideHandler {
	return &GuideHandler{service: service}
}

// RegisterVisit handles POST /api/v1/visits/register
// The place comes from ?place_id= or a JSON body {"placeId": ...}.
func (h *GuideHandler) RegisterVisit(c *gin.Context) {
	placeID := c.Query("place_id")
	if placeID == "" {
		var body struct {
			PlaceID string `json:"placeId"`
		}
		_ = c.ShouldBindJSON(&body)
		placeID = body.PlaceID
	}

	result, err := h.service.RegisterVisit(c.Request.Context(), placeID, middleware.ClaimsFrom(c))
	if err != nil {
		if errors.Is(err, backend.ErrMissingPlaceID) {
			response.BadRequest(c, "missing placeId")
			return
		}
		backendError(c, "ガイドの生成に失敗しました", err)
		return
	}
	response.Success(c, result)
}

// RecentVisits handles GET /api/v1/visits/recent
func (h *GuideHandler) RecentVisits(c *gin.Context) {
	userID := c.Query("user_id")
	if claims := middleware.ClaimsFrom(c); claims != nil {
		userID = claims.UserID
	}
	if userID == "" {
		response.BadRequest(c, "user_id is required")
		return
	}

	limit, _ := strconv.Atoi(c.Query("limit"))
	visits, err := h.service.RecentVisits(c.Request.Context(), userID, limit)
	if err != nil {
		backendError(c, "最近の検索を取得できませんでした", err)
		return
	}
	response.Success(c, visits)
}

// RegisterDestination handles POST /api/v1/destinations/register
func (h *GuideHandler) RegisterDestination(c *gin.Context) {
	dest, err := h.service.RegisterDestination(c.Request.Context(), c.Query("place_id"))
	if err != nil {
		if errors.Is(err, backend.ErrMissingPlaceID) {
			response.BadRequest(c, "place_id is required")
			return
		}
		backendError(c, "登録に失敗しました", err)
		return
	}
	response.Success(c, dest)
}
