package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/serendigo/serendigo-backend-go/internal/models"
	"github.com/serendigo/serendigo-backend-go/internal/service"
	"github.com/serendigo/serendigo-backend-go/pkg/response"
)

// AuthHandler handles login and registration
type AuthHandler struct {
	service *service.AuthService
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(service *service.AuthService) *AuthHandler {
	return &AuthHandler{service: service}
}

// Login handles POST /api/v1/auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	var req models.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "メールアドレスとパスワードを入力してください", err)
		return
	}

	resp, err := h.service.Login(c.Request.Context(), req)
	if err != nil {
		backendError(c, "ログインに失敗しました", err)
		return
	}
	response.Success(c, resp)
}

// Register handles POST /api/v1/auth/register
func (h *AuthHandler) Register(c *gin.Context) {
	var input models.RegisterInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.Error(c, http.StatusBadRequest, "入力内容を確認してください", err)
		return
	}

	if err := h.service.Register(c.Request.Context(), input); err != nil {
		backendError(c, "登録に失敗しました", err)
		return
	}
	response.Created(c, gin.H{"email": input.Email})
}
